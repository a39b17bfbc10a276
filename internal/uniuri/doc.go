// Package uniuri generates random alphanumeric strings for webhook secrets and first run passwords.
package uniuri
