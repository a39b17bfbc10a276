// Package main provides the entry point for the live-chat administration service.
// It runs a Fiber web server exposing a JSON API for configuring chat-widget
// appearance and for managing customers, websites, users and settings resources.
// Most resource calls are proxied to a remote admin backend; a few resources
// degrade to a process-local store when that backend cannot be reached.
package main
