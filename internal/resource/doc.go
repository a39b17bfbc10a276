// Package resource turns a Definition of a record type into the proxy API of one backend resource.
//
// Every route validates locally, forwards to the remote backend and maps its answer back to JSON.
// Resources marked Fallback are served from an in-memory store while the backend is unreachable.
package resource
