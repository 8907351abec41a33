// Package client assembles the note-taking client: the local SQLite
// store, the HTTP server adapter, the sync engine, and the terminal UI,
// wired together and run as one application.
package client
