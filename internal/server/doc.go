// Package server wires and runs the sync server's HTTP transport.
//
// It owns the server lifecycle: startup, signal handling, and graceful
// shutdown of in-flight requests and open event streams.
package server
