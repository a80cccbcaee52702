// Package client contains the store client: a single operation set over the
// jars document store, usable against a remote server or an in-process store.
//
// # Overview
//
// The package provides:
//  1. The Client interface with the full operation set: Touch, Login,
//     Logout, Get, Save, Delete, Unlink, Groups, Report, Fields, Preview,
//     Record, H2N, N2H, Refresh, Linetypes, Reports and the relay entry
//     points Execute and ExecuteJSON.
//  2. StoreClient, which implements Client over an Executor. NewHTTP wires it
//     to a server over net/http; NewLocal wires it to a LocalStore running in
//     the same process.
//  3. LocalHandler, the in-process backend: it answers the same paths with the
//     same wire form as a server, so responses from either backend go through
//     identical checks.
//
// # Error Handling
//
// Every failure matches exactly one of the taxonomy roots in package common:
// ErrValidation (rejected before any I/O), ErrContractViolation (response of
// the wrong shape), ErrTransport (no usable response, including timeouts,
// which also match ErrTimeout) and ErrRemote (an allow-listed store error,
// see common.RemoteError). Nothing is retried.
//
// # Versions
//
// Any response carrying a well-formed X-Version header updates the version
// the client reports from Version. Reads that take an api.MinVersion send it
// as X-Min-Version so the store can refuse to serve stale data.
//
// Concurrency & Contexts
//
// StoreClient guards its token, version and touch cache with a mutex and can
// be shared between goroutines. Every operation honours ctx and the optional
// per-client timeout.
package client
