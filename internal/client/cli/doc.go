// Package cli provides the interactive jars command-line client.
//
// It wires configuration, the persisted session and a store client (network
// or seeded in-process) into a REPL exposing every store operation:
//
//   - touch, login, logout
//   - get, save, preview, delete, unlink, fields, record
//   - groups, report, linetypes, reports (reads accept --fresh or
//     --min=<version>)
//   - h2n, n2h, refresh, version
//   - call, for raw requests
//
// The session token and the last observed version are saved per target on
// login and on exit, and restored on the next start.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
