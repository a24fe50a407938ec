// Package cli provides the interactive notes command-line client.
//
// It wires configuration, the local token store, the remote gateways, the
// session coordinator and an interactive REPL. Typical flow: resume the saved
// session or prompt for an access token, start a background connectivity
// watcher for the extraction server, and execute user commands.
//
// Key features:
//   - Login / Logout with a persisted access token
//   - Notes: list, show, add, edit, trash, restore, empty trash
//   - Tasks: list, add, complete, delete, extract from a note
//   - Categories: list, add, rename, delete
//   - Status / Reconnect for the live change feeds
//
// The REPL is started via App.Root(ctx), which blocks until the user exits.
package cli
