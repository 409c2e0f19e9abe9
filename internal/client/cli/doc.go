// Package cli provides the interactive shopkeeper admin console.
//
// It wires configuration, the local session store, the HTTP client and the
// session, list and analytics controllers into a line-oriented REPL.
// Typical flow: restore a persisted session, start a background
// connectivity watcher, then execute user commands until exit.
//
// Commands:
//   - register / login / logout / whoami
//   - categories, products: browse, search, paginate, add, edit, delete
//   - dashboard: summary counters plus the orders and sales charts
//   - orders, sales: switch a chart between week, month and year
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, StartOnlineStatusWatcher, and runREPL for details.
package cli
