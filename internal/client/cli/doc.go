// Package cli is the terminal front end of codecredits.
//
// It wires configuration, the session database, the HTTP API client, the
// state store and a notifier, and exposes them two ways: an interactive REPL
// (App.Root) and one-shot cobra subcommands (NewRootCommand). Both dispatch
// through App.Exec, which consults the navigation guard before running a
// command and reports failures through the notifier.
//
// The REPL restores the saved session on start and keeps the credit balance
// fresh with a periodic refresh while it runs.
package cli
