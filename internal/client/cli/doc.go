// Package cli provides the savethatagain command-line client.
//
// It wires configuration, the local SQLite store, the API services and the
// command set. A command given on the command line runs once:
//
//	savethatagain -a http://127.0.0.1:8080 login ann@example.com
//	savethatagain upload -title "Standup" -duration 42000 standup.m4a
//
// Without a command an interactive REPL starts and accepts the same
// commands. See App.Exec for the list.
package cli
