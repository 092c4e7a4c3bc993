// Package cli provides the interactive taskboard command-line client.
//
// App owns the REPL: it restores the previous session on start, prompts for
// credentials, and runs account commands against the session controller.
// When the request pipeline gives up on a session, App.SessionLost prints a
// notice and the prompt switches back to the signed-out command set.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
