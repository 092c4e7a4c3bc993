package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/client/services"
)

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Whoami(ctx context.Context) error
	Profile(ctx context.Context) error
	Passwd(ctx context.Context) error
	Renew(ctx context.Context) error
	Get(ctx context.Context, path string) error
}

const (
	helpSignedOut = "Available commands: register, login, get <path>, help, exit"
	helpSignedIn  = "Available commands: whoami, profile, passwd, renew, get <path>, logout, help, exit"
)

// runREPL reads commands from reader until EOF, "exit" or "quit".
//
// The prompt shows statusFn() and the command set depends on whether a user
// is signed in:
//
//	Signed out:
//	  - register       create an account and sign in
//	  - login          sign in
//
//	Signed in:
//	  - whoami         show the signed-in user
//	  - profile        edit name and username
//	  - passwd         change password
//	  - renew          exchange the refresh credential for a new pair
//	  - logout         sign out
//
//	Always:
//	  - get <path>     authenticated GET against the server
//	  - help, exit | quit
//
// Handler errors are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "taskboard%s> ", statusFn())

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			fmt.Fprintln(w)
			return
		}

		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpSignedIn)
			} else {
				fmt.Fprintln(w, helpSignedOut)
			}

		case "register":
			cmdErr = a.Register(ctx)

		case "login":
			cmdErr = a.Login(ctx)

		case "logout":
			cmdErr = signedIn(a, func() error { return a.Logout(ctx) })

		case "whoami":
			cmdErr = signedIn(a, func() error { return a.Whoami(ctx) })

		case "profile":
			cmdErr = signedIn(a, func() error { return a.Profile(ctx) })

		case "passwd":
			cmdErr = signedIn(a, func() error { return a.Passwd(ctx) })

		case "renew":
			cmdErr = signedIn(a, func() error { return a.Renew(ctx) })

		case "get":
			if len(args) != 1 {
				fmt.Fprintln(w, "Usage: get <path>")
				continue
			}
			cmdErr = a.Get(ctx, args[0])

		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return

		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil {
			fmt.Fprintln(w, describeError(cmdErr))
		}
	}
}

func signedIn(a execIface, fn func() error) error {
	if !a.isLoggedIn() {
		return services.ErrNotSignedIn
	}
	return fn()
}
