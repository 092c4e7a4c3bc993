package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/services"
	"github.com/dmitrijs2005/taskboard/internal/client/tokenstore"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

// caller issues feature calls through the request pipeline.
type caller interface {
	Do(ctx context.Context, call *client.Call) (*client.Response, error)
	Refresh(ctx context.Context) (tokenstore.Tokens, error)
}

type App struct {
	session *services.Session
	caller  caller
	reader  *bufio.Reader
	out     io.Writer
	log     logging.Logger
}

func NewApp(session *services.Session, c caller, in io.Reader, out io.Writer, log logging.Logger) *App {
	if log == nil {
		log = logging.Nop()
	}
	return &App{
		session: session,
		caller:  c,
		reader:  bufio.NewReader(in),
		out:     out,
		log:     log,
	}
}

// Run restores the previous session, if any, and blocks in the REPL.
func (a *App) Run(ctx context.Context) {

	fmt.Fprintln(a.out, "Welcome to taskboard (type 'help' for commands)")

	a.session.Start(ctx)
	if st := a.session.State(); st.Authenticated() {
		fmt.Fprintf(a.out, "Signed in as %s\n", st.User.DisplayName())
	}

	runREPL(ctx, a, a.status, a.reader, a.out)
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Authenticated()
}

func (a *App) status() string {
	st := a.session.State()
	if !st.Authenticated() {
		return ""
	}
	return fmt.Sprintf(" (%s)", st.User.Username)
}

// SessionLost is registered with the pipeline after the session's own hook.
// It sends the user back to the sign-in prompt.
func (a *App) SessionLost(ctx context.Context) error {
	a.log.Info(ctx, "navigating to sign-in")
	_, err := fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
	return err
}

// describeError renders err for the terminal.
func describeError(err error) string {
	var ae *services.AuthError
	switch {
	case errors.As(err, &ae):
		return ae.Message
	case errors.Is(err, client.ErrUnavailable):
		return "Server unavailable, try again later"
	case errors.Is(err, client.ErrUnauthorized):
		return "Not authorized"
	case errors.Is(err, services.ErrNotSignedIn):
		return "Please log in first"
	}

	if msg := client.MessageOf(err); msg != "" {
		return "Error: " + msg
	}
	return "Error: " + err.Error()
}
