package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
)

// getSimpleText, getPassword and getOptional are indirections used to
// facilitate testing.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	getOptional   = GetOptional
)

// Register prompts for a username, an optional display name and a password,
// then creates the account and signs it in.
func (a *App) Register(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	name, err := getSimpleText(a.reader, "Name (optional)", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}

	err = a.session.Register(ctx, models.Registration{Username: username, Password: password, Name: name})
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Welcome, %s!\n", a.session.State().User.DisplayName())
	return nil
}

// Login prompts for credentials and signs in.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}

	if err := a.session.Login(ctx, models.Credentials{Username: username, Password: password}); err != nil {
		return err
	}

	fmt.Fprintf(a.out, "Signed in as %s\n", a.session.State().User.DisplayName())
	return nil
}

// Logout signs out. Local state is cleared even when the server is
// unreachable.
func (a *App) Logout(ctx context.Context) error {
	if err := a.session.Logout(ctx); err != nil {
		a.log.Warn(ctx, "local sign-out incomplete", "error", err)
	}
	fmt.Fprintln(a.out, "Signed out")
	return nil
}

// Renew exchanges the stored refresh credential for a new pair now.
func (a *App) Renew(ctx context.Context) error {
	if _, err := a.caller.Refresh(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Credentials renewed")
	return nil
}

// Passwd changes the password of the signed-in user.
func (a *App) Passwd(ctx context.Context) error {
	current, err := getPassword(a.reader, "Current password", a.out)
	if err != nil {
		return err
	}
	next, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	confirm, err := getPassword(a.reader, "Repeat new password", a.out)
	if err != nil {
		return err
	}
	if next != confirm {
		fmt.Fprintln(a.out, "Passwords do not match")
		return nil
	}

	if err := a.session.ChangePassword(ctx, current, next); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Password changed")
	return nil
}
