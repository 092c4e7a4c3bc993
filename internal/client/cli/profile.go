package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/client/services"
)

// Whoami prints the signed-in user.
func (a *App) Whoami(_ context.Context) error {
	u := a.session.State().User
	if u == nil {
		return services.ErrNotSignedIn
	}

	role := "member"
	if u.IsAdmin {
		role = "admin"
	}
	fmt.Fprintf(a.out, "%s (%s), %s, since %s\n", u.DisplayName(), u.Username, role, u.CreatedAt.Format("2006-01-02"))
	return nil
}

// Profile edits name and username; empty answers keep the current value.
func (a *App) Profile(ctx context.Context) error {
	name, err := getOptional(a.reader, "Name", a.out)
	if err != nil {
		return err
	}
	username, err := getOptional(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	if name == nil && username == nil {
		fmt.Fprintln(a.out, "Nothing to change")
		return nil
	}

	if err := a.session.UpdateProfile(ctx, models.ProfileUpdate{Name: name, Username: username}); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Profile updated")
	return a.Whoami(ctx)
}
