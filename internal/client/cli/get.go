package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
)

// Get issues an authenticated GET and prints the response body.
func (a *App) Get(ctx context.Context, path string) error {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}

	resp, err := a.caller.Do(ctx, client.Get(path))
	var se *client.StatusError
	if err != nil && !errors.As(err, &se) {
		return err
	}

	fmt.Fprintf(a.out, "%d\n", resp.StatusCode)

	var pretty bytes.Buffer
	if json.Indent(&pretty, resp.Body, "", "  ") == nil {
		fmt.Fprintln(a.out, strings.TrimRight(pretty.String(), "\n"))
	} else if len(resp.Body) > 0 {
		fmt.Fprintln(a.out, string(resp.Body))
	}
	return nil
}
