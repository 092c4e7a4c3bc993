package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/taskboard/internal/client/authtest"
	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskboard/internal/client/services"
	"github.com/dmitrijs2005/taskboard/internal/client/tokenstore"
)

type harness struct {
	srv     *authtest.Server
	store   *tokenstore.MemoryStore
	session *services.Session
	out     *bytes.Buffer
	app     *App
}

// newHarness wires the app the way cmd/client does, with input as stdin.
func newHarness(t *testing.T, input string) *harness {
	t.Helper()
	stubTerminal(t, false, nil)

	h := &harness{
		srv:   authtest.NewServer(t),
		store: tokenstore.NewMemoryStore(),
		out:   &bytes.Buffer{},
	}
	p := client.NewPipeline(h.srv.URL, h.store)
	h.session = services.NewSession(client.NewAuthAPI(p), h.store, metadata.NewMemoryRepository(), nil)
	h.app = NewApp(h.session, p, bytes.NewBufferString(input), h.out, nil)
	p.OnSessionLost(h.session.HandleSessionLost)
	p.OnSessionLost(h.app.SessionLost)
	return h
}

func TestApp_LoginWhoamiLogout(t *testing.T) {
	h := newHarness(t, "login\nalice\nsecret-pass\nwhoami\nlogout\nwhoami\nexit\n")

	h.app.Run(context.Background())

	text := h.out.String()
	assert.Contains(t, text, "Signed in as Alice")
	assert.Contains(t, text, "taskboard (alice)> ")
	assert.Contains(t, text, "Alice (alice), member, since 2026-01-02")
	assert.Contains(t, text, "Signed out")
	assert.Contains(t, text, "Please log in first")
	assert.False(t, h.session.State().Authenticated())
}

func TestApp_LoginInvalidCredentials(t *testing.T) {
	h := newHarness(t, "login\nalice\nwrong-pass\nexit\n")

	h.app.Run(context.Background())

	assert.Contains(t, h.out.String(), "Invalid credentials")
	assert.False(t, h.session.State().Authenticated())
}

func TestApp_Register(t *testing.T) {
	h := newHarness(t, "register\nbob\nBob\nhunter22\nexit\n")

	h.app.Run(context.Background())

	assert.Contains(t, h.out.String(), "Welcome, Bob!")
	assert.Equal(t, "bob", h.session.State().User.Username)
}

func TestApp_ProfileAndPasswd(t *testing.T) {
	h := newHarness(t, "login\nalice\nsecret-pass\nprofile\nAlice L\n\npasswd\nsecret-pass\nnew-secret\nnew-secret\nexit\n")

	h.app.Run(context.Background())

	text := h.out.String()
	assert.Contains(t, text, "Profile updated")
	assert.Contains(t, text, "Alice L (alice)")
	assert.Contains(t, text, "Password changed")
}

func TestApp_PasswdMismatch(t *testing.T) {
	h := newHarness(t, "login\nalice\nsecret-pass\npasswd\nsecret-pass\none-thing\nanother\nexit\n")

	h.app.Run(context.Background())

	assert.Contains(t, h.out.String(), "Passwords do not match")
}

func TestApp_GetPrintsBody(t *testing.T) {
	h := newHarness(t, "")
	a, r := h.srv.SignIn("alice")
	require.NoError(t, h.store.Save(context.Background(), a, r))

	require.NoError(t, h.app.Get(context.Background(), "tasks"))

	assert.Equal(t, "200\n{\n  \"tasks\": []\n}\n", h.out.String())
}

func TestApp_RenewRotatesStoredPair(t *testing.T) {
	h := newHarness(t, "login\nalice\nsecret-pass\nrenew\nexit\n")

	h.app.Run(context.Background())

	assert.Contains(t, h.out.String(), "Credentials renewed")
	assert.Equal(t, 1, h.srv.RefreshCalls())
	tokens, err := h.store.Read(context.Background())
	require.NoError(t, err)
	assert.Equal(t, tokenstore.Tokens{Access: "A2", Refresh: "R2"}, tokens)
	assert.True(t, h.session.State().Authenticated())
}

func TestApp_RenewRejectedSignsOut(t *testing.T) {
	h := newHarness(t, "login\nalice\nsecret-pass\nrenew\nwhoami\nexit\n")
	h.srv.RejectRefresh(http.StatusUnauthorized)

	h.app.Run(context.Background())

	text := h.out.String()
	assert.Contains(t, text, "Your session has expired. Please log in again.")
	assert.Contains(t, text, "Please log in first")
	assert.False(t, h.session.State().Authenticated())
}

func TestApp_SessionLostPrintsNotice(t *testing.T) {
	h := newHarness(t, "")
	a, r := h.srv.SignIn("alice")
	require.NoError(t, h.store.Save(context.Background(), a, r))
	h.srv.ExpireAccess()
	h.srv.RejectRefresh(http.StatusUnauthorized)

	require.NoError(t, h.app.Get(context.Background(), "/tasks"))

	text := h.out.String()
	assert.Contains(t, text, "Your session has expired. Please log in again.")
	assert.Contains(t, text, "401")
	tokens, err := h.store.Read(context.Background())
	require.NoError(t, err)
	assert.True(t, tokens.Empty())
}

func TestDescribeError(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{&services.AuthError{Op: "login", Message: "Login failed"}, "Login failed"},
		{&client.TransportError{Op: "GET /x", Err: errors.New("refused")}, "Server unavailable, try again later"},
		{&client.StatusError{StatusCode: 401}, "Not authorized"},
		{services.ErrNotSignedIn, "Please log in first"},
		{&client.StatusError{StatusCode: 404, Message: "Not found"}, "Error: Not found"},
		{fmt.Errorf("boom"), "Error: boom"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, describeError(tt.err))
	}
}
