// Package services contains application services for the taskboard client.
// Session owns the signed-in user and drives the credential store through
// login, registration, startup verification and logout.
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/dmitrijs2005/taskboard/internal/client/client"
	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/taskboard/internal/client/tokenstore"
	"github.com/dmitrijs2005/taskboard/internal/logging"
)

// AuthAPI is the remote surface the session needs. *client.AuthAPI
// implements it.
type AuthAPI interface {
	Login(ctx context.Context, c models.Credentials) (*client.AuthResult, error)
	Register(ctx context.Context, r models.Registration) (*client.AuthResult, error)
	Verify(ctx context.Context) (*models.User, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, u models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, current, next string) error
}

type passwordChange struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,min=8,nefield=CurrentPassword"`
}

// Session is the session controller. Construct one per process with
// NewSession and pass it where it is needed.
type Session struct {
	api      AuthAPI
	tokens   tokenstore.Store
	profiles profileStore
	validate *validator.Validate
	log      logging.Logger

	mu      sync.Mutex
	state   State
	started bool
	attempt uint64
	restore State
	subs    map[int]func(State)
	nextSub int
}

func NewSession(api AuthAPI, tokens tokenstore.Store, meta metadata.Repository, log logging.Logger) *Session {
	if log == nil {
		log = logging.Nop()
	}
	return &Session{
		api:      api,
		tokens:   tokens,
		profiles: profileStore{repo: meta},
		validate: newValidator(),
		log:      log,
		state:    State{Status: StatusInitializing},
		subs:     map[int]func(State){},
	}
}

// State returns a snapshot of the current session.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Subscribe calls fn with every new state until cancel is called.
func (s *Session) Subscribe(fn func(State)) (cancel func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

// transition replaces the state and notifies subscribers outside the lock.
func (s *Session) transition(next State) {
	s.mu.Lock()
	subs := s.setLocked(next)
	s.mu.Unlock()

	notify(subs, next.clone())
}

func (s *Session) setLocked(next State) []func(State) {
	s.state = next
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	return subs
}

func notify(subs []func(State), st State) {
	for _, fn := range subs {
		fn(st)
	}
}

// Start resolves the initial state. A verify is attempted only when both a
// last-known profile and an unexpired access token are stored; any failure
// leaves the session unauthenticated. Later calls do nothing.
func (s *Session) Start(ctx context.Context) {

	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	profile, err := s.profiles.load(ctx)
	if err != nil {
		s.log.Warn(ctx, "last-known profile unreadable", "error", err)
	}

	tokens, err := s.tokens.Read(ctx)
	if err != nil {
		s.log.Warn(ctx, "credentials unreadable", "error", err)
	}

	if profile == nil || tokens.Access == "" {
		s.transition(State{Status: StatusUnauthenticated})
		return
	}

	user, err := s.api.Verify(ctx)
	if err != nil {
		s.log.Info(ctx, "session not restored", "username", profile.Username, "error", err)
		s.transition(State{Status: StatusUnauthenticated})
		return
	}

	if err := s.profiles.save(ctx, user); err != nil {
		s.log.Warn(ctx, "profile not persisted", "error", err)
	}

	s.log.Info(ctx, "session restored", "username", user.Username)
	s.transition(State{Status: StatusAuthenticated, User: user})
}

// Login signs in with c. On failure the session is left as it was.
func (s *Session) Login(ctx context.Context, c models.Credentials) error {
	return s.authenticate(ctx, "login", "Login failed", c, func(ctx context.Context) (*client.AuthResult, error) {
		return s.api.Login(ctx, c)
	})
}

// Register creates an account and signs it in.
func (s *Session) Register(ctx context.Context, r models.Registration) error {
	return s.authenticate(ctx, "register", "Registration failed", r, func(ctx context.Context) (*client.AuthResult, error) {
		return s.api.Register(ctx, r)
	})
}

func (s *Session) authenticate(
	ctx context.Context,
	op, generic string,
	input any,
	call func(context.Context) (*client.AuthResult, error),
) error {

	if err := s.validate.Struct(input); err != nil {
		return &AuthError{Op: op, Message: describe(err), Err: err}
	}

	attempt, ok := s.begin()
	if !ok {
		return &AuthError{Op: op, Message: "Already signing in", Err: ErrBusy}
	}

	res, err := call(ctx)
	if err != nil {
		s.rollback(attempt)
		s.log.Info(ctx, op+" failed", "error", err)
		return &AuthError{Op: op, Message: messageOr(err, generic), Err: err}
	}

	if err := s.establish(ctx, res); err != nil {
		s.rollback(attempt)
		s.log.Error(ctx, op+" not applied", "error", err)
		return &AuthError{Op: op, Message: generic, Err: err}
	}

	s.log.Info(ctx, op+" succeeded", "username", res.User.Username)
	s.transition(State{Status: StatusAuthenticated, User: &res.User})

	return nil
}

// begin marks the session busy and returns the attempt number. The state
// seen here is restored if the attempt fails, unless a sign-out replaced it.
func (s *Session) begin() (uint64, bool) {
	s.mu.Lock()
	if s.state.Busy {
		s.mu.Unlock()
		return 0, false
	}
	s.attempt++
	attempt := s.attempt
	s.restore = s.state
	next := State{Status: StatusAuthenticating, User: s.state.User, Busy: true}
	subs := s.setLocked(next)
	s.mu.Unlock()

	notify(subs, next.clone())
	return attempt, true
}

// rollback ends a failed attempt. It does nothing once the attempt is no
// longer the one in flight.
func (s *Session) rollback(attempt uint64) {
	s.mu.Lock()
	if !s.state.Busy || s.attempt != attempt {
		s.mu.Unlock()
		return
	}
	next := s.restore
	subs := s.setLocked(next)
	s.mu.Unlock()

	notify(subs, next.clone())
}

// signOut drops the user. An in-flight sign-in stays busy and falls back to
// unauthenticated if it fails.
func (s *Session) signOut() {
	s.mu.Lock()
	next := State{Status: StatusUnauthenticated}
	if s.state.Busy {
		s.restore = next
		next = State{Status: StatusAuthenticating, Busy: true}
	}
	subs := s.setLocked(next)
	s.mu.Unlock()

	notify(subs, next.clone())
}

// establish persists the issued pair and profile together, or neither.
func (s *Session) establish(ctx context.Context, res *client.AuthResult) error {

	if err := s.tokens.Save(ctx, res.AccessToken, res.RefreshToken); err != nil {
		if cerr := s.tokens.Clear(ctx); cerr != nil {
			s.log.Error(ctx, "clear credentials", "error", cerr)
		}
		return fmt.Errorf("save credentials: %w", err)
	}

	if err := s.profiles.save(ctx, &res.User); err != nil {
		if cerr := s.tokens.Clear(ctx); cerr != nil {
			s.log.Error(ctx, "clear credentials", "error", cerr)
		}
		return err
	}

	return nil
}

// Logout tells the server (best effort) and always clears local state.
func (s *Session) Logout(ctx context.Context) error {

	if err := s.api.Logout(ctx); err != nil {
		s.log.Warn(ctx, "server logout failed", "error", err)
	}

	err := s.clearLocal(ctx)
	s.signOut()

	return err
}

// HandleSessionLost is registered with the pipeline; the credential store
// has already been cleared when it runs.
func (s *Session) HandleSessionLost(ctx context.Context) error {

	s.log.Info(ctx, "session lost")

	err := s.profiles.clear(ctx)
	s.signOut()

	return err
}

func (s *Session) clearLocal(ctx context.Context) error {
	return errors.Join(s.tokens.Clear(ctx), s.profiles.clear(ctx))
}

// UpdateProfile applies u and refreshes the persisted profile. Failures do
// not sign the user out.
func (s *Session) UpdateProfile(ctx context.Context, u models.ProfileUpdate) error {

	const op = "update profile"

	if !s.State().Authenticated() {
		return &AuthError{Op: op, Message: "Not signed in", Err: ErrNotSignedIn}
	}
	if err := s.validate.Struct(u); err != nil {
		return &AuthError{Op: op, Message: describe(err), Err: err}
	}

	user, err := s.api.UpdateProfile(ctx, u)
	if err != nil {
		return &AuthError{Op: op, Message: messageOr(err, "Profile update failed"), Err: err}
	}

	if err := s.profiles.save(ctx, user); err != nil {
		s.log.Warn(ctx, "profile not persisted", "error", err)
	}

	s.mu.Lock()
	if s.state.Status != StatusAuthenticated {
		s.mu.Unlock()
		return nil
	}
	next := s.state
	next.User = user
	subs := s.setLocked(next)
	s.mu.Unlock()

	notify(subs, next.clone())
	return nil
}

// ChangePassword changes the password of the signed-in user.
func (s *Session) ChangePassword(ctx context.Context, current, next string) error {

	const op = "change password"

	if !s.State().Authenticated() {
		return &AuthError{Op: op, Message: "Not signed in", Err: ErrNotSignedIn}
	}
	if err := s.validate.Struct(passwordChange{CurrentPassword: current, NewPassword: next}); err != nil {
		return &AuthError{Op: op, Message: describe(err), Err: err}
	}

	if err := s.api.ChangePassword(ctx, current, next); err != nil {
		return &AuthError{Op: op, Message: messageOr(err, "Password change failed"), Err: err}
	}

	return nil
}

func messageOr(err error, fallback string) string {
	if msg := client.MessageOf(err); msg != "" {
		return msg
	}
	return fallback
}
