package client

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/common"
)

// AuthResult is returned by login and registration.
type AuthResult struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

type userEnvelope struct {
	User models.User `json:"user"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// AuthAPI is a typed view of the /auth endpoints.
type AuthAPI struct {
	pipeline *Pipeline
}

func NewAuthAPI(p *Pipeline) *AuthAPI {
	return &AuthAPI{pipeline: p}
}

// Login exchanges credentials for a user and a credential pair. It does not
// touch the credential store.
func (a *AuthAPI) Login(ctx context.Context, c models.Credentials) (*AuthResult, error) {
	return a.authenticate(ctx, common.PathLogin, c)
}

// Register creates an account and signs it in, like Login.
func (a *AuthAPI) Register(ctx context.Context, r models.Registration) (*AuthResult, error) {
	return a.authenticate(ctx, common.PathRegister, r)
}

func (a *AuthAPI) authenticate(ctx context.Context, path string, body any) (*AuthResult, error) {

	resp, err := a.pipeline.Do(ctx, &Call{Method: http.MethodPost, Path: path, Body: body, Anonymous: true})
	if err != nil {
		return nil, err
	}

	var out AuthResult
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.RefreshToken == "" {
		return nil, common.ErrInvalidToken
	}

	return &out, nil
}

// Verify returns the user the stored access token belongs to.
func (a *AuthAPI) Verify(ctx context.Context) (*models.User, error) {
	return a.user(ctx, &Call{Method: http.MethodGet, Path: common.PathVerify})
}

// Logout revokes the session on the server.
func (a *AuthAPI) Logout(ctx context.Context) error {
	_, err := a.pipeline.Do(ctx, &Call{Method: http.MethodPost, Path: common.PathLogout})
	return err
}

// UpdateProfile applies a partial profile edit and returns the updated user.
func (a *AuthAPI) UpdateProfile(ctx context.Context, u models.ProfileUpdate) (*models.User, error) {
	return a.user(ctx, &Call{Method: http.MethodPut, Path: common.PathProfile, Body: u})
}

func (a *AuthAPI) ChangePassword(ctx context.Context, current, next string) error {
	_, err := a.pipeline.Do(ctx, &Call{
		Method: http.MethodPost,
		Path:   common.PathChangePassword,
		Body:   changePasswordRequest{CurrentPassword: current, NewPassword: next},
	})
	return err
}

func (a *AuthAPI) user(ctx context.Context, call *Call) (*models.User, error) {

	resp, err := a.pipeline.Do(ctx, call)
	if err != nil {
		return nil, err
	}

	var out userEnvelope
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}

	return &out.User, nil
}
