package services

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/taskboard/internal/client/models"
	"github.com/dmitrijs2005/taskboard/internal/client/repositories/metadata"
)

// ProfileKey is the metadata key holding the last-known user profile.
const ProfileKey = "profile"

// profileStore keeps the last-known profile in non-expiring storage so a
// restarted client knows whether a verify is worth attempting.
type profileStore struct {
	repo metadata.Repository
}

// load returns nil when nothing usable is stored.
func (p profileStore) load(ctx context.Context) (*models.User, error) {
	b, err := p.repo.Get(ctx, ProfileKey)
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}
	if b == nil {
		return nil, nil
	}

	var u models.User
	if err := json.Unmarshal(b, &u); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return &u, nil
}

func (p profileStore) save(ctx context.Context, u *models.User) error {
	b, err := json.Marshal(u)
	if err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	if err := p.repo.Set(ctx, ProfileKey, b); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

func (p profileStore) clear(ctx context.Context) error {
	if err := p.repo.Delete(ctx, ProfileKey); err != nil {
		return fmt.Errorf("clear profile: %w", err)
	}
	return nil
}
