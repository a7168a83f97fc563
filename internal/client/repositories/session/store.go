package session

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/common"
)

// Store persists the bearer token and the serialized user profile under the
// "token" and "user" keys of a Repository.
type Store struct {
	repo Repository
}

func NewStore(repo Repository) *Store {
	return &Store{repo: repo}
}

// Token returns the persisted token, if any.
func (s *Store) Token(ctx context.Context) (string, bool, error) {
	t, ok, err := s.repo.Get(ctx, common.SessionKeyToken)
	if err != nil {
		return "", false, err
	}
	return t, ok && t != "", nil
}

// SaveToken persists the token alone.
func (s *Store) SaveToken(ctx context.Context, token string) error {
	return s.repo.Set(ctx, common.SessionKeyToken, token)
}

// Save persists token and user in one transaction.
func (s *Store) Save(ctx context.Context, sess models.Session) error {
	raw, err := json.Marshal(sess.User)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}
	return s.repo.SetMany(ctx, map[string]string{
		common.SessionKeyToken: sess.Token,
		common.SessionKeyUser:  string(raw),
	})
}

// Load returns the persisted session. ok is true only when both a token and a
// decodable, non-null user are present.
func (s *Store) Load(ctx context.Context) (models.Session, bool, error) {
	token, ok, err := s.Token(ctx)
	if err != nil || !ok {
		return models.Session{}, false, err
	}

	raw, ok, err := s.repo.Get(ctx, common.SessionKeyUser)
	if err != nil || !ok {
		return models.Session{}, false, err
	}

	var user *models.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil || user == nil {
		// A corrupt profile is treated as no session at all.
		return models.Session{}, false, nil
	}
	return models.Session{Token: token, User: user}, true, nil
}

// RemoveToken drops only the token, leaving any cached profile in place.
func (s *Store) RemoveToken(ctx context.Context) error {
	return s.repo.Remove(ctx, common.SessionKeyToken)
}

// Clear removes both session keys.
func (s *Store) Clear(ctx context.Context) error {
	return s.repo.Remove(ctx, common.SessionKeyToken, common.SessionKeyUser)
}
