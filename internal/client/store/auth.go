package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/codecredits/internal/client/client"
	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/common"
)

// Login exchanges credentials for a token, binds it, then loads the profile.
// A failed profile fetch fails the login and leaves no partial session. The
// credit balance is fetched best-effort afterwards.
func (s *Store) Login(ctx context.Context, creds models.Credentials) error {
	if !creds.Valid() {
		return common.ErrInvalidCredentials
	}

	s.authRequest()

	tok, err := s.base.Login(ctx, creds)
	if err != nil {
		s.failLogin(ctx)
		return fmt.Errorf("login: %w", err)
	}

	if err := s.sessions.SaveToken(ctx, tok.AccessToken); err != nil {
		s.failLogin(ctx)
		return fmt.Errorf("login: %w", err)
	}

	// The authenticated view must be in place before /users/me is issued.
	s.bindToken(tok.AccessToken)
	api, _ := s.session()

	user, err := api.CurrentUser(ctx)
	if err != nil {
		s.failLogin(ctx)
		return fmt.Errorf("login: fetch current user: %w", err)
	}

	if err := s.sessions.Save(ctx, models.Session{Token: tok.AccessToken, User: user}); err != nil {
		s.log.Warn(ctx, "failed to persist session", "error", err)
	}
	s.authSuccess(tok.AccessToken, user)
	s.log.Info(ctx, "logged in", "user", user.Username)

	s.refreshCreditsBestEffort(ctx, "login")
	return nil
}

func (s *Store) failLogin(ctx context.Context) {
	s.authError()
	if err := s.sessions.RemoveToken(ctx); err != nil {
		s.log.Warn(ctx, "failed to remove token", "error", err)
	}
}

// Register creates an account. It does not log in.
func (s *Store) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	if req.Username == "" || req.Password == "" {
		return nil, common.ErrInvalidCredentials
	}
	u, err := s.base.Register(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("register: %w", err)
	}
	s.log.Info(ctx, "registered", "user", u.Username)
	return u, nil
}

// Logout always succeeds. Storage failures are logged.
func (s *Store) Logout(ctx context.Context) {
	s.logout()
	if err := s.sessions.Clear(ctx); err != nil {
		s.log.Warn(ctx, "failed to clear session storage", "error", err)
	}
}

// RestoreSession revalidates the durable session against the server. Without
// a stored token/user pair it returns common.ErrNoSession and makes no call.
// Any validation failure logs out and returns the error.
func (s *Store) RestoreSession(ctx context.Context) error {
	sess, ok, err := s.sessions.Load(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}
	if !ok || !sess.Active() {
		return common.ErrNoSession
	}

	s.bindToken(sess.Token)
	api, _ := s.session()

	user, err := api.CurrentUser(ctx)
	if err != nil {
		s.Logout(ctx)
		return fmt.Errorf("restore session: %w", err)
	}

	if err := s.sessions.Save(ctx, models.Session{Token: sess.Token, User: user}); err != nil {
		s.log.Warn(ctx, "failed to persist session", "error", err)
	}
	s.authSuccess(sess.Token, user)
	s.log.Debug(ctx, "session restored", "user", user.Username)

	s.refreshCreditsBestEffort(ctx, "restore session")
	return nil
}

// IsSessionRejected reports whether err means the server no longer accepts
// the stored token, as opposed to there being no session at all.
func IsSessionRejected(err error) bool {
	return errors.Is(err, client.ErrUnauthorized) || errors.Is(err, client.ErrForbidden)
}

func (s *Store) refreshCreditsBestEffort(ctx context.Context, during string) {
	if _, err := s.FetchCredits(ctx); err != nil {
		s.log.Warn(ctx, "failed to refresh credits", "during", during, "error", err)
	}
}
