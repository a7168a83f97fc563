package store

import (
	"context"
	"fmt"
	"math"

	"github.com/dmitrijs2005/codecredits/internal/client/client"
	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/common"
)

// admin returns the API view when the current user is an administrator.
func (s *Store) admin() (client.Client, error) {
	api, token := s.session()
	if token == "" {
		return nil, common.ErrNoSession
	}
	if !s.IsAdmin() {
		return nil, client.ErrForbidden
	}
	return api, nil
}

func (s *Store) FetchUsers(ctx context.Context, page models.Page) ([]models.User, error) {
	api, err := s.admin()
	if err != nil {
		return nil, err
	}
	users, err := api.ListUsers(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("fetch users: %w", err)
	}
	return users, nil
}

// GrantCredits adds amount to a user's balance. Granting to oneself also
// overwrites the local balance with the server's new total.
func (s *Store) GrantCredits(ctx context.Context, userID int64, amount float64) (*models.CreditGrant, error) {
	if !(amount > 0) || math.IsInf(amount, 0) {
		return nil, common.ErrInvalidAmount
	}
	api, err := s.admin()
	if err != nil {
		return nil, err
	}

	g, err := api.AddCredits(ctx, userID, amount)
	if err != nil {
		return nil, fmt.Errorf("grant credits: %w", err)
	}
	if u := s.CurrentUser(); u != nil && u.ID == userID {
		s.setCredits(g.CurrentCredits)
	}
	s.log.Info(ctx, "credits granted", "user_id", userID, "amount", amount)
	return g, nil
}

func (s *Store) FetchPaymentStatistics(ctx context.Context) (models.PaymentStatistics, error) {
	api, err := s.admin()
	if err != nil {
		return nil, err
	}
	st, err := api.PaymentStatistics(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch payment statistics: %w", err)
	}
	return st, nil
}
