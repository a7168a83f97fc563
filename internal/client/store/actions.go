package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/common"
)

// FetchCredits replaces the balance with the server's value. Without a token
// it is a no-op.
func (s *Store) FetchCredits(ctx context.Context) (*float64, error) {
	api, token := s.session()
	if token == "" {
		return nil, nil
	}
	c, err := api.Credits(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch credits: %w", err)
	}
	s.setCredits(c)
	return &c, nil
}

// FetchModels replaces the model list. Without a token it is a no-op.
func (s *Store) FetchModels(ctx context.Context) ([]models.ModelPricing, error) {
	api, token := s.session()
	if token == "" {
		return nil, nil
	}
	ms, err := api.Models(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch models: %w", err)
	}
	s.setModels(ms)
	return ms, nil
}

// FetchCodeHistory replaces the history with one page. Without a token it is
// a no-op.
func (s *Store) FetchCodeHistory(ctx context.Context, page models.Page) ([]models.CodeGeneration, error) {
	api, token := s.session()
	if token == "" {
		return nil, nil
	}
	h, err := api.CodeHistory(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("fetch code history: %w", err)
	}
	s.setCodeHistory(h)
	return h, nil
}

// FetchCodeHistoryCount returns the total number of generations. It does not
// touch state.
func (s *Store) FetchCodeHistoryCount(ctx context.Context) (int64, error) {
	api, token := s.session()
	if token == "" {
		return 0, nil
	}
	n, err := api.CodeHistoryCount(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetch code history count: %w", err)
	}
	return n, nil
}

// GenerateCode runs one generation. On success the record is prepended to
// the history and its credits_used is debited from the local balance.
// Without a token it is a no-op.
func (s *Store) GenerateCode(ctx context.Context, req models.GenerateRequest) (*models.CodeGeneration, error) {
	api, token := s.session()
	if token == "" {
		return nil, nil
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, common.ErrEmptyPrompt
	}

	g, err := api.GenerateCode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}
	s.addCodeGeneration(*g)
	s.log.Debug(ctx, "code generated", "model", g.ModelName, "credits_used", g.CreditsUsed)
	return g, nil
}
