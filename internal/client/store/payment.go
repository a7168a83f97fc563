package store

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/codecredits/internal/client/models"
	"github.com/dmitrijs2005/codecredits/internal/common"
)

// CreatePayment opens a checkout for credits and records the pending
// transaction at the head of the local list.
func (s *Store) CreatePayment(ctx context.Context, credits int64) (*models.PaymentIntent, error) {
	if credits <= 0 {
		return nil, common.ErrInvalidAmount
	}
	api, token := s.session()
	if token == "" {
		return nil, common.ErrNoSession
	}

	intent, err := api.CreatePayment(ctx, credits)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	s.addPaymentTransaction(intent.Pending())
	s.log.Info(ctx, "payment created", "transaction_id", intent.TransactionID, "credits", intent.Credits)
	return intent, nil
}

// VerifyPayment asks the server to settle transactionID. An empty or
// unresolved id means there is nothing to verify: it returns false with no
// call. A verified payment refreshes the balance; if that refresh fails the
// transaction's credits are applied locally instead.
func (s *Store) VerifyPayment(ctx context.Context, transactionID string) (bool, error) {
	if transactionID == "" || transactionID == common.UnresolvedPaymentID {
		s.log.Debug(ctx, "no transaction id to verify")
		return false, nil
	}
	api, token := s.session()
	if token == "" {
		return false, common.ErrNoSession
	}

	ok, err := api.VerifyPayment(ctx, transactionID)
	if err != nil {
		return false, fmt.Errorf("verify payment: %w", err)
	}
	if !ok {
		return false, nil
	}

	if _, err := s.FetchCredits(ctx); err != nil {
		s.log.Warn(ctx, "failed to refresh credits after payment", "transaction_id", transactionID, "error", err)
		if tx, found := s.pendingTransaction(transactionID); found {
			s.updateCreditsAfterPayment(float64(tx.Credits))
		}
	}
	return true, nil
}

func (s *Store) pendingTransaction(id string) (models.PaymentTransaction, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, tx := range s.state.PaymentTransactions {
		if tx.TransactionID == id && tx.Status == models.PaymentPending {
			return tx, true
		}
	}
	return models.PaymentTransaction{}, false
}

// VerifyLatestPayment inspects only the most recent transaction. A completed
// head refreshes the balance and returns true without a verify call.
func (s *Store) VerifyLatestPayment(ctx context.Context) (bool, error) {
	txs, err := s.FetchPaymentHistory(ctx, models.Page{})
	if err != nil {
		return false, err
	}
	if len(txs) == 0 {
		return false, nil
	}

	head := txs[0]
	if head.Status == models.PaymentCompleted {
		s.refreshCreditsBestEffort(ctx, "verify latest payment")
		return true, nil
	}
	return s.VerifyPayment(ctx, head.TransactionID)
}

// FetchPaymentHistory replaces the transaction list with one page. Without a
// token it is a no-op.
func (s *Store) FetchPaymentHistory(ctx context.Context, page models.Page) ([]models.PaymentTransaction, error) {
	api, token := s.session()
	if token == "" {
		return nil, nil
	}
	txs, err := api.PaymentHistory(ctx, page)
	if err != nil {
		return nil, fmt.Errorf("fetch payment history: %w", err)
	}
	s.setPaymentTransactions(txs)
	return txs, nil
}
