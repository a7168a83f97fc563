package store

import "github.com/dmitrijs2005/codecredits/internal/client/models"

func (s *Store) authRequest() {
	s.commit(func(st *State) { st.Status = StatusLoading })
}

// authError records a failed attempt and unbinds any token the attempt bound.
func (s *Store) authError() {
	s.commit(func(st *State) {
		st.Status = StatusError
		st.Token = ""
		st.User = nil
		s.api = s.base
	})
}

func (s *Store) authSuccess(token string, user *models.User) {
	s.commit(func(st *State) {
		st.Status = StatusSuccess
		st.Token = token
		st.User = user
	})
}

// logout resets the session to its zero value and drops the authenticated
// client view. Loaded collections are left in place and are stale.
func (s *Store) logout() {
	s.commit(func(st *State) {
		st.Status = StatusIdle
		st.Token = ""
		st.User = nil
		st.Credits = 0
		s.api = s.base
	})
}

// bindToken swaps the API view. It does not mark the session as logged in.
func (s *Store) bindToken(token string) {
	s.commit(func(*State) { s.api = s.base.WithToken(token) })
}

func (s *Store) setCredits(credits float64) {
	s.commit(func(st *State) { st.Credits = credits })
}

func (s *Store) setModels(ms []models.ModelPricing) {
	s.commit(func(st *State) { st.Models = ms })
}

func (s *Store) setCodeHistory(h []models.CodeGeneration) {
	s.commit(func(st *State) { st.CodeHistory = h })
}

// addCodeGeneration prepends g and debits its declared cost.
func (s *Store) addCodeGeneration(g models.CodeGeneration) {
	s.commit(func(st *State) {
		st.CodeHistory = append([]models.CodeGeneration{g}, st.CodeHistory...)
		st.Credits -= g.CreditsUsed
	})
}

func (s *Store) setPaymentTransactions(txs []models.PaymentTransaction) {
	s.commit(func(st *State) { st.PaymentTransactions = txs })
}

func (s *Store) addPaymentTransaction(tx models.PaymentTransaction) {
	s.commit(func(st *State) {
		st.PaymentTransactions = append([]models.PaymentTransaction{tx}, st.PaymentTransactions...)
	})
}

func (s *Store) updateCreditsAfterPayment(added float64) {
	s.commit(func(st *State) { st.Credits += added })
}
