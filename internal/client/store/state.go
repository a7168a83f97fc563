package store

import (
	"slices"

	"github.com/dmitrijs2005/codecredits/internal/client/models"
)

// Status is the progress of the most recent authentication attempt.
type Status string

const (
	StatusIdle    Status = ""
	StatusLoading Status = "loading"
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// State is a point-in-time copy of everything the store owns. Collections are
// ordered most recent first.
type State struct {
	Status              Status
	Token               string
	User                *models.User
	Credits             float64
	Models              []models.ModelPricing
	CodeHistory         []models.CodeGeneration
	PaymentTransactions []models.PaymentTransaction
}

func (s State) clone() State {
	out := s
	if s.User != nil {
		u := *s.User
		out.User = &u
	}
	out.Models = slices.Clone(s.Models)
	out.CodeHistory = slices.Clone(s.CodeHistory)
	out.PaymentTransactions = slices.Clone(s.PaymentTransactions)
	return out
}
