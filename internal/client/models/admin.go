package models

// CreditGrant is returned by POST /admin/users/{id}/add-credits.
type CreditGrant struct {
	Message        string  `json:"message"`
	CurrentCredits float64 `json:"current_credits"`
}

// PaymentStatistics is the loosely typed body of GET /admin/payment-statistics.
type PaymentStatistics map[string]any
