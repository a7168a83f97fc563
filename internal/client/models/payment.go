package models

// PaymentStatus is owned by the server; the client never transitions it.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
)

// PaymentCreateRequest is the JSON payload of POST /payment/create.
type PaymentCreateRequest struct {
	Credits int64 `json:"credits"`
}

// PaymentIntent is returned by POST /payment/create. CheckoutURL is where the
// user completes the purchase; QRCode is a base64 image of the same link.
type PaymentIntent struct {
	CheckoutURL   string `json:"checkout_url"`
	QRCode        string `json:"qr_code"`
	TransactionID string `json:"transaction_id"`
	Amount        int64  `json:"amount"`
	Credits       int64  `json:"credits"`
}

// PaymentTransaction is one purchase as recorded by the server.
type PaymentTransaction struct {
	ID            int64         `json:"id"`
	UserID        int64         `json:"user_id"`
	Amount        int64         `json:"amount"`
	Credits       int64         `json:"credits"`
	TransactionID string        `json:"transaction_id"`
	Status        PaymentStatus `json:"status"`
	CreatedAt     string        `json:"created_at"`
	CompletedAt   *string       `json:"completed_at,omitempty"`
}

// Pending converts a fresh intent into the transaction row the server created for it.
func (p PaymentIntent) Pending() PaymentTransaction {
	return PaymentTransaction{
		Amount:        p.Amount,
		Credits:       p.Credits,
		TransactionID: p.TransactionID,
		Status:        PaymentPending,
	}
}
