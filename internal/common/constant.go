// Package common contains shared constants and sentinel errors used across
// codecredits client components.
package common

// Outbound header names and values.
const (
	AuthorizationHeaderName = "Authorization"
	BearerPrefix            = "Bearer "
	RequestIDHeaderName     = "X-Request-ID"
)

// Keys of the durable session store.
const (
	SessionKeyToken = "token"
	SessionKeyUser  = "user"
)

// UnresolvedPaymentID is the literal the payment provider leaves in the return
// URL when it did not substitute a real payment link id.
const UnresolvedPaymentID = "{paymentLinkId}"

// Default pagination for history listings.
const (
	DefaultPage  = 1
	DefaultLimit = 10
)
