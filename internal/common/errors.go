// Package common defines shared constants and sentinel errors used across
// client layers of codecredits. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Session errors.
	ErrNoSession = errors.New("no session data found")

	// Validation errors raised before any request is sent.
	ErrInvalidCredentials = errors.New("username and password are required")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrEmptyPrompt        = errors.New("prompt is required")

	// Token introspection errors.
	ErrInvalidToken = errors.New("invalid token")
)
