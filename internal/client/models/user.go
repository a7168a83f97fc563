// Package models defines client-side data models used by the codecredits CLI.
// Field names and JSON tags follow the backend wire format.
package models

// User is the authenticated user's profile as returned by GET /users/me.
// It is always replaced wholesale, never patched.
type User struct {
	ID       int64   `json:"id"`
	Username string  `json:"username"`
	Email    string  `json:"email,omitempty"`
	IsActive bool    `json:"is_active"`
	IsAdmin  bool    `json:"is_admin"`
	Credits  float64 `json:"credits"`
}

// Credentials are submitted form-encoded to POST /token.
type Credentials struct {
	Username string
	Password string
}

// Valid reports whether both fields are set.
func (c Credentials) Valid() bool {
	return c.Username != "" && c.Password != ""
}

// RegisterRequest is the JSON payload of POST /register.
type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// TokenResponse is the body of a successful POST /token.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// CreditBalance is the body of GET /users/me/credits.
type CreditBalance struct {
	Credits float64 `json:"credits"`
}

// Session is the authenticated identity of the current user.
// An empty Token implies a nil User.
type Session struct {
	Token string
	User  *User
}

// Active reports whether the session carries a token.
func (s Session) Active() bool {
	return s.Token != ""
}
