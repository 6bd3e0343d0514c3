package model

import "time"

// OAuthState is a single-use anti-forgery token for the embedded signup flow.
type OAuthState struct {
	ID        string    `db:"id"`
	State     string    `db:"state"`
	ExpiresAt time.Time `db:"expires_at"`
	CreatedAt time.Time `db:"created_at"`
}

type CreateOAuthStateParams struct {
	State     string
	ExpiresAt time.Time
}
