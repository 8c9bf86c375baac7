package credential

import (
	"context"
	"time"
)

// expiryDelta matches golang.org/x/oauth2: a token this close to expiry counts as expired.
const expiryDelta = 10 * time.Second

// Credential is one set of delegated-authorization tokens plus what is needed to refresh them.
type Credential struct {
	AccessToken  string    `json:"token"`
	RefreshToken string    `json:"refresh_token"`
	TokenURL     string    `json:"token_uri"`
	ClientID     string    `json:"client_id"`
	ClientSecret string    `json:"client_secret"`
	Scopes       []string  `json:"scopes"`
	Expiry       time.Time `json:"expiry"`
}

// Expired reports whether the access token is unusable at now. A zero Expiry never expires.
func (c Credential) Expired(now time.Time) bool {
	if c.AccessToken == "" {
		return true
	}
	if c.Expiry.IsZero() {
		return false
	}
	return !c.Expiry.After(now.Add(expiryDelta))
}

// Repository holds credentials keyed by session id.
type Repository interface {
	Get(ctx context.Context, sessionID string) (Credential, bool, error)
	Put(ctx context.Context, sessionID string, cred Credential) error
	Delete(ctx context.Context, sessionID string) error
}

// Refresher trades a refresh token for a new access token.
type Refresher interface {
	Refresh(ctx context.Context, cred Credential) (Credential, error)
}
