package auth

import (
	"context"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"

	"gmail-analytics/internal/apperr"
	"gmail-analytics/internal/credential"
)

// Scopes requested from the account owner: read, modify and send.
var Scopes = []string{
	gmail.GmailReadonlyScope,
	gmail.GmailModifyScope,
	gmail.GmailSendScope,
}

// GoogleConfig configures the authorization-code flow.
// AuthURL and TokenURL default to Google's endpoints when empty.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
}

// GoogleFlow runs the OAuth 2.0 authorization-code flow against Google.
type GoogleFlow struct {
	config *oauth2.Config
}

func NewGoogleFlow(cfg GoogleConfig) *GoogleFlow {
	endpoint := google.Endpoint
	if cfg.AuthURL != "" {
		endpoint.AuthURL = cfg.AuthURL
	}
	if cfg.TokenURL != "" {
		endpoint.TokenURL = cfg.TokenURL
	}

	return &GoogleFlow{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       Scopes,
			Endpoint:     endpoint,
		},
	}
}

// AuthURL asks for offline access and forces the consent screen so a refresh token is always issued.
func (f *GoogleFlow) AuthURL(state string) string {
	return f.config.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce,
		oauth2.SetAuthURLParam("include_granted_scopes", "true"),
	)
}

// Exchange trades an authorization code for a credential.
func (f *GoogleFlow) Exchange(ctx context.Context, code string) (credential.Credential, error) {
	tok, err := f.config.Exchange(ctx, code)
	if err != nil {
		return credential.Credential{}, apperr.New(apperr.KindExchangeFailed, "", err)
	}

	return credential.Credential{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenURL:     f.config.Endpoint.TokenURL,
		ClientID:     f.config.ClientID,
		ClientSecret: f.config.ClientSecret,
		Scopes:       append([]string(nil), f.config.Scopes...),
		Expiry:       tok.Expiry,
	}, nil
}

// Refresh calls the credential's own token endpoint with its refresh token.
func (f *GoogleFlow) Refresh(ctx context.Context, cred credential.Credential) (credential.Credential, error) {
	cfg := &oauth2.Config{
		ClientID:     cred.ClientID,
		ClientSecret: cred.ClientSecret,
		Scopes:       cred.Scopes,
		Endpoint: oauth2.Endpoint{
			TokenURL:  cred.TokenURL,
			AuthStyle: f.config.Endpoint.AuthStyle,
		},
	}

	tok, err := cfg.TokenSource(ctx, &oauth2.Token{RefreshToken: cred.RefreshToken}).Token()
	if err != nil {
		return credential.Credential{}, err
	}

	cred.AccessToken = tok.AccessToken
	cred.Expiry = tok.Expiry
	if tok.RefreshToken != "" {
		cred.RefreshToken = tok.RefreshToken
	}
	return cred, nil
}
