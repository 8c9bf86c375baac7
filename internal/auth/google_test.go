package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"gmail-analytics/internal/apperr"
)

func newTokenServer(t *testing.T) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			t.Errorf("parse form: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		switch {
		case r.Form.Get("grant_type") == "authorization_code" && r.Form.Get("code") == "good-code":
			_, _ = w.Write([]byte(`{"access_token":"at-1","refresh_token":"rt-1","token_type":"Bearer","expires_in":3600}`))
		case r.Form.Get("grant_type") == "refresh_token" && r.Form.Get("refresh_token") == "rt-1":
			_, _ = w.Write([]byte(`{"access_token":"at-2","token_type":"Bearer","expires_in":3600}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Bad Request"}`))
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestAuthURLRequestsOfflineConsent(t *testing.T) {
	flow := NewGoogleFlow(GoogleConfig{
		ClientID:    "client",
		RedirectURL: "http://localhost:8000/auth/google/callback",
	})

	raw := flow.AuthURL("state-1")
	u, err := url.Parse(raw)
	if err != nil {
		t.Fatal(err)
	}
	q := u.Query()
	checks := map[string]string{
		"access_type":            "offline",
		"prompt":                 "consent",
		"include_granted_scopes": "true",
		"client_id":              "client",
		"state":                  "state-1",
	}
	for key, want := range checks {
		if got := q.Get(key); got != want {
			t.Errorf("%s = %q, want %q", key, got, want)
		}
	}
	for _, scope := range Scopes {
		if !strings.Contains(q.Get("scope"), scope) {
			t.Errorf("scope %q missing from %q", scope, q.Get("scope"))
		}
	}
}

func TestExchangeAndRefresh(t *testing.T) {
	srv := newTokenServer(t)
	flow := NewGoogleFlow(GoogleConfig{
		ClientID:     "client",
		ClientSecret: "secret",
		TokenURL:     srv.URL + "/token",
	})
	ctx := context.Background()

	cred, err := flow.Exchange(ctx, "good-code")
	if err != nil {
		t.Fatal(err)
	}
	if cred.AccessToken != "at-1" || cred.RefreshToken != "rt-1" {
		t.Fatalf("unexpected credential: %+v", cred)
	}
	if cred.TokenURL != srv.URL+"/token" || cred.ClientID != "client" || len(cred.Scopes) != 3 {
		t.Fatalf("credential lacks refresh parameters: %+v", cred)
	}
	if !cred.Expiry.After(time.Now()) {
		t.Fatalf("expiry not set: %v", cred.Expiry)
	}

	refreshed, err := flow.Refresh(ctx, cred)
	if err != nil {
		t.Fatal(err)
	}
	if refreshed.AccessToken != "at-2" || refreshed.RefreshToken != "rt-1" {
		t.Fatalf("unexpected refreshed credential: %+v", refreshed)
	}
}

func TestExchangeFailureCarriesProviderText(t *testing.T) {
	srv := newTokenServer(t)
	flow := NewGoogleFlow(GoogleConfig{ClientID: "client", TokenURL: srv.URL + "/token"})

	_, err := flow.Exchange(context.Background(), "expired-code")
	if !apperr.Is(err, apperr.KindExchangeFailed) {
		t.Fatalf("expected exchange failure, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid_grant") {
		t.Fatalf("error %q does not carry provider text", err)
	}
}
