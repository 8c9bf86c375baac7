package credential

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"gmail-analytics/internal/apperr"
	"gmail-analytics/pkg/metrics"
)

var (
	errNoCredential = errors.New("no credentials found")
	errNoRefresh    = errors.New("access token expired and no refresh token is available")
)

// Store resolves the credential of a session, refreshing it when it has expired.
type Store struct {
	repo      Repository
	refresher Refresher
	logger    *zap.Logger
	now       func() time.Time
}

func NewStore(repo Repository, refresher Refresher, logger *zap.Logger) *Store {
	return &Store{
		repo:      repo,
		refresher: refresher,
		logger:    logger,
		now:       time.Now,
	}
}

// Store replaces the session's credential unconditionally.
func (s *Store) Store(ctx context.Context, sessionID string, cred Credential) error {
	if err := s.repo.Put(ctx, sessionID, cred); err != nil {
		return apperr.New(apperr.KindUnknown, "store credential", err)
	}
	return nil
}

// Get fails with KindUnauthenticated when the session has no credential.
func (s *Store) Get(ctx context.Context, sessionID string) (Credential, error) {
	if sessionID == "" {
		return Credential{}, apperr.New(apperr.KindUnauthenticated, "", errNoCredential)
	}
	cred, ok, err := s.repo.Get(ctx, sessionID)
	if err != nil {
		return Credential{}, apperr.New(apperr.KindInvalidCredential, "load credential", err)
	}
	if !ok {
		return Credential{}, apperr.New(apperr.KindUnauthenticated, "", errNoCredential)
	}
	return cred, nil
}

// EnsureValid refreshes an expired credential and writes the new access token back.
func (s *Store) EnsureValid(ctx context.Context, sessionID string, cred Credential) (Credential, error) {
	if !cred.Expired(s.now()) {
		return cred, nil
	}
	if cred.RefreshToken == "" {
		if err := s.repo.Delete(ctx, sessionID); err != nil {
			s.logger.Warn("Failed to drop unrefreshable credential", zap.String("session_id", sessionID), zap.Error(err))
		}
		return Credential{}, apperr.New(apperr.KindInvalidCredential, "", errNoRefresh)
	}

	refreshed, err := s.refresher.Refresh(ctx, cred)
	if err != nil {
		metrics.IncrementCredentialRefresh("failed")
		s.logger.Warn("Credential refresh failed", zap.String("session_id", sessionID), zap.Error(err))
		return Credential{}, apperr.New(apperr.KindInvalidCredential, "refresh credential", err)
	}

	metrics.IncrementCredentialRefresh("success")

	cred.AccessToken = refreshed.AccessToken
	cred.Expiry = refreshed.Expiry
	if refreshed.RefreshToken != "" {
		cred.RefreshToken = refreshed.RefreshToken
	}
	if err := s.repo.Put(ctx, sessionID, cred); err != nil {
		return Credential{}, apperr.New(apperr.KindInvalidCredential, "store refreshed credential", err)
	}
	s.logger.Info("Credential refreshed", zap.String("session_id", sessionID), zap.Time("expiry", cred.Expiry))
	return cred, nil
}

// Resolve is Get followed by EnsureValid.
func (s *Store) Resolve(ctx context.Context, sessionID string) (Credential, error) {
	cred, err := s.Get(ctx, sessionID)
	if err != nil {
		return Credential{}, err
	}
	return s.EnsureValid(ctx, sessionID, cred)
}

// Invalidate forgets the session's credential.
func (s *Store) Invalidate(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return s.repo.Delete(ctx, sessionID)
}
