package credential

import (
	"context"
	"sync"
)

// MemoryRepository keeps credentials in process memory. Nothing survives a restart.
type MemoryRepository struct {
	mu    sync.RWMutex
	creds map[string]Credential
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{creds: make(map[string]Credential)}
}

func (r *MemoryRepository) Get(_ context.Context, sessionID string) (Credential, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	cred, ok := r.creds[sessionID]
	if !ok {
		return Credential{}, false, nil
	}
	cred.Scopes = append([]string(nil), cred.Scopes...)
	return cred, true, nil
}

func (r *MemoryRepository) Put(_ context.Context, sessionID string, cred Credential) error {
	cred.Scopes = append([]string(nil), cred.Scopes...)
	r.mu.Lock()
	r.creds[sessionID] = cred
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	delete(r.creds, sessionID)
	r.mu.Unlock()
	return nil
}
