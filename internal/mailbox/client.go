package mailbox

import (
	"context"

	"gmail-analytics/internal/credential"
)

// MessageMetadata is the header-only view of a remote message.
type MessageMetadata struct {
	ID           string
	Headers      map[string]string
	SizeEstimate int64
}

// Header returns the named header. Names match exactly, as the provider spells them.
func (m MessageMetadata) Header(name string) (string, bool) {
	v, ok := m.Headers[name]
	return v, ok
}

// Profile is the account summary used to verify a credential.
type Profile struct {
	EmailAddress  string
	MessagesTotal int64
	ThreadsTotal  int64
}

// Client is the narrow surface of the remote mail API this service needs.
type Client interface {
	ListMessageIDs(ctx context.Context, query string, limit int64) ([]string, error)
	GetMessageHeaders(ctx context.Context, id string) (MessageMetadata, error)
	SendRawMessage(ctx context.Context, raw []byte) (string, error)
	GetProfile(ctx context.Context) (Profile, error)
}

// ClientFactory binds a Client to one credential. Clients are built per request.
type ClientFactory interface {
	NewClient(ctx context.Context, cred credential.Credential) (Client, error)
}
