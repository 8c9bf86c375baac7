package mailbox

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"gmail-analytics/internal/apperr"
	"gmail-analytics/internal/credential"
	"gmail-analytics/pkg/metrics"
)

const gmailUserID = "me"

// metadataHeaders are the only headers requested when fetching a message.
var metadataHeaders = []string{"From", "Subject", "Date"}

// GmailFactory builds Gmail API clients. Endpoint overrides the API base URL when set.
type GmailFactory struct {
	Endpoint string
}

func NewGmailFactory(endpoint string) *GmailFactory {
	return &GmailFactory{Endpoint: endpoint}
}

func (f *GmailFactory) NewClient(ctx context.Context, cred credential.Credential) (Client, error) {
	// Refresh is owned by the credential store, so the client only ever sees a fixed token.
	ts := oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: cred.AccessToken,
		TokenType:   "Bearer",
		Expiry:      cred.Expiry,
	})
	opts := []option.ClientOption{option.WithTokenSource(ts)}
	if f.Endpoint != "" {
		opts = append(opts, option.WithEndpoint(f.Endpoint))
	}

	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, apperr.New(apperr.KindRemoteAPI, "create gmail service", err)
	}
	return &GmailClient{svc: svc}, nil
}

// GmailClient implements Client on top of the Gmail v1 API.
type GmailClient struct {
	svc *gmail.Service
}

func (c *GmailClient) ListMessageIDs(ctx context.Context, query string, limit int64) ([]string, error) {
	var resp *gmail.ListMessagesResponse
	err := observe("messages.list", func() (err error) {
		resp, err = c.svc.Users.Messages.List(gmailUserID).Q(query).MaxResults(limit).Context(ctx).Do()
		return err
	})
	if err != nil {
		return nil, apperr.New(apperr.KindRemoteAPI, "list messages", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		ids = append(ids, m.Id)
	}
	return ids, nil
}

func (c *GmailClient) GetMessageHeaders(ctx context.Context, id string) (MessageMetadata, error) {
	var msg *gmail.Message
	err := observe("messages.get", func() (err error) {
		msg, err = c.svc.Users.Messages.Get(gmailUserID, id).
			Format("metadata").
			MetadataHeaders(metadataHeaders...).
			Context(ctx).
			Do()
		return err
	})
	if err != nil {
		return MessageMetadata{}, apperr.New(apperr.KindRemoteAPI, "get message "+id, err)
	}

	meta := MessageMetadata{
		ID:           msg.Id,
		Headers:      make(map[string]string),
		SizeEstimate: msg.SizeEstimate,
	}
	if msg.Payload != nil {
		// Later duplicates overwrite earlier ones.
		for _, h := range msg.Payload.Headers {
			meta.Headers[h.Name] = h.Value
		}
	}
	return meta, nil
}

func (c *GmailClient) SendRawMessage(ctx context.Context, raw []byte) (string, error) {
	out := &gmail.Message{Raw: base64.URLEncoding.EncodeToString(raw)}

	var sent *gmail.Message
	err := observe("messages.send", func() (err error) {
		sent, err = c.svc.Users.Messages.Send(gmailUserID, out).Context(ctx).Do()
		return err
	})
	if err != nil {
		return "", apperr.New(apperr.KindRemoteAPI, "send message", err)
	}
	return sent.Id, nil
}

func (c *GmailClient) GetProfile(ctx context.Context) (Profile, error) {
	var p *gmail.Profile
	err := observe("users.getProfile", func() (err error) {
		p, err = c.svc.Users.GetProfile(gmailUserID).Context(ctx).Do()
		return err
	})
	if err != nil {
		return Profile{}, apperr.New(apperr.KindRemoteAPI, "get profile", err)
	}
	return Profile{
		EmailAddress:  p.EmailAddress,
		MessagesTotal: p.MessagesTotal,
		ThreadsTotal:  p.ThreadsTotal,
	}, nil
}

func observe(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	metrics.RecordGmailCallLatency(operation, callStatus(err), time.Since(start))
	return err
}

func callStatus(err error) string {
	if err == nil {
		return "ok"
	}
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 401 || apiErr.Code == 403:
			return "auth_error"
		case apiErr.Code == 404:
			return "not_found"
		case apiErr.Code >= 500:
			return "server_error"
		}
		return "client_error"
	}
	return "transport_error"
}
