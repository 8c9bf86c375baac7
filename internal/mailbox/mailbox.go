// Package mailbox aggregates and sends mail through a remote mail API client.
//
// A Mailbox is bound to one credential for the duration of one request and
// holds no state between calls.
package mailbox

import (
	"context"
	"fmt"
	"time"

	"gmail-analytics/internal/apperr"
	"gmail-analytics/pkg/metrics"
)

// maxListResults is the single-page bound on a metrics window. Busier windows undercount.
const maxListResults = 500

// StatusSent is the status literal returned after a successful send.
const StatusSent = "sent"

// SendResult is what send and reply return.
type SendResult struct {
	MessageID string `json:"message_id"`
	Status    string `json:"status"`
}

type Mailbox struct {
	client Client
	now    func() time.Time
}

func New(client Client) *Mailbox {
	return &Mailbox{client: client, now: time.Now}
}

// windowQuery builds the search for [now-days, now] at day granularity.
func windowQuery(now time.Time, days int) string {
	start := now.Add(-time.Duration(days) * 24 * time.Hour)
	return fmt.Sprintf("after:%s before:%s", start.Format("2006/01/02"), now.Format("2006/01/02"))
}

// GetEmailMetrics lists one page of messages in the window and folds their headers into a Report.
// Any remote failure aborts the whole run.
func (m *Mailbox) GetEmailMetrics(ctx context.Context, days int) (*Report, error) {
	ids, err := m.client.ListMessageIDs(ctx, windowQuery(m.now(), days), maxListResults)
	if err != nil {
		return nil, fmt.Errorf("fetch email metrics: %w", err)
	}

	report := newReport(len(ids))
	for _, id := range ids {
		meta, err := m.client.GetMessageHeaders(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch email metrics: %w", err)
		}
		report.add(meta)
	}
	metrics.RecordMessagesScanned(len(ids))
	return report, nil
}

// GetTopSenders runs one aggregation pass and returns at most ten senders.
func (m *Mailbox) GetTopSenders(ctx context.Context, days int) ([]SenderCount, error) {
	report, err := m.GetEmailMetrics(ctx, days)
	if err != nil {
		return nil, err
	}
	return report.TopSenders(topSendersLimit), nil
}

// GetTimeDistribution runs one aggregation pass and returns the hour histogram.
func (m *Mailbox) GetTimeDistribution(ctx context.Context, days int) (map[int]int, error) {
	report, err := m.GetEmailMetrics(ctx, days)
	if err != nil {
		return nil, err
	}
	return report.TimeDistribution, nil
}

// SendEmail sends a plain-text message. The recipient is not validated here.
func (m *Mailbox) SendEmail(ctx context.Context, to, subject, body string) (SendResult, error) {
	raw, err := buildPlainMessage(to, subject, body, m.now())
	if err != nil {
		return SendResult{}, apperr.New(apperr.KindSendFailed, "build message", err)
	}

	id, err := m.client.SendRawMessage(ctx, raw)
	if err != nil {
		metrics.IncrementEmailSent("failed")
		return SendResult{}, apperr.New(apperr.KindSendFailed, "", err)
	}
	metrics.IncrementEmailSent("success")
	return SendResult{MessageID: id, Status: StatusSent}, nil
}

// ReplyToEmail answers the sender of messageID. The reply carries no In-Reply-To or
// References headers, so the provider files it as a new conversation.
func (m *Mailbox) ReplyToEmail(ctx context.Context, messageID, body string) (SendResult, error) {
	original, err := m.client.GetMessageHeaders(ctx, messageID)
	if err != nil {
		return SendResult{}, err
	}

	to, _ := original.Header("From")
	subject, hasSubject := original.Header("Subject")
	if to == "" || !hasSubject {
		return SendResult{}, apperr.Newf(apperr.KindMissingHeader, "", "could not determine recipient or subject")
	}

	return m.SendEmail(ctx, to, replySubject(subject), body)
}
