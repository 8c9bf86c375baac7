package mailbox

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/emersion/go-message/mail"

	"gmail-analytics/internal/apperr"
)

type fakeClient struct {
	ids       []string
	metas     map[string]MessageMetadata
	listErr   error
	getErrFor string
	sendErr   error

	gotQuery string
	gotLimit int64
	sentRaw  [][]byte
}

func (f *fakeClient) ListMessageIDs(_ context.Context, query string, limit int64) ([]string, error) {
	f.gotQuery, f.gotLimit = query, limit
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.ids, nil
}

func (f *fakeClient) GetMessageHeaders(_ context.Context, id string) (MessageMetadata, error) {
	if id == f.getErrFor {
		return MessageMetadata{}, apperr.New(apperr.KindRemoteAPI, "get message "+id, errors.New("googleapi: Error 500"))
	}
	meta, ok := f.metas[id]
	if !ok {
		return MessageMetadata{}, apperr.New(apperr.KindRemoteAPI, "get message "+id, errors.New("googleapi: Error 404: Not Found"))
	}
	return meta, nil
}

func (f *fakeClient) SendRawMessage(_ context.Context, raw []byte) (string, error) {
	if f.sendErr != nil {
		return "", f.sendErr
	}
	f.sentRaw = append(f.sentRaw, raw)
	return fmt.Sprintf("sent-%d", len(f.sentRaw)), nil
}

func (f *fakeClient) GetProfile(context.Context) (Profile, error) {
	return Profile{EmailAddress: "me@example.com"}, nil
}

func meta(id, from, subject, date string, size int64) MessageMetadata {
	h := map[string]string{}
	if from != "" {
		h["From"] = from
	}
	if subject != "" {
		h["Subject"] = subject
	}
	if date != "" {
		h["Date"] = date
	}
	return MessageMetadata{ID: id, Headers: h, SizeEstimate: size}
}

func newTestMailbox(c Client) *Mailbox {
	m := New(c)
	m.now = func() time.Time { return time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC) }
	return m
}

func TestWindowQuery(t *testing.T) {
	now := time.Date(2024, 3, 31, 10, 0, 0, 0, time.UTC)
	if got, want := windowQuery(now, 30), "after:2024/03/01 before:2024/03/31"; got != want {
		t.Fatalf("windowQuery = %q, want %q", got, want)
	}
}

func TestGetEmailMetrics(t *testing.T) {
	client := &fakeClient{
		ids: []string{"a", "b", "c", "d"},
		metas: map[string]MessageMetadata{
			"a": meta("a", "alice@example.com", "Hello", "Tue, 5 Mar 2024 14:30:00 +0000", 1024),
			"b": meta("b", "alice@example.com", "Hello", "Tue, 05 Mar 2024 09:05:00 -0800", 2*mebibyte),
			"c": meta("c", "bob@example.com", "Invoice", "Tue, 5 Mar 2024 14:30:00 +0000 (UTC)", 6*mebibyte),
			"d": meta("d", "", "", "", 0),
		},
	}

	report, err := newTestMailbox(client).GetEmailMetrics(context.Background(), 30)
	if err != nil {
		t.Fatal(err)
	}

	if client.gotLimit != maxListResults {
		t.Errorf("list limit = %d, want %d", client.gotLimit, maxListResults)
	}
	if client.gotQuery != "after:2024/03/01 before:2024/03/31" {
		t.Errorf("query = %q", client.gotQuery)
	}
	if report.TotalEmails != 4 {
		t.Errorf("TotalEmails = %d, want 4", report.TotalEmails)
	}
	if report.Senders["alice@example.com"] != 2 || report.Senders["bob@example.com"] != 1 || len(report.Senders) != 2 {
		t.Errorf("Senders = %v", report.Senders)
	}
	if report.Subjects["Hello"] != 2 || report.Subjects["Invoice"] != 1 || len(report.Subjects) != 2 {
		t.Errorf("Subjects = %v", report.Subjects)
	}
	// c has a trailing comment that the fixed layout rejects: counted in total, not in hours.
	if len(report.TimeDistribution) != 2 || report.TimeDistribution[14] != 1 || report.TimeDistribution[9] != 1 {
		t.Errorf("TimeDistribution = %v", report.TimeDistribution)
	}
	want := SizeDistribution{Small: 2, Medium: 1, Large: 1}
	if report.EmailSizeDistribution != want {
		t.Errorf("EmailSizeDistribution = %+v, want %+v", report.EmailSizeDistribution, want)
	}
}

func TestGetEmailMetricsFailsWithoutPartialReport(t *testing.T) {
	client := &fakeClient{
		ids:       []string{"a", "b"},
		metas:     map[string]MessageMetadata{"a": meta("a", "x", "y", "", 1)},
		getErrFor: "b",
	}

	report, err := newTestMailbox(client).GetEmailMetrics(context.Background(), 7)
	if report != nil {
		t.Fatalf("expected no report, got %+v", report)
	}
	if !apperr.Is(err, apperr.KindRemoteAPI) {
		t.Fatalf("expected remote api error, got %v", err)
	}

	client = &fakeClient{listErr: apperr.New(apperr.KindRemoteAPI, "list messages", errors.New("quota"))}
	if _, err := newTestMailbox(client).GetEmailMetrics(context.Background(), 7); !apperr.Is(err, apperr.KindRemoteAPI) {
		t.Fatalf("expected remote api error, got %v", err)
	}
}

func TestSizeBucketBoundaries(t *testing.T) {
	cases := []struct {
		size int64
		want sizeBucket
	}{
		{0, bucketSmall},
		{1048575, bucketSmall},
		{1048576, bucketMedium},
		{5242880, bucketMedium},
		{5242881, bucketLarge},
	}
	for _, tc := range cases {
		if got := bucketOf(tc.size); got != tc.want {
			t.Errorf("bucketOf(%d) = %v, want %v", tc.size, got, tc.want)
		}
	}
}

func TestTopSenders(t *testing.T) {
	client := &fakeClient{metas: map[string]MessageMetadata{}}
	// s00 sends 1 message, s01 sends 2, ... s11 sends 12; plus a tie at 12.
	n := 0
	add := func(sender string, times int) {
		for i := 0; i < times; i++ {
			id := fmt.Sprintf("m%d", n)
			n++
			client.ids = append(client.ids, id)
			client.metas[id] = meta(id, sender, "s", "", 1)
		}
	}
	for i := 0; i < 12; i++ {
		add(fmt.Sprintf("s%02d", i), i+1)
	}
	add("a-tie", 12)

	top, err := newTestMailbox(client).GetTopSenders(context.Background(), 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(top) != topSendersLimit {
		t.Fatalf("len = %d, want %d", len(top), topSendersLimit)
	}
	if top[0] != (SenderCount{Sender: "a-tie", Count: 12}) || top[1] != (SenderCount{Sender: "s11", Count: 12}) {
		t.Fatalf("tie not broken by sender name: %v", top[:2])
	}
	for i := 1; i < len(top); i++ {
		if top[i].Count > top[i-1].Count {
			t.Fatalf("not sorted by count: %v", top)
		}
	}
}

func TestGetTimeDistribution(t *testing.T) {
	client := &fakeClient{
		ids: []string{"a", "b"},
		metas: map[string]MessageMetadata{
			"a": meta("a", "x", "y", "Fri, 1 Mar 2024 23:59:59 +0100", 1),
			"b": meta("b", "x", "y", "not a date", 1),
		},
	}
	dist, err := newTestMailbox(client).GetTimeDistribution(context.Background(), 30)
	if err != nil {
		t.Fatal(err)
	}
	if len(dist) != 1 || dist[23] != 1 {
		t.Fatalf("dist = %v", dist)
	}
}

func readSent(t *testing.T, raw []byte) (to, subject, body string) {
	t.Helper()
	mr, err := mail.CreateReader(bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("parse sent message: %v", err)
	}
	to = mr.Header.Get("To")
	subject, err = mr.Header.Subject()
	if err != nil {
		t.Fatal(err)
	}
	part, err := mr.NextPart()
	if err != nil {
		t.Fatal(err)
	}
	b, err := io.ReadAll(part.Body)
	if err != nil {
		t.Fatal(err)
	}
	return to, subject, string(b)
}

func TestSendEmail(t *testing.T) {
	client := &fakeClient{}
	res, err := newTestMailbox(client).SendEmail(context.Background(), "bob@example.com", "Quarterly numbers", "See attached. Thanks")
	if err != nil {
		t.Fatal(err)
	}
	if res != (SendResult{MessageID: "sent-1", Status: "sent"}) {
		t.Fatalf("result = %+v", res)
	}
	to, subject, body := readSent(t, client.sentRaw[0])
	if to != "bob@example.com" || subject != "Quarterly numbers" || body != "See attached. Thanks" {
		t.Fatalf("sent to=%q subject=%q body=%q", to, subject, body)
	}
}

func TestSendEmailEmptyRecipientIsForwarded(t *testing.T) {
	client := &fakeClient{}
	res, err := newTestMailbox(client).SendEmail(context.Background(), "", "s", "b")
	if err != nil {
		t.Fatalf("empty recipient rejected locally: %v", err)
	}
	if res.Status != StatusSent || len(client.sentRaw) != 1 {
		t.Fatalf("message not forwarded: %+v", res)
	}
}

func TestSendEmailFailure(t *testing.T) {
	cause := apperr.New(apperr.KindRemoteAPI, "send message", errors.New("googleapi: Error 400: Invalid To header"))
	_, err := newTestMailbox(&fakeClient{sendErr: cause}).SendEmail(context.Background(), "x", "s", "b")
	if !apperr.Is(err, apperr.KindSendFailed) {
		t.Fatalf("expected send failure, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatal("send failure must wrap the transport error")
	}
}

func TestReplyToEmail(t *testing.T) {
	cases := []struct {
		original string
		want     string
	}{
		{"Hello", "Re: Hello"},
		{"Re: Hello", "Re: Hello"},
		{"RE: Hello", "Re: RE: Hello"},
		{"re: Hello", "Re: re: Hello"},
	}
	for _, tc := range cases {
		client := &fakeClient{metas: map[string]MessageMetadata{
			"orig": meta("orig", "Alice <alice@example.com>", tc.original, "", 1),
		}}
		res, err := newTestMailbox(client).ReplyToEmail(context.Background(), "orig", "Thanks!")
		if err != nil {
			t.Fatalf("%q: %v", tc.original, err)
		}
		if res.Status != StatusSent {
			t.Fatalf("%q: status %q", tc.original, res.Status)
		}
		to, subject, body := readSent(t, client.sentRaw[0])
		if subject != tc.want {
			t.Errorf("reply to %q: subject %q, want %q", tc.original, subject, tc.want)
		}
		if to != "Alice <alice@example.com>" || body != "Thanks!" {
			t.Errorf("reply to=%q body=%q", to, body)
		}
	}
}

func TestReplyToEmailMissingHeaders(t *testing.T) {
	cases := map[string]MessageMetadata{
		"no from":    meta("m", "", "Hello", "", 1),
		"no subject": meta("m", "alice@example.com", "", "", 1),
	}
	for name, m := range cases {
		client := &fakeClient{metas: map[string]MessageMetadata{"m": m}}
		_, err := newTestMailbox(client).ReplyToEmail(context.Background(), "m", "body")
		if !apperr.Is(err, apperr.KindMissingHeader) {
			t.Errorf("%s: expected missing header, got %v", name, err)
		}
		if len(client.sentRaw) != 0 {
			t.Errorf("%s: nothing should be sent", name)
		}
	}
}

func TestReplyToUnknownMessage(t *testing.T) {
	_, err := newTestMailbox(&fakeClient{}).ReplyToEmail(context.Background(), "missing", "body")
	if !apperr.Is(err, apperr.KindRemoteAPI) {
		t.Fatalf("expected remote api error, got %v", err)
	}
}

func TestParseHour(t *testing.T) {
	tests := []struct {
		date string
		hour int
		ok   bool
	}{
		{"Tue, 5 Mar 2024 14:30:00 +0000", 14, true},
		{"Tue, 05 Mar 2024 09:30:00 -0800", 9, true},
		{"Tue, 5 Mar 2024 9:5:7 +0100", 9, true},
		{"Tue, 5 Mar 2024 23:59:59 +05:30", 23, true},
		{"Tue, 5 Mar 2024 14:30:00 Z", 14, true},
		{"Tue, 5 Mar 2024 14:30:00 +0000 (UTC)", 0, false},
		{"Tue, 5 Mar 2024 14:30:00 GMT", 0, false},
		{"5 Mar 2024 14:30:00 +0000", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		hour, ok := parseHour(tt.date)
		if ok != tt.ok || hour != tt.hour {
			t.Errorf("parseHour(%q) = %d, %v; want %d, %v", tt.date, hour, ok, tt.hour, tt.ok)
		}
	}
}
