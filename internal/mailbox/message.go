package mailbox

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/emersion/go-message/mail"
)

const replyPrefix = "Re: "

// buildPlainMessage renders a plain-text RFC 2822 message. The recipient is written as given.
func buildPlainMessage(to, subject, body string, date time.Time) ([]byte, error) {
	var h mail.Header
	h.SetDate(date)
	h.Set("To", to)
	h.SetSubject(subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	h.Set("Content-Transfer-Encoding", "quoted-printable")

	var buf bytes.Buffer
	w, err := mail.CreateSingleInlineWriter(&buf, h)
	if err != nil {
		return nil, fmt.Errorf("create message writer: %w", err)
	}
	if _, err := io.WriteString(w, body); err != nil {
		return nil, fmt.Errorf("write message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("close message writer: %w", err)
	}
	return buf.Bytes(), nil
}

// replySubject prefixes "Re: " unless the subject already starts with exactly that.
// The check is case-sensitive: "RE: x" becomes "Re: RE: x".
func replySubject(original string) string {
	if strings.HasPrefix(original, replyPrefix) {
		return original
	}
	return replyPrefix + original
}
