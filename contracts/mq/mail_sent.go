package mq

import "time"

const RoutingKeyMailSent = "mail.sent"

const (
	MailKindSend  = "send"
	MailKindReply = "reply"
)

// MailSentPayload 发信/回复成功后发布的事件 payload
type MailSentPayload struct {
	MessageID        string    `json:"message_id"`
	Kind             string    `json:"kind"`
	ReplyToMessageID string    `json:"reply_to_message_id,omitempty"`
	SentAt           time.Time `json:"sent_at"`
}
