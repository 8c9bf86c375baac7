package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	contractsmq "gmail-analytics/contracts/mq"
	"gmail-analytics/internal/mailbox"
	"gmail-analytics/pkg/logger"
)

// EventPublisher publishes domain events. Failures never fail the request.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

type MailHandler struct {
	factory   mailbox.ClientFactory
	publisher EventPublisher
	logger    *zap.Logger
}

func NewMailHandler(factory mailbox.ClientFactory, publisher EventPublisher, logger *zap.Logger) *MailHandler {
	return &MailHandler{
		factory:   factory,
		publisher: publisher,
		logger:    logger,
	}
}

type sendEmailRequest struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type replyEmailRequest struct {
	MessageID string `json:"message_id"`
	Body      string `json:"body"`
}

// SendEmail handles POST /api/send-email
func (h *MailHandler) SendEmail(c *gin.Context) {
	var req sendEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithStatus(c, http.StatusBadRequest, "invalid request: ", err)
		return
	}

	mb, _, err := openMailbox(c, h.factory)
	if err != nil {
		abortWithError(c, "Error sending email: ", err)
		return
	}

	res, err := mb.SendEmail(c.Request.Context(), req.To, req.Subject, req.Body)
	if err != nil {
		abortWithError(c, "Error sending email: ", err)
		return
	}

	h.publishSent(c.Request.Context(), contractsmq.MailSentPayload{
		MessageID: res.MessageID,
		Kind:      contractsmq.MailKindSend,
		SentAt:    time.Now().UTC(),
	})
	c.JSON(http.StatusOK, res)
}

// ReplyEmail handles POST /api/reply-email
func (h *MailHandler) ReplyEmail(c *gin.Context) {
	var req replyEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithStatus(c, http.StatusBadRequest, "invalid request: ", err)
		return
	}

	mb, _, err := openMailbox(c, h.factory)
	if err != nil {
		abortWithError(c, "Error replying to email: ", err)
		return
	}

	res, err := mb.ReplyToEmail(c.Request.Context(), req.MessageID, req.Body)
	if err != nil {
		abortWithError(c, "Error replying to email: ", err)
		return
	}

	h.publishSent(c.Request.Context(), contractsmq.MailSentPayload{
		MessageID:        res.MessageID,
		Kind:             contractsmq.MailKindReply,
		ReplyToMessageID: req.MessageID,
		SentAt:           time.Now().UTC(),
	})
	c.JSON(http.StatusOK, res)
}

func (h *MailHandler) publishSent(ctx context.Context, payload contractsmq.MailSentPayload) {
	if err := h.publisher.Publish(ctx, contractsmq.RoutingKeyMailSent, payload); err != nil {
		logger.WithTrace(ctx, h.logger).Warn("Failed to publish mail.sent event",
			zap.String("message_id", payload.MessageID),
			zap.Error(err),
		)
	}
}
