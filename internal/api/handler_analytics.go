package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gmail-analytics/internal/mailbox"
)

const defaultDays = 30

var errDaysNotInteger = errors.New("query parameter days must be an integer")

type AnalyticsHandler struct {
	factory mailbox.ClientFactory
	logger  *zap.Logger
}

func NewAnalyticsHandler(factory mailbox.ClientFactory, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{
		factory: factory,
		logger:  logger,
	}
}

// days accepts any integer. Negative or very large windows are passed through.
func parseDays(c *gin.Context) (int, error) {
	raw, ok := c.GetQuery("days")
	if !ok {
		return defaultDays, nil
	}
	days, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errDaysNotInteger
	}
	return days, nil
}

// VerifyToken handles GET /api/verify-token
func (h *AnalyticsHandler) VerifyToken(c *gin.Context) {
	_, client, err := openMailbox(c, h.factory)
	if err != nil {
		abortWithStatus(c, http.StatusUnauthorized, "Token verification failed: ", err)
		return
	}

	profile, err := client.GetProfile(c.Request.Context())
	if err != nil {
		abortWithStatus(c, http.StatusUnauthorized, "Token verification failed: ", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"valid":          true,
		"email":          profile.EmailAddress,
		"messages_total": profile.MessagesTotal,
		"threads_total":  profile.ThreadsTotal,
	})
}

// GetAnalytics handles GET /api/analytics
func (h *AnalyticsHandler) GetAnalytics(c *gin.Context) {
	days, err := parseDays(c)
	if err != nil {
		abortWithStatus(c, http.StatusBadRequest, "", err)
		return
	}

	mb, _, err := openMailbox(c, h.factory)
	if err != nil {
		abortWithError(c, "Error fetching analytics: ", err)
		return
	}

	report, err := mb.GetEmailMetrics(c.Request.Context(), days)
	if err != nil {
		abortWithError(c, "Error fetching analytics: ", err)
		return
	}

	c.JSON(http.StatusOK, report)
}

// GetTopSenders handles GET /api/analytics/top-senders
func (h *AnalyticsHandler) GetTopSenders(c *gin.Context) {
	days, err := parseDays(c)
	if err != nil {
		abortWithStatus(c, http.StatusBadRequest, "", err)
		return
	}

	mb, _, err := openMailbox(c, h.factory)
	if err != nil {
		abortWithError(c, "Error fetching analytics: ", err)
		return
	}

	top, err := mb.GetTopSenders(c.Request.Context(), days)
	if err != nil {
		abortWithError(c, "Error fetching analytics: ", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"top_senders": top})
}

// GetTimeDistribution handles GET /api/analytics/time-distribution
func (h *AnalyticsHandler) GetTimeDistribution(c *gin.Context) {
	days, err := parseDays(c)
	if err != nil {
		abortWithStatus(c, http.StatusBadRequest, "", err)
		return
	}

	mb, _, err := openMailbox(c, h.factory)
	if err != nil {
		abortWithError(c, "Error fetching analytics: ", err)
		return
	}

	dist, err := mb.GetTimeDistribution(c.Request.Context(), days)
	if err != nil {
		abortWithError(c, "Error fetching analytics: ", err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"time_distribution": dist})
}
