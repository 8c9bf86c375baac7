package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gmail-analytics/internal/credential"
)

type Router struct {
	Engine *gin.Engine
}

func NewRouter(
	authHandler *AuthHandler,
	analyticsHandler *AnalyticsHandler,
	mailHandler *MailHandler,
	sessions *SessionManager,
	store *credential.Store,
	frontendOrigin string,
	logger *zap.Logger,
) *Router {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), RequestLogger(logger))

	// 只允许前端来源，带 cookie；预检请求的方法和头原样放行
	r.Use(AllowRequestedPreflight(), cors.New(cors.Config{
		AllowOrigins:     []string{frontendOrigin},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Trace-ID", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Trace-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "Welcome to Gmail Analytics API"})
	})

	// Health endpoints
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.HEAD("/healthz", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Public
	auth := r.Group("/auth")
	{
		auth.GET("/google", authHandler.Login)
		auth.GET("/google/callback", authHandler.Callback)
		auth.POST("/logout", authHandler.Logout)
	}

	// Protected
	api := r.Group("/api")
	api.Use(CredentialMiddleware(sessions, store))
	{
		api.GET("/verify-token", analyticsHandler.VerifyToken)
		api.GET("/analytics", analyticsHandler.GetAnalytics)
		api.GET("/analytics/top-senders", analyticsHandler.GetTopSenders)
		api.GET("/analytics/time-distribution", analyticsHandler.GetTimeDistribution)
		api.POST("/send-email", mailHandler.SendEmail)
		api.POST("/reply-email", mailHandler.ReplyEmail)
	}

	return &Router{Engine: r}
}
