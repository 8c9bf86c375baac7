package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"gmail-analytics/internal/credential"
	"gmail-analytics/internal/mailbox"
	"gmail-analytics/pkg/logger"
	"gmail-analytics/pkg/metrics"
	"gmail-analytics/pkg/trace"
)

const (
	ctxKeySessionID  = "session_id"
	ctxKeyCredential = "credential"
)

// TraceMiddleware puts a trace id on the request context and echoes it in the response.
func TraceMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		traceID := trace.FromHeader(c.GetHeader(trace.HeaderName()), c.GetHeader("X-Request-ID"))
		c.Request = c.Request.WithContext(trace.WithContext(c.Request.Context(), traceID))
		c.Header(trace.HeaderName(), traceID)
		c.Next()
	}
}

// RequestLogger logs one line per request and records its latency.
func RequestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		metrics.RecordHTTPRequestDuration(c.Request.Method, path, strconv.Itoa(status), latency)

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", latency),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.Last().Error()))
		}

		l := logger.WithTrace(c.Request.Context(), log)
		switch {
		case status >= 500:
			l.Error("Request failed", fields...)
		case status >= 400:
			l.Warn("Request rejected", fields...)
		default:
			l.Info("Request handled", fields...)
		}
	}
}

// CredentialMiddleware resolves the session's credential, refreshing it if needed.
// Any failure answers 401.
func CredentialMiddleware(sessions *SessionManager, store *credential.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		sid := sessions.SessionID(c)
		cred, err := store.Resolve(c.Request.Context(), sid)
		if err != nil {
			abortWithStatus(c, http.StatusUnauthorized, "Invalid credentials: ", err)
			return
		}

		c.Set(ctxKeySessionID, sid)
		c.Set(ctxKeyCredential, cred)
		c.Next()
	}
}

// openMailbox binds a mailbox to the credential resolved for this request.
func openMailbox(c *gin.Context, factory mailbox.ClientFactory) (*mailbox.Mailbox, mailbox.Client, error) {
	cred := c.MustGet(ctxKeyCredential).(credential.Credential)
	client, err := factory.NewClient(c.Request.Context(), cred)
	if err != nil {
		return nil, nil, err
	}
	return mailbox.New(client), client, nil
}

// AllowRequestedPreflight echoes a preflight's requested method and headers once the
// CORS layer has accepted its origin, so every method and header is allowed.
// Must run before cors.New.
func AllowRequestedPreflight() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodOptions || c.GetHeader("Access-Control-Request-Method") == "" {
			c.Next()
			return
		}

		w := c.Writer
		c.Writer = &preflightWriter{ResponseWriter: w, req: c.Request}
		defer func() { c.Writer = w }()
		c.Next()
	}
}

type preflightWriter struct {
	gin.ResponseWriter
	req *http.Request
}

func (w *preflightWriter) WriteHeaderNow() {
	w.allowRequested()
	w.ResponseWriter.WriteHeaderNow()
}

func (w *preflightWriter) WriteHeader(code int) {
	w.allowRequested()
	w.ResponseWriter.WriteHeader(code)
}

func (w *preflightWriter) allowRequested() {
	h := w.Header()
	if w.Written() || h.Get("Access-Control-Allow-Origin") == "" {
		return
	}
	h.Set("Access-Control-Allow-Methods", w.req.Header.Get("Access-Control-Request-Method"))
	if headers := w.req.Header.Get("Access-Control-Request-Headers"); headers != "" {
		h.Set("Access-Control-Allow-Headers", headers)
	}
}
