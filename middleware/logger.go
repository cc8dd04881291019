package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	logger           *zap.Logger
	accessLogChannel chan *AccessLog
)

// AccessLog is one structured access-log entry.
type AccessLog struct {
	Time       time.Time `json:"time"`
	Method     string    `json:"method"`
	Path       string    `json:"path"`
	Query      string    `json:"query,omitempty"`
	IP         string    `json:"ip"`
	UserAgent  string    `json:"user_agent,omitempty"`
	StatusCode int       `json:"status_code"`
	Latency    int64     `json:"latency_ms"`
	UserID     string    `json:"user_id,omitempty"`
	RequestID  string    `json:"request_id,omitempty"`
	Error      string    `json:"error,omitempty"`
}

// InitLogger builds the zap logger: colored console output in debug
// mode, JSON in production.
func InitLogger(mode string) error {
	var err error
	var zapConfig zap.Config

	if mode == "debug" || mode == "" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
		zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	logger, err = zapConfig.Build()
	if err != nil {
		return err
	}

	accessLogChannel = make(chan *AccessLog, 1000)
	go startLogWorkers()

	return nil
}

// startLogWorkers drains the access-log queue off the request path.
func startLogWorkers() {
	workerCount := 3

	for i := 0; i < workerCount; i++ {
		go func() {
			for accessLog := range accessLogChannel {
				logger.Info("access_log",
					zap.String("method", accessLog.Method),
					zap.String("path", accessLog.Path),
					zap.String("query", accessLog.Query),
					zap.String("ip", accessLog.IP),
					zap.String("user_agent", accessLog.UserAgent),
					zap.Int("status_code", accessLog.StatusCode),
					zap.Int64("latency_ms", accessLog.Latency),
					zap.String("user_id", accessLog.UserID),
					zap.String("request_id", accessLog.RequestID),
					zap.String("error", accessLog.Error),
				)
			}
		}()
	}
}

// Logger returns the access-log middleware.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		requestID := c.GetHeader("X-Request-ID")
		if requestID == "" {
			requestID = generateRequestID()
		}
		c.Set("request_id", requestID)

		c.Next()

		accessLog := &AccessLog{
			Time:       start,
			Method:     c.Request.Method,
			Path:       c.Request.URL.Path,
			Query:      c.Request.URL.RawQuery,
			IP:         c.ClientIP(),
			UserAgent:  c.Request.UserAgent(),
			StatusCode: c.Writer.Status(),
			Latency:    time.Since(start).Milliseconds(),
			UserID:     c.GetString("user_id"),
			RequestID:  requestID,
		}
		if len(c.Errors) > 0 {
			accessLog.Error = c.Errors.String()
		}

		// Queue full means drop; requests never block on logging.
		select {
		case accessLogChannel <- accessLog:
		default:
		}

		c.Header("X-Request-ID", requestID)
	}
}

// generateRequestID builds a timestamped random id.
func generateRequestID() string {
	b := make([]byte, 4)
	rand.Read(b)
	return time.Now().Format("20060102150405") + "-" + hex.EncodeToString(b)
}

// AppLogger exposes the shared zap logger to the rest of the app.
func AppLogger() *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

// FlushLogger flushes buffered log entries.
func FlushLogger() {
	if logger != nil {
		_ = logger.Sync()
	}
}
