package security

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
)

// RequestIDHeader carries the request id in both directions
const RequestIDHeader = "X-Request-ID"

// Config holds request hardening settings
type Config struct {
	MaxAnswerLength int           // runes per free-text answer
	MaxBodyBytes    int64         // request body cap
	RequestTimeout  time.Duration // deadline placed on the request context
}

// DefaultConfig returns secure defaults
func DefaultConfig() Config {
	return Config{
		MaxAnswerLength: 4000,
		MaxBodyBytes:    1 << 20,
		RequestTimeout:  30 * time.Second,
	}
}

// Guard validates request shape and candidate-supplied text
type Guard struct {
	config Config
}

// NewGuard creates a Guard, filling unset limits from DefaultConfig
func NewGuard(config Config) *Guard {
	def := DefaultConfig()
	if config.MaxAnswerLength <= 0 {
		config.MaxAnswerLength = def.MaxAnswerLength
	}
	if config.MaxBodyBytes <= 0 {
		config.MaxBodyBytes = def.MaxBodyBytes
	}
	if config.RequestTimeout <= 0 {
		config.RequestTimeout = def.RequestTimeout
	}
	return &Guard{config: config}
}

// Config returns the active limits
func (g *Guard) Config() Config {
	return g.config
}

// ValidateAnswer rejects free text that cannot be scored safely. Accepted
// answers are scored exactly as received.
func (g *Guard) ValidateAnswer(field, answer string) error {
	if !utf8.ValidString(answer) {
		return apperrors.NewValidationErrorWithMap(map[string]string{field: "contains invalid UTF-8 encoding"})
	}
	if strings.ContainsRune(answer, 0) {
		return apperrors.NewValidationErrorWithMap(map[string]string{field: "contains invalid characters"})
	}
	if n := utf8.RuneCountInString(answer); n > g.config.MaxAnswerLength {
		return apperrors.NewValidationErrorWithMap(map[string]string{
			field: "exceeds maximum length of " + strconv.Itoa(g.config.MaxAnswerLength) + " characters",
		})
	}
	return nil
}

// ValidateContentType only lets JSON bodies through
func (g *Guard) ValidateContentType(c *gin.Context) {
	if c.Request.ContentLength == 0 || c.Request.Method == http.MethodGet {
		c.Next()
		return
	}

	contentType := strings.ToLower(c.GetHeader("Content-Type"))
	if contentType != "" && !strings.Contains(contentType, "application/json") {
		err := apperrors.NewValidationError("unsupported content type", contentType)
		err.HTTPStatus = http.StatusUnsupportedMediaType
		apperrors.Abort(c, err)
		return
	}

	c.Next()
}

// LimitBody caps the number of bytes a handler may read from the body
func (g *Guard) LimitBody(c *gin.Context) {
	if c.Request.Body != nil {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, g.config.MaxBodyBytes)
	}
	c.Next()
}

// RequestTimeout places a deadline on the request context
func (g *Guard) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), g.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(g.config.RequestTimeout.Seconds())))

	c.Next()
}

// BodyError maps a JSON binding failure to a client error, reporting an
// oversized body as 413
func BodyError(err error) *apperrors.AppError {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		appErr := apperrors.NewValidationError("request body too large", tooLarge.Limit)
		appErr.HTTPStatus = http.StatusRequestEntityTooLarge
		return appErr
	}
	return apperrors.NewValidationError("invalid request body", err.Error())
}

// RequestID propagates the caller's X-Request-ID or assigns a new one
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
			c.Request.Header.Set(RequestIDHeader, id)
		}
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}
