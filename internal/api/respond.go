package api

import (
	"io"
	"strings"

	"github.com/gin-gonic/gin"

	apperrors "github.com/ZanzyTHEbar/interview-scoring-engine/internal/errors"
	"github.com/ZanzyTHEbar/interview-scoring-engine/internal/security"
)

// bindJSON decodes the body into v and runs its validate tags. It writes the
// error response itself and reports whether the handler may continue.
func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		apperrors.Abort(c, security.BodyError(err))
		return false
	}
	if err := apperrors.ValidateStruct(v); err != nil {
		apperrors.Abort(c, err)
		return false
	}
	return true
}

// readBody returns the raw body for payloads parsed with gjson
func readBody(c *gin.Context) ([]byte, bool) {
	if c.Request.Body == nil {
		apperrors.Abort(c, apperrors.NewValidationError("request body is required"))
		return nil, false
	}
	data, err := io.ReadAll(c.Request.Body)
	if err != nil {
		apperrors.Abort(c, security.BodyError(err))
		return nil, false
	}
	if len(strings.TrimSpace(string(data))) == 0 {
		apperrors.Abort(c, apperrors.NewValidationError("request body is required"))
		return nil, false
	}
	return data, true
}

// pathID returns the trimmed :id path parameter, aborting when it is blank
func pathID(c *gin.Context) (string, bool) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		apperrors.Abort(c, apperrors.NewValidationError("id is required"))
		return "", false
	}
	return id, true
}
