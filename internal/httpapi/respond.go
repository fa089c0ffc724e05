package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tvan04/workflow-management-system-sub001/internal/apperror"
)

type errorBody struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respondData(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{"data": data})
}

func statusFor(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return http.StatusBadRequest
	case apperror.KindNotFound:
		return http.StatusNotFound
	case apperror.KindAuthorization:
		return http.StatusForbidden
	case apperror.KindInvalidState:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// errorPayload maps err onto an HTTP status and a client-safe body.
func (h *Handler) errorPayload(c *gin.Context, err error) (int, errorBody) {
	kind := apperror.KindOf(err)
	status := statusFor(kind)

	if status == http.StatusInternalServerError {
		h.log.WithError(err).WithField("path", c.Request.URL.Path).Error("❌ request failed")
		return status, errorBody{Code: string(apperror.KindInternal), Message: "internal server error"}
	}

	var appErr *apperror.Error
	body := errorBody{Code: string(kind), Message: err.Error()}
	if errors.As(err, &appErr) {
		body.Message = appErr.Message
		body.Fields = appErr.Fields
	}
	return status, body
}

func (h *Handler) respondError(c *gin.Context, err error) {
	status, body := h.errorPayload(c, err)
	c.AbortWithStatusJSON(status, gin.H{"error": body})
}
