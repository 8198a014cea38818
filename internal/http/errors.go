package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"clinic-api/internal/service"
)

type errorResponse struct {
	Message string `json:"message"`
}

func abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, errorResponse{Message: message})
}

// fail translates service errors to status codes. Anything unknown is logged
// and answered with a generic 500.
func (h *Handler) fail(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		abort(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidPassword):
		abort(c, http.StatusUnauthorized, "Invalid password")
	case errors.Is(err, service.ErrUserNotFound):
		abort(c, http.StatusNotFound, "User not found")
	case errors.Is(err, service.ErrPatientNotFound):
		abort(c, http.StatusNotFound, "Patient not found")
	case errors.Is(err, service.ErrConsultationNotFound):
		abort(c, http.StatusNotFound, "Consultation not found")
	case errors.Is(err, service.ErrUserAlreadyExists):
		abort(c, http.StatusConflict, "User already exists")
	case errors.Is(err, service.ErrPatientAlreadyExists):
		abort(c, http.StatusConflict, "Patient already exists")
	case errors.Is(err, service.ErrConsultationAlreadyExists):
		abort(c, http.StatusConflict, "Consultation already exists")
	case errors.Is(err, service.ErrStorageDisabled):
		abort(c, http.StatusServiceUnavailable, "Attachment storage is not configured")
	default:
		h.logger.WithError(err).WithField("path", c.FullPath()).Error("request failed")
		abort(c, http.StatusInternalServerError, "Something went wrong")
	}
}
