// Package handler holds the Gin HTTP handlers. Handlers translate between
// the wire (binding, cookies, status codes) and the services; business
// rules live one layer down.
package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/response"
)

// failDomain maps a domain error onto the envelope's status and code.
func failDomain(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		response.Fail(c, http.StatusNotFound, response.ErrNotFound)
	case errors.Is(err, domain.ErrUnauthenticated):
		response.Fail(c, http.StatusUnauthorized, response.ErrUnauthenticated)
	case errors.Is(err, domain.ErrNotRegistered):
		response.Fail(c, http.StatusForbidden, response.ErrNotRegistered)
	case errors.Is(err, domain.ErrInvalidJoinCode):
		response.Fail(c, http.StatusForbidden, response.ErrInvalidJoinCode)
	case errors.Is(err, domain.ErrEventFinished):
		response.Fail(c, http.StatusGone, response.ErrEventFinished)
	case errors.Is(err, domain.ErrInvalidState):
		response.Fail(c, http.StatusConflict, response.ErrInvalidState)
	case errors.Is(err, domain.ErrQuestionNotActive):
		response.Fail(c, http.StatusConflict, response.ErrQuestionNotActive)
	case errors.Is(err, domain.ErrDuplicateSubmission):
		response.Fail(c, http.StatusConflict, response.ErrDuplicateSubmission)
	case errors.Is(err, domain.ErrEventStarted):
		response.Fail(c, http.StatusConflict, response.ErrEventStarted)
	case errors.Is(err, domain.ErrInvalidQuestion):
		response.Fail(c, http.StatusUnprocessableEntity, response.ErrValidation)
	case errors.Is(err, domain.ErrInvalidCredentials):
		response.Fail(c, http.StatusUnauthorized, response.ErrInvalidCredentials)
	case errors.Is(err, domain.ErrLoginLocked):
		response.Fail(c, http.StatusTooManyRequests, response.ErrLoginLocked)
	default:
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
	}
}
