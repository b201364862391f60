package api

import (
	"errors"
	"net/http"

	"cvos/coach-app/internal/assist"
	"cvos/coach-app/internal/service"
	"cvos/coach-app/internal/storage"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

var (
	notFoundErrors = []error{
		service.ErrProfileNotFound,
		service.ErrClientNotFound,
		service.ErrCoachNotFound,
		service.ErrNoClientRecord,
		service.ErrExerciseNotFound,
		service.ErrProgramNotFound,
		service.ErrMesocycleNotFound,
		service.ErrDayNotFound,
	}
	conflictErrors = []error{
		service.ErrUserAlreadyExists,
		service.ErrExerciseExists,
		service.ErrRoleAlreadySelected,
		service.ErrOnboardingCompleted,
		service.ErrOnboardingStepMismatch,
	}
	forbiddenErrors = []error{
		service.ErrForbidden,
		service.ErrOnboardingNotAthlete,
		service.ErrRoleNotSelected,
	}
	badRequestErrors = []error{
		service.ErrValidationFailed,
		service.ErrInvalidResetToken,
		service.ErrNotATemplate,
	}
)

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// statusFor maps a service error to an HTTP status and a client-safe message.
func statusFor(err error) (int, string) {
	switch {
	case isAny(err, badRequestErrors):
		return http.StatusBadRequest, err.Error()
	case isAny(err, notFoundErrors):
		return http.StatusNotFound, err.Error()
	case isAny(err, conflictErrors):
		return http.StatusConflict, err.Error()
	case isAny(err, forbiddenErrors):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrAuthenticationFailed):
		return http.StatusUnauthorized, err.Error()
	case errors.Is(err, storage.ErrNotConfigured), errors.Is(err, assist.ErrNotConfigured):
		return http.StatusServiceUnavailable, err.Error()
	case errors.Is(err, assist.ErrGenerationFailed):
		return http.StatusBadGateway, assist.ErrGenerationFailed.Error()
	default:
		return http.StatusInternalServerError, "An unexpected error occurred"
	}
}

// respondError aborts with the mapped status. Unexpected errors are logged.
func respondError(c *gin.Context, log *zap.Logger, err error) {
	code, msg := statusFor(err)
	if code == http.StatusInternalServerError || code == http.StatusBadGateway {
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("route", c.FullPath()),
			zap.Error(err))
	}
	abortWithError(c, code, msg)
}
