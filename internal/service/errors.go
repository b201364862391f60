package service

import (
	"errors"
	"fmt"
	"strings"
)

// Errors shared by every service. Handlers map them to status codes.
var (
	ErrValidationFailed = errors.New("validation failed")
	ErrForbidden        = errors.New("forbidden")
)

// invalid wraps ErrValidationFailed with a readable reason.
func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidationFailed, fmt.Sprintf(format, args...))
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
