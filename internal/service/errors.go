// Package service orchestrates the catalog, search, invoice, and user
// operations: authorization, validation, and transaction boundaries live
// here, SQL lives in internal/store.
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrForbidden means the caller is authenticated but lacks the role.
	ErrForbidden = errors.New("admin permission required")

	// ErrInvalidCredentials covers both unknown username and bad password.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrRateLimited is returned when register/login throttling kicks in.
	ErrRateLimited = errors.New("too many requests")
)

// ValidationError carries a field -> message map, rendered by the HTTP
// layer as a 400 response.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func validationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
