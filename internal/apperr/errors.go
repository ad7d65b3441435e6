// Package apperr is the error taxonomy shared by services and handlers.
//
// Errors are marked with one of the sentinels below and carry a hint that is
// safe to show to API callers. Handlers map the mark to an HTTP status.
package apperr

import (
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"gorm.io/gorm"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("resource not found")
	ErrDatabase   = errors.New("database error")
	ErrSystem     = errors.New("system error")

	statusCodes = []struct {
		ref    error
		status int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrDatabase, http.StatusInternalServerError},
		{ErrSystem, http.StatusInternalServerError},
	}
)

// Builder is a fluent helper; Mark must be the last call in the chain
type Builder struct {
	err error
}

// New starts a chain from a message
func New(msg string) *Builder {
	return &Builder{err: errors.New(msg)}
}

// Newf starts a chain from a formatted message
func Newf(format string, args ...any) *Builder {
	return &Builder{err: errors.Newf(format, args...)}
}

// WithError starts a chain from an existing error
func WithError(err error) *Builder {
	return &Builder{err: err}
}

// WithMessage prefixes the internal error message
func (b *Builder) WithMessage(msg string) *Builder {
	b.err = errors.WithMessage(b.err, msg)
	return b
}

// WithHint attaches the caller-facing message
func (b *Builder) WithHint(hint string) *Builder {
	b.err = errors.WithHint(b.err, hint)
	return b
}

func (b *Builder) WithHintf(format string, args ...any) *Builder {
	b.err = errors.WithHintf(b.err, format, args...)
	return b
}

// Mark tags the error with a sentinel and returns it
func (b *Builder) Mark(reference error) error {
	return errors.Mark(b.err, reference)
}

// Validation is shorthand for a validation error whose message is also the hint
func Validation(msg string) error {
	return New(msg).WithHint(msg).Mark(ErrValidation)
}

// Validationf is the formatted form of Validation
func Validationf(format string, args ...any) error {
	return Newf(format, args...).WithHintf(format, args...).Mark(ErrValidation)
}

// FromRepo classifies a repository error: a missing record becomes
// ErrNotFound, anything else ErrDatabase.
func FromRepo(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return WithError(err).WithHintf("%s not found", what).Mark(ErrNotFound)
	}
	return WithError(err).WithHintf("failed to access %s", what).Mark(ErrDatabase)
}

func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// HTTPStatus maps a marked error to a response status; unmarked errors are 500
func HTTPStatus(err error) int {
	for _, sc := range statusCodes {
		if errors.Is(err, sc.ref) {
			return sc.status
		}
	}
	return http.StatusInternalServerError
}

// Hint returns the first non-empty hint, or a generic message
func Hint(err error) string {
	for _, h := range errors.GetAllHints(err) {
		if h = strings.TrimSpace(h); h != "" {
			return h
		}
	}
	return "An unexpected error occurred"
}
