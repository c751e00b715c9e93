package engine

import (
	"errors"
	"fmt"

	"github.com/roach88/takeoff/internal/geom"
)

// RuntimeError represents an input the session refused.
//
// Runtime errors include:
//   - Unknown scale: the selected scale id is not in the registry
//   - Invalid scale: a pointer event carried a zoom <= 0
//   - Invalid page: a pointer event carried a page < 1
//   - Invalid event: an Event is missing the data its type needs, or
//     pins a measurement id that is already taken
//
// A refused input leaves the session state unchanged, except that a
// generated id colliding with an existing one discards the gesture.
type RuntimeError struct {
	// Code identifies the error category.
	Code RuntimeErrorCode

	// Message is a human-readable description.
	Message string

	// Details contains additional context.
	Details map[string]string

	// Err is the underlying error, if any.
	Err error
}

// RuntimeErrorCode categorizes runtime errors.
type RuntimeErrorCode string

const (
	// ErrCodeUnknownScale indicates a scale id missing from the registry.
	ErrCodeUnknownScale RuntimeErrorCode = "UNKNOWN_SCALE"

	// ErrCodeInvalidScale indicates a non-positive or non-finite zoom.
	ErrCodeInvalidScale RuntimeErrorCode = "INVALID_SCALE"

	// ErrCodeInvalidPage indicates a page number below 1.
	ErrCodeInvalidPage RuntimeErrorCode = "INVALID_PAGE"

	// ErrCodeInvalidEvent indicates a malformed Event.
	ErrCodeInvalidEvent RuntimeErrorCode = "INVALID_EVENT"
)

// Error implements the error interface.
func (e *RuntimeError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error.
func (e *RuntimeError) Unwrap() error {
	return e.Err
}

// IsUnknownScale returns true if the error is an unknown scale error.
// Uses errors.As to handle wrapped errors.
func IsUnknownScale(err error) bool {
	return hasCode(err, ErrCodeUnknownScale)
}

// IsInvalidScale returns true if the error is an invalid zoom error.
func IsInvalidScale(err error) bool {
	return hasCode(err, ErrCodeInvalidScale)
}

// IsInvalidPage returns true if the error is an invalid page error.
func IsInvalidPage(err error) bool {
	return hasCode(err, ErrCodeInvalidPage)
}

// IsInvalidEvent returns true if the error is a malformed event error.
func IsInvalidEvent(err error) bool {
	return hasCode(err, ErrCodeInvalidEvent)
}

func hasCode(err error, code RuntimeErrorCode) bool {
	var re *RuntimeError
	if errors.As(err, &re) {
		return re.Code == code
	}
	return false
}

// newUnknownScaleError wraps a registry miss.
func newUnknownScaleError(id string, err error) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeUnknownScale,
		Message: fmt.Sprintf("scale %q is not registered", id),
		Details: map[string]string{"scale": id},
		Err:     err,
	}
}

// newInvalidEventError reports an Event missing required data.
func newInvalidEventError(format string, args ...any) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidEvent,
		Message: fmt.Sprintf(format, args...),
	}
}

// newDuplicateIDError reports a commit whose id is already in the
// measurement set.
func newDuplicateIDError(id string) *RuntimeError {
	return &RuntimeError{
		Code:    ErrCodeInvalidEvent,
		Message: fmt.Sprintf("measurement id %q already exists", id),
		Details: map[string]string{"id": id},
	}
}

// classifyPointerError maps a normalizer error to a RuntimeError.
func classifyPointerError(err error) error {
	var scaleErr *geom.InvalidScaleError
	if errors.As(err, &scaleErr) {
		return &RuntimeError{
			Code:    ErrCodeInvalidScale,
			Message: scaleErr.Error(),
			Details: map[string]string{"zoom": fmt.Sprintf("%g", scaleErr.Zoom)},
			Err:     err,
		}
	}
	var pageErr *geom.InvalidPageError
	if errors.As(err, &pageErr) {
		return &RuntimeError{
			Code:    ErrCodeInvalidPage,
			Message: pageErr.Error(),
			Details: map[string]string{"page": fmt.Sprintf("%d", pageErr.Page)},
			Err:     err,
		}
	}
	return err
}
