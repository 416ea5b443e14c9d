package types

import (
	"errors"
	"fmt"
)

var (
	ErrFileTooLarge    = errors.New("file exceeds size limit")
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrNoSheets        = errors.New("required sheets not found")
	ErrNoData          = errors.New("no data rows")
	ErrMissingColumns  = errors.New("missing required columns")
	ErrInvalidStatus   = errors.New("invalid lead status values")
	ErrNoDates         = errors.New("no parseable dates")
	ErrInvalidCampaign = errors.New("invalid campaign id")
)

// ValidationError is a user-fixable problem with the input. Processing of the
// current file stops and the message is shown as-is.
type ValidationError struct {
	Msg string
	Err error
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Invalid builds a ValidationError around a sentinel.
func Invalid(sentinel error, format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...), Err: sentinel}
}

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
