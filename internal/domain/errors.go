package domain

import (
	"errors"
	"fmt"
)

var (
	ErrSlotOutOfRange   = errors.New("account slot out of range")
	ErrSettingsNotFound = errors.New("settings not found")
	ErrRequestTimeout   = errors.New("feed request timed out")
	ErrParse            = errors.New("feed parse error")
)

type ParseErrorKind string

const (
	ParseErrorMissingTitle ParseErrorKind = "missing_title"
	ParseErrorTitleFormat  ParseErrorKind = "title_format"
	ParseErrorMissingCount ParseErrorKind = "missing_count"
	ParseErrorCountFormat  ParseErrorKind = "count_format"
)

type ParseError struct {
	Kind   ParseErrorKind
	Detail string
	Err    error
}

func (e *ParseError) Error() string {
	msg := string(e.Kind)
	if e.Detail != "" {
		msg = fmt.Sprintf("%s: %s", msg, e.Detail)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return "parse feed: " + msg
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrParse) match every parse failure.
func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// TransportError covers everything that went wrong before a document was
// available: network failures, non-OK statuses and timeouts.
type TransportError struct {
	StatusCode int
	Status     string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fetch feed: %v", e.Err)
	}
	if e.Status != "" {
		return fmt.Sprintf("fetch feed: status %s", e.Status)
	}
	return fmt.Sprintf("fetch feed: status %d", e.StatusCode)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

func IsTransportError(err error) bool {
	var transportErr *TransportError
	return errors.As(err, &transportErr)
}
