package quote

import (
	"context"
	"errors"
	"strings"

	"github.com/tranvictor/feedme/lifi"
)

var (
	ErrNoRoute               = errors.New("No route available for this swap")
	ErrInsufficientLiquidity = errors.New("Insufficient liquidity")
	ErrQuoteFailed           = errors.New("Failed to get quote")

	ErrInvalidAmount    = errors.New("invalid amount")
	ErrInvalidIntent    = errors.New("invalid payment intent")
	ErrNoSender         = errors.New("Connect wallet to get quote")
	ErrUnresolvedSplits = errors.New("split recipients must be resolved before quoting")
	ErrNoTransaction    = errors.New("No transaction request in quote")

	// ErrStale marks a result superseded by newer input.
	ErrStale = errors.New("quote superseded by newer input")
)

// Error is an aggregator failure sorted into one of ErrNoRoute,
// ErrInsufficientLiquidity or ErrQuoteFailed. It matches both its kind and
// its cause with errors.Is.
type Error struct {
	Kind  error
	Cause error
}

func (e *Error) Error() string {
	if e.Kind == ErrQuoteFailed && e.Cause != nil {
		return e.Cause.Error()
	}
	return e.Kind.Error()
}

func (e *Error) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// classify maps an aggregator error to the condition shown to the payer.
// Cancellation passes through untouched.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	var known *Error
	if errors.As(err, &known) {
		return err
	}
	msg := err.Error()
	var apiErr *lifi.APIError
	switch {
	case strings.Contains(msg, "No routes found"):
		return &Error{Kind: ErrNoRoute, Cause: err}
	case errors.As(err, &apiErr) && apiErr.Code == lifi.CodeNoQuote:
		return &Error{Kind: ErrNoRoute, Cause: err}
	case strings.Contains(strings.ToLower(msg), "insufficient"):
		return &Error{Kind: ErrInsufficientLiquidity, Cause: err}
	default:
		return &Error{Kind: ErrQuoteFailed, Cause: err}
	}
}
