package ai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

type ErrorKind string

const (
	KindUnavailable ErrorKind = "unavailable"
	KindNetwork     ErrorKind = "network"
	KindAuth        ErrorKind = "auth"
	KindRateLimit   ErrorKind = "rate_limit"
	KindUpstream    ErrorKind = "upstream"
)

// ErrUnavailable is returned by providers that were built without credentials.
var ErrUnavailable = &Error{Kind: KindUnavailable, Err: errors.New("ai provider not configured")}

// Error is a failed upstream call, classified so callers can log something useful.
type Error struct {
	Provider string
	Kind     ErrorKind
	Status   int
	Err      error
}

func (e *Error) Error() string {
	msg := "ai " + string(e.Kind)
	if e.Provider != "" {
		msg = e.Provider + ": " + msg
	}
	if e.Status != 0 {
		msg = fmt.Sprintf("%s (status %d)", msg, e.Status)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf reports the kind of err, or upstream for anything unclassified.
func KindOf(err error) ErrorKind {
	var aerr *Error
	if errors.As(err, &aerr) {
		return aerr.Kind
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return KindNetwork
	}
	return KindUpstream
}

func statusError(provider string, status int, body string) *Error {
	kind := KindUpstream
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		kind = KindAuth
	case status == http.StatusTooManyRequests:
		kind = KindRateLimit
	}
	return &Error{Provider: provider, Kind: kind, Status: status, Err: errors.New(body)}
}

func networkError(provider string, err error) *Error {
	return &Error{Provider: provider, Kind: KindNetwork, Err: err}
}

func upstreamError(provider string, err error) *Error {
	return &Error{Provider: provider, Kind: KindUpstream, Err: err}
}
