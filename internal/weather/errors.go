package weather

import (
	"context"
	"errors"

	"github.com/sony/gobreaker"
)

// ErrorKind is the closed taxonomy of domain error kinds.
type ErrorKind string

const (
	KindMissingInput       ErrorKind = "missing_input"
	KindInvalidRequest     ErrorKind = "invalid_request"
	KindLocationNotFound   ErrorKind = "location_not_found"
	KindInvalidAPIKey      ErrorKind = "invalid_api_key"
	KindRateLimited        ErrorKind = "rate_limited"
	KindNetworkUnavailable ErrorKind = "network_unavailable"
	KindUnknown            ErrorKind = "unknown"
)

// Fixed user-presentable messages per kind. Only the structured-provider-error
// path surfaces upstream text verbatim instead of these.
const (
	msgMissingInput       = "Please enter a city name"
	msgInvalidRequest     = "Invalid request. Please check the city name and try again."
	msgLocationNotFound   = "Location not found. Please check the city name and try again."
	msgInvalidAPIKey      = "Invalid API key. Please check your configuration."
	msgRateLimited        = "API rate limit exceeded. Please try again later."
	msgNetworkUnavailable = "No response from server. Please check your internet connection."
	msgUnknown            = "An unexpected error occurred. Please try again."
)

// DomainError is a classified, stable-message error. It carries no
// provider-specific payload past the adapter boundary.
type DomainError struct {
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

func (e *DomainError) Error() string {
	return e.Message
}

// ErrMissingInput reports an empty or whitespace-only city search.
func ErrMissingInput() *DomainError {
	return &DomainError{Kind: KindMissingInput, Message: msgMissingInput}
}

// ErrUnknown reports an uncategorized failure with the generic message.
func ErrUnknown() *DomainError {
	return &DomainError{Kind: KindUnknown, Message: msgUnknown}
}

// ClassifyStatus maps a non-2xx upstream response into a DomainError.
// providerMsg is a structured error message extracted from the response body
// by the adapter, or empty; when present it is surfaced verbatim and takes
// precedence over the status-based categories. Adapters whose upstream does
// not use 404 for unknown locations never pass status 404 here.
func ClassifyStatus(status int, providerMsg string) *DomainError {
	switch {
	case providerMsg != "":
		return &DomainError{Kind: KindUnknown, Message: providerMsg}
	case status == 400:
		return &DomainError{Kind: KindInvalidRequest, Message: msgInvalidRequest}
	case status == 401 || status == 403:
		return &DomainError{Kind: KindInvalidAPIKey, Message: msgInvalidAPIKey}
	case status == 404:
		return &DomainError{Kind: KindLocationNotFound, Message: msgLocationNotFound}
	case status == 429:
		return &DomainError{Kind: KindRateLimited, Message: msgRateLimited}
	default:
		return &DomainError{Kind: KindUnknown, Message: msgUnknown}
	}
}

// ClassifyTransport maps a failure where no usable response arrived (dial or
// TLS errors, timeouts, context expiry, an open circuit breaker) into a
// DomainError. A nil err yields the generic unknown error.
func ClassifyTransport(err error) *DomainError {
	var de *DomainError
	if errors.As(err, &de) {
		return de
	}
	switch {
	case err == nil:
		return &DomainError{Kind: KindUnknown, Message: msgUnknown}
	case errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled),
		errors.Is(err, gobreaker.ErrOpenState),
		errors.Is(err, gobreaker.ErrTooManyRequests):
		return &DomainError{Kind: KindNetworkUnavailable, Message: msgNetworkUnavailable}
	default:
		// Anything else at this layer means the request never produced a
		// response (url.Error wrapping a dial/timeout failure and the like).
		return &DomainError{Kind: KindNetworkUnavailable, Message: msgNetworkUnavailable}
	}
}
