package client

import (
	"context"
	"errors"
	"fmt"
	"net"

	"txtension/internal/models"
)

// ErrorKind classifies dispatch failures.
type ErrorKind string

const (
	// KindConfiguration means the request never left the process because the
	// provider settings are incomplete or unsupported.
	KindConfiguration ErrorKind = "configuration"
	// KindProvider means the provider answered with an error or nothing usable.
	KindProvider ErrorKind = "provider"
	// KindTransport means the provider could not be reached in time.
	KindTransport ErrorKind = "transport"
)

// These messages are shown to the user as-is.
var (
	ErrMissingAPIKey       = errors.New("No provider credentials configured.")
	ErrUnsupportedProvider = errors.New("Unsupported provider configured.")
	ErrCustomEndpoint      = errors.New("Custom provider requires base URL and model.")
	ErrEmptyResponse       = errors.New("empty response")
)

// Error is returned by Dispatch for every failure. Message is safe to show
// to the user.
type Error struct {
	Kind     ErrorKind
	Provider models.ProviderID
	Status   int
	Message  string
	Err      error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsKind reports whether err is a dispatch error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var dispatchErr *Error
	return errors.As(err, &dispatchErr) && dispatchErr.Kind == kind
}

func configurationError(provider models.ProviderID, err error) *Error {
	return &Error{Kind: KindConfiguration, Provider: provider, Message: err.Error(), Err: err}
}

func providerError(provider models.ProviderID, status int, message string) *Error {
	return &Error{Kind: KindProvider, Provider: provider, Status: status, Message: message}
}

func emptyResponseError(provider models.ProviderID, label string) *Error {
	return &Error{
		Kind:     KindProvider,
		Provider: provider,
		Message:  fmt.Sprintf("%s returned an empty response.", label),
		Err:      ErrEmptyResponse,
	}
}

func transportError(provider models.ProviderID, label string, err error) *Error {
	message := fmt.Sprintf("Network error while contacting %s. Check your connection and try again.", label)
	if isTimeout(err) {
		message = fmt.Sprintf("%s did not respond in time. Please try again.", label)
	}
	return &Error{Kind: KindTransport, Provider: provider, Message: message, Err: err}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
