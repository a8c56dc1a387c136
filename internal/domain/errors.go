package domain

import (
	"errors"
	"fmt"
)

// ErrorType categorizes a failure inside the gateway/recorder boundary.
// None of these ever cross into the route layer; they only drive the
// fallback chain and the recorder's durability fallback.
type ErrorType string

const (
	// ErrorTypeNoCredential means no usable API key for the selected service.
	ErrorTypeNoCredential ErrorType = "no_credential"

	// ErrorTypeProviderRequest covers network failures, auth rejections,
	// quota errors, and malformed provider responses.
	ErrorTypeProviderRequest ErrorType = "provider_request"

	// ErrorTypeUnsupportedService means the caller named a provider that is
	// not in the registry.
	ErrorTypeUnsupportedService ErrorType = "unsupported_service"

	// ErrorTypePersistence means the primary interaction store is unavailable.
	ErrorTypePersistence ErrorType = "persistence"
)

// GatewayError is the canonical error carried between gateway components.
// Provider adapters translate every provider-specific failure into one of
// these so no SDK or HTTP error type leaks past the adapter boundary.
type GatewayError struct {
	Type ErrorType

	// Service names the provider involved, when there is one.
	Service string

	// Message is the human-readable description.
	Message string

	// StatusCode is the upstream HTTP status, when the failure was an HTTP
	// response. Zero otherwise.
	StatusCode int
}

// Error implements the error interface.
func (e *GatewayError) Error() string {
	if e.Service != "" {
		return fmt.Sprintf("%s (%s): %s", e.Type, e.Service, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// WithStatusCode records the upstream HTTP status.
func (e *GatewayError) WithStatusCode(code int) *GatewayError {
	e.StatusCode = code
	return e
}

// ErrNoCredential creates a no-credential error for a service.
func ErrNoCredential(service string) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeNoCredential,
		Service: service,
		Message: "no API key available",
	}
}

// ErrProviderRequest creates a provider request error.
func ErrProviderRequest(service, message string) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeProviderRequest,
		Service: service,
		Message: message,
	}
}

// ErrUnsupportedService creates an unsupported-service error.
func ErrUnsupportedService(service string) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypeUnsupportedService,
		Service: service,
		Message: "unknown AI service",
	}
}

// ErrPersistence creates a persistence error.
func ErrPersistence(message string) *GatewayError {
	return &GatewayError{
		Type:    ErrorTypePersistence,
		Message: message,
	}
}

// ErrorTypeOf returns the GatewayError type of err, or "" when err is not a
// GatewayError.
func ErrorTypeOf(err error) ErrorType {
	var ge *GatewayError
	if errors.As(err, &ge) {
		return ge.Type
	}
	return ""
}
