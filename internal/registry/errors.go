package registry

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ErrorType classifies registry errors for better handling
type ErrorType int

const (
	// ErrTypeNetwork indicates a generic network-related error
	ErrTypeNetwork ErrorType = iota
	// ErrTypeNotFound indicates the manifest or bundle was not found (HTTP 404)
	ErrTypeNotFound
	// ErrTypeParsing indicates the manifest could not be decoded
	ErrTypeParsing
	// ErrTypeValidation indicates the manifest response is unusable, such as oversized
	ErrTypeValidation
	// ErrTypeRateLimit indicates the CDN throttled the request (HTTP 429)
	ErrTypeRateLimit
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeDNS indicates DNS resolution failure
	ErrTypeDNS
	// ErrTypeConnection indicates connection refused or reset
	ErrTypeConnection
	// ErrTypeTLS indicates TLS/SSL certificate errors
	ErrTypeTLS
	// ErrTypeHTTPStatus indicates any other non-200 response
	ErrTypeHTTPStatus
)

// RegistryError provides structured error information for registry operations
type RegistryError struct {
	Type       ErrorType
	AddOn      string // Add-on name, empty for manifest requests
	StatusCode int    // HTTP status, when the server answered
	Message    string
	Err        error
}

func (e *RegistryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("registry: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("registry: %s", e.Message)
}

func (e *RegistryError) Unwrap() error {
	return e.Err
}

// Suggestion returns an actionable suggestion for the user based on the error type.
// Returns an empty string if no specific suggestion is available.
func (e *RegistryError) Suggestion() string {
	switch e.Type {
	case ErrTypeRateLimit:
		return "Wait a few minutes before trying again"
	case ErrTypeTimeout, ErrTypeNetwork:
		return "Check your internet connection and try again"
	case ErrTypeDNS:
		return "Check your DNS settings and internet connection"
	case ErrTypeConnection:
		return "The add-on CDN may be down or blocked by a firewall"
	case ErrTypeTLS:
		return "There may be a certificate issue. Check your system time is correct"
	case ErrTypeNotFound:
		if e.AddOn != "" {
			return fmt.Sprintf("The archive for %s is missing from the CDN; try again after the next publish", e.AddOn)
		}
		return "Check COFFEE_REGISTRY_URL points at the add-on CDN"
	case ErrTypeParsing, ErrTypeValidation:
		return "The published manifest is malformed; report it to the add-on maintainers"
	default:
		return ""
	}
}

// statusError builds the error for a non-200 response.
func statusError(code int, addOnName, target string) *RegistryError {
	errType := ErrTypeHTTPStatus
	switch code {
	case http.StatusNotFound:
		errType = ErrTypeNotFound
	case http.StatusTooManyRequests:
		errType = ErrTypeRateLimit
	}
	return &RegistryError{
		Type:       errType,
		AddOn:      addOnName,
		StatusCode: code,
		Message:    fmt.Sprintf("%s returned status %d %s", target, code, http.StatusText(code)),
	}
}

// classifyError examines an error and returns the most specific ErrorType.
func classifyError(err error) ErrorType {
	if err == nil {
		return ErrTypeNetwork
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTypeTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrTypeNetwork
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		if dnsErr.IsTimeout {
			return ErrTypeTimeout
		}
		return ErrTypeDNS
	}

	var certErr *tls.CertificateVerificationError
	if errors.As(err, &certErr) {
		return ErrTypeTLS
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if opErr.Timeout() {
			return ErrTypeTimeout
		}
		return ErrTypeConnection
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		if urlErr.Timeout() {
			return ErrTypeTimeout
		}
		msg := urlErr.Err.Error()
		if strings.Contains(msg, "certificate") || strings.Contains(msg, "tls") || strings.Contains(msg, "x509") {
			return ErrTypeTLS
		}
		return classifyError(urlErr.Err)
	}

	return ErrTypeNetwork
}

// WrapNetworkError wraps a transport error in a classified RegistryError.
func WrapNetworkError(err error, addOnName, message string) *RegistryError {
	return &RegistryError{
		Type:    classifyError(err),
		AddOn:   addOnName,
		Message: message,
		Err:     err,
	}
}
