package devicesync

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"os"
	"syscall"

	"github.com/gorilla/websocket"
)

// ErrorType represents the category of a sync failure
type ErrorType int

const (
	// ErrTypeNetwork indicates a generic network-level failure
	ErrTypeNetwork ErrorType = iota
	// ErrTypeTimeout indicates a dial or read timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening at the bridge address
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the bridge host could not be resolved
	ErrTypeDNS
	// ErrTypeHandshake indicates the websocket upgrade was rejected
	ErrTypeHandshake
	// ErrTypeBridge indicates the bridge reported an error message
	ErrTypeBridge
	// ErrTypeFile indicates the snapshot file could not be read or watched
	ErrTypeFile
	// ErrTypeParse indicates a malformed snapshot document
	ErrTypeParse
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeHandshake:
		return "Handshake Error"
	case ErrTypeBridge:
		return "Bridge Error"
	case ErrTypeFile:
		return "File Error"
	case ErrTypeParse:
		return "Parse Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// SyncError is a failure while obtaining a snapshot
type SyncError struct {
	Type      ErrorType
	Message   string
	Source    string // file path or bridge URL
	Err       error
	Retryable bool
}

// Error implements the error interface
func (e *SyncError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error
func (e *SyncError) Unwrap() error {
	return e.Err
}

// ClassifyNetworkError maps a dial or read error to a SyncError.
func ClassifyNetworkError(err error, source string) *SyncError {
	if err == nil {
		return nil
	}

	if errors.Is(err, websocket.ErrBadHandshake) {
		return &SyncError{
			Type:      ErrTypeHandshake,
			Message:   "Bridge rejected the websocket upgrade",
			Source:    source,
			Err:       err,
			Retryable: false,
		}
	}

	if os.IsTimeout(err) {
		return &SyncError{
			Type:      ErrTypeTimeout,
			Message:   "Bridge did not respond in time",
			Source:    source,
			Err:       err,
			Retryable: true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &SyncError{
			Type:      ErrTypeDNS,
			Message:   fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Source:    source,
			Err:       err,
			Retryable: false,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return &SyncError{
			Type:      ErrTypeConnectionRefused,
			Message:   "Bridge refused connection",
			Source:    source,
			Err:       err,
			Retryable: true,
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return ClassifyNetworkError(urlErr.Err, source)
	}

	return &SyncError{
		Type:      ErrTypeNetwork,
		Message:   "Network error occurred",
		Source:    source,
		Err:       err,
		Retryable: true,
	}
}

// IsRetryable reports whether err is a SyncError worth retrying.
func IsRetryable(err error) bool {
	var se *SyncError
	if errors.As(err, &se) {
		return se.Retryable
	}
	return false
}

// ShortMessage returns a concise, user-facing description of err.
func ShortMessage(err error) string {
	var se *SyncError
	if !errors.As(err, &se) {
		return err.Error()
	}

	switch se.Type {
	case ErrTypeTimeout:
		return "Bridge not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Bridge refused connection - is it running?"
	case ErrTypeDNS:
		return "Cannot resolve bridge hostname"
	case ErrTypeHandshake:
		return "Bridge rejected connection - check the URL path"
	case ErrTypeBridge:
		return "Bridge: " + se.Message
	case ErrTypeFile:
		return "Cannot read snapshot file"
	case ErrTypeParse:
		return "Malformed snapshot"
	default:
		return "Network error - check connection"
	}
}
