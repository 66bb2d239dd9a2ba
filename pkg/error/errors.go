package error

import "net/http"

// GenericError is implemented by every typed error the HTTP and JSON-RPC
// facades know how to render without per-handler boilerplate.
type GenericError interface {
	error
	ErrCode() string
	StatusCode() int
}

// ValidationError wraps a parameter validation failure (C5).
type ValidationError string

func (err ValidationError) Error() string    { return string(err) }
func (err ValidationError) ErrCode() string  { return "INVALID_PARAMETER" }
func (err ValidationError) StatusCode() int  { return http.StatusBadRequest }

// MissingParameterError wraps a required-but-absent parameter (C5).
type MissingParameterError string

func (err MissingParameterError) Error() string   { return string(err) }
func (err MissingParameterError) ErrCode() string { return "MISSING_REQUIRED_PARAMETER" }
func (err MissingParameterError) StatusCode() int { return http.StatusBadRequest }

// MethodNotFoundError wraps an unregistered RPC method (C6).
type MethodNotFoundError string

func (err MethodNotFoundError) Error() string   { return string(err) }
func (err MethodNotFoundError) ErrCode() string { return "METHOD_NOT_FOUND" }
func (err MethodNotFoundError) StatusCode() int { return http.StatusNotFound }

// MethodNotImplementedError marks a registered stub that has no business
// logic yet (out of scope per the dispatcher's design).
type MethodNotImplementedError string

func (err MethodNotImplementedError) Error() string   { return string(err) }
func (err MethodNotImplementedError) ErrCode() string { return "METHOD_NOT_IMPLEMENTED" }
func (err MethodNotImplementedError) StatusCode() int { return http.StatusNotImplemented }

// RateLimitError wraps a C4 denial.
type RateLimitError string

func (err RateLimitError) Error() string   { return string(err) }
func (err RateLimitError) ErrCode() string { return "IP_RATE_LIMIT_EXCEEDED" }
func (err RateLimitError) StatusCode() int { return http.StatusTooManyRequests }

// BatchSizeExceededError wraps a C6 batch-cap rejection.
type BatchSizeExceededError string

func (err BatchSizeExceededError) Error() string   { return string(err) }
func (err BatchSizeExceededError) ErrCode() string { return "BATCH_REQUESTS_AMOUNT_MAX_EXCEEDED" }
func (err BatchSizeExceededError) StatusCode() int { return http.StatusBadRequest }

// LockTimeoutError wraps an AcquireTimeout breach inside the
// sender-serialization facade (C7); distinguishable from the critical
// section's own errors.
type LockTimeoutError string

func (err LockTimeoutError) Error() string   { return string(err) }
func (err LockTimeoutError) ErrCode() string { return "LOCK_ACQUIRE_TIMEOUT" }
func (err LockTimeoutError) StatusCode() int { return http.StatusServiceUnavailable }

// ParseError wraps a malformed JSON-RPC body.
type ParseError string

func (err ParseError) Error() string   { return string(err) }
func (err ParseError) ErrCode() string { return "PARSE_ERROR" }
func (err ParseError) StatusCode() int { return http.StatusBadRequest }

// InvalidRequestError wraps a well-formed JSON body that is not a valid
// JSON-RPC 2.0 envelope.
type InvalidRequestError string

func (err InvalidRequestError) Error() string   { return string(err) }
func (err InvalidRequestError) ErrCode() string { return "INVALID_REQUEST" }
func (err InvalidRequestError) StatusCode() int { return http.StatusBadRequest }

// InternalErr wraps an unexpected handler failure; stack traces never
// leave the process, only the message does.
type InternalErr string

func (err InternalErr) Error() string   { return string(err) }
func (err InternalErr) ErrCode() string { return "INTERNAL_ERROR" }
func (err InternalErr) StatusCode() int { return http.StatusInternalServerError }

// InternalError constructs an InternalErr from a plain message, mirroring
// the constructor shape of the other typed errors in this package.
func InternalError(msg string) GenericError {
	return InternalErr(msg)
}
