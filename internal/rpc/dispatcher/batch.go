package dispatcher

import (
	"context"

	pkgError "github.com/hiero-ledger/relay-lockgate/pkg/error"
)

// RPCError is the JSON-RPC 2.0 error object.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// Request is one decoded JSON-RPC 2.0 call.
type Request struct {
	ID     any    `json:"id"`
	Method string `json:"method"`
	Params []any  `json:"params"`
}

// Response is one JSON-RPC 2.0 reply, carrying exactly one of Result or Error.
type Response struct {
	JSONRPC string    `json:"jsonrpc"`
	ID      any       `json:"id"`
	Result  any       `json:"result,omitempty"`
	Error   *RPCError `json:"error,omitempty"`
}

const (
	codeMethodNotFound  = -32601
	codeInvalidParams   = -32602
	codeInternal        = -32603
	codeLimitExceeded   = -32005
	codeBatchSizeExceed = -32203
	codeRateLimited     = -32605
)

func errorResponse(id any, code int, message string) Response {
	return Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}
}

// BatchOptions controls C6's batch execution rules.
type BatchOptions struct {
	Enabled            bool
	MaxSize            int
	DisallowedMethods  map[string]bool
}

// ExecuteBatch processes every entry, preserving positional order. When
// len(requests) exceeds MaxSize, every slot gets the same
// batch-size-exceeded error and no entry reaches a handler. A method in
// the forbidden list gets an error in its own slot without aborting the
// rest of the batch.
func (r *Registry) ExecuteBatch(ctx context.Context, requests []Request, reqCtx RequestContext, opts BatchOptions) []Response {
	if len(requests) > opts.MaxSize {
		responses := make([]Response, len(requests))
		for i, req := range requests {
			responses[i] = errorResponse(req.ID, codeBatchSizeExceed, "Batch request amount exceeds the max allowed")
		}
		return responses
	}

	responses := make([]Response, len(requests))
	for i, req := range requests {
		if opts.DisallowedMethods[req.Method] {
			responses[i] = errorResponse(req.ID, codeMethodNotFound, "Method not allowed in batch requests: "+req.Method)
			continue
		}
		responses[i] = r.executeOne(ctx, req, reqCtx)
	}
	return responses
}

func (r *Registry) executeOne(ctx context.Context, req Request, reqCtx RequestContext) Response {
	result, err := r.Invoke(ctx, req.Method, req.Params, reqCtx)
	if err != nil {
		return errorResponse(req.ID, codeFor(err), err.Error())
	}
	return Response{JSONRPC: "2.0", ID: req.ID, Result: result}
}

// CodeFor exposes codeFor to callers outside the package, such as the
// HTTP facade translating a single-request Invoke error.
func CodeFor(err error) int {
	return codeFor(err)
}

// codeFor maps a typed pkg/error into its JSON-RPC error code. Errors
// that do not implement pkgError.GenericError are treated as internal.
func codeFor(err error) int {
	generic, ok := err.(pkgError.GenericError)
	if !ok {
		return codeInternal
	}
	switch generic.ErrCode() {
	case "METHOD_NOT_FOUND", "METHOD_NOT_IMPLEMENTED":
		return codeMethodNotFound
	case "INVALID_PARAMETER", "MISSING_REQUIRED_PARAMETER":
		return codeInvalidParams
	case "IP_RATE_LIMIT_EXCEEDED":
		return codeRateLimited
	case "BATCH_REQUESTS_AMOUNT_MAX_EXCEEDED":
		return codeBatchSizeExceed
	case "LOCK_ACQUIRE_TIMEOUT":
		return codeLimitExceeded
	default:
		return codeInternal
	}
}
