package rest

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"github.com/hiero-ledger/relay-lockgate/core/ratelimit"
	"github.com/hiero-ledger/relay-lockgate/internal/rpc/dispatcher"
)

const (
	codeParseError      = -32700
	codeInvalidRequest  = -32600
	codeRateLimitedHTTP = -32605
)

// JSONRPCHandler implements the HTTP JSON-RPC facade (C8): POST-only
// decoding, the status-code policy knob, rate limiting ahead of
// dispatch, and batch execution.
type JSONRPCHandler struct {
	Registry         *dispatcher.Registry
	Limiter          ratelimit.Limiter
	BatchOptions     dispatcher.BatchOptions
	DefaultRateLimit int
	// ValidStatusCode is the HTTP status used for JSON-RPC-level client
	// errors: 200 (error-in-envelope only) or 400.
	ValidStatusCode int
}

// InitJSONRPC mounts the facade at POST "/", rejecting every other verb.
func InitJSONRPC(app fiber.Router, handler *JSONRPCHandler) {
	app.Post("/", handler.Handle)
	app.All("/", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(dispatcher.Response{
			JSONRPC: "2.0",
			Error:   &dispatcher.RPCError{Code: codeInvalidRequest, Message: "method not allowed, use POST"},
		})
	})
}

func (h *JSONRPCHandler) Handle(c *fiber.Ctx) error {
	body := c.Body()

	var probe json.RawMessage
	if err := json.Unmarshal(body, &probe); err != nil {
		return h.writeSingle(c, errorResponse(nil, codeParseError, "Parse error: invalid JSON"))
	}

	trimmed := firstNonSpace(body)
	if trimmed == '[' {
		return h.handleBatch(c, body)
	}
	return h.handleSingle(c, body)
}

func firstNonSpace(body []byte) byte {
	for _, b := range body {
		switch b {
		case ' ', '\t', '\n', '\r':
			continue
		default:
			return b
		}
	}
	return 0
}

func (h *JSONRPCHandler) decodeRequest(body []byte) (dispatcher.Request, bool, string) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return dispatcher.Request{}, false, "Invalid request: body must be a JSON object"
	}

	jsonrpcRaw, hasVersion := fields["jsonrpc"]
	methodRaw, hasMethod := fields["method"]
	idRaw, hasID := fields["id"]
	if !hasVersion || !hasMethod || !hasID {
		return dispatcher.Request{}, false, "Invalid request: missing jsonrpc, method or id"
	}

	var version string
	if err := json.Unmarshal(jsonrpcRaw, &version); err != nil || version != "2.0" {
		return dispatcher.Request{}, false, "Invalid request: jsonrpc must be \"2.0\""
	}

	var method string
	if err := json.Unmarshal(methodRaw, &method); err != nil || method == "" {
		return dispatcher.Request{}, false, "Invalid request: method must be a non-empty string"
	}

	var id any
	_ = json.Unmarshal(idRaw, &id)

	var params []any
	if raw, ok := fields["params"]; ok {
		_ = json.Unmarshal(raw, &params)
	}

	return dispatcher.Request{ID: id, Method: method, Params: params}, true, ""
}

func (h *JSONRPCHandler) handleSingle(c *fiber.Ctx, body []byte) error {
	req, ok, msg := h.decodeRequest(body)
	if !ok {
		return h.writeSingle(c, errorResponse(nil, codeInvalidRequest, msg))
	}

	if h.Limiter != nil && h.Limiter.ShouldLimit(c.UserContext(), c.IP(), req.Method, h.DefaultRateLimit, requestID(c)) {
		return h.writeSingle(c, errorResponse(req.ID, codeRateLimitedHTTP, "IP rate limit exceeded"))
	}

	reqCtx := dispatcher.RequestContext{RequestID: requestID(c), ClientIP: c.IP(), ConnectionID: connectionID(c)}
	result, err := h.Registry.Invoke(c.UserContext(), req.Method, req.Params, reqCtx)
	if err != nil {
		logrus.WithError(err).WithField("requestId", reqCtx.RequestID).Debug("jsonrpc handler returned an error")
		return h.writeSingle(c, errorResponse(req.ID, codeForHTTP(err), err.Error()))
	}

	return c.Status(fiber.StatusOK).JSON(dispatcher.Response{JSONRPC: "2.0", ID: req.ID, Result: result})
}

func (h *JSONRPCHandler) handleBatch(c *fiber.Ctx, body []byte) error {
	if !h.BatchOptions.Enabled {
		return c.Status(fiber.StatusMethodNotAllowed).JSON(dispatcher.Response{
			JSONRPC: "2.0",
			Error:   &dispatcher.RPCError{Code: codeInvalidRequest, Message: "batch requests are disabled"},
		})
	}

	var rawEntries []json.RawMessage
	if err := json.Unmarshal(body, &rawEntries); err != nil {
		return h.writeSingle(c, errorResponse(nil, codeParseError, "Parse error: invalid JSON array"))
	}

	requests := make([]dispatcher.Request, len(rawEntries))
	invalid := make(map[int]string)
	for i, raw := range rawEntries {
		req, ok, msg := h.decodeRequest(raw)
		if !ok {
			requests[i] = dispatcher.Request{ID: nil, Method: "", Params: nil}
			invalid[i] = msg
			continue
		}
		requests[i] = req
	}

	reqCtx := dispatcher.RequestContext{RequestID: requestID(c), ClientIP: c.IP(), ConnectionID: connectionID(c)}
	responses := h.Registry.ExecuteBatch(c.UserContext(), requests, reqCtx, h.BatchOptions)
	if len(requests) <= h.BatchOptions.MaxSize {
		// A malformed entry keeps its own invalid-request error in its slot.
		for i, msg := range invalid {
			responses[i] = errorResponse(nil, codeInvalidRequest, msg)
		}
	}

	status := fiber.StatusOK
	for _, resp := range responses {
		if h.statusFor(resp) == fiber.StatusBadRequest {
			status = fiber.StatusBadRequest
			break
		}
	}
	return c.Status(status).JSON(responses)
}

func (h *JSONRPCHandler) writeSingle(c *fiber.Ctx, resp dispatcher.Response) error {
	return c.Status(h.statusFor(resp)).JSON(resp)
}

// statusFor applies the HTTP status policy: a parse error or a malformed
// JSON-RPC envelope is always HTTP 400, independent of ValidStatusCode;
// every other JSON-RPC-level error follows the configured policy.
func (h *JSONRPCHandler) statusFor(resp dispatcher.Response) int {
	if resp.Error == nil {
		return fiber.StatusOK
	}
	if resp.Error.Code == codeParseError || resp.Error.Code == codeInvalidRequest {
		return fiber.StatusBadRequest
	}
	if h.ValidStatusCode == fiber.StatusBadRequest {
		return fiber.StatusBadRequest
	}
	return fiber.StatusOK
}

func errorResponse(id any, code int, message string) dispatcher.Response {
	return dispatcher.Response{JSONRPC: "2.0", ID: id, Error: &dispatcher.RPCError{Code: code, Message: message}}
}

func codeForHTTP(err error) int {
	return dispatcher.CodeFor(err)
}

func connectionID(c *fiber.Ctx) string {
	return strconv.FormatUint(c.Context().ID(), 10)
}

func requestID(c *fiber.Ctx) string {
	if rid := c.Get(fiber.HeaderXRequestID); rid != "" {
		return rid
	}
	return connectionID(c)
}
