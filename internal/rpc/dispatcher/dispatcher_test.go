package dispatcher

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgError "github.com/hiero-ledger/relay-lockgate/pkg/error"
)

func TestRegistry_InvokeUnknownMethod(t *testing.T) {
	r := NewRegistry()
	_, err := r.Invoke(context.Background(), "eth_unknown", nil, RequestContext{})
	require.Error(t, err)
	var genErr pkgError.GenericError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "METHOD_NOT_FOUND", genErr.ErrCode())
}

func TestRegistry_DefaultLayoutAppendsRequestContext(t *testing.T) {
	r := NewRegistry()
	var captured []any
	r.Register(Method{
		Name:   "test_echo",
		Layout: LayoutDefault,
		Handler: func(_ context.Context, args []any, _ RequestContext) (any, error) {
			captured = args
			return "ok", nil
		},
	})

	_, err := r.Invoke(context.Background(), "test_echo", []any{1, "two"}, RequestContext{RequestID: "r1"})
	require.NoError(t, err)
	require.Len(t, captured, 3)
	assert.Equal(t, 1, captured[0])
	assert.Equal(t, "two", captured[1])
	assert.Equal(t, RequestContext{RequestID: "r1"}, captured[2])
}

func TestRegistry_RequestDetailsOnlyLayoutDiscardsParams(t *testing.T) {
	r := NewRegistry()
	var captured []any
	r.Register(Method{
		Name:   "test_details",
		Layout: LayoutRequestDetailsOnly,
		Handler: func(_ context.Context, args []any, _ RequestContext) (any, error) {
			captured = args
			return nil, nil
		},
	})

	_, err := r.Invoke(context.Background(), "test_details", []any{"ignored"}, RequestContext{RequestID: "r2"})
	require.NoError(t, err)
	require.Len(t, captured, 1)
	assert.Equal(t, RequestContext{RequestID: "r2"}, captured[0])
}

func TestRegistry_ValidateRunsBeforeHandler(t *testing.T) {
	r := NewRegistry()
	called := false
	r.Register(Method{
		Name: "test_validated",
		Validate: func(params []any) error {
			return pkgError.ValidationError("bad params")
		},
		Handler: func(context.Context, []any, RequestContext) (any, error) {
			called = true
			return nil, nil
		},
	})

	_, err := r.Invoke(context.Background(), "test_validated", nil, RequestContext{})
	require.Error(t, err)
	assert.False(t, called)
}

func TestExecuteBatch_CapExceededMarksEveryEntry(t *testing.T) {
	r := NewRegistry()
	r.Register(Method{Name: "test_ok", Handler: func(context.Context, []any, RequestContext) (any, error) { return "ok", nil }})

	requests := make([]Request, 5)
	for i := range requests {
		requests[i] = Request{ID: i, Method: "test_ok"}
	}

	responses := r.ExecuteBatch(context.Background(), requests, RequestContext{}, BatchOptions{Enabled: true, MaxSize: 3})
	require.Len(t, responses, 5)
	for _, resp := range responses {
		require.NotNil(t, resp.Error)
		assert.Equal(t, codeBatchSizeExceed, resp.Error.Code)
	}
}

func TestExecuteBatch_ForbiddenMethodDoesNotAbortBatch(t *testing.T) {
	r := NewRegistry()
	r.Register(Method{Name: "test_ok", Handler: func(context.Context, []any, RequestContext) (any, error) { return "ok", nil }})

	requests := []Request{
		{ID: 1, Method: "eth_newFilter"},
		{ID: 2, Method: "test_ok"},
	}
	opts := BatchOptions{Enabled: true, MaxSize: 10, DisallowedMethods: map[string]bool{"eth_newFilter": true}}

	responses := r.ExecuteBatch(context.Background(), requests, RequestContext{}, opts)
	require.Len(t, responses, 2)
	assert.NotNil(t, responses[0].Error)
	assert.Nil(t, responses[1].Error)
	assert.Equal(t, "ok", responses[1].Result)
}

func TestRegisterStandardMethods_ReturnsNotImplemented(t *testing.T) {
	r := NewRegistry()
	RegisterStandardMethods(r)

	_, err := r.Invoke(context.Background(), "eth_chainId", nil, RequestContext{})
	require.Error(t, err)
	var genErr pkgError.GenericError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "METHOD_NOT_IMPLEMENTED", genErr.ErrCode())
}
