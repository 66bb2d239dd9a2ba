package dispatcher

import (
	"context"
	"fmt"

	"github.com/hiero-ledger/relay-lockgate/internal/rpc/validation"
	pkgError "github.com/hiero-ledger/relay-lockgate/pkg/error"
)

// notImplemented backs every stub method: it exercises the
// registry/validation/dispatch path end to end without attempting the
// upstream business logic that is out of scope for this repository.
func notImplemented(name string) Handler {
	return func(context.Context, []any, RequestContext) (any, error) {
		return nil, pkgError.MethodNotImplementedError(fmt.Sprintf("%s is registered but not implemented", name))
	}
}

// positional builds a Method.Validate that checks each declared
// position against its validator. A position past len(params) is
// treated as absent: required positions report MISSING_REQUIRED_PARAMETER,
// optional ones are simply skipped.
func positional(required int, validators ...validation.Validator) Validate {
	return func(params []any) error {
		for i, v := range validators {
			if i >= len(params) {
				if i < required {
					return pkgError.MissingParameterError(fmt.Sprintf("Missing required parameter at index %d", i))
				}
				continue
			}
			if ok, msg := v.Validate(params[i]); !ok {
				return pkgError.ValidationError(msg)
			}
		}
		return nil
	}
}

// RegisterStandardMethods wires the read-only namespace methods a full
// relay would expose, as not-yet-implemented stubs carrying real
// parameter validation. This lets C8/C6's envelope, validation and batch
// rules be exercised against real method names and shapes without
// reimplementing the mirror/consensus business logic.
func RegisterStandardMethods(r *Registry) {
	type stub struct {
		name     string
		validate Validate
	}

	stubs := []stub{
		{name: "eth_chainId"},
		{name: "eth_gasPrice"},
		{name: "eth_blockNumber"},
		{name: "eth_getTransactionCount", validate: positional(1, validation.Address, validation.BlockParameters)},
		{name: "eth_call", validate: positional(1, validation.TransactionObject, validation.BlockParameters)},
		{name: "eth_estimateGas", validate: positional(1, validation.TransactionObject)},
		{name: "eth_getBalance", validate: positional(1, validation.Address, validation.BlockParameters)},
		{name: "eth_getCode", validate: positional(1, validation.Address, validation.BlockParameters)},
		{name: "eth_getBlockByHash", validate: positional(2, validation.BlockHash, validation.Boolean)},
		{name: "eth_getBlockByNumber", validate: positional(2, validation.BlockNumber, validation.Boolean)},
		{name: "eth_getTransactionByHash", validate: positional(1, validation.TransactionHash)},
		{name: "eth_getTransactionReceipt", validate: positional(1, validation.TransactionHash)},
		{name: "eth_getLogs", validate: positional(1, validation.FilterObject)},
		{name: "eth_sendRawTransaction", validate: positional(1, validation.HexEvenLength)},
		{name: "net_listening"},
		{name: "net_version"},
		{name: "web3_clientVersion"},
	}

	for _, s := range stubs {
		r.Register(Method{
			Name:     s.name,
			Layout:   LayoutDefault,
			Validate: s.validate,
			Handler:  notImplemented(s.name),
		})
	}
}
