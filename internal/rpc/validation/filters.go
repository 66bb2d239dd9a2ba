package validation

import (
	"fmt"

	pkgError "github.com/hiero-ledger/relay-lockgate/pkg/error"
)

// FilterObjectSchema is the base Object for an eth_getLogs-style filter.
// blockHash is mutually exclusive with fromBlock/toBlock; FilterObject
// wraps this with that extra rule since Object alone cannot express a
// cross-property constraint.
var FilterObjectSchema = Object{
	Name: "filterObject",
	Properties: map[string]Property{
		"blockHash": {Type: BlockHash, Nullable: true},
		"fromBlock": {Type: BlockNumber, Nullable: true},
		"toBlock":   {Type: BlockNumber, Nullable: true},
		"address":   {Type: AddressFilter, Nullable: true},
		"topics":    {Type: TopicHashArray, Nullable: true},
	},
	DeleteUnknownProperties: false,
	FailOnUnexpectedParams:  true,
}

// FilterObject validates a filter object including the blockHash /
// fromBlock+toBlock mutual exclusivity rule.
type filterObjectValidator struct{}

// FilterObject is the Validator for filter-object parameters.
var FilterObject Validator = filterObjectValidator{}

func (filterObjectValidator) Validate(value any) (bool, string) {
	obj, err := FilterObjectSchema.Evaluate(value)
	if err != nil {
		return false, err.Error()
	}

	_, hasBlockHash := nonNil(obj["blockHash"])
	_, hasFromBlock := nonNil(obj["fromBlock"])
	_, hasToBlock := nonNil(obj["toBlock"])

	if hasBlockHash && (hasFromBlock || hasToBlock) {
		return false, "Invalid parameter: filterObject.blockHash is mutually exclusive with fromBlock/toBlock"
	}
	return true, ""
}

func nonNil(v any) (any, bool) {
	return v, v != nil
}

// TracerConfigSchema covers the two supported tracer shapes: a
// call-tracer config and an opcode-logger config. Every key is optional
// and unknown keys are stripped, so an empty tracer config object passes;
// the wrapper below only requires that "tracer" or "tracerConfig" is
// present.
var TracerConfigSchema = Object{
	Name: "tracerConfig",
	Properties: map[string]Property{
		"onlyTopCall":    {Type: Boolean, Nullable: true},
		"withLog":        {Type: Boolean, Nullable: true},
		"disableStorage": {Type: Boolean, Nullable: true},
		"disableMemory":  {Type: Boolean, Nullable: true},
		"disableStack":   {Type: Boolean, Nullable: true},
	},
	DeleteUnknownProperties: true,
}

type tracerConfigWrapperValidator struct{}

// TracerConfigWrapper is the Validator for the top-level tracer
// parameter: an object that must carry at least one of "tracer" or
// "tracerConfig".
var TracerConfigWrapper Validator = tracerConfigWrapperValidator{}

func (tracerConfigWrapperValidator) Validate(value any) (bool, string) {
	obj, ok := value.(map[string]any)
	if !ok {
		return false, "Invalid parameter: tracer configuration must be an object"
	}

	tracer, hasTracer := obj["tracer"]
	tracerConfig, hasTracerConfig := obj["tracerConfig"]

	if !hasTracerConfig {
		_, hasTracerConfig = nonNil(tracerConfig)
	}
	if !hasTracer {
		_, hasTracer = nonNil(tracer)
	}

	if !hasTracer && !hasTracerConfig {
		return false, "Invalid parameter: tracer configuration must contain at least one of tracer or tracerConfig"
	}

	if hasTracer {
		if ok, msg := TracerType.Validate(tracer); !ok {
			return false, msg
		}
	}
	if hasTracerConfig {
		if _, err := TracerConfigSchema.Evaluate(tracerConfig); err != nil {
			return false, err.Error()
		}
	}

	return true, ""
}

// TransactionObjectSchema validates the common eth_call/eth_sendTransaction shape.
var TransactionObjectSchema = Object{
	Name: "transactionObject",
	Properties: map[string]Property{
		"from":     {Type: Address, Nullable: true},
		"to":       {Type: Address, Nullable: true},
		"gas":      {Type: Hex, Nullable: true},
		"gasPrice": {Type: Hex, Nullable: true},
		"value":    {Type: Hex, Nullable: true},
		"data":     {Type: HexEvenLength, Nullable: true},
		"input":    {Type: HexEvenLength, Nullable: true},
		"nonce":    {Type: Hex, Nullable: true},
	},
	FailOnUnexpectedParams: true,
	FailOnEmpty:            true,
}

// TransactionObject is the Validator for a raw transaction-call object.
var TransactionObject Validator = TransactionObjectSchema

// ResolvePrimitive returns the named built-in primitive/compound
// validator, for callers building registry-driven schemas (C6) from a
// declarative method table rather than Go literals.
func ResolvePrimitive(name string) (Validator, error) {
	switch name {
	case "boolean":
		return Boolean, nil
	case "hex":
		return Hex, nil
	case "hexEvenLength":
		return HexEvenLength, nil
	case "boundedHex64":
		return BoundedHex64, nil
	case "address":
		return Address, nil
	case "addressFilter":
		return AddressFilter, nil
	case "topicHash":
		return TopicHash, nil
	case "topicHashArray":
		return TopicHashArray, nil
	case "blockHash":
		return BlockHash, nil
	case "blockNumber":
		return BlockNumber, nil
	case "blockParameters":
		return BlockParameters, nil
	case "transactionHash":
		return TransactionHash, nil
	case "transactionId":
		return TransactionID, nil
	case "transactionObject":
		return TransactionObject, nil
	case "filterObject":
		return FilterObject, nil
	case "tracerType":
		return TracerType, nil
	case "tracerConfigWrapper":
		return TracerConfigWrapper, nil
	default:
		return nil, pkgError.ValidationError(fmt.Sprintf("Invalid parameter: unknown validator %q", name))
	}
}
