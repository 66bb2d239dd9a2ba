package validation

import (
	"regexp"
	"strings"
)

var (
	hexRe       = regexp.MustCompile(`^0x[0-9a-fA-F]*$`)
	addressRe   = regexp.MustCompile(`^0x[0-9a-fA-F]{40}$`)
	hash32Re    = regexp.MustCompile(`^0x[0-9a-fA-F]{64}$`)
	txIDRe      = regexp.MustCompile(`^\d+\.\d+\.\d+(-\d{1,10}-\d{1,19})?$`)
	blockTagSet = map[string]bool{"earliest": true, "latest": true, "pending": true, "safe": true, "finalized": true}
)

// Boolean accepts native Go booleans only.
var Boolean = Primitive{
	Name: "boolean",
	Test: func(v any) bool { _, ok := v.(bool); return ok },
	Err:  "Invalid parameter: expected a boolean",
}

// Hex accepts any 0x-prefixed hex string, including the empty "0x".
var Hex = Primitive{
	Name: "hex",
	Test: func(v any) bool {
		s, ok := v.(string)
		return ok && hexRe.MatchString(s)
	},
	Err: "Invalid parameter: expected a 0x-prefixed hex string",
}

// HexEvenLength accepts a hex string whose digit count (excluding the
// 0x prefix) is even, i.e. it decodes to whole bytes.
var HexEvenLength = Primitive{
	Name: "hexEvenLength",
	Test: func(v any) bool {
		s, ok := v.(string)
		if !ok || !hexRe.MatchString(s) {
			return false
		}
		return len(s)%2 == 0
	},
	Err: "Invalid parameter: hex string must have an even number of digits",
}

// BoundedHex64 accepts a 0x-prefixed hex string of at most 64 digits (32 bytes).
var BoundedHex64 = Primitive{
	Name: "boundedHex64",
	Test: func(v any) bool {
		s, ok := v.(string)
		return ok && hexRe.MatchString(s) && len(s)-2 <= 64
	},
	Err: "Invalid parameter: expected at most 32 bytes of hex",
}

// Address accepts a 20-byte (40 hex digit) address.
var Address = Primitive{
	Name: "address",
	Test: func(v any) bool {
		s, ok := v.(string)
		return ok && addressRe.MatchString(s)
	},
	Err: "Invalid parameter: expected a 20-byte address",
}

// AddressFilter accepts a single address, or an array of addresses,
// flattened before the per-element check.
var AddressFilter = Primitive{
	Name: "addressFilter",
	Test: func(v any) bool {
		for _, item := range flatten(v) {
			if ok, _ := Address.Validate(item); !ok {
				return false
			}
		}
		return true
	},
	Err: "Invalid parameter: expected an address or array of addresses",
}

// TopicHash accepts a 32-byte hash or null.
var TopicHash = Primitive{
	Name: "topicHash",
	Test: func(v any) bool {
		if v == nil {
			return true
		}
		s, ok := v.(string)
		return ok && hash32Re.MatchString(s)
	},
	Err: "Invalid parameter: expected a 32-byte topic hash or null",
}

// TopicHashArray accepts an array of topic hashes, allowing nested
// arrays-of-arrays which are flattened before the per-element check.
var TopicHashArray = Primitive{
	Name: "topicHashArray",
	Test: func(v any) bool {
		items, ok := v.([]any)
		if !ok {
			return false
		}
		for _, item := range flatten(items) {
			if ok, _ := TopicHash.Validate(item); !ok {
				return false
			}
		}
		return true
	},
	Err: "Invalid parameter: expected an array of topic hashes",
}

// BlockHash accepts a 32-byte block hash.
var BlockHash = Primitive{
	Name: "blockHash",
	Test: func(v any) bool {
		s, ok := v.(string)
		return ok && hash32Re.MatchString(s)
	},
	Err: "Invalid parameter: expected a 32-byte block hash",
}

// BlockNumber accepts a bounded hex quantity or one of the well-known tags.
var BlockNumber = Primitive{
	Name: "blockNumber",
	Test: func(v any) bool {
		s, ok := v.(string)
		if !ok {
			return false
		}
		if blockTagSet[s] {
			return true
		}
		ok, _ = BoundedHex64.Validate(s)
		return ok
	},
	Err: "Invalid parameter: expected a block number, tag or hex quantity",
}

// BlockParameters accepts either form of BlockNumber/BlockHash, or a
// single-key object carrying "blockHash" or "blockNumber".
var BlockParameters = Primitive{
	Name: "blockParameters",
	Test: func(v any) bool {
		if ok, _ := BlockNumber.Validate(v); ok {
			return true
		}
		if ok, _ := BlockHash.Validate(v); ok {
			return true
		}
		obj, ok := v.(map[string]any)
		if !ok || len(obj) != 1 {
			return false
		}
		if bh, present := obj["blockHash"]; present {
			ok, _ := BlockHash.Validate(bh)
			return ok
		}
		if bn, present := obj["blockNumber"]; present {
			ok, _ := BlockNumber.Validate(bn)
			return ok
		}
		return false
	},
	Err: "Invalid parameter: expected a block number, block hash, or {blockHash|blockNumber}",
}

// TransactionHash accepts a 32-byte transaction hash.
var TransactionHash = Primitive{
	Name: "transactionHash",
	Test: func(v any) bool {
		s, ok := v.(string)
		return ok && hash32Re.MatchString(s)
	},
	Err: "Invalid parameter: expected a 32-byte transaction hash",
}

// TransactionID accepts the shard.realm.num[-sec-nanos] transaction id shape.
var TransactionID = Primitive{
	Name: "transactionId",
	Test: func(v any) bool {
		s, ok := v.(string)
		return ok && txIDRe.MatchString(s)
	},
	Err: "Invalid parameter: expected a transaction id of the form shard.realm.num-sec-nanos",
}

// TracerType accepts the two supported tracer type names.
var TracerType = Primitive{
	Name: "tracerType",
	Test: func(v any) bool {
		s, ok := v.(string)
		return ok && (s == "callTracer" || s == "opcodeLogger")
	},
	Err: "Invalid parameter: expected tracer type callTracer or opcodeLogger",
}

// flatten recursively flattens []any values, leaving non-array values as
// single-element results, to support the address/topic filter shapes
// that accept a bare value or arbitrarily nested arrays of it.
func flatten(v any) []any {
	arr, ok := v.([]any)
	if !ok {
		return []any{v}
	}
	var out []any
	for _, item := range arr {
		out = append(out, flatten(item)...)
	}
	return out
}

// isBlank reports whether a raw string only contains whitespace. The
// "nullable" property check in Object.Evaluate does not call it.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
