package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHex(t *testing.T) {
	ok, _ := Hex.Validate("0xabc123")
	assert.True(t, ok)

	ok, msg := Hex.Validate("not-hex")
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}

func TestAddress(t *testing.T) {
	ok, _ := Address.Validate("0x" + repeat("ab", 20))
	assert.True(t, ok)

	ok, _ = Address.Validate("0x1234")
	assert.False(t, ok)
}

func TestAddressFilterFlattensNestedArrays(t *testing.T) {
	addr := "0x" + repeat("ab", 20)
	ok, _ := AddressFilter.Validate([]any{addr, []any{addr, addr}})
	assert.True(t, ok)

	ok, _ = AddressFilter.Validate([]any{addr, "not-an-address"})
	assert.False(t, ok)
}

func TestBlockNumberAcceptsTagsAndHex(t *testing.T) {
	for _, tag := range []string{"earliest", "latest", "pending", "safe", "finalized"} {
		ok, _ := BlockNumber.Validate(tag)
		assert.True(t, ok, tag)
	}
	ok, _ := BlockNumber.Validate("0x10")
	assert.True(t, ok)

	ok, _ = BlockNumber.Validate("sometag")
	assert.False(t, ok)
}

func TestBlockParametersAcceptsObjectForm(t *testing.T) {
	ok, _ := BlockParameters.Validate(map[string]any{"blockNumber": "0x5"})
	assert.True(t, ok)

	ok, _ = BlockParameters.Validate(map[string]any{"blockHash": "0x" + repeat("ab", 32)})
	assert.True(t, ok)

	ok, _ = BlockParameters.Validate(map[string]any{"unknown": "x"})
	assert.False(t, ok)
}

func TestOrPipeTypeAcceptsEither(t *testing.T) {
	or := Or{Name: "blockHash|blockNumber", Members: []Validator{BlockHash, BlockNumber}}

	ok, _ := or.Validate("latest")
	assert.True(t, ok)

	ok, _ = or.Validate("0x" + repeat("ab", 32))
	assert.True(t, ok)

	ok, msg := or.Validate("garbage")
	assert.False(t, ok)
	assert.NotEmpty(t, msg)
}

func TestObject_MissingRequiredProperty(t *testing.T) {
	schema := Object{
		Name: "test",
		Properties: map[string]Property{
			"value": {Type: Hex, Required: true},
		},
	}
	_, err := schema.Evaluate(map[string]any{})
	assert.ErrorContains(t, err, "Missing required parameter")
}

func TestObject_UnexpectedKeyRejected(t *testing.T) {
	schema := Object{
		Name:                   "test",
		Properties:             map[string]Property{"value": {Type: Hex}},
		FailOnUnexpectedParams: true,
	}
	_, err := schema.Evaluate(map[string]any{"other": "x"})
	assert.ErrorContains(t, err, "unexpected key")
}

func TestObject_DeleteUnknownProperties(t *testing.T) {
	schema := Object{
		Name:                    "test",
		Properties:              map[string]Property{"value": {Type: Hex}},
		DeleteUnknownProperties: true,
	}
	obj, err := schema.Evaluate(map[string]any{"value": "0x1", "junk": "y"})
	assert.NoError(t, err)
	_, present := obj["junk"]
	assert.False(t, present)
}

func TestObject_NullableAllowsNull(t *testing.T) {
	schema := Object{
		Name:       "test",
		Properties: map[string]Property{"value": {Type: Hex, Nullable: true}},
	}
	_, err := schema.Evaluate(map[string]any{"value": nil})
	assert.NoError(t, err)
}

func TestObject_FailOnEmptyRequiresAtLeastOneProperty(t *testing.T) {
	schema := Object{
		Name:        "test",
		Properties:  map[string]Property{"value": {Type: Hex}},
		FailOnEmpty: true,
	}
	_, err := schema.Evaluate(map[string]any{})
	assert.Error(t, err)
}

func TestFilterObject_BlockHashExcludesFromToBlock(t *testing.T) {
	ok, msg := FilterObject.Validate(map[string]any{
		"blockHash": "0x" + repeat("ab", 32),
		"fromBlock": "0x1",
	})
	assert.False(t, ok)
	assert.Contains(t, msg, "mutually exclusive")
}

func TestFilterObject_FromToBlockAlone(t *testing.T) {
	ok, _ := FilterObject.Validate(map[string]any{
		"fromBlock": "0x1",
		"toBlock":   "latest",
	})
	assert.True(t, ok)
}

func TestTracerConfigWrapper_RequiresAtLeastOneKey(t *testing.T) {
	ok, msg := TracerConfigWrapper.Validate(map[string]any{})
	assert.False(t, ok)
	assert.Contains(t, msg, "at least one")

	ok, _ = TracerConfigWrapper.Validate(map[string]any{"tracer": "callTracer"})
	assert.True(t, ok)

	ok, _ = TracerConfigWrapper.Validate(map[string]any{"tracerConfig": map[string]any{"onlyTopCall": true}})
	assert.True(t, ok)
}

func repeat(s string, n int) string {
	out := make([]byte, 0, len(s)*n)
	for i := 0; i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}
