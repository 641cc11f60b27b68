package interaction

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCustomIDRoundTrip(t *testing.T) {
	raw, err := EncodeCustomID(86699011792191488, "prune", "150", "extra")
	require.NoError(t, err)
	assert.Equal(t, "86699011792191488:prune:150:extra", raw)

	cid, err := DecodeCustomID(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(86699011792191488), cid.Originator)
	assert.Equal(t, "prune", cid.Action)
	assert.Equal(t, []string{"150", "extra"}, cid.Params)
}

func TestCustomIDNoParams(t *testing.T) {
	raw, err := EncodeCustomID(42, "delete")
	require.NoError(t, err)

	cid, err := DecodeCustomID(raw)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), cid.Originator)
	assert.Equal(t, "delete", cid.Action)
	assert.Empty(t, cid.Params)
}

func TestCustomIDTooLong(t *testing.T) {
	// 17-digit originator + separator + action leaves no room for this.
	_, err := EncodeCustomID(86699011792191488, "prune", strings.Repeat("x", 100))
	assert.ErrorIs(t, err, ErrCustomIDTooLong)

	// At exactly the bound encoding still succeeds.
	pad := strings.Repeat("x", 100-len("86699011792191488:prune:"))
	raw, err := EncodeCustomID(86699011792191488, "prune", pad)
	require.NoError(t, err)
	assert.Len(t, raw, 100)
}

func TestDecodeCustomIDMalformed(t *testing.T) {
	for _, raw := range []string{"", "justone", "notanumber:prune"} {
		_, err := DecodeCustomID(raw)
		assert.ErrorIs(t, err, ErrMalformedCustomID, "raw=%q", raw)
	}
}

func TestDecodeCustomIDKeepsParamsUnvalidated(t *testing.T) {
	// Semantically garbage params decode fine; validation is the handler's.
	cid, err := DecodeCustomID("42:prune:not-a-number")
	require.NoError(t, err)
	assert.Equal(t, []string{"not-a-number"}, cid.Params)
}
