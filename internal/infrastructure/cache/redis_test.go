package cache

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressRoundTrip(t *testing.T) {
	body := `{"data":[` + strings.Repeat(`{"id":"x","order":1},`, 50) + `{}]}`

	packed, err := compress(body)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(body))

	unpacked, err := decompress(packed)
	require.NoError(t, err)
	assert.Equal(t, body, unpacked)
}

func TestValidateKey(t *testing.T) {
	r := &RedisClient{config: DefaultConfig()}

	assert.NoError(t, r.validateKey("http:/api/backlog"))
	assert.ErrorIs(t, r.validateKey(""), ErrInvalidConfig)
	assert.ErrorIs(t, r.validateKey(strings.Repeat("k", 257)), ErrInvalidConfig)
	assert.Equal(t, "swhouse:k", r.prefixKey("k"))
}
