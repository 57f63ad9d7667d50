package router

import (
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func payload(amount uint64, from, quote uint8, extra ...byte) []byte {
	data := make([]byte, 8, PayloadSize+len(extra))
	binary.LittleEndian.PutUint64(data, amount)
	data = append(data, from, quote)
	return append(data, extra...)
}

func TestDecodeRequest(t *testing.T) {
	req, err := DecodeRequest(payload(400000000, 8, 6))
	require.NoError(t, err)

	assert.Equal(t, uint64(400000000), req.Amount)
	assert.Equal(t, uint8(8), req.SourceDecimals)
	assert.Equal(t, uint8(6), req.DestinationDecimals)
	assert.Equal(t, uint64(1), req.Rate)
	assert.False(t, req.Strict)
}

func TestDecodeRequestIgnoresTrailingBytes(t *testing.T) {
	short, err := DecodeRequest(payload(70000000, 6, 9))
	require.NoError(t, err)

	long, err := DecodeRequest(payload(70000000, 6, 9, 0xff, 0x01, 0x02))
	require.NoError(t, err)

	assert.Equal(t, short, long)
}

func TestDecodeRequestShortPayload(t *testing.T) {
	for n := 0; n < PayloadSize; n++ {
		_, err := DecodeRequest(make([]byte, n))
		require.Error(t, err, "length %d", n)
		assert.True(t, errors.Is(err, ErrMalformedPayload))
		assert.True(t, errors.Is(err, ErrInvalidArgument))
	}
}

func TestDecodeRequestMaxValues(t *testing.T) {
	req, err := DecodeRequest(payload(^uint64(0), 255, 0))
	require.NoError(t, err)

	assert.Equal(t, ^uint64(0), req.Amount)
	assert.Equal(t, uint8(255), req.SourceDecimals)
	assert.Equal(t, uint8(0), req.DestinationDecimals)
}

func TestEncodeRequest(t *testing.T) {
	data := EncodeRequest(&SwapRequest{Amount: 22, SourceDecimals: 9, DestinationDecimals: 6})
	assert.Equal(t, payload(22, 9, 6), data)

	req, err := DecodeRequest(data)
	require.NoError(t, err)
	assert.Equal(t, uint64(22), req.Amount)
}
