package serialization

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	ID      string            `json:"id"`
	Name    string            `json:"name,omitempty"`
	Labels  map[string]string `json:"labels"`
	Count   int               `json:"count"`
	Created time.Time         `json:"created"`
}

func newSample() sample {
	return sample{
		ID:      "p-1",
		Name:    strings.Repeat("compressible ", 50),
		Labels:  map[string]string{"kind": "agent"},
		Count:   3,
		Created: time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func randomKey(t *testing.T, n int) []byte {
	t.Helper()
	key := make([]byte, n)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestSerializer_RoundTrip(t *testing.T) {
	tests := []struct {
		name        string
		codec       Codec
		compression Compression
		keySize     int
		describe    string
	}{
		{"json plain", JSONCodec{}, CompressionNone, 0, "json"},
		{"msgpack zstd", MsgPackCodec{}, CompressionZstd, 0, "msgpack+zstd"},
		{"msgpack gzip sealed", MsgPackCodec{}, CompressionGzip, 32, "msgpack+gzip+aes-gcm"},
		{"json zstd sealed 128", JSONCodec{}, CompressionZstd, 16, "json+zstd+aes-gcm"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var key []byte
			if tt.keySize > 0 {
				key = randomKey(t, tt.keySize)
			}
			s, err := New(Config{Codec: tt.codec, Compression: tt.compression, Key: key})
			require.NoError(t, err)
			assert.Equal(t, tt.describe, s.Describe())

			in := newSample()
			data, err := s.Marshal(in)
			require.NoError(t, err)

			var out sample
			require.NoError(t, s.Unmarshal(data, &out))
			assert.Equal(t, in.ID, out.ID)
			assert.Equal(t, in.Name, out.Name)
			assert.Equal(t, in.Labels, out.Labels)
			assert.Equal(t, in.Count, out.Count)
			assert.True(t, in.Created.Equal(out.Created))
		})
	}
}

func TestSerializer_Compresses(t *testing.T) {
	plain, err := New(Config{Codec: JSONCodec{}})
	require.NoError(t, err)
	raw, err := plain.Marshal(newSample())
	require.NoError(t, err)

	for _, c := range []Compression{CompressionGzip, CompressionZstd} {
		s, err := New(Config{Codec: JSONCodec{}, Compression: c})
		require.NoError(t, err)
		packed, err := s.Marshal(newSample())
		require.NoError(t, err)
		assert.Less(t, len(packed), len(raw), c)
	}
}

func TestSerializer_Sealed(t *testing.T) {
	key := randomKey(t, 32)
	s, err := New(Config{Codec: JSONCodec{}, Key: key})
	require.NoError(t, err)

	a, err := s.Marshal(newSample())
	require.NoError(t, err)
	b, err := s.Marshal(newSample())
	require.NoError(t, err)
	assert.False(t, bytes.Equal(a, b), "nonce must differ per write")
	assert.NotContains(t, string(a), "p-1")

	other, err := New(Config{Codec: JSONCodec{}, Key: randomKey(t, 32)})
	require.NoError(t, err)
	var out sample
	assert.Error(t, other.Unmarshal(a, &out))
	assert.ErrorIs(t, s.Unmarshal([]byte{1, 2}, &out), ErrCiphertextTooShort)
}

func TestMsgPackCodec_UsesJSONNames(t *testing.T) {
	data, err := MsgPackCodec{}.Encode(sample{ID: "x"})
	require.NoError(t, err)
	assert.Contains(t, string(data), "labels")
	assert.NotContains(t, string(data), "Labels")
	assert.NotContains(t, string(data), "name", "omitempty is honoured")
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{Key: []byte("short")})
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = New(Config{Compression: "lz4"})
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestDefault(t *testing.T) {
	s := Default()
	assert.Equal(t, "msgpack+zstd", s.Describe())
	data, err := s.Marshal(newSample())
	require.NoError(t, err)
	var out sample
	require.NoError(t, s.Unmarshal(data, &out))
	assert.Equal(t, "p-1", out.ID)
}

func TestCodecByName(t *testing.T) {
	c, err := CodecByName("JSON")
	require.NoError(t, err)
	assert.Equal(t, "json", c.Name())

	c, err = CodecByName("")
	require.NoError(t, err)
	assert.Equal(t, "msgpack", c.Name())

	_, err = CodecByName("xml")
	assert.ErrorIs(t, err, ErrUnknownCodec)
}

func TestParseCompression(t *testing.T) {
	c, err := ParseCompression("")
	require.NoError(t, err)
	assert.Equal(t, CompressionZstd, c)

	c, err = ParseCompression("GZIP")
	require.NoError(t, err)
	assert.Equal(t, CompressionGzip, c)

	_, err = ParseCompression("brotli")
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestParseKey(t *testing.T) {
	raw := randomKey(t, 32)

	key, err := ParseKey(hex.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, key)

	key, err = ParseKey(base64.StdEncoding.EncodeToString(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, key)

	key, err = ParseKey("  ")
	require.NoError(t, err)
	assert.Nil(t, key)

	_, err = ParseKey("abcd")
	assert.ErrorIs(t, err, ErrInvalidKey)

	_, err = ParseKey("not a key!")
	assert.ErrorIs(t, err, ErrInvalidKey)
}
