package session

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSecret() []byte {
	return []byte("0123456789abcdef0123456789abcdef")
}

func testSession(expiresIn time.Duration) Data {
	now := time.Now()
	return Data{
		UserID:    "user-1",
		UUID:      "ext-1",
		Email:     "ada@example.com",
		Name:      "Ada",
		Tags:      []string{"staff"},
		CreatedAt: now.UnixMilli(),
		ExpiresAt: now.Add(expiresIn).UnixMilli(),
	}
}

func TestTokenCodecRoundtrip(t *testing.T) {
	codec, err := NewTokenCodec(testSecret())
	require.NoError(t, err)

	data := testSession(Lifetime)
	token, err := codec.Encode("session-id-1", data)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	assert.NotContains(t, token, "ada@example.com", "payload must not be readable from the token")

	id, got, err := codec.Decode(token)
	require.NoError(t, err)
	assert.Equal(t, "session-id-1", id)
	assert.Equal(t, data, got)
}

func TestTokenCodecRejectsTampering(t *testing.T) {
	codec, err := NewTokenCodec(testSecret())
	require.NoError(t, err)

	token, err := codec.Encode("session-id-1", testSession(Lifetime))
	require.NoError(t, err)

	// Flip one character somewhere in the middle.
	mid := len(token) / 2
	flipped := byte('A')
	if token[mid] == 'A' {
		flipped = 'B'
	}
	tampered := token[:mid] + string(flipped) + token[mid+1:]

	_, _, err = codec.Decode(tampered)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodecRejectsExpired(t *testing.T) {
	codec, err := NewTokenCodec(testSecret())
	require.NoError(t, err)

	token, err := codec.Encode("session-id-1", testSession(-time.Hour))
	require.NoError(t, err)

	_, _, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenCodecRejectsGarbage(t *testing.T) {
	codec, err := NewTokenCodec(testSecret())
	require.NoError(t, err)

	for _, token := range []string{"", "not-a-token", strings.Repeat("x", 500)} {
		_, _, err := codec.Decode(token)
		assert.ErrorIs(t, err, ErrInvalidToken)
	}
}

func TestTokenCodecRejectsForeignSecret(t *testing.T) {
	codec, err := NewTokenCodec(testSecret())
	require.NoError(t, err)

	other, err := NewTokenCodec([]byte("ffffffffffffffffffffffffffffffff"))
	require.NoError(t, err)

	token, err := other.Encode("session-id-1", testSession(Lifetime))
	require.NoError(t, err)

	_, _, err = codec.Decode(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestNewTokenCodecRejectsShortSecret(t *testing.T) {
	_, err := NewTokenCodec([]byte("too short"))
	assert.Error(t, err)
}
