package session

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
)

// ErrInvalidToken is returned for any token that fails to decode: bad MAC,
// wrong name, garbled encoding, or past expiry. Callers treat all of these
// uniformly as "no session".
var ErrInvalidToken = errors.New("invalid session token")

// MinSecretLen is the minimum accepted SESSION_SECRET length in bytes.
const MinSecretLen = 32

// hkdfInfo binds derived keys to this purpose; changing it invalidates all
// outstanding tokens.
const hkdfInfo = "overseer session token v1"

// TokenCodec produces and verifies the single wire representation of a
// session: an authenticated, encrypted blob embedding the full record plus
// its store identifier. The same token string is valid in the session
// cookie, the _token URL parameter, the x-session-token header, and an
// Authorization bearer.
//
// Decoding is purely local. No store lookup or network call happens here,
// which is what lets the request gate validate synchronously and lets URL
// tokens work inside embedded iframes where cookies are unreliable.
type TokenCodec struct {
	sc *securecookie.SecureCookie
}

// tokenPayload is the signed content: the store identifier plus the record.
type tokenPayload struct {
	ID      string `json:"id"`
	Session Data   `json:"session"`
}

// NewTokenCodec derives the codec keys from secret. The secret must carry
// at least MinSecretLen bytes; hash and block keys are derived from it with
// HKDF-SHA256 so one configured value covers both.
func NewTokenCodec(secret []byte) (*TokenCodec, error) {
	if len(secret) < MinSecretLen {
		return nil, fmt.Errorf("session secret must be at least %d bytes, got %d", MinSecretLen, len(secret))
	}

	kdf := hkdf.New(sha256.New, secret, nil, []byte(hkdfInfo))
	hashKey := make([]byte, 32)
	blockKey := make([]byte, 32)
	if _, err := io.ReadFull(kdf, hashKey); err != nil {
		return nil, fmt.Errorf("derive hash key: %w", err)
	}
	if _, err := io.ReadFull(kdf, blockKey); err != nil {
		return nil, fmt.Errorf("derive block key: %w", err)
	}

	sc := securecookie.New(hashKey, blockKey)
	sc.SetSerializer(securecookie.JSONEncoder{})
	sc.MaxAge(CookieMaxAge)

	return &TokenCodec{sc: sc}, nil
}

// Encode produces the wire token for a stored session.
func (c *TokenCodec) Encode(id string, data Data) (string, error) {
	token, err := c.sc.Encode(CookieName, tokenPayload{ID: id, Session: data})
	if err != nil {
		return "", fmt.Errorf("encode session token: %w", err)
	}
	return token, nil
}

// Decode verifies a wire token and returns the store identifier and record.
// Expired sessions fail exactly like forged ones: with ErrInvalidToken.
func (c *TokenCodec) Decode(token string) (string, Data, error) {
	var payload tokenPayload
	if err := c.sc.Decode(CookieName, token, &payload); err != nil {
		return "", Data{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if payload.Session.Expired(time.Now()) {
		return "", Data{}, fmt.Errorf("%w: expired", ErrInvalidToken)
	}
	return payload.ID, payload.Session, nil
}
