// Package session implements the session subsystem: the session record,
// the signed wire token, and the backing stores.
//
// A session is created at login and immutable afterwards. The store keys
// records by an opaque random identifier; clients never see that identifier
// directly, only the signed token produced by TokenCodec, which embeds the
// full record so request paths can validate without a store lookup.
package session

import "time"

const (
	// CookieName is the name of the cookie that carries the session token.
	// The same name keys the securecookie MAC, so tokens are not portable
	// across differently-named deployments.
	CookieName = "user_session"

	// CookiePath ensures the cookie is sent with all requests.
	CookiePath = "/"

	// Lifetime is how long a session remains valid after creation.
	Lifetime = 7 * 24 * time.Hour

	// CookieMaxAge is Lifetime in seconds, for the cookie attribute.
	CookieMaxAge = int(Lifetime / time.Second)

	// TokenHeader is the response header carrying a re-encoded token for
	// clients that cannot rely on cookies (embedded iframes).
	TokenHeader = "x-session-token"

	// TokenParam is the URL query parameter accepted as a token source.
	TokenParam = "_token"

	// DefaultSweepInterval is how often the in-memory store sweeps expired
	// records when no interval is configured.
	DefaultSweepInterval = 10 * time.Minute
)

// Data is the session record. Timestamps are Unix milliseconds to keep the
// wire shape stable for the dashboard client. Email and Name are empty
// strings when the identity provider withheld them.
//
// Records are immutable once created. The store owns them; every read
// returns a copy.
type Data struct {
	UserID    string   `json:"userId"`
	UUID      string   `json:"uuid"`
	Email     string   `json:"email,omitempty"`
	Name      string   `json:"name,omitempty"`
	Tags      []string `json:"tags"`
	CreatedAt int64    `json:"createdAt"`
	ExpiresAt int64    `json:"expiresAt"`
}

// Expired reports whether the session is past its expiry at the given time.
func (d Data) Expired(now time.Time) bool {
	return now.UnixMilli() > d.ExpiresAt
}

// TTL returns the remaining lifetime at the given time, or zero if expired.
func (d Data) TTL(now time.Time) time.Duration {
	remaining := time.UnixMilli(d.ExpiresAt).Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// clone returns a deep copy so callers can't mutate stored records.
func (d Data) clone() Data {
	out := d
	if d.Tags != nil {
		out.Tags = make([]string, len(d.Tags))
		copy(out.Tags, d.Tags)
	}
	return out
}
