// Package oidc bridges dashboard login to an OpenID Connect provider
// using the authorization code flow with PKCE, and validates provider
// access tokens presented to the API.
package oidc

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
	"golang.org/x/crypto/hkdf"
	"golang.org/x/oauth2"

	"github.com/wanderspace/overseer/internal/domain"
)

const (
	stateCookieName = "oidc_state"
	stateCookieTTL  = 10 * time.Minute

	// hkdfInfo differs from the session codec's info string, so the one
	// configured secret yields independent keys for the two cookies.
	hkdfInfo = "overseer oidc state v1"
)

// Config carries the provider settings.
type Config struct {
	IssuerURL    string
	ClientID     string
	ClientSecret string
	RedirectURL  string
	CookieSecret []byte
	Secure       bool
}

// Client speaks to a single OIDC provider. It holds the discovered
// endpoints, the OAuth2 client credentials, and the codec for the signed
// state cookie that carries the login flow between /login and the callback.
type Client struct {
	provider *oidc.Provider
	oauth    oauth2.Config
	sc       *securecookie.SecureCookie
	secure   bool
}

// statePayload rides the state cookie between the two legs of the flow.
type statePayload struct {
	State    string `json:"state"`
	Verifier string `json:"verifier"`
	Redirect string `json:"redirect"`
}

// New discovers the issuer and returns a ready client.
func New(ctx context.Context, cfg Config) (*Client, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("discover oidc issuer %s: %w", cfg.IssuerURL, err)
	}

	sc, err := newStateCodec(cfg.CookieSecret)
	if err != nil {
		return nil, err
	}

	return &Client{
		provider: provider,
		oauth: oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		sc:     sc,
		secure: cfg.Secure,
	}, nil
}

// newStateCodec derives the state cookie keys from the shared secret with
// HKDF-SHA256, the same construction the session codec uses.
func newStateCodec(secret []byte) (*securecookie.SecureCookie, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("oidc state secret must be at least 32 bytes, got %d", len(secret))
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
	sc.MaxAge(int(stateCookieTTL.Seconds()))

	return sc, nil
}

// identityClaims is the subset of provider claims the admin records.
type identityClaims struct {
	Subject string   `json:"sub"`
	Email   string   `json:"email"`
	Name    string   `json:"name"`
	Tags    []string `json:"tags"`
}

func (c identityClaims) upsertParams() domain.UpsertUserParams {
	return domain.UpsertUserParams{
		UUID:  c.Subject,
		Email: c.Email,
		Name:  c.Name,
		Tags:  c.Tags,
	}
}

// Begin starts the login flow. It mints the state value and PKCE verifier,
// stores them with the post-login redirect in the signed state cookie, and
// returns the provider URL to send the user to.
func (c *Client) Begin(w http.ResponseWriter, redirect string) (string, error) {
	const op = "oidc.begin"

	// PKCE protects the code exchange against interception; the random
	// state ties the callback to this browser.
	verifier := oauth2.GenerateVerifier()
	state := uuid.NewString()

	encoded, err := c.sc.Encode(stateCookieName, statePayload{
		State:    state,
		Verifier: verifier,
		Redirect: redirect,
	})
	if err != nil {
		return "", domain.Internal(err, op, "Failed to start sign-in")
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    encoded,
		Path:     "/",
		MaxAge:   int(stateCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})

	return c.oauth.AuthCodeURL(state, oauth2.S256ChallengeOption(verifier)), nil
}

// Complete finishes the callback leg. It validates the state cookie,
// exchanges the authorization code, verifies the ID token, and returns the
// identity claims plus the redirect target captured at login.
//
// Every provider-side failure comes back as an authentication error with a
// uniform message; the underlying cause stays wrapped for server logs.
func (c *Client) Complete(ctx context.Context, w http.ResponseWriter, r *http.Request) (domain.UpsertUserParams, string, error) {
	const op = "oidc.callback"

	cookie, err := r.Cookie(stateCookieName)
	if err != nil {
		return domain.UpsertUserParams{}, "", domain.Unauthorized(op, "Sign-in session expired. Please sign in again.")
	}

	var st statePayload
	if err := c.sc.Decode(stateCookieName, cookie.Value, &st); err != nil {
		return domain.UpsertUserParams{}, "", domain.Wrap(err, domain.EUNAUTHORIZED, op, "Sign-in session expired. Please sign in again.")
	}

	// One-shot: the state cookie never survives the callback, success or
	// not.
	c.clearStateCookie(w)

	if r.URL.Query().Get("state") != st.State {
		return domain.UpsertUserParams{}, "", domain.Unauthorized(op, "Sign-in verification failed. Please sign in again.")
	}

	redirect := st.Redirect
	if redirect == "" {
		redirect = "/admin"
	}

	token, err := c.oauth.Exchange(ctx, r.URL.Query().Get("code"), oauth2.VerifierOption(st.Verifier))
	if err != nil {
		return domain.UpsertUserParams{}, "", domain.Wrap(err, domain.EUNAUTHORIZED, op, "Sign-in verification failed. Please sign in again.")
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok {
		return domain.UpsertUserParams{}, "", domain.Unauthorized(op, "Sign-in verification failed. Please sign in again.")
	}

	idToken, err := c.provider.Verifier(&oidc.Config{ClientID: c.oauth.ClientID}).Verify(ctx, rawIDToken)
	if err != nil {
		return domain.UpsertUserParams{}, "", domain.Wrap(err, domain.EUNAUTHORIZED, op, "Sign-in verification failed. Please sign in again.")
	}

	var claims identityClaims
	if err := idToken.Claims(&claims); err != nil {
		return domain.UpsertUserParams{}, "", domain.Wrap(err, domain.EUNAUTHORIZED, op, "Sign-in verification failed. Please sign in again.")
	}
	if claims.Subject == "" {
		claims.Subject = idToken.Subject
	}

	return claims.upsertParams(), redirect, nil
}

// VerifyAccessToken validates a provider access token against the UserInfo
// endpoint and returns the identity claims. This backs API bearer calls
// whose token is neither the admin token, a session token, nor a bot
// credential.
func (c *Client) VerifyAccessToken(ctx context.Context, accessToken string) (domain.UpsertUserParams, error) {
	const op = "oidc.verify_access_token"

	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	info, err := c.provider.UserInfo(ctx, src)
	if err != nil {
		return domain.UpsertUserParams{}, domain.Wrap(err, domain.EUNAUTHORIZED, op, "Authentication required")
	}

	var claims identityClaims
	if err := info.Claims(&claims); err != nil {
		return domain.UpsertUserParams{}, domain.Wrap(err, domain.EUNAUTHORIZED, op, "Authentication required")
	}
	if claims.Subject == "" {
		claims.Subject = info.Subject
	}

	return claims.upsertParams(), nil
}

func (c *Client) clearStateCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     stateCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   c.secure,
		SameSite: http.SameSiteLaxMode,
	})
}
