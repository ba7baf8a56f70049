package middleware

import (
	"context"
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/wanderspace/overseer/internal/auth"
	"github.com/wanderspace/overseer/internal/domain"
	"github.com/wanderspace/overseer/internal/handler"
	"github.com/wanderspace/overseer/internal/service"
	"github.com/wanderspace/overseer/internal/session"
)

// AccessVerifier validates an OIDC access token against the identity
// provider and returns the identity claims it carries.
type AccessVerifier interface {
	VerifyAccessToken(ctx context.Context, accessToken string) (domain.UpsertUserParams, error)
}

// =============================================================================
// Authorizer
// =============================================================================

// Authorizer is the single authorization entry point for API routes. Every
// guarded route goes through Require, which resolves the request's
// credentials into a typed principal and stores it in the context.
//
// Resolution order:
//
//  1. Authorization bearer equal to the static admin API token.
//  2. A signed session token, from the _token URL parameter, the
//     user_session cookie, or the bearer itself. The session's user row is
//     loaded so handlers see current tags and super-admin state.
//  3. A bearer matching a bot's service token.
//  4. A bearer accepted by the identity provider as an access token; the
//     local user is upserted from its claims.
//
// A request that resolves to no principal gets 401. A request whose
// principal kind is not accepted by the route gets 403.
type Authorizer struct {
	adminToken  string
	codec       *session.TokenCodec
	users       service.UserService
	bots        service.BotService
	verifier    AccessVerifier
	superAdmins map[string]bool
	logger      *slog.Logger
}

// NewAuthorizer creates an Authorizer. adminToken may be empty, which
// disables the static-token mechanism.
func NewAuthorizer(adminToken string, codec *session.TokenCodec, users service.UserService, bots service.BotService, logger *slog.Logger) *Authorizer {
	return &Authorizer{
		adminToken:  adminToken,
		codec:       codec,
		users:       users,
		bots:        bots,
		superAdmins: make(map[string]bool),
		logger:      logger,
	}
}

// WithAccessVerifier enables OIDC access-token resolution.
func (a *Authorizer) WithAccessVerifier(v AccessVerifier) *Authorizer {
	a.verifier = v
	return a
}

// WithSuperAdminEmails sets the email allowlist granting super-admin rights
// on top of the per-user flag. Matching is case-insensitive.
func (a *Authorizer) WithSuperAdminEmails(emails []string) *Authorizer {
	for _, e := range emails {
		e = strings.ToLower(strings.TrimSpace(e))
		if e != "" {
			a.superAdmins[e] = true
		}
	}
	return a
}

// Require returns middleware admitting only the given principal kinds.
// With no kinds, any authenticated principal is admitted.
//
// Usage:
//
//	mux.Handle("POST /api/universes", az.Require(auth.KindAdminToken)(createHandler))
//	mux.Handle("POST /api/usage", az.Require(auth.KindServiceToken)(usageHandler))
func (a *Authorizer) Require(kinds ...auth.Kind) func(http.Handler) http.Handler {
	allowed := make(map[auth.Kind]bool, len(kinds))
	for _, k := range kinds {
		allowed[k] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := a.resolve(r)
			if err != nil {
				handler.InternalErrorResponse(w, r, a.logger, err)
				return
			}
			if p == nil {
				handler.UnauthorizedResponse(w, r, a.logger)
				return
			}
			if len(allowed) > 0 && !allowed[p.Kind] {
				handler.ForbiddenResponse(w, r, a.logger)
				return
			}

			next.ServeHTTP(w, r.WithContext(auth.WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireSuperAdmin admits only admin-token bearers and session users on
// the super-admin allowlist or carrying the per-user flag.
func (a *Authorizer) RequireSuperAdmin(next http.Handler) http.Handler {
	return a.Require(auth.KindAdminToken, auth.KindSessionUser)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p := auth.PrincipalFrom(r.Context())
		if p == nil || !p.SuperAdmin {
			handler.ForbiddenResponse(w, r, a.logger)
			return
		}
		next.ServeHTTP(w, r)
	}))
}

// resolve turns the request's credentials into a principal. A nil principal
// with a nil error means no acceptable credential was presented; an error
// means a backend failed while checking one.
func (a *Authorizer) resolve(r *http.Request) (*auth.Principal, error) {
	ctx := r.Context()
	bearer := bearerToken(r)

	// Static admin API token.
	if a.adminToken != "" && bearer != "" &&
		subtle.ConstantTimeCompare([]byte(bearer), []byte(a.adminToken)) == 1 {
		return &auth.Principal{Kind: auth.KindAdminToken, SuperAdmin: true}, nil
	}

	// Signed session token. API routes honor the same sources as the
	// dashboard gate, plus the bearer header.
	if tok, _ := extractToken(r); tok != "" {
		if _, data, err := a.codec.Decode(tok); err == nil {
			return a.sessionPrincipal(ctx, data)
		}
	}

	if bearer == "" {
		return nil, nil
	}

	// Bot service token.
	bot, err := a.bots.GetByToken(ctx, bearer)
	switch {
	case err == nil:
		return &auth.Principal{Kind: auth.KindServiceToken, Bot: bot}, nil
	case domain.ErrorCode(err) != domain.ENOTFOUND:
		return nil, err
	}

	// OIDC access token. Provider rejections are logged, never surfaced;
	// the caller just sees 401.
	if a.verifier != nil {
		claims, err := a.verifier.VerifyAccessToken(ctx, bearer)
		if err != nil {
			a.logger.Debug("access token rejected", "error", err)
			return nil, nil
		}
		user, err := a.users.Upsert(ctx, claims)
		if err != nil {
			return nil, err
		}
		return a.userPrincipal(nil, user), nil
	}

	return nil, nil
}

// sessionPrincipal loads the user row behind a decoded session. A session
// whose user has since been deleted resolves to no principal.
func (a *Authorizer) sessionPrincipal(ctx context.Context, data session.Data) (*auth.Principal, error) {
	uid, err := uuid.Parse(data.UserID)
	if err != nil {
		a.logger.Warn("session token carries malformed user id", "user_id", data.UserID)
		return nil, nil
	}

	user, err := a.users.GetByID(ctx, uid)
	switch {
	case err == nil:
		return a.userPrincipal(&data, user), nil
	case domain.ErrorCode(err) == domain.ENOTFOUND:
		return nil, nil
	default:
		return nil, err
	}
}

func (a *Authorizer) userPrincipal(data *session.Data, user *domain.User) *auth.Principal {
	return &auth.Principal{
		Kind:       auth.KindSessionUser,
		Session:    data,
		User:       user,
		SuperAdmin: a.isSuperAdmin(user),
	}
}

func (a *Authorizer) isSuperAdmin(u *domain.User) bool {
	if u == nil {
		return false
	}
	if u.SuperAdmin {
		return true
	}
	return u.Email != "" && a.superAdmins[strings.ToLower(u.Email)]
}
