package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/dalemusser/assignportal/internal/app/system/apierr"
	"github.com/dalemusser/assignportal/internal/app/system/timeouts"
	"github.com/dalemusser/assignportal/internal/app/system/tokens"
	"go.uber.org/zap"
)

var (
	// ErrUnauthenticated means no usable bearer token was presented.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrForbidden means the caller is known but lacks the required role.
	ErrForbidden = errors.New("forbidden")
)

/*─────────────────────────────────────────────────────────────────────────────*
| Current-User helper                                                        |
*─────────────────────────────────────────────────────────────────────────────*/

// SessionUser is the authenticated caller injected into r.Context().
// Role is only populated on routes guarded by Require.
type SessionUser struct {
	Username string
	Role     string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user & “found?” flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

// ContextWithUser returns ctx carrying u as the current user.
func ContextWithUser(ctx context.Context, u *SessionUser) context.Context {
	return context.WithValue(ctx, currentUserKey, u)
}

/*─────────────────────────────────────────────────────────────────────────────*
| Guard                                                                      |
*─────────────────────────────────────────────────────────────────────────────*/

// RoleResolver looks up the current role of a user.
type RoleResolver interface {
	RoleOf(ctx context.Context, username string) (role string, found bool, err error)
}

// TokenParser verifies a bearer token.
type TokenParser interface {
	Parse(token string) (*tokens.Claims, error)
}

// Guard verifies bearer tokens and enforces roles. It keeps no state between
// requests: the role is read from the user store on every check, so a role
// change takes effect on the next request.
type Guard struct {
	tokens TokenParser
	roles  RoleResolver
	log    *zap.Logger
}

// NewGuard constructs a Guard.
func NewGuard(tp TokenParser, roles RoleResolver, logger *zap.Logger) *Guard {
	return &Guard{tokens: tp, roles: roles, log: logger}
}

// Authenticate returns the identity carried by token.
func (g *Guard) Authenticate(token string) (string, error) {
	if token == "" {
		return "", ErrUnauthenticated
	}
	claims, err := g.tokens.Parse(token)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}
	return claims.Identity(), nil
}

// RequireRole authenticates token and checks that its user currently holds
// expectedRole. It returns the identity on success.
func (g *Guard) RequireRole(ctx context.Context, token, expectedRole string) (string, error) {
	identity, err := g.Authenticate(token)
	if err != nil {
		return "", err
	}
	role, found, err := g.roles.RoleOf(ctx, identity)
	if err != nil {
		return "", fmt.Errorf("resolve role: %w", err)
	}
	if !found || !strings.EqualFold(role, expectedRole) {
		return "", ErrForbidden
	}
	return identity, nil
}

/*─────────────────────────────────────────────────────────────────────────────*
| Middleware                                                                 |
*─────────────────────────────────────────────────────────────────────────────*/

// SignedIn requires a valid bearer token and puts the caller in context.
// Failure → 401 {"message"}.
func (g *Guard) SignedIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Authenticate(BearerToken(r))
		if err != nil {
			apierr.Write(w, r, g.log, &apierr.Error{Kind: apierr.KindUnauthenticated, Message: unauthMessage(r), Err: err})
			return
		}
		next.ServeHTTP(w, withUser(r, &SessionUser{Username: identity}))
	})
}

// Require returns middleware that admits only callers whose stored role is role.
//   - no / bad token → 401
//   - wrong role or unknown user → 403 "Access denied"
//   - role lookup failure → 500
func (g *Guard) Require(role string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), g.log, "check role")
			defer cancel()

			identity, err := g.RequireRole(ctx, BearerToken(r), role)
			switch {
			case err == nil:
			case errors.Is(err, ErrUnauthenticated):
				apierr.Write(w, r, g.log, &apierr.Error{Kind: apierr.KindUnauthenticated, Message: unauthMessage(r), Err: err})
				return
			case errors.Is(err, ErrForbidden):
				apierr.Write(w, r, g.log, apierr.Forbidden("Access denied"))
				return
			default:
				apierr.Write(w, r, g.log, apierr.Internal("Error checking access", err))
				return
			}

			next.ServeHTTP(w, withUser(r, &SessionUser{Username: identity, Role: strings.ToLower(role)}))
		})
	}
}

// BearerToken extracts the token from an "Authorization: Bearer <token>" header.
// It returns "" when the header is missing or uses another scheme.
func BearerToken(r *http.Request) string {
	h := strings.TrimSpace(r.Header.Get("Authorization"))
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// helpers

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(ContextWithUser(r.Context(), u))
}

func unauthMessage(r *http.Request) string {
	if r.Header.Get("Authorization") == "" {
		return "Missing Authorization Header"
	}
	return "Invalid or expired token"
}
