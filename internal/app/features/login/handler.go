// internal/app/features/login/handler.go
package login

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/assignportal/internal/app/system/apierr"
	"github.com/dalemusser/assignportal/internal/app/system/auditlog"
	"github.com/dalemusser/assignportal/internal/app/system/credentials"
	"github.com/dalemusser/assignportal/internal/app/system/jsonutil"
	"github.com/dalemusser/assignportal/internal/app/system/limits"
	"github.com/dalemusser/assignportal/internal/app/system/ratelimit"
	"github.com/dalemusser/assignportal/internal/app/system/timeouts"
	"github.com/dalemusser/assignportal/internal/app/system/tokens"
	"go.uber.org/zap"
)

// Authenticator checks a username/password pair. *credentials.Service satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (role string, err error)
}

type Handler struct {
	Creds    Authenticator
	Tokens   *tokens.Issuer
	Limiter  *ratelimit.LoginLimiter // nil disables throttling
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string `json:"token"`
}

// HandleLogin handles POST /login.
//
//	200 {"token":"<jwt>"}
//	401 {"message":"Invalid credentials"}
//	429 when the client or account is throttled
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCredentialsBody)
	if err := jsonutil.Decode(r, &req); err != nil {
		apierr.Write(w, r, h.Log, &apierr.Error{Kind: apierr.KindValidation, Message: "Invalid request body", Err: err})
		return
	}
	req.Username = credentials.NormalizeUsername(req.Username)
	if req.Username == "" || req.Password == "" {
		apierr.Write(w, r, h.Log, apierr.Validation("Username and password are required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login")
	defer cancel()

	if ok, reason := h.Limiter.Check(r, req.Username); !ok {
		h.AuditLog.LoginRateLimited(ctx, r, req.Username)
		apierr.Write(w, r, h.Log, apierr.TooManyRequests(reason))
		return
	}

	_, err := h.Creds.Authenticate(ctx, req.Username, req.Password)
	if errors.Is(err, credentials.ErrInvalidCredentials) {
		h.AuditLog.LoginFailed(ctx, r, req.Username)
		apierr.Write(w, r, h.Log, apierr.Unauthenticated("Invalid credentials"))
		return
	}
	if err != nil {
		apierr.Write(w, r, h.Log, apierr.Internal("Error logging in", err))
		return
	}

	token, _, err := h.Tokens.Issue(req.Username)
	if err != nil {
		apierr.Write(w, r, h.Log, apierr.Internal("Error issuing token", err))
		return
	}

	h.Limiter.ResetUsername(req.Username)
	h.AuditLog.LoginSuccess(ctx, r, req.Username)
	jsonutil.Write(w, http.StatusOK, loginResponse{Token: token})
}
