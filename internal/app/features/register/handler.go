// internal/app/features/register/handler.go
package register

import (
	"context"
	"errors"
	"net/http"

	"github.com/dalemusser/assignportal/internal/app/system/apierr"
	"github.com/dalemusser/assignportal/internal/app/system/auditlog"
	"github.com/dalemusser/assignportal/internal/app/system/credentials"
	"github.com/dalemusser/assignportal/internal/app/system/jsonutil"
	"github.com/dalemusser/assignportal/internal/app/system/limits"
	"github.com/dalemusser/assignportal/internal/app/system/timeouts"
	"github.com/dalemusser/assignportal/internal/domain/models"
	"go.uber.org/zap"
)

// Registrar creates accounts. *credentials.Service satisfies it.
type Registrar interface {
	Register(ctx context.Context, username, password, role string) error
}

type Handler struct {
	Creds    Registrar
	AuditLog *auditlog.Logger
	Log      *zap.Logger
}

func NewHandler(creds Registrar, audit *auditlog.Logger, logger *zap.Logger) *Handler {
	return &Handler{Creds: creds, AuditLog: audit, Log: logger}
}

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// HandleRegister handles POST /register.
//
//	201 {"message":"User registered successfully"}
//	400 {"message":"User already exists"} and other input errors
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxCredentialsBody)
	if err := jsonutil.Decode(r, &req); err != nil {
		apierr.Write(w, r, h.Log, &apierr.Error{Kind: apierr.KindValidation, Message: "Invalid request body", Err: err})
		return
	}

	req.Username = credentials.NormalizeUsername(req.Username)

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "register user")
	defer cancel()

	err := h.Creds.Register(ctx, req.Username, req.Password, req.Role)
	switch {
	case err == nil:
	case errors.Is(err, credentials.ErrConflict):
		h.AuditLog.RegisterFailed(ctx, r, req.Username, "username taken")
		apierr.Write(w, r, h.Log, apierr.Conflict("User already exists"))
		return
	case errors.Is(err, credentials.ErrMissingFields):
		apierr.Write(w, r, h.Log, apierr.Validation("Username and password are required"))
		return
	case errors.Is(err, credentials.ErrPasswordTooLong):
		apierr.Write(w, r, h.Log, apierr.Validation("Password must be at most 72 bytes"))
		return
	case errors.Is(err, credentials.ErrInvalidRole):
		apierr.Write(w, r, h.Log, apierr.Validation(`Role must be "user" or "admin"`))
		return
	default:
		apierr.Write(w, r, h.Log, apierr.Internal("Error registering user", err))
		return
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}
	h.AuditLog.UserRegistered(ctx, r, req.Username, role)
	jsonutil.Write(w, http.StatusCreated, apierr.Message{Message: "User registered successfully"})
}
