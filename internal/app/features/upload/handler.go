// internal/app/features/upload/handler.go
package upload

import (
	"context"
	"net/http"
	"strings"

	"github.com/dalemusser/assignportal/internal/app/system/apierr"
	"github.com/dalemusser/assignportal/internal/app/system/auth"
	"github.com/dalemusser/assignportal/internal/app/system/jsonutil"
	"github.com/dalemusser/assignportal/internal/app/system/limits"
	"github.com/dalemusser/assignportal/internal/app/system/timeouts"
	"github.com/dalemusser/assignportal/internal/domain/models"
	"go.uber.org/zap"
)

// AssignmentCreator persists new submissions. *assignmentstore.Store satisfies it.
type AssignmentCreator interface {
	Create(ctx context.Context, owner, admin, task string) (models.Assignment, error)
}

// AdminChecker reports whether a username is an admin. *userstore.Store satisfies it.
type AdminChecker interface {
	IsAdmin(ctx context.Context, username string) (bool, error)
}

type Handler struct {
	Assignments AssignmentCreator
	Users       AdminChecker
	// RequireKnownAdmin rejects uploads addressed to a username that is not an admin.
	RequireKnownAdmin bool
	Log               *zap.Logger
}

type uploadRequest struct {
	Task  string `json:"task"`
	Admin string `json:"admin"`
}

type uploadResponse struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// HandleUpload handles POST /upload for any signed-in caller.
//
//	201 {"message":"Assignment uploaded successfully","id":"<hex>"}
//	400 missing task/admin, or admin unknown when RequireKnownAdmin is set
//	500 {"message":"Error uploading assignment: <err>"}
func (h *Handler) HandleUpload(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, r, h.Log, apierr.Unauthenticated("Missing Authorization Header"))
		return
	}

	var req uploadRequest
	r.Body = http.MaxBytesReader(w, r.Body, limits.MaxUploadBody)
	if err := jsonutil.Decode(r, &req); err != nil {
		apierr.Write(w, r, h.Log, &apierr.Error{Kind: apierr.KindValidation, Message: "Invalid request body", Err: err})
		return
	}
	admin := strings.TrimSpace(req.Admin)
	if req.Task == "" || admin == "" {
		apierr.Write(w, r, h.Log, apierr.Validation("Task and admin are required"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "upload assignment")
	defer cancel()

	if h.RequireKnownAdmin {
		isAdmin, err := h.Users.IsAdmin(ctx, admin)
		if err != nil {
			apierr.Write(w, r, h.Log, apierr.Internal("Error uploading assignment", err))
			return
		}
		if !isAdmin {
			apierr.Write(w, r, h.Log, apierr.Validation("Admin not found"))
			return
		}
	}

	a, err := h.Assignments.Create(ctx, user.Username, admin, req.Task)
	if err != nil {
		apierr.Write(w, r, h.Log, apierr.Internal("Error uploading assignment", err))
		return
	}

	h.Log.Info("assignment uploaded",
		zap.String("id", a.ID.Hex()),
		zap.String("user", user.Username),
		zap.String("admin", admin))
	jsonutil.Write(w, http.StatusCreated, uploadResponse{Message: "Assignment uploaded successfully", ID: a.ID.Hex()})
}
