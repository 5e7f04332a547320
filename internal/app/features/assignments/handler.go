// internal/app/features/assignments/handler.go
package assignments

import (
	"context"
	"errors"
	"net/http"

	assignmentstore "github.com/dalemusser/assignportal/internal/app/store/assignments"
	"github.com/dalemusser/assignportal/internal/app/system/apierr"
	"github.com/dalemusser/assignportal/internal/app/system/auditlog"
	"github.com/dalemusser/assignportal/internal/app/system/auth"
	"github.com/dalemusser/assignportal/internal/app/system/jsonutil"
	"github.com/dalemusser/assignportal/internal/app/system/timeouts"
	"github.com/dalemusser/assignportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Reviewer is the assignment persistence these routes work against.
// *assignmentstore.Store satisfies it.
type Reviewer interface {
	ListPendingForAdmin(ctx context.Context, admin string) ([]models.Assignment, error)
	ListByOwner(ctx context.Context, owner string) ([]models.Assignment, error)
	Decide(ctx context.Context, idHex, admin, action string) (models.Assignment, error)
}

type Handler struct {
	Assignments Reviewer
	AuditLog    *auditlog.Logger
	Log         *zap.Logger
}

// ServeList handles GET /assignments: the caller's pending queue, oldest first.
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, r, h.Log, apierr.Unauthenticated("Missing Authorization Header"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list pending assignments")
	defer cancel()

	list, err := h.Assignments.ListPendingForAdmin(ctx, admin.Username)
	if err != nil {
		apierr.Write(w, r, h.Log, apierr.Internal("Error fetching assignments", err))
		return
	}
	if list == nil {
		list = []models.Assignment{}
	}
	jsonutil.Write(w, http.StatusOK, list)
}

// ServeMine handles GET /assignments/mine: the caller's own submissions in
// any status, newest first. Open to every signed-in user.
func (h *Handler) ServeMine(w http.ResponseWriter, r *http.Request) {
	user, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, r, h.Log, apierr.Unauthenticated("Missing Authorization Header"))
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list own assignments")
	defer cancel()

	list, err := h.Assignments.ListByOwner(ctx, user.Username)
	if err != nil {
		apierr.Write(w, r, h.Log, apierr.Internal("Error fetching assignments", err))
		return
	}
	if list == nil {
		list = []models.Assignment{}
	}
	jsonutil.Write(w, http.StatusOK, list)
}

// HandleDecide handles POST /assignments/{id}/{action}.
//
//	200 {"message":"Assignment accepted"} / {"message":"Assignment rejected"}
//	404 not found or addressed to another admin
//	400 action other than accept/reject
//	409 already accepted or rejected
func (h *Handler) HandleDecide(w http.ResponseWriter, r *http.Request) {
	admin, ok := auth.CurrentUser(r)
	if !ok {
		apierr.Write(w, r, h.Log, apierr.Unauthenticated("Missing Authorization Header"))
		return
	}
	id := chi.URLParam(r, "id")
	action := chi.URLParam(r, "action")

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "decide assignment")
	defer cancel()

	a, err := h.Assignments.Decide(ctx, id, admin.Username, action)
	switch {
	case err == nil:
	case errors.Is(err, assignmentstore.ErrNotFound):
		apierr.Write(w, r, h.Log, apierr.NotFound("Assignment not found"))
		return
	case errors.Is(err, assignmentstore.ErrInvalidAction):
		apierr.Write(w, r, h.Log, apierr.Validation("Invalid action"))
		return
	case errors.Is(err, assignmentstore.ErrAlreadyDecided):
		apierr.Write(w, r, h.Log, apierr.AlreadyDecided("Assignment already decided"))
		return
	default:
		apierr.Write(w, r, h.Log, apierr.Internal("Error updating assignment", err))
		return
	}

	h.AuditLog.AssignmentDecided(ctx, r, admin.Username, a)
	jsonutil.Write(w, http.StatusOK, apierr.Message{Message: "Assignment " + a.Status})
}
