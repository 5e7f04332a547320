// internal/app/features/admins/handler.go
package admins

import (
	"context"
	"net/http"

	"github.com/dalemusser/assignportal/internal/app/system/apierr"
	"github.com/dalemusser/assignportal/internal/app/system/jsonutil"
	"github.com/dalemusser/assignportal/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// AdminLister lists admin usernames. *userstore.Store satisfies it.
type AdminLister interface {
	ListAdminUsernames(ctx context.Context) ([]string, error)
}

type Handler struct {
	Users AdminLister
	Log   *zap.Logger
}

type adminItem struct {
	Username string `json:"username"`
}

// ServeList handles GET /admins. Public: uploaders need it to pick a reviewer.
//
//	200 [{"username":"bob"}, ...]
func (h *Handler) ServeList(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "list admins")
	defer cancel()

	names, err := h.Users.ListAdminUsernames(ctx)
	if err != nil {
		apierr.Write(w, r, h.Log, apierr.Internal("Error fetching admins", err))
		return
	}

	items := make([]adminItem, 0, len(names))
	for _, n := range names {
		items = append(items, adminItem{Username: n})
	}
	jsonutil.Write(w, http.StatusOK, items)
}
