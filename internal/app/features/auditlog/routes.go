// internal/app/features/auditlog/routes.go
package auditlog

import (
	"github.com/dalemusser/assignportal/internal/app/system/auth"
	"github.com/dalemusser/assignportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter mounted at /audit. Admins only.
func Routes(h *Handler, guard *auth.Guard) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(guard.Require(models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Get("/failed-logins", h.ServeFailedLogins)
	})
	return r
}
