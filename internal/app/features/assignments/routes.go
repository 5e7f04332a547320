// internal/app/features/assignments/routes.go
package assignments

import (
	"github.com/dalemusser/assignportal/internal/app/system/auth"
	"github.com/dalemusser/assignportal/internal/domain/models"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter mounted at /assignments. /mine is open to any
// signed-in user; the review queue is admins only.
func Routes(h *Handler, guard *auth.Guard) chi.Router {
	r := chi.NewRouter()
	r.With(guard.SignedIn).Get("/mine", h.ServeMine)

	r.Group(func(pr chi.Router) {
		pr.Use(guard.Require(models.RoleAdmin))

		pr.Get("/", h.ServeList)
		pr.Post("/{id}/{action}", h.HandleDecide)
	})
	return r
}
