// internal/app/features/upload/routes.go
package upload

import (
	"github.com/dalemusser/assignportal/internal/app/system/auth"
	"github.com/go-chi/chi/v5"
)

// Routes returns a subrouter mounted at /upload. Any signed-in user may upload.
func Routes(h *Handler, guard *auth.Guard) chi.Router {
	r := chi.NewRouter()
	r.Group(func(pr chi.Router) {
		pr.Use(guard.SignedIn)
		pr.Post("/", h.HandleUpload)
	})
	return r
}
