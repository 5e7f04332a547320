// internal/app/features/admins/routes.go
package admins

import "github.com/go-chi/chi/v5"

// Routes returns a subrouter mounted at /admins.
func Routes(h *Handler) chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.ServeList)
	return r
}
