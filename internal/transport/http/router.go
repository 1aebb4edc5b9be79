package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// Registrable is implemented by every domain handler package.
type Registrable interface {
	Register(r chi.Router)
}

// NewRouter mounts all domain handlers plus the health probe. Middleware
// lives inside each handler's Register so every surface carries exactly the
// chain it needs.
func NewRouter(handlers ...Registrable) http.Handler {
	router := chi.NewRouter()

	router.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	for _, h := range handlers {
		h.Register(router)
	}
	return router
}
