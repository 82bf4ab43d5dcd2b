package middlewares

import (
	"net/http"

	"gitlab.com/teachcorps/recruitment-backend/pkg/ctxs"
	"gitlab.com/teachcorps/recruitment-backend/pkg/sanitizex"
)

const ActorHeader = "X-Coordinator"

// Actor records who performed the request so command handlers can
// stamp events with the coordinator's name when the body omits it.
func Actor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := sanitizex.CleanSingleLine(r.Header.Get(ActorHeader))
		if actor != "" {
			r = r.WithContext(ctxs.WithActor(r.Context(), actor))
		}
		next.ServeHTTP(w, r)
	})
}
