package server

import (
	"context"
	"net/http"

	"idracd/internal/sessions"
	"idracd/pkg/httpx"
)

type ctxKey string

const ctxUserID ctxKey = "uid"

// requireSession gates a route group behind a valid session cookie and
// places the owning user id into the request context.
func requireSession(sess *sessions.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			uid, err := sess.Validate(sessionToken(r))
			if err != nil {
				httpx.WriteTypedError(w, http.StatusUnauthorized, "unauthenticated", "Not authenticated", 0)
				return
			}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxUserID, uid)))
		})
	}
}

func userIDFrom(r *http.Request) string {
	uid, _ := r.Context().Value(ctxUserID).(string)
	return uid
}
