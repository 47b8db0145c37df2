package server

import (
	"net/http"

	"idracd/internal/sessions"
	"idracd/internal/users"
	"idracd/web"
)

// handleIndex picks the page for /: dashboard for a live session, the
// register page while no account exists yet, the login page otherwise.
func handleIndex(store *users.Store, sess *sessions.Manager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, err := sess.Validate(sessionToken(r)); err == nil {
			servePage(w, "dashboard.html")
			return
		}
		any, err := store.HasAny(r.Context())
		if err != nil {
			http.Error(w, "database error", http.StatusInternalServerError)
			return
		}
		if any {
			servePage(w, "login.html")
		} else {
			servePage(w, "register.html")
		}
	}
}

func servePage(w http.ResponseWriter, name string) {
	b, err := web.FS.ReadFile(name)
	if err != nil {
		http.Error(w, "page not found", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(b)
}
