package server

import (
	"net/http"
	"time"
)

const cookieSession = "idrac_session"

// setSessionCookie places the opaque session token in an HTTP-only
// cookie. Secure is set when the request itself arrived over TLS.
func setSessionCookie(w http.ResponseWriter, r *http.Request, token string, ttl time.Duration) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieSession,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   isSecureRequest(r),
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().UTC().Add(ttl),
		MaxAge:   int(ttl / time.Second),
	})
}

func clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     cookieSession,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
	})
}

// sessionToken extracts the raw token from the request cookie, if any.
func sessionToken(r *http.Request) string {
	ck, err := r.Cookie(cookieSession)
	if err != nil {
		return ""
	}
	return ck.Value
}

func isSecureRequest(r *http.Request) bool {
	return r.TLS != nil
}
