package server

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"idracd/internal/bmc"
	"idracd/internal/config"
	"idracd/internal/ratelimit"
	"idracd/internal/sessions"
	"idracd/internal/users"
	"idracd/pkg/httpx"
)

const version = "0.1.0"

// Login throttle: per-IP attempts inside a sliding window.
const (
	loginAttemptsMax    = 10
	loginAttemptsWindow = 15 * time.Minute
)

func Logger(cfg config.Config) *zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339
	logger := log.Logger.Level(cfg.LogLevel).With().Timestamp().Logger()
	return &logger
}

func NewRouter(cfg config.Config, store *users.Store, sess *sessions.Manager, ctrl *bmc.Client) http.Handler {
	logger := Logger(cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(zerologMiddleware(logger))
	r.Use(securityHeaders)

	// Dev CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://127.0.0.1:5173"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"*"},
		AllowCredentials: true,
	})
	r.Use(c.Handler)

	r.Get("/api/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]any{"ok": true, "version": version})
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Get("/", handleIndex(store, sess))

	loginLimiter := ratelimit.New(loginAttemptsMax, loginAttemptsWindow)

	r.Post("/api/register", func(w http.ResponseWriter, r *http.Request) {
		var body struct{ Username, Password string }
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.WriteTypedError(w, http.StatusBadRequest, "invalid_input", "Malformed request body", 0)
			return
		}
		uid, err := store.Register(r.Context(), body.Username, body.Password)
		switch {
		case errors.Is(err, users.ErrAlreadyInitialized):
			httpx.WriteTypedError(w, http.StatusForbidden, "already_initialized", "Registration is closed. An account already exists.", 0)
			return
		case errors.Is(err, users.ErrInvalidInput):
			httpx.WriteTypedError(w, http.StatusBadRequest, "invalid_input", "Username and password are required", 0)
			return
		case err != nil:
			logger.Error().Err(err).Msg("register failed")
			httpx.WriteError(w, http.StatusInternalServerError, "Could not create account")
			return
		}
		// First login rides on registration.
		token := sess.Create(uid)
		setSessionCookie(w, r, token, sess.TTL())
		writeJSON(w, map[string]any{"ok": true, "user_id": uid})
	})

	r.Post("/api/login", func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r)
		if !loginLimiter.Allow(ip) {
			retry := int(loginLimiter.RetryAfter(ip) / time.Second)
			httpx.WriteTypedError(w, http.StatusTooManyRequests, "rate_limited", "Too many login attempts", retry)
			return
		}
		var body struct{ Username, Password string }
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httpx.WriteTypedError(w, http.StatusBadRequest, "invalid_input", "Malformed request body", 0)
			return
		}
		uid, err := store.Verify(r.Context(), body.Username, body.Password)
		if err != nil {
			// Same answer for unknown user and wrong password.
			httpx.WriteTypedError(w, http.StatusUnauthorized, "invalid_credentials", "Invalid username or password", 0)
			return
		}
		token := sess.Create(uid)
		setSessionCookie(w, r, token, sess.TTL())
		logger.Info().Str("user_id", uid).Msg("user logged in")
		writeJSON(w, map[string]any{"ok": true})
	})

	r.Post("/api/logout", func(w http.ResponseWriter, r *http.Request) {
		sess.Destroy(sessionToken(r))
		clearSessionCookie(w)
		writeJSON(w, map[string]any{"ok": true})
	})

	// Power routes require a live session.
	r.Group(func(pr chi.Router) {
		pr.Use(requireSession(sess))
		pr.Get("/api/power/status", handlePowerStatus(ctrl, logger))
		pr.Post("/api/power/on", handlePowerAction(ctrl, bmc.ActionOn, logger))
		pr.Post("/api/power/off", handlePowerAction(ctrl, bmc.ActionForceOff, logger))
		pr.Post("/api/power/shutdown", handlePowerAction(ctrl, bmc.ActionGracefulShutdown, logger))
	})

	return r
}

func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
