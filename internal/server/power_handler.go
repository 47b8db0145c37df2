package server

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"idracd/internal/bmc"
	"idracd/pkg/httpx"
)

// handlePowerStatus reads the current power state fresh from the
// controller on every call; nothing is cached.
func handlePowerStatus(ctrl *bmc.Client, logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		state, err := ctrl.PowerState(r.Context())
		if err != nil {
			writeControllerError(w, logger, err)
			return
		}
		writeJSON(w, map[string]any{"state": string(state)})
	}
}

// handlePowerAction relays one power command. A 200 here means the
// controller acknowledged the command, not that the machine has finished
// transitioning; the dashboard keeps polling status.
func handlePowerAction(ctrl *bmc.Client, action bmc.PowerAction, logger *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := ctrl.SendPowerAction(r.Context(), action)
		if err != nil {
			powerCommands.WithLabelValues(string(action), "error").Inc()
			writeControllerError(w, logger, err)
			return
		}
		powerCommands.WithLabelValues(string(action), "ok").Inc()
		logger.Info().Str("action", string(action)).Str("user_id", userIDFrom(r)).Msg("power command acknowledged")
		writeJSON(w, map[string]any{"ok": true, "action": string(action)})
	}
}

// writeControllerError maps the controller client's error taxonomy onto
// API responses. Detail stays in the logs; clients get a generic message.
func writeControllerError(w http.ResponseWriter, logger *zerolog.Logger, err error) {
	switch {
	case errors.Is(err, bmc.ErrAuthFailed):
		// Configuration problem: the stored controller credentials are stale.
		logger.Error().Err(err).Msg("controller credentials rejected")
		httpx.WriteTypedError(w, http.StatusInternalServerError, "controller_auth_failed", "Could not reach server controller", 0)
	case errors.Is(err, bmc.ErrProtocol):
		logger.Error().Err(err).Msg("controller protocol error")
		httpx.WriteTypedError(w, http.StatusBadGateway, "controller_protocol_error", "Could not reach server controller", 0)
	default:
		logger.Warn().Err(err).Msg("controller unreachable")
		httpx.WriteTypedError(w, http.StatusBadGateway, "controller_unreachable", "Could not reach server controller", 0)
	}
}
