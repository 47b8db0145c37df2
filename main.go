package main

import (
	"fmt"
	"net/http"

	"github.com/robfig/cron/v3"

	"idracd/internal/bmc"
	"idracd/internal/config"
	"idracd/internal/server"
	"idracd/internal/sessions"
	"idracd/internal/users"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		server.Logger(cfg).Fatal().Err(err).Msg("invalid configuration")
	}
	logger := server.Logger(cfg)

	store, err := users.New(cfg.DBPath, *logger)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("cannot open credential store")
	}
	defer store.Close()

	sess := sessions.NewManager(sessions.DefaultTTL, *logger)
	ctrl := bmc.New(cfg.ControllerURL, cfg.ControllerUser, cfg.ControllerPass, cfg.ControllerTimeout, *logger)

	// Expired sessions are dropped lazily on validation; the sweep keeps
	// the map from accumulating tokens nobody presents again.
	reaper := cron.New()
	if _, err := reaper.AddFunc("@every 15m", func() { sess.Sweep() }); err != nil {
		logger.Fatal().Err(err).Msg("schedule session sweep")
	}
	reaper.Start()
	defer reaper.Stop()

	r := server.NewRouter(cfg, store, sess, ctrl)

	addr := fmt.Sprintf("0.0.0.0:%d", cfg.Port)
	logger.Info().Str("controller", cfg.ControllerURL).Msgf("idracd listening on http://%s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		logger.Fatal().Err(err).Msg("server exited")
	}
}
