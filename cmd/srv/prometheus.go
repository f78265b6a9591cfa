package main

import (
	"errors"
	"net/http"

	"github.com/questx-lab/social-discord/internal/common"
	"github.com/questx-lab/social-discord/pkg/prometheus"
	"github.com/questx-lab/social-discord/pkg/xcontext"
)

// startPrometheus exposes the metrics of worker commands, the api server serves them on
// /metrics instead.
func (s *srv) startPrometheus() {
	cfg := xcontext.Configs(s.ctx).Prometheus
	if cfg.Port == "" {
		return
	}

	go func() {
		httpSrv := &http.Server{
			Addr:    cfg.Address(),
			Handler: prometheus.NewHandler(common.PromCollectors()...),
		}

		xcontext.Logger(s.ctx).Infof("Starting prometheus on port: %s", cfg.Port)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			xcontext.Logger(s.ctx).Errorf("Prometheus server stopped: %v", err)
		}
	}()
}
