package server

import (
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/cs2-exporter/internal/vars"
)

// handleIndex serves the landing page with links to the metrics and health endpoints.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := landingData{
		BuildInfo:   vars.Info(),
		Target:      s.target,
		MetricsPath: s.metricsPath,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := s.landing.Execute(w, data); err != nil {
		log.Error().Err(err).Msg("Failed to render landing page")
	}
}

// handleHealth reports that the exporter process is serving. It says nothing about the game server.
func handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = fmt.Fprint(w, "ok")
}
