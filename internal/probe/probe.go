// Package probe implements the one-shot check mode: query the server once, print the outcome and exit.
package probe

import (
	"encoding/json"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/woozymasta/cs2-exporter/internal/config"
	"github.com/woozymasta/cs2-exporter/internal/exporter"
	"github.com/woozymasta/cs2-exporter/internal/game"
	"github.com/woozymasta/cs2-exporter/internal/poller"
)

// Result is the JSON document printed by a check.
type Result struct {
	Target string `json:"target"`
	exporter.Snapshot
}

// Run checks if the check flag is set and executes a single poll against the configured target.
// Returns true if a check was executed (indicating the program should exit) and whether the server was up.
func Run(cfg *config.Config, querier game.Querier, out io.Writer) (ran bool, up bool) {
	if !cfg.Check {
		return false, false
	}

	target := game.Target{Host: cfg.Target.Host, Port: cfg.Target.Port}
	log.Debug().Str("target", target.String()).Msg("Running one-shot check...")

	p := poller.New(querier, exporter.NewState(), target, cfg.Target.Interval, cfg.A2S.Timeout)
	snap := p.Poll()

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(Result{Target: target.String(), Snapshot: snap}); err != nil {
		log.Error().Err(err).Msg("Failed to write check result")
	}

	return true, snap.Up
}
