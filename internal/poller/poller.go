// Package poller runs the query-and-publish loop that keeps the metric set current.
//
// Every cycle queries the configured server once and commits the outcome to the
// metric set. Any failure of the query, whatever its cause, publishes the server
// as offline; the loop itself never stops on a failed query.
package poller

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/woozymasta/cs2-exporter/internal/exporter"
	"github.com/woozymasta/cs2-exporter/internal/game"
)

// errEmptyStatus is reported when a querier returns neither a status nor an error.
var errEmptyStatus = errors.New("empty status")

// Poller periodically queries one game server and commits the result to the metric set.
type Poller struct {
	querier game.Querier
	state   *exporter.State
	log     zerolog.Logger
	target  game.Target

	interval time.Duration
	timeout  time.Duration
}

// New creates a Poller for target that publishes into state.
func New(querier game.Querier, state *exporter.State, target game.Target, interval, timeout time.Duration) *Poller {
	return &Poller{
		querier:  querier,
		state:    state,
		target:   target,
		interval: interval,
		timeout:  timeout,
		log:      log.With().Str("target", target.String()).Logger(),
	}
}

// Run polls immediately and then once per interval until ctx is cancelled.
// The interval is measured from the end of one poll to the start of the next.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info().
		Dur("interval", p.interval).
		Dur("timeout", p.timeout).
		Msg("Poller started")

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.log.Info().Msg("Poller stopped")
			return
		case <-timer.C:
			p.Poll()
			timer.Reset(p.interval)
		}
	}
}

// Poll performs a single query and commits its outcome.
// It returns the snapshot that was committed.
func (p *Poller) Poll() exporter.Snapshot {
	prev := p.state.Snapshot()
	start := time.Now()

	status, err := p.query()

	var snap exporter.Snapshot
	if err != nil {
		snap = p.state.Commit(exporter.Offline())
	} else {
		snap = p.state.Commit(exporter.Online(status.Players, status.ResolveMap()))
	}

	p.logTransition(prev, snap, err)
	p.log.Debug().
		Bool("up", snap.Up).
		Int("players", snap.Players).
		Str("map", snap.Map).
		Dur("duration", time.Since(start)).
		Msg("Poll completed")

	return snap
}

// query calls the querier and turns every way it can fail into a single error.
func (p *Poller) query() (status *game.Status, err error) {
	defer func() {
		if r := recover(); r != nil {
			status = nil
			err = &game.QueryError{Target: p.target.String(), Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	status, err = p.querier.Query(p.target, p.timeout)
	if err != nil {
		return nil, err
	}
	if status == nil {
		return nil, &game.QueryError{Target: p.target.String(), Err: errEmptyStatus}
	}

	return status, nil
}

func (p *Poller) logTransition(prev, next exporter.Snapshot, err error) {
	switch {
	case !next.Up && (prev.Up || !prev.Valid):
		p.log.Warn().Err(err).Msg("Server is down")
	case next.Up && !prev.Up:
		p.log.Info().
			Int("players", next.Players).
			Str("map", next.Map).
			Msg("Server is up")
	case next.Up && prev.Map != next.Map:
		p.log.Info().
			Str("from", prev.Map).
			Str("to", next.Map).
			Msg("Map changed")
	}
}
