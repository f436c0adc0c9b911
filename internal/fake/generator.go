// Package fake provides a synthetic game server querier for development and demos.
package fake

import (
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/woozymasta/cs2-exporter/internal/game"
)

// ErrUnreachable is returned for simulated query failures.
var ErrUnreachable = errors.New("fake: server unreachable")

// Maps is the active duty pool the generator picks from.
var Maps = []string{"de_dust2", "de_inferno", "de_mirage", "de_nuke", "de_ancient", "de_anubis", "de_train", "de_overpass"}

// Querier returns randomized server statuses. It occasionally fails,
// and occasionally omits map fields, to exercise the offline and fallback paths.
type Querier struct {
	rnd *rand.Rand
	mu  sync.Mutex

	// FailRate is the probability of a simulated failure.
	FailRate float64

	// MaxPlayers caps the generated player count.
	MaxPlayers int
}

// New creates a generator seeded with seed.
func New(seed int64) *Querier {
	return &Querier{
		rnd:        rand.New(rand.NewSource(seed)), //nolint:gosec
		FailRate:   0.1,
		MaxPlayers: 10,
	}
}

// Query implements game.Querier.
func (q *Querier) Query(target game.Target, _ time.Duration) (*game.Status, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.rnd.Float64() < q.FailRate {
		return nil, &game.QueryError{Target: target.String(), Err: ErrUnreachable}
	}

	maxPlayers := q.MaxPlayers
	if maxPlayers < 1 {
		maxPlayers = 1
	}

	status := &game.Status{
		Name:       "CS2 Fake Server",
		Game:       "Counter-Strike 2",
		Version:    "1.40.0.0",
		Players:    q.rnd.Intn(maxPlayers + 1),
		MaxPlayers: maxPlayers,
	}

	name := Maps[q.rnd.Intn(len(Maps))]
	switch roll := q.rnd.Float64(); {
	case roll < 0.8:
		status.MapName = game.StringPtr(name)
	case roll < 0.95:
		status.Map = game.StringPtr(name)
	default:
		// neither field, reported as unknown
	}

	return status, nil
}
