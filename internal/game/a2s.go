// Package game provides functionality to query game servers using the Source Engine Query (A2S) protocol.
package game

import (
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/woozymasta/a2s/pkg/a2s"
	"github.com/woozymasta/cs2-exporter/internal/config"
)

// Target identifies the game server to query.
type Target struct {
	Host string
	Port int
}

// String returns the target in host:port form.
func (t Target) String() string {
	return net.JoinHostPort(t.Host, strconv.Itoa(t.Port))
}

// Status is the subset of a server's A2S_INFO reply the exporter publishes.
// A nil map field means the reply did not carry it.
type Status struct {
	MapName    *string
	Map        *string
	Name       string
	Game       string
	Version    string
	Players    int
	MaxPlayers int
}

// Querier fetches the current status of a game server.
type Querier interface {
	Query(target Target, timeout time.Duration) (*Status, error)
}

// QueryError is the only failure kind a Querier reports.
// Connection errors, timeouts and malformed replies all collapse into it.
type QueryError struct {
	Err    error
	Target string
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("query %s: %v", e.Target, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

// A2S queries servers with A2S_INFO over UDP.
type A2S struct {
	options config.A2S
}

// NewA2S creates an A2S querier using the given protocol options.
// The timeout passed to Query takes precedence over options.Timeout when set.
func NewA2S(options config.A2S) *A2S {
	return &A2S{options: options}
}

// Query connects to a game server via UDP and requests A2S_INFO.
func (q *A2S) Query(target Target, timeout time.Duration) (status *Status, err error) {
	// a malformed reply must not take the caller down
	defer func() {
		if r := recover(); r != nil {
			status, err = nil, &QueryError{Target: target.String(), Err: fmt.Errorf("malformed reply: %v", r)}
		}
	}()

	client, err := a2s.New(target.Host, target.Port)
	if err != nil {
		return nil, &QueryError{Target: target.String(), Err: err}
	}
	defer func() { _ = client.Close() }()

	if q.options.BufferSize > 0 {
		client.BufferSize = q.options.BufferSize
	}
	client.Timeout = q.options.Timeout
	if timeout > 0 {
		client.Timeout = timeout
	}

	info, err := client.GetInfo()
	if err != nil {
		return nil, &QueryError{Target: target.String(), Err: err}
	}

	return FromInfo(info), nil
}

// FromInfo converts an A2S_INFO reply into a Status.
func FromInfo(info *a2s.Info) *Status {
	mapName := info.Map

	return &Status{
		MapName:    &mapName,
		Name:       info.Name,
		Game:       info.Game,
		Version:    info.Version,
		Players:    int(info.Players),
		MaxPlayers: int(info.MaxPlayers),
	}
}
