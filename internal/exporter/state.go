// Package exporter holds the published metric set and exposes it as a Prometheus collector.
package exporter

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// OfflineMap is published as the map name while the server is down.
const OfflineMap = "Offline"

// Snapshot is one consistent view of the metric set.
type Snapshot struct {
	Map     string `json:"map"`
	Players int    `json:"players"`
	Up      bool   `json:"up"`

	// Valid is false until the first poll commits.
	Valid bool `json:"-"`
}

// Online builds the snapshot for a successful poll.
func Online(players int, mapName string) Snapshot {
	return Snapshot{Up: true, Players: players, Map: mapName, Valid: true}
}

// Offline builds the snapshot for a failed poll.
func Offline() Snapshot {
	return Snapshot{Up: false, Players: 0, Map: OfflineMap, Valid: true}
}

// State is the process-wide metric set shared by the poller (writer) and scrapes (readers).
type State struct {
	upDesc      *prometheus.Desc
	playersDesc *prometheus.Desc
	mapDesc     *prometheus.Desc

	mu      sync.RWMutex
	current Snapshot
}

// NewState creates an empty metric set.
func NewState() *State {
	return &State{
		upDesc:      prometheus.NewDesc("cs2_server_up", "Server Status", nil, nil),
		playersDesc: prometheus.NewDesc("cs2_player_count", "Player Count", nil, nil),
		mapDesc:     prometheus.NewDesc("cs2_current_map_info", "Map Information", []string{"map_name"}, nil),
	}
}

// Commit replaces every field of the metric set in a single step.
// An Up=false snapshot is normalized so players and map can never be stale.
func (s *State) Commit(snap Snapshot) Snapshot {
	if !snap.Up {
		snap = Offline()
	}
	snap.Valid = true

	s.mu.Lock()
	s.current = snap
	s.mu.Unlock()

	return snap
}

// Snapshot returns a copy of the current metric set.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.current
}

// Describe implements prometheus.Collector.
func (s *State) Describe(ch chan<- *prometheus.Desc) {
	ch <- s.upDesc
	ch <- s.playersDesc
	ch <- s.mapDesc
}

// Collect implements prometheus.Collector.
// All series of one scrape are rendered from the same snapshot.
func (s *State) Collect(ch chan<- prometheus.Metric) {
	snap := s.Snapshot()

	up := 0.0
	if snap.Up {
		up = 1
	}

	ch <- prometheus.MustNewConstMetric(s.upDesc, prometheus.GaugeValue, up)
	ch <- prometheus.MustNewConstMetric(s.playersDesc, prometheus.GaugeValue, float64(snap.Players))

	// No map series until the first poll has an answer
	if snap.Valid {
		ch <- prometheus.MustNewConstMetric(s.mapDesc, prometheus.GaugeValue, 1, snap.Map)
	}
}
