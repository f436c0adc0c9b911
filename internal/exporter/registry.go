package exporter

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/woozymasta/cs2-exporter/internal/vars"
)

// NewRegistry creates a dedicated registry holding the metric set,
// the Go runtime and process collectors, and the exporter build info.
func NewRegistry(state *State) *prometheus.Registry {
	reg := prometheus.NewRegistry()

	buildInfo := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "cs2_exporter_build_info",
			Help: "Build information of the running exporter, value is always 1",
		},
		[]string{"version", "commit", "revision"},
	)
	buildInfo.WithLabelValues(vars.Version, vars.CommitShort(), strconv.Itoa(vars.Revision)).Set(1)

	reg.MustRegister(
		state,
		buildInfo,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return reg
}
