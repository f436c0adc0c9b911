package server

import (
	"html/template"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/woozymasta/cs2-exporter/internal/vars"
)

// Server holds the dependencies, configuration, and runtime state required
// to serve scrapes of the metric set.
type Server struct {
	// registry is gathered on every scrape of the metrics path.
	registry *prometheus.Registry

	// landing is the parsed template rendered on the index page.
	landing *template.Template

	// httpServer is the underlying HTTP server, created by Listen.
	httpServer *http.Server

	// listener is bound by Listen before the poll loop starts, so a taken port fails fast.
	listener net.Listener

	// shutdown is closed on Shutdown to stop background routines such as the
	// rate limiter cache cleanup.
	shutdown chan struct{}

	// address is the configured listen address.
	address string

	// metricsPath is the path under which the registry is exposed.
	metricsPath string

	// authToken is the bearer token required on the metrics path; empty disables auth.
	authToken string

	// target is the queried server in host:port form, shown on the landing page.
	target string

	// hardLimitCount is the maximum number of requests allowed per IP address
	// within the hardLimitWin duration. Zero disables rate limiting.
	hardLimitCount int

	// hardLimitWin is the time window duration for the rate limiter.
	hardLimitWin time.Duration

	// trustProxy indicates whether the server should trust headers like X-Forwarded-For
	// or CF-Connecting-IP when determining the client's real IP address.
	trustProxy bool
}

// landingData is passed to the landing page template.
type landingData struct {
	vars.BuildInfo

	Target      string
	MetricsPath string
}
