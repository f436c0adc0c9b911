// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"regexp"
	"strconv"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/cs2-exporter/internal/logger"
	"github.com/woozymasta/cs2-exporter/internal/vars"
)

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Target    Target        `group:"Target Options" env-namespace:"CS2_EXPORTER"`
	A2S       A2S           `group:"A2S Options" namespace:"a2s" env-namespace:"CS2_EXPORTER_A2S"`
	Web       Web           `group:"Web Options" namespace:"web" env-namespace:"CS2_EXPORTER_WEB"`
	RateLimit RateLimit     `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"CS2_EXPORTER_RATE_LIMIT"`
	Logger    logger.Config `group:"Logger Options" namespace:"log" env-namespace:"CS2_EXPORTER_LOG"`

	Check   bool `long:"check" description:"Query the server once, print the result and exit (0 if up, 1 if down)"`
	Fake    bool `long:"fake" hidden:"true"`
	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Target holds the queried game server address and poll cadence.
type Target struct {
	// betteralign:ignore

	Host     string        `short:"H" long:"host" env:"HOST" description:"Game server host" default:"127.0.0.1"`
	Port     int           `short:"p" long:"port" env:"PORT" description:"Game server query port" default:"27015"`
	Interval time.Duration `short:"i" long:"interval" env:"INTERVAL" description:"Poll interval" default:"15s"`
}

// A2S holds Source Query protocol configuration.
type A2S struct {
	// betteralign:ignore

	Timeout    time.Duration `long:"timeout" env:"TIMEOUT" description:"Query timeout" default:"5s"`
	BufferSize uint16        `long:"buffer-size" env:"BUFFER_SIZE" description:"Response body buffer size" default:"1400"`
}

// Web holds metrics endpoint configuration.
type Web struct {
	// betteralign:ignore

	Address     string `short:"l" long:"address" env:"ADDRESS" description:"Exporter listen address" default:":9137"`
	MetricsPath string `long:"metrics-path" env:"METRICS_PATH" description:"Path under which to expose metrics" default:"/metrics"`
	AuthToken   string `long:"auth-token" env:"AUTH_TOKEN" description:"Bearer token required to scrape metrics (disabled when empty)"`
	TrustProxy  bool   `long:"trust-proxy" env:"TRUST_PROXY" description:"Trust X-Forwarded-For headers"`
}

// RateLimit holds scrape rate limiting configuration.
type RateLimit struct {
	// betteralign:ignore

	Count  int           `long:"count" env:"COUNT" description:"Requests allowed per client IP within the window (0 disables)" default:"30"`
	Window time.Duration `long:"window" env:"WINDOW" description:"Rate limit window duration" default:"1m"`
}

var metricsPathRe = regexp.MustCompile(`^/[^\s?#{}]+$`)

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	cfg, err := ParseArgs(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) && flagsErr.Type == flags.ErrHelp {
			fmt.Fprintln(os.Stdout, flagsErr.Message)
			os.Exit(0)
		}

		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print()
		os.Exit(0)
	}

	return cfg
}

// ParseArgs parses the given arguments (without the program name) and validates the result.
func ParseArgs(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.HelpFlag|flags.PassDoubleDash)
	parser.NamespaceDelimiter = "-"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if cfg.Version {
		return &cfg, nil
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

// Validate checks semantic constraints that flag parsing cannot express.
func (c *Config) Validate() error {
	return validation.Errors{
		"target": validation.ValidateStruct(&c.Target,
			validation.Field(&c.Target.Host, validation.Required),
			validation.Field(&c.Target.Port, validation.Required, validation.Min(1), validation.Max(65535)),
			validation.Field(&c.Target.Interval, validation.Required, validation.Min(time.Second)),
		),
		"a2s": validation.ValidateStruct(&c.A2S,
			validation.Field(&c.A2S.Timeout, validation.Required, validation.Min(10*time.Millisecond)),
			validation.Field(&c.A2S.BufferSize, validation.Required, validation.Min(uint16(512))),
		),
		"web": validation.ValidateStruct(&c.Web,
			validation.Field(&c.Web.Address, validation.Required, validation.By(validateListenAddress)),
			validation.Field(&c.Web.MetricsPath, validation.Required, validation.Match(metricsPathRe), validation.NotIn("/healthz")),
		),
		"rate-limit": validation.ValidateStruct(&c.RateLimit,
			validation.Field(&c.RateLimit.Count, validation.Min(0)),
			validation.Field(&c.RateLimit.Window, validation.When(c.RateLimit.Count > 0, validation.Required)),
		),
		"log": validation.ValidateStruct(&c.Logger,
			validation.Field(&c.Logger.Level, validation.In(logger.Levels...)),
			validation.Field(&c.Logger.Format, validation.In(logger.FormatConsole, logger.FormatJSON)),
		),
	}.Filter()
}

func validateListenAddress(value any) error {
	s, _ := value.(string)
	_, port, err := net.SplitHostPort(s)
	if err != nil {
		return errors.New("must be in host:port format")
	}

	n, err := strconv.Atoi(port)
	if err != nil || n < 0 || n > 65535 {
		return errors.New("must contain a valid port")
	}

	return nil
}
