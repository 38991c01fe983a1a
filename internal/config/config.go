// Package config handles the parsing and validation of application configuration
// from command-line arguments and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/jessevdk/go-flags"
	"github.com/woozymasta/a2sim/internal/logger"
	"github.com/woozymasta/a2sim/internal/vars"
)

// Config represents the complete application flags configuration.
type Config struct {
	// betteralign:ignore

	Server     Server        `group:"Server Options" env-namespace:"A2SIM"`
	Simulation Simulation    `group:"Simulation Options" namespace:"sim" env-namespace:"A2SIM_SIM"`
	RateLimit  RateLimit     `group:"Rate Limit Options" namespace:"rate-limit" env-namespace:"A2SIM_RATE_LIMIT"`
	Storage    Storage       `group:"Storage Options" namespace:"db" env-namespace:"A2SIM_DB"`
	GeoIP      GeoIP         `group:"GeoIP Options" namespace:"geoip" env-namespace:"A2SIM_GEOIP"`
	API        API           `group:"Status API Options" namespace:"api" env-namespace:"A2SIM_API"`
	MQTT       MQTT          `group:"MQTT Options" namespace:"mqtt" env-namespace:"A2SIM_MQTT"`
	A2S        A2S           `group:"A2S Probe Options" namespace:"a2s" env-namespace:"A2SIM_A2S"`
	Logger     logger.Config `group:"Logger Options" namespace:"log" env-namespace:"A2SIM_LOG"`

	Version bool `short:"v" long:"version" description:"Print version and build info"`
}

// Server holds UDP responder configuration.
type Server struct {
	// betteralign:ignore

	File       string `short:"f" long:"server-file" env:"SERVER_FILE" description:"Path to the TOML server file" default:"server.toml"`
	Address    string `short:"l" long:"address" env:"LISTEN_ADDRESS" description:"UDP listen address, overrides host/queryport of the server file"`
	Workers    int    `short:"w" long:"workers" env:"WORKERS" description:"Number of datagram workers" default:"4"`
	QueueSize  int    `long:"queue-size" env:"QUEUE_SIZE" description:"Pending datagram queue size, excess is dropped" default:"1024"`
	ReadBuffer int    `long:"read-buffer" env:"READ_BUFFER" description:"Socket receive buffer in bytes (0 keeps the OS default)" default:"0"`
}

// Simulation holds timers of the background tasks.
type Simulation struct {
	// betteralign:ignore

	Tick              time.Duration `long:"tick" env:"TICK" description:"Player simulation tick interval" default:"5s"`
	ChallengeRotation time.Duration `long:"challenge-rotation" env:"CHALLENGE_ROTATION" description:"Challenge rotation period" default:"5m"`
}

// RateLimit holds per-client flood protection.
type RateLimit struct {
	// betteralign:ignore

	Count  int           `long:"count" env:"COUNT" description:"Datagrams allowed per client within the window (0 disables)" default:"30"`
	Window time.Duration `long:"window" env:"WINDOW" description:"Rate limit window duration" default:"1s"`
	Idle   time.Duration `long:"idle" env:"IDLE" description:"Forget clients not seen for this long" default:"10m"`
}

// Storage holds query statistics database configuration.
type Storage struct {
	// betteralign:ignore

	Path  string        `short:"d" long:"path" env:"PATH" description:"Path to SQLite statistics database (empty disables statistics)"`
	Prune time.Duration `long:"prune" description:"Delete statistics not seen within the duration and exit"`
	Dump  bool          `long:"dump" description:"Print collected statistics and exit"`
}

// GeoIP holds MaxMind GeoIP configuration used to tag statistics.
type GeoIP struct {
	// betteralign:ignore

	Path     string        `short:"g" long:"path" env:"PATH" description:"Path to MMDB file (empty disables country lookup)"`
	URL      string        `long:"url" env:"URL" description:"URL to download MMDB" default:"https://git.io/GeoLite2-Country.mmdb"`
	Interval time.Duration `long:"interval" env:"INTERVAL" description:"Update interval check" default:"24h"`
}

// API holds the optional HTTP status endpoint configuration.
type API struct {
	// betteralign:ignore

	Address   string `long:"address" env:"ADDRESS" description:"HTTP status API listen address (empty disables)"`
	AuthToken string `short:"t" long:"auth-token" env:"AUTH_TOKEN" description:"Bearer token required by the status API"`
}

// MQTT holds the optional roster publisher configuration.
type MQTT struct {
	// betteralign:ignore

	Broker   string `long:"broker" env:"BROKER" description:"MQTT broker URL, e.g. tcp://127.0.0.1:1883 (empty disables)"`
	Topic    string `long:"topic" env:"TOPIC" description:"Topic roster snapshots are published to" default:"a2sim/players"`
	ClientID string `long:"client-id" env:"CLIENT_ID" description:"MQTT client id" default:"a2sim"`
	Username string `long:"username" env:"USERNAME" description:"MQTT username"`
	Password string `long:"password" env:"PASSWORD" description:"MQTT password"`
}

// A2S holds Source Query client configuration for the probe mode.
type A2S struct {
	// betteralign:ignore

	Probe      string        `long:"probe" env:"PROBE" description:"Query host:port with A2S_INFO, print the result and exit"`
	Timeout    time.Duration `long:"timeout" env:"TIMEOUT" description:"Query timeout" default:"3s"`
	BufferSize uint16        `long:"buffer-size" env:"BUFFER_SIZE" description:"Response body buffer size" default:"1400"`
}

// Parse reads the configuration from flags and environment variables.
// It terminates the application if the configuration is invalid or if the help flag is invoked.
func Parse() *Config {
	cfg, err := ParseArgs(os.Args[1:])
	if err != nil {
		var flagsErr *flags.Error
		if errors.As(err, &flagsErr) {
			// already printed by the parser
			if flagsErr.Type == flags.ErrHelp {
				os.Exit(0)
			}
			os.Exit(1)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if cfg.Version {
		vars.Print(os.Stdout)
		os.Exit(0)
	}

	return cfg
}

// ParseArgs parses args without touching the process state.
func ParseArgs(args []string) (*Config, error) {
	var cfg Config
	parser := flags.NewParser(&cfg, flags.Default)
	parser.NamespaceDelimiter = "-"

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks option combinations go-flags cannot express.
func (c *Config) Validate() error {
	if c.Server.Workers < 1 {
		return fmt.Errorf("--workers must be at least 1, got %d", c.Server.Workers)
	}
	if c.Server.QueueSize < 1 {
		return fmt.Errorf("--queue-size must be at least 1, got %d", c.Server.QueueSize)
	}
	if c.RateLimit.Count > 0 && c.RateLimit.Window <= 0 {
		return fmt.Errorf("--rate-limit-window must be positive")
	}
	if c.API.Address != "" && c.API.AuthToken == "" {
		return fmt.Errorf("required flag `-t, --api-auth-token' or environment variable `A2SIM_API_AUTH_TOKEN` was not specified")
	}
	if (c.Storage.Dump || c.Storage.Prune > 0) && c.Storage.Path == "" {
		return fmt.Errorf("statistics maintenance requires `--db-path'")
	}

	return nil
}

// Maintenance reports whether a one-shot task was requested instead of serving.
func (c *Config) Maintenance() bool {
	return c.Storage.Dump || c.Storage.Prune > 0 || c.A2S.Probe != ""
}
