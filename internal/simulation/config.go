package simulation

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/lao-tseu-is-alive/go-instance-flock/pkg/flock"
	"github.com/paulmach/orb"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed config.schema.json
var configSchemaJSON string

var configSchema = jsonschema.MustCompileString("config.schema.json", configSchemaJSON)

type Config struct {
	// Canvas
	CanvasWidth  float64 `json:"canvasWidth"`
	CanvasHeight float64 `json:"canvasHeight"`
	Wrap         bool    `json:"wrap"`

	// Frame driver
	TickMs int    `json:"tickMs"`
	Seed   uint64 `json:"seed"` // 0 picks a time based seed

	// Instance source, the file wins over the url
	FeedURL   string `json:"feedUrl"`
	FeedToken string `json:"feedToken"`
	FeedFile  string `json:"feedFile"`

	Listen         string `json:"listen"`
	ShowSeparation bool   `json:"showSeparation"`

	Params flock.Params `json:"params"`
}

func DefaultConfig() *Config {
	return &Config{
		CanvasWidth:  960,
		CanvasHeight: 500,
		Wrap:         true,
		TickMs:       16,
		Listen:       ":8080",
		Params:       flock.DefaultParams(),
	}
}

// LoadConfig loads configuration from a JSON file and validates it against the schema.
// Keys missing from the file keep their DefaultConfig value. An empty path returns the defaults.
func LoadConfig(configFile string) (*Config, error) {
	cfg := DefaultConfig()
	if configFile == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	if err := decodeConfig(b, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeConfig(b []byte, cfg *Config) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("failed to decode config json: %w", err)
	}
	if err := configSchema.Validate(v); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return nil
}

// ApplyEnv overlays FLOCK_* variables, reading envFile first when it exists.
// Variables already set in the process environment win over the file.
func (c *Config) ApplyEnv(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
	}

	if v, ok := os.LookupEnv("FLOCK_FEED_URL"); ok {
		c.FeedURL = v
	}
	if v, ok := os.LookupEnv("FLOCK_FEED_TOKEN"); ok {
		c.FeedToken = v
	}
	if v, ok := os.LookupEnv("FLOCK_FEED_FILE"); ok {
		c.FeedFile = v
	}
	if v, ok := os.LookupEnv("FLOCK_LISTEN"); ok {
		c.Listen = v
	}
	if v, ok := os.LookupEnv("FLOCK_TICK_MS"); ok {
		ms, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid FLOCK_TICK_MS %q: %w", v, err)
		}
		c.TickMs = ms
	}
	if v, ok := os.LookupEnv("FLOCK_SEED"); ok {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid FLOCK_SEED %q: %w", v, err)
		}
		c.Seed = seed
	}
	return c.Validate()
}

func (c *Config) Validate() error {
	if !(c.CanvasWidth > 0) || !(c.CanvasHeight > 0) {
		return fmt.Errorf("%w: %vx%v", flock.ErrInvalidCanvas, c.CanvasWidth, c.CanvasHeight)
	}
	if c.TickMs <= 0 {
		return fmt.Errorf("tick interval must be positive, got %dms", c.TickMs)
	}
	return c.Params.Validate()
}

// Canvas is the drawing area, origin at the top left.
func (c *Config) Canvas() orb.Bound {
	return orb.Bound{Min: orb.Point{0, 0}, Max: orb.Point{c.CanvasWidth, c.CanvasHeight}}
}

func (c *Config) TickInterval() time.Duration {
	return time.Duration(c.TickMs) * time.Millisecond
}
