package flourish

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"go.uber.org/zap"
)

// Config is the TOML configuration for a stage and the demo command.
type Config struct {
	Stage   StageConfig   `toml:"stage"`
	Birds   BirdsConfig   `toml:"birds"`
	Orbit   OrbitConfig   `toml:"orbit"`
	Effect  EffectConfig  `toml:"effect"`
	Logging LoggingConfig `toml:"logging"`
}

type StageConfig struct {
	FrameRate int    `toml:"frame_rate"` // frames per second for ticker-driven backends
	Seed      uint64 `toml:"seed"`       // 0 picks a random seed
	Debug     bool   `toml:"debug"`
}

type BirdsConfig struct {
	Count int    `toml:"count"`
	Glyph string `toml:"glyph"`
	Font  string `toml:"font"` // TTF/OTF drawing the glyph on the ebiten backend
}

type OrbitConfig struct {
	Nodes int `toml:"nodes"`
}

type EffectConfig struct {
	Variant    string        `toml:"variant"`
	Duration   time.Duration `toml:"duration"`
	TuningFile string        `toml:"tuning_file"` // optional YAML tuning overrides
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Stage: StageConfig{
			FrameRate: 60,
		},
		Birds: BirdsConfig{
			Count: defaultBirdCount,
			Glyph: defaultBirdGlyph,
		},
		Orbit: OrbitConfig{
			Nodes: defaultOrbitNodes,
		},
		Effect: EffectConfig{
			Variant:  VariantFireworks.String(),
			Duration: defaultEffectDuration,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// ParseConfig decodes TOML data over DefaultConfig.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Stage.FrameRate <= 0 {
		return nil, fmt.Errorf("parse config: frame_rate must be positive, got %d", cfg.Stage.FrameRate)
	}
	if _, err := ParseVariant(cfg.Effect.Variant); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// LoadConfig reads and parses a TOML config file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// FrameInterval returns the time between frames at the configured rate.
func (c *Config) FrameInterval() time.Duration {
	if c.Stage.FrameRate <= 0 {
		return time.Second / 60
	}
	return time.Second / time.Duration(c.Stage.FrameRate)
}

// BirdOptions returns the configured bird options.
func (c *Config) BirdOptions() BirdOptions {
	return BirdOptions{Count: c.Birds.Count, Glyph: c.Birds.Glyph}
}

// OrbitOptions returns the configured orbit options.
func (c *Config) OrbitOptions() OrbitOptions {
	return OrbitOptions{Nodes: c.Orbit.Nodes}
}

// EffectOptions returns the configured effect options.
func (c *Config) EffectOptions() EffectOptions {
	return EffectOptions{Duration: c.Effect.Duration}
}

// EffectVariant returns the configured variant. ParseConfig has already
// validated the name; an invalid one set afterwards yields fireworks.
func (c *Config) EffectVariant() Variant {
	v, err := ParseVariant(c.Effect.Variant)
	if err != nil {
		return VariantFireworks
	}
	return v
}

// NewStageFromConfig builds a Stage with its own registry, the configured
// seed and debug mode, and the tuning file if one is named.
func NewStageFromConfig(host Host, cfg *Config, log *zap.Logger) (*Stage, error) {
	tuning := DefaultTuning()
	if cfg.Effect.TuningFile != "" {
		t, err := LoadTuning(cfg.Effect.TuningFile)
		if err != nil {
			return nil, err
		}
		tuning = t
	}

	seed := cfg.Stage.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}

	s := NewStage(host, StageOptions{
		Registry: NewRegistry(log),
		Rand:     rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
		Logger:   log,
		Tuning:   &tuning,
	})
	s.SetDebugMode(cfg.Stage.Debug)
	return s, nil
}
