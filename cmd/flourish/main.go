// Flourish plays the ambient loops and special effects on either an
// Ebitengine window or the terminal.
//
//	flourish --backend ebiten --variant storm
//	flourish --backend terminal --config flourish.toml --script intro.json
//
// Keys: 1-5 play scrolls, holo, storm, fireworks, flowers on the banner;
// b spawns birds; o starts the orbit; s stops everything; q quits. On the
// ebiten backend p saves a screenshot.
package main

import (
	"fmt"
	"os"

	"github.com/phanxgames/flourish"
	"go.uber.org/zap"
	"gopkg.in/alecthomas/kingpin.v2"
)

var (
	backend       = kingpin.Flag("backend", "Rendering backend").Default("ebiten").Short('b').Enum("ebiten", "terminal")
	configPath    = kingpin.Flag("config", "TOML config file").Short('c').ExistingFile()
	scriptPath    = kingpin.Flag("script", "JSON scenario script").Short('s').ExistingFile()
	variantName   = kingpin.Flag("variant", "Effect played at startup (overrides config)").Short('v').String()
	fontPath      = kingpin.Flag("font", "TTF/OTF font for bird glyphs on the ebiten backend (overrides config)").ExistingFile()
	screenshotDir = kingpin.Flag("screenshot-dir", "Directory screenshots are written to").Default("screenshots").String()
)

// Target refs shared by both backends.
const (
	refSky    = "sky"
	refOrbit  = "orbit"
	refBanner = "banner"
)

// variantKeys maps the number keys to effect variants.
var variantKeys = map[rune]flourish.Variant{
	'1': flourish.VariantScrolls,
	'2': flourish.VariantHolo,
	'3': flourish.VariantStorm,
	'4': flourish.VariantFireworks,
	'5': flourish.VariantFlowers,
}

func main() {
	kingpin.Version("0.1.0")
	kingpin.Parse()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "flourish: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := flourish.DefaultConfig()
	if *configPath != "" {
		loaded, err := flourish.LoadConfig(*configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if *variantName != "" {
		if _, err := flourish.ParseVariant(*variantName); err != nil {
			return err
		}
		cfg.Effect.Variant = *variantName
	}
	if *fontPath != "" {
		cfg.Birds.Font = *fontPath
	}
	// The terminal owns stderr while running.
	if *backend == "terminal" && cfg.Logging.Output == "" {
		cfg.Logging.Output = "flourish.log"
	}

	log, err := flourish.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	var script *flourish.Script
	if *scriptPath != "" {
		data, err := os.ReadFile(*scriptPath)
		if err != nil {
			return fmt.Errorf("read script: %w", err)
		}
		if script, err = flourish.LoadScript(data); err != nil {
			return err
		}
	}

	log.Info("starting",
		zap.String("backend", *backend),
		zap.String("variant", cfg.Effect.Variant),
		zap.Int("frame_rate", cfg.Stage.FrameRate),
	)

	switch *backend {
	case "terminal":
		return runTerminal(cfg, script, log)
	default:
		return runEbiten(cfg, script, log)
	}
}

// startDefaults launches the configured loops and startup effect.
func startDefaults(stage *flourish.Stage, cfg *flourish.Config) {
	stage.SpawnBirds(refSky, cfg.BirdOptions())
	stage.StartOrbitVisualization(refOrbit, cfg.OrbitOptions())
	stage.RunSpecialEffect(refBanner, cfg.EffectVariant(), cfg.EffectOptions())
}

// handleKey applies a key shared by both backends. It reports whether the
// key was recognized.
func handleKey(stage *flourish.Stage, cfg *flourish.Config, r rune) bool {
	if v, ok := variantKeys[r]; ok {
		stage.RunSpecialEffect(refBanner, v, cfg.EffectOptions())
		return true
	}
	switch r {
	case 'b':
		stage.SpawnBirds(refSky, cfg.BirdOptions())
	case 'o':
		stage.StartOrbitVisualization(refOrbit, cfg.OrbitOptions())
	case 's':
		stage.StopAllAnimations()
	default:
		return false
	}
	return true
}
