package flourish

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// VariantTuning holds the per-tick probabilities and particle parameters of
// one special-effect variant. Spawn chance and lifetime together set the
// steady-state particle population; they are not bounded by the pool.
type VariantTuning struct {
	// SpawnChance is the per-tick probability of spawning a particle (or a
	// full burst, for fireworks).
	SpawnChance float64
	// FlashChance is the per-tick probability of a storm flash.
	FlashChance float64
	// Lifetime is the range of particle lifetimes in frames.
	Lifetime Range
	// Size is the range of particle sizes in pixels.
	Size Range
}

// Tuning collects every tunable constant of the special effects.
type Tuning struct {
	// Gravity is added to every particle's vertical velocity each frame,
	// for all variants including flowers.
	Gravity float64
	// FlashFrames is how many frames a storm flash takes to fade out.
	FlashFrames int

	Holo      VariantTuning
	Storm     VariantTuning
	Fireworks VariantTuning
	Flowers   VariantTuning
}

// DefaultTuning returns the stock effect tuning.
func DefaultTuning() Tuning {
	generic := VariantTuning{Lifetime: Range{60, 120}, Size: Range{6, 20}}

	holo := generic
	holo.SpawnChance = 0.4

	storm := generic
	storm.SpawnChance = 0.15
	storm.FlashChance = 0.08

	fireworks := VariantTuning{
		SpawnChance: 0.05,
		Lifetime:    Range{40, 100},
		Size:        Range{2, 6},
	}

	flowers := generic
	flowers.SpawnChance = 0.2

	return Tuning{
		Gravity:     0.12,
		FlashFrames: 1,
		Holo:        holo,
		Storm:       storm,
		Fireworks:   fireworks,
		Flowers:     flowers,
	}
}

// variant returns the tuning for v. Scrolls spawn nothing and get a zero value.
func (t *Tuning) variant(v Variant) VariantTuning {
	switch v {
	case VariantHolo:
		return t.Holo
	case VariantStorm:
		return t.Storm
	case VariantFireworks:
		return t.Fireworks
	case VariantFlowers:
		return t.Flowers
	default:
		return VariantTuning{}
	}
}

// tuningFile mirrors Tuning with optional fields so a YAML file only needs
// to name the values it changes.
type tuningFile struct {
	Gravity     *float64               `yaml:"gravity"`
	FlashFrames *int                   `yaml:"flash_frames"`
	Variants    map[string]variantFile `yaml:"variants"`
}

type variantFile struct {
	SpawnChance *float64 `yaml:"spawn_chance"`
	FlashChance *float64 `yaml:"flash_chance"`
	Lifetime    *Range   `yaml:"lifetime"`
	Size        *Range   `yaml:"size"`
}

func (f variantFile) apply(vt *VariantTuning) {
	if f.SpawnChance != nil {
		vt.SpawnChance = *f.SpawnChance
	}
	if f.FlashChance != nil {
		vt.FlashChance = *f.FlashChance
	}
	if f.Lifetime != nil {
		vt.Lifetime = *f.Lifetime
	}
	if f.Size != nil {
		vt.Size = *f.Size
	}
}

// ParseTuning overlays the YAML document in data on DefaultTuning.
//
//	gravity: 0.12
//	flash_frames: 4
//	variants:
//	  fireworks: {spawn_chance: 0.1, lifetime: {min: 30, max: 60}}
func ParseTuning(data []byte) (Tuning, error) {
	t := DefaultTuning()

	var f tuningFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return t, fmt.Errorf("parse tuning: %w", err)
	}

	if f.Gravity != nil {
		t.Gravity = *f.Gravity
	}
	if f.FlashFrames != nil {
		if *f.FlashFrames < 1 {
			return t, fmt.Errorf("parse tuning: flash_frames must be at least 1, got %d", *f.FlashFrames)
		}
		t.FlashFrames = *f.FlashFrames
	}

	for name, vf := range f.Variants {
		v, err := ParseVariant(name)
		if err != nil {
			return t, fmt.Errorf("parse tuning: %w", err)
		}
		switch v {
		case VariantHolo:
			vf.apply(&t.Holo)
		case VariantStorm:
			vf.apply(&t.Storm)
		case VariantFireworks:
			vf.apply(&t.Fireworks)
		case VariantFlowers:
			vf.apply(&t.Flowers)
		default:
			return t, fmt.Errorf("parse tuning: variant %q has no tunable values", name)
		}
	}
	return t, nil
}

// LoadTuning reads and parses a YAML tuning file.
func LoadTuning(path string) (Tuning, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultTuning(), fmt.Errorf("read tuning %s: %w", path, err)
	}
	return ParseTuning(data)
}
