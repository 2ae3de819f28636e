package flourish

import (
	"encoding/json"
	"fmt"
	"time"
)

// scriptStep is a single action in a scenario script.
type scriptStep struct {
	Action     string `json:"action"`
	Target     string `json:"target,omitempty"`
	Variant    string `json:"variant,omitempty"`
	Count      int    `json:"count,omitempty"`
	Glyph      string `json:"glyph,omitempty"`
	Nodes      int    `json:"nodes,omitempty"`
	DurationMs int    `json:"durationMs,omitempty"`
	Frames     int    `json:"frames,omitempty"`

	variant Variant
}

// scriptFile is the top-level JSON structure for a scenario script.
type scriptFile struct {
	Steps []scriptStep `json:"steps"`
}

// Script sequences stage operations across frames, one step per frame
// unless a "wait" step holds it. Attach to a Stage via SetScript.
//
//	{"steps": [
//	  {"action": "birds", "target": "sky", "count": 3},
//	  {"action": "wait", "frames": 120},
//	  {"action": "effect", "target": "banner", "variant": "fireworks", "durationMs": 1500},
//	  {"action": "stop_all"}
//	]}
type Script struct {
	steps     []scriptStep
	cursor    int
	waitCount int
	done      bool
}

// LoadScript parses a JSON scenario script.
func LoadScript(jsonData []byte) (*Script, error) {
	var f scriptFile
	if err := json.Unmarshal(jsonData, &f); err != nil {
		return nil, fmt.Errorf("parse script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("parse script: no steps")
	}
	for i := range f.Steps {
		st := &f.Steps[i]
		switch st.Action {
		case "birds", "orbit", "stop_all", "wait":
		case "effect":
			v, err := ParseVariant(st.Variant)
			if err != nil {
				return nil, fmt.Errorf("parse script: step %d: %w", i, err)
			}
			st.variant = v
		default:
			return nil, fmt.Errorf("parse script: step %d: unknown action %q", i, st.Action)
		}
	}
	return &Script{steps: f.Steps}, nil
}

// Done reports whether every step has been executed.
func (sc *Script) Done() bool {
	return sc.done
}

// step executes at most one step. Called from Stage.Update before the frame
// is advanced.
func (sc *Script) step(s *Stage) {
	if sc.done {
		return
	}
	if sc.waitCount > 0 {
		sc.waitCount--
		return
	}
	if sc.cursor >= len(sc.steps) {
		sc.done = true
		return
	}

	st := sc.steps[sc.cursor]
	sc.cursor++

	switch st.Action {
	case "birds":
		s.SpawnBirds(st.Target, BirdOptions{Count: st.Count, Glyph: st.Glyph})
	case "orbit":
		s.StartOrbitVisualization(st.Target, OrbitOptions{Nodes: st.Nodes})
	case "effect":
		s.RunSpecialEffect(st.Target, st.variant, EffectOptions{
			Duration: time.Duration(st.DurationMs) * time.Millisecond,
		})
	case "stop_all":
		s.StopAllAnimations()
	case "wait":
		if st.Frames > 0 {
			sc.waitCount = st.Frames - 1 // this frame counts as one
		}
	}

	if sc.cursor >= len(sc.steps) && sc.waitCount == 0 {
		sc.done = true
	}
}
