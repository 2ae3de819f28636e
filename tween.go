package flourish

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// fade animates a single alpha value from a start level down to zero over a
// number of frames. The caller paints with Value and then calls Update once
// per frame; Done reports when the fade has run out.
type fade struct {
	tween *gween.Tween
	value float64
	done  bool
}

// newFade starts a fade from alpha to zero lasting frames frames (minimum 1).
func newFade(alpha float64, frames int, fn ease.TweenFunc) *fade {
	if frames < 1 {
		frames = 1
	}
	if fn == nil {
		fn = ease.OutQuad
	}
	return &fade{
		tween: gween.New(float32(alpha), 0, float32(frames), fn),
		value: alpha,
	}
}

// Value returns the current alpha.
func (f *fade) Value() float64 {
	return f.value
}

// Done reports whether the fade has finished.
func (f *fade) Done() bool {
	return f == nil || f.done
}

// Update advances the fade by one frame.
func (f *fade) Update() {
	if f.done {
		return
	}
	v, finished := f.tween.Update(1)
	f.value = float64(v)
	f.done = finished
}
