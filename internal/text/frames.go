// Package text produces and shapes the strings shown in roster cells:
// cycling frame text, colour codes, trimming and centering.
package text

import (
	"errors"
	"slices"

	"github.com/jask/rostertab/internal/scheduler"
)

// ErrNoFrames is returned when dynamic text is built without any frame.
var ErrNoFrames = errors.New("text: at least one frame is required")

// Dynamic is text whose visible value can change between render passes.
// Renderers advance each value once per pass, comparing by identity, so
// implementations must be comparable.
type Dynamic interface {
	// Current returns the visible frame without advancing.
	Current() string
	// Advance moves to the next frame when the interval allows it and
	// returns the visible frame.
	Advance() string
}

// Frames cycles through a fixed list of strings, one step per elapsed interval.
type Frames struct {
	frames   []string
	cursor   int
	interval *scheduler.PresetCooldown
}

// NewFrames builds frame text advancing every interval ticks of clock.
// A negative interval never advances.
func NewFrames(clock scheduler.Clock, interval int64, frames ...string) (*Frames, error) {
	if len(frames) == 0 {
		return nil, ErrNoFrames
	}
	f := &Frames{frames: slices.Clone(frames)}
	if interval >= 0 && clock != nil {
		f.interval = scheduler.NewPresetCooldown(clock, interval)
	}
	return f, nil
}

// Static is single-frame text that never changes.
func Static(s string) *Frames {
	return &Frames{frames: []string{s}}
}

func (f *Frames) Current() string {
	return f.frames[f.cursor]
}

func (f *Frames) Advance() string {
	if f.interval == nil || !f.interval.Ready() {
		return f.Current()
	}
	f.interval.Restart()
	f.cursor = (f.cursor + 1) % len(f.frames)
	return f.Current()
}

// SetFrames replaces the frames and starts over from the first one.
func (f *Frames) SetFrames(frames ...string) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	f.frames = slices.Clone(frames)
	f.cursor = 0
	if f.interval != nil {
		f.interval.Restart()
	}
	return nil
}

// Frames returns a copy of the configured frames.
func (f *Frames) Frames() []string {
	return slices.Clone(f.frames)
}

// Interval is the advance interval in ticks, or -1 for static text.
func (f *Frames) Interval() int64 {
	if f.interval == nil {
		return -1
	}
	return f.interval.Wait()
}
