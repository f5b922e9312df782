package scheduler

import "math"

// Clock reports the current tick count.
type Clock interface {
	Ticks() int64
}

// ManualClock is a Clock advanced by hand. The zero value starts at tick 0.
type ManualClock struct {
	now int64
}

func (c *ManualClock) Ticks() int64 { return c.now }

// Advance moves the clock forward by n ticks.
func (c *ManualClock) Advance(n int64) { c.now += n }

// Cooldown gates an action until a number of ticks has elapsed.
type Cooldown struct {
	clock    Clock
	expireAt int64
}

// NewCooldown returns a cooldown that is ready immediately.
func NewCooldown(clock Clock) *Cooldown {
	return &Cooldown{clock: clock}
}

// SetWait arms the cooldown to expire ticks from now.
func (c *Cooldown) SetWait(ticks int64) {
	now := c.clock.Ticks()
	if ticks > math.MaxInt64-now {
		c.expireAt = math.MaxInt64
		return
	}
	c.expireAt = now + ticks
}

// Left is the number of ticks until the cooldown is ready; zero or less when ready.
func (c *Cooldown) Left() int64 {
	return c.expireAt - c.clock.Ticks()
}

func (c *Cooldown) Ready() bool {
	return c.Left() <= 0
}

// Reset disarms the cooldown.
func (c *Cooldown) Reset() {
	c.expireAt = 0
}

// PresetCooldown is a Cooldown that always re-arms with the same wait.
// A negative wait never becomes ready.
type PresetCooldown struct {
	Cooldown
	wait int64
}

// NewPresetCooldown returns an armed preset cooldown.
func NewPresetCooldown(clock Clock, wait int64) *PresetCooldown {
	p := &PresetCooldown{Cooldown: Cooldown{clock: clock}, wait: wait}
	p.Go()
	return p
}

func (p *PresetCooldown) Wait() int64 { return p.wait }

// Go arms the cooldown with the preset wait.
func (p *PresetCooldown) Go() {
	if p.wait < 0 {
		return
	}
	p.SetWait(p.wait)
}

func (p *PresetCooldown) Ready() bool {
	if p.wait < 0 {
		return false
	}
	return p.Cooldown.Ready()
}

// Restart resets and re-arms in one step.
func (p *PresetCooldown) Restart() {
	p.Reset()
	p.Go()
}
