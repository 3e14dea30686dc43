package skyshow

import (
	"sync"
	"time"
)

// Clock reports the time elapsed since the scene started.
type Clock interface {
	Elapsed() time.Duration
}

type SystemClock struct {
	start time.Time
}

func NewSystemClock() *SystemClock {
	return &SystemClock{start: time.Now()}
}

func (c *SystemClock) Elapsed() time.Duration { return time.Since(c.start) }

// ManualClock only moves when advanced. Used by headless runs and tests.
type ManualClock struct {
	mu  sync.Mutex
	now time.Duration
}

func (c *ManualClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now += d
	c.mu.Unlock()
}

func (c *ManualClock) Elapsed() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

type Time struct {
	Elapsed time.Duration
	Dt      time.Duration
	Frame   uint64
}

// DtSeconds is the frame step in seconds, the unit every simulation uses.
func (t *Time) DtSeconds() float32 {
	return float32(t.Dt.Seconds())
}

type TimeConfig struct {
	// FixedStep, when positive, replaces the clock delta on every frame.
	FixedStep time.Duration `json:"fixed_step"`
	// MaxStep caps the clock delta so a stalled frame cannot teleport particles.
	MaxStep time.Duration `json:"max_step"`
}

func DefaultTimeConfig() TimeConfig {
	return TimeConfig{MaxStep: 100 * time.Millisecond}
}

func (c TimeConfig) Validate() error {
	if c.FixedStep < 0 || c.MaxStep < 0 {
		return invalidf("time steps must not be negative")
	}
	return nil
}

type TimeModule struct {
	Config TimeConfig
	Clock  Clock
}

type timeSource struct {
	clock Clock
	cfg   TimeConfig
	last  time.Duration
}

func (mod TimeModule) Validate() error { return mod.Config.Validate() }

func (mod TimeModule) Install(app *App, cmd *Commands) {
	clock := mod.Clock
	if clock == nil {
		clock = NewSystemClock()
	}
	cmd.AddResources(&Time{}, &timeSource{clock: clock, cfg: mod.Config, last: clock.Elapsed()})
	app.UseSystem(System(timeSystem).InStage(Prelude))
}

func timeSystem(t *Time, src *timeSource) {
	if src.cfg.FixedStep > 0 {
		t.Dt = src.cfg.FixedStep
		t.Elapsed += t.Dt
		t.Frame++
		return
	}

	now := src.clock.Elapsed()
	dt := now - src.last
	src.last = now
	if dt < 0 {
		dt = 0
	}
	if src.cfg.MaxStep > 0 && dt > src.cfg.MaxStep {
		dt = src.cfg.MaxStep
	}
	t.Dt = dt
	t.Elapsed += dt
	t.Frame++
}
