package emitter

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/gekko3d/skyshow/particlert/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFirework(t *testing.T, mutate func(*FireworkConfig)) *Firework {
	t.Helper()
	cfg := DefaultFireworkConfig()
	cfg.Particles = 50
	if mutate != nil {
		mutate(&cfg)
	}
	fw, err := NewFirework(cfg, rand.New(rand.NewSource(11)))
	require.NoError(t, err)
	return fw
}

// ticksUntil steps fw with dt until cond holds and returns the step count.
func ticksUntil(t *testing.T, fw *Firework, dt float32, cond func() bool) int {
	t.Helper()
	for n := 1; n <= 100000; n++ {
		fw.Update(dt)
		if cond() {
			return n
		}
	}
	t.Fatal("condition never reached")
	return 0
}

func TestFirework_AscentTicks(t *testing.T) {
	cases := []struct {
		v0, g, dt float32
		ticks     int
	}{
		{10, 2, 1, 5},
		{10.5, 2, 1, 6},
		{1, 0.1, 1, 10},
		{12, 30, 1, 1},
		{64, 1, 1, 64},
		// Just above a multiple of g still needs the extra tick.
		{3.0001, 3, 1, 2},
		{10.0002, 5, 1, 3},
		{1.00005, 1, 1, 2},
		// Split ticks add up to the same ascent.
		{1, 1, 0.1, 10},
		{6, 2, 0.25, 12},
	}
	for _, c := range cases {
		fw := newTestFirework(t, func(cfg *FireworkConfig) { cfg.Gravity = c.g })
		fw.Launch(mgl32.Vec3{}, mgl32.Vec3{0, c.v0, 0}, 0.3)
		require.Equal(t, Ascending, fw.State())

		n := ticksUntil(t, fw, c.dt, func() bool { return fw.State() != Ascending })
		assert.Equal(t, c.ticks, n, "v0=%v g=%v dt=%v", c.v0, c.g, c.dt)
		assert.Equal(t, Bursting, fw.State())
	}
}

func TestFirework_ZeroAscentBurstsOnFirstTick(t *testing.T) {
	fw := newTestFirework(t, nil)
	fw.Launch(mgl32.Vec3{1, 2, 3}, mgl32.Vec3{}, 0)

	fw.Update(1.0 / 60)
	assert.Equal(t, Bursting, fw.State())
}

func TestFirework_FadeTicks(t *testing.T) {
	cases := []struct {
		rate  float32
		ticks int
	}{
		{0.25, 4},
		{0.1, 10},
		{0.3, 4},
		{0.02, 50},
		{1, 1},
		{0.5, 2},
		{0.33, 4},
	}
	for _, c := range cases {
		fw := newTestFirework(t, func(cfg *FireworkConfig) { cfg.FadeRate = c.rate })
		fw.Launch(mgl32.Vec3{}, mgl32.Vec3{}, 0.5)
		fw.Update(1)
		require.Equal(t, Bursting, fw.State())
		require.Equal(t, float32(1), fw.Opacity())

		n := ticksUntil(t, fw, 1, fw.Done)
		assert.Equal(t, c.ticks, n, "fade step %v", c.rate)
		assert.Equal(t, float32(0), fw.Opacity())
	}
}

func TestDecimalKnobs(t *testing.T) {
	assert.Equal(t, 0.02, decimal(0.02))
	assert.Equal(t, 3.0001, decimal(3.0001))
	assert.Equal(t, float64(64), decimal(64))
}

func TestFirework_BurstStartsAtApex(t *testing.T) {
	fw := newTestFirework(t, func(cfg *FireworkConfig) { cfg.Gravity = 2 })
	fw.Launch(mgl32.Vec3{5, 0, -5}, mgl32.Vec3{0, 4, 0}, 0.1)

	ticksUntil(t, fw, 1, func() bool { return fw.State() == Bursting })

	apex := fw.Position()
	buf := fw.Buffer()
	require.Equal(t, 50, buf.Len())
	require.True(t, buf.HasVelocity())
	for i := 0; i < buf.Len(); i++ {
		assert.Equal(t, apex, buf.Position[i])
		speed := buf.Velocity[i].Len()
		if speed < 20-1e-3 || speed > 40+1e-3 {
			t.Errorf("spark %d speed %f outside [20, 40]", i, speed)
		}
		assert.Equal(t, float32(1), buf.Opacity[i])
	}
}

func TestFirework_SparksFallAndFade(t *testing.T) {
	fw := newTestFirework(t, func(cfg *FireworkConfig) {
		cfg.Speed = core.Range{Min: 0, Max: 0}
		cfg.BurstGravity = 10
	})
	fw.Launch(mgl32.Vec3{}, mgl32.Vec3{}, 0)
	fw.Update(0.1)
	require.Equal(t, Bursting, fw.State())

	apex := fw.Position()

	fw.Update(0.1)
	buf := fw.Buffer()
	// Position moves before gravity is applied.
	assert.InDelta(t, apex.Y(), buf.Position[0].Y(), 1e-6)
	assert.InDelta(t, -1, buf.Velocity[0].Y(), 1e-6)
	fw.Update(0.1)
	assert.InDelta(t, apex.Y()-0.1, buf.Position[0].Y(), 1e-5)
	assert.InDelta(t, 1-2*0.05, fw.Opacity(), 1e-6)
	assert.Equal(t, fw.Opacity(), buf.Opacity[7])
}

func TestFirework_DoneIsTerminal(t *testing.T) {
	fw := newTestFirework(t, func(cfg *FireworkConfig) { cfg.FadeRate = 1 })
	fw.Launch(mgl32.Vec3{}, mgl32.Vec3{}, 0)
	fw.Update(1)
	fw.Update(1)
	require.True(t, fw.Done())

	before := fw.Buffer().At(3)
	age := fw.Age()
	for i := 0; i < 10; i++ {
		fw.Update(1)
	}
	assert.True(t, fw.Done())
	assert.Equal(t, before, fw.Buffer().At(3))
	assert.Equal(t, age, fw.Age())
}

func TestFirework_StreakFollowsShell(t *testing.T) {
	fw := newTestFirework(t, func(cfg *FireworkConfig) {
		cfg.Gravity = 1
		cfg.StreakLength = 4
	})
	fw.Launch(mgl32.Vec3{}, mgl32.Vec3{0, 100, 0}, 0)

	for i := 0; i < 6; i++ {
		fw.Update(0.1)
	}
	streak := fw.Buffer()
	require.Equal(t, 4, streak.Len())
	assert.Equal(t, fw.Position(), streak.Position[0])
	assert.Greater(t, streak.Position[0].Y(), streak.Position[1].Y())
	assert.Greater(t, streak.Opacity[0], streak.Opacity[3])
}

func TestFirework_SplitStepWithoutGravity(t *testing.T) {
	whole := newTestFirework(t, func(cfg *FireworkConfig) { cfg.BurstGravity = 0 })
	split := newTestFirework(t, func(cfg *FireworkConfig) { cfg.BurstGravity = 0 })
	for _, fw := range []*Firework{whole, split} {
		fw.Launch(mgl32.Vec3{}, mgl32.Vec3{}, 0.2)
		fw.Update(0.01)
	}

	whole.Update(0.2)
	split.Update(0.1)
	split.Update(0.1)

	for i := 0; i < whole.Buffer().Len(); i++ {
		a, b := whole.Buffer().Position[i], split.Buffer().Position[i]
		assert.Less(t, a.Sub(b).Len(), float32(1e-4), "spark %d: %v vs %v", i, a, b)
	}
	assert.InDelta(t, whole.Opacity(), split.Opacity(), 1e-6)
}

func TestFirework_Finish(t *testing.T) {
	fw := newTestFirework(t, nil)
	fw.Launch(mgl32.Vec3{}, mgl32.Vec3{0, 50, 0}, 0)
	fw.Update(0.1)
	fw.Finish()
	assert.True(t, fw.Done())
	assert.Equal(t, float32(0), fw.Opacity())
}

func TestFireworkConfig_Invalid(t *testing.T) {
	for _, mutate := range []func(*FireworkConfig){
		func(c *FireworkConfig) { c.Particles = 0 },
		func(c *FireworkConfig) { c.Gravity = 0 },
		func(c *FireworkConfig) { c.FadeRate = -1 },
		func(c *FireworkConfig) { c.StreakLength = 0 },
		func(c *FireworkConfig) { c.Speed = core.Range{Min: 5, Max: 1} },
	} {
		cfg := DefaultFireworkConfig()
		mutate(&cfg)
		_, err := NewFirework(cfg, rand.New(rand.NewSource(1)))
		assert.True(t, errors.Is(err, core.ErrInvalidConfiguration), "got %v", err)
	}
}

func TestHslVecWrapsHue(t *testing.T) {
	red := hslVec(0, 1, 0.5)
	assert.InDelta(t, 1, red.X(), 1e-6)
	assert.InDelta(t, 0, red.Y(), 1e-6)

	wrapped := hslVec(1.0, 1, 0.5)
	assert.Less(t, red.Sub(wrapped).Len(), float32(1e-6))

	negative := hslVec(-2.0/3, 1, 0.5) // same as 1/3: green
	assert.InDelta(t, 1, negative.Y(), 1e-5)
}
