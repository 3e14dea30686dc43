package emitter

import (
	"math"
	"math/rand"
	"strconv"

	"github.com/gekko3d/skyshow/particlert/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
)

type FireworkState int

const (
	Ascending FireworkState = iota
	// Bursting covers the fade-out as well; the burst ends when opacity runs out.
	Bursting
	Done
)

func (s FireworkState) String() string {
	switch s {
	case Ascending:
		return "ascending"
	case Bursting:
		return "bursting"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// settleTolerance is the relative residual that still counts as zero when the
// ascent or the fade runs out. It sits far below float32 resolution (~1.2e-7),
// so it only absorbs float64 summation error and never swallows a real tick.
const settleTolerance = 1e-9

// decimal widens a float32 knob to the float64 nearest its shortest decimal
// form: 0.02 counts as 0.02, not 0.0199999995.
func decimal(x float32) float64 {
	v, err := strconv.ParseFloat(strconv.FormatFloat(float64(x), 'g', -1, 32), 64)
	if err != nil {
		return float64(x)
	}
	return v
}

type FireworkConfig struct {
	// Particles is the burst size.
	Particles int
	// Gravity pulls the rising shell down, units/s^2.
	Gravity float32
	// BurstGravity pulls burst sparks down, units/s^2.
	BurstGravity float32
	// Speed is the radial speed range of sparks, units/s.
	Speed core.Range
	// FadeRate is the burst opacity lost per second.
	FadeRate     float32
	ParticleSize float32
	// HueJitter spreads each spark's hue around the shell hue (0..1 of the wheel).
	HueJitter  float64
	Saturation float64
	Lightness  float64
	// StreakLength is the number of points in the launch streak.
	StreakLength int
}

func DefaultFireworkConfig() FireworkConfig {
	return FireworkConfig{
		Particles:    400,
		Gravity:      30,
		BurstGravity: 6,
		Speed:        core.Range{Min: 20, Max: 40},
		FadeRate:     0.5,
		ParticleSize: 5,
		HueJitter:    0.03,
		Saturation:   1,
		Lightness:    0.5,
		StreakLength: 8,
	}
}

func (c FireworkConfig) Validate() error {
	if c.Particles <= 0 {
		return core.Invalidf("firework particle count %d", c.Particles)
	}
	if c.Gravity <= 0 {
		return core.Invalidf("firework gravity %f must be positive", c.Gravity)
	}
	if c.BurstGravity < 0 {
		return core.Invalidf("burst gravity %f", c.BurstGravity)
	}
	if c.FadeRate <= 0 {
		return core.Invalidf("firework fade rate %f must be positive", c.FadeRate)
	}
	if !c.Speed.Valid() || c.Speed.Min < 0 {
		return core.Invalidf("burst speed %+v", c.Speed)
	}
	if c.StreakLength < 1 {
		return core.Invalidf("streak length %d", c.StreakLength)
	}
	if c.HueJitter < 0 || c.Saturation < 0 || c.Saturation > 1 || c.Lightness < 0 || c.Lightness > 1 {
		return core.Invalidf("firework colour knobs hue jitter %f saturation %f lightness %f",
			c.HueJitter, c.Saturation, c.Lightness)
	}
	return nil
}

// Firework is one shell: it rises, bursts at its apex and fades out.
// Its buffers are allocated once and reused every time the shell is launched.
type Firework struct {
	ID uuid.UUID

	cfg   FireworkConfig
	rng   *rand.Rand
	state FireworkState

	origin   mgl32.Vec3
	position mgl32.Vec3
	velocity mgl32.Vec3
	hue      float64
	color    mgl32.Vec3
	age      float32
	opacity  float32

	// climb and life are the settle counters: remaining upward speed and
	// remaining opacity, tracked in float64 against the decimal knobs.
	climb      float64
	climbScale float64
	life       float64

	streak *core.ParticleBuffer
	burst  *core.ParticleBuffer
}

// NewFirework allocates a shell in the Done state; call Launch to fire it.
func NewFirework(cfg FireworkConfig, rng *rand.Rand) (*Firework, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	streak, err := core.NewParticleBuffer(cfg.StreakLength, false)
	if err != nil {
		return nil, err
	}
	burst, err := core.NewParticleBuffer(cfg.Particles, true)
	if err != nil {
		return nil, err
	}
	return &Firework{
		cfg:    cfg,
		rng:    rng,
		state:  Done,
		streak: streak,
		burst:  burst,
	}, nil
}

// Launch (re)starts the shell from origin. A zero vertical velocity bursts on
// the first tick.
func (f *Firework) Launch(origin, velocity mgl32.Vec3, hue float64) {
	f.ID = uuid.New()
	f.state = Ascending
	f.origin = origin
	f.position = origin
	f.velocity = velocity
	f.hue = hue
	f.color = hslVec(hue, f.cfg.Saturation, f.cfg.Lightness)
	f.age = 0
	f.opacity = 1
	f.climb = decimal(velocity.Y())
	f.climbScale = max(math.Abs(f.climb), 1)
	f.life = 1

	f.streak.Fill(core.Particle{Position: origin, Color: f.color, Size: f.cfg.ParticleSize})
	f.streak.Opacity[0] = 1
}

func (f *Firework) State() FireworkState { return f.state }
func (f *Firework) Done() bool           { return f.state == Done }
func (f *Firework) Origin() mgl32.Vec3   { return f.origin }
func (f *Firework) Position() mgl32.Vec3 { return f.position }
func (f *Firework) Velocity() mgl32.Vec3 { return f.velocity }
func (f *Firework) Color() mgl32.Vec3    { return f.color }
func (f *Firework) Age() float32         { return f.age }
func (f *Firework) Opacity() float32     { return f.opacity }

func (f *Firework) Config() FireworkConfig { return f.cfg }

// Buffer is what the renderer should draw now: the streak while rising, the
// burst afterwards.
func (f *Firework) Buffer() *core.ParticleBuffer {
	if f.state == Ascending {
		return f.streak
	}
	return f.burst
}

// Finish forces the shell to Done so its owner can recycle it.
func (f *Firework) Finish() {
	f.state = Done
	f.opacity = 0
	f.burst.SetOpacity(0)
	f.streak.SetOpacity(0)
}

// Update advances the shell by dt seconds. Done shells are left untouched.
func (f *Firework) Update(dt float32) {
	switch f.state {
	case Ascending:
		f.age += dt
		f.ascend(dt)
	case Bursting:
		f.age += dt
		f.fade(dt)
	}
}

func (f *Firework) ascend(dt float32) {
	f.climb -= decimal(f.cfg.Gravity) * decimal(dt)
	f.velocity[1] = float32(f.climb)
	f.position = f.position.Add(f.velocity.Mul(dt))
	f.pushStreak()

	if f.climb <= settleTolerance*f.climbScale {
		f.explode()
	}
}

func (f *Firework) pushStreak() {
	n := f.streak.Len()
	copy(f.streak.Position[1:], f.streak.Position[:n-1])
	f.streak.Position[0] = f.position
	for i := 0; i < n; i++ {
		f.streak.Opacity[i] = 1 - float32(i)/float32(n)
	}
	f.streak.MarkDirty()
}

func (f *Firework) explode() {
	f.state = Bursting
	f.opacity = 1
	f.life = 1
	f.streak.SetOpacity(0)

	for i := 0; i < f.burst.Len(); i++ {
		a := f.rng.Float64() * core.TwoPi
		b := f.rng.Float64() * core.TwoPi
		sinA, cosA := math.Sincos(a)
		sinB, cosB := math.Sincos(b)
		dir := mgl32.Vec3{float32(sinA * cosB), float32(sinA * sinB), float32(cosA)}

		color := f.color
		if f.cfg.HueJitter > 0 {
			h := f.hue + (f.rng.Float64()-0.5)*f.cfg.HueJitter
			color = hslVec(h, f.cfg.Saturation, f.cfg.Lightness)
		}

		f.burst.Reset(i, core.Particle{
			Position: f.position,
			Velocity: dir.Mul(f.cfg.Speed.Sample(f.rng)),
			Color:    color,
			Size:     f.cfg.ParticleSize,
			Opacity:  1,
		})
	}
}

func (f *Firework) fade(dt float32) {
	g := f.cfg.BurstGravity * dt
	f.burst.Update(func(i int) {
		f.burst.Position[i] = f.burst.Position[i].Add(f.burst.Velocity[i].Mul(dt))
		f.burst.Velocity[i][1] -= g
	})

	f.life -= decimal(f.cfg.FadeRate) * decimal(dt)
	if f.life <= settleTolerance {
		f.life = 0
		f.state = Done
	}
	f.opacity = float32(f.life)
	f.burst.SetOpacity(f.opacity)
}

// hslVec converts a hue in turns (any real, wrapped) to linear-ish RGB.
func hslVec(hue, s, l float64) mgl32.Vec3 {
	hue -= math.Floor(hue)
	c := colorful.Hsl(hue*360, s, l).Clamped()
	return mgl32.Vec3{float32(c.R), float32(c.G), float32(c.B)}
}
