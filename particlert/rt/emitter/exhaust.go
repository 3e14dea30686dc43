package emitter

import (
	"math"
	"math/rand"

	"github.com/gekko3d/skyshow/particlert/rt/core"

	"github.com/aquilax/go-perlin"
	"github.com/go-gl/mathgl/mgl32"
)

type ExhaustConfig struct {
	Capacity int
	// TrailLength is how far a particle may drift from the nozzle before it
	// is sent back.
	TrailLength float32
	Speed       core.Range
	// Direction is the main flow in the parent's local space.
	Direction mgl32.Vec3
	// Spread is the sideways velocity as a fraction of the speed.
	Spread      float32
	SpawnRadius float32
	ColorStart  mgl32.Vec3
	ColorEnd    mgl32.Vec3
	Size        core.Range
	// Turbulence is the peak sideways drift from the noise field, units/s.
	Turbulence      float32
	TurbulenceScale float32
	Seed            int64
}

// DefaultFlameConfig is the afterburner core under the rocket.
func DefaultFlameConfig() ExhaustConfig {
	return ExhaustConfig{
		Capacity:    400,
		TrailLength: 12,
		Speed:       core.Range{Min: 20, Max: 30},
		Direction:   mgl32.Vec3{0, -1, 0},
		Spread:      0.15,
		SpawnRadius: 0.8,
		ColorStart:  mgl32.Vec3{1, 0.9, 0.6},
		ColorEnd:    mgl32.Vec3{1, 0.3, 0},
		Size:        core.Range{Min: 1, Max: 2.5},
	}
}

// DefaultSmokeConfig is the slow grey plume around the flame.
func DefaultSmokeConfig() ExhaustConfig {
	return ExhaustConfig{
		Capacity:        600,
		TrailLength:     40,
		Speed:           core.Range{Min: 6, Max: 10},
		Direction:       mgl32.Vec3{0, -1, 0},
		Spread:          0.35,
		SpawnRadius:     1.5,
		ColorStart:      mgl32.Vec3{0.6, 0.6, 0.6},
		ColorEnd:        mgl32.Vec3{0.2, 0.2, 0.2},
		Size:            core.Range{Min: 2, Max: 5},
		Turbulence:      3,
		TurbulenceScale: 0.15,
	}
}

func (c ExhaustConfig) Validate() error {
	if c.Capacity <= 0 {
		return core.Invalidf("exhaust capacity %d", c.Capacity)
	}
	if c.TrailLength <= 0 {
		return core.Invalidf("trail length %f", c.TrailLength)
	}
	if !c.Speed.Valid() || c.Speed.Min <= 0 {
		return core.Invalidf("exhaust speed %+v", c.Speed)
	}
	if c.Direction.Len() == 0 {
		return core.Invalidf("exhaust direction is zero")
	}
	if c.Spread < 0 || c.SpawnRadius < 0 || c.SpawnRadius >= c.TrailLength {
		return core.Invalidf("exhaust spread %f / spawn radius %f", c.Spread, c.SpawnRadius)
	}
	if !c.Size.Valid() || c.Turbulence < 0 || c.TurbulenceScale < 0 {
		return core.Invalidf("exhaust size %+v / turbulence %f", c.Size, c.Turbulence)
	}
	return nil
}

// ExhaustTrail is an endless stream of particles. Positions are local to the
// nozzle; particles that travel past TrailLength are moved back next to it.
type ExhaustTrail struct {
	cfg ExhaustConfig
	rng *rand.Rand

	dir   mgl32.Vec3
	side  mgl32.Vec3
	front mgl32.Vec3
	noise *perlin.Perlin

	buf       *core.ParticleBuffer
	transform *core.Transform
	visible   bool
	elapsed   float64
}

func NewExhaustTrail(cfg ExhaustConfig) (*ExhaustTrail, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	buf, err := core.NewParticleBuffer(cfg.Capacity, true)
	if err != nil {
		return nil, err
	}

	e := &ExhaustTrail{
		cfg:       cfg,
		rng:       core.NewRand(cfg.Seed),
		dir:       cfg.Direction.Normalize(),
		buf:       buf,
		transform: core.NewTransform(),
	}
	e.side, e.front = basis(e.dir)

	// Start with the stream already spread along its length.
	for i := 0; i < buf.Len(); i++ {
		e.respawn(i)
		travel := e.rng.Float32() * (cfg.TrailLength - cfg.SpawnRadius)
		buf.Position[i] = buf.Position[i].Add(e.dir.Mul(travel))
		e.shade(i)
	}
	if cfg.Turbulence > 0 {
		e.noise = perlin.NewPerlin(2, 2, 3, e.rng.Int63())
	}
	return e, nil
}

func (e *ExhaustTrail) Buffer() *core.ParticleBuffer { return e.buf }
func (e *ExhaustTrail) Transform() *core.Transform   { return e.transform }
func (e *ExhaustTrail) Visible() bool                { return e.visible }
func (e *ExhaustTrail) SetVisible(v bool)            { e.visible = v }

// Update moves every particle by dt seconds and recycles the ones that left
// the trail. Hidden trails stand still.
func (e *ExhaustTrail) Update(dt float32) {
	if !e.visible || dt <= 0 {
		return
	}
	e.elapsed += float64(dt)

	limit := e.cfg.TrailLength
	e.buf.Update(func(i int) {
		p := e.buf.Position[i].Add(e.buf.Velocity[i].Mul(dt))
		if e.noise != nil {
			along := float64(p.Dot(e.dir) * e.cfg.TurbulenceScale)
			nx := float32(e.noise.Noise2D(along, e.elapsed))
			nz := float32(e.noise.Noise2D(along+100, e.elapsed))
			drift := e.side.Mul(nx).Add(e.front.Mul(nz)).Mul(e.cfg.Turbulence * dt)
			p = p.Add(drift)
		}
		e.buf.Position[i] = p

		if p.Len() > limit {
			e.respawn(i)
		}
		e.shade(i)
	})
}

func (e *ExhaustTrail) respawn(i int) {
	angle := e.rng.Float64() * core.TwoPi
	sin, cos := math.Sincos(angle)
	radius := e.cfg.SpawnRadius * float32(math.Sqrt(e.rng.Float64()))
	pos := e.side.Mul(float32(cos) * radius).Add(e.front.Mul(float32(sin) * radius))

	speed := e.cfg.Speed.Sample(e.rng)
	outward := e.side.Mul(float32(cos)).Add(e.front.Mul(float32(sin)))
	vel := e.dir.Mul(speed).Add(outward.Mul(speed * e.cfg.Spread * e.rng.Float32()))

	e.buf.Reset(i, core.Particle{
		Position: pos,
		Velocity: vel,
		Color:    e.cfg.ColorStart,
		Size:     e.cfg.Size.Sample(e.rng),
		Opacity:  1,
	})
}

// shade fades colour and opacity with the distance travelled.
func (e *ExhaustTrail) shade(i int) {
	t := e.buf.Position[i].Len() / e.cfg.TrailLength
	if t > 1 {
		t = 1
	}
	a, b := e.cfg.ColorStart, e.cfg.ColorEnd
	e.buf.Color[i] = a.Add(b.Sub(a).Mul(t))
	e.buf.Opacity[i] = 1 - t
}

// basis returns two unit vectors perpendicular to dir and to each other.
func basis(dir mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	ref := mgl32.Vec3{1, 0, 0}
	if math.Abs(float64(dir.X())) > 0.9 {
		ref = mgl32.Vec3{0, 0, 1}
	}
	side := dir.Cross(ref).Normalize()
	front := dir.Cross(side).Normalize()
	return side, front
}
