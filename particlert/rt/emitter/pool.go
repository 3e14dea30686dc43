package emitter

import (
	"math/rand"

	"github.com/gekko3d/skyshow/particlert/rt/core"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

// Logger is the slice of the engine logger the emitters use.
type Logger interface {
	Debugf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Debugf(format string, args ...any) {}

// Bounds is an axis-aligned box that launch origins are drawn from.
type Bounds struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func (b Bounds) sample(rng *rand.Rand) mgl32.Vec3 {
	return mgl32.Vec3{
		core.Lerp(b.Min.X(), b.Max.X(), rng.Float32()),
		core.Lerp(b.Min.Y(), b.Max.Y(), rng.Float32()),
		core.Lerp(b.Min.Z(), b.Max.Z(), rng.Float32()),
	}
}

type PoolConfig struct {
	// MaxActive bounds the live shells; spawns beyond it are dropped.
	MaxActive int
	// SpawnChance is the probability of a spontaneous launch on each tick.
	SpawnChance float64
	// AutoRespawn schedules a replacement whenever a shell finishes.
	AutoRespawn bool
	// RespawnDelay is the countdown range, in seconds, for scheduled launches.
	RespawnDelay core.Range
	// InitialSpawns are scheduled with RespawnDelay when the pool is created.
	InitialSpawns int
	Bounds        Bounds
	// AscentSpeed is the upward launch speed range, units/s.
	AscentSpeed core.Range
	Firework    FireworkConfig
	Seed        int64
}

// DefaultPoolConfig mirrors the scene: five shells over the far hills, each
// relaunched one to six seconds after it fades.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig{
		MaxActive:     5,
		SpawnChance:   0.01,
		AutoRespawn:   true,
		RespawnDelay:  core.Range{Min: 1, Max: 6},
		InitialSpawns: 5,
		Bounds: Bounds{
			Min: mgl32.Vec3{-500, 100, -2500},
			Max: mgl32.Vec3{500, 250, -1500},
		},
		AscentSpeed: core.Range{Min: 60, Max: 80},
		Firework:    DefaultFireworkConfig(),
	}
}

func (c PoolConfig) Validate() error {
	if c.MaxActive <= 0 {
		return core.Invalidf("pool capacity %d", c.MaxActive)
	}
	if c.SpawnChance < 0 || c.SpawnChance > 1 {
		return core.Invalidf("spawn chance %f outside 0..1", c.SpawnChance)
	}
	if !c.RespawnDelay.Valid() || c.RespawnDelay.Min < 0 {
		return core.Invalidf("respawn delay %+v", c.RespawnDelay)
	}
	if c.InitialSpawns < 0 {
		return core.Invalidf("initial spawns %d", c.InitialSpawns)
	}
	if !c.AscentSpeed.Valid() || c.AscentSpeed.Min < 0 {
		return core.Invalidf("ascent speed %+v", c.AscentSpeed)
	}
	return c.Firework.Validate()
}

type PoolStats struct {
	Spawned  uint64
	Finished uint64
	// Dropped counts launch requests refused because the pool was full.
	Dropped uint64
}

// Pool owns a bounded set of fireworks. Shells are preallocated and recycled,
// so steady-state updates do not allocate.
type Pool struct {
	cfg PoolConfig
	rng *rand.Rand
	log Logger

	active  []*Firework
	free    []*Firework
	pending []float32

	stats PoolStats
}

func NewPool(cfg PoolConfig, log Logger) (*Pool, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log == nil {
		log = nopLogger{}
	}

	p := &Pool{
		cfg:    cfg,
		rng:    core.NewRand(cfg.Seed),
		log:    log,
		active: make([]*Firework, 0, cfg.MaxActive),
		free:   make([]*Firework, 0, cfg.MaxActive),
	}
	for i := 0; i < cfg.MaxActive; i++ {
		fw, err := NewFirework(cfg.Firework, p.rng)
		if err != nil {
			return nil, err
		}
		p.free = append(p.free, fw)
	}
	for i := 0; i < cfg.InitialSpawns; i++ {
		p.Schedule(cfg.RespawnDelay.Sample(p.rng))
	}
	return p, nil
}

func (p *Pool) Active() int      { return len(p.active) }
func (p *Pool) Capacity() int    { return p.cfg.MaxActive }
func (p *Pool) Pending() int     { return len(p.pending) }
func (p *Pool) Stats() PoolStats { return p.stats }

// Fireworks is the live set. The slice is owned by the pool and only valid
// until the next Update.
func (p *Pool) Fireworks() []*Firework { return p.active }

// TrySpawn launches a shell from a random origin inside the bounds.
func (p *Pool) TrySpawn() (uuid.UUID, bool) {
	origin := p.cfg.Bounds.sample(p.rng)
	velocity := mgl32.Vec3{0, p.cfg.AscentSpeed.Sample(p.rng), 0}
	return p.SpawnAt(origin, velocity, p.rng.Float64())
}

// SpawnAt launches a shell with explicit parameters. When the pool is full
// the request is dropped.
func (p *Pool) SpawnAt(origin, velocity mgl32.Vec3, hue float64) (uuid.UUID, bool) {
	if len(p.free) == 0 {
		p.stats.Dropped++
		p.log.Debugf("firework pool full (%d active), launch dropped", len(p.active))
		return uuid.Nil, false
	}

	fw := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	fw.Launch(origin, velocity, hue)
	p.active = append(p.active, fw)
	p.stats.Spawned++
	return fw.ID, true
}

// Schedule queues a launch delay seconds from now.
func (p *Pool) Schedule(delay float32) {
	p.pending = append(p.pending, delay)
}

// LaunchMultiple schedules n launches spaced interval seconds apart, the
// first one interval from now.
func (p *Pool) LaunchMultiple(n int, interval float32) {
	for i := 0; i < n; i++ {
		p.Schedule(float32(i+1) * interval)
	}
}

// Update advances countdowns, rolls for a spontaneous launch, steps every live
// shell and recycles the ones that finished.
func (p *Pool) Update(dt float32) {
	kept := p.pending[:0]
	for _, left := range p.pending {
		left -= dt
		if left > 0 {
			kept = append(kept, left)
			continue
		}
		p.TrySpawn()
	}
	p.pending = kept

	if p.cfg.SpawnChance > 0 && p.rng.Float64() < p.cfg.SpawnChance {
		p.TrySpawn()
	}

	for _, fw := range p.active {
		fw.Update(dt)
	}

	p.recycle(p.cfg.AutoRespawn)
}

// Clear finishes every live shell and drops scheduled launches.
func (p *Pool) Clear() {
	for _, fw := range p.active {
		fw.Finish()
	}
	p.recycle(false)
	p.pending = p.pending[:0]
}

func (p *Pool) recycle(respawn bool) {
	i := 0
	for i < len(p.active) {
		fw := p.active[i]
		if !fw.Done() {
			i++
			continue
		}
		// Swap-remove
		last := len(p.active) - 1
		p.active[i] = p.active[last]
		p.active[last] = nil
		p.active = p.active[:last]

		p.free = append(p.free, fw)
		p.stats.Finished++
		if respawn {
			p.Schedule(p.cfg.RespawnDelay.Sample(p.rng))
		}
	}
}
