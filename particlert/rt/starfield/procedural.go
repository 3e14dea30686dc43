package starfield

import (
	"math"
	"math/rand"

	"github.com/gekko3d/skyshow/particlert/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

type ProceduralConfig struct {
	Count  int
	Radius float64
	// RadiusJitter is the full relative spread of each star's radius, for depth.
	RadiusJitter float64
	Intensity    core.Range
	Tint         mgl32.Vec3
	Size         core.Range
	// AreaCorrected draws polar angles with cos-weighting so stars do not
	// bunch up at the poles. Off by default to match the look of the sky.
	AreaCorrected bool
}

func DefaultProceduralConfig() ProceduralConfig {
	return ProceduralConfig{
		Count:        10000,
		Radius:       1900,
		RadiusJitter: 0.02,
		Intensity:    core.Range{Min: 0.3, Max: 0.8},
		Tint:         mgl32.Vec3{1, 1, 0.9},
		Size:         core.Range{Min: 0.5, Max: 2.0},
	}
}

func (c ProceduralConfig) Validate() error {
	if c.Count <= 0 {
		return core.Invalidf("background star count %d", c.Count)
	}
	if c.Radius <= 0 {
		return core.Invalidf("background radius %f", c.Radius)
	}
	if c.RadiusJitter < 0 || c.RadiusJitter >= 2 {
		return core.Invalidf("radius jitter %f", c.RadiusJitter)
	}
	if !c.Intensity.Valid() || !c.Size.Valid() {
		return core.Invalidf("intensity %+v or size %+v range inverted", c.Intensity, c.Size)
	}
	return nil
}

// BuildProcedural scatters Count stars over the whole sphere.
func BuildProcedural(cfg ProceduralConfig, rng *rand.Rand) (*StarField, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	buf, err := core.NewParticleBuffer(cfg.Count, false)
	if err != nil {
		return nil, err
	}

	records := make([]StarRecord, 0, cfg.Count)
	buf.Update(func(i int) {
		var polar float64
		if cfg.AreaCorrected {
			polar = math.Acos(1 - 2*rng.Float64())
		} else {
			polar = rng.Float64() * math.Pi
		}
		azimuth := rng.Float64() * core.TwoPi
		r := cfg.Radius * (1 + (rng.Float64()-0.5)*cfg.RadiusJitter)

		intensity := cfg.Intensity.Sample(rng)
		rec := StarRecord{
			Brightness: intensity * 255,
			Tier:       Faint,
			Azimuth:    azimuth,
			Polar:      polar,
			Position:   core.Project(r, azimuth, polar),
			Color:      cfg.Tint.Mul(intensity),
			Size:       cfg.Size.Sample(rng),
		}
		records = append(records, rec)
		buf.Reset(i, core.Particle{Position: rec.Position, Color: rec.Color, Size: rec.Size, Opacity: 1})
	})

	return &StarField{
		Faint:     buf,
		Bright:    core.EmptyParticleBuffer(),
		Records:   records,
		Transform: core.NewTransform(),
	}, nil
}
