package starfield

import (
	"math"
	"math/rand"

	"github.com/gekko3d/skyshow/particlert/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

// Region selects part of the image as ratios of its width and height.
type Region struct {
	StartX, EndX float64
	StartY, EndY float64
}

func FullRegion() Region { return Region{StartX: 0, EndX: 1, StartY: 0, EndY: 1} }

func (r Region) center() core.AngularCenter {
	return core.AngularCenter{
		Azimuth: (r.StartX + r.EndX) / 2 * core.TwoPi,
		Polar:   (r.StartY + r.EndY) / 2 * math.Pi,
	}
}

// TierStyle shapes the stars of one tier.
type TierStyle struct {
	// ColorScale multiplies the source RGB after normalizing to 0..1.
	ColorScale mgl32.Vec3
	// Size = luma/SizeDivisor + rand*SizeJitter.
	SizeDivisor float64
	SizeJitter  float64
}

func (s TierStyle) validate(name string) error {
	if s.SizeDivisor <= 0 {
		return core.Invalidf("%s size divisor %f", name, s.SizeDivisor)
	}
	if s.SizeJitter < 0 {
		return core.Invalidf("%s size jitter %f", name, s.SizeJitter)
	}
	return nil
}

// AngularFade dims stars by their angular distance from Center, reaching
// zero at the spreads. Fully faded stars are dropped.
type AngularFade struct {
	Center        core.AngularCenter
	AzimuthSpread float64
	PolarSpread   float64
}

func (f AngularFade) at(az, pol float64) float64 {
	azDiff := math.Abs(az - f.Center.Azimuth)
	azDiff = math.Min(azDiff, core.TwoPi-azDiff)
	polDiff := math.Abs(pol - f.Center.Polar)
	return math.Max(0, 1-azDiff/f.AzimuthSpread) * math.Max(0, 1-polDiff/f.PolarSpread)
}

type ImageConfig struct {
	Radius float64
	// Pixels with luma at or below BrightnessThreshold are dropped.
	BrightnessThreshold float64
	// Stars with luma above BrightThreshold go to the Bright tier.
	BrightThreshold float64
	Stride          int
	// Jitter is the full width of the per-axis positional noise.
	Jitter float64
	Region Region
	// Recenter, when set, moves the region's own angular center here.
	Recenter *core.AngularCenter
	// Faint stars are the diffuse glow: dimmer, cooler and larger.
	Faint TierStyle
	// Bright stars are resolved points: full colour and small.
	Bright TierStyle
	Fade   *AngularFade
}

// DefaultImageConfig is the galaxy overlay of the scene: the middle half of
// the photo wrapped onto the sky around azimuth 7pi/4 on the horizon.
func DefaultImageConfig() ImageConfig {
	return ImageConfig{
		Radius:              1900,
		BrightnessThreshold: 120,
		BrightThreshold:     200,
		Stride:              3,
		Jitter:              15,
		Region:              Region{StartX: 0.25, EndX: 0.75, StartY: 0.25, EndY: 0.75},
		Recenter:            &core.AngularCenter{Azimuth: 7 * math.Pi / 4, Polar: math.Pi / 2},
		Faint: TierStyle{
			ColorScale:  mgl32.Vec3{0.6, 0.6, 0.7},
			SizeDivisor: 50,
			SizeJitter:  2,
		},
		Bright: TierStyle{
			ColorScale:  mgl32.Vec3{1, 1, 1},
			SizeDivisor: 200,
			SizeJitter:  0.5,
		},
	}
}

func (c ImageConfig) Validate() error {
	if c.Radius <= 0 {
		return core.Invalidf("star field radius %f", c.Radius)
	}
	if c.Stride < 1 {
		return core.Invalidf("subsample stride %d", c.Stride)
	}
	if c.BrightnessThreshold < 0 || c.BrightnessThreshold > 255 {
		return core.Invalidf("brightness threshold %f outside 0..255", c.BrightnessThreshold)
	}
	if c.BrightThreshold < c.BrightnessThreshold {
		return core.Invalidf("bright tier threshold %f below brightness threshold %f", c.BrightThreshold, c.BrightnessThreshold)
	}
	if c.Jitter < 0 {
		return core.Invalidf("jitter %f", c.Jitter)
	}
	if err := c.Faint.validate("faint"); err != nil {
		return err
	}
	if err := c.Bright.validate("bright"); err != nil {
		return err
	}
	if c.Fade != nil && (c.Fade.AzimuthSpread <= 0 || c.Fade.PolarSpread <= 0) {
		return core.Invalidf("fade spreads %f, %f", c.Fade.AzimuthSpread, c.Fade.PolarSpread)
	}
	r := c.Region
	if r.StartX < 0 || r.EndX > 1 || r.StartY < 0 || r.EndY > 1 || r.StartX > r.EndX || r.StartY > r.EndY {
		return core.Invalidf("region %+v", r)
	}
	return nil
}

// StarRecord is one star taken from one source pixel.
type StarRecord struct {
	Brightness float32
	Tier       Tier
	Azimuth    float64
	Polar      float64
	Position   mgl32.Vec3
	Color      mgl32.Vec3
	Size       float32
}

// Luma is the weighted brightness of an 8-bit RGB triple.
func Luma(r, g, b uint8) float64 {
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}

// BuildFromPixels turns every bright enough pixel of the region into a star.
// An image without qualifying pixels yields an empty field, not an error.
func BuildFromPixels(px Pixels, cfg ImageConfig, rng *rand.Rand) (*StarField, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if err := px.validate(); err != nil {
		return nil, err
	}

	w, h := float64(px.Width), float64(px.Height)
	from := cfg.Region.center()

	var records []StarRecord
	var bright int
	for y := int(math.Floor(h * cfg.Region.StartY)); float64(y) < h*cfg.Region.EndY; y += cfg.Stride {
		for x := int(math.Floor(w * cfg.Region.StartX)); float64(x) < w*cfg.Region.EndX; x += cfg.Stride {
			r, g, b := px.RGB(x, y)
			luma := Luma(r, g, b)
			if luma <= cfg.BrightnessThreshold {
				continue
			}

			az := float64(x) / w * core.TwoPi
			pol := float64(y) / h * math.Pi
			if cfg.Recenter != nil {
				az, pol = core.Recenter(az, pol, from, *cfg.Recenter)
			} else {
				az, pol = core.WrapAngles(az, pol)
			}

			fade := 1.0
			if cfg.Fade != nil {
				if fade = cfg.Fade.at(az, pol); fade <= 0 {
					continue
				}
			}

			pos := core.Project(cfg.Radius, az, pol).Add(mgl32.Vec3{
				float32((rng.Float64() - 0.5) * cfg.Jitter),
				float32((rng.Float64() - 0.5) * cfg.Jitter),
				float32((rng.Float64() - 0.5) * cfg.Jitter),
			})

			tier, style := Faint, cfg.Faint
			if luma > cfg.BrightThreshold {
				tier, style = Bright, cfg.Bright
				bright++
			}
			scale := style.ColorScale.Mul(float32(fade) / 255)
			rec := StarRecord{
				Brightness: float32(luma),
				Tier:       tier,
				Azimuth:    az,
				Polar:      pol,
				Position:   pos,
				Color:      mgl32.Vec3{float32(r) * scale.X(), float32(g) * scale.Y(), float32(b) * scale.Z()},
				Size:       float32(luma/style.SizeDivisor + rng.Float64()*style.SizeJitter),
			}
			records = append(records, rec)
		}
	}

	field := &StarField{Records: records, Transform: core.NewTransform()}
	var err error
	if field.Faint, err = core.NewParticleBuffer(len(records)-bright, false); err != nil {
		return nil, err
	}
	if field.Bright, err = core.NewParticleBuffer(bright, false); err != nil {
		return nil, err
	}

	var fi, bi int
	for _, rec := range records {
		p := core.Particle{Position: rec.Position, Color: rec.Color, Size: rec.Size, Opacity: 1}
		if rec.Tier == Bright {
			field.Bright.Reset(bi, p)
			bi++
		} else {
			field.Faint.Reset(fi, p)
			fi++
		}
	}
	return field, nil
}
