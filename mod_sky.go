package skyshow

import (
	"math"
	"math/rand"

	"github.com/gekko3d/skyshow/particlert/rt/core"
	"github.com/gekko3d/skyshow/particlert/rt/starfield"

	"github.com/go-gl/mathgl/mgl32"
)

type SkyConfig struct {
	Background starfield.ProceduralConfig `json:"background"`
	Galaxy     starfield.ImageConfig      `json:"galaxy"`
	// RotationSpeed is the spin of the whole sky about +Y, radians per second.
	RotationSpeed float32 `json:"rotation_speed"`
	// GalaxyTilt rolls the image field about +Z before it spins.
	GalaxyTilt  float32 `json:"galaxy_tilt"`
	MaxImageDim int     `json:"max_image_dim"`
	Seed        int64   `json:"seed"`
}

func DefaultSkyConfig() SkyConfig {
	return SkyConfig{
		Background:    starfield.DefaultProceduralConfig(),
		Galaxy:        starfield.DefaultImageConfig(),
		RotationSpeed: -0.006,
		GalaxyTilt:    math.Pi / 12,
		MaxImageDim:   2048,
	}
}

func (c SkyConfig) Validate() error {
	if err := c.Background.Validate(); err != nil {
		return err
	}
	if err := c.Galaxy.Validate(); err != nil {
		return err
	}
	if c.MaxImageDim < 0 {
		return invalidf("max image dimension %d", c.MaxImageDim)
	}
	return nil
}

// StarTierComponent is one tier buffer of a star field. Tilt rolls the field
// about +Z before the sky spin is applied.
type StarTierComponent struct {
	Field string
	Tier  starfield.Tier
	Tilt  float32
}

// Sky is the star resource: a procedural background plus the image field,
// which stays empty until its decode resolves. Each tier with stars is an
// entity; the galaxy entities are reserved up front and filled in later.
type Sky struct {
	Background *starfield.StarField
	Galaxy     *starfield.StarField

	cfg      SkyConfig
	rng      *rand.Rand
	log      Logger
	image    *ImageFuture
	status   ImageStatus
	spin     float32
	galaxies [2]EntityId
}

// ImageStatus reports where the galaxy image is in its lifecycle. Without an
// image source it stays pending forever.
func (s *Sky) ImageStatus() ImageStatus { return s.status }

// rotation is the current sky spin composed with a roll of tilt about +Z.
func (s *Sky) rotation(tilt float32) mgl32.Quat {
	spin := mgl32.QuatRotate(s.spin, mgl32.Vec3{0, 1, 0})
	if tilt == 0 {
		return spin
	}
	return spin.Mul(mgl32.QuatRotate(tilt, mgl32.Vec3{0, 0, 1})).Normalize()
}

// galaxyTiers returns the components of the two galaxy tier entities.
func (s *Sky) galaxyTiers(field *starfield.StarField) [2][]any {
	var res [2][]any
	for i, tier := range []starfield.Tier{starfield.Faint, starfield.Bright} {
		res[i] = []any{
			StarTierComponent{Field: "galaxy", Tier: tier, Tilt: s.cfg.GalaxyTilt},
			CloudComponent{Name: "sky/galaxy/" + tier.String(), Buffer: field.Tier(tier)},
			TransformComponent{Transform: field.Transform},
		}
	}
	return res
}

type SkyModule struct {
	Config SkyConfig
	// Image is the decode to build the galaxy from. Nil keeps the galaxy empty.
	Image *ImageFuture
}

func (m SkyModule) Validate() error { return m.Config.Validate() }

func (m SkyModule) Install(app *App, cmd *Commands) {
	rng := core.NewRand(m.Config.Seed)
	background, err := starfield.BuildProcedural(m.Config.Background, rng)
	if err != nil {
		panic(err)
	}

	sky := &Sky{
		Background: background,
		Galaxy:     starfield.EmptyStarField(),
		cfg:        m.Config,
		rng:        rng,
		log:        app.Logger().Named("sky"),
		image:      m.Image,
	}
	background.Transform.Rotation = sky.rotation(0)
	sky.Galaxy.Transform.Rotation = sky.rotation(m.Config.GalaxyTilt)

	cmd.AddEntity(
		StarTierComponent{Field: "background", Tier: starfield.Faint},
		CloudComponent{Name: "sky/background", Buffer: background.Faint},
		TransformComponent{Transform: background.Transform},
	)
	for i, components := range sky.galaxyTiers(sky.Galaxy) {
		sky.galaxies[i] = cmd.AddEntity(components...)
	}
	sky.log.Infof("%d background stars", background.Len())

	cmd.AddResources(sky)
	app.UseSystem(System(skyImageSystem).InStage(PreUpdate))
	app.UseSystem(System(skyRotationSystem).InStage(Update))
}

// skyImageSystem polls the decode without blocking and builds the galaxy on
// the first tick after it resolves. A failure is logged once and never retried.
func skyImageSystem(sky *Sky, cmd *Commands) {
	if sky.image == nil || sky.status != ImagePending {
		return
	}

	px, status, err := sky.image.Poll()
	switch status {
	case ImagePending:
		return
	case ImageFailed:
		sky.fail(err)
		return
	}

	galaxy, err := starfield.BuildFromPixels(px, sky.cfg.Galaxy, sky.rng)
	if err != nil {
		sky.fail(err)
		return
	}
	galaxy.Transform.Rotation = sky.rotation(sky.cfg.GalaxyTilt)
	sky.Galaxy = galaxy
	sky.status = ImageReady
	for i, components := range sky.galaxyTiers(galaxy) {
		cmd.AddComponents(sky.galaxies[i], components...)
	}
	sky.log.Infof("galaxy built from %dx%d image, %d faint and %d bright stars",
		px.Width, px.Height, galaxy.Faint.Len(), galaxy.Bright.Len())
}

func (s *Sky) fail(err error) {
	s.status = ImageFailed
	s.log.WarnOnce("galaxy/"+s.image.Source(), "galaxy image %s: %v", s.image.Source(), err)
}

// skyRotationSystem spins every star tier about +Y, keeping each one's tilt.
func skyRotationSystem(t *Time, sky *Sky, cmd *Commands) {
	dt := t.DtSeconds()
	if dt <= 0 || sky.cfg.RotationSpeed == 0 {
		return
	}
	sky.spin = float32(math.Mod(float64(sky.spin+sky.cfg.RotationSpeed*dt), 2*math.Pi))

	MakeQuery2[StarTierComponent, TransformComponent](cmd).Map(func(eid EntityId, tier *StarTierComponent, tr *TransformComponent) bool {
		tr.Transform.Rotation = sky.rotation(tier.Tilt)
		tr.Transform.Dirty = true
		return true
	})
}
