package skyshow

import (
	"fmt"

	"github.com/gekko3d/skyshow/particlert/rt/emitter"
)

// SceneConfig defines every numeric knob of a scene.
type SceneConfig struct {
	Time      TimeConfig         `json:"time"`
	Sky       SkyConfig          `json:"sky"`
	Fireworks emitter.PoolConfig `json:"fireworks"`
	Rocket    RocketConfig       `json:"rocket"`
}

func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Time:      DefaultTimeConfig(),
		Sky:       DefaultSkyConfig(),
		Fireworks: emitter.DefaultPoolConfig(),
		Rocket:    DefaultRocketConfig(),
	}
}

func (c SceneConfig) Validate() error {
	if err := c.Time.Validate(); err != nil {
		return fmt.Errorf("time: %w", err)
	}
	if err := c.Sky.Validate(); err != nil {
		return fmt.Errorf("sky: %w", err)
	}
	if err := c.Fireworks.Validate(); err != nil {
		return fmt.Errorf("fireworks: %w", err)
	}
	if err := c.Rocket.Validate(); err != nil {
		return fmt.Errorf("rocket: %w", err)
	}
	return nil
}

// SceneOptions are the collaborators a scene runs against.
type SceneOptions struct {
	Config  SceneConfig
	Surface RenderSurface
	// Clock defaults to a SystemClock.
	Clock Clock
	// Image is the galaxy decode. When nil and ImagePath is set, the file is
	// loaded in the background; with neither the galaxy stays empty.
	Image     *ImageFuture
	ImagePath string
	Logger    *DefaultLogger
}

// NewScene assembles the night-sky scene: stars, fireworks and the rocket,
// rendered into opts.Surface once per Tick. It starts in StateIdle and
// finishes when something moves it to StateShutdown.
func NewScene(opts SceneOptions) (*App, error) {
	logging := LoggingModule{Prefix: "skyshow", Logger: opts.Logger}

	image := opts.Image
	if image == nil && opts.ImagePath != "" {
		if err := opts.Config.Validate(); err != nil {
			return nil, err
		}
		image = LoadImageAsync(opts.ImagePath, opts.Config.Sky.MaxImageDim)
	}

	return NewAppBuilder().
		UseStates(StateIdle, StateShutdown).
		UseModule(
			logging,
			TimeModule{Config: opts.Config.Time, Clock: opts.Clock},
			SkyModule{Config: opts.Config.Sky, Image: image},
			FireworksModule{Config: opts.Config.Fireworks},
			RocketModule{Config: opts.Config.Rocket},
			HierarchyModule{},
			RenderModule{Surface: opts.Surface},
		).
		Build()
}

// Launch fires the scene's launch signal. It reports false when the app has
// no rocket.
func Launch(app *App) bool {
	signal := Resource[LaunchSignal](app)
	if signal == nil {
		return false
	}
	signal.Trigger()
	return true
}
