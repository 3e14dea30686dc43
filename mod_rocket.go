package skyshow

import (
	"github.com/gekko3d/skyshow/particlert/rt/core"
	"github.com/gekko3d/skyshow/particlert/rt/emitter"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	StateIdle State = iota
	StateLaunching
	StateCoasting
	StateShutdown
)

type RocketConfig struct {
	Start mgl32.Vec3 `json:"start"`
	// Acceleration is the climb rate gained per second while the engine burns.
	Acceleration float32 `json:"acceleration"`
	MaxSpeed     float32 `json:"max_speed"`
	// Ceiling is the altitude at which the engine cuts out.
	Ceiling      float32               `json:"ceiling"`
	NozzleOffset mgl32.Vec3            `json:"nozzle_offset"`
	Flame        emitter.ExhaustConfig `json:"flame"`
	Smoke        emitter.ExhaustConfig `json:"smoke"`
}

func DefaultRocketConfig() RocketConfig {
	return RocketConfig{
		Start:        mgl32.Vec3{0, 10, 0},
		Acceleration: 15,
		MaxSpeed:     200,
		Ceiling:      3000,
		NozzleOffset: mgl32.Vec3{0, -7.5, 0},
		Flame:        emitter.DefaultFlameConfig(),
		Smoke:        emitter.DefaultSmokeConfig(),
	}
}

func (c RocketConfig) Validate() error {
	if c.Acceleration <= 0 || c.MaxSpeed <= 0 {
		return invalidf("rocket acceleration %f and max speed %f must be positive", c.Acceleration, c.MaxSpeed)
	}
	if c.Ceiling <= c.Start.Y() {
		return invalidf("rocket ceiling %f is below its start %f", c.Ceiling, c.Start.Y())
	}
	if err := c.Flame.Validate(); err != nil {
		return err
	}
	return c.Smoke.Validate()
}

// LaunchSignal is the external trigger for the rocket. Triggering twice is
// the same as triggering once.
type LaunchSignal struct {
	triggered bool
}

func (s *LaunchSignal) Trigger()        { s.triggered = true }
func (s *LaunchSignal) Triggered() bool { return s.triggered }

// RocketComponent marks the rocket body entity.
type RocketComponent struct {
	Rocket *Rocket
}

// ExhaustComponent is a trail entity; its transform follows its Parent.
type ExhaustComponent struct {
	Trail *emitter.ExhaustTrail
}

type Rocket struct {
	Transform *core.Transform
	Speed     float32
	Flame     *emitter.ExhaustTrail
	Smoke     *emitter.ExhaustTrail
	Entity    EntityId

	cfg RocketConfig
	log Logger
}

func (r *Rocket) Altitude() float32 { return r.Transform.Position.Y() }

func (r *Rocket) setBurning(on bool) {
	r.Flame.SetVisible(on)
	r.Smoke.SetVisible(on)
}

// RocketModule needs a stateful app spanning StateIdle..StateCoasting and the
// HierarchyModule to carry the trails along.
type RocketModule struct {
	Config RocketConfig
}

func (m RocketModule) Validate() error { return m.Config.Validate() }

func (m RocketModule) Install(app *App, cmd *Commands) {
	flame, err := emitter.NewExhaustTrail(m.Config.Flame)
	if err != nil {
		panic(err)
	}
	smoke, err := emitter.NewExhaustTrail(m.Config.Smoke)
	if err != nil {
		panic(err)
	}

	tr := core.NewTransform()
	tr.Position = m.Config.Start
	rocket := &Rocket{
		Transform: tr,
		Flame:     flame,
		Smoke:     smoke,
		cfg:       m.Config,
		log:       app.Logger().Named("rocket"),
	}
	rocket.Entity = cmd.AddEntity(RocketComponent{Rocket: rocket}, TransformComponent{Transform: tr})
	for _, trail := range []struct {
		name  string
		trail *emitter.ExhaustTrail
	}{{"rocket/flame", flame}, {"rocket/smoke", smoke}} {
		cmd.AddEntity(
			ExhaustComponent{Trail: trail.trail},
			CloudComponent{Name: trail.name, Buffer: trail.trail.Buffer(), Hidden: true},
			TransformComponent{Transform: trail.trail.Transform()},
			LocalAt(m.Config.NozzleOffset),
			Parent{Entity: rocket.Entity},
		)
	}

	cmd.AddResources(&LaunchSignal{}, rocket)

	app.UseSystem(System(launchTriggerSystem).InStage(PreUpdate).InState(OnExecute(StateIdle)))
	app.UseSystem(System(ignitionSystem).InStage(Update).InState(OnEnter(StateLaunching)))
	app.UseSystem(System(ascentSystem).InStage(Update).InState(OnExecute(StateLaunching)))
	app.UseSystem(System(burnoutSystem).InStage(Update).InState(OnExit(StateLaunching)))
	app.UseSystem(System(exhaustSystem).InStage(Update).RunAlways())
}

func launchTriggerSystem(signal *LaunchSignal, cmd *Commands) {
	if signal.Triggered() {
		cmd.ChangeState(StateLaunching)
	}
}

func ignitionSystem(rocket *Rocket) {
	rocket.setBurning(true)
	rocket.log.Infof("ignition at %v", rocket.Transform.Position)
}

func ascentSystem(t *Time, rocket *Rocket, cmd *Commands) {
	dt := t.DtSeconds()
	if dt <= 0 {
		return
	}

	rocket.Speed = min(rocket.Speed+rocket.cfg.Acceleration*dt, rocket.cfg.MaxSpeed)
	rocket.Transform.Position = rocket.Transform.Position.Add(mgl32.Vec3{0, rocket.Speed * dt, 0})
	rocket.Transform.Dirty = true

	if rocket.Altitude() >= rocket.cfg.Ceiling {
		cmd.ChangeState(StateCoasting)
	}
}

func burnoutSystem(rocket *Rocket) {
	rocket.setBurning(false)
	rocket.log.Infof("burnout at altitude %.0f", rocket.Altitude())
}

// exhaustSystem steps every trail entity and shows only the burning ones.
func exhaustSystem(t *Time, cmd *Commands) {
	dt := t.DtSeconds()
	MakeQuery2[ExhaustComponent, CloudComponent](cmd).Map(func(eid EntityId, ex *ExhaustComponent, cloud *CloudComponent) bool {
		ex.Trail.Update(dt)
		cloud.Hidden = !ex.Trail.Visible()
		return true
	})
}
