package skyshow

import (
	"github.com/gekko3d/skyshow/particlert/rt/core"

	"github.com/go-gl/mathgl/mgl32"
)

// TransformComponent places an entity's cloud in the world. The pointed-to
// transform is shared with the emitter or field that owns the buffer.
type TransformComponent struct {
	Transform *core.Transform
}

// LocalTransformComponent is a child's placement relative to its Parent.
type LocalTransformComponent struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
}

func LocalAt(position mgl32.Vec3) LocalTransformComponent {
	return LocalTransformComponent{
		Position: position,
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
	}
}

type Parent struct {
	Entity EntityId
}

// maxHierarchyDepth bounds the propagation passes per tick.
const maxHierarchyDepth = 8

type HierarchyModule struct{}

func (HierarchyModule) Install(app *App, cmd *Commands) {
	app.UseSystem(
		System(TransformHierarchySystem).
			InStage(PostUpdate).
			RunAlways(),
	)
}

// TransformHierarchySystem moves every child to its parent's world transform
// composed with its local one. Roots are whatever their owners set.
func TransformHierarchySystem(cmd *Commands) {
	for pass := 0; pass < maxHierarchyDepth; pass++ {
		changed := false
		MakeQuery3[LocalTransformComponent, Parent, TransformComponent](cmd).Map(func(eid EntityId, local *LocalTransformComponent, parent *Parent, world *TransformComponent) bool {
			pw, ok := Component[TransformComponent](cmd, parent.Entity)
			if !ok || pw.Transform == nil || world.Transform == nil {
				return true
			}
			if propagate(pw.Transform, local, world.Transform) {
				changed = true
			}
			return true
		})
		if !changed {
			return
		}
	}
}

// propagate composes parent and local into world, reporting whether world moved.
// Components are combined directly so negative scales survive.
func propagate(parent *core.Transform, local *LocalTransformComponent, world *core.Transform) bool {
	pos := parent.Point(local.Position)
	rot := parent.Rotation.Mul(local.Rotation).Normalize()
	scale := mgl32.Vec3{
		parent.Scale.X() * local.Scale.X(),
		parent.Scale.Y() * local.Scale.Y(),
		parent.Scale.Z() * local.Scale.Z(),
	}

	if pos == world.Position && rot == world.Rotation && scale == world.Scale {
		return false
	}
	world.Position = pos
	world.Rotation = rot
	world.Scale = scale
	world.Dirty = true
	return true
}
