package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Transform is a whole-object placement shared by every point of a cloud.
// Star fields rotate through it; exhaust trails follow their parent through it.
type Transform struct {
	Position mgl32.Vec3
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	Dirty    bool
}

func NewTransform() *Transform {
	return &Transform{
		Position: mgl32.Vec3{0, 0, 0},
		Rotation: mgl32.QuatIdent(),
		Scale:    mgl32.Vec3{1, 1, 1},
		Dirty:    true,
	}
}

func (t *Transform) ObjectToWorld() mgl32.Mat4 {
	// M = T * R * S
	translate := mgl32.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z())
	rotate := t.Rotation.Mat4()
	scale := mgl32.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z())

	return translate.Mul4(rotate).Mul4(scale)
}

// Rotate appends a rotation of angle radians about axis, in object space.
func (t *Transform) Rotate(angle float32, axis mgl32.Vec3) {
	t.Rotation = t.Rotation.Mul(mgl32.QuatRotate(angle, axis)).Normalize()
	t.Dirty = true
}

// Point maps a local point to world space without building a matrix.
func (t *Transform) Point(local mgl32.Vec3) mgl32.Vec3 {
	scaled := mgl32.Vec3{
		local.X() * t.Scale.X(),
		local.Y() * t.Scale.Y(),
		local.Z() * t.Scale.Z(),
	}
	return t.Position.Add(t.Rotation.Rotate(scaled))
}
