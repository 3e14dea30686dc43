package starfield

import (
	"github.com/gekko3d/skyshow/particlert/rt/core"
)

type Tier int

const (
	Faint Tier = iota
	Bright
)

func (t Tier) String() string {
	switch t {
	case Faint:
		return "faint"
	case Bright:
		return "bright"
	default:
		return "unknown"
	}
}

// StarField holds the buffers of one built field, one per tier. Buffers are
// immutable once built; the field turns as a whole through Transform.
type StarField struct {
	Faint     *core.ParticleBuffer
	Bright    *core.ParticleBuffer
	Records   []StarRecord
	Transform *core.Transform
}

// EmptyStarField is what callers hold until an image field is ready.
func EmptyStarField() *StarField {
	return &StarField{
		Faint:     core.EmptyParticleBuffer(),
		Bright:    core.EmptyParticleBuffer(),
		Transform: core.NewTransform(),
	}
}

func (f *StarField) Len() int { return f.Faint.Len() + f.Bright.Len() }

// Tier returns the buffer for t.
func (f *StarField) Tier(t Tier) *core.ParticleBuffer {
	if t == Bright {
		return f.Bright
	}
	return f.Faint
}
