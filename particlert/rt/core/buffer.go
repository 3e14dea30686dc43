package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ParticleInstance is the packed per-point layout handed to the GPU.
// struct ParticleInstance { vec3 pos; float size; vec4 color; }
type ParticleInstance struct {
	Pos   [3]float32
	Size  float32
	Color [4]float32
}

// Particle is one row of a ParticleBuffer, used as a template for Reset.
type Particle struct {
	Position mgl32.Vec3
	Velocity mgl32.Vec3
	Color    mgl32.Vec3
	Size     float32
	Opacity  float32
}

// ParticleBuffer is a fixed-capacity SoA store. Every attribute slice has the
// same length, set at construction and never changed.
// Velocity is nil for buffers that are not integrated (star fields).
type ParticleBuffer struct {
	Position []mgl32.Vec3
	Velocity []mgl32.Vec3
	Color    []mgl32.Vec3
	Size     []float32
	Opacity  []float32

	capacity int
	dirty    bool
}

func NewParticleBuffer(capacity int, withVelocity bool) (*ParticleBuffer, error) {
	if capacity < 0 {
		return nil, Invalidf("particle buffer capacity %d", capacity)
	}
	b := &ParticleBuffer{
		Position: make([]mgl32.Vec3, capacity),
		Color:    make([]mgl32.Vec3, capacity),
		Size:     make([]float32, capacity),
		Opacity:  make([]float32, capacity),
		capacity: capacity,
		dirty:    true,
	}
	if withVelocity {
		b.Velocity = make([]mgl32.Vec3, capacity)
	}
	return b, nil
}

// EmptyParticleBuffer is the "not ready yet" buffer: zero particles, never nil.
func EmptyParticleBuffer() *ParticleBuffer {
	b, _ := NewParticleBuffer(0, false)
	return b
}

func (b *ParticleBuffer) Len() int { return b.capacity }

func (b *ParticleBuffer) HasVelocity() bool { return b.Velocity != nil }

// Dirty reports whether the buffer changed since the renderer last uploaded it.
func (b *ParticleBuffer) Dirty() bool { return b.dirty }

func (b *ParticleBuffer) ClearDirty() { b.dirty = false }

func (b *ParticleBuffer) MarkDirty() { b.dirty = true }

// Update applies fn to every slot in index order and marks the buffer dirty.
func (b *ParticleBuffer) Update(fn func(i int)) {
	for i := 0; i < b.capacity; i++ {
		fn(i)
	}
	b.dirty = true
}

// Reset rewrites slot i from a template. Used for recycling.
func (b *ParticleBuffer) Reset(i int, p Particle) {
	b.Position[i] = p.Position
	if b.Velocity != nil {
		b.Velocity[i] = p.Velocity
	}
	b.Color[i] = p.Color
	b.Size[i] = p.Size
	b.Opacity[i] = p.Opacity
	b.dirty = true
}

// At returns a copy of slot i.
func (b *ParticleBuffer) At(i int) Particle {
	p := Particle{
		Position: b.Position[i],
		Color:    b.Color[i],
		Size:     b.Size[i],
		Opacity:  b.Opacity[i],
	}
	if b.Velocity != nil {
		p.Velocity = b.Velocity[i]
	}
	return p
}

// Fill resets every slot to the same template.
func (b *ParticleBuffer) Fill(p Particle) {
	for i := 0; i < b.capacity; i++ {
		b.Reset(i, p)
	}
}

// SetOpacity writes one opacity to every slot.
func (b *ParticleBuffer) SetOpacity(a float32) {
	for i := range b.Opacity {
		b.Opacity[i] = a
	}
	b.dirty = true
}

// AppendInstances packs the buffer into dst in world space. A nil transform
// means the buffer is already in world space. Fully transparent points are
// skipped.
func (b *ParticleBuffer) AppendInstances(dst []ParticleInstance, tr *Transform) []ParticleInstance {
	var m mgl32.Mat4
	if tr != nil {
		m = tr.ObjectToWorld()
	}
	for i := 0; i < b.capacity; i++ {
		a := b.Opacity[i]
		if a <= 0 {
			continue
		}
		p := b.Position[i]
		if tr != nil {
			p = mgl32.TransformCoordinate(p, m)
		}
		c := b.Color[i]
		dst = append(dst, ParticleInstance{
			Pos:   [3]float32{p.X(), p.Y(), p.Z()},
			Size:  b.Size[i],
			Color: [4]float32{c.X(), c.Y(), c.Z(), a},
		})
	}
	return dst
}
