package core

import (
	"errors"
	"slices"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertLengths(t *testing.T, b *ParticleBuffer, want int) {
	t.Helper()
	assert.Len(t, b.Position, want)
	assert.Len(t, b.Color, want)
	assert.Len(t, b.Size, want)
	assert.Len(t, b.Opacity, want)
	if b.HasVelocity() {
		assert.Len(t, b.Velocity, want)
	}
	assert.Equal(t, want, b.Len())
}

func TestNewParticleBuffer(t *testing.T) {
	b, err := NewParticleBuffer(16, true)
	require.NoError(t, err)
	assertLengths(t, b, 16)
	assert.True(t, b.HasVelocity())
	assert.True(t, b.Dirty())

	noVel, err := NewParticleBuffer(4, false)
	require.NoError(t, err)
	assert.False(t, noVel.HasVelocity())

	_, err = NewParticleBuffer(-1, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidConfiguration))

	empty := EmptyParticleBuffer()
	require.NotNil(t, empty)
	assertLengths(t, empty, 0)
}

func TestUpdatePreservesCapacity(t *testing.T) {
	b, err := NewParticleBuffer(32, true)
	require.NoError(t, err)
	b.ClearDirty()

	for frame := 0; frame < 10; frame++ {
		b.Update(func(i int) {
			b.Velocity[i] = mgl32.Vec3{0, 1, 0}
			b.Position[i] = b.Position[i].Add(b.Velocity[i])
			b.Opacity[i] = 1
		})
		assertLengths(t, b, 32)
	}
	assert.True(t, b.Dirty())
	assert.InDelta(t, 10, b.Position[31].Y(), 1e-6)
}

func TestPackingLeavesContents(t *testing.T) {
	b, err := NewParticleBuffer(4, true)
	require.NoError(t, err)
	for i := 0; i < b.Len(); i++ {
		b.Reset(i, Particle{
			Position: mgl32.Vec3{float32(i), 2, 3},
			Velocity: mgl32.Vec3{0, float32(i), 0},
			Color:    mgl32.Vec3{0.1, 0.2, float32(i) / 4},
			Size:     float32(i + 1),
			Opacity:  float32(i) / 3,
		})
	}
	position := slices.Clone(b.Position)
	velocity := slices.Clone(b.Velocity)
	color := slices.Clone(b.Color)
	size := slices.Clone(b.Size)
	opacity := slices.Clone(b.Opacity)

	other, err := NewParticleBuffer(4, true)
	require.NoError(t, err)
	other.Update(func(i int) { other.Position[i] = other.Position[i].Add(mgl32.Vec3{1, 1, 1}) })

	tr := NewTransform()
	tr.Position = mgl32.Vec3{10, 0, 0}
	tr.Rotate(0.5, mgl32.Vec3{0, 1, 0})
	inst := b.AppendInstances(nil, tr)
	require.Len(t, inst, 3, "the transparent slot is skipped")
	b.ClearDirty()

	assert.Equal(t, position, b.Position)
	assert.Equal(t, velocity, b.Velocity)
	assert.Equal(t, color, b.Color)
	assert.Equal(t, size, b.Size)
	assert.Equal(t, opacity, b.Opacity)
	assert.False(t, b.Dirty())
}

func TestResetRewritesSlot(t *testing.T) {
	b, err := NewParticleBuffer(2, true)
	require.NoError(t, err)
	b.ClearDirty()

	tpl := Particle{
		Position: mgl32.Vec3{1, 2, 3},
		Velocity: mgl32.Vec3{0, -1, 0},
		Color:    mgl32.Vec3{1, 0.5, 0},
		Size:     3,
		Opacity:  1,
	}
	b.Reset(1, tpl)

	assert.True(t, b.Dirty())
	assert.Equal(t, tpl, b.At(1))
	assert.Equal(t, Particle{}, b.At(0))
}

func TestAppendInstancesSkipsInvisible(t *testing.T) {
	b, err := NewParticleBuffer(3, false)
	require.NoError(t, err)
	b.Fill(Particle{Position: mgl32.Vec3{1, 0, 0}, Color: mgl32.Vec3{1, 1, 1}, Size: 2, Opacity: 1})
	b.Opacity[1] = 0

	tr := NewTransform()
	tr.Position = mgl32.Vec3{0, 10, 0}

	out := b.AppendInstances(nil, tr)
	require.Len(t, out, 2)
	assert.InDelta(t, 1, out[0].Pos[0], 1e-6)
	assert.InDelta(t, 10, out[0].Pos[1], 1e-6)
	assert.Equal(t, float32(2), out[0].Size)
	assert.Equal(t, float32(1), out[0].Color[3])

	raw := b.AppendInstances(nil, nil)
	assert.InDelta(t, 0, raw[0].Pos[1], 1e-6)
}

func TestRangeSample(t *testing.T) {
	rng := NewRand(3)
	r := Range{Min: 2, Max: 5}
	for i := 0; i < 100; i++ {
		v := r.Sample(rng)
		if v < 2 || v > 5 {
			t.Fatalf("sample %f outside [2, 5]", v)
		}
	}
	assert.True(t, r.Valid())
	assert.False(t, Range{Min: 1, Max: 0}.Valid())
}
