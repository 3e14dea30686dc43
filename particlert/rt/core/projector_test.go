package core

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestProjectPoles(t *testing.T) {
	north := Project(10, 1.234, 0)
	assert.InDelta(t, 0, north.X(), 1e-5)
	assert.InDelta(t, 10, north.Y(), 1e-5)
	assert.InDelta(t, 0, north.Z(), 1e-5)

	south := Project(10, 0, math.Pi)
	assert.InDelta(t, -10, south.Y(), 1e-5)

	equator := Project(5, math.Pi/2, math.Pi/2)
	assert.InDelta(t, 0, equator.X(), 1e-5)
	assert.InDelta(t, 0, equator.Y(), 1e-5)
	assert.InDelta(t, 5, equator.Z(), 1e-5)
}

func TestProjectKeepsRadius(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 1000; i++ {
		az := rng.Float64() * TwoPi
		pol := rng.Float64() * math.Pi
		p := Project(1900, az, pol)
		assert.InDelta(t, 1900, p.Len(), 0.05)
	}
}

func TestWrapAnglesRanges(t *testing.T) {
	cases := []struct {
		az, pol float64
	}{
		{-0.1, 0.5},
		{TwoPi, 0.5},
		{7 * TwoPi, -0.3},
		{1, math.Pi + 0.4},
		{-5, -4},
		{0, 3 * math.Pi},
		{-1e-18, 1},
	}
	for _, c := range cases {
		az, pol := WrapAngles(c.az, c.pol)
		if az < 0 || az >= TwoPi {
			t.Errorf("azimuth %f out of range for input (%f, %f)", az, c.az, c.pol)
		}
		if pol < 0 || pol > math.Pi {
			t.Errorf("polar %f out of range for input (%f, %f)", pol, c.az, c.pol)
		}
		// Wrapping never moves the point on the sphere.
		want := Project(1, c.az, c.pol)
		got := Project(1, az, pol)
		assert.Less(t, want.Sub(got).Len(), float32(1e-5), "point moved: %v -> %v", want, got)
	}
}

func TestRecenterMovesPatchCenter(t *testing.T) {
	from := AngularCenter{Azimuth: math.Pi, Polar: math.Pi / 2}
	to := AngularCenter{Azimuth: 7 * math.Pi / 4, Polar: math.Pi / 2}

	az, pol := Recenter(from.Azimuth, from.Polar, from, to)
	assert.InDelta(t, to.Azimuth, az, 1e-9)
	assert.InDelta(t, to.Polar, pol, 1e-9)

	// Offsets relative to the center are preserved.
	az, pol = Recenter(from.Azimuth+0.2, from.Polar-0.1, from, to)
	assert.InDelta(t, to.Azimuth+0.2, az, 1e-9)
	assert.InDelta(t, to.Polar-0.1, pol, 1e-9)

	// Moving past 2pi wraps.
	az, _ = Recenter(from.Azimuth+1.0, from.Polar, from, to)
	assert.InDelta(t, 7*math.Pi/4+1.0-TwoPi, az, 1e-9)
}

func TestTransformPointMatchesMatrix(t *testing.T) {
	tr := NewTransform()
	tr.Position = mgl32.Vec3{1, 2, 3}
	tr.Rotate(math.Pi/2, mgl32.Vec3{0, 1, 0})

	local := mgl32.Vec3{1, 0, 0}
	viaMatrix := mgl32.TransformCoordinate(local, tr.ObjectToWorld())
	direct := tr.Point(local)

	if viaMatrix.Sub(direct).Len() > 1e-5 {
		t.Errorf("matrix %v and direct %v disagree", viaMatrix, direct)
	}
	// +X rotated 90 degrees about +Y lands on -Z.
	assert.InDelta(t, 1, direct.X(), 1e-5)
	assert.InDelta(t, 2, direct.Y(), 1e-5)
	assert.InDelta(t, 2, direct.Z(), 1e-5)
}
