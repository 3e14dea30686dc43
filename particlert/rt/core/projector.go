package core

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const (
	TwoPi = 2 * math.Pi
)

// AngularCenter is a point on the sphere in (azimuth, polar) radians.
type AngularCenter struct {
	Azimuth float64
	Polar   float64
}

// Project maps spherical angles to a point on a sphere of radius r.
// Polar is measured from +Y (0) to -Y (pi).
func Project(r, azimuth, polar float64) mgl32.Vec3 {
	sinP, cosP := math.Sincos(polar)
	sinA, cosA := math.Sincos(azimuth)
	return mgl32.Vec3{
		float32(r * sinP * cosA),
		float32(r * cosP),
		float32(r * sinP * sinA),
	}
}

// WrapAngles folds any (azimuth, polar) pair into azimuth in [0, 2pi) and
// polar in [0, pi]. A polar angle past a pole is reflected back and the
// azimuth turned half way round, which names the same point on the sphere.
func WrapAngles(azimuth, polar float64) (float64, float64) {
	polar = math.Mod(polar, TwoPi)
	if polar < 0 {
		polar += TwoPi
	}
	if polar > math.Pi {
		polar = TwoPi - polar
		azimuth += math.Pi
	}

	azimuth = math.Mod(azimuth, TwoPi)
	if azimuth < 0 {
		azimuth += TwoPi
	}
	// Mod of a tiny negative value plus 2pi can round up to exactly 2pi.
	if azimuth >= TwoPi {
		azimuth = 0
	}
	return azimuth, polar
}

// Recenter moves a point that belongs to a patch centered at from so that the
// patch ends up centered at to. The result is wrapped.
func Recenter(azimuth, polar float64, from, to AngularCenter) (float64, float64) {
	return WrapAngles(
		azimuth-from.Azimuth+to.Azimuth,
		polar-from.Polar+to.Polar,
	)
}
