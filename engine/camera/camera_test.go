package camera

import (
	"math"
	"testing"
)

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}

func TestOrbitClampsPolarAngle(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 10), WithTarget(0, 0, 0))

	// Wildly oversized elevation deltas must never push the camera past a pole.
	for _, delta := range []float32{100, -100, math.Pi, -math.Pi, 1e6} {
		c.Orbit(0, delta)

		p := c.Position()
		offset := [3]float32{p[0], p[1], p[2]}
		radius := float32(math.Sqrt(float64(offset[0]*offset[0] + offset[1]*offset[1] + offset[2]*offset[2])))
		phi := float32(math.Acos(float64(offset[1] / radius)))

		if phi < poleEpsilon-1e-4 || phi > math.Pi-poleEpsilon+1e-4 {
			t.Errorf("orbit(0, %v) left phi = %v outside [%v, %v]", delta, phi, poleEpsilon, math.Pi-poleEpsilon)
		}
	}
}

func TestOrbitFullAzimuthRoundTrip(t *testing.T) {
	c := NewCamera(WithPosition(3, 4, 5), WithTarget(1, 1, 1))
	start := c.Position()

	steps := 16
	for i := 0; i < steps; i++ {
		c.Orbit(2*math.Pi/float32(steps), 0)
	}

	end := c.Position()
	for i := 0; i < 3; i++ {
		if absDiff(start[i], end[i]) > 1e-3 {
			t.Fatalf("full azimuth rotation moved the camera: start %v, end %v", start, end)
		}
	}
}

func TestOrbitPreservesRadius(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 10), WithTarget(0, 0, 0))

	c.Orbit(1.3, 0.7)

	p := c.Position()
	radius := float32(math.Sqrt(float64(p[0]*p[0] + p[1]*p[1] + p[2]*p[2])))
	if absDiff(radius, 10) > 1e-4 {
		t.Errorf("orbit changed the radius: got %v, want 10", radius)
	}
}

func TestZoomClampsDistance(t *testing.T) {
	c := NewCamera(
		WithPosition(0, 0, 10),
		WithTarget(0, 0, 0),
		WithZoomLimits(2, 50),
	)

	c.Zoom(0.0001)
	p := c.Position()
	if absDiff(p[2], 2) > 1e-5 {
		t.Errorf("zoom in ignored minDistance: z = %v, want 2", p[2])
	}

	c.Zoom(1e6)
	p = c.Position()
	if absDiff(p[2], 50) > 1e-4 {
		t.Errorf("zoom out ignored maxDistance: z = %v, want 50", p[2])
	}
}

func TestSelectiveInvalidation(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 10), WithTarget(0, 0, 0))
	c.ViewMatrix()
	c.ProjectionMatrix()

	viewGen := c.ViewVersion()
	projGen := c.ProjectionVersion()

	// Lens change must not touch the view generation.
	c.SetFov(60 * math.Pi / 180)
	if c.ViewVersion() != viewGen {
		t.Error("SetFov invalidated the view matrix")
	}
	if c.ProjectionVersion() == projGen {
		t.Error("SetFov did not invalidate the projection matrix")
	}

	viewGen = c.ViewVersion()
	projGen = c.ProjectionVersion()

	// Movement must not touch the projection generation.
	c.Orbit(0.2, 0.1)
	if c.ViewVersion() == viewGen {
		t.Error("Orbit did not invalidate the view matrix")
	}
	if c.ProjectionVersion() != projGen {
		t.Error("Orbit invalidated the projection matrix")
	}
}

func TestMatricesStableWithoutMutation(t *testing.T) {
	c := NewCamera(WithPosition(2, 3, 4), WithTarget(0, 0, 0), WithAspect(16.0/9.0))

	v1 := c.ViewMatrix()
	p1 := c.ProjectionMatrix()
	vp1 := c.ViewProjectionMatrix()

	v2 := c.ViewMatrix()
	p2 := c.ProjectionMatrix()
	vp2 := c.ViewProjectionMatrix()

	if v1 != v2 || p1 != p2 || vp1 != vp2 {
		t.Error("repeated matrix reads without mutation returned different values")
	}
}

func TestPanMovesPositionAndTargetTogether(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 10), WithTarget(0, 0, 0))

	c.Pan(1, 2)

	p := c.Position()
	tgt := c.Target()
	for i := 0; i < 3; i++ {
		delta := p[i] - tgt[i]
		var want float32
		if i == 2 {
			want = 10
		}
		if absDiff(delta, want) > 1e-5 {
			t.Fatalf("pan broke the orbit offset: position %v, target %v", p, tgt)
		}
	}
}

func TestScreenRayCenterPointsAtTarget(t *testing.T) {
	c := NewCamera(WithPosition(0, 0, 10), WithTarget(0, 0, 0), WithAspect(1))

	origin, dir := c.ScreenRay(0, 0)

	if origin != c.Position() {
		t.Errorf("ray origin %v is not the camera position %v", origin, c.Position())
	}
	// The center ray from (0,0,10) toward the origin points down -Z.
	if absDiff(dir[0], 0) > 1e-4 || absDiff(dir[1], 0) > 1e-4 || absDiff(dir[2], -1) > 1e-4 {
		t.Errorf("center screen ray direction = %v, want (0, 0, -1)", dir)
	}
}

func TestScreenRayIsNormalized(t *testing.T) {
	c := NewCamera(WithPosition(1, 2, 8), WithTarget(0, 0, 0), WithAspect(16.0/9.0))

	_, dir := c.ScreenRay(0.5, -0.3)

	length := float32(math.Sqrt(float64(dir[0]*dir[0] + dir[1]*dir[1] + dir[2]*dir[2])))
	if absDiff(length, 1) > 1e-5 {
		t.Errorf("ray direction length = %v, want 1", length)
	}
}
