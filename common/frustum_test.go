package common

import (
	"math"
	"testing"
)

func testFrustum() Frustum {
	proj := make([]float32, 16)
	Perspective(proj, float32(math.Pi/3), 1, 0.1, 100)
	view := make([]float32, 16)
	LookAt(view, 0, 0, 10, 0, 0, 0, 0, 1, 0)
	vp := make([]float32, 16)
	Mul4(vp, proj, view)
	return ExtractFrustumFromMatrix(vp)
}

func TestContainsSphereAtLookTarget(t *testing.T) {
	f := testFrustum()
	if !f.ContainsSphere([3]float32{0, 0, 0}, 1) {
		t.Fatal("sphere at the look target culled")
	}
}

func TestContainsSphereBehindCamera(t *testing.T) {
	f := testFrustum()
	if f.ContainsSphere([3]float32{0, 0, 20}, 1) {
		t.Fatal("sphere behind the camera not culled")
	}
}

func TestContainsSphereBeyondFarPlane(t *testing.T) {
	f := testFrustum()
	if f.ContainsSphere([3]float32{0, 0, -200}, 1) {
		t.Fatal("sphere beyond the far plane not culled")
	}
}

func TestContainsSphereStraddlingPlane(t *testing.T) {
	f := testFrustum()
	// Center sits outside the left plane but the radius reaches back in;
	// conservative culling must keep it.
	if !f.ContainsSphere([3]float32{-7, 0, 0}, 2) {
		t.Fatal("sphere straddling the left plane culled")
	}
	// Well outside with a small radius gets culled.
	if f.ContainsSphere([3]float32{-50, 0, 0}, 1) {
		t.Fatal("sphere far outside the left plane not culled")
	}
}
