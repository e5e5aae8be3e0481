package common

import (
	"math"
	"testing"
)

const tol = 1e-5

func approx(t *testing.T, got, want float32, label string) {
	t.Helper()
	if math.Abs(float64(got-want)) > tol {
		t.Errorf("%s = %v, want %v", label, got, want)
	}
}

func TestMul4AgainstIdentity(t *testing.T) {
	a := make([]float32, 16)
	ComposeTRS(a, 1, 2, 3, 0.3, 0.5, 0.7, 2, 1, 0.5)
	id := make([]float32, 16)
	Identity(id)

	out := make([]float32, 16)
	Mul4(out, a, id)
	for i := range out {
		approx(t, out[i], a[i], "A*I")
	}
	Mul4(out, id, a)
	for i := range out {
		approx(t, out[i], a[i], "I*A")
	}
}

func TestMul4AppliesRightOperandFirst(t *testing.T) {
	// T(1,0,0) * S(2) applied to point (1,1,1): scale first, then translate.
	translate := make([]float32, 16)
	ComposeTRS(translate, 1, 0, 0, 0, 0, 0, 1, 1, 1)
	scale := make([]float32, 16)
	ComposeTRS(scale, 0, 0, 0, 0, 0, 0, 2, 2, 2)

	out := make([]float32, 16)
	Mul4(out, translate, scale)
	v := TransformVec4(out, 1, 1, 1, 1)
	approx(t, v[0], 3, "x")
	approx(t, v[1], 2, "y")
	approx(t, v[2], 2, "z")
	approx(t, v[3], 1, "w")
}

func TestInvert4RoundTrip(t *testing.T) {
	m := make([]float32, 16)
	ComposeTRS(m, 4, -2, 7, 0.4, 1.1, -0.6, 1.5, 2, 0.75)

	inv := make([]float32, 16)
	if !Invert4(inv, m) {
		t.Fatal("invertible matrix reported singular")
	}

	out := make([]float32, 16)
	Mul4(out, m, inv)
	id := make([]float32, 16)
	Identity(id)
	for i := range out {
		if math.Abs(float64(out[i]-id[i])) > 1e-4 {
			t.Fatalf("M*M^-1 differs from identity at %d: %v", i, out[i])
		}
	}
}

func TestInvert4RejectsSingular(t *testing.T) {
	m := make([]float32, 16) // all zeros
	inv := make([]float32, 16)
	Identity(inv)
	if Invert4(inv, m) {
		t.Fatal("singular matrix reported invertible")
	}
	// Output untouched on failure.
	if inv[0] != 1 {
		t.Fatal("failed inversion clobbered the output")
	}
}

func TestPerspectiveMapsNearAndFarPlanes(t *testing.T) {
	p := make([]float32, 16)
	Perspective(p, float32(math.Pi/4), 16.0/9.0, 0.1, 100)

	// A point on the near plane maps to NDC z = -1, far plane to +1.
	near := TransformVec4(p, 0, 0, -0.1, 1)
	approx(t, near[2]/near[3], -1, "near NDC z")
	far := TransformVec4(p, 0, 0, -100, 1)
	approx(t, far[2]/far[3], 1, "far NDC z")
}

func TestLookAtPlacesEyeAtOrigin(t *testing.T) {
	v := make([]float32, 16)
	LookAt(v, 3, 4, 5, 0, 0, 0, 0, 1, 0)

	eye := TransformVec4(v, 3, 4, 5, 1)
	approx(t, eye[0], 0, "eye x")
	approx(t, eye[1], 0, "eye y")
	approx(t, eye[2], 0, "eye z")

	// The target sits on the negative z axis in view space.
	target := TransformVec4(v, 0, 0, 0, 1)
	approx(t, target[0], 0, "target x")
	approx(t, target[1], 0, "target y")
	if target[2] >= 0 {
		t.Fatalf("target view z = %v, want negative", target[2])
	}
}

func TestVectorHelpers(t *testing.T) {
	a := [3]float32{1, 2, 3}
	b := [3]float32{4, 5, 6}

	if got := Sub3(b, a); got != [3]float32{3, 3, 3} {
		t.Errorf("Sub3 = %v", got)
	}
	if got := Add3(a, b); got != [3]float32{5, 7, 9} {
		t.Errorf("Add3 = %v", got)
	}
	approx(t, Dot3(a, b), 32, "Dot3")

	x := [3]float32{1, 0, 0}
	y := [3]float32{0, 1, 0}
	if got := Cross3(x, y); got != [3]float32{0, 0, 1} {
		t.Errorf("Cross3(x, y) = %v, want z", got)
	}

	approx(t, Length3([3]float32{3, 4, 0}), 5, "Length3")
	n := Normalize3([3]float32{0, 0, 9})
	if n != [3]float32{0, 0, 1} {
		t.Errorf("Normalize3 = %v", n)
	}

	if got := Clamp(5, 0, 1); got != 1 {
		t.Errorf("Clamp above = %v", got)
	}
	if got := Clamp(-5, 0, 1); got != 0 {
		t.Errorf("Clamp below = %v", got)
	}
	if got := Clamp(0.5, 0, 1); got != 0.5 {
		t.Errorf("Clamp inside = %v", got)
	}
}
