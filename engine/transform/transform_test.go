package transform

import (
	"math"
	"testing"
)

func TestModelMatrixCachesUntilMutation(t *testing.T) {
	tr := NewTransform(WithPosition(1, 2, 3))

	first := tr.ModelMatrix()
	if tr.Dirty() {
		t.Fatal("transform still dirty after ModelMatrix")
	}
	second := tr.ModelMatrix()
	if first != second {
		t.Fatal("cached matrix changed without mutation")
	}

	tr.Translate(1, 0, 0)
	if !tr.Dirty() {
		t.Fatal("Translate did not mark the matrix stale")
	}
	moved := tr.ModelMatrix()
	if moved == first {
		t.Fatal("matrix unchanged after Translate")
	}
	if got := moved[12]; got != 2 {
		t.Fatalf("translation x = %v, want 2", got)
	}
}

func TestVersionCountsEffectiveMutations(t *testing.T) {
	tr := NewTransform()
	if got := tr.Version(); got != 0 {
		t.Fatalf("fresh transform version = %d, want 0", got)
	}

	tr.SetPosition(1, 0, 0)
	tr.SetRotation(0, float32(math.Pi/4), 0)
	tr.ScaleBy(2, 2, 2)
	if got := tr.Version(); got != 3 {
		t.Fatalf("version after three mutations = %d, want 3", got)
	}

	// Reads never bump the generation.
	_ = tr.ModelMatrix()
	_ = tr.Position()
	if got := tr.Version(); got != 3 {
		t.Fatalf("version after reads = %d, want 3", got)
	}
}

func TestStaticLocksAfterFirstPlacement(t *testing.T) {
	tr := NewTransform(WithStatic())

	tr.SetPosition(5, 0, 0)
	placed := tr.ModelMatrix()
	if tr.Dirty() {
		t.Fatal("static transform dirty after its placement composed")
	}

	tr.SetPosition(99, 99, 99)
	tr.Rotate(1, 1, 1)
	tr.ScaleBy(3, 3, 3)
	if got := tr.Position(); got != [3]float32{5, 0, 0} {
		t.Fatalf("locked transform position changed to %v", got)
	}
	if got := tr.ModelMatrix(); got != placed {
		t.Fatal("locked transform matrix changed")
	}

	version := tr.Version()
	tr.Translate(1, 1, 1)
	if tr.Version() != version {
		t.Fatal("locked transform version bumped by ignored mutation")
	}
}

func TestSetStaticOnPlacedTransformLocksImmediately(t *testing.T) {
	tr := NewTransform()
	tr.SetPosition(1, 2, 3)

	tr.SetStatic(true)
	tr.SetPosition(9, 9, 9)
	if got := tr.Position(); got != [3]float32{1, 2, 3} {
		t.Fatalf("position changed to %v after static lock", got)
	}

	// Clearing static mode unlocks.
	tr.SetStatic(false)
	tr.SetPosition(9, 9, 9)
	if got := tr.Position(); got != [3]float32{9, 9, 9} {
		t.Fatalf("position = %v after unlock, want (9, 9, 9)", got)
	}
}

func TestForceDirtyRecomposesStaticTransform(t *testing.T) {
	tr := NewTransform(WithStatic())
	tr.SetPosition(1, 0, 0)
	version := tr.Version()

	tr.ForceDirty()
	if !tr.Dirty() {
		t.Fatal("ForceDirty did not mark the matrix stale")
	}
	if tr.Version() == version {
		t.Fatal("ForceDirty did not bump the version")
	}
	if got := tr.ModelMatrix(); got[12] != 1 {
		t.Fatalf("recomposed translation x = %v, want 1", got[12])
	}
}

func TestComposeOrderIsTranslateRotateScale(t *testing.T) {
	// With a 90 degree rotation around y, a unit x scale vector lands on -z
	// before the translation applies.
	tr := NewTransform(
		WithPosition(10, 0, 0),
		WithRotation(0, float32(math.Pi/2), 0),
		WithScale(2, 1, 1),
	)
	m := tr.ModelMatrix()

	// Column 0 is the transformed x basis vector scaled by 2.
	if !approx(m[0], 0) || !approx(m[2], -2) {
		t.Fatalf("x basis = (%v, %v, %v), want (0, 0, -2)", m[0], m[1], m[2])
	}
	if m[12] != 10 || m[13] != 0 || m[14] != 0 {
		t.Fatalf("translation = (%v, %v, %v), want (10, 0, 0)", m[12], m[13], m[14])
	}
}

func approx(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}
