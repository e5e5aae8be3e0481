package material

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/DarioCorno/skengio/common"
	"github.com/DarioCorno/skengio/engine/renderer/backend"
)

func encodeTestPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func newTexturedMaterial(t *testing.T) Material {
	t.Helper()

	return NewMaterial(
		WithName("test"),
		WithDiffuseTexture(&common.ImportedTexture{
			Name: "diffuse",
			Data: encodeTestPNG(t),
		}),
	)
}

func TestInitUploadsTextureOnce(t *testing.T) {
	b := backend.NewRecordingBackend()
	m := newTexturedMaterial(t)

	if err := m.Init(b); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if !m.HasTexture() {
		t.Fatal("HasTexture() = false after Init")
	}
	if err := m.Init(b); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if got := b.Calls("CreateImageTexture"); got != 1 {
		t.Errorf("CreateImageTexture called %d times, want 1", got)
	}
}

func TestInitIsNoopWithoutTexture(t *testing.T) {
	b := backend.NewRecordingBackend()
	m := NewMaterial(WithDiffuseColor([4]float32{1, 0, 0, 1}))

	if err := m.Init(b); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if m.HasTexture() {
		t.Error("HasTexture() = true for an untextured material")
	}
	if b.Calls("CreateImageTexture") != 0 {
		t.Error("Init uploaded a texture for an untextured material")
	}
}

func TestInvalidateAllowsReinitOnNewContext(t *testing.T) {
	lost := backend.NewRecordingBackend()
	m := newTexturedMaterial(t)
	if err := m.Init(lost); err != nil {
		t.Fatalf("Init: %v", err)
	}

	m.Invalidate()
	if m.HasTexture() {
		t.Fatal("HasTexture() = true after Invalidate")
	}

	// The handle from the dead context must be re-created, not deleted.
	fresh := backend.NewRecordingBackend()
	if err := m.Init(fresh); err != nil {
		t.Fatalf("Init after Invalidate: %v", err)
	}
	if got := fresh.Calls("CreateImageTexture"); got != 1 {
		t.Errorf("re-init created %d textures on the new context, want 1", got)
	}
	if fresh.Calls("DeleteTexture") != 0 {
		t.Error("re-init issued deletes against the new context")
	}
	if !m.HasTexture() {
		t.Error("HasTexture() = false after re-init")
	}
}

func TestDisposeReleasesTexture(t *testing.T) {
	b := backend.NewRecordingBackend()
	m := newTexturedMaterial(t)
	if err := m.Init(b); err != nil {
		t.Fatalf("Init: %v", err)
	}

	m.Dispose(b)
	if got := b.AliveObjects(); got != 0 {
		t.Errorf("%d GPU objects alive after Dispose, want 0", got)
	}
	if m.HasTexture() {
		t.Error("HasTexture() = true after Dispose")
	}
}
