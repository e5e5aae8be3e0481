package pass

import (
	"testing"

	"github.com/DarioCorno/skengio/engine/camera"
	"github.com/DarioCorno/skengio/engine/mesh"
	"github.com/DarioCorno/skengio/engine/renderer/backend"
	"github.com/DarioCorno/skengio/engine/renderer/shader"
	"github.com/DarioCorno/skengio/engine/scene"
)

func newDepthPrepassScene(t *testing.T, b backend.RendererBackend) scene.Scene {
	t.Helper()

	cam := camera.NewCamera(
		camera.WithPosition(0, 0, 10),
		camera.WithTarget(0, 0, 0),
	)
	scn := scene.NewScene("depth test", scene.WithCamera(cam))
	scn.AddMesh(mesh.NewCube(1))
	if err := scn.InitMeshes(b); err != nil {
		t.Fatalf("InitMeshes: %v", err)
	}
	return scn
}

func TestExecuteRendersIntoOwnTarget(t *testing.T) {
	b := backend.NewRecordingBackend()
	cache := shader.NewShaderResourceCache(b)

	p := NewDepthPrepass(cache)
	if err := p.Init(b, 640, 480); err != nil {
		t.Fatalf("Init: %v", err)
	}
	scn := newDepthPrepassScene(t, b)

	b.ResetCounters()
	p.Execute(b, scn)

	// Own target bound for the pass, default framebuffer restored after.
	if got := b.Calls("BindFramebuffer"); got != 2 {
		t.Errorf("BindFramebuffer called %d times, want 2", got)
	}
	if got := b.Calls("Clear"); got != 1 {
		t.Errorf("Clear called %d times, want 1", got)
	}
	// Color writes disabled for the pass and restored before returning.
	if got := b.Calls("SetColorWrite"); got != 2 {
		t.Errorf("SetColorWrite called %d times, want 2", got)
	}
	if got := b.Calls("DrawIndexed"); got != 1 {
		t.Errorf("DrawIndexed called %d times, want 1", got)
	}
	if got := b.UniformUploads("uProjectionMatrix"); got != 1 {
		t.Errorf("uProjectionMatrix uploaded %d times, want 1", got)
	}
	if got := b.UniformUploads("uModelViewMatrix"); got != 1 {
		t.Errorf("uModelViewMatrix uploaded %d times, want 1", got)
	}
}

func TestExecuteWithoutCameraIsNoop(t *testing.T) {
	b := backend.NewRecordingBackend()
	cache := shader.NewShaderResourceCache(b)

	p := NewDepthPrepass(cache)
	if err := p.Init(b, 640, 480); err != nil {
		t.Fatalf("Init: %v", err)
	}
	scn := scene.NewScene("no camera")

	b.ResetCounters()
	p.Execute(b, scn)

	if got := b.Calls("DrawIndexed"); got != 0 {
		t.Errorf("DrawIndexed called %d times without a camera, want 0", got)
	}
	if got := b.Calls("BindFramebuffer"); got != 0 {
		t.Errorf("BindFramebuffer called %d times without a camera, want 0", got)
	}
}

func TestResizeReleasesOwnTarget(t *testing.T) {
	b := backend.NewRecordingBackend()
	cache := shader.NewShaderResourceCache(b)

	p := NewDepthPrepass(cache)
	if err := p.Init(b, 640, 480); err != nil {
		t.Fatalf("Init: %v", err)
	}
	alive := b.AliveObjects()

	if err := p.Resize(b, 1024, 768); err != nil {
		t.Fatalf("Resize: %v", err)
	}
	if got := b.AliveObjects(); got != alive {
		t.Errorf("%d GPU objects alive after Resize, want %d", got, alive)
	}

	p.Dispose(b)
	if got := b.AliveObjects(); got != 0 {
		t.Errorf("%d GPU objects alive after Dispose, want 0", got)
	}
}
