package renderer

import (
	"testing"

	"github.com/DarioCorno/skengio/engine/camera"
	"github.com/DarioCorno/skengio/engine/light"
	"github.com/DarioCorno/skengio/engine/mesh"
	"github.com/DarioCorno/skengio/engine/renderer/backend"
	"github.com/DarioCorno/skengio/engine/scene"
)

func buildTestScene(t *testing.T, b backend.RendererBackend) scene.Scene {
	t.Helper()

	cam := camera.NewCamera(
		camera.WithPosition(0, 0, 10),
		camera.WithTarget(0, 0, 0),
		camera.WithAspect(800.0/600.0),
	)

	scn := scene.NewScene("renderer-test", scene.WithCamera(cam))
	scn.AddMesh(mesh.NewCube(2))
	scn.AddLight(light.NewLight(
		light.WithPosition(4, 4, 4),
		light.WithColor(1, 1, 1),
		light.WithIntensity(1),
	))
	scn.AddLight(light.NewLight(
		light.WithPosition(-4, 2, 4),
		light.WithColor(1, 0.5, 0.2),
		light.WithIntensity(0.5),
	))

	scn.PrepareMeshes()
	if err := scn.InitMeshes(b); err != nil {
		t.Fatalf("InitMeshes: %v", err)
	}
	return scn
}

func newTestRenderer(t *testing.T, b backend.RendererBackend) Renderer {
	t.Helper()

	r, err := NewRenderer(WithBackendInstance(b), WithSize(800, 600))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if err := r.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return r
}

func TestSecondFrameSkipsUnchangedUniforms(t *testing.T) {
	b := backend.NewRecordingBackend()
	r := newTestRenderer(t, b)
	scn := buildTestScene(t, b)

	r.Render(scn)
	b.ResetCounters()
	r.Render(scn)

	for _, name := range []string{
		"uViewMatrix",
		"uCameraPosition",
		"uNearPlane",
		"uFarPlane",
		"uLights[0].uLightPosition",
		"uLights[0].uLightColor",
		"uLights[0].uLightIntensity",
		"uLights[1].uLightPosition",
	} {
		if got := b.UniformUploads(name); got != 0 {
			t.Errorf("frame 2 uploaded %s %d times, want 0", name, got)
		}
	}

	// The light count and debug mode are cheap and always sent.
	if got := b.UniformUploads("uNumLights"); got != 1 {
		t.Errorf("frame 2 uploaded uNumLights %d times, want 1", got)
	}
	if got := b.UniformUploads("uDebugMode"); got != 1 {
		t.Errorf("frame 2 uploaded uDebugMode %d times, want 1", got)
	}
}

func TestMovingOneLightUploadsOnlyThatLight(t *testing.T) {
	b := backend.NewRecordingBackend()
	r := newTestRenderer(t, b)
	scn := buildTestScene(t, b)

	r.Render(scn)
	b.ResetCounters()

	scn.Lights()[0].SetPosition(5, 4, 4)
	r.Render(scn)

	if got := b.UniformUploads("uLights[0].uLightPosition"); got != 1 {
		t.Errorf("moved light position uploaded %d times, want 1", got)
	}
	if got := b.UniformUploads("uLights[1].uLightPosition"); got != 0 {
		t.Errorf("untouched light position uploaded %d times, want 0", got)
	}
	if got := b.UniformUploads("uLights[0].uLightColor"); got != 0 {
		t.Errorf("color of moved light uploaded %d times, want 0", got)
	}
}

func TestIdempotentSetterUploadsNothing(t *testing.T) {
	b := backend.NewRecordingBackend()
	r := newTestRenderer(t, b)
	scn := buildTestScene(t, b)

	r.Render(scn)
	b.ResetCounters()

	scn.Lights()[0].SetPosition(4, 4, 4)
	scn.Lights()[0].SetIntensity(1)
	r.Render(scn)

	if got := b.UniformUploads("uLights[0].uLightPosition"); got != 0 {
		t.Errorf("idempotent SetPosition caused %d uploads, want 0", got)
	}
	if got := b.UniformUploads("uLights[0].uLightIntensity"); got != 0 {
		t.Errorf("idempotent SetIntensity caused %d uploads, want 0", got)
	}
}

func TestCameraMotionReuploadsViewAndLightPositions(t *testing.T) {
	b := backend.NewRecordingBackend()
	r := newTestRenderer(t, b)
	scn := buildTestScene(t, b)

	r.Render(scn)
	b.ResetCounters()

	scn.Camera().Orbit(0.25, 0)
	r.Render(scn)

	if got := b.UniformUploads("uViewMatrix"); got != 1 {
		t.Errorf("view matrix uploaded %d times after orbit, want 1", got)
	}
	if got := b.UniformUploads("uCameraPosition"); got != 1 {
		t.Errorf("camera position uploaded %d times after orbit, want 1", got)
	}
	// Light positions depend on the view and are re-sent even though the
	// lights themselves did not move.
	if got := b.UniformUploads("uLights[0].uLightPosition"); got != 1 {
		t.Errorf("light 0 position uploaded %d times after orbit, want 1", got)
	}
	if got := b.UniformUploads("uLights[1].uLightPosition"); got != 1 {
		t.Errorf("light 1 position uploaded %d times after orbit, want 1", got)
	}
	// Projection did not change.
	if got := b.UniformUploads("uNearPlane"); got != 0 {
		t.Errorf("near plane uploaded %d times after orbit, want 0", got)
	}
}

func TestResizeReleasesOldTargets(t *testing.T) {
	b := backend.NewRecordingBackend()
	r := newTestRenderer(t, b)

	before := b.AliveObjects()
	if err := r.SetSize(1920, 1080); err != nil {
		t.Fatalf("SetSize up: %v", err)
	}
	if err := r.SetSize(800, 600); err != nil {
		t.Fatalf("SetSize down: %v", err)
	}
	if after := b.AliveObjects(); after != before {
		t.Errorf("alive objects changed across resize cycle: before %d, after %d", before, after)
	}
}

func TestInitSurfacesIncompleteFramebuffer(t *testing.T) {
	b := backend.NewRecordingBackend()
	b.FailFramebuffer = true

	r, err := NewRenderer(WithBackendInstance(b), WithSize(800, 600))
	if err != nil {
		t.Fatalf("NewRenderer: %v", err)
	}
	if err := r.Init(); err == nil {
		t.Fatal("Init succeeded with an incomplete framebuffer, want error")
	}
}

func TestContextLossReinitReuploadsEverything(t *testing.T) {
	b := backend.NewRecordingBackend()
	r := newTestRenderer(t, b)
	scn := buildTestScene(t, b)

	r.Render(scn)

	r.InvalidateContext()
	scn.InvalidateGPU()
	if err := r.Init(); err != nil {
		t.Fatalf("Init after invalidate: %v", err)
	}
	meshBuffers := b.Calls("CreateBuffer")
	if err := scn.InitMeshes(b); err != nil {
		t.Fatalf("InitMeshes after invalidate: %v", err)
	}
	if b.Calls("CreateBuffer") == meshBuffers {
		t.Fatal("InitMeshes after invalidate allocated no buffers")
	}

	b.ResetCounters()
	r.Render(scn)

	// The first frame on a fresh context must push all gated state even
	// though no scene object is dirty.
	for _, name := range []string{
		"uViewMatrix",
		"uNearPlane",
		"uLights[0].uLightPosition",
		"uLights[0].uLightColor",
		"uLights[1].uLightIntensity",
	} {
		if got := b.UniformUploads(name); got != 1 {
			t.Errorf("post-reinit frame uploaded %s %d times, want 1", name, got)
		}
	}
}

func TestDisposeLeavesNoAliveObjects(t *testing.T) {
	b := backend.NewRecordingBackend()
	r := newTestRenderer(t, b)
	scn := buildTestScene(t, b)

	r.Render(scn)
	scn.Dispose(b)
	r.Dispose()

	if got := b.AliveObjects(); got != 0 {
		t.Errorf("%d objects alive after dispose, want 0", got)
	}
}

func TestDebugModeIsForwarded(t *testing.T) {
	b := backend.NewRecordingBackend()
	r := newTestRenderer(t, b)
	scn := buildTestScene(t, b)

	r.SetDebugMode(3)
	r.Render(scn)

	if got := b.Calls("DrawArrays"); got != 1 {
		t.Errorf("lighting quad drawn %d times, want 1", got)
	}
	if got := b.UniformUploads("uDebugMode"); got != 1 {
		t.Errorf("uDebugMode uploaded %d times, want 1", got)
	}
}
