package mesh

import (
	"math"
	"testing"

	"github.com/DarioCorno/skengio/engine/renderer/backend"
	"github.com/DarioCorno/skengio/engine/renderer/shader"
)

func TestInitIsIdempotent(t *testing.T) {
	b := backend.NewRecordingBackend()
	m := NewCube(1)

	if err := m.Init(b); err != nil {
		t.Fatalf("Init: %v", err)
	}
	created := b.Calls("CreateBuffer")

	if err := m.Init(b); err != nil {
		t.Fatalf("second Init: %v", err)
	}
	if b.Calls("CreateBuffer") != created {
		t.Error("second Init allocated buffers again")
	}
}

func TestInitRejectsEmptyGeometry(t *testing.T) {
	b := backend.NewRecordingBackend()
	m := NewMesh()

	if err := m.Init(b); err == nil {
		t.Error("Init accepted a mesh without geometry")
	}
}

func TestUploadVertexDataGatedByDirtyFlag(t *testing.T) {
	b := backend.NewRecordingBackend()
	m := NewCube(1)
	if err := m.Init(b); err != nil {
		t.Fatalf("Init: %v", err)
	}

	b.ResetCounters()
	m.UploadVertexData(b)
	if got := b.Calls("ArrayBufferData"); got != 0 {
		t.Errorf("upload without pending update issued %d buffer uploads, want 0", got)
	}

	m.UpdateVertexData(m.Positions(), nil, nil)
	m.UploadVertexData(b)
	if got := b.Calls("ArrayBufferData"); got == 0 {
		t.Error("upload after update issued no buffer uploads")
	}

	b.ResetCounters()
	m.UploadVertexData(b)
	if got := b.Calls("ArrayBufferData"); got != 0 {
		t.Errorf("second upload re-sent data: %d uploads, want 0", got)
	}
}

func TestRetrieveAttribLocationsSkipsUnchangedProgram(t *testing.T) {
	b := backend.NewRecordingBackend()
	cache := shader.NewShaderResourceCache(b)
	m := NewCube(1)

	program := backend.Program(7)
	m.RetrieveAttribLocations(cache, program)
	queries := b.Calls("GetAttribLocation")
	if queries == 0 {
		t.Fatal("first retrieval issued no driver queries")
	}

	m.RetrieveAttribLocations(cache, program)
	if b.Calls("GetAttribLocation") != queries {
		t.Error("retrieval with unchanged program hit the driver again")
	}

	// A different program must resolve fresh handles.
	m.RetrieveAttribLocations(cache, backend.Program(8))
	if b.Calls("GetAttribLocation") == queries {
		t.Error("retrieval with a new program did not resolve anything")
	}
}

func TestDisposeReleasesEverything(t *testing.T) {
	b := backend.NewRecordingBackend()
	m := NewCube(1)
	if err := m.Init(b); err != nil {
		t.Fatalf("Init: %v", err)
	}
	if b.AliveObjects() == 0 {
		t.Fatal("Init created no GPU objects")
	}

	m.Dispose(b)
	if got := b.AliveObjects(); got != 0 {
		t.Errorf("%d GPU objects alive after Dispose, want 0", got)
	}
}

func TestBoundingRadius(t *testing.T) {
	m := NewCube(2)
	want := float32(math.Sqrt(3))
	if got := m.BoundingRadius(); absDiff(got, want) > 1e-5 {
		t.Errorf("BoundingRadius() = %v, want %v", got, want)
	}
}

func TestSceneIDAndDebugProxy(t *testing.T) {
	m := NewCube(1, WithDebugProxy())
	m.SetID(42)

	if m.ID() != 42 {
		t.Errorf("ID() = %d, want 42", m.ID())
	}
	if !m.DebugProxy() {
		t.Error("DebugProxy() = false, want true")
	}
}

func TestInvalidateAllowsReinitOnNewContext(t *testing.T) {
	lost := backend.NewRecordingBackend()
	m := NewCube(1)
	if err := m.Init(lost); err != nil {
		t.Fatalf("Init: %v", err)
	}
	created := lost.Calls("CreateBuffer")

	m.Invalidate()

	// Handles from the dead context must neither survive nor be deleted:
	// the new context never saw them.
	fresh := backend.NewRecordingBackend()
	if err := m.Init(fresh); err != nil {
		t.Fatalf("Init after Invalidate: %v", err)
	}
	if got := fresh.Calls("CreateBuffer"); got != created {
		t.Errorf("re-init created %d buffers on the new context, want %d", got, created)
	}
	if got := fresh.Calls("CreateVertexArray"); got != 1 {
		t.Errorf("re-init created %d vertex arrays on the new context, want 1", got)
	}
	if fresh.Calls("DeleteBuffer") != 0 || fresh.Calls("DeleteVertexArray") != 0 {
		t.Error("re-init issued deletes against the new context")
	}
}

func absDiff(a, b float32) float32 {
	if a > b {
		return a - b
	}
	return b - a
}
