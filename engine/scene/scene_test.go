package scene

import (
	"testing"

	"github.com/DarioCorno/skengio/engine/light"
	"github.com/DarioCorno/skengio/engine/mesh"
	"github.com/DarioCorno/skengio/engine/renderer/backend"
)

func TestAddAssignsMonotonicIDs(t *testing.T) {
	s := NewScene("test")

	id1 := s.AddMesh(mesh.NewCube(1))
	id2 := s.AddLight(light.NewLight())
	id3 := s.AddMesh(mesh.NewCube(1))

	if !(id1 < id2 && id2 < id3) {
		t.Errorf("ids not monotonically increasing: %d, %d, %d", id1, id2, id3)
	}
	if got := s.Meshes()[0].ID(); got != id1 {
		t.Errorf("first mesh carries id %d, want %d", got, id1)
	}
	if got := s.Meshes()[1].ID(); got != id3 {
		t.Errorf("second mesh carries id %d, want %d", got, id3)
	}
}

func TestInsertionOrderPreserved(t *testing.T) {
	s := NewScene("test")

	a := mesh.NewCube(1)
	b := mesh.NewCube(2)
	s.AddMesh(a)
	s.AddMesh(b)

	meshes := s.Meshes()
	if meshes[0] != a || meshes[1] != b {
		t.Error("meshes not returned in insertion order")
	}
}

func TestPrepareMeshesGeneratesAllTangents(t *testing.T) {
	s := NewScene("test", WithComputeWorkers(2))

	for i := 0; i < 8; i++ {
		s.AddMesh(mesh.NewCube(1))
	}

	s.PrepareMeshes()

	for i, m := range s.Meshes() {
		if m.NeedsTangents() {
			t.Errorf("mesh %d still needs tangents after PrepareMeshes", i)
		}
		if len(m.Tangents()) != len(m.Positions()) {
			t.Errorf("mesh %d tangent array size mismatch", i)
		}
	}
}

func TestPrepareMeshesSkipsMeshesWithoutUVs(t *testing.T) {
	s := NewScene("test")

	positions := []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}
	normals := []float32{0, 0, 1, 0, 0, 1, 0, 0, 1}
	m := mesh.NewMesh(mesh.WithGeometry(positions, normals, nil, []uint32{0, 1, 2}))
	s.AddMesh(m)

	s.PrepareMeshes()

	if len(m.Tangents()) != 0 {
		t.Error("tangents generated for a mesh without UVs")
	}
}

func TestInitAndDisposeLifecycle(t *testing.T) {
	b := backend.NewRecordingBackend()
	s := NewScene("test")
	s.AddMesh(mesh.NewCube(1))
	s.AddMesh(mesh.NewPlane(10, 10))

	if err := s.InitMeshes(b); err != nil {
		t.Fatalf("InitMeshes: %v", err)
	}
	if b.AliveObjects() == 0 {
		t.Fatal("InitMeshes created no GPU objects")
	}

	s.Dispose(b)
	if got := b.AliveObjects(); got != 0 {
		t.Errorf("%d GPU objects alive after Dispose, want 0", got)
	}
}

func TestInvalidateGPUReinitializesOnNewContext(t *testing.T) {
	s := NewScene("test")
	s.AddMesh(mesh.NewCube(1))
	s.AddMesh(mesh.NewPlane(10, 10))

	lost := backend.NewRecordingBackend()
	if err := s.InitMeshes(lost); err != nil {
		t.Fatalf("InitMeshes: %v", err)
	}
	created := lost.Calls("CreateBuffer")

	s.InvalidateGPU()

	// Without invalidation every mesh keeps its initialized flag and
	// InitMeshes on the rebuilt context is a silent no-op, leaving the
	// first frame drawing with dead-context handles.
	fresh := backend.NewRecordingBackend()
	if err := s.InitMeshes(fresh); err != nil {
		t.Fatalf("InitMeshes after InvalidateGPU: %v", err)
	}
	if got := fresh.Calls("CreateBuffer"); got == 0 {
		t.Fatal("InitMeshes on the new context created no buffers")
	} else if got != created {
		t.Errorf("InitMeshes on the new context created %d buffers, want %d", got, created)
	}
	if fresh.Calls("DeleteBuffer") != 0 {
		t.Error("re-init issued deletes against the new context")
	}
}

func TestInitMeshesSurfacesMeshError(t *testing.T) {
	b := backend.NewRecordingBackend()
	s := NewScene("test")
	s.AddMesh(mesh.NewMesh()) // no geometry

	if err := s.InitMeshes(b); err == nil {
		t.Error("InitMeshes accepted a mesh without geometry")
	}
}
