package scene

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/DarioCorno/skengio/engine/camera"
	"github.com/DarioCorno/skengio/engine/light"
	"github.com/DarioCorno/skengio/engine/mesh"
	"github.com/DarioCorno/skengio/engine/renderer/backend"
)

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name    string
	active  bool
	zIndex  int
	nextID  int32
	cam     camera.Camera
	meshes  []mesh.Mesh
	lights  []light.Light
	meshIDs []int32

	// computePool manages a bounded set of reusable goroutines for the
	// parallel tangent generation phase of PrepareMeshes. Workers persist
	// across calls and idle-exit after the timeout.
	computePool    worker.DynamicWorkerPool
	computeWorkers int
}

// Scene defines the interface for a renderable scene: an ordered mesh list,
// an ordered light list, and exactly one camera.
//
// Insertion order is render order. Every Add call assigns the entity a
// monotonically increasing id unique within the scene; mesh ids feed the
// G-buffer object-data encoding. The scene owns the lifetime of the objects
// inserted into it, but materials stay with whoever created them.
type Scene interface {
	// Name returns the scene identifier.
	//
	// Returns:
	//   - string: the scene name
	Name() string

	// Active reports whether the engine should render this scene.
	//
	// Returns:
	//   - bool: true if active
	Active() bool

	// SetActive enables or disables rendering of this scene.
	//
	// Parameters:
	//   - active: true to render the scene
	SetActive(active bool)

	// ZIndex returns the draw ordering index among scenes.
	//
	// Returns:
	//   - int: the z-index
	ZIndex() int

	// SetZIndex sets the draw ordering index among scenes.
	//
	// Parameters:
	//   - zIndex: the z-index
	SetZIndex(zIndex int)

	// Camera returns the scene camera, or nil if none was attached.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// SetCamera attaches the scene camera.
	//
	// Parameters:
	//   - cam: the camera to attach
	SetCamera(cam camera.Camera)

	// Meshes returns the meshes in insertion order.
	//
	// Returns:
	//   - []mesh.Mesh: the mesh list
	Meshes() []mesh.Mesh

	// Lights returns the lights in insertion order.
	//
	// Returns:
	//   - []light.Light: the light list
	Lights() []light.Light

	// AddMesh inserts a mesh, assigns it the next id, and returns that id.
	//
	// Parameters:
	//   - m: the mesh to insert
	//
	// Returns:
	//   - int32: the assigned object id
	AddMesh(m mesh.Mesh) int32

	// AddLight inserts a light and returns its assigned id.
	//
	// Parameters:
	//   - l: the light to insert
	//
	// Returns:
	//   - int32: the assigned id
	AddLight(l light.Light) int32

	// PrepareMeshes runs tangent generation for every mesh that needs it.
	// Independent meshes are processed in parallel on the compute pool.
	PrepareMeshes()

	// InitMeshes uploads every mesh's geometry and every referenced
	// material texture to the GPU.
	//
	// Parameters:
	//   - b: the rendering backend
	//
	// Returns:
	//   - error: the first initialization failure
	InitMeshes(b backend.RendererBackend) error

	// InvalidateGPU drops every mesh and material GPU handle without
	// issuing deletes, after the environment reported a context loss.
	// Pairs with Renderer.InvalidateContext: InitMeshes must run against
	// the rebuilt context before the next frame.
	InvalidateGPU()

	// Dispose releases the GPU resources of every mesh and material in the
	// scene.
	//
	// Parameters:
	//   - b: the rendering backend
	Dispose(b backend.RendererBackend)
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with the given name and options.
//
// Parameters:
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:             &sync.RWMutex{},
		name:           name,
		active:         true,
		nextID:         1,
		computeWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the compute pool after options so WithComputeWorkers can
	// override the default. Queue size of 256 accommodates typical scene
	// mesh counts with headroom.
	s.computePool = worker.NewDynamicWorkerPool(s.computeWorkers, 256, 1*time.Second)

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) ZIndex() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.zIndex
}

func (s *scene) SetZIndex(zIndex int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.zIndex = zIndex
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
}

func (s *scene) Meshes() []mesh.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.meshes
}

func (s *scene) Lights() []light.Light {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lights
}

func (s *scene) AddMesh(m mesh.Mesh) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	m.SetID(id)
	s.meshes = append(s.meshes, m)
	s.meshIDs = append(s.meshIDs, id)
	return id
}

func (s *scene) AddLight(l light.Light) int32 {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.lights = append(s.lights, l)
	return id
}

func (s *scene) PrepareMeshes() {
	s.mu.RLock()
	pending := make([]mesh.Mesh, 0, len(s.meshes))
	for _, m := range s.meshes {
		if m.NeedsTangents() {
			pending = append(pending, m)
		}
	}
	s.mu.RUnlock()

	if len(pending) == 0 {
		return
	}

	// Parallel tangent generation: each mesh touches only its own arrays, so
	// tasks are independent. A WaitGroup provides the barrier since the pool
	// blocks only on worker idle-exit.
	var wg sync.WaitGroup
	for i, m := range pending {
		wg.Add(1)
		mCap := m // capture for closure
		s.computePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				mCap.GenerateTangents()
				return nil, nil
			},
		})
	}
	wg.Wait()
}

func (s *scene) InitMeshes(b backend.RendererBackend) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.meshes {
		if mat := m.Material(); mat != nil {
			if err := mat.Init(b); err != nil {
				return fmt.Errorf("scene %q: %w", s.name, err)
			}
		}
		if err := m.Init(b); err != nil {
			return fmt.Errorf("scene %q: %w", s.name, err)
		}
	}
	return nil
}

func (s *scene) InvalidateGPU() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.meshes {
		m.Invalidate()
		if mat := m.Material(); mat != nil {
			mat.Invalidate()
		}
	}
}

func (s *scene) Dispose(b backend.RendererBackend) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.meshes {
		m.Dispose(b)
		if mat := m.Material(); mat != nil {
			mat.Dispose(b)
		}
	}
}
