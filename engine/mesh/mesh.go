// Package mesh holds renderable triangle geometry: CPU-side vertex arrays,
// their GPU buffer mirrors, and the per-mesh state the deferred passes need
// (transform, material, object id).
package mesh

import (
	"fmt"
	"math"

	"github.com/DarioCorno/skengio/engine/renderer/backend"
	"github.com/DarioCorno/skengio/engine/renderer/material"
	"github.com/DarioCorno/skengio/engine/renderer/shader"
	"github.com/DarioCorno/skengio/engine/transform"
)

// meshImpl is the implementation of the Mesh interface.
type meshImpl struct {
	transform transform.Transform
	material  material.Material

	id         int32
	debugProxy bool

	positions  []float32
	normals    []float32
	uvs        []float32
	tangents   []float32
	bitangents []float32
	indices    []uint32

	boundingRadius float32

	vao             backend.VertexArray
	positionBuffer  backend.Buffer
	normalBuffer    backend.Buffer
	uvBuffer        backend.Buffer
	tangentBuffer   backend.Buffer
	bitangentBuffer backend.Buffer
	indexBuffer     backend.Buffer
	initialized     bool

	vertexDataDirty bool

	// Attribute handles resolved against lastProgram; RetrieveAttribLocations
	// skips the cache round trip while the program is unchanged.
	lastProgram     backend.Program
	positionAttrib  backend.AttribLocation
	normalAttrib    backend.AttribLocation
	uvAttrib        backend.AttribLocation
	tangentAttrib   backend.AttribLocation
	bitangentAttrib backend.AttribLocation
}

// Mesh defines the interface for a renderable triangle mesh.
//
// Vertex arrays are immutable by default; UpdateVertexData replaces them and
// marks the GPU mirror stale, UploadVertexData re-uploads only when stale.
// Init and Dispose bracket the GPU buffer lifetime; a mesh owns its buffers
// but never its material.
type Mesh interface {
	// Transform returns the spatial component of the mesh.
	//
	// Returns:
	//   - transform.Transform: the mesh's transform
	Transform() transform.Transform

	// Material returns the material reference, or nil.
	//
	// Returns:
	//   - material.Material: the material applied by the geometry pass
	Material() material.Material

	// ID returns the scene-assigned object id encoded into the G-buffer.
	//
	// Returns:
	//   - int32: the object id
	ID() int32

	// SetID assigns the object id. Called by the scene on insertion.
	//
	// Parameters:
	//   - id: the object id
	SetID(id int32)

	// DebugProxy reports whether this mesh is a debug-visualization proxy.
	// Proxy ids are negated in the G-buffer object-data target.
	//
	// Returns:
	//   - bool: true if the mesh is a debug proxy
	DebugProxy() bool

	// Indices returns the triangle index array.
	//
	// Returns:
	//   - []uint32: the indices
	Indices() []uint32

	// Positions returns the vertex position array (3 floats per vertex).
	//
	// Returns:
	//   - []float32: the positions
	Positions() []float32

	// Normals returns the vertex normal array (3 floats per vertex).
	//
	// Returns:
	//   - []float32: the normals
	Normals() []float32

	// UVs returns the texture coordinate array (2 floats per vertex).
	//
	// Returns:
	//   - []float32: the texture coordinates
	UVs() []float32

	// Tangents returns the vertex tangent array (3 floats per vertex),
	// empty until GenerateTangents runs.
	//
	// Returns:
	//   - []float32: the tangents
	Tangents() []float32

	// Bitangents returns the vertex bitangent array (3 floats per vertex),
	// empty until GenerateTangents runs.
	//
	// Returns:
	//   - []float32: the bitangents
	Bitangents() []float32

	// BoundingRadius returns the model-space radius of the smallest
	// origin-centered sphere containing every vertex. Used for CPU frustum
	// culling.
	//
	// Returns:
	//   - float32: the bounding radius
	BoundingRadius() float32

	// NeedsTangents reports whether tangent generation applies: texture
	// coordinates present, tangents absent.
	//
	// Returns:
	//   - bool: true if GenerateTangents should run
	NeedsTangents() bool

	// GenerateTangents computes per-vertex tangents and bitangents from the
	// positions, normals, and texture coordinates. A no-op when
	// NeedsTangents is false.
	GenerateTangents()

	// Init allocates the GPU vertex array and buffers and uploads the
	// vertex data. Calling Init on an initialized mesh is a no-op.
	//
	// Parameters:
	//   - b: the rendering backend
	//
	// Returns:
	//   - error: an error if the mesh has no geometry
	Init(b backend.RendererBackend) error

	// UpdateVertexData replaces vertex arrays and marks the GPU mirror
	// stale. Nil arguments leave the corresponding array untouched.
	// Previously generated tangents are dropped when positions or texture
	// coordinates change.
	//
	// Parameters:
	//   - positions: new positions, or nil
	//   - normals: new normals, or nil
	//   - uvs: new texture coordinates, or nil
	UpdateVertexData(positions, normals, uvs []float32)

	// UploadVertexData re-uploads the vertex arrays to the GPU. A no-op
	// unless UpdateVertexData ran since the last upload.
	//
	// Parameters:
	//   - b: the rendering backend
	UploadVertexData(b backend.RendererBackend)

	// RetrieveAttribLocations resolves the mesh's attribute handles against
	// a program through the shared cache. Skipped entirely when the program
	// is unchanged since the previous call.
	//
	// Parameters:
	//   - cache: the shared shader resource cache
	//   - program: the program the mesh will be drawn with
	RetrieveAttribLocations(cache *shader.ShaderResourceCache, program backend.Program)

	// BindVertexAttribBuffers binds the vertex array and wires every
	// present attribute to its buffer. Requires RetrieveAttribLocations to
	// have run for the current program.
	//
	// Parameters:
	//   - b: the rendering backend
	BindVertexAttribBuffers(b backend.RendererBackend)

	// BindPositionAttrib binds the vertex array wiring only the position
	// buffer, for depth-only drawing with a caller-resolved attribute.
	//
	// Parameters:
	//   - b: the rendering backend
	//   - loc: the position attribute handle of the depth program
	BindPositionAttrib(b backend.RendererBackend, loc backend.AttribLocation)

	// Draw issues the indexed draw call for the mesh.
	//
	// Parameters:
	//   - b: the rendering backend
	Draw(b backend.RendererBackend)

	// Dispose releases the GPU vertex array and buffers.
	//
	// Parameters:
	//   - b: the rendering backend
	Dispose(b backend.RendererBackend)

	// Invalidate drops every GPU handle without issuing deletes, after the
	// environment reported a context loss. The vertex arrays stay intact;
	// Init must run against the rebuilt context before the next draw.
	Invalidate()
}

var _ Mesh = &meshImpl{}

// NewMesh creates a new Mesh from the provided options. Geometry is supplied
// through WithGeometry; a mesh without positions and indices fails Init.
//
// Parameters:
//   - options: functional options to configure the mesh
//
// Returns:
//   - Mesh: the newly created mesh
func NewMesh(options ...MeshBuilderOption) Mesh {
	m := &meshImpl{
		transform: transform.NewTransform(),
	}
	for _, option := range options {
		option(m)
	}
	m.boundingRadius = boundingRadius(m.positions)
	return m
}

func (m *meshImpl) Transform() transform.Transform {
	return m.transform
}

func (m *meshImpl) Material() material.Material {
	return m.material
}

func (m *meshImpl) ID() int32 {
	return m.id
}

func (m *meshImpl) SetID(id int32) {
	m.id = id
}

func (m *meshImpl) DebugProxy() bool {
	return m.debugProxy
}

func (m *meshImpl) Indices() []uint32 {
	return m.indices
}

func (m *meshImpl) Positions() []float32 {
	return m.positions
}

func (m *meshImpl) Normals() []float32 {
	return m.normals
}

func (m *meshImpl) UVs() []float32 {
	return m.uvs
}

func (m *meshImpl) Tangents() []float32 {
	return m.tangents
}

func (m *meshImpl) Bitangents() []float32 {
	return m.bitangents
}

func (m *meshImpl) BoundingRadius() float32 {
	return m.boundingRadius
}

func (m *meshImpl) NeedsTangents() bool {
	return len(m.uvs) > 0 && len(m.tangents) == 0
}

func (m *meshImpl) Init(b backend.RendererBackend) error {
	if m.initialized {
		return nil
	}
	if len(m.positions) == 0 || len(m.indices) == 0 {
		return fmt.Errorf("mesh %d has no geometry to upload", m.id)
	}

	m.vao = b.CreateVertexArray()
	b.BindVertexArray(m.vao)

	m.positionBuffer = b.CreateBuffer()
	b.BindArrayBuffer(m.positionBuffer)
	b.ArrayBufferData(m.positions, false)

	if len(m.normals) > 0 {
		m.normalBuffer = b.CreateBuffer()
		b.BindArrayBuffer(m.normalBuffer)
		b.ArrayBufferData(m.normals, false)
	}
	if len(m.uvs) > 0 {
		m.uvBuffer = b.CreateBuffer()
		b.BindArrayBuffer(m.uvBuffer)
		b.ArrayBufferData(m.uvs, false)
	}
	if len(m.tangents) > 0 {
		m.tangentBuffer = b.CreateBuffer()
		b.BindArrayBuffer(m.tangentBuffer)
		b.ArrayBufferData(m.tangents, false)
	}
	if len(m.bitangents) > 0 {
		m.bitangentBuffer = b.CreateBuffer()
		b.BindArrayBuffer(m.bitangentBuffer)
		b.ArrayBufferData(m.bitangents, false)
	}

	m.indexBuffer = b.CreateBuffer()
	b.BindElementArrayBuffer(m.indexBuffer)
	b.ElementArrayBufferData(m.indices, false)

	b.BindVertexArray(0)

	m.initialized = true
	m.vertexDataDirty = false
	return nil
}

func (m *meshImpl) UpdateVertexData(positions, normals, uvs []float32) {
	if positions != nil {
		m.positions = positions
		m.boundingRadius = boundingRadius(positions)
		m.tangents = nil
		m.bitangents = nil
	}
	if normals != nil {
		m.normals = normals
	}
	if uvs != nil {
		m.uvs = uvs
		m.tangents = nil
		m.bitangents = nil
	}
	m.vertexDataDirty = true
}

func (m *meshImpl) UploadVertexData(b backend.RendererBackend) {
	if !m.vertexDataDirty || !m.initialized {
		return
	}

	b.BindVertexArray(m.vao)

	b.BindArrayBuffer(m.positionBuffer)
	b.ArrayBufferData(m.positions, true)

	if m.normalBuffer != 0 && len(m.normals) > 0 {
		b.BindArrayBuffer(m.normalBuffer)
		b.ArrayBufferData(m.normals, true)
	}
	if m.uvBuffer != 0 && len(m.uvs) > 0 {
		b.BindArrayBuffer(m.uvBuffer)
		b.ArrayBufferData(m.uvs, true)
	}
	if m.tangentBuffer != 0 && len(m.tangents) > 0 {
		b.BindArrayBuffer(m.tangentBuffer)
		b.ArrayBufferData(m.tangents, true)
	}
	if m.bitangentBuffer != 0 && len(m.bitangents) > 0 {
		b.BindArrayBuffer(m.bitangentBuffer)
		b.ArrayBufferData(m.bitangents, true)
	}

	b.BindVertexArray(0)
	m.vertexDataDirty = false
}

func (m *meshImpl) RetrieveAttribLocations(cache *shader.ShaderResourceCache, program backend.Program) {
	if program == m.lastProgram {
		return
	}

	m.positionAttrib = cache.AttribLocation(program, "aPosition")
	m.normalAttrib = cache.AttribLocation(program, "aNormal")
	m.uvAttrib = cache.AttribLocation(program, "aTexCoord")
	m.tangentAttrib = cache.AttribLocation(program, "aTangent")
	m.bitangentAttrib = cache.AttribLocation(program, "aBitangent")
	m.lastProgram = program
}

func (m *meshImpl) BindVertexAttribBuffers(b backend.RendererBackend) {
	b.BindVertexArray(m.vao)

	if m.positionAttrib != backend.AbsentAttrib {
		b.BindArrayBuffer(m.positionBuffer)
		b.EnableVertexAttrib(m.positionAttrib, 3)
	}
	if m.normalAttrib != backend.AbsentAttrib && m.normalBuffer != 0 {
		b.BindArrayBuffer(m.normalBuffer)
		b.EnableVertexAttrib(m.normalAttrib, 3)
	}
	if m.uvAttrib != backend.AbsentAttrib && m.uvBuffer != 0 {
		b.BindArrayBuffer(m.uvBuffer)
		b.EnableVertexAttrib(m.uvAttrib, 2)
	}
	if m.tangentAttrib != backend.AbsentAttrib && m.tangentBuffer != 0 {
		b.BindArrayBuffer(m.tangentBuffer)
		b.EnableVertexAttrib(m.tangentAttrib, 3)
	}
	if m.bitangentAttrib != backend.AbsentAttrib && m.bitangentBuffer != 0 {
		b.BindArrayBuffer(m.bitangentBuffer)
		b.EnableVertexAttrib(m.bitangentAttrib, 3)
	}

	b.BindElementArrayBuffer(m.indexBuffer)
}

func (m *meshImpl) BindPositionAttrib(b backend.RendererBackend, loc backend.AttribLocation) {
	b.BindVertexArray(m.vao)
	if loc != backend.AbsentAttrib {
		b.BindArrayBuffer(m.positionBuffer)
		b.EnableVertexAttrib(loc, 3)
	}
	b.BindElementArrayBuffer(m.indexBuffer)
}

func (m *meshImpl) Draw(b backend.RendererBackend) {
	b.DrawIndexed(int32(len(m.indices)))
}

func (m *meshImpl) Dispose(b backend.RendererBackend) {
	if !m.initialized {
		return
	}

	b.DeleteBuffer(m.positionBuffer)
	if m.normalBuffer != 0 {
		b.DeleteBuffer(m.normalBuffer)
	}
	if m.uvBuffer != 0 {
		b.DeleteBuffer(m.uvBuffer)
	}
	if m.tangentBuffer != 0 {
		b.DeleteBuffer(m.tangentBuffer)
	}
	if m.bitangentBuffer != 0 {
		b.DeleteBuffer(m.bitangentBuffer)
	}
	b.DeleteBuffer(m.indexBuffer)
	b.DeleteVertexArray(m.vao)

	m.positionBuffer = 0
	m.normalBuffer = 0
	m.uvBuffer = 0
	m.tangentBuffer = 0
	m.bitangentBuffer = 0
	m.indexBuffer = 0
	m.vao = 0
	m.lastProgram = 0
	m.initialized = false
}

func (m *meshImpl) Invalidate() {
	m.vao = 0
	m.positionBuffer = 0
	m.normalBuffer = 0
	m.uvBuffer = 0
	m.tangentBuffer = 0
	m.bitangentBuffer = 0
	m.indexBuffer = 0
	m.lastProgram = 0
	m.initialized = false
}

// boundingRadius returns the length of the farthest vertex from the origin.
func boundingRadius(positions []float32) float32 {
	var maxSq float32
	for i := 0; i+2 < len(positions); i += 3 {
		sq := positions[i]*positions[i] + positions[i+1]*positions[i+1] + positions[i+2]*positions[i+2]
		if sq > maxSq {
			maxSq = sq
		}
	}
	return float32(math.Sqrt(float64(maxSq)))
}
