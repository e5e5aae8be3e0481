package backend

import (
	"fmt"

	"github.com/DarioCorno/skengio/common"
)

// RecordingBackend is a CPU-only RendererBackend that fabricates handles and
// counts every call by method name. It backs headless runs and the
// upload/query accounting that the pipeline's observable contracts lean on:
// a test can assert that a cached uniform handle triggered exactly one driver
// query or that an unchanged light produced zero uploads on the second frame.
type RecordingBackend struct {
	initialized bool
	nextHandle  uint32
	alive       int

	calls map[string]int

	// uniformNames maps resolved locations back to their uniform names so
	// uploads can be counted per name.
	uniformNames map[UniformLocation]string
	// uniformLocs maps (program, name) to stable locations across repeated queries.
	uniformLocs map[string]UniformLocation
	attribLocs  map[string]AttribLocation
	uploads     map[string]int

	absentUniforms map[string]bool
	absentAttribs  map[string]bool

	// FailFramebuffer forces CheckFramebufferComplete to report an error.
	FailFramebuffer bool

	// FailProgram forces CreateProgram to report a link error.
	FailProgram bool
}

var _ RendererBackend = &RecordingBackend{}

// init registers the recording backend on package import.
func init() {
	Register(BackendRecording, func() RendererBackend {
		return NewRecordingBackend()
	})
}

// NewRecordingBackend creates a new recording backend with empty counters.
//
// Returns:
//   - *RecordingBackend: the backend instance
func NewRecordingBackend() *RecordingBackend {
	return &RecordingBackend{
		nextHandle:     1,
		calls:          make(map[string]int),
		uniformNames:   make(map[UniformLocation]string),
		uniformLocs:    make(map[string]UniformLocation),
		attribLocs:     make(map[string]AttribLocation),
		uploads:        make(map[string]int),
		absentUniforms: make(map[string]bool),
		absentAttribs:  make(map[string]bool),
	}
}

// Calls returns how many times the named backend method was invoked.
//
// Parameters:
//   - method: the method name (e.g. "GetUniformLocation")
//
// Returns:
//   - int: the call count
func (b *RecordingBackend) Calls(method string) int {
	return b.calls[method]
}

// UniformUploads returns how many values were uploaded to the named uniform.
// Uploads to absent uniforms are never counted.
//
// Parameters:
//   - name: the uniform name as resolved via GetUniformLocation
//
// Returns:
//   - int: the upload count
func (b *RecordingBackend) UniformUploads(name string) int {
	return b.uploads[name]
}

// ResetCounters clears call and upload counters while keeping resolved
// locations and live objects intact. Use between frames to isolate counts.
func (b *RecordingBackend) ResetCounters() {
	b.calls = make(map[string]int)
	b.uploads = make(map[string]int)
}

// MarkUniformAbsent makes GetUniformLocation return AbsentUniform for the
// given name, mimicking a program that does not use it.
//
// Parameters:
//   - name: the uniform name to treat as absent
func (b *RecordingBackend) MarkUniformAbsent(name string) {
	b.absentUniforms[name] = true
}

// MarkAttribAbsent makes GetAttribLocation return AbsentAttrib for the
// given name.
//
// Parameters:
//   - name: the attribute name to treat as absent
func (b *RecordingBackend) MarkAttribAbsent(name string) {
	b.absentAttribs[name] = true
}

func (b *RecordingBackend) record(method string) {
	b.calls[method]++
}

func (b *RecordingBackend) handle() uint32 {
	h := b.nextHandle
	b.nextHandle++
	return h
}

func (b *RecordingBackend) Name() string {
	return BackendRecording
}

func (b *RecordingBackend) Init() error {
	b.record("Init")
	b.initialized = true
	return nil
}

func (b *RecordingBackend) Close() {
	b.record("Close")
	b.initialized = false
}

func (b *RecordingBackend) CreateProgram(vertexSrc, fragmentSrc string) (Program, error) {
	b.record("CreateProgram")
	if b.FailProgram {
		return 0, fmt.Errorf("failed to link program: forced failure")
	}
	b.alive++
	return Program(b.handle()), nil
}

func (b *RecordingBackend) DeleteProgram(p Program) {
	b.record("DeleteProgram")
	if p != 0 {
		b.alive--
	}
}

func (b *RecordingBackend) UseProgram(p Program) {
	b.record("UseProgram")
}

func (b *RecordingBackend) GetUniformLocation(p Program, name string) UniformLocation {
	b.record("GetUniformLocation")
	if b.absentUniforms[name] {
		return AbsentUniform
	}
	key := fmt.Sprintf("%d/%s", p, name)
	if loc, ok := b.uniformLocs[key]; ok {
		return loc
	}
	loc := UniformLocation(b.handle())
	b.uniformLocs[key] = loc
	b.uniformNames[loc] = name
	return loc
}

func (b *RecordingBackend) GetAttribLocation(p Program, name string) AttribLocation {
	b.record("GetAttribLocation")
	if b.absentAttribs[name] {
		return AbsentAttrib
	}
	key := fmt.Sprintf("%d/%s", p, name)
	if loc, ok := b.attribLocs[key]; ok {
		return loc
	}
	loc := AttribLocation(b.handle())
	b.attribLocs[key] = loc
	return loc
}

func (b *RecordingBackend) uniformUpload(loc UniformLocation) {
	if loc == AbsentUniform {
		return
	}
	if name, ok := b.uniformNames[loc]; ok {
		b.uploads[name]++
	}
}

func (b *RecordingBackend) Uniform1i(loc UniformLocation, v int32) {
	b.record("Uniform1i")
	b.uniformUpload(loc)
}

func (b *RecordingBackend) Uniform1f(loc UniformLocation, v float32) {
	b.record("Uniform1f")
	b.uniformUpload(loc)
}

func (b *RecordingBackend) Uniform2f(loc UniformLocation, x, y float32) {
	b.record("Uniform2f")
	b.uniformUpload(loc)
}

func (b *RecordingBackend) Uniform3f(loc UniformLocation, x, y, z float32) {
	b.record("Uniform3f")
	b.uniformUpload(loc)
}

func (b *RecordingBackend) Uniform4f(loc UniformLocation, x, y, z, w float32) {
	b.record("Uniform4f")
	b.uniformUpload(loc)
}

func (b *RecordingBackend) UniformMatrix4(loc UniformLocation, m []float32) {
	b.record("UniformMatrix4")
	b.uniformUpload(loc)
}

func (b *RecordingBackend) CreateVertexArray() VertexArray {
	b.record("CreateVertexArray")
	b.alive++
	return VertexArray(b.handle())
}

func (b *RecordingBackend) BindVertexArray(v VertexArray) {
	b.record("BindVertexArray")
}

func (b *RecordingBackend) DeleteVertexArray(v VertexArray) {
	b.record("DeleteVertexArray")
	if v != 0 {
		b.alive--
	}
}

func (b *RecordingBackend) CreateBuffer() Buffer {
	b.record("CreateBuffer")
	b.alive++
	return Buffer(b.handle())
}

func (b *RecordingBackend) DeleteBuffer(buf Buffer) {
	b.record("DeleteBuffer")
	if buf != 0 {
		b.alive--
	}
}

func (b *RecordingBackend) BindArrayBuffer(buf Buffer) {
	b.record("BindArrayBuffer")
}

func (b *RecordingBackend) BindElementArrayBuffer(buf Buffer) {
	b.record("BindElementArrayBuffer")
}

func (b *RecordingBackend) ArrayBufferData(data []float32, dynamic bool) {
	b.record("ArrayBufferData")
}

func (b *RecordingBackend) ArrayBufferSubData(offset int, data []float32) {
	b.record("ArrayBufferSubData")
}

func (b *RecordingBackend) ElementArrayBufferData(data []uint32, dynamic bool) {
	b.record("ElementArrayBufferData")
}

func (b *RecordingBackend) EnableVertexAttrib(loc AttribLocation, size int32) {
	b.record("EnableVertexAttrib")
}

func (b *RecordingBackend) DisableVertexAttrib(loc AttribLocation) {
	b.record("DisableVertexAttrib")
}

func (b *RecordingBackend) CreateColorTexture(width, height int) (Texture, error) {
	b.record("CreateColorTexture")
	b.alive++
	return Texture(b.handle()), nil
}

func (b *RecordingBackend) CreateDepthStencilTexture(width, height int) (Texture, error) {
	b.record("CreateDepthStencilTexture")
	b.alive++
	return Texture(b.handle()), nil
}

func (b *RecordingBackend) CreateImageTexture(data common.TextureData) (Texture, error) {
	b.record("CreateImageTexture")
	if len(data.Pixels) == 0 || data.Width == 0 || data.Height == 0 {
		return 0, fmt.Errorf("empty texture data")
	}
	b.alive++
	return Texture(b.handle()), nil
}

func (b *RecordingBackend) BindTextureUnit(unit int, t Texture) {
	b.record("BindTextureUnit")
}

func (b *RecordingBackend) DeleteTexture(t Texture) {
	b.record("DeleteTexture")
	if t != 0 {
		b.alive--
	}
}

func (b *RecordingBackend) CreateFramebuffer() Framebuffer {
	b.record("CreateFramebuffer")
	b.alive++
	return Framebuffer(b.handle())
}

func (b *RecordingBackend) BindFramebuffer(f Framebuffer) {
	b.record("BindFramebuffer")
}

func (b *RecordingBackend) AttachColorTexture(index int, t Texture) {
	b.record("AttachColorTexture")
}

func (b *RecordingBackend) AttachDepthStencilTexture(t Texture) {
	b.record("AttachDepthStencilTexture")
}

func (b *RecordingBackend) SetDrawBuffers(count int) {
	b.record("SetDrawBuffers")
}

func (b *RecordingBackend) CheckFramebufferComplete() error {
	b.record("CheckFramebufferComplete")
	if b.FailFramebuffer {
		return fmt.Errorf("framebuffer incomplete: forced failure")
	}
	return nil
}

func (b *RecordingBackend) DeleteFramebuffer(f Framebuffer) {
	b.record("DeleteFramebuffer")
	if f != 0 {
		b.alive--
	}
}

func (b *RecordingBackend) SetViewport(width, height int) {
	b.record("SetViewport")
}

func (b *RecordingBackend) SetClearColor(r, g, bl, a float32) {
	b.record("SetClearColor")
}

func (b *RecordingBackend) Clear(color, depth, stencil bool) {
	b.record("Clear")
}

func (b *RecordingBackend) SetDepthTest(enabled bool) {
	b.record("SetDepthTest")
}

func (b *RecordingBackend) SetDepthFunc(fn DepthFunc) {
	b.record("SetDepthFunc")
}

func (b *RecordingBackend) SetDepthWrite(enabled bool) {
	b.record("SetDepthWrite")
}

func (b *RecordingBackend) SetColorWrite(enabled bool) {
	b.record("SetColorWrite")
}

func (b *RecordingBackend) SetStencilTest(enabled bool) {
	b.record("SetStencilTest")
}

func (b *RecordingBackend) SetStencilFunc(fn StencilFunc, ref int32) {
	b.record("SetStencilFunc")
}

func (b *RecordingBackend) SetStencilOp(onPass StencilOp) {
	b.record("SetStencilOp")
}

func (b *RecordingBackend) DrawIndexed(count int32) {
	b.record("DrawIndexed")
}

func (b *RecordingBackend) DrawArrays(first, count int32) {
	b.record("DrawArrays")
}

func (b *RecordingBackend) AliveObjects() int {
	return b.alive
}
