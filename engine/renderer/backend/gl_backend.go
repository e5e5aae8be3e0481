package backend

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v3.3-core/gl"

	"github.com/DarioCorno/skengio/common"
)

// glBackend is the OpenGL 3.3 core implementation of RendererBackend.
// A current GL context is required on the calling thread before Init.
type glBackend struct {
	initialized bool
	alive       int
}

var _ RendererBackend = &glBackend{}

// init registers the OpenGL backend on package import.
func init() {
	Register(BackendOpenGL, func() RendererBackend {
		return &glBackend{}
	})
}

// NewGLBackend creates a new OpenGL rendering backend.
//
// Returns:
//   - RendererBackend: the backend instance
func NewGLBackend() RendererBackend {
	return &glBackend{}
}

func (b *glBackend) Name() string {
	return BackendOpenGL
}

func (b *glBackend) Init() error {
	if b.initialized {
		return nil
	}
	if err := gl.Init(); err != nil {
		return fmt.Errorf("gl init: %w", err)
	}
	b.initialized = true
	return nil
}

func (b *glBackend) Close() {
	b.initialized = false
}

func (b *glBackend) CreateProgram(vertexSrc, fragmentSrc string) (Program, error) {
	vs, err := compileShader(gl.VERTEX_SHADER, vertexSrc)
	if err != nil {
		return 0, fmt.Errorf("vertex shader: %w", err)
	}
	fs, err := compileShader(gl.FRAGMENT_SHADER, fragmentSrc)
	if err != nil {
		gl.DeleteShader(vs)
		return 0, fmt.Errorf("fragment shader: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vs)
	gl.AttachShader(program, fs)
	gl.LinkProgram(program)

	// Shaders are owned by the program once linked.
	gl.DetachShader(program, vs)
	gl.DetachShader(program, fs)
	gl.DeleteShader(vs)
	gl.DeleteShader(fs)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(infoLog))
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("failed to link program: %s", strings.TrimRight(infoLog, "\x00"))
	}

	b.alive++
	return Program(program), nil
}

func (b *glBackend) DeleteProgram(p Program) {
	if p == 0 {
		return
	}
	gl.DeleteProgram(uint32(p))
	b.alive--
}

func (b *glBackend) UseProgram(p Program) {
	gl.UseProgram(uint32(p))
}

func (b *glBackend) GetUniformLocation(p Program, name string) UniformLocation {
	return UniformLocation(gl.GetUniformLocation(uint32(p), gl.Str(name+"\x00")))
}

func (b *glBackend) GetAttribLocation(p Program, name string) AttribLocation {
	return AttribLocation(gl.GetAttribLocation(uint32(p), gl.Str(name+"\x00")))
}

func (b *glBackend) Uniform1i(loc UniformLocation, v int32) {
	if loc == AbsentUniform {
		return
	}
	gl.Uniform1i(int32(loc), v)
}

func (b *glBackend) Uniform1f(loc UniformLocation, v float32) {
	if loc == AbsentUniform {
		return
	}
	gl.Uniform1f(int32(loc), v)
}

func (b *glBackend) Uniform2f(loc UniformLocation, x, y float32) {
	if loc == AbsentUniform {
		return
	}
	gl.Uniform2f(int32(loc), x, y)
}

func (b *glBackend) Uniform3f(loc UniformLocation, x, y, z float32) {
	if loc == AbsentUniform {
		return
	}
	gl.Uniform3f(int32(loc), x, y, z)
}

func (b *glBackend) Uniform4f(loc UniformLocation, x, y, z, w float32) {
	if loc == AbsentUniform {
		return
	}
	gl.Uniform4f(int32(loc), x, y, z, w)
}

func (b *glBackend) UniformMatrix4(loc UniformLocation, m []float32) {
	if loc == AbsentUniform {
		return
	}
	gl.UniformMatrix4fv(int32(loc), 1, false, &m[0])
}

func (b *glBackend) CreateVertexArray() VertexArray {
	var v uint32
	gl.GenVertexArrays(1, &v)
	b.alive++
	return VertexArray(v)
}

func (b *glBackend) BindVertexArray(v VertexArray) {
	gl.BindVertexArray(uint32(v))
}

func (b *glBackend) DeleteVertexArray(v VertexArray) {
	if v == 0 {
		return
	}
	u := uint32(v)
	gl.DeleteVertexArrays(1, &u)
	b.alive--
}

func (b *glBackend) CreateBuffer() Buffer {
	var buf uint32
	gl.GenBuffers(1, &buf)
	b.alive++
	return Buffer(buf)
}

func (b *glBackend) DeleteBuffer(buf Buffer) {
	if buf == 0 {
		return
	}
	u := uint32(buf)
	gl.DeleteBuffers(1, &u)
	b.alive--
}

func (b *glBackend) BindArrayBuffer(buf Buffer) {
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(buf))
}

func (b *glBackend) BindElementArrayBuffer(buf Buffer) {
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, uint32(buf))
}

func (b *glBackend) ArrayBufferData(data []float32, dynamic bool) {
	usage := uint32(gl.STATIC_DRAW)
	if dynamic {
		usage = gl.DYNAMIC_DRAW
	}
	gl.BufferData(gl.ARRAY_BUFFER, len(data)*4, gl.Ptr(data), usage)
}

func (b *glBackend) ArrayBufferSubData(offset int, data []float32) {
	gl.BufferSubData(gl.ARRAY_BUFFER, offset*4, len(data)*4, gl.Ptr(data))
}

func (b *glBackend) ElementArrayBufferData(data []uint32, dynamic bool) {
	usage := uint32(gl.STATIC_DRAW)
	if dynamic {
		usage = gl.DYNAMIC_DRAW
	}
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(data)*4, gl.Ptr(data), usage)
}

func (b *glBackend) EnableVertexAttrib(loc AttribLocation, size int32) {
	if loc == AbsentAttrib {
		return
	}
	gl.EnableVertexAttribArray(uint32(loc))
	gl.VertexAttribPointer(uint32(loc), size, gl.FLOAT, false, 0, gl.PtrOffset(0))
}

func (b *glBackend) DisableVertexAttrib(loc AttribLocation) {
	if loc == AbsentAttrib {
		return
	}
	gl.DisableVertexAttribArray(uint32(loc))
}

func (b *glBackend) CreateColorTexture(width, height int) (Texture, error) {
	var t uint32
	gl.GenTextures(1, &t)
	if t == 0 {
		return 0, fmt.Errorf("failed to allocate color texture")
	}
	gl.BindTexture(gl.TEXTURE_2D, t)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA16F, int32(width), int32(height), 0, gl.RGBA, gl.FLOAT, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	b.alive++
	return Texture(t), nil
}

func (b *glBackend) CreateDepthStencilTexture(width, height int) (Texture, error) {
	var t uint32
	gl.GenTextures(1, &t)
	if t == 0 {
		return 0, fmt.Errorf("failed to allocate depth-stencil texture")
	}
	gl.BindTexture(gl.TEXTURE_2D, t)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.DEPTH24_STENCIL8, int32(width), int32(height), 0, gl.DEPTH_STENCIL, gl.UNSIGNED_INT_24_8, nil)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	b.alive++
	return Texture(t), nil
}

func (b *glBackend) CreateImageTexture(data common.TextureData) (Texture, error) {
	if len(data.Pixels) == 0 || data.Width == 0 || data.Height == 0 {
		return 0, fmt.Errorf("empty texture data")
	}
	var t uint32
	gl.GenTextures(1, &t)
	if t == 0 {
		return 0, fmt.Errorf("failed to allocate image texture")
	}
	gl.BindTexture(gl.TEXTURE_2D, t)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(data.Width), int32(data.Height), 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(data.Pixels))
	gl.BindTexture(gl.TEXTURE_2D, 0)
	b.alive++
	return Texture(t), nil
}

func (b *glBackend) BindTextureUnit(unit int, t Texture) {
	gl.ActiveTexture(gl.TEXTURE0 + uint32(unit))
	gl.BindTexture(gl.TEXTURE_2D, uint32(t))
}

func (b *glBackend) DeleteTexture(t Texture) {
	if t == 0 {
		return
	}
	u := uint32(t)
	gl.DeleteTextures(1, &u)
	b.alive--
}

func (b *glBackend) CreateFramebuffer() Framebuffer {
	var f uint32
	gl.GenFramebuffers(1, &f)
	b.alive++
	return Framebuffer(f)
}

func (b *glBackend) BindFramebuffer(f Framebuffer) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(f))
}

func (b *glBackend) AttachColorTexture(index int, t Texture) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0+uint32(index), gl.TEXTURE_2D, uint32(t), 0)
}

func (b *glBackend) AttachDepthStencilTexture(t Texture) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.TEXTURE_2D, uint32(t), 0)
}

func (b *glBackend) SetDrawBuffers(count int) {
	bufs := make([]uint32, count)
	for i := range bufs {
		bufs[i] = gl.COLOR_ATTACHMENT0 + uint32(i)
	}
	gl.DrawBuffers(int32(count), &bufs[0])
}

func (b *glBackend) CheckFramebufferComplete() error {
	status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER)
	if status != gl.FRAMEBUFFER_COMPLETE {
		return fmt.Errorf("framebuffer incomplete: status 0x%x", status)
	}
	return nil
}

func (b *glBackend) DeleteFramebuffer(f Framebuffer) {
	if f == 0 {
		return
	}
	u := uint32(f)
	gl.DeleteFramebuffers(1, &u)
	b.alive--
}

func (b *glBackend) SetViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (b *glBackend) SetClearColor(r, g, bl, a float32) {
	gl.ClearColor(r, g, bl, a)
}

func (b *glBackend) Clear(color, depth, stencil bool) {
	var mask uint32
	if color {
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth {
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if stencil {
		mask |= gl.STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		gl.Clear(mask)
	}
}

func (b *glBackend) SetDepthTest(enabled bool) {
	if enabled {
		gl.Enable(gl.DEPTH_TEST)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}
}

func (b *glBackend) SetDepthFunc(fn DepthFunc) {
	switch fn {
	case DepthEqual:
		gl.DepthFunc(gl.EQUAL)
	case DepthLEqual:
		gl.DepthFunc(gl.LEQUAL)
	default:
		gl.DepthFunc(gl.LESS)
	}
}

func (b *glBackend) SetDepthWrite(enabled bool) {
	gl.DepthMask(enabled)
}

func (b *glBackend) SetColorWrite(enabled bool) {
	gl.ColorMask(enabled, enabled, enabled, enabled)
}

func (b *glBackend) SetStencilTest(enabled bool) {
	if enabled {
		gl.Enable(gl.STENCIL_TEST)
	} else {
		gl.Disable(gl.STENCIL_TEST)
	}
}

func (b *glBackend) SetStencilFunc(fn StencilFunc, ref int32) {
	switch fn {
	case StencilEqual:
		gl.StencilFunc(gl.EQUAL, ref, 0xFF)
	default:
		gl.StencilFunc(gl.ALWAYS, ref, 0xFF)
	}
}

func (b *glBackend) SetStencilOp(onPass StencilOp) {
	switch onPass {
	case StencilReplace:
		gl.StencilOp(gl.KEEP, gl.KEEP, gl.REPLACE)
	default:
		gl.StencilOp(gl.KEEP, gl.KEEP, gl.KEEP)
	}
}

func (b *glBackend) DrawIndexed(count int32) {
	gl.DrawElements(gl.TRIANGLES, count, gl.UNSIGNED_INT, gl.PtrOffset(0))
}

func (b *glBackend) DrawArrays(first, count int32) {
	gl.DrawArrays(gl.TRIANGLES, first, count)
}

func (b *glBackend) AliveObjects() int {
	return b.alive
}

// compileShader compiles a single shader stage, returning the driver info log
// on failure.
func compileShader(shaderType uint32, source string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)
		infoLog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(infoLog))
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("failed to compile shader: %s", strings.TrimRight(infoLog, "\x00"))
	}
	return shader, nil
}
