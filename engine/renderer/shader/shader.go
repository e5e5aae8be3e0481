// Package shader wraps linked GPU programs and caches resolved shader
// parameter handles. Resolving a uniform or attribute location is a driver
// query; re-resolving every frame for every mesh and light is the dominant
// avoidable cost in a naive renderer, so the cache stores each handle on
// first miss and serves it from memory afterwards.
package shader

import (
	"fmt"
	"log"

	"github.com/DarioCorno/skengio/engine/renderer/backend"
)

// Program is a linked vertex+fragment shader program.
type Program struct {
	handle backend.Program
}

// NewProgram compiles and links a program from GLSL sources.
//
// Parameters:
//   - b: the rendering backend
//   - vertexSrc: the vertex shader source
//   - fragmentSrc: the fragment shader source
//
// Returns:
//   - *Program: the linked program
//   - error: compile or link failure including the driver info log
func NewProgram(b backend.RendererBackend, vertexSrc, fragmentSrc string) (*Program, error) {
	handle, err := b.CreateProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, fmt.Errorf("failed to build shader program: %w", err)
	}
	return &Program{handle: handle}, nil
}

// Handle returns the backend program handle.
//
// Returns:
//   - backend.Program: the program handle
func (p *Program) Handle() backend.Program {
	return p.handle
}

// Use makes the program current for subsequent uniform uploads and draws.
//
// Parameters:
//   - b: the rendering backend
func (p *Program) Use(b backend.RendererBackend) {
	b.UseProgram(p.handle)
}

// Dispose releases the program and evicts its cached handles. The cache
// entries must go with the program: a recreated program may assign different
// locations to the same names.
//
// Parameters:
//   - b: the rendering backend
//   - cache: the resource cache holding this program's handles, may be nil
func (p *Program) Dispose(b backend.RendererBackend, cache *ShaderResourceCache) {
	if cache != nil {
		cache.ClearProgramCache(p.handle)
	}
	b.DeleteProgram(p.handle)
	p.handle = 0
}

type uniformKey struct {
	program backend.Program
	name    string
}

type attribKey struct {
	program backend.Program
	name    string
}

// ShaderResourceCache caches resolved uniform and attribute handles per
// (program, name) pair. It is owned by the renderer and injected into each
// pass; all access happens from the single render thread.
//
// A name the program does not use resolves to the backend's absent sentinel,
// which is cached like any other handle — the miss is logged once and uploads
// to it are silently skipped downstream.
type ShaderResourceCache struct {
	backend  backend.RendererBackend
	uniforms map[uniformKey]backend.UniformLocation
	attribs  map[attribKey]backend.AttribLocation
}

// NewShaderResourceCache creates an empty cache resolving through the given
// backend.
//
// Parameters:
//   - b: the rendering backend used for driver queries
//
// Returns:
//   - *ShaderResourceCache: the new cache
func NewShaderResourceCache(b backend.RendererBackend) *ShaderResourceCache {
	return &ShaderResourceCache{
		backend:  b,
		uniforms: make(map[uniformKey]backend.UniformLocation),
		attribs:  make(map[attribKey]backend.AttribLocation),
	}
}

// UniformLocation returns the cached handle for a named uniform, resolving
// and storing it on first miss.
//
// Parameters:
//   - program: the program to resolve against
//   - name: the uniform name
//
// Returns:
//   - backend.UniformLocation: the handle, or backend.AbsentUniform
func (c *ShaderResourceCache) UniformLocation(program backend.Program, name string) backend.UniformLocation {
	key := uniformKey{program: program, name: name}
	if loc, ok := c.uniforms[key]; ok {
		return loc
	}
	loc := c.backend.GetUniformLocation(program, name)
	if loc == backend.AbsentUniform {
		log.Printf("shader: uniform %q not found in program %d", name, program)
	}
	c.uniforms[key] = loc
	return loc
}

// AttribLocation returns the cached handle for a named vertex attribute,
// resolving and storing it on first miss.
//
// Parameters:
//   - program: the program to resolve against
//   - name: the attribute name
//
// Returns:
//   - backend.AttribLocation: the handle, or backend.AbsentAttrib
func (c *ShaderResourceCache) AttribLocation(program backend.Program, name string) backend.AttribLocation {
	key := attribKey{program: program, name: name}
	if loc, ok := c.attribs[key]; ok {
		return loc
	}
	loc := c.backend.GetAttribLocation(program, name)
	if loc == backend.AbsentAttrib {
		log.Printf("shader: attribute %q not found in program %d", name, program)
	}
	c.attribs[key] = loc
	return loc
}

// UniformLocations batch-resolves a set of uniform names, warming the cache.
//
// Parameters:
//   - program: the program to resolve against
//   - names: the uniform names to resolve
//
// Returns:
//   - []backend.UniformLocation: handles in the same order as names
func (c *ShaderResourceCache) UniformLocations(program backend.Program, names []string) []backend.UniformLocation {
	locs := make([]backend.UniformLocation, len(names))
	for i, name := range names {
		locs[i] = c.UniformLocation(program, name)
	}
	return locs
}

// CacheStructuredUniforms resolves array-of-struct uniform handles of the
// form arrayName[i].field for i in [0, count), warming the cache for uniform
// arrays whose element count varies per scene (the light array).
//
// Parameters:
//   - program: the program to resolve against
//   - arrayName: the uniform array name
//   - fieldNames: the struct field names
//   - count: the number of array elements to resolve
func (c *ShaderResourceCache) CacheStructuredUniforms(program backend.Program, arrayName string, fieldNames []string, count int) {
	for i := 0; i < count; i++ {
		for _, field := range fieldNames {
			c.UniformLocation(program, structuredName(arrayName, i, field))
		}
	}
}

// StructuredUniform returns the handle for an array-of-struct uniform element
// field, resolving on miss.
//
// Parameters:
//   - program: the program to resolve against
//   - arrayName: the uniform array name
//   - index: the array element index
//   - field: the struct field name
//
// Returns:
//   - backend.UniformLocation: the handle, or backend.AbsentUniform
func (c *ShaderResourceCache) StructuredUniform(program backend.Program, arrayName string, index int, field string) backend.UniformLocation {
	return c.UniformLocation(program, structuredName(arrayName, index, field))
}

// ClearProgramCache evicts every handle tied to a program. Must be called
// when the program is disposed or the context is rebuilt.
//
// Parameters:
//   - program: the program whose entries are dropped
func (c *ShaderResourceCache) ClearProgramCache(program backend.Program) {
	for key := range c.uniforms {
		if key.program == program {
			delete(c.uniforms, key)
		}
	}
	for key := range c.attribs {
		if key.program == program {
			delete(c.attribs, key)
		}
	}
}

func structuredName(arrayName string, index int, field string) string {
	return fmt.Sprintf("%s[%d].%s", arrayName, index, field)
}
