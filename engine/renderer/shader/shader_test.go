package shader

import (
	"testing"

	"github.com/DarioCorno/skengio/engine/renderer/backend"
)

func TestUniformLocationCachesAfterFirstQuery(t *testing.T) {
	b := backend.NewRecordingBackend()
	cache := NewShaderResourceCache(b)
	program := backend.Program(1)

	first := cache.UniformLocation(program, "uProjectionMatrix")
	queries := b.Calls("GetUniformLocation")
	if queries != 1 {
		t.Fatalf("first lookup issued %d driver queries, want 1", queries)
	}

	second := cache.UniformLocation(program, "uProjectionMatrix")
	if second != first {
		t.Errorf("repeated lookup returned %d, want %d", second, first)
	}
	if b.Calls("GetUniformLocation") != 1 {
		t.Error("repeated lookup hit the driver again")
	}
}

func TestAbsentUniformIsCachedToo(t *testing.T) {
	b := backend.NewRecordingBackend()
	b.MarkUniformAbsent("uMissing")
	cache := NewShaderResourceCache(b)
	program := backend.Program(1)

	if loc := cache.UniformLocation(program, "uMissing"); loc != backend.AbsentUniform {
		t.Fatalf("absent uniform resolved to %d, want %d", loc, backend.AbsentUniform)
	}
	cache.UniformLocation(program, "uMissing")
	if got := b.Calls("GetUniformLocation"); got != 1 {
		t.Errorf("absent uniform re-queried: %d driver queries, want 1", got)
	}
}

func TestSameNameDifferentProgramsResolveSeparately(t *testing.T) {
	b := backend.NewRecordingBackend()
	cache := NewShaderResourceCache(b)

	a := cache.UniformLocation(backend.Program(1), "uViewMatrix")
	c := cache.UniformLocation(backend.Program(2), "uViewMatrix")
	if a == c {
		t.Error("two programs share one cached handle for the same name")
	}
	if got := b.Calls("GetUniformLocation"); got != 2 {
		t.Errorf("expected one query per program, got %d", got)
	}
}

func TestUniformLocationsBatchWarmUp(t *testing.T) {
	b := backend.NewRecordingBackend()
	cache := NewShaderResourceCache(b)
	program := backend.Program(1)
	names := []string{"uNearPlane", "uFarPlane", "uCameraPosition"}

	locs := cache.UniformLocations(program, names)
	if len(locs) != len(names) {
		t.Fatalf("got %d handles for %d names", len(locs), len(names))
	}

	// Warm-up means every later per-name lookup is free.
	b.ResetCounters()
	for _, name := range names {
		cache.UniformLocation(program, name)
	}
	if got := b.Calls("GetUniformLocation"); got != 0 {
		t.Errorf("lookups after warm-up issued %d driver queries, want 0", got)
	}
}

func TestStructuredUniformNaming(t *testing.T) {
	b := backend.NewRecordingBackend()
	cache := NewShaderResourceCache(b)
	program := backend.Program(1)

	cache.CacheStructuredUniforms(program, "uLights", LightFieldNames, 2)

	b.ResetCounters()
	loc := cache.StructuredUniform(program, "uLights", 1, "uLightColor")
	if b.Calls("GetUniformLocation") != 0 {
		t.Error("structured uniform missed the warm cache")
	}

	// The cached handle must be the one the driver assigned to the exact
	// composed name.
	direct := cache.UniformLocation(program, "uLights[1].uLightColor")
	if loc != direct {
		t.Errorf("StructuredUniform handle %d != direct lookup %d", loc, direct)
	}
}

func TestClearProgramCacheEvictsOnlyThatProgram(t *testing.T) {
	b := backend.NewRecordingBackend()
	cache := NewShaderResourceCache(b)

	cache.UniformLocation(backend.Program(1), "uViewMatrix")
	cache.UniformLocation(backend.Program(2), "uViewMatrix")
	cache.AttribLocation(backend.Program(1), "aPosition")

	cache.ClearProgramCache(backend.Program(1))

	b.ResetCounters()
	cache.UniformLocation(backend.Program(1), "uViewMatrix")
	if b.Calls("GetUniformLocation") != 1 {
		t.Error("evicted entry was not re-resolved")
	}

	b.ResetCounters()
	cache.UniformLocation(backend.Program(2), "uViewMatrix")
	if b.Calls("GetUniformLocation") != 0 {
		t.Error("eviction of program 1 dropped program 2's entry")
	}
}

func TestProgramDisposeClearsCache(t *testing.T) {
	b := backend.NewRecordingBackend()
	cache := NewShaderResourceCache(b)

	p, err := NewProgram(b, "vertex", "fragment")
	if err != nil {
		t.Fatalf("NewProgram: %v", err)
	}
	handle := p.Handle()
	cache.UniformLocation(handle, "uDebugMode")

	p.Dispose(b, cache)

	b.ResetCounters()
	cache.UniformLocation(handle, "uDebugMode")
	if b.Calls("GetUniformLocation") != 1 {
		t.Error("Dispose left stale cache entries for the program")
	}
	if got := b.AliveObjects(); got != 0 {
		t.Errorf("%d GPU objects alive after Dispose, want 0", got)
	}
}

func TestProgramBuildFailureSurfacesError(t *testing.T) {
	b := backend.NewRecordingBackend()
	b.FailProgram = true

	if _, err := NewProgram(b, "vertex", "fragment"); err == nil {
		t.Error("link failure did not surface as an error")
	}
}
