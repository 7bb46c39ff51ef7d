package graphics

import (
	"embed"
	"fmt"
	"path"
	"sync"
)

//go:embed shaders/*.vert shaders/*.frag
var shaderFiles embed.FS

// TransformUniform is the uniform every chunk program exposes for its transform.
const TransformUniform = "transformation_matrix"

// Program is a linked shader program plus its resolved uniform locations.
type Program struct {
	ID       uint32
	Name     string
	uniforms map[string]int32
}

// Uniform returns the location of a uniform resolved at link time, or -1.
func (p *Program) Uniform(name string) int32 {
	if p == nil {
		return -1
	}
	if loc, ok := p.uniforms[name]; ok {
		return loc
	}
	return -1
}

// ShaderProvider hands out compiled programs by renderer identifier and shader name.
type ShaderProvider interface {
	Program(identifier, name string) (*Program, error)
}

type programKey struct {
	identifier string
	name       string
}

// ShaderLibrary compiles the embedded shader sources on first request and caches
// the result per (identifier, name). Different identifiers stand for different
// GL contexts, so they never share program objects.
type ShaderLibrary struct {
	dev      Device
	mu       sync.Mutex
	programs map[programKey]*Program
	uniforms map[string][]string
}

// NewShaderLibrary creates a library compiling through dev.
func NewShaderLibrary(dev Device) *ShaderLibrary {
	return &ShaderLibrary{
		dev:      dev,
		programs: make(map[programKey]*Program),
		uniforms: map[string][]string{
			"render_chunk": {TransformUniform},
		},
	}
}

// Program returns the program called name for the given identifier, compiling it if needed.
func (l *ShaderLibrary) Program(identifier, name string) (*Program, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	key := programKey{identifier: identifier, name: name}
	if p, ok := l.programs[key]; ok {
		return p, nil
	}

	vertexSrc, err := shaderFiles.ReadFile(path.Join("shaders", name+".vert"))
	if err != nil {
		return nil, fmt.Errorf("could not read vertex shader %q: %w", name, err)
	}
	fragmentSrc, err := shaderFiles.ReadFile(path.Join("shaders", name+".frag"))
	if err != nil {
		return nil, fmt.Errorf("could not read fragment shader %q: %w", name, err)
	}

	id, err := l.dev.CompileProgram(string(vertexSrc), string(fragmentSrc))
	if err != nil {
		return nil, fmt.Errorf("shader %q: %w", name, err)
	}

	p := &Program{ID: id, Name: name, uniforms: make(map[string]int32)}
	for _, u := range l.uniforms[name] {
		p.uniforms[u] = l.dev.UniformLocation(id, u)
	}
	l.programs[key] = p
	return p, nil
}

// Release deletes every program compiled for identifier.
func (l *ShaderLibrary) Release(identifier string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, p := range l.programs {
		if key.identifier != identifier {
			continue
		}
		l.dev.DeleteProgram(p.ID)
		delete(l.programs, key)
	}
}
