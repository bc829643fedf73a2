package resources

import (
	"errors"
	"fmt"
	"path"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/exp/slices"
)

// ErrMissingResource is returned by required lookups that find nothing.
var ErrMissingResource = errors.New("resource not found")

// Pack is the bundle of loaded resources, partitioned by category. The load
// orchestrator writes it while a run is in flight; once the run succeeds it
// is frozen and consumers treat it as read-only. A name lives in at most one
// partition.
type Pack struct {
	mu       sync.RWMutex
	textures map[string]*Texture
	sounds   map[string]*Sound
	files    map[string]*File
	frozen   bool
	logger   *log.Logger
}

func NewPack(logger *log.Logger) *Pack {
	return &Pack{
		textures: make(map[string]*Texture),
		sounds:   make(map[string]*Sound),
		files:    make(map[string]*File),
		logger:   logger,
	}
}

// GetTexture returns the texture under name. With required set, a miss is an
// error wrapping ErrMissingResource; otherwise it returns nil silently.
func (p *Pack) GetTexture(name string, required bool) (*Texture, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	t, ok := p.textures[name]
	if !ok {
		return nil, p.miss(name, required)
	}
	return t, nil
}

// GetSound returns the sound under name, which may be the silent placeholder.
func (p *Pack) GetSound(name string, required bool) (*Sound, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, ok := p.sounds[name]
	if !ok {
		return nil, p.miss(name, required)
	}
	return s, nil
}

// GetFile returns the raw file resource under name.
func (p *Pack) GetFile(name string, required bool) (*File, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	f, ok := p.files[name]
	if !ok {
		return nil, p.miss(name, required)
	}
	return f, nil
}

func (p *Pack) miss(name string, required bool) error {
	// Callers sometimes query "hero.png" when the manifest names the
	// resource "hero". Diagnostic only; the lookup result is unchanged.
	if ext := strings.TrimPrefix(path.Ext(name), "."); ext != "" && CategoryOf(Format(ext)) != CategoryNone {
		p.logger.Warn("resource name looks like it includes a file extension", "name", name)
	}
	if !required {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingResource, name)
}

// Put inserts a resource into the partition matching its kind. Only the load
// orchestrator calls it.
func (p *Pack) Put(name string, res Resource) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.frozen {
		return fmt.Errorf("pack is frozen: cannot insert %q", name)
	}
	if _, ok := p.lookupLocked(name); ok {
		return fmt.Errorf("duplicate resource name %q", name)
	}
	switch r := res.(type) {
	case *Texture:
		p.textures[name] = r
	case *Sound:
		p.sounds[name] = r
	case *File:
		p.files[name] = r
	default:
		return fmt.Errorf("unknown resource kind for %q", name)
	}
	return nil
}

// Lookup searches every partition for name.
func (p *Pack) Lookup(name string) (Resource, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lookupLocked(name)
}

func (p *Pack) lookupLocked(name string) (Resource, bool) {
	if t, ok := p.textures[name]; ok {
		return t, true
	}
	if s, ok := p.sounds[name]; ok {
		return s, true
	}
	if f, ok := p.files[name]; ok {
		return f, true
	}
	return nil, false
}

// Freeze marks the pack read-only. Hot reload still swaps content in place
// through the Resource capability, but the name set is final.
func (p *Pack) Freeze() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.frozen = true
}

// Len reports the number of loaded resources across all partitions.
func (p *Pack) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.textures) + len(p.sounds) + len(p.files)
}

// Names returns every loaded resource name, sorted.
func (p *Pack) Names() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	names := make([]string, 0, len(p.textures)+len(p.sounds)+len(p.files))
	for n := range p.textures {
		names = append(names, n)
	}
	for n := range p.sounds {
		names = append(names, n)
	}
	for n := range p.files {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}
