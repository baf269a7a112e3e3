package material

import (
	"sync"

	"github.com/quakesoft/qse"
	"github.com/quakesoft/qse/cache"
)

// TextureLoader is the abstract texture loader named in spec.md §6: "The
// core calls into an abstract texture loader to turn a material into a mip
// pyramid of texel records." No concrete image-decoding implementation
// lives in this module; callers supply one (a file-format reader, an
// embedded-asset reader, a procedural generator, ...).
type TextureLoader interface {
	LoadMipPyramid(m Material) (*MipPyramid, error)
}

// Registry holds every known Material by name plus a cache of the mip
// pyramids an external TextureLoader produces for them. Pyramid loads are
// deduplicated through a sharded cache so concurrent surface builds for the
// same material never race the loader (spec.md §4.8: surface building is
// worker-pool parallel per leaf).
type Registry struct {
	loader TextureLoader

	mu        sync.RWMutex
	materials map[string]*Material
	animTime  float64

	pyramids *cache.ShardedCache[string, *MipPyramid]
}

// Advance steps this registry's material animation clock by dt seconds
// (spec.md §4.8 step 2: "Update animated materials; step material time"),
// called once per frame by the orchestrator before surfaces are built.
func (r *Registry) Advance(dt float64) {
	r.mu.Lock()
	r.animTime += dt
	r.mu.Unlock()
}

// NewRegistry creates an empty registry backed by loader.
func NewRegistry(loader TextureLoader) *Registry {
	return &Registry{
		loader:    loader,
		materials: make(map[string]*Material),
		pyramids:  cache.NewSharded[string, *MipPyramid](cache.DefaultCapacity, cache.StringHasher),
	}
}

// Add registers or replaces a material definition.
func (r *Registry) Add(m Material) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := m
	r.materials[m.Name] = &cp
}

// AddAll registers every material in ms, keyed by its Name field.
func (r *Registry) AddAll(ms []Material) {
	for _, m := range ms {
		r.Add(m)
	}
}

// Lookup returns the material named name, or a logged stub substitute when
// absent (spec.md §7: "missing material substituted with a stub").
func (r *Registry) Lookup(name string) *Material {
	r.mu.RLock()
	m, ok := r.materials[name]
	r.mu.RUnlock()
	if ok {
		return m
	}
	qse.Logger().Warn("material: unknown material, substituting stub", "name", name)
	return stub(name)
}

// ActiveMaterial resolves name to the Material that should be sampled this
// frame: a material declaring AnimFrames cycles through them at AnimFPS
// against this registry's animation clock; anything else behaves like
// Lookup.
func (r *Registry) ActiveMaterial(name string) *Material {
	base := r.Lookup(name)
	if len(base.AnimFrames) == 0 || base.AnimFPS <= 0 {
		return base
	}
	r.mu.RLock()
	t := r.animTime
	r.mu.RUnlock()
	idx := int(t*base.AnimFPS) % len(base.AnimFrames)
	if idx < 0 {
		idx += len(base.AnimFrames)
	}
	return r.Lookup(base.AnimFrames[idx])
}

// MipPyramidFor returns the cached mip pyramid for the material named name,
// loading it through the registry's TextureLoader on first access. A failed
// load is never cached, so a transient loader error does not stick forever.
func (r *Registry) MipPyramidFor(name string) (*MipPyramid, error) {
	if pyr, ok := r.pyramids.Get(name); ok {
		return pyr, nil
	}
	m := r.Lookup(name)
	pyr, err := r.loader.LoadMipPyramid(*m)
	if err != nil {
		return nil, err
	}
	r.pyramids.Set(name, pyr)
	return pyr, nil
}

// Names returns every registered material name, for diagnostics and tests.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.materials))
	for n := range r.materials {
		out = append(out, n)
	}
	return out
}
