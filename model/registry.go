package model

import (
	"github.com/quakesoft/qse"
	"github.com/quakesoft/qse/cache"
)

// Registry loads and caches Models by name, deduplicating concurrent
// loads for the same name the same way material.Registry deduplicates mip
// pyramid loads: a load miss populates a sharded cache so no two
// concurrent callers (dynamic-mesh preparation runs worker-pool parallel,
// spec.md §4.8 step 6) hit the Loader for the same name twice.
type Registry struct {
	loader Loader
	models *cache.ShardedCache[string, *Model]
}

// NewRegistry creates a registry backed by loader.
func NewRegistry(loader Loader) *Registry {
	return &Registry{
		loader: loader,
		models: cache.NewSharded[string, *Model](cache.DefaultCapacity, cache.StringHasher),
	}
}

// Get returns the cached Model named name, loading it through the
// registry's Loader on first access. A missing or malformed model logs
// once and substitutes a stub (spec.md §7: "Resource missing... substitute
// stub... identity model"); a failed load is never cached, so a
// transient loader error does not stick forever.
func (r *Registry) Get(name string) *Model {
	if m, ok := r.models.Get(name); ok {
		return m
	}
	m, err := r.loader.Load(name)
	if err != nil {
		qse.Logger().Warn("model: load failed, substituting stub", "name", name, "error", err)
		return stubModel()
	}
	r.models.Set(name, m)
	return m
}

// stubModel is the "identity model" spec.md §7 names: a single
// degenerate triangle so a missing/broken model asset renders nothing
// instead of crashing the per-mesh preparation pipeline.
func stubModel() *Model {
	return &Model{
		Meshes: []Mesh{{
			Kind: Static,
			Vertices: []Vertex{
				{}, {}, {},
			},
			Triangles: []Triangle{{A: 0, B: 1, C: 2}},
		}},
		FrameInfos: []FrameInfo{{}},
	}
}
