package loader

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/preload/engine/resources"
)

// FormatResolver reports which formats the running environment supports for
// a category, most preferred first. It is queried once per group and must
// yield exactly one result per call.
type FormatResolver interface {
	ResolveFormats(ctx context.Context, category resources.FormatCategory) ([]resources.Format, error)
}

// StaticResolver serves a fixed support table.
type StaticResolver map[resources.FormatCategory][]resources.Format

func (r StaticResolver) ResolveFormats(_ context.Context, category resources.FormatCategory) ([]resources.Format, error) {
	formats, ok := r[category]
	if !ok {
		return nil, fmt.Errorf("no format support table for category %s", category)
	}
	return slices.Clone(formats), nil
}

// DefaultResolver supports exactly what the built-in fetchers can handle.
// TGA is declared as a format but has no decoder, so it is absent here.
func DefaultResolver() StaticResolver {
	return StaticResolver{
		resources.CategoryTexture: {
			resources.FormatPNG, resources.FormatJPG, resources.FormatWEBP,
			resources.FormatBMP, resources.FormatTIFF,
		},
		resources.CategoryAudio: {
			resources.FormatOGG, resources.FormatMP3,
			resources.FormatWAV, resources.FormatFLAC,
		},
		resources.CategoryFile: {
			resources.FormatBinary, resources.FormatText,
			resources.FormatJSON, resources.FormatFont,
		},
	}
}

// CachedResolver memoizes another resolver so that many concurrent groups
// of the same category share one resolution.
type CachedResolver struct {
	inner FormatResolver
	mu    sync.Mutex
	cache map[resources.FormatCategory][]resources.Format
}

func NewCachedResolver(inner FormatResolver) *CachedResolver {
	return &CachedResolver{
		inner: inner,
		cache: make(map[resources.FormatCategory][]resources.Format),
	}
}

func (r *CachedResolver) ResolveFormats(ctx context.Context, category resources.FormatCategory) ([]resources.Format, error) {
	r.mu.Lock()
	if formats, ok := r.cache[category]; ok {
		r.mu.Unlock()
		return slices.Clone(formats), nil
	}
	r.mu.Unlock()

	formats, err := r.inner.ResolveFormats(ctx, category)
	if err != nil {
		return nil, err
	}

	r.mu.Lock()
	r.cache[category] = formats
	r.mu.Unlock()
	// Callers share the cache; hand each its own copy.
	return slices.Clone(formats), nil
}
