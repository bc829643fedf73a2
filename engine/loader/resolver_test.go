package loader

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/preload/engine/resources"
)

type countingResolver struct {
	calls int32
	inner FormatResolver
}

func (r *countingResolver) ResolveFormats(ctx context.Context, category resources.FormatCategory) ([]resources.Format, error) {
	atomic.AddInt32(&r.calls, 1)
	return r.inner.ResolveFormats(ctx, category)
}

func TestCachedResolverQueriesInnerOncePerCategory(t *testing.T) {
	counting := &countingResolver{inner: DefaultResolver()}
	cached := NewCachedResolver(counting)

	for i := 0; i < 3; i++ {
		formats, err := cached.ResolveFormats(context.Background(), resources.CategoryTexture)
		require.NoError(t, err)
		assert.NotEmpty(t, formats)
	}
	_, err := cached.ResolveFormats(context.Background(), resources.CategoryAudio)
	require.NoError(t, err)

	assert.Equal(t, int32(2), atomic.LoadInt32(&counting.calls))
}

func TestCachedResolverHandsOutCopies(t *testing.T) {
	cached := NewCachedResolver(DefaultResolver())

	first, err := cached.ResolveFormats(context.Background(), resources.CategoryTexture)
	require.NoError(t, err)
	first[0] = resources.FormatTGA

	second, err := cached.ResolveFormats(context.Background(), resources.CategoryTexture)
	require.NoError(t, err)
	assert.Equal(t, resources.FormatPNG, second[0])
}

func TestStaticResolverUnknownCategory(t *testing.T) {
	r := StaticResolver{}
	_, err := r.ResolveFormats(context.Background(), resources.CategoryTexture)
	assert.Error(t, err)
}

func TestDefaultResolverOmitsTGA(t *testing.T) {
	formats, err := DefaultResolver().ResolveFormats(context.Background(), resources.CategoryTexture)
	require.NoError(t, err)
	assert.NotContains(t, formats, resources.FormatTGA)
	assert.Contains(t, formats, resources.FormatPNG)
}
