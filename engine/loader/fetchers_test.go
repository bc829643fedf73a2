package loader

import (
	"bytes"
	"context"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/preload/engine/assets"
	"github.com/spaghettifunk/preload/engine/resources"
)

func TestFileFetcherFromDiskReportsProgress(t *testing.T) {
	dir := t.TempDir()
	payload := bytes.Repeat([]byte("level-data "), 100)
	path := filepath.Join(dir, "level.bin")
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	var reports []int64
	entry := assets.ResourceEntry{Name: "level", URL: "data/level.bin", Format: resources.FormatBinary}
	res, err := (&FileFetcher{}).Fetch(context.Background(), path, entry, func(n int64) {
		reports = append(reports, n)
	})
	require.NoError(t, err)

	file, ok := res.(*resources.File)
	require.True(t, ok)
	assert.Equal(t, payload, file.Data)
	assert.Equal(t, "level", file.Name)

	require.NotEmpty(t, reports)
	assert.Equal(t, int64(len(payload)), reports[len(reports)-1])
	assert.IsNonDecreasing(t, reports)
}

func TestFileFetcherOverHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote bytes"))
	}))
	defer srv.Close()

	entry := assets.ResourceEntry{Name: "blob", URL: "data/blob.bin", Format: resources.FormatBinary}
	res, err := (&FileFetcher{}).Fetch(context.Background(), srv.URL, entry, nil)
	require.NoError(t, err)
	assert.Equal(t, []byte("remote bytes"), res.(*resources.File).Data)
}

func TestFileFetcherHTTPErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	entry := assets.ResourceEntry{Name: "blob", URL: "data/blob.bin", Format: resources.FormatBinary}
	_, err := (&FileFetcher{}).Fetch(context.Background(), srv.URL, entry, nil)
	assert.ErrorContains(t, err, "unexpected status")
}

func TestTextureFetcherDecodesPNG(t *testing.T) {
	dir := t.TempDir()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	path := filepath.Join(dir, "hero.png")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	entry := assets.ResourceEntry{Name: "hero", URL: "images/hero.png", Format: resources.FormatPNG}
	res, err := (&TextureFetcher{}).Fetch(context.Background(), path, entry, nil)
	require.NoError(t, err)

	tex, ok := res.(*resources.Texture)
	require.True(t, ok)
	assert.Equal(t, 4, tex.Width)
	assert.Equal(t, 2, tex.Height)
}

func TestTextureFetcherRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hero.png")
	require.NoError(t, os.WriteFile(path, []byte("not an image"), 0o644))

	entry := assets.ResourceEntry{Name: "hero", URL: "images/hero.png", Format: resources.FormatPNG}
	_, err := (&TextureFetcher{}).Fetch(context.Background(), path, entry, nil)
	assert.ErrorIs(t, err, ErrTextureCreation)
}

func TestAudioFetcherKeepsEncodedBytes(t *testing.T) {
	dir := t.TempDir()
	payload := []byte("OggS fake vorbis stream")
	path := filepath.Join(dir, "theme.ogg")
	require.NoError(t, os.WriteFile(path, payload, 0o644))

	entry := assets.ResourceEntry{Name: "theme", URL: "audio/theme.ogg", Format: resources.FormatOGG}
	res, err := (&AudioFetcher{}).Fetch(context.Background(), path, entry, nil)
	require.NoError(t, err)

	sound, ok := res.(*resources.Sound)
	require.True(t, ok)
	assert.Equal(t, payload, sound.Data)
	assert.Equal(t, resources.FormatOGG, sound.Format)
	assert.False(t, sound.Silent)
}
