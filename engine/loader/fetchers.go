package loader

import (
	"bytes"
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/preload/engine/assets"
	"github.com/spaghettifunk/preload/engine/resources"
)

// ProgressFunc receives the cumulative number of bytes fetched so far.
type ProgressFunc func(bytes int64)

// Fetcher retrieves and decodes one resource kind. Implementations may call
// progress any number of times before returning and must return exactly one
// terminal outcome.
type Fetcher interface {
	Fetch(ctx context.Context, url string, entry assets.ResourceEntry, progress ProgressFunc) (resources.Resource, error)
}

// DefaultFetchers wires the built-in fetcher per category.
func DefaultFetchers() map[resources.FormatCategory]Fetcher {
	return map[resources.FormatCategory]Fetcher{
		resources.CategoryTexture: &TextureFetcher{},
		resources.CategoryAudio:   &AudioFetcher{},
		resources.CategoryFile:    &FileFetcher{},
	}
}

// TextureFetcher fetches image bytes and decodes them through the stdlib
// image registry (png/jpeg plus the x/image webp, bmp and tiff decoders).
type TextureFetcher struct {
	Client *http.Client
}

func (f *TextureFetcher) Fetch(ctx context.Context, url string, entry assets.ResourceEntry, progress ProgressFunc) (resources.Resource, error) {
	data, err := fetchBytes(ctx, f.Client, url, progress)
	if err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrTextureCreation, url, err)
	}
	b := img.Bounds()
	return &resources.Texture{Name: entry.Name, Image: img, Width: b.Dx(), Height: b.Dy()}, nil
}

// AudioFetcher fetches encoded audio bytes. Decoding stays with the
// playback layer, so the sound carries its format tag.
type AudioFetcher struct {
	Client *http.Client
}

func (f *AudioFetcher) Fetch(ctx context.Context, url string, entry assets.ResourceEntry, progress ProgressFunc) (resources.Resource, error) {
	data, err := fetchBytes(ctx, f.Client, url, progress)
	if err != nil {
		return nil, err
	}
	return &resources.Sound{Name: entry.Name, Format: entry.Format, Data: data}, nil
}

// FileFetcher fetches raw bytes.
type FileFetcher struct {
	Client *http.Client
}

func (f *FileFetcher) Fetch(ctx context.Context, url string, entry assets.ResourceEntry, progress ProgressFunc) (resources.Resource, error) {
	data, err := fetchBytes(ctx, f.Client, url, progress)
	if err != nil {
		return nil, err
	}
	return &resources.File{Name: entry.Name, Data: data}, nil
}

// fetchBytes reads the full payload from an http(s) URL or a local path,
// reporting cumulative progress as bytes stream through.
func fetchBytes(ctx context.Context, client *http.Client, url string, progress ProgressFunc) ([]byte, error) {
	var rc io.ReadCloser
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		if client == nil {
			client = http.DefaultClient
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, err
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
		}
		rc = resp.Body
	} else {
		f, err := os.Open(url)
		if err != nil {
			return nil, err
		}
		rc = f
	}
	defer rc.Close()
	return io.ReadAll(&progressReader{r: rc, progress: progress})
}

type progressReader struct {
	r        io.Reader
	read     int64
	progress ProgressFunc
}

func (pr *progressReader) Read(p []byte) (int, error) {
	n, err := pr.r.Read(p)
	if n > 0 {
		pr.read += int64(n)
		if pr.progress != nil {
			pr.progress(pr.read)
		}
	}
	return n, err
}
