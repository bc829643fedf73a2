package resources

import (
	"fmt"
	"image"
)

// Format identifies the concrete encoding of a manifest entry.
type Format string

const (
	FormatPNG  Format = "png"
	FormatJPG  Format = "jpg"
	FormatWEBP Format = "webp"
	FormatBMP  Format = "bmp"
	FormatTIFF Format = "tiff"
	FormatTGA  Format = "tga"

	FormatOGG  Format = "ogg"
	FormatMP3  Format = "mp3"
	FormatWAV  Format = "wav"
	FormatFLAC Format = "flac"

	FormatBinary Format = "bin"
	FormatText   Format = "txt"
	FormatJSON   Format = "json"
	FormatFont   Format = "fnt"
)

// FormatCategory selects which fetcher loads an entry and which pack
// partition holds the result.
type FormatCategory int

const (
	CategoryNone FormatCategory = iota
	CategoryTexture
	CategoryAudio
	CategoryFile
)

func (c FormatCategory) String() string {
	switch c {
	case CategoryTexture:
		return "texture"
	case CategoryAudio:
		return "audio"
	case CategoryFile:
		return "file"
	default:
		return "none"
	}
}

var categories = map[Format]FormatCategory{
	FormatPNG:  CategoryTexture,
	FormatJPG:  CategoryTexture,
	FormatWEBP: CategoryTexture,
	FormatBMP:  CategoryTexture,
	FormatTIFF: CategoryTexture,
	FormatTGA:  CategoryTexture,

	FormatOGG:  CategoryAudio,
	FormatMP3:  CategoryAudio,
	FormatWAV:  CategoryAudio,
	FormatFLAC: CategoryAudio,

	FormatBinary: CategoryFile,
	FormatText:   CategoryFile,
	FormatJSON:   CategoryFile,
	FormatFont:   CategoryFile,
}

// CategoryOf returns the category a format belongs to, or CategoryNone for
// formats the library does not know about.
func CategoryOf(f Format) FormatCategory {
	return categories[f]
}

// Resource is a loaded asset. ReplaceContent swaps the payload in place so
// that holders of the reference observe new content without reacquiring it;
// only the load orchestrator calls it, during hot reload.
type Resource interface {
	Category() FormatCategory
	ReplaceContent(Resource) error
}

// Texture is a decoded image resource.
type Texture struct {
	Name   string
	Image  image.Image
	Width  int
	Height int
}

func (t *Texture) Category() FormatCategory { return CategoryTexture }

func (t *Texture) ReplaceContent(other Resource) error {
	o, ok := other.(*Texture)
	if !ok {
		return fmt.Errorf("cannot replace texture %q with %s content", t.Name, other.Category())
	}
	t.Image, t.Width, t.Height = o.Image, o.Width, o.Height
	return nil
}

// Sound holds the encoded bytes of an audio resource. Decoding is left to
// the playback layer.
type Sound struct {
	Name   string
	Format Format
	Data   []byte
	Silent bool
}

func (s *Sound) Category() FormatCategory { return CategoryAudio }

func (s *Sound) ReplaceContent(other Resource) error {
	o, ok := other.(*Sound)
	if !ok {
		return fmt.Errorf("cannot replace sound %q with %s content", s.Name, other.Category())
	}
	s.Format, s.Data, s.Silent = o.Format, o.Data, o.Silent
	return nil
}

// SilentSound is the placeholder substituted for a group none of whose
// audio encodings the environment supports.
func SilentSound(name string) *Sound {
	return &Sound{Name: name, Silent: true}
}

// File is a raw, undecoded resource.
type File struct {
	Name string
	Data []byte
}

func (f *File) Category() FormatCategory { return CategoryFile }

func (f *File) ReplaceContent(other Resource) error {
	o, ok := other.(*File)
	if !ok {
		return fmt.Errorf("cannot replace file %q with %s content", f.Name, other.Category())
	}
	f.Data = o.Data
	return nil
}
