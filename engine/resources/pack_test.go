package resources

import (
	"image"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPack() *Pack {
	return NewPack(log.New(io.Discard))
}

func TestPackRequiredLookup(t *testing.T) {
	p := testPack()
	require.NoError(t, p.Put("hero", &Texture{Name: "hero", Width: 8, Height: 8}))

	tex, err := p.GetTexture("hero", true)
	require.NoError(t, err)
	assert.Equal(t, 8, tex.Width)

	_, err = p.GetTexture("villain", true)
	assert.ErrorIs(t, err, ErrMissingResource)
	assert.ErrorContains(t, err, "villain")
}

func TestPackOptionalLookupIsSilent(t *testing.T) {
	p := testPack()
	tex, err := p.GetTexture("missing", false)
	assert.NoError(t, err)
	assert.Nil(t, tex)

	// A name with an extension-looking suffix only warns; same result.
	tex, err = p.GetTexture("missing.png", false)
	assert.NoError(t, err)
	assert.Nil(t, tex)
}

func TestPackNameUniqueAcrossPartitions(t *testing.T) {
	p := testPack()
	require.NoError(t, p.Put("bgm", &Sound{Name: "bgm", Format: FormatOGG}))
	err := p.Put("bgm", &File{Name: "bgm"})
	assert.ErrorContains(t, err, "duplicate")
}

func TestPackFreezeRejectsInserts(t *testing.T) {
	p := testPack()
	p.Freeze()
	err := p.Put("late", &File{Name: "late"})
	assert.ErrorContains(t, err, "frozen")
}

func TestPackLookupAndNames(t *testing.T) {
	p := testPack()
	require.NoError(t, p.Put("hero", &Texture{Name: "hero"}))
	require.NoError(t, p.Put("bgm", &Sound{Name: "bgm", Format: FormatOGG}))
	require.NoError(t, p.Put("level", &File{Name: "level"}))

	res, ok := p.Lookup("bgm")
	require.True(t, ok)
	assert.Equal(t, CategoryAudio, res.Category())

	_, ok = p.Lookup("nope")
	assert.False(t, ok)

	assert.Equal(t, 3, p.Len())
	assert.Equal(t, []string{"bgm", "hero", "level"}, p.Names())
}

func TestReplaceContentPreservesIdentity(t *testing.T) {
	tex := &Texture{Name: "hero", Image: image.NewRGBA(image.Rect(0, 0, 1, 1)), Width: 1, Height: 1}
	repl := &Texture{Name: "hero", Image: image.NewRGBA(image.Rect(0, 0, 2, 2)), Width: 2, Height: 2}
	require.NoError(t, tex.ReplaceContent(repl))
	assert.Equal(t, 2, tex.Width)
	assert.Equal(t, "hero", tex.Name)

	err := tex.ReplaceContent(&Sound{Name: "hero"})
	assert.Error(t, err)

	snd := &Sound{Name: "bgm", Silent: true}
	require.NoError(t, snd.ReplaceContent(&Sound{Name: "bgm", Format: FormatOGG, Data: []byte("x")}))
	assert.False(t, snd.Silent)
	assert.Equal(t, FormatOGG, snd.Format)

	f := &File{Name: "level"}
	require.NoError(t, f.ReplaceContent(&File{Name: "level", Data: []byte("y")}))
	assert.Equal(t, []byte("y"), f.Data)
}

func TestCategoryOf(t *testing.T) {
	assert.Equal(t, CategoryTexture, CategoryOf(FormatPNG))
	assert.Equal(t, CategoryAudio, CategoryOf(FormatFLAC))
	assert.Equal(t, CategoryFile, CategoryOf(FormatFont))
	assert.Equal(t, CategoryNone, CategoryOf(Format("xcf")))
}
