package main

import (
	"bytes"
	"fmt"

	"github.com/fzipp/bmfont"

	"github.com/spaghettifunk/preload/engine/assets"
	"github.com/spaghettifunk/preload/engine/loader"
	"github.com/spaghettifunk/preload/engine/resources"
)

// The bundle a small game would preload: one texture, one sound available
// in two encodings, one bitmap-font descriptor.
const manifest = `
base_path = "assets"

[[entry]]
name = "hero"
url = "images/hero.png"
format = "png"
size = 24576

[[entry]]
name = "theme"
url = "audio/theme.ogg"
format = "ogg"
size = 524288

[[entry]]
name = "theme"
url = "audio/theme.mp3"
format = "mp3"
size = 612352

[[entry]]
name = "hud"
url = "fonts/hud.fnt"
format = "fnt"
size = 2048
`

type Game struct {
	pack *resources.Pack
	hero *resources.Texture
	font *bmfont.Descriptor
}

// Boot loads the bundle, blocks until every group resolves, then pulls the
// resources the game needs out of the pack.
func Boot() (*Game, error) {
	m, err := assets.ParseManifest([]byte(manifest))
	if err != nil {
		return nil, err
	}

	orch := loader.New(m, loader.Config{})
	defer orch.Close()

	handle := orch.Handle()
	<-handle.Done()
	pack, err := handle.Result()
	if err != nil {
		return nil, err
	}

	g := &Game{pack: pack}

	if g.hero, err = pack.GetTexture("hero", true); err != nil {
		return nil, err
	}

	hud, err := pack.GetFile("hud", true)
	if err != nil {
		return nil, err
	}
	desc, err := bmfont.ReadDescriptor(bytes.NewReader(hud.Data))
	if err != nil {
		return nil, fmt.Errorf("parse hud font: %w", err)
	}
	g.font = desc

	return g, nil
}

func (g *Game) String() string {
	theme, _ := g.pack.GetSound("theme", false)
	audio := "silent"
	if theme != nil && !theme.Silent {
		audio = string(theme.Format)
	}
	return fmt.Sprintf("hero %dx%d, theme %s, hud font %q", g.hero.Width, g.hero.Height, audio, g.font.Info.Face)
}
