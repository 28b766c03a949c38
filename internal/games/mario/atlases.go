package mario

import (
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/ecs"
)

// Atlas indices used by levels.yaml and the Lua functions.
const (
	AtlasMario uint16 = 10 + iota
	AtlasMarioFlip
	AtlasTito
	AtlasLuigi
	AtlasTrain
	AtlasMachine
	AtlasDoor
	AtlasShop
)

// walking frames 0-3, then the jump frame
var marioFrames = [][]string{
	{"m@", "/\\"},
	{"m@", "|\\"},
	{"m@", "/\\"},
	{"m@", "/|"},
	{"m@", "\\/"},
}

func defineAtlases(a *ecs.Atlases) {
	a.Define(AtlasMario, ecs.Atlas{Frames: marioFrames, Color: core.ColorBrightRed})
	a.Define(AtlasMarioFlip, ecs.Atlas{Frames: [][]string{
		{"m@", "/\\"},
		{"<@", " >"},
		{"\\/", "@m"},
		{"< ", "@>"},
	}, Color: core.ColorBrightRed})
	a.Define(AtlasTito, ecs.Atlas{Frames: [][]string{{"t@", "/\\"}}, Color: core.ColorYellow})
	a.Define(AtlasLuigi, ecs.Atlas{Frames: marioFrames, Color: core.ColorBrightGreen})
	a.Define(AtlasTrain, ecs.Atlas{Frames: [][]string{{"[][]=", "o--o\\"}}, Color: core.ColorCyan})
	a.Define(AtlasMachine, ecs.Atlas{Frames: [][]string{{"[c]", "|_|"}}, Color: core.ColorMagenta})
	a.Define(AtlasDoor, ecs.Atlas{Frames: [][]string{{"┌┐", "│▪"}}, Color: core.ColorYellow})
	a.Define(AtlasShop, ecs.Atlas{Frames: [][]string{{"/$\\", "|_|"}}, Color: core.ColorBrightBlue})
}

// characterAtlases are the sheets spawn_character can use.
var characterAtlases = map[string]uint16{
	"Mario": AtlasMario,
	"Luigi": AtlasLuigi,
	"Tito":  AtlasTito,
}

// itemIcons are the inventory glyphs of the items sold in the story.
var itemIcons = map[string]rune{
	"Coffee":            'c',
	"Gold Coffee":       'C',
	"Tesla Coil (10kV)": 't',
	"Tesla Coil (20kV)": 'T',
	"Tesla Coil (50kV)": 'Ŧ',
	"Firework Red":      '*',
	"Firework Blue":     '*',
	"Firework Green":    '*',
}

func (g *Game) atlasSize(idx uint16) core.Vec2 {
	a, _ := g.atlases.Get(idx)
	return a.Size()
}

func (g *Game) atlasFrames(idx uint16) int {
	a, _ := g.atlases.Get(idx)
	return max(len(a.Frames), 1)
}
