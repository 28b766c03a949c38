// Package snake is a small arcade game for the console menu. It keeps its
// best round in the save slot and pays money into the slot's progress for
// every fruit eaten.
package snake

import (
	"fmt"
	"io"
	"math/rand"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tui-handheld/internal/codec"
	"github.com/vovakirdan/tui-handheld/internal/core"
	"github.com/vovakirdan/tui-handheld/internal/registry"
	"github.com/vovakirdan/tui-handheld/internal/storage"
)

// ID is the registry id and the game's directory in a save slot.
const ID = "snake"

// FileName is the record file inside the game's directory.
const FileName = "record.dat"

const (
	// Reward is the money paid per fruit.
	Reward = 10

	startStep  = 0.18 // seconds per move
	minStep    = 0.06
	speedUp    = 0.02 // faster every speedEvery fruits
	speedEvery = 5
	hudHeight  = 1
)

// Direction is the snake's heading.
type Direction int

const (
	DirRight Direction = iota
	DirDown
	DirLeft
	DirUp
)

func (d Direction) opposite(o Direction) bool {
	return (d+2)%4 == o
}

// Point is a cell of the field.
type Point struct {
	X, Y int
}

// Record is what the game saves.
type Record struct {
	Best  uint16 // longest tail reached
	Games uint32 // rounds played
}

// Game implements the snake round and its record.
type Game struct {
	host   registry.Host
	logger *log.Logger
	rng    *rand.Rand

	w, h int // field size, walls included

	body    []Point // head first
	dir     Direction
	next    Direction
	growing bool
	food    Point
	eaten   int
	step    float32
	acc     float32
	over    bool

	record Record
	dirty  bool
}

func init() {
	registry.Register(ID, func() registry.Game {
		return New()
	})
}

// New creates a new snake instance.
func New() *Game {
	return &Game{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// ID returns the game identifier.
func (g *Game) ID() string {
	return ID
}

// Title returns the display name.
func (g *Game) Title() string {
	return "Snake"
}

// Load sizes the field from the console screen.
func (g *Game) Load(h registry.Host) error {
	g.host = h
	g.logger = h.Logger().WithPrefix(ID)
	rc := h.Config()
	g.w, g.h = rc.ScreenW, rc.ScreenH-hudHeight
	if g.w < 8 || g.h < 6 {
		return fmt.Errorf("snake: screen %dx%d is too small", rc.ScreenW, rc.ScreenH)
	}
	return nil
}

// Start reads the record, which a slot reset may have removed, and begins a
// round.
func (g *Game) Start() {
	rec, err := g.readRecord()
	if err != nil {
		g.logger.Warn("record unreadable, starting over", "path", g.path(), "error", err)
	}
	g.record = rec
	g.reset()
}

func (g *Game) reset() {
	y := g.h / 2
	x := g.w / 4
	g.body = []Point{{x + 2, y}, {x + 1, y}, {x, y}}
	g.dir, g.next = DirRight, DirRight
	g.growing = false
	g.eaten = 0
	g.step = startStep
	g.acc = 0
	g.over = false
	g.spawnFood()

	g.record.Games++
	g.dirty = true
}

// Update steers with the joystick and moves on a fixed step. After a crash
// X starts the next round.
func (g *Game) Update(in *core.Input, dt float32) {
	if g.over {
		if in.X.Released {
			in.X.Consume()
			g.reset()
		}
		return
	}

	want := g.next
	switch {
	case in.JoyY < 0:
		want = DirUp
	case in.JoyY > 0:
		want = DirDown
	case in.JoyX < 0:
		want = DirLeft
	case in.JoyX > 0:
		want = DirRight
	}
	if !want.opposite(g.dir) {
		g.next = want
	}

	g.acc += dt
	for g.acc >= g.step && !g.over {
		g.acc -= g.step
		g.move()
	}
}

func (g *Game) move() {
	g.dir = g.next
	head := g.body[0]
	switch g.dir {
	case DirUp:
		head.Y--
	case DirDown:
		head.Y++
	case DirLeft:
		head.X--
	case DirRight:
		head.X++
	}

	if g.wall(head) || g.hits(head) {
		g.crash()
		return
	}

	g.body = append([]Point{head}, g.body...)
	if head == g.food {
		g.eat()
	}
	if g.growing {
		g.growing = false
	} else {
		g.body = g.body[:len(g.body)-1]
	}
}

// hits reports whether p is on the body. The tail moves away this step
// unless the snake is growing.
func (g *Game) hits(p Point) bool {
	n := len(g.body)
	if !g.growing {
		n--
	}
	for _, seg := range g.body[:n] {
		if seg == p {
			return true
		}
	}
	return false
}

func (g *Game) wall(p Point) bool {
	return p.X <= 0 || p.Y <= 0 || p.X >= g.w-1 || p.Y >= g.h-1
}

func (g *Game) eat() {
	g.eaten++
	g.growing = true
	g.host.State().Money += Reward
	if g.eaten%speedEvery == 0 {
		g.step = max(minStep, g.step-speedUp)
	}
	g.spawnFood()
}

func (g *Game) crash() {
	g.over = true
	if n := uint16(len(g.body)); n > g.record.Best {
		g.record.Best = n
		g.dirty = true
	}
	g.logger.Debug("crashed", "length", len(g.body), "best", g.record.Best)
}

func (g *Game) spawnFood() {
	var free []Point
	for y := 1; y < g.h-1; y++ {
		for x := 1; x < g.w-1; x++ {
			p := Point{x, y}
			if !g.onBody(p) {
				free = append(free, p)
			}
		}
	}
	if len(free) == 0 {
		g.food = Point{-1, -1}
		return
	}
	g.food = free[g.rng.Intn(len(free))]
}

func (g *Game) onBody(p Point) bool {
	for _, seg := range g.body {
		if seg == p {
			return true
		}
	}
	return false
}

// Draw renders the score line, the field and the crash banner.
func (g *Game) Draw(dst *core.Screen) {
	dst.DrawTextColor(0, 0, fmt.Sprintf("Snake  Length %d  Best %d", len(g.body), g.record.Best), core.ColorBrightGreen)
	dst.DrawRect(core.Rect{X: 0, Y: hudHeight, W: g.w, H: g.h}, core.ColorGreen)

	if g.food.X >= 0 {
		dst.Put(g.food.X, g.food.Y+hudHeight, '*', core.ColorBrightRed)
	}
	for i, seg := range g.body {
		r := 'o'
		if i == 0 {
			r = 'O'
		}
		dst.Put(seg.X, seg.Y+hudHeight, r, core.ColorBrightYellow)
	}

	if g.over {
		mid := hudHeight + g.h/2
		dst.DrawTextCentered(mid-1, " Game Over ", core.ColorBrightRed)
		dst.DrawTextCentered(mid+1, " X to play again ", core.ColorWhite)
	}
}

// Save writes the record when it changed.
func (g *Game) Save() {
	if !g.dirty {
		return
	}
	if err := g.writeRecord(); err != nil {
		g.logger.Warn("record save failed", "path", g.path(), "error", err)
		return
	}
	g.dirty = false
}

// Dump prints the saved record.
func (g *Game) Dump(w io.Writer) error {
	rec, err := g.readRecord()
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "%s: best %d, %d games\n", g.path(), rec.Best, rec.Games)
	return nil
}

// Record returns the record in memory.
func (g *Game) Record() Record {
	return g.record
}

func (g *Game) path() string {
	return storage.Join(g.host.Slot(), ID, FileName)
}

// readRecord reads the record file. A missing file is an empty record.
func (g *Game) readRecord() (Record, error) {
	var rec Record
	f, err := g.host.Device().Open(g.path(), storage.ModeRead)
	if storage.IsNotExist(err) {
		return rec, nil
	}
	if err != nil {
		return rec, err
	}
	defer f.Close()

	pr := codec.NewPropertyReader(f, g.host.Format())
	for pr.Next() {
		switch pr.Label() {
		case "best":
			err = pr.Scan(&rec.Best)
		case "games":
			err = pr.Scan(&rec.Games)
		default:
			pr.Skip()
		}
		if err != nil {
			return rec, fmt.Errorf("snake: %s: %w", pr.Label(), err)
		}
	}
	return rec, pr.Err()
}

func (g *Game) writeRecord() error {
	dev := g.host.Device()
	if err := dev.Mkdir(storage.Join(g.host.Slot(), ID)); err != nil {
		return err
	}
	f, err := dev.Open(g.path(), storage.ModeWrite)
	if err != nil {
		return err
	}
	pw := codec.NewPropertyWriter(f, g.host.Format())
	pw.Write("best", g.record.Best)
	pw.Write("games", g.record.Games)
	if err := pw.Err(); err != nil {
		f.Close()
		return fmt.Errorf("snake: %w", err)
	}
	return f.Close()
}
