package game

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/iburimskiy/audio-boxes/internal/audio"
	"github.com/iburimskiy/audio-boxes/internal/config"
	"github.com/iburimskiy/audio-boxes/internal/render"
	"github.com/iburimskiy/audio-boxes/internal/spectrum"
)

const colorShiftSpeed = 0.01

// Player is the part of audio.Player the game drives.
type Player interface {
	LoadAsync(ctx context.Context, name string, r io.Reader) <-chan error
	TogglePause() bool
	Status() audio.Status
	SetAnalyser(p spectrum.Params) error
}

type pickResult struct {
	path string
	err  error
}

type loadResult struct {
	name string
	err  error
}

// Game wires the file picker and the audio player to the render loop.
type Game struct {
	ctx    context.Context
	loop   *render.Loop
	player Player
	pick   PickFunc

	picks   chan pickResult
	loads   chan loadResult
	reloads <-chan config.WatchEvent
	pending int
	workers sync.WaitGroup

	// input edge detection
	prevKey map[ebiten.Key]bool

	// button state
	buttonHovered bool
	buttonPressed bool
	dialogOpen    bool

	hudVisible bool
	colorPhase float64
	lastErr    error
	setTitle   func(string)
}

func New(ctx context.Context, cfg *config.Config, loop *render.Loop, player Player, pick PickFunc) *Game {
	return &Game{
		ctx:        ctx,
		loop:       loop,
		player:     player,
		pick:       pick,
		picks:      make(chan pickResult, 1),
		loads:      make(chan loadResult, 8),
		prevKey:    map[ebiten.Key]bool{},
		hudVisible: cfg.HUD.Visible,
		setTitle:   ebiten.SetWindowTitle,
	}
}

// WatchConfig applies config reloads received on ch.
func (g *Game) WatchConfig(ch <-chan config.WatchEvent) {
	g.reloads = ch
}

// Load opens path and starts decoding it in the background. The render loop
// keeps running; the new pipeline replaces the old one once decoded.
func (g *Game) Load(path string) {
	f, err := os.Open(path)
	if err != nil {
		g.fail(err)
		return
	}
	name := filepath.Base(path)
	log.Printf("loading %s", path)
	done := g.player.LoadAsync(g.ctx, name, f)
	g.pending++
	g.workers.Add(1)
	go func() {
		defer g.workers.Done()
		err := <-done
		_ = f.Close()
		select {
		case g.loads <- loadResult{name: name, err: err}:
		case <-g.ctx.Done():
		}
	}()
}

// Wait blocks until every load started by Load has delivered its result or
// given up because the context was cancelled.
func (g *Game) Wait() { g.workers.Wait() }

// Loading reports whether a file is still being decoded.
func (g *Game) Loading() bool { return g.pending > 0 }

func (g *Game) Update() error {
	if err := g.loop.Update(); err != nil {
		return err
	}
	g.handleInput()
	g.processEvents()
	g.colorPhase += colorShiftSpeed
	return nil
}

func (g *Game) handleInput() {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	mouseX, mouseY := ebiten.CursorPosition()
	g.buttonHovered = g.hudVisible &&
		mouseX >= config.ButtonX && mouseX <= config.ButtonX+config.ButtonWidth &&
		mouseY >= config.ButtonY && mouseY <= config.ButtonY+config.ButtonHeight

	if g.buttonHovered && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.buttonPressed = true
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		if g.buttonPressed && g.buttonHovered {
			g.openDialog()
		}
		g.buttonPressed = false
	}

	if justPressed(ebiten.KeyO) {
		g.openDialog()
	}
	if justPressed(ebiten.KeySpace) {
		g.player.TogglePause()
	}
	if justPressed(ebiten.KeyH) {
		g.hudVisible = !g.hudVisible
	}
	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		g.loop.Stop()
	}
}

// openDialog shows the file picker off the game goroutine so frames keep
// coming while it is open.
func (g *Game) openDialog() {
	if g.dialogOpen {
		return
	}
	g.dialogOpen = true
	go func() {
		path, err := g.pick()
		select {
		case g.picks <- pickResult{path: path, err: err}:
		case <-g.ctx.Done():
		}
	}()
}

// processEvents drains finished dialogs, loads and config reloads without
// blocking.
func (g *Game) processEvents() {
	for {
		select {
		case r := <-g.picks:
			g.dialogOpen = false
			switch {
			case canceled(r.err):
			case r.err != nil:
				g.fail(r.err)
			default:
				g.Load(r.path)
			}

		case r := <-g.loads:
			g.pending--
			g.finishLoad(r)

		case ev, ok := <-g.reloads:
			if !ok {
				g.reloads = nil
				continue
			}
			g.applyConfig(ev)

		default:
			return
		}
	}
}

func (g *Game) finishLoad(r loadResult) {
	switch {
	case r.err == nil:
		g.lastErr = nil
		g.loop.Reset()
	case errors.Is(r.err, audio.ErrSuperseded):
	default:
		g.fail(r.err)
	}
}

func (g *Game) applyConfig(ev config.WatchEvent) {
	if ev.Err != nil {
		log.Printf("config reload: %v", ev.Err)
		return
	}
	if err := g.player.SetAnalyser(ev.Config.AnalyserParams()); err != nil {
		log.Printf("config reload: %v", err)
		return
	}
	g.hudVisible = ev.Config.HUD.Visible
	g.setTitle(ev.Config.Window.Title)
	log.Printf("config reloaded")
}

func (g *Game) fail(err error) {
	log.Printf("error: %v", err)
	g.lastErr = err
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.loop.Draw(screen)
	if g.hudVisible {
		g.drawHUD(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.loop.Layout(outsideWidth, outsideHeight)
}
