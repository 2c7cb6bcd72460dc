package game

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/audio-boxes/internal/config"
	"github.com/iburimskiy/audio-boxes/internal/spectrum"
)

func (g *Game) drawHUD(screen *ebiten.Image) {
	g.drawButton(screen)

	frame := g.loop.Last()
	g.drawAudioBar(screen, &frame.Spectrum)

	ebitenutil.DebugPrintAt(screen, g.statusLine(), 12, 12)
}

// statusLine describes the player state for the top of the screen.
func (g *Game) statusLine() string {
	st := g.player.Status()
	var status string
	switch {
	case g.Loading():
		status = "Decoding..."
	case st.Name == "":
		status = "Click the button or press O to open an audio file"
	case st.Ended:
		status = fmt.Sprintf("Finished %s - O to open another", st.Name)
	case st.Paused:
		status = fmt.Sprintf("Paused %s %s/%s - Space to resume", st.Name, formatDuration(st.Position), formatDuration(st.Duration))
	default:
		status = fmt.Sprintf("Playing %s %s/%s - Space to pause", st.Name, formatDuration(st.Position), formatDuration(st.Duration))
	}
	if g.lastErr != nil {
		status += " | Error: " + g.lastErr.Error()
	}
	return status
}

func (g *Game) drawButton(screen *ebiten.Image) {
	var bgColor color.Color
	if g.buttonPressed {
		bgColor = color.RGBA{R: 60, G: 80, B: 120, A: 255} // Pressed
	} else if g.buttonHovered {
		bgColor = color.RGBA{R: 80, G: 100, B: 140, A: 255} // Hovered
	} else {
		bgColor = color.RGBA{R: 100, G: 120, B: 160, A: 255}
	}

	x, y := float32(config.ButtonX), float32(config.ButtonY)
	w, h := float32(config.ButtonWidth), float32(config.ButtonHeight)
	vector.DrawFilledRect(screen, x, y, w, h, bgColor, false)
	vector.StrokeRect(screen, x, y, w, h, 2, color.RGBA{R: 150, G: 170, B: 200, A: 255}, false)

	text := "Open File"
	textWidth := len(text) * 6 // debug font glyph width
	textX := config.ButtonX + (config.ButtonWidth-textWidth)/2
	textY := config.ButtonY + (config.ButtonHeight-16)/2
	ebitenutil.DebugPrintAt(screen, text, textX, textY)
}

// drawAudioBar draws one column per band along the bottom of the screen.
func (g *Game) drawAudioBar(screen *ebiten.Image, snap *spectrum.Snapshot) {
	b := screen.Bounds()
	barWidth := b.Dx() - 2*config.BarMargin
	if barWidth <= 0 {
		return
	}
	barX := config.BarMargin
	barY := b.Dy() - config.BarHeight - config.BarMargin
	segmentWidth := float64(barWidth) / spectrum.Bins

	vector.DrawFilledRect(screen, float32(barX), float32(barY), float32(barWidth), config.BarHeight, color.RGBA{R: 20, G: 25, B: 35, A: 160}, false)

	for i, v := range snap {
		level := clamp01(float64(v))
		segmentX := float64(barX) + float64(i)*segmentWidth
		segmentHeight := level * float64(config.BarHeight-10)
		if segmentHeight < 2 {
			segmentHeight = 2
		}

		freqRatio := float64(i) / spectrum.Bins
		hue := (g.colorPhase + freqRatio*180) * 360
		r, gv, bv := hsvToRgb(hue, 0.8, 0.9)
		segmentColor := color.RGBA{R: r, G: gv, B: bv, A: uint8(100 + 155*level)}

		segmentY := float64(barY) + float64(config.BarHeight) - segmentHeight
		vector.DrawFilledRect(screen, float32(segmentX), float32(segmentY), float32(segmentWidth-1), float32(segmentHeight), segmentColor, false)
	}

	ebitenutil.DebugPrintAt(screen, "Low", barX, barY-15)
	ebitenutil.DebugPrintAt(screen, "High", barX+barWidth-25, barY-15)
}
