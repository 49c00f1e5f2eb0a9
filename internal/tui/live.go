package tui

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/san-kum/billiard/internal/physics"
	"github.com/san-kum/billiard/internal/sim"
)

const (
	width       = 70
	height      = 20
	clearScreen = "\033[2J\033[H"
	hideCursor  = "\033[?25l"
	showCursor  = "\033[?25h"
)

// LiveRenderer prints a plain character view of the table after each step,
// throttled to frameRate. It is a sim.Observer for non-interactive runs.
type LiveRenderer struct {
	name      string
	frameRate int
	out       io.Writer
	now       func() time.Time
	lastFrame time.Time
	canvas    [][]rune
	trail     []struct{ x, y int }
}

func NewLiveRenderer(name string, frameRate int) *LiveRenderer {
	return NewLiveRendererTo(os.Stdout, name, frameRate)
}

func NewLiveRendererTo(out io.Writer, name string, frameRate int) *LiveRenderer {
	if frameRate <= 0 {
		frameRate = 30
	}
	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = make([]rune, width)
	}
	return &LiveRenderer{
		name:      name,
		frameRate: frameRate,
		out:       out,
		now:       time.Now,
		canvas:    canvas,
		trail:     make([]struct{ x, y int }, 0, 50),
	}
}

func (r *LiveRenderer) OnStep(f sim.Frame) {
	now := r.now()
	if now.Sub(r.lastFrame) < time.Second/time.Duration(r.frameRate) {
		return
	}
	r.lastFrame = now

	r.clear()
	r.drawTable(f)
	r.render(f)
}

func (r *LiveRenderer) clear() {
	for y := range r.canvas {
		for x := range r.canvas[y] {
			r.canvas[y][x] = ' '
		}
	}
}

func (r *LiveRenderer) set(x, y int, c rune) {
	if x >= 0 && x < width && y >= 0 && y < height {
		r.canvas[y][x] = c
	}
}

// cell maps table coordinates onto the character grid inside the border.
func cell(p physics.Params, pos physics.Vec2) (int, int) {
	x := 1 + int(pos.X/p.Width*float64(width-2))
	y := 1 + int(pos.Y/p.Height*float64(height-2))
	return x, y
}

func (r *LiveRenderer) drawTable(f sim.Frame) {
	for x := 0; x < width; x++ {
		r.set(x, 0, '-')
		r.set(x, height-1, '-')
	}
	for y := 1; y < height-1; y++ {
		r.set(0, y, '|')
		r.set(width-1, y, '|')
	}

	if len(f.Discs) == 0 || f.Params.Width <= 0 || f.Params.Height <= 0 {
		return
	}

	for _, d := range f.Discs {
		if d.Vel.IsZero() {
			continue
		}
		x, y := cell(f.Params, d.Pos)
		r.trail = append(r.trail, struct{ x, y int }{x, y})
	}
	if len(r.trail) > 50 {
		r.trail = r.trail[len(r.trail)-50:]
	}
	for _, pt := range r.trail {
		r.set(pt.x, pt.y, '.')
	}

	for _, d := range f.Discs {
		x, y := cell(f.Params, d.Pos)
		r.set(x, y, glyph(d))
	}
}

func glyph(d physics.Disc) rune {
	if d.Label != "" {
		return []rune(d.Label)[0]
	}
	return 'O'
}

func (r *LiveRenderer) render(f sim.Frame) {
	var b strings.Builder
	b.WriteString(clearScreen)
	b.WriteString(fmt.Sprintf("  %s  t=%.2fs  step=%d\n", r.name, f.Time, f.Step))

	for _, row := range r.canvas {
		b.WriteString("  ")
		b.WriteString(string(row))
		b.WriteString("\n")
	}

	var ke float64
	moving := 0
	for _, d := range f.Discs {
		ke += d.KineticEnergy()
		if !d.Vel.IsZero() {
			moving++
		}
	}
	b.WriteString(fmt.Sprintf("  energy=%.1f moving=%d/%d\n", ke, moving, len(f.Discs)))

	fmt.Fprint(r.out, b.String())
}

func (r *LiveRenderer) Start() { fmt.Fprint(r.out, hideCursor) }
func (r *LiveRenderer) Stop()  { fmt.Fprint(r.out, showCursor) }
