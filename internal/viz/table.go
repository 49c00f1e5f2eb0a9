package viz

import (
	"math"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/billiard/internal/physics"
)

// Projection maps table coordinates onto canvas sub-pixels with one scale
// for both axes so discs stay round.
type Projection struct {
	Scale      float64
	OffX, OffY int
}

// Fit returns the largest projection that places the table inside a
// subW x subH sub-pixel area, centred.
func Fit(p physics.Params, subW, subH int) Projection {
	if p.Width <= 0 || p.Height <= 0 {
		return Projection{Scale: 1}
	}
	sx := float64(subW-1) / p.Width
	sy := float64(subH-1) / p.Height
	s := math.Min(sx, sy)
	return Projection{
		Scale: s,
		OffX:  (subW - 1 - int(p.Width*s)) / 2,
		OffY:  (subH - 1 - int(p.Height*s)) / 2,
	}
}

func (pr Projection) Point(v physics.Vec2) (int, int) {
	return pr.OffX + int(math.Round(v.X*pr.Scale)), pr.OffY + int(math.Round(v.Y*pr.Scale))
}

func (pr Projection) Length(l float64) int {
	return int(math.Round(l * pr.Scale))
}

// DrawTable paints the rails and every disc in its own color.
func DrawTable(c *Canvas, p physics.Params, discs []physics.Disc, rail lipgloss.Color) Projection {
	pr := Fit(p, c.SubWidth(), c.SubHeight())

	x0, y0 := pr.Point(physics.V(0, 0))
	x1, y1 := pr.Point(physics.V(p.Width, p.Height))
	c.Pen(rail)
	c.DrawRect(x0, y0, x1, y1)

	r := pr.Length(p.Radius)
	for _, d := range discs {
		cx, cy := pr.Point(d.Pos)
		c.Pen(DiscColor(d.Color))
		if d.Color == physics.Black {
			// black ink vanishes on dark terminals
			c.Pen(CurrentTheme.Muted)
		}
		c.FillCircle(cx, cy, r)
	}
	c.Pen("")
	return pr
}
