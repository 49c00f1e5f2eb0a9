package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/billiard/internal/physics"
	"github.com/san-kum/billiard/internal/viz"
)

const (
	feltColor = "#0b3d20"
	railColor = "#8b5a2b"
)

func header(sb *strings.Builder, w, h float64) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
`, w, h, w, h))
}

// TableToSVG draws the table in its own coordinates: the felt, the rails and
// one circle per disc in the disc's color.
func TableToSVG(p physics.Params, discs []physics.Disc) string {
	var sb strings.Builder
	header(&sb, p.Width, p.Height)
	sb.WriteString(fmt.Sprintf(`<rect width="%.0f" height="%.0f" fill="%s" stroke="%s" stroke-width="4"/>
`, p.Width, p.Height, feltColor, railColor))

	for _, d := range discs {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="#000000" stroke-width="1"`,
			d.Pos.X, d.Pos.Y, p.Radius, d.Color.Hex()))
		if d.Label != "" {
			sb.WriteString(fmt.Sprintf(`><title>%s</title></circle>
`, escape(d.Label)))
		} else {
			sb.WriteString("/>\n")
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// TrailsToSVG draws the table with one polyline per disc from sampled states
// laid out as x, y, vx, vy per disc. The final positions are drawn as discs.
func TrailsToSVG(p physics.Params, discs []physics.Disc, states [][]float64) string {
	var sb strings.Builder
	header(&sb, p.Width, p.Height)
	sb.WriteString(fmt.Sprintf(`<rect width="%.0f" height="%.0f" fill="%s" stroke="%s" stroke-width="4"/>
`, p.Width, p.Height, feltColor, railColor))

	for i, d := range discs {
		if len(states) < 2 {
			break
		}
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" stroke-opacity="0.7" d="`, d.Color.Hex()))
		n := 0
		for _, s := range states {
			if len(s) < 4*(i+1) {
				continue
			}
			x, y := s[4*i], s[4*i+1]
			if n == 0 {
				sb.WriteString(fmt.Sprintf("M%.1f,%.1f", x, y))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
			}
			n++
		}
		sb.WriteString("\"/>\n")
	}

	for _, d := range discs {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.2f" cy="%.2f" r="%.2f" fill="%s" stroke="#000000" stroke-width="1"/>
`, d.Pos.X, d.Pos.Y, p.Radius, d.Color.Hex()))
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// CanvasToSVG converts a Braille canvas to SVG, one dot per set sub-pixel in
// the cell's ink.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(`<rect width="100%" height="100%" fill="#0a0a0a"/>
`)

	dotRadius := scale * 0.4

	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if !canvas.IsSet(x, y) {
				continue
			}
			fill := string(canvas.Ink[y/4][x/2])
			if fill == "" {
				fill = "#00ff00"
			}
			cx := float64(x)*scale + scale/2
			cy := float64(y)*scale + scale/2
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>
`, cx, cy, dotRadius, fill))
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

var escaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;")

func escape(s string) string { return escaper.Replace(s) }
