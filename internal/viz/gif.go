package viz

import (
	"image"
	"image/color"
	"image/gif"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/san-kum/billiard/internal/physics"
)

// gifPalette holds the background, a default ink and every named disc color.
var gifPalette = color.Palette{
	color.Black,
	color.White,
	rgba(physics.Red),
	rgba(physics.Green),
	rgba(physics.Blue),
	rgba(physics.Yellow),
	rgba(physics.Orange),
	rgba(physics.Purple),
	rgba(physics.Maroon),
	rgba(physics.Brown),
	color.RGBA{0x80, 0x80, 0x80, 0xff},
}

func rgba(c physics.Color) color.RGBA {
	return color.RGBA{c.R, c.G, c.B, 0xff}
}

func inkIndex(ink lipgloss.Color) uint8 {
	if ink == "" {
		return 1
	}
	c, err := physics.ParseColor(string(ink))
	if err != nil {
		return 1
	}
	return uint8(gifPalette.Index(rgba(c)))
}

// captureFrame rasterises the canvas into one GIF frame.
func (m *Model) captureFrame() {
	m.frames = append(m.frames, rasterize(m.canvas))
}

func rasterize(c *Canvas) *image.Paletted {
	charW, charH := 8, 16
	dotW, dotH := charW/2, charH/4
	img := image.NewPaletted(image.Rect(0, 0, c.Width*charW, c.Height*charH), gifPalette)

	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			if c.Grid[row][col] == blank {
				continue
			}
			idx := inkIndex(c.Ink[row][col])
			if idx == 0 {
				idx = 1
			}
			baseX, baseY := col*charW, row*charH
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if !c.IsSet(col*2+dx, row*4+dy) {
						continue
					}
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(baseX+dx*dotW+px, baseY+dy*dotH+py, idx)
						}
					}
				}
			}
		}
	}
	return img
}

func (m *Model) saveGIF(path string) error {
	if len(m.frames) == 0 {
		return nil
	}
	anim := gif.GIF{LoopCount: 0}
	for _, frame := range m.frames {
		anim.Image = append(anim.Image, frame)
		anim.Delay = append(anim.Delay, 2)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return gif.EncodeAll(f, &anim)
}
