package config

import (
	"math"
	"sort"
	"strconv"
)

var Presets = map[string]func() *Config{
	"reference": DefaultConfig,
	"rack":      rackPreset,
	"corner":    cornerPreset,
	"crowd":     crowdPreset,
	"rest":      restPreset,
}

var rackColors = []string{"yellow", "blue", "red", "purple", "orange", "green", "maroon", "black", "brown"}

// rackPreset sets a five-row triangle of touching discs with the apex facing a
// fast cue disc.
func rackPreset() *Config {
	cfg := DefaultConfig()
	cfg.Name = "rack"
	cfg.Run.Duration = 30

	r := cfg.Physics.Radius
	rowStep := 2 * r * math.Sin(math.Pi/3)
	apexX, apexY := cfg.Table.Width/2, 220.0

	discs := make([]DiscConfig, 0, 16)
	n := 0
	for row := 0; row < 5; row++ {
		y := apexY - float64(row)*rowStep
		for k := 0; k <= row; k++ {
			x := apexX + (float64(k)-float64(row)/2)*2*r
			n++
			discs = append(discs, DiscConfig{
				X:     x,
				Y:     y,
				Color: rackColors[(n-1)%len(rackColors)],
				Label: strconv.Itoa(n),
			})
		}
	}
	discs = append(discs, DiscConfig{X: apexX, Y: 500, VY: -600, Color: "white", Label: "cue"})
	cfg.Discs = discs
	return cfg
}

func cornerPreset() *Config {
	cfg := DefaultConfig()
	cfg.Name = "corner"
	cfg.Discs = []DiscConfig{
		{X: 120, Y: 110, VX: -300, VY: -250, Color: "white", Label: "cue"},
	}
	return cfg
}

// crowdPreset starts six discs overlapping at rest so only separation moves them.
func crowdPreset() *Config {
	cfg := DefaultConfig()
	cfg.Name = "crowd"
	cfg.Run.Duration = 5
	cx, cy := cfg.Table.Width/2, cfg.Table.Height/2
	cfg.Discs = nil
	for i := 0; i < 6; i++ {
		a := float64(i) * math.Pi / 3
		cfg.Discs = append(cfg.Discs, DiscConfig{
			X:     cx + 6*math.Cos(a),
			Y:     cy + 6*math.Sin(a),
			Color: rackColors[i],
			Label: strconv.Itoa(i + 1),
		})
	}
	return cfg
}

func restPreset() *Config {
	cfg := DefaultConfig()
	cfg.Name = "rest"
	cfg.Run.Duration = 5
	for i := range cfg.Discs {
		cfg.Discs[i].VX, cfg.Discs[i].VY = 0, 0
	}
	return cfg
}

// GetPreset returns a fresh copy of the named preset, or nil.
func GetPreset(name string) *Config {
	fn, ok := Presets[name]
	if !ok {
		return nil
	}
	return fn()
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
