package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/san-kum/billiard/internal/physics"
	"github.com/san-kum/billiard/internal/sim"
	"gopkg.in/yaml.v3"
)

const (
	DefaultDt          = 1.0 / 60
	DefaultDuration    = 20.0
	DefaultFPS         = 60
	DefaultMaxFrameDt  = 0.1
	DefaultSampleEvery = 1
)

// ErrInvalid wraps every validation failure.
var ErrInvalid = errors.New("config: invalid configuration")

type Config struct {
	Name    string        `yaml:"name,omitempty"`
	Table   TableConfig   `yaml:"table"`
	Physics PhysicsConfig `yaml:"physics"`
	Run     RunConfig     `yaml:"run"`
	Discs   []DiscConfig  `yaml:"discs"`
}

type TableConfig struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type PhysicsConfig struct {
	Radius          float64 `yaml:"radius"`
	Gravity         float64 `yaml:"gravity"`
	WallRestitution float64 `yaml:"wall_restitution"`
	DecayRate       float64 `yaml:"decay_rate"`
	StopEpsilon     float64 `yaml:"stop_epsilon"`
	Contact         string  `yaml:"contact"`
	CollisionRule   string  `yaml:"collision_rule"`
}

type RunConfig struct {
	Dt          float64 `yaml:"dt"`
	Duration    float64 `yaml:"duration"`
	FPS         int     `yaml:"fps"`
	MaxFrameDt  float64 `yaml:"max_frame_dt"`
	HostDecay   bool    `yaml:"host_decay"`
	StopAtRest  bool    `yaml:"stop_at_rest"`
	SampleEvery int     `yaml:"sample_every"`
}

type DiscConfig struct {
	X     float64 `yaml:"x"`
	Y     float64 `yaml:"y"`
	VX    float64 `yaml:"vx"`
	VY    float64 `yaml:"vy"`
	Color string  `yaml:"color"`
	Label string  `yaml:"label,omitempty"`
}

// DefaultConfig is the reference scenario: three resting discs near the top of
// an 800x600 table and a white cue disc moving up from below.
func DefaultConfig() *Config {
	p := physics.DefaultParams()
	return &Config{
		Name: "reference",
		Table: TableConfig{
			Width:  p.Width,
			Height: p.Height,
		},
		Physics: PhysicsConfig{
			Radius:          p.Radius,
			Gravity:         p.Gravity,
			WallRestitution: p.WallRestitution,
			DecayRate:       p.DecayRate,
			StopEpsilon:     p.StopEpsilon,
			Contact:         string(p.Contact),
			CollisionRule:   string(p.Rule),
		},
		Run: RunConfig{
			Dt:          DefaultDt,
			Duration:    DefaultDuration,
			FPS:         DefaultFPS,
			MaxFrameDt:  DefaultMaxFrameDt,
			HostDecay:   true,
			SampleEvery: DefaultSampleEvery,
		},
		Discs: []DiscConfig{
			{X: 400, Y: 193, Color: "red", Label: "1"},
			{X: 370, Y: 150, Color: "blue", Label: "2"},
			{X: 400, Y: 500, VY: -200, Color: "white", Label: "cue"},
			{X: 430, Y: 150, Color: "black", Label: "8"},
		},
	}
}

func Load(path string) (*Config, error) {
	return LoadInto(path, DefaultConfig())
}

// LoadInto reads path over a copy of base. Fields the file leaves out keep
// the base values; a discs list in the file replaces the base discs.
func LoadInto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Clone returns a deep copy.
func (c *Config) Clone() *Config {
	out := *c
	out.Discs = make([]DiscConfig, len(c.Discs))
	copy(out.Discs, c.Discs)
	return &out
}

// Params converts the physics and table sections into the table's constants.
func (c *Config) Params() physics.Params {
	return physics.Params{
		Width:           c.Table.Width,
		Height:          c.Table.Height,
		Radius:          c.Physics.Radius,
		Gravity:         c.Physics.Gravity,
		WallRestitution: c.Physics.WallRestitution,
		DecayRate:       c.Physics.DecayRate,
		StopEpsilon:     c.Physics.StopEpsilon,
		Contact:         physics.ContactMode(c.Physics.Contact),
		Rule:            physics.Rule(c.Physics.CollisionRule),
	}
}

// SimConfig converts the run section into host loop settings.
func (c *Config) SimConfig() sim.Config {
	return sim.Config{
		Dt:            c.Run.Dt,
		Duration:      c.Run.Duration,
		HostDecay:     c.Run.HostDecay,
		StopAtRest:    c.Run.StopAtRest,
		ValidateState: true,
		SampleEvery:   c.Run.SampleEvery,
	}
}

func (c *Config) BuildDiscs() ([]physics.Disc, error) {
	discs := make([]physics.Disc, 0, len(c.Discs))
	for i, dc := range c.Discs {
		color := physics.White
		if dc.Color != "" {
			var err error
			color, err = physics.ParseColor(dc.Color)
			if err != nil {
				return nil, fmt.Errorf("disc %d: %w", i, err)
			}
		}
		d := physics.NewDisc(dc.X, dc.Y, dc.VX, dc.VY, color)
		d.Label = dc.Label
		discs = append(discs, d)
	}
	return discs, nil
}

// NewTable validates the configuration and builds a table from it.
func (c *Config) NewTable() (*physics.Table, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	discs, err := c.BuildDiscs()
	if err != nil {
		return nil, err
	}
	return physics.NewTable(c.Params(), discs)
}

func (c *Config) Validate() error {
	var errs []error
	if err := c.Params().Validate(); err != nil {
		errs = append(errs, err)
	}
	if c.Run.Dt <= 0 {
		errs = append(errs, fmt.Errorf("dt must be positive, got %v", c.Run.Dt))
	}
	if c.Run.Duration <= 0 {
		errs = append(errs, fmt.Errorf("duration must be positive, got %v", c.Run.Duration))
	}
	if c.Run.FPS <= 0 {
		errs = append(errs, fmt.Errorf("fps must be positive, got %d", c.Run.FPS))
	}
	if c.Run.MaxFrameDt <= 0 {
		errs = append(errs, fmt.Errorf("max_frame_dt must be positive, got %v", c.Run.MaxFrameDt))
	}
	if c.Run.SampleEvery < 1 {
		errs = append(errs, fmt.Errorf("sample_every must be at least 1, got %d", c.Run.SampleEvery))
	}
	if len(c.Discs) == 0 {
		errs = append(errs, errors.New("at least one disc is required"))
	}
	if _, err := c.BuildDiscs(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
}
