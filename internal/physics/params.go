package physics

import (
	"fmt"
	"math"
)

const (
	DefaultWidth           = 800.0
	DefaultHeight          = 600.0
	DefaultRadius          = 20.0
	DefaultGravity         = 9.81
	DefaultWallRestitution = 0.50
	DefaultDecayRate       = 5.0
	DefaultStopEpsilon     = 0.1
)

// ContactMode selects the center distance below which two discs collide.
type ContactMode string

const (
	// ContactRadius collides at distance < radius (the reference behavior).
	ContactRadius ContactMode = "radius"
	// ContactDiameter collides at distance < 2*radius.
	ContactDiameter ContactMode = "diameter"
)

// Rule selects how velocities are exchanged in a pair collision.
type Rule string

const (
	// RuleSpeedSwap gives each disc the other's speed along its own heading.
	RuleSpeedSwap Rule = "speed_swap"
	// RuleRotated reproduces the reference rotated-frame arithmetic verbatim.
	RuleRotated Rule = "rotated"
)

// Params holds every constant the table needs. It is fixed for a run.
type Params struct {
	Width           float64
	Height          float64
	Radius          float64
	Gravity         float64 // carried for configuration, not used by collisions
	WallRestitution float64
	DecayRate       float64
	StopEpsilon     float64
	Contact         ContactMode
	Rule            Rule
}

func DefaultParams() Params {
	return Params{
		Width:           DefaultWidth,
		Height:          DefaultHeight,
		Radius:          DefaultRadius,
		Gravity:         DefaultGravity,
		WallRestitution: DefaultWallRestitution,
		DecayRate:       DefaultDecayRate,
		StopEpsilon:     DefaultStopEpsilon,
		Contact:         ContactRadius,
		Rule:            RuleSpeedSwap,
	}
}

// Threshold is the center distance below which a pair is resolved.
func (p Params) Threshold() float64 {
	if p.Contact == ContactDiameter {
		return 2 * p.Radius
	}
	return p.Radius
}

func (p Params) Validate() error {
	positive := []struct {
		name string
		v    float64
	}{
		{"width", p.Width},
		{"height", p.Height},
		{"radius", p.Radius},
	}
	for _, f := range positive {
		if !(f.v > 0) || math.IsInf(f.v, 0) {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParams, f.name, f.v)
		}
	}
	if p.Width < 2*p.Radius || p.Height < 2*p.Radius {
		return fmt.Errorf("%w: table %vx%v cannot hold a disc of radius %v", ErrInvalidParams, p.Width, p.Height, p.Radius)
	}
	if !(p.WallRestitution >= 0 && p.WallRestitution <= 1) {
		return fmt.Errorf("%w: wall restitution must be in [0,1], got %v", ErrInvalidParams, p.WallRestitution)
	}
	if !(p.DecayRate >= 0) || math.IsInf(p.DecayRate, 0) {
		return fmt.Errorf("%w: decay rate must be non-negative, got %v", ErrInvalidParams, p.DecayRate)
	}
	if !(p.StopEpsilon >= 0) || math.IsInf(p.StopEpsilon, 0) {
		return fmt.Errorf("%w: stop epsilon must be non-negative, got %v", ErrInvalidParams, p.StopEpsilon)
	}
	switch p.Contact {
	case ContactRadius, ContactDiameter:
	default:
		return fmt.Errorf("%w: unknown contact %q", ErrInvalidParams, p.Contact)
	}
	switch p.Rule {
	case RuleSpeedSwap, RuleRotated:
	default:
		return fmt.Errorf("%w: unknown collision rule %q", ErrInvalidParams, p.Rule)
	}
	return nil
}
