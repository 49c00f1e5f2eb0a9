package physics

import "math"

// Disc is a single rigid disc. Radius comes from the table's Params.
type Disc struct {
	Pos   Vec2   `json:"pos"`
	Vel   Vec2   `json:"vel"`
	Color Color  `json:"color"`
	Label string `json:"label,omitempty"`
}

func NewDisc(x, y, vx, vy float64, c Color) Disc {
	return Disc{Pos: V(x, y), Vel: V(vx, vy), Color: c}
}

// Side names a table wall.
type Side string

const (
	Left   Side = "left"
	Right  Side = "right"
	Top    Side = "top"
	Bottom Side = "bottom"
)

// WallHit records one wall impact. Speed is the axis speed before restitution.
type WallHit struct {
	Disc  int     `json:"disc"`
	Side  Side    `json:"side"`
	Speed float64 `json:"speed"`
}

// ApplyDecay slows each velocity axis by DecayRate*dt without crossing zero and
// snaps axes slower than StopEpsilon to exactly zero.
func (d *Disc) ApplyDecay(p Params, dt float64) {
	step := p.DecayRate * dt
	d.Vel.X = decayAxis(d.Vel.X, step, p.StopEpsilon)
	d.Vel.Y = decayAxis(d.Vel.Y, step, p.StopEpsilon)
}

func decayAxis(v, step, eps float64) float64 {
	if v == 0 {
		return 0
	}
	mag := math.Abs(v) - step
	if mag < eps {
		return 0
	}
	return math.Copysign(mag, v)
}

// Integrate advances the position by Vel*dt.
func (d *Disc) Integrate(dt float64) {
	d.Pos = d.Pos.Add(d.Vel.Scale(dt))
}

// ResolveWall clamps the disc inside the table and reflects the crossing axis
// outward, scaled by WallRestitution. Hits are returned with Disc left at zero.
func (d *Disc) ResolveWall(p Params) []WallHit {
	var hits []WallHit
	r, k := p.Radius, p.WallRestitution

	if d.Pos.X-r < 0 {
		hits = append(hits, WallHit{Side: Left, Speed: math.Abs(d.Vel.X)})
		d.Vel.X = math.Abs(d.Vel.X) * k
		d.Pos.X = r
	} else if d.Pos.X+r > p.Width {
		hits = append(hits, WallHit{Side: Right, Speed: math.Abs(d.Vel.X)})
		d.Vel.X = -math.Abs(d.Vel.X) * k
		d.Pos.X = p.Width - r
	}

	if d.Pos.Y-r < 0 {
		hits = append(hits, WallHit{Side: Top, Speed: math.Abs(d.Vel.Y)})
		d.Vel.Y = math.Abs(d.Vel.Y) * k
		d.Pos.Y = r
	} else if d.Pos.Y+r > p.Height {
		hits = append(hits, WallHit{Side: Bottom, Speed: math.Abs(d.Vel.Y)})
		d.Vel.Y = -math.Abs(d.Vel.Y) * k
		d.Pos.Y = p.Height - r
	}

	return hits
}

// Inside reports whether the disc lies within the table inset by its radius,
// allowing tol of slack.
func (d Disc) Inside(p Params, tol float64) bool {
	r := p.Radius
	return d.Pos.X >= r-tol && d.Pos.X <= p.Width-r+tol &&
		d.Pos.Y >= r-tol && d.Pos.Y <= p.Height-r+tol
}

func (d Disc) Speed() float64 { return d.Vel.Len() }

// KineticEnergy assumes unit mass.
func (d Disc) KineticEnergy() float64 { return 0.5 * d.Vel.LenSquared() }

func (d Disc) IsFinite() bool { return d.Pos.IsFinite() && d.Vel.IsFinite() }
