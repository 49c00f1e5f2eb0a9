package physics

import "math"

// Contact records one resolved pair overlap.
type Contact struct {
	I       int     `json:"i"`
	J       int     `json:"j"`
	Overlap float64 `json:"overlap"`
	Angle   float64 `json:"angle"`
}

// Collide resolves an overlap between a and b in place and reports whether
// they were in contact. Separation is split equally along the line of centers;
// velocities are exchanged according to p.Rule.
func Collide(a, b *Disc, p Params) (overlap, angle float64, hit bool) {
	delta := a.Pos.Sub(b.Pos)
	dist := delta.Len()
	threshold := p.Threshold()
	if dist >= threshold {
		return 0, 0, false
	}

	overlap = threshold - dist
	angle = delta.Heading()
	shift := Polar(overlap/2, angle)
	a.Pos = a.Pos.Add(shift)
	b.Pos = b.Pos.Sub(shift)

	switch p.Rule {
	case RuleRotated:
		exchangeRotated(a, b, angle)
	default:
		exchangeSpeeds(a, b)
	}
	return overlap, angle, true
}

// exchangeSpeeds gives each disc the other's speed while keeping its own heading.
func exchangeSpeeds(a, b *Disc) {
	sa, sb := a.Vel.Len(), b.Vel.Len()
	ha, hb := a.Vel.Heading(), b.Vel.Heading()
	a.Vel = Polar(sb, ha)
	b.Vel = Polar(sa, hb)
}

// exchangeRotated mixes both velocities in the frame rotated by angle, reading
// a's already-updated components when computing b's, then swaps the results.
func exchangeRotated(a, b *Disc, angle float64) {
	sin, cos := math.Sincos(angle)
	va, vb := a.Vel, b.Vel

	a1 := Vec2{
		X: cos*va.X + sin*va.Y,
		Y: cos*vb.X + sin*vb.Y,
	}
	b1 := Vec2{
		X: cos*vb.X - sin*a1.Y,
		Y: cos*a1.X - sin*vb.Y,
	}

	a.Vel = Polar(b1.Len(), b1.Heading())
	b.Vel = Polar(a1.Len(), a1.Heading())
}
