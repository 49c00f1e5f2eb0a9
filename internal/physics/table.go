package physics

import "fmt"

// Report lists the events of one Step in the order they were resolved.
type Report struct {
	Walls    []WallHit `json:"walls,omitempty"`
	Contacts []Contact `json:"contacts,omitempty"`
	// Escaped lists discs still outside the walls after the wall pass. Pair
	// separation may push a disc out again; that is not counted here.
	Escaped []int `json:"escaped,omitempty"`
}

// Table owns the disc arena and advances it.
type Table struct {
	params Params
	discs  []Disc
}

// NewTable validates p and copies discs into a new table.
func NewTable(p Params, discs []Disc) (*Table, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	arena := make([]Disc, len(discs))
	copy(arena, discs)
	return &Table{params: p, discs: arena}, nil
}

func (t *Table) Params() Params  { return t.params }
func (t *Table) Radius() float64 { return t.params.Radius }
func (t *Table) Len() int        { return len(t.discs) }

// Disc returns a copy of disc i.
func (t *Table) Disc(i int) Disc { return t.discs[i] }

// Snapshot copies every disc for read-only use.
func (t *Table) Snapshot() []Disc {
	out := make([]Disc, len(t.discs))
	copy(out, t.discs)
	return out
}

// Step advances every disc by dt, then resolves each pair (i<j) once in index
// order. Earlier pairs see their discs before later pairs do.
func (t *Table) Step(dt float64) Report {
	var rep Report

	for i := range t.discs {
		d := &t.discs[i]
		d.ApplyDecay(t.params, dt)
		d.Integrate(dt)
		for _, h := range d.ResolveWall(t.params) {
			h.Disc = i
			rep.Walls = append(rep.Walls, h)
		}
		if !d.Inside(t.params, 0) {
			rep.Escaped = append(rep.Escaped, i)
		}
	}

	n := len(t.discs)
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			if c, ok := t.ResolvePair(i, j); ok {
				rep.Contacts = append(rep.Contacts, c)
			}
		}
	}

	return rep
}

// ResolvePair resolves an overlap between discs i and j.
func (t *Table) ResolvePair(i, j int) (Contact, bool) {
	overlap, angle, ok := Collide(&t.discs[i], &t.discs[j], t.params)
	if !ok {
		return Contact{}, false
	}
	return Contact{I: i, J: j, Overlap: overlap, Angle: angle}, true
}

// Decay applies one extra velocity decay pass to every disc.
func (t *Table) Decay(dt float64) {
	for i := range t.discs {
		t.discs[i].ApplyDecay(t.params, dt)
	}
}

// AtRest reports whether every disc has zero velocity.
func (t *Table) AtRest() bool {
	for _, d := range t.discs {
		if !d.Vel.IsZero() {
			return false
		}
	}
	return true
}

// KineticEnergy sums 1/2 |v|^2 over all discs (unit mass).
func (t *Table) KineticEnergy() float64 {
	e := 0.0
	for _, d := range t.discs {
		e += d.KineticEnergy()
	}
	return e
}

// Validate returns ErrNonFinite naming the first disc with NaN or Inf state.
func (t *Table) Validate() error {
	for i, d := range t.discs {
		if !d.IsFinite() {
			return fmt.Errorf("%w: disc %d pos=%v vel=%v", ErrNonFinite, i, d.Pos, d.Vel)
		}
	}
	return nil
}

// State flattens the table into x, y, vx, vy per disc.
func (t *Table) State() []float64 {
	s := make([]float64, 0, 4*len(t.discs))
	for _, d := range t.discs {
		s = append(s, d.Pos.X, d.Pos.Y, d.Vel.X, d.Vel.Y)
	}
	return s
}
