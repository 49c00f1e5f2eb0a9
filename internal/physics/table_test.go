package physics

import (
	"errors"
	"math"
	"math/rand"
	"testing"
)

const tol = 1e-9

func newTestTable(t *testing.T, p Params, discs ...Disc) *Table {
	t.Helper()
	tb, err := NewTable(p, discs)
	if err != nil {
		t.Fatalf("new table: %v", err)
	}
	return tb
}

func distance(a, b Disc) float64 { return a.Pos.Sub(b.Pos).Len() }

func TestResolvePair_SpeedSwapHeadOn(t *testing.T) {
	p := DefaultParams()
	tb := newTestTable(t, p,
		NewDisc(0, 0, 0, -200, White),
		NewDisc(0, 15, 0, 0, Red),
	)

	c, ok := tb.ResolvePair(0, 1)
	if !ok {
		t.Fatal("expected contact at distance 15 < radius 20")
	}
	if math.Abs(c.Overlap-5) > tol {
		t.Errorf("expected overlap 5, got %v", c.Overlap)
	}

	a, b := tb.Disc(0), tb.Disc(1)
	if got := distance(a, b); math.Abs(got-p.Radius) > tol {
		t.Errorf("expected separation %v, got %v", p.Radius, got)
	}
	if math.Abs(a.Pos.Y+2.5) > tol || math.Abs(b.Pos.Y-17.5) > tol {
		t.Errorf("expected each disc to move 2.5, got a=%v b=%v", a.Pos, b.Pos)
	}
	if a.Speed() > tol {
		t.Errorf("expected A to take B's speed 0, got %v", a.Speed())
	}
	if math.Abs(b.Speed()-200) > tol {
		t.Errorf("expected B to take A's speed 200, got %v", b.Speed())
	}
	if math.Abs(b.Vel.X-200) > tol || math.Abs(b.Vel.Y) > tol {
		t.Errorf("expected B along its own zero heading, got %v", b.Vel)
	}
}

func TestResolvePair_KeepsOwnHeading(t *testing.T) {
	p := DefaultParams()
	tb := newTestTable(t, p,
		NewDisc(100, 100, 30, 40, White),
		NewDisc(110, 100, -5, 0, Red),
	)

	if _, ok := tb.ResolvePair(0, 1); !ok {
		t.Fatal("expected contact")
	}

	a, b := tb.Disc(0), tb.Disc(1)
	if math.Abs(a.Vel.X-3) > tol || math.Abs(a.Vel.Y-4) > tol {
		t.Errorf("expected A (3, 4), got %v", a.Vel)
	}
	if math.Abs(b.Vel.X+50) > tol || math.Abs(b.Vel.Y) > tol {
		t.Errorf("expected B (-50, 0), got %v", b.Vel)
	}
}

func TestResolvePair_SeparatesAlongNormal(t *testing.T) {
	p := DefaultParams()
	tb := newTestTable(t, p,
		NewDisc(100, 100, 0, 0, White),
		NewDisc(106, 108, 0, 0, Red),
	)

	c, ok := tb.ResolvePair(0, 1)
	if !ok {
		t.Fatal("expected contact")
	}

	wantAngle := math.Atan2(-8, -6)
	if math.Abs(c.Angle-wantAngle) > tol {
		t.Errorf("expected angle %v, got %v", wantAngle, c.Angle)
	}

	a, b := tb.Disc(0), tb.Disc(1)
	if math.Abs(a.Pos.X-97) > tol || math.Abs(a.Pos.Y-96) > tol {
		t.Errorf("expected A at (97, 96), got %v", a.Pos)
	}
	if math.Abs(b.Pos.X-109) > tol || math.Abs(b.Pos.Y-112) > tol {
		t.Errorf("expected B at (109, 112), got %v", b.Pos)
	}
	if got := distance(a, b); math.Abs(got-p.Threshold()) > tol {
		t.Errorf("expected distance %v, got %v", p.Threshold(), got)
	}
}

func TestResolvePair_CoincidentCenters(t *testing.T) {
	p := DefaultParams()
	tb := newTestTable(t, p,
		NewDisc(200, 200, 10, 0, White),
		NewDisc(200, 200, 0, 0, Red),
	)

	c, ok := tb.ResolvePair(0, 1)
	if !ok {
		t.Fatal("expected contact for coincident centers")
	}
	if c.Angle != 0 {
		t.Errorf("expected angle 0, got %v", c.Angle)
	}
	if err := tb.Validate(); err != nil {
		t.Fatalf("unexpected non-finite state: %v", err)
	}

	a, b := tb.Disc(0), tb.Disc(1)
	if a.Pos != V(210, 200) || b.Pos != V(190, 200) {
		t.Errorf("expected split along x, got a=%v b=%v", a.Pos, b.Pos)
	}
}

func TestResolvePair_NoContact(t *testing.T) {
	p := DefaultParams()
	a := NewDisc(100, 100, 5, 0, White)
	b := NewDisc(100+p.Radius, 100, -5, 0, Red)
	tb := newTestTable(t, p, a, b)

	if _, ok := tb.ResolvePair(0, 1); ok {
		t.Error("expected no contact at distance == radius")
	}
	if tb.Disc(0) != a || tb.Disc(1) != b {
		t.Error("discs changed without contact")
	}
}

func TestResolvePair_ContactDiameter(t *testing.T) {
	discs := []Disc{
		NewDisc(100, 100, 0, 0, White),
		NewDisc(130, 100, 0, 0, Red),
	}

	p := DefaultParams()
	if _, ok := newTestTable(t, p, discs...).ResolvePair(0, 1); ok {
		t.Error("radius contact should ignore distance 30")
	}

	p.Contact = ContactDiameter
	tb := newTestTable(t, p, discs...)
	if _, ok := tb.ResolvePair(0, 1); !ok {
		t.Fatal("diameter contact should resolve distance 30")
	}
	if got := distance(tb.Disc(0), tb.Disc(1)); math.Abs(got-40) > tol {
		t.Errorf("expected distance 40, got %v", got)
	}
}

func TestResolvePair_RotatedRule(t *testing.T) {
	p := DefaultParams()
	p.Rule = RuleRotated
	tb := newTestTable(t, p,
		NewDisc(0, 0, 0, -200, White),
		NewDisc(0, 15, 0, 0, Red),
	)

	if _, ok := tb.ResolvePair(0, 1); !ok {
		t.Fatal("expected contact")
	}

	a, b := tb.Disc(0), tb.Disc(1)
	if a.Speed() > tol {
		t.Errorf("expected A at rest, got %v", a.Vel)
	}
	if math.Abs(b.Vel.X-200) > tol || math.Abs(b.Vel.Y) > tol {
		t.Errorf("expected B (200, 0), got %v", b.Vel)
	}
}

func TestStep_PairOrder(t *testing.T) {
	tb := newTestTable(t, DefaultParams(),
		NewDisc(100, 100, 0, 0, White),
		NewDisc(105, 100, 0, 0, Red),
		NewDisc(100, 105, 0, 0, Blue),
	)

	rep := tb.Step(0)

	want := [][2]int{{0, 1}, {0, 2}, {1, 2}}
	if len(rep.Contacts) != len(want) {
		t.Fatalf("expected %d contacts, got %d: %+v", len(want), len(rep.Contacts), rep.Contacts)
	}
	for k, c := range rep.Contacts {
		if c.I != want[k][0] || c.J != want[k][1] {
			t.Errorf("contact %d: expected pair %v, got (%d, %d)", k, want[k], c.I, c.J)
		}
	}
}

func TestStep_RestIsIdempotent(t *testing.T) {
	discs := []Disc{
		NewDisc(300, 300, 0, 0, White),
		NewDisc(500, 300, 0, 0, Red),
		NewDisc(21, 579, 0, 0, Blue),
	}
	tb := newTestTable(t, DefaultParams(), discs...)

	for i := 0; i < 500; i++ {
		rep := tb.Step(1.0 / 60)
		tb.Decay(1.0 / 60)
		if len(rep.Walls) != 0 || len(rep.Contacts) != 0 {
			t.Fatalf("step %d: unexpected events %+v", i, rep)
		}
	}

	for i, d := range tb.Snapshot() {
		if d != discs[i] {
			t.Errorf("disc %d drifted: %v -> %v", i, discs[i], d)
		}
	}
	if !tb.AtRest() {
		t.Error("expected table at rest")
	}
}

func TestStep_WallContainment(t *testing.T) {
	p := DefaultParams()
	rng := rand.New(rand.NewSource(7))

	discs := make([]Disc, 12)
	for i := range discs {
		discs[i] = NewDisc(
			p.Radius+rng.Float64()*(p.Width-2*p.Radius),
			p.Radius+rng.Float64()*(p.Height-2*p.Radius),
			(rng.Float64()*2-1)*2000,
			(rng.Float64()*2-1)*2000,
			White,
		)
	}

	dt := 1.0 / 60
	for step := 0; step < 600; step++ {
		for i := range discs {
			d := &discs[i]
			d.ApplyDecay(p, dt)
			d.Integrate(dt)
			d.ResolveWall(p)
			if !d.Inside(p, 1e-9) {
				t.Fatalf("step %d: disc %d escaped to %v", step, i, d.Pos)
			}
		}
		for i := 0; i < len(discs); i++ {
			for j := i + 1; j < len(discs); j++ {
				Collide(&discs[i], &discs[j], p)
			}
		}
	}
}

func TestStep_StaysFinite(t *testing.T) {
	p := DefaultParams()
	tb := newTestTable(t, p,
		NewDisc(400, 300, 500, 0, White),
		NewDisc(400, 300, -500, 0, Red),
		NewDisc(400, 300, 0, 500, Blue),
		NewDisc(20, 20, -900, -900, Black),
	)

	for i := 0; i < 1000; i++ {
		tb.Step(1.0 / 60)
		tb.Decay(1.0 / 60)
		if err := tb.Validate(); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
	}
}

func TestNewTable_RejectsParams(t *testing.T) {
	p := DefaultParams()
	p.Radius = -1
	if _, err := NewTable(p, nil); !errors.Is(err, ErrInvalidParams) {
		t.Errorf("expected ErrInvalidParams, got %v", err)
	}
}

func TestNewTable_CopiesDiscs(t *testing.T) {
	discs := []Disc{NewDisc(100, 100, 10, 0, White)}
	tb := newTestTable(t, DefaultParams(), discs...)

	discs[0].Pos = V(0, 0)
	if tb.Disc(0).Pos != V(100, 100) {
		t.Error("table shares memory with caller slice")
	}

	snap := tb.Snapshot()
	snap[0].Vel = V(0, 0)
	if tb.Disc(0).Vel != V(10, 0) {
		t.Error("snapshot shares memory with table")
	}
}

func TestTable_ValidateNonFinite(t *testing.T) {
	tb := newTestTable(t, DefaultParams(), NewDisc(100, 100, math.NaN(), 0, White))
	if err := tb.Validate(); !errors.Is(err, ErrNonFinite) {
		t.Errorf("expected ErrNonFinite, got %v", err)
	}
}

func TestTable_KineticEnergyAndState(t *testing.T) {
	tb := newTestTable(t, DefaultParams(),
		NewDisc(100, 110, 3, 4, White),
		NewDisc(200, 210, 0, -2, Red),
	)

	if got := tb.KineticEnergy(); math.Abs(got-14.5) > tol {
		t.Errorf("expected energy 14.5, got %v", got)
	}

	want := []float64{100, 110, 3, 4, 200, 210, 0, -2}
	got := tb.State()
	if len(got) != len(want) {
		t.Fatalf("expected %d values, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("state[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestThreshold_ContactMode(t *testing.T) {
	tests := []struct {
		mode ContactMode
		want float64
	}{
		{ContactRadius, 20},
		{ContactDiameter, 40},
	}

	for _, tt := range tests {
		p := DefaultParams()
		p.Contact = tt.mode
		if got := p.Threshold(); got != tt.want {
			t.Errorf("%s: expected threshold %v, got %v", tt.mode, tt.want, got)
		}

		rep := newTestTable(t, p,
			NewDisc(100, 100, 0, 0, White),
			NewDisc(100+tt.want-1, 100, 0, 0, Red),
		).Step(0)
		if len(rep.Contacts) != 1 {
			t.Errorf("%s: expected 1 contact, got %d", tt.mode, len(rep.Contacts))
		}
	}
}

func TestStep_EscapedAfterWallPass(t *testing.T) {
	p := DefaultParams()
	tb := newTestTable(t, p,
		NewDisc(20, 300, 0, 0, White),
		NewDisc(30, 300, 0, 0, Red),
	)

	rep := tb.Step(1.0 / 60)
	if len(rep.Contacts) != 1 {
		t.Fatalf("expected 1 contact, got %d", len(rep.Contacts))
	}
	if tb.Disc(0).Inside(p, 0) {
		t.Fatalf("expected separation to push disc 0 past the rail, got %+v", tb.Disc(0).Pos)
	}
	if len(rep.Escaped) != 0 {
		t.Errorf("expected no escapes after the wall pass, got %v", rep.Escaped)
	}

	nan := newTestTable(t, p, NewDisc(math.NaN(), 300, 0, 0, White))
	if rep := nan.Step(1.0 / 60); len(rep.Escaped) != 1 || rep.Escaped[0] != 0 {
		t.Errorf("expected disc 0 escaped, got %v", rep.Escaped)
	}
}
