package metrics

import "github.com/san-kum/billiard/internal/sim"

// Contacts counts resolved pair contacts.
type Contacts struct {
	name  string
	count int
}

func NewContacts() *Contacts {
	return &Contacts{name: "contacts"}
}

func (c *Contacts) Name() string        { return c.name }
func (c *Contacts) Observe(f sim.Frame) { c.count += len(f.Report.Contacts) }
func (c *Contacts) Value() float64      { return float64(c.count) }
func (c *Contacts) Reset()              { c.count = 0 }

// WallHits counts wall impacts, one per axis clamp.
type WallHits struct {
	name  string
	count int
	peak  float64
}

func NewWallHits() *WallHits {
	return &WallHits{name: "wall_hits"}
}

func (w *WallHits) Name() string { return w.name }

func (w *WallHits) Observe(f sim.Frame) {
	for _, h := range f.Report.Walls {
		w.count++
		if h.Speed > w.peak {
			w.peak = h.Speed
		}
	}
}

func (w *WallHits) Value() float64 { return float64(w.count) }

// Peak is the fastest axis speed seen hitting a wall.
func (w *WallHits) Peak() float64 { return w.peak }

func (w *WallHits) Reset() {
	w.count = 0
	w.peak = 0
}

// RestTime is the first frame time at which every disc was still, or -1.
type RestTime struct {
	name string
	at   float64
}

func NewRestTime() *RestTime {
	return &RestTime{name: "rest_time", at: -1}
}

func (r *RestTime) Name() string { return r.name }

func (r *RestTime) Observe(f sim.Frame) {
	if r.at < 0 && f.AtRest() {
		r.at = f.Time
	}
}

func (r *RestTime) Value() float64 { return r.at }
func (r *RestTime) Reset()         { r.at = -1 }
