package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/billiard/internal/config"
	"github.com/san-kum/billiard/internal/physics"
	"github.com/san-kum/billiard/internal/sim"
)

type ExportData struct {
	Name     string             `json:"name"`
	Rule     string             `json:"collision_rule"`
	Contact  string             `json:"contact"`
	Dt       float64            `json:"dt"`
	Duration float64            `json:"duration"`
	Steps    int                `json:"steps"`
	RestTime float64            `json:"rest_time"`
	Columns  []string           `json:"columns"`
	Times    []float64          `json:"times"`
	States   [][]float64        `json:"states"`
	Final    []physics.Disc     `json:"final"`
	Metrics  map[string]float64 `json:"metrics"`
}

func NewExportData(cfg *config.Config, result *sim.Result) ExportData {
	return ExportData{
		Name:     cfg.Name,
		Rule:     cfg.Physics.CollisionRule,
		Contact:  cfg.Physics.Contact,
		Dt:       cfg.Run.Dt,
		Duration: cfg.Run.Duration,
		Steps:    result.StepsTaken,
		RestTime: result.RestTime,
		Columns:  Header(len(cfg.Discs))[1:],
		Times:    result.Times,
		States:   result.States,
		Final:    result.Final,
		Metrics:  result.Metrics,
	}
}

// ExportJSON writes the run as one indented JSON document.
func ExportJSON(w io.Writer, cfg *config.Config, result *sim.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(NewExportData(cfg, result))
}
