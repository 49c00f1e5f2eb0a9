package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/billiard/internal/config"
	"github.com/san-kum/billiard/internal/export"
	"github.com/san-kum/billiard/internal/metrics"
	"github.com/san-kum/billiard/internal/physics"
	"github.com/san-kum/billiard/internal/sim"
	"github.com/spf13/cobra"
)

func newTestCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	preset, configFile = "", ""
	cmd := &cobra.Command{Use: "test"}
	addTableFlags(cmd)
	cmd.Flags().BoolVar(&stopAtRest, "stop-at-rest", false, "")
	cmd.Flags().IntVar(&sampleEvery, "sample", config.DefaultSampleEvery, "")
	if err := cmd.ParseFlags(args); err != nil {
		t.Fatal(err)
	}
	return cmd
}

func TestLoadConfig_Precedence(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("BILLIARD_DT", "0.02")

	path := filepath.Join(t.TempDir(), "table.yaml")
	file := config.GetPreset("corner")
	file.Run.Duration = 3
	if err := config.Save(path, file); err != nil {
		t.Fatal(err)
	}

	cmd := newTestCmd(t, "--preset", "rack", "--config", path, "--rule", "rotated", "--no-host-decay")
	cfg, err := loadConfig(cmd)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Name != "corner" {
		t.Errorf("expected config file to win over preset, got %s", cfg.Name)
	}
	if cfg.Run.Duration != 3 {
		t.Errorf("expected duration 3 from file, got %v", cfg.Run.Duration)
	}
	if cfg.Run.Dt != 0.02 {
		t.Errorf("expected dt 0.02 from env, got %v", cfg.Run.Dt)
	}
	if cfg.Physics.CollisionRule != "rotated" {
		t.Errorf("expected rule from flag, got %s", cfg.Physics.CollisionRule)
	}
	if cfg.Run.HostDecay {
		t.Error("expected host decay off")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	for _, k := range []string{"BILLIARD_DT", "BILLIARD_RULE", "BILLIARD_RADIUS"} {
		t.Setenv(k, "")
	}

	cfg, err := loadConfig(newTestCmd(t))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Name != "reference" || len(cfg.Discs) != 4 {
		t.Errorf("expected reference table, got %s with %d discs", cfg.Name, len(cfg.Discs))
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Chdir(t.TempDir())

	if _, err := loadConfig(newTestCmd(t, "--preset", "nope")); err == nil {
		t.Error("expected error for unknown preset")
	}
	if _, err := loadConfig(newTestCmd(t, "--radius", "-3")); err == nil {
		t.Error("expected validation error")
	}
}

func TestFinalDiscs(t *testing.T) {
	cfg := config.DefaultConfig()
	states := [][]float64{
		make([]float64, 16),
		{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16},
	}

	discs, err := finalDiscs(cfg, states)
	if err != nil {
		t.Fatal(err)
	}
	if len(discs) != 4 {
		t.Fatalf("expected 4 discs, got %d", len(discs))
	}
	if discs[2].Pos.X != 9 || discs[2].Vel.Y != 12 {
		t.Errorf("unexpected disc 2: %+v", discs[2])
	}
	if discs[2].Label != "cue" {
		t.Errorf("expected label to survive, got %q", discs[2].Label)
	}
}

func TestEnergies(t *testing.T) {
	got := energies([][]float64{{0, 0, 3, 4, 0, 0, 0, 0}, {0, 0, 0, 0, 0, 0, 0, 2}})
	if got[0] != 12.5 || got[1] != 2 {
		t.Errorf("expected [12.5 2], got %v", got)
	}
}

func TestLoadConfig_FileOverPreset(t *testing.T) {
	t.Chdir(t.TempDir())

	path := filepath.Join(t.TempDir(), "short.yaml")
	if err := os.WriteFile(path, []byte("run:\n  duration: 2\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(newTestCmd(t, "--preset", "rack", "--config", path))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Name != "rack" || len(cfg.Discs) != 16 {
		t.Errorf("expected the rack table, got %s with %d discs", cfg.Name, len(cfg.Discs))
	}
	if cfg.Run.Duration != 2 {
		t.Errorf("expected duration 2 from file, got %v", cfg.Run.Duration)
	}
}

func sampleStates() [][]float64 {
	cfg := config.DefaultConfig()
	first := make([]float64, 0, 16)
	last := make([]float64, 0, 16)
	for _, d := range cfg.Discs {
		first = append(first, d.X, d.Y, d.VX, d.VY)
		last = append(last, d.X, d.Y-50, 0, 0)
	}
	return [][]float64{first, last}
}

func TestRenderSVG(t *testing.T) {
	cfg := config.DefaultConfig()

	trails, err := renderSVG(cfg, sampleStates(), true)
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(trails, "<path"); n != 4 {
		t.Errorf("expected 4 paths, got %d", n)
	}

	table, err := renderSVG(cfg, sampleStates(), false)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Contains(table, "<path") {
		t.Error("expected no paths without trails")
	}
	if n := strings.Count(table, "<circle"); n != 4 {
		t.Errorf("expected 4 discs, got %d", n)
	}
}

func TestTraceCanvas(t *testing.T) {
	canvas, err := traceCanvas(config.DefaultConfig(), sampleStates())
	if err != nil {
		t.Fatal(err)
	}

	set := 0
	for y := 0; y < canvas.SubHeight(); y++ {
		for x := 0; x < canvas.SubWidth(); x++ {
			if canvas.IsSet(x, y) {
				set++
			}
		}
	}
	if set == 0 {
		t.Fatal("expected a drawn table")
	}

	svg := export.CanvasToSVG(canvas, 4)
	if n := strings.Count(svg, "<circle"); n != set {
		t.Errorf("expected %d dots, got %d", set, n)
	}
}

func TestPrintSummary(t *testing.T) {
	ms := metrics.Defaults()
	moving := sim.Frame{Discs: []physics.Disc{physics.NewDisc(100, 100, 3, 4, physics.White)}}
	slowed := sim.Frame{
		Step:   1,
		Dt:     0.1,
		Discs:  []physics.Disc{physics.NewDisc(100, 100, 0, 2.5, physics.White)},
		Report: physics.Report{Walls: []physics.WallHit{{Side: physics.Left, Speed: 42}}},
	}
	for _, m := range ms {
		m.Observe(moving)
		m.Observe(slowed)
	}

	var buf bytes.Buffer
	printSummary(&buf, &sim.Result{StepsTaken: 1, WallHits: 1, RestTime: -1, Metrics: map[string]float64{}}, ms)
	out := buf.String()

	if !strings.Contains(out, "hardest wall hit: 42.0") {
		t.Errorf("expected peak wall speed in summary, got:\n%s", out)
	}
	if !strings.Contains(out, "energy retained: 25.0%") {
		t.Errorf("expected retained energy in summary, got:\n%s", out)
	}
	if strings.Contains(out, "at rest") {
		t.Error("a table that never rested should not report a rest time")
	}
}
