package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/billiard/internal/config"
	"github.com/san-kum/billiard/internal/experiment"
	"github.com/san-kum/billiard/internal/export"
	"github.com/san-kum/billiard/internal/metrics"
	"github.com/san-kum/billiard/internal/physics"
	"github.com/san-kum/billiard/internal/sim"
	"github.com/san-kum/billiard/internal/storage"
	"github.com/san-kum/billiard/internal/tui"
	"github.com/san-kum/billiard/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir string
	// run settings
	dt          float64
	duration    float64
	rule        string
	contact     string
	radius      float64
	noHostDecay bool
	stopAtRest  bool
	sampleEvery int
	// Config file
	configFile string
	// Preset name
	preset string
	// Frame rate for live views
	frameRate int
	live      bool
	// output file, stdout when empty
	outFile  string
	theme    string
	noTrails bool
	traceSVG string
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "billiard",
		Short: "rigid disc billiard table",
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunPicker()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".billiard", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run simulation",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addTableFlags(runCmd)
	runCmd.Flags().BoolVar(&stopAtRest, "stop-at-rest", false, "stop once every disc is still")
	runCmd.Flags().IntVar(&sampleEvery, "sample", config.DefaultSampleEvery, "record every nth step")
	runCmd.Flags().BoolVar(&live, "live", false, "print the table while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate for --live")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive table in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addTableFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "classic", "color theme")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run results",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	traceCmd := &cobra.Command{
		Use:   "trace [run_id]",
		Short: "draw disc paths of a run on the table",
		Args:  cobra.ExactArgs(1),
		RunE:  traceRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run data to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "export the final table with disc paths to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().BoolVar(&noTrails, "no-trails", false, "draw only the final table")
	traceCmd.Flags().StringVar(&traceSVG, "svg", "", "write the trace canvas to an SVG file instead")
	for _, c := range []*cobra.Command{exportJSONCmd, exportSVGCmd} {
		c.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark the table step",
		Args:  cobra.NoArgs,
		RunE:  benchTable,
	}
	benchCmd.Flags().StringVar(&preset, "preset", "rack", "preset to benchmark")

	compareCmd := &cobra.Command{
		Use:   "compare [rule1] [rule2] ...",
		Short: "compare collision rules on the same table",
		RunE:  compareRules,
	}
	addTableFlags(compareCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("presets:")
			for _, p := range config.ListPresets() {
				cfg := config.GetPreset(p)
				fmt.Printf("  %-10s %d discs, %.0fs\n", p, len(cfg.Discs), cfg.Run.Duration)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, traceCmd, exportCmd, exportCSVCmd,
		exportJSONCmd, exportSVGCmd, benchCmd, compareCmd, presetsCmd,
		newServeCmd(), newScenarioCmd(), newSweepCmd(), newMonteCarloCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addTableFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "duration")
	cmd.Flags().StringVar(&rule, "rule", string(physics.RuleSpeedSwap), "collision rule (speed_swap, rotated)")
	cmd.Flags().StringVar(&contact, "contact", string(physics.ContactRadius), "contact threshold (radius, diameter)")
	cmd.Flags().Float64Var(&radius, "radius", physics.DefaultParams().Radius, "disc radius")
	cmd.Flags().BoolVar(&noHostDecay, "no-host-decay", false, "skip the extra decay pass after each step")
}

// loadConfig resolves the configuration for cmd: preset, then config file,
// then BILLIARD_* environment, then any flag set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}

	if configFile != "" {
		loaded, err := config.LoadInto(configFile, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if err := config.ApplyEnv(cfg); err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Run.Dt = dt
	}
	if flags.Changed("time") {
		cfg.Run.Duration = duration
	}
	if flags.Changed("rule") {
		cfg.Physics.CollisionRule = rule
	}
	if flags.Changed("contact") {
		cfg.Physics.Contact = contact
	}
	if flags.Changed("radius") {
		cfg.Physics.Radius = radius
	}
	if flags.Changed("no-host-decay") {
		cfg.Run.HostDecay = !noHostDecay
	}
	if flags.Changed("stop-at-rest") {
		cfg.Run.StopAtRest = stopAtRest
	}
	if flags.Changed("sample") {
		cfg.Run.SampleEvery = sampleEvery
	}

	return cfg, cfg.Validate()
}

// signalContext is cancelled on interrupt so long runs keep what they have.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ms := metrics.Defaults()
	exp := experiment.New(cfg)
	if err := exp.Setup(ms...); err != nil {
		return err
	}

	if live {
		renderer := tui.NewLiveRenderer(cfg.Name, frameRate)
		renderer.Start()
		defer renderer.Stop()
		exp.GetSimulator().AddObserver(renderer)
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("running %s (%d discs, rule %s)...\n", cfg.Name, len(cfg.Discs), cfg.Physics.CollisionRule)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("stopped early: %v\n", err)
	}

	elapsed := time.Since(start)

	runID, saveErr := st.Save(cfg, result)
	if saveErr != nil {
		return saveErr
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	printSummary(os.Stdout, result, ms)

	return err
}

func printSummary(w io.Writer, result *sim.Result, ms []sim.Metric) {
	fmt.Fprintf(w, "steps: %d\n", result.StepsTaken)
	fmt.Fprintf(w, "contacts: %d, wall hits: %d\n", result.Contacts, result.WallHits)
	if result.RestTime >= 0 {
		fmt.Fprintf(w, "at rest: %.3fs\n", result.RestTime)
	}
	for _, m := range ms {
		switch m := m.(type) {
		case *metrics.WallHits:
			if m.Value() > 0 {
				fmt.Fprintf(w, "hardest wall hit: %.1f\n", m.Peak())
			}
		case *metrics.FinalEnergy:
			fmt.Fprintf(w, "energy retained: %.1f%%\n", 100*m.Retained())
		}
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "error: %v\n", e)
	}
	fmt.Fprintln(w, "\nmetrics:")
	for name, val := range result.Metrics {
		fmt.Fprintf(w, "  %s: %.6f\n", name, val)
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)
	return viz.Run(cfg)
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tDISCS\tDURATION\tDT\tRULE\tCONTACTS\tREST")

	for _, run := range runs {
		rest := "-"
		if run.RestTime >= 0 {
			rest = fmt.Sprintf("%.2fs", run.RestTime)
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.2fs\t%.4fs\t%s\t%d\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Discs,
			run.Duration,
			run.Dt,
			run.Rule,
			run.Contacts,
			rest,
		)
	}

	return w.Flush()
}

func energies(states [][]float64) []float64 {
	out := make([]float64, len(states))
	for i, s := range states {
		for j := 0; j+3 < len(s); j += 4 {
			out[i] += 0.5 * (s[j+2]*s[j+2] + s[j+3]*s[j+3])
		}
	}
	return out
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("discs: %d, rule: %s\n", meta.Discs, meta.Rule)
	fmt.Printf("samples: %d\n\n", len(states))

	fmt.Println(asciigraph.Plot(energies(states),
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("kinetic energy"),
	))
	fmt.Println()

	maxPlots := 3
	discs := min(meta.Discs, maxPlots)
	header := storage.Header(meta.Discs)

	for i := 0; i < discs; i++ {
		xs := make([]float64, len(states))
		ys := make([]float64, len(states))
		for k, s := range states {
			xs[k], ys[k] = s[4*i], s[4*i+1]
		}
		graph := asciigraph.PlotMany([][]float64{xs, ys},
			asciigraph.Height(8),
			asciigraph.Width(80),
			asciigraph.SeriesColors(asciigraph.Red, asciigraph.Blue),
			asciigraph.Caption(header[1+4*i]+" (red), "+header[2+4*i]+" (blue)"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

// finalDiscs rebuilds the discs of a saved run at the positions of its last
// sample.
func finalDiscs(cfg *config.Config, states [][]float64) ([]physics.Disc, error) {
	discs, err := cfg.BuildDiscs()
	if err != nil {
		return nil, err
	}
	if len(states) == 0 {
		return discs, nil
	}
	last := states[len(states)-1]
	for i := range discs {
		if len(last) < 4*(i+1) {
			break
		}
		discs[i].Pos = physics.V(last[4*i], last[4*i+1])
		discs[i].Vel = physics.V(last[4*i+2], last[4*i+3])
	}
	return discs, nil
}

// traceCanvas draws the table at its final sample with every disc's path.
func traceCanvas(cfg *config.Config, states [][]float64) (*viz.Canvas, error) {
	discs, err := finalDiscs(cfg, states)
	if err != nil {
		return nil, err
	}

	canvas := viz.NewCanvas(70, 20)
	pr := viz.DrawTable(canvas, cfg.Params(), discs, viz.CurrentTheme.Rail)
	for i, d := range discs {
		canvas.Pen(viz.DiscColor(d.Color))
		for _, s := range states {
			if len(s) < 4*(i+1) {
				continue
			}
			x, y := pr.Point(physics.V(s[4*i], s[4*i+1]))
			canvas.Set(x, y)
		}
	}
	canvas.Pen("")
	return canvas, nil
}

func traceRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	canvas, err := traceCanvas(cfg, states)
	if err != nil {
		return err
	}

	if traceSVG != "" {
		if err := os.WriteFile(traceSVG, []byte(export.CanvasToSVG(canvas, 4)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", traceSVG)
		return nil
	}

	fmt.Printf("trace: %s (%d samples)\n\n", runID, len(states))
	fmt.Println(canvas.Render())
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	if len(states) == 0 {
		return fmt.Errorf("no data to export")
	}

	return storage.WriteCSV(os.Stdout, meta.Discs, &sim.Result{States: states, Times: times})
}

// output opens outFile, or stdout when it is unset.
func output() (*os.File, func() error, error) {
	if outFile == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(outFile)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	final, err := finalDiscs(cfg, states)
	if err != nil {
		return err
	}

	result := &sim.Result{
		States:     states,
		Times:      times,
		Metrics:    meta.Metrics,
		Final:      final,
		StepsTaken: meta.Steps,
		Contacts:   meta.Contacts,
		WallHits:   meta.WallHits,
		RestTime:   meta.RestTime,
	}

	f, closeFn, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(f, cfg, result); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

// renderSVG draws a saved run at its last sample, with disc paths unless
// trails is off.
func renderSVG(cfg *config.Config, states [][]float64, trails bool) (string, error) {
	discs, err := finalDiscs(cfg, states)
	if err != nil {
		return "", err
	}
	if !trails {
		return export.TableToSVG(cfg.Params(), discs), nil
	}
	return export.TrailsToSVG(cfg.Params(), discs, states), nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	cfg, err := st.LoadConfig(runID)
	if err != nil {
		return err
	}
	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	svg, err := renderSVG(cfg, states, !noTrails)
	if err != nil {
		return err
	}

	f, closeFn, err := output()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(f, svg); err != nil {
		closeFn()
		return err
	}
	return closeFn()
}

func benchTable(cmd *cobra.Command, args []string) error {
	base := config.GetPreset(preset)
	if base == nil {
		return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	durations := []float64{1.0, 5.0, 10.0}
	dts := []float64{1.0 / 240, 1.0 / 60, 1.0 / 30}

	fmt.Printf("benchmarking %s (%d discs)\n\n", preset, len(base.Discs))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DURATION\tDT\tSTEPS\tTIME\tSTEPS/SEC")

	for _, dur := range durations {
		for _, step := range dts {
			cfg := base.Clone()
			cfg.Run.Duration = dur
			cfg.Run.Dt = step

			exp := experiment.New(cfg)
			if err := exp.Setup(); err != nil {
				return err
			}

			start := time.Now()
			result, err := exp.Run(context.Background())
			if err != nil {
				return err
			}
			elapsed := time.Since(start)

			stepsPerSec := float64(result.StepsTaken) / elapsed.Seconds()

			fmt.Fprintf(w, "%.1fs\t%.4fs\t%d\t%v\t%.0f\n",
				dur, step, result.StepsTaken, elapsed, stepsPerSec)
		}
	}

	return w.Flush()
}

func compareRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	rules := args
	if len(rules) == 0 {
		rules = []string{string(physics.RuleSpeedSwap), string(physics.RuleRotated)}
	}

	jobs := make([]sim.Job, 0, len(rules))
	for _, r := range rules {
		ruleCfg := cfg.Clone()
		ruleCfg.Physics.CollisionRule = r
		exp := experiment.New(ruleCfg)
		if err := exp.Setup(); err != nil {
			return fmt.Errorf("%s: %w", r, err)
		}
		jobs = append(jobs, exp.Job(r))
	}

	start := time.Now()
	results, err := sim.NewEnsemble(jobs...).Run(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("comparing rules for %s (dt=%.4f, duration=%.1fs)\n\n", cfg.Name, cfg.Run.Dt, cfg.Run.Duration)
	fmt.Printf("%-12s  %-10s  %-10s  %-12s  %-10s\n", "rule", "contacts", "wall_hits", "final_energy", "rest")
	fmt.Println(strings.Repeat("-", 62))

	for i, r := range results {
		rest := "-"
		if r.RestTime >= 0 {
			rest = fmt.Sprintf("%.2fs", r.RestTime)
		}
		fmt.Printf("%-12s  %10d  %10d  %12.2f  %10s\n",
			rules[i], r.Contacts, r.WallHits, r.Metrics["final_energy"], rest)
	}
	fmt.Printf("\n%d runs in %v\n", len(results), time.Since(start))

	return nil
}
