package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/san-kum/billiard/internal/automation"
	"github.com/san-kum/billiard/internal/storage"
	"github.com/spf13/cobra"
)

var (
	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int
	mcTrials   int
	mcPerturb  float64
	mcSeed     int64
	noSave     bool
)

func newScenarioCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scenario [file.yaml]",
		Short: "run a scripted sequence of tables",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	cmd.Flags().BoolVar(&noSave, "no-save", false, "ignore save_as in the scenario")
	return cmd
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	var st *storage.Store
	if !noSave {
		st = storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
	}

	ctx, cancel := signalContext()
	defer cancel()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("  %s\n", sc.Description)
	}

	results, err := automation.RunScenario(ctx, sc, st)
	if err != nil {
		return err
	}

	fmt.Println()
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tSTEPS\tCONTACTS\tWALL HITS\tFINAL ENERGY")
	for i, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%.2f\n", i+1, r.StepsTaken, r.Contacts, r.WallHits, r.Metrics["final_energy"])
	}
	return w.Flush()
}

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "run a table across a range of one parameter",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addTableFlags(cmd)
	cmd.Flags().StringVar(&sweepParam, "param", "decay_rate", "parameter ("+strings.Join(automation.SweepParams, ", ")+")")
	cmd.Flags().Float64Var(&sweepMin, "min", 0, "first value")
	cmd.Flags().Float64Var(&sweepMax, "max", 100, "last value")
	cmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:     cfg,
		Param:    sweepParam,
		Min:      sweepMin,
		Max:      sweepMax,
		NumSteps: sweepSteps,
	})
	if err != nil {
		return err
	}

	fmt.Printf("sweep %s over %s\n\n", sweepParam, cfg.Name)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tCONTACTS\tWALL HITS\tPEAK ENERGY\tFINAL ENERGY\tREST\n", strings.ToUpper(sweepParam))
	for _, r := range results {
		rest := "-"
		if r.RestTime >= 0 {
			rest = fmt.Sprintf("%.2fs", r.RestTime)
		}
		fmt.Fprintf(w, "%.4f\t%d\t%d\t%.2f\t%.2f\t%s\n", r.ParamValue, r.Contacts, r.WallHits, r.MaxEnergy, r.FinalEnergy, rest)
	}
	return w.Flush()
}

func newMonteCarloCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run a table many times with jittered velocities",
		Args:  cobra.NoArgs,
		RunE:  runMonteCarlo,
	}
	addTableFlags(cmd)
	cmd.Flags().IntVar(&mcTrials, "trials", 20, "number of trials")
	cmd.Flags().Float64Var(&mcPerturb, "perturb", 20, "max velocity jitter per axis")
	cmd.Flags().Int64Var(&mcSeed, "seed", 0, "random seed (0 for time based)")
	return cmd
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: mcPerturb,
		NumTrials:    mcTrials,
		Seed:         mcSeed,
	})
	if err != nil && len(results) == 0 {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	var rested int
	var restSum float64
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("trial %d: %v\n", r.TrialID, r.Err)
		}
		if r.RestTime >= 0 {
			rested++
			restSum += r.RestTime
		}
	}

	fmt.Printf("\n%d trials on %s: %d stable, %d unstable\n", len(results), cfg.Name, stable, unstable)
	if rested > 0 {
		fmt.Printf("%d came to rest, mean %.2fs\n", rested, restSum/float64(rested))
	}
	return err
}
