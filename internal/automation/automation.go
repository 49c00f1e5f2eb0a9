package automation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"time"

	"github.com/san-kum/billiard/internal/config"
	"github.com/san-kum/billiard/internal/experiment"
	"github.com/san-kum/billiard/internal/sim"
	"github.com/san-kum/billiard/internal/storage"
	"gopkg.in/yaml.v3"
)

// Scenario is a scripted sequence of runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset (or a config file) and overrides a few
// fields. Zero values leave the base untouched.
type ScenarioStep struct {
	Preset    string              `yaml:"preset"`
	Config    string              `yaml:"config"`
	Rule      string              `yaml:"rule"`
	Contact   string              `yaml:"contact"`
	Duration  float64             `yaml:"duration"`
	Dt        float64             `yaml:"dt"`
	HostDecay *bool               `yaml:"host_decay"`
	Discs     []config.DiscConfig `yaml:"discs"`
	Params    map[string]float64  `yaml:"params"`
	SaveAs    string              `yaml:"save_as"`
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %q has no steps", scenario.Name)
	}

	return &scenario, nil
}

// Resolve builds the configuration a step runs with.
func (s ScenarioStep) Resolve() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Config != "":
		loaded, err := config.Load(s.Config)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	case s.Preset != "":
		if cfg = config.GetPreset(s.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Rule != "" {
		cfg.Physics.CollisionRule = s.Rule
	}
	if s.Contact != "" {
		cfg.Physics.Contact = s.Contact
	}
	if s.Duration > 0 {
		cfg.Run.Duration = s.Duration
	}
	if s.Dt > 0 {
		cfg.Run.Dt = s.Dt
	}
	if s.HostDecay != nil {
		cfg.Run.HostDecay = *s.HostDecay
	}
	if len(s.Discs) > 0 {
		cfg.Discs = append([]config.DiscConfig(nil), s.Discs...)
	}
	for k, v := range s.Params {
		if err := SetParam(cfg, k, v); err != nil {
			return nil, err
		}
	}
	if s.SaveAs != "" {
		cfg.Name = s.SaveAs
	}
	return cfg, nil
}

// RunScenario executes all steps in order. Steps with save_as are written to
// store when one is given.
func RunScenario(ctx context.Context, scenario *Scenario, store *storage.Store) ([]*sim.Result, error) {
	results := make([]*sim.Result, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := step.Resolve()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		fmt.Printf("Running step %d/%d: %s\n", i+1, len(scenario.Steps), cfg.Name)

		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		if step.SaveAs != "" && store != nil {
			if _, err := store.Save(cfg, result); err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}

		results = append(results, result)
	}

	return results, nil
}

// SweepParams lists the names SetParam understands.
var SweepParams = []string{"radius", "gravity", "wall_restitution", "decay_rate", "stop_epsilon", "dt", "cue_speed"}

// SetParam writes one named parameter into cfg.
func SetParam(cfg *config.Config, name string, v float64) error {
	switch name {
	case "radius":
		cfg.Physics.Radius = v
	case "gravity":
		cfg.Physics.Gravity = v
	case "wall_restitution":
		cfg.Physics.WallRestitution = v
	case "decay_rate":
		cfg.Physics.DecayRate = v
	case "stop_epsilon":
		cfg.Physics.StopEpsilon = v
	case "dt":
		cfg.Run.Dt = v
	case "cue_speed":
		// scales the velocity of every moving disc to v
		for i, d := range cfg.Discs {
			s := math.Hypot(d.VX, d.VY)
			if s == 0 {
				continue
			}
			cfg.Discs[i].VX = d.VX / s * v
			cfg.Discs[i].VY = d.VY / s * v
		}
	default:
		return fmt.Errorf("unknown parameter: %s", name)
	}
	return nil
}

// ParameterSweep runs Base once per evenly spaced value of Param.
type ParameterSweep struct {
	Base     *config.Config
	Param    string
	Min      float64
	Max      float64
	NumSteps int
}

type SweepResult struct {
	ParamValue  float64
	Contacts    int
	WallHits    int
	RestTime    float64
	FinalEnergy float64
	MaxEnergy   float64
}

// RunSweep builds every point up front and runs them as one ensemble.
func RunSweep(ctx context.Context, sweep *ParameterSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, errors.New("sweep needs at least one step")
	}

	values := make([]float64, sweep.NumSteps)
	jobs := make([]sim.Job, sweep.NumSteps)
	for i := range values {
		values[i] = sweep.Min
		if sweep.NumSteps > 1 {
			values[i] += float64(i) * (sweep.Max - sweep.Min) / float64(sweep.NumSteps-1)
		}

		cfg := sweep.Base.Clone()
		if err := SetParam(cfg, sweep.Param, values[i]); err != nil {
			return nil, err
		}
		exp := experiment.New(cfg)
		if err := exp.Setup(); err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.Param, values[i], err)
		}
		jobs[i] = exp.Job(fmt.Sprintf("%s=%.4f", sweep.Param, values[i]))
	}

	runs, err := sim.NewEnsemble(jobs...).Run(ctx)
	if err != nil {
		return nil, err
	}

	results := make([]SweepResult, len(runs))
	for i, r := range runs {
		results[i] = SweepResult{
			ParamValue:  values[i],
			Contacts:    r.Contacts,
			WallHits:    r.WallHits,
			RestTime:    r.RestTime,
			FinalEnergy: r.Metrics["final_energy"],
			MaxEnergy:   maxEnergy(r.States),
		}
	}
	return results, nil
}

func maxEnergy(states [][]float64) float64 {
	var peak float64
	for _, s := range states {
		var e float64
		for i := 0; i+3 < len(s); i += 4 {
			e += 0.5 * (s[i+2]*s[i+2] + s[i+3]*s[i+3])
		}
		peak = math.Max(peak, e)
	}
	return peak
}

// MonteCarloConfig jitters every disc velocity of Base by up to
// ±Perturbation per axis.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID  int
	Discs    []config.DiscConfig
	Final    []float64
	RestTime float64
	Stable   bool // stayed finite and on the table
	Err      error
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		if err := ctx.Err(); err != nil {
			return results, err
		}

		trialCfg := cfg.Base.Clone()
		for i := range trialCfg.Discs {
			trialCfg.Discs[i].VX += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
			trialCfg.Discs[i].VY += (rng.Float64() - 0.5) * 2 * cfg.Perturbation
		}

		exp := experiment.New(trialCfg)
		if err := exp.Setup(); err != nil {
			return nil, err
		}

		res := MonteCarloResult{TrialID: trial, Discs: trialCfg.Discs, RestTime: -1}
		result, err := exp.Run(ctx)
		switch {
		case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
			return results, err
		case err != nil:
			res.Err = err
		default:
			if len(result.States) > 0 {
				res.Final = result.States[len(result.States)-1]
			}
			res.RestTime = result.RestTime
			res.Err = errors.Join(result.Errors...)
			res.Stable = res.Err == nil && result.Metrics["containment"] == 1
		}
		results = append(results, res)

		if (trial+1)%10 == 0 {
			fmt.Printf("Monte Carlo: %d/%d trials complete\n", trial+1, cfg.NumTrials)
		}
	}

	return results, nil
}

// MonteCarloStats counts stable and unstable trials.
func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
