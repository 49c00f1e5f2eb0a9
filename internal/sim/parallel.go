package sim

import (
	"context"
	"sync"

	"github.com/san-kum/billiard/internal/physics"
)

// Job is one independent run in an Ensemble. Each job owns its table.
type Job struct {
	Name    string
	Table   *physics.Table
	Config  Config
	Metrics func() []Metric
}

type Ensemble struct {
	jobs []Job
}

func NewEnsemble(jobs ...Job) *Ensemble {
	return &Ensemble{jobs: jobs}
}

// Run executes every job on its own goroutine. Results keep job order.
func (e *Ensemble) Run(ctx context.Context) ([]*Result, error) {
	results := make([]*Result, len(e.jobs))
	errs := make([]error, len(e.jobs))

	var wg sync.WaitGroup
	for i := range e.jobs {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()

			job := e.jobs[idx]
			s := New(job.Table)
			if job.Metrics != nil {
				for _, m := range job.Metrics() {
					s.AddMetric(m)
				}
			}

			results[idx], errs[idx] = s.Run(ctx, job.Config)
		}(i)
	}

	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	return results, nil
}
