package filtering

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/resources"
)

type statusFilter struct {
	toggle
	keepFailed bool
}

// NewStatus creates a filter that removes jobs the backend did not scrape
// successfully. Jobs without a status are kept.
func NewStatus() Filter {
	return &statusFilter{}
}

func (f *statusFilter) Name() string { return "status" }

func (f *statusFilter) Validate(cfg *Config) error {
	f.keepFailed = cfg != nil && cfg.KeepFailed
	return nil
}

func (f *statusFilter) Apply(_ context.Context, deps Deps, jobs []resources.ScrapedJob) ([]resources.ScrapedJob, Step, error) {
	if f.keepFailed {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}

	left, step, dropped := keep(jobs, func(job resources.ScrapedJob) bool {
		return job.Status == "" || job.Status == resources.ScrapeStatusSuccess
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding jobs that were not scraped successfully",
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", step.Left),
		)
	}

	return left, step, nil
}

func (f *statusFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"keep_failed": strconv.FormatBool(f.keepFailed)},
	}
}
