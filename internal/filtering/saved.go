package filtering

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/resources"
)

type savedFilter struct {
	toggle
	known int
}

// NewSaved creates a filter that removes scraped jobs already stored in the
// backend, matched by title and company.
func NewSaved() Filter {
	return &savedFilter{}
}

func (f *savedFilter) Name() string { return "saved" }

func (f *savedFilter) Validate(*Config) error { return nil }

func (f *savedFilter) Apply(_ context.Context, deps Deps, jobs []resources.ScrapedJob) ([]resources.ScrapedJob, Step, error) {
	f.known = len(deps.Saved)
	if f.known == 0 {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}

	saved := make(map[string]struct{}, len(deps.Saved))
	for _, job := range deps.Saved {
		saved[jobKey(job.Title, job.Company)] = struct{}{}
	}

	left, step, dropped := keep(jobs, func(job resources.ScrapedJob) bool {
		_, ok := saved[jobKey(job.Title, job.Company)]
		return !ok
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding jobs that are already saved",
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", step.Left),
		)
	}

	return left, step, nil
}

func (f *savedFilter) Status() Status {
	return Status{
		Name:    f.Name(),
		Enabled: f.IsEnabled(),
		Reason:  f.reason,
		Details: map[string]string{"saved_jobs": strconv.Itoa(f.known)},
	}
}

func jobKey(title, company string) string {
	return strings.ToLower(strings.TrimSpace(title)) + "\x00" + strings.ToLower(strings.TrimSpace(company))
}
