package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/resources"
)

type duplicatesFilter struct {
	toggle
}

// NewDuplicates creates a filter that keeps only the first job for each URL.
// Jobs without a URL are never treated as duplicates.
func NewDuplicates() Filter {
	return &duplicatesFilter{}
}

func (f *duplicatesFilter) Name() string { return "duplicates" }

func (f *duplicatesFilter) Validate(*Config) error { return nil }

func (f *duplicatesFilter) Apply(_ context.Context, deps Deps, jobs []resources.ScrapedJob) ([]resources.ScrapedJob, Step, error) {
	seen := make(map[string]struct{}, len(jobs))
	left, step, dropped := keep(jobs, func(job resources.ScrapedJob) bool {
		url := strings.TrimSpace(job.URL)
		if url == "" {
			return true
		}
		if _, ok := seen[url]; ok {
			return false
		}
		seen[url] = struct{}{}
		return true
	})
	if len(dropped) > 0 {
		deps.Logger.Debug("excluding duplicated jobs", zap.Strings("excluded_jobs", dropped))
	}

	return left, step, nil
}
