package filtering

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/resources"
)

type companiesFilter struct {
	toggle
	companies []string
}

// NewCompanies creates a filter that removes jobs of the companies configured
// under scrape.exclude-companies. Names are compared case-insensitively.
func NewCompanies() Filter {
	return &companiesFilter{}
}

func (f *companiesFilter) Name() string { return "companies" }

func (f *companiesFilter) Validate(cfg *Config) error {
	f.companies = nil
	if cfg == nil {
		return nil
	}
	for _, company := range cfg.ExcludeCompanies {
		if company = strings.TrimSpace(company); company != "" {
			f.companies = append(f.companies, company)
		}
	}
	return nil
}

func (f *companiesFilter) Apply(_ context.Context, deps Deps, jobs []resources.ScrapedJob) ([]resources.ScrapedJob, Step, error) {
	if len(f.companies) == 0 {
		return jobs, Step{Initial: len(jobs), Left: len(jobs)}, nil
	}

	left, step, dropped := keep(jobs, func(job resources.ScrapedJob) bool {
		for _, company := range f.companies {
			if strings.EqualFold(strings.TrimSpace(job.Company), company) {
				return false
			}
		}
		return true
	})
	if len(dropped) > 0 {
		deps.Logger.Info("excluding jobs by companies",
			zap.Strings("excluded_companies", f.companies),
			zap.Strings("excluded_jobs", dropped),
			zap.Int("jobs_left", step.Left),
		)
	}

	return left, step, nil
}

func (f *companiesFilter) Status() Status {
	details := map[string]string{}
	if len(f.companies) > 0 {
		details["companies"] = strings.Join(f.companies, ",")
	}
	return Status{Name: f.Name(), Enabled: f.IsEnabled(), Reason: f.reason, Details: details}
}
