package filtering

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/resources"
)

// Filter represents a single filtering step applied to scraped jobs.
type Filter interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Validate(cfg *Config) error
	Apply(ctx context.Context, deps Deps, jobs []resources.ScrapedJob) ([]resources.ScrapedJob, Step, error)
}

// Deps aggregates dependencies shared across all filtering steps.
type Deps struct {
	Logger *zap.Logger
	// Saved are the jobs already stored in the backend for the session.
	Saved []resources.Job
}

// Step describes the result of executing a filtering step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// Config contains configuration settings consumed by the filters.
type Config struct {
	ExcludeCompanies []string `mapstructure:"exclude-companies"`
	// KeepFailed keeps jobs the backend could not scrape completely.
	KeepFailed bool `mapstructure:"keep-failed"`
}

// Status represents runtime information about a filter.
type Status struct {
	Name    string
	Enabled bool
	Reason  string
	Details map[string]string
}

type statusProvider interface {
	Status() Status
}

// Default returns the standard pipeline for scraped jobs.
func Default() []Filter {
	return []Filter{
		NewStatus(),
		NewDuplicates(),
		NewCompanies(),
		NewSaved(),
	}
}

// DisableByName marks a filter with the provided name as disabled while keeping it in the list.
func DisableByName(steps []Filter, name, reason string) {
	for _, step := range steps {
		if step.Name() == name {
			step.Disable(reason)
		}
	}
}

// Run executes the supplied filters sequentially. The input slice is not modified.
func Run(ctx context.Context, cfg *Config, deps Deps, steps []Filter, jobs []resources.ScrapedJob) ([]resources.ScrapedJob, error) {
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	for _, step := range steps {
		if !step.IsEnabled() {
			continue
		}
		if err := step.Validate(cfg); err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}
	}

	jobs = append([]resources.ScrapedJob(nil), jobs...)
	for _, step := range steps {
		if !step.IsEnabled() {
			deps.Logger.Info("filter disabled", zap.String("name", step.Name()))
			continue
		}

		next, info, err := step.Apply(ctx, deps, jobs)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", step.Name(), err)
		}

		deps.Logger.Info("filter step",
			zap.String("name", step.Name()),
			zap.Int("initial", info.Initial),
			zap.Int("dropped", info.Dropped),
			zap.Int("left", info.Left),
		)

		jobs = next
	}

	return jobs, nil
}

// Describe returns status entries for the provided filters.
func Describe(steps []Filter) []Status {
	statuses := make([]Status, 0, len(steps))
	for _, step := range steps {
		if reporter, ok := step.(statusProvider); ok {
			statuses = append(statuses, reporter.Status())
			continue
		}

		statuses = append(statuses, Status{
			Name:    step.Name(),
			Enabled: step.IsEnabled(),
		})
	}
	return statuses
}

// toggle is embedded by filters that can be switched off.
type toggle struct {
	disabled bool
	reason   string
}

func (t *toggle) Disable(reason string) {
	t.disabled = true
	t.reason = reason
}

func (t *toggle) IsEnabled() bool { return !t.disabled }

// keep drops every job for which ok is false and returns the step result with
// the labels of the dropped jobs.
func keep(jobs []resources.ScrapedJob, ok func(resources.ScrapedJob) bool) ([]resources.ScrapedJob, Step, []string) {
	initial := len(jobs)
	left := jobs[:0]
	var dropped []string
	for _, job := range jobs {
		if ok(job) {
			left = append(left, job)
			continue
		}
		dropped = append(dropped, label(job))
	}

	return left, Step{Initial: initial, Dropped: initial - len(left), Left: len(left)}, dropped
}

func label(job resources.ScrapedJob) string {
	if job.URL != "" {
		return job.URL
	}
	return fmt.Sprintf("%s @ %s", job.Title, job.Company)
}
