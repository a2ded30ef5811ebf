package resources

import (
	"context"
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
)

const jobsPath = "/api/jobs"

type Job struct {
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	Company      string   `json:"company,omitempty"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements,omitempty"`
	CreatedAt    string   `json:"createdAt,omitempty"`
	UpdatedAt    string   `json:"updatedAt,omitempty"`
}

type JobInput struct {
	Title        string   `json:"title"`
	Company      string   `json:"company,omitempty"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements,omitempty"`
}

// JobPatch is a partial update; nil fields are not sent.
type JobPatch struct {
	Title        *string  `json:"title,omitempty"`
	Company      *string  `json:"company,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Requirements []string `json:"requirements,omitempty"`
}

// Jobs mirrors the job postings of a company session.
type Jobs struct {
	state
	caller

	jobs []Job
}

func NewJobs(client *backend.Client, token string, log *zap.Logger) *Jobs {
	return &Jobs{caller: newCaller(client, token, log, "jobs")}
}

// Jobs returns a copy of the cached list in server order.
func (j *Jobs) Jobs() []Job {
	j.mu.Lock()
	defer j.mu.Unlock()
	return slices.Clone(j.jobs)
}

func (j *Jobs) SetJobs(jobs []Job) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jobs = slices.Clone(jobs)
}

// FetchJobs replaces the cached list with the server's list.
func (j *Jobs) FetchJobs(ctx context.Context) error {
	j.begin()

	resp, err := j.check(j.client.Get(ctx, jobsPath, j.options()))
	if err != nil {
		return j.settle(err, nil)
	}

	var jobs []Job
	found, err := resp.DecodeField("jobs", &jobs)
	if err != nil {
		return j.settle(invalid(err), nil)
	}

	j.logger.Debug("fetched jobs", zap.Int("count", len(jobs)), zap.Bool("present", found))

	return j.settle(nil, func() {
		if found {
			j.jobs = jobs
		}
	})
}

// GetJob fetches a single job. The cached list is not touched.
func (j *Jobs) GetJob(ctx context.Context, id int) (*Job, error) {
	j.begin()

	resp, err := j.check(j.client.Get(ctx, jobPath(id), j.options()))
	if err != nil {
		return nil, j.settle(err, nil)
	}

	var job Job
	if err := decodeField(resp, "job", &job); err != nil {
		return nil, j.settle(err, nil)
	}

	return &job, j.settle(nil, nil)
}

// AddJob creates a job and appends the server's copy to the cache.
func (j *Jobs) AddJob(ctx context.Context, input JobInput) (*Job, error) {
	j.begin()

	resp, err := j.check(j.client.Post(ctx, jobsPath, input, j.options()))
	if err != nil {
		return nil, j.settle(err, nil)
	}

	var job Job
	if err := decodeField(resp, "job", &job); err != nil {
		return nil, j.settle(err, nil)
	}

	return &job, j.settle(nil, func() {
		j.jobs = append(j.jobs, job)
	})
}

// UpdateJob replaces the job with the given id in place. When the cache has
// no such job it is left unchanged.
func (j *Jobs) UpdateJob(ctx context.Context, id int, patch JobPatch) (*Job, error) {
	j.begin()

	resp, err := j.check(j.client.Put(ctx, jobPath(id), patch, j.options()))
	if err != nil {
		return nil, j.settle(err, nil)
	}

	var job Job
	if err := decodeField(resp, "job", &job); err != nil {
		return nil, j.settle(err, nil)
	}

	return &job, j.settle(nil, func() {
		if idx := slices.IndexFunc(j.jobs, func(v Job) bool { return v.ID == id }); idx >= 0 {
			j.jobs[idx] = job
		}
	})
}

// DeleteJob removes the job with the given id from the cache as soon as the
// backend answers, even when it answers with an error status.
func (j *Jobs) DeleteJob(ctx context.Context, id int) error {
	j.begin()

	resp, err := j.check(j.client.Delete(ctx, jobPath(id), j.options()))
	if resp == nil {
		return j.settle(err, nil)
	}

	return j.settle(err, func() {
		j.jobs = slices.DeleteFunc(j.jobs, func(v Job) bool { return v.ID == id })
	})
}

func jobPath(id int) string {
	return fmt.Sprintf("%s/%d", jobsPath, id)
}
