package resources

import (
	"context"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
)

const matchPath = "/api/match"

// ProjectToJobsRequest scores one repository against several job descriptions.
type ProjectToJobsRequest struct {
	GithubURL       string   `json:"githubUrl"`
	JobDescriptions []string `json:"jobDescriptions"`
}

// JobToProjectsRequest scores one job description against several repositories.
type JobToProjectsRequest struct {
	JobDescription string   `json:"jobDescription"`
	GithubURLs     []string `json:"githubUrls"`
}

// MatchEntry is one scored pair. Job fields are set for project-to-jobs
// results, repository fields for job-to-projects results.
type MatchEntry struct {
	JobTitle       string   `json:"job_title,omitempty"`
	Company        string   `json:"company,omitempty"`
	RepositoryName string   `json:"repository_name,omitempty"`
	RepositoryURL  string   `json:"repository_url,omitempty"`
	MatchScore     float64  `json:"match_score"`
	KeyFactors     []string `json:"key_factors"`
}

// MatchResult is the payload of a match call, whatever its status.
type MatchResult struct {
	Matches []MatchEntry `json:"matches"`
	// Error is set by the matcher when scoring failed, possibly with a success status.
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
	// Raw is the undecoded payload.
	Raw any `json:"-"`
}

// Failed reports a matching failure carried inside the payload.
func (r *MatchResult) Failed() bool {
	return r.Error != ""
}

// Matcher submits match requests. It caches nothing.
type Matcher struct {
	state
	caller
}

func NewMatcher(client *backend.Client, token string, log *zap.Logger) *Matcher {
	return &Matcher{caller: newCaller(client, token, log, "match")}
}

func (m *Matcher) MatchProjectToJobs(ctx context.Context, githubURL string, jobDescriptions []string) (*MatchResult, error) {
	return m.match(ctx, ProjectToJobsRequest{GithubURL: githubURL, JobDescriptions: jobDescriptions})
}

func (m *Matcher) MatchJobToProjects(ctx context.Context, jobDescription string, githubURLs []string) (*MatchResult, error) {
	return m.match(ctx, JobToProjectsRequest{JobDescription: jobDescription, GithubURLs: githubURLs})
}

// match returns the decoded payload whenever the backend answered, together
// with the HTTP failure if there was one.
func (m *Matcher) match(ctx context.Context, body any) (*MatchResult, error) {
	m.begin()

	resp, err := m.check(m.client.Post(ctx, matchPath, body, m.options()))
	if resp == nil {
		return nil, m.settle(err, nil)
	}

	result := &MatchResult{}
	if decodeErr := resp.Decode(result); decodeErr != nil && err == nil {
		err = invalid(decodeErr)
	}
	result.Raw = resp.Data

	m.logger.Debug("match finished",
		zap.Int("status", resp.Status),
		zap.Int("matches", len(result.Matches)),
		zap.Bool("failed", result.Failed()),
	)

	return result, m.settle(err, nil)
}
