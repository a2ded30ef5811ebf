package resources

import (
	"context"
	"fmt"
	"net/http"
	"slices"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
)

const projectsPath = "/api/talent/projects"

// Project is a GitHub-linked project of a talent session.
type Project struct {
	ID           int      `json:"id"`
	Name         string   `json:"name"`
	URL          string   `json:"url"`
	Description  string   `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Role         string   `json:"role,omitempty"`
	StartDate    string   `json:"startDate,omitempty"`
	EndDate      string   `json:"endDate,omitempty"`
	IsActive     *bool    `json:"isActive,omitempty"`
}

// ProjectInput carries the fields to create or change; nil fields are not sent.
type ProjectInput struct {
	Name         *string  `json:"name,omitempty"`
	URL          *string  `json:"url,omitempty"`
	Description  *string  `json:"description,omitempty"`
	Technologies []string `json:"technologies,omitempty"`
	Role         *string  `json:"role,omitempty"`
	StartDate    *string  `json:"startDate,omitempty"`
	EndDate      *string  `json:"endDate,omitempty"`
	IsActive     *bool    `json:"isActive,omitempty"`
}

type Projects struct {
	state
	caller

	projects []Project
}

func NewProjects(client *backend.Client, token string, log *zap.Logger) *Projects {
	return &Projects{caller: newCaller(client, token, log, "projects")}
}

func (p *Projects) Projects() []Project {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.projects)
}

func (p *Projects) SetProjects(projects []Project) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.projects = slices.Clone(projects)
}

func (p *Projects) FetchProjects(ctx context.Context) error {
	p.begin()

	resp, err := p.check(p.client.Get(ctx, projectsPath, p.options()))
	if err != nil {
		return p.settle(err, nil)
	}

	var projects []Project
	found, err := resp.DecodeField("projects", &projects)
	if err != nil {
		return p.settle(invalid(err), nil)
	}

	p.logger.Debug("fetched projects", zap.Int("count", len(projects)), zap.Bool("present", found))

	return p.settle(nil, func() {
		if found {
			p.projects = projects
		}
	})
}

func (p *Projects) AddProject(ctx context.Context, input ProjectInput) (*Project, error) {
	p.begin()

	resp, err := p.check(p.client.Post(ctx, projectsPath, input, p.options()))
	if err != nil {
		return nil, p.settle(err, nil)
	}

	var project Project
	if err := decodeField(resp, "project", &project); err != nil {
		return nil, p.settle(err, nil)
	}

	return &project, p.settle(nil, func() {
		p.projects = append(p.projects, project)
	})
}

// UpdateProject sends a PATCH and swaps the cached project with the server's copy.
func (p *Projects) UpdateProject(ctx context.Context, id int, input ProjectInput) (*Project, error) {
	p.begin()

	opts := p.options()
	opts.Method = http.MethodPatch
	opts.Body = input

	resp, err := p.check(p.client.Fetch(ctx, projectPath(id), opts))
	if err != nil {
		return nil, p.settle(err, nil)
	}

	var project Project
	if err := decodeField(resp, "project", &project); err != nil {
		return nil, p.settle(err, nil)
	}

	return &project, p.settle(nil, func() {
		if idx := slices.IndexFunc(p.projects, func(v Project) bool { return v.ID == id }); idx >= 0 {
			p.projects[idx] = project
		}
	})
}

// DeleteProject drops the project from the cache whenever the backend answered.
func (p *Projects) DeleteProject(ctx context.Context, id int) error {
	p.begin()

	resp, err := p.check(p.client.Delete(ctx, projectPath(id), p.options()))
	if resp == nil {
		return p.settle(err, nil)
	}

	return p.settle(err, func() {
		p.projects = slices.DeleteFunc(p.projects, func(v Project) bool { return v.ID == id })
	})
}

func projectPath(id int) string {
	return fmt.Sprintf("%s/%d", projectsPath, id)
}
