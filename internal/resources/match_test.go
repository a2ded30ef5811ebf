package resources

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
)

func TestMatchProjectToJobs(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodPost, "/api/match", http.StatusOK,
		`{"matches":[{"job_title":"Go Developer","company":"Acme","match_score":87,"key_factors":["go","grpc"]}]}`)

	matcher := NewMatcher(fake.client(), "", zap.NewNop())

	result, err := matcher.MatchProjectToJobs(context.Background(), "https://github.com/a/b", []string{"Go developer"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Failed() {
		t.Fatalf("did not expect failure: %q", result.Error)
	}
	if len(result.Matches) != 1 || result.Matches[0].MatchScore != 87 || result.Matches[0].JobTitle != "Go Developer" {
		t.Fatalf("unexpected matches: %+v", result.Matches)
	}
	if result.Raw == nil {
		t.Fatalf("expected raw payload")
	}

	body := fake.requests()[0].Body
	if body["githubUrl"] != "https://github.com/a/b" {
		t.Fatalf("unexpected body: %v", body)
	}
	if _, ok := body["jobDescriptions"].([]any); !ok {
		t.Fatalf("expected jobDescriptions list, got %v", body)
	}
	if _, ok := body["githubUrls"]; ok {
		t.Fatalf("did not expect the other request shape: %v", body)
	}
}

func TestMatchDomainFailureInSuccessStatus(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodPost, "/api/match", http.StatusOK, `{"error":"Could not analyze repository"}`)

	matcher := NewMatcher(fake.client(), "tok", zap.NewNop())

	result, err := matcher.MatchJobToProjects(context.Background(), "Go developer", []string{"https://github.com/a/b"})
	if err != nil {
		t.Fatalf("domain failure must not be a transport error: %v", err)
	}
	if !result.Failed() || result.Error != "Could not analyze repository" {
		t.Fatalf("expected domain failure, got %+v", result)
	}
	if matcher.LastError() != "" {
		t.Fatalf("domain failure is not stored as an error, got %q", matcher.LastError())
	}
}

func TestMatchHTTPFailureReturnsPayload(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodPost, "/api/match", http.StatusBadRequest, `{"error":"Invalid request parameters"}`)

	matcher := NewMatcher(fake.client(), "", zap.NewNop())

	result, err := matcher.MatchJobToProjects(context.Background(), "", nil)
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusBadRequest {
		t.Fatalf("expected APIError 400, got %v", err)
	}
	if result == nil || result.Error != "Invalid request parameters" {
		t.Fatalf("expected error payload to be returned, got %+v", result)
	}
	if matcher.LastError() != "Invalid request parameters" {
		t.Fatalf("unexpected stored error: %q", matcher.LastError())
	}
}
