package resources

import (
	"context"
	"errors"
	"net/http"
	"slices"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
)

func TestJobsAddThenDelete(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodPost, "/api/jobs", http.StatusCreated, `{"job":{"id":7,"title":"A","description":"d"}}`)
	fake.reply(http.MethodDelete, "/api/jobs/7", http.StatusInternalServerError, `{"message":"Job not deleted"}`)

	jobs := NewJobs(fake.client(), "tok", zap.NewNop())
	jobs.SetJobs([]Job{{ID: 1, Title: "existing"}})

	job, err := jobs.AddJob(context.Background(), JobInput{Title: "A", Description: "d"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.ID != 7 {
		t.Fatalf("expected returned job id 7, got %d", job.ID)
	}

	cached := jobs.Jobs()
	if got := cached[len(cached)-1].ID; got != 7 {
		t.Fatalf("expected last cached job id 7, got %d", got)
	}

	err = jobs.DeleteJob(context.Background(), 7)
	var apiErr *backend.APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusInternalServerError {
		t.Fatalf("expected APIError 500, got %v", err)
	}

	if ids := jobIDs(jobs.Jobs()); slices.Contains(ids, 7) {
		t.Fatalf("expected job 7 to be removed despite the error, got %v", ids)
	}

	if jobs.LastError() != "Job not deleted" {
		t.Fatalf("unexpected stored error: %q", jobs.LastError())
	}

	reqs := fake.requests()
	if reqs[0].Authorization != "Bearer tok" {
		t.Fatalf("expected bearer token, got %q", reqs[0].Authorization)
	}
	if reqs[0].Body["title"] != "A" || reqs[0].Body["description"] != "d" {
		t.Fatalf("unexpected create body: %v", reqs[0].Body)
	}
}

func TestJobsDeleteKeepsCacheWhenUnreachable(t *testing.T) {
	jobs := NewJobs(unreachableClient(t), "", zap.NewNop())
	jobs.SetJobs([]Job{{ID: 7}})

	err := jobs.DeleteJob(context.Background(), 7)
	if !errors.Is(err, backend.ErrNetwork) {
		t.Fatalf("expected network error, got %v", err)
	}

	if ids := jobIDs(jobs.Jobs()); !slices.Equal(ids, []int{7}) {
		t.Fatalf("expected cache untouched, got %v", ids)
	}

	if jobs.LastError() == "" {
		t.Fatalf("expected stored error")
	}
}

func TestJobsUpdate(t *testing.T) {
	t.Run("missing id leaves cache unchanged", func(t *testing.T) {
		fake := newFakeBackend(t)
		fake.reply(http.MethodPut, "/api/jobs/3", http.StatusOK, `{"job":{"id":3,"title":"new"}}`)

		jobs := NewJobs(fake.client(), "tok", zap.NewNop())
		before := []Job{{ID: 1, Title: "a"}, {ID: 2, Title: "b"}}
		jobs.SetJobs(before)

		title := "new"
		if _, err := jobs.UpdateJob(context.Background(), 3, JobPatch{Title: &title}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		after := jobs.Jobs()
		if len(after) != len(before) {
			t.Fatalf("expected %d jobs, got %d", len(before), len(after))
		}
		for i := range before {
			if after[i].ID != before[i].ID || after[i].Title != before[i].Title {
				t.Fatalf("cache changed at %d: %+v", i, after[i])
			}
		}
	})

	t.Run("replaces in place", func(t *testing.T) {
		fake := newFakeBackend(t)
		fake.reply(http.MethodPut, "/api/jobs/2", http.StatusOK, `{"job":{"id":2,"title":"server title"}}`)

		jobs := NewJobs(fake.client(), "tok", zap.NewNop())
		jobs.SetJobs([]Job{{ID: 1}, {ID: 2, Title: "old"}, {ID: 3}})

		title := "client title"
		if _, err := jobs.UpdateJob(context.Background(), 2, JobPatch{Title: &title}); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		cached := jobs.Jobs()
		if ids := jobIDs(cached); !slices.Equal(ids, []int{1, 2, 3}) {
			t.Fatalf("expected order to be preserved, got %v", ids)
		}
		if cached[1].Title != "server title" {
			t.Fatalf("expected server copy, got %q", cached[1].Title)
		}

		reqs := fake.requests()
		if reqs[0].Body["title"] != "client title" {
			t.Fatalf("unexpected update body: %v", reqs[0].Body)
		}
		if _, ok := reqs[0].Body["description"]; ok {
			t.Fatalf("did not expect unset fields in patch: %v", reqs[0].Body)
		}
	})
}

func TestJobsFetch(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodGet, "/api/jobs", http.StatusOK,
		`{"jobs":[{"id":3,"title":"c","requirements":"[\"go\",\"sql\"]"},{"id":1,"title":"a"},{"id":2,"title":"b"}]}`)

	jobs := NewJobs(fake.client(), "tok", zap.NewNop())

	if err := jobs.FetchJobs(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cached := jobs.Jobs()
	if ids := jobIDs(cached); !slices.Equal(ids, []int{3, 1, 2}) {
		t.Fatalf("expected server order, got %v", ids)
	}
	if !slices.Equal(cached[0].Requirements, []string{"go", "sql"}) {
		t.Fatalf("expected requirements decoded from json text, got %v", cached[0].Requirements)
	}
	if jobs.Loading() {
		t.Fatalf("expected loading to be false")
	}
}

func TestJobsFetchErrorKeepsStaleCache(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodGet, "/api/jobs", http.StatusForbidden, `{"message":"Unauthorized!"}`)

	jobs := NewJobs(fake.client(), "", zap.NewNop())
	jobs.SetJobs([]Job{{ID: 1}})

	if err := jobs.FetchJobs(context.Background()); err == nil {
		t.Fatalf("expected error")
	}

	if ids := jobIDs(jobs.Jobs()); !slices.Equal(ids, []int{1}) {
		t.Fatalf("expected stale cache, got %v", ids)
	}
	if jobs.LastError() != "Unauthorized!" {
		t.Fatalf("unexpected error: %q", jobs.LastError())
	}

	if reqs := fake.requests(); reqs[0].Authorization != "" {
		t.Fatalf("expected no authorization header without token, got %q", reqs[0].Authorization)
	}
}

func TestJobsErrorClearedBySuccess(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodGet, "/api/jobs/9", http.StatusNotFound, `{"message":"Job not found!"}`)
	fake.reply(http.MethodGet, "/api/jobs", http.StatusOK, `{"jobs":[]}`)

	jobs := NewJobs(fake.client(), "tok", zap.NewNop())

	if _, err := jobs.GetJob(context.Background(), 9); err == nil {
		t.Fatalf("expected error")
	}
	if jobs.LastError() == "" {
		t.Fatalf("expected stored error")
	}

	if err := jobs.FetchJobs(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if jobs.LastError() != "" {
		t.Fatalf("expected error to be cleared, got %q", jobs.LastError())
	}
}

func TestJobsGetDoesNotTouchCache(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodGet, "/api/jobs/5", http.StatusOK, `{"job":{"id":5,"title":"five"}}`)

	jobs := NewJobs(fake.client(), "tok", zap.NewNop())
	jobs.SetJobs([]Job{{ID: 1}})

	job, err := jobs.GetJob(context.Background(), 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if job.Title != "five" {
		t.Fatalf("unexpected job: %+v", job)
	}

	if ids := jobIDs(jobs.Jobs()); !slices.Equal(ids, []int{1}) {
		t.Fatalf("expected cache untouched, got %v", ids)
	}
}

func TestJobsAddWithoutObject(t *testing.T) {
	fake := newFakeBackend(t)
	fake.reply(http.MethodPost, "/api/jobs", http.StatusCreated, `{"message":"created"}`)

	jobs := NewJobs(fake.client(), "tok", zap.NewNop())

	job, err := jobs.AddJob(context.Background(), JobInput{Title: "A"})
	if !errors.Is(err, ErrInvalidResponse) {
		t.Fatalf("expected ErrInvalidResponse, got %v", err)
	}
	if job != nil {
		t.Fatalf("expected no job, got %+v", job)
	}
	if len(jobs.Jobs()) != 0 {
		t.Fatalf("expected empty cache, got %v", jobs.Jobs())
	}
}

func TestJobsConcurrentFetchLastToSettleWins(t *testing.T) {
	firstArrived := make(chan struct{})
	releaseFirst := make(chan struct{})

	fake := newFakeBackend(t)
	calls := 0
	fake.handle(http.MethodGet, "/api/jobs", func(w http.ResponseWriter, _ *http.Request) {
		fake.mu.Lock()
		calls++
		n := calls
		fake.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		if n == 1 {
			close(firstArrived)
			<-releaseFirst
			w.Write([]byte(`{"jobs":[{"id":1}]}`))
			return
		}
		w.Write([]byte(`{"jobs":[{"id":2}]}`))
	})

	jobs := NewJobs(fake.client(), "tok", zap.NewNop())

	firstDone := make(chan error, 1)
	go func() {
		firstDone <- jobs.FetchJobs(context.Background())
	}()
	<-firstArrived

	if err := jobs.FetchJobs(context.Background()); err != nil {
		t.Fatalf("second fetch: %v", err)
	}

	if ids := jobIDs(jobs.Jobs()); !slices.Equal(ids, []int{2}) {
		t.Fatalf("expected second response first, got %v", ids)
	}
	if !jobs.Loading() {
		t.Fatalf("expected loading while the first fetch is in flight")
	}

	close(releaseFirst)
	if err := <-firstDone; err != nil {
		t.Fatalf("first fetch: %v", err)
	}

	if ids := jobIDs(jobs.Jobs()); !slices.Equal(ids, []int{1}) {
		t.Fatalf("expected last settled response to win, got %v", ids)
	}
	if jobs.Loading() {
		t.Fatalf("expected loading to be false")
	}
}
