package resources

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/backend"
)

const (
	scrapeURLPath   = "/api/scrape/url"
	scrapeBatchPath = "/api/scrape/batch"
	scrapeSavePath  = "/api/scrape/save"
)

// ScrapeStatusSuccess marks scraped jobs the backend agrees to save.
const ScrapeStatusSuccess = "success"

type ScrapedJob struct {
	ID          string `json:"id,omitempty"`
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	Description string `json:"description"`
	URL         string `json:"url"`
	DatePosted  string `json:"date_posted,omitempty"`
	Source      string `json:"source,omitempty"`
	Status      string `json:"status,omitempty"`
}

type ScrapingMetadata struct {
	Total  int    `json:"total"`
	Source string `json:"source"`
	Query  string `json:"query,omitempty"`
}

type ScrapingResults struct {
	Jobs     []ScrapedJob      `json:"jobs"`
	Metadata *ScrapingMetadata `json:"metadata,omitempty"`
}

// Len returns the number of scraped jobs.
func (r *ScrapingResults) Len() int {
	if r == nil {
		return 0
	}
	return len(r.Jobs)
}

// Successful returns the jobs the backend scraped completely.
func (r *ScrapingResults) Successful() []ScrapedJob {
	if r == nil {
		return nil
	}

	var jobs []ScrapedJob
	for _, job := range r.Jobs {
		if job.Status == ScrapeStatusSuccess {
			jobs = append(jobs, job)
		}
	}
	return jobs
}

// ReportByCompany groups the scraped jobs by company.
func (r *ScrapingResults) ReportByCompany() map[string][]map[string]string {
	report := make(map[string][]map[string]string)
	if r == nil {
		return report
	}

	for _, job := range r.Jobs {
		company := job.Company
		if company == "" {
			company = "unknown"
		}
		report[company] = append(report[company], map[string]string{
			"title":    job.Title,
			"url":      job.URL,
			"location": job.Location,
			"status":   job.Status,
		})
	}
	return report
}

// DumpToTmpFile writes the results as indented JSON to a new temporary file
// and returns its name.
func (r *ScrapingResults) DumpToTmpFile() (string, error) {
	file, err := os.CreateTemp("", "scraped_jobs_*.json")
	if err != nil {
		return "", err
	}
	defer file.Close()

	enc := json.NewEncoder(file)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return "", fmt.Errorf("encoding scraped jobs: %w", err)
	}
	return file.Name(), nil
}

// Scraper runs scraping calls and keeps only the newest result.
type Scraper struct {
	state
	caller

	results *ScrapingResults
}

func NewScraper(client *backend.Client, token string, log *zap.Logger) *Scraper {
	return &Scraper{caller: newCaller(client, token, log, "scraping")}
}

// Results returns the last scraping result, nil when there is none.
func (s *Scraper) Results() *ScrapingResults {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results
}

func (s *Scraper) SetResults(results *ScrapingResults) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results = results
}

func (s *Scraper) ScrapeURL(ctx context.Context, url string) (*ScrapingResults, error) {
	return s.scrape(ctx, scrapeURLPath, map[string]string{"url": url})
}

func (s *Scraper) ScrapeBatch(ctx context.Context, keywords string) (*ScrapingResults, error) {
	return s.scrape(ctx, scrapeBatchPath, map[string]string{"keywords": keywords})
}

func (s *Scraper) scrape(ctx context.Context, path string, body any) (*ScrapingResults, error) {
	s.begin()

	resp, err := s.check(s.client.Post(ctx, path, body, s.options()))
	if err != nil {
		return nil, s.settle(err, nil)
	}

	if resp.Data == nil {
		return nil, s.settle(nil, nil)
	}

	results := &ScrapingResults{}
	if err := resp.Decode(results); err != nil {
		return nil, s.settle(invalid(err), nil)
	}

	s.logger.Debug("scraping finished", zap.String("path", path), zap.Int("jobs", results.Len()))

	return results, s.settle(nil, func() {
		s.results = results
	})
}

// SaveJobs stores scraped jobs in the backend. The answer is handed back as is
// and does not change the last result.
func (s *Scraper) SaveJobs(ctx context.Context, jobs []ScrapedJob) (any, error) {
	s.begin()

	resp, err := s.check(s.client.Post(ctx, scrapeSavePath, map[string][]ScrapedJob{"jobs": jobs}, s.options()))
	if err != nil {
		return nil, s.settle(err, nil)
	}

	return resp.Data, s.settle(nil, nil)
}
