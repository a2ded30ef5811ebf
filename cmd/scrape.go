package cmd

import (
	"context"
	"errors"
	"fmt"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/filtering"
	"github.com/spigell/talentmatch/internal/resources"
)

const (
	PromptSaveAll         = "Save all jobs"
	PromptManualSave      = "Choose jobs to save"
	PromptReportByCompany = "Report by companies"
	PromptJobsToFile      = "Dump jobs to file"
	PromptExit            = "Exit"
	PromptBack            = "back"
)

var errExit = errors.New("exit requested")

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape job postings through the backend and save them",
}

var scrapeURLCmd = &cobra.Command{
	Use:   "url <url>",
	Short: "Scrape the jobs of one page",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scrape(cmd, func(ctx context.Context, s *resources.Scraper) (*resources.ScrapingResults, error) {
			return s.ScrapeURL(ctx, args[0])
		}, args[0])
	},
}

var scrapeBatchCmd = &cobra.Command{
	Use:   "batch <keywords>",
	Short: "Search job boards by keywords",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		scrape(cmd, func(ctx context.Context, s *resources.Scraper) (*resources.ScrapingResults, error) {
			return s.ScrapeBatch(ctx, args[0])
		}, args[0])
	},
}

func init() {
	rootCmd.AddCommand(scrapeCmd)
	scrapeCmd.AddCommand(scrapeURLCmd, scrapeBatchCmd)

	scrapeCmd.PersistentFlags().BoolP("auto-approve", "y", false, "save every job left after filters without asking")
	scrapeCmd.PersistentFlags().Bool("keep-failed", false, "do not drop jobs that were not scraped successfully")
	scrapeCmd.PersistentFlags().StringSlice("skip-filter", nil, "name of a filter to disable, can be repeated")
}

type scrapeFunc func(ctx context.Context, s *resources.Scraper) (*resources.ScrapingResults, error)

func scrape(cmd *cobra.Command, run scrapeFunc, target string) {
	ctx := context.Background()
	d := mustDeps(ctx, cmd)
	defer d.close()

	if target == "" {
		d.logger.Fatal("nothing to scrape", zap.String("hint", "pass a url or keywords"))
	}

	scraper := d.scraper()

	d.logger.Info("starting scraping", zap.String("target", target))

	results, err := run(ctx, scraper)
	if err != nil {
		d.logger.Fatal("scraping", zap.Error(err))
	}
	if results.Len() == 0 {
		d.logger.Info("exiting", zap.String("reason", "no jobs found"))
		return
	}

	jobs, err := filterScraped(ctx, cmd, d, results.Jobs)
	if err != nil {
		d.logger.Fatal("filtering failed", zap.Error(err))
	}
	if len(jobs) == 0 {
		d.logger.Info("exiting", zap.String("reason", "no jobs left after filters"))
		return
	}

	left := &resources.ScrapingResults{Jobs: jobs, Metadata: results.Metadata}

	action := PromptSaveAll
	for {
		if auto, _ := cmd.Flags().GetBool("auto-approve"); !auto {
			actionPrompt := promptui.Select{
				Label: "Proceed?",
				Items: []string{PromptSaveAll, PromptManualSave, PromptReportByCompany, PromptJobsToFile, PromptExit},
			}
			_, action, err = actionPrompt.Run()
			if err != nil {
				d.logger.Fatal("exiting", zap.Error(err))
			}
		}

		d.logger.Info("current list of jobs", zap.Int("count", left.Len()))

		if err := handleScrapeAction(ctx, action, d, scraper, left); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			d.logger.Fatal("exiting", zap.Error(err))
		}

		if left.Len() == 0 {
			d.logger.Info("exiting", zap.String("reason", "every job is handled"))
			return
		}
	}
}

// filterScraped runs the filter pipeline. Saved jobs are looked up only with a
// session; a failed lookup disables that step.
func filterScraped(ctx context.Context, cmd *cobra.Command, d *deps, jobs []resources.ScrapedJob) ([]resources.ScrapedJob, error) {
	cfg := &filtering.Config{}
	if d.config.Scrape != nil {
		*cfg = *d.config.Scrape
	}
	if keep, _ := cmd.Flags().GetBool("keep-failed"); keep {
		cfg.KeepFailed = true
	}

	steps := filtering.Default()
	skipped, _ := cmd.Flags().GetStringSlice("skip-filter")
	for _, name := range skipped {
		filtering.DisableByName(steps, name, "skip requested via flag")
	}

	fdeps := filtering.Deps{Logger: d.logger}
	if d.token() != "" {
		saved := d.jobs()
		if err := saved.FetchJobs(ctx); err != nil {
			d.logger.Warn("fetching saved jobs", zap.Error(err))
			filtering.DisableByName(steps, "saved", err.Error())
		}
		fdeps.Saved = saved.Jobs()
	}

	filtered, err := filtering.Run(ctx, cfg, fdeps, steps, jobs)
	if err != nil {
		return nil, err
	}

	for _, status := range filtering.Describe(steps) {
		d.logger.Debug("filter status",
			zap.String("name", status.Name),
			zap.Bool("enabled", status.Enabled),
			zap.String("reason", status.Reason),
			zap.Any("details", status.Details),
		)
	}

	return filtered, nil
}

func handleScrapeAction(ctx context.Context, action string, d *deps, scraper *resources.Scraper, left *resources.ScrapingResults) error {
	switch action {
	case PromptSaveAll:
		if err := save(ctx, d, scraper, left.Jobs); err != nil {
			return err
		}
		left.Jobs = nil
		return errExit
	case PromptManualSave:
		return manualSave(ctx, d, scraper, left)
	case PromptReportByCompany:
		d.print(left.ReportByCompany())
		return nil
	case PromptJobsToFile:
		filename, err := left.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		d.logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		d.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func manualSave(ctx context.Context, d *deps, scraper *resources.Scraper, left *resources.ScrapingResults) error {
	for left.Len() > 0 {
		items := make([]string, 0, left.Len()+1)
		for i, job := range left.Jobs {
			items = append(items, fmt.Sprintf("%d %s / %s / %s", i+1, job.Title, job.Company, job.URL))
		}

		jobPrompt := promptui.Select{
			Label: "Choose a job and press ENTER",
			Items: append(items, PromptBack),
			Size:  10,
		}

		idx, selected, err := jobPrompt.Run()
		if err != nil {
			return err
		}
		if selected == PromptBack {
			return nil
		}

		if err := save(ctx, d, scraper, left.Jobs[idx:idx+1]); err != nil {
			return err
		}

		left.Jobs = append(left.Jobs[:idx], left.Jobs[idx+1:]...)
	}

	return nil
}

func save(ctx context.Context, d *deps, scraper *resources.Scraper, jobs []resources.ScrapedJob) error {
	answer, err := scraper.SaveJobs(ctx, jobs)
	if err != nil {
		return fmt.Errorf("saving jobs: %w", err)
	}

	d.logger.Info("successfully saved jobs", zap.Int("count", len(jobs)))
	d.logger.Debug("save answer", zap.Any("answer", answer))
	return nil
}
