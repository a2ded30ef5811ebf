package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/resources"
)

var matchCmd = &cobra.Command{
	Use:   "match",
	Short: "Score repositories against job descriptions",
}

var matchProjectCmd = &cobra.Command{
	Use:   "project <github-url>",
	Short: "Match one repository against job descriptions",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		descriptions, _ := cmd.Flags().GetStringSlice("job")
		if saved, _ := cmd.Flags().GetBool("saved-jobs"); saved {
			jobs := d.jobs()
			if err := jobs.FetchJobs(ctx); err != nil {
				d.logger.Fatal("fetching saved jobs", zap.Error(err))
			}
			for _, job := range jobs.Jobs() {
				descriptions = append(descriptions, job.Description)
			}
		}

		if args[0] == "" || len(descriptions) == 0 {
			d.logger.Fatal("a repository url and at least one job description are required",
				zap.String("hint", "pass --job or --saved-jobs"))
		}

		result, err := d.newMatcher().MatchProjectToJobs(ctx, args[0], descriptions)
		report(d, result, err)
	},
}

var matchJobCmd = &cobra.Command{
	Use:   "job <description>",
	Short: "Match one job description against repositories",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		urls, _ := cmd.Flags().GetStringSlice("repo")
		if saved, _ := cmd.Flags().GetBool("saved-projects"); saved {
			projects := d.projects()
			if err := projects.FetchProjects(ctx); err != nil {
				d.logger.Fatal("fetching saved projects", zap.Error(err))
			}
			for _, project := range projects.Projects() {
				urls = append(urls, project.URL)
			}
		}

		if args[0] == "" || len(urls) == 0 {
			d.logger.Fatal("a job description and at least one repository are required",
				zap.String("hint", "pass --repo or --saved-projects"))
		}

		result, err := d.newMatcher().MatchJobToProjects(ctx, args[0], urls)
		report(d, result, err)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)
	matchCmd.AddCommand(matchProjectCmd, matchJobCmd)

	matchProjectCmd.Flags().StringSlice("job", nil, "a job description, can be repeated")
	matchProjectCmd.Flags().Bool("saved-jobs", false, "also use the descriptions of saved jobs")
	matchJobCmd.Flags().StringSlice("repo", nil, "a GitHub repository url, can be repeated")
	matchJobCmd.Flags().Bool("saved-projects", false, "also use the urls of saved projects")
}

func report(d *deps, result *resources.MatchResult, err error) {
	if err != nil {
		fields := []zap.Field{zap.Error(err)}
		if result != nil && result.Error != "" {
			fields = append(fields, zap.String("matcher_error", result.Error))
		}
		d.logger.Fatal("matching", fields...)
	}

	if result.Failed() {
		d.logger.Fatal("matcher could not score the request", zap.String("reason", result.Error))
	}

	d.logger.Info("matching finished", zap.Int("matches", len(result.Matches)))
	d.print(result.Matches)
}
