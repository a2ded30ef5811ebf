package cmd

import (
	"context"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/resources"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage job postings of a company account",
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List job postings",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		jobs := d.jobs()
		if err := jobs.FetchJobs(ctx); err != nil {
			d.logger.Fatal("fetching jobs", zap.Error(err))
		}

		d.logger.Info("fetched jobs", zap.Int("count", len(jobs.Jobs())))
		d.print(jobs.Jobs())
	},
}

var jobsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one job posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		job, err := d.jobs().GetJob(ctx, mustID(d, args[0]))
		if err != nil {
			d.logger.Fatal("getting job", zap.Error(err))
		}

		d.print(job)
	},
}

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a job posting",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		requirements, _ := cmd.Flags().GetStringSlice("requirement")
		input := resources.JobInput{
			Title:        flagString(cmd, "title"),
			Company:      flagString(cmd, "company"),
			Description:  flagString(cmd, "description"),
			Requirements: requirements,
		}
		if input.Title == "" || input.Description == "" {
			d.logger.Fatal("title and description are required")
		}

		job, err := d.jobs().AddJob(ctx, input)
		if err != nil {
			d.logger.Fatal("adding job", zap.Error(err))
		}

		d.logger.Info("job added", zap.Int("id", job.ID))
		d.print(job)
	},
}

var jobsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a job posting, only the given flags are sent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		patch := resources.JobPatch{
			Title:       changedString(cmd, "title"),
			Company:     changedString(cmd, "company"),
			Description: changedString(cmd, "description"),
		}
		if cmd.Flags().Changed("requirement") {
			patch.Requirements, _ = cmd.Flags().GetStringSlice("requirement")
		}

		job, err := d.jobs().UpdateJob(ctx, mustID(d, args[0]), patch)
		if err != nil {
			d.logger.Fatal("updating job", zap.Error(err))
		}

		d.print(job)
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a job posting",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		id := mustID(d, args[0])
		if err := d.jobs().DeleteJob(ctx, id); err != nil {
			d.logger.Fatal("deleting job", zap.Int("id", id), zap.Error(err))
		}

		d.logger.Info("job deleted", zap.Int("id", id))
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd, jobsGetCmd, jobsAddCmd, jobsUpdateCmd, jobsDeleteCmd)

	for _, c := range []*cobra.Command{jobsAddCmd, jobsUpdateCmd} {
		c.Flags().String("title", "", "job title")
		c.Flags().String("company", "", "company name")
		c.Flags().String("description", "", "job description")
		c.Flags().StringSlice("requirement", nil, "a requirement, can be repeated")
	}
}

func mustID(d *deps, arg string) int {
	id, err := strconv.Atoi(arg)
	if err != nil || id <= 0 {
		d.logger.Fatal("invalid id", zap.String("id", arg))
	}
	return id
}

// changedString returns the flag value only when it was set on the command line.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	value := flagString(cmd, name)
	return &value
}
