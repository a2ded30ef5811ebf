package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/resources"
)

var projectsCmd = &cobra.Command{
	Use:   "projects",
	Short: "Manage GitHub projects of a talent account",
}

var projectsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		projects := d.projects()
		if err := projects.FetchProjects(ctx); err != nil {
			d.logger.Fatal("fetching projects", zap.Error(err))
		}

		d.print(projects.Projects())
	},
}

var projectsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a project",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		input := projectInput(cmd)
		if input.Name == nil || input.URL == nil || *input.Name == "" || *input.URL == "" {
			d.logger.Fatal("name and url are required")
		}

		project, err := d.projects().AddProject(ctx, input)
		if err != nil {
			d.logger.Fatal("adding project", zap.Error(err))
		}

		d.logger.Info("project added", zap.Int("id", project.ID))
		d.print(project)
	},
}

var projectsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change a project, only the given flags are sent",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		project, err := d.projects().UpdateProject(ctx, mustID(d, args[0]), projectInput(cmd))
		if err != nil {
			d.logger.Fatal("updating project", zap.Error(err))
		}

		d.print(project)
	},
}

var projectsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a project",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		id := mustID(d, args[0])
		if err := d.projects().DeleteProject(ctx, id); err != nil {
			d.logger.Fatal("deleting project", zap.Int("id", id), zap.Error(err))
		}

		d.logger.Info("project deleted", zap.Int("id", id))
	},
}

func init() {
	rootCmd.AddCommand(projectsCmd)
	projectsCmd.AddCommand(projectsListCmd, projectsAddCmd, projectsUpdateCmd, projectsDeleteCmd)

	for _, c := range []*cobra.Command{projectsAddCmd, projectsUpdateCmd} {
		c.Flags().String("name", "", "project name")
		c.Flags().String("url", "", "GitHub repository url")
		c.Flags().String("description", "", "project description")
		c.Flags().StringSlice("technology", nil, "a technology, can be repeated")
		c.Flags().String("role", "", "your role in the project")
		c.Flags().String("start-date", "", "start date")
		c.Flags().String("end-date", "", "end date")
		c.Flags().Bool("active", false, "the project is ongoing")
	}
}

// projectInput collects only the flags that were given.
func projectInput(cmd *cobra.Command) resources.ProjectInput {
	input := resources.ProjectInput{
		Name:        changedString(cmd, "name"),
		URL:         changedString(cmd, "url"),
		Description: changedString(cmd, "description"),
		Role:        changedString(cmd, "role"),
		StartDate:   changedString(cmd, "start-date"),
		EndDate:     changedString(cmd, "end-date"),
	}
	if cmd.Flags().Changed("technology") {
		input.Technologies, _ = cmd.Flags().GetStringSlice("technology")
	}
	if cmd.Flags().Changed("active") {
		active, _ := cmd.Flags().GetBool("active")
		input.IsActive = &active
	}
	return input
}
