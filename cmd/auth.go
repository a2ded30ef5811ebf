package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spigell/talentmatch/internal/resources"
	"github.com/spigell/talentmatch/internal/secrets"
	"github.com/spigell/talentmatch/internal/session"
)

const passwordEnv = "TALENTMATCH_PASSWORD"

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store the session token",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		email := flagString(cmd, "email")
		if email == "" {
			d.logger.Fatal("email is required", zap.String("hint", "pass --email"))
		}

		password := mustPassword(d, cmd)

		if err := d.session.Login(ctx, email, password); err != nil {
			d.logger.Fatal("logging in", zap.Error(err))
		}

		d.logger.Info("logged in", zap.String("email", email))
		d.print(d.session.User())
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account and store the session token",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		username, email := flagString(cmd, "username"), flagString(cmd, "email")
		if username == "" || email == "" {
			d.logger.Fatal("username and email are required")
		}

		role := strings.ToLower(flagString(cmd, "role"))
		if role == "" {
			rolePrompt := promptui.Select{
				Label: "Register as",
				Items: []string{resources.RoleTalent, resources.RoleCompany},
			}
			_, selected, err := rolePrompt.Run()
			if err != nil {
				d.logger.Fatal("exiting", zap.Error(err))
			}
			role = selected
		}
		if role != resources.RoleTalent && role != resources.RoleCompany {
			d.logger.Fatal("invalid role", zap.String("role", role))
		}

		password := mustPassword(d, cmd)

		if err := d.session.Register(ctx, username, email, password, role); err != nil {
			d.logger.Fatal("registering", zap.Error(err))
		}

		d.logger.Info("registered", zap.String("username", username), zap.String("role", role))
		d.print(d.session.User())
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		if err := d.session.Logout(ctx); err != nil {
			d.logger.Fatal("logging out", zap.Error(err))
		}

		d.logger.Info("logged out")
	},
}

type whoami struct {
	User   *resources.User `json:"user"`
	Claims *session.Claims `json:"claims,omitempty"`
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the user of the stored session",
	Run: func(cmd *cobra.Command, _ []string) {
		ctx := context.Background()
		d := mustDeps(ctx, cmd)
		defer d.close()

		token := d.token()
		if token == "" {
			d.logger.Fatal("not logged in", zap.String("hint", "run login first"))
		}

		user, err := d.session.Me(ctx)
		if err != nil {
			d.logger.Fatal("getting current user", zap.Error(err))
		}

		result := whoami{User: user}
		if claims, err := session.ParseClaims(token); err == nil {
			result.Claims = claims
		}

		d.print(result)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)

	for _, c := range []*cobra.Command{loginCmd, registerCmd} {
		c.Flags().String("email", "", "account email")
		c.Flags().String("password-file", "", "file with the password, "+passwordEnv+" is used otherwise, then a prompt")
	}
	registerCmd.Flags().String("username", "", "account name")
	registerCmd.Flags().String("role", "", "talent or company, asked when empty")
}

// mustPassword loads the password from --password-file or the environment and
// falls back to an interactive prompt.
func mustPassword(d *deps, cmd *cobra.Command) string {
	password, err := secrets.Load(secrets.Source{
		Name: "password",
		File: flagString(cmd, "password-file"),
		Env:  passwordEnv,
	})
	if err == nil {
		return password
	}
	if !errors.Is(err, secrets.ErrNotConfigured) {
		d.logger.Fatal("loading password", zap.Error(err))
	}

	passwordPrompt := promptui.Prompt{
		Label: "Password",
		Mask:  '*',
		Validate: func(s string) error {
			if strings.TrimSpace(s) == "" {
				return fmt.Errorf("password is empty")
			}
			return nil
		},
	}

	password, err = passwordPrompt.Run()
	if err != nil {
		d.logger.Fatal("exiting", zap.Error(err))
	}

	return strings.TrimSpace(password)
}

func flagString(cmd *cobra.Command, name string) string {
	value, err := cmd.Flags().GetString(name)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(value)
}
