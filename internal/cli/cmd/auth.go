package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/talentnet/backend/internal/cli/api"
	"github.com/talentnet/backend/internal/cli/credentials"
	"github.com/talentnet/backend/internal/cli/output"
	"github.com/talentnet/backend/internal/cli/prompter"
)

// roles mirrors the server's accepted profile roles
var roles = []string{
	"Actor", "Model", "Filmmaker", "Director", "Writer", "Photographer",
	"Editor", "Musician", "Creator", "Student", "Production House",
}

var (
	loginEmail   string
	registerName string
	registerRole string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store a session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		email := loginEmail
		if email == "" {
			var err error
			if email, err = prompter.PromptString("Email: "); err != nil {
				return err
			}
		}
		password, err := prompter.PromptPassword("Password: ")
		if err != nil {
			return err
		}

		resp, err := api.FromConfig().Login(email, password)
		if err != nil {
			if api.IsUnauthorized(err) {
				return fmt.Errorf("invalid email or password")
			}
			return err
		}
		if err := saveSession(resp); err != nil {
			return err
		}
		output.PrintSuccess("Logged in as %s (%s)", resp.User.FullName, resp.User.Role)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		var err error
		req := api.RegisterRequest{FullName: registerName, Email: loginEmail, Role: registerRole}
		if req.FullName == "" {
			if req.FullName, err = prompter.PromptString("Full name: "); err != nil {
				return err
			}
		}
		if req.Email == "" {
			if req.Email, err = prompter.PromptString("Email: "); err != nil {
				return err
			}
		}
		if req.Role == "" {
			if req.Role, err = prompter.PromptSelect("Role:", roles); err != nil {
				return err
			}
		}
		if req.Password, err = prompter.PromptPassword("Password: "); err != nil {
			return err
		}

		resp, err := api.FromConfig().Register(req)
		if err != nil {
			return err
		}
		if err := saveSession(resp); err != nil {
			return err
		}
		output.PrintSuccess("Welcome, %s! Your user id is %s", resp.User.FullName, resp.User.ID)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session token",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := credentials.Delete(); err != nil {
			return err
		}
		output.PrintSuccess("Logged out")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := authedClient()
		if err != nil {
			return err
		}
		me, err := client.Me()
		if err != nil {
			return err
		}
		return output.PrintRecord(me.User.FullName, [][2]string{
			{"ID", me.User.ID},
			{"Email", me.User.Email},
			{"Role", me.User.Role},
			{"Location", me.User.Location},
			{"Skills", strings.Join(me.User.Skills, ", ")},
			{"Online", yesNo(me.Online)},
		}, me)
	},
}

func saveSession(resp *api.AuthResponse) error {
	return credentials.Save(&credentials.Credentials{
		Token:     resp.Token,
		ExpiresAt: resp.ExpiresAt,
		UserID:    resp.User.ID,
		FullName:  resp.User.FullName,
		Email:     resp.User.Email,
		Role:      resp.User.Role,
	})
}

func init() {
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	registerCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Account email")
	registerCmd.Flags().StringVar(&registerName, "name", "", "Full name")
	registerCmd.Flags().StringVar(&registerRole, "role", "", "Profile role")

	rootCmd.AddCommand(loginCmd, registerCmd, logoutCmd, whoamiCmd)
}
