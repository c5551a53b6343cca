package cmd

import (
	"strings"

	"github.com/spf13/cobra"
	"github.com/talentnet/backend/internal/cli/api"
	"github.com/talentnet/backend/internal/cli/output"
)

var searchParams api.SearchParams

var profileCmd = &cobra.Command{
	Use:   "profile <user-id>",
	Short: "Show a user's public profile",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p, err := api.FromConfig().GetProfile(args[0])
		if err != nil {
			return err
		}
		return output.PrintRecord(p.FullName, [][2]string{
			{"ID", p.ID},
			{"Role", p.Role},
			{"Location", p.Location},
			{"Skills", strings.Join(p.Skills, ", ")},
			{"Bio", p.Bio},
			{"Online", yesNo(p.Online)},
		}, p)
	},
}

var searchCmd = &cobra.Command{
	Use:   "search [text]",
	Short: "Search talent by name, role or location",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := authedClient()
		if err != nil {
			return err
		}
		if len(args) == 1 {
			searchParams.Query = args[0]
		}

		users, err := client.SearchUsers(searchParams)
		if err != nil {
			return err
		}
		if len(users) == 0 && output.GetFormat() == output.FormatText {
			output.PrintInfo("No matching profiles")
			return nil
		}

		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{u.ID, u.FullName, u.Role, u.Location, yesNo(u.Online)})
		}
		return output.PrintTable([]string{"ID", "NAME", "ROLE", "LOCATION", "ONLINE"}, rows, users)
	},
}

func init() {
	searchCmd.Flags().StringVar(&searchParams.Role, "role", "", "Exact role filter")
	searchCmd.Flags().StringVar(&searchParams.Location, "location", "", "Location contains")
	searchCmd.Flags().IntVar(&searchParams.Limit, "limit", 20, "Maximum results")

	rootCmd.AddCommand(profileCmd, searchCmd)
}
