package cmd

import (
	"github.com/spf13/cobra"
	"github.com/talentnet/backend/internal/cli/output"
)

var onlineCmd = &cobra.Command{
	Use:   "online",
	Short: "List users who are online right now",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := authedClient()
		if err != nil {
			return err
		}
		users, err := client.OnlineUsers()
		if err != nil {
			return err
		}
		if len(users) == 0 && output.GetFormat() == output.FormatText {
			output.PrintInfo("Nobody is online")
			return nil
		}

		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{u.UserID, u.ConnectionID})
		}
		return output.PrintTable([]string{"USER", "CONNECTION"}, rows, users)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status <user-id>...",
	Short: "Check whether specific users are online",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := authedClient()
		if err != nil {
			return err
		}
		statuses, err := client.OnlineStatus(args)
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(args))
		for _, id := range args {
			rows = append(rows, []string{id, yesNo(statuses[id])})
		}
		return output.PrintTable([]string{"USER", "ONLINE"}, rows, statuses)
	},
}

func init() {
	rootCmd.AddCommand(onlineCmd, statusCmd)
}
