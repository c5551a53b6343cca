package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/talentnet/backend/internal/cli/api"
	"github.com/talentnet/backend/internal/cli/output"
)

var followCmd = &cobra.Command{
	Use:   "follow <user-id>",
	Short: "Follow a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := authedClient()
		if err != nil {
			return err
		}
		result, err := client.Follow(args[0])
		if err != nil {
			return err
		}
		if output.GetFormat() == output.FormatJSON {
			return output.PrintJSON(result)
		}
		output.PrintSuccess("Following %s (%d followers)", args[0], result.FollowersCount)
		return nil
	},
}

var unfollowCmd = &cobra.Command{
	Use:   "unfollow <user-id>",
	Short: "Stop following a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := authedClient()
		if err != nil {
			return err
		}
		result, err := client.Unfollow(args[0])
		if err != nil {
			return err
		}
		if output.GetFormat() == output.FormatJSON {
			return output.PrintJSON(result)
		}
		output.PrintSuccess("Unfollowed %s (%d followers)", args[0], result.FollowersCount)
		return nil
	},
}

var listFollowing bool

var followersCmd = &cobra.Command{
	Use:   "followers <user-id>",
	Short: "List a user's followers, or who they follow with --following",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.FromConfig()
		list := client.Followers
		if listFollowing {
			list = client.Following
		}
		users, err := list(args[0])
		if err != nil {
			return err
		}

		rows := make([][]string, 0, len(users))
		for _, u := range users {
			rows = append(rows, []string{u.ID, u.FullName, u.Role, yesNo(u.Online)})
		}
		return output.PrintTable([]string{"ID", "NAME", "ROLE", "ONLINE"}, rows, users)
	},
}

var uploadCmd = &cobra.Command{
	Use:   "upload <" + strings.Join(api.UploadKinds(), "|") + "> <file>",
	Short: "Upload your avatar, resume or cover photo",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := authedClient()
		if err != nil {
			return err
		}
		url, err := client.Upload(args[0], args[1])
		if err != nil {
			return err
		}
		if output.GetFormat() == output.FormatJSON {
			return output.PrintJSON(map[string]string{"kind": args[0], "url": url})
		}
		output.PrintSuccess("Uploaded %s", args[0])
		fmt.Fprintln(output.Writer, url)
		return nil
	},
}

func init() {
	followersCmd.Flags().BoolVar(&listFollowing, "following", false, "List who the user follows instead")

	rootCmd.AddCommand(followCmd, unfollowCmd, followersCmd, uploadCmd)
}
