// Package cmd wires talentctl's cobra commands.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/talentnet/backend/internal/cli/api"
	"github.com/talentnet/backend/internal/cli/config"
	"github.com/talentnet/backend/internal/cli/credentials"
	"github.com/talentnet/backend/internal/cli/logger"
	"github.com/talentnet/backend/internal/cli/output"
)

var (
	verbose    bool
	configPath string
	outputFmt  string
)

var rootCmd = &cobra.Command{
	Use:   "talentctl",
	Short: "TalentNet CLI - presence and direct messages from the terminal",
	Long: `talentctl talks to a TalentNet backend: log in, look up profiles,
see who is online and chat with other users in real time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.Init(configPath); err != nil {
			return fmt.Errorf("initializing config: %w", err)
		}
		logger.Init(verbose)

		if cmd.Flags().Changed("output") {
			if !output.ValidateFormat(outputFmt) {
				return fmt.Errorf("unknown output format %q", outputFmt)
			}
			config.Set("output.format", outputFmt)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = logger.Close()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		output.PrintError("%v", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/talentnet/cli/config.toml)")
	rootCmd.PersistentFlags().StringVarP(&outputFmt, "output", "o", "text", "Output format: text or json")
}

// authedClient returns an API client carrying the stored token
func authedClient() (*api.Client, *credentials.Credentials, error) {
	creds, err := credentials.Require()
	if err != nil {
		return nil, nil, err
	}
	client := api.FromConfig()
	client.SetAuthToken(creds.Token)
	return client, creds, nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
