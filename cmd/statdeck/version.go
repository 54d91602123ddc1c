package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/statdeck/statdeck/internal/appupdate"
	"github.com/statdeck/statdeck/internal/version"
)

func newVersionCommand() *cobra.Command {
	var checkUpdate bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the statdeck version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			fmt.Println("statdeck " + version.String())
			if !checkUpdate {
				return nil
			}

			result, err := appupdate.Check(cmd.Context(), appupdate.CheckOptions{
				CurrentVersion: version.Version,
			})
			if err != nil {
				return fmt.Errorf("checking for updates: %w", err)
			}
			if result.UpdateAvailable {
				fmt.Printf("Update available: %s (installed %s)\n", result.LatestVersion, result.CurrentVersion)
				fmt.Printf("Upgrade with: %s\n", result.Channel.UpgradeCommand())
			} else if result.LatestVersion != "" {
				fmt.Println("You are on the latest release.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&checkUpdate, "check-update", false, "check GitHub for a newer release")
	return cmd
}
