package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"edgesearch/internal/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the Edge profiles on this machine",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		root, err := profile.UserDataRoot()
		if err != nil {
			return err
		}
		profiles, err := profile.List(root)
		if err != nil {
			return err
		}
		if len(profiles) == 0 {
			color.Yellow("No Edge profiles found under %s.", root)
			return nil
		}

		friendly, err := profile.DisplayNames(root)
		if err != nil {
			Log.Debug("profile display names unavailable", zap.Error(err))
		}
		for _, p := range profiles {
			color.Green("%-40s %s", formatProfileLabel(p.Name, friendly[p.Name]), p.Dir)
		}
		return nil
	},
}
