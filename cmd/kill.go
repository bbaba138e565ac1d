package cmd

import (
	"context"
	"fmt"
	"time"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"edgesearch/internal/procs"
)

const killCancelLabel = "Cancel"

var killCmd = &cobra.Command{
	Use:   "kill [filename]",
	Short: "Find and kill the process holding a file open",
	Long: `Scans every process's open files for the given name fragment and lets
you pick one to kill. Useful when a profile copy keeps failing because
something still holds a database file open.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ensureElevated(); err != nil {
			color.Red("%v", err)
			return err
		}

		needle := ""
		if len(args) > 0 {
			needle = args[0]
		} else {
			if !interactiveTerminal() {
				return fmt.Errorf("pass the file name to search for")
			}
			if err := survey.AskOne(&survey.Input{
				Message: "File name (or fragment) to search for",
			}, &needle, survey.WithValidator(survey.Required)); err != nil {
				return err
			}
		}

		killLog := Log.Named("kill")
		owners, err := procs.FindByOpenFile(needle)
		if err != nil {
			return fmt.Errorf("scan processes: %w", err)
		}
		if len(owners) == 0 {
			color.Yellow("No process holds a file matching %q.", needle)
			return nil
		}

		labels := make([]string, 0, len(owners)+1)
		labelToOwner := make(map[string]procs.OpenFileOwner, len(owners))
		for _, o := range owners {
			label := fmt.Sprintf("PID %d  %s  %s", o.PID, o.Name, o.Path)
			labels = append(labels, label)
			labelToOwner[label] = o
		}

		if !interactiveTerminal() {
			for _, label := range labels {
				fmt.Println(label)
			}
			return nil
		}
		labels = append(labels, killCancelLabel)

		var selection string
		if err := survey.AskOne(&survey.Select{
			Message: "Kill which process?",
			Options: labels,
		}, &selection); err != nil {
			return err
		}
		if selection == killCancelLabel {
			return nil
		}
		target := labelToOwner[selection]

		confirmed := false
		if err := survey.AskOne(&survey.Confirm{
			Message: fmt.Sprintf("Kill PID %d (%s)?", target.PID, target.Name),
		}, &confirmed); err != nil {
			return err
		}
		if !confirmed {
			return nil
		}

		if err := procs.Kill(target.PID); err != nil {
			killLog.Error("kill failed", zap.Int32("pid", target.PID), zap.Error(err))
			return fmt.Errorf("kill PID %d: %w (try an elevated prompt)", target.PID, err)
		}
		if procs.WaitExit(context.Background(), target.PID, 3*time.Second) {
			color.Green("PID %d terminated.", target.PID)
			killLog.Info("process killed",
				zap.Int32("pid", target.PID), zap.String("name", target.Name))
		} else {
			color.Yellow("PID %d is still running.", target.PID)
		}
		return nil
	},
}
