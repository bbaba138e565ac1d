package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	survey "github.com/AlecAivazis/survey/v2"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/term"

	"edgesearch/internal/profile"
)

const (
	modeLabelDirect = "direct (use the live profile in place)"
	modeLabelCopy   = "copy (stage a disposable copy first)"
)

// selectProfile resolves which profile to drive. An explicit --profile must
// name an existing profile directory; otherwise an interactive terminal gets
// a picker and anything else falls back to the first profile.
func selectProfile(profiles []profile.Profile, friendly map[string]string) (profile.Profile, error) {
	if profileFlag != "" {
		for _, p := range profiles {
			if strings.EqualFold(p.Name, profileFlag) {
				return p, nil
			}
		}
		return profile.Profile{}, fmt.Errorf("profile %q not found; run `edgesearch profiles` to see what exists", profileFlag)
	}

	if !interactiveTerminal() {
		Log.Info("no interactive terminal, using first profile",
			zap.String("profile", profiles[0].Name))
		return profiles[0], nil
	}

	labels := make([]string, 0, len(profiles))
	labelToProfile := make(map[string]profile.Profile, len(profiles))
	for _, p := range profiles {
		label := formatProfileLabel(p.Name, friendly[p.Name])
		labels = append(labels, label)
		labelToProfile[label] = p
	}

	var selection string
	prompt := &survey.Select{
		Message: "Select Edge profile",
		Options: labels,
		Default: labels[0],
	}
	if err := survey.AskOne(prompt, &selection); err != nil {
		return profile.Profile{}, err
	}
	picked, ok := labelToProfile[selection]
	if !ok {
		return profile.Profile{}, fmt.Errorf("unknown profile selection: %s", selection)
	}
	return picked, nil
}

// selectMode resolves the staging mode, defaulting to direct.
func selectMode() (profile.StageMode, error) {
	if modeFlag != "" {
		return parseMode(modeFlag)
	}
	if !interactiveTerminal() {
		return profile.ModeDirect, nil
	}

	var selection string
	prompt := &survey.Select{
		Message: "Profile staging mode",
		Options: []string{modeLabelDirect, modeLabelCopy},
		Default: modeLabelDirect,
	}
	if err := survey.AskOne(prompt, &selection); err != nil {
		return "", err
	}
	if selection == modeLabelCopy {
		return profile.ModeCopy, nil
	}
	return profile.ModeDirect, nil
}

func parseMode(raw string) (profile.StageMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "direct":
		return profile.ModeDirect, nil
	case "copy":
		return profile.ModeCopy, nil
	default:
		return "", fmt.Errorf("unknown mode %q: want direct or copy", raw)
	}
}

// selectCount resolves how many searches to run.
func selectCount() (int, error) {
	if countFlag > 0 {
		return countFlag, nil
	}
	fallback := viper.GetInt("search.default_count")
	if !interactiveTerminal() {
		return fallback, nil
	}

	var answer string
	prompt := &survey.Input{
		Message: "How many searches?",
		Default: strconv.Itoa(fallback),
	}
	if err := survey.AskOne(prompt, &answer, survey.WithValidator(validateSearchCount)); err != nil {
		return 0, err
	}
	return strconv.Atoi(strings.TrimSpace(answer))
}

func validateSearchCount(ans interface{}) error {
	str, _ := ans.(string)
	n, err := strconv.Atoi(strings.TrimSpace(str))
	if err != nil {
		return fmt.Errorf("enter a whole number")
	}
	if n <= 0 {
		return fmt.Errorf("must be greater than zero")
	}
	return nil
}

func formatProfileLabel(dir, friendly string) string {
	name := friendly
	if name == "" {
		name = dir
	}
	if strings.EqualFold(name, dir) {
		return name
	}
	return fmt.Sprintf("%s (%s)", name, dir)
}

func interactiveTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}
