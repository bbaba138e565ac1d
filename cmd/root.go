package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/gen2brain/beeep"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"edgesearch/internal/appdirs"
	"edgesearch/internal/humanize"
	"edgesearch/internal/logging"
	"edgesearch/internal/procs"
	"edgesearch/internal/profile"
	"edgesearch/internal/queries"
)

var (
	cfgFile     string
	Verbose     bool
	Stealth     bool
	noKill      bool
	skipLogin   bool
	queriesFile string
	profileFlag string
	modeFlag    string
	countFlag   int
	browserBin  string
	headless    bool

	Log      *zap.Logger
	closeLog func()
)

var rootCmd = &cobra.Command{
	Use:   "edgesearch",
	Short: "Run human-paced Bing searches through a real Edge profile",
	Long: `Edgesearch drives a real Microsoft Edge browser through a list of web
searches, pacing every keystroke and pause like a person at the keyboard.
It uses one of your actual Edge profiles, either in place or via a
disposable copy staged next to the original.`,
	Args:          cobra.NoArgs,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogging()
	},
	RunE: runSearchFlow,
}

// Execute runs the root command, reports its error, and closes the log file.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	if closeLog != nil {
		closeLog()
		closeLog = nil
	}
	return err
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.edgesearch.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "echo debug detail to the console")
	rootCmd.PersistentFlags().StringVarP(&queriesFile, "queries", "q", "queries.txt", "file with one search query per line")

	rootCmd.Flags().StringVarP(&profileFlag, "profile", "p", "", `profile directory name, e.g. "Default" or "Profile 2"`)
	rootCmd.Flags().StringVarP(&modeFlag, "mode", "m", "", "profile staging mode: direct or copy")
	rootCmd.Flags().IntVarP(&countFlag, "count", "n", 0, "number of searches to run (0 asks)")
	rootCmd.Flags().BoolVar(&headless, "headless", false, "run the browser without a window")
	rootCmd.Flags().BoolVarP(&Stealth, "stealth", "s", false, "drive the searches through a stealth page")
	rootCmd.Flags().BoolVar(&noKill, "no-kill", false, "do not close running Edge instances before launching")
	rootCmd.Flags().BoolVar(&skipLogin, "skip-login-check", false, "do not wait for a Bing sign-in")
	rootCmd.Flags().StringVar(&browserBin, "browser-bin", "", "path to the Edge executable")

	viper.SetDefault("logging.file", "")
	viper.SetDefault("search.url", "https://www.bing.com")
	viper.SetDefault("search.box_selector", "#sb_form_q")
	viper.SetDefault("search.signin_selector", "#id_l")
	viper.SetDefault("search.default_count", 5)
	viper.SetDefault("nav.attempts", 3)
	viper.SetDefault("nav.retry_delay", 2*time.Second)
	viper.SetDefault("nav.timeout", 30*time.Second)
	viper.SetDefault("pacing.clear_min", 100*time.Millisecond)
	viper.SetDefault("pacing.clear_max", 300*time.Millisecond)
	viper.SetDefault("pacing.key_min", 20*time.Millisecond)
	viper.SetDefault("pacing.key_max", 80*time.Millisecond)
	viper.SetDefault("pacing.submit_min", 200*time.Millisecond)
	viper.SetDefault("pacing.submit_max", 500*time.Millisecond)
	viper.SetDefault("pacing.settle", 3*time.Second)
	viper.SetDefault("pacing.between_min", time.Second)
	viper.SetDefault("pacing.between_max", 3*time.Second)
	viper.SetDefault("login.wait", time.Minute)
	viper.SetDefault("login.progress_every", 10*time.Second)
	viper.SetDefault("sweep.settle", 2*time.Second)

	_ = viper.BindPFlag("queries.file", rootCmd.PersistentFlags().Lookup("queries"))
	_ = viper.BindPFlag("edge.binary", rootCmd.Flags().Lookup("browser-bin"))
	_ = viper.BindPFlag("search.headless", rootCmd.Flags().Lookup("headless"))

	rootCmd.AddCommand(profilesCmd)
	rootCmd.AddCommand(queriesCmd)
	rootCmd.AddCommand(killCmd)
}

// initConfig loads configuration from the config file and environment.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".edgesearch")
	}

	viper.SetEnvPrefix("EDGESEARCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil && Verbose {
		fmt.Fprintln(os.Stderr, "using config file:", viper.ConfigFileUsed())
	}
}

func setupLogging() error {
	if Log != nil {
		return nil
	}
	path := strings.TrimSpace(viper.GetString("logging.file"))
	if path == "" {
		dir, err := appdirs.LogsDir()
		if err != nil {
			return err
		}
		path = filepath.Join(dir, "edgesearch.log")
	}
	logger, closer, err := logging.New(path, Verbose)
	if err != nil {
		return err
	}
	Log = logger
	closeLog = closer
	Log.Debug("log file open", zap.String("file", path))
	return nil
}

// terminateEdge is a seam for tests.
var terminateEdge = func(log *zap.Logger) int {
	return procs.TerminateByName("msedge", log)
}

func runSearchFlow(cmd *cobra.Command, args []string) error {
	if err := ensureElevated(); err != nil {
		color.Red("%v", err)
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	flowLog := Log.Named("run")
	queriesPath := viper.GetString("queries.file")

	queryList, err := queries.Load(queriesPath)
	if err != nil {
		flowLog.Error("could not read queries file",
			zap.String("file", queriesPath), zap.Error(err))
	}
	if len(queryList) == 0 {
		color.Yellow("No queries found in %s; nothing to do.", queriesPath)
		return nil
	}
	color.Cyan("Loaded %d unique queries from %s.", len(queryList), queriesPath)

	root, err := profile.UserDataRoot()
	if err != nil {
		return err
	}
	profiles, err := profile.List(root)
	if err != nil {
		return fmt.Errorf("list profiles under %s: %w", root, err)
	}
	if len(profiles) == 0 {
		color.Yellow("No Edge profiles found under %s.", root)
		flowLog.Warn("no profiles found", zap.String("root", root))
		return nil
	}

	names, err := profile.DisplayNames(root)
	if err != nil {
		flowLog.Debug("profile display names unavailable", zap.Error(err))
	}

	selected, err := selectProfile(profiles, names)
	if err != nil {
		return err
	}
	mode, err := selectMode()
	if err != nil {
		return err
	}
	count, err := selectCount()
	if err != nil {
		return err
	}
	planned := count
	if len(queryList) < planned {
		planned = len(queryList)
	}

	flowLog.Info("run configured",
		zap.String("profile", selected.Name),
		zap.String("mode", string(mode)),
		zap.Int("count", planned))

	if !noKill {
		if closed := terminateEdge(flowLog); closed > 0 {
			color.Yellow("Closed %d running Edge process(es).", closed)
			if err := humanize.Sleep(ctx, viper.GetDuration("sweep.settle")); err != nil {
				color.Yellow("Interrupted.")
				return nil
			}
		}
	}

	stager := &profile.Stager{Log: flowLog.Named("stage")}
	staged, err := stager.Stage(selected.Dir, mode)
	if err != nil {
		color.Red("%v", err)
		return err
	}
	if mode == profile.ModeCopy {
		defer removeStagedCopy(flowLog, staged)
	}

	browser, page, err := prepareBrowser(staged, mode)
	if err != nil {
		color.Red("%v", err)
		return err
	}
	defer func() {
		if err := browser.Close(); err != nil {
			flowLog.Warn("failed to close browser", zap.Error(err))
		}
	}()

	done, err := runSearches(ctx, page, queryList, planned)

	summary := fmt.Sprintf("Completed %d/%d searches.", done, planned)
	flowLog.Info("run finished", zap.Int("done", done), zap.Int("planned", planned))
	switch {
	case errors.Is(err, context.Canceled):
		color.Yellow("%s (interrupted)", summary)
		err = nil
	case err != nil:
		color.Red("%s (stopped early: %v)", summary, err)
	default:
		color.Green(summary)
	}
	notify(summary)
	return err
}

// notifyFn is a seam for tests.
var notifyFn = beeep.Notify

func notify(message string) {
	if err := notifyFn("edgesearch", message, ""); err != nil {
		Log.Warn("desktop notification failed", zap.Error(err))
	}
}

// removeStagedCopy deletes the scratch profile copy once a run is over.
func removeStagedCopy(log *zap.Logger, dir string) {
	if err := os.RemoveAll(dir); err != nil {
		log.Warn("failed to remove staged profile copy",
			zap.String("dir", dir), zap.Error(err))
		return
	}
	log.Info("removed staged profile copy", zap.String("dir", dir))
}
