package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"matchharvest/pkg/config"
	errs "matchharvest/pkg/errors"
	"matchharvest/pkg/logger"
	"matchharvest/pkg/ui"
)

var (
	// Version information
	version   = "1.0.0"
	gitCommit = "unknown"
	buildDate = "unknown"

	// Global flags
	configFile string
	logLevel   string
	quiet      bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "matchharvest",
	Short: "Harvest Dota 2 match data from the Steam Web API",
	Long: `matchharvest collects finished Dota 2 matches from the Steam Web API into a
JSON dataset for model training.

It walks the match sequence forward from a configured start, keeps matches
whose game mode, lobby type and player count match the filters, and checkpoints
accepted matches so an interrupted run can be resumed.

Running matchharvest without a subcommand runs fetch.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, gitCommit, buildDate),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if quiet {
			ui.SetQuiet(true)
		}
	},
	RunE: runFetch,
}

// Execute runs the root command and exits non-zero on failure
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()

	if err != nil {
		ui.PrintError(failureMessage(err))
		os.Exit(1)
	}
}

// failureMessage names the stage a fatal error came from
func failureMessage(err error) string {
	if errors.Is(err, context.Canceled) {
		return "interrupted; matches flushed before the interrupt are kept"
	}
	msg := err.Error()
	if stage := string(errs.StageOf(err)); stage != "" && !strings.Contains(msg, stage+": ") {
		msg = fmt.Sprintf("%s: %s", stage, msg)
	}
	return msg
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file (default is ./.matchharvest.yaml or ~/.config/matchharvest/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress all output except errors")

	addFetchFlags(rootCmd)

	rootCmd.SetVersionTemplate(`matchharvest {{.Version}}
Go Version: ` + runtime.Version() + `
OS/Arch: ` + runtime.GOOS + `/` + runtime.GOARCH + `
`)

	rootCmd.CompletionOptions.DisableDefaultCmd = true
}

// loadConfig loads configuration with the flags the user set on cmd and
// installs the global logger
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	flags := collectFlags(cmd)
	if quiet && logLevel == "" {
		flags["log-level"] = "error"
	}

	cfg, err := config.Load(configFile, flags)
	if err != nil {
		return nil, &errs.Error{Type: errs.ErrorTypeConfig, Stage: "config", Err: err}
	}

	if err := logger.Initialize(&cfg.Logging); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, nil
}

// collectFlags maps the changed flags of cmd onto config flag names
func collectFlags(cmd *cobra.Command) map[string]interface{} {
	flags := make(map[string]interface{})
	fs := cmd.Flags()

	for _, name := range []string{"api-key", "language", "match-file", "training-file", "hero-file", "log-level", "start", "end"} {
		if f := fs.Lookup(name); f != nil && f.Changed {
			flags[name] = f.Value.String()
		}
	}
	for _, name := range []string{"game-modes", "lobby-types"} {
		if f := fs.Lookup(name); f != nil && f.Changed {
			if v, err := fs.GetIntSlice(name); err == nil {
				flags[name] = v
			}
		}
	}
	if f := fs.Lookup("human-players"); f != nil && f.Changed {
		if v, err := fs.GetInt("human-players"); err == nil {
			flags["human-players"] = v
		}
	}
	if f := fs.Lookup("cooldown"); f != nil && f.Changed {
		if v, err := fs.GetDuration("cooldown"); err == nil {
			flags["cooldown"] = v
		}
	}
	return flags
}
