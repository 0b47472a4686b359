package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-analyser/internal/config"
	"github.com/cwbudde/algo-analyser/internal/logging"
)

// app carries the state shared by subcommands once flags are parsed.
type app struct {
	configPath string

	cfg config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "spectap",
		Short: "Inspect audio through a pass-through spectrum analyser",
		Long: `spectap feeds decoded audio through a signal tap in fixed-size blocks, the
way a host audio graph would, and prints the smoothed spectrum or waveform
snapshots the tap reports.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "config file (default ./spectap.yaml or ~/.config/spectap/spectap.yaml)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.String("log-format", "console", "log format (console, json)")
	pf.StringP("output", "o", "table", "output format (table, json, yaml)")

	root.AddCommand(newAnalyseCmd(a), newToneCmd(a), newWindowsCmd(), newConfigCmd())

	return root
}

// init loads the configuration with cmd's flags bound on top and builds the
// logger.
func (a *app) init(cmd *cobra.Command) error {
	v := viper.New()

	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return err
	}

	cfg, err := config.Load(v, a.configPath)
	if err != nil {
		return err
	}

	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log

	if used := v.ConfigFileUsed(); used != "" {
		log.Debug("loaded config", zap.String("path", used))
	}

	return nil
}
