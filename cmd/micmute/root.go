// Package main provides the micmute CLI.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/Danondso/micmute/internal/config"
	"github.com/Danondso/micmute/internal/mixer"
)

var (
	globalOpts struct {
		configPath string
		debug      bool
		backend    string
	}

	cfg     *config.Config
	cfgPath string
	dbg     *log.Logger
	backend mixer.Backend
	ctrl    *mixer.Controller
)

// rootCmd runs the status TUI when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "micmute",
	Short: "Mute and unmute the default microphone",
	Long: `micmute controls the mute state and input volume of the system default
microphone and follows device, mute and volume changes made elsewhere.

Running micmute without a subcommand opens the status panel.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if globalOpts.debug {
			dbg = log.New(os.Stderr, "[DEBUG] ", log.Ltime|log.Lmicroseconds)
		} else {
			dbg = log.New(io.Discard, "", 0)
		}

		cfgPath = globalOpts.configPath
		if cfgPath == "" {
			cfgPath = config.DefaultPath()
		}
		var err error
		cfg, err = config.Load(cfgPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		name := cfg.Backend
		if cmd.Flags().Changed("backend") {
			name = globalOpts.backend
		}
		backend, err = mixer.NewSystemBackend(name, dbg)
		if err != nil {
			return err
		}
		ctrl = mixer.New(backend, dbg)
		dbg.Printf("mixer: backend %s, config %s", backendName(name), cfgPath)
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if backend != nil {
			return backend.Close()
		}
		return nil
	},
	RunE: runTUI,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&globalOpts.configPath, "config", "",
		"Path to config file (default: ~/.config/micmute/config.toml)")
	rootCmd.PersistentFlags().BoolVar(&globalOpts.debug, "debug", false,
		"Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&globalOpts.backend, "backend", mixer.BackendAuto,
		"Audio backend: auto, coreaudio or pulse (overrides the config file)")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func backendName(name string) string {
	if name == "" {
		return mixer.BackendAuto
	}
	return name
}
