package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Danondso/micmute/internal/app"
	"github.com/Danondso/micmute/internal/mixer"
	"github.com/Danondso/micmute/internal/state"
)

var errNoDevice = errors.New("no default input device")

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the default input device, mute state and volume",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ctrl.DefaultInputDeviceValid() {
			return errNoDevice
		}
		out := cmd.OutOrStdout()
		word := "live"
		if ctrl.Muted() {
			word = "muted"
		}
		fmt.Fprintf(out, "Device: %s (%s)\n", displayName(ctrl.DeviceName()), ctrl.DefaultInputDevice())
		fmt.Fprintf(out, "State:  %s\n", word)
		fmt.Fprintf(out, "Volume: %d%%\n", percent(ctrl.Volume()))
		return nil
	},
}

var muteCmd = &cobra.Command{
	Use:   "mute",
	Short: "Mute the microphone, remembering its volume",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMuted(cmd, true)
	},
}

var unmuteCmd = &cobra.Command{
	Use:   "unmute",
	Short: "Unmute the microphone, restoring the remembered volume",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return setMuted(cmd, false)
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Toggle the microphone mute state",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ctrl.DefaultInputDeviceValid() {
			return errNoDevice
		}
		return setMuted(cmd, !ctrl.Muted())
	},
}

var volumeCmd = &cobra.Command{
	Use:   "volume [level]",
	Short: "Show or set the input volume (0..1 or a percentage such as 40%)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if !ctrl.DefaultInputDeviceValid() {
			return errNoDevice
		}
		if len(args) == 0 {
			fmt.Fprintf(cmd.OutOrStdout(), "%d%%\n", percent(ctrl.Volume()))
			return nil
		}
		v, err := parseVolume(args[0])
		if err != nil {
			return err
		}
		if !ctrl.SetVolume(v) {
			return fmt.Errorf("set volume on %s failed", displayName(ctrl.DeviceName()))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d%%\n", percent(ctrl.Volume()))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd, muteCmd, unmuteCmd, toggleCmd, volumeCmd)
}

// setMuted runs the same mute/unmute as the status panel so the zeroed
// volume is remembered across invocations through the state file.
func setMuted(cmd *cobra.Command, muted bool) error {
	if !ctrl.DefaultInputDeviceValid() {
		return errNoDevice
	}

	var store app.StateStore
	if s, err := state.NewStore(); err != nil {
		dbg.Printf("app: %v", err)
	} else {
		store = s
	}
	return applyMute(cmd.OutOrStdout(), ctrl, store, muted, dbg)
}

// applyMute drives one mute or unmute through a Muter. Each invocation is
// a fresh process, so the volume a previous mute zeroed is only known from
// the store and is always restored from it.
func applyMute(out io.Writer, c *mixer.Controller, store app.StateStore, muted bool, logger *log.Logger) error {
	m := app.New(c, nil, app.Options{Store: store, Logger: logger})
	m.LoadCurrentState()
	m.Restore()

	name := displayName(c.DeviceName())
	if c.Muted() != muted {
		if !m.ToggleMute() {
			return fmt.Errorf("could not change mute state of %s", name)
		}
		if err := m.Save(); err != nil {
			logger.Printf("app: save state: %v", err)
		}
	}

	word := "live"
	if c.Muted() {
		word = "muted"
	}
	fmt.Fprintf(out, "%s: %s\n", name, word)
	return nil
}

// parseVolume accepts "0.4", "40%" or "40". Values are clamped by the mixer.
func parseVolume(s string) (float32, error) {
	s = strings.TrimSpace(s)
	pct := strings.HasSuffix(s, "%")
	s = strings.TrimSuffix(s, "%")
	v, err := strconv.ParseFloat(s, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid volume %q", s)
	}
	if pct || v > 1 {
		v /= 100
	}
	return float32(v), nil
}

func percent(v float32) int {
	return int(v*100 + 0.5)
}

func displayName(name string) string {
	if name == "" {
		return "input device"
	}
	return name
}

func deviceLabel(id mixer.DeviceID, name string) string {
	if id == mixer.InvalidDevice {
		return "none"
	}
	return fmt.Sprintf("%s (%s)", displayName(name), id)
}
