package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/gordonklaus/portaudio"
	"github.com/spf13/cobra"

	"github.com/Danondso/micmute/internal/meter"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List capture devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := initPortAudio(); err != nil {
			return fmt.Errorf("portaudio init: %w", err)
		}
		defer portaudio.Terminate()

		devs, err := meter.InputDevices()
		if err != nil {
			return err
		}
		if len(devs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No capture devices found.")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "\tNAME\tHOST API\tCHANNELS\tRATE")
		for _, d := range devs {
			mark := ""
			if d.Default {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.0f\n", mark, d.Name, d.HostAPI, d.Channels, d.SampleRate)
		}
		if err := w.Flush(); err != nil {
			return err
		}

		if ctrl.DefaultInputDeviceValid() {
			fmt.Fprintf(cmd.OutOrStdout(), "\nSystem default input: %s\n", deviceLabel(ctrl.DefaultInputDevice(), ctrl.DeviceName()))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)
}
