// Package cmd assembles the omega6 command tree.
package cmd

import (
	"github.com/spf13/cobra"

	"github.com/magicat777/omega6/cmd/config"
	"github.com/magicat777/omega6/cmd/devices"
	"github.com/magicat777/omega6/cmd/realtime"
	"github.com/magicat777/omega6/internal/conf"
)

// RootCommand creates and returns the root command with subcommands
// attached.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "omega6",
		Short: "OMEGA6 real-time audio analysis pipeline",
		Long: `omega6 captures multichannel audio from a hardware input device and
feeds it to spectrum and loudness analysis consumers in real time.`,
	}

	rootCmd.PersistentFlags().BoolVar(&settings.Debug, "debug", settings.Debug, "Enable debug output")

	rootCmd.AddCommand(
		realtime.Command(settings),
		devices.Command(settings),
		config.Command(settings),
	)
	return rootCmd
}
