// Package config implements the config file bootstrap subcommand.
package config

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/magicat777/omega6/internal/conf"
)

// Command creates the config subcommand, which writes the current
// (default plus overrides) settings to a starter config file.
func Command(settings *conf.Settings) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write the active configuration to a YAML file",
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := conf.DumpYAML(settings)
			if err != nil {
				return fmt.Errorf("rendering configuration: %w", err)
			}
			if output == "-" {
				_, err = os.Stdout.Write(data)
				return err
			}
			if _, err := os.Stat(output); err == nil {
				return fmt.Errorf("%s already exists, refusing to overwrite", output)
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			fmt.Printf("Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "config.yaml", "Output path, - for stdout")
	return cmd
}
