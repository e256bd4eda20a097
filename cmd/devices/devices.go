// Package devices implements the device listing subcommand.
package devices

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/magicat777/omega6/internal/audiocore"
	"github.com/magicat777/omega6/internal/audiocore/driver"
	"github.com/magicat777/omega6/internal/conf"
)

// Command creates the devices subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List available audio devices",
		RunE: func(cmd *cobra.Command, args []string) error {
			manager := audiocore.NewManager(driver.New(nil), settings.Capture, nil, nil)
			if len(manager.Devices()) == 0 {
				return fmt.Errorf("no audio devices found")
			}
			fmt.Print(manager.DeviceListInfo())
			return nil
		},
	}
}
