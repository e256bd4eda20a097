// Package realtime implements the capture-and-analyze subcommand.
package realtime

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/magicat777/omega6/internal/analysis"
	"github.com/magicat777/omega6/internal/audiocore"
	"github.com/magicat777/omega6/internal/audiocore/driver"
	"github.com/magicat777/omega6/internal/conf"
	"github.com/magicat777/omega6/internal/logging"
	"github.com/magicat777/omega6/internal/observability"
)

// Command creates the realtime subcommand.
func Command(settings *conf.Settings) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "realtime",
		Short: "Capture audio and run the analysis pipeline until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(settings)
		},
	}
	cmd.Flags().StringVar(&settings.Capture.Device, "device", settings.Capture.Device,
		"Input device name or keyword, empty for auto selection")
	return cmd
}

func run(settings *conf.Settings) error {
	logger := logging.ForService("realtime")
	metrics := observability.NewMetrics()

	manager := audiocore.NewManager(driver.New(nil), settings.Capture, metrics, nil)

	if settings.Capture.Device != "" {
		if err := selectByName(manager, settings.Capture.Device); err != nil {
			return err
		}
	}

	spectrum, err := analysis.NewSpectrum(settings.Spectrum, nil)
	if err != nil {
		return err
	}
	meters, err := analysis.NewMeters(settings.Meters, nil)
	if err != nil {
		return err
	}
	manager.RegisterConsumer(spectrum)
	manager.RegisterConsumer(meters)

	if settings.Metrics.Enabled {
		go func() {
			if err := metrics.Serve(settings.Metrics.Listen); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
	}

	if err := manager.StartCapture(); err != nil {
		return err
	}
	defer manager.StopCapture()

	if d, ok := manager.CurrentInputDevice(); ok {
		fmt.Printf("Listening on: %s\n", d)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			logger.Info("shutting down")
			return nil
		case <-ticker.C:
			left, right := manager.CurrentLevel()
			snap := meters.Snapshot()
			bars := spectrum.Bars()
			loudest := 0
			for i := range bars {
				if bars[i].Level > bars[loudest].Level {
					loudest = i
				}
			}
			logger.Info("levels",
				"peak_freq", fmt.Sprintf("%.0f", bars[loudest].Freq),
				"rms_l", fmt.Sprintf("%.1f", left),
				"rms_r", fmt.Sprintf("%.1f", right),
				"true_peak_l", fmt.Sprintf("%.1f", snap.TruePeakL),
				"true_peak_r", fmt.Sprintf("%.1f", snap.TruePeakR),
				"momentary", fmt.Sprintf("%.1f", snap.Momentary),
				"short_term", fmt.Sprintf("%.1f", snap.ShortTerm),
				"integrated", fmt.Sprintf("%.1f", snap.Integrated))
		}
	}
}

// selectByName resolves a device name or keyword against the enumerated
// inputs and selects the first match.
func selectByName(manager *audiocore.Manager, name string) error {
	for _, d := range manager.InputDevices() {
		if d.Name == name || d.ID == name ||
			strings.Contains(strings.ToLower(d.Name), strings.ToLower(name)) {
			return manager.SetInputDevice(d.Index)
		}
	}
	return fmt.Errorf("no input device matching %q", name)
}
