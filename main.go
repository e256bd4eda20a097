package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/magicat777/omega6/cmd"
	"github.com/magicat777/omega6/internal/conf"
	"github.com/magicat777/omega6/internal/logging"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if settings.Debug {
		level = slog.LevelDebug
	}
	logging.Init(level)

	if err := cmd.RootCommand(settings).Execute(); err != nil {
		os.Exit(1)
	}
}
