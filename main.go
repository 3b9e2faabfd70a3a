package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2/app"

	"github.com/chrisuehlinger/webviewzoom/config"
	"github.com/chrisuehlinger/webviewzoom/logging"
	"github.com/chrisuehlinger/webviewzoom/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "webviewzoom: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Default()
	if path, err := config.DefaultPath(); err == nil {
		if cfg, err = config.Load(path); err != nil {
			return err
		}
	}

	logger := logging.New(os.Stderr, cfg.Log.Level)
	logger.Info().Str("url", cfg.Browser.InitialURL).Msg("starting")

	a := app.NewWithID(config.AppID)
	b, err := ui.NewBrowserUI(a, cfg, logger)
	if err != nil {
		return fmt.Errorf("create browser window: %w", err)
	}
	b.Run()
	return nil
}
