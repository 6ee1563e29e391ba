// Package main is the entry point for the MQ usage viewer API.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/preedep/MQUsageViewer/bootstrap"
	"github.com/preedep/MQUsageViewer/config"
)

var (
	version   = "dev"
	commit    = "none"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "mqviewer.yaml", "Path to configuration file (optional)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	validate := flag.Bool("validate", false, "Validate configuration and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("mqviewer %s (commit %s, built %s)\n", version, commit, buildDate)
		return
	}

	// Local development convenience; a missing .env is not an error.
	godotenv.Load()

	cfg, err := config.LoadWithFallback(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	if *validate {
		fmt.Println("configuration OK")
		return
	}

	app, err := bootstrap.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "startup error: %v\n", err)
		os.Exit(1)
	}

	if err := app.Run(); err != nil {
		app.Logger.Error().Err(err).Msg("server error")
		os.Exit(1)
	}
}
