package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/artpar/coursecatalog/internal/config"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config file")
	envFile := flag.String("env-file", ".env", "Path to .env file")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("catalog %s (built %s)\n", Version, BuildTime)
		return ExitSuccess
	}

	if err := config.LoadDotEnv(*envFile); err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		return ExitConfigError
	}

	logger := config.SetupLogger(cfg)
	logger.Info("starting catalog",
		"version", Version,
		"config", *configPath,
	)

	server, err := NewServer(cfg, logger)
	if err != nil {
		var sErr *ServerError
		if errors.As(err, &sErr) {
			logger.Error("failed to create server",
				"error", sErr.Err,
				"operation", sErr.Op,
			)
			return sErr.ExitCode
		}
		logger.Error("failed to create server", "error", err)
		return ExitConfigError
	}

	if err := server.Start(context.Background()); err != nil {
		var sErr *ServerError
		if errors.As(err, &sErr) {
			logger.Error("server error",
				"error", sErr.Err,
				"operation", sErr.Op,
			)
			return sErr.ExitCode
		}
		logger.Error("server error", "error", err)
		return ExitHTTPServerError
	}

	return ExitSuccess
}
