// Command catalog-install creates the course table and inserts the sample
// courses. Run it once before starting the catalog server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/artpar/coursecatalog/internal/config"
	"github.com/artpar/coursecatalog/internal/shell/store"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

const (
	ExitSuccess       = 0
	ExitConfigError   = 1
	ExitDatabaseError = 2
)

// options controls what install does after the schema is in place.
type options struct {
	Reset bool
	Seed  bool
}

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "Path to config file")
	envFile := flag.String("env-file", ".env", "Path to .env file")
	reset := flag.Bool("reset", false, "Drop the course table before installing (deletes all courses)")
	seed := flag.Bool("seed", true, "Insert the sample courses")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("catalog-install %s (built %s)\n", Version, BuildTime)
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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	// Open applies the schema migrations.
	s, err := store.Open(ctx, cfg.Database.StoreConfig())
	if err != nil {
		logger.Error("failed to open database", "error", err)
		return ExitDatabaseError
	}
	defer s.Close()

	if err := install(ctx, s, options{Reset: *reset, Seed: *seed}, logger); err != nil {
		logger.Error("install failed", "error", err)
		return ExitDatabaseError
	}
	return ExitSuccess
}

// install resets and seeds an opened store according to opts.
func install(ctx context.Context, s *store.SQLStore, opts options, logger *slog.Logger) error {
	backend := s.Backend()

	if opts.Reset {
		logger.Warn("resetting course table", "driver", backend.Driver, "host", backend.Host)
		if err := s.Reset(ctx); err != nil {
			return err
		}
	}

	if !opts.Seed {
		logger.Info("schema installed", "driver", backend.Driver)
		return nil
	}

	n, err := store.Seed(ctx, s, store.SampleCourses())
	if err != nil {
		return fmt.Errorf("seed sample courses: %w", err)
	}

	logger.Info("install complete",
		"driver", backend.Driver,
		"host", backend.Host,
		"courses_inserted", n,
	)
	return nil
}
