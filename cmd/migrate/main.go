// migrate applies or rolls back the embedded schema migrations.
// Run: go run ./cmd/migrate [-steps N] up|down|version
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/ErlanBelekov/account-service/internal/infrastructure/postgres"
	"github.com/golang-migrate/migrate/v4"
	"github.com/lmittmann/tint"
)

func main() {
	var steps int
	flag.IntVar(&steps, "steps", 0, "number of migrations to apply (up) or roll back (down); 0 = all for up, 1 for down")
	flag.Usage = func() {
		fmt.Fprintln(flag.CommandLine.Output(), "usage: migrate [-steps N] up|down|version")
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		os.Exit(2)
	}

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL is not set (run: direnv allow)")
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{TimeFormat: time.Kitchen}))

	m, err := postgres.NewMigrator(dbURL, logger)
	if err != nil {
		log.Fatalf("migrator: %v", err)
	}
	defer m.Close()

	switch flag.Arg(0) {
	case "up":
		if steps > 0 {
			err = m.Steps(steps)
		} else {
			err = m.Up()
		}
	case "down":
		if steps <= 0 {
			steps = 1
		}
		err = m.Steps(-steps)
	case "version":
	default:
		flag.Usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migrate %s: %v", flag.Arg(0), err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		logger.Info("no migrations applied")
	case err != nil:
		log.Fatalf("version: %v", err)
	default:
		logger.Info("schema version", "version", version, "dirty", dirty)
	}
}
