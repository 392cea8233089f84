// Package app wires storage, detection and the merge service together for
// the command line and web entry points.
package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"

	"github.com/talentflow/dedupe/internal/audit"
	"github.com/talentflow/dedupe/internal/candidate"
	"github.com/talentflow/dedupe/internal/config"
	"github.com/talentflow/dedupe/internal/db"
	"github.com/talentflow/dedupe/internal/match"
	"github.com/talentflow/dedupe/internal/service"
	"github.com/talentflow/dedupe/internal/store"
)

// Options selects the storage backend and detection configuration.
// When File is set candidates are kept in memory and written back to the
// JSON file on Close; otherwise Driver and DSN select a SQL database.
type Options struct {
	Driver          string
	DSN             string
	File            string
	DetectionConfig string
	Debug           bool
	Logger          *slog.Logger
}

// OptionsFromEnv reads DEDUPE_DB_DRIVER, DEDUPE_DB_URL, DEDUPE_CANDIDATES_FILE,
// DEDUPE_CONFIG and DEDUPE_DEBUG
func OptionsFromEnv() Options {
	return Options{
		Driver:          config.GetEnv("DEDUPE_DB_DRIVER", db.DriverSQLite),
		DSN:             config.GetEnv("DEDUPE_DB_URL", ""),
		File:            config.GetEnv("DEDUPE_CANDIDATES_FILE", ""),
		DetectionConfig: config.GetEnv("DEDUPE_CONFIG", ""),
		Debug:           config.GetEnvBool("DEDUPE_DEBUG", false),
	}
}

// Backend is an opened service with its storage
type Backend struct {
	Service *service.Service
	Repo    candidate.Repository
	Conn    *db.Connection

	file   string
	logger *slog.Logger
}

// Open builds the backend described by opts
func Open(ctx context.Context, opts Options) (*Backend, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg, err := config.LoadDetectionConfig(opts.DetectionConfig)
	if err != nil {
		return nil, err
	}
	detector, err := match.NewDetectorWithConfig(cfg, match.WithLogger(logger), match.WithDebug(opts.Debug))
	if err != nil {
		return nil, err
	}

	b := &Backend{file: opts.File, logger: logger}
	svcOpts := []service.Option{service.WithLogger(logger), service.WithDebug(opts.Debug)}

	if opts.File != "" {
		seed, err := store.LoadJSONFile(opts.File)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		b.Repo = store.NewMemoryRepository(seed...)
		logger.Debug("using candidate file", "file", opts.File, "candidates", len(seed))
	} else {
		conn, err := openDatabase(opts)
		if err != nil {
			return nil, err
		}
		repo := store.NewSQLRepository(conn, logger)
		tracker := audit.NewTracker(conn)
		if err := repo.Migrate(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		if err := tracker.Migrate(ctx); err != nil {
			conn.Close()
			return nil, err
		}
		b.Conn, b.Repo = conn, repo
		svcOpts = append(svcOpts, service.WithAuditor(tracker))
	}

	b.Service = service.New(b.Repo, detector, svcOpts...)
	return b, nil
}

// openDatabase connects with the configured DSN. Postgres without a DSN uses
// the PG* variables; SQLite without one uses candidates.db.
func openDatabase(opts Options) (*db.Connection, error) {
	switch {
	case opts.DSN != "":
		return db.Open(opts.Driver, opts.DSN)
	case opts.Driver == db.DriverPostgres:
		return db.NewConnection()
	default:
		return db.Open(opts.Driver, "candidates.db")
	}
}

// Close writes a file-backed store back to disk and closes any database
func (b *Backend) Close(ctx context.Context) error {
	var errs []error
	if b.file != "" {
		if err := store.SaveJSONFile(ctx, b.file, b.Repo); err != nil {
			errs = append(errs, fmt.Errorf("saving %s: %w", b.file, err))
		}
	}
	if b.Conn != nil {
		if err := b.Conn.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Describe returns a one-line description of the storage in use
func (b *Backend) Describe() string {
	if b.file != "" {
		return "file " + b.file
	}
	if b.Conn != nil {
		return "database (" + b.Conn.Driver + ")"
	}
	return "memory"
}
