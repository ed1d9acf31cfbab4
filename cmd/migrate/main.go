package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/contaro/backend/internal/infrastructure/config"
	"github.com/contaro/backend/internal/infrastructure/logger"
	"github.com/contaro/backend/internal/infrastructure/migration"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

const usage = `Contaro schema migration tool

Usage:
  migrate [flags] <command> [arguments]

Commands:
  up               apply all pending migrations
  down             roll back all migrations
  step <n>         apply n migrations; negative n rolls back
  version          print the current schema version
  force <version>  stamp the schema version to recover a dirty state
  create <name>    write an empty up/down migration pair

Flags:
  -path string       migrations directory (default "migrations")
  -log-level string  debug, info, warn or error (default "info")

The database connection comes from CONTARO_DATABASE_* environment
variables (HOST, PORT, USER, PASSWORD, NAME, SSL_MODE) or config.yaml.`

func main() {
	var (
		migrationsPath string
		logLevel       string
	)
	flag.StringVar(&migrationsPath, "path", "migrations", "migrations directory")
	flag.StringVar(&logLevel, "log-level", "info", "log level")
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	command := args[0]

	log, err := logger.New(&logger.Config{
		Level:      logLevel,
		Format:     "console",
		Output:     "stdout",
		TimeFormat: "2006-01-02 15:04:05",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	if migrationsPath, err = filepath.Abs(migrationsPath); err != nil {
		log.Fatal("Failed to resolve migrations path", zap.Error(err))
	}

	// create needs no database
	if command == "create" {
		if len(args) < 2 {
			log.Fatal("Migration name required. Usage: migrate create <name>")
		}
		mf, err := migration.CreateMigration(migrationsPath, args[1])
		if err != nil {
			log.Fatal("Failed to create migration", zap.Error(err))
		}
		log.Info("Migration created",
			zap.String("up", mf.UpPath),
			zap.String("down", mf.DownPath),
		)
		return
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load configuration", zap.Error(err))
	}

	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Fatal("Failed to open database", zap.Error(err))
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		log.Fatal("Failed to reach database", zap.Error(err))
	}

	runner, err := migration.New(db, migrationsPath, log)
	if err != nil {
		log.Fatal("Failed to create migration runner", zap.Error(err))
	}
	defer runner.Close()

	switch command {
	case "up":
		err = runner.Up()
	case "down":
		err = runner.Down()
	case "step":
		n, perr := stepArg(args)
		if perr != nil {
			log.Fatal(perr.Error())
		}
		err = runner.Steps(n)
	case "version":
		version, dirty, verr := runner.Version()
		if verr != nil {
			log.Fatal("Failed to read schema version", zap.Error(verr))
		}
		if version == 0 {
			log.Info("No migrations applied yet")
		} else {
			log.Info("Schema version", zap.Uint("version", version), zap.Bool("dirty", dirty))
		}
		return
	case "force":
		v, perr := forceArg(args)
		if perr != nil {
			log.Fatal(perr.Error())
		}
		err = runner.Force(v)
	default:
		fmt.Fprintln(os.Stderr, usage)
		log.Fatal("Unknown command", zap.String("command", command))
	}

	if err != nil {
		log.Fatal("Migration failed", zap.String("command", command), zap.Error(err))
	}
}

func stepArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("step count required. Usage: migrate step <n>")
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid step count %q", args[1])
	}
	return n, nil
}

func forceArg(args []string) (int, error) {
	if len(args) < 2 {
		return 0, fmt.Errorf("version required. Usage: migrate force <version>")
	}
	v, err := strconv.Atoi(args[1])
	if err != nil {
		return 0, fmt.Errorf("invalid version %q", args[1])
	}
	return v, nil
}
