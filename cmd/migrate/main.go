package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/angelmondragon/vendorcart-backend/pkg/config"
	"github.com/angelmondragon/vendorcart-backend/pkg/db"
	"github.com/angelmondragon/vendorcart-backend/pkg/db/models"
	"github.com/angelmondragon/vendorcart-backend/pkg/logger"
	"github.com/angelmondragon/vendorcart-backend/pkg/migrate"
	"github.com/joho/godotenv"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

func main() {
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "migration command: up|down|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", "", "migrations directory (default: embedded set; create writes to "+migrate.DefaultDir+")")
	flag.StringVar(&opts.name, "name", "", "migration name (for create)")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	// create and validate only touch the filesystem
	if err := runOffline(opts); err != errNeedsDatabase {
		exitOn(err)
		return
	}

	cfg, err := config.Load()
	exitOn(err)

	logg := logger.New(logger.Options{
		ServiceName: "vendorcart-migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":    cfg.App.Env,
		"cmd":    opts.cmd,
		"dir":    opts.dir,
		"driver": cfg.DB.Driver,
	})

	dbClient, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		logg.Error(ctx, "database unavailable", err)
		os.Exit(1)
	}
	defer dbClient.Close()

	if err := runOnline(ctx, dbClient, opts); err != nil {
		logg.Error(ctx, "migration failed", err)
		os.Exit(1)
	}
	logg.Info(ctx, "migration finished")
}

var errNeedsDatabase = fmt.Errorf("command needs a database")

func runOffline(opts options) error {
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return fmt.Errorf("missing -name for create")
		}
		dir := opts.dir
		if dir == "" {
			dir = migrate.DefaultDir
		}
		path, err := migrate.CreateSQLMigration(dir, opts.name)
		if err != nil {
			return fmt.Errorf("create migration: %w", err)
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateFS(migrate.Source(opts.dir)); err != nil {
			return fmt.Errorf("validate migrations: %w", err)
		}
		fmt.Println("migration validation passed")
		return nil
	default:
		return errNeedsDatabase
	}
}

func runOnline(ctx context.Context, client *db.Client, opts options) error {
	if client.Driver() == db.DriverSQLite {
		if opts.cmd != "up" {
			return fmt.Errorf("sqlite databases only support -cmd=up")
		}
		return client.DB().WithContext(ctx).AutoMigrate(&models.PendingTopUp{})
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("sql database handle: %w", err)
	}
	report, err := runGoose(ctx, sqlDB, opts)
	if err != nil {
		return err
	}
	fmt.Printf("%s: version=%d applied=%v pending=%d\n", report.Command, report.Version, report.Applied, report.Pending)
	return nil
}

func runGoose(ctx context.Context, sqlDB *sql.DB, opts options) (migrate.Report, error) {
	source := migrate.Source(opts.dir)
	switch opts.cmd {
	case "up", "down", "status":
		return migrate.Run(ctx, sqlDB, source, opts.cmd)
	case "version":
		if opts.version == "" {
			return migrate.Report{}, fmt.Errorf("missing -version for version command")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, source, opts.version)
	default:
		return migrate.Report{}, fmt.Errorf("unknown -cmd value %q", opts.cmd)
	}
}

func exitOn(err error) {
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
