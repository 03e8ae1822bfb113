package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where new migration files are written when no -dir is given.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Migrations returns the SQL migrations compiled into the binary.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(fmt.Sprintf("embedded migrations: %v", err))
	}
	return sub
}

// Source returns the embedded migrations, or dir on disk when it is set.
func Source(dir string) fs.FS {
	if dir == "" {
		return Migrations()
	}
	return os.DirFS(dir)
}

// Report summarizes what a command did to the schema.
type Report struct {
	Command string
	Applied []int64
	Version int64
	Pending int
}

// Run executes up, down or status against db using the Postgres dialect.
func Run(ctx context.Context, db *sql.DB, fsys fs.FS, command string) (Report, error) {
	provider, err := newProvider(db, fsys)
	if err != nil {
		return Report{}, err
	}
	report := Report{Command: command}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return report, fmt.Errorf("goose up: %w", err)
		}
		report.Applied = versions(results)
	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			return report, fmt.Errorf("goose down: %w", err)
		}
		if result != nil {
			report.Applied = []int64{result.Source.Version}
		}
	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return report, fmt.Errorf("goose status: %w", err)
		}
		for _, st := range statuses {
			if st.State == goose.StatePending {
				report.Pending++
			}
		}
	default:
		return report, fmt.Errorf("unsupported migrate command %q", command)
	}

	report.Version, err = provider.GetDBVersion(ctx)
	if err != nil {
		return report, fmt.Errorf("read db version: %w", err)
	}
	return report, nil
}

// MigrateToVersion moves the schema up or down until it sits at targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, fsys fs.FS, targetVersion string) (Report, error) {
	report := Report{Command: "version"}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return report, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	provider, err := newProvider(db, fsys)
	if err != nil {
		return report, err
	}
	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return report, fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current < target:
		results, err = provider.UpTo(ctx, target)
	case current > target:
		results, err = provider.DownTo(ctx, target)
	}
	if err != nil {
		return report, fmt.Errorf("migrate to %d: %w", target, err)
	}
	report.Applied = versions(results)
	report.Version, err = provider.GetDBVersion(ctx)
	return report, err
}

func newProvider(db *sql.DB, fsys fs.FS) (*goose.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	if fsys == nil {
		return nil, fmt.Errorf("migration source is required")
	}
	// pending top-ups live in Postgres
	provider, err := goose.NewProvider(goose.DialectPostgres, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

func versions(results []*goose.MigrationResult) []int64 {
	out := make([]int64, 0, len(results))
	for _, r := range results {
		out = append(out, r.Source.Version)
	}
	return out
}
