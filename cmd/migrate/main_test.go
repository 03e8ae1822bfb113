package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/vendorcart-backend/pkg/config"
	"github.com/angelmondragon/vendorcart-backend/pkg/db"
)

func TestRunOfflineCreateAndValidate(t *testing.T) {
	dir := t.TempDir()

	require.NoError(t, runOffline(options{cmd: "create", dir: dir, name: "add wallet index"}))
	matches, err := filepath.Glob(filepath.Join(dir, "*_add_wallet_index.sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1)

	require.NoError(t, runOffline(options{cmd: "validate", dir: dir}))
}

func TestRunOfflineCreateRequiresName(t *testing.T) {
	require.Error(t, runOffline(options{cmd: "create", dir: t.TempDir()}))
}

func TestRunOfflineDefersDatabaseCommands(t *testing.T) {
	require.Equal(t, errNeedsDatabase, runOffline(options{cmd: "up"}))
	require.Equal(t, errNeedsDatabase, runOffline(options{cmd: "status"}))
}

func TestRunOnlineSQLiteAutoMigrates(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "vendorcart.db")
	client, err := db.New(ctx, config.DBConfig{Driver: db.DriverSQLite, DSN: path}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, runOnline(ctx, client, options{cmd: "up"}))
	require.True(t, client.DB().Migrator().HasTable("pending_topups"))

	require.Error(t, runOnline(ctx, client, options{cmd: "down"}))

	_, statErr := os.Stat(path)
	require.NoError(t, statErr)
}
