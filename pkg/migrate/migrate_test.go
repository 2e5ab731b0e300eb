package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/spa-backend/pkg/db"
	"github.com/stretchr/testify/require"
)

func TestValidateDirEmbeddedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadFilename(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_init.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid migration filename")
}

func TestValidateDirRejectsMissingDown(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_init.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "+goose Down")
}

func TestValidateDirRejectsDuplicateVersions(t *testing.T) {
	dir := t.TempDir()
	body := []byte("-- +goose Up\n-- +goose Down\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_a.sql"), body, 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_b.sql"), body, 0o644))

	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "duplicate migration version")
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()

	path, err := CreateSQLMigration(dir, "Add Gift Cards!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_gift_cards.sql"))

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(b), "-- +goose Up")
	require.Contains(t, string(b), "-- +goose Down")
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationRequiresName(t *testing.T) {
	_, err := CreateSQLMigration(t.TempDir(), "  !! ")
	require.Error(t, err)
}

func TestRunUpAndDownOnSQLite(t *testing.T) {
	conn, err := db.OpenInMemory(t.Name())
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, Run(ctx, sqlDB, db.DialectSQLite, "up"))

	var hours int
	require.NoError(t, sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM business_hours").Scan(&hours))
	require.Equal(t, 7, hours)

	var sundayClose int
	require.NoError(t, sqlDB.QueryRowContext(ctx, "SELECT close_hour FROM business_hours WHERE weekday = 0").Scan(&sundayClose))
	require.Equal(t, 18, sundayClose)

	require.NoError(t, MigrateToVersion(ctx, sqlDB, db.DialectSQLite, "20260101120100"))

	var tables int
	require.NoError(t, sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'check_ins'").Scan(&tables))
	require.Zero(t, tables)
}

func TestRunRequiresDB(t *testing.T) {
	require.Error(t, Run(context.Background(), nil, db.DialectSQLite, "up"))
}

func TestMigrateToVersionRejectsGarbage(t *testing.T) {
	conn, err := db.OpenInMemory(t.Name())
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.Error(t, MigrateToVersion(context.Background(), sqlDB, db.DialectSQLite, "latest"))
}
