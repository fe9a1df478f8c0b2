package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/caraccessories-storefront/pkg/config"
	"github.com/angelmondragon/caraccessories-storefront/pkg/db"
	"github.com/angelmondragon/caraccessories-storefront/pkg/logger"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	if err := ValidateEmbedded(); err != nil {
		t.Fatalf("embedded migrations invalid: %v", err)
	}
}

func TestStateTableMigrationContents(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_storefront_kv.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no storefront_kv migration file found")
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS storefront_kv",
		"PRIMARY KEY (namespace, state_key)",
		"DROP TABLE IF EXISTS storefront_kv",
	} {
		if !strings.Contains(string(data), sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestDialect(t *testing.T) {
	if d, _ := Dialect(config.StorageDriverSQLite); d != "sqlite3" {
		t.Fatalf("unexpected sqlite dialect %q", d)
	}
	if d, _ := Dialect(config.StorageDriverPostgres); d != "postgres" {
		t.Fatalf("unexpected postgres dialect %q", d)
	}
	if _, err := Dialect(config.StorageDriverRedis); err == nil {
		t.Fatalf("redis has no dialect")
	}
}

func TestMaybeRunAppliesEmbeddedMigrations(t *testing.T) {
	ctx := context.Background()
	client, err := db.New(ctx, config.StorageDriverSQLite, config.DBConfig{DSN: "file::memory:"}, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer client.Close()

	cfg := &config.Config{DB: config.DBConfig{AutoMigrate: true}}
	if err := MaybeRun(ctx, cfg, logger.Nop(), client); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	if !client.DB().Migrator().HasTable("storefront_kv") {
		t.Fatalf("expected storefront_kv table after migration")
	}

	// second run is a no-op
	if err := MaybeRun(ctx, cfg, logger.Nop(), client); err != nil {
		t.Fatalf("second migrate: %v", err)
	}
}

func TestCreateAndValidateDir(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Order Notes!")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !strings.HasSuffix(path, "_add_order_notes.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("validate: %v", err)
	}

	if err := os.WriteFile(filepath.Join(dir, "bad.sql"), []byte("-- nothing"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := ValidateDir(dir); err == nil {
		t.Fatalf("expected invalid filename to fail validation")
	}
}
