package migrate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// versionLayout is the goose timestamp prefix of every migration file.
const versionLayout = "20060102150405"

var unsafeNameChars = regexp.MustCompile(`[^a-z0-9]+`)

const sqlTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s: statements must run on both sqlite and postgres
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- undo %[1]s
-- +goose StatementEnd
`

// migrationName turns a free-form description into a snake_case file stem.
func migrationName(name string) string {
	stem := unsafeNameChars.ReplaceAllString(strings.ToLower(name), "_")
	return strings.Trim(stem, "_")
}

// CreateSQLMigration writes an empty goose migration named
// <dir>/<version>_<name>.sql and returns its path. An existing file with the
// same name is never overwritten.
func CreateSQLMigration(dir string, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	stem := migrationName(name)
	if stem == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", dir, err)
	}

	target := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", time.Now().UTC().Format(versionLayout), stem))
	f, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if errors.Is(err, fs.ErrExist) {
		return "", fmt.Errorf("migration already exists: %s", target)
	}
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", target, err)
	}
	if _, err := fmt.Fprintf(f, sqlTemplate, stem); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("writing %s: %w", target, err)
	}
	return target, f.Close()
}
