package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"regexp"
	"strings"
)

var migrationFile = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	upMarker   = "-- +goose Up"
	downMarker = "-- +goose Down"
)

// ValidateDir checks the migrations in a directory on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return ValidateFS(os.DirFS(dir), ".")
}

// ValidateEmbedded checks the migrations compiled into the binary.
func ValidateEmbedded() error {
	return ValidateFS(Embedded, embeddedDir)
}

// ValidateFS requires at least one migration, unique versions, goose file
// names and an Up section followed by a Down section in every file.
func ValidateFS(fsys fs.FS, dir string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("reading %s: %w", dir, err)
	}

	versions := make(map[string]string)
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".sql" {
			continue
		}
		version, err := checkMigration(fsys, dir, e.Name())
		if err != nil {
			return err
		}
		if prev, dup := versions[version]; dup {
			return fmt.Errorf("migrations %s and %s share version %s", prev, e.Name(), version)
		}
		versions[version] = e.Name()
	}

	if len(versions) == 0 {
		return fmt.Errorf("no migrations found in %s", dir)
	}
	return nil
}

func checkMigration(fsys fs.FS, dir, name string) (string, error) {
	m := migrationFile.FindStringSubmatch(name)
	if m == nil {
		return "", fmt.Errorf("migration %s: name must look like YYYYMMDDHHMMSS_name.sql", name)
	}
	body, err := fs.ReadFile(fsys, path.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("reading migration %s: %w", name, err)
	}
	text := string(body)
	up, down := strings.Index(text, upMarker), strings.Index(text, downMarker)
	switch {
	case up < 0:
		return "", fmt.Errorf("migration %s: missing %q", name, upMarker)
	case down < 0:
		return "", fmt.Errorf("migration %s: missing %q", name, downMarker)
	case down < up:
		return "", fmt.Errorf("migration %s: Down section precedes Up", name)
	}
	return m[1], nil
}
