package migration

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
)

// upMigrationNames lists the embedded *.up.sql files sorted by name, which
// for zero-padded prefixes is also version order.
func upMigrationNames() ([]string, error) {
	entries, err := fs.ReadDir(embeddedMigrations, migrationsDir)
	if err != nil {
		return nil, fmt.Errorf("migration: list embedded files: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".up.sql") {
			continue
		}
		names = append(names, entry.Name())
	}
	if len(names) == 0 {
		return nil, errors.New("migration: no embedded migrations")
	}
	sort.Strings(names)
	return names, nil
}

// latestVersion returns the version number of the newest embedded migration.
func latestVersion() (uint, error) {
	names, err := upMigrationNames()
	if err != nil {
		return 0, err
	}

	newest := names[len(names)-1]
	prefix, _, ok := strings.Cut(newest, "_")
	if !ok {
		return 0, fmt.Errorf("migration: malformed filename %q", newest)
	}
	version, err := strconv.ParseUint(prefix, 10, 32)
	if err != nil || version == 0 {
		return 0, fmt.Errorf("migration: malformed version prefix in %q", newest)
	}
	return uint(version), nil
}

// checksum hashes every embedded up migration, name and body, so the
// bootstrap record can detect a binary shipping edited history.
func checksum() (string, error) {
	names, err := upMigrationNames()
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, name := range names {
		body, err := embeddedMigrations.ReadFile(migrationsDir + "/" + name)
		if err != nil {
			return "", fmt.Errorf("migration: read %s: %w", name, err)
		}
		fmt.Fprintf(h, "%s\x00%d\x00", name, len(body))
		h.Write(body)
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
