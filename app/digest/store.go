package digest

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store persists one digest file per (source, date) pair under
// <dataDir>/<source>/<YYYY-MM-DD>.md. A re-run for the same day overwrites
// the file; nothing ever appends across runs.
type Store struct {
	dataDir string
}

func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) Persist(sourceKey, dateKey, content string) error {
	dir := filepath.Join(s.dataDir, sourceKey)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create digest directory: %w", err)
	}

	path := filepath.Join(dir, dateKey+".md")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write digest file: %w", err)
	}

	slog.Info("Digest persisted", "source", sourceKey, "date", dateKey, "bytes", len(content))
	return nil
}

// Fetch returns the digest body for (source, date). It never fails the
// caller: an absent file yields a "no data" placeholder and an unreadable
// file yields an error string.
func (s *Store) Fetch(sourceKey, dateKey string) string {
	path := filepath.Join(s.dataDir, sourceKey, dateKey+".md")

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Sprintf("No data available for %s on %s", sourceKey, dateKey)
		}
		return fmt.Sprintf("Error reading %s: %v", path, err)
	}

	return string(data)
}

// Dates lists every date key that has at least one digest file, newest first.
func (s *Store) Dates() []string {
	seen := make(map[string]bool)

	sourceDirs, err := os.ReadDir(s.dataDir)
	if err != nil {
		return nil
	}

	for _, sourceDir := range sourceDirs {
		if !sourceDir.IsDir() {
			continue
		}
		files, err := os.ReadDir(filepath.Join(s.dataDir, sourceDir.Name()))
		if err != nil {
			continue
		}
		for _, file := range files {
			if name, ok := strings.CutSuffix(file.Name(), ".md"); ok {
				seen[name] = true
			}
		}
	}

	dates := make([]string, 0, len(seen))
	for date := range seen {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))
	return dates
}
