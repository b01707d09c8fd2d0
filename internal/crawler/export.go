package crawler

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio/v2"
)

// WriteVisited writes urls to path, one per line, replacing the file
// atomically. Parent directories are created as needed.
func WriteVisited(path string, urls []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create directory for visited export: %w", err)
	}

	var b strings.Builder
	for _, u := range urls {
		b.WriteString(u)
		b.WriteByte('\n')
	}

	if err := renameio.WriteFile(path, []byte(b.String()), 0o600); err != nil {
		return fmt.Errorf("failed to write visited export: %w", err)
	}
	return nil
}
