package downloader

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/elsanchez/linkgrab/internal/domain"
)

const maxTitleChars = 30

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName genera el nombre del archivo: prefijo, título saneado y extensión
func FileName(prefix, title string, kind domain.MediaKind) string {
	safe := unsafeChars.ReplaceAllString(title, "_")
	if len(safe) > maxTitleChars {
		safe = safe[:maxTitleChars]
	}
	if strings.Trim(safe, "_") == "" {
		safe = "media"
	}

	return prefix + safe + "." + kind.Extension()
}

// nextAvailablePath agrega " (n)" al nombre hasta encontrar uno libre
func nextAvailablePath(path string) (string, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return path, nil
	} else if err != nil {
		return "", fmt.Errorf("stat %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)

	for i := 1; i < 10000; i++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s (%d)%s", name, i, ext))
		if _, err := os.Stat(candidate); err != nil {
			if os.IsNotExist(err) {
				return candidate, nil
			}
			return "", fmt.Errorf("stat %s: %w", candidate, err)
		}
	}

	return "", fmt.Errorf("no available file name for %s", path)
}
