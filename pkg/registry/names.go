package registry

import (
	"fmt"
	"strings"
	"time"

	"github.com/cabinetfs/cabinet/pkg/vfs"
)

// storedNameTimeFormat is the timestamp prefix for stored file names. It
// keeps repeated uploads of the same original name from colliding and makes
// listings sort chronologically.
const storedNameTimeFormat = "20060102_150405"

// maxNameAttempts bounds the suffix search for same-second collisions.
const maxNameAttempts = 100

// storedName builds the stored display name for an upload: the timestamp
// prefix plus the sanitized original name, with an attempt counter inserted
// before the extension when the first candidate is taken.
func storedName(now time.Time, originalName string, attempt int) string {
	base := sanitizeName(originalName)
	prefix := now.UTC().Format(storedNameTimeFormat) + "_"

	// Leave room for the prefix and a reasonable counter suffix.
	maxBase := vfs.MaxNameLength - len(prefix) - 8
	if len(base) > maxBase {
		base = base[:maxBase]
	}

	if attempt == 0 {
		return prefix + base
	}

	ext := ""
	if idx := strings.LastIndexByte(base, '.'); idx > 0 {
		base, ext = base[:idx], base[idx:]
	}
	return fmt.Sprintf("%s%s_%d%s", prefix, base, attempt, ext)
}

// sanitizeName strips path separators and control characters from an
// uploader-supplied name so the result always passes ValidateName.
func sanitizeName(name string) string {
	// Keep only the final path segment of whatever the uploader sent.
	if idx := strings.LastIndexByte(name, '/'); idx >= 0 {
		name = name[idx+1:]
	}
	if idx := strings.LastIndexByte(name, '\\'); idx >= 0 {
		name = name[idx+1:]
	}

	var b strings.Builder
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			b.WriteByte('_')
			continue
		}
		b.WriteRune(r)
	}

	cleaned := strings.TrimSpace(b.String())
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return "file"
	}
	return cleaned
}
