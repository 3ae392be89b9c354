package vfs

import (
	"strings"
)

// Root is the implicit top-level folder path. It is never stored as a
// FolderRecord; every owner has it by definition.
const Root = "/"

const (
	// MaxNameLength is the maximum length of a single folder or file name.
	MaxNameLength = 255

	// MaxPathLength is the maximum length of a normalized path.
	MaxPathLength = 4096
)

// NormalizePath converts a raw path string into canonical absolute form:
// leading "/", no trailing slash except for the root itself, no empty
// segments. Relative input is accepted and anchored at the root, so "docs",
// "/docs" and "/docs/" all normalize to "/docs".
//
// Returns an InvalidPath error for empty input, "." or ".." segments,
// control characters, or paths exceeding MaxPathLength.
func NormalizePath(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", NewInvalidPathError(raw, "empty path")
	}

	segments := strings.Split(trimmed, "/")
	normalized := make([]string, 0, len(segments))
	for _, seg := range segments {
		if seg == "" {
			// Leading slash, trailing slash, or doubled slash.
			continue
		}
		if seg == "." || seg == ".." {
			return "", NewInvalidPathError(raw, "path must not contain . or .. segments")
		}
		if err := ValidateName(seg); err != nil {
			return "", err
		}
		normalized = append(normalized, seg)
	}

	if len(normalized) == 0 {
		return Root, nil
	}

	path := "/" + strings.Join(normalized, "/")
	if len(path) > MaxPathLength {
		return "", NewInvalidPathError(raw, "path too long")
	}
	return path, nil
}

// ValidateName checks a single folder or file name segment. Names must be
// non-empty, contain no path separators or control characters, and must not
// be "." or "..".
func ValidateName(name string) error {
	if name == "" {
		return NewInvalidPathError(name, "empty name")
	}
	if name == "." || name == ".." {
		return NewInvalidPathError(name, "name must not be . or ..")
	}
	if len(name) > MaxNameLength {
		return NewInvalidPathError(name, "name too long")
	}
	if strings.ContainsRune(name, '/') {
		return NewInvalidPathError(name, "name must not contain /")
	}
	for _, r := range name {
		if r < 0x20 || r == 0x7f {
			return NewInvalidPathError(name, "name contains control characters")
		}
	}
	return nil
}

// IsRoot reports whether path is the root folder.
func IsRoot(path string) bool {
	return path == Root
}

// ParentOf returns the parent of a normalized path. The parent of the root
// is the root itself.
func ParentOf(path string) string {
	if IsRoot(path) {
		return Root
	}
	idx := strings.LastIndexByte(path, '/')
	if idx <= 0 {
		return Root
	}
	return path[:idx]
}

// BaseOf returns the final segment of a normalized path, or "" for the root.
func BaseOf(path string) string {
	if IsRoot(path) {
		return ""
	}
	idx := strings.LastIndexByte(path, '/')
	return path[idx+1:]
}

// JoinPath appends name to a normalized parent path.
func JoinPath(parent, name string) string {
	if IsRoot(parent) {
		return Root + name
	}
	return parent + "/" + name
}
