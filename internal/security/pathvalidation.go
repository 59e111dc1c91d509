// Package security guards the paths report and export files are written to.
package security

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrPathEscapes is returned when a path resolves outside every allowed
// directory.
var ErrPathEscapes = errors.New("path escapes allowed directories")

// canonical resolves symlinks in the longest existing prefix of path. The
// rest of the path is joined back on unchanged, so a file about to be
// created under a symlinked directory resolves to the link target.
func canonical(path string) (string, error) {
	abs, err := filepath.Abs(filepath.Clean(path))
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}
	var rest []string
	for dir := abs; ; {
		if resolved, err := filepath.EvalSymlinks(dir); err == nil {
			return filepath.Join(append([]string{resolved}, rest...)...), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return abs, nil
		}
		rest = append([]string{filepath.Base(dir)}, rest...)
		dir = parent
	}
}

// Within reports an error unless path stays inside dir once both are
// resolved.
func Within(path, dir string) error {
	p, err := canonical(path)
	if err != nil {
		return err
	}
	d, err := filepath.EvalSymlinks(dir)
	if err != nil {
		return fmt.Errorf("resolve %s: %w", dir, err)
	}
	if d, err = filepath.Abs(d); err != nil {
		return err
	}
	rel, err := filepath.Rel(d, p)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return fmt.Errorf("%w: %s is outside %s", ErrPathEscapes, path, dir)
	}
	return nil
}

// ValidateOutputPath accepts path when it lies within one of dirs. Without
// dirs, the working directory and the temp directory are allowed.
func ValidateOutputPath(path string, dirs ...string) error {
	if len(dirs) == 0 {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("working directory: %w", err)
		}
		dirs = []string{cwd, os.TempDir()}
	}
	for _, dir := range dirs {
		if Within(path, dir) == nil {
			return nil
		}
	}
	return fmt.Errorf("%w: %s not within %v", ErrPathEscapes, path, dirs)
}

const maxFilename = 128

// SanitizeFilename maps s to a file name of ASCII letters, digits, dots,
// underscores and dashes. Runs of other characters become one underscore.
func SanitizeFilename(s string) string {
	var b strings.Builder
	pending := false
	for _, r := range s {
		if b.Len() >= maxFilename {
			break
		}
		ok := r == '.' || r == '_' || r == '-' ||
			('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || ('0' <= r && r <= '9')
		if !ok {
			pending = true
			continue
		}
		if pending && b.Len() > 0 {
			b.WriteByte('_')
		}
		pending = false
		b.WriteRune(r)
	}
	out := strings.Trim(b.String(), "._")
	if out == "" {
		return "unnamed"
	}
	return out
}
