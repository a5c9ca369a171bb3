// Package security guards file paths supplied on the command line, such as
// building templates and payment report destinations.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// forbiddenChars are shell metacharacters never expected in a file name.
var forbiddenChars = []string{";", "&", "|", "$", "`", "<", ">", "!", "\n", "\r"}

// CleanPath returns the absolute, symlink-resolved form of path.
// A path that does not exist yet is returned cleaned.
func CleanPath(path string) (string, error) {
	if path == "" {
		return "", fmt.Errorf("file path cannot be empty")
	}
	for _, char := range forbiddenChars {
		if strings.Contains(path, char) {
			return "", fmt.Errorf("file path contains forbidden character %q: %s", char, path)
		}
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}

	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		if os.IsNotExist(err) {
			return abs, nil
		}
		return "", fmt.Errorf("failed to resolve file path: %w", err)
	}
	return resolved, nil
}

// ResolveInDir resolves name against baseDir and rejects results that
// escape it. Relative names are taken relative to baseDir.
func ResolveInDir(name, baseDir string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("base directory cannot be empty")
	}
	if !filepath.IsAbs(name) {
		name = filepath.Join(baseDir, name)
	}

	path, err := CleanPath(name)
	if err != nil {
		return "", err
	}
	base, err := CleanPath(baseDir)
	if err != nil {
		return "", err
	}

	if path != base && !strings.HasPrefix(path, base+string(filepath.Separator)) {
		return "", fmt.Errorf("file path escapes base directory: %s is not within %s", name, baseDir)
	}
	return path, nil
}

// ReadFile reads path after cleaning it.
func ReadFile(path string) ([]byte, error) {
	clean, err := CleanPath(path)
	if err != nil {
		return nil, err
	}
	// #nosec G304 - path is validated above
	return os.ReadFile(clean)
}

// WriteFileInDir writes data to name inside baseDir, creating baseDir when
// missing, and returns the path written.
func WriteFileInDir(name, baseDir string, data []byte) (string, error) {
	if err := os.MkdirAll(baseDir, 0o750); err != nil {
		return "", fmt.Errorf("failed to create directory %s: %w", baseDir, err)
	}
	path, err := ResolveInDir(name, baseDir)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}
	return path, nil
}
