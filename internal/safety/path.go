package safety

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CleanRelativePath validates and normalizes a relative path such as a
// manifest entry. It rejects absolute paths and parent traversal segments.
// A trailing slash is accepted and dropped.
func CleanRelativePath(p string) (string, error) {
	if strings.TrimSpace(p) == "" {
		return "", fmt.Errorf("path is empty")
	}

	clean := filepath.Clean(filepath.FromSlash(p))
	if clean == "." {
		return "", fmt.Errorf("path resolves to current directory: %q", p)
	}
	if filepath.IsAbs(clean) || strings.HasPrefix(p, "/") {
		return "", fmt.Errorf("absolute paths are not allowed: %q", p)
	}
	if clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("parent traversal is not allowed: %q", p)
	}
	return clean, nil
}

// JoinUnder joins a validated relative path under root.
func JoinUnder(root, rel string) (string, error) {
	cleanRel, err := CleanRelativePath(rel)
	if err != nil {
		return "", err
	}
	return filepath.Join(root, cleanRel), nil
}

// IsWithin reports whether candidate is root itself or lies below it.
func IsWithin(root, candidate string) (bool, error) {
	rootAbs, err := filepath.Abs(root)
	if err != nil {
		return false, fmt.Errorf("resolve root: %w", err)
	}
	candAbs, err := filepath.Abs(candidate)
	if err != nil {
		return false, fmt.Errorf("resolve candidate: %w", err)
	}

	rel, err := filepath.Rel(rootAbs, candAbs)
	if err != nil {
		return false, nil
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return false, nil
	}
	return true, nil
}

// CheckRemovable refuses destinations whose recursive removal would also
// delete the source tree, i.e. the source itself or any of its ancestors.
func CheckRemovable(dest, source string) error {
	if strings.TrimSpace(dest) == "" {
		return fmt.Errorf("destination is empty")
	}
	contains, err := IsWithin(dest, source)
	if err != nil {
		return err
	}
	if contains {
		return fmt.Errorf("refusing to remove %q: it contains the source tree %q", dest, source)
	}
	if filepath.Dir(filepath.Clean(dest)) == filepath.Clean(dest) {
		return fmt.Errorf("refusing to remove filesystem root %q", dest)
	}
	return nil
}
