// Package security guards output paths against traversal.
package security

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// ErrPathEscape is returned when a path resolves outside its root.
var ErrPathEscape = errors.New("path escapes output directory")

// Resolver resolves symbolic links. fsutil.FileSystem implementations
// satisfy it.
type Resolver interface {
	EvalSymlinks(name string) (string, error)
}

// JoinWithin joins name onto root and verifies that the result, with every
// symbolic link resolved, stays inside root. root must exist; the target may
// not exist yet, in which case its nearest existing ancestor is resolved.
func JoinWithin(r Resolver, root, name string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q is not a local name", ErrPathEscape, name)
	}
	target := filepath.Join(root, name)

	canonRoot, err := r.EvalSymlinks(root)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	canonTarget, err := resolveExisting(r, target)
	if err != nil {
		return "", err
	}

	rel, err := filepath.Rel(canonRoot, canonTarget)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %s resolves to %s", ErrPathEscape, target, canonTarget)
	}
	return target, nil
}

// resolveExisting resolves the longest existing prefix of p and appends the
// remaining components unchanged.
func resolveExisting(r Resolver, p string) (string, error) {
	rest := ""
	for cur := filepath.Clean(p); ; {
		if resolved, err := r.EvalSymlinks(cur); err == nil {
			return filepath.Join(resolved, rest), nil
		}
		parent := filepath.Dir(cur)
		if parent == cur {
			return "", fmt.Errorf("resolve %s: no existing ancestor", p)
		}
		rest = filepath.Join(filepath.Base(cur), rest)
		cur = parent
	}
}
