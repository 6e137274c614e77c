package wave

import (
	"bytes"
	"context"
	"fmt"

	"github.com/banshee-data/lattice.report/internal/fsutil"
	"github.com/banshee-data/lattice.report/internal/security"
)

// WriteCase renders c into dir as c.Filename() and returns the path written.
// The directory is created when missing.
func (r *Renderer) WriteCase(ctx context.Context, fsys fsutil.FileSystem, dir string, c Case) (string, error) {
	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}
	path, err := security.JoinWithin(fsys, dir, c.Filename())
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := r.Render(ctx, c, &buf); err != nil {
		return "", fmt.Errorf("render %s: %w", c.Slug, err)
	}
	if err := fsutil.WriteFileAtomic(fsys, path, buf.Bytes(), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

// WriteAll writes every case in cases and stops at the first failure.
func (r *Renderer) WriteAll(ctx context.Context, fsys fsutil.FileSystem, dir string, cases []Case) ([]string, error) {
	paths := make([]string, 0, len(cases))
	for _, c := range cases {
		p, err := r.WriteCase(ctx, fsys, dir, c)
		if err != nil {
			return paths, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}
