package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"go.uber.org/multierr"
)

// Local reads modules from a directory on this host.
type Local struct {
	opts Options
}

// NewLocal creates a new local module source.
func NewLocal(opts Options) *Local {
	return &Local{opts: opts}
}

// FetchDir copies matching files from dir into localDir.
func (l *Local) FetchDir(ctx context.Context, dir, localDir, pattern string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		if ok, err := filepath.Match(pattern, e.Name()); err != nil {
			return nil, fmt.Errorf("match %q: %w", pattern, err)
		} else if ok {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	if err := os.MkdirAll(localDir, 0755); err != nil {
		return nil, fmt.Errorf("create local directory: %w", err)
	}
	var paths []string
	var errs error
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return paths, multierr.Append(errs, err)
		}
		dst := filepath.Join(localDir, name)
		if err := copyFile(filepath.Join(dir, name), dst); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		paths = append(paths, dst)
	}
	return paths, errs
}

// Close is a no-op for local sources.
func (l *Local) Close() error {
	return nil
}

// String returns "local".
func (l *Local) String() string {
	return "local"
}

// copyFile copies a file from src to dst.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer srcFile.Close()

	srcInfo, err := srcFile.Stat()
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, srcInfo.Mode())
	if err != nil {
		return fmt.Errorf("create destination: %w", err)
	}
	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return multierr.Append(fmt.Errorf("copy: %w", err), dstFile.Close())
	}
	return dstFile.Close()
}

var _ ModuleSource = (*Local)(nil)
