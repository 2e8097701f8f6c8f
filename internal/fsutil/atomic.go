// Package fsutil holds filesystem helpers shared by the operation adapters.
package fsutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// WriteAtomic lets write produce a file at a temporary path next to dst and
// renames it into place only when write succeeds. On failure the temporary
// file is removed and dst is left untouched. Missing parent directories of
// dst are created.
func WriteAtomic(dst string, write func(tmpPath string) error) error {
	dir := filepath.Dir(dst)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	tmpPath, err := TempPath(dir, filepath.Base(dst))
	if err != nil {
		return err
	}
	defer os.Remove(tmpPath)

	if err := write(tmpPath); err != nil {
		return err
	}

	info, err := os.Stat(tmpPath)
	if err != nil {
		return fmt.Errorf("output was not written: %w", err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("output is empty")
	}

	if err := os.Rename(tmpPath, dst); err != nil {
		return fmt.Errorf("move output into place: %w", err)
	}
	return nil
}

// TempPath reserves a unique path in dir whose name keeps the extension of
// name, since some writers pick the format from it. The file exists and is
// empty when TempPath returns.
func TempPath(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)

	tmpFile, err := os.CreateTemp(dir, "."+stem+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	return tmpPath, nil
}

// FileSize returns the size of path, or 0 when it cannot be read.
func FileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
