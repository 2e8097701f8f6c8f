package batch

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/docforge/docforge/internal/domain"
)

// ExpandFolder lists the regular files directly inside dir whose extension
// matches one of exts, ignoring case. Files are ordered by byte-wise name,
// ties broken by full path. An empty folder yields no paths and no error.
func ExpandFolder(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, domain.IOError("read input folder "+dir, err)
	}

	var paths []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if !isRegular(path, e) {
			continue
		}
		if len(exts) > 0 && !matchExt(e.Name(), exts) {
			continue
		}
		paths = append(paths, path)
	}

	sort.SliceStable(paths, func(i, j int) bool {
		ni, nj := filepath.Base(paths[i]), filepath.Base(paths[j])
		if ni != nj {
			return ni < nj
		}
		return paths[i] < paths[j]
	})
	return paths, nil
}

// ExpandList returns the given paths in caller order. Duplicates are kept
// and blank entries dropped.
func ExpandList(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitList splits a comma-separated list of paths.
func SplitList(s string) []string {
	return ExpandList(strings.Split(s, ","))
}

// ExpandInput resolves a CLI input: a folder is expanded with ExpandFolder,
// anything else is read as a comma-separated file list. A missing path
// without an extension is taken as a missing folder.
func ExpandInput(input string, exts ...string) ([]string, error) {
	trimmed := strings.TrimSpace(input)
	info, err := os.Stat(trimmed)
	switch {
	case err == nil && info.IsDir():
		return ExpandFolder(trimmed, exts...)
	case err != nil && !strings.Contains(trimmed, ",") && filepath.Ext(trimmed) == "":
		return nil, domain.IOError("input folder not found: "+trimmed, err)
	}
	return SplitList(trimmed), nil
}

func isRegular(path string, e os.DirEntry) bool {
	if e.Type().IsRegular() {
		return true
	}
	if e.Type()&os.ModeSymlink == 0 {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

func matchExt(name string, exts []string) bool {
	ext := filepath.Ext(name)
	for _, e := range exts {
		if strings.EqualFold(ext, e) {
			return true
		}
	}
	return false
}
