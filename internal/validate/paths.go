package validate

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/docforge/docforge/internal/domain"
)

// InputFile checks that path names an existing, readable regular file. When
// extensions are given the file must carry one of them (case-insensitive).
func InputFile(path string, extensions ...string) domain.ValidationOutcome {
	clean, rej := cleanPath(path, "input file")
	if rej != nil {
		return domain.Reject(rej)
	}

	info, err := os.Stat(clean)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Reject(domain.InputNotFound(
			fmt.Sprintf("input file not found: %s", clean),
			append(didYouMean(similarNames(clean, false)), "Check the file path and try again")...,
		))
	}
	if err != nil {
		return domain.Reject(domain.InvalidParameter(fmt.Sprintf("cannot access %s: %v", clean, err)))
	}
	if info.IsDir() {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("'%s' is a directory, not a file", clean),
			"Provide the path to a specific file",
		))
	}

	if len(extensions) > 0 && !hasExtension(clean, extensions) {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("'%s' has extension '%s', expected one of %s", clean, filepath.Ext(clean), strings.Join(extensions, ", ")),
			"Provide a file in a supported format",
		))
	}

	if !readable(clean) {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("'%s' is not readable", clean),
			"Check the file permissions",
		))
	}

	return domain.Accept(clean, clean != path)
}

// InputDir checks that path names an existing, readable directory.
func InputDir(path string) domain.ValidationOutcome {
	clean, rej := cleanPath(path, "input directory")
	if rej != nil {
		return domain.Reject(rej)
	}

	info, err := os.Stat(clean)
	if errors.Is(err, fs.ErrNotExist) {
		return domain.Reject(domain.InputNotFound(
			fmt.Sprintf("input directory not found: %s", clean),
			append(didYouMean(similarNames(clean, true)), "Check the folder path and try again")...,
		))
	}
	if err != nil {
		return domain.Reject(domain.InvalidParameter(fmt.Sprintf("cannot access %s: %v", clean, err)))
	}
	if !info.IsDir() {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("'%s' is a file, not a directory", clean),
			"Provide the path to a directory",
		))
	}
	if !readable(clean) {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("directory '%s' is not readable", clean),
			"Check the folder permissions",
		))
	}

	return domain.Accept(clean, clean != path)
}

// OutputFile checks that a file can be written at path. The parent must be
// a writable directory or be creatable under one. Nothing is created here.
func OutputFile(path string) domain.ValidationOutcome {
	clean, rej := cleanPath(path, "output file")
	if rej != nil {
		return domain.Reject(rej)
	}

	if info, err := os.Stat(clean); err == nil && info.IsDir() {
		return domain.Reject(domain.InvalidParameter(
			fmt.Sprintf("output '%s' is a directory", clean),
			"Provide a file name inside the directory",
		))
	}

	if rej := checkCreatable(filepath.Dir(clean)); rej != nil {
		return domain.Reject(rej)
	}

	var warnings []string
	if _, err := os.Stat(clean); err == nil {
		warnings = append(warnings, fmt.Sprintf("'%s' exists and will be replaced", clean))
	}
	return domain.Accept(clean, clean != path, warnings...)
}

// OutputDir checks that path is, or can become, a writable directory.
func OutputDir(path string) domain.ValidationOutcome {
	clean, rej := cleanPath(path, "output directory")
	if rej != nil {
		return domain.Reject(rej)
	}

	if rej := checkCreatable(clean); rej != nil {
		return domain.Reject(rej)
	}
	return domain.Accept(clean, clean != path)
}

// checkCreatable walks up from dir to the nearest existing ancestor, which
// must be a writable directory.
func checkCreatable(dir string) *domain.OperationError {
	current := dir
	for {
		info, err := os.Stat(current)
		if err == nil {
			if !info.IsDir() {
				return domain.InvalidParameter(
					fmt.Sprintf("'%s' is a file, so '%s' cannot be created", current, dir),
					"Choose a different output location",
				)
			}
			if !writable(current) {
				return domain.InvalidParameter(
					fmt.Sprintf("no write permission for directory '%s'", current),
					"Choose a writable output location",
				)
			}
			return nil
		}
		if !errors.Is(err, fs.ErrNotExist) {
			return domain.InvalidParameter(fmt.Sprintf("cannot access %s: %v", current, err))
		}

		parent := filepath.Dir(current)
		if parent == current {
			return domain.InvalidParameter(fmt.Sprintf("no existing ancestor for '%s'", dir))
		}
		current = parent
	}
}

func cleanPath(path, what string) (string, *domain.OperationError) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", domain.InvalidParameter(what + " path must not be empty")
	}
	return filepath.Clean(trimmed), nil
}

func hasExtension(path string, extensions []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, e := range extensions {
		if ext == strings.ToLower(e) {
			return true
		}
	}
	return false
}
