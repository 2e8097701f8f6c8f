package validate

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"
)

const (
	maxSuggestDistance = 2
	maxSuggestions     = 5
)

type candidate struct {
	name string
	dist int
}

// Nearest returns the candidates within maxDist edits of target, compared
// case-insensitively, ordered by distance then name. At most limit names are
// returned.
func Nearest(target string, candidates []string, maxDist, limit int) []string {
	t := strings.ToLower(target)
	var found []candidate
	for _, c := range candidates {
		d := levenshtein.ComputeDistance(t, strings.ToLower(c))
		if d <= maxDist {
			found = append(found, candidate{name: c, dist: d})
		}
	}

	sort.Slice(found, func(i, j int) bool {
		if found[i].dist != found[j].dist {
			return found[i].dist < found[j].dist
		}
		return found[i].name < found[j].name
	})

	if limit > 0 && len(found) > limit {
		found = found[:limit]
	}
	out := make([]string, len(found))
	for i, c := range found {
		out[i] = c.name
	}
	return out
}

// similarNames lists entries next to a missing path whose names are close to
// the missing one. wantDir selects directories instead of files.
func similarNames(path string, wantDir bool) []string {
	dir := filepath.Dir(path)
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() == wantDir {
			names = append(names, e.Name())
		}
	}

	matches := Nearest(filepath.Base(path), names, maxSuggestDistance, maxSuggestions)
	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(dir, m)
	}
	return out
}

func didYouMean(paths []string) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, "Did you mean: "+p+"?")
	}
	return out
}
