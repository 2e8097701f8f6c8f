package batch

import (
	"path/filepath"
	"strings"

	"github.com/docforge/docforge/internal/domain"
)

// OutputNamer derives the output path of one input.
type OutputNamer func(input string) string

// InDir names outputs <dir>/<stem><suffix><ext>. An empty ext keeps the
// input's extension.
func InDir(dir, suffix, ext string) OutputNamer {
	return func(input string) string {
		base := filepath.Base(input)
		inExt := filepath.Ext(base)
		outExt := ext
		if outExt == "" {
			outExt = inExt
		}
		return filepath.Join(dir, strings.TrimSuffix(base, inExt)+suffix+outExt)
	}
}

// SubDir names outputs <dir>/<stem>, for operations that write several files
// per input.
func SubDir(dir string) OutputNamer {
	return func(input string) string {
		base := filepath.Base(input)
		return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base)))
	}
}

// Plan creates one work item per input, in input order, sharing params.
func Plan(inputs []string, namer OutputNamer, params domain.Params) []domain.WorkItem {
	items := make([]domain.WorkItem, len(inputs))
	for i, in := range inputs {
		items[i] = domain.WorkItem{
			Index:      i,
			InputPath:  in,
			OutputPath: namer(in),
			Params:     params,
		}
	}
	return items
}

// collisions maps the index of every item whose output would overwrite an
// earlier item's output, or any item's input, to a description of the
// conflict.
func collisions(items []domain.WorkItem) map[int]string {
	inputs := make(map[string]int)
	for i, it := range items {
		for _, in := range inputsOf(it) {
			if _, ok := inputs[filepath.Clean(in)]; !ok {
				inputs[filepath.Clean(in)] = i
			}
		}
	}

	conflicts := make(map[int]string)
	outputs := make(map[string]int)
	for i, it := range items {
		if it.OutputPath == "" {
			continue
		}
		out := filepath.Clean(it.OutputPath)
		if j, ok := outputs[out]; ok {
			conflicts[i] = "output " + out + " is already produced by " + items[j].Name()
			continue
		}
		if _, ok := inputs[out]; ok {
			conflicts[i] = "output " + out + " would overwrite an input file"
			continue
		}
		outputs[out] = i
	}
	return conflicts
}

func inputsOf(it domain.WorkItem) []string {
	if mp, ok := it.Params.(domain.MergeParams); ok {
		return mp.Inputs
	}
	return []string{it.InputPath}
}
