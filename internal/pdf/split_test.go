package pdf

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/domain"
)

func TestPartsFromStarts(t *testing.T) {
	tests := []struct {
		name    string
		starts  []int
		total   int
		want    []Part
		wantErr bool
	}{
		{
			name:   "two parts",
			starts: []int{1, 89},
			total:  200,
			want:   []Part{{1, 1, 88}, {2, 89, 200}},
		},
		{
			name:   "single start",
			starts: []int{1},
			total:  5,
			want:   []Part{{1, 1, 5}},
		},
		{
			name:   "leading pages dropped",
			starts: []int{3, 4},
			total:  4,
			want:   []Part{{1, 3, 3}, {2, 4, 4}},
		},
		{name: "beyond total", starts: []int{1, 250}, total: 200, wantErr: true},
		{name: "zero page", starts: []int{0}, total: 10, wantErr: true},
		{name: "empty", starts: nil, total: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := PartsFromStarts(tt.starts, tt.total)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPartsBySize(t *testing.T) {
	parts, err := PartsBySize(25, 10)
	require.NoError(t, err)
	assert.Equal(t, []Part{{1, 1, 10}, {2, 11, 20}, {3, 21, 25}}, parts)

	parts, err = PartsBySize(10, 10)
	require.NoError(t, err)
	assert.Len(t, parts, 1)

	_, err = PartsBySize(10, 0)
	require.Error(t, err)
}

func TestPartName(t *testing.T) {
	part := Part{Num: 2, Start: 89, End: 200}

	assert.Equal(t, "report_part2_pages89-200", PartName(TemplateStartPages, "report", part))
	assert.Equal(t, "report_part2_89-200", PartName(TemplateMaxPages, "report", part))
	assert.Equal(t, "report_2_89-200", PartName(TemplateBookmarks, "report", part))
}

func TestBookmarkStarts(t *testing.T) {
	marks := []Bookmark{
		{Title: "Appendix", Page: 40},
		{Title: "Intro", Page: 1},
		{Title: "Intro detail", Level: 1, Page: 1},
		{Title: "Body", Page: 5},
	}
	assert.Equal(t, []int{1, 5, 40}, BookmarkStarts(marks))
}

func TestCheckHeader(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.pdf")
	require.NoError(t, os.WriteFile(good, []byte("%PDF-1.7\n%...."), 0o644))
	assert.NoError(t, CheckHeader(good))

	bad := filepath.Join(dir, "bad.pdf")
	require.NoError(t, os.WriteFile(bad, []byte("this is not a pdf"), 0o644))
	assert.Error(t, CheckHeader(bad))

	empty := filepath.Join(dir, "empty.pdf")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.Error(t, CheckHeader(empty))
}

func TestOperations_RejectCorruptInput(t *testing.T) {
	dir := t.TempDir()
	corrupt := filepath.Join(dir, "corrupt.pdf")
	require.NoError(t, os.WriteFile(corrupt, []byte("garbage"), 0o644))

	tests := []struct {
		name string
		op   domain.Operation
		item domain.WorkItem
	}{
		{
			name: "optimize",
			op:   NewOptimizer(nil),
			item: domain.WorkItem{InputPath: corrupt, OutputPath: filepath.Join(dir, "o.pdf"),
				Params: domain.OptimizeParams{Type: "standard", DPI: 150, Quality: 85}},
		},
		{
			name: "optimize raster",
			op:   NewOptimizer(nil),
			item: domain.WorkItem{InputPath: corrupt, OutputPath: filepath.Join(dir, "r.pdf"),
				Params: domain.OptimizeParams{Type: "aggressive", DPI: 150, Quality: 60}},
		},
		{
			name: "split",
			op:   NewSplitter(nil),
			item: domain.WorkItem{InputPath: corrupt, OutputPath: filepath.Join(dir, "parts"),
				Params: domain.SplitParams{Mode: domain.SplitBySize, MaxPages: 2}},
		},
		{
			name: "merge",
			op:   NewMerger(nil),
			item: domain.WorkItem{InputPath: dir, OutputPath: filepath.Join(dir, "m.pdf"),
				Params: domain.MergeParams{Inputs: []string{corrupt, corrupt}}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := tt.op.Execute(context.Background(), tt.item)
			require.False(t, res.OK())
			assert.Equal(t, domain.KindOperationFailed, res.Err.Kind)
			assert.NoError(t, res.Validate())

			_, err := os.Stat(tt.item.OutputPath)
			assert.True(t, os.IsNotExist(err), "no output may be left behind")
		})
	}
}

func TestOperations_WrongParams(t *testing.T) {
	item := domain.WorkItem{InputPath: "in.pdf", OutputPath: "out.pdf", Params: domain.ConvertParams{Format: "docx"}}

	for _, op := range []domain.Operation{NewOptimizer(nil), NewSplitter(nil), NewMerger(nil)} {
		res := op.Execute(context.Background(), item)
		require.False(t, res.OK())
		assert.Equal(t, domain.KindInvalidParameter, res.Err.Kind)
	}
}

func TestRecommendations(t *testing.T) {
	scanned := Info{Path: "scan.pdf", Pages: 20, SizeBytes: 12 * 1024 * 1024, SampledText: 10}
	assert.Contains(t, RecommendOCR(scanned).Action, "docforge ocr")
	assert.Contains(t, RecommendOptimization(scanned).Action, "--type scanned")

	digital := Info{Path: "report.pdf", Pages: 4, SizeBytes: 6 * 1024 * 1024, SampledText: 4, TextPages: 4}
	assert.Empty(t, RecommendOCR(digital).Action)
	assert.Contains(t, RecommendOptimization(digital).Action, "--type standard")

	small := Info{Path: "memo.pdf", Pages: 1, SizeBytes: 100 * 1024, SampledText: 1, TextPages: 1}
	assert.Empty(t, RecommendOptimization(small).Action)

	mixed := Info{Path: "mixed.pdf", Pages: 10, SampledText: 10, TextPages: 3}
	assert.NotEmpty(t, RecommendOCR(mixed).Action)
}
