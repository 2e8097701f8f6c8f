package validate

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docforge/docforge/internal/domain"
)

func touch(t *testing.T, path string) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4\n"), 0o644))
	return path
}

func TestLanguage(t *testing.T) {
	tests := []struct {
		raw       string
		want      string
		corrected bool
	}{
		{"eng", "eng", false},
		{"en", "eng", true},
		{"EN", "eng", true},
		{"fr", "fra", true},
		{"french", "fra", true},
		{"ger", "deu", true},
		{"de-DE", "deu", true},
		{"zh", "chi_sim", true},
		{"zh-TW", "chi_tra", true},
		{"chi-sim", "chi_sim", true},
		{"eng+fra", "eng+fra", false},
		{"en+french", "eng+fra", true},
		{"eng+en", "eng", true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			out := Language(tt.raw)
			require.True(t, out.OK(), "unexpected error: %v", out.Err)
			assert.Equal(t, tt.want, out.Value)
			assert.Equal(t, tt.corrected, out.Corrected)
			if tt.corrected {
				assert.NotEmpty(t, out.Warnings)
			}
		})
	}
}

func TestLanguage_Unknown(t *testing.T) {
	out := Language("englsh")
	require.False(t, out.OK())
	assert.Equal(t, domain.KindInvalidParameter, out.Err.Kind)
	assert.Contains(t, out.Err.Suggestions[0], "eng")

	out = Language("")
	require.False(t, out.OK())
	assert.Equal(t, domain.KindInvalidParameter, out.Err.Kind)

	out = Language("eng+qqqqqq")
	require.False(t, out.OK())
	assert.Contains(t, out.Err.Message, "qqqqqq")
}

func TestValidate_Idempotent(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "scan.pdf"))

	tests := []struct {
		kind ParamKind
		raw  string
	}{
		{KindLanguage, "en"},
		{KindLanguage, "french+ger"},
		{KindQuality, " 85 "},
		{KindDPI, "300"},
		{KindPageRange, "1 - 5, 10"},
		{KindStartPages, "150,1,89"},
		{KindOptimizationType, "High-Quality"},
		{KindLayoutMode, "Text Only"},
		{KindFormat, "markdown"},
		{KindInputFile, dir + "/./scan.pdf"},
		{KindOutputFile, filepath.Join(dir, "out", "result.pdf")},
		{KindOutputDir, filepath.Join(dir, "parts")},
		{KindMaxPages, "10"},
	}

	v := New()
	for _, tt := range tests {
		t.Run(string(tt.kind)+"/"+tt.raw, func(t *testing.T) {
			first := v.Validate(tt.kind, tt.raw)
			require.True(t, first.OK(), "unexpected error: %v", first.Err)

			second := v.Validate(tt.kind, first.Value)
			require.True(t, second.OK())
			assert.Equal(t, first.Value, second.Value)
			assert.False(t, second.Corrected)
		})
	}
}

func TestQuality_OutOfRange(t *testing.T) {
	out := Quality("150")
	require.False(t, out.OK())
	assert.Equal(t, domain.KindInvalidParameter, out.Err.Kind)
	assert.Contains(t, out.Err.Message, "1-100")
	assert.Contains(t, out.Err.Message, "85")
	assert.Empty(t, out.Value)

	out = Quality("high")
	require.False(t, out.OK())
	assert.Equal(t, domain.KindInvalidParameter, out.Err.Kind)
}

func TestDPI_Range(t *testing.T) {
	assert.True(t, DPI("72").OK())
	assert.True(t, DPI("600").OK())

	out := DPI("601")
	require.False(t, out.OK())
	assert.Contains(t, out.Err.Message, "72-600")
	assert.Contains(t, out.Err.Message, "300")
}

func TestInputFile_SuggestsSimilarNames(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "document.pdf"))
	touch(t, filepath.Join(dir, "unrelated.pdf"))

	out := InputFile(filepath.Join(dir, "documnet.pdf"), ".pdf")
	require.False(t, out.OK())
	assert.Equal(t, domain.KindInputNotFound, out.Err.Kind)
	require.NotEmpty(t, out.Err.Suggestions)
	assert.Contains(t, out.Err.Suggestions[0], "document.pdf")
	for _, s := range out.Err.Suggestions {
		assert.NotContains(t, s, "unrelated.pdf")
	}
}

func TestInputFile_Errors(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "notes.txt"))

	out := InputFile(filepath.Join(dir, "notes.txt"), ".pdf")
	require.False(t, out.OK())
	assert.Equal(t, domain.KindInvalidParameter, out.Err.Kind)

	out = InputFile(dir, ".pdf")
	require.False(t, out.OK())
	assert.Equal(t, domain.KindInvalidParameter, out.Err.Kind)
	assert.Contains(t, out.Err.Message, "directory")

	out = InputFile("   ")
	require.False(t, out.OK())
	assert.Equal(t, domain.KindInvalidParameter, out.Err.Kind)

	touch(t, filepath.Join(dir, "UPPER.PDF"))
	assert.True(t, InputFile(filepath.Join(dir, "UPPER.PDF"), ".pdf").OK())
}

func TestInputDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(dir, "scans"), 0o755))

	assert.True(t, InputDir(filepath.Join(dir, "scans")).OK())

	out := InputDir(filepath.Join(dir, "scnas"))
	require.False(t, out.OK())
	assert.Equal(t, domain.KindInputNotFound, out.Err.Kind)
	assert.Contains(t, strings.Join(out.Err.Suggestions, " "), "scans")
}

func TestOutputFile_DoesNotCreateDirectories(t *testing.T) {
	dir := t.TempDir()
	target := filepath.Join(dir, "a", "b", "out.pdf")

	out := OutputFile(target)
	require.True(t, out.OK())

	_, err := os.Stat(filepath.Join(dir, "a"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestOutputFile_Rejections(t *testing.T) {
	dir := t.TempDir()
	blocker := touch(t, filepath.Join(dir, "file.pdf"))

	out := OutputFile(filepath.Join(blocker, "child.pdf"))
	require.False(t, out.OK())
	assert.Equal(t, domain.KindInvalidParameter, out.Err.Kind)

	out = OutputFile(dir)
	require.False(t, out.OK())
	assert.Contains(t, out.Err.Message, "directory")

	exists := OutputFile(blocker)
	require.True(t, exists.OK())
	assert.NotEmpty(t, exists.Warnings)
}

func TestPageRange(t *testing.T) {
	out := PageRange("1-5,10,15-20", 0)
	require.True(t, out.OK())
	assert.Equal(t, "1-5,10,15-20", out.Value)
	assert.False(t, out.Corrected)

	for _, bad := range []string{"", "5-1", "0", "a-b", "1,,2", "-3"} {
		t.Run(bad, func(t *testing.T) {
			res := PageRange(bad, 0)
			require.False(t, res.OK())
			assert.Equal(t, domain.KindInvalidParameter, res.Err.Kind)
		})
	}

	out = PageRange("1-25", 20)
	require.False(t, out.OK())
	assert.Contains(t, out.Err.Message, "20 pages")
}

func TestStartPages(t *testing.T) {
	out := StartPages("89,1,150,89", 0)
	require.True(t, out.OK())
	assert.Equal(t, "1,89,150", out.Value)
	assert.True(t, out.Corrected)

	out = StartPages("5,10", 0)
	require.True(t, out.OK())
	assert.NotEmpty(t, out.Warnings, "pages before the first start are dropped")

	out = StartPages("1,300", 200)
	require.False(t, out.OK())
}

func TestOneOfKinds(t *testing.T) {
	tests := []struct {
		name string
		fn   func(string) domain.ValidationOutcome
		raw  string
		want string
	}{
		{"optimization exact", OptimizationType, "aggressive", "aggressive"},
		{"optimization case", OptimizationType, "SCALE ONLY", "scale_only"},
		{"layout", LayoutMode, "text-only", "text_only"},
		{"format alias", Format, "word", "docx"},
		{"format dot", Format, ".html", "html"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.fn(tt.raw)
			require.True(t, out.OK())
			assert.Equal(t, tt.want, out.Value)
		})
	}

	out := OptimizationType("agressive")
	require.False(t, out.OK())
	assert.Contains(t, out.Err.Suggestions[0], "aggressive")
}

func TestNamingTemplate(t *testing.T) {
	assert.True(t, NamingTemplate("{base}_part{num}_pages{start}-{end}").OK())
	assert.False(t, NamingTemplate("{base}_{start}").OK())
	assert.False(t, NamingTemplate("{base}_{num}_{page}").OK())
	assert.False(t, NamingTemplate("../{num}").OK())
}

func TestValidate_UnknownKind(t *testing.T) {
	out := New().Validate(ParamKind("colour"), "red")
	require.False(t, out.OK())
	assert.Equal(t, domain.KindInvalidParameter, out.Err.Kind)
}

func TestValidateItem(t *testing.T) {
	dir := t.TempDir()
	in := touch(t, filepath.Join(dir, "in.pdf"))
	counter := func(string) (int, error) { return 10, nil }
	v := New(WithPageCounter(counter))

	good := domain.WorkItem{
		InputPath:  in,
		OutputPath: filepath.Join(dir, "out.pdf"),
		Params:     domain.OCRParams{Language: "eng", DPI: 300, LayoutMode: "standard"},
	}
	assert.Nil(t, FirstError(v.ValidateItem(good)))

	missing := good
	missing.InputPath = filepath.Join(dir, "missing.pdf")
	err := FirstError(v.ValidateItem(missing))
	require.NotNil(t, err)
	assert.Equal(t, domain.KindInputNotFound, err.Kind)

	badQuality := domain.WorkItem{
		InputPath:  in,
		OutputPath: filepath.Join(dir, "small.pdf"),
		Params:     domain.OptimizeParams{Type: "standard", DPI: 150, Quality: 150},
	}
	err = FirstError(v.ValidateItem(badQuality))
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "1-100")

	split := domain.WorkItem{
		InputPath:  in,
		OutputPath: filepath.Join(dir, "parts"),
		Params:     domain.SplitParams{Mode: domain.SplitExtract, PageRange: "1-12"},
	}
	err = FirstError(v.ValidateItem(split))
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "10 pages")

	merge := domain.WorkItem{
		InputPath:  dir,
		OutputPath: filepath.Join(dir, "merged.pdf"),
		Params:     domain.MergeParams{Inputs: []string{in}},
	}
	err = FirstError(v.ValidateItem(merge))
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "at least two")
}

func TestValidateItem_MaxFileSize(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "big.pdf")
	require.NoError(t, os.WriteFile(in, make([]byte, 2*1024*1024), 0o644))

	item := domain.WorkItem{
		InputPath:  in,
		OutputPath: filepath.Join(dir, "out.pdf"),
		Params:     domain.OptimizeParams{Type: "standard", DPI: 150, Quality: 85, MaxFileSizeMB: 1},
	}
	err := FirstError(New().ValidateItem(item))
	require.NotNil(t, err)
	assert.Contains(t, err.Message, "1 MB limit")
}

func TestNormalize(t *testing.T) {
	v := New()

	p, warnings := v.Normalize(domain.OCRParams{Language: "en", DPI: 300, LayoutMode: "Precise"})
	ocr := p.(domain.OCRParams)
	assert.Equal(t, "eng", ocr.Language)
	assert.Equal(t, "precise", ocr.LayoutMode)
	assert.Len(t, warnings, 2)

	p, _ = v.Normalize(domain.OCRParams{Language: "klingon", DPI: 300, LayoutMode: "standard"})
	assert.Equal(t, "klingon", p.(domain.OCRParams).Language, "uncorrectable values stay raw")
}

func TestNearest(t *testing.T) {
	got := Nearest("doc.pdf", []string{"Doc.pdf", "dog.pdf", "doc.pdf", "far-away.pdf"}, 2, 5)
	assert.Equal(t, []string{"Doc.pdf", "doc.pdf", "dog.pdf"}, got)

	assert.Len(t, Nearest("a", []string{"b", "c", "d", "e", "f", "g"}, 2, 5), 5)
}
