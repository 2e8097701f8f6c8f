package validate

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"

	"github.com/docforge/docforge/internal/domain"
)

// Languages maps the supported Tesseract language codes to display names.
var Languages = map[string]string{
	"eng":     "English",
	"fra":     "French",
	"deu":     "German",
	"spa":     "Spanish",
	"ita":     "Italian",
	"por":     "Portuguese",
	"rus":     "Russian",
	"chi_sim": "Chinese Simplified",
	"chi_tra": "Chinese Traditional",
	"jpn":     "Japanese",
	"kor":     "Korean",
	"nld":     "Dutch",
	"ara":     "Arabic",
	"hin":     "Hindi",
}

// languageAliases covers names and bibliographic codes that BCP 47 parsing
// does not resolve to a Tesseract code.
var languageAliases = map[string]string{
	"english":             "eng",
	"french":              "fra",
	"francais":            "fra",
	"fre":                 "fra",
	"german":              "deu",
	"deutsch":             "deu",
	"ger":                 "deu",
	"spanish":             "spa",
	"espanol":             "spa",
	"esp":                 "spa",
	"italian":             "ita",
	"portuguese":          "por",
	"russian":             "rus",
	"chinese":             "chi_sim",
	"chi":                 "chi_sim",
	"chinese_simplified":  "chi_sim",
	"chinese_traditional": "chi_tra",
	"japanese":            "jpn",
	"korean":              "kor",
	"dutch":               "nld",
	"dut":                 "nld",
	"arabic":              "ara",
	"hindi":               "hin",
}

// LanguageCodes returns the supported codes in sorted order.
func LanguageCodes() []string {
	codes := make([]string, 0, len(Languages))
	for c := range Languages {
		codes = append(codes, c)
	}
	sort.Strings(codes)
	return codes
}

// Language validates an OCR language. Multiple languages may be joined with
// '+'; each part is resolved on its own and duplicates are dropped.
func Language(raw string) domain.ValidationOutcome {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return domain.Reject(domain.InvalidParameter(
			"language must not be empty",
			"Use 'eng' for English (most common)",
		))
	}

	var (
		codes    []string
		warnings []string
		seen     = make(map[string]bool)
	)
	for _, part := range strings.Split(trimmed, "+") {
		code, ok := resolveLanguage(part)
		if !ok {
			return domain.Reject(unknownLanguage(part))
		}
		if code != part {
			warnings = append(warnings, fmt.Sprintf("corrected language '%s' to '%s'", part, code))
		}
		if seen[code] {
			warnings = append(warnings, fmt.Sprintf("dropped duplicate language '%s'", code))
			continue
		}
		seen[code] = true
		codes = append(codes, code)
	}

	value := strings.Join(codes, "+")
	return domain.Accept(value, value != raw, warnings...)
}

func resolveLanguage(part string) (string, bool) {
	p := strings.ToLower(strings.TrimSpace(part))
	if p == "" {
		return "", false
	}
	if _, ok := Languages[p]; ok {
		return p, true
	}

	key := strings.NewReplacer("-", "_", " ", "_").Replace(p)
	if _, ok := Languages[key]; ok {
		return key, true
	}
	if code, ok := languageAliases[key]; ok {
		return code, true
	}

	tag, err := language.Parse(p)
	if err != nil {
		return "", false
	}
	base, _ := tag.Base()
	iso3 := base.ISO3()
	if iso3 == "zho" {
		if script, _ := tag.Script(); script.String() == "Hant" {
			return "chi_tra", true
		}
		return "chi_sim", true
	}
	if _, ok := Languages[iso3]; ok {
		return iso3, true
	}
	return "", false
}

func unknownLanguage(part string) *domain.OperationError {
	candidates := LanguageCodes()
	for alias := range languageAliases {
		candidates = append(candidates, alias)
	}

	var suggestions []string
	near := Nearest(strings.TrimSpace(part), candidates, maxSuggestDistance, maxSuggestions)
	if len(near) > 0 {
		var codes []string
		seen := make(map[string]bool)
		for _, n := range near {
			code := n
			if c, ok := languageAliases[n]; ok {
				code = c
			}
			if !seen[code] {
				seen[code] = true
				codes = append(codes, code)
			}
		}
		suggestions = append(suggestions, "Did you mean: "+strings.Join(codes, ", ")+"?")
	}
	suggestions = append(suggestions,
		"Available languages: "+strings.Join(LanguageCodes(), ", "),
		"Use 'eng' for English (most common)",
	)

	return domain.InvalidParameter(fmt.Sprintf("unknown OCR language '%s'", part), suggestions...)
}
