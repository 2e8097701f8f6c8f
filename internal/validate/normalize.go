package validate

import "github.com/docforge/docforge/internal/domain"

// Normalize applies auto-corrections to p and returns the corrected
// parameters with the warnings describing each correction. Values that
// cannot be corrected are left as given so that ValidateItem rejects them
// for the item they belong to.
func (v *Validator) Normalize(p domain.Params) (domain.Params, []string) {
	var warnings []string
	apply := func(field *string, check func(string) domain.ValidationOutcome) {
		out := check(*field)
		if !out.OK() {
			return
		}
		*field = out.Value
		warnings = append(warnings, out.Warnings...)
	}

	switch params := p.(type) {
	case domain.OCRParams:
		apply(&params.Language, Language)
		apply(&params.LayoutMode, LayoutMode)
		return params, warnings
	case domain.OptimizeParams:
		apply(&params.Type, OptimizationType)
		return params, warnings
	case domain.SplitParams:
		switch params.Mode {
		case domain.SplitByStartPages:
			apply(&params.StartPages, func(s string) domain.ValidationOutcome { return StartPages(s, 0) })
		case domain.SplitExtract:
			apply(&params.PageRange, func(s string) domain.ValidationOutcome { return PageRange(s, 0) })
		}
		return params, warnings
	case domain.ConvertParams:
		apply(&params.Format, Format)
		return params, warnings
	default:
		return p, nil
	}
}
