package pdf

import (
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/docforge/docforge/internal/domain"
)

var disableConfigDir sync.Once

// configuration returns a pdfcpu configuration that tolerates the minor
// syntax violations common in scanned PDFs.
func configuration() *model.Configuration {
	disableConfigDir.Do(api.DisableConfigDir)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount returns the number of pages of the PDF at path.
func PageCount(path string) (int, error) {
	if err := CheckHeader(path); err != nil {
		return 0, err
	}
	disableConfigDir.Do(api.DisableConfigDir)

	n, err := api.PageCountFile(path)
	if err != nil {
		return 0, domain.ConversionError("Failed to count pages", err)
	}
	return n, nil
}

// AttachFiles writes a copy of in to out with files embedded as attachments.
func AttachFiles(in, out string, files []string) error {
	if err := CheckHeader(in); err != nil {
		return err
	}
	if err := api.AddAttachmentsFile(in, out, files, false, configuration()); err != nil {
		return domain.ConversionError("Failed to attach files", err)
	}
	return nil
}
