package pdf

import (
	"context"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"golang.org/x/image/draw"

	"github.com/docforge/docforge/internal/domain"
)

// supersampleMaxDPI bounds the render resolution used for antialiased
// downscaling.
const supersampleMaxDPI = 300

// RasterOptions controls page re-encoding.
type RasterOptions struct {
	DPI       int
	Quality   int
	Grayscale bool
}

// renderDPI returns the resolution to render at before scaling to dpi.
func renderDPI(dpi int) int {
	if dpi*2 <= supersampleMaxDPI {
		return dpi * 2
	}
	return dpi
}

// Resample scales img by factor with Catmull-Rom and optionally converts it
// to grayscale.
func Resample(img image.Image, factor float64, gray bool) image.Image {
	b := img.Bounds()
	w := int(float64(b.Dx())*factor + 0.5)
	h := int(float64(b.Dy())*factor + 0.5)
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}

	rect := image.Rect(0, 0, w, h)
	if gray {
		dst := image.NewGray(rect)
		if factor == 1 {
			draw.Draw(dst, rect, img, b.Min, draw.Src)
		} else {
			draw.CatmullRom.Scale(dst, rect, img, b, draw.Src, nil)
		}
		return dst
	}

	if factor == 1 {
		return img
	}
	dst := image.NewRGBA(rect)
	draw.CatmullRom.Scale(dst, rect, img, b, draw.Src, nil)
	return dst
}

// Rasterize re-renders every page of in as a JPEG image and assembles the
// images into a new PDF at out. Page sizes are preserved.
func Rasterize(ctx context.Context, in, out string, opts RasterOptions) (int, error) {
	doc, err := Open(in)
	if err != nil {
		return 0, err
	}
	defer doc.Close()

	workDir, err := os.MkdirTemp("", "docforge-raster-*")
	if err != nil {
		return 0, domain.IOError("Failed to create temp directory", err)
	}
	defer os.RemoveAll(workDir)

	conf := configuration()
	pages := doc.PageCount()
	rdpi := renderDPI(opts.DPI)
	factor := float64(opts.DPI) / float64(rdpi)

	// pdfcpu appends to out once it exists
	_ = os.Remove(out)

	for n := 0; n < pages; n++ {
		select {
		case <-ctx.Done():
			return n, ctx.Err()
		default:
		}

		img, err := doc.RenderPage(n, rdpi)
		if err != nil {
			return n, err
		}
		scaled := Resample(img, factor, opts.Grayscale)

		imgPath := filepath.Join(workDir, fmt.Sprintf("page_%04d.jpg", n+1))
		if err := writeJPEG(imgPath, scaled, opts.Quality); err != nil {
			return n, err
		}

		b := scaled.Bounds()
		imp := pdfcpu.DefaultImportConfig()
		imp.Pos = types.Full
		imp.UserDim = true
		imp.PageDim = &types.Dim{
			Width:  float64(b.Dx()) * 72 / float64(opts.DPI),
			Height: float64(b.Dy()) * 72 / float64(opts.DPI),
		}
		imp.DPI = opts.DPI

		if err := api.ImportImagesFile([]string{imgPath}, out, imp, conf); err != nil {
			return n, domain.ConversionError(fmt.Sprintf("Failed to assemble page %d", n+1), err)
		}
	}

	return pages, nil
}

func writeJPEG(path string, img image.Image, quality int) error {
	f, err := os.Create(path)
	if err != nil {
		return domain.IOError("Failed to create page image", err)
	}

	err = jpeg.Encode(f, img, &jpeg.Options{Quality: quality})
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return domain.ConversionError("Failed to encode page image", err)
	}
	return nil
}
