package slidezone

import (
	"errors"
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

func init() {
	// Use pdfcpu's built-in configuration instead of creating one under the
	// user's config directory.
	model.ConfigPath = "disable"
}

// WriteProofPDF bundles previews into a single PDF at out, one page per
// preview in the given order. An existing file at out is replaced.
func WriteProofPDF(previews []Preview, out string) error {
	if len(previews) == 0 {
		return errors.New("proof pdf: no previews")
	}

	files := make([]string, len(previews))
	for i, p := range previews {
		files[i] = p.Path
	}

	if err := os.Remove(out); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("proof pdf: %w", err)
	}

	imp := pdfcpu.DefaultImportConfig()
	conf := model.NewDefaultConfiguration()
	if err := api.ImportImagesFile(files, out, imp, conf); err != nil {
		return fmt.Errorf("proof pdf: %w", err)
	}
	return nil
}
