package services

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/Lllllllleong/shipmentdocflow/internal/models"
)

func init() {
	// Cloud Functions only allow writes under /tmp; keep pdfcpu on its
	// built-in defaults instead of a config dir.
	api.DisableConfigDir()
}

// pdfPageCount checks that data is a readable PDF and returns its page count.
func pdfPageCount(data []byte) (int, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("%w: empty upload", models.ErrNotPDF)
	}
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed
	n, err := api.PageCount(bytes.NewReader(data), cfg)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", models.ErrNotPDF, err)
	}
	if n < 1 {
		return 0, fmt.Errorf("%w: no pages", models.ErrNotPDF)
	}
	return n, nil
}

// pageRange describes a whole uploaded file of n pages.
func pageRange(n int) string {
	if n == 1 {
		return "1"
	}
	return fmt.Sprintf("1-%d", n)
}
