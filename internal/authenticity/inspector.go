package authenticity

import (
	"fmt"
	"os"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"docverify/pkg/models"
)

// Inspector reads structural metadata from a document file.
type Inspector interface {
	Inspect(path string) (*models.DocumentMetadata, error)
}

// PDFInspector reads PDF metadata with pdfcpu. Validation is relaxed because
// scanned documents from government portals are frequently not spec-clean.
type PDFInspector struct {
	conf *model.Configuration
}

// NewPDFInspector creates an inspector for PDF files.
func NewPDFInspector() *PDFInspector {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFInspector{conf: conf}
}

// Inspect opens the PDF at path and returns its structural metadata.
// Password-protected files that cannot be opened return an error.
func (p *PDFInspector) Inspect(path string) (*models.DocumentMetadata, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open document: %w", err)
	}
	defer f.Close()

	info, err := api.PDFInfo(f, path, nil, false, p.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to read document structure: %w", err)
	}

	return &models.DocumentMetadata{
		Title:        info.Title,
		Author:       info.Author,
		Creator:      info.Creator,
		Producer:     info.Producer,
		CreationDate: info.CreationDate,
		ModDate:      info.ModificationDate,
		TotalPages:   info.PageCount,
		HasSignature: info.Signatures,
		IsEncrypted:  info.Encrypted,
	}, nil
}
