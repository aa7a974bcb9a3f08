package out

import (
	"fmt"
	"path/filepath"
	"strings"

	viewportout "folio/internal/modules/viewport/port/out"
)

// OpenDocument picks the document adapter by file extension.
func OpenDocument(path string) (viewportout.Document, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return OpenPDFDocument(path)
	case ".md", ".markdown", ".txt", "":
		return OpenTextDocument(path)
	default:
		return nil, fmt.Errorf("unsupported document type %q", filepath.Ext(path))
	}
}
