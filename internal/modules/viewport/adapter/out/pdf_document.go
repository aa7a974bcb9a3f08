package out

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	"rsc.io/pdf"

	"folio/internal/modules/viewport/domain"
	viewportout "folio/internal/modules/viewport/port/out"
	"folio/internal/platform/raster"
)

// PDFDocument adapts an rsc.io/pdf reader to the engine's document port.
type PDFDocument struct {
	path  string
	doc   *pdf.Reader
	total int
}

func OpenPDFDocument(path string) (*PDFDocument, error) {
	doc, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	return &PDFDocument{path: path, doc: doc, total: doc.NumPage()}, nil
}

func (d *PDFDocument) PageCount() int { return d.total }

func (d *PDFDocument) Page(ctx context.Context, index int) (viewportout.PageHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 1 || index > d.total {
		return nil, fmt.Errorf("pdf page %d out of range 1..%d", index, d.total)
	}
	page := d.doc.Page(index)
	if page.V.IsNull() {
		return nil, fmt.Errorf("pdf page %d is null", index)
	}
	width, height := pageSize(page)
	return &pdfPageHandle{page: page, width: width, height: height}, nil
}

// PageText joins the page's text items for terminal display.
func (d *PDFDocument) PageText(ctx context.Context, index int) (string, error) {
	handle, err := d.Page(ctx, index)
	if err != nil {
		return "", err
	}
	content := handle.(*pdfPageHandle).page.Content()
	parts := make([]string, 0, len(content.Text))
	for _, text := range content.Text {
		if strings.TrimSpace(text.S) == "" {
			continue
		}
		parts = append(parts, text.S)
	}
	return strings.Join(parts, " "), nil
}

func pageSize(page pdf.Page) (float64, float64) {
	box := page.V.Key("MediaBox")
	if box.Kind() == pdf.Array && box.Len() == 4 {
		x0, y0 := box.Index(0).Float64(), box.Index(1).Float64()
		x1, y1 := box.Index(2).Float64(), box.Index(3).Float64()
		if x1 > x0 && y1 > y0 {
			return x1 - x0, y1 - y0
		}
	}
	// US Letter in PDF points.
	return 612, 792
}

type pdfPageHandle struct {
	page   pdf.Page
	width  float64
	height float64
}

func (h *pdfPageHandle) Viewport(scale float64) domain.PageViewport {
	return domain.PageViewport{
		Width:  int(math.Round(h.width * scale)),
		Height: int(math.Round(h.height * scale)),
	}
}

// RenderInto draws the page's text items at their scaled positions.
// PDF coordinates grow upward, so the y axis is flipped.
func (h *pdfPageHandle) RenderInto(ctx context.Context, surface *raster.Surface, vp domain.PageViewport) error {
	if vp.Width <= 0 || vp.Height <= 0 {
		return nil
	}
	sx := float64(vp.Width) / h.width
	sy := float64(vp.Height) / h.height
	drawer := font.Drawer{
		Dst:  surface.Image(),
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	content := h.page.Content()
	for i, text := range content.Text {
		if i%64 == 0 {
			if err := ctx.Err(); err != nil {
				return err
			}
		}
		if text.S == "" {
			continue
		}
		x := int(math.Round(text.X * sx))
		y := int(math.Round((h.height - text.Y) * sy))
		drawer.Dot = fixed.P(x, y)
		drawer.DrawString(text.S)
	}
	return ctx.Err()
}
