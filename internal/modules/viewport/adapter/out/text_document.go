package out

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"math"
	"os"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"folio/internal/modules/viewport/domain"
	viewportout "folio/internal/modules/viewport/port/out"
	"folio/internal/platform/raster"
)

const (
	textPageLines = 40
	textPageCols  = 80
	textMarginPx  = 12
	glyphWidthPx  = 7
	glyphHeightPx = 13
)

// TextDocument paginates a plain-text or markdown file into fixed-height
// pages so the viewport engine drives the same way as for PDFs.
type TextDocument struct {
	path  string
	pages [][]string
}

func OpenTextDocument(path string) (*TextDocument, error) {
	payload, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("open text document: %w", err)
	}
	lines := wrapLines(strings.Split(strings.ReplaceAll(string(payload), "\r\n", "\n"), "\n"), textPageCols)
	pages := make([][]string, 0, len(lines)/textPageLines+1)
	for start := 0; start < len(lines); start += textPageLines {
		end := start + textPageLines
		if end > len(lines) {
			end = len(lines)
		}
		pages = append(pages, lines[start:end])
	}
	if len(pages) == 0 {
		pages = append(pages, []string{""})
	}
	return &TextDocument{path: path, pages: pages}, nil
}

func wrapLines(lines []string, cols int) []string {
	wrapped := make([]string, 0, len(lines))
	for _, line := range lines {
		runes := []rune(line)
		if len(runes) == 0 {
			wrapped = append(wrapped, "")
			continue
		}
		for len(runes) > 0 {
			n := cols
			if n > len(runes) {
				n = len(runes)
			}
			wrapped = append(wrapped, string(runes[:n]))
			runes = runes[n:]
		}
	}
	return wrapped
}

func (d *TextDocument) PageCount() int { return len(d.pages) }

func (d *TextDocument) Page(ctx context.Context, index int) (viewportout.PageHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if index < 1 || index > len(d.pages) {
		return nil, fmt.Errorf("text page %d out of range 1..%d", index, len(d.pages))
	}
	return &textPageHandle{lines: d.pages[index-1]}, nil
}

func (d *TextDocument) PageText(ctx context.Context, index int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if index < 1 || index > len(d.pages) {
		return "", fmt.Errorf("text page %d out of range 1..%d", index, len(d.pages))
	}
	return strings.Join(d.pages[index-1], "\n"), nil
}

type textPageHandle struct {
	lines []string
}

func (h *textPageHandle) Viewport(scale float64) domain.PageViewport {
	width := float64(textPageCols*glyphWidthPx + 2*textMarginPx)
	height := float64(textPageLines*glyphHeightPx + 2*textMarginPx)
	return domain.PageViewport{
		Width:  int(math.Round(width * scale)),
		Height: int(math.Round(height * scale)),
	}
}

func (h *textPageHandle) RenderInto(ctx context.Context, surface *raster.Surface, vp domain.PageViewport) error {
	if vp.Width <= 0 || vp.Height <= 0 {
		return nil
	}
	scaleY := float64(vp.Height) / float64(textPageLines*glyphHeightPx+2*textMarginPx)
	drawer := font.Drawer{
		Dst:  surface.Image(),
		Src:  image.NewUniform(color.Black),
		Face: basicfont.Face7x13,
	}
	for i, line := range h.lines {
		if err := ctx.Err(); err != nil {
			return err
		}
		if line == "" {
			continue
		}
		y := int(math.Round(float64(textMarginPx+(i+1)*glyphHeightPx) * scaleY))
		drawer.Dot = fixed.P(textMarginPx, y)
		drawer.DrawString(line)
	}
	return ctx.Err()
}
