package dto

import "image"

type Observation struct {
	PageIndex    int
	Ratio        float64
	Intersecting bool
}

type ViewerState struct {
	CurrentPage   int
	PageCount     int
	Scale         float64
	RenderedPages []int
	NavLocked     bool
}

type PageGeometry struct {
	PageIndex int
	Width     int
	Height    int
}

type ExportPageInput struct {
	PageIndex int
	Scale     float64
}

type ExportPageOutput struct {
	PageIndex int
	Image     *image.RGBA
}

type PageTextOutput struct {
	PageIndex int
	Text      string
}
