package in

import (
	"context"

	"folio/internal/modules/viewport/dto"
	viewportin "folio/internal/modules/viewport/port/in"
)

type CLIHandler struct {
	usecase viewportin.Usecase
}

func NewCLIHandler(usecase viewportin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) ExportPage(ctx context.Context, pageIndex int, scale float64) (dto.ExportPageOutput, error) {
	return h.usecase.ExportPage(ctx, dto.ExportPageInput{PageIndex: pageIndex, Scale: scale})
}

func (h CLIHandler) State(ctx context.Context) dto.ViewerState {
	return h.usecase.State(ctx)
}

func (h CLIHandler) PageGeometry(ctx context.Context, pageIndex int) (dto.PageGeometry, error) {
	return h.usecase.PageGeometry(ctx, pageIndex)
}
