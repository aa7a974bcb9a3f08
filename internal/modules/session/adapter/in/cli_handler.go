package in

import (
	"context"

	"folio/internal/modules/session/dto"
	sessionin "folio/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) History(ctx context.Context, documentPath string, limit int) (dto.HistoryOutput, error) {
	return h.usecase.History(ctx, dto.HistoryInput{DocumentPath: documentPath, Limit: limit})
}
