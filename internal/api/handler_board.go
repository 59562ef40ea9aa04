package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/board"
	"github.com/ryanbastic/padboard/internal/layout"
	"github.com/ryanbastic/padboard/internal/model"
	"github.com/ryanbastic/padboard/internal/storage"
)

// --- Huma Input/Output types ---

type LayoutBody struct {
	Kind   string `json:"kind" doc:"Layout kind: 8x4_grid, 5x3_grid, 3x2_grid or custom" example:"8x4_grid"`
	Width  int    `json:"width,omitempty" doc:"Columns; required for custom layouts"`
	Height int    `json:"height,omitempty" doc:"Rows; required for custom layouts"`
}

type BoardResponse struct {
	ID     uuid.UUID  `json:"id" doc:"Board UUID"`
	Name   string     `json:"name" doc:"Display name"`
	Layout LayoutBody `json:"layout" doc:"Layout with resolved width and height"`
}

type CreateBoardBody struct {
	Name   string     `json:"name" doc:"Display name" example:"My Board"`
	Layout LayoutBody `json:"layout" doc:"Board layout"`
}

type CreateBoardInput struct {
	Body CreateBoardBody
}

type BoardOutput struct {
	Body BoardResponse
}

type BoardIDInput struct {
	BoardID string `path:"board_id" doc:"Board UUID" format:"uuid"`
}

type ListBoardsInput struct {
	Cursor string `query:"cursor" doc:"Opaque cursor from a previous page" required:"false"`
	Limit  int    `query:"limit" doc:"Maximum number of boards to return" minimum:"0" maximum:"1000" required:"false"`
}

type BoardPageResponse struct {
	Boards     []BoardResponse `json:"boards" doc:"Boards ordered by name"`
	NextCursor string          `json:"next_cursor,omitempty" doc:"Cursor for the next page"`
	HasMore    bool            `json:"has_more" doc:"Whether more boards remain"`
}

type ListBoardsOutput struct {
	Body BoardPageResponse
}

type RenameBoardInput struct {
	BoardID string `path:"board_id" doc:"Board UUID" format:"uuid"`
	Body    struct {
		Name string `json:"name" doc:"New display name"`
	}
}

type ResizeBoardInput struct {
	BoardID string `path:"board_id" doc:"Board UUID" format:"uuid"`
	Body    struct {
		Width  int `json:"width" doc:"New column count"`
		Height int `json:"height" doc:"New row count"`
	}
}

// --- Handler ---

type BoardHandler struct {
	svc    *board.Service
	logger *slog.Logger
}

func NewBoardHandler(svc *board.Service, logger *slog.Logger) *BoardHandler {
	return &BoardHandler{svc: svc, logger: logger}
}

func registerBoardRoutes(api huma.API, h *BoardHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-board",
		Method:        http.MethodPost,
		Path:          "/v1/boards",
		Summary:       "Create a board",
		Tags:          []string{"boards"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateBoard)

	huma.Register(api, huma.Operation{
		OperationID: "list-boards",
		Method:      http.MethodGet,
		Path:        "/v1/boards",
		Summary:     "List boards",
		Tags:        []string{"boards"},
	}, h.ListBoards)

	huma.Register(api, huma.Operation{
		OperationID: "get-board",
		Method:      http.MethodGet,
		Path:        "/v1/boards/{board_id}",
		Summary:     "Get a board by ID",
		Tags:        []string{"boards"},
	}, h.GetBoard)

	huma.Register(api, huma.Operation{
		OperationID: "rename-board",
		Method:      http.MethodPatch,
		Path:        "/v1/boards/{board_id}",
		Summary:     "Rename a board",
		Tags:        []string{"boards"},
	}, h.RenameBoard)

	huma.Register(api, huma.Operation{
		OperationID: "resize-board",
		Method:      http.MethodPut,
		Path:        "/v1/boards/{board_id}/size",
		Summary:     "Resize a custom board",
		Tags:        []string{"boards"},
	}, h.ResizeBoard)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-board",
		Method:        http.MethodDelete,
		Path:          "/v1/boards/{board_id}",
		Summary:       "Delete a board and its buttons",
		Tags:          []string{"boards"},
		DefaultStatus: http.StatusNoContent,
	}, h.DeleteBoard)
}

func (h *BoardHandler) CreateBoard(ctx context.Context, input *CreateBoardInput) (*BoardOutput, error) {
	l, err := parseLayout(input.Body.Layout)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "create board", err)
	}

	b, err := h.svc.CreateBoard(ctx, input.Body.Name, l)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "create board", err)
	}
	return &BoardOutput{Body: boardToResponse(b)}, nil
}

func (h *BoardHandler) ListBoards(ctx context.Context, input *ListBoardsInput) (*ListBoardsOutput, error) {
	if input.Cursor != "" {
		if _, err := storage.DecodeCursor(input.Cursor); err != nil {
			return nil, badRequest("cursor", "invalid cursor")
		}
	}

	page, err := h.svc.ListBoards(ctx, storage.PageRequest{Cursor: input.Cursor, Limit: input.Limit})
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "list boards", err)
	}

	out := &ListBoardsOutput{}
	out.Body.Boards = make([]BoardResponse, len(page.Boards))
	for i := range page.Boards {
		out.Body.Boards[i] = boardToResponse(&page.Boards[i])
	}
	out.Body.NextCursor = page.NextCursor
	out.Body.HasMore = page.HasMore
	return out, nil
}

func (h *BoardHandler) GetBoard(ctx context.Context, input *BoardIDInput) (*BoardOutput, error) {
	id, err := parseID("board_id", input.BoardID)
	if err != nil {
		return nil, err
	}

	b, err := h.svc.GetBoard(ctx, id)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "get board", err)
	}
	return &BoardOutput{Body: boardToResponse(b)}, nil
}

func (h *BoardHandler) RenameBoard(ctx context.Context, input *RenameBoardInput) (*BoardOutput, error) {
	id, err := parseID("board_id", input.BoardID)
	if err != nil {
		return nil, err
	}

	b, err := h.svc.RenameBoard(ctx, id, input.Body.Name)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "rename board", err)
	}
	return &BoardOutput{Body: boardToResponse(b)}, nil
}

func (h *BoardHandler) ResizeBoard(ctx context.Context, input *ResizeBoardInput) (*BoardOutput, error) {
	id, err := parseID("board_id", input.BoardID)
	if err != nil {
		return nil, err
	}

	b, err := h.svc.ResizeBoard(ctx, id, input.Body.Width, input.Body.Height)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "resize board", err)
	}
	return &BoardOutput{Body: boardToResponse(b)}, nil
}

func (h *BoardHandler) DeleteBoard(ctx context.Context, input *BoardIDInput) (*struct{}, error) {
	id, err := parseID("board_id", input.BoardID)
	if err != nil {
		return nil, err
	}

	if err := h.svc.DeleteBoard(ctx, id); err != nil {
		return nil, toHTTPError(ctx, h.logger, "delete board", err)
	}
	return nil, nil
}

func parseID(field, s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, badRequest(field, "invalid "+field)
	}
	return id, nil
}

func parseLayout(body LayoutBody) (layout.Layout, error) {
	kind, err := layout.ParseKind(body.Kind)
	if err != nil {
		return layout.Layout{}, model.LayoutError(uuid.Nil, err)
	}
	l, err := layout.Define(kind, body.Width, body.Height)
	if err != nil {
		return layout.Layout{}, model.LayoutError(uuid.Nil, err)
	}
	return l, nil
}

func layoutToBody(l layout.Layout) LayoutBody {
	w, h := l.Bounds()
	return LayoutBody{Kind: string(l.Kind), Width: w, Height: h}
}

func boardToResponse(b *model.Board) BoardResponse {
	return BoardResponse{ID: b.ID, Name: b.Name, Layout: layoutToBody(b.Layout)}
}
