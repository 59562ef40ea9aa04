package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/ryanbastic/padboard/internal/board"
	"github.com/ryanbastic/padboard/internal/model"
)

// --- Huma Input/Output types ---

type ExportedFunctionality struct {
	ID uuid.UUID `json:"id,omitempty" doc:"Functionality UUID; generated when absent"`
	FunctionalityBody
}

type ExportedButton struct {
	ID            uuid.UUID              `json:"id" doc:"Button UUID"`
	X             int                    `json:"x" doc:"Column, zero based"`
	Y             int                    `json:"y" doc:"Row, zero based"`
	ImageFilename string                 `json:"image_filename" doc:"Image file name"`
	Functionality *ExportedFunctionality `json:"functionality,omitempty" doc:"Bound functionality, absent when unassigned"`
}

type ExportedBoard struct {
	ID      uuid.UUID        `json:"id" doc:"Board UUID"`
	Name    string           `json:"name" doc:"Display name"`
	Layout  LayoutBody       `json:"layout" doc:"Board layout"`
	Buttons []ExportedButton `json:"buttons" doc:"Buttons ordered by row then column"`
}

type SnapshotBody struct {
	Boards []ExportedBoard `json:"boards" doc:"Boards with their buttons and functionalities"`
}

type ExportBoardOutput struct {
	Body ExportedBoard
}

type SnapshotOutput struct {
	Body SnapshotBody
}

type ImportInput struct {
	Body SnapshotBody
}

type ImportOutput struct {
	Body struct {
		Boards int `json:"boards" doc:"Number of imported boards"`
	}
}

// --- Handler ---

type SnapshotHandler struct {
	svc    *board.Service
	logger *slog.Logger
}

func NewSnapshotHandler(svc *board.Service, logger *slog.Logger) *SnapshotHandler {
	return &SnapshotHandler{svc: svc, logger: logger}
}

func registerSnapshotRoutes(api huma.API, h *SnapshotHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "export-board",
		Method:      http.MethodGet,
		Path:        "/v1/boards/{board_id}/export",
		Summary:     "Export a board with its buttons and functionalities",
		Tags:        []string{"snapshots"},
	}, h.ExportBoard)

	huma.Register(api, huma.Operation{
		OperationID: "export-all",
		Method:      http.MethodGet,
		Path:        "/v1/export",
		Summary:     "Export every board",
		Tags:        []string{"snapshots"},
	}, h.Export)

	huma.Register(api, huma.Operation{
		OperationID:   "import",
		Method:        http.MethodPost,
		Path:          "/v1/import",
		Summary:       "Import boards with their original ids",
		Tags:          []string{"snapshots"},
		DefaultStatus: http.StatusCreated,
	}, h.Import)
}

func (h *SnapshotHandler) ExportBoard(ctx context.Context, input *BoardIDInput) (*ExportBoardOutput, error) {
	id, err := parseID("board_id", input.BoardID)
	if err != nil {
		return nil, err
	}

	g, err := h.svc.ExportBoard(ctx, id)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "export board", err)
	}
	return &ExportBoardOutput{Body: graphToExport(g)}, nil
}

func (h *SnapshotHandler) Export(ctx context.Context, _ *struct{}) (*SnapshotOutput, error) {
	snap, err := h.svc.Export(ctx)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "export", err)
	}

	out := &SnapshotOutput{}
	out.Body.Boards = make([]ExportedBoard, len(snap.Boards))
	for i := range snap.Boards {
		out.Body.Boards[i] = graphToExport(&snap.Boards[i])
	}
	return out, nil
}

func (h *SnapshotHandler) Import(ctx context.Context, input *ImportInput) (*ImportOutput, error) {
	snap, err := exportToSnapshot(input.Body, h.svc.Options().Fields)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "import", err)
	}

	if err := h.svc.Import(ctx, snap); err != nil {
		return nil, toHTTPError(ctx, h.logger, "import", err)
	}

	out := &ImportOutput{}
	out.Body.Boards = len(snap.Boards)
	return out, nil
}

func graphToExport(g *model.BoardGraph) ExportedBoard {
	eb := ExportedBoard{
		ID:      g.ID,
		Name:    g.Name,
		Layout:  layoutToBody(g.Layout),
		Buttons: make([]ExportedButton, len(g.Buttons)),
	}
	for i, bg := range g.Buttons {
		btn := ExportedButton{
			ID:            bg.ID,
			X:             bg.X,
			Y:             bg.Y,
			ImageFilename: bg.ImageFilename,
		}
		if bg.Functionality != nil {
			resp := functionalityToResponse(bg.Functionality)
			btn.Functionality = &ExportedFunctionality{ID: resp.ID, FunctionalityBody: resp.FunctionalityBody}
		}
		eb.Buttons[i] = btn
	}
	return eb
}

// exportToSnapshot rebuilds domain values from an export document. Fixed
// layouts are exported with their resolved dimensions, which parseLayout
// accepts and canonicalizes.
func exportToSnapshot(body SnapshotBody, mode model.FieldMode) (model.Snapshot, error) {
	snap := model.Snapshot{Boards: make([]model.BoardGraph, len(body.Boards))}
	for i, eb := range body.Boards {
		l, err := parseLayout(eb.Layout)
		if err != nil {
			return model.Snapshot{}, err
		}
		g := model.BoardGraph{
			Board:   model.Board{ID: eb.ID, Name: eb.Name, Layout: l},
			Buttons: make([]model.ButtonGraph, len(eb.Buttons)),
		}
		for j, btn := range eb.Buttons {
			bg := model.ButtonGraph{Button: model.Button{
				ID:            btn.ID,
				BoardID:       eb.ID,
				Position:      model.Position{X: btn.X, Y: btn.Y},
				ImageFilename: btn.ImageFilename,
			}}
			if btn.Functionality != nil {
				a, err := model.DecodeAction(bodyToSpec(btn.Functionality.FunctionalityBody), mode)
				if err != nil {
					return model.Snapshot{}, err
				}
				bg.Functionality = &model.Functionality{ID: btn.Functionality.ID, ButtonID: btn.ID, Action: a}
			}
			g.Buttons[j] = bg
		}
		snap.Boards[i] = g
	}
	return snap, nil
}
