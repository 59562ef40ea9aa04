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

type ButtonResponse struct {
	ID            uuid.UUID `json:"id" doc:"Button UUID"`
	BoardID       uuid.UUID `json:"board_id" doc:"Owning board UUID"`
	X             int       `json:"x" doc:"Column, zero based"`
	Y             int       `json:"y" doc:"Row, zero based"`
	ImageFilename string    `json:"image_filename" doc:"Image file name, no path separators"`
}

type PlaceButtonInput struct {
	BoardID string `path:"board_id" doc:"Board UUID" format:"uuid"`
	Body    struct {
		X             int    `json:"x" doc:"Column, zero based"`
		Y             int    `json:"y" doc:"Row, zero based"`
		ImageFilename string `json:"image_filename" doc:"Image file name" example:"button1.png"`
	}
}

type ButtonOutput struct {
	Body ButtonResponse
}

type ListButtonsOutput struct {
	Body []ButtonResponse
}

type ButtonIDInput struct {
	ButtonID string `path:"button_id" doc:"Button UUID" format:"uuid"`
}

type MoveButtonInput struct {
	ButtonID string `path:"button_id" doc:"Button UUID" format:"uuid"`
	Body     struct {
		X int `json:"x" doc:"Column, zero based"`
		Y int `json:"y" doc:"Row, zero based"`
	}
}

type UpdateImageInput struct {
	ButtonID string `path:"button_id" doc:"Button UUID" format:"uuid"`
	Body     struct {
		ImageFilename string `json:"image_filename" doc:"Image file name"`
	}
}

// --- Handler ---

type ButtonHandler struct {
	svc    *board.Service
	logger *slog.Logger
}

func NewButtonHandler(svc *board.Service, logger *slog.Logger) *ButtonHandler {
	return &ButtonHandler{svc: svc, logger: logger}
}

func registerButtonRoutes(api huma.API, h *ButtonHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "place-button",
		Method:        http.MethodPost,
		Path:          "/v1/boards/{board_id}/buttons",
		Summary:       "Place a button on a board",
		Tags:          []string{"buttons"},
		DefaultStatus: http.StatusCreated,
	}, h.PlaceButton)

	huma.Register(api, huma.Operation{
		OperationID: "list-buttons",
		Method:      http.MethodGet,
		Path:        "/v1/boards/{board_id}/buttons",
		Summary:     "List the buttons of a board",
		Tags:        []string{"buttons"},
	}, h.ListButtons)

	huma.Register(api, huma.Operation{
		OperationID: "get-button",
		Method:      http.MethodGet,
		Path:        "/v1/buttons/{button_id}",
		Summary:     "Get a button by ID",
		Tags:        []string{"buttons"},
	}, h.GetButton)

	huma.Register(api, huma.Operation{
		OperationID: "move-button",
		Method:      http.MethodPut,
		Path:        "/v1/buttons/{button_id}/position",
		Summary:     "Move a button",
		Tags:        []string{"buttons"},
	}, h.MoveButton)

	huma.Register(api, huma.Operation{
		OperationID: "update-button-image",
		Method:      http.MethodPut,
		Path:        "/v1/buttons/{button_id}/image",
		Summary:     "Change a button image",
		Tags:        []string{"buttons"},
	}, h.UpdateImage)

	huma.Register(api, huma.Operation{
		OperationID:   "remove-button",
		Method:        http.MethodDelete,
		Path:          "/v1/buttons/{button_id}",
		Summary:       "Remove a button and its functionality",
		Tags:          []string{"buttons"},
		DefaultStatus: http.StatusNoContent,
	}, h.RemoveButton)
}

func (h *ButtonHandler) PlaceButton(ctx context.Context, input *PlaceButtonInput) (*ButtonOutput, error) {
	boardID, err := parseID("board_id", input.BoardID)
	if err != nil {
		return nil, err
	}

	pos := model.Position{X: input.Body.X, Y: input.Body.Y}
	b, err := h.svc.PlaceButton(ctx, boardID, pos, input.Body.ImageFilename)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "place button", err)
	}
	return &ButtonOutput{Body: buttonToResponse(b)}, nil
}

func (h *ButtonHandler) ListButtons(ctx context.Context, input *BoardIDInput) (*ListButtonsOutput, error) {
	boardID, err := parseID("board_id", input.BoardID)
	if err != nil {
		return nil, err
	}

	buttons, err := h.svc.ListButtons(ctx, boardID)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "list buttons", err)
	}

	resp := make([]ButtonResponse, len(buttons))
	for i := range buttons {
		resp[i] = buttonToResponse(&buttons[i])
	}
	return &ListButtonsOutput{Body: resp}, nil
}

func (h *ButtonHandler) GetButton(ctx context.Context, input *ButtonIDInput) (*ButtonOutput, error) {
	id, err := parseID("button_id", input.ButtonID)
	if err != nil {
		return nil, err
	}

	b, err := h.svc.GetButton(ctx, id)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "get button", err)
	}
	return &ButtonOutput{Body: buttonToResponse(b)}, nil
}

func (h *ButtonHandler) MoveButton(ctx context.Context, input *MoveButtonInput) (*ButtonOutput, error) {
	id, err := parseID("button_id", input.ButtonID)
	if err != nil {
		return nil, err
	}

	b, err := h.svc.MoveButton(ctx, id, model.Position{X: input.Body.X, Y: input.Body.Y})
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "move button", err)
	}
	return &ButtonOutput{Body: buttonToResponse(b)}, nil
}

func (h *ButtonHandler) UpdateImage(ctx context.Context, input *UpdateImageInput) (*ButtonOutput, error) {
	id, err := parseID("button_id", input.ButtonID)
	if err != nil {
		return nil, err
	}

	b, err := h.svc.UpdateButtonImage(ctx, id, input.Body.ImageFilename)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "update button image", err)
	}
	return &ButtonOutput{Body: buttonToResponse(b)}, nil
}

func (h *ButtonHandler) RemoveButton(ctx context.Context, input *ButtonIDInput) (*struct{}, error) {
	id, err := parseID("button_id", input.ButtonID)
	if err != nil {
		return nil, err
	}

	if err := h.svc.RemoveButton(ctx, id); err != nil {
		return nil, toHTTPError(ctx, h.logger, "remove button", err)
	}
	return nil, nil
}

func buttonToResponse(b *model.Button) ButtonResponse {
	return ButtonResponse{
		ID:            b.ID,
		BoardID:       b.BoardID,
		X:             b.X,
		Y:             b.Y,
		ImageFilename: b.ImageFilename,
	}
}
