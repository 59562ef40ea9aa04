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

type FunctionalityBody struct {
	Kind          string     `json:"kind" doc:"Functionality kind: app_switch, run_script or page_switch" example:"app_switch"`
	AppName       *string    `json:"app_name,omitempty" doc:"Application to focus (app_switch)"`
	ScriptPath    *string    `json:"script_path,omitempty" doc:"Script to run (run_script)"`
	TargetBoardID *uuid.UUID `json:"target_board_id,omitempty" doc:"Board to switch to (page_switch)"`
}

type FunctionalityResponse struct {
	ID       uuid.UUID `json:"id" doc:"Functionality UUID"`
	ButtonID uuid.UUID `json:"button_id" doc:"Button UUID"`
	FunctionalityBody
}

type AssignFunctionalityInput struct {
	ButtonID string `path:"button_id" doc:"Button UUID" format:"uuid"`
	Body     FunctionalityBody
}

type FunctionalityOutput struct {
	Body FunctionalityResponse
}

// --- Handler ---

type FunctionalityHandler struct {
	svc    *board.Service
	logger *slog.Logger
}

func NewFunctionalityHandler(svc *board.Service, logger *slog.Logger) *FunctionalityHandler {
	return &FunctionalityHandler{svc: svc, logger: logger}
}

func registerFunctionalityRoutes(api huma.API, h *FunctionalityHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "assign-functionality",
		Method:      http.MethodPut,
		Path:        "/v1/buttons/{button_id}/functionality",
		Summary:     "Assign a functionality to a button, replacing any previous one",
		Tags:        []string{"functionality"},
	}, h.AssignFunctionality)

	huma.Register(api, huma.Operation{
		OperationID: "get-functionality",
		Method:      http.MethodGet,
		Path:        "/v1/buttons/{button_id}/functionality",
		Summary:     "Get the functionality of a button",
		Tags:        []string{"functionality"},
	}, h.GetFunctionality)

	huma.Register(api, huma.Operation{
		OperationID:   "clear-functionality",
		Method:        http.MethodDelete,
		Path:          "/v1/buttons/{button_id}/functionality",
		Summary:       "Unassign the functionality of a button",
		Tags:          []string{"functionality"},
		DefaultStatus: http.StatusNoContent,
	}, h.ClearFunctionality)

	huma.Register(api, huma.Operation{
		OperationID: "resolve-target",
		Method:      http.MethodGet,
		Path:        "/v1/buttons/{button_id}/functionality/target",
		Summary:     "Resolve the board a page switch leads to",
		Tags:        []string{"functionality"},
	}, h.ResolveTarget)
}

func (h *FunctionalityHandler) AssignFunctionality(ctx context.Context, input *AssignFunctionalityInput) (*FunctionalityOutput, error) {
	id, err := parseID("button_id", input.ButtonID)
	if err != nil {
		return nil, err
	}

	f, err := h.svc.AssignFunctionality(ctx, id, bodyToSpec(input.Body))
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "assign functionality", err)
	}
	return &FunctionalityOutput{Body: functionalityToResponse(f)}, nil
}

func (h *FunctionalityHandler) GetFunctionality(ctx context.Context, input *ButtonIDInput) (*FunctionalityOutput, error) {
	id, err := parseID("button_id", input.ButtonID)
	if err != nil {
		return nil, err
	}

	f, err := h.svc.GetFunctionality(ctx, id)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "get functionality", err)
	}
	return &FunctionalityOutput{Body: functionalityToResponse(f)}, nil
}

func (h *FunctionalityHandler) ClearFunctionality(ctx context.Context, input *ButtonIDInput) (*struct{}, error) {
	id, err := parseID("button_id", input.ButtonID)
	if err != nil {
		return nil, err
	}

	if err := h.svc.ClearFunctionality(ctx, id); err != nil {
		return nil, toHTTPError(ctx, h.logger, "clear functionality", err)
	}
	return nil, nil
}

func (h *FunctionalityHandler) ResolveTarget(ctx context.Context, input *ButtonIDInput) (*BoardOutput, error) {
	id, err := parseID("button_id", input.ButtonID)
	if err != nil {
		return nil, err
	}

	b, err := h.svc.ResolveButtonTarget(ctx, id)
	if err != nil {
		return nil, toHTTPError(ctx, h.logger, "resolve target", err)
	}
	return &BoardOutput{Body: boardToResponse(b)}, nil
}

func bodyToSpec(body FunctionalityBody) model.FunctionalitySpec {
	return model.FunctionalitySpec{
		Kind:          model.Kind(body.Kind),
		AppName:       body.AppName,
		ScriptPath:    body.ScriptPath,
		TargetBoardID: body.TargetBoardID,
	}
}

func functionalityToResponse(f *model.Functionality) FunctionalityResponse {
	spec := model.EncodeAction(f.Action)
	return FunctionalityResponse{
		ID:       f.ID,
		ButtonID: f.ButtonID,
		FunctionalityBody: FunctionalityBody{
			Kind:          string(spec.Kind),
			AppName:       spec.AppName,
			ScriptPath:    spec.ScriptPath,
			TargetBoardID: spec.TargetBoardID,
		},
	}
}
