package api

import (
	"net/http"
	"testing"
)

func TestExportImport_RoundTrip(t *testing.T) {
	source := setupTestServer()
	home := createBoard(t, source, "home", grid8x4())
	apps := createBoard(t, source, "apps", map[string]any{"kind": "custom", "width": 3, "height": 1})
	toApps := placeButton(t, source, home.ID, 0, 0, "apps.png")
	chrome := placeButton(t, source, apps.ID, 2, 0, "chrome.png")
	doJSON(t, source, http.MethodPut, "/v1/buttons/"+toApps.ID.String()+"/functionality",
		map[string]any{"kind": "page_switch", "target_board_id": apps.ID})
	doJSON(t, source, http.MethodPut, "/v1/buttons/"+chrome.ID.String()+"/functionality",
		map[string]any{"kind": "app_switch", "app_name": "Chrome"})

	w := doJSON(t, source, http.MethodGet, "/v1/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export: got %d\nbody: %s", w.Code, w.Body.String())
	}
	snap := decode[SnapshotBody](t, w)
	if len(snap.Boards) != 2 {
		t.Fatalf("boards: got %d, want 2", len(snap.Boards))
	}

	target := setupTestServer()
	w = doJSON(t, target, http.MethodPost, "/v1/import", snap)
	if w.Code != http.StatusCreated {
		t.Fatalf("import: got %d\nbody: %s", w.Code, w.Body.String())
	}

	w = doJSON(t, target, http.MethodGet, "/v1/boards/"+home.ID.String()+"/export", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("export board: got %d", w.Code)
	}
	got := decode[ExportedBoard](t, w)
	if got.Name != "home" || len(got.Buttons) != 1 {
		t.Fatalf("got %+v", got)
	}
	fn := got.Buttons[0].Functionality
	if fn == nil || fn.Kind != "page_switch" || fn.TargetBoardID == nil || *fn.TargetBoardID != apps.ID {
		t.Errorf("functionality: got %+v", fn)
	}

	w = doJSON(t, target, http.MethodGet, "/v1/buttons/"+toApps.ID.String()+"/functionality/target", nil)
	if resolved := decode[BoardResponse](t, w); resolved.ID != apps.ID {
		t.Errorf("resolved target: got %s, want %s", resolved.ID, apps.ID)
	}
}

func TestImport_AllOrNothing(t *testing.T) {
	server := setupTestServer()
	body := map[string]any{
		"boards": []map[string]any{
			{
				"id":     "4b0d3a8e-8d7c-4a57-9d59-2f0f4c1a0001",
				"name":   "ok",
				"layout": map[string]any{"kind": "3x2_grid"},
				"buttons": []map[string]any{
					{"id": "4b0d3a8e-8d7c-4a57-9d59-2f0f4c1a0011", "x": 0, "y": 0, "image_filename": "a.png"},
					{"id": "4b0d3a8e-8d7c-4a57-9d59-2f0f4c1a0012", "x": 0, "y": 0, "image_filename": "b.png"},
				},
			},
		},
	}

	w := doJSON(t, server, http.MethodPost, "/v1/import", body)
	if w.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d\nbody: %s", w.Code, http.StatusConflict, w.Body.String())
	}

	w = doJSON(t, server, http.MethodGet, "/v1/boards/4b0d3a8e-8d7c-4a57-9d59-2f0f4c1a0001", nil)
	if w.Code != http.StatusNotFound {
		t.Errorf("board after failed import: got %d, want %d", w.Code, http.StatusNotFound)
	}
}
