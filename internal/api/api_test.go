package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pedalstack/pedalstack/pkg/catalog"
	"github.com/pedalstack/pedalstack/pkg/conflict"
	"github.com/pedalstack/pedalstack/pkg/engine"
	"github.com/pedalstack/pedalstack/pkg/session"
)

func testCatalog() *catalog.MemoryStore {
	s := catalog.NewMemoryStore()
	s.AddPedal(&catalog.PedalRecord{
		ID: "od-1", Name: "Overdrive", Units: catalog.UnitInches,
		Width: 3, Depth: 5,
		Jacks: []catalog.JackRecord{
			{ID: "in", Role: "input", X: 3, Y: 2.5},
			{ID: "out", Role: "output", X: 0, Y: 2.5},
		},
	})
	s.AddBoard(&catalog.BoardRecord{
		ID: "pt-2", Name: "Mid Board", Units: catalog.UnitInches,
		Width: 30, Depth: 14,
		Rails: []catalog.RailRecord{{ID: "main", Width: 30, Depth: 14}},
	})
	s.AddAmp(&catalog.AmpRecord{
		ID: "twin", Name: "Twin", Units: catalog.UnitInches,
		HasLoop: true,
		InputX:  34, InputY: 2,
		SendX: 32, SendY: 7,
		ReturnX: 34, ReturnY: 7,
	})
	return s
}

func testServer() *httptest.Server {
	srv := NewServer(
		session.NewManager(),
		testCatalog(),
		engine.NewRunner(nil, nil, nil),
		engine.Options{},
		nil,
	)
	return httptest.NewServer(srv.Router())
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func createTestSession(t *testing.T, ts *httptest.Server, pedals ...string) string {
	t.Helper()
	req := createSessionRequest{BoardID: "pt-2", AmpID: "twin"}
	for _, id := range pedals {
		req.Pedals = append(req.Pedals, createPedalRequest{InstanceID: id, PedalID: "od-1"})
	}
	resp := postJSON(t, ts.URL+"/v1/sessions", req)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create session: status %d", resp.StatusCode)
	}
	return decodeBody[createSessionResponse](t, resp).SessionID
}

func TestCreateAndGetSession(t *testing.T) {
	ts := testServer()
	defer ts.Close()

	id := createTestSession(t, ts, "p1", "p2")

	resp, err := http.Get(ts.URL + "/v1/sessions/" + id)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get session: status %d", resp.StatusCode)
	}
	view := decodeBody[sessionView](t, resp)
	if view.ID != id {
		t.Errorf("view.ID = %q, want %q", view.ID, id)
	}
	if len(view.Order) != 2 || view.Order[0] != "p1" {
		t.Errorf("view.Order = %v", view.Order)
	}
}

func TestGetUnknownSession(t *testing.T) {
	ts := testServer()
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/v1/sessions/nope")
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["code"] != "SESSION_NOT_FOUND" {
		t.Errorf("code = %q", body["code"])
	}
}

func TestOptimizeEndpoint(t *testing.T) {
	ts := testServer()
	defer ts.Close()

	id := createTestSession(t, ts, "p1", "p2", "p3")
	resp := postJSON(t, fmt.Sprintf("%s/v1/sessions/%s/optimize", ts.URL, id), optimizeRequest{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("optimize: status %d", resp.StatusCode)
	}
	out := decodeBody[optimizeResponse](t, resp)
	if !out.Applied {
		t.Error("result not applied")
	}
	if len(out.Result.Layout) != 3 {
		t.Errorf("layout has %d placements", len(out.Result.Layout))
	}
	if len(out.Result.Conflicts) != 0 {
		t.Errorf("conflicts: %v", out.Result.Conflicts)
	}
}

func TestDragOverlapSurfacesConflict(t *testing.T) {
	ts := testServer()
	defer ts.Close()

	id := createTestSession(t, ts, "p1", "p2")
	base := fmt.Sprintf("%s/v1/sessions/%s", ts.URL, id)

	if resp := postJSON(t, base+"/optimize", optimizeRequest{}); resp.StatusCode != http.StatusOK {
		t.Fatalf("optimize: status %d", resp.StatusCode)
	}

	// Drag p2 onto p1's placement.
	resp, err := http.Get(base)
	if err != nil {
		t.Fatal(err)
	}
	view := decodeBody[sessionView](t, resp)
	p1 := view.Layout["p1"]

	req, err := http.NewRequest(http.MethodPatch, base+"/layout", bytes.NewReader(mustJSON(t, moveRequest{
		InstanceID: "p2",
		X:          p1.Position.X,
		Y:          p1.Position.Y,
	})))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	moveResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if moveResp.StatusCode != http.StatusOK {
		t.Fatalf("move: status %d", moveResp.StatusCode)
	}
	out := decodeBody[map[string][]conflict.Conflict](t, moveResp)
	if len(out["conflicts"]) != 1 || out["conflicts"][0].Kind != conflict.FootprintOverlap {
		t.Errorf("conflicts = %v", out["conflicts"])
	}
}

func TestDragWithoutRailKeepsOptimizeFeasible(t *testing.T) {
	ts := testServer()
	defer ts.Close()

	id := createTestSession(t, ts, "p1", "p2")
	base := fmt.Sprintf("%s/v1/sessions/%s", ts.URL, id)

	// Drag p1 to a valid spot without naming a rail; the server infers it.
	req, err := http.NewRequest(http.MethodPatch, base+"/layout", bytes.NewReader(mustJSON(t, moveRequest{
		InstanceID: "p1",
		X:          1,
		Y:          1,
	})))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	moveResp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	if moveResp.StatusCode != http.StatusOK {
		t.Fatalf("move: status %d", moveResp.StatusCode)
	}
	moveResp.Body.Close()

	resp := postJSON(t, base+"/optimize", optimizeRequest{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("optimize after drag: status %d", resp.StatusCode)
	}
	out := decodeBody[optimizeResponse](t, resp)
	if !out.Applied {
		t.Error("result not applied")
	}
	p1 := out.Result.Layout["p1"]
	if !p1.Pinned || p1.Position.X != 1 || p1.Position.Y != 1 {
		t.Errorf("dragged placement not kept: %+v", p1)
	}
	if len(out.Result.Conflicts) != 0 {
		t.Errorf("conflicts: %v", out.Result.Conflicts)
	}
}

func TestFourCableEndpoint(t *testing.T) {
	ts := testServer()
	defer ts.Close()

	id := createTestSession(t, ts, "p1", "p2", "p3")
	base := fmt.Sprintf("%s/v1/sessions/%s", ts.URL, id)

	resp := postJSON(t, base+"/fourcable", fourCableRequest{Enable: true, Before: "p2"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("fourcable: status %d", resp.StatusCode)
	}
	view := decodeBody[sessionView](t, resp)
	if !view.FourCable || view.LoopBefore != "p2" {
		t.Errorf("view = %+v", view)
	}

	// Enabling at the first pedal is invalid.
	resp = postJSON(t, base+"/fourcable", fourCableRequest{Enable: true, Before: "p1"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", resp.StatusCode)
	}
	resp.Body.Close()
}

func TestDeleteSession(t *testing.T) {
	ts := testServer()
	defer ts.Close()

	id := createTestSession(t, ts, "p1")
	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/v1/sessions/"+id, nil)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("delete: status %d", resp.StatusCode)
	}

	getResp, err := http.Get(ts.URL + "/v1/sessions/" + id)
	if err != nil {
		t.Fatal(err)
	}
	getResp.Body.Close()
	if getResp.StatusCode != http.StatusNotFound {
		t.Errorf("get after delete: status %d", getResp.StatusCode)
	}
}

func TestCreateSessionUnknownPedal(t *testing.T) {
	ts := testServer()
	defer ts.Close()

	resp := postJSON(t, ts.URL+"/v1/sessions", createSessionRequest{
		BoardID: "pt-2",
		Pedals:  []createPedalRequest{{InstanceID: "p1", PedalID: "ghost"}},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("status = %d, want 404", resp.StatusCode)
	}
	body := decodeBody[map[string]string](t, resp)
	if body["code"] != "PEDAL_NOT_FOUND" {
		t.Errorf("code = %q", body["code"])
	}
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return data
}
