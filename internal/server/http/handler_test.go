package http

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"chess/internal/server/core"
	"chess/internal/server/processor"
	"chess/internal/server/service"
	"chess/internal/server/transcript"

	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	svc := service.New(nil, []byte("http-test-secret-0123456789abcdef"))
	proc := processor.New(svc, transcript.NewDifficultyParser(nil))
	t.Cleanup(func() { proc.Close() })
	return NewFiberApp(proc, svc, true)
}

type call struct {
	method string
	path   string
	body   string
	token  string
}

func do(t *testing.T, app *fiber.App, c call, out any) int {
	t.Helper()
	var body io.Reader
	if c.body != "" {
		body = strings.NewReader(c.body)
	}
	req := httptest.NewRequest(c.method, c.path, body)
	if c.body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", c.method, c.path, err)
	}
	defer resp.Body.Close()

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decode: %v", c.method, c.path, err)
		}
	}
	return resp.StatusCode
}

func createSession(t *testing.T, app *fiber.App) core.SessionResponse {
	t.Helper()
	var created core.SessionResponse
	if status := do(t, app, call{method: "POST", path: "/api/v1/sessions"}, &created); status != fiber.StatusCreated {
		t.Fatalf("create session: status %d", status)
	}
	if created.SessionID == "" || created.Token == "" {
		t.Fatalf("create session: missing id or token: %+v", created)
	}
	return created
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	var health map[string]any
	if status := do(t, app, call{method: "GET", path: "/health"}, &health); status != fiber.StatusOK {
		t.Fatalf("status %d", status)
	}
	if health["storage"] != "disabled" {
		t.Errorf("storage = %v, want disabled", health["storage"])
	}
}

func TestConversationOverHTTP(t *testing.T) {
	app := newTestApp(t)
	created := createSession(t, app)
	base := "/api/v1/sessions/" + created.SessionID

	for _, text := range []string{"white", "easy", "pawn to e4"} {
		var r core.UtteranceResponse
		status := do(t, app, call{method: "POST", path: base + "/utterances", body: `{"text":"` + text + `"}`, token: created.Token}, &r)
		if status != fiber.StatusOK || !r.Understood {
			t.Fatalf("utterance %q: status %d, response %+v", text, status, r)
		}
	}

	var sess core.SessionResponse
	status := do(t, app, call{method: "POST", path: base + "/opponent-moves", body: `{"move":"e7e5"}`, token: created.Token}, &sess)
	if status != fiber.StatusOK {
		t.Fatalf("opponent move: status %d", status)
	}
	if want := "rnbqkbnr/pppp1ppp/8/4p3/4P3/8/PPPP1PPP/RNBQKBNR w KQkq e6 0 2"; sess.FEN != want {
		t.Errorf("FEN = %q, want %q", sess.FEN, want)
	}

	var errResp core.ErrorResponse
	status = do(t, app, call{method: "POST", path: base + "/opponent-moves", body: `{"move":"d7d5"}`, token: created.Token}, &errResp)
	if status != fiber.StatusConflict || errResp.Code != core.ErrNotOpponentTurn {
		t.Errorf("out of turn opponent move: status %d, %+v", status, errResp)
	}

	status = do(t, app, call{method: "POST", path: base + "/undo", body: `{"count":2}`, token: created.Token}, &sess)
	if status != fiber.StatusOK || len(sess.Moves) != 0 {
		t.Errorf("undo: status %d, moves %v", status, sess.Moves)
	}

	var b core.BoardResponse
	if status := do(t, app, call{method: "GET", path: base + "/board"}, &b); status != fiber.StatusOK || b.Board == "" {
		t.Errorf("board: status %d", status)
	}

	if status := do(t, app, call{method: "DELETE", path: base, token: created.Token}, nil); status != fiber.StatusNoContent {
		t.Errorf("delete: status %d", status)
	}
	if status := do(t, app, call{method: "GET", path: base}, &errResp); status != fiber.StatusNotFound {
		t.Errorf("get after delete: status %d", status)
	}
}

func TestSessionAuth(t *testing.T) {
	app := newTestApp(t)
	first := createSession(t, app)
	second := createSession(t, app)
	path := "/api/v1/sessions/" + first.SessionID + "/utterances"
	body := `{"text":"white"}`

	tests := []struct {
		name   string
		token  string
		status int
	}{
		{"missing token", "", fiber.StatusUnauthorized},
		{"garbage token", "not-a-jwt", fiber.StatusUnauthorized},
		{"other session", second.Token, fiber.StatusForbidden},
		{"own token", first.Token, fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := do(t, app, call{method: "POST", path: path, body: body, token: tt.token}, nil); status != tt.status {
				t.Errorf("status %d, want %d", status, tt.status)
			}
		})
	}
}

func TestRequestValidation(t *testing.T) {
	app := newTestApp(t)
	created := createSession(t, app)
	base := "/api/v1/sessions/" + created.SessionID

	tests := []struct {
		name   string
		call   call
		status int
		code   string
	}{
		{"bad session id", call{method: "GET", path: "/api/v1/sessions/xyz"}, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"missing text", call{method: "POST", path: base + "/utterances", body: `{}`, token: created.Token}, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"short move", call{method: "POST", path: base + "/opponent-moves", body: `{"move":"e4"}`, token: created.Token}, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"undo negative", call{method: "POST", path: base + "/undo", body: `{"count":-1}`, token: created.Token}, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"undo too many", call{method: "POST", path: base + "/undo", body: `{"count":301}`, token: created.Token}, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"bad parse kind", call{method: "POST", path: "/api/v1/parse", body: `{"kind":"board","text":"x"}`}, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"malformed json", call{method: "POST", path: "/api/v1/parse", body: `{"kind":`}, fiber.StatusBadRequest, core.ErrInvalidRequest},
		{"bad fen", call{method: "POST", path: "/api/v1/sessions", body: `{"fen":"8/8/8 w - - 0 1"}`}, fiber.StatusBadRequest, core.ErrInvalidFEN},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var errResp core.ErrorResponse
			status := do(t, app, tt.call, &errResp)
			if status != tt.status || errResp.Code != tt.code {
				t.Errorf("got %d %s, want %d %s", status, errResp.Code, tt.status, tt.code)
			}
		})
	}
}

func TestContentType(t *testing.T) {
	app := newTestApp(t)
	req := httptest.NewRequest("POST", "/api/v1/parse", strings.NewReader("kind=move"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusUnsupportedMediaType {
		t.Errorf("status %d, want 415", resp.StatusCode)
	}
}

func TestParseEndpoint(t *testing.T) {
	app := newTestApp(t)
	var r core.ParseResponse
	status := do(t, app, call{method: "POST", path: "/api/v1/parse", body: `{"kind":"move","text":"Rook to D4"}`}, &r)
	if status != fiber.StatusOK || !r.Found || r.Piece != "r" || r.Target != "d4" {
		t.Errorf("parse: status %d, %+v", status, r)
	}
}

func TestParseEmptyTextNotFound(t *testing.T) {
	app := newTestApp(t)
	for _, kind := range []string{"move", "color", "difficulty"} {
		var r core.ParseResponse
		status := do(t, app, call{method: "POST", path: "/api/v1/parse", body: `{"kind":"` + kind + `","text":""}`}, &r)
		if status != fiber.StatusOK || r.Found || r.Kind != kind {
			t.Errorf("%s: status %d, %+v", kind, status, r)
		}
	}
}

func TestUndoDefaultsToOneMove(t *testing.T) {
	app := newTestApp(t)
	created := createSession(t, app)
	base := "/api/v1/sessions/" + created.SessionID

	for _, text := range []string{"white", "easy", "pawn to e4"} {
		do(t, app, call{method: "POST", path: base + "/utterances", body: `{"text":"` + text + `"}`, token: created.Token}, nil)
	}
	do(t, app, call{method: "POST", path: base + "/opponent-moves", body: `{"move":"e7e5"}`, token: created.Token}, nil)

	var sess core.SessionResponse
	status := do(t, app, call{method: "POST", path: base + "/undo", token: created.Token}, &sess)
	if status != fiber.StatusOK {
		t.Fatalf("undo without body: status %d", status)
	}
	if diff := cmp.Diff([]string{"e2e4"}, sess.Moves); diff != "" {
		t.Errorf("moves mismatch (-want +got):\n%s", diff)
	}
}

func TestOpponentCastlingUnsupported(t *testing.T) {
	app := newTestApp(t)
	var created core.SessionResponse
	body := `{"fen":"r3k2r/8/8/8/8/8/8/4K3 w kq - 0 1"}`
	if status := do(t, app, call{method: "POST", path: "/api/v1/sessions", body: body}, &created); status != fiber.StatusCreated {
		t.Fatalf("create session: status %d", status)
	}
	base := "/api/v1/sessions/" + created.SessionID

	for _, text := range []string{"white", "easy", "king e2"} {
		var r core.UtteranceResponse
		do(t, app, call{method: "POST", path: base + "/utterances", body: `{"text":"` + text + `"}`, token: created.Token}, &r)
		if !r.Understood {
			t.Fatalf("utterance %q: %+v", text, r)
		}
	}

	var errResp core.ErrorResponse
	status := do(t, app, call{method: "POST", path: base + "/opponent-moves", body: `{"move":"e8g8"}`, token: created.Token}, &errResp)
	if status != fiber.StatusUnprocessableEntity || errResp.Code != core.ErrUnsupportedMove {
		t.Errorf("castling: status %d, %+v", status, errResp)
	}
}
