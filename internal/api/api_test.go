package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi"

	"github.com/invaders/server/config"
	"github.com/invaders/server/internal/arcade"
	"github.com/invaders/server/internal/game"
	"github.com/invaders/server/internal/ledger"
)

func newTestRouter(t *testing.T) chi.Router {
	t.Helper()
	cfg := config.DefaultServerConfig()
	return NewServer(cfg, arcade.New(), ledger.NewMemoryStore()).Router()
}

func doJSON(t *testing.T, router chi.Router, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if out != nil && rec.Code < 300 {
		if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
			t.Fatalf("unmarshal %s %s response %q: %v", method, path, rec.Body.String(), err)
		}
	}
	return rec
}

func createSession(t *testing.T, router chi.Router) string {
	t.Helper()
	var resp struct {
		ID    string        `json:"id"`
		State game.Snapshot `json:"state"`
	}
	rec := doJSON(t, router, http.MethodPost, "/api/sessions", nil, &resp)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session status = %d", rec.Code)
	}
	if resp.ID == "" {
		t.Fatal("create session returned empty id")
	}
	if len(resp.State.Invaders) != 55 {
		t.Fatalf("initial snapshot has %d invaders, want 55", len(resp.State.Invaders))
	}
	return resp.ID
}

func TestGameplayRoundTrip(t *testing.T) {
	router := newTestRouter(t)
	id := createSession(t, router)
	base := "/api/sessions/" + id

	var move struct {
		ShipX int `json:"shipX"`
	}
	doJSON(t, router, http.MethodPost, base+"/move", map[string]int{"direction": 1}, &move)
	start := (config.FieldWidth - config.ShipWidth) / 2
	if move.ShipX != start+config.ShipStep {
		t.Fatalf("ship x after move = %d, want %d", move.ShipX, start+config.ShipStep)
	}

	var shoot struct {
		Fired bool `json:"fired"`
	}
	doJSON(t, router, http.MethodPost, base+"/shoot", nil, &shoot)
	if !shoot.Fired {
		t.Fatal("first shot did not fire")
	}

	var tick struct {
		Active bool `json:"active"`
	}
	doJSON(t, router, http.MethodPost, base+"/tick", nil, &tick)
	if !tick.Active {
		t.Fatal("game inactive after one tick")
	}

	var invaders struct {
		Active int `json:"active"`
	}
	doJSON(t, router, http.MethodGet, base+"/invaders", nil, &invaders)
	if invaders.Active != 55 {
		t.Fatalf("active invaders = %d, want 55", invaders.Active)
	}

	var lives struct {
		Lives uint32 `json:"lives"`
	}
	doJSON(t, router, http.MethodGet, base+"/lives", nil, &lives)
	if lives.Lives != config.StartingLives {
		t.Fatalf("lives = %d, want %d", lives.Lives, config.StartingLives)
	}

	var over struct {
		Over bool `json:"over"`
		Won  bool `json:"won"`
	}
	doJSON(t, router, http.MethodGet, base+"/over", nil, &over)
	if over.Over {
		t.Fatal("fresh game reported over")
	}

	// init resets to the canonical state
	var snap game.Snapshot
	doJSON(t, router, http.MethodPost, base+"/init", nil, &snap)
	if snap.Tick != 0 || snap.Score != 0 || len(snap.Bullets) != 0 {
		t.Fatalf("init snapshot not canonical: tick=%d score=%d bullets=%d",
			snap.Tick, snap.Score, len(snap.Bullets))
	}
}

func TestUnknownSessionIs404(t *testing.T) {
	router := newTestRouter(t)
	rec := doJSON(t, router, http.MethodPost, "/api/sessions/nope/tick", nil, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestLedgerRoundTrip(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/players",
		map[string]string{"address": "addr-1", "username": "alice"}, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("register status = %d", rec.Code)
	}

	var reg struct {
		Registered bool `json:"registered"`
	}
	doJSON(t, router, http.MethodGet, "/api/players/addr-1", nil, &reg)
	if !reg.Registered {
		t.Fatal("registered player not found")
	}
	doJSON(t, router, http.MethodGet, "/api/players/addr-2", nil, &reg)
	if reg.Registered {
		t.Fatal("unknown player reported registered")
	}

	for _, score := range []uint64{100, 50} {
		rec := doJSON(t, router, http.MethodPost, "/api/scores",
			map[string]any{"address": "addr-1", "score": score}, nil)
		if rec.Code != http.StatusCreated {
			t.Fatalf("submit %d status = %d", score, rec.Code)
		}
	}

	var entries []ledger.Entry
	doJSON(t, router, http.MethodGet, "/api/leaderboard", nil, &entries)
	if len(entries) != 2 {
		t.Fatalf("leaderboard entries = %d, want 2", len(entries))
	}

	var totals []ledger.Total
	doJSON(t, router, http.MethodGet, "/api/leaderboard?aggregate=1", nil, &totals)
	if len(totals) != 1 || totals[0].Score != 150 {
		t.Fatalf("aggregate = %+v, want alice with 150", totals)
	}
}

func TestSubmitScoreUnregisteredRejected(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/scores",
		map[string]any{"address": "ghost", "score": 999}, nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}

	var entries []ledger.Entry
	doJSON(t, router, http.MethodGet, "/api/leaderboard", nil, &entries)
	if len(entries) != 0 {
		t.Fatalf("rejected submit appended %d entries", len(entries))
	}
}

func TestRegisterBoundsUsername(t *testing.T) {
	router := newTestRouter(t)

	long := strings.Repeat("x", 3*config.MaxUsernameLen)
	var rec ledger.PlayerRecord
	doJSON(t, router, http.MethodPost, "/api/players",
		map[string]string{"address": "addr-1", "username": "  " + long}, &rec)
	if len(rec.Username) != config.MaxUsernameLen {
		t.Fatalf("username length = %d, want bounded to %d", len(rec.Username), config.MaxUsernameLen)
	}

	doJSON(t, router, http.MethodPost, "/api/players",
		map[string]string{"address": "addr-2", "username": "   "}, &rec)
	if rec.Username != "Player" {
		t.Fatalf("blank username became %q, want default", rec.Username)
	}
}

func TestSessionsAreIsolatedOverHTTP(t *testing.T) {
	router := newTestRouter(t)
	id1 := createSession(t, router)
	id2 := createSession(t, router)

	for i := 0; i < 3; i++ {
		doJSON(t, router, http.MethodPost,
			fmt.Sprintf("/api/sessions/%s/move", id1), map[string]int{"direction": 1}, nil)
	}

	var ship struct {
		ShipX int `json:"shipX"`
	}
	doJSON(t, router, http.MethodGet, "/api/sessions/"+id2+"/ship", nil, &ship)
	if want := (config.FieldWidth - config.ShipWidth) / 2; ship.ShipX != want {
		t.Fatalf("session 2 ship x = %d, want untouched %d", ship.ShipX, want)
	}
}
