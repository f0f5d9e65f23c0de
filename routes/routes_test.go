package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Dosada05/tabletennis/brackets"
	"github.com/Dosada05/tabletennis/handlers"
	"github.com/Dosada05/tabletennis/repositories/memory"
	"github.com/Dosada05/tabletennis/services"
)

var testNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	clock := func() time.Time { return testNow }
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := memory.NewStore().WithClock(clock)

	bracketService := services.NewBracketService(store, brackets.NewSeededShuffler(1), clock, logger)

	router := chi.NewRouter()
	SetupRoutes(
		router,
		[]string{"https://club.example"},
		handlers.NewHealthHandler(store),
		handlers.NewAssociationHandler(services.NewAssociationService(store)),
		handlers.NewPlayerHandler(services.NewPlayerService(store, nil, clock, logger)),
		handlers.NewTournamentHandler(services.NewTournamentService(store)),
		handlers.NewCategoryHandler(services.NewCategoryService(store)),
		handlers.NewTeamHandler(services.NewTeamService(store)),
		handlers.NewGroupHandler(services.NewGroupService(store), bracketService),
		handlers.NewMatchHandler(
			services.NewMatchService(store),
			services.NewSetResultService(store),
			services.NewOutcomeService(store, logger),
		),
		handlers.NewBracketHandler(bracketService),
		handlers.NewEnrollmentHandler(services.NewEnrollmentService(store, clock, logger)),
	)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv
}

// call sends body as JSON and decodes the response into out when it is set.
func call(t *testing.T, srv *httptest.Server, method, path string, body interface{}, wantStatus int, out interface{}) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		js, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		reader = bytes.NewReader(js)
	}
	req, err := http.NewRequest(method, srv.URL+path, reader)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status = %d, want %d, body %s", method, path, resp.StatusCode, wantStatus, raw)
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			t.Fatalf("%s %s: decode %s: %v", method, path, raw, err)
		}
	}
}

type idResponse struct {
	ID int `json:"id"`
}

func TestHealthz(t *testing.T) {
	srv := newServer(t)
	var body struct {
		Status string `json:"status"`
	}
	call(t, srv, http.MethodGet, "/healthz", nil, http.StatusOK, &body)
	if body.Status != "ok" {
		t.Errorf("status = %q", body.Status)
	}
}

func TestSinglesMatchLifecycle(t *testing.T) {
	srv := newServer(t)

	var tournament struct {
		Tournament idResponse `json:"tournament"`
	}
	call(t, srv, http.MethodPost, "/api/tournaments", map[string]interface{}{
		"name":               "Spring Open",
		"registration_start": "2026-03-01T00:00:00Z",
		"registration_end":   "2026-03-20T00:00:00Z",
		"start_date":         "2026-04-01T00:00:00Z",
		"end_date":           "2026-04-03T00:00:00Z",
		"available_tables":   4,
	}, http.StatusCreated, &tournament)

	var category struct {
		Category idResponse `json:"category"`
	}
	call(t, srv, http.MethodPost, "/api/categories", map[string]interface{}{
		"name": "Men Open", "age_min": 18, "age_max": 99, "gender": "M",
		"sets_per_match": 5, "points_per_set": 11,
	}, http.StatusCreated, &category)

	playerIDs := make([]int, 2)
	for i, name := range []string{"Fan Zhendong", "Timo Boll"} {
		var player struct {
			Player idResponse `json:"player"`
		}
		call(t, srv, http.MethodPost, "/api/players", map[string]interface{}{
			"name": name, "birth_date": "1990-05-01T00:00:00Z", "gender": "M",
		}, http.StatusCreated, &player)
		playerIDs[i] = player.Player.ID

		call(t, srv, http.MethodPost, "/api/enrollments", map[string]int{
			"player_id":     player.Player.ID,
			"tournament_id": tournament.Tournament.ID,
			"category_id":   category.Category.ID,
		}, http.StatusCreated, nil)
	}

	call(t, srv, http.MethodPost, "/api/enrollments", map[string]int{
		"player_id":     playerIDs[0],
		"tournament_id": tournament.Tournament.ID,
		"category_id":   category.Category.ID,
	}, http.StatusConflict, nil)

	var match struct {
		Match idResponse `json:"match"`
	}
	call(t, srv, http.MethodPost, "/api/matches", map[string]interface{}{
		"type":          "individual",
		"tournament_id": tournament.Tournament.ID,
		"category_id":   category.Category.ID,
		"scheduled_at":  "2026-04-01T10:00:00Z",
		"table_number":  2,
		"player1_id":    playerIDs[0],
		"player2_id":    playerIDs[1],
	}, http.StatusCreated, &match)
	matchPath := fmt.Sprintf("/api/matches/%d", match.Match.ID)

	call(t, srv, http.MethodPut, matchPath+"/schedule", map[string]int{"table_number": 9}, http.StatusUnprocessableEntity, nil)
	call(t, srv, http.MethodPost, matchPath+"/sets", map[string]int{"set_number": 2, "side1_points": 11, "side2_points": 3}, http.StatusUnprocessableEntity, nil)

	for set := 1; set <= 3; set++ {
		call(t, srv, http.MethodPost, matchPath+"/sets", map[string]int{
			"set_number": set, "side1_points": 11, "side2_points": 7,
		}, http.StatusCreated, nil)
	}

	var outcome struct {
		Outcome struct {
			Decided  bool `json:"decided"`
			WinnerID *int `json:"winner_id"`
		} `json:"outcome"`
	}
	call(t, srv, http.MethodGet, matchPath+"/outcome", nil, http.StatusOK, &outcome)
	if !outcome.Outcome.Decided || outcome.Outcome.WinnerID == nil || *outcome.Outcome.WinnerID != playerIDs[0] {
		t.Errorf("outcome = %+v, want player %d to win", outcome.Outcome, playerIDs[0])
	}

	call(t, srv, http.MethodPost, matchPath+"/sets", map[string]int{"set_number": 4, "side1_points": 11, "side2_points": 2}, http.StatusUnprocessableEntity, nil)

	var sets struct {
		Sets []json.RawMessage `json:"sets"`
	}
	call(t, srv, http.MethodGet, matchPath+"/sets", nil, http.StatusOK, &sets)
	if len(sets.Sets) != 3 {
		t.Errorf("got %d sets, want 3", len(sets.Sets))
	}

	var listed struct {
		Matches []idResponse `json:"matches"`
	}
	call(t, srv, http.MethodGet, fmt.Sprintf("/api/matches?tournament_id=%d&type=individual", tournament.Tournament.ID), nil, http.StatusOK, &listed)
	if len(listed.Matches) != 1 || listed.Matches[0].ID != match.Match.ID {
		t.Errorf("listed matches = %+v", listed.Matches)
	}
}

func TestEliminationBracketOverHTTP(t *testing.T) {
	srv := newServer(t)

	var tournament struct {
		Tournament idResponse `json:"tournament"`
	}
	call(t, srv, http.MethodPost, "/api/tournaments", map[string]interface{}{
		"name":               "Autumn Cup",
		"registration_start": "2026-03-01T00:00:00Z",
		"registration_end":   "2026-03-20T00:00:00Z",
		"start_date":         "2026-04-01T00:00:00Z",
		"end_date":           "2026-04-01T00:00:00Z",
		"available_tables":   2,
	}, http.StatusCreated, &tournament)

	var category struct {
		Category idResponse `json:"category"`
	}
	call(t, srv, http.MethodPost, "/api/categories", map[string]interface{}{
		"name": "Men Open", "age_min": 18, "age_max": 99, "gender": "M",
		"sets_per_match": 3, "points_per_set": 11,
	}, http.StatusCreated, &category)

	var ids []int
	for _, name := range []string{"A", "B", "C", "D"} {
		var player struct {
			Player idResponse `json:"player"`
		}
		call(t, srv, http.MethodPost, "/api/players", map[string]interface{}{
			"name": name, "birth_date": "1995-01-01T00:00:00Z", "gender": "M",
		}, http.StatusCreated, &player)
		ids = append(ids, player.Player.ID)
	}

	var firstRound struct {
		Matches []struct {
			ID    int     `json:"id"`
			Round *string `json:"round"`
		} `json:"matches"`
	}
	call(t, srv, http.MethodPost, "/api/brackets/elimination", map[string]interface{}{
		"tournament_id":   tournament.Tournament.ID,
		"category_id":     category.Category.ID,
		"type":            "individual",
		"participant_ids": ids,
	}, http.StatusCreated, &firstRound)
	if len(firstRound.Matches) != 2 {
		t.Fatalf("first round has %d matches, want 2", len(firstRound.Matches))
	}
	if r := firstRound.Matches[0].Round; r == nil || *r != "Round 1" {
		t.Errorf("round = %v, want Round 1", r)
	}

	var final struct {
		Matches []idResponse `json:"matches"`
	}
	call(t, srv, http.MethodPost, "/api/brackets/next-round", map[string]interface{}{
		"tournament_id": tournament.Tournament.ID,
		"category_id":   category.Category.ID,
		"type":          "individual",
		"round":         "Round 1",
	}, http.StatusCreated, &final)
	if len(final.Matches) != 1 {
		t.Fatalf("final has %d matches, want 1", len(final.Matches))
	}

	call(t, srv, http.MethodPost, "/api/brackets/next-round", map[string]interface{}{
		"tournament_id": tournament.Tournament.ID,
		"category_id":   category.Category.ID,
		"type":          "individual",
		"round":         "Round 2",
	}, http.StatusBadRequest, nil)
}

func TestErrorStatuses(t *testing.T) {
	srv := newServer(t)

	call(t, srv, http.MethodGet, "/api/players/999", nil, http.StatusNotFound, nil)
	call(t, srv, http.MethodGet, "/api/players/abc", nil, http.StatusBadRequest, nil)
	call(t, srv, http.MethodPost, "/api/players", map[string]string{"gender": "X"}, http.StatusUnprocessableEntity, nil)
	call(t, srv, http.MethodGet, "/api/matches?group_id=x", nil, http.StatusBadRequest, nil)
	call(t, srv, http.MethodPut, "/api/players/1/photo", nil, http.StatusBadRequest, nil)
}

func TestCORSPreflight(t *testing.T) {
	srv := newServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/players", nil)
	req.Header.Set("Origin", "https://club.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	defer resp.Body.Close()

	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://club.example" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}
