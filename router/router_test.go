// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-ballot/auth"
	"github.com/danielhkuo/campus-ballot/models"
	"github.com/danielhkuo/campus-ballot/testutil"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *testutil.Election) {
	t.Helper()
	cfg := testutil.GetTestConfig()
	e := testutil.NewElection(t, cfg)
	return NewRouter(e.Service, cfg, e.Metrics), e
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "OK", w.Body.String())
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "campus-ballot API v1", w.Body.String())
}

func TestUnknownPath(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/polls/abc", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "campus_ballot_voting_window_open")
}

func TestRouteAuth(t *testing.T) {
	mux, _ := newTestRouter(t)

	// Without credentials the guarded routes must refuse before reaching
	// the handler; public routes must answer.
	testCases := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{"GET", "/positions", http.StatusOK},
		{"GET", "/voting-window", http.StatusOK},
		{"GET", "/results", http.StatusOK},
		{"GET", "/candidates/nobody", http.StatusNotFound},
		{"POST", "/votes", http.StatusUnauthorized},
		{"GET", "/votes/me", http.StatusUnauthorized},
		{"POST", "/voting-window/toggle", http.StatusUnauthorized},
		{"PUT", "/voting-window", http.StatusUnauthorized},
		{"POST", "/positions", http.StatusUnauthorized},
		{"POST", "/candidates", http.StatusUnauthorized},
		{"DELETE", "/candidates/p1", http.StatusUnauthorized},
		{"GET", "/admin/stats", http.StatusUnauthorized},
		{"GET", "/admin/voters", http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			assert.Equal(t, tc.expectedStatus, w.Code, "Body: %s", w.Body.String())
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("DELETE", "/results", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

// TestElectionWorkflow drives a full election through the router:
// 1. Admin builds the roster
// 2. Admin opens voting
// 3. Voters submit ballots, one tries twice
// 4. Results stay sealed while open
// 5. Admin closes voting
// 6. Results show the tally
func TestElectionWorkflow(t *testing.T) {
	cfg := testutil.GetTestConfig()
	e := testutil.NewElection(t, cfg)
	mux := NewRouter(e.Service, cfg, e.Metrics)
	admin := map[string]string{"X-Admin-Key": auth.GenerateAdminKey(cfg.ElectionID, cfg.AdminKeySalt)}

	do := func(method, path string, body interface{}, headers map[string]string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, testutil.MakeRequest(method, path, body, headers))
		return w
	}

	// Step 1
	w := do("POST", "/positions", models.AddPositionRequest{ID: "president", Title: "President", AllowAbstain: true}, admin)
	testutil.AssertStatus(t, w, http.StatusCreated)

	var ids []string
	for _, name := range []string{"Ada", "Grace"} {
		w = do("POST", "/candidates", models.AddCandidateRequest{PositionID: "president", Name: name}, admin)
		testutil.AssertStatus(t, w, http.StatusCreated)
		var c models.Candidate
		testutil.AssertJSON(t, w, &c)
		ids = append(ids, c.ID)
	}

	w = do("GET", "/positions", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var positions models.PositionsResponse
	testutil.AssertJSON(t, w, &positions)
	require.Len(t, positions.Positions, 1, "Step 1 - roster")
	require.Len(t, positions.Positions[0].Candidates, 2, "Step 1 - roster")

	// Step 2
	w = do("POST", "/voting-window/toggle", nil, admin)
	testutil.AssertStatus(t, w, http.StatusOK)
	var window models.WindowResponse
	testutil.AssertJSON(t, w, &window)
	require.True(t, window.Open, "Step 2 - voting open")

	// Step 3
	votes := map[string]string{"s1": ids[0], "s2": ids[0], "s3": ids[1], "s4": models.Abstain}
	for student, choice := range votes {
		w = do("POST", "/votes", models.SubmitBallotRequest{Ballots: map[string]string{"president": choice}},
			testutil.BearerHeader(testutil.VoterToken(t, cfg, student)))
		testutil.AssertStatus(t, w, http.StatusCreated)
	}
	w = do("POST", "/votes", models.SubmitBallotRequest{Ballots: map[string]string{"president": ids[1]}},
		testutil.BearerHeader(testutil.VoterToken(t, cfg, "s1")))
	testutil.AssertStatus(t, w, http.StatusConflict)

	// Step 4
	w = do("GET", "/results", nil, nil)
	testutil.AssertStatus(t, w, http.StatusForbidden)
	w = do("GET", "/results", nil, admin)
	testutil.AssertStatus(t, w, http.StatusOK)

	// Step 5
	w = do("POST", "/voting-window/toggle", nil, admin)
	testutil.AssertStatus(t, w, http.StatusOK)

	w = do("POST", "/votes", models.SubmitBallotRequest{Ballots: map[string]string{"president": ids[1]}},
		testutil.BearerHeader(testutil.VoterToken(t, cfg, "s5")))
	testutil.AssertStatus(t, w, http.StatusForbidden)

	// Step 6
	w = do("GET", "/results", nil, nil)
	testutil.AssertStatus(t, w, http.StatusOK)
	var results models.Results
	testutil.AssertJSON(t, w, &results)

	assert.Equal(t, 4, results.TotalVoters, "Step 6 - voters")
	require.Len(t, results.Positions, 1)
	pres := results.Positions[0]
	require.Len(t, pres.Candidates, 2)
	assert.Equal(t, 2, pres.Candidates[0].Votes, "Step 6 - tally")
	assert.Equal(t, 1, pres.Candidates[1].Votes, "Step 6 - tally")
	assert.Equal(t, 1, pres.AbstainCount, "Step 6 - tally")
	assert.Equal(t, []string{ids[0]}, pres.Winners, "Step 6 - winner")
	assert.InDelta(t, 50.0, pres.Candidates[0].Percentage, 0.001, "Step 6 - percentage")
}
