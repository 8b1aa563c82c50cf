// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-ballot/auth"
	"github.com/danielhkuo/campus-ballot/cliparse"
	"github.com/danielhkuo/campus-ballot/db"
	"github.com/danielhkuo/campus-ballot/election"
	"github.com/danielhkuo/campus-ballot/metrics"
	"github.com/danielhkuo/campus-ballot/models"
	"github.com/danielhkuo/campus-ballot/store"
)

// SetupTestDB creates a fresh database with the full schema. SQLite in a
// temp dir by default; set TEST_DATABASE_URL to run against PostgreSQL.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	if url := os.Getenv("TEST_DATABASE_URL"); url != "" {
		conn, err := db.Open(db.TypePostgres, url)
		require.NoError(t, err, "Failed to open test database")
		_, err = conn.Exec(`
			DROP TABLE IF EXISTS receipt CASCADE;
			DROP TABLE IF EXISTS ballot CASCADE;
			DROP TABLE IF EXISTS voter CASCADE;
			DROP TABLE IF EXISTS candidate CASCADE;
			DROP TABLE IF EXISTS position CASCADE;
			DROP TABLE IF EXISTS election_window CASCADE;
		`)
		require.NoError(t, err, "Failed to clean database")
		require.NoError(t, db.CreateSchema(conn), "Failed to create schema")
		t.Cleanup(func() { conn.Close() })
		return conn
	}

	conn, err := db.Open(db.TypeSQLite, filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err, "Failed to open test database")
	require.NoError(t, db.CreateSchema(conn), "Failed to create schema")
	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:               3318,
		DatabaseType:       db.TypeSQLite,
		DatabaseURL:        "test.db",
		AdminKeySalt:       "test-admin-salt",
		ReceiptSalt:        "test-receipt-salt",
		VoterTokenSecret:   "test-token-secret",
		ElectionID:         "test-election",
		RequireVoterID:     true,
		WindowPollInterval: time.Second,
	}
}

// Clock is a settable time source shared by every component under test.
type Clock struct {
	mu  sync.Mutex
	now time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)}
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Election bundles a service with its store and clock.
type Election struct {
	*election.Service
	DB      *sql.DB
	Store   *store.Store
	Metrics *metrics.Metrics
	Clock   *Clock
}

// NewElection builds a service over a fresh database.
func NewElection(t *testing.T, cfg cliparse.Config) *Election {
	t.Helper()

	conn := SetupTestDB(t)
	st := store.New(conn)
	m := metrics.New()
	clock := NewClock()

	svc, err := election.New(context.Background(), st, m, election.Options{
		ReceiptSalt: cfg.ReceiptSalt,
		Now:         clock.Now,
	})
	require.NoError(t, err, "Failed to create election")
	return &Election{Service: svc, DB: conn, Store: st, Metrics: m, Clock: clock}
}

// Position builds a fixture position whose candidates take the given ids.
func Position(id, title string, allowAbstain bool, candidateIDs ...string) models.Position {
	p := models.Position{ID: id, Title: title, AllowAbstain: allowAbstain}
	for _, cid := range candidateIDs {
		p.Candidates = append(p.Candidates, models.Candidate{
			ID:         cid,
			PositionID: id,
			Name:       "Candidate " + cid,
		})
	}
	return p
}

// SeedRoster writes positions and candidates straight to the store.
func SeedRoster(t *testing.T, e *Election, positions ...models.Position) {
	t.Helper()

	require.NoError(t, e.Store.InsertRoster(context.Background(), positions), "Failed to create test roster")
}

// OpenVoting toggles the window open.
func OpenVoting(t *testing.T, e *Election) {
	t.Helper()
	if e.Session.IsOpen() {
		return
	}
	_, err := e.Session.Toggle(context.Background())
	require.NoError(t, err, "Failed to open voting")
}

// Vote submits a ballot set and fails the test on error.
func Vote(t *testing.T, e *Election, voterID string, ballots map[string]string) models.Receipt {
	t.Helper()
	r, err := e.Submitter.Submit(context.Background(), election.Submission{VoterID: voterID, Ballots: ballots})
	require.NoError(t, err, "Failed to submit ballots for %s", voterID)
	return r
}

// VoterToken issues a voter token the way the identity provider would.
func VoterToken(t *testing.T, cfg cliparse.Config, studentID string) string {
	t.Helper()
	token, err := auth.IssueToken(cfg.VoterTokenSecret, auth.Claims{
		Role:             models.RoleVoter,
		StudentID:        studentID,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "user-" + studentID},
	}, time.Hour)
	require.NoError(t, err, "Failed to issue voter token")
	return token
}

// AdminToken issues an admin token.
func AdminToken(t *testing.T, cfg cliparse.Config) string {
	t.Helper()
	token, err := auth.IssueToken(cfg.VoterTokenSecret, auth.Claims{
		Role:             models.RoleAdmin,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "registrar"},
	}, time.Hour)
	require.NoError(t, err, "Failed to issue admin token")
	return token
}

// BearerHeader builds the Authorization header map for MakeRequest.
func BearerHeader(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body interface{}, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	assert.Equal(t, expected, w.Code, "Body: %s", w.Body.String())
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(w.Body).Decode(v), "Failed to decode JSON response")
}
