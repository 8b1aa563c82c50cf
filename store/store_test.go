// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielhkuo/campus-ballot/models"
	"github.com/danielhkuo/campus-ballot/store"
	"github.com/danielhkuo/campus-ballot/testutil"
)

func newStore(t *testing.T) *store.Store {
	t.Helper()
	clock := testutil.NewClock()
	return store.New(testutil.SetupTestDB(t)).WithClock(clock.Now)
}

func seed(t *testing.T, st *store.Store, positions ...models.Position) {
	t.Helper()
	ctx := context.Background()
	for _, p := range positions {
		require.NoError(t, st.InsertPosition(ctx, p))
		for _, c := range p.Candidates {
			require.NoError(t, st.InsertCandidate(ctx, c))
		}
	}
}

func receipt(voterID, token string) models.Receipt {
	return models.Receipt{
		Token:            token,
		ConfirmationCode: "code-" + token,
		IssuedAt:         time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC),
		VoterID:          voterID,
	}
}

func TestRosterRoundTrip(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	seed(t, st,
		testutil.Position("president", "President", true, "p1", "p2"),
		testutil.Position("secretary", "Secretary", false, "s1"),
	)

	positions, err := st.ListPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 2)

	assert.Equal(t, "president", positions[0].ID)
	assert.True(t, positions[0].AllowAbstain)
	require.Len(t, positions[0].Candidates, 2)
	assert.Equal(t, "p1", positions[0].Candidates[0].ID)
	assert.Equal(t, "p2", positions[0].Candidates[1].ID)

	assert.Equal(t, "secretary", positions[1].ID)
	assert.False(t, positions[1].AllowAbstain)
	require.Len(t, positions[1].Candidates, 1)

	exists, err := st.PositionExists(ctx, "secretary")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = st.PositionExists(ctx, "treasurer")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInsertPositionDuplicate(t *testing.T) {
	st := newStore(t)
	seed(t, st, testutil.Position("president", "President", false))

	err := st.InsertPosition(context.Background(), models.Position{ID: "president", Title: "Again"})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestInsertRoster(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	roster := []models.Position{
		testutil.Position("president", "President", true, "p1", "p2"),
		testutil.Position("secretary", "Secretary", false, "s1"),
	}
	require.NoError(t, st.InsertRoster(ctx, roster))

	positions, err := st.ListPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 2)
	assert.Equal(t, "secretary", positions[1].ID)
	require.Len(t, positions[0].Candidates, 2)
	assert.Equal(t, "president", positions[0].Candidates[1].PositionID)
}

func TestInsertRosterRollsBack(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	roster := []models.Position{
		testutil.Position("president", "President", true, "p1"),
		testutil.Position("secretary", "Secretary", false, "p1"),
	}
	err := st.InsertRoster(ctx, roster)
	require.ErrorIs(t, err, store.ErrConflict)

	positions, err := st.ListPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)

	exists, err := st.PositionExists(ctx, "president")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCandidateLookupAndDelete(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	seed(t, st, testutil.Position("president", "President", false, "p1", "p2"))

	c, err := st.GetCandidate(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, "president", c.PositionID)
	assert.Equal(t, "Candidate p1", c.Name)

	_, err = st.GetCandidate(ctx, "nobody")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, st.DeleteCandidate(ctx, "p1"))
	require.NoError(t, st.DeleteCandidate(ctx, "p1"))
	require.NoError(t, st.DeleteCandidate(ctx, "nobody"))

	_, err = st.GetCandidate(ctx, "p1")
	assert.ErrorIs(t, err, store.ErrNotFound)

	positions, err := st.ListPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions[0].Candidates, 1)
	assert.Equal(t, "p2", positions[0].Candidates[0].ID)
}

func TestSubmitBallots(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	seed(t, st,
		testutil.Position("president", "President", true, "p1", "p2"),
		testutil.Position("secretary", "Secretary", false, "s1"),
	)

	ballots := []models.Ballot{
		{PositionID: "president", Choice: "p1"},
		{PositionID: "secretary", Choice: "s1"},
	}
	require.NoError(t, st.SubmitBallots(ctx, "s123", ballots, receipt("s123", "tok-1")))

	voted, err := st.HasVoted(ctx, "s123")
	require.NoError(t, err)
	assert.True(t, voted)

	stored, err := st.BallotsFor(ctx, "s123")
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	r, err := st.GetReceipt(ctx, "s123")
	require.NoError(t, err)
	assert.Equal(t, "tok-1", r.Token)
	assert.Equal(t, "code-tok-1", r.ConfirmationCode)

	v, err := st.GetVoter(ctx, "s123")
	require.NoError(t, err)
	assert.True(t, v.HasVoted)
	require.NotNil(t, v.VotedAt)

	t.Run("second submission conflicts and writes nothing", func(t *testing.T) {
		err := st.SubmitBallots(ctx, "s123", []models.Ballot{
			{PositionID: "president", Choice: "p2"},
			{PositionID: "secretary", Choice: "s1"},
		}, receipt("s123", "tok-2"))
		assert.ErrorIs(t, err, store.ErrConflict)

		stored, err := st.BallotsFor(ctx, "s123")
		require.NoError(t, err)
		for _, b := range stored {
			if b.PositionID == "president" {
				assert.Equal(t, "p1", b.Choice)
			}
		}
		n, err := st.CountReceipts(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}

func TestSubmitBallotsRollsBack(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	seed(t, st, testutil.Position("president", "President", false, "p1"))

	// Duplicate position in one set trips the ballot primary key mid-transaction.
	err := st.SubmitBallots(ctx, "s1", []models.Ballot{
		{PositionID: "president", Choice: "p1"},
		{PositionID: "president", Choice: "p1"},
	}, receipt("s1", "tok-1"))
	require.Error(t, err)

	voted, err := st.HasVoted(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, voted)

	n, err := st.CountBallots(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = st.GetReceipt(ctx, "s1")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestTallyCounts(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	seed(t, st, testutil.Position("president", "President", true, "p1", "p2"))

	choices := map[string]string{"v1": "p1", "v2": "p1", "v3": "p2", "v4": models.Abstain}
	for voter, choice := range choices {
		require.NoError(t, st.SubmitBallots(ctx, voter,
			[]models.Ballot{{PositionID: "president", Choice: choice}},
			receipt(voter, "tok-"+voter)))
	}

	rows, err := st.TallyCounts(ctx)
	require.NoError(t, err)

	got := map[string]int{}
	for _, r := range rows {
		assert.Equal(t, "president", r.PositionID)
		got[r.Choice] = r.Count
	}
	assert.Equal(t, map[string]int{"p1": 2, "p2": 1, models.Abstain: 1}, got)
}

func TestVoters(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()
	seed(t, st, testutil.Position("president", "President", false, "p1"))

	require.NoError(t, st.EnsureVoter(ctx, "a", models.RoleVoter))
	require.NoError(t, st.EnsureVoter(ctx, "b", models.RoleVoter))
	require.NoError(t, st.EnsureVoter(ctx, "b", models.RoleVoter))
	require.NoError(t, st.EnsureVoter(ctx, "admin", models.RoleAdmin))
	require.NoError(t, st.SubmitBallots(ctx, "a",
		[]models.Ballot{{PositionID: "president", Choice: "p1"}}, receipt("a", "tok-a")))

	registered, voted, err := st.VoterCounts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, registered)
	assert.Equal(t, 1, voted)

	all, err := st.ListVoters(ctx, models.FilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	done, err := st.ListVoters(ctx, models.FilterVoted)
	require.NoError(t, err)
	require.Len(t, done, 1)
	assert.Equal(t, "a", done[0].ID)

	pending, err := st.ListVoters(ctx, models.FilterNotVoted)
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	_, err = st.GetVoter(ctx, "ghost")
	assert.ErrorIs(t, err, store.ErrNotFound)

	voted2, err := st.HasVoted(ctx, "ghost")
	require.NoError(t, err)
	assert.False(t, voted2)
}

func TestWindowRecord(t *testing.T) {
	st := newStore(t)
	ctx := context.Background()

	w, err := st.GetWindow(ctx)
	require.NoError(t, err)
	assert.Nil(t, w.StartsAt)
	assert.Nil(t, w.Override)

	start := time.Date(2025, 3, 10, 8, 0, 0, 0, time.UTC)
	end := start.Add(10 * time.Hour)
	open := true
	require.NoError(t, st.SaveWindow(ctx, models.VotingWindow{StartsAt: &start, EndsAt: &end, Override: &open, OverrideAt: &start}))

	w, err = st.GetWindow(ctx)
	require.NoError(t, err)
	require.NotNil(t, w.StartsAt)
	require.NotNil(t, w.EndsAt)
	require.NotNil(t, w.Override)
	assert.True(t, w.StartsAt.Equal(start))
	assert.True(t, w.EndsAt.Equal(end))
	assert.True(t, *w.Override)

	require.NoError(t, st.SaveWindow(ctx, models.VotingWindow{StartsAt: &start, EndsAt: &end}))
	w, err = st.GetWindow(ctx)
	require.NoError(t, err)
	assert.Nil(t, w.Override)
	assert.Nil(t, w.OverrideAt)
}
