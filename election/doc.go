// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package election holds the rules of a campus election.

# Components

  - Session: the voting window. Open or closed is decided by the latest of
    the scheduled start, the scheduled end and the last manual toggle.
  - Registry: positions and candidates. Frozen while the window is open.
  - Submitter: accepts one complete ballot set per voter, atomically.
  - Tally: per-position counts, percentages and winners, derived from the
    stored ballots on every call.

Service wires the four over a *store.Store:

	svc, err := election.New(ctx, store.New(conn), metrics.New(), election.Options{
		ReceiptSalt: cfg.ReceiptSalt,
	})

# Submission Order

Submit checks, and reports the first failure of:

 1. window open (ErrVotingClosed)
 2. voter has not voted (ErrAlreadyVoted)
 3. every position has an entry (IncompleteBallotError)
 4. every entry names a candidate of that position, or abstain where
    allowed (InvalidChoiceError)

A rejected set writes nothing. Two concurrent sets from one voter resolve
to exactly one success; the other gets ErrAlreadyVoted.

# Ties and Orphans

Every candidate sharing the top count is a winner. A position with no
candidate votes has no winner. Ballots for a removed candidate stay stored
and are reported as OrphanedCount; they count toward the position total
used for percentages.
*/
package election
