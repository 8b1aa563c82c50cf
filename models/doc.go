// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines request, response, and domain types for the API.

# Request Types

  - SubmitBallotRequest: ballots (positionId → candidateId or "abstain")
  - AddCandidateRequest: positionId, name, bio, platform, photo
  - SetWindowRequest: startsAt, endsAt

# Response Types

  - SubmitBallotResponse: receipt
  - MyVoteResponse: hasVoted, receipt
  - PositionsResponse, VotersResponse, WindowResponse
  - ErrorResponse: error, message, code, fields, retryable

# Domain Types

  - Voter: identity, role and the one-shot hasVoted flag
  - Position / Candidate: the election roster
  - Ballot: one voter's choice for one position
  - Receipt: proof of submission
  - VotingWindow: schedule plus manual override
  - Results / PositionResult / CandidateResult: derived tallies

# Constants

	StateOpen   = "open"
	StateClosed = "closed"
	Abstain     = "abstain"
	RoleVoter   = "voter"
	RoleAdmin   = "admin"
*/
package models
