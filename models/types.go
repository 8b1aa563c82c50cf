package models

import "time"

// Window states
const (
	StateOpen   = "open"
	StateClosed = "closed"
)

// Abstain is the ballot choice for an explicit non-vote
const Abstain = "abstain"

// Voter roles
const (
	RoleVoter = "voter"
	RoleAdmin = "admin"
)

// Voter list filters
const (
	FilterAll      = "all"
	FilterVoted    = "voted"
	FilterNotVoted = "not-voted"
)

// Request types

// positionId -> candidateId or "abstain"
type SubmitBallotRequest struct {
	Ballots map[string]string `json:"ballots"`
}

type AddPositionRequest struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	AllowAbstain bool   `json:"allowAbstain"`
}

type AddCandidateRequest struct {
	PositionID string `json:"positionId"`
	Name       string `json:"name"`
	Bio        string `json:"bio"`
	Platform   string `json:"platform"`
	Photo      string `json:"photo"`
}

type SetWindowRequest struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
}

// Response types

type SubmitBallotResponse struct {
	Receipt Receipt `json:"receipt"`
}

type MyVoteResponse struct {
	HasVoted bool     `json:"hasVoted"`
	Receipt  *Receipt `json:"receipt,omitempty"`
}

type PositionsResponse struct {
	Positions []Position `json:"positions"`
}

type VotersResponse struct {
	Voters []Voter `json:"voters"`
}

// Domain types

type Voter struct {
	ID           string     `json:"id"`
	Role         string     `json:"role"`
	HasVoted     bool       `json:"hasVoted"`
	RegisteredAt time.Time  `json:"registeredAt"`
	VotedAt      *time.Time `json:"votedAt,omitempty"`
}

type Position struct {
	ID           string      `json:"id"`
	Title        string      `json:"title"`
	AllowAbstain bool        `json:"allowAbstain"`
	Candidates   []Candidate `json:"candidates"`
}

type Candidate struct {
	ID         string `json:"id"`
	PositionID string `json:"positionId"`
	Name       string `json:"name"`
	Bio        string `json:"bio"`
	Platform   string `json:"platform"`
	Photo      string `json:"photo"`
}

// Ballot is one voter's choice for one position. Never updated once stored.
type Ballot struct {
	VoterID    string    `json:"-"` // Never expose in JSON
	PositionID string    `json:"positionId"`
	Choice     string    `json:"choice"`
	CastAt     time.Time `json:"castAt"`
}

type Receipt struct {
	Token            string    `json:"token"`
	ConfirmationCode string    `json:"confirmationCode"`
	IssuedAt         time.Time `json:"issuedAt"`
	VoterID          string    `json:"-"`
	IPHash           string    `json:"-"`
	Client           string    `json:"-"`
}

// VotingWindow is the persisted schedule plus the last manual toggle.
type VotingWindow struct {
	StartsAt   *time.Time `json:"startsAt"`
	EndsAt     *time.Time `json:"endsAt"`
	Override   *bool      `json:"-"`
	OverrideAt *time.Time `json:"-"`
}

type WindowResponse struct {
	Open     bool       `json:"open"`
	State    string     `json:"state"`
	StartsAt *time.Time `json:"startsAt"`
	EndsAt   *time.Time `json:"endsAt"`
}

// Tally types

type CandidateResult struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Votes      int     `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type PositionResult struct {
	ID            string            `json:"id"`
	Title         string            `json:"title"`
	Candidates    []CandidateResult `json:"candidates"`
	AbstainCount  int               `json:"abstainCount"`
	OrphanedCount int               `json:"orphanedCount"`
	TotalBallots  int               `json:"totalBallots"`
	Winners       []string          `json:"winners"`
}

type Results struct {
	Positions   []PositionResult `json:"positions"`
	TotalVoters int              `json:"totalVoters"`
	ComputedAt  time.Time        `json:"computedAt"`
}

// TallyRow is one aggregated (position, choice) count from the ballot store.
type TallyRow struct {
	PositionID string
	Choice     string
	Count      int
}

type ElectionStats struct {
	Positions        int     `json:"positions"`
	Candidates       int     `json:"candidates"`
	RegisteredVoters int     `json:"registeredVoters"`
	VotedVoters      int     `json:"votedVoters"`
	Turnout          float64 `json:"turnout"`
	BallotsCast      int     `json:"ballotsCast"`
	Open             bool    `json:"open"`
}

// Error response

type ErrorResponse struct {
	Error     string   `json:"error"`
	Message   string   `json:"message,omitempty"`
	Code      string   `json:"code,omitempty"`
	Fields    []string `json:"fields,omitempty"`
	Retryable bool     `json:"retryable,omitempty"`
}
