package model

import (
	"time"

	"github.com/google/uuid"
)

type VoteValue string

const (
	VoteUp   VoteValue = "up"
	VoteDown VoteValue = "down"
)

func (v VoteValue) Valid() bool {
	return v == VoteUp || v == VoteDown
}

type Vote struct {
	RoundID uuid.UUID
	MovieID MovieID
	VoterID uuid.UUID
	Value   VoteValue
	VotedAt time.Time
}

type VoteProgress struct {
	Voted int
	Total int
}

type RankedMovie struct {
	MovieID    MovieID
	Title      string
	Up         int
	Down       int
	NetScore   int
	Popularity float64
	Source     SuggestionSource
	Rank       int
	Tied       bool
}

// MovieTally is a suggestion joined with its live votes.
type MovieTally struct {
	Suggestion Suggestion
	Up         int
	Down       int
	UpVoters   []uuid.UUID
	DownVoters []uuid.UUID
}
