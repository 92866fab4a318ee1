package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type RoundStatus string

const (
	StatusVoting    RoundStatus = "voting"
	StatusClosed    RoundStatus = "closed"
	StatusSelected  RoundStatus = "selected"
	StatusWatched   RoundStatus = "watched"
	StatusRated     RoundStatus = "rated"
	StatusDiscarded RoundStatus = "discarded"

	legacyStatusPicked = "picked"
)

// NormalizeStatus maps a persisted status onto the current vocabulary.
// Every read path goes through it so old rows stored as "picked" read as selected.
// TODO: drop the picked mapping once rounds.status has been backfilled.
func NormalizeStatus(s string) RoundStatus {
	if s == legacyStatusPicked {
		return StatusSelected
	}
	return RoundStatus(s)
}

func (s RoundStatus) Valid() bool {
	switch s {
	case StatusVoting, StatusClosed, StatusSelected, StatusWatched, StatusRated, StatusDiscarded:
		return true
	}
	return false
}

type Round struct {
	ID        uuid.UUID
	GroupID   uuid.UUID
	Status    RoundStatus
	StartedBy uuid.UUID

	// Empty means every group member attends.
	Attendees []uuid.UUID
	PickID    *uuid.UUID

	CreatedAt time.Time
	ClosedAt  *time.Time
	WatchedAt *time.Time
	RatedAt   *time.Time
}

func (r Round) HasAttendees() bool {
	return len(r.Attendees) > 0
}

func (r Round) IsAttendee(memberID uuid.UUID) bool {
	return slices.Contains(r.Attendees, memberID)
}

func (r Round) CanAcceptVotes() bool {
	return r.Status == StatusVoting
}

func (r Round) CanAcceptRatings() bool {
	return r.Status == StatusSelected || r.Status == StatusWatched
}

type SuggestionSource string

const (
	SourceAlgorithm SuggestionSource = "algorithm"
	SourceWatchlist SuggestionSource = "watchlist"
)

type Suggestion struct {
	RoundID  uuid.UUID
	Movie    CandidateMovie
	Score    float64
	Reason   string
	Source   SuggestionSource
	Position int
}

func FindSuggestion(suggestions []Suggestion, movieID MovieID) (Suggestion, bool) {
	for _, s := range suggestions {
		if s.Movie.ID == movieID {
			return s, true
		}
	}
	return Suggestion{}, false
}

type Pick struct {
	ID        uuid.UUID
	RoundID   uuid.UUID
	GroupID   uuid.UUID
	MovieID   MovieID
	PickedBy  uuid.UUID
	LockedAt  time.Time
	Watched   bool
	WatchedAt *time.Time
}
