package model

import (
	"time"

	"github.com/google/uuid"
)

type RatingValue string

const (
	RatingLoved      RatingValue = "loved"
	RatingLiked      RatingValue = "liked"
	RatingDidNotLike RatingValue = "did_not_like"
)

func (v RatingValue) Valid() bool {
	switch v {
	case RatingLoved, RatingLiked, RatingDidNotLike:
		return true
	}
	return false
}

type Rating struct {
	RoundID  uuid.UUID
	MemberID uuid.UUID
	Value    RatingValue
	RatedAt  time.Time
}

// RatingEntry is one roster line: an attendee and, if present, their rating.
type RatingEntry struct {
	MemberID    uuid.UUID
	DisplayName string
	Value       *RatingValue
	RatedAt     *time.Time
}

type SessionView struct {
	RoundID uuid.UUID
	Ratings []RatingEntry
}
