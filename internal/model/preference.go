package model

import (
	"slices"
	"time"

	"github.com/google/uuid"
)

type ContentRating string

const (
	ContentRatingG    ContentRating = "G"
	ContentRatingPG   ContentRating = "PG"
	ContentRatingPG13 ContentRating = "PG-13"
	ContentRatingR    ContentRating = "R"
)

// Ordered from the most permissive audience to the strictest restriction.
var contentRatingScale = []ContentRating{
	ContentRatingG,
	ContentRatingPG,
	ContentRatingPG13,
	ContentRatingR,
}

// Index returns the position on the G < PG < PG-13 < R scale or -1.
func (r ContentRating) Index() int {
	return slices.Index(contentRatingScale, r)
}

func (r ContentRating) Valid() bool {
	return r.Index() >= 0
}

// StricterRating returns the lower of two ceilings. Unknown values lose.
func StricterRating(a, b ContentRating) ContentRating {
	switch {
	case !a.Valid():
		return b
	case !b.Valid():
		return a
	case a.Index() <= b.Index():
		return a
	default:
		return b
	}
}

type Preference struct {
	GroupID          uuid.UUID
	MemberID         uuid.UUID
	LikedGenres      []string
	DislikedGenres   []string
	MaxContentRating ContentRating
	UpdatedAt        time.Time
}

type TasteProfile struct {
	LikedGenres    []string
	DislikedGenres []string
	ContentCeiling ContentRating
}

func (p TasteProfile) Likes(genre string) bool {
	return slices.Contains(p.LikedGenres, genre)
}

// KnownGenres is the closed genre vocabulary members can pick from.
var KnownGenres = []string{
	"Action",
	"Adventure",
	"Animation",
	"Comedy",
	"Crime",
	"Documentary",
	"Drama",
	"Family",
	"Fantasy",
	"History",
	"Horror",
	"Music",
	"Mystery",
	"Romance",
	"Science Fiction",
	"Thriller",
	"War",
	"Western",
}

func IsKnownGenre(g string) bool {
	return slices.Contains(KnownGenres, g)
}
