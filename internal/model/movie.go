package model

import (
	"time"

	"github.com/google/uuid"
)

// MovieID is the external (TMDB) movie identifier.
type MovieID = int

type CandidateMovie struct {
	ID          MovieID
	Title       string
	ReleaseYear int
	Genres      []string
	Popularity  float64
	VoteAverage float64
	VoteCount   int
	PosterPath  string
	Overview    string

	// Provider names the movie streams on, filled lazily.
	Streaming []string
}

type Provider struct {
	ID       int
	Name     string
	LogoPath string
}

type MovieDetail struct {
	CandidateMovie
	Runtime       int
	Certification ContentRating
	Tagline       string
}

type DiscoverQuery struct {
	LikedGenres    []string
	DislikedGenres []string
	RatingCeiling  ContentRating
	MinVoteCount   int
	MinReleaseDate time.Time
}

type WatchlistItem struct {
	GroupID     uuid.UUID
	MovieID     MovieID
	Title       string
	PosterPath  string
	Genres      []string
	ReleaseYear int
	Popularity  float64
	AddedBy     uuid.UUID
	AddedAt     time.Time
}

func (w WatchlistItem) Candidate() CandidateMovie {
	return CandidateMovie{
		ID:          w.MovieID,
		Title:       w.Title,
		ReleaseYear: w.ReleaseYear,
		Genres:      w.Genres,
		Popularity:  w.Popularity,
		PosterPath:  w.PosterPath,
	}
}

type WatchedSource string

const (
	WatchedDirect WatchedSource = "direct"
	WatchedPick   WatchedSource = "pick"
)

type WatchedMovie struct {
	GroupID   uuid.UUID
	MovieID   MovieID
	Source    WatchedSource
	WatchedAt time.Time
}

// MergeWatched folds direct and pick-derived watched records into one entry per
// movie. Direct records win over pick-derived ones for the same movie.
func MergeWatched(direct, viaPicks []WatchedMovie) []WatchedMovie {
	seen := make(map[MovieID]struct{}, len(direct)+len(viaPicks))
	out := make([]WatchedMovie, 0, len(direct)+len(viaPicks))
	for _, w := range direct {
		if _, ok := seen[w.MovieID]; ok {
			continue
		}
		seen[w.MovieID] = struct{}{}
		out = append(out, w)
	}
	for _, w := range viaPicks {
		if _, ok := seen[w.MovieID]; ok {
			continue
		}
		seen[w.MovieID] = struct{}{}
		out = append(out, w)
	}
	return out
}
