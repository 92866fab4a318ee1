package infra_postgres_round

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/lib/pq"
)

type roundDTO struct {
	ID        uuid.UUID      `db:"id"`
	GroupID   uuid.UUID      `db:"group_id"`
	Status    string         `db:"status"`
	StartedBy uuid.UUID      `db:"started_by"`
	Attendees pq.StringArray `db:"attendees"`
	PickID    *uuid.UUID     `db:"pick_id"`
	CreatedAt time.Time      `db:"created_at"`
	ClosedAt  *time.Time     `db:"closed_at"`
	WatchedAt *time.Time     `db:"watched_at"`
	RatedAt   *time.Time     `db:"rated_at"`
}

func (r *roundDTO) ToDomain() (model.Round, error) {
	attendees := make([]uuid.UUID, 0, len(r.Attendees))
	for _, raw := range r.Attendees {
		id, err := uuid.Parse(raw)
		if err != nil {
			return model.Round{}, fmt.Errorf("round %s has malformed attendee %q: %w", r.ID, raw, err)
		}
		attendees = append(attendees, id)
	}
	if len(attendees) == 0 {
		attendees = nil
	}

	return model.Round{
		ID:        r.ID,
		GroupID:   r.GroupID,
		Status:    model.NormalizeStatus(r.Status),
		StartedBy: r.StartedBy,
		Attendees: attendees,
		PickID:    r.PickID,
		CreatedAt: r.CreatedAt,
		ClosedAt:  r.ClosedAt,
		WatchedAt: r.WatchedAt,
		RatedAt:   r.RatedAt,
	}, nil
}

func roundFromDomain(r model.Round) roundDTO {
	attendees := make(pq.StringArray, 0, len(r.Attendees))
	for _, id := range r.Attendees {
		attendees = append(attendees, id.String())
	}
	return roundDTO{
		ID:        r.ID,
		GroupID:   r.GroupID,
		Status:    string(r.Status),
		StartedBy: r.StartedBy,
		Attendees: attendees,
		PickID:    r.PickID,
		CreatedAt: r.CreatedAt,
		ClosedAt:  r.ClosedAt,
		WatchedAt: r.WatchedAt,
		RatedAt:   r.RatedAt,
	}
}

type suggestionDTO struct {
	RoundID     uuid.UUID      `db:"round_id"`
	MovieID     int            `db:"movie_id"`
	Title       string         `db:"title"`
	ReleaseYear int            `db:"release_year"`
	Genres      pq.StringArray `db:"genres"`
	Popularity  float64        `db:"popularity"`
	VoteAverage float64        `db:"vote_average"`
	VoteCount   int            `db:"vote_count"`
	PosterPath  string         `db:"poster_path"`
	Overview    string         `db:"overview"`
	Streaming   pq.StringArray `db:"streaming"`
	Score       float64        `db:"score"`
	Reason      string         `db:"reason"`
	Source      string         `db:"source"`
	Position    int            `db:"position"`
}

func (s *suggestionDTO) ToDomain() model.Suggestion {
	return model.Suggestion{
		RoundID: s.RoundID,
		Movie: model.CandidateMovie{
			ID:          s.MovieID,
			Title:       s.Title,
			ReleaseYear: s.ReleaseYear,
			Genres:      []string(s.Genres),
			Popularity:  s.Popularity,
			VoteAverage: s.VoteAverage,
			VoteCount:   s.VoteCount,
			PosterPath:  s.PosterPath,
			Overview:    s.Overview,
			Streaming:   []string(s.Streaming),
		},
		Score:    s.Score,
		Reason:   s.Reason,
		Source:   model.SuggestionSource(s.Source),
		Position: s.Position,
	}
}

func suggestionFromDomain(s model.Suggestion) suggestionDTO {
	return suggestionDTO{
		RoundID:     s.RoundID,
		MovieID:     s.Movie.ID,
		Title:       s.Movie.Title,
		ReleaseYear: s.Movie.ReleaseYear,
		Genres:      pq.StringArray(nonNil(s.Movie.Genres)),
		Popularity:  s.Movie.Popularity,
		VoteAverage: s.Movie.VoteAverage,
		VoteCount:   s.Movie.VoteCount,
		PosterPath:  s.Movie.PosterPath,
		Overview:    s.Movie.Overview,
		Streaming:   pq.StringArray(nonNil(s.Movie.Streaming)),
		Score:       s.Score,
		Reason:      s.Reason,
		Source:      string(s.Source),
		Position:    s.Position,
	}
}

type pickDTO struct {
	ID        uuid.UUID  `db:"id"`
	RoundID   uuid.UUID  `db:"round_id"`
	GroupID   uuid.UUID  `db:"group_id"`
	MovieID   int        `db:"movie_id"`
	PickedBy  uuid.UUID  `db:"picked_by"`
	LockedAt  time.Time  `db:"locked_at"`
	Watched   bool       `db:"watched"`
	WatchedAt *time.Time `db:"watched_at"`
}

func (p *pickDTO) ToDomain() model.Pick {
	return model.Pick{
		ID:        p.ID,
		RoundID:   p.RoundID,
		GroupID:   p.GroupID,
		MovieID:   p.MovieID,
		PickedBy:  p.PickedBy,
		LockedAt:  p.LockedAt,
		Watched:   p.Watched,
		WatchedAt: p.WatchedAt,
	}
}

func pickFromDomain(p model.Pick) pickDTO {
	return pickDTO{
		ID:        p.ID,
		RoundID:   p.RoundID,
		GroupID:   p.GroupID,
		MovieID:   p.MovieID,
		PickedBy:  p.PickedBy,
		LockedAt:  p.LockedAt,
		Watched:   p.Watched,
		WatchedAt: p.WatchedAt,
	}
}

// pq encodes a nil slice as NULL, which the NOT NULL array columns reject.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
