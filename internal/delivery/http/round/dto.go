package http_round

import (
	"time"

	"github.com/google/uuid"
	http_common "github.com/humanbelnik/movienight/internal/delivery/http/common"
	"github.com/humanbelnik/movienight/internal/model"
	usecase_round "github.com/humanbelnik/movienight/internal/usecase/round"
)

// CreateRoundRequestDTO starts a voting round
type CreateRoundRequestDTO struct {
	// Empty means the whole group attends.
	Attendees []uuid.UUID `json:"attendees"`
	Exclude   []int       `json:"exclude" example:"949,680"`
}

type RoundDTO struct {
	ID        uuid.UUID   `json:"id"`
	GroupID   uuid.UUID   `json:"group_id"`
	Status    string      `json:"status" example:"voting"`
	StartedBy uuid.UUID   `json:"started_by"`
	Attendees []uuid.UUID `json:"attendees"`
	PickID    *uuid.UUID  `json:"pick_id,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
	ClosedAt  *time.Time  `json:"closed_at,omitempty"`
	WatchedAt *time.Time  `json:"watched_at,omitempty"`
	RatedAt   *time.Time  `json:"rated_at,omitempty"`
}

func ConvertFromRound(r model.Round) RoundDTO {
	attendees := r.Attendees
	if attendees == nil {
		attendees = []uuid.UUID{}
	}
	return RoundDTO{
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

type CreateRoundResponseDTO struct {
	Round                  RoundDTO                    `json:"round"`
	Suggestions            []http_common.SuggestionDTO `json:"suggestions"`
	RelaxedConstraints     []string                    `json:"relaxed_constraints"`
	WatchlistEligibleCount int                         `json:"watchlist_eligible_count" example:"2"`
}

type RoundsListResponseDTO struct {
	Rounds []RoundDTO `json:"rounds"`
	Total  int        `json:"total"`
}

type ProgressDTO struct {
	Voted int `json:"voted" example:"2"`
	Total int `json:"total" example:"3"`
}

type MovieTallyDTO struct {
	Suggestion http_common.SuggestionDTO `json:"suggestion"`
	Up         int                       `json:"up"`
	Down       int                       `json:"down"`
	UpVoters   []uuid.UUID               `json:"up_voters"`
	DownVoters []uuid.UUID               `json:"down_voters"`
}

type PickDTO struct {
	ID        uuid.UUID  `json:"id"`
	RoundID   uuid.UUID  `json:"round_id"`
	MovieID   int        `json:"movie_id" example:"949"`
	Title     string     `json:"title,omitempty" example:"Heat"`
	PickedBy  uuid.UUID  `json:"picked_by"`
	LockedAt  time.Time  `json:"locked_at"`
	Watched   bool       `json:"watched"`
	WatchedAt *time.Time `json:"watched_at,omitempty"`
}

func convertFromPick(p model.Pick, title string) PickDTO {
	return PickDTO{
		ID:        p.ID,
		RoundID:   p.RoundID,
		MovieID:   p.MovieID,
		Title:     title,
		PickedBy:  p.PickedBy,
		LockedAt:  p.LockedAt,
		Watched:   p.Watched,
		WatchedAt: p.WatchedAt,
	}
}

type RoundDetailResponseDTO struct {
	Round    RoundDTO        `json:"round"`
	Movies   []MovieTallyDTO `json:"movies"`
	Progress ProgressDTO     `json:"progress"`
	Pick     *PickDTO        `json:"pick,omitempty"`
}

func convertFromDetail(d usecase_round.Detail) RoundDetailResponseDTO {
	movies := make([]MovieTallyDTO, 0, len(d.Movies))
	for _, t := range d.Movies {
		movies = append(movies, MovieTallyDTO{
			Suggestion: http_common.ConvertFromSuggestions([]model.Suggestion{t.Suggestion})[0],
			Up:         t.Up,
			Down:       t.Down,
			UpVoters:   nonNilIDs(t.UpVoters),
			DownVoters: nonNilIDs(t.DownVoters),
		})
	}

	resp := RoundDetailResponseDTO{
		Round:    ConvertFromRound(d.Round),
		Movies:   movies,
		Progress: ProgressDTO{Voted: d.Progress.Voted, Total: d.Progress.Total},
	}
	if d.Pick != nil {
		p := convertFromPick(d.Pick.Pick, d.Pick.Title)
		resp.Pick = &p
	}
	return resp
}

// PickRequestDTO locks the movie the group will watch
type PickRequestDTO struct {
	MovieID int `json:"movie_id" binding:"required,min=1" example:"949"`
}

// StatusRequestDTO requests a lifecycle transition
type StatusRequestDTO struct {
	Status string `json:"status" binding:"required" example:"watched"`
}

func nonNilIDs(ids []uuid.UUID) []uuid.UUID {
	if ids == nil {
		return []uuid.UUID{}
	}
	return ids
}
