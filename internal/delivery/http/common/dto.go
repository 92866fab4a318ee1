package http_common

import (
	"github.com/humanbelnik/movienight/internal/model"
)

type MovieDTO struct {
	ID          int      `json:"id" example:"949"`
	Title       string   `json:"title" example:"Heat"`
	ReleaseYear int      `json:"release_year" example:"1995"`
	Genres      []string `json:"genres" example:"Crime,Drama"`
	Popularity  float64  `json:"popularity" example:"51.3"`
	VoteAverage float64  `json:"vote_average" example:"7.9"`
	VoteCount   int      `json:"vote_count" example:"7021"`
	PosterPath  string   `json:"poster_path" example:"/umSVjVdbVwtx5ryCA2QXL44Durm.jpg"`
	Overview    string   `json:"overview"`
	Streaming   []string `json:"streaming" example:"Netflix"`
}

func ConvertFromMovie(m model.CandidateMovie) MovieDTO {
	return MovieDTO{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseYear: m.ReleaseYear,
		Genres:      nonNil(m.Genres),
		Popularity:  m.Popularity,
		VoteAverage: m.VoteAverage,
		VoteCount:   m.VoteCount,
		PosterPath:  m.PosterPath,
		Overview:    m.Overview,
		Streaming:   nonNil(m.Streaming),
	}
}

type SuggestionDTO struct {
	Movie    MovieDTO `json:"movie"`
	Score    float64  `json:"score" example:"0.82"`
	Reason   string   `json:"reason" example:"Matches Crime and Drama"`
	Source   string   `json:"source" example:"algorithm"`
	Position int      `json:"position" example:"0"`
}

func ConvertFromSuggestions(suggestions []model.Suggestion) []SuggestionDTO {
	out := make([]SuggestionDTO, 0, len(suggestions))
	for _, s := range suggestions {
		out = append(out, SuggestionDTO{
			Movie:    ConvertFromMovie(s.Movie),
			Score:    s.Score,
			Reason:   s.Reason,
			Source:   string(s.Source),
			Position: s.Position,
		})
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
