package http_vote

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/humanbelnik/movienight/internal/delivery/http/common"
	ws_group "github.com/humanbelnik/movienight/internal/delivery/ws/group"
	"github.com/humanbelnik/movienight/internal/model"
	usecase_vote "github.com/humanbelnik/movienight/internal/usecase/vote"
)

type Usecase interface {
	Vote(ctx context.Context, roundID uuid.UUID, movieID model.MovieID, voterID uuid.UUID, value model.VoteValue) (model.Vote, error)
	Results(ctx context.Context, roundID uuid.UUID) (usecase_vote.Results, error)
	ViewResults(ctx context.Context, roundID, viewerID uuid.UUID) (usecase_vote.Results, error)
}

type Publisher interface {
	Broadcast(groupID uuid.UUID, eventType ws_group.EventType, data map[string]any)
}

type Controller struct {
	uc   Usecase
	hub  Publisher
	auth gin.HandlerFunc

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(uc Usecase, hub Publisher, auth gin.HandlerFunc, opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:     uc,
		hub:    hub,
		auth:   auth,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	round := router.Group("/rounds/:round_id", c.auth)
	round.POST("/votes", c.vote)
	round.GET("/results", c.getResults)
}

// VoteRequestDTO records an up or down vote on one suggestion
type VoteRequestDTO struct {
	MovieID int    `json:"movie_id" binding:"required,min=1" example:"949"`
	Value   string `json:"value" binding:"required" example:"up"`
}

type VoteResponseDTO struct {
	RoundID uuid.UUID `json:"round_id"`
	MovieID int       `json:"movie_id" example:"949"`
	Value   string    `json:"value" example:"up"`
	VotedAt time.Time `json:"voted_at"`
}

type RankedMovieDTO struct {
	MovieID    int     `json:"movie_id" example:"949"`
	Title      string  `json:"title" example:"Heat"`
	Up         int     `json:"up" example:"3"`
	Down       int     `json:"down" example:"1"`
	NetScore   int     `json:"net_score" example:"2"`
	Popularity float64 `json:"popularity" example:"51.3"`
	Source     string  `json:"source" example:"algorithm"`
	Rank       int     `json:"rank" example:"1"`
	Tied       bool    `json:"tied"`
}

type ResultsResponseDTO struct {
	Ranking []RankedMovieDTO `json:"ranking"`
	Voted   int              `json:"voted" example:"2"`
	Total   int              `json:"total" example:"3"`
}

func convertFromResults(res usecase_vote.Results) ResultsResponseDTO {
	ranking := make([]RankedMovieDTO, 0, len(res.Ranking))
	for _, m := range res.Ranking {
		ranking = append(ranking, RankedMovieDTO{
			MovieID:    m.MovieID,
			Title:      m.Title,
			Up:         m.Up,
			Down:       m.Down,
			NetScore:   m.NetScore,
			Popularity: m.Popularity,
			Source:     string(m.Source),
			Rank:       m.Rank,
			Tied:       m.Tied,
		})
	}
	return ResultsResponseDTO{
		Ranking: ranking,
		Voted:   res.Progress.Voted,
		Total:   res.Progress.Total,
	}
}

// @Summary Vote on a suggestion
// @Description Upserts the caller's vote. Voting again on the same movie overwrites the previous value.
// @Tags Voting
// @Accept json
// @Produce json
// @Param round_id path string true "Round ID"
// @Param request body VoteRequestDTO true "Vote"
// @Success 200 {object} VoteResponseDTO
// @Failure 400 {object} http_common.ErrorResponse "Bad value, movie not suggested or round not voting"
// @Failure 403 {object} http_common.ErrorResponse "Not an attendee of the round"
// @Failure 404 {object} http_common.ErrorResponse "Unknown round"
// @Failure 410 {object} http_common.ErrorResponse "Round was discarded"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rounds/{round_id}/votes [post]
func (c *Controller) vote(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	roundID, ok := http_common.UUIDParam(ctx, "round_id")
	if !ok {
		return
	}

	var req VoteRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("round_id", roundID.String()), slog.String("error", err.Error()))
		http_common.BadRequest(ctx, "invalid request format")
		return
	}

	v, err := c.uc.Vote(ctx.Request.Context(), roundID, req.MovieID, member.ID, model.VoteValue(req.Value))
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to vote", err,
			slog.String("round_id", roundID.String()), slog.Int("movie_id", req.MovieID))
		return
	}

	c.publishProgress(ctx.Request.Context(), v)
	ctx.JSON(http.StatusOK, VoteResponseDTO{
		RoundID: v.RoundID,
		MovieID: v.MovieID,
		Value:   string(v.Value),
		VotedAt: v.VotedAt,
	})
}

// publishProgress is best effort; the vote is already stored.
func (c *Controller) publishProgress(ctx context.Context, v model.Vote) {
	res, err := c.uc.Results(ctx, v.RoundID)
	if err != nil {
		c.logger.Warn("vote_cast event skipped", slog.String("round_id", v.RoundID.String()), slog.String("error", err.Error()))
		return
	}
	c.hub.Broadcast(res.GroupID, ws_group.VoteCast, map[string]any{
		"round_id": v.RoundID.String(),
		"movie_id": v.MovieID,
		"voter_id": v.VoterID.String(),
		"voted":    res.Progress.Voted,
		"total":    res.Progress.Total,
	})
}

// @Summary Ranked results
// @Description Suggestions ordered by net score, then popularity. Entries equal on both share a rank.
// @Tags Voting
// @Produce json
// @Param round_id path string true "Round ID"
// @Success 200 {object} ResultsResponseDTO
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 404 {object} http_common.ErrorResponse "Unknown round"
// @Failure 410 {object} http_common.ErrorResponse "Round was discarded"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rounds/{round_id}/results [get]
func (c *Controller) getResults(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	roundID, ok := http_common.UUIDParam(ctx, "round_id")
	if !ok {
		return
	}

	res, err := c.uc.ViewResults(ctx.Request.Context(), roundID, member.ID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to get results", err, slog.String("round_id", roundID.String()))
		return
	}
	ctx.JSON(http.StatusOK, convertFromResults(res))
}
