package http_round

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/humanbelnik/movienight/internal/delivery/http/common"
	ws_group "github.com/humanbelnik/movienight/internal/delivery/ws/group"
	"github.com/humanbelnik/movienight/internal/model"
	usecase_round "github.com/humanbelnik/movienight/internal/usecase/round"
)

type Usecase interface {
	Create(ctx context.Context, in usecase_round.CreateInput) (usecase_round.CreateResult, error)
	List(ctx context.Context, groupID, viewerID uuid.UUID) ([]model.Round, error)
	Detail(ctx context.Context, roundID, viewerID uuid.UUID) (usecase_round.Detail, error)
	Close(ctx context.Context, roundID, actorID uuid.UUID) (model.Round, error)
	Pick(ctx context.Context, roundID, actorID uuid.UUID, movieID model.MovieID) (model.Pick, error)
	Transition(ctx context.Context, roundID uuid.UUID, actor model.Actor, to model.RoundStatus) (model.Round, error)
}

// Publisher fans round events out to the group's websocket listeners.
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
	groups := router.Group("/groups/:group_id/rounds", c.auth)
	groups.POST("", c.createRound)
	groups.GET("", c.listRounds)

	rounds := router.Group("/rounds/:round_id", c.auth)
	rounds.GET("", c.getRound)
	rounds.POST("/close", c.closeRound)
	rounds.POST("/pick", c.pick)
	rounds.PATCH("/status", c.changeStatus)
}

// @Summary Start a round
// @Description Opens a voting round with ranked suggestions plus up to four watchlist entries. A group has at most one voting round.
// @Tags Rounds
// @Accept json
// @Produce json
// @Param group_id path string true "Group ID"
// @Param request body CreateRoundRequestDTO false "Attendees and movies to leave out"
// @Success 201 {object} CreateRoundResponseDTO
// @Failure 400 {object} http_common.ErrorResponse "Attendee outside the group"
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 409 {object} http_common.ErrorResponse "A voting round is already open, see active_round_id"
// @Failure 422 {object} http_common.ErrorResponse "Fewer than two attendees set preferences"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /groups/{group_id}/rounds [post]
func (c *Controller) createRound(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	groupID, ok := http_common.UUIDParam(ctx, "group_id")
	if !ok {
		return
	}

	var req CreateRoundRequestDTO
	if ctx.Request.ContentLength != 0 {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			c.logger.Warn("invalid request format", slog.String("error", err.Error()))
			http_common.BadRequest(ctx, "invalid request format")
			return
		}
	}

	res, err := c.uc.Create(ctx.Request.Context(), usecase_round.CreateInput{
		GroupID:   groupID,
		StartedBy: member.ID,
		Attendees: req.Attendees,
		Exclude:   req.Exclude,
	})
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to create round", err,
			slog.String("group_id", groupID.String()), slog.String("member_id", member.ID.String()))
		return
	}

	c.logger.Info("round created",
		slog.String("round_id", res.Round.ID.String()),
		slog.Int("suggestions", len(res.Suggestions)))
	c.hub.Broadcast(groupID, ws_group.RoundCreated, map[string]any{
		"round_id":   res.Round.ID.String(),
		"started_by": member.ID.String(),
	})

	relaxed := res.Relaxed
	if relaxed == nil {
		relaxed = []string{}
	}
	ctx.JSON(http.StatusCreated, CreateRoundResponseDTO{
		Round:                  ConvertFromRound(res.Round),
		Suggestions:            http_common.ConvertFromSuggestions(res.Suggestions),
		RelaxedConstraints:     relaxed,
		WatchlistEligibleCount: res.WatchlistEligible,
	})
}

// @Summary Round history
// @Tags Rounds
// @Produce json
// @Param group_id path string true "Group ID"
// @Success 200 {object} RoundsListResponseDTO "Newest first"
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /groups/{group_id}/rounds [get]
func (c *Controller) listRounds(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	groupID, ok := http_common.UUIDParam(ctx, "group_id")
	if !ok {
		return
	}

	rounds, err := c.uc.List(ctx.Request.Context(), groupID, member.ID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to list rounds", err, slog.String("group_id", groupID.String()))
		return
	}

	out := make([]RoundDTO, 0, len(rounds))
	for _, r := range rounds {
		out = append(out, ConvertFromRound(r))
	}
	ctx.JSON(http.StatusOK, RoundsListResponseDTO{Rounds: out, Total: len(out)})
}

// @Summary Round detail
// @Description Round with live vote counts per suggestion, vote progress and the locked pick
// @Tags Rounds
// @Produce json
// @Param round_id path string true "Round ID"
// @Success 200 {object} RoundDetailResponseDTO
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 404 {object} http_common.ErrorResponse "Unknown round"
// @Failure 410 {object} http_common.ErrorResponse "Round was discarded"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rounds/{round_id} [get]
func (c *Controller) getRound(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	roundID, ok := http_common.UUIDParam(ctx, "round_id")
	if !ok {
		return
	}

	detail, err := c.uc.Detail(ctx.Request.Context(), roundID, member.ID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to get round", err, slog.String("round_id", roundID.String()))
		return
	}
	ctx.JSON(http.StatusOK, convertFromDetail(detail))
}

// @Summary Close voting
// @Tags Rounds
// @Produce json
// @Param round_id path string true "Round ID"
// @Success 200 {object} RoundDTO
// @Failure 403 {object} http_common.ErrorResponse "Only the group creator closes rounds"
// @Failure 404 {object} http_common.ErrorResponse "Unknown round"
// @Failure 409 {object} http_common.ErrorResponse "Round is no longer voting"
// @Failure 410 {object} http_common.ErrorResponse "Round was discarded"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rounds/{round_id}/close [post]
func (c *Controller) closeRound(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	roundID, ok := http_common.UUIDParam(ctx, "round_id")
	if !ok {
		return
	}

	round, err := c.uc.Close(ctx.Request.Context(), roundID, member.ID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to close round", err, slog.String("round_id", roundID.String()))
		return
	}

	c.publishStatus(round)
	ctx.JSON(http.StatusOK, ConvertFromRound(round))
}

// @Summary Lock the pick
// @Description Locks one of the round's suggestions as the movie to watch and moves the round to selected. Only one pick per round succeeds.
// @Tags Rounds
// @Accept json
// @Produce json
// @Param round_id path string true "Round ID"
// @Param request body PickRequestDTO true "Movie to pick"
// @Success 201 {object} PickDTO
// @Failure 400 {object} http_common.ErrorResponse "Movie is not suggested in this round"
// @Failure 403 {object} http_common.ErrorResponse "Only the group creator picks"
// @Failure 409 {object} http_common.ErrorResponse "Round already has a pick"
// @Failure 410 {object} http_common.ErrorResponse "Round was discarded"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rounds/{round_id}/pick [post]
func (c *Controller) pick(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	roundID, ok := http_common.UUIDParam(ctx, "round_id")
	if !ok {
		return
	}

	var req PickRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("error", err.Error()))
		http_common.BadRequest(ctx, "invalid request format")
		return
	}

	pick, err := c.uc.Pick(ctx.Request.Context(), roundID, member.ID, req.MovieID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to pick", err,
			slog.String("round_id", roundID.String()), slog.Int("movie_id", req.MovieID))
		return
	}

	c.hub.Broadcast(pick.GroupID, ws_group.RoundStatusChanged, map[string]any{
		"round_id": roundID.String(),
		"status":   string(model.StatusSelected),
		"movie_id": pick.MovieID,
	})
	ctx.JSON(http.StatusCreated, convertFromPick(pick, ""))
}

// @Summary Move a round through its lifecycle
// @Description Generic transition to closed, watched or rated. Selected is reached through the pick endpoint. Rated is also reached automatically once every attendee rated.
// @Tags Rounds
// @Accept json
// @Produce json
// @Param round_id path string true "Round ID"
// @Param request body StatusRequestDTO true "Target status"
// @Success 200 {object} RoundDTO
// @Failure 400 {object} http_common.ErrorResponse "Unknown target status"
// @Failure 403 {object} http_common.ErrorResponse "Caller may not perform this transition"
// @Failure 409 {object} http_common.ErrorResponse "Round is not in a status that allows it"
// @Failure 410 {object} http_common.ErrorResponse "Round was discarded"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rounds/{round_id}/status [patch]
func (c *Controller) changeStatus(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	roundID, ok := http_common.UUIDParam(ctx, "round_id")
	if !ok {
		return
	}

	var req StatusRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("error", err.Error()))
		http_common.BadRequest(ctx, "invalid request format")
		return
	}

	round, err := c.uc.Transition(ctx.Request.Context(), roundID, model.MemberActor(member.ID), model.RoundStatus(req.Status))
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to change round status", err,
			slog.String("round_id", roundID.String()), slog.String("to", req.Status))
		return
	}

	c.publishStatus(round)
	ctx.JSON(http.StatusOK, ConvertFromRound(round))
}

func (c *Controller) publishStatus(round model.Round) {
	c.hub.Broadcast(round.GroupID, ws_group.RoundStatusChanged, map[string]any{
		"round_id": round.ID.String(),
		"status":   string(round.Status),
	})
}
