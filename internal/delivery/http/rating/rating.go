package http_rating

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
	usecase_rating "github.com/humanbelnik/movienight/internal/usecase/rating"
)

type Usecase interface {
	Submit(ctx context.Context, roundID, memberID uuid.UUID, value model.RatingValue) (usecase_rating.SubmitResult, error)
	SessionView(ctx context.Context, roundID, viewerID uuid.UUID) (model.SessionView, error)
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
	ratings := router.Group("/rounds/:round_id/ratings", c.auth)
	ratings.PUT("", c.submit)
	ratings.GET("", c.session)
}

// RatingRequestDTO is the caller's verdict on the watched movie
type RatingRequestDTO struct {
	Value string `json:"value" binding:"required" example:"loved"`
}

type RatingResponseDTO struct {
	RoundID     uuid.UUID `json:"round_id"`
	MemberID    uuid.UUID `json:"member_id"`
	Value       string    `json:"value" example:"loved"`
	RatedAt     time.Time `json:"rated_at"`
	RoundStatus string    `json:"round_status" example:"rated"`
	// True when this rating completed the roster.
	Completed bool `json:"completed"`
}

type RatingEntryDTO struct {
	MemberID    uuid.UUID  `json:"member_id"`
	DisplayName string     `json:"display_name" example:"Alice"`
	Value       *string    `json:"value" example:"liked"`
	RatedAt     *time.Time `json:"rated_at"`
}

type SessionResponseDTO struct {
	RoundID uuid.UUID        `json:"round_id"`
	Ratings []RatingEntryDTO `json:"ratings"`
}

func convertFromSessionView(v model.SessionView) SessionResponseDTO {
	entries := make([]RatingEntryDTO, 0, len(v.Ratings))
	for _, e := range v.Ratings {
		dto := RatingEntryDTO{
			MemberID:    e.MemberID,
			DisplayName: e.DisplayName,
			RatedAt:     e.RatedAt,
		}
		if e.Value != nil {
			value := string(*e.Value)
			dto.Value = &value
		}
		entries = append(entries, dto)
	}
	return SessionResponseDTO{RoundID: v.RoundID, Ratings: entries}
}

// @Summary Rate the watched movie
// @Description Upserts the caller's rating. When every attendee has rated a watched round it moves to rated.
// @Tags Ratings
// @Accept json
// @Produce json
// @Param round_id path string true "Round ID"
// @Param request body RatingRequestDTO true "loved, liked or did_not_like"
// @Success 200 {object} RatingResponseDTO
// @Failure 400 {object} http_common.ErrorResponse "Bad value or round not open for ratings"
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 404 {object} http_common.ErrorResponse "Unknown round"
// @Failure 410 {object} http_common.ErrorResponse "Round was discarded"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rounds/{round_id}/ratings [put]
func (c *Controller) submit(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	roundID, ok := http_common.UUIDParam(ctx, "round_id")
	if !ok {
		return
	}

	var req RatingRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("round_id", roundID.String()), slog.String("error", err.Error()))
		http_common.BadRequest(ctx, "invalid request format")
		return
	}

	res, err := c.uc.Submit(ctx.Request.Context(), roundID, member.ID, model.RatingValue(req.Value))
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to rate", err, slog.String("round_id", roundID.String()))
		return
	}

	c.hub.Broadcast(res.Round.GroupID, ws_group.RatingSubmitted, map[string]any{
		"round_id":  roundID.String(),
		"member_id": member.ID.String(),
		"value":     string(res.Rating.Value),
	})
	if res.Completed {
		c.hub.Broadcast(res.Round.GroupID, ws_group.RoundStatusChanged, map[string]any{
			"round_id": roundID.String(),
			"status":   string(res.Round.Status),
		})
	}

	ctx.JSON(http.StatusOK, RatingResponseDTO{
		RoundID:     roundID,
		MemberID:    member.ID,
		Value:       string(res.Rating.Value),
		RatedAt:     res.Rating.RatedAt,
		RoundStatus: string(res.Round.Status),
		Completed:   res.Completed,
	})
}

// @Summary Rating roster
// @Description Every attendee with their rating, or null while they have not rated
// @Tags Ratings
// @Produce json
// @Param round_id path string true "Round ID"
// @Success 200 {object} SessionResponseDTO
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 404 {object} http_common.ErrorResponse "Unknown round"
// @Failure 410 {object} http_common.ErrorResponse "Round was discarded"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /rounds/{round_id}/ratings [get]
func (c *Controller) session(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	roundID, ok := http_common.UUIDParam(ctx, "round_id")
	if !ok {
		return
	}

	view, err := c.uc.SessionView(ctx.Request.Context(), roundID, member.ID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to get ratings", err, slog.String("round_id", roundID.String()))
		return
	}
	ctx.JSON(http.StatusOK, convertFromSessionView(view))
}
