package http_preference

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/humanbelnik/movienight/internal/delivery/http/common"
	"github.com/humanbelnik/movienight/internal/model"
	usecase_preference "github.com/humanbelnik/movienight/internal/usecase/preference"
)

type Usecase interface {
	Put(ctx context.Context, groupID, memberID uuid.UUID, in usecase_preference.Input) (model.Preference, error)
	Get(ctx context.Context, groupID, memberID uuid.UUID) (model.Preference, error)
	Summarize(ctx context.Context, groupID uuid.UUID) (model.TasteProfile, int, error)
}

type MembershipProvider interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (model.Member, error)
}

type Controller struct {
	uc         Usecase
	membership MembershipProvider
	auth       gin.HandlerFunc

	logger *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(uc Usecase, membership MembershipProvider, auth gin.HandlerFunc, opts ...ControllerOption) *Controller {
	c := &Controller{
		uc:         uc,
		membership: membership,
		auth:       auth,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	prefs := router.Group("/groups/:group_id/preferences", c.auth)
	prefs.GET("/me", c.getMine)
	prefs.PUT("/me", c.putMine)
	prefs.GET("/summary", c.summary)
}

// PreferenceRequestDTO is the caller's full preference record
type PreferenceRequestDTO struct {
	LikedGenres      []string `json:"liked_genres" example:"Comedy,Drama"`
	DislikedGenres   []string `json:"disliked_genres" example:"Horror"`
	MaxContentRating string   `json:"max_content_rating" binding:"required" example:"PG-13"`
}

type PreferenceResponseDTO struct {
	MemberID         uuid.UUID `json:"member_id"`
	LikedGenres      []string  `json:"liked_genres"`
	DislikedGenres   []string  `json:"disliked_genres"`
	MaxContentRating string    `json:"max_content_rating"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func convertFromPreference(p model.Preference) PreferenceResponseDTO {
	return PreferenceResponseDTO{
		MemberID:         p.MemberID,
		LikedGenres:      nonNil(p.LikedGenres),
		DislikedGenres:   nonNil(p.DislikedGenres),
		MaxContentRating: string(p.MaxContentRating),
		UpdatedAt:        p.UpdatedAt,
	}
}

type SummaryResponseDTO struct {
	LikedGenres    []string `json:"liked_genres"`
	DislikedGenres []string `json:"disliked_genres"`
	ContentCeiling string   `json:"content_ceiling" example:"PG-13"`
	Contributors   int      `json:"contributors" example:"3"`
}

// @Summary Read my preferences
// @Tags Preferences
// @Produce json
// @Param group_id path string true "Group ID"
// @Success 200 {object} PreferenceResponseDTO
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 404 {object} http_common.ErrorResponse "No preferences recorded yet"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /groups/{group_id}/preferences/me [get]
func (c *Controller) getMine(ctx *gin.Context) {
	member, groupID, ok := c.memberOfGroup(ctx)
	if !ok {
		return
	}

	p, err := c.uc.Get(ctx.Request.Context(), groupID, member.ID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to get preference", err, slog.String("group_id", groupID.String()))
		return
	}
	ctx.JSON(http.StatusOK, convertFromPreference(p))
}

// @Summary Replace my preferences
// @Description Upserts the caller's liked and disliked genres and content rating ceiling. Last write wins.
// @Tags Preferences
// @Accept json
// @Produce json
// @Param group_id path string true "Group ID"
// @Param request body PreferenceRequestDTO true "Preferences"
// @Success 200 {object} PreferenceResponseDTO
// @Failure 400 {object} http_common.ErrorResponse "Unknown genre or rating"
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /groups/{group_id}/preferences/me [put]
func (c *Controller) putMine(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	groupID, ok := http_common.UUIDParam(ctx, "group_id")
	if !ok {
		return
	}

	var req PreferenceRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("error", err.Error()))
		http_common.BadRequest(ctx, "invalid request format")
		return
	}

	p, err := c.uc.Put(ctx.Request.Context(), groupID, member.ID, usecase_preference.Input{
		LikedGenres:      req.LikedGenres,
		DislikedGenres:   req.DislikedGenres,
		MaxContentRating: model.ContentRating(req.MaxContentRating),
	})
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to put preference", err, slog.String("group_id", groupID.String()))
		return
	}
	ctx.JSON(http.StatusOK, convertFromPreference(p))
}

// @Summary Group taste profile
// @Description Union of liked genres, intersection of disliked genres and the strictest content rating over every member with preferences
// @Tags Preferences
// @Produce json
// @Param group_id path string true "Group ID"
// @Success 200 {object} SummaryResponseDTO
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 422 {object} http_common.ErrorResponse "Fewer than two members set preferences"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /groups/{group_id}/preferences/summary [get]
func (c *Controller) summary(ctx *gin.Context) {
	_, groupID, ok := c.memberOfGroup(ctx)
	if !ok {
		return
	}

	profile, contributors, err := c.uc.Summarize(ctx.Request.Context(), groupID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to summarize preferences", err,
			slog.String("group_id", groupID.String()), slog.Int("contributors", contributors))
		return
	}
	ctx.JSON(http.StatusOK, SummaryResponseDTO{
		LikedGenres:    nonNil(profile.LikedGenres),
		DislikedGenres: nonNil(profile.DislikedGenres),
		ContentCeiling: string(profile.ContentCeiling),
		Contributors:   contributors,
	})
}

func (c *Controller) memberOfGroup(ctx *gin.Context) (model.Member, uuid.UUID, bool) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return model.Member{}, uuid.Nil, false
	}
	groupID, ok := http_common.UUIDParam(ctx, "group_id")
	if !ok {
		return model.Member{}, uuid.Nil, false
	}
	if _, err := c.membership.IsMember(ctx.Request.Context(), groupID, member.ID); err != nil {
		http_common.WriteError(ctx, c.logger, "membership check failed", err, slog.String("group_id", groupID.String()))
		return model.Member{}, uuid.Nil, false
	}
	return member, groupID, true
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
