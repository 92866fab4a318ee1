package http_suggestion

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/humanbelnik/movienight/internal/delivery/http/common"
	"github.com/humanbelnik/movienight/internal/model"
	usecase_suggestion "github.com/humanbelnik/movienight/internal/usecase/suggestion"
)

type Suggester interface {
	Suggest(ctx context.Context, groupID uuid.UUID, exclude []model.MovieID, attendees []uuid.UUID) (usecase_suggestion.Result, error)
}

type MembershipProvider interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (model.Member, error)
}

// Controller previews suggestions without opening a round.
type Controller struct {
	uc         Suggester
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

func New(uc Suggester, membership MembershipProvider, auth gin.HandlerFunc, opts ...ControllerOption) *Controller {
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
	router.GET("/groups/:group_id/suggestions", c.auth, c.preview)
}

type PreviewResponseDTO struct {
	Suggestions        []http_common.SuggestionDTO `json:"suggestions"`
	RelaxedConstraints []string                    `json:"relaxed_constraints" example:"expanded_genres"`
}

// @Summary Preview suggestions
// @Description Ranks candidates for the whole group, relaxing filters step by step when too few match. Nothing is stored.
// @Tags Suggestions
// @Produce json
// @Param group_id path string true "Group ID"
// @Param exclude query string false "Comma separated movie IDs to leave out" example(949,680)
// @Success 200 {object} PreviewResponseDTO
// @Failure 400 {object} http_common.ErrorResponse "Malformed exclude list"
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 422 {object} http_common.ErrorResponse "Fewer than two members set preferences"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /groups/{group_id}/suggestions [get]
func (c *Controller) preview(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	groupID, ok := http_common.UUIDParam(ctx, "group_id")
	if !ok {
		return
	}
	exclude, err := http_common.ParseMovieIDs(ctx.Query("exclude"))
	if err != nil {
		http_common.WriteError(ctx, c.logger, "invalid exclude list", err)
		return
	}

	if _, err := c.membership.IsMember(ctx.Request.Context(), groupID, member.ID); err != nil {
		http_common.WriteError(ctx, c.logger, "membership check failed", err, slog.String("group_id", groupID.String()))
		return
	}

	res, err := c.uc.Suggest(ctx.Request.Context(), groupID, exclude, nil)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to suggest", err, slog.String("group_id", groupID.String()))
		return
	}

	relaxed := res.Relaxed
	if relaxed == nil {
		relaxed = []string{}
	}
	ctx.JSON(http.StatusOK, PreviewResponseDTO{
		Suggestions:        http_common.ConvertFromSuggestions(res.Suggestions),
		RelaxedConstraints: relaxed,
	})
}
