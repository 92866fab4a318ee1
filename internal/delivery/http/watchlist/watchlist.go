package http_watchlist

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/humanbelnik/movienight/internal/delivery/http/common"
	"github.com/humanbelnik/movienight/internal/model"
)

type Service interface {
	GetWatchlist(ctx context.Context, groupID uuid.UUID) ([]model.WatchlistItem, error)
	Watched(ctx context.Context, groupID uuid.UUID) ([]model.WatchedMovie, error)
	Add(ctx context.Context, groupID, memberID uuid.UUID, movieID model.MovieID) (model.WatchlistItem, error)
	MarkWatched(ctx context.Context, groupID, memberID uuid.UUID, movieID model.MovieID) (model.WatchedMovie, error)
}

type MembershipProvider interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (model.Member, error)
}

type Controller struct {
	service    Service
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

func New(service Service, membership MembershipProvider, auth gin.HandlerFunc, opts ...ControllerOption) *Controller {
	c := &Controller{
		service:    service,
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
	group := router.Group("/groups/:group_id", c.auth)
	group.GET("/watchlist", c.getWatchlist)
	group.POST("/watchlist", c.addToWatchlist)
	group.GET("/watched", c.getWatched)
	group.POST("/watched", c.markWatched)
}

type MovieRequestDTO struct {
	MovieID int `json:"movie_id" binding:"required,min=1" example:"949"`
}

type WatchlistItemDTO struct {
	MovieID     int       `json:"movie_id" example:"949"`
	Title       string    `json:"title" example:"Heat"`
	PosterPath  string    `json:"poster_path"`
	Genres      []string  `json:"genres"`
	ReleaseYear int       `json:"release_year" example:"1995"`
	AddedBy     uuid.UUID `json:"added_by"`
	AddedAt     time.Time `json:"added_at"`
}

func convertFromItem(i model.WatchlistItem) WatchlistItemDTO {
	genres := i.Genres
	if genres == nil {
		genres = []string{}
	}
	return WatchlistItemDTO{
		MovieID:     i.MovieID,
		Title:       i.Title,
		PosterPath:  i.PosterPath,
		Genres:      genres,
		ReleaseYear: i.ReleaseYear,
		AddedBy:     i.AddedBy,
		AddedAt:     i.AddedAt,
	}
}

type WatchedMovieDTO struct {
	MovieID   int       `json:"movie_id" example:"949"`
	Source    string    `json:"source" example:"pick"`
	WatchedAt time.Time `json:"watched_at"`
}

func convertFromWatched(w model.WatchedMovie) WatchedMovieDTO {
	return WatchedMovieDTO{
		MovieID:   w.MovieID,
		Source:    string(w.Source),
		WatchedAt: w.WatchedAt,
	}
}

// @Summary Group watchlist
// @Tags Watchlist
// @Produce json
// @Param group_id path string true "Group ID"
// @Success 200 {array} WatchlistItemDTO "Insertion order"
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /groups/{group_id}/watchlist [get]
func (c *Controller) getWatchlist(ctx *gin.Context) {
	groupID, ok := c.memberOfGroup(ctx)
	if !ok {
		return
	}

	items, err := c.service.GetWatchlist(ctx.Request.Context(), groupID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to get watchlist", err, slog.String("group_id", groupID.String()))
		return
	}

	out := make([]WatchlistItemDTO, 0, len(items))
	for _, i := range items {
		out = append(out, convertFromItem(i))
	}
	ctx.JSON(http.StatusOK, out)
}

// @Summary Add a movie to the watchlist
// @Tags Watchlist
// @Accept json
// @Produce json
// @Param group_id path string true "Group ID"
// @Param request body MovieRequestDTO true "Movie"
// @Success 201 {object} WatchlistItemDTO
// @Failure 400 {object} http_common.ErrorResponse "Malformed request"
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 409 {object} http_common.ErrorResponse "Already on the watchlist"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /groups/{group_id}/watchlist [post]
func (c *Controller) addToWatchlist(ctx *gin.Context) {
	member, groupID, req, ok := c.bindMovie(ctx)
	if !ok {
		return
	}

	item, err := c.service.Add(ctx.Request.Context(), groupID, member.ID, req.MovieID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to add to watchlist", err,
			slog.String("group_id", groupID.String()), slog.Int("movie_id", req.MovieID))
		return
	}
	ctx.JSON(http.StatusCreated, convertFromItem(item))
}

// @Summary Movies the group has seen
// @Description Direct records merged with watched picks, one entry per movie
// @Tags Watchlist
// @Produce json
// @Param group_id path string true "Group ID"
// @Success 200 {array} WatchedMovieDTO
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /groups/{group_id}/watched [get]
func (c *Controller) getWatched(ctx *gin.Context) {
	groupID, ok := c.memberOfGroup(ctx)
	if !ok {
		return
	}

	watched, err := c.service.Watched(ctx.Request.Context(), groupID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to get watched movies", err, slog.String("group_id", groupID.String()))
		return
	}

	out := make([]WatchedMovieDTO, 0, len(watched))
	for _, w := range watched {
		out = append(out, convertFromWatched(w))
	}
	ctx.JSON(http.StatusOK, out)
}

// @Summary Record a movie as seen
// @Description Seen movies are never suggested again
// @Tags Watchlist
// @Accept json
// @Produce json
// @Param group_id path string true "Group ID"
// @Param request body MovieRequestDTO true "Movie"
// @Success 201 {object} WatchedMovieDTO
// @Failure 400 {object} http_common.ErrorResponse "Malformed request"
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /groups/{group_id}/watched [post]
func (c *Controller) markWatched(ctx *gin.Context) {
	member, groupID, req, ok := c.bindMovie(ctx)
	if !ok {
		return
	}

	w, err := c.service.MarkWatched(ctx.Request.Context(), groupID, member.ID, req.MovieID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "failed to mark watched", err,
			slog.String("group_id", groupID.String()), slog.Int("movie_id", req.MovieID))
		return
	}
	ctx.JSON(http.StatusCreated, convertFromWatched(w))
}

func (c *Controller) memberOfGroup(ctx *gin.Context) (uuid.UUID, bool) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return uuid.Nil, false
	}
	groupID, ok := http_common.UUIDParam(ctx, "group_id")
	if !ok {
		return uuid.Nil, false
	}
	if _, err := c.membership.IsMember(ctx.Request.Context(), groupID, member.ID); err != nil {
		http_common.WriteError(ctx, c.logger, "membership check failed", err, slog.String("group_id", groupID.String()))
		return uuid.Nil, false
	}
	return groupID, true
}

func (c *Controller) bindMovie(ctx *gin.Context) (model.Member, uuid.UUID, MovieRequestDTO, bool) {
	var req MovieRequestDTO
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return model.Member{}, uuid.Nil, req, false
	}
	groupID, ok := http_common.UUIDParam(ctx, "group_id")
	if !ok {
		return model.Member{}, uuid.Nil, req, false
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("error", err.Error()))
		http_common.BadRequest(ctx, "invalid request format")
		return model.Member{}, uuid.Nil, req, false
	}
	return member, groupID, req, true
}
