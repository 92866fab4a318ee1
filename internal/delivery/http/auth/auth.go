package http_auth

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	http_common "github.com/humanbelnik/movienight/internal/delivery/http/common"
	session_auth "github.com/humanbelnik/movienight/internal/service/auth/session"
)

type SessionService interface {
	Login(ctx context.Context, code string, memberID uuid.UUID) (session_auth.Session, error)
	Logout(ctx context.Context, token string) error
}

type Controller struct {
	service SessionService
	auth    gin.HandlerFunc
	logger  *slog.Logger
}

type ControllerOption func(*Controller)

func WithLogger(logger *slog.Logger) ControllerOption {
	return func(c *Controller) {
		c.logger = logger
	}
}

func New(service SessionService, auth gin.HandlerFunc, opts ...ControllerOption) *Controller {
	c := &Controller{
		service: service,
		auth:    auth,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Controller) RegisterRoutes(router *gin.RouterGroup) {
	sessions := router.Group("/sessions")
	sessions.POST("", c.login)
	sessions.DELETE("", c.auth, c.logout)
}

// LoginRequestDTO exchanges the household code for a member session
type LoginRequestDTO struct {
	Code     string    `json:"code" binding:"required" example:"popcorn"`
	MemberID uuid.UUID `json:"member_id" binding:"required" example:"550e8400-e29b-41d4-a716-446655440000"`
}

type SessionResponseDTO struct {
	Token       string    `json:"token" example:"1f0c8a2e-2b7d-4a43-9d1f-4b7c7f0f6c11"`
	MemberID    uuid.UUID `json:"member_id"`
	GroupID     uuid.UUID `json:"group_id"`
	DisplayName string    `json:"display_name" example:"Alice"`
	Role        string    `json:"role" example:"member"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// @Summary Open a session
// @Description Checks the household code and returns a token to send in X-user-token
// @Tags Sessions
// @Accept json
// @Produce json
// @Param request body LoginRequestDTO true "Household code and member"
// @Success 201 {object} SessionResponseDTO
// @Header 201 {string} X-user-token "Session token"
// @Failure 400 {object} http_common.ErrorResponse "Malformed request"
// @Failure 403 {object} http_common.ErrorResponse "Wrong code"
// @Failure 404 {object} http_common.ErrorResponse "Unknown member"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Router /sessions [post]
func (c *Controller) login(ctx *gin.Context) {
	var req LoginRequestDTO
	if err := ctx.ShouldBindJSON(&req); err != nil {
		c.logger.Warn("invalid request format", slog.String("error", err.Error()))
		http_common.BadRequest(ctx, "invalid request format")
		return
	}

	session, err := c.service.Login(ctx.Request.Context(), req.Code, req.MemberID)
	if err != nil {
		http_common.WriteError(ctx, c.logger, "login failed", err, slog.String("member_id", req.MemberID.String()))
		return
	}

	c.logger.Info("session opened", slog.String("member_id", session.Member.ID.String()))
	ctx.Header(http_common.TokenHeader, session.Token)
	ctx.JSON(http.StatusCreated, SessionResponseDTO{
		Token:       session.Token,
		MemberID:    session.Member.ID,
		GroupID:     session.Member.GroupID,
		DisplayName: session.Member.DisplayName,
		Role:        string(session.Member.Role),
		ExpiresAt:   session.ExpiresAt,
	})
}

// @Summary Close the current session
// @Tags Sessions
// @Success 204
// @Failure 401 {object} http_common.ErrorResponse "Missing or expired token"
// @Failure 500 {object} http_common.ErrorResponse "Internal error"
// @Security UserToken
// @Router /sessions [delete]
func (c *Controller) logout(ctx *gin.Context) {
	token := ctx.GetHeader(http_common.TokenHeader)
	if token == "" {
		token = ctx.Query("token")
	}
	if err := c.service.Logout(ctx.Request.Context(), token); err != nil {
		http_common.WriteError(ctx, c.logger, "logout failed", err)
		return
	}
	ctx.Status(http.StatusNoContent)
}
