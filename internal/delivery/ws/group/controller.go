package ws_group

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	http_common "github.com/humanbelnik/movienight/internal/delivery/http/common"
	"github.com/humanbelnik/movienight/internal/model"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type MembershipProvider interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (model.Member, error)
}

// Controller upgrades group members to a websocket subscribed to round events.
type Controller struct {
	hub        *Hub
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

func NewController(hub *Hub, membership MembershipProvider, auth gin.HandlerFunc, opts ...ControllerOption) *Controller {
	c := &Controller{
		hub:        hub,
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
	router.GET("/groups/:group_id/ws", c.auth, c.groupWS)
}

// @Summary Round events stream
// @Description Upgrades to a websocket that receives round_created, vote_cast, round_status_changed and rating_submitted events of the group
// @Tags Events
// @Param group_id path string true "Group ID"
// @Param token query string false "Session token for clients that cannot set headers"
// @Success 101
// @Failure 403 {object} http_common.ErrorResponse "Not a member of the group"
// @Security UserToken
// @Router /groups/{group_id}/ws [get]
func (c *Controller) groupWS(ctx *gin.Context) {
	member, ok := http_common.MustMember(ctx)
	if !ok {
		return
	}
	groupID, ok := http_common.UUIDParam(ctx, "group_id")
	if !ok {
		return
	}
	if _, err := c.membership.IsMember(ctx.Request.Context(), groupID, member.ID); err != nil {
		http_common.WriteError(ctx, c.logger, "websocket refused", err, slog.String("group_id", groupID.String()))
		return
	}

	conn, err := upgrader.Upgrade(ctx.Writer, ctx.Request, nil)
	if err != nil {
		// Upgrade already wrote the handshake error.
		c.logger.Error("failed to upgrade to websocket", slog.String("error", err.Error()))
		return
	}

	client := NewClient(c.hub, conn, groupID)
	c.hub.RegisterClient(client)

	go c.hub.StartClientReading(client)
	go c.hub.StartClientWriting(client)
}
