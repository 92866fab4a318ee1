package http_auth_middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	http_common "github.com/humanbelnik/movienight/internal/delivery/http/common"
	"github.com/humanbelnik/movienight/internal/model"
)

type TokenResolver interface {
	Resolve(ctx context.Context, token string) (model.Member, error)
}

type Middleware struct {
	resolver TokenResolver
	logger   *slog.Logger
}

type Option func(*Middleware)

func WithLogger(logger *slog.Logger) Option {
	return func(m *Middleware) {
		m.logger = logger
	}
}

func New(resolver TokenResolver, opts ...Option) *Middleware {
	m := &Middleware{
		resolver: resolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// queryToken lets browser websocket clients, which cannot set headers, pass the token.
const queryToken = "token"

// AuthRequired resolves the session token to a member and stores it in the
// request context for the controllers.
func (m *Middleware) AuthRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		token := ctx.GetHeader(http_common.TokenHeader)
		if token == "" {
			token = ctx.Query(queryToken)
		}
		if token == "" {
			m.logger.Warn("missing session token", slog.String("path", ctx.FullPath()))
			ctx.AbortWithStatusJSON(http.StatusUnauthorized, http_common.ErrorResponse{
				Message: http_common.TokenHeader + " header required",
			})
			return
		}

		member, err := m.resolver.Resolve(ctx.Request.Context(), token)
		if err != nil {
			http_common.WriteError(ctx, m.logger, "failed to resolve session", err)
			ctx.Abort()
			return
		}

		http_common.SetMember(ctx, member)
		ctx.Next()
	}
}
