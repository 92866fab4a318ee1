package http_common

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	"github.com/humanbelnik/movienight/internal/model"
	session_auth "github.com/humanbelnik/movienight/internal/service/auth/session"
)

const (
	TokenHeader = "X-user-token"
	memberKey   = "member"
)

type ErrorResponse struct {
	Message string `json:"message" example:"round is closed, cannot move to closed"`
	// Set on round creation conflicts.
	ActiveRoundID *uuid.UUID `json:"active_round_id,omitempty"`
}

// StatusFor maps an error onto its HTTP status. Every apperr kind has a case.
func StatusFor(err error) int {
	if errors.Is(err, session_auth.ErrInvalidToken) {
		return http.StatusUnauthorized
	}

	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindInsufficientPreferences:
		return http.StatusUnprocessableEntity
	case apperr.KindGone:
		return http.StatusGone
	case apperr.KindInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func NewErrorResponse(err error) ErrorResponse {
	resp := ErrorResponse{Message: apperr.Message(err)}
	if errors.Is(err, session_auth.ErrInvalidToken) {
		resp.Message = "invalid token"
	}

	var active *apperr.ActiveRoundError
	if errors.As(err, &active) {
		id := active.RoundID
		resp.ActiveRoundID = &id
		resp.Message = active.Error()
	}
	return resp
}

// WriteError logs err and writes the mapped response. Internal failures are
// logged at error level, caller mistakes at warn.
func WriteError(ctx *gin.Context, logger *slog.Logger, msg string, err error, attrs ...any) {
	status := StatusFor(err)
	attrs = append(attrs, slog.String("error", err.Error()), slog.Int("status", status))
	if status >= http.StatusInternalServerError {
		logger.Error(msg, attrs...)
	} else {
		logger.Warn(msg, attrs...)
	}
	ctx.JSON(status, NewErrorResponse(err))
}

func BadRequest(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusBadRequest, ErrorResponse{Message: message})
}

// UUIDParam parses a path parameter, writing 400 on failure.
func UUIDParam(ctx *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param(name))
	if err != nil {
		BadRequest(ctx, "invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

// ParseMovieIDs reads a comma separated list such as "1,2,3".
func ParseMovieIDs(raw string) ([]model.MovieID, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]model.MovieID, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		id, err := strconv.Atoi(p)
		if err != nil || id <= 0 {
			return nil, apperr.Validation("invalid movie id %q", p)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func SetMember(ctx *gin.Context, m model.Member) {
	ctx.Set(memberKey, m)
}

// Member returns the caller resolved by the auth middleware.
func Member(ctx *gin.Context) (model.Member, bool) {
	v, ok := ctx.Get(memberKey)
	if !ok {
		return model.Member{}, false
	}
	m, ok := v.(model.Member)
	return m, ok
}

// MustMember is Member for routes behind the auth middleware; it writes 401
// when the middleware did not run.
func MustMember(ctx *gin.Context) (model.Member, bool) {
	m, ok := Member(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, ErrorResponse{Message: TokenHeader + " header required"})
		return model.Member{}, false
	}
	return m, true
}
