package http_common

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	session_auth "github.com/humanbelnik/movienight/internal/service/auth/session"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type CommonUnitSuite struct {
	suite.Suite
}

func (s *CommonUnitSuite) TestStatusFor(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name     string
		err      error
		expected int
	}{
		{name: "validation", err: apperr.Validation("bad"), expected: http.StatusBadRequest},
		{name: "forbidden", err: apperr.Forbidden("no"), expected: http.StatusForbidden},
		{name: "not found", err: apperr.NotFound("missing"), expected: http.StatusNotFound},
		{name: "conflict", err: apperr.Conflict("moved"), expected: http.StatusConflict},
		{name: "active round", err: &apperr.ActiveRoundError{RoundID: uuid.New()}, expected: http.StatusConflict},
		{name: "insufficient preferences", err: apperr.InsufficientPreferences(1), expected: http.StatusUnprocessableEntity},
		{name: "gone", err: apperr.Gone("discarded"), expected: http.StatusGone},
		{name: "internal", err: apperr.Internal("boom", errors.New("disk")), expected: http.StatusInternalServerError},
		{name: "untagged", err: errors.New("plain"), expected: http.StatusInternalServerError},
		{name: "invalid token", err: fmt.Errorf("%w: expired", session_auth.ErrInvalidToken), expected: http.StatusUnauthorized},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			assert.Equal(t, tc.expected, StatusFor(tc.err))
		})
	}
}

func (s *CommonUnitSuite) TestNewErrorResponse(t provider.T) {
	t.Parallel()

	t.Run("Should carry the blocking round ID", func(t provider.T) {
		id := uuid.New()

		resp := NewErrorResponse(&apperr.ActiveRoundError{RoundID: id})

		require.NotNil(t, resp.ActiveRoundID)
		assert.Equal(t, id, *resp.ActiveRoundID)
		assert.Contains(t, resp.Message, id.String())
	})

	t.Run("Should hide internal details", func(t provider.T) {
		resp := NewErrorResponse(apperr.Internal("failed to load round", errors.New("pq: connection reset")))

		assert.Equal(t, "internal error", resp.Message)
		assert.Nil(t, resp.ActiveRoundID)
	})
}

func (s *CommonUnitSuite) TestParseMovieIDs(t provider.T) {
	t.Parallel()

	t.Run("Should parse a comma separated list", func(t provider.T) {
		ids, err := ParseMovieIDs(" 1, 22,,333 ")

		require.NoError(t, err)
		assert.Equal(t, []int{1, 22, 333}, ids)
	})

	t.Run("Should accept an empty list", func(t provider.T) {
		ids, err := ParseMovieIDs("")

		require.NoError(t, err)
		assert.Empty(t, ids)
	})

	t.Run("Should reject junk", func(t provider.T) {
		_, err := ParseMovieIDs("1,abc")

		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(CommonUnitSuite))
}
