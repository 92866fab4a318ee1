package usecase_rating

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	infra_memory "github.com/humanbelnik/movienight/internal/infra/memory"
	"github.com/humanbelnik/movienight/internal/model"
	service_membership "github.com/humanbelnik/movienight/internal/service/membership"
	usecase_round "github.com/humanbelnik/movienight/internal/usecase/round"
	rating_mocks "github.com/humanbelnik/movienight/mocks/rating"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type UsecaseRatingUnitSuite struct {
	suite.Suite
}

var fixedNow = time.Date(2025, time.March, 1, 23, 0, 0, 0, time.UTC)

type resources struct {
	usecase *Usecase
	store   *infra_memory.Store
	ctx     context.Context

	group   model.Group
	creator model.Member
	alice   model.Member
	bob     model.Member
	dave    model.Member
}

func newResources() *resources {
	r := &resources{
		store:   infra_memory.New(),
		ctx:     context.Background(),
		group:   model.Group{ID: uuid.New(), Name: "Flat 4"},
		creator: model.Member{ID: uuid.New(), DisplayName: "Ann", Role: model.RoleCreator},
		alice:   model.Member{ID: uuid.New(), DisplayName: "Alice", Role: model.RoleMember},
		bob:     model.Member{ID: uuid.New(), DisplayName: "Bob", Role: model.RoleMember},
		dave:    model.Member{ID: uuid.New(), DisplayName: "Dave", Role: model.RoleMember},
	}
	r.store.PutGroup(r.group, r.creator, r.alice, r.bob, r.dave)
	return r
}

// initResources wires the real round coordinator as the transitioner.
func initResources() *resources {
	r := newResources()
	membership := service_membership.New(r.store)
	rounds := usecase_round.New(r.store, r.store, membership, nil, nil,
		usecase_round.WithClock(func() time.Time { return fixedNow }))
	r.usecase = New(r.store, r.store, membership, rounds, WithClock(func() time.Time { return fixedNow }))
	return r
}

func initResourcesWithTransitioner(t provider.T) (*resources, *rating_mocks.Transitioner) {
	r := newResources()
	transitioner := rating_mocks.NewTransitioner(t)
	r.usecase = New(r.store, r.store, service_membership.New(r.store), transitioner,
		WithClock(func() time.Time { return fixedNow }))
	return r, transitioner
}

func (r *resources) seedRound(t provider.T, status model.RoundStatus, attendees ...uuid.UUID) model.Round {
	round := model.Round{
		ID:        uuid.New(),
		GroupID:   r.group.ID,
		Status:    status,
		StartedBy: r.creator.ID,
		Attendees: attendees,
		CreatedAt: fixedNow.Add(-3 * time.Hour),
	}
	require.NoError(t, r.store.CreateRoundIfAbsent(r.ctx, round, nil))
	return round
}

func (r *resources) status(t provider.T, roundID uuid.UUID) model.RoundStatus {
	round, err := r.store.RoundByID(r.ctx, roundID)
	require.NoError(t, err)
	return round.Status
}

func (s *UsecaseRatingUnitSuite) TestSubmitPreconditions(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		status        model.RoundStatus
		member        func(r *resources) uuid.UUID
		value         model.RatingValue
		expectedError error
	}{
		{
			name:   "Should accept ratings while selected",
			status: model.StatusSelected,
			member: func(r *resources) uuid.UUID { return r.alice.ID },
			value:  model.RatingLoved,
		},
		{
			name:   "Should accept ratings while watched",
			status: model.StatusWatched,
			member: func(r *resources) uuid.UUID { return r.alice.ID },
			value:  model.RatingDidNotLike,
		},
		{
			name:          "Should reject unknown values",
			status:        model.StatusWatched,
			member:        func(r *resources) uuid.UUID { return r.alice.ID },
			value:         "meh",
			expectedError: apperr.ErrValidation,
		},
		{
			name:          "Should reject ratings while voting",
			status:        model.StatusVoting,
			member:        func(r *resources) uuid.UUID { return r.alice.ID },
			value:         model.RatingLiked,
			expectedError: apperr.ErrValidation,
		},
		{
			name:          "Should reject ratings once rated",
			status:        model.StatusRated,
			member:        func(r *resources) uuid.UUID { return r.alice.ID },
			value:         model.RatingLiked,
			expectedError: apperr.ErrValidation,
		},
		{
			name:          "Should report discarded rounds as gone",
			status:        model.StatusDiscarded,
			member:        func(r *resources) uuid.UUID { return r.alice.ID },
			value:         model.RatingLiked,
			expectedError: apperr.ErrGone,
		},
		{
			name:          "Should forbid outsiders",
			status:        model.StatusWatched,
			member:        func(r *resources) uuid.UUID { return uuid.New() },
			value:         model.RatingLiked,
			expectedError: apperr.ErrForbidden,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources()
			round := r.seedRound(t, tc.status)

			res, err := r.usecase.Submit(r.ctx, round.ID, tc.member(r), tc.value)

			if tc.expectedError != nil {
				assert.ErrorIs(t, err, tc.expectedError)
				ratings, _ := r.store.RatingsByRound(r.ctx, round.ID)
				assert.Empty(t, ratings)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.value, res.Rating.Value)
			assert.Equal(t, fixedNow, res.Rating.RatedAt)
			assert.False(t, res.Completed)
		})
	}

	t.Run("Should fail for unknown rounds", func(t provider.T) {
		r := initResources()

		_, err := r.usecase.Submit(r.ctx, uuid.New(), r.alice.ID, model.RatingLiked)

		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})
}

func (s *UsecaseRatingUnitSuite) TestAutoTransition(t provider.T) {
	t.Parallel()

	t.Run("Should move to rated once every attendee rated", func(t provider.T) {
		r := initResources()
		round := r.seedRound(t, model.StatusWatched, r.creator.ID, r.alice.ID, r.bob.ID)

		for _, id := range []uuid.UUID{r.alice.ID, r.bob.ID} {
			res, err := r.usecase.Submit(r.ctx, round.ID, id, model.RatingLiked)
			require.NoError(t, err)
			assert.False(t, res.Completed)
		}
		assert.Equal(t, model.StatusWatched, r.status(t, round.ID))

		res, err := r.usecase.Submit(r.ctx, round.ID, r.dave.ID, model.RatingLoved)
		require.NoError(t, err)
		assert.False(t, res.Completed)
		assert.Equal(t, model.StatusWatched, r.status(t, round.ID))

		res, err = r.usecase.Submit(r.ctx, round.ID, r.creator.ID, model.RatingLoved)
		require.NoError(t, err)
		assert.True(t, res.Completed)
		assert.Equal(t, model.StatusRated, res.Round.Status)
		assert.Equal(t, model.StatusRated, r.status(t, round.ID))
	})

	t.Run("Should require every member without an attendee list", func(t provider.T) {
		r := initResources()
		round := r.seedRound(t, model.StatusWatched)

		for _, id := range []uuid.UUID{r.creator.ID, r.alice.ID, r.bob.ID} {
			_, err := r.usecase.Submit(r.ctx, round.ID, id, model.RatingLiked)
			require.NoError(t, err)
		}
		assert.Equal(t, model.StatusWatched, r.status(t, round.ID))

		res, err := r.usecase.Submit(r.ctx, round.ID, r.dave.ID, model.RatingLiked)
		require.NoError(t, err)
		assert.True(t, res.Completed)
	})

	t.Run("Should not advance a selected round", func(t provider.T) {
		r := initResources()
		round := r.seedRound(t, model.StatusSelected, r.alice.ID, r.bob.ID)

		for _, id := range []uuid.UUID{r.alice.ID, r.bob.ID} {
			_, err := r.usecase.Submit(r.ctx, round.ID, id, model.RatingLiked)
			require.NoError(t, err)
		}

		assert.Equal(t, model.StatusSelected, r.status(t, round.ID))
	})

	t.Run("Should swallow a failing transition", func(t provider.T) {
		r, transitioner := initResourcesWithTransitioner(t)
		round := r.seedRound(t, model.StatusWatched, r.alice.ID)
		transitioner.On("Transition", mock.Anything, round.ID, model.SystemActor(), model.StatusRated).
			Return(model.Round{}, apperr.Conflict("round is rated, cannot move to rated")).Once()

		res, err := r.usecase.Submit(r.ctx, round.ID, r.alice.ID, model.RatingLoved)

		require.NoError(t, err)
		assert.False(t, res.Completed)
		assert.Equal(t, model.RatingLoved, res.Rating.Value)
	})
}

func (s *UsecaseRatingUnitSuite) TestSessionView(t provider.T) {
	t.Parallel()

	t.Run("Should list every attendee rated or not", func(t provider.T) {
		r := initResources()
		round := r.seedRound(t, model.StatusWatched, r.bob.ID, r.alice.ID)
		_, err := r.usecase.Submit(r.ctx, round.ID, r.alice.ID, model.RatingLiked)
		require.NoError(t, err)

		view, err := r.usecase.SessionView(r.ctx, round.ID, r.creator.ID)

		require.NoError(t, err)
		assert.Equal(t, round.ID, view.RoundID)
		require.Len(t, view.Ratings, 2)

		assert.Equal(t, r.bob.ID, view.Ratings[0].MemberID)
		assert.Equal(t, "Bob", view.Ratings[0].DisplayName)
		assert.Nil(t, view.Ratings[0].Value)
		assert.Nil(t, view.Ratings[0].RatedAt)

		assert.Equal(t, r.alice.ID, view.Ratings[1].MemberID)
		require.NotNil(t, view.Ratings[1].Value)
		assert.Equal(t, model.RatingLiked, *view.Ratings[1].Value)
		require.NotNil(t, view.Ratings[1].RatedAt)
		assert.Equal(t, fixedNow, *view.Ratings[1].RatedAt)
	})

	t.Run("Should list the whole group without attendees", func(t provider.T) {
		r := initResources()
		round := r.seedRound(t, model.StatusSelected)

		view, err := r.usecase.SessionView(r.ctx, round.ID, r.alice.ID)

		require.NoError(t, err)
		assert.Len(t, view.Ratings, 4)
	})

	t.Run("Should forbid outsiders", func(t provider.T) {
		r := initResources()
		round := r.seedRound(t, model.StatusSelected)

		_, err := r.usecase.SessionView(r.ctx, round.ID, uuid.New())

		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseRatingUnitSuite))
}
