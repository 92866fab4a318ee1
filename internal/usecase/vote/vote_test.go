package usecase_vote

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	infra_memory "github.com/humanbelnik/movienight/internal/infra/memory"
	"github.com/humanbelnik/movienight/internal/model"
	service_membership "github.com/humanbelnik/movienight/internal/service/membership"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type UsecaseVoteUnitSuite struct {
	suite.Suite
}

type resources struct {
	usecase *Usecase
	store   *infra_memory.Store
	ctx     context.Context

	group   model.Group
	creator model.Member
	alice   model.Member
	bob     model.Member
	clock   time.Time
}

func initResources(t provider.T) *resources {
	r := &resources{
		store:   infra_memory.New(),
		ctx:     context.Background(),
		group:   model.Group{ID: uuid.New(), Name: "Flat 4"},
		creator: model.Member{ID: uuid.New(), DisplayName: "Ann", Role: model.RoleCreator},
		alice:   model.Member{ID: uuid.New(), DisplayName: "Alice", Role: model.RoleMember},
		bob:     model.Member{ID: uuid.New(), DisplayName: "Bob", Role: model.RoleMember},
		clock:   time.Date(2025, time.March, 1, 20, 0, 0, 0, time.UTC),
	}
	r.store.PutGroup(r.group, r.creator, r.alice, r.bob)
	r.usecase = New(r.store, r.store, service_membership.New(r.store), WithClock(func() time.Time {
		r.clock = r.clock.Add(time.Second)
		return r.clock
	}))
	return r
}

func validSuggestion(id int, title string, popularity float64, position int) model.Suggestion {
	return model.Suggestion{
		Movie:    model.CandidateMovie{ID: id, Title: title, Popularity: popularity},
		Score:    0.5,
		Source:   model.SourceAlgorithm,
		Position: position,
	}
}

func (r *resources) seedRound(t provider.T, status model.RoundStatus, attendees []uuid.UUID, suggestions ...model.Suggestion) model.Round {
	round := model.Round{
		ID:        uuid.New(),
		GroupID:   r.group.ID,
		Status:    status,
		StartedBy: r.creator.ID,
		Attendees: attendees,
		CreatedAt: r.clock,
	}
	for i := range suggestions {
		suggestions[i].RoundID = round.ID
	}
	require.NoError(t, r.store.CreateRoundIfAbsent(r.ctx, round, suggestions))
	return round
}

func (s *UsecaseVoteUnitSuite) TestVotePreconditions(t provider.T) {
	t.Parallel()

	outsider := uuid.New()

	testCases := []struct {
		name         string
		status       model.RoundStatus
		attendees    func(r *resources) []uuid.UUID
		voter        func(r *resources) uuid.UUID
		movieID      int
		value        model.VoteValue
		missingRound bool
		expectedKind apperr.Kind
	}{
		{
			name:         "Should reject unknown vote values",
			status:       model.StatusVoting,
			voter:        func(r *resources) uuid.UUID { return r.alice.ID },
			movieID:      1,
			value:        "sideways",
			expectedKind: apperr.KindValidation,
		},
		{
			name:         "Should report missing rounds",
			status:       model.StatusVoting,
			voter:        func(r *resources) uuid.UUID { return r.alice.ID },
			movieID:      1,
			value:        model.VoteUp,
			missingRound: true,
			expectedKind: apperr.KindNotFound,
		},
		{
			name:         "Should reject votes on closed rounds",
			status:       model.StatusClosed,
			voter:        func(r *resources) uuid.UUID { return r.alice.ID },
			movieID:      1,
			value:        model.VoteUp,
			expectedKind: apperr.KindValidation,
		},
		{
			name:         "Should report discarded rounds as gone",
			status:       model.StatusDiscarded,
			voter:        func(r *resources) uuid.UUID { return r.alice.ID },
			movieID:      1,
			value:        model.VoteUp,
			expectedKind: apperr.KindGone,
		},
		{
			name:         "Should forbid non members",
			status:       model.StatusVoting,
			voter:        func(r *resources) uuid.UUID { return outsider },
			movieID:      1,
			value:        model.VoteUp,
			expectedKind: apperr.KindForbidden,
		},
		{
			name:   "Should forbid members outside the attendee list",
			status: model.StatusVoting,
			attendees: func(r *resources) []uuid.UUID {
				return []uuid.UUID{r.creator.ID, r.alice.ID}
			},
			voter:        func(r *resources) uuid.UUID { return r.bob.ID },
			movieID:      1,
			value:        model.VoteUp,
			expectedKind: apperr.KindForbidden,
		},
		{
			name:         "Should reject movies that were not suggested",
			status:       model.StatusVoting,
			voter:        func(r *resources) uuid.UUID { return r.alice.ID },
			movieID:      999,
			value:        model.VoteUp,
			expectedKind: apperr.KindValidation,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)

			var attendees []uuid.UUID
			if tc.attendees != nil {
				attendees = tc.attendees(r)
			}
			round := r.seedRound(t, tc.status, attendees, validSuggestion(1, "A", 60, 0))
			roundID := round.ID
			if tc.missingRound {
				roundID = uuid.New()
			}

			_, err := r.usecase.Vote(r.ctx, roundID, tc.movieID, tc.voter(r), tc.value)

			require.Error(t, err)
			assert.Equal(t, tc.expectedKind, apperr.KindOf(err))
			votes, _ := r.store.VotesByRound(r.ctx, round.ID)
			assert.Empty(t, votes)
		})
	}
}

func (s *UsecaseVoteUnitSuite) TestVoteUpsert(t provider.T) {
	t.Parallel()

	t.Run("Should keep one record per voter and movie", func(t provider.T) {
		r := initResources(t)
		round := r.seedRound(t, model.StatusVoting, nil, validSuggestion(1, "A", 60, 0))

		first, err := r.usecase.Vote(r.ctx, round.ID, 1, r.alice.ID, model.VoteUp)
		require.NoError(t, err)
		second, err := r.usecase.Vote(r.ctx, round.ID, 1, r.alice.ID, model.VoteUp)
		require.NoError(t, err)

		votes, err := r.store.VotesByRound(r.ctx, round.ID)
		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, model.VoteUp, votes[0].Value)
		assert.True(t, second.VotedAt.After(first.VotedAt))
		assert.Equal(t, second.VotedAt, votes[0].VotedAt)
	})

	t.Run("Should let the last write win when the value changes", func(t provider.T) {
		r := initResources(t)
		round := r.seedRound(t, model.StatusVoting, nil, validSuggestion(1, "A", 60, 0))

		_, err := r.usecase.Vote(r.ctx, round.ID, 1, r.alice.ID, model.VoteUp)
		require.NoError(t, err)
		_, err = r.usecase.Vote(r.ctx, round.ID, 1, r.alice.ID, model.VoteDown)
		require.NoError(t, err)

		ranking, err := r.usecase.Rank(r.ctx, round.ID)
		require.NoError(t, err)
		require.Len(t, ranking, 1)
		assert.Equal(t, 0, ranking[0].Up)
		assert.Equal(t, 1, ranking[0].Down)
		assert.Equal(t, -1, ranking[0].NetScore)
	})
}

func (s *UsecaseVoteUnitSuite) TestRank(t provider.T) {
	t.Parallel()

	t.Run("Should order by net score when popularity is equal", func(t provider.T) {
		r := initResources(t)
		round := r.seedRound(t, model.StatusVoting, nil,
			validSuggestion(1, "A", 60, 1),
			validSuggestion(2, "B", 60, 0),
		)
		cast := func(movieID int, voter uuid.UUID, v model.VoteValue) {
			_, err := r.usecase.Vote(r.ctx, round.ID, movieID, voter, v)
			require.NoError(t, err)
		}
		cast(1, r.creator.ID, model.VoteUp)
		cast(1, r.alice.ID, model.VoteUp)
		cast(1, r.bob.ID, model.VoteDown)
		cast(2, r.creator.ID, model.VoteUp)
		cast(2, r.alice.ID, model.VoteDown)
		cast(2, r.bob.ID, model.VoteDown)

		ranking, err := r.usecase.Rank(r.ctx, round.ID)

		require.NoError(t, err)
		require.Len(t, ranking, 2)
		assert.Equal(t, 1, ranking[0].MovieID)
		assert.Equal(t, 1, ranking[0].Rank)
		assert.False(t, ranking[0].Tied)
		assert.Equal(t, 2, ranking[1].MovieID)
		assert.Equal(t, 2, ranking[1].Rank)
		assert.False(t, ranking[1].Tied)
	})

	t.Run("Should tie equal net score and popularity", func(t provider.T) {
		r := initResources(t)
		round := r.seedRound(t, model.StatusVoting, nil,
			validSuggestion(1, "A", 50.0, 0),
			validSuggestion(2, "B", 50.0, 1),
		)
		_, err := r.usecase.Vote(r.ctx, round.ID, 1, r.alice.ID, model.VoteUp)
		require.NoError(t, err)
		_, err = r.usecase.Vote(r.ctx, round.ID, 2, r.bob.ID, model.VoteUp)
		require.NoError(t, err)

		ranking, err := r.usecase.Rank(r.ctx, round.ID)

		require.NoError(t, err)
		require.Len(t, ranking, 2)
		for _, m := range ranking {
			assert.Equal(t, 1, m.Rank)
			assert.True(t, m.Tied)
			assert.Equal(t, 1, m.NetScore)
		}
	})

	t.Run("Should return an empty ranking without suggestions", func(t provider.T) {
		r := initResources(t)
		round := r.seedRound(t, model.StatusVoting, nil)

		ranking, err := r.usecase.Rank(r.ctx, round.ID)

		require.NoError(t, err)
		assert.Empty(t, ranking)
	})
}

func (s *UsecaseVoteUnitSuite) TestRankTallies(t provider.T) {
	t.Parallel()

	t.Run("Should break net score ties by popularity and skip ranks after ties", func(t provider.T) {
		tallies := []model.MovieTally{
			{Suggestion: validSuggestion(1, "A", 10, 0), Up: 1},
			{Suggestion: validSuggestion(2, "B", 40, 1), Up: 1},
			{Suggestion: validSuggestion(3, "C", 40, 2), Up: 1},
			{Suggestion: validSuggestion(4, "D", 99, 3)},
		}

		ranked := RankTallies(tallies)

		got := make([][3]any, 0, len(ranked))
		for _, m := range ranked {
			got = append(got, [3]any{m.MovieID, m.Rank, m.Tied})
		}
		assert.Equal(t, [][3]any{
			{2, 1, true},
			{3, 1, true},
			{1, 3, false},
			{4, 4, false},
		}, got)
	})

	t.Run("Should tie every suggestion when nobody voted and popularity matches", func(t provider.T) {
		ranked := RankTallies(Tally([]model.Suggestion{
			validSuggestion(1, "A", 20, 0),
			validSuggestion(2, "B", 20, 1),
			validSuggestion(3, "C", 20, 2),
		}, nil))

		for i, m := range ranked {
			assert.Equal(t, i+1, m.MovieID)
			assert.Equal(t, 1, m.Rank)
			assert.True(t, m.Tied)
		}
	})
}

func (s *UsecaseVoteUnitSuite) TestProgress(t provider.T) {
	t.Parallel()

	t.Run("Should count distinct voters over group size", func(t provider.T) {
		r := initResources(t)
		round := r.seedRound(t, model.StatusVoting, nil,
			validSuggestion(1, "A", 10, 0),
			validSuggestion(2, "B", 10, 1),
		)
		for _, id := range []int{1, 2} {
			_, err := r.usecase.Vote(r.ctx, round.ID, id, r.alice.ID, model.VoteUp)
			require.NoError(t, err)
		}

		progress, err := r.usecase.Progress(r.ctx, round.ID)

		require.NoError(t, err)
		assert.Equal(t, model.VoteProgress{Voted: 1, Total: 3}, progress)
	})

	t.Run("Should count only attendees when the round has an attendee list", func(t provider.T) {
		round := model.Round{Attendees: []uuid.UUID{uuid.New(), uuid.New()}}
		outsider := uuid.New()
		votes := []model.Vote{
			{VoterID: round.Attendees[0], MovieID: 1},
			{VoterID: round.Attendees[0], MovieID: 2},
			{VoterID: outsider, MovieID: 1},
		}

		progress := ComputeProgress(round, votes, 10)

		assert.Equal(t, model.VoteProgress{Voted: 1, Total: 2}, progress)
	})
}

func (s *UsecaseVoteUnitSuite) TestViewResults(t provider.T) {
	t.Parallel()

	t.Run("Should return ranking and progress for members", func(t provider.T) {
		r := initResources(t)
		round := r.seedRound(t, model.StatusVoting, nil,
			validSuggestion(1, "A", 10, 0),
			validSuggestion(2, "B", 10, 1),
		)
		_, err := r.usecase.Vote(r.ctx, round.ID, 2, r.alice.ID, model.VoteUp)
		require.NoError(t, err)

		res, err := r.usecase.ViewResults(r.ctx, round.ID, r.bob.ID)

		require.NoError(t, err)
		assert.Equal(t, round.GroupID, res.GroupID)
		require.Len(t, res.Ranking, 2)
		assert.Equal(t, 2, res.Ranking[0].MovieID)
		assert.Equal(t, model.VoteProgress{Voted: 1, Total: 3}, res.Progress)
	})

	t.Run("Should forbid outsiders", func(t provider.T) {
		r := initResources(t)
		round := r.seedRound(t, model.StatusVoting, nil, validSuggestion(1, "A", 10, 0))

		_, err := r.usecase.ViewResults(r.ctx, round.ID, uuid.New())

		assert.ErrorIs(t, err, apperr.ErrForbidden)
	})
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(UsecaseVoteUnitSuite))
}
