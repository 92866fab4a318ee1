package infra_postgres_vote

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/jmoiron/sqlx"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type VoteInfraUnitSuite struct {
	suite.Suite
}

type resources struct {
	mock   sqlmock.Sqlmock
	driver *Driver
	ctx    context.Context
}

func initResources(t provider.T) *resources {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	return &resources{
		mock:   mock,
		driver: New(sqlx.NewDb(db, "sqlmock")),
		ctx:    context.Background(),
	}
}

func validVote() model.Vote {
	return model.Vote{
		RoundID: uuid.New(),
		MovieID: 603,
		VoterID: uuid.New(),
		Value:   model.VoteUp,
		VotedAt: time.Date(2025, time.March, 1, 20, 0, 0, 0, time.UTC),
	}
}

func (s *VoteInfraUnitSuite) TestUpsertVote(t provider.T) {
	t.Parallel()

	testCases := []struct {
		name          string
		setupMocks    func(r *resources, v model.Vote)
		errorContains string
	}{
		{
			name: "Should upsert on the natural key",
			setupMocks: func(r *resources, v model.Vote) {
				r.mock.ExpectExec("INSERT INTO votes (.+) ON CONFLICT \\(round_id, movie_id, voter_id\\)").
					WithArgs(v.RoundID, v.MovieID, v.VoterID, "up", v.VotedAt).
					WillReturnResult(sqlmock.NewResult(0, 1))
			},
		},
		{
			name: "Should wrap driver errors",
			setupMocks: func(r *resources, v model.Vote) {
				r.mock.ExpectExec("INSERT INTO votes").WillReturnError(errors.New("connection reset"))
			},
			errorContains: "failed to upsert vote",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t provider.T) {
			t.Parallel()
			r := initResources(t)
			v := validVote()
			tc.setupMocks(r, v)

			err := r.driver.UpsertVote(r.ctx, v)

			if tc.errorContains != "" {
				assert.ErrorContains(t, err, tc.errorContains)
			} else {
				assert.NoError(t, err)
			}
			assert.NoError(t, r.mock.ExpectationsWereMet())
		})
	}
}

func (s *VoteInfraUnitSuite) TestVotesByRound(t provider.T) {
	t.Parallel()

	t.Run("Should map rows to votes", func(t provider.T) {
		r := initResources(t)
		v := validVote()
		rows := sqlmock.NewRows([]string{"round_id", "movie_id", "voter_id", "value", "voted_at"}).
			AddRow(v.RoundID.String(), v.MovieID, v.VoterID.String(), "down", v.VotedAt)
		r.mock.ExpectQuery("SELECT (.+) FROM votes").WithArgs(v.RoundID).WillReturnRows(rows)

		votes, err := r.driver.VotesByRound(r.ctx, v.RoundID)

		require.NoError(t, err)
		require.Len(t, votes, 1)
		assert.Equal(t, model.VoteDown, votes[0].Value)
		assert.Equal(t, v.VoterID, votes[0].VoterID)
		assert.NoError(t, r.mock.ExpectationsWereMet())
	})

	t.Run("Should wrap query errors", func(t provider.T) {
		r := initResources(t)
		r.mock.ExpectQuery("SELECT (.+) FROM votes").WillReturnError(errors.New("timeout"))

		_, err := r.driver.VotesByRound(r.ctx, uuid.New())

		assert.ErrorContains(t, err, "failed to query votes")
	})
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(VoteInfraUnitSuite))
}
