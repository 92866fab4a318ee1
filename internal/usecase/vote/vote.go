package usecase_vote

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	"github.com/humanbelnik/movienight/internal/metrics"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/humanbelnik/movienight/internal/storage"
)

type Repository interface {
	UpsertVote(ctx context.Context, v model.Vote) error
	VotesByRound(ctx context.Context, roundID uuid.UUID) ([]model.Vote, error)
}

type RoundReader interface {
	RoundByID(ctx context.Context, roundID uuid.UUID) (model.Round, error)
	SuggestionsByRound(ctx context.Context, roundID uuid.UUID) ([]model.Suggestion, error)
}

type MembershipProvider interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (model.Member, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.Member, error)
}

type Usecase struct {
	repository Repository
	rounds     RoundReader
	membership MembershipProvider
	now        func() time.Time
}

type Option func(*Usecase)

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func New(
	repository Repository,
	rounds RoundReader,
	membership MembershipProvider,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		repository: repository,
		rounds:     rounds,
		membership: membership,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// Vote records the voter's opinion on one suggestion. Resubmitting overwrites
// the previous value.
func (u *Usecase) Vote(
	ctx context.Context,
	roundID uuid.UUID,
	movieID model.MovieID,
	voterID uuid.UUID,
	value model.VoteValue,
) (model.Vote, error) {
	if !value.Valid() {
		return model.Vote{}, apperr.Validation("vote must be %q or %q", model.VoteUp, model.VoteDown)
	}

	round, err := u.loadRound(ctx, roundID)
	if err != nil {
		return model.Vote{}, err
	}
	if !round.CanAcceptVotes() {
		return model.Vote{}, apperr.Validation("round is %s, votes are closed", round.Status)
	}
	if _, err := u.membership.IsMember(ctx, round.GroupID, voterID); err != nil {
		return model.Vote{}, err
	}
	if round.HasAttendees() && !round.IsAttendee(voterID) {
		return model.Vote{}, apperr.Forbidden("only attendees can vote in this round")
	}

	suggestions, err := u.rounds.SuggestionsByRound(ctx, roundID)
	if err != nil {
		return model.Vote{}, apperr.Internal("failed to load suggestions", err)
	}
	if _, ok := model.FindSuggestion(suggestions, movieID); !ok {
		return model.Vote{}, apperr.Validation("movie %d is not suggested in this round", movieID)
	}

	v := model.Vote{
		RoundID: roundID,
		MovieID: movieID,
		VoterID: voterID,
		Value:   value,
		VotedAt: u.now().UTC(),
	}
	if err := u.repository.UpsertVote(ctx, v); err != nil {
		return model.Vote{}, apperr.Internal("failed to store vote", err)
	}
	metrics.VotesCast.Inc()
	return v, nil
}

type Results struct {
	GroupID  uuid.UUID
	Ranking  []model.RankedMovie
	Progress model.VoteProgress
}

func (u *Usecase) Rank(ctx context.Context, roundID uuid.UUID) ([]model.RankedMovie, error) {
	if _, err := u.loadRound(ctx, roundID); err != nil {
		return nil, err
	}
	tallies, _, err := u.tallies(ctx, roundID)
	if err != nil {
		return nil, err
	}
	return RankTallies(tallies), nil
}

func (u *Usecase) Progress(ctx context.Context, roundID uuid.UUID) (model.VoteProgress, error) {
	round, err := u.loadRound(ctx, roundID)
	if err != nil {
		return model.VoteProgress{}, err
	}
	votes, err := u.repository.VotesByRound(ctx, roundID)
	if err != nil {
		return model.VoteProgress{}, apperr.Internal("failed to load votes", err)
	}
	return u.progress(ctx, round, votes)
}

// Results is the ranking plus vote progress of one round.
func (u *Usecase) Results(ctx context.Context, roundID uuid.UUID) (Results, error) {
	round, err := u.loadRound(ctx, roundID)
	if err != nil {
		return Results{}, err
	}
	tallies, votes, err := u.tallies(ctx, roundID)
	if err != nil {
		return Results{}, err
	}
	progress, err := u.progress(ctx, round, votes)
	if err != nil {
		return Results{}, err
	}
	return Results{
		GroupID:  round.GroupID,
		Ranking:  RankTallies(tallies),
		Progress: progress,
	}, nil
}

// ViewResults is Results for a group member.
func (u *Usecase) ViewResults(ctx context.Context, roundID, viewerID uuid.UUID) (Results, error) {
	round, err := u.loadRound(ctx, roundID)
	if err != nil {
		return Results{}, err
	}
	if _, err := u.membership.IsMember(ctx, round.GroupID, viewerID); err != nil {
		return Results{}, err
	}
	return u.Results(ctx, roundID)
}

func (u *Usecase) tallies(ctx context.Context, roundID uuid.UUID) ([]model.MovieTally, []model.Vote, error) {
	suggestions, err := u.rounds.SuggestionsByRound(ctx, roundID)
	if err != nil {
		return nil, nil, apperr.Internal("failed to load suggestions", err)
	}
	votes, err := u.repository.VotesByRound(ctx, roundID)
	if err != nil {
		return nil, nil, apperr.Internal("failed to load votes", err)
	}
	return Tally(suggestions, votes), votes, nil
}

func (u *Usecase) progress(ctx context.Context, round model.Round, votes []model.Vote) (model.VoteProgress, error) {
	memberCount := 0
	if !round.HasAttendees() {
		members, err := u.membership.ListMembers(ctx, round.GroupID)
		if err != nil {
			return model.VoteProgress{}, err
		}
		memberCount = len(members)
	}
	return ComputeProgress(round, votes, memberCount), nil
}

func (u *Usecase) loadRound(ctx context.Context, roundID uuid.UUID) (model.Round, error) {
	round, err := u.rounds.RoundByID(ctx, roundID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Round{}, apperr.NotFound("round %s not found", roundID)
		}
		return model.Round{}, apperr.Internal("failed to load round", err)
	}
	if round.Status == model.StatusDiscarded {
		return model.Round{}, apperr.Gone("round %s was discarded", roundID)
	}
	return round, nil
}

// Tally joins suggestions with their votes, keeping suggestion order.
// Votes for movies outside the suggestion list are ignored.
func Tally(suggestions []model.Suggestion, votes []model.Vote) []model.MovieTally {
	ordered := slices.Clone(suggestions)
	slices.SortStableFunc(ordered, func(a, b model.Suggestion) int {
		return cmp.Compare(a.Position, b.Position)
	})

	index := make(map[model.MovieID]int, len(ordered))
	tallies := make([]model.MovieTally, len(ordered))
	for i, s := range ordered {
		index[s.Movie.ID] = i
		tallies[i] = model.MovieTally{Suggestion: s}
	}

	for _, v := range votes {
		i, ok := index[v.MovieID]
		if !ok {
			continue
		}
		switch v.Value {
		case model.VoteUp:
			tallies[i].Up++
			tallies[i].UpVoters = append(tallies[i].UpVoters, v.VoterID)
		case model.VoteDown:
			tallies[i].Down++
			tallies[i].DownVoters = append(tallies[i].DownVoters, v.VoterID)
		}
	}
	return tallies
}

// RankTallies orders by net score, then popularity captured at suggestion time,
// then suggestion position. Entries equal to their predecessor on both net score
// and popularity share its rank and are flagged tied.
func RankTallies(tallies []model.MovieTally) []model.RankedMovie {
	ranked := make([]model.RankedMovie, 0, len(tallies))
	positions := make(map[model.MovieID]int, len(tallies))
	for _, t := range tallies {
		positions[t.Suggestion.Movie.ID] = t.Suggestion.Position
		ranked = append(ranked, model.RankedMovie{
			MovieID:    t.Suggestion.Movie.ID,
			Title:      t.Suggestion.Movie.Title,
			Up:         t.Up,
			Down:       t.Down,
			NetScore:   t.Up - t.Down,
			Popularity: t.Suggestion.Movie.Popularity,
			Source:     t.Suggestion.Source,
		})
	}

	slices.SortStableFunc(ranked, func(a, b model.RankedMovie) int {
		if c := cmp.Compare(b.NetScore, a.NetScore); c != 0 {
			return c
		}
		if c := cmp.Compare(b.Popularity, a.Popularity); c != 0 {
			return c
		}
		return cmp.Compare(positions[a.MovieID], positions[b.MovieID])
	})

	for i := range ranked {
		if i == 0 {
			ranked[i].Rank = 1
			continue
		}
		prev := &ranked[i-1]
		if ranked[i].NetScore == prev.NetScore && ranked[i].Popularity == prev.Popularity {
			ranked[i].Rank = prev.Rank
			ranked[i].Tied = true
			prev.Tied = true
			continue
		}
		ranked[i].Rank = i + 1
	}
	return ranked
}

// ComputeProgress counts distinct voters. With an attendee list only attendees
// count toward both sides; otherwise total is the group size.
func ComputeProgress(round model.Round, votes []model.Vote, memberCount int) model.VoteProgress {
	voters := make(map[uuid.UUID]struct{}, len(votes))
	for _, v := range votes {
		if round.HasAttendees() && !round.IsAttendee(v.VoterID) {
			continue
		}
		voters[v.VoterID] = struct{}{}
	}

	total := memberCount
	if round.HasAttendees() {
		total = len(round.Attendees)
	}
	return model.VoteProgress{
		Voted: len(voters),
		Total: total,
	}
}
