package usecase_round

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	"github.com/humanbelnik/movienight/internal/metrics"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/humanbelnik/movienight/internal/storage"
	usecase_suggestion "github.com/humanbelnik/movienight/internal/usecase/suggestion"
	usecase_vote "github.com/humanbelnik/movienight/internal/usecase/vote"
)

const maxWatchlistExtras = 4

const watchlistReason = "From the group watchlist"

type Repository interface {
	CreateRoundIfAbsent(ctx context.Context, round model.Round, suggestions []model.Suggestion) error
	RoundByID(ctx context.Context, roundID uuid.UUID) (model.Round, error)
	RoundsByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Round, error)
	VotingRounds(ctx context.Context, groupID uuid.UUID) ([]model.Round, error)
	CompareAndSetStatus(ctx context.Context, change storage.StatusChange) error
	SuggestionsByRound(ctx context.Context, roundID uuid.UUID) ([]model.Suggestion, error)
	LockPick(ctx context.Context, pick model.Pick, from []model.RoundStatus) error
	PickByRound(ctx context.Context, roundID uuid.UUID) (model.Pick, error)
}

type VoteReader interface {
	VotesByRound(ctx context.Context, roundID uuid.UUID) ([]model.Vote, error)
}

type MembershipProvider interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (model.Member, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.Member, error)
}

//go:generate mockery --name=Suggester --output=../../../mocks/round --filename=suggester.go
type Suggester interface {
	Suggest(ctx context.Context, groupID uuid.UUID, exclude []model.MovieID, attendees []uuid.UUID) (usecase_suggestion.Result, error)
}

type Watchlist interface {
	GetWatchlist(ctx context.Context, groupID uuid.UUID) ([]model.WatchlistItem, error)
}

type Usecase struct {
	repository Repository
	votes      VoteReader
	membership MembershipProvider
	suggester  Suggester
	watchlist  Watchlist

	now    func() time.Time
	logger *slog.Logger
}

type Option func(*Usecase)

func WithClock(now func() time.Time) Option {
	return func(u *Usecase) {
		u.now = now
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(u *Usecase) {
		u.logger = logger
	}
}

func New(
	repository Repository,
	votes VoteReader,
	membership MembershipProvider,
	suggester Suggester,
	watchlist Watchlist,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		repository: repository,
		votes:      votes,
		membership: membership,
		suggester:  suggester,
		watchlist:  watchlist,
		now:        time.Now,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type CreateInput struct {
	GroupID   uuid.UUID
	StartedBy uuid.UUID
	Attendees []uuid.UUID
	Exclude   []model.MovieID
}

type CreateResult struct {
	Round       model.Round
	Suggestions []model.Suggestion
	Relaxed     []string
	// Watchlist items that were neither suggested nor watched, before the cap.
	WatchlistEligible int
}

// Create opens a voting round for the group. At most one voting round exists per
// group; a losing concurrent create discards its own round and reports the winner.
func (u *Usecase) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	if _, err := u.membership.IsMember(ctx, in.GroupID, in.StartedBy); err != nil {
		return CreateResult{}, err
	}

	attendees, err := u.validateAttendees(ctx, in.GroupID, in.Attendees)
	if err != nil {
		return CreateResult{}, err
	}

	active, found, err := u.activeRound(ctx, in.GroupID)
	if err != nil {
		return CreateResult{}, err
	}
	if found {
		metrics.RoundConflicts.WithLabelValues("create").Inc()
		return CreateResult{}, &apperr.ActiveRoundError{RoundID: active.ID}
	}

	res, err := u.suggester.Suggest(ctx, in.GroupID, in.Exclude, attendees)
	if err != nil {
		return CreateResult{}, err
	}

	suggestions, eligible, err := u.mergeWatchlist(ctx, in.GroupID, res)
	if err != nil {
		return CreateResult{}, err
	}

	round := model.Round{
		ID:        uuid.New(),
		GroupID:   in.GroupID,
		Status:    model.StatusVoting,
		StartedBy: in.StartedBy,
		Attendees: attendees,
		CreatedAt: u.now().UTC(),
	}
	for i := range suggestions {
		suggestions[i].RoundID = round.ID
	}

	if err := u.repository.CreateRoundIfAbsent(ctx, round, suggestions); err != nil {
		if errors.Is(err, storage.ErrConditionFailed) {
			metrics.RoundConflicts.WithLabelValues("create").Inc()
			return CreateResult{}, u.activeRoundConflict(ctx, in.GroupID)
		}
		return CreateResult{}, apperr.Internal("failed to store round", err)
	}

	winner, found, err := u.activeRound(ctx, in.GroupID)
	if err != nil {
		return CreateResult{}, err
	}
	if found && winner.ID != round.ID {
		metrics.RoundConflicts.WithLabelValues("create").Inc()
		u.discard(ctx, round.ID)
		return CreateResult{}, &apperr.ActiveRoundError{RoundID: winner.ID}
	}

	metrics.RoundsCreated.Inc()
	return CreateResult{
		Round:             round,
		Suggestions:       suggestions,
		Relaxed:           res.Relaxed,
		WatchlistEligible: eligible,
	}, nil
}

// validateAttendees dedupes the list and requires every ID to be a group member.
func (u *Usecase) validateAttendees(ctx context.Context, groupID uuid.UUID, attendees []uuid.UUID) ([]uuid.UUID, error) {
	if len(attendees) == 0 {
		return nil, nil
	}

	members, err := u.membership.ListMembers(ctx, groupID)
	if err != nil {
		return nil, err
	}
	known := make(map[uuid.UUID]struct{}, len(members))
	for _, m := range members {
		known[m.ID] = struct{}{}
	}

	out := make([]uuid.UUID, 0, len(attendees))
	for _, id := range attendees {
		if _, ok := known[id]; !ok {
			return nil, apperr.Validation("attendee %s is not a member of this group", id)
		}
		if !slices.Contains(out, id) {
			out = append(out, id)
		}
	}
	return out, nil
}

// activeRound returns the group's oldest voting round.
func (u *Usecase) activeRound(ctx context.Context, groupID uuid.UUID) (model.Round, bool, error) {
	rounds, err := u.repository.VotingRounds(ctx, groupID)
	if err != nil {
		return model.Round{}, false, apperr.Internal("failed to load active round", err)
	}
	if len(rounds) == 0 {
		return model.Round{}, false, nil
	}
	return slices.MinFunc(rounds, func(a, b model.Round) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return slices.Compare(a.ID[:], b.ID[:])
	}), true, nil
}

func (u *Usecase) activeRoundConflict(ctx context.Context, groupID uuid.UUID) error {
	active, found, err := u.activeRound(ctx, groupID)
	if err != nil {
		return err
	}
	if !found {
		return apperr.Conflict("round was created concurrently, retry")
	}
	return &apperr.ActiveRoundError{RoundID: active.ID}
}

// discard retires a round that lost the create race.
func (u *Usecase) discard(ctx context.Context, roundID uuid.UUID) {
	err := u.repository.CompareAndSetStatus(ctx, storage.StatusChange{
		RoundID: roundID,
		From:    []model.RoundStatus{model.StatusVoting},
		To:      model.StatusDiscarded,
		At:      u.now().UTC(),
	})
	if err != nil {
		u.logger.Error("failed to discard losing round",
			slog.String("round_id", roundID.String()),
			slog.String("error", err.Error()),
		)
	}
}

// mergeWatchlist appends up to maxWatchlistExtras watchlist items in insertion
// order, skipping movies already suggested or excluded.
func (u *Usecase) mergeWatchlist(ctx context.Context, groupID uuid.UUID, res usecase_suggestion.Result) ([]model.Suggestion, int, error) {
	suggestions := slices.Clone(res.Suggestions)

	items, err := u.watchlist.GetWatchlist(ctx, groupID)
	if err != nil {
		return nil, 0, apperr.Internal("failed to load watchlist", err)
	}

	present := make(map[model.MovieID]struct{}, len(suggestions))
	for _, s := range suggestions {
		present[s.Movie.ID] = struct{}{}
	}

	eligible := 0
	added := 0
	for _, item := range items {
		if _, ok := present[item.MovieID]; ok {
			continue
		}
		if _, ok := res.Excluded[item.MovieID]; ok {
			continue
		}
		eligible++
		if added == maxWatchlistExtras {
			continue
		}
		present[item.MovieID] = struct{}{}
		suggestions = append(suggestions, model.Suggestion{
			Movie:    item.Candidate(),
			Reason:   watchlistReason,
			Source:   model.SourceWatchlist,
			Position: len(suggestions),
		})
		added++
	}
	return suggestions, eligible, nil
}

type PickDetail struct {
	Pick  model.Pick
	Title string
}

type Detail struct {
	Round    model.Round
	Movies   []model.MovieTally
	Progress model.VoteProgress
	Pick     *PickDetail
}

// Detail assembles a round with live vote counts, progress and the locked pick.
func (u *Usecase) Detail(ctx context.Context, roundID, viewerID uuid.UUID) (Detail, error) {
	round, err := u.loadRound(ctx, roundID)
	if err != nil {
		return Detail{}, err
	}
	if _, err := u.membership.IsMember(ctx, round.GroupID, viewerID); err != nil {
		return Detail{}, err
	}

	suggestions, err := u.repository.SuggestionsByRound(ctx, roundID)
	if err != nil {
		return Detail{}, apperr.Internal("failed to load suggestions", err)
	}
	votes, err := u.votes.VotesByRound(ctx, roundID)
	if err != nil {
		return Detail{}, apperr.Internal("failed to load votes", err)
	}

	memberCount := 0
	if !round.HasAttendees() {
		members, err := u.membership.ListMembers(ctx, round.GroupID)
		if err != nil {
			return Detail{}, err
		}
		memberCount = len(members)
	}

	d := Detail{
		Round:    round,
		Movies:   usecase_vote.Tally(suggestions, votes),
		Progress: usecase_vote.ComputeProgress(round, votes, memberCount),
	}

	pick, err := u.repository.PickByRound(ctx, roundID)
	switch {
	case err == nil:
		pd := &PickDetail{Pick: pick}
		if s, ok := model.FindSuggestion(suggestions, pick.MovieID); ok {
			pd.Title = s.Movie.Title
		}
		d.Pick = pd
	case errors.Is(err, storage.ErrNotFound):
	default:
		return Detail{}, apperr.Internal("failed to load pick", err)
	}
	return d, nil
}

// List returns the group's round history, newest first.
func (u *Usecase) List(ctx context.Context, groupID, viewerID uuid.UUID) ([]model.Round, error) {
	if _, err := u.membership.IsMember(ctx, groupID, viewerID); err != nil {
		return nil, err
	}
	rounds, err := u.repository.RoundsByGroup(ctx, groupID)
	if err != nil {
		return nil, apperr.Internal("failed to list rounds", err)
	}
	slices.SortStableFunc(rounds, func(a, b model.Round) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	return rounds, nil
}

func (u *Usecase) Close(ctx context.Context, roundID, actorID uuid.UUID) (model.Round, error) {
	return u.Transition(ctx, roundID, model.MemberActor(actorID), model.StatusClosed)
}

func (u *Usecase) MarkWatched(ctx context.Context, roundID, actorID uuid.UUID) (model.Round, error) {
	return u.Transition(ctx, roundID, model.MemberActor(actorID), model.StatusWatched)
}

// Pick locks in the round's movie. Exactly one pick can ever be written per round.
func (u *Usecase) Pick(ctx context.Context, roundID, actorID uuid.UUID, movieID model.MovieID) (model.Pick, error) {
	round, err := u.loadRound(ctx, roundID)
	if err != nil {
		return model.Pick{}, err
	}
	rule := transitions[model.StatusSelected]
	if err := u.authorize(ctx, round, model.MemberActor(actorID), rule); err != nil {
		return model.Pick{}, err
	}
	if !slices.Contains(rule.from, round.Status) {
		return model.Pick{}, invalidTransition(round.Status, model.StatusSelected)
	}

	suggestions, err := u.repository.SuggestionsByRound(ctx, roundID)
	if err != nil {
		return model.Pick{}, apperr.Internal("failed to load suggestions", err)
	}
	if _, ok := model.FindSuggestion(suggestions, movieID); !ok {
		return model.Pick{}, apperr.Validation("movie %d is not suggested in this round", movieID)
	}

	now := u.now().UTC()
	pick := model.Pick{
		ID:       uuid.New(),
		RoundID:  roundID,
		GroupID:  round.GroupID,
		MovieID:  movieID,
		PickedBy: actorID,
		LockedAt: now,
	}
	if err := u.repository.LockPick(ctx, pick, rule.from); err != nil {
		switch {
		case errors.Is(err, storage.ErrConditionFailed):
			metrics.RoundConflicts.WithLabelValues("pick").Inc()
			return model.Pick{}, u.pickConflict(ctx, roundID)
		case errors.Is(err, storage.ErrNotFound):
			return model.Pick{}, apperr.NotFound("round %s not found", roundID)
		}
		return model.Pick{}, apperr.Internal("failed to lock pick", err)
	}
	metrics.RoundTransitions.WithLabelValues(string(model.StatusSelected), actorKind(model.MemberActor(actorID))).Inc()
	return pick, nil
}

type transitionRule struct {
	from        []model.RoundStatus
	creatorOnly bool
	system      bool
}

var transitions = map[model.RoundStatus]transitionRule{
	model.StatusClosed: {
		from:        []model.RoundStatus{model.StatusVoting},
		creatorOnly: true,
	},
	model.StatusSelected: {
		from:        []model.RoundStatus{model.StatusVoting, model.StatusClosed},
		creatorOnly: true,
	},
	model.StatusWatched: {
		from: []model.RoundStatus{model.StatusSelected},
	},
	model.StatusRated: {
		from:        []model.RoundStatus{model.StatusWatched},
		creatorOnly: true,
		system:      true,
	},
}

// Transition moves a round to the target status when the pair is allowed and the
// actor may perform it. Selection goes through Pick.
func (u *Usecase) Transition(ctx context.Context, roundID uuid.UUID, actor model.Actor, to model.RoundStatus) (model.Round, error) {
	if !to.Valid() {
		return model.Round{}, apperr.Validation("unknown round status %q", to)
	}
	if to == model.StatusSelected {
		return model.Round{}, apperr.Validation("a round is selected by picking a movie")
	}

	round, err := u.loadRound(ctx, roundID)
	if err != nil {
		return model.Round{}, err
	}

	rule, ok := transitions[to]
	if !ok {
		return model.Round{}, invalidTransition(round.Status, to)
	}
	if err := u.authorize(ctx, round, actor, rule); err != nil {
		return model.Round{}, err
	}
	if !slices.Contains(rule.from, round.Status) {
		return model.Round{}, invalidTransition(round.Status, to)
	}

	now := u.now().UTC()
	err = u.repository.CompareAndSetStatus(ctx, storage.StatusChange{
		RoundID: roundID,
		From:    rule.from,
		To:      to,
		At:      now,
	})
	if err != nil {
		return model.Round{}, u.casFailure(ctx, roundID, to, err)
	}

	metrics.RoundTransitions.WithLabelValues(string(to), actorKind(actor)).Inc()

	updated, err := u.loadRound(ctx, roundID)
	if err != nil {
		return model.Round{}, err
	}
	return updated, nil
}

func (u *Usecase) authorize(ctx context.Context, round model.Round, actor model.Actor, rule transitionRule) error {
	if actor.System {
		if !rule.system {
			return apperr.Forbidden("system actors cannot perform this transition")
		}
		return nil
	}

	member, err := u.membership.IsMember(ctx, round.GroupID, actor.MemberID)
	if err != nil {
		return err
	}
	if rule.creatorOnly && !member.IsCreator() {
		return apperr.Forbidden("only the group creator can do this")
	}
	return nil
}

// casFailure turns a rejected conditional write into a conflict naming the
// status the round holds now.
func (u *Usecase) casFailure(ctx context.Context, roundID uuid.UUID, to model.RoundStatus, err error) error {
	if !errors.Is(err, storage.ErrConditionFailed) {
		return apperr.Internal("failed to update round status", err)
	}
	metrics.RoundConflicts.WithLabelValues(string(to)).Inc()

	current, loadErr := u.repository.RoundByID(ctx, roundID)
	if loadErr != nil {
		return apperr.Conflict("round changed concurrently")
	}
	return invalidTransition(current.Status, to)
}

// pickConflict explains a rejected LockPick from the round as it is now.
func (u *Usecase) pickConflict(ctx context.Context, roundID uuid.UUID) error {
	current, err := u.repository.RoundByID(ctx, roundID)
	if err != nil {
		return apperr.Conflict("round changed concurrently")
	}
	if current.PickID != nil {
		return apperr.Conflict("round already has a pick")
	}
	return invalidTransition(current.Status, model.StatusSelected)
}

func (u *Usecase) loadRound(ctx context.Context, roundID uuid.UUID) (model.Round, error) {
	round, err := u.repository.RoundByID(ctx, roundID)
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

func invalidTransition(from, to model.RoundStatus) error {
	return apperr.Conflict("round is %s, cannot move to %s", from, to)
}

func actorKind(a model.Actor) string {
	if a.System {
		return "system"
	}
	return "member"
}
