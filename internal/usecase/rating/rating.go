package usecase_rating

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	"github.com/humanbelnik/movienight/internal/metrics"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/humanbelnik/movienight/internal/storage"
)

type Repository interface {
	UpsertRating(ctx context.Context, r model.Rating) error
	RatingsByRound(ctx context.Context, roundID uuid.UUID) ([]model.Rating, error)
}

type RoundReader interface {
	RoundByID(ctx context.Context, roundID uuid.UUID) (model.Round, error)
}

type MembershipProvider interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (model.Member, error)
	ListMembers(ctx context.Context, groupID uuid.UUID) ([]model.Member, error)
}

// Transitioner advances a round. Implemented by the round coordinator.
//
//go:generate mockery --name=Transitioner --output=../../../mocks/rating --filename=transitioner.go
type Transitioner interface {
	Transition(ctx context.Context, roundID uuid.UUID, actor model.Actor, to model.RoundStatus) (model.Round, error)
}

type Usecase struct {
	repository   Repository
	rounds       RoundReader
	membership   MembershipProvider
	transitioner Transitioner

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
	rounds RoundReader,
	membership MembershipProvider,
	transitioner Transitioner,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		repository:   repository,
		rounds:       rounds,
		membership:   membership,
		transitioner: transitioner,
		now:          time.Now,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type SubmitResult struct {
	Rating model.Rating
	// Set when this submission completed the roster and the round moved to rated.
	Completed bool
	Round     model.Round
}

// Submit upserts the member's rating. When the round is watched and every
// attendee has rated, the round is advanced to rated on a best-effort basis.
func (u *Usecase) Submit(ctx context.Context, roundID, memberID uuid.UUID, value model.RatingValue) (SubmitResult, error) {
	if !value.Valid() {
		return SubmitResult{}, apperr.Validation("rating must be one of %q, %q, %q",
			model.RatingLoved, model.RatingLiked, model.RatingDidNotLike)
	}

	round, err := u.loadRound(ctx, roundID)
	if err != nil {
		return SubmitResult{}, err
	}
	if !round.CanAcceptRatings() {
		return SubmitResult{}, apperr.Validation("round is %s, ratings are not open", round.Status)
	}
	if _, err := u.membership.IsMember(ctx, round.GroupID, memberID); err != nil {
		return SubmitResult{}, err
	}

	rating := model.Rating{
		RoundID:  roundID,
		MemberID: memberID,
		Value:    value,
		RatedAt:  u.now().UTC(),
	}
	if err := u.repository.UpsertRating(ctx, rating); err != nil {
		return SubmitResult{}, apperr.Internal("failed to store rating", err)
	}
	metrics.RatingsSubmitted.Inc()

	res := SubmitResult{Rating: rating, Round: round}
	if updated, ok := u.completeIfAllRated(ctx, roundID); ok {
		res.Completed = true
		res.Round = updated
	}
	return res, nil
}

// completeIfAllRated never fails the caller: every error on this path is logged
// and dropped.
func (u *Usecase) completeIfAllRated(ctx context.Context, roundID uuid.UUID) (model.Round, bool) {
	logger := u.logger.With(slog.String("round_id", roundID.String()))

	round, err := u.rounds.RoundByID(ctx, roundID)
	if err != nil {
		logger.Warn("auto-complete skipped, round unreadable", slog.String("error", err.Error()))
		return model.Round{}, false
	}
	if round.Status != model.StatusWatched {
		return model.Round{}, false
	}

	attendees, err := u.attendees(ctx, round)
	if err != nil {
		logger.Warn("auto-complete skipped, attendees unavailable", slog.String("error", err.Error()))
		return model.Round{}, false
	}
	ratings, err := u.repository.RatingsByRound(ctx, roundID)
	if err != nil {
		logger.Warn("auto-complete skipped, ratings unavailable", slog.String("error", err.Error()))
		return model.Round{}, false
	}

	rated := make(map[uuid.UUID]struct{}, len(ratings))
	for _, r := range ratings {
		rated[r.MemberID] = struct{}{}
	}
	for _, m := range attendees {
		if _, ok := rated[m.ID]; !ok {
			return model.Round{}, false
		}
	}

	updated, err := u.transitioner.Transition(ctx, roundID, model.SystemActor(), model.StatusRated)
	if err != nil {
		// Another actor may have advanced the round first.
		logger.Info("auto-complete transition dropped", slog.String("error", err.Error()))
		return model.Round{}, false
	}
	logger.Info("round rated by every attendee")
	return updated, true
}

// SessionView lists every attendee with their rating, if any.
func (u *Usecase) SessionView(ctx context.Context, roundID, viewerID uuid.UUID) (model.SessionView, error) {
	round, err := u.loadRound(ctx, roundID)
	if err != nil {
		return model.SessionView{}, err
	}
	if _, err := u.membership.IsMember(ctx, round.GroupID, viewerID); err != nil {
		return model.SessionView{}, err
	}

	attendees, err := u.attendees(ctx, round)
	if err != nil {
		return model.SessionView{}, err
	}
	ratings, err := u.repository.RatingsByRound(ctx, roundID)
	if err != nil {
		return model.SessionView{}, apperr.Internal("failed to load ratings", err)
	}

	byMember := make(map[uuid.UUID]model.Rating, len(ratings))
	for _, r := range ratings {
		byMember[r.MemberID] = r
	}

	view := model.SessionView{
		RoundID: roundID,
		Ratings: make([]model.RatingEntry, 0, len(attendees)),
	}
	for _, m := range attendees {
		entry := model.RatingEntry{
			MemberID:    m.ID,
			DisplayName: m.DisplayName,
		}
		if r, ok := byMember[m.ID]; ok {
			value, at := r.Value, r.RatedAt
			entry.Value = &value
			entry.RatedAt = &at
		}
		view.Ratings = append(view.Ratings, entry)
	}
	return view, nil
}

// attendees resolves the round's attendee list to members, in list order.
// Without a list every group member attends.
func (u *Usecase) attendees(ctx context.Context, round model.Round) ([]model.Member, error) {
	members, err := u.membership.ListMembers(ctx, round.GroupID)
	if err != nil {
		return nil, err
	}
	if !round.HasAttendees() {
		return members, nil
	}

	byID := make(map[uuid.UUID]model.Member, len(members))
	for _, m := range members {
		byID[m.ID] = m
	}
	out := make([]model.Member, 0, len(round.Attendees))
	for _, id := range round.Attendees {
		m, ok := byID[id]
		if !ok {
			// Left the group after the round started.
			m = model.Member{ID: id, GroupID: round.GroupID}
		}
		out = append(out, m)
	}
	return out, nil
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
