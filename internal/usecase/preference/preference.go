package usecase_preference

import (
	"context"
	"errors"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/apperr"
	"github.com/humanbelnik/movienight/internal/model"
	"github.com/humanbelnik/movienight/internal/storage"
)

const minContributors = 2

//go:generate mockery --name=Repository --output=../../../mocks/repository --filename=preference_repository.go --structname=PreferenceRepository
type Repository interface {
	UpsertPreference(ctx context.Context, p model.Preference) error
	PreferenceByMember(ctx context.Context, groupID, memberID uuid.UUID) (model.Preference, error)
	PreferencesByGroup(ctx context.Context, groupID uuid.UUID) ([]model.Preference, error)
}

//go:generate mockery --name=MembershipProvider --output=../../../mocks/membership --filename=membership_provider.go
type MembershipProvider interface {
	IsMember(ctx context.Context, groupID, userID uuid.UUID) (model.Member, error)
}

type Usecase struct {
	repository Repository
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
	membership MembershipProvider,
	opts ...Option,
) *Usecase {
	u := &Usecase{
		repository: repository,
		membership: membership,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

type Input struct {
	LikedGenres      []string
	DislikedGenres   []string
	MaxContentRating model.ContentRating
}

// Put upserts the caller's own preference record. Last write wins.
func (u *Usecase) Put(ctx context.Context, groupID, memberID uuid.UUID, in Input) (model.Preference, error) {
	if _, err := u.membership.IsMember(ctx, groupID, memberID); err != nil {
		return model.Preference{}, err
	}

	liked := normalizeGenres(in.LikedGenres)
	disliked := normalizeGenres(in.DislikedGenres)
	for _, g := range slices.Concat(liked, disliked) {
		if !model.IsKnownGenre(g) {
			return model.Preference{}, apperr.Validation("unknown genre %q", g)
		}
	}
	for _, g := range liked {
		if slices.Contains(disliked, g) {
			return model.Preference{}, apperr.Validation("genre %q is both liked and disliked", g)
		}
	}

	ceiling := in.MaxContentRating
	if ceiling == "" {
		ceiling = model.ContentRatingR
	}
	if !ceiling.Valid() {
		return model.Preference{}, apperr.Validation("unknown content rating %q", ceiling)
	}

	p := model.Preference{
		GroupID:          groupID,
		MemberID:         memberID,
		LikedGenres:      liked,
		DislikedGenres:   disliked,
		MaxContentRating: ceiling,
		UpdatedAt:        u.now().UTC(),
	}
	if err := u.repository.UpsertPreference(ctx, p); err != nil {
		return model.Preference{}, apperr.Internal("failed to store preference", err)
	}
	return p, nil
}

func (u *Usecase) Get(ctx context.Context, groupID, memberID uuid.UUID) (model.Preference, error) {
	p, err := u.repository.PreferenceByMember(ctx, groupID, memberID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.Preference{}, apperr.NotFound("no preferences recorded")
		}
		return model.Preference{}, apperr.Internal("failed to load preference", err)
	}
	return p, nil
}

// Summarize folds every preference record of the group into one taste profile.
func (u *Usecase) Summarize(ctx context.Context, groupID uuid.UUID) (model.TasteProfile, int, error) {
	prefs, err := u.repository.PreferencesByGroup(ctx, groupID)
	if err != nil {
		return model.TasteProfile{}, 0, apperr.Internal("failed to load preferences", err)
	}
	return Aggregate(prefs)
}

// SummarizeFor is Summarize restricted to the given members (round attendees).
func (u *Usecase) SummarizeFor(ctx context.Context, groupID uuid.UUID, memberIDs []uuid.UUID) (model.TasteProfile, int, error) {
	prefs, err := u.repository.PreferencesByGroup(ctx, groupID)
	if err != nil {
		return model.TasteProfile{}, 0, apperr.Internal("failed to load preferences", err)
	}

	scoped := make([]model.Preference, 0, len(prefs))
	for _, p := range prefs {
		if slices.Contains(memberIDs, p.MemberID) {
			scoped = append(scoped, p)
		}
	}
	return Aggregate(scoped)
}

// Aggregate builds the group taste profile:
// liked genres are the union, disliked genres the intersection over members who
// disliked anything, and the content ceiling the strictest rating.
func Aggregate(prefs []model.Preference) (model.TasteProfile, int, error) {
	if len(prefs) < minContributors {
		return model.TasteProfile{}, len(prefs), apperr.InsufficientPreferences(len(prefs))
	}

	liked := make(map[string]struct{})
	var disliked map[string]struct{}
	ceiling := model.ContentRatingR

	for _, p := range prefs {
		for _, g := range p.LikedGenres {
			liked[g] = struct{}{}
		}

		if len(p.DislikedGenres) > 0 {
			if disliked == nil {
				disliked = make(map[string]struct{}, len(p.DislikedGenres))
				for _, g := range p.DislikedGenres {
					disliked[g] = struct{}{}
				}
			} else {
				for g := range disliked {
					if !slices.Contains(p.DislikedGenres, g) {
						delete(disliked, g)
					}
				}
			}
		}

		ceiling = model.StricterRating(ceiling, p.MaxContentRating)
	}

	return model.TasteProfile{
		LikedGenres:    sortedKeys(liked),
		DislikedGenres: sortedKeys(disliked),
		ContentCeiling: ceiling,
	}, len(prefs), nil
}

func normalizeGenres(genres []string) []string {
	out := make([]string, 0, len(genres))
	for _, g := range genres {
		if g == "" || slices.Contains(out, g) {
			continue
		}
		out = append(out, g)
	}
	slices.Sort(out)
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
