package http_round

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
	http_common "github.com/humanbelnik/movienight/internal/delivery/http/common"
	http_auth_middleware "github.com/humanbelnik/movienight/internal/delivery/http/middleware/auth"
	ws_group "github.com/humanbelnik/movienight/internal/delivery/ws/group"
	infra_memory "github.com/humanbelnik/movienight/internal/infra/memory"
	"github.com/humanbelnik/movienight/internal/model"
	session_auth "github.com/humanbelnik/movienight/internal/service/auth/session"
	service_membership "github.com/humanbelnik/movienight/internal/service/membership"
	service_watchlist "github.com/humanbelnik/movienight/internal/service/watchlist"
	usecase_round "github.com/humanbelnik/movienight/internal/usecase/round"
	usecase_suggestion "github.com/humanbelnik/movienight/internal/usecase/suggestion"
	round_mocks "github.com/humanbelnik/movienight/mocks/round"
	"github.com/ozontech/allure-go/pkg/framework/provider"
	"github.com/ozontech/allure-go/pkg/framework/suite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type RoundControllerSuite struct {
	suite.Suite
}

const secret = "popcorn"

var fixedNow = time.Date(2025, time.March, 1, 20, 0, 0, 0, time.UTC)

type event struct {
	groupID uuid.UUID
	typ     ws_group.EventType
	data    map[string]any
}

type recorder struct {
	mu     sync.Mutex
	events []event
}

func (r *recorder) Broadcast(groupID uuid.UUID, eventType ws_group.EventType, data map[string]any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{groupID: groupID, typ: eventType, data: data})
}

func (r *recorder) types() []ws_group.EventType {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]ws_group.EventType, 0, len(r.events))
	for _, e := range r.events {
		out = append(out, e.typ)
	}
	return out
}

type resources struct {
	engine    *gin.Engine
	store     *infra_memory.Store
	sessions  *session_auth.Service
	suggester *round_mocks.Suggester
	events    *recorder
	ctx       context.Context

	group    model.Group
	creator  model.Member
	alice    model.Member
	outsider model.Member
}

func initResources(t provider.T) *resources {
	gin.SetMode(gin.TestMode)

	r := &resources{
		store:     infra_memory.New(),
		suggester: round_mocks.NewSuggester(t),
		events:    &recorder{},
		ctx:       context.Background(),
		group:     model.Group{ID: uuid.New(), Name: "Flat 4"},
		creator:   model.Member{ID: uuid.New(), DisplayName: "Ann", Role: model.RoleCreator},
		alice:     model.Member{ID: uuid.New(), DisplayName: "Alice", Role: model.RoleMember},
		outsider:  model.Member{ID: uuid.New(), DisplayName: "Olga", Role: model.RoleCreator},
	}
	r.store.PutGroup(r.group, r.creator, r.alice)
	r.store.PutGroup(model.Group{ID: uuid.New(), Name: "Next door"}, r.outsider)

	membership := service_membership.New(r.store)
	r.sessions = session_auth.New(secret, time.Hour, membership, infra_memory.NewCache())
	uc := usecase_round.New(
		r.store,
		r.store,
		membership,
		r.suggester,
		service_watchlist.New(r.store, nil, membership),
		usecase_round.WithClock(func() time.Time { return fixedNow }),
	)

	r.engine = gin.New()
	auth := http_auth_middleware.New(r.sessions).AuthRequired()
	New(uc, r.events, auth).RegisterRoutes(r.engine.Group("/api/v1"))
	return r
}

func (r *resources) token(t provider.T, m model.Member) string {
	s, err := r.sessions.Login(r.ctx, secret, m.ID)
	require.NoError(t, err)
	return s.Token
}

func (r *resources) do(t provider.T, method, path, token string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set(http_common.TokenHeader, token)
	}
	w := httptest.NewRecorder()
	r.engine.ServeHTTP(w, req)
	return w
}

func (r *resources) expectSuggest() {
	r.suggester.On("Suggest", mock.Anything, r.group.ID, mock.Anything, mock.Anything).
		Return(usecase_suggestion.Result{
			Suggestions: []model.Suggestion{
				{Movie: model.CandidateMovie{ID: 1, Title: "Heat", Popularity: 90}, Score: 0.9, Source: model.SourceAlgorithm},
				{Movie: model.CandidateMovie{ID: 2, Title: "Ronin", Popularity: 70}, Score: 0.7, Source: model.SourceAlgorithm, Position: 1},
			},
			Relaxed: []string{usecase_suggestion.RelaxExpandedGenres},
		}, nil)
}

func decode[T any](t provider.T, w *httptest.ResponseRecorder) T {
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v))
	return v
}

func (s *RoundControllerSuite) TestCreateRound(t provider.T) {
	t.Parallel()

	t.Run("Should open a round and announce it", func(t provider.T) {
		r := initResources(t)
		r.expectSuggest()

		w := r.do(t, http.MethodPost, "/groups/"+r.group.ID.String()+"/rounds", r.token(t, r.alice), CreateRoundRequestDTO{})

		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		resp := decode[CreateRoundResponseDTO](t, w)
		assert.Equal(t, "voting", resp.Round.Status)
		assert.Equal(t, r.alice.ID, resp.Round.StartedBy)
		assert.Empty(t, resp.Round.Attendees)
		require.Len(t, resp.Suggestions, 2)
		assert.Equal(t, "Heat", resp.Suggestions[0].Movie.Title)
		assert.Equal(t, []string{usecase_suggestion.RelaxExpandedGenres}, resp.RelaxedConstraints)
		assert.Equal(t, []ws_group.EventType{ws_group.RoundCreated}, r.events.types())
	})

	t.Run("Should report the blocking round on conflict", func(t provider.T) {
		r := initResources(t)
		r.expectSuggest()
		token := r.token(t, r.creator)
		first := decode[CreateRoundResponseDTO](t, r.do(t, http.MethodPost, "/groups/"+r.group.ID.String()+"/rounds", token, nil))

		w := r.do(t, http.MethodPost, "/groups/"+r.group.ID.String()+"/rounds", token, nil)

		require.Equal(t, http.StatusConflict, w.Code)
		resp := decode[http_common.ErrorResponse](t, w)
		require.NotNil(t, resp.ActiveRoundID)
		assert.Equal(t, first.Round.ID, *resp.ActiveRoundID)
	})

	t.Run("Should reject callers without a session", func(t provider.T) {
		r := initResources(t)

		w := r.do(t, http.MethodPost, "/groups/"+r.group.ID.String()+"/rounds", "", nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should reject unknown tokens", func(t provider.T) {
		r := initResources(t)

		w := r.do(t, http.MethodPost, "/groups/"+r.group.ID.String()+"/rounds", uuid.NewString(), nil)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("Should forbid members of other groups", func(t provider.T) {
		r := initResources(t)

		w := r.do(t, http.MethodPost, "/groups/"+r.group.ID.String()+"/rounds", r.token(t, r.outsider), nil)

		assert.Equal(t, http.StatusForbidden, w.Code)
		assert.Empty(t, r.events.types())
	})

	t.Run("Should reject malformed group IDs", func(t provider.T) {
		r := initResources(t)

		w := r.do(t, http.MethodPost, "/groups/not-a-uuid/rounds", r.token(t, r.alice), nil)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func (s *RoundControllerSuite) TestLifecycle(t provider.T) {
	t.Parallel()

	t.Run("Should walk a round from voting to watched", func(t provider.T) {
		r := initResources(t)
		r.expectSuggest()
		creator, alice := r.token(t, r.creator), r.token(t, r.alice)
		created := decode[CreateRoundResponseDTO](t, r.do(t, http.MethodPost, "/groups/"+r.group.ID.String()+"/rounds", alice, nil))
		roundPath := "/rounds/" + created.Round.ID.String()

		w := r.do(t, http.MethodPost, roundPath+"/close", alice, nil)
		assert.Equal(t, http.StatusForbidden, w.Code)

		w = r.do(t, http.MethodPost, roundPath+"/close", creator, nil)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "closed", decode[RoundDTO](t, w).Status)

		w = r.do(t, http.MethodPost, roundPath+"/pick", creator, PickRequestDTO{MovieID: 99})
		assert.Equal(t, http.StatusBadRequest, w.Code)

		w = r.do(t, http.MethodPost, roundPath+"/pick", creator, PickRequestDTO{MovieID: 2})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, 2, decode[PickDTO](t, w).MovieID)

		w = r.do(t, http.MethodPost, roundPath+"/pick", creator, PickRequestDTO{MovieID: 1})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = r.do(t, http.MethodPatch, roundPath+"/status", alice, StatusRequestDTO{Status: "watched"})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		assert.Equal(t, "watched", decode[RoundDTO](t, w).Status)

		w = r.do(t, http.MethodGet, roundPath, alice, nil)
		require.Equal(t, http.StatusOK, w.Code)
		detail := decode[RoundDetailResponseDTO](t, w)
		require.NotNil(t, detail.Pick)
		assert.Equal(t, "Ronin", detail.Pick.Title)
		assert.True(t, detail.Pick.Watched)
		assert.Len(t, detail.Movies, 2)

		assert.Equal(t, []ws_group.EventType{
			ws_group.RoundCreated,
			ws_group.RoundStatusChanged,
			ws_group.RoundStatusChanged,
			ws_group.RoundStatusChanged,
		}, r.events.types())
	})

	t.Run("Should name the current status on a rejected transition", func(t provider.T) {
		r := initResources(t)
		round := model.Round{ID: uuid.New(), GroupID: r.group.ID, Status: model.StatusVoting, StartedBy: r.creator.ID, CreatedAt: fixedNow}
		require.NoError(t, r.store.CreateRoundIfAbsent(r.ctx, round, nil))

		w := r.do(t, http.MethodPatch, "/rounds/"+round.ID.String()+"/status", r.token(t, r.alice), StatusRequestDTO{Status: "watched"})

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, decode[http_common.ErrorResponse](t, w).Message, "voting")
	})

	t.Run("Should reject unknown target statuses", func(t provider.T) {
		r := initResources(t)

		w := r.do(t, http.MethodPatch, "/rounds/"+uuid.NewString()+"/status", r.token(t, r.creator), StatusRequestDTO{Status: "bogus"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("Should report discarded rounds as gone", func(t provider.T) {
		r := initResources(t)
		round := model.Round{ID: uuid.New(), GroupID: r.group.ID, Status: model.StatusDiscarded, StartedBy: r.creator.ID, CreatedAt: fixedNow}
		require.NoError(t, r.store.CreateRoundIfAbsent(r.ctx, round, nil))

		w := r.do(t, http.MethodGet, "/rounds/"+round.ID.String(), r.token(t, r.alice), nil)

		assert.Equal(t, http.StatusGone, w.Code)
	})

	t.Run("Should report unknown rounds as not found", func(t provider.T) {
		r := initResources(t)

		w := r.do(t, http.MethodGet, "/rounds/"+uuid.NewString(), r.token(t, r.alice), nil)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func (s *RoundControllerSuite) TestListRounds(t provider.T) {
	t.Parallel()

	r := initResources(t)
	for i, status := range []model.RoundStatus{model.StatusRated, model.StatusClosed} {
		require.NoError(t, r.store.CreateRoundIfAbsent(r.ctx, model.Round{
			ID:        uuid.New(),
			GroupID:   r.group.ID,
			Status:    status,
			StartedBy: r.creator.ID,
			CreatedAt: fixedNow.Add(time.Duration(i) * time.Hour),
		}, nil))
	}

	w := r.do(t, http.MethodGet, "/groups/"+r.group.ID.String()+"/rounds", r.token(t, r.alice), nil)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[RoundsListResponseDTO](t, w)
	require.Equal(t, 2, resp.Total)
	assert.Equal(t, "closed", resp.Rounds[0].Status)
	assert.Equal(t, "rated", resp.Rounds[1].Status)
}

func TestUnitSuite(t *testing.T) {
	suite.RunSuite(t, new(RoundControllerSuite))
}
