package app

import (
	"context"
	"log"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/humanbelnik/movienight/internal/config"
	http_auth "github.com/humanbelnik/movienight/internal/delivery/http/auth"
	http_init "github.com/humanbelnik/movienight/internal/delivery/http/init"
	http_metrics "github.com/humanbelnik/movienight/internal/delivery/http/metrics"
	http_auth_middleware "github.com/humanbelnik/movienight/internal/delivery/http/middleware/auth"
	http_preference "github.com/humanbelnik/movienight/internal/delivery/http/preference"
	http_rating "github.com/humanbelnik/movienight/internal/delivery/http/rating"
	http_round "github.com/humanbelnik/movienight/internal/delivery/http/round"
	http_suggestion "github.com/humanbelnik/movienight/internal/delivery/http/suggestion"
	http_swagger "github.com/humanbelnik/movienight/internal/delivery/http/swagger"
	http_vote "github.com/humanbelnik/movienight/internal/delivery/http/vote"
	http_watchlist "github.com/humanbelnik/movienight/internal/delivery/http/watchlist"
	ws_group "github.com/humanbelnik/movienight/internal/delivery/ws/group"
	infra_memory "github.com/humanbelnik/movienight/internal/infra/memory"
	infra_pg_init "github.com/humanbelnik/movienight/internal/infra/postgres/init"
	infra_postgres_membership "github.com/humanbelnik/movienight/internal/infra/postgres/membership"
	infra_postgres_preference "github.com/humanbelnik/movienight/internal/infra/postgres/preference"
	infra_postgres_rating "github.com/humanbelnik/movienight/internal/infra/postgres/rating"
	infra_postgres_round "github.com/humanbelnik/movienight/internal/infra/postgres/round"
	infra_postgres_vote "github.com/humanbelnik/movienight/internal/infra/postgres/vote"
	infra_postgres_watchlist "github.com/humanbelnik/movienight/internal/infra/postgres/watchlist"
	infra_redis_blob "github.com/humanbelnik/movienight/internal/infra/redis/blob"
	infra_redis_init "github.com/humanbelnik/movienight/internal/infra/redis/init"
	infra_tmdb "github.com/humanbelnik/movienight/internal/infra/tmdb"
	"github.com/humanbelnik/movienight/internal/model"
	session_auth "github.com/humanbelnik/movienight/internal/service/auth/session"
	service_candidate "github.com/humanbelnik/movienight/internal/service/candidate"
	service_membership "github.com/humanbelnik/movienight/internal/service/membership"
	service_watchlist "github.com/humanbelnik/movienight/internal/service/watchlist"
	usecase_preference "github.com/humanbelnik/movienight/internal/usecase/preference"
	usecase_rating "github.com/humanbelnik/movienight/internal/usecase/rating"
	usecase_round "github.com/humanbelnik/movienight/internal/usecase/round"
	usecase_suggestion "github.com/humanbelnik/movienight/internal/usecase/suggestion"
	usecase_vote "github.com/humanbelnik/movienight/internal/usecase/vote"
)

// storage bundles every persistence port the usecases need.
type storage struct {
	membership  service_membership.Repository
	preferences usecase_preference.Repository
	rounds      usecase_round.Repository
	votes       usecase_vote.Repository
	ratings     usecase_rating.Repository
	watchlist   service_watchlist.Repository

	candidateCache service_candidate.Cache
	sessionCache   session_auth.SessionCache

	putGroup func(ctx context.Context, g model.Group, members ...model.Member) error
}

func Go(cfg *config.Config) {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	var st storage
	switch cfg.Store.Driver {
	case config.StoreMemory:
		st = memoryStorage()
	case config.StorePostgres:
		st = postgresStorage(cfg)
	default:
		log.Fatalf("unknown store driver %q", cfg.Store.Driver)
	}

	if cfg.Store.SeedDemo {
		seedDemo(st, logger)
	}

	tmdb := infra_tmdb.New(cfg.TMDB, infra_tmdb.WithLogger(logger))
	candidates := service_candidate.New(tmdb, st.candidateCache, service_candidate.WithLogger(logger))

	membership := service_membership.New(st.membership)
	watchlist := service_watchlist.New(st.watchlist, candidates, membership)
	sessions := session_auth.New(cfg.Auth.Secret, cfg.Auth.SessionTTL, membership, st.sessionCache)

	preferenceUC := usecase_preference.New(st.preferences, membership)
	suggestionUC := usecase_suggestion.New(preferenceUC, candidates, watchlist, membership,
		usecase_suggestion.WithLogger(logger))
	roundUC := usecase_round.New(st.rounds, st.votes, membership, suggestionUC, watchlist,
		usecase_round.WithLogger(logger))
	voteUC := usecase_vote.New(st.votes, st.rounds, membership)
	ratingUC := usecase_rating.New(st.ratings, st.rounds, membership, roundUC,
		usecase_rating.WithLogger(logger))

	hub := ws_group.New(logger)
	auth := http_auth_middleware.New(sessions, http_auth_middleware.WithLogger(logger)).AuthRequired()

	controllerPool := http_init.NewControllerPool()
	controllerPool.Add(
		http_swagger.New(),
		http_metrics.New(),
		http_auth.New(sessions, auth, http_auth.WithLogger(logger)),
		http_preference.New(preferenceUC, membership, auth, http_preference.WithLogger(logger)),
		http_suggestion.New(suggestionUC, membership, auth, http_suggestion.WithLogger(logger)),
		http_round.New(roundUC, hub, auth, http_round.WithLogger(logger)),
		http_vote.New(voteUC, hub, auth, http_vote.WithLogger(logger)),
		http_rating.New(ratingUC, hub, auth, http_rating.WithLogger(logger)),
		http_watchlist.New(watchlist, membership, auth, http_watchlist.WithLogger(logger)),
		ws_group.NewController(hub, membership, auth, ws_group.WithLogger(logger)),
	)

	controllerPool.Register()
	logger.Info("serving", slog.String("host", cfg.HTTP.Host), slog.String("port", cfg.HTTP.Port),
		slog.String("store", cfg.Store.Driver))
	controllerPool.RunAll(cfg.HTTP.Host, cfg.HTTP.Port)
}

func memoryStorage() storage {
	store := infra_memory.New()
	return storage{
		membership:     store,
		preferences:    store,
		rounds:         store,
		votes:          store,
		ratings:        store,
		watchlist:      store,
		candidateCache: infra_memory.NewCache(),
		sessionCache:   infra_memory.NewCache(),
		putGroup: func(_ context.Context, g model.Group, members ...model.Member) error {
			store.PutGroup(g, members...)
			return nil
		},
	}
}

func postgresStorage(cfg *config.Config) storage {
	pgConn := infra_pg_init.MustEstablishConn(cfg.Postgres)
	infra_pg_init.MustMigrate(context.Background(), pgConn)
	redisConn := infra_redis_init.MustEstablishConn(cfg.Redis)

	membership := infra_postgres_membership.New(pgConn)
	return storage{
		membership:     membership,
		preferences:    infra_postgres_preference.New(pgConn),
		rounds:         infra_postgres_round.New(pgConn),
		votes:          infra_postgres_vote.New(pgConn),
		ratings:        infra_postgres_rating.New(pgConn),
		watchlist:      infra_postgres_watchlist.New(pgConn),
		candidateCache: infra_redis_blob.New(redisConn, "candidate_cache"),
		sessionCache:   infra_redis_blob.New(redisConn, "session_cache"),
		putGroup:       membership.PutGroup,
	}
}

var demoNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("movienight/demo"))

// DemoID derives the fixed ID of a demo household entity from its name.
func DemoID(name string) uuid.UUID {
	return uuid.NewSHA1(demoNamespace, []byte(name))
}

// seedDemo provisions a fixed household so a fresh deployment can log in.
// IDs are derived from names, so reseeding is idempotent.
func seedDemo(st storage, logger *slog.Logger) {
	group := model.Group{
		ID:                DemoID("group"),
		Name:              "Demo household",
		StreamingServices: []string{"Netflix", "Disney Plus"},
	}
	members := []model.Member{
		{ID: DemoID("ann"), DisplayName: "Ann", Role: model.RoleCreator},
		{ID: DemoID("alice"), DisplayName: "Alice", Role: model.RoleMember},
		{ID: DemoID("bob"), DisplayName: "Bob", Role: model.RoleMember},
	}

	if err := st.putGroup(context.Background(), group, members...); err != nil {
		log.Fatalf("failed to seed demo household: %v", err)
	}

	logger.Info("demo household ready", slog.String("group_id", group.ID.String()))
	for _, m := range members {
		logger.Info("demo member",
			slog.String("member_id", m.ID.String()),
			slog.String("name", m.DisplayName),
			slog.String("role", string(m.Role)))
	}
}
