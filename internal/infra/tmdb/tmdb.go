package infra_tmdb

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/humanbelnik/movienight/internal/apperr"
	"github.com/humanbelnik/movienight/internal/config"
	"github.com/humanbelnik/movienight/internal/metrics"
	"github.com/humanbelnik/movienight/internal/model"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	dateLayout          = "2006-01-02"
	breakerFailures     = 5
	breakerOpenTimeout  = 30 * time.Second
	breakerCountWindow  = time.Minute
	maxAttempts         = 2
	certificationRegion = "US"
)

var errRetryable = errors.New("retryable upstream failure")

type Client struct {
	baseURL string
	apiKey  string
	region  string

	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]

	logger *slog.Logger
}

type ClientOption func(*Client)

func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func New(cfg config.TMDB, opts ...ClientOption) *Client {
	rps := cfg.RequestsPerSecond
	if rps <= 0 {
		rps = 20
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	c := &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		region:  cfg.Region,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(rps), int(rps)),
		breaker: gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
			Name:        "tmdb",
			MaxRequests: 1,
			Interval:    breakerCountWindow,
			Timeout:     breakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= breakerFailures
			},
			IsSuccessful: func(err error) bool {
				return err == nil || apperr.KindOf(err) == apperr.KindNotFound
			},
		}),
		logger: slog.Default(),
	}
	if c.region == "" {
		c.region = certificationRegion
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type discoverResponse struct {
	Results []movieDTO `json:"results"`
}

type movieDTO struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	GenreIDs    []int   `json:"genre_ids"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
}

func (m movieDTO) toDomain() model.CandidateMovie {
	return model.CandidateMovie{
		ID:          m.ID,
		Title:       m.Title,
		ReleaseYear: releaseYear(m.ReleaseDate),
		Genres:      genreNames(m.GenreIDs),
		Popularity:  m.Popularity,
		VoteAverage: m.VoteAverage,
		VoteCount:   m.VoteCount,
		PosterPath:  m.PosterPath,
		Overview:    m.Overview,
	}
}

func (c *Client) Discover(ctx context.Context, q model.DiscoverQuery) ([]model.CandidateMovie, error) {
	params := url.Values{}
	params.Set("sort_by", "popularity.desc")
	params.Set("include_adult", "false")
	params.Set("page", "1")
	if ids := genreIDs(q.LikedGenres); len(ids) > 0 {
		params.Set("with_genres", joinInts(ids, "|"))
	}
	if ids := genreIDs(q.DislikedGenres); len(ids) > 0 {
		params.Set("without_genres", joinInts(ids, ","))
	}
	if q.RatingCeiling.Valid() {
		params.Set("certification_country", certificationRegion)
		params.Set("certification.lte", string(q.RatingCeiling))
	}
	if q.MinVoteCount > 0 {
		params.Set("vote_count.gte", strconv.Itoa(q.MinVoteCount))
	}
	if !q.MinReleaseDate.IsZero() {
		params.Set("primary_release_date.gte", q.MinReleaseDate.Format(dateLayout))
	}

	body, err := c.get(ctx, "discover", "/discover/movie", params)
	if err != nil {
		return nil, err
	}

	var resp discoverResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode discover response: %w", err)
	}

	movies := make([]model.CandidateMovie, 0, len(resp.Results))
	for _, m := range resp.Results {
		movies = append(movies, m.toDomain())
	}
	return movies, nil
}

type providersResponse struct {
	Results map[string]struct {
		Flatrate []providerDTO `json:"flatrate"`
	} `json:"results"`
}

type providerDTO struct {
	ProviderID   int    `json:"provider_id"`
	ProviderName string `json:"provider_name"`
	LogoPath     string `json:"logo_path"`
}

// WatchProviders lists subscription services streaming the movie in the configured region.
func (c *Client) WatchProviders(ctx context.Context, movieID model.MovieID) ([]model.Provider, error) {
	body, err := c.get(ctx, "providers", fmt.Sprintf("/movie/%d/watch/providers", movieID), url.Values{})
	if err != nil {
		return nil, err
	}

	var resp providersResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode providers response: %w", err)
	}

	region := resp.Results[c.region]
	providers := make([]model.Provider, 0, len(region.Flatrate))
	for _, p := range region.Flatrate {
		providers = append(providers, model.Provider{
			ID:       p.ProviderID,
			Name:     p.ProviderName,
			LogoPath: p.LogoPath,
		})
	}
	return providers, nil
}

type detailResponse struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	Popularity  float64 `json:"popularity"`
	VoteAverage float64 `json:"vote_average"`
	VoteCount   int     `json:"vote_count"`
	PosterPath  string  `json:"poster_path"`
	Overview    string  `json:"overview"`
	Runtime     int     `json:"runtime"`
	Tagline     string  `json:"tagline"`
	Genres      []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	ReleaseDates struct {
		Results []struct {
			Country      string `json:"iso_3166_1"`
			ReleaseDates []struct {
				Certification string `json:"certification"`
			} `json:"release_dates"`
		} `json:"results"`
	} `json:"release_dates"`
}

func (c *Client) Detail(ctx context.Context, movieID model.MovieID) (model.MovieDetail, error) {
	params := url.Values{}
	params.Set("append_to_response", "release_dates")

	body, err := c.get(ctx, "detail", fmt.Sprintf("/movie/%d", movieID), params)
	if err != nil {
		return model.MovieDetail{}, err
	}

	var resp detailResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return model.MovieDetail{}, fmt.Errorf("decode detail response: %w", err)
	}

	genres := make([]string, 0, len(resp.Genres))
	for _, g := range resp.Genres {
		genres = append(genres, g.Name)
	}

	var certification model.ContentRating
	for _, r := range resp.ReleaseDates.Results {
		if r.Country != certificationRegion {
			continue
		}
		for _, d := range r.ReleaseDates {
			if cr := model.ContentRating(d.Certification); cr.Valid() {
				certification = cr
				break
			}
		}
	}

	return model.MovieDetail{
		CandidateMovie: model.CandidateMovie{
			ID:          resp.ID,
			Title:       resp.Title,
			ReleaseYear: releaseYear(resp.ReleaseDate),
			Genres:      genres,
			Popularity:  resp.Popularity,
			VoteAverage: resp.VoteAverage,
			VoteCount:   resp.VoteCount,
			PosterPath:  resp.PosterPath,
			Overview:    resp.Overview,
		},
		Runtime:       resp.Runtime,
		Certification: certification,
		Tagline:       resp.Tagline,
	}, nil
}

// get performs one rate-limited, breaker-guarded GET with a single retry on
// transport errors and 5xx/429 responses.
func (c *Client) get(ctx context.Context, endpoint, path string, params url.Values) ([]byte, error) {
	params.Set("api_key", c.apiKey)
	target := c.baseURL + path + "?" + params.Encode()

	var (
		body []byte
		err  error
	)
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err = c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}

		start := time.Now()
		body, err = c.breaker.Execute(func() ([]byte, error) {
			return c.do(ctx, target)
		})
		metrics.CandidateRequestDuration.
			WithLabelValues(endpoint, outcome(err)).
			Observe(time.Since(start).Seconds())

		if err == nil || !errors.Is(err, errRetryable) {
			break
		}
		c.logger.Warn("tmdb request failed",
			slog.String("endpoint", endpoint),
			slog.Int("attempt", attempt),
			slog.String("error", err.Error()),
		)
	}
	return body, err
}

func (c *Client) do(ctx context.Context, target string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Join(errRetryable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Join(errRetryable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, apperr.NotFound("movie not found")
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, fmt.Errorf("%w: status %d", errRetryable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("tmdb returned status %d", resp.StatusCode)
	}
	return body, nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case apperr.KindOf(err) == apperr.KindNotFound:
		return "not_found"
	default:
		return "error"
	}
}

func releaseYear(date string) int {
	t, err := time.Parse(dateLayout, date)
	if err != nil {
		return 0
	}
	return t.Year()
}

func joinInts(ids []int, sep string) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, sep)
}
