package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/gokatarajesh/movie-trivia/internal/metrics"
	"github.com/gokatarajesh/movie-trivia/internal/movie"
)

const (
	defaultBaseURL        = "https://api.themoviedb.org/3"
	defaultTimeout        = 30 * time.Second
	defaultPopularPages   = 10
	defaultRequestsPerSec = 20
	breakerName           = "tmdb-api"
)

// Options tunes the TMDB client. Zero values fall back to defaults.
type Options struct {
	BaseURL           string
	Language          string
	Timeout           time.Duration
	PopularPages      int
	RequestsPerSecond float64
	Burst             int
	// BreakerTimeout is how long the breaker stays open before probing again.
	BreakerTimeout time.Duration
	// Intn picks random pages and results; defaults to math/rand/v2.
	Intn func(n int) int
}

// Client talks to the TMDB v3 REST API.
type Client struct {
	apiKey       string
	baseURL      string
	language     string
	popularPages int
	httpClient   *http.Client
	limiter      *rate.Limiter
	breaker      *gobreaker.CircuitBreaker[struct{}]
	intn         func(int) int
	logger       zerolog.Logger
}

var _ movie.Provider = (*Client)(nil)

func NewClient(apiKey string, httpClient *http.Client, opts Options, logger zerolog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = defaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.PopularPages <= 0 {
		opts.PopularPages = defaultPopularPages
	}
	if opts.RequestsPerSecond <= 0 {
		opts.RequestsPerSecond = defaultRequestsPerSec
	}
	if opts.Burst <= 0 {
		opts.Burst = int(opts.RequestsPerSecond)
	}
	if opts.BreakerTimeout <= 0 {
		opts.BreakerTimeout = 30 * time.Second
	}
	if opts.Intn == nil {
		opts.Intn = rand.IntN
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: opts.Timeout}
	}

	logger = logger.With().Str("component", "tmdb").Logger()
	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	breaker := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     opts.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, movie.ErrNotFound)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state change")
			metrics.CircuitBreakerState.WithLabelValues(name).Set(metrics.BreakerStateValue(to))
		},
	})

	return &Client{
		apiKey:       apiKey,
		baseURL:      strings.TrimRight(opts.BaseURL, "/"),
		language:     opts.Language,
		popularPages: opts.PopularPages,
		httpClient:   httpClient,
		limiter:      rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), opts.Burst),
		breaker:      breaker,
		intn:         opts.Intn,
		logger:       logger,
	}
}

type popularResponse struct {
	Page    int         `json:"page"`
	Results []movieItem `json:"results"`
}

type movieItem struct {
	ID          int     `json:"id"`
	Title       string  `json:"title"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  *string `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
	Popularity  float64 `json:"popularity"`
	Runtime     *int    `json:"runtime"`
	Genres      []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	} `json:"genres"`
	Credits *struct {
		Crew []crewMember `json:"crew"`
	} `json:"credits"`
}

type crewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// PopularMovie picks a random movie from a random page of the popular list.
func (c *Client) PopularMovie(ctx context.Context) (movie.Facts, error) {
	page := 1 + c.intn(c.popularPages)
	params := url.Values{}
	params.Set("page", strconv.Itoa(page))

	var payload popularResponse
	if err := c.getJSON(ctx, "popular", "/movie/popular", params, &payload); err != nil {
		return movie.Facts{}, err
	}
	if len(payload.Results) == 0 {
		return movie.Facts{}, fmt.Errorf("tmdb popular page %d is empty: %w", page, movie.ErrUnavailable)
	}
	return payload.Results[c.intn(len(payload.Results))].facts(), nil
}

// Details fetches one movie together with its credits.
func (c *Client) Details(ctx context.Context, id int) (movie.Facts, error) {
	params := url.Values{}
	params.Set("append_to_response", "credits")

	var payload movieItem
	if err := c.getJSON(ctx, "details", fmt.Sprintf("/movie/%d", id), params, &payload); err != nil {
		return movie.Facts{}, err
	}
	return payload.facts(), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint, path string, params url.Values, dst any) error {
	if c.apiKey == "" {
		return fmt.Errorf("missing TMDB API key: %w", movie.ErrUnavailable)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("tmdb %s: %w: %w", endpoint, movie.ErrUnavailable, err)
	}

	start := time.Now()
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.do(ctx, path, params, dst)
	})
	metrics.UpstreamDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	metrics.UpstreamRequests.WithLabelValues(endpoint, outcome(err)).Inc()

	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		c.logger.Warn().Str("endpoint", endpoint).Msg("request rejected by circuit breaker")
		return fmt.Errorf("tmdb %s: %w: %w", endpoint, movie.ErrUnavailable, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, path string, params url.Values, dst any) error {
	q := url.Values{}
	for k, v := range params {
		q[k] = v
	}
	q.Set("api_key", c.apiKey)
	if c.language != "" {
		q.Set("language", c.language)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("tmdb request %s: %w: %w", path, movie.ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("tmdb %s: %w", path, movie.ErrNotFound)
	case resp.StatusCode >= 300:
		return fmt.Errorf("tmdb %s status %d: %w", path, resp.StatusCode, movie.ErrUnavailable)
	}

	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		return fmt.Errorf("decode tmdb %s: %w: %w", path, movie.ErrUnavailable, err)
	}
	return nil
}

func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, movie.ErrNotFound):
		return "not_found"
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return "rejected"
	default:
		return "error"
	}
}

func (it movieItem) facts() movie.Facts {
	f := movie.Facts{
		ID:          it.ID,
		Title:       it.Title,
		VoteAverage: it.VoteAverage,
		Popularity:  it.Popularity,
	}
	if d, err := time.Parse("2006-01-02", it.ReleaseDate); err == nil {
		f.ReleaseDate = d
	}
	if it.PosterPath != nil {
		f.PosterPath = *it.PosterPath
	}
	if it.Runtime != nil && *it.Runtime > 0 {
		runtime := *it.Runtime
		f.Runtime = &runtime
	}
	for _, g := range it.Genres {
		f.Genres = append(f.Genres, g.Name)
	}
	if it.Credits != nil {
		for _, member := range it.Credits.Crew {
			if member.Job == "Director" {
				f.Director = movie.DirectorOrNil(member.Name)
				if f.Director != nil {
					break
				}
			}
		}
	}
	return f
}
