// Package client is a Go client for the movie trivia HTTP API. It keeps the
// per-player session state needed to avoid replaying questions.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/movie-trivia/internal/catalog"
	"github.com/gokatarajesh/movie-trivia/internal/challenge"
	"github.com/gokatarajesh/movie-trivia/internal/question"
	httperrors "github.com/gokatarajesh/movie-trivia/pkg/http/errors"
)

// The closed set of failures surfaced to players.
var (
	ErrConnection             = errors.New("could not reach the trivia service, check your connection")
	ErrNoMoreQuestions        = errors.New("no more questions available for this movie, try a new movie")
	ErrTemporarilyUnavailable = errors.New("trivia is temporarily unavailable, try again later")
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxAttempts = 10
	defaultRetryDelay  = 100 * time.Millisecond
)

// APIError carries the HTTP status and error code behind one of the closed
// set of failures. errors.Is matches the wrapped kind.
type APIError struct {
	Status int
	Code   string
	Kind   error
}

func (e *APIError) Error() string { return e.Kind.Error() }
func (e *APIError) Unwrap() error { return e.Kind }

type Options struct {
	BaseURL    string
	Lang       catalog.Lang
	HTTPClient *http.Client
	// MaxAttempts bounds how many extra questions are fetched while looking
	// for one the player has not seen.
	MaxAttempts int
	RetryDelay  time.Duration
	Logger      *zerolog.Logger
}

// Client calls the challenge API on behalf of one player.
type Client struct {
	baseURL     string
	lang        catalog.Lang
	http        *http.Client
	maxAttempts int
	retryDelay  time.Duration
	session     *question.Session
	logger      zerolog.Logger
}

func New(opts Options) *Client {
	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: defaultTimeout}
	}
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = defaultMaxAttempts
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = defaultRetryDelay
	}
	logger := zerolog.Nop()
	if opts.Logger != nil {
		logger = *opts.Logger
	}
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		lang:        opts.Lang,
		http:        opts.HTTPClient,
		maxAttempts: opts.MaxAttempts,
		retryDelay:  opts.RetryDelay,
		session:     question.NewSession(),
		logger:      logger.With().Str("component", "trivia_client").Logger(),
	}
}

// Session exposes what the player has been shown so far.
func (c *Client) Session() *question.Session {
	return c.session
}

// Daily fetches the challenge of the current period.
func (c *Client) Daily(ctx context.Context) (*challenge.ExtraQuestion, error) {
	q, err := c.get(ctx, "/v1/challenges/today", nil)
	if err != nil {
		return nil, err
	}
	c.markPlayed(q)
	return q, nil
}

// NewMovie fetches a challenge about a different random movie.
func (c *Client) NewMovie(ctx context.Context) (*challenge.ExtraQuestion, error) {
	q, err := c.get(ctx, "/v1/challenges/new", nil)
	if err != nil {
		return nil, err
	}
	c.markPlayed(q)
	return q, nil
}

// Extra fetches another question about movieID that the player has not seen.
// Duplicates and transient failures are refetched up to MaxAttempts times;
// any other failure is returned at once.
func (c *Client) Extra(ctx context.Context, movieID int) (*challenge.ExtraQuestion, error) {
	if c.session.Exhausted(movieID) {
		return nil, ErrNoMoreQuestions
	}

	params := url.Values{}
	params.Set("movieId", strconv.Itoa(movieID))
	if played := c.session.PlayedTypes(movieID); len(played) > 0 {
		names := make([]string, len(played))
		for i, t := range played {
			names[i] = string(t)
		}
		params.Set("excludeTypes", strings.Join(names, ","))
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		q, err := c.get(ctx, "/v1/challenges/extra", params)
		switch {
		case err != nil:
			if ctx.Err() != nil || !errors.Is(err, ErrTemporarilyUnavailable) {
				return nil, err
			}
			lastErr = err
		case c.session.IsDuplicate(played(q)):
			c.logger.Debug().Str("id", q.ID).Int("attempt", attempt).Int("max_attempts", c.maxAttempts).Msg("duplicate question, refetching")
			lastErr = ErrNoMoreQuestions
		default:
			c.markPlayed(q)
			return q, nil
		}

		if attempt == c.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ErrConnection
		case <-time.After(c.retryDelay):
		}
	}
	return nil, lastErr
}

func (c *Client) get(ctx context.Context, path string, params url.Values) (*challenge.ExtraQuestion, error) {
	if params == nil {
		params = url.Values{}
	}
	if c.lang != "" {
		params.Set("lang", string(c.lang))
	}
	endpoint := c.baseURL + path
	if encoded := params.Encode(); encoded != "" {
		endpoint += "?" + encoded
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.lang != "" {
		req.Header.Set("Accept-Language", string(c.lang))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("request failed")
		return nil, ErrConnection
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(path, resp)
	}

	var q challenge.ExtraQuestion
	if err := json.NewDecoder(resp.Body).Decode(&q); err != nil {
		c.logger.Warn().Err(err).Str("path", path).Msg("decode response failed")
		return nil, &APIError{Status: resp.StatusCode, Kind: ErrTemporarilyUnavailable}
	}
	return &q, nil
}

func (c *Client) statusError(path string, resp *http.Response) error {
	var body httperrors.ErrorResponse
	_ = json.NewDecoder(resp.Body).Decode(&body)
	c.logger.Warn().Int("status", resp.StatusCode).Str("code", body.Error).Str("path", path).Msg("unexpected status")

	kind := ErrConnection
	switch {
	case resp.StatusCode == http.StatusNotFound && body.Error == httperrors.ErrCodeMovieNotFound:
		kind = ErrNoMoreQuestions
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		kind = ErrTemporarilyUnavailable
	}
	return &APIError{Status: resp.StatusCode, Code: body.Error, Kind: kind}
}

func (c *Client) markPlayed(q *challenge.ExtraQuestion) {
	c.session.MarkPlayed(played(q))
}

func played(q *challenge.ExtraQuestion) question.Played {
	return question.Played{
		ID:        q.ID,
		MovieID:   q.MovieID,
		Prompt:    q.Question,
		Type:      q.QuestionType,
		TypeCount: q.QuestionTypeCount,
	}
}
