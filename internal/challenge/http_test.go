package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/movie-trivia/internal/catalog"
	"github.com/gokatarajesh/movie-trivia/internal/movie"
	"github.com/gokatarajesh/movie-trivia/internal/question"
	httperrors "github.com/gokatarajesh/movie-trivia/pkg/http/errors"
)

type stubService struct {
	todayReq TodayRequest
	extraReq ExtraRequest
	newLang  catalog.Lang
	err      error
}

func (s *stubService) Today(_ context.Context, req TodayRequest) (*DailyChallenge, error) {
	s.todayReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &DailyChallenge{ID: "2025-06-01", MovieID: 27205, QuestionType: question.TypeYear, Lang: req.Lang}, nil
}

func (s *stubService) Extra(_ context.Context, req ExtraRequest) (*ExtraQuestion, error) {
	s.extraReq = req
	if s.err != nil {
		return nil, s.err
	}
	return &ExtraQuestion{
		DailyChallenge:    DailyChallenge{ID: "27205-genre-1-abc", MovieID: req.MovieID, QuestionType: question.TypeGenre, Lang: req.Lang, IsExtra: true},
		QuestionTypeCount: 5,
	}, nil
}

func (s *stubService) NewMovie(_ context.Context, lang catalog.Lang) (*ExtraQuestion, error) {
	s.newLang = lang
	if s.err != nil {
		return nil, s.err
	}
	return &ExtraQuestion{DailyChallenge: DailyChallenge{ID: "27205-1", Lang: lang, IsExtra: true}, QuestionTypeCount: 5}, nil
}

func serve(t *testing.T, svc challengeService, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	mux := http.NewServeMux()
	NewHTTPHandler(svc, zerolog.Nop()).Register(mux)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) httperrors.ErrorResponse {
	t.Helper()
	var body httperrors.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHandleTodayNegotiatesLanguage(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodGet, "/v1/challenges/today?date=2025-06-01", nil)
	req.Header.Set("Accept-Language", "fr-FR,fr;q=0.9,en;q=0.5")

	rec := serve(t, svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "fr-CA", rec.Header().Get("Content-Language"))
	assert.Equal(t, "2025-06-01", svc.todayReq.Date)
	assert.Equal(t, catalog.French, svc.todayReq.Lang)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "2025-06-01", body["id"])
	assert.Equal(t, float64(27205), body["movieId"])
	assert.Equal(t, "year", body["questionType"])
	assert.NotContains(t, body, "isExtra")
}

func TestHandleTodayQueryLangWins(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodGet, "/getDailyChallenge?lang=pt", nil)
	req.Header.Set("Accept-Language", "fr")

	rec := serve(t, svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, catalog.Portuguese, svc.todayReq.Lang)
	assert.Equal(t, "pt-BR", rec.Header().Get("Content-Language"))
}

func TestHandleExtraParsesParameters(t *testing.T) {
	svc := &stubService{}
	req := httptest.NewRequest(http.MethodGet, "/v1/challenges/extra?movieId=27205&excludeTypes=Year,%20director,,genre&lang=en", nil)

	rec := serve(t, svc, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 27205, svc.extraReq.MovieID)
	assert.Equal(t, []question.Type{question.TypeYear, question.TypeDirector, question.TypeGenre}, svc.extraReq.ExcludeTypes)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, true, body["isExtra"])
	assert.Equal(t, float64(5), body["questionTypeCount"])
}

func TestHandleExtraValidation(t *testing.T) {
	cases := []struct {
		name  string
		query string
		code  string
		field string
	}{
		{"missing movie", "", httperrors.ErrCodeMissingField, "movieId"},
		{"non numeric movie", "movieId=abc", httperrors.ErrCodeInvalidRequest, "movieId"},
		{"unknown exclude type", "movieId=1&excludeTypes=year,budget", httperrors.ErrCodeValidationFailed, "excludeTypes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &stubService{}
			rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/getExtraQuestion?"+tc.query, nil))

			require.Equal(t, http.StatusBadRequest, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.code, body.Error)
			assert.Equal(t, tc.field, body.Field)
			assert.Zero(t, svc.extraReq.MovieID, "service must not be called")
		})
	}
}

func TestHandleNewMovie(t *testing.T) {
	svc := &stubService{}
	rec := serve(t, svc, httptest.NewRequest(http.MethodGet, "/getNewMovieChallenge?lang=fr", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, catalog.French, svc.newLang)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"input", &InputError{Field: "movieId", Message: "must be a positive integer"}, http.StatusBadRequest, httperrors.ErrCodeInvalidRequest},
		{"date", &InputError{Field: "date", Message: "expected YYYY-MM-DD"}, http.StatusBadRequest, httperrors.ErrCodeInvalidDate},
		{"not found", fmt.Errorf("fetch movie 1: %w", movie.ErrNotFound), http.StatusNotFound, httperrors.ErrCodeMovieNotFound},
		{"unavailable", fmt.Errorf("fetch popular movie: %w", movie.ErrUnavailable), http.StatusServiceUnavailable, httperrors.ErrCodeUpstreamUnavailable},
		{"deadline", context.DeadlineExceeded, http.StatusServiceUnavailable, httperrors.ErrCodeUpstreamUnavailable},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, httperrors.ErrCodeInternalError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(t, &stubService{err: tc.err}, httptest.NewRequest(http.MethodGet, "/v1/challenges/extra?movieId=1", nil))

			assert.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.code, body.Error)
			assert.NotContains(t, body.Message, "pq:")
			if tc.status == http.StatusServiceUnavailable {
				assert.Equal(t, true, body.Details["retryable"])
			} else {
				assert.Nil(t, body.Details)
			}
		})
	}
}

func TestRoutesRejectOtherMethods(t *testing.T) {
	rec := serve(t, &stubService{}, httptest.NewRequest(http.MethodPost, "/v1/challenges/today", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}
