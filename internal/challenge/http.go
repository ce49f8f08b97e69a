package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/movie-trivia/internal/catalog"
	"github.com/gokatarajesh/movie-trivia/internal/logging"
	"github.com/gokatarajesh/movie-trivia/internal/movie"
	"github.com/gokatarajesh/movie-trivia/internal/question"
	httperrors "github.com/gokatarajesh/movie-trivia/pkg/http/errors"
)

type challengeService interface {
	Today(ctx context.Context, req TodayRequest) (*DailyChallenge, error)
	Extra(ctx context.Context, req ExtraRequest) (*ExtraQuestion, error)
	NewMovie(ctx context.Context, lang catalog.Lang) (*ExtraQuestion, error)
}

var _ challengeService = (*Service)(nil)

// HTTPHandler exposes the challenge endpoints.
type HTTPHandler struct {
	svc      challengeService
	validate *validator.Validate
	logger   zerolog.Logger
}

func NewHTTPHandler(svc challengeService, logger zerolog.Logger) *HTTPHandler {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("query")
	})
	return &HTTPHandler{
		svc:      svc,
		validate: validate,
		logger:   logger.With().Str("component", "challenge_http").Logger(),
	}
}

// Register mounts the versioned routes and the legacy function-style aliases.
func (h *HTTPHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /v1/challenges/today", h.HandleToday)
	mux.HandleFunc("GET /v1/challenges/extra", h.HandleExtra)
	mux.HandleFunc("GET /v1/challenges/new", h.HandleNewMovie)

	mux.HandleFunc("GET /getDailyChallenge", h.HandleToday)
	mux.HandleFunc("GET /getExtraQuestion", h.HandleExtra)
	mux.HandleFunc("GET /getNewMovieChallenge", h.HandleNewMovie)
}

// HandleToday serves GET /v1/challenges/today?date=YYYY-MM-DD&lang=xx
func (h *HTTPHandler) HandleToday(w http.ResponseWriter, r *http.Request) {
	lang := negotiate(r)
	resp, err := h.svc.Today(r.Context(), TodayRequest{
		Date: r.URL.Query().Get("date"),
		Lang: lang,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, lang, resp)
}

type extraQuery struct {
	MovieID      string   `query:"movieId" validate:"required,number"`
	ExcludeTypes []string `query:"excludeTypes" validate:"dive,oneof=year director rating genre runtime"`
}

// HandleExtra serves GET /v1/challenges/extra?movieId=N&excludeTypes=a,b&lang=xx
func (h *HTTPHandler) HandleExtra(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	params := extraQuery{
		MovieID:      strings.TrimSpace(q.Get("movieId")),
		ExcludeTypes: splitList(q.Get("excludeTypes")),
	}
	if err := h.validate.Struct(params); err != nil {
		h.respondValidation(w, err)
		return
	}
	movieID, err := strconv.Atoi(params.MovieID)
	if err != nil {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, "movieId must be an integer", "movieId")
		return
	}

	excluded := make([]question.Type, 0, len(params.ExcludeTypes))
	for _, raw := range params.ExcludeTypes {
		if t, ok := question.ParseType(raw); ok {
			excluded = append(excluded, t)
		}
	}

	lang := negotiate(r)
	resp, err := h.svc.Extra(r.Context(), ExtraRequest{MovieID: movieID, ExcludeTypes: excluded, Lang: lang})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, lang, resp)
}

// HandleNewMovie serves GET /v1/challenges/new?lang=xx
func (h *HTTPHandler) HandleNewMovie(w http.ResponseWriter, r *http.Request) {
	lang := negotiate(r)
	resp, err := h.svc.NewMovie(r.Context(), lang)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	writeJSON(w, lang, resp)
}

func (h *HTTPHandler) respondValidation(w http.ResponseWriter, err error) {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, "invalid request", "")
		return
	}
	fe := fieldErrs[0]
	switch fe.Tag() {
	case "required":
		httperrors.RespondValidationError(w, httperrors.ErrCodeMissingField, fe.Field()+" is required", fe.Field())
	case "oneof":
		field, _, _ := strings.Cut(fe.Field(), "[")
		httperrors.RespondValidationError(w, httperrors.ErrCodeValidationFailed, field+" must be one of: "+fe.Param(), field)
	default:
		httperrors.RespondValidationError(w, httperrors.ErrCodeInvalidRequest, fe.Field()+" is malformed", fe.Field())
	}
}

func (h *HTTPHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	log := logging.FromContext(r.Context(), h.logger)

	var inputErr *InputError
	switch {
	case errors.As(err, &inputErr):
		code := httperrors.ErrCodeInvalidRequest
		if inputErr.Field == "date" {
			code = httperrors.ErrCodeInvalidDate
		}
		httperrors.RespondValidationError(w, code, inputErr.Error(), inputErr.Field)
	case errors.Is(err, movie.ErrNotFound):
		httperrors.RespondNotFound(w, httperrors.ErrCodeMovieNotFound, "movie not found")
	case errors.Is(err, movie.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		log.Warn().Err(err).Str("path", r.URL.Path).Msg("movie provider unavailable")
		httperrors.RespondErrorWithDetails(w, http.StatusServiceUnavailable, httperrors.ErrCodeUpstreamUnavailable,
			"movie data is temporarily unavailable, try again later", map[string]any{"retryable": true})
	default:
		log.Error().Err(err).Str("path", r.URL.Path).Msg("challenge request failed")
		httperrors.RespondInternalError(w)
	}
}

func negotiate(r *http.Request) catalog.Lang {
	return catalog.Negotiate(r.URL.Query().Get("lang"), r.Header.Get("Accept-Language"))
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.ToLower(strings.TrimSpace(part)); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, lang catalog.Lang, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Language", string(lang))
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(payload)
}
