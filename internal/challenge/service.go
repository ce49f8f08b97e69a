package challenge

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/movie-trivia/internal/catalog"
	"github.com/gokatarajesh/movie-trivia/internal/db/repository"
	"github.com/gokatarajesh/movie-trivia/internal/metrics"
	"github.com/gokatarajesh/movie-trivia/internal/movie"
	"github.com/gokatarajesh/movie-trivia/internal/question"
)

const (
	defaultPosterBaseURL = "https://image.tmdb.org/t/p/w500"
	defaultLockTTL       = 30 * time.Second
	defaultLockWait      = 5 * time.Second
	defaultPollInterval  = 100 * time.Millisecond
)

// Outcomes recorded in metrics.ChallengeRequests.
const (
	outcomeHit     = "hit"
	outcomeCreated = "created"
	outcomeRaced   = "raced"
	outcomeWaited  = "waited"
	outcomeHealed  = "healed"
)

// ServiceOptions tunes challenge materialization. Zero values use defaults.
type ServiceOptions struct {
	Granularity   Granularity
	Location      *time.Location
	PosterBaseURL string
	LockTTL       time.Duration
	// LockWait bounds how long a request waits for another process to finish
	// creating the same challenge before trying itself.
	LockWait     time.Duration
	PollInterval time.Duration
	Now          func() time.Time
}

// Service resolves, creates and repairs challenges.
type Service struct {
	store        Store
	provider     movie.Provider
	synth        *question.Synthesizer
	selector     *question.Selector
	locker       Locker
	keys         Keyer
	posterBase   string
	lockTTL      time.Duration
	lockWait     time.Duration
	pollInterval time.Duration
	now          func() time.Time
	logger       zerolog.Logger
}

// NewService wires a challenge service. locker may be nil, in which case
// concurrent first requests race and the conditional insert picks the winner.
func NewService(store Store, provider movie.Provider, synth *question.Synthesizer, selector *question.Selector, locker Locker, opts ServiceOptions, logger zerolog.Logger) *Service {
	if opts.PosterBaseURL == "" {
		opts.PosterBaseURL = defaultPosterBaseURL
	}
	if opts.LockTTL <= 0 {
		opts.LockTTL = defaultLockTTL
	}
	if opts.LockWait <= 0 {
		opts.LockWait = defaultLockWait
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = defaultPollInterval
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{
		store:        store,
		provider:     provider,
		synth:        synth,
		selector:     selector,
		locker:       locker,
		keys:         NewKeyer(opts.Granularity, opts.Location),
		posterBase:   opts.PosterBaseURL,
		lockTTL:      opts.LockTTL,
		lockWait:     opts.LockWait,
		pollInterval: opts.PollInterval,
		now:          opts.Now,
		logger:       logger.With().Str("component", "challenge_service").Logger(),
	}
}

// Today returns the canonical challenge for the requested period, creating
// it on the first request and repairing it if a previous version stored a
// placeholder director.
func (s *Service) Today(ctx context.Context, req TodayRequest) (*DailyChallenge, error) {
	key, err := s.keys.Resolve(req.Date, s.now())
	if err != nil {
		return nil, err
	}

	rec, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load challenge %s: %w", key, err)
	}

	outcome := outcomeHit
	if rec == nil {
		rec, outcome, err = s.materialize(ctx, key)
		if err != nil {
			return nil, err
		}
	}
	if needsHeal(rec) {
		rec, err = s.heal(ctx, rec)
		if err != nil {
			return nil, err
		}
		outcome = outcomeHealed
	}

	metrics.ChallengeRequests.WithLabelValues(outcome).Inc()
	resp := s.render(rec, normalize(req.Lang))
	return &resp, nil
}

// Extra synthesizes a fresh question about movieID, avoiding ExcludeTypes
// while the movie still has other types left.
func (s *Service) Extra(ctx context.Context, req ExtraRequest) (*ExtraQuestion, error) {
	if req.MovieID <= 0 {
		return nil, &InputError{Field: "movieId", Message: "must be a positive integer"}
	}
	facts, err := s.provider.Details(ctx, req.MovieID)
	if err != nil {
		return nil, fmt.Errorf("fetch movie %d: %w", req.MovieID, err)
	}
	if facts.ID == 0 {
		facts.ID = req.MovieID
	}

	lang := normalize(req.Lang)
	avail := question.AvailabilityOf(facts)
	q, cur, err := s.compose(facts, s.selector.Select(req.ExcludeTypes, avail), lang)
	if err != nil {
		return nil, err
	}

	id := fmt.Sprintf("%d-%s-%d-%s", facts.ID, q.Type, s.now().UnixMilli(), strconv.FormatUint(uint64(rand.Uint32()), 36))
	return s.ephemeral(id, facts, q, cur, lang, avail), nil
}

// NewMovie builds a challenge for a random popular movie without touching
// the daily record.
func (s *Service) NewMovie(ctx context.Context, lang catalog.Lang) (*ExtraQuestion, error) {
	facts, err := s.freshMovie(ctx)
	if err != nil {
		return nil, err
	}

	lang = normalize(lang)
	avail := question.AvailabilityOf(facts)
	q, cur, err := s.compose(facts, s.selector.Select(nil, avail), lang)
	if err != nil {
		return nil, err
	}

	id := fmt.Sprintf("%d-%d", facts.ID, s.now().UnixMilli())
	return s.ephemeral(id, facts, q, cur, lang, avail), nil
}

func (s *Service) materialize(ctx context.Context, key string) (*repository.ChallengeRecord, string, error) {
	if s.locker != nil {
		release, acquired, err := s.locker.Acquire(ctx, key, s.lockTTL)
		switch {
		case err != nil:
			s.logger.Warn().Err(err).Str("challenge_id", key).Msg("challenge lock unavailable, creating without it")
		case !acquired:
			rec, err := s.awaitRecord(ctx, key)
			if err != nil {
				return nil, "", err
			}
			if rec != nil {
				return rec, outcomeWaited, nil
			}
			s.logger.Warn().Str("challenge_id", key).Dur("waited", s.lockWait).Msg("lock holder did not finish, creating challenge")
		default:
			defer release()
			rec, err := s.store.Get(ctx, key)
			if err != nil {
				return nil, "", fmt.Errorf("load challenge %s: %w", key, err)
			}
			if rec != nil {
				return rec, outcomeWaited, nil
			}
		}
	}

	facts, err := s.freshMovie(ctx)
	if err != nil {
		return nil, "", err
	}
	rec, err := s.newRecord(key, facts)
	if err != nil {
		return nil, "", err
	}

	created, err := s.store.Create(ctx, rec)
	if err != nil {
		return nil, "", fmt.Errorf("create challenge %s: %w", key, err)
	}
	if created {
		s.logger.Info().Str("challenge_id", key).Int("movie_id", facts.ID).Str("type", rec.QuestionType).Msg("challenge created")
		return &rec, outcomeCreated, nil
	}

	winner, err := s.store.Get(ctx, key)
	if err != nil {
		return nil, "", fmt.Errorf("load challenge %s after conflict: %w", key, err)
	}
	if winner == nil {
		return nil, "", fmt.Errorf("challenge %s vanished after conflicting insert", key)
	}
	s.logger.Info().Str("challenge_id", key).Msg("lost challenge creation race, serving winner")
	return winner, outcomeRaced, nil
}

func (s *Service) awaitRecord(ctx context.Context, key string) (*repository.ChallengeRecord, error) {
	deadline := time.NewTimer(s.lockWait)
	defer deadline.Stop()
	ticker := time.NewTicker(s.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, nil
		case <-ticker.C:
			rec, err := s.store.Get(ctx, key)
			if err != nil {
				return nil, fmt.Errorf("load challenge %s: %w", key, err)
			}
			if rec != nil {
				return rec, nil
			}
		}
	}
}

// freshMovie picks a popular movie and loads its full details.
func (s *Service) freshMovie(ctx context.Context) (movie.Facts, error) {
	popular, err := s.provider.PopularMovie(ctx)
	if err != nil {
		if errors.Is(err, movie.ErrNotFound) {
			return movie.Facts{}, fmt.Errorf("fetch popular movie: %w: %v", movie.ErrUnavailable, err)
		}
		return movie.Facts{}, fmt.Errorf("fetch popular movie: %w", err)
	}

	details, err := s.provider.Details(ctx, popular.ID)
	if errors.Is(err, movie.ErrNotFound) {
		s.logger.Warn().Int("movie_id", popular.ID).Msg("popular movie has no details, using listing data")
		return popular, nil
	}
	if err != nil {
		return movie.Facts{}, fmt.Errorf("fetch movie %d: %w", popular.ID, err)
	}
	return details, nil
}

func (s *Service) newRecord(key string, facts movie.Facts) (repository.ChallengeRecord, error) {
	q, cur, err := s.compose(facts, s.selector.Select(nil, question.AvailabilityOf(facts)), catalog.Base)
	if err != nil {
		return repository.ChallengeRecord{}, err
	}
	snapshot, err := json.Marshal(facts)
	if err != nil {
		return repository.ChallengeRecord{}, fmt.Errorf("encode facts snapshot: %w", err)
	}
	return repository.ChallengeRecord{
		ID:            key,
		MovieID:       facts.ID,
		Title:         facts.Title,
		PosterURL:     movie.PosterURL(s.posterBase, facts.PosterPath),
		Question:      q.Prompt,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		QuestionType:  string(q.Type),
		Curiosity:     cur.Text,
		CuriosityKind: cur.Kind,
		Facts:         snapshot,
		CreatedAt:     s.now().UTC(),
	}, nil
}

func (s *Service) compose(facts movie.Facts, t question.Type, lang catalog.Lang) (question.Question, question.Curiosity, error) {
	return composeWith(s.synth, facts, t, lang)
}

func composeWith(synth *question.Synthesizer, facts movie.Facts, t question.Type, lang catalog.Lang) (question.Question, question.Curiosity, error) {
	q, err := synth.Synthesize(t, facts, lang)
	if err != nil {
		return question.Question{}, question.Curiosity{}, fmt.Errorf("synthesize question for movie %d: %w", facts.ID, err)
	}
	return q, synth.Curiosity(facts, lang), nil
}

// needsHeal reports a director question that leaked a placeholder into its
// answer or options.
func needsHeal(rec *repository.ChallengeRecord) bool {
	if question.Type(rec.QuestionType) != question.TypeDirector {
		return false
	}
	if catalog.IsUnknownDirector(rec.CorrectAnswer) {
		return true
	}
	for _, o := range rec.Options {
		if catalog.IsUnknownDirector(o) {
			return true
		}
	}
	return false
}

// heal regenerates the question fields of rec without a director and patches
// the stored record. The repaired record is served even if the patch fails.
func (s *Service) heal(ctx context.Context, rec *repository.ChallengeRecord) (*repository.ChallengeRecord, error) {
	facts, err := s.snapshotOrFetch(ctx, rec)
	if errors.Is(err, movie.ErrNotFound) {
		// The daily record exists, so this is never a client-facing 404.
		return nil, fmt.Errorf("load facts to repair challenge %s: %w: %v", rec.ID, movie.ErrUnavailable, err)
	}
	if err != nil {
		return nil, fmt.Errorf("load facts to repair challenge %s: %w", rec.ID, err)
	}
	facts = facts.WithoutDirector()

	// Seeded by the record so a repair that fails to persist is redrawn
	// identically on the next read.
	q, cur, err := composeWith(s.synth.WithSeed(healSeed(rec.ID)), facts, question.TypeDirector, catalog.Base)
	if err != nil {
		return nil, err
	}
	patch := repository.QuestionPatch{
		Question:      q.Prompt,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		QuestionType:  string(q.Type),
		Curiosity:     cur.Text,
		CuriosityKind: cur.Kind,
	}

	log := s.logger.With().Str("challenge_id", rec.ID).Int("movie_id", rec.MovieID).Logger()
	if err := s.store.PatchQuestion(ctx, rec.ID, patch); err != nil {
		log.Error().Err(err).Msg("persist repaired challenge failed")
	} else {
		log.Info().Str("type", patch.QuestionType).Msg("repaired challenge with placeholder director")
	}

	healed := *rec
	healed.Question = patch.Question
	healed.Options = patch.Options
	healed.CorrectAnswer = patch.CorrectAnswer
	healed.QuestionType = patch.QuestionType
	healed.Curiosity = patch.Curiosity
	healed.CuriosityKind = patch.CuriosityKind
	return &healed, nil
}

func healSeed(id string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(id))
	return h.Sum64()
}

func (s *Service) snapshotOrFetch(ctx context.Context, rec *repository.ChallengeRecord) (movie.Facts, error) {
	if facts, ok := decodeFacts(rec.Facts); ok {
		return facts, nil
	}
	return s.provider.Details(ctx, rec.MovieID)
}

func (s *Service) render(rec *repository.ChallengeRecord, lang catalog.Lang) DailyChallenge {
	q := question.Question{
		Prompt:        rec.Question,
		Options:       rec.Options,
		CorrectAnswer: rec.CorrectAnswer,
		Type:          question.Type(rec.QuestionType),
	}
	curiosity := rec.Curiosity
	if lang != catalog.Base {
		q = question.Localize(q, rec.Title, lang)
		if facts, ok := decodeFacts(rec.Facts); ok && rec.CuriosityKind != "" {
			if text, ok := question.RenderCuriosity(rec.CuriosityKind, facts, lang); ok {
				curiosity = text
			}
		}
	}

	createdAt := rec.CreatedAt
	return DailyChallenge{
		ID:            rec.ID,
		MovieID:       rec.MovieID,
		Title:         rec.Title,
		PosterURL:     rec.PosterURL,
		Question:      q.Prompt,
		Options:       q.Options,
		CorrectAnswer: q.CorrectAnswer,
		QuestionType:  q.Type,
		Curiosity:     curiosity,
		Lang:          lang,
		CreatedAt:     &createdAt,
	}
}

func (s *Service) ephemeral(id string, facts movie.Facts, q question.Question, cur question.Curiosity, lang catalog.Lang, avail question.Availability) *ExtraQuestion {
	return &ExtraQuestion{
		DailyChallenge: DailyChallenge{
			ID:            id,
			MovieID:       facts.ID,
			Title:         facts.Title,
			PosterURL:     movie.PosterURL(s.posterBase, facts.PosterPath),
			Question:      q.Prompt,
			Options:       q.Options,
			CorrectAnswer: q.CorrectAnswer,
			QuestionType:  q.Type,
			Curiosity:     cur.Text,
			Lang:          lang,
			IsExtra:       true,
		},
		QuestionTypeCount: avail.Count(),
	}
}

func decodeFacts(raw []byte) (movie.Facts, bool) {
	if len(raw) == 0 {
		return movie.Facts{}, false
	}
	var facts movie.Facts
	if err := json.Unmarshal(raw, &facts); err != nil || facts.ID == 0 {
		return movie.Facts{}, false
	}
	return facts, true
}

func normalize(lang catalog.Lang) catalog.Lang {
	if lang == "" {
		return catalog.Base
	}
	return catalog.NormalizeLang(string(lang))
}
