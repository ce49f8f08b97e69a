package question

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/gokatarajesh/movie-trivia/internal/catalog"
	"github.com/gokatarajesh/movie-trivia/internal/metrics"
	"github.com/gokatarajesh/movie-trivia/internal/movie"
)

const (
	optionCount     = 4
	maxDrawAttempts = 100

	minYear        = 1900
	defaultRuntime = 120
	minRuntime     = 61
	maxRuntime     = 239
	maxRatingTenth = 100
	defaultGenre   = "Action"
)

var directorPool = []string{
	"Christopher Nolan",
	"Steven Spielberg",
	"Quentin Tarantino",
	"Martin Scorsese",
	"Ridley Scott",
	"James Cameron",
	"Peter Jackson",
	"Tim Burton",
}

// Options configures a Synthesizer.
type Options struct {
	// Seed fixes the random source; zero seeds from the clock.
	Seed uint64
	Now  func() time.Time
}

// Synthesizer turns movie facts into multiple-choice questions and curiosities.
// It is safe for concurrent use.
type Synthesizer struct {
	rng    *lockedRand
	now    func() time.Time
	logger zerolog.Logger
}

// SynthesisError reports that a question could not satisfy its option invariants.
type SynthesisError struct {
	Type    Type
	MovieID int
	Reason  string
}

func (e *SynthesisError) Error() string {
	return fmt.Sprintf("synthesize %s question for movie %d: %s", e.Type, e.MovieID, e.Reason)
}

func NewSynthesizer(opts Options, logger zerolog.Logger) *Synthesizer {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Synthesizer{
		rng:    newLockedRand(opts.Seed),
		now:    opts.Now,
		logger: logger.With().Str("component", "synthesizer").Logger(),
	}
}

// WithSeed returns a Synthesizer sharing s's clock and logger whose draws
// are fixed by seed, so repeated calls with the same seed and facts agree.
func (s *Synthesizer) WithSeed(seed uint64) *Synthesizer {
	if seed == 0 {
		seed = 1
	}
	return &Synthesizer{rng: newLockedRand(seed), now: s.now, logger: s.logger}
}

// Synthesize builds a question of type t for facts, rendered in lang.
// A director question for a movie without a known director comes back as a
// year question, and a year question for a movie without a release date comes
// back as a rating question.
func (s *Synthesizer) Synthesize(t Type, facts movie.Facts, lang catalog.Lang) (Question, error) {
	var (
		q   Question
		err error
	)
	switch t {
	case TypeYear:
		q, err = s.year(facts, lang)
	case TypeDirector:
		q, err = s.director(facts, lang)
	case TypeRating:
		q, err = s.rating(facts, lang)
	case TypeGenre:
		q, err = s.genre(facts, lang)
	case TypeRuntime:
		q, err = s.runtime(facts, lang)
	default:
		return Question{}, fmt.Errorf("unknown question type %q", t)
	}
	if err != nil {
		s.logger.Error().Err(err).Int("movie_id", facts.ID).Str("type", string(t)).Msg("question synthesis failed")
		return Question{}, err
	}

	s.rng.Shuffle(len(q.Options), func(i, j int) {
		q.Options[i], q.Options[j] = q.Options[j], q.Options[i]
	})
	metrics.QuestionsSynthesized.WithLabelValues(string(q.Type), string(lang)).Inc()
	return q, nil
}

func (s *Synthesizer) year(facts movie.Facts, lang catalog.Lang) (Question, error) {
	if facts.Year() <= 0 {
		s.logger.Warn().Int("movie_id", facts.ID).Msg("release date unknown, falling back to rating question")
		metrics.SynthesisFallbacks.WithLabelValues(string(TypeYear), "missing_release_date").Inc()
		return s.rating(facts, lang)
	}
	options, err := s.numericOptions(facts.ID, numericSpace{
		t:       TypeYear,
		correct: facts.Year(),
		lo:      minYear,
		hi:      s.now().Year() + 1,
		minOff:  -3,
		maxOff:  2,
		format:  strconv.Itoa,
	})
	if err != nil {
		return Question{}, err
	}
	return newQuestion(TypeYear, facts.Title, lang, options), nil
}

func (s *Synthesizer) rating(facts movie.Facts, lang catalog.Lang) (Question, error) {
	tenths := clamp(int(facts.VoteAverage*10+0.5), 0, maxRatingTenth)
	options, err := s.numericOptions(facts.ID, numericSpace{
		t:       TypeRating,
		correct: tenths,
		lo:      0,
		hi:      maxRatingTenth,
		minOff:  -15,
		maxOff:  15,
		format:  formatTenths,
	})
	if err != nil {
		return Question{}, err
	}
	return newQuestion(TypeRating, facts.Title, lang, options), nil
}

func (s *Synthesizer) runtime(facts movie.Facts, lang catalog.Lang) (Question, error) {
	minutes, ok := facts.RuntimeMinutes()
	if !ok {
		minutes = defaultRuntime
	}
	options, err := s.numericOptions(facts.ID, numericSpace{
		t:       TypeRuntime,
		correct: minutes,
		lo:      minRuntime,
		hi:      maxRuntime,
		minOff:  -30,
		maxOff:  30,
		format:  func(m int) string { return strconv.Itoa(m) + " min" },
	})
	if err != nil {
		return Question{}, err
	}
	return newQuestion(TypeRuntime, facts.Title, lang, options), nil
}

func (s *Synthesizer) director(facts movie.Facts, lang catalog.Lang) (Question, error) {
	name, ok := facts.DirectorName()
	if !ok {
		s.logger.Warn().Int("movie_id", facts.ID).Msg("director unknown, falling back to year question")
		metrics.SynthesisFallbacks.WithLabelValues(string(TypeDirector), "unknown_director").Inc()
		return s.year(facts, lang)
	}

	set := newOptionSet(name)
	for _, i := range s.rng.Perm(len(directorPool)) {
		set.add(directorPool[i])
	}
	if !set.full() {
		return Question{}, &SynthesisError{Type: TypeDirector, MovieID: facts.ID, Reason: "director pool exhausted"}
	}
	return newQuestion(TypeDirector, facts.Title, lang, set.items), nil
}

func (s *Synthesizer) genre(facts movie.Facts, lang catalog.Lang) (Question, error) {
	key := defaultGenre
	if main, ok := facts.MainGenre(); ok {
		key = catalog.CanonicalGenre(main)
	}

	set := newOptionSet(key)
	pool := catalog.GenrePool()
	for _, i := range s.rng.Perm(len(pool)) {
		set.add(pool[i])
	}
	if !set.full() {
		return Question{}, &SynthesisError{Type: TypeGenre, MovieID: facts.ID, Reason: "genre pool exhausted"}
	}

	options := make([]string, len(set.items))
	for i, g := range set.items {
		options[i] = catalog.TranslateGenre(g, lang)
	}
	return newQuestion(TypeGenre, facts.Title, lang, options), nil
}

// numericSpace describes the distractor space of a numeric question in
// integer units. lo and hi bound every option inclusively.
type numericSpace struct {
	t       Type
	correct int
	lo, hi  int
	minOff  int
	maxOff  int
	format  func(int) string
}

func (s *Synthesizer) numericOptions(movieID int, sp numericSpace) ([]string, error) {
	set := newOptionSet(sp.format(sp.correct))
	span := sp.maxOff - sp.minOff + 1
	for attempt := 0; attempt < maxDrawAttempts && !set.full(); attempt++ {
		v := sp.correct + sp.minOff + s.rng.IntN(span)
		if v == sp.correct || v < sp.lo || v > sp.hi {
			continue
		}
		set.add(sp.format(v))
	}
	if set.full() {
		return set.items, nil
	}

	s.logger.Warn().
		Int("movie_id", movieID).
		Str("type", string(sp.t)).
		Int("correct", sp.correct).
		Int("min", sp.lo).
		Int("max", sp.hi).
		Msg("relaxing distractor bounds")
	metrics.SynthesisFallbacks.WithLabelValues(string(sp.t), "relaxed_bounds").Inc()

	// Walk outward from the nearest in-range value.
	center := clamp(sp.correct, sp.lo, sp.hi)
	if center != sp.correct {
		set.add(sp.format(center))
	}
	for d := 1; !set.full() && (center-d >= sp.lo || center+d <= sp.hi); d++ {
		for _, v := range [2]int{center + d, center - d} {
			if v >= sp.lo && v <= sp.hi && v != sp.correct {
				set.add(sp.format(v))
			}
		}
	}
	if !set.full() {
		return nil, &SynthesisError{
			Type:    sp.t,
			MovieID: movieID,
			Reason:  fmt.Sprintf("only %d distinct options within [%d, %d]", len(set.items), sp.lo, sp.hi),
		}
	}
	return set.items, nil
}

// optionSet collects distinct options, correct answer first.
type optionSet struct {
	items []string
	seen  map[string]struct{}
}

func newOptionSet(correct string) *optionSet {
	o := &optionSet{
		items: make([]string, 0, optionCount),
		seen:  make(map[string]struct{}, optionCount),
	}
	o.add(correct)
	return o
}

func (o *optionSet) add(v string) bool {
	if o.full() {
		return false
	}
	k := strings.ToLower(strings.TrimSpace(v))
	if _, dup := o.seen[k]; dup {
		return false
	}
	o.seen[k] = struct{}{}
	o.items = append(o.items, v)
	return true
}

func (o *optionSet) full() bool {
	return len(o.items) >= optionCount
}

// newQuestion assumes options[0] is the correct answer.
func newQuestion(t Type, title string, lang catalog.Lang, options []string) Question {
	return Question{
		Prompt:        catalog.Prompt(string(t), lang, title),
		Options:       options,
		CorrectAnswer: options[0],
		Type:          t,
	}
}

func formatTenths(t int) string {
	return strconv.Itoa(t/10) + "." + strconv.Itoa(t%10)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
