package question

import (
	"io"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/movie-trivia/internal/catalog"
	"github.com/gokatarajesh/movie-trivia/internal/movie"
)

var fixedNow = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestSynthesizer(seed uint64) *Synthesizer {
	return NewSynthesizer(Options{Seed: seed, Now: func() time.Time { return fixedNow }}, zerolog.New(io.Discard))
}

func inception() movie.Facts {
	runtime := 148
	return movie.Facts{
		ID:          27205,
		Title:       "Inception",
		ReleaseDate: time.Date(2010, 7, 16, 0, 0, 0, 0, time.UTC),
		VoteAverage: 8.4,
		Popularity:  83.1,
		Director:    movie.DirectorOrNil("Christopher Nolan"),
		Genres:      []string{"Science Fiction"},
		Runtime:     &runtime,
	}
}

func assertWellFormed(t *testing.T, q Question) {
	t.Helper()
	require.Len(t, q.Options, optionCount)
	seen := map[string]bool{}
	hits := 0
	for _, o := range q.Options {
		assert.False(t, seen[o], "duplicate option %q in %v", o, q.Options)
		seen[o] = true
		if o == q.CorrectAnswer {
			hits++
		}
	}
	assert.Equal(t, 1, hits, "correct answer %q must appear once in %v", q.CorrectAnswer, q.Options)
}

func TestYearQuestionEndToEnd(t *testing.T) {
	synth := newTestSynthesizer(1)

	q, err := synth.Synthesize(TypeYear, inception(), catalog.English)
	require.NoError(t, err)

	assert.Equal(t, `In which year was "Inception" released?`, q.Prompt)
	assert.Equal(t, "2010", q.CorrectAnswer)
	assert.Equal(t, TypeYear, q.Type)
	assertWellFormed(t, q)
	for _, o := range q.Options {
		year, err := strconv.Atoi(o)
		require.NoError(t, err)
		assert.InDelta(t, 2010, year, 3)
	}
}

func TestDirectorQuestionInFrench(t *testing.T) {
	synth := newTestSynthesizer(2)

	q, err := synth.Synthesize(TypeDirector, inception(), catalog.French)
	require.NoError(t, err)

	assert.Equal(t, `Qui a réalisé « Inception »?`, q.Prompt)
	assert.Equal(t, "Christopher Nolan", q.CorrectAnswer)
	assertWellFormed(t, q)
}

func TestDirectorFallsBackToYearWhenUnknown(t *testing.T) {
	synth := newTestSynthesizer(3)
	for _, name := range []string{"", "Unknown", " desconhecido", "INCONNU"} {
		facts := inception()
		facts.Director = &name

		q, err := synth.Synthesize(TypeDirector, facts, catalog.Portuguese)
		require.NoError(t, err)
		assert.Equal(t, TypeYear, q.Type, "director=%q", name)
		assert.Equal(t, "2010", q.CorrectAnswer)
		for _, o := range q.Options {
			assert.False(t, catalog.IsUnknownDirector(o))
		}
	}

	facts := inception()
	facts.Director = nil
	q, err := synth.Synthesize(TypeDirector, facts, catalog.English)
	require.NoError(t, err)
	assert.Equal(t, TypeYear, q.Type)
}

func TestMissingReleaseDateNeverYieldsYearQuestion(t *testing.T) {
	synth := newTestSynthesizer(8)
	dateless := movie.Facts{ID: 7, Title: "Untitled", VoteAverage: 6.2}

	for _, typ := range []Type{TypeYear, TypeDirector} {
		q, err := synth.Synthesize(typ, dateless, catalog.English)
		require.NoError(t, err)
		assert.Equal(t, TypeRating, q.Type, "requested %s", typ)
		assert.Equal(t, "6.2", q.CorrectAnswer)
		assertWellFormed(t, q)
		for _, o := range q.Options {
			rating, err := strconv.ParseFloat(o, 64)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, rating, 0.0)
			assert.LessOrEqual(t, rating, 10.0)
		}
	}
}

func TestDirectorAlreadyInPoolIsNotDuplicated(t *testing.T) {
	synth := newTestSynthesizer(4)
	facts := inception()
	facts.Director = movie.DirectorOrNil("christopher nolan")

	for i := 0; i < 50; i++ {
		q, err := synth.Synthesize(TypeDirector, facts, catalog.English)
		require.NoError(t, err)
		assertWellFormed(t, q)
		for _, o := range q.Options {
			if o != q.CorrectAnswer {
				assert.NotEqual(t, "christopher nolan", strings.ToLower(o))
			}
		}
	}
}

func TestNumericOptionsStayInsideWindows(t *testing.T) {
	synth := newTestSynthesizer(5)

	for i := 0; i < 200; i++ {
		q, err := synth.Synthesize(TypeYear, inception(), catalog.English)
		require.NoError(t, err)
		assertWellFormed(t, q)
		for _, o := range q.Options {
			year, err := strconv.Atoi(o)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, year, 1900)
			assert.LessOrEqual(t, year, fixedNow.Year()+1)
		}

		q, err = synth.Synthesize(TypeRating, inception(), catalog.English)
		require.NoError(t, err)
		assertWellFormed(t, q)
		assert.Equal(t, "8.4", q.CorrectAnswer)
		for _, o := range q.Options {
			rating, err := strconv.ParseFloat(o, 64)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, rating, 0.0)
			assert.LessOrEqual(t, rating, 10.0)
			assert.Regexp(t, `^\d+\.\d$`, o)
		}

		q, err = synth.Synthesize(TypeRuntime, inception(), catalog.English)
		require.NoError(t, err)
		assertWellFormed(t, q)
		assert.Equal(t, "148 min", q.CorrectAnswer)
		for _, o := range q.Options {
			minutes, err := strconv.Atoi(strings.TrimSuffix(o, " min"))
			require.NoError(t, err)
			assert.Greater(t, minutes, 60)
			assert.Less(t, minutes, 240)
		}
	}
}

func TestDegenerateInputsRelaxInsteadOfFailing(t *testing.T) {
	synth := newTestSynthesizer(6)

	perfect := inception()
	perfect.VoteAverage = 10
	q, err := synth.Synthesize(TypeRating, perfect, catalog.English)
	require.NoError(t, err)
	assertWellFormed(t, q)
	assert.Equal(t, "10.0", q.CorrectAnswer)

	zero := inception()
	zero.VoteAverage = 0
	q, err = synth.Synthesize(TypeRating, zero, catalog.English)
	require.NoError(t, err)
	assertWellFormed(t, q)
	assert.Equal(t, "0.0", q.CorrectAnswer)

	upcoming := inception()
	upcoming.ReleaseDate = time.Date(fixedNow.Year()+1, 3, 1, 0, 0, 0, 0, time.UTC)
	q, err = synth.Synthesize(TypeYear, upcoming, catalog.English)
	require.NoError(t, err)
	assertWellFormed(t, q)

	silent := inception()
	silent.ReleaseDate = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	q, err = synth.Synthesize(TypeYear, silent, catalog.English)
	require.NoError(t, err)
	assertWellFormed(t, q)
	for _, o := range q.Options {
		year, _ := strconv.Atoi(o)
		assert.GreaterOrEqual(t, year, 1900)
	}
}

func TestRuntimeDefaultsWhenMissing(t *testing.T) {
	synth := newTestSynthesizer(7)
	facts := inception()
	facts.Runtime = nil

	q, err := synth.Synthesize(TypeRuntime, facts, catalog.English)
	require.NoError(t, err)
	assert.Equal(t, "120 min", q.CorrectAnswer)
	assert.Equal(t, `How long is "Inception"?`, q.Prompt)
}

func TestGenreQuestionTranslatesEveryOption(t *testing.T) {
	synth := newTestSynthesizer(8)

	q, err := synth.Synthesize(TypeGenre, inception(), catalog.Portuguese)
	require.NoError(t, err)
	assertWellFormed(t, q)
	assert.Equal(t, "Ficção científica", q.CorrectAnswer)
	assert.Equal(t, `Qual é o gênero principal de "Inception"?`, q.Prompt)
	for _, o := range q.Options {
		_, ok := catalog.GenreKey(o, catalog.Portuguese)
		assert.True(t, ok, "option %q is not a Portuguese genre name", o)
	}

	facts := inception()
	facts.Genres = nil
	q, err = synth.Synthesize(TypeGenre, facts, catalog.French)
	require.NoError(t, err)
	assert.Equal(t, "Action", q.CorrectAnswer)
	assertWellFormed(t, q)
}

func TestUnknownGenreIsKeptVerbatim(t *testing.T) {
	synth := newTestSynthesizer(9)
	facts := inception()
	facts.Genres = []string{"Kids"}

	q, err := synth.Synthesize(TypeGenre, facts, catalog.French)
	require.NoError(t, err)
	assert.Equal(t, "Kids", q.CorrectAnswer)
	assertWellFormed(t, q)
}

func TestUnknownTypeIsAnError(t *testing.T) {
	_, err := newTestSynthesizer(10).Synthesize(Type("budget"), inception(), catalog.English)
	assert.Error(t, err)
}

func TestCorrectAnswerPositionVaries(t *testing.T) {
	synth := newTestSynthesizer(11)
	positions := map[int]bool{}
	for i := 0; i < 100; i++ {
		q, err := synth.Synthesize(TypeYear, inception(), catalog.English)
		require.NoError(t, err)
		for idx, o := range q.Options {
			if o == q.CorrectAnswer {
				positions[idx] = true
			}
		}
	}
	assert.Len(t, positions, optionCount)
}

func TestCuriosityNeverEmpty(t *testing.T) {
	synth := newTestSynthesizer(12)
	bare := movie.Facts{ID: 1, Title: "Bare"}

	for _, lang := range catalog.Supported() {
		for i := 0; i < 20; i++ {
			c := synth.Curiosity(bare, lang)
			assert.NotEmpty(t, c.Text)
			assert.Contains(t, []string{catalog.CuriosityRating, catalog.CuriosityPopularity}, c.Kind)
		}
	}

	c := synth.Curiosity(inception(), catalog.English)
	text, ok := RenderCuriosity(c.Kind, inception(), catalog.English)
	require.True(t, ok)
	assert.Equal(t, c.Text, text)
}

func TestLocalizeKeepsValuesAndOrder(t *testing.T) {
	synth := newTestSynthesizer(13)

	q, err := synth.Synthesize(TypeGenre, inception(), catalog.English)
	require.NoError(t, err)

	fr := Localize(q, "Inception", catalog.French)
	assert.Equal(t, `Quel est le genre principal de « Inception »?`, fr.Prompt)
	assert.Equal(t, "Science-fiction", fr.CorrectAnswer)
	for i, o := range q.Options {
		key, ok := catalog.GenreKey(o, catalog.English)
		require.True(t, ok)
		assert.Equal(t, catalog.TranslateGenre(key, catalog.French), fr.Options[i])
	}

	year, err := synth.Synthesize(TypeYear, inception(), catalog.English)
	require.NoError(t, err)
	pt := Localize(year, "Inception", catalog.Portuguese)
	assert.Equal(t, year.Options, pt.Options)
	assert.Equal(t, year.CorrectAnswer, pt.CorrectAnswer)
	assert.Equal(t, `Em que ano "Inception" foi lançado?`, pt.Prompt)
	assert.Equal(t, Localize(year, "Inception", catalog.Portuguese), pt)
}

func TestParseType(t *testing.T) {
	typ, ok := ParseType(" Director ")
	assert.True(t, ok)
	assert.Equal(t, TypeDirector, typ)

	_, ok = ParseType("budget")
	assert.False(t, ok)
}
