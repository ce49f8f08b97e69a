package question

import (
	"github.com/gokatarajesh/movie-trivia/internal/catalog"
	"github.com/gokatarajesh/movie-trivia/internal/movie"
)

// Curiosity picks one fact template the movie has data for and renders it in lang.
func (s *Synthesizer) Curiosity(facts movie.Facts, lang catalog.Lang) Curiosity {
	cf := CuriosityFacts(facts)
	candidates := make([]Curiosity, 0, len(catalog.CuriosityKinds))
	for _, kind := range catalog.CuriosityKinds {
		if text, ok := catalog.Curiosity(kind, lang, cf); ok {
			candidates = append(candidates, Curiosity{Kind: kind, Text: text})
		}
	}
	if len(candidates) == 0 {
		return Curiosity{}
	}
	return candidates[s.rng.IntN(len(candidates))]
}

// RenderCuriosity renders a previously chosen curiosity kind in lang.
func RenderCuriosity(kind string, facts movie.Facts, lang catalog.Lang) (string, bool) {
	return catalog.Curiosity(kind, lang, CuriosityFacts(facts))
}

// CuriosityFacts extracts the template values from facts, leaving unknown
// director, runtime and genre empty.
func CuriosityFacts(f movie.Facts) catalog.CuriosityFacts {
	cf := catalog.CuriosityFacts{
		Title:      f.Title,
		Year:       f.Year(),
		Rating:     f.VoteAverage,
		Popularity: f.Popularity,
	}
	if name, ok := f.DirectorName(); ok {
		cf.Director = name
	}
	if minutes, ok := f.RuntimeMinutes(); ok {
		cf.Runtime = minutes
	}
	if g, ok := f.MainGenre(); ok {
		cf.Genre = catalog.CanonicalGenre(g)
	}
	return cf
}

// Localize re-renders q, produced in the base language, for lang. Option
// values and their order are kept; only display text changes.
func Localize(q Question, title string, lang catalog.Lang) Question {
	out := Question{
		Prompt:        catalog.Prompt(string(q.Type), lang, title),
		Options:       append([]string(nil), q.Options...),
		CorrectAnswer: q.CorrectAnswer,
		Type:          q.Type,
	}
	if q.Type != TypeGenre {
		return out
	}
	for i, o := range out.Options {
		out.Options[i] = translateStoredGenre(o, lang)
	}
	out.CorrectAnswer = translateStoredGenre(q.CorrectAnswer, lang)
	return out
}

func translateStoredGenre(name string, lang catalog.Lang) string {
	key, ok := catalog.GenreKey(name, catalog.Base)
	if !ok {
		return name
	}
	return catalog.TranslateGenre(key, lang)
}
