package catalog

import (
	"fmt"
	"math"
	"strconv"
)

// Curiosity kinds, in the order candidates are considered.
const (
	CuriosityReleased   = "released"
	CuriosityRating     = "rating"
	CuriosityPopularity = "popularity"
	CuriosityDirector   = "director"
	CuriosityRuntime    = "runtime"
	CuriosityGenre      = "genre"
)

// CuriosityKinds lists every fact template.
var CuriosityKinds = []string{
	CuriosityReleased,
	CuriosityRating,
	CuriosityPopularity,
	CuriosityDirector,
	CuriosityRuntime,
	CuriosityGenre,
}

// CuriosityFacts carries the values a curiosity template can reference.
// Zero values mean the fact is unknown.
type CuriosityFacts struct {
	Title      string
	Year       int
	Rating     float64
	Popularity float64
	Director   string
	Runtime    int
	Genre      string
}

var curiosityTemplates = map[Lang]map[string]string{
	English: {
		CuriosityReleased:   `"%s" was released in %d.`,
		CuriosityRating:     `"%s" has an average rating of %s/10 on TMDB.`,
		CuriosityPopularity: `"%s" is a popular film with a score of %d on TMDB.`,
		CuriosityDirector:   `"%s" was directed by %s.`,
		CuriosityRuntime:    `"%s" has a runtime of %d minutes.`,
		CuriosityGenre:      `"%s" is a %s film.`,
	},
	Portuguese: {
		CuriosityReleased:   `"%s" foi lançado em %d.`,
		CuriosityRating:     `"%s" tem nota média de %s/10 no TMDB.`,
		CuriosityPopularity: `"%s" é um filme popular com pontuação de %d no TMDB.`,
		CuriosityDirector:   `"%s" foi dirigido por %s.`,
		CuriosityRuntime:    `"%s" tem duração de %d minutos.`,
		CuriosityGenre:      `"%s" é um filme de %s.`,
	},
	French: {
		CuriosityReleased:   `« %s » est sorti en %d.`,
		CuriosityRating:     `« %s » a une note moyenne de %s/10 sur TMDB.`,
		CuriosityPopularity: `« %s » est un film populaire avec une cote de %d sur TMDB.`,
		CuriosityDirector:   `« %s » a été réalisé par %s.`,
		CuriosityRuntime:    `« %s » a une durée de %d minutes.`,
		CuriosityGenre:      `« %s » est un film %s.`,
	},
}

// Curiosity renders the fact of the given kind in lang. It reports false when
// the kind is unknown or the fact it needs is missing.
func Curiosity(kind string, lang Lang, f CuriosityFacts) (string, bool) {
	templates, ok := curiosityTemplates[lang]
	if !ok {
		templates = curiosityTemplates[Base]
	}
	tmpl, ok := templates[kind]
	if !ok {
		return "", false
	}

	switch kind {
	case CuriosityReleased:
		if f.Year <= 0 {
			return "", false
		}
		return fmt.Sprintf(tmpl, f.Title, f.Year), true
	case CuriosityRating:
		return fmt.Sprintf(tmpl, f.Title, strconv.FormatFloat(f.Rating, 'f', 1, 64)), true
	case CuriosityPopularity:
		return fmt.Sprintf(tmpl, f.Title, int(math.Round(f.Popularity))), true
	case CuriosityDirector:
		if IsUnknownDirector(f.Director) {
			return "", false
		}
		return fmt.Sprintf(tmpl, f.Title, f.Director), true
	case CuriosityRuntime:
		if f.Runtime <= 0 {
			return "", false
		}
		return fmt.Sprintf(tmpl, f.Title, f.Runtime), true
	case CuriosityGenre:
		if f.Genre == "" {
			return "", false
		}
		return fmt.Sprintf(tmpl, f.Title, TranslateGenre(f.Genre, lang)), true
	}
	return "", false
}
