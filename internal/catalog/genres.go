package catalog

import "strings"

type genreEntry struct {
	key   string
	names map[Lang]string
}

// genreTable holds every genre the catalog can translate. The first ten
// entries form the distractor pool for genre questions.
var genreTable = []genreEntry{
	{"Action", map[Lang]string{English: "Action", Portuguese: "Ação", French: "Action"}},
	{"Drama", map[Lang]string{English: "Drama", Portuguese: "Drama", French: "Drame"}},
	{"Comedy", map[Lang]string{English: "Comedy", Portuguese: "Comédia", French: "Comédie"}},
	{"Thriller", map[Lang]string{English: "Thriller", Portuguese: "Thriller", French: "Thriller"}},
	{"Horror", map[Lang]string{English: "Horror", Portuguese: "Terror", French: "Horreur"}},
	{"Romance", map[Lang]string{English: "Romance", Portuguese: "Romance", French: "Romance"}},
	{"Sci-Fi", map[Lang]string{English: "Sci-Fi", Portuguese: "Ficção científica", French: "Science-fiction"}},
	{"Adventure", map[Lang]string{English: "Adventure", Portuguese: "Aventura", French: "Aventure"}},
	{"Crime", map[Lang]string{English: "Crime", Portuguese: "Crime", French: "Crime"}},
	{"Fantasy", map[Lang]string{English: "Fantasy", Portuguese: "Fantasia", French: "Fantaisie"}},
	{"Animation", map[Lang]string{English: "Animation", Portuguese: "Animação", French: "Animation"}},
	{"Family", map[Lang]string{English: "Family", Portuguese: "Família", French: "Familial"}},
	{"Mystery", map[Lang]string{English: "Mystery", Portuguese: "Mistério", French: "Mystère"}},
	{"War", map[Lang]string{English: "War", Portuguese: "Guerra", French: "Guerre"}},
	{"History", map[Lang]string{English: "History", Portuguese: "História", French: "Histoire"}},
	{"Music", map[Lang]string{English: "Music", Portuguese: "Música", French: "Musique"}},
	{"Western", map[Lang]string{English: "Western", Portuguese: "Faroeste", French: "Western"}},
	{"Documentary", map[Lang]string{English: "Documentary", Portuguese: "Documentário", French: "Documentaire"}},
	{"TV Movie", map[Lang]string{English: "TV Movie", Portuguese: "Filme de TV", French: "Téléfilm"}},
}

const distractorPoolSize = 10

// Provider spellings that map onto a table key.
var genreAliases = map[string]string{
	"science fiction": "Sci-Fi",
	"scifi":           "Sci-Fi",
	"sci fi":          "Sci-Fi",
}

var (
	genreByKey  = map[string]genreEntry{}
	genreByName = map[Lang]map[string]string{}
)

func init() {
	for _, entry := range genreTable {
		genreByKey[entry.key] = entry
		for lang, name := range entry.names {
			if genreByName[lang] == nil {
				genreByName[lang] = map[string]string{}
			}
			genreByName[lang][strings.ToLower(name)] = entry.key
		}
	}
}

// GenrePool returns the canonical keys genre distractors are drawn from.
func GenrePool() []string {
	pool := make([]string, 0, distractorPoolSize)
	for _, entry := range genreTable[:distractorPoolSize] {
		pool = append(pool, entry.key)
	}
	return pool
}

// CanonicalGenre maps a provider genre name onto its catalog key. Names the
// catalog does not know are returned trimmed but otherwise untouched.
func CanonicalGenre(name string) string {
	name = strings.TrimSpace(name)
	lower := strings.ToLower(name)
	if key, ok := genreAliases[lower]; ok {
		return key
	}
	if key, ok := genreByName[English][lower]; ok {
		return key
	}
	return name
}

// TranslateGenre renders a canonical genre key in lang. Keys without a
// translation are returned unchanged.
func TranslateGenre(key string, lang Lang) string {
	entry, ok := genreByKey[key]
	if !ok {
		return key
	}
	if name, ok := entry.names[lang]; ok {
		return name
	}
	return entry.names[Base]
}

// GenreKey resolves a localized genre name back to its canonical key.
func GenreKey(name string, lang Lang) (string, bool) {
	key, ok := genreByName[lang][strings.ToLower(strings.TrimSpace(name))]
	return key, ok
}
