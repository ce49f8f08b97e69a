package catalog

import (
	"fmt"
	"strings"
)

// Question kinds understood by the prompt table. They mirror question.Type.
const (
	KindYear     = "year"
	KindDirector = "director"
	KindRating   = "rating"
	KindGenre    = "genre"
	KindRuntime  = "runtime"
)

var prompts = map[string]map[Lang]string{
	KindYear: {
		English:    `In which year was "%s" released?`,
		Portuguese: `Em que ano "%s" foi lançado?`,
		French:     `En quelle année « %s » a-t-il été sorti?`,
	},
	KindDirector: {
		English:    `Who directed "%s"?`,
		Portuguese: `Quem dirigiu "%s"?`,
		French:     `Qui a réalisé « %s »?`,
	},
	KindRating: {
		English:    `What is the average rating of "%s" on TMDB?`,
		Portuguese: `Qual é a nota média de "%s" no TMDB?`,
		French:     `Quelle est la note moyenne de « %s » sur TMDB?`,
	},
	KindGenre: {
		English:    `What is the main genre of "%s"?`,
		Portuguese: `Qual é o gênero principal de "%s"?`,
		French:     `Quel est le genre principal de « %s »?`,
	},
	KindRuntime: {
		English:    `How long is "%s"?`,
		Portuguese: `Qual é a duração de "%s"?`,
		French:     `Quelle est la durée de « %s »?`,
	},
}

var unknownDirector = map[Lang]string{
	English:    "Unknown",
	Portuguese: "Desconhecido",
	French:     "Inconnu",
}

// Prompt renders the question text for kind in lang. Languages without a
// template use the Base phrasing; unknown kinds render as an empty string.
func Prompt(kind string, lang Lang, title string) string {
	byLang, ok := prompts[kind]
	if !ok {
		return ""
	}
	tmpl, ok := byLang[lang]
	if !ok {
		tmpl = byLang[Base]
	}
	return fmt.Sprintf(tmpl, title)
}

// UnknownDirector returns the legacy "no director" placeholder for lang.
func UnknownDirector(lang Lang) string {
	if v, ok := unknownDirector[lang]; ok {
		return v
	}
	return unknownDirector[Base]
}

// IsUnknownDirector reports whether name is blank or equals the unknown
// placeholder of any supported language, ignoring case and surrounding space.
func IsUnknownDirector(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return true
	}
	for _, sentinel := range unknownDirector {
		if strings.EqualFold(name, sentinel) {
			return true
		}
	}
	return false
}
