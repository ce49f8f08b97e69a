package question

import (
	"strings"

	"github.com/gokatarajesh/movie-trivia/internal/catalog"
)

// Type identifies which movie attribute a question asks about.
type Type string

// Question types.
const (
	TypeYear     Type = catalog.KindYear
	TypeDirector Type = catalog.KindDirector
	TypeRating   Type = catalog.KindRating
	TypeGenre    Type = catalog.KindGenre
	TypeRuntime  Type = catalog.KindRuntime
)

// AllTypes lists every question type in canonical order.
var AllTypes = []Type{TypeYear, TypeDirector, TypeRating, TypeGenre, TypeRuntime}

// DefaultTypeCount is the number of question types a movie supports when
// nothing more specific is known about it.
var DefaultTypeCount = len(AllTypes)

// Question is one rendered multiple-choice question.
type Question struct {
	Prompt        string   `json:"question"`
	Options       []string `json:"options"`
	CorrectAnswer string   `json:"correctAnswer"`
	Type          Type     `json:"questionType"`
}

// Curiosity is a one-sentence fact about the movie. Kind names the template
// so the text can be re-rendered in another language.
type Curiosity struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// ParseType reports whether s names a known question type.
func ParseType(s string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range AllTypes {
		if t == known {
			return t, true
		}
	}
	return "", false
}

func (t Type) String() string {
	return string(t)
}
