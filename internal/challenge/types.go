package challenge

import (
	"context"
	"fmt"
	"time"

	"github.com/gokatarajesh/movie-trivia/internal/catalog"
	"github.com/gokatarajesh/movie-trivia/internal/db/repository"
	"github.com/gokatarajesh/movie-trivia/internal/question"
)

// DailyChallenge is the response shape of a challenge, daily or ad hoc.
type DailyChallenge struct {
	ID            string        `json:"id"`
	MovieID       int           `json:"movieId"`
	Title         string        `json:"title"`
	PosterURL     *string       `json:"posterUrl"`
	Question      string        `json:"question"`
	Options       []string      `json:"options"`
	CorrectAnswer string        `json:"correctAnswer"`
	QuestionType  question.Type `json:"questionType"`
	Curiosity     string        `json:"curiosity"`
	Lang          catalog.Lang  `json:"lang"`
	CreatedAt     *time.Time    `json:"createdAt,omitempty"`
	IsExtra       bool          `json:"isExtra,omitempty"`
}

// ExtraQuestion is an ephemeral question about a movie. It is never persisted.
type ExtraQuestion struct {
	DailyChallenge
	// QuestionTypeCount is how many question types the movie supports, so
	// clients know when they have exhausted it.
	QuestionTypeCount int `json:"questionTypeCount"`
}

// TodayRequest asks for the challenge of the current period.
type TodayRequest struct {
	// Date overrides the period key; empty means now.
	Date string
	Lang catalog.Lang
}

// ExtraRequest asks for another question about a known movie.
type ExtraRequest struct {
	MovieID      int
	ExcludeTypes []question.Type
	Lang         catalog.Lang
}

// InputError reports a malformed or missing request parameter.
type InputError struct {
	Field   string
	Message string
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// Store persists daily challenges.
type Store interface {
	Get(ctx context.Context, id string) (*repository.ChallengeRecord, error)
	Create(ctx context.Context, rec repository.ChallengeRecord) (bool, error)
	PatchQuestion(ctx context.Context, id string, patch repository.QuestionPatch) error
}

// Locker coordinates challenge creation across processes. Acquire returns
// acquired=false when another holder owns key.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), acquired bool, err error)
}

var _ Store = (*repository.ChallengeRepository)(nil)
