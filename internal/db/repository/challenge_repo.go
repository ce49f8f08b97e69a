package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// ErrChallengeNotFound is returned when a patch targets a missing record.
var ErrChallengeNotFound = errors.New("challenge not found")

// dbtx is the subset of pgxpool.Pool the repository needs.
type dbtx interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// ChallengeRecord is one persisted daily challenge. The question fields are
// stored in the base language; Facts is the JSON movie snapshot used to
// re-render curiosities and repair the record without calling the provider.
type ChallengeRecord struct {
	ID            string
	MovieID       int
	Title         string
	PosterURL     *string
	Question      string
	Options       []string
	CorrectAnswer string
	QuestionType  string
	Curiosity     string
	CuriosityKind string
	Facts         []byte
	CreatedAt     time.Time
}

// QuestionPatch overwrites only the question-bearing columns of a record.
type QuestionPatch struct {
	Question      string
	Options       []string
	CorrectAnswer string
	QuestionType  string
	Curiosity     string
	CuriosityKind string
}

// ChallengeRepository persists daily challenges in Postgres.
type ChallengeRepository struct {
	db dbtx
}

// NewChallengeRepository constructs a repository over a pool or transaction.
func NewChallengeRepository(db dbtx) *ChallengeRepository {
	return &ChallengeRepository{db: db}
}

const selectChallenge = `
SELECT id, movie_id, title, poster_url, question, options, correct_answer,
       question_type, curiosity, COALESCE(curiosity_kind, ''), facts, created_at
FROM daily_challenges
WHERE id = $1`

// Get returns the record for id, or nil when none exists.
func (r *ChallengeRepository) Get(ctx context.Context, id string) (*ChallengeRecord, error) {
	var rec ChallengeRecord
	err := r.db.QueryRow(ctx, selectChallenge, id).Scan(
		&rec.ID,
		&rec.MovieID,
		&rec.Title,
		&rec.PosterURL,
		&rec.Question,
		&rec.Options,
		&rec.CorrectAnswer,
		&rec.QuestionType,
		&rec.Curiosity,
		&rec.CuriosityKind,
		&rec.Facts,
		&rec.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

const insertChallenge = `
INSERT INTO daily_challenges (
    id, movie_id, title, poster_url, question, options, correct_answer,
    question_type, curiosity, curiosity_kind, facts, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
ON CONFLICT (id) DO NOTHING`

// Create inserts rec unless a record with the same id already exists. It
// reports whether this call created the row.
func (r *ChallengeRepository) Create(ctx context.Context, rec ChallengeRecord) (bool, error) {
	tag, err := r.db.Exec(ctx, insertChallenge,
		rec.ID,
		rec.MovieID,
		rec.Title,
		rec.PosterURL,
		rec.Question,
		rec.Options,
		rec.CorrectAnswer,
		rec.QuestionType,
		rec.Curiosity,
		rec.CuriosityKind,
		rec.Facts,
		rec.CreatedAt,
	)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

const patchChallengeQuestion = `
UPDATE daily_challenges
SET question = $2,
    options = $3,
    correct_answer = $4,
    question_type = $5,
    curiosity = $6,
    curiosity_kind = $7,
    healed_at = now()
WHERE id = $1`

// PatchQuestion replaces the question fields of an existing record, leaving
// the movie columns and creation time untouched.
func (r *ChallengeRepository) PatchQuestion(ctx context.Context, id string, patch QuestionPatch) error {
	tag, err := r.db.Exec(ctx, patchChallengeQuestion,
		id,
		patch.Question,
		patch.Options,
		patch.CorrectAnswer,
		patch.QuestionType,
		patch.Curiosity,
		patch.CuriosityKind,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrChallengeNotFound
	}
	return nil
}
