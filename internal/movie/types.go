package movie

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gokatarajesh/movie-trivia/internal/catalog"
)

var (
	// ErrNotFound is returned when the provider has no movie with the requested id.
	ErrNotFound = errors.New("movie not found")
	// ErrUnavailable wraps every transient provider failure: timeouts, 5xx, open breaker.
	ErrUnavailable = errors.New("movie provider unavailable")
)

// Facts is the provider's view of a single movie. Director and Runtime are
// nil when the provider does not know them; Director is never a placeholder
// such as "Unknown".
type Facts struct {
	ID          int       `json:"id"`
	Title       string    `json:"title"`
	ReleaseDate time.Time `json:"releaseDate"`
	PosterPath  string    `json:"posterPath,omitempty"`
	VoteAverage float64   `json:"voteAverage"`
	Popularity  float64   `json:"popularity"`
	Director    *string   `json:"director,omitempty"`
	Genres      []string  `json:"genres,omitempty"`
	Runtime     *int      `json:"runtime,omitempty"`
}

// Provider is the upstream movie catalog.
type Provider interface {
	PopularMovie(ctx context.Context) (Facts, error)
	Details(ctx context.Context, id int) (Facts, error)
}

// Year returns the release year, or 0 when the release date is unknown.
func (f Facts) Year() int {
	if f.ReleaseDate.IsZero() {
		return 0
	}
	return f.ReleaseDate.Year()
}

func (f Facts) DirectorName() (string, bool) {
	if f.Director == nil || catalog.IsUnknownDirector(*f.Director) {
		return "", false
	}
	return strings.TrimSpace(*f.Director), true
}

func (f Facts) RuntimeMinutes() (int, bool) {
	if f.Runtime == nil || *f.Runtime <= 0 {
		return 0, false
	}
	return *f.Runtime, true
}

// MainGenre returns the first listed genre.
func (f Facts) MainGenre() (string, bool) {
	for _, g := range f.Genres {
		if g = strings.TrimSpace(g); g != "" {
			return g, true
		}
	}
	return "", false
}

// WithoutDirector returns a copy of f with the director cleared.
func (f Facts) WithoutDirector() Facts {
	f.Director = nil
	return f
}

// DirectorOrNil keeps real director names and drops blanks and placeholders.
func DirectorOrNil(name string) *string {
	if catalog.IsUnknownDirector(name) {
		return nil
	}
	name = strings.TrimSpace(name)
	return &name
}

// PosterURL joins a provider poster path onto base. It returns nil when the
// movie has no poster.
func PosterURL(base, path string) *string {
	if path == "" {
		return nil
	}
	u := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
	return &u
}
