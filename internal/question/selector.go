package question

import "github.com/gokatarajesh/movie-trivia/internal/movie"

// Availability records which question types a movie has the facts for.
type Availability struct {
	Year     bool
	Director bool
	Rating   bool
	Genre    bool
	Runtime  bool
}

// AvailabilityOf inspects facts. Rating is always available since the
// provider reports a vote average for every movie.
func AvailabilityOf(f movie.Facts) Availability {
	_, director := f.DirectorName()
	_, runtime := f.RuntimeMinutes()
	_, genre := f.MainGenre()
	return Availability{
		Year:     f.Year() > 0,
		Director: director,
		Rating:   true,
		Genre:    genre,
		Runtime:  runtime,
	}
}

func (a Availability) Has(t Type) bool {
	switch t {
	case TypeYear:
		return a.Year
	case TypeDirector:
		return a.Director
	case TypeRating:
		return a.Rating
	case TypeGenre:
		return a.Genre
	case TypeRuntime:
		return a.Runtime
	}
	return false
}

// Types lists the available types in canonical order.
func (a Availability) Types() []Type {
	out := make([]Type, 0, len(AllTypes))
	for _, t := range AllTypes {
		if a.Has(t) {
			out = append(out, t)
		}
	}
	return out
}

// Count is the number of distinct question types the movie supports.
func (a Availability) Count() int {
	return len(a.Types())
}

// Selector chooses the next question type for a movie.
type Selector struct {
	rng *lockedRand
}

// NewSelector returns a Selector; a zero seed seeds from the clock.
func NewSelector(seed uint64) *Selector {
	return &Selector{rng: newLockedRand(seed)}
}

// Select picks uniformly among the available types not in excluded. When
// nothing remains it returns TypeYear, or the first available type for a
// movie without a release date.
func (s *Selector) Select(excluded []Type, avail Availability) Type {
	skip := make(map[Type]struct{}, len(excluded))
	for _, t := range excluded {
		skip[t] = struct{}{}
	}

	candidates := make([]Type, 0, len(AllTypes))
	for _, t := range avail.Types() {
		if _, ok := skip[t]; !ok {
			candidates = append(candidates, t)
		}
	}
	if len(candidates) == 0 {
		return avail.fallback()
	}
	return candidates[s.rng.IntN(len(candidates))]
}

func (a Availability) fallback() Type {
	if a.Year {
		return TypeYear
	}
	if types := a.Types(); len(types) > 0 {
		return types[0]
	}
	return TypeRating
}
