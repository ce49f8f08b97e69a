package question

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/gokatarajesh/movie-trivia/internal/movie"
)

func TestSelectorHonoursExclusions(t *testing.T) {
	selector := NewSelector(1)
	avail := AvailabilityOf(inception())
	assert.Equal(t, 5, avail.Count())

	for i := 0; i < 100; i++ {
		got := selector.Select([]Type{TypeYear, TypeRating, TypeGenre}, avail)
		assert.Contains(t, []Type{TypeDirector, TypeRuntime}, got)
	}
}

func TestSelectorSkipsUnavailableDirector(t *testing.T) {
	selector := NewSelector(2)
	facts := inception()
	facts.Director = nil
	avail := AvailabilityOf(facts)
	assert.Equal(t, 4, avail.Count())

	for i := 0; i < 100; i++ {
		assert.NotEqual(t, TypeDirector, selector.Select(nil, avail))
	}
}

func TestSelectorFallsBackToYearWhenExhausted(t *testing.T) {
	selector := NewSelector(3)
	assert.Equal(t, TypeYear, selector.Select(AllTypes, AvailabilityOf(inception())))
	assert.Equal(t, TypeRating, selector.Select(nil, Availability{}))
}

func TestSelectorExhaustedFallbackNeedsReleaseDate(t *testing.T) {
	selector := NewSelector(6)
	dateless := AvailabilityOf(movie.Facts{ID: 7, Title: "Untitled"})
	assert.False(t, dateless.Has(TypeYear))

	assert.Equal(t, TypeRating, selector.Select([]Type{TypeRating}, dateless))
	assert.Equal(t, TypeRating, selector.Select(AllTypes, dateless))

	runtime := 95
	facts := movie.Facts{ID: 8, Title: "Untitled II", Genres: []string{"Drama"}, Runtime: &runtime}
	got := selector.Select(AllTypes, AvailabilityOf(facts))
	assert.True(t, AvailabilityOf(facts).Has(got), "fallback %s must be available", got)
}

func TestSelectorCoversAllCandidates(t *testing.T) {
	selector := NewSelector(4)
	seen := map[Type]bool{}
	for i := 0; i < 500; i++ {
		seen[selector.Select(nil, AvailabilityOf(inception()))] = true
	}
	assert.Len(t, seen, len(AllTypes))
}

func TestAvailabilityOfSparseFacts(t *testing.T) {
	avail := AvailabilityOf(movie.Facts{ID: 1, Title: "Sparse"})
	assert.Equal(t, []Type{TypeRating}, avail.Types())
	assert.False(t, avail.Has(Type("budget")))
}

func TestSelectorIsSafeForConcurrentUse(t *testing.T) {
	selector := NewSelector(5)
	avail := AvailabilityOf(inception())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				selector.Select([]Type{TypeYear}, avail)
			}
		}()
	}
	wg.Wait()
}
