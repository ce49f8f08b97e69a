package question

import (
	"strings"
	"sync"
)

// Played identifies one question shown to a player.
type Played struct {
	ID      string
	MovieID int
	Prompt  string
	Type    Type
	// TypeCount is how many question types the movie supports; zero means unknown.
	TypeCount int
}

// Session tracks what one player has already been shown so extra questions
// for the same movie never repeat before every type has been used.
type Session struct {
	mu         sync.Mutex
	ids        map[string]struct{}
	types      map[int]map[Type]struct{}
	prompts    map[int]map[string]struct{}
	typeCounts map[int]int
}

func NewSession() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset forgets everything played so far.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ids = map[string]struct{}{}
	s.types = map[int]map[Type]struct{}{}
	s.prompts = map[int]map[string]struct{}{}
	s.typeCounts = map[int]int{}
}

func (s *Session) MarkPlayed(p Played) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID != "" {
		s.ids[p.ID] = struct{}{}
	}
	if s.types[p.MovieID] == nil {
		s.types[p.MovieID] = map[Type]struct{}{}
		s.prompts[p.MovieID] = map[string]struct{}{}
	}
	s.types[p.MovieID][p.Type] = struct{}{}
	if prompt := normalizePrompt(p.Prompt); prompt != "" {
		s.prompts[p.MovieID][prompt] = struct{}{}
	}
	if p.TypeCount > 0 {
		s.typeCounts[p.MovieID] = p.TypeCount
	}
}

// IsDuplicate reports whether p repeats a question already played: same id,
// same prompt for the same movie, or a repeated type once the movie is exhausted.
func (s *Session) IsDuplicate(p Played) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[p.ID]; ok && p.ID != "" {
		return true
	}
	if _, ok := s.prompts[p.MovieID][normalizePrompt(p.Prompt)]; ok {
		return true
	}
	if s.exhaustedLocked(p.MovieID) {
		if _, ok := s.types[p.MovieID][p.Type]; ok {
			return true
		}
	}
	return false
}

// Exhausted reports whether every question type for the movie has been played.
func (s *Session) Exhausted(movieID int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.exhaustedLocked(movieID)
}

func (s *Session) exhaustedLocked(movieID int) bool {
	total, ok := s.typeCounts[movieID]
	if !ok {
		total = DefaultTypeCount
	}
	return len(s.types[movieID]) >= total
}

// PlayedTypes returns the types already shown for the movie in canonical order.
func (s *Session) PlayedTypes(movieID int) []Type {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Type
	for _, t := range AllTypes {
		if _, ok := s.types[movieID][t]; ok {
			out = append(out, t)
		}
	}
	return out
}

func normalizePrompt(p string) string {
	return strings.TrimSpace(p)
}
