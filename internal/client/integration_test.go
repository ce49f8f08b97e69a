//go:build integration
// +build integration

package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"testing"
	"time"

	"github.com/gokatarajesh/movie-trivia/internal/catalog"
)

func envOrDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func TestIntegrationHealthz(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	resp, err := http.Get(fmt.Sprintf("%s/healthz", baseURL))
	if err != nil {
		t.Fatalf("health check request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status code: %d", resp.StatusCode)
	}
}

func TestIntegrationDailyIsStableAcrossLanguages(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	en, err := New(Options{BaseURL: baseURL, Lang: catalog.English}).Daily(ctx)
	if err != nil {
		t.Fatalf("daily (en) failed: %v", err)
	}
	fr, err := New(Options{BaseURL: baseURL, Lang: catalog.French}).Daily(ctx)
	if err != nil {
		t.Fatalf("daily (fr) failed: %v", err)
	}

	if en.ID != fr.ID || en.MovieID != fr.MovieID || en.QuestionType != fr.QuestionType {
		t.Fatalf("daily challenge differs across languages: en=%s/%d/%s fr=%s/%d/%s",
			en.ID, en.MovieID, en.QuestionType, fr.ID, fr.MovieID, fr.QuestionType)
	}
	if len(fr.Options) != 4 {
		t.Fatalf("expected 4 options, got %d", len(fr.Options))
	}
}

func TestIntegrationExtrasUntilExhausted(t *testing.T) {
	baseURL := envOrDefault("INTEGRATION_BASE_URL", "http://localhost:8080")
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	c := New(Options{BaseURL: baseURL, Lang: catalog.Portuguese})
	daily, err := c.Daily(ctx)
	if err != nil {
		t.Fatalf("daily failed: %v", err)
	}

	seen := map[string]bool{string(daily.QuestionType): true}
	for i := 0; i < 10; i++ {
		q, err := c.Extra(ctx, daily.MovieID)
		if errors.Is(err, ErrNoMoreQuestions) {
			break
		}
		if err != nil {
			t.Fatalf("extra question failed: %v", err)
		}
		if seen[string(q.QuestionType)] {
			t.Fatalf("question type %s served twice before exhaustion", q.QuestionType)
		}
		seen[string(q.QuestionType)] = true
	}

	if !c.Session().Exhausted(daily.MovieID) {
		t.Fatalf("movie %d not exhausted after playing %d types", daily.MovieID, len(seen))
	}
}
