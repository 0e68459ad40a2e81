package filter

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/vijay-prabhu/seobrief/internal/config"
	"github.com/vijay-prabhu/seobrief/internal/database"
	"github.com/vijay-prabhu/seobrief/internal/opportunity"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestLearner_SuggestsLowValuePatterns(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := NewLearner(db)

	pool := []opportunity.Candidate{
		candidate("yoga mat pdf guide"),
		candidate("yoga instructor salary"),
		candidate("yoga instructor jobs"),
		candidate("best yoga mat"),
		candidate("yoga mat pdf"),
	}

	suggested, err := l.LearnFromPool(ctx, pool)
	if err != nil {
		t.Fatalf("LearnFromPool failed: %v", err)
	}
	want := []string{"jobs", "pdf", "salary"}
	if len(suggested) != len(want) {
		t.Fatalf("suggested = %v, want %v", suggested, want)
	}
	for i := range want {
		if suggested[i] != want[i] {
			t.Errorf("suggested[%d] = %q, want %q", i, suggested[i], want[i])
		}
	}

	// A second pass suggests nothing new
	again, err := l.LearnFromPool(ctx, pool)
	if err != nil {
		t.Fatalf("LearnFromPool failed: %v", err)
	}
	if len(again) != 0 {
		t.Errorf("expected no new suggestions, got %v", again)
	}

	// Suggestions are not active until approved
	f := New(config.FilterConfig{})
	if err := l.LoadInto(ctx, f); err != nil {
		t.Fatalf("LoadInto failed: %v", err)
	}
	if got := f.Apply(candidate("yoga mat pdf"), "yoga mat"); !got.Include {
		t.Errorf("suggested exclusion should not filter yet: %s", got.Reason)
	}

	if err := db.ApproveExclusion(ctx, "pdf"); err != nil {
		t.Fatalf("ApproveExclusion failed: %v", err)
	}
	f = New(config.FilterConfig{})
	if err := l.LoadInto(ctx, f); err != nil {
		t.Fatalf("LoadInto failed: %v", err)
	}
	if got := f.Apply(candidate("yoga mat pdf"), "yoga mat"); got.Include {
		t.Error("approved exclusion should filter the candidate")
	}
}

func TestLearner_Feedback(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	l := NewLearner(db)

	if err := l.LearnFromFeedback(ctx, "  Yoga Mat Meme "); err != nil {
		t.Fatalf("LearnFromFeedback failed: %v", err)
	}

	terms, err := db.ActiveExclusionTerms(ctx)
	if err != nil {
		t.Fatalf("ActiveExclusionTerms failed: %v", err)
	}
	if len(terms) != 1 || terms[0] != "yoga mat meme" {
		t.Errorf("terms = %v, want [yoga mat meme]", terms)
	}
}
