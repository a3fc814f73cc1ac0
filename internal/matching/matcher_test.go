package matching

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/jobhelper/jobhelper/internal/jobstore"
	"github.com/jobhelper/jobhelper/internal/profile"
)

// stubEmbedder returns a canned vector per title keyword so each job gets a
// predictable cosine similarity against the unit profile vector [1,0].
type stubEmbedder struct {
	vectors map[string][]float32
	failOn  string
	calls   int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	s.calls++
	if s.failOn != "" && strings.Contains(text, s.failOn) {
		return nil, errors.New("provider unavailable")
	}
	for key, vec := range s.vectors {
		if strings.Contains(text, key) {
			return vec, nil
		}
	}
	return []float32{1, 0}, nil
}

func (s *stubEmbedder) Model() string { return "stub" }

var defaultWeights = Weights{Technical: 0.6, Culture: 0.4}

var defaultThresholds = Thresholds{Technical: 0.65, Culture: 0.50, Overall: 0.60}

func newTestMatcher(t *testing.T, emb *stubEmbedder, prof *profile.Profile) (*Matcher, *jobstore.Store) {
	t.Helper()

	store, err := jobstore.Open(t.TempDir())
	if err != nil {
		t.Fatalf("opening store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	m, err := New(store, emb, prof, []float32{1, 0}, defaultWeights, defaultThresholds, zap.NewNop())
	if err != nil {
		t.Fatalf("building matcher: %v", err)
	}
	return m, store
}

func TestNewRejectsBadWeights(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		weights Weights
	}{
		{name: "sum above one", weights: Weights{Technical: 0.7, Culture: 0.4}},
		{name: "sum below one", weights: Weights{Technical: 0.5, Culture: 0.3}},
		{name: "negative weight", weights: Weights{Technical: -0.1, Culture: 1.1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := New(nil, &stubEmbedder{}, &profile.Profile{}, []float32{1, 0}, tc.weights, defaultThresholds, nil)
			if err == nil {
				t.Fatalf("expected weight validation to fail")
			}
		})
	}
}

func TestNewRequiresProfileEmbedding(t *testing.T) {
	t.Parallel()

	_, err := New(nil, &stubEmbedder{}, &profile.Profile{}, nil, defaultWeights, defaultThresholds, nil)
	if err == nil {
		t.Fatalf("expected an error without a profile embedding")
	}
}

func TestMatchAllGatesMustPassIndependently(t *testing.T) {
	t.Parallel()

	// Cosine 0.7 against [1,0].
	emb := &stubEmbedder{vectors: map[string][]float32{
		"Sales": {0.7, 0.71414286},
	}}
	m, store := newTestMatcher(t, emb, &profile.Profile{})
	ctx := context.Background()

	job := &jobstore.Job{
		Title:       "Sales Manager",
		Company:     "Acme",
		Description: "Expect a high-pressure environment with long hours.",
	}
	if err := store.Add(ctx, job); err != nil {
		t.Fatalf("adding job: %v", err)
	}

	score, err := m.Match(ctx, job)
	if err != nil {
		t.Fatalf("matching: %v", err)
	}

	// Technical clears its floor but culture and overall do not.
	if score.TechnicalScore != 0.7 || score.CultureScore != 0.4 || score.OverallScore != 0.58 {
		t.Fatalf("unexpected scores: %+v", score)
	}
	if score.PassedFilters {
		t.Fatalf("expected passed_filters=false when any gate fails")
	}
}

func TestMatchPassesWhenAllGatesClear(t *testing.T) {
	t.Parallel()

	// Cosine 0.9 against [1,0].
	emb := &stubEmbedder{vectors: map[string][]float32{
		"Engineer": {0.9, 0.43588989},
	}}
	prof := &profile.Profile{
		Preferences: profile.Preferences{SalaryMin: 70000, SalaryMax: 90000},
	}
	m, store := newTestMatcher(t, emb, prof)
	ctx := context.Background()

	job := &jobstore.Job{
		Title:       "Software Engineer",
		Company:     "Acme",
		Remote:      true,
		SalaryMin:   95000,
		Description: "We offer flexible schedules and a strong mission.",
	}
	if err := store.Add(ctx, job); err != nil {
		t.Fatalf("adding job: %v", err)
	}

	score, err := m.Match(ctx, job)
	if err != nil {
		t.Fatalf("matching: %v", err)
	}

	if score.TechnicalScore != 0.9 || score.CultureScore != 0.92 || score.OverallScore != 0.908 {
		t.Fatalf("unexpected scores: %+v", score)
	}
	if !score.PassedFilters {
		t.Fatalf("expected passed_filters=true, got %+v", score)
	}
	if score.TechnicalWeight != 0.6 || score.CultureWeight != 0.4 {
		t.Fatalf("expected the configured weights in the snapshot, got %+v", score)
	}

	// The score must survive a reload and replace any prior snapshot.
	stored, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("reloading job: %v", err)
	}
	if stored.Scores == nil || *stored.Scores != *score {
		t.Fatalf("persisted scores differ: %+v", stored.Scores)
	}
}

func TestMatchRoundsBeforeCombining(t *testing.T) {
	t.Parallel()

	// Cosine 1/sqrt(2) = 0.70710678, rounds to 0.707 before weighting.
	emb := &stubEmbedder{vectors: map[string][]float32{
		"Analyst": {1, 1},
	}}
	m, store := newTestMatcher(t, emb, &profile.Profile{})
	ctx := context.Background()

	job := &jobstore.Job{Title: "Analyst", Company: "Acme", Description: "Quiet workplace."}
	if err := store.Add(ctx, job); err != nil {
		t.Fatalf("adding job: %v", err)
	}

	score, err := m.Match(ctx, job)
	if err != nil {
		t.Fatalf("matching: %v", err)
	}

	if score.TechnicalScore != 0.707 {
		t.Fatalf("expected technical 0.707, got %v", score.TechnicalScore)
	}
	want := round3(score.TechnicalScore*0.6 + score.CultureScore*0.4)
	if score.OverallScore != want {
		t.Fatalf("overall %v does not match rounded blend %v", score.OverallScore, want)
	}
}

func TestMatchClampsNegativeSimilarity(t *testing.T) {
	t.Parallel()

	emb := &stubEmbedder{vectors: map[string][]float32{
		"Opposite": {-1, 0},
	}}
	m, store := newTestMatcher(t, emb, &profile.Profile{})
	ctx := context.Background()

	job := &jobstore.Job{Title: "Opposite Role", Company: "Acme", Description: "Quiet workplace."}
	if err := store.Add(ctx, job); err != nil {
		t.Fatalf("adding job: %v", err)
	}

	score, err := m.Match(ctx, job)
	if err != nil {
		t.Fatalf("matching: %v", err)
	}
	if score.TechnicalScore != 0 {
		t.Fatalf("expected negative cosine to clamp to 0, got %v", score.TechnicalScore)
	}
}

func TestMatchProviderFailureLeavesScoresUntouched(t *testing.T) {
	t.Parallel()

	emb := &stubEmbedder{failOn: "Broken"}
	m, store := newTestMatcher(t, emb, &profile.Profile{})
	ctx := context.Background()

	job := &jobstore.Job{
		Title:       "Broken Role",
		Company:     "Acme",
		Description: "Quiet workplace.",
		Scores:      &jobstore.MatchScore{TechnicalScore: 0.5, CultureScore: 0.5, OverallScore: 0.5},
	}
	if err := store.Add(ctx, job); err != nil {
		t.Fatalf("adding job: %v", err)
	}

	if _, err := m.Match(ctx, job); err == nil {
		t.Fatalf("expected the provider failure to surface")
	}

	stored, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("reloading job: %v", err)
	}
	if stored.Scores == nil || stored.Scores.OverallScore != 0.5 {
		t.Fatalf("expected the prior snapshot to survive, got %+v", stored.Scores)
	}
}

func TestMatchAllRanksDeterministically(t *testing.T) {
	t.Parallel()

	emb := &stubEmbedder{vectors: map[string][]float32{
		"Alpha":   {0.9, 0.43588989},
		"Bravo":   {0.7, 0.71414286},
		"Charlie": {0.7, 0.71414286},
		"Delta":   {0.5, 0.8660254},
	}}
	m, store := newTestMatcher(t, emb, &profile.Profile{})
	ctx := context.Background()
	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	jobs := []*jobstore.Job{
		{ID: "a", Title: "Alpha Role", Company: "X", Description: "Quiet workplace.", AddedAt: base},
		{ID: "b", Title: "Bravo Role", Company: "X", Description: "Quiet workplace.", AddedAt: base.Add(time.Hour)},
		{ID: "c", Title: "Charlie Role", Company: "X", Description: "Quiet workplace.", AddedAt: base.Add(2 * time.Hour)},
		{ID: "d", Title: "Delta Role", Company: "X", Description: "Quiet workplace.", AddedAt: base.Add(3 * time.Hour)},
	}
	for _, job := range jobs {
		if err := store.Add(ctx, job); err != nil {
			t.Fatalf("adding %s: %v", job.ID, err)
		}
	}

	results, err := m.MatchAll(ctx)
	if err != nil {
		t.Fatalf("matching all: %v", err)
	}

	// b and c tie on score; the newer addition ranks first.
	wantOrder := []string{"a", "c", "b", "d"}
	if len(results) != len(wantOrder) {
		t.Fatalf("expected %d results, got %d", len(wantOrder), len(results))
	}
	for i, id := range wantOrder {
		if results[i].Job.ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, results[i].Job.ID)
		}
	}
	for i := 1; i < len(results); i++ {
		if results[i].Score.OverallScore > results[i-1].Score.OverallScore {
			t.Fatalf("results not sorted by overall score at %d", i)
		}
	}
}

func TestMatchAllAbortsOnProviderFailure(t *testing.T) {
	t.Parallel()

	emb := &stubEmbedder{failOn: "Bravo"}
	m, store := newTestMatcher(t, emb, &profile.Profile{})
	ctx := context.Background()

	for _, job := range []*jobstore.Job{
		{ID: "a", Title: "Alpha Role", Company: "X", Description: "Quiet workplace."},
		{ID: "b", Title: "Bravo Role", Company: "X", Description: "Quiet workplace."},
	} {
		if err := store.Add(ctx, job); err != nil {
			t.Fatalf("adding %s: %v", job.ID, err)
		}
	}

	results, err := m.MatchAll(ctx)
	if err == nil {
		t.Fatalf("expected the batch to abort")
	}
	if results != nil {
		t.Fatalf("expected no partial results, got %d", len(results))
	}
}

func TestMatchAllEmptyStore(t *testing.T) {
	t.Parallel()

	m, _ := newTestMatcher(t, &stubEmbedder{}, &profile.Profile{})

	results, err := m.MatchAll(context.Background())
	if err != nil {
		t.Fatalf("matching all: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
