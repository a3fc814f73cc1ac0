// Package matching combines semantic similarity and culture-fit heuristics
// into one weighted score per job.
package matching

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"go.uber.org/zap"

	"github.com/jobhelper/jobhelper/internal/embedding"
	"github.com/jobhelper/jobhelper/internal/jobstore"
	"github.com/jobhelper/jobhelper/internal/profile"
)

const weightSumTolerance = 0.01

// Weights configures the technical/culture blend. The two weights must lie
// in [0,1] and sum to 1 within a small tolerance; violations are a startup
// failure, never a per-call one.
type Weights struct {
	Technical float64
	Culture   float64
}

// Validate checks the weight invariants.
func (w Weights) Validate() error {
	if w.Technical < 0 || w.Technical > 1 || w.Culture < 0 || w.Culture > 1 {
		return fmt.Errorf("weights must be between 0 and 1 (got technical=%v culture=%v)", w.Technical, w.Culture)
	}
	if sum := w.Technical + w.Culture; math.Abs(sum-1.0) > weightSumTolerance {
		return fmt.Errorf("weights must sum to 1.0 (got %v)", sum)
	}
	return nil
}

// Thresholds are the three independent minimum-score gates behind
// passed_filters.
type Thresholds struct {
	Technical float64
	Culture   float64
	Overall   float64
}

// Matcher scores jobs against a single candidate profile and persists the
// results. It is synchronous; the embedding provider call is the only
// externally latent operation.
type Matcher struct {
	store      *jobstore.Store
	embedder   embedding.Embedder
	profile    *profile.Profile
	profileVec []float32
	weights    Weights
	thresholds Thresholds
	logger     *zap.Logger
}

// Result pairs a job with its freshly computed score.
type Result struct {
	Job   *jobstore.Job
	Score *jobstore.MatchScore
}

// New builds a Matcher. Weight misconfiguration fails here, at startup.
func New(store *jobstore.Store, embedder embedding.Embedder, prof *profile.Profile, profileVec []float32, weights Weights, thresholds Thresholds, logger *zap.Logger) (*Matcher, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	if prof == nil {
		return nil, errors.New("profile is required")
	}
	if len(profileVec) == 0 {
		return nil, errors.New("profile embedding is required; run init first")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Matcher{
		store:      store,
		embedder:   embedder,
		profile:    prof,
		profileVec: profileVec,
		weights:    weights,
		thresholds: thresholds,
		logger:     logger,
	}, nil
}

// Match scores a single job and persists the result, replacing any prior
// score wholesale. A provider failure leaves the stored score untouched.
func (m *Matcher) Match(ctx context.Context, job *jobstore.Job) (*jobstore.MatchScore, error) {
	technical, err := m.technicalScore(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("technical score for job %s: %w", job.ID, err)
	}

	culture := m.cultureScore(job)

	technical = round3(technical)
	culture = round3(culture)
	overall := round3(technical*m.weights.Technical + culture*m.weights.Culture)

	score := &jobstore.MatchScore{
		TechnicalScore: technical,
		CultureScore:   culture,
		OverallScore:   overall,
		PassedFilters: technical >= m.thresholds.Technical &&
			culture >= m.thresholds.Culture &&
			overall >= m.thresholds.Overall,
		TechnicalWeight: m.weights.Technical,
		CultureWeight:   m.weights.Culture,
	}

	if err := m.store.UpdateScores(ctx, job.ID, score); err != nil {
		return nil, fmt.Errorf("persisting scores for job %s: %w", job.ID, err)
	}

	job.Scores = score

	m.logger.Debug("matched job",
		zap.String("job_id", job.ID),
		zap.Float64("technical", score.TechnicalScore),
		zap.Float64("culture", score.CultureScore),
		zap.Float64("overall", score.OverallScore),
		zap.Bool("passed_filters", score.PassedFilters),
	)

	return score, nil
}

// MatchAll rescores every stored job and returns the results ranked by
// overall score, highest first. Ties order by newest added_at, then id, so
// rankings are deterministic. The first provider failure aborts the batch:
// a ranked list mixing scored and unscored jobs would be misleading.
func (m *Matcher) MatchAll(ctx context.Context) ([]Result, error) {
	jobs, err := m.store.List(ctx)
	if err != nil {
		return nil, err
	}

	if len(jobs) == 0 {
		m.logger.Info("no jobs found to match")
		return nil, nil
	}

	m.logger.Info("matching jobs against profile", zap.Int("count", len(jobs)))

	results := make([]Result, 0, len(jobs))
	for _, job := range jobs {
		score, err := m.Match(ctx, job)
		if err != nil {
			return nil, err
		}
		results = append(results, Result{Job: job, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if a.Score.OverallScore != b.Score.OverallScore {
			return a.Score.OverallScore > b.Score.OverallScore
		}
		if !a.Job.AddedAt.Equal(b.Job.AddedAt) {
			return a.Job.AddedAt.After(b.Job.AddedAt)
		}
		return a.Job.ID < b.Job.ID
	})

	return results, nil
}

func round3(x float64) float64 {
	return math.Round(x*1000) / 1000
}

func clamp01(x float64) float64 {
	return math.Max(0, math.Min(1, x))
}
