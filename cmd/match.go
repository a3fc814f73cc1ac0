package cmd

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobhelper/jobhelper/internal/embedding"
	"github.com/jobhelper/jobhelper/internal/jobstore"
	"github.com/jobhelper/jobhelper/internal/matching"
	"github.com/jobhelper/jobhelper/internal/profile"
	"github.com/jobhelper/jobhelper/internal/utils"
)

var errNotInitialized = errors.New("profile is not initialized")

var matchCmd = &cobra.Command{
	Use:   "match [job-id]",
	Short: "Match stored jobs against your profile",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runMatch(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().Bool("all", false, "show all jobs, not just those passing the thresholds")
}

func runMatch(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	zlogger := newLogger()

	config, err := getConfig()
	if err != nil {
		zlogger.Fatal("getting a config", zap.Error(err))
	}

	matcher, store, err := buildMatcher(ctx, config, zlogger)
	if err != nil {
		if errors.Is(err, errNotInitialized) {
			zlogger.Fatal("profile is not initialized",
				zap.String("hint", fmt.Sprintf("run '%s init' first", app)),
			)
		}
		zlogger.Fatal("preparing matcher", zap.Error(err))
	}
	defer store.Close()

	if len(args) == 1 {
		matchSingle(ctx, matcher, store, args[0], zlogger)
		return
	}

	results, err := matcher.MatchAll(ctx)
	if err != nil {
		zlogger.Fatal("matching jobs", zap.Error(err))
	}

	if len(results) == 0 {
		zlogger.Info("no jobs to match",
			zap.String("hint", fmt.Sprintf("add a job with '%s jobs add'", app)),
		)
		return
	}

	showAll, _ := cmd.Flags().GetBool("all")
	printMatchReport(results, showAll, config.Matching)
}

func matchSingle(ctx context.Context, matcher *matching.Matcher, store *jobstore.Store, jobID string, zlogger *zap.Logger) {
	job, err := store.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			zlogger.Fatal("job not found", zap.String("job_id", jobID))
		}
		zlogger.Fatal("loading job", zap.Error(err))
	}

	score, err := matcher.Match(ctx, job)
	if err != nil {
		zlogger.Fatal("matching job", zap.Error(err))
	}

	fmt.Printf("\n=== Match Results: %s at %s ===\n", job.Title, job.Company)
	printScores(score)
}

// buildMatcher wires the profile, its cached embedding, the provider and the
// store into a ready matcher. A missing embedding cache is reported as
// errNotInitialized so callers can print the init hint.
func buildMatcher(ctx context.Context, config *Config, zlogger *zap.Logger) (*matching.Matcher, *jobstore.Store, error) {
	prof, err := profile.Load(config.ProfilePath)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := newEmbedder(ctx, config, zlogger)
	if err != nil {
		return nil, nil, err
	}

	cache := embedding.NewCache(config.embeddingCachePath(), embedder, zlogger)
	if !cache.Exists() {
		return nil, nil, errNotInitialized
	}

	vec, err := cache.GetOrCreate(ctx, prof.EmbeddingText(), false)
	if err != nil {
		return nil, nil, err
	}

	store, err := jobstore.Open(config.DataDir)
	if err != nil {
		return nil, nil, err
	}

	weights := matching.Weights{
		Technical: config.Matching.TechnicalWeight,
		Culture:   config.Matching.CultureWeight,
	}
	thresholds := matching.Thresholds{
		Technical: config.Matching.MinTechnicalScore,
		Culture:   config.Matching.MinCultureScore,
		Overall:   config.Matching.MinOverallScore,
	}

	matcher, err := matching.New(store, embedder, prof, vec, weights, thresholds, zlogger)
	if err != nil {
		store.Close()
		return nil, nil, err
	}

	return matcher, store, nil
}

func printMatchReport(results []matching.Result, showAll bool, thresholds *MatchingConfig) {
	bar := strings.Repeat("=", 80)

	fmt.Println("\n" + bar)
	fmt.Println("JOB MATCHING RESULTS")
	fmt.Println(bar + "\n")

	shown := results
	if !showAll {
		shown = shown[:0:0]
		for _, r := range results {
			if r.Score.PassedFilters {
				shown = append(shown, r)
			}
		}
		fmt.Printf("Showing %d jobs that pass minimum thresholds\n\n", len(shown))
	} else {
		fmt.Printf("Showing all %d jobs\n\n", len(shown))
	}

	if len(shown) == 0 {
		fmt.Println("No jobs meet the minimum score thresholds.")
		fmt.Printf("  - Technical: %v\n", thresholds.MinTechnicalScore)
		fmt.Printf("  - Culture: %v\n", thresholds.MinCultureScore)
		fmt.Printf("  - Overall: %v\n", thresholds.MinOverallScore)
		fmt.Println("\nTry lowering thresholds or add more jobs.")
		return
	}

	for i, r := range shown {
		status := "FAIL"
		if r.Score.PassedFilters {
			status = "PASS"
		}

		fmt.Printf("%d. %s at %s\n", i+1, r.Job.Title, r.Job.Company)
		fmt.Printf("   ID: %s\n", r.Job.ID)
		fmt.Printf("   Overall: %s %s\n", percent(r.Score.OverallScore), status)
		fmt.Printf("   Technical: %s | Culture: %s\n", percent(r.Score.TechnicalScore), percent(r.Score.CultureScore))

		if r.Job.Location != "" {
			if r.Job.Remote {
				fmt.Printf("   Location: %s (Remote)\n", r.Job.Location)
			} else {
				fmt.Printf("   Location: %s\n", r.Job.Location)
			}
		}
		if r.Job.SalaryMin > 0 {
			fmt.Printf("   Salary: %s\n", utils.SalaryLine(r.Job.SalaryMin, r.Job.SalaryMax))
		}
		if r.Job.URL != "" {
			fmt.Printf("   URL: %s\n", r.Job.URL)
		}

		fmt.Println()
	}

	fmt.Println(bar)
}

func printScores(score *jobstore.MatchScore) {
	fmt.Printf("Technical Score: %s\n", percent(score.TechnicalScore))
	fmt.Printf("Culture Score: %s\n", percent(score.CultureScore))
	fmt.Printf("Overall Score: %s\n", percent(score.OverallScore))

	if score.PassedFilters {
		fmt.Println("This job PASSES your filter thresholds.")
	} else {
		fmt.Println("This job does not meet minimum thresholds.")
	}
}

func percent(score float64) string {
	return fmt.Sprintf("%.1f%%", score*100)
}
