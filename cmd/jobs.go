package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jobhelper/jobhelper/internal/intake"
	openaichat "github.com/jobhelper/jobhelper/internal/intake/openai"
	"github.com/jobhelper/jobhelper/internal/jobstore"
	"github.com/jobhelper/jobhelper/internal/secrets"
	"github.com/jobhelper/jobhelper/internal/utils"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	descriptionPreviewLength = 500
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Manage saved job postings",
}

var jobsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a job posting interactively",
	Run: func(_ *cobra.Command, _ []string) {
		runJobsAdd()
	},
}

var jobsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all saved jobs",
	Run: func(_ *cobra.Command, _ []string) {
		runJobsList()
	},
}

var jobsShowCmd = &cobra.Command{
	Use:   "show <job-id>",
	Short: "Show details for a job",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		runJobsShow(args[0])
	},
}

var jobsDeleteCmd = &cobra.Command{
	Use:   "delete <job-id>",
	Short: "Delete a job posting",
	Args:  cobra.ExactArgs(1),
	Run: func(_ *cobra.Command, args []string) {
		runJobsDelete(args[0])
	},
}

var jobsExtractCmd = &cobra.Command{
	Use:   "extract <file>",
	Short: "Extract a job posting from pasted text using AI",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runJobsExtract(cmd, args[0])
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)

	jobsCmd.AddCommand(jobsAddCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(jobsDeleteCmd)
	jobsCmd.AddCommand(jobsExtractCmd)

	jobsExtractCmd.Flags().String("url", "", "source URL to record with the extracted job")
}

func runJobsAdd() {
	ctx := context.Background()

	zlogger := newLogger()

	config, err := getConfig()
	if err != nil {
		zlogger.Fatal("getting a config", zap.Error(err))
	}

	job, err := promptForJob()
	if err != nil {
		zlogger.Fatal("job creation cancelled", zap.Error(err))
	}

	store, err := jobstore.Open(config.DataDir)
	if err != nil {
		zlogger.Fatal("opening job store", zap.Error(err))
	}
	defer store.Close()

	if err := store.Add(ctx, job); err != nil {
		zlogger.Fatal("saving job", zap.Error(err))
	}

	zlogger.Info("job added",
		zap.String("job_id", job.ID),
		zap.String("title", job.Title),
		zap.String("company", job.Company),
	)

	offerImmediateMatch(ctx, config, job, zlogger)
}

// offerImmediateMatch mirrors the add flow's "match now?" follow-up. It is
// skipped with a hint when the profile embedding has not been created yet.
func offerImmediateMatch(ctx context.Context, config *Config, job *jobstore.Job, zlogger *zap.Logger) {
	confirm := promptui.Select{
		Label: "Match this job against your profile now?",
		Items: []string{PromptYes, PromptNo},
	}

	_, action, err := confirm.Run()
	if err != nil || action != PromptYes {
		return
	}

	matcher, matchStore, err := buildMatcher(ctx, config, zlogger)
	if err != nil {
		if errors.Is(err, errNotInitialized) {
			zlogger.Warn("profile is not initialized, skipping match",
				zap.String("hint", fmt.Sprintf("run '%s init' first", app)),
			)
			return
		}
		zlogger.Fatal("preparing matcher", zap.Error(err))
	}
	defer matchStore.Close()

	score, err := matcher.Match(ctx, job)
	if err != nil {
		zlogger.Fatal("matching job", zap.Error(err))
	}

	fmt.Println("\n=== Match Results ===")
	printScores(score)
}

func promptForJob() (*jobstore.Job, error) {
	required := func(input string) error {
		if strings.TrimSpace(input) == "" {
			return errors.New("value is required")
		}
		return nil
	}

	title, err := (&promptui.Prompt{Label: "Job Title", Validate: required}).Run()
	if err != nil {
		return nil, err
	}

	company, err := (&promptui.Prompt{Label: "Company Name", Validate: required}).Run()
	if err != nil {
		return nil, err
	}

	fmt.Println("\nJob Description (paste the full description, then press Enter twice):")
	description, err := readMultiline(os.Stdin)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(description) == "" {
		return nil, errors.New("description is required")
	}

	url, err := (&promptui.Prompt{Label: "Job URL (optional)"}).Run()
	if err != nil {
		return nil, err
	}

	location, err := (&promptui.Prompt{Label: "Location (optional)"}).Run()
	if err != nil {
		return nil, err
	}

	remotePrompt := promptui.Select{
		Label: "Remote?",
		Items: []string{PromptYes, PromptNo},
	}
	_, remoteChoice, err := remotePrompt.Run()
	if err != nil {
		return nil, err
	}

	salary, err := (&promptui.Prompt{Label: "Salary range, e.g. 70000-90000 (optional)"}).Run()
	if err != nil {
		return nil, err
	}

	salaryMin, salaryMax := parseSalaryRange(salary)

	return &jobstore.Job{
		Title:       strings.TrimSpace(title),
		Company:     strings.TrimSpace(company),
		Description: strings.TrimSpace(description),
		URL:         strings.TrimSpace(url),
		Location:    strings.TrimSpace(location),
		Remote:      remoteChoice == PromptYes,
		SalaryMin:   salaryMin,
		SalaryMax:   salaryMax,
	}, nil
}

// readMultiline collects lines until two consecutive blank lines.
func readMultiline(r *os.File) (string, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var lines []string
	emptyCount := 0
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			emptyCount++
			if emptyCount >= 2 {
				break
			}
			continue
		}
		emptyCount = 0
		lines = append(lines, line)
	}

	if err := scanner.Err(); err != nil {
		return "", err
	}

	return strings.Join(lines, "\n"), nil
}

// parseSalaryRange accepts "70000-90000" or a single number as the minimum.
// Anything unparsable maps to unknown bounds.
func parseSalaryRange(input string) (int, int) {
	input = strings.TrimSpace(input)
	if input == "" {
		return 0, 0
	}

	low, high, found := strings.Cut(input, "-")
	min, err := strconv.Atoi(strings.TrimSpace(low))
	if err != nil || min < 0 {
		return 0, 0
	}
	if !found {
		return min, 0
	}

	max, err := strconv.Atoi(strings.TrimSpace(high))
	if err != nil || max < 0 {
		return min, 0
	}

	return min, max
}

func runJobsList() {
	ctx := context.Background()

	zlogger := newLogger()

	config, err := getConfig()
	if err != nil {
		zlogger.Fatal("getting a config", zap.Error(err))
	}

	store, err := jobstore.Open(config.DataDir)
	if err != nil {
		zlogger.Fatal("opening job store", zap.Error(err))
	}
	defer store.Close()

	jobs, err := store.List(ctx)
	if err != nil {
		zlogger.Fatal("listing jobs", zap.Error(err))
	}

	if len(jobs) == 0 {
		zlogger.Info("no jobs found",
			zap.String("hint", fmt.Sprintf("add a job with '%s jobs add'", app)),
		)
		return
	}

	fmt.Printf("\n=== Saved Jobs (%d) ===\n\n", len(jobs))

	for i, job := range jobs {
		fmt.Printf("%d. %s at %s\n", i+1, job.Title, job.Company)
		fmt.Printf("   ID: %s\n", job.ID)

		if job.Location != "" {
			if job.Remote {
				fmt.Printf("   Location: %s (Remote)\n", job.Location)
			} else {
				fmt.Printf("   Location: %s\n", job.Location)
			}
		}

		if job.Scores != nil {
			status := "FAIL"
			if job.Scores.PassedFilters {
				status = "PASS"
			}
			fmt.Printf("   Score: %s %s\n", percent(job.Scores.OverallScore), status)
		}

		fmt.Println()
	}
}

func runJobsShow(jobID string) {
	ctx := context.Background()

	zlogger := newLogger()

	config, err := getConfig()
	if err != nil {
		zlogger.Fatal("getting a config", zap.Error(err))
	}

	store, err := jobstore.Open(config.DataDir)
	if err != nil {
		zlogger.Fatal("opening job store", zap.Error(err))
	}
	defer store.Close()

	job, err := store.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			zlogger.Fatal("job not found", zap.String("job_id", jobID))
		}
		zlogger.Fatal("loading job", zap.Error(err))
	}

	bar := strings.Repeat("=", 80)

	fmt.Println("\n" + bar)
	fmt.Printf("%s at %s\n", job.Title, job.Company)
	fmt.Println(bar + "\n")

	fmt.Printf("ID: %s\n", job.ID)
	if job.Location != "" {
		fmt.Printf("Location: %s\n", job.Location)
	}
	if job.Remote {
		fmt.Println("Remote: Yes")
	}
	if job.SalaryMin > 0 {
		fmt.Printf("Salary: %s\n", utils.SalaryLine(job.SalaryMin, job.SalaryMax))
	}
	if job.URL != "" {
		fmt.Printf("URL: %s\n", job.URL)
	}

	if job.Scores != nil {
		fmt.Println("\n--- Scores ---")
		fmt.Printf("Technical: %s\n", percent(job.Scores.TechnicalScore))
		fmt.Printf("Culture: %s\n", percent(job.Scores.CultureScore))
		fmt.Printf("Overall: %s\n", percent(job.Scores.OverallScore))

		if job.Scores.PassedFilters {
			fmt.Println("Status: PASSES filters")
		} else {
			fmt.Println("Status: does not meet thresholds")
		}
	}

	fmt.Println("\n--- Description ---")
	if len(job.Description) > descriptionPreviewLength {
		fmt.Println(job.Description[:descriptionPreviewLength])
		fmt.Printf("... (%d more characters)\n", len(job.Description)-descriptionPreviewLength)
	} else {
		fmt.Println(job.Description)
	}

	fmt.Println("\n" + bar)
}

func runJobsDelete(jobID string) {
	ctx := context.Background()

	zlogger := newLogger()

	config, err := getConfig()
	if err != nil {
		zlogger.Fatal("getting a config", zap.Error(err))
	}

	store, err := jobstore.Open(config.DataDir)
	if err != nil {
		zlogger.Fatal("opening job store", zap.Error(err))
	}
	defer store.Close()

	job, err := store.Get(ctx, jobID)
	if err != nil {
		if errors.Is(err, jobstore.ErrNotFound) {
			zlogger.Fatal("job not found", zap.String("job_id", jobID))
		}
		zlogger.Fatal("loading job", zap.Error(err))
	}

	confirm := promptui.Select{
		Label: fmt.Sprintf("Delete '%s at %s'?", job.Title, job.Company),
		Items: []string{PromptNo, PromptYes},
	}

	_, action, err := confirm.Run()
	if err != nil || action != PromptYes {
		zlogger.Info("cancelled")
		return
	}

	if err := store.Delete(ctx, jobID); err != nil {
		zlogger.Fatal("deleting job", zap.Error(err))
	}

	zlogger.Info("job deleted", zap.String("job_id", jobID))
}

func runJobsExtract(cmd *cobra.Command, path string) {
	ctx := context.Background()

	zlogger := newLogger()

	config, err := getConfig()
	if err != nil {
		zlogger.Fatal("getting a config", zap.Error(err))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		zlogger.Fatal("reading posting file", zap.Error(err))
	}

	extractor, err := newExtractor(config, zlogger)
	if err != nil {
		zlogger.Fatal("building extractor", zap.Error(err))
	}

	zlogger.Info("extracting job details", zap.String("file", path))

	job, err := extractor.Extract(ctx, string(data))
	if err != nil {
		zlogger.Fatal("extracting job details", zap.Error(err))
	}

	if url, _ := cmd.Flags().GetString("url"); url != "" {
		job.URL = strings.TrimSpace(url)
	}

	fmt.Println("\nExtracted:")
	fmt.Printf("  Title: %s\n", job.Title)
	fmt.Printf("  Company: %s\n", job.Company)
	if job.Location != "" {
		fmt.Printf("  Location: %s\n", job.Location)
	}
	if job.Remote {
		fmt.Println("  Remote: Yes")
	}
	if job.SalaryMin > 0 {
		fmt.Printf("  Salary: %s\n", utils.SalaryLine(job.SalaryMin, job.SalaryMax))
	}
	fmt.Printf("  Description: %s\n", utils.TruncateForLog(job.Description, 200))

	confirm := promptui.Select{
		Label: "Save this job?",
		Items: []string{PromptYes, PromptNo},
	}

	_, action, err := confirm.Run()
	if err != nil || action != PromptYes {
		zlogger.Info("cancelled")
		return
	}

	store, err := jobstore.Open(config.DataDir)
	if err != nil {
		zlogger.Fatal("opening job store", zap.Error(err))
	}
	defer store.Close()

	if err := store.Add(ctx, job); err != nil {
		zlogger.Fatal("saving job", zap.Error(err))
	}

	zlogger.Info("job added",
		zap.String("job_id", job.ID),
		zap.String("title", job.Title),
		zap.String("company", job.Company),
	)

	offerImmediateMatch(ctx, config, job, zlogger)
}

// newExtractor builds the AI intake extractor. Extraction always uses the
// OpenAI chat API, independent of the embedding provider choice.
func newExtractor(config *Config, zlogger *zap.Logger) (*intake.Extractor, error) {
	ocfg := &OpenAIConfig{}
	if config.Embedding != nil && config.Embedding.OpenAI != nil {
		ocfg = config.Embedding.OpenAI
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "openai api key",
		Value: ocfg.APIKey,
		File:  ocfg.APIKeyFile,
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set embedding.openai.api-key-file or OPENAI_API_KEY)", err)
	}

	model := ""
	if config.Intake != nil {
		model = config.Intake.Model
	}

	generator, err := openaichat.NewGenerator(apiKey, model)
	if err != nil {
		return nil, err
	}

	extractLogger := zlogger.With(
		zap.String("provider", "openai"),
		zap.String("model", generator.Model()),
	)

	return intake.NewExtractor(generator, extractLogger, 0), nil
}
