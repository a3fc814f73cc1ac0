// Package intake turns free-form job posting text into structured job
// records via an LLM.
package intake

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/jobhelper/jobhelper/internal/jobstore"
	"github.com/jobhelper/jobhelper/internal/utils"
)

type contentGenerator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200

	// Posting text beyond this length adds token cost without adding
	// signal, so the tail is dropped before prompting.
	maxSourceLength = 8000
)

// Extractor prompts a model to pull title, company, location, remote flag,
// salary bounds and description out of raw posting text.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
}

func NewExtractor(generator contentGenerator, logger *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Extractor{
		generator: generator,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Extract parses a job posting out of source text. The returned job has no
// ID or timestamp; the store assigns those on insert.
func (e *Extractor) Extract(ctx context.Context, source string) (*jobstore.Job, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.New("posting text is required")
	}

	if len(source) > maxSourceLength {
		source = source[:maxSourceLength]
	}

	prompt := buildPrompt(source)

	e.logger.Debug("job extraction request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", utils.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateContent(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("job extraction response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, e.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(source string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Extract job details as JSON from this posting:\n\n{{POSTING_TEXT}}"
	}
	return strings.ReplaceAll(template, "{{POSTING_TEXT}}", source)
}

func parseResponse(raw string) (*jobstore.Job, error) {
	cleaned := extractJSON(strings.TrimSpace(raw))

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse extraction response: %w", err)
	}

	job := &jobstore.Job{
		Title:       coerceString(data["title"]),
		Company:     coerceString(data["company"]),
		Location:    coerceString(data["location"]),
		Description: coerceString(data["description"]),
		Remote:      coerceBool(data["remote"]),
		SalaryMin:   coerceSalary(data["salary_min"]),
		SalaryMax:   coerceSalary(data["salary_max"]),
	}

	if job.Title == "" || job.Company == "" {
		return nil, errors.New("extraction response is missing title or company")
	}
	if job.Description == "" {
		return nil, errors.New("extraction response is missing the description")
	}

	return job, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceBool(v any) bool {
	switch val := v.(type) {
	case bool:
		return val
	case string:
		lower := strings.ToLower(strings.TrimSpace(val))
		return lower == "true" || lower == "yes"
	case float64:
		return val != 0
	default:
		return false
	}
}

// coerceSalary maps null and unparsable values to 0, the unknown-bound
// marker.
func coerceSalary(v any) int {
	f := coerceFloat(v)
	if math.IsNaN(f) || f < 0 {
		return 0
	}
	return int(f)
}

func coerceFloat(v any) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		trimmed := strings.TrimSpace(val)
		if trimmed == "" {
			return math.NaN()
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return math.NaN()
		}
		return f
	default:
		return math.NaN()
	}
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}
