package intake

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
)

type stubGenerator struct {
	response   string
	err        error
	lastPrompt string
}

func (s *stubGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	s.lastPrompt = prompt
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestExtractParsesFullResponse(t *testing.T) {
	stub := &stubGenerator{response: `{
		"title": "WordPress Developer",
		"company": "Acme",
		"location": "Remote",
		"remote": true,
		"salary_min": 70000,
		"salary_max": 90000,
		"description": "Build and maintain client sites."
	}`}
	extractor := NewExtractor(stub, zap.NewNop(), 0)

	job, err := extractor.Extract(context.Background(), "WordPress Developer at Acme. Remote. $70k-$90k.")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if job.Title != "WordPress Developer" || job.Company != "Acme" {
		t.Fatalf("unexpected identity fields: %+v", job)
	}
	if job.Location != "Remote" || !job.Remote {
		t.Fatalf("unexpected location fields: %+v", job)
	}
	if job.SalaryMin != 70000 || job.SalaryMax != 90000 {
		t.Fatalf("unexpected salary fields: %+v", job)
	}
	if job.Description == "" {
		t.Fatalf("expected a description")
	}
	if job.ID != "" || !job.AddedAt.IsZero() {
		t.Fatalf("expected id and timestamp to stay unset: %+v", job)
	}

	if !strings.Contains(stub.lastPrompt, "WordPress Developer at Acme") {
		t.Fatalf("expected the posting text in the prompt")
	}
	if !strings.Contains(stub.lastPrompt, "Return ONLY valid JSON") {
		t.Fatalf("expected the parser instructions in the prompt")
	}
}

func TestExtractHandlesCodeBlockAndStringNumbers(t *testing.T) {
	stub := &stubGenerator{response: "```json\n" + `{
		"title": "Frontend Developer",
		"company": "Acme",
		"remote": "yes",
		"salary_min": "80000",
		"salary_max": null,
		"description": "Ship accessible interfaces."
	}` + "\n```"}
	extractor := NewExtractor(stub, zap.NewNop(), 0)

	job, err := extractor.Extract(context.Background(), "posting text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !job.Remote {
		t.Fatalf("expected remote to coerce from string")
	}
	if job.SalaryMin != 80000 {
		t.Fatalf("expected salary_min 80000, got %d", job.SalaryMin)
	}
	if job.SalaryMax != 0 {
		t.Fatalf("expected null salary_max to map to 0, got %d", job.SalaryMax)
	}
}

func TestExtractRejectsIncompleteResponse(t *testing.T) {
	cases := []struct {
		name     string
		response string
	}{
		{name: "missing title", response: `{"company": "Acme", "description": "d"}`},
		{name: "missing company", response: `{"title": "Dev", "description": "d"}`},
		{name: "missing description", response: `{"title": "Dev", "company": "Acme"}`},
		{name: "not json", response: "Sorry, I could not parse that posting."},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			extractor := NewExtractor(&stubGenerator{response: tc.response}, zap.NewNop(), 0)
			if _, err := extractor.Extract(context.Background(), "posting text"); err == nil {
				t.Fatalf("expected an error")
			}
		})
	}
}

func TestExtractPropagatesGeneratorError(t *testing.T) {
	wantErr := errors.New("provider unavailable")
	extractor := NewExtractor(&stubGenerator{err: wantErr}, zap.NewNop(), 0)

	if _, err := extractor.Extract(context.Background(), "posting text"); !errors.Is(err, wantErr) {
		t.Fatalf("expected the generator error, got %v", err)
	}
}

func TestExtractRequiresPostingText(t *testing.T) {
	extractor := NewExtractor(&stubGenerator{}, zap.NewNop(), 0)

	if _, err := extractor.Extract(context.Background(), "   \n"); err == nil {
		t.Fatalf("expected an error for empty input")
	}
}

func TestExtractTruncatesLongPostings(t *testing.T) {
	stub := &stubGenerator{response: `{"title": "Dev", "company": "Acme", "description": "d"}`}
	extractor := NewExtractor(stub, zap.NewNop(), 0)

	long := strings.Repeat("a", maxSourceLength+500)
	if _, err := extractor.Extract(context.Background(), long); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if strings.Contains(stub.lastPrompt, strings.Repeat("a", maxSourceLength+1)) {
		t.Fatalf("expected the posting to be truncated before prompting")
	}
}
