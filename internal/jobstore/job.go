// Package jobstore holds the job posting records and their durable
// SQLite-backed storage.
package jobstore

import (
	"strings"
	"time"

	"github.com/jobhelper/jobhelper/internal/utils"
)

// Job represents a stored job posting. SalaryMin/SalaryMax of zero mean the
// bound is unknown. Scores is nil until the job has been matched; when set
// it always reflects the weights active at computation time.
type Job struct {
	ID          string      `json:"job_id"`
	Title       string      `json:"title"`
	Company     string      `json:"company"`
	Description string      `json:"description"`
	URL         string      `json:"url,omitempty"`
	Location    string      `json:"location,omitempty"`
	SalaryMin   int         `json:"salary_min,omitempty"`
	SalaryMax   int         `json:"salary_max,omitempty"`
	Remote      bool        `json:"remote"`
	AddedAt     time.Time   `json:"added_date"`
	Scores      *MatchScore `json:"scores,omitempty"`
}

// MatchScore is the persisted outcome of matching a job against the
// profile. All scores are in [0,1] and rounded to 3 decimals. The weight
// snapshot records the configuration the overall score was computed with.
type MatchScore struct {
	TechnicalScore  float64 `json:"technical_score"`
	CultureScore    float64 `json:"culture_score"`
	OverallScore    float64 `json:"overall_score"`
	PassedFilters   bool    `json:"passed_filters"`
	TechnicalWeight float64 `json:"technical_weight"`
	CultureWeight   float64 `json:"culture_weight"`
}

// EmbeddingText builds the textual form of the job used for the technical
// score. Field order mirrors the profile digest so like fields compare to
// like fields.
func (j *Job) EmbeddingText() string {
	parts := []string{
		"Job Title: " + j.Title,
		"Company: " + j.Company,
	}

	if j.Location != "" {
		parts = append(parts, "Location: "+j.Location)
	}

	if j.Remote {
		parts = append(parts, "Remote: Yes")
	}

	if j.SalaryMin > 0 {
		parts = append(parts, "Salary: "+utils.SalaryLine(j.SalaryMin, j.SalaryMax))
	}

	parts = append(parts, "\nJob Description:\n"+j.Description)

	return strings.Join(parts, "\n")
}
