package profile

import (
	"fmt"
	"os"
	"strings"

	"github.com/jobhelper/jobhelper/internal/utils"
)

// Profile is the structured form of the candidate's profile document.
// Every field degrades to its empty value when the corresponding document
// section is missing; parsing never fails on malformed input.
type Profile struct {
	FullText          string
	Skills            Skills
	Preferences       Preferences
	CulturePriorities []string
	RedFlags          []string
	Accomplishments   []string
	ResumeAnchors     map[string][]string
}

// Skills groups skill labels by proficiency tier.
type Skills struct {
	Expert       []string
	Intermediate []string
	Foundational []string
}

// Preferences holds work arrangement and compensation preferences.
// Zero salary values mean the bound is unknown.
type Preferences struct {
	SalaryMin        int
	SalaryMax        int
	RemotePreference string
	Location         string
	Industries       []string
}

const (
	// Number of accomplishments carried into the embedding digest.
	topAccomplishments = 5
	// Number of culture priorities carried into the embedding digest.
	topCulturePriorities = 3
)

// Load reads the profile document from path and parses it. A missing
// document is a fatal precondition for scoring, so the read error is
// returned as-is for the caller to surface.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile document: %w", err)
	}
	return Parse(string(data)), nil
}

// EmbeddingText builds the compact digest that the profile embedding is
// computed from. Ordering is deliberate: the embedding model weighs leading
// content most heavily, so expert skills come first and culture priorities
// last.
func (p *Profile) EmbeddingText() string {
	parts := []string{"TECHNICAL EXPERTISE:"}
	parts = append(parts, "Expert: "+strings.Join(p.Skills.Expert, ", "))
	parts = append(parts, "Intermediate: "+strings.Join(p.Skills.Intermediate, ", "))

	parts = append(parts, "\nKEY ACCOMPLISHMENTS:")
	parts = append(parts, topN(p.Accomplishments, topAccomplishments)...)

	parts = append(parts, "\nWORK PREFERENCES:")
	if p.Preferences.SalaryMin > 0 {
		parts = append(parts, fmt.Sprintf("Salary range: %s", utils.SalaryLine(p.Preferences.SalaryMin, p.Preferences.SalaryMax)))
	}
	if p.Preferences.RemotePreference != "" {
		parts = append(parts, "Strong preference for remote work")
	}
	if p.Preferences.Location != "" {
		parts = append(parts, "Location: "+p.Preferences.Location)
	}
	if len(p.Preferences.Industries) > 0 {
		parts = append(parts, "Preferred industries: "+strings.Join(p.Preferences.Industries, ", "))
	}

	parts = append(parts, "\nCULTURE PRIORITIES:")
	parts = append(parts, topN(p.CulturePriorities, topCulturePriorities)...)

	return strings.Join(parts, "\n")
}

// Summary returns a human-readable overview of the parsed profile.
func (p *Profile) Summary() string {
	lines := []string{"=== PROFILE SUMMARY ===", ""}

	lines = append(lines, "Technical Skills:")
	lines = append(lines, fmt.Sprintf("  Expert: %d skills", len(p.Skills.Expert)))
	lines = append(lines, fmt.Sprintf("  Intermediate: %d skills", len(p.Skills.Intermediate)))
	lines = append(lines, fmt.Sprintf("  Foundational: %d skills", len(p.Skills.Foundational)))

	lines = append(lines, "", "Work Preferences:")
	if p.Preferences.SalaryMin > 0 {
		lines = append(lines, "  Salary: "+utils.SalaryLine(p.Preferences.SalaryMin, p.Preferences.SalaryMax))
	}
	if p.Preferences.RemotePreference != "" {
		lines = append(lines, "  Remote: "+p.Preferences.RemotePreference)
	}
	if p.Preferences.Location != "" {
		lines = append(lines, "  Location: "+p.Preferences.Location)
	}

	lines = append(lines, "")
	lines = append(lines, fmt.Sprintf("Culture Priorities: %d items", len(p.CulturePriorities)))
	lines = append(lines, fmt.Sprintf("Red Flags: %d items", len(p.RedFlags)))
	lines = append(lines, fmt.Sprintf("Key Accomplishments: %d items", len(p.Accomplishments)))

	return strings.Join(lines, "\n")
}

func topN(items []string, n int) []string {
	if len(items) > n {
		return items[:n]
	}
	return items
}
