package profile

import (
	"reflect"
	"strings"
	"testing"
)

const sampleDocument = `# Career Profile

## Technical Skills

**Tier 1 - Expert Level:**
- WordPress development
- PHP
- JavaScript

**Tier 2 - Intermediate Level:**
- React
- Node.js

**Tier 3 - Foundational/Learning:**
- Go
- Kubernetes

### Work Preferences

**Salary Range:** $70,000 - $90,000
**Remote:** High preference for at least 80% remote work
**Location:** Fort Wayne, IN

Preferred sectors: Mission-driven education/nonprofits and Healthcare technology.

## Culture

### Green Flags (Ideal)
- **Work-life balance:** Respect for personal time
- **Growth:** Budget for professional development

### Deal-Breakers (Red Flags)
- **Micromanagement:** Constant supervision of daily work

### Culture Research Notes

## Experience

**Key Accomplishments:**
- **Platform rebuild:** Led a full rebuild serving 50k users
- **Performance:** Cut page load times by 60%
- **Mentoring:** Onboarded four junior developers
- **Accessibility:** Brought the main product to WCAG AA
- **Tooling:** Automated the release pipeline
- **Extra:** Should not appear in the digest

**Why Staying Current Matters:** ongoing learning.

### Key Accomplishments to Highlight (Varies by Role)

**For Frontend-Focused Roles:**
- Component library adopted across three teams
- Lighthouse scores above 95

**For Full-Stack Roles:**
- End-to-end feature ownership

---
`

func TestParseFullDocument(t *testing.T) {
	t.Parallel()

	p := Parse(sampleDocument)

	wantExpert := []string{"WordPress development", "PHP", "JavaScript"}
	if !reflect.DeepEqual(p.Skills.Expert, wantExpert) {
		t.Fatalf("expert skills: expected %v, got %v", wantExpert, p.Skills.Expert)
	}

	wantIntermediate := []string{"React", "Node.js"}
	if !reflect.DeepEqual(p.Skills.Intermediate, wantIntermediate) {
		t.Fatalf("intermediate skills: expected %v, got %v", wantIntermediate, p.Skills.Intermediate)
	}

	wantFoundational := []string{"Go", "Kubernetes"}
	if !reflect.DeepEqual(p.Skills.Foundational, wantFoundational) {
		t.Fatalf("foundational skills: expected %v, got %v", wantFoundational, p.Skills.Foundational)
	}

	if p.Preferences.SalaryMin != 70000 || p.Preferences.SalaryMax != 90000 {
		t.Fatalf("unexpected salary bounds: %d-%d", p.Preferences.SalaryMin, p.Preferences.SalaryMax)
	}
	if p.Preferences.RemotePreference != "high" {
		t.Fatalf("expected high remote preference, got %q", p.Preferences.RemotePreference)
	}
	if p.Preferences.Location != "Fort Wayne, IN" {
		t.Fatalf("unexpected location: %q", p.Preferences.Location)
	}

	wantIndustries := []string{"education", "nonprofit", "healthcare"}
	if !reflect.DeepEqual(p.Preferences.Industries, wantIndustries) {
		t.Fatalf("industries: expected %v, got %v", wantIndustries, p.Preferences.Industries)
	}

	if len(p.CulturePriorities) != 2 {
		t.Fatalf("expected 2 culture priorities, got %d", len(p.CulturePriorities))
	}
	if p.CulturePriorities[0] != "Work-life balance: Respect for personal time" {
		t.Fatalf("unexpected first culture priority: %q", p.CulturePriorities[0])
	}

	if len(p.RedFlags) != 1 {
		t.Fatalf("expected 1 red flag, got %d", len(p.RedFlags))
	}

	if len(p.Accomplishments) != 6 {
		t.Fatalf("expected 6 accomplishments, got %d", len(p.Accomplishments))
	}

	frontend, ok := p.ResumeAnchors["frontend"]
	if !ok {
		t.Fatalf("expected frontend anchors, got keys %v", anchorKeys(p))
	}
	if len(frontend) != 2 {
		t.Fatalf("expected 2 frontend anchors, got %v", frontend)
	}
	if fullstack := p.ResumeAnchors["full-stack"]; len(fullstack) != 1 {
		t.Fatalf("expected 1 full-stack anchor, got %v", fullstack)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	t.Parallel()

	first := Parse(sampleDocument)
	second := Parse(sampleDocument)

	if !reflect.DeepEqual(first, second) {
		t.Fatalf("parsing the same document twice produced different profiles")
	}
}

func TestParseMissingSectionsYieldEmptyDefaults(t *testing.T) {
	t.Parallel()

	p := Parse("just some unstructured text without any markers")

	if len(p.CulturePriorities) != 0 {
		t.Fatalf("expected no culture priorities, got %v", p.CulturePriorities)
	}
	if len(p.RedFlags) != 0 {
		t.Fatalf("expected no red flags, got %v", p.RedFlags)
	}
	if len(p.Skills.Expert) != 0 || len(p.Skills.Intermediate) != 0 || len(p.Skills.Foundational) != 0 {
		t.Fatalf("expected empty skills, got %+v", p.Skills)
	}
	if len(p.Accomplishments) != 0 {
		t.Fatalf("expected no accomplishments, got %v", p.Accomplishments)
	}
	if len(p.ResumeAnchors) != 0 {
		t.Fatalf("expected no anchors, got %v", p.ResumeAnchors)
	}
	if p.Preferences.SalaryMin != 0 || p.Preferences.Location != "" {
		t.Fatalf("expected empty preferences, got %+v", p.Preferences)
	}
}

func TestParseUnterminatedSectionRunsToEnd(t *testing.T) {
	t.Parallel()

	doc := "### Green Flags (Ideal)\n- **Trust:** Autonomy by default\n"
	p := Parse(doc)

	if len(p.CulturePriorities) != 1 || p.CulturePriorities[0] != "Trust: Autonomy by default" {
		t.Fatalf("unexpected culture priorities: %v", p.CulturePriorities)
	}
}

func TestEmbeddingTextOrdering(t *testing.T) {
	t.Parallel()

	p := Parse(sampleDocument)
	text := p.EmbeddingText()

	markers := []string{
		"TECHNICAL EXPERTISE:",
		"Expert: WordPress development, PHP, JavaScript",
		"Intermediate: React, Node.js",
		"KEY ACCOMPLISHMENTS:",
		"Salary range: $70,000 - $90,000",
		"Strong preference for remote work",
		"Location: Fort Wayne, IN",
		"Preferred industries: education, nonprofit, healthcare",
		"CULTURE PRIORITIES:",
	}

	last := -1
	for _, marker := range markers {
		idx := strings.Index(text, marker)
		if idx < 0 {
			t.Fatalf("embedding text missing %q:\n%s", marker, text)
		}
		if idx < last {
			t.Fatalf("embedding text has %q out of order:\n%s", marker, text)
		}
		last = idx
	}

	if strings.Contains(text, "Extra: Should not appear in the digest") {
		t.Fatalf("embedding text should carry only the top %d accomplishments", topAccomplishments)
	}
	if !strings.Contains(text, "Tooling: Automated the release pipeline") {
		t.Fatalf("embedding text missing the fifth accomplishment")
	}
	if strings.Count(text, "Work-life balance") != 1 {
		t.Fatalf("expected culture priority once in digest")
	}
}
func anchorKeys(p *Profile) []string {
	keys := make([]string, 0, len(p.ResumeAnchors))
	for k := range p.ResumeAnchors {
		keys = append(keys, k)
	}
	return keys
}
