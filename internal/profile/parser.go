package profile

import (
	"regexp"
	"strconv"
	"strings"
)

// The profile document is semi-structured markdown. Instead of ad hoc
// regexes over the whole document, each known section is described by a
// start marker and a set of terminator markers; the section body is
// whatever sits between them. A missing marker yields an empty body, which
// keeps the "missing section means empty default" rule in one place.
type section struct {
	name  string
	start string
	ends  []string
}

const (
	secExpertSkills       = "skills_expert"
	secIntermediateSkills = "skills_intermediate"
	secFoundationalSkills = "skills_foundational"
	secGreenFlags         = "green_flags"
	secRedFlags           = "red_flags"
	secAccomplishments    = "accomplishments"
	secResumeAnchors      = "resume_anchors"
)

var grammar = []section{
	{name: secExpertSkills, start: "**Tier 1 - Expert Level:**", ends: []string{"**Tier 2"}},
	{name: secIntermediateSkills, start: "**Tier 2 - Intermediate Level:**", ends: []string{"**Tier 3"}},
	{name: secFoundationalSkills, start: "**Tier 3 - Foundational/Learning:**", ends: []string{"###"}},
	{name: secGreenFlags, start: "### Green Flags (Ideal)", ends: []string{"### Deal-Breakers"}},
	{name: secRedFlags, start: "### Deal-Breakers (Red Flags)", ends: []string{"### Culture Research"}},
	{name: secAccomplishments, start: "**Key Accomplishments:**", ends: []string{"**Why Staying"}},
	{name: secResumeAnchors, start: "### Key Accomplishments to Highlight (Varies by Role)", ends: []string{"---"}},
}

var (
	salaryRangeRe = regexp.MustCompile(`\*\*Salary Range:\*\*\s*\$?([\d,]+)\s*-\s*\$?([\d,]+)`)
	locationRe    = regexp.MustCompile(`\*\*Location:\*\*\s*([^\n]+)`)
	labeledItemRe = regexp.MustCompile(`^\s*-\s*\*\*(.+?):\*\*\s*(.*)$`)
	anchorRoleRe  = regexp.MustCompile(`\*\*For ([^:]+):\*\*`)
)

// Remote preference is detected by known phrasings, not section position.
var remotePhrases = []string{
	"High preference for at least 80% remote",
	"Remote:** High preference",
}

// Industry preferences are keyed off known profile phrasings.
var industryMarkers = []struct {
	marker     string
	industries []string
}{
	{"Mission-driven education/nonprofits", []string{"education", "nonprofit"}},
	{"Healthcare technology", []string{"healthcare"}},
}

// Parse converts the profile document text into a Profile. It is total and
// deterministic: any absent or malformed section produces that section's
// empty default.
func Parse(content string) *Profile {
	bodies := splitSections(content)

	return &Profile{
		FullText: content,
		Skills: Skills{
			Expert:       bullets(bodies[secExpertSkills], false),
			Intermediate: bullets(bodies[secIntermediateSkills], false),
			Foundational: bullets(bodies[secFoundationalSkills], true),
		},
		Preferences:       parsePreferences(content),
		CulturePriorities: labeledItems(bodies[secGreenFlags]),
		RedFlags:          labeledItems(bodies[secRedFlags]),
		Accomplishments:   labeledItems(bodies[secAccomplishments]),
		ResumeAnchors:     parseAnchors(bodies[secResumeAnchors]),
	}
}

func splitSections(content string) map[string]string {
	bodies := make(map[string]string, len(grammar))
	for _, sec := range grammar {
		bodies[sec.name] = sliceSection(content, sec)
	}
	return bodies
}

func sliceSection(content string, sec section) string {
	idx := strings.Index(content, sec.start)
	if idx < 0 {
		return ""
	}

	body := content[idx+len(sec.start):]
	end := len(body)
	for _, terminator := range sec.ends {
		if j := strings.Index(body, terminator); j >= 0 && j < end {
			end = j
		}
	}
	return body[:end]
}

// bullets collects "- item" lines from a section body. Nested bullets
// (indented with two spaces) belong to their parent item and are skipped
// unless includeNested is set.
func bullets(body string, includeNested bool) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, "-") {
			continue
		}
		if !includeNested && strings.HasPrefix(line, "  -") {
			continue
		}
		item := strings.TrimSpace(strings.Trim(trimmed, "- "))
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// labeledItems collects "- **Label:** description" lines as
// "Label: description" strings, preserving document order.
func labeledItems(body string) []string {
	var items []string
	for _, line := range strings.Split(body, "\n") {
		m := labeledItemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label := strings.TrimSpace(m[1])
		desc := strings.TrimSpace(m[2])
		items = append(items, label+": "+desc)
	}
	return items
}

func parsePreferences(content string) Preferences {
	prefs := Preferences{}

	if m := salaryRangeRe.FindStringSubmatch(content); m != nil {
		prefs.SalaryMin = parseAmount(m[1])
		prefs.SalaryMax = parseAmount(m[2])
	}

	for _, phrase := range remotePhrases {
		if strings.Contains(content, phrase) {
			prefs.RemotePreference = "high"
			break
		}
	}

	if m := locationRe.FindStringSubmatch(content); m != nil {
		prefs.Location = strings.TrimSpace(m[1])
	}

	for _, im := range industryMarkers {
		if strings.Contains(content, im.marker) {
			prefs.Industries = append(prefs.Industries, im.industries...)
		}
	}

	return prefs
}

func parseAmount(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil {
		return 0
	}
	return n
}

// parseAnchors splits the role-anchors body into per-role bullet lists.
// Role keys are normalized: "For Frontend-Focused Roles" -> "frontend".
func parseAnchors(body string) map[string][]string {
	anchors := make(map[string][]string)

	matches := anchorRoleRe.FindAllStringSubmatchIndex(body, -1)
	for i, m := range matches {
		role := body[m[2]:m[3]]

		start := m[1]
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}

		key := strings.ToLower(role)
		key = strings.ReplaceAll(key, "-focused", "")
		key = strings.ReplaceAll(key, " roles", "")
		key = strings.TrimSpace(key)

		anchors[key] = bullets(body[start:end], true)
	}

	return anchors
}
