package matching

import (
	"strings"

	"github.com/jobhelper/jobhelper/internal/jobstore"
	"github.com/jobhelper/jobhelper/internal/profile"
)

// Culture fit starts from a neutral baseline and accumulates fixed point
// deltas. The point values and keyword sets are contract, not tuning knobs.
// Every applicable rule fires in one pass, so the result does not depend on
// evaluation order.
const cultureBaseline = 0.5

type cultureRule struct {
	name string
	eval func(job *jobstore.Job, p *profile.Profile) float64
}

var cultureRules = []cultureRule{
	{name: "work_arrangement", eval: workArrangementRule},
	{name: "salary_floor", eval: salaryFloorRule},
	{name: "location", eval: locationRule},
	{name: "culture_priorities", eval: culturePrioritiesRule},
	{name: "red_flags", eval: redFlagsRule},
	{name: "role_bonus", eval: roleBonusRule},
	{name: "industry_bonus", eval: industryBonusRule},
}

var (
	remoteWords = []string{"remote", "work from home", "wfh"}
	onsiteWords = []string{"on-site", "onsite", "in-office", "office required"}

	preferredLocations = []string{"fort wayne", "grand rapids", "remote"}
	preferredRoles     = []string{"wordpress", "frontend", "full-stack", "web developer", "php"}
)

type keywordCategory struct {
	name     string
	keywords []string
}

var cultureCategories = []keywordCategory{
	{name: "people-first", keywords: []string{"work-life balance", "flexible", "supportive", "employee-focused"}},
	{name: "growth", keywords: []string{"learning", "development", "career growth", "professional development"}},
	{name: "mission-driven", keywords: []string{"mission", "impact", "education", "healthcare", "nonprofit"}},
	{name: "collaborative", keywords: []string{"collaborative", "team", "cross-functional", "together"}},
	{name: "autonomy", keywords: []string{"autonomous", "ownership", "trust", "independent"}},
}

var redFlagCategories = []keywordCategory{
	{name: "micromanagement", keywords: []string{"micromanage", "strict oversight", "constant supervision"}},
	{name: "poor_balance", keywords: []string{"fast-paced", "high-pressure", "long hours", "weekends required", "always on"}},
	{name: "toxic", keywords: []string{"aggressive", "competitive environment", "high-stress"}},
}

// cultureScore evaluates the fixed rule set against the job and profile,
// clamping the accumulated score to [0,1].
func (m *Matcher) cultureScore(job *jobstore.Job) float64 {
	return cultureScoreWith(cultureRules, job, m.profile)
}

func cultureScoreWith(rules []cultureRule, job *jobstore.Job, p *profile.Profile) float64 {
	score := cultureBaseline
	for _, rule := range rules {
		score += rule.eval(job, p)
	}
	return clamp01(score)
}

// workArrangementRule awards remote-friendly jobs and penalizes explicit
// onsite requirements. At most one branch fires.
func workArrangementRule(job *jobstore.Job, _ *profile.Profile) float64 {
	desc := strings.ToLower(job.Description)

	if job.Remote || containsAny(desc, remoteWords) {
		return 0.15
	}
	if containsAny(desc, onsiteWords) {
		return -0.10
	}
	return 0
}

// salaryFloorRule applies only when both the profile's preferred minimum
// and the job's minimum are known. More than 10% below target is penalized;
// the band in between is neutral.
func salaryFloorRule(job *jobstore.Job, p *profile.Profile) float64 {
	if p.Preferences.SalaryMin == 0 || job.SalaryMin == 0 {
		return 0
	}

	if job.SalaryMin >= p.Preferences.SalaryMin {
		return 0.15
	}
	if float64(job.SalaryMin) < float64(p.Preferences.SalaryMin)*0.9 {
		return -0.10
	}
	return 0
}

func locationRule(job *jobstore.Job, p *profile.Profile) float64 {
	if p.Preferences.Location == "" || job.Location == "" {
		return 0
	}

	if containsAny(strings.ToLower(job.Location), preferredLocations) {
		return 0.10
	}
	return 0
}

// Five categories at +0.06 each sum to the +0.30 culture-priority band.
func culturePrioritiesRule(job *jobstore.Job, _ *profile.Profile) float64 {
	desc := strings.ToLower(job.Description)

	delta := 0.0
	for _, category := range cultureCategories {
		if containsAny(desc, category.keywords) {
			delta += 0.06
		}
	}
	return delta
}

func redFlagsRule(job *jobstore.Job, _ *profile.Profile) float64 {
	desc := strings.ToLower(job.Description)

	delta := 0.0
	for _, category := range redFlagCategories {
		if containsAny(desc, category.keywords) {
			delta -= 0.10
		}
	}
	return delta
}

func roleBonusRule(job *jobstore.Job, _ *profile.Profile) float64 {
	if containsAny(strings.ToLower(job.Title), preferredRoles) {
		return 0.05
	}
	return 0
}

func industryBonusRule(job *jobstore.Job, p *profile.Profile) float64 {
	if len(p.Preferences.Industries) == 0 {
		return 0
	}

	if containsAny(strings.ToLower(job.Description), p.Preferences.Industries) {
		return 0.05
	}
	return 0
}

func containsAny(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}
