// internal/engine/extract/extractor.go
package extract

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

// Field names used in per-field confidence sets.
const (
	FieldSource     = "source"
	FieldSkills     = "skills"
	FieldExperience = "experience"
	FieldSeniority  = "seniority"
	FieldEducation  = "education"
	FieldIndustries = "industries"
	FieldRecency    = "recency"
)

var (
	yearsPattern      = regexp.MustCompile(`(\d{1,2})\s*\+?\s*years?`)
	yearsRangePattern = regexp.MustCompile(`(\d{1,2})\s*(?:-|–|to)\s*(\d{1,2})\s*\+?\s*years?`)
	minYearsPattern   = regexp.MustCompile(`(?:at least|minimum(?: of)?|min\.?)\s*(\d{1,2})\s*\+?\s*years?`)
	endYearPattern    = regexp.MustCompile(`(?:jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)?[a-z]*\.?\s*(20\d{2})`)
	tokenPattern      = regexp.MustCompile(`[a-z0-9][a-z0-9+#./-]*`)
)

// Extractor turns free text into structured candidate and job attributes.
// It is an external-data-quality boundary: it never returns an error,
// unrecognized or missing fields get documented defaults with confidence
// marked low, and a context deadline yields the best-effort partial
// result extracted so far.
type Extractor struct {
	timeout time.Duration
	logger  logger.Logger
}

func New(timeout time.Duration, log logger.Logger) *Extractor {
	return &Extractor{
		timeout: timeout,
		logger:  log.WithFields(map[string]interface{}{"component": "extractor"}),
	}
}

// CandidateProfile extracts structured attributes from résumé plus cover
// letter text.
func (e *Extractor) CandidateProfile(ctx context.Context, candidateID, resumeText, coverLetter string) *models.CandidateProfile {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	profile := &models.CandidateProfile{
		CandidateID: candidateID,
		Skills:      []string{},
		Industries:  []string{},
		Seniority:   models.SeniorityJunior,
		Education:   models.EducationNone,
		Confidence:  models.ConfidenceSet{},
	}

	combined := strings.ToLower(strings.TrimSpace(resumeText + "\n" + coverLetter))
	profile.ResumeText = combined

	if strings.TrimSpace(combined) == "" {
		e.logger.Warn("empty candidate documents, returning defaults", map[string]interface{}{
			"candidateId": candidateID,
		})
		markAllLow(profile.Confidence)
		return profile
	}
	profile.Confidence[FieldSource] = models.ConfidenceHigh

	steps := []struct {
		field string
		run   func()
	}{
		{FieldSkills, func() {
			skills, mentions := findSkills(combined)
			profile.Skills = skills
			profile.SkillMentions = mentions
			profile.RecentSkills = findRecentSkills(combined)
			profile.Confidence[FieldSkills] = confidenceFor(len(skills) > 0)
		}},
		{FieldExperience, func() {
			years, ok := findMaxYears(combined)
			profile.YearsExperience = years
			profile.Confidence[FieldExperience] = confidenceFor(ok)
		}},
		{FieldSeniority, func() {
			label, ok := findSeniority(combined)
			profile.Seniority, _ = models.ParseSeniority(label)
			profile.Confidence[FieldSeniority] = confidenceFor(ok)
		}},
		{FieldEducation, func() {
			label, ok := findEducation(combined)
			profile.Education, _ = models.ParseEducation(label)
			profile.Confidence[FieldEducation] = confidenceFor(ok)
		}},
		{FieldIndustries, func() {
			industries := findIndustries(combined)
			profile.Industries = industries
			profile.Confidence[FieldIndustries] = confidenceFor(len(industries) > 0)
		}},
		{FieldRecency, func() {
			current, end, ok := findRecency(combined)
			profile.CurrentlyEmployed = current
			profile.LastRoleEnd = end
			profile.Confidence[FieldRecency] = confidenceFor(ok)
		}},
	}

	for _, step := range steps {
		if ctx.Err() != nil {
			// Deadline hit mid-extraction: remaining fields keep their
			// defaults and are flagged low so downstream can tolerate them.
			e.logger.Warn("extraction deadline exceeded, returning partial profile", map[string]interface{}{
				"candidateId": candidateID,
				"stoppedAt":   step.field,
			})
			profile.Confidence[FieldSource] = models.ConfidenceLow
			fillMissingLow(profile.Confidence)
			return profile
		}
		step.run()
	}

	return profile
}

// JobRequirement extracts structured requirements from a job posting.
func (e *Extractor) JobRequirement(ctx context.Context, jobID, title, description string) *models.JobRequirement {
	ctx, cancel := e.bound(ctx)
	defer cancel()

	job := &models.JobRequirement{
		JobID:           jobID,
		Title:           title,
		RequiredSkills:  []string{},
		PreferredSkills: []string{},
		Industries:      []string{},
		Seniority:       models.SeniorityJunior,
		Confidence:      models.ConfidenceSet{},
	}

	combined := strings.ToLower(strings.TrimSpace(title + "\n" + description))
	job.Description = combined

	if strings.TrimSpace(combined) == "" {
		e.logger.Warn("empty job posting, returning defaults", map[string]interface{}{
			"jobId": jobID,
		})
		markAllLow(job.Confidence)
		return job
	}
	job.Confidence[FieldSource] = models.ConfidenceHigh

	if ctx.Err() == nil {
		required, preferred := findJobSkills(combined)
		job.RequiredSkills = required
		job.PreferredSkills = preferred
		job.Confidence[FieldSkills] = confidenceFor(len(required)+len(preferred) > 0)
	}

	if ctx.Err() == nil {
		minY, maxY, ok := findYearsRange(combined)
		job.MinYears = minY
		job.MaxYears = maxY
		job.Confidence[FieldExperience] = confidenceFor(ok)
	}

	if ctx.Err() == nil {
		label, ok := findSeniority(combined)
		job.Seniority, _ = models.ParseSeniority(label)
		job.Confidence[FieldSeniority] = confidenceFor(ok)
	}

	if ctx.Err() == nil {
		required, preferred, ok := findJobEducation(combined)
		job.RequiredEducation, _ = models.ParseEducation(required)
		job.PreferredEducation, _ = models.ParseEducation(preferred)
		job.Confidence[FieldEducation] = confidenceFor(ok)
	}

	if ctx.Err() == nil {
		industries := findIndustries(combined)
		job.Industries = industries
		job.Confidence[FieldIndustries] = confidenceFor(len(industries) > 0)
	}

	if ctx.Err() != nil {
		e.logger.Warn("extraction deadline exceeded, returning partial job requirement", map[string]interface{}{
			"jobId": jobID,
		})
		job.Confidence[FieldSource] = models.ConfidenceLow
		fillMissingLow(job.Confidence)
	}

	return job
}

// Keywords tokenizes text for keyword-density scoring: lowercase, split on
// non-token characters, drop stopwords and tokens shorter than 3 runes,
// dedupe. Hyphen, plus, dot and hash survive inside tokens so "ci-cd" and
// "c++" stay intact.
func Keywords(text string) []string {
	tokens := tokenPattern.FindAllString(strings.ToLower(text), -1)
	seen := map[string]bool{}
	var out []string
	for _, tok := range tokens {
		tok = strings.Trim(tok, "./-")
		if len([]rune(tok)) < 3 && tok != "go" && tok != "c#" && tok != "js" {
			continue
		}
		if stopwords[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	return out
}

func (e *Extractor) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, e.timeout)
}

func confidenceFor(found bool) models.Confidence {
	if found {
		return models.ConfidenceHigh
	}
	return models.ConfidenceLow
}

func markAllLow(set models.ConfidenceSet) {
	for _, field := range []string{FieldSource, FieldSkills, FieldExperience, FieldSeniority, FieldEducation, FieldIndustries, FieldRecency} {
		set[field] = models.ConfidenceLow
	}
}

func fillMissingLow(set models.ConfidenceSet) {
	for _, field := range []string{FieldSkills, FieldExperience, FieldSeniority, FieldEducation, FieldIndustries, FieldRecency} {
		if _, ok := set[field]; !ok {
			set[field] = models.ConfidenceLow
		}
	}
}

func findSkills(text string) ([]string, map[string]int) {
	mentions := map[string]int{}
	for canonical, aliases := range knownSkills {
		count := countMentions(text, canonical)
		for _, alias := range aliases {
			count += countMentions(text, alias)
		}
		if count > 0 {
			mentions[canonical] = count
		}
	}

	skills := make([]string, 0, len(mentions))
	for skill := range mentions {
		skills = append(skills, skill)
	}
	sort.Strings(skills)
	return skills, mentions
}

// preferredMarkers split a job description into the required part and the
// nice-to-have part. Everything after the first marker counts as preferred.
var preferredMarkers = []string{"nice to have", "nice-to-have", "preferred", "bonus", "a plus", "desirable"}

// splitPreferred cuts a job posting at the first nice-to-have marker.
func splitPreferred(text string) (head, tail string) {
	cut := len(text)
	for _, marker := range preferredMarkers {
		if i := strings.Index(text, marker); i >= 0 && i < cut {
			cut = i
		}
	}
	return text[:cut], text[cut:]
}

// findJobSkills scans a job posting for known skills, splitting them into
// required and preferred by where they first appear relative to the
// nice-to-have section. A skill mentioned in both halves stays required.
func findJobSkills(text string) ([]string, []string) {
	head, tail := splitPreferred(text)

	var required, preferred []string
	for canonical, aliases := range knownSkills {
		if mentioned(head, canonical, aliases) {
			required = append(required, canonical)
		} else if mentioned(tail, canonical, aliases) {
			preferred = append(preferred, canonical)
		}
	}
	sort.Strings(required)
	sort.Strings(preferred)
	return required, preferred
}

func mentioned(text, canonical string, aliases []string) bool {
	if countMentions(text, canonical) > 0 {
		return true
	}
	for _, alias := range aliases {
		if countMentions(text, alias) > 0 {
			return true
		}
	}
	return false
}

// findRecentSkills treats the opening third of the document as the most
// recent role section, which holds for reverse-chronological résumés.
func findRecentSkills(text string) map[string]bool {
	cut := len(text) / 3
	if cut == 0 {
		cut = len(text)
	}
	head := text[:cut]

	recent := map[string]bool{}
	for canonical, aliases := range knownSkills {
		if countMentions(head, canonical) > 0 {
			recent[canonical] = true
			continue
		}
		for _, alias := range aliases {
			if countMentions(head, alias) > 0 {
				recent[canonical] = true
				break
			}
		}
	}
	return recent
}

func countMentions(text, term string) int {
	if term == "" {
		return 0
	}
	count := 0
	for idx := 0; ; {
		i := strings.Index(text[idx:], term)
		if i < 0 {
			break
		}
		pos := idx + i
		if isWordBoundary(text, pos, len(term)) {
			count++
		}
		idx = pos + len(term)
	}
	return count
}

func isWordBoundary(text string, pos, length int) bool {
	before := pos - 1
	after := pos + length
	if before >= 0 && isTokenByte(text[before]) {
		return false
	}
	if after < len(text) && isTokenByte(text[after]) {
		return false
	}
	return true
}

func isTokenByte(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}

func findMaxYears(text string) (float64, bool) {
	matches := yearsPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return 0, false
	}
	max := 0
	for _, m := range matches {
		if n, err := strconv.Atoi(m[1]); err == nil && n > max {
			max = n
		}
	}
	return float64(max), true
}

func findYearsRange(text string) (float64, float64, bool) {
	if m := yearsRangePattern.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.Atoi(m[1])
		hi, _ := strconv.Atoi(m[2])
		if hi < lo {
			lo, hi = hi, lo
		}
		return float64(lo), float64(hi), true
	}
	if m := minYearsPattern.FindStringSubmatch(text); m != nil {
		lo, _ := strconv.Atoi(m[1])
		return float64(lo), float64(lo + 5), true
	}
	if years, ok := findMaxYears(text); ok {
		return years, years + 5, true
	}
	return 0, 0, false
}

func findSeniority(text string) (string, bool) {
	for _, entry := range seniorityKeywords {
		for _, pat := range entry.patterns {
			if strings.Contains(text, pat) {
				return entry.label, true
			}
		}
	}
	return "junior", false
}

// findJobEducation splits education mentions the same way findJobSkills
// splits skills: a level named before the nice-to-have section is the
// requirement, a level named only after it is preferred.
func findJobEducation(text string) (required, preferred string, ok bool) {
	head, tail := splitPreferred(text)

	required, reqOK := findEducation(head)
	preferred, prefOK := findEducation(tail)
	return required, preferred, reqOK || prefOK
}

func findEducation(text string) (string, bool) {
	for _, entry := range educationKeywords {
		for _, pat := range entry.patterns {
			if strings.Contains(text, pat) {
				return entry.label, true
			}
		}
	}
	return "none", false
}

func findIndustries(text string) []string {
	found := map[string]bool{}
	for canonical, aliases := range knownIndustries {
		if strings.Contains(text, canonical) {
			found[canonical] = true
			continue
		}
		for _, alias := range aliases {
			if strings.Contains(text, alias) {
				found[canonical] = true
				break
			}
		}
	}

	out := make([]string, 0, len(found))
	for ind := range found {
		out = append(out, ind)
	}
	sort.Strings(out)
	return out
}

// AdjacentIndustries reports whether two industries are related closely
// enough for partial credit.
func AdjacentIndustries(a, b string) bool {
	for _, adj := range adjacentIndustries[a] {
		if adj == b {
			return true
		}
	}
	return false
}

func findRecency(text string) (current bool, end *time.Time, ok bool) {
	if strings.Contains(text, "present") || strings.Contains(text, "current") {
		return true, nil, true
	}

	matches := endYearPattern.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return false, nil, false
	}

	latest := 0
	for _, m := range matches {
		if y, err := strconv.Atoi(m[1]); err == nil && y > latest {
			latest = y
		}
	}
	if latest == 0 {
		return false, nil, false
	}

	// Month granularity is rarely reliable; the end of the latest year is
	// close enough for the recency decay curve.
	t := time.Date(latest, time.December, 31, 0, 0, 0, 0, time.UTC)
	return false, &t, true
}
