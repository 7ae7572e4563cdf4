// internal/engine/extract/extractor_test.go
package extract

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

func newExtractor(t *testing.T) *Extractor {
	t.Helper()
	return New(5*time.Second, logger.NewNoOpLogger())
}

const engineerResume = `Senior Software Engineer

Acme Payments, 2019 - present. Building Go services on Kubernetes,
Postgres and Kafka for a fintech platform. Mentoring two junior engineers.

Previously: backend developer, Widget Corp, 2015 - 2019. Python, Docker,
AWS. 8 years of professional experience overall.

BSc Computer Science, State University.`

func TestCandidateProfileExtraction(t *testing.T) {
	e := newExtractor(t)

	profile := e.CandidateProfile(context.Background(), "cand-1", engineerResume, "")
	require.NotNil(t, profile)

	assert.Contains(t, profile.Skills, "go")
	assert.Contains(t, profile.Skills, "kubernetes")
	assert.Contains(t, profile.Skills, "python")
	assert.Contains(t, profile.Skills, "sql", "postgres should resolve to its canonical skill")

	assert.Equal(t, 8.0, profile.YearsExperience)
	assert.Equal(t, models.SenioritySenior, profile.Seniority)
	assert.Equal(t, models.EducationBachelor, profile.Education)
	assert.Contains(t, profile.Industries, "finance")
	assert.True(t, profile.CurrentlyEmployed)

	assert.Equal(t, models.ConfidenceHigh, profile.Confidence[FieldSource])
	assert.False(t, profile.Confidence.HasLowConfidence())
}

func TestCandidateProfileEmptyDocumentsGetDefaults(t *testing.T) {
	e := newExtractor(t)

	profile := e.CandidateProfile(context.Background(), "cand-1", "", "   ")
	require.NotNil(t, profile)

	assert.Empty(t, profile.Skills)
	assert.Zero(t, profile.YearsExperience)
	assert.Equal(t, models.SeniorityJunior, profile.Seniority)
	assert.Equal(t, models.EducationNone, profile.Education)
	assert.Equal(t, models.ConfidenceLow, profile.Confidence[FieldSource])
	for _, field := range []string{FieldSkills, FieldExperience, FieldSeniority, FieldEducation, FieldIndustries, FieldRecency} {
		assert.Equal(t, models.ConfidenceLow, profile.Confidence[field], field)
	}
}

func TestCandidateProfileGapSinceLastRole(t *testing.T) {
	e := newExtractor(t)

	resume := "Software developer at Widget Corp, Jan 2018 - Nov 2023. Java, SQL."
	profile := e.CandidateProfile(context.Background(), "cand-1", resume, "")

	assert.False(t, profile.CurrentlyEmployed)
	require.NotNil(t, profile.LastRoleEnd)
	assert.Equal(t, 2023, profile.LastRoleEnd.Year())
}

func TestCandidateProfileDeadlinePartialResult(t *testing.T) {
	e := newExtractor(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// The context is already dead before any step runs, so every field
	// keeps its default and is marked low.
	profile := e.CandidateProfile(ctx, "cand-1", engineerResume, "")
	require.NotNil(t, profile)
	assert.Equal(t, models.ConfidenceLow, profile.Confidence[FieldSource])
	assert.Equal(t, models.ConfidenceLow, profile.Confidence[FieldSkills])
}

func TestJobRequirementExtraction(t *testing.T) {
	e := newExtractor(t)

	desc := `We are a fintech scale-up looking for a senior backend engineer.
5-8 years of experience with Go, Kubernetes and Postgres required.
Bachelor's degree in computer science or equivalent.
Nice to have: Kafka, Terraform.`

	job := e.JobRequirement(context.Background(), "job-1", "Senior Backend Engineer", desc)
	require.NotNil(t, job)

	assert.Contains(t, job.RequiredSkills, "go")
	assert.Contains(t, job.RequiredSkills, "kubernetes")
	assert.Contains(t, job.PreferredSkills, "kafka")
	assert.Contains(t, job.PreferredSkills, "terraform")
	assert.NotContains(t, job.RequiredSkills, "kafka")

	assert.Equal(t, 5.0, job.MinYears)
	assert.Equal(t, 8.0, job.MaxYears)
	assert.Equal(t, models.SenioritySenior, job.Seniority)
	assert.Equal(t, models.EducationBachelor, job.RequiredEducation)
	assert.Contains(t, job.Industries, "finance")
}

func TestJobRequirementPreferredEducation(t *testing.T) {
	e := newExtractor(t)

	desc := `Backend engineer for our payments team.
Bachelor's degree in computer science required.
Nice to have: a Master's degree, Kafka.`

	job := e.JobRequirement(context.Background(), "job-1", "Backend Engineer", desc)
	require.NotNil(t, job)

	assert.Equal(t, models.EducationBachelor, job.RequiredEducation)
	assert.Equal(t, models.EducationMaster, job.PreferredEducation)
	assert.Equal(t, models.ConfidenceHigh, job.Confidence[FieldEducation])
}

func TestJobRequirementMinimumYearsImpliesRange(t *testing.T) {
	e := newExtractor(t)

	job := e.JobRequirement(context.Background(), "job-1", "Engineer",
		"At least 4 years of experience with Java.")
	assert.Equal(t, 4.0, job.MinYears)
	assert.Equal(t, 9.0, job.MaxYears)
}

func TestJobRequirementEmptyPostingGetsDefaults(t *testing.T) {
	e := newExtractor(t)

	job := e.JobRequirement(context.Background(), "job-1", "", "")
	require.NotNil(t, job)
	assert.Empty(t, job.RequiredSkills)
	assert.Zero(t, job.MinYears)
	assert.Equal(t, models.ConfidenceLow, job.Confidence[FieldSource])
}

func TestFindMaxYearsPicksLargestMention(t *testing.T) {
	years, ok := findMaxYears("2 years of go, 10 years of java, 5 years of sql")
	require.True(t, ok)
	assert.Equal(t, 10.0, years)

	_, ok = findMaxYears("no numeric experience statement here")
	assert.False(t, ok)
}

func TestKeywords(t *testing.T) {
	tokens := Keywords("The candidate will have experience with Go, CI-CD and C++ pipelines. Go is required.")

	assert.Contains(t, tokens, "go")
	assert.Contains(t, tokens, "ci-cd")
	assert.Contains(t, tokens, "c++")
	assert.Contains(t, tokens, "pipelines")
	assert.NotContains(t, tokens, "the")
	assert.NotContains(t, tokens, "candidate")
	assert.NotContains(t, tokens, "experience")

	// Deduped.
	count := 0
	for _, tok := range tokens {
		if tok == "go" {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func TestSeniorityKeywordsResolveMostSeniorFirst(t *testing.T) {
	label, ok := findSeniority("senior staff engineer wanted")
	require.True(t, ok)
	assert.Equal(t, "lead", label, "staff engineer outranks the senior keyword")

	label, ok = findSeniority(strings.ToLower("Principal Engineer, distributed systems"))
	require.True(t, ok)
	assert.Equal(t, "principal", label)

	_, ok = findSeniority("software engineer")
	assert.False(t, ok)
}

func TestAdjacentIndustries(t *testing.T) {
	assert.True(t, AdjacentIndustries("technology", "finance"))
	assert.True(t, AdjacentIndustries("hospitality", "retail"))
	assert.False(t, AdjacentIndustries("healthcare", "energy"))
}
