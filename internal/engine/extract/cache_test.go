// internal/engine/extract/cache_test.go
package extract

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/common/database"
	"match-engine/internal/common/logger"
)

func newCachedExtractor(t *testing.T) (*CachedExtractor, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := &database.RedisClient{Client: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	inner := New(5*time.Second, logger.NewNoOpLogger())
	return NewCached(inner, cache, time.Minute, logger.NewNoOpLogger()), mr
}

const cacheTestResume = `Senior software engineer with 8 years of experience
building Go and Kubernetes platforms in fintech. BSc Computer Science.
2019 - present at Acme Payments.`

func TestCachedProfileRoundTripsResumeText(t *testing.T) {
	ce, mr := newCachedExtractor(t)
	ctx := context.Background()

	first := ce.CandidateProfile(ctx, "cand-1", cacheTestResume, "")
	require.NotEmpty(t, first.ResumeText)
	require.Equal(t, 1, len(mr.Keys()))

	second := ce.CandidateProfile(ctx, "cand-1", cacheTestResume, "")
	assert.Equal(t, first.Skills, second.Skills)
	assert.Equal(t, first.YearsExperience, second.YearsExperience)
	assert.Equal(t, first.ResumeText, second.ResumeText, "cache hits must keep the text the keyword scorer reads")
}

func TestCacheKeyVariesWithDocumentContent(t *testing.T) {
	ce, mr := newCachedExtractor(t)
	ctx := context.Background()

	ce.CandidateProfile(ctx, "cand-1", cacheTestResume, "")
	ce.CandidateProfile(ctx, "cand-1", cacheTestResume+" Python.", "")
	assert.Equal(t, 2, len(mr.Keys()), "changed documents must not share a cache entry")
}

func TestCacheFailureFallsThrough(t *testing.T) {
	ce, mr := newCachedExtractor(t)
	mr.Close()

	profile := ce.CandidateProfile(context.Background(), "cand-1", cacheTestResume, "")
	require.NotNil(t, profile)
	assert.NotEmpty(t, profile.Skills)
}

func TestCachedJobRequirement(t *testing.T) {
	ce, mr := newCachedExtractor(t)
	ctx := context.Background()

	desc := "We need a senior Go engineer, 5-8 years experience, in fintech. Bachelor's degree required."
	first := ce.JobRequirement(ctx, "job-1", "Senior Go Engineer", desc)
	require.NotEmpty(t, mr.Keys())

	second := ce.JobRequirement(ctx, "job-1", "Senior Go Engineer", desc)
	assert.Equal(t, first.RequiredSkills, second.RequiredSkills)
	assert.Equal(t, first.MinYears, second.MinYears)
	assert.Equal(t, first.Description, second.Description)
}
