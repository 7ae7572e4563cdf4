// internal/engine/extract/cache.go
package extract

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"match-engine/internal/common/database"
	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

// CachedExtractor fronts an Extractor with a Redis cache keyed on the
// source-document hash. Extraction is deterministic, so identical
// documents always yield identical structures and the cache never goes
// stale within its TTL. Cache failures fall through to extraction.
type CachedExtractor struct {
	inner *Extractor
	cache *database.RedisClient
	ttl   time.Duration
	log   logger.Logger
}

func NewCached(inner *Extractor, cache *database.RedisClient, ttl time.Duration, log logger.Logger) *CachedExtractor {
	return &CachedExtractor{inner: inner, cache: cache, ttl: ttl, log: log}
}

// cachedProfile carries the normalized résumé text alongside the
// profile; CandidateProfile excludes it from JSON everywhere else.
type cachedProfile struct {
	Profile    *models.CandidateProfile `json:"profile"`
	ResumeText string                   `json:"resumeText"`
}

func (c *CachedExtractor) CandidateProfile(ctx context.Context, candidateID, resumeText, coverLetter string) *models.CandidateProfile {
	key := cacheKey("profile", candidateID, resumeText, coverLetter)

	var cached cachedProfile
	if c.load(ctx, key, &cached) && cached.Profile != nil {
		cached.Profile.ResumeText = cached.ResumeText
		return cached.Profile
	}

	profile := c.inner.CandidateProfile(ctx, candidateID, resumeText, coverLetter)
	c.save(ctx, key, cachedProfile{Profile: profile, ResumeText: profile.ResumeText})
	return profile
}

func (c *CachedExtractor) JobRequirement(ctx context.Context, jobID, title, description string) *models.JobRequirement {
	key := cacheKey("job", jobID, title, description)

	var cached models.JobRequirement
	if c.load(ctx, key, &cached) {
		return &cached
	}

	job := c.inner.JobRequirement(ctx, jobID, title, description)
	c.save(ctx, key, job)
	return job
}

func (c *CachedExtractor) load(ctx context.Context, key string, out interface{}) bool {
	if c.cache == nil {
		return false
	}
	raw, err := c.cache.Get(ctx, key)
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), out) == nil
}

func (c *CachedExtractor) save(ctx context.Context, key string, value interface{}) {
	if c.cache == nil || c.ttl <= 0 {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := c.cache.Set(ctx, key, raw, c.ttl); err != nil {
		c.log.Warn("failed to cache extraction", map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		})
	}
}

func cacheKey(kind, id string, docs ...string) string {
	h := sha256.New()
	for _, doc := range docs {
		h.Write([]byte(doc))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("extract:%s:%s:%s", kind, id, hex.EncodeToString(h.Sum(nil))[:16])
}
