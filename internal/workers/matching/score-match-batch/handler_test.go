// internal/workers/matching/score-match-batch/handler_test.go
package scorematchbatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"match-engine/internal/common/config"
	"match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/engine/batch"
	"match-engine/internal/engine/extract"
	"match-engine/internal/engine/probability"
	"match-engine/internal/engine/threshold"
	"match-engine/internal/models"
	"match-engine/internal/training/ensemble"
)

type memorySink struct {
	mu       sync.Mutex
	inserted []*models.MatchResult
	vectors  [][]float64
	opened   []string
}

func (m *memorySink) Insert(_ context.Context, result *models.MatchResult, vector []float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.inserted = append(m.inserted, result)
	m.vectors = append(m.vectors, vector)
	return nil
}

func (m *memorySink) InitLifecycle(_ context.Context, matchResultID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.opened = append(m.opened, matchResultID)
	return nil
}

func newTestHandler(t *testing.T) (*Handler, *memorySink) {
	t.Helper()

	matching := config.MatchingConfig{
		Weights:          config.DefaultWeights(),
		SigmoidSteepness: 12.0,
		SigmoidMidpoint:  0.76,
		HeuristicBlend:   0.5,
	}
	tiers := config.TiersConfig{
		Thresholds: map[string]config.TierConfig{
			"freemium": {Threshold: 80}, "starter": {Threshold: 70},
			"basic": {Threshold: 65}, "professional": {Threshold: 60},
			"premium": {Threshold: 55}, "elite": {Threshold: 55},
		},
		ReviewMargin: 5,
	}

	log := logger.NewNoOpLogger()
	sink := &memorySink{}
	h := NewHandler(
		LoadConfig(),
		extract.New(5*time.Second, log),
		probability.New(matching, ensemble.NewStore(), log),
		threshold.New(tiers),
		batch.NewPool(4, log),
		sink,
		sink,
		nil,
		log,
	)
	h.now = func() time.Time { return time.Date(2026, 5, 1, 0, 0, 0, 0, time.UTC) }
	return h, sink
}

const strongResume = `Senior software engineer with 8 years of experience building
Go, Kubernetes, PostgreSQL, and AWS platforms for fintech companies.
BSc Computer Science. 2018 - present at Acme Payments, leading a platform team.`

func strongInput() *Input {
	return &Input{
		CandidateID: "cand-1",
		ResumeText:  strongResume,
		Tier:        "professional",
		Jobs: []JobPosting{
			{
				JobID: "job-fit",
				Title: "Senior Go Engineer",
				Description: `Fintech scale-up hiring a senior backend engineer.
Required: Go, Kubernetes, PostgreSQL, AWS. 5-10 years experience.
Bachelor's degree in computer science required.`,
			},
			{
				JobID: "job-mismatch",
				Title: "Junior Graphic Designer",
				Description: `Creative agency seeks a junior designer.
Required: Photoshop, Illustrator, Figma. 1-2 years experience in advertising.`,
			},
		},
	}
}

func TestExecuteRanksAndPersistsBatch(t *testing.T) {
	h, sink := newTestHandler(t)

	output, err := h.Execute(context.Background(), strongInput())
	require.NoError(t, err)

	require.Len(t, output.Matches, 2)
	assert.Equal(t, 2, output.ScoredCount)
	assert.Equal(t, 0, output.FailedCount)

	// The fitting job outranks the mismatch by a wide margin.
	assert.Equal(t, "job-fit", output.Matches[0].JobID)
	assert.Equal(t, "job-mismatch", output.Matches[1].JobID)
	assert.Greater(t, output.Matches[0].Probability, output.Matches[1].Probability+20)

	// Every pair persisted a result, a feature vector, and a lifecycle row.
	assert.Len(t, sink.inserted, 2)
	assert.Len(t, sink.opened, 2)
	for _, vec := range sink.vectors {
		assert.Len(t, vec, ensemble.FeatureCount)
	}

	// Heuristic-only cold start is not a degraded mode.
	assert.Equal(t, models.HeuristicModelVersion, output.Matches[0].ModelVersion)
	assert.NotContains(t, output.Matches[0].Flags, models.FlagModelUnavailable)
}

func TestExecuteStampsAllTierOutcomes(t *testing.T) {
	h, _ := newTestHandler(t)

	output, err := h.Execute(context.Background(), strongInput())
	require.NoError(t, err)

	top := output.Matches[0]
	require.Len(t, top.TierOutcomes, 6)
	assert.Equal(t, top.Decision, top.TierOutcomes[models.TierProfessional])
}

func TestExecuteDegradesOnEmptyResume(t *testing.T) {
	h, sink := newTestHandler(t)

	input := strongInput()
	input.ResumeText = ""
	input.Jobs = input.Jobs[:1]

	output, err := h.Execute(context.Background(), input)
	require.NoError(t, err, "bad documents degrade, they never abort the batch")

	require.Len(t, output.Matches, 1)
	match := output.Matches[0]
	assert.Contains(t, match.Flags, models.FlagLowConfidence)
	assert.Contains(t, match.Flags, models.FlagExtractionDegraded)
	assert.Len(t, sink.inserted, 1)
}

func TestExecuteRejectsUnknownTier(t *testing.T) {
	h, sink := newTestHandler(t)

	input := strongInput()
	input.Tier = "platinum"

	_, err := h.Execute(context.Background(), input)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeScoringInputIncomplete))
	assert.Empty(t, sink.inserted)
}

func TestExecuteIsDeterministicPerPair(t *testing.T) {
	h, _ := newTestHandler(t)

	first, err := h.Execute(context.Background(), strongInput())
	require.NoError(t, err)
	second, err := h.Execute(context.Background(), strongInput())
	require.NoError(t, err)

	require.Len(t, second.Matches, len(first.Matches))
	for i := range first.Matches {
		assert.Equal(t, first.Matches[i].JobID, second.Matches[i].JobID)
		assert.Equal(t, first.Matches[i].Probability, second.Matches[i].Probability)
		assert.Equal(t, first.Matches[i].Scores, second.Matches[i].Scores)
		assert.Equal(t, first.Matches[i].Strengths, second.Matches[i].Strengths)
	}
}

func TestValidateInput(t *testing.T) {
	valid := `{"candidateId":"c1","resumeText":"x","tier":"basic","jobs":[{"jobId":"j1"}]}`
	require.NoError(t, validateInput(valid))

	cases := map[string]string{
		"missing candidate": `{"resumeText":"x","tier":"basic","jobs":[{"jobId":"j1"}]}`,
		"empty jobs":        `{"candidateId":"c1","resumeText":"x","tier":"basic","jobs":[]}`,
		"job without id":    `{"candidateId":"c1","resumeText":"x","tier":"basic","jobs":[{"title":"t"}]}`,
		"not json":          `{{`,
	}
	for name, payload := range cases {
		err := validateInput(payload)
		require.Error(t, err, name)
		assert.True(t, errors.IsCode(err, errors.ErrCodeScoringInputIncomplete), name)
	}
}
