// internal/workers/matching/score-match-batch/handler.go
package scorematchbatch

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
	"github.com/xeipuuv/gojsonschema"

	"match-engine/internal/analytics"
	"match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/engine/batch"
	"match-engine/internal/engine/explain"
	"match-engine/internal/engine/extract"
	"match-engine/internal/engine/probability"
	"match-engine/internal/engine/score"
	"match-engine/internal/engine/threshold"
	"match-engine/internal/models"
	"match-engine/internal/training/features"
)

const TaskType = "score-match-batch"

const inputSchema = `{
	"type": "object",
	"required": ["candidateId", "resumeText", "tier", "jobs"],
	"properties": {
		"candidateId": {"type": "string", "minLength": 1},
		"resumeText": {"type": "string"},
		"coverLetter": {"type": "string"},
		"tier": {"type": "string"},
		"jobs": {
			"type": "array",
			"minItems": 1,
			"items": {
				"type": "object",
				"required": ["jobId"],
				"properties": {
					"jobId": {"type": "string", "minLength": 1},
					"title": {"type": "string"},
					"description": {"type": "string"}
				}
			}
		}
	}
}`

// DocumentExtractor is the extraction boundary. Satisfied by both
// *extract.Extractor and *extract.CachedExtractor.
type DocumentExtractor interface {
	CandidateProfile(ctx context.Context, candidateID, resumeText, coverLetter string) *models.CandidateProfile
	JobRequirement(ctx context.Context, jobID, title, description string) *models.JobRequirement
}

// ResultSink persists scored results. Satisfied by *results.Store.
type ResultSink interface {
	Insert(ctx context.Context, result *models.MatchResult, featureVector []float64) error
}

// LifecycleSink opens the application state machine for a fresh result.
// Satisfied by *outcome.Store.
type LifecycleSink interface {
	InitLifecycle(ctx context.Context, matchResultID string) error
}

type Handler struct {
	config     *Config
	extractor  DocumentExtractor
	calculator *probability.Calculator
	filter     *threshold.Filter
	pool       *batch.Pool
	store      ResultSink
	lifecycle  LifecycleSink
	indexer    *analytics.Indexer
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(
	config *Config,
	extractor DocumentExtractor,
	calculator *probability.Calculator,
	filter *threshold.Filter,
	pool *batch.Pool,
	store ResultSink,
	lifecycle LifecycleSink,
	indexer *analytics.Indexer,
	log logger.Logger,
) *Handler {
	return &Handler{
		config:     config,
		extractor:  extractor,
		calculator: calculator,
		filter:     filter,
		pool:       pool,
		store:      store,
		lifecycle:  lifecycle,
		indexer:    indexer,
		errHandler: errors.NewErrorHandler(log),
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:        time.Now,
	}
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := validateInput(job.Variables); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.ErrCodeScoringInputIncomplete)).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.ErrCodeScoringInputIncomplete)).Inc()
		h.errHandler.HandleJobError(ctx, client, job, errors.NewScoringInputIncompleteError(fmt.Sprintf("variables: %v", err)))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		stdErr, ok := err.(*errors.StandardError)
		code := "INTERNAL_ERROR"
		if ok {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	tier := models.SubscriptionTier(strings.ToLower(input.Tier))
	if !models.ValidTier(tier) {
		return nil, errors.NewScoringInputIncompleteError(fmt.Sprintf("unknown tier %q", input.Tier))
	}

	profile := h.extractor.CandidateProfile(ctx, input.CandidateID, input.ResumeText, input.CoverLetter)

	// The pool sees stub requirements carrying the raw posting text; full
	// extraction runs inside the workers alongside scoring.
	stubs := make([]*models.JobRequirement, len(input.Jobs))
	for i, posting := range input.Jobs {
		stubs[i] = &models.JobRequirement{
			JobID:       posting.JobID,
			Title:       posting.Title,
			Description: posting.Description,
		}
	}

	ranked, runErr := h.pool.Run(ctx, stubs, func(ctx context.Context, stub *models.JobRequirement) (*models.MatchResult, error) {
		return h.scoreOne(ctx, profile, tier, stub)
	})
	if runErr != nil && len(ranked) == 0 {
		return nil, errors.NewScoringInputIncompleteError(fmt.Sprintf("batch aborted: %v", runErr))
	}

	output := &Output{
		CandidateID: input.CandidateID,
		Tier:        string(tier),
		Matches:     make([]Match, 0, len(ranked)),
		ScoredCount: len(ranked),
		FailedCount: len(input.Jobs) - len(ranked),
	}
	for _, result := range ranked {
		output.Matches = append(output.Matches, Match{
			MatchResultID:   result.ID,
			JobID:           result.JobID,
			Probability:     result.Probability,
			Decision:        result.Decision,
			TierOutcomes:    result.TierOutcomes,
			Scores:          result.Scores,
			ModelVersion:    result.ModelVersion,
			Strengths:       result.Strengths,
			Gaps:            result.Gaps,
			Recommendations: result.Recommendations,
			Flags:           result.Flags,
		})
	}

	h.logger.Info("batch scored", map[string]interface{}{
		"candidateId": input.CandidateID,
		"tier":        string(tier),
		"scored":      output.ScoredCount,
		"failed":      output.FailedCount,
	})
	return output, nil
}

// scoreOne runs the full per-pair pipeline: extract, score, calibrate,
// filter, explain, persist. Data-quality trouble degrades the result
// with flags; only persistence failures drop the pairing.
func (h *Handler) scoreOne(ctx context.Context, profile *models.CandidateProfile, tier models.SubscriptionTier, stub *models.JobRequirement) (*models.MatchResult, error) {
	job := h.extractor.JobRequirement(ctx, stub.JobID, stub.Title, stub.Description)

	now := h.now().UTC()
	scores, lowComponents := score.Compute(profile, job, now)
	calc := h.calculator.Calculate(profile, scores)
	explanation := explain.Generate(scores)

	result := &models.MatchResult{
		ID:              uuid.New().String(),
		CandidateID:     profile.CandidateID,
		JobID:           job.JobID,
		Scores:          scores,
		RawScore:        calc.RawScore,
		Probability:     calc.Probability,
		ModelVersion:    calc.ModelVersion,
		Strengths:       explanation.Strengths,
		Gaps:            explanation.Gaps,
		Recommendations: explanation.Recommendations,
		CreatedAt:       now,
	}
	h.filter.Apply(result, tier)

	if len(lowComponents) > 0 || profile.Confidence.HasLowConfidence() || job.Confidence.HasLowConfidence() {
		result.AddFlag(models.FlagLowConfidence)
	}
	if sourceDegraded(profile.Confidence) || sourceDegraded(job.Confidence) {
		result.AddFlag(models.FlagExtractionDegraded)
	}
	if calc.Degraded {
		result.AddFlag(models.FlagModelUnavailable)
	}
	for _, flag := range result.Flags {
		metrics.MatchesDegraded.WithLabelValues(flag).Inc()
	}

	if err := h.store.Insert(ctx, result, features.Vector(profile, scores)); err != nil {
		return nil, err
	}
	if err := h.lifecycle.InitLifecycle(ctx, result.ID); err != nil {
		return nil, err
	}
	h.indexer.IndexResult(result)

	return result, nil
}

func sourceDegraded(confidence models.ConfidenceSet) bool {
	return confidence[extract.FieldSource] == models.ConfidenceLow
}

func validateInput(variables string) error {
	schemaLoader := gojsonschema.NewStringLoader(inputSchema)
	documentLoader := gojsonschema.NewStringLoader(variables)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewScoringInputIncompleteError(fmt.Sprintf("validate variables: %v", err))
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.NewScoringInputIncompleteError(strings.Join(errs, "; "))
	}
	return nil
}

func (h *Handler) completeJob(client worker.JobClient, job entities.Job, output *Output) {
	cmd, err := client.NewCompleteJobCommand().
		JobKey(job.Key).
		VariablesFromObject(output)
	if err != nil {
		h.logger.Error("failed to create complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}
	_, err = cmd.Send(context.Background())
	if err != nil {
		h.logger.Error("failed to send complete job command", map[string]interface{}{
			"error": err,
		})
		return
	}

	metrics.WorkerJobsCompleted.WithLabelValues(TaskType).Inc()
	h.logger.Info("job completed successfully", map[string]interface{}{
		"jobKey": job.Key,
	})
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
