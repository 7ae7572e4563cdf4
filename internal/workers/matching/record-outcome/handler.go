// internal/workers/matching/record-outcome/handler.go
package recordoutcome

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/xeipuuv/gojsonschema"

	"match-engine/internal/common/errors"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"
	"match-engine/internal/outcome"
	"match-engine/internal/results"
)

const TaskType = "record-outcome"

const inputSchema = `{
	"type": "object",
	"required": ["matchResultId", "event"],
	"properties": {
		"matchResultId": {"type": "string", "minLength": 1},
		"event": {"type": "string", "enum": ["applied", "rejected", "interview", "offer"]}
	}
}`

// OutcomeTracker is the feedback boundary. Satisfied by
// *outcome.Tracker.
type OutcomeTracker interface {
	MarkApplied(ctx context.Context, matchResultID string) error
	RecordOutcome(ctx context.Context, matchResultID string, o models.Outcome) (*models.OutcomeRecord, error)
}

// ResultSource answers whether a match was ever scored. Satisfied by
// *results.Store: recent matches resolve from the redis copy without a
// database round trip.
type ResultSource interface {
	Cached(ctx context.Context, id string) *models.MatchResult
	Exists(ctx context.Context, id string) (bool, error)
}

type Handler struct {
	config     *Config
	tracker    OutcomeTracker
	results    ResultSource
	errHandler *errors.ErrorHandler
	logger     logger.Logger
	now        func() time.Time
}

func NewHandler(config *Config, tracker OutcomeTracker, results ResultSource, log logger.Logger) *Handler {
	return &Handler{
		config:     config,
		tracker:    tracker,
		results:    results,
		errHandler: errors.NewErrorHandler(log),
		logger:     log.WithFields(map[string]interface{}{"taskType": TaskType}),
		now:        time.Now,
	}
}

// compile-time checks against the real collaborators
var (
	_ OutcomeTracker = (*outcome.Tracker)(nil)
	_ ResultSource   = (*results.Store)(nil)
)

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	h.logger.Info("processing job", map[string]interface{}{
		"jobKey":      job.Key,
		"workflowKey": job.ProcessInstanceKey,
	})

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	if err := validateInput(job.Variables); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.ErrCodeOutcomeInvalidValue)).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	var input Input
	if err := json.Unmarshal([]byte(job.Variables), &input); err != nil {
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, string(errors.ErrCodeOutcomeInvalidValue)).Inc()
		h.errHandler.HandleJobError(ctx, client, job, errors.NewOutcomeInvalidValueError(job.Variables))
		return
	}

	output, err := h.execute(ctx, &input)
	if err != nil {
		code := "INTERNAL_ERROR"
		if stdErr, ok := err.(*errors.StandardError); ok {
			code = string(stdErr.Code)
		}
		metrics.WorkerJobsFailed.WithLabelValues(TaskType, code).Inc()
		h.errHandler.HandleJobError(ctx, client, job, err)
		return
	}

	h.completeJob(client, job, output)
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	event := strings.ToLower(input.Event)
	recordedAt := h.now().UTC().Format(time.RFC3339)

	if err := h.knownMatch(ctx, input.MatchResultID); err != nil {
		return nil, err
	}

	if event == EventApplied {
		if err := h.tracker.MarkApplied(ctx, input.MatchResultID); err != nil {
			return nil, err
		}
		h.logger.Info("application recorded", map[string]interface{}{
			"matchResultId": input.MatchResultID,
		})
		return &Output{
			MatchResultID: input.MatchResultID,
			Event:         event,
			RecordedAt:    recordedAt,
		}, nil
	}

	label, ok := models.ParseOutcome(event)
	if !ok {
		return nil, errors.NewOutcomeInvalidValueError(input.Event)
	}

	record, err := h.tracker.RecordOutcome(ctx, input.MatchResultID, label)
	if err != nil {
		return nil, err
	}

	return &Output{
		MatchResultID:   input.MatchResultID,
		OutcomeRecordID: record.ID,
		Event:           event,
		Label:           float64(label),
		RecordedAt:      recordedAt,
	}, nil
}

// knownMatch rejects feedback for ids that were never scored before the
// lifecycle table is touched. The redis copy answers for recent matches;
// older ones fall through to the match_results existence check.
func (h *Handler) knownMatch(ctx context.Context, matchResultID string) error {
	if h.results == nil {
		return nil
	}
	if h.results.Cached(ctx, matchResultID) != nil {
		return nil
	}
	found, err := h.results.Exists(ctx, matchResultID)
	if err != nil {
		return err
	}
	if !found {
		return errors.NewOutcomeUnknownMatchError(matchResultID)
	}
	return nil
}

func validateInput(variables string) error {
	schemaLoader := gojsonschema.NewStringLoader(inputSchema)
	documentLoader := gojsonschema.NewStringLoader(variables)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return errors.NewOutcomeInvalidValueError(fmt.Sprintf("validate variables: %v", err))
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return errors.NewOutcomeInvalidValueError(strings.Join(errs, "; "))
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
