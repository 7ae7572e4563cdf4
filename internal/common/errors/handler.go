// internal/common/errors/handler.go
package errors

import (
	"context"
	"encoding/json"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

// ErrorHandler routes worker errors to the right workflow verb: codes
// with retry budget fail the job so the broker redelivers it, everything
// else throws a BPMN error the process model can catch.
type ErrorHandler struct {
	logger Logger
}

type Logger interface {
	Error(msg string, fields map[string]interface{})
}

func NewErrorHandler(logger Logger) *ErrorHandler {
	return &ErrorHandler{logger: logger}
}

// HandleJobError handles any error raised by a worker job.
func (h *ErrorHandler) HandleJobError(ctx context.Context, client worker.JobClient, job entities.Job, err error) {
	stdErr := normalize(err)
	bpmnErr := ConvertToBPMNError(stdErr)

	h.logger.Error("Job failed", map[string]interface{}{
		"jobKey":           job.Key,
		"jobType":          job.Type,
		"errorCode":        string(stdErr.Code),
		"message":          bpmnErr.Message,
		"details":          stdErr.Details,
		"retryable":        stdErr.Retryable,
		"retries":          bpmnErr.Retries,
		"errorCategory":    GetErrorCategory(stdErr.Code),
		"workflowInstance": job.ProcessInstanceKey,
	})

	if bpmnErr.Retries > 0 && job.Retries > 0 {
		h.failJob(ctx, client, job, bpmnErr)
	} else {
		h.throwBPMNError(ctx, client, job, bpmnErr)
	}
}

// normalize wraps foreign errors so every failure leaves the worker as a
// StandardError.
func normalize(err error) *StandardError {
	if stdErr, ok := err.(*StandardError); ok {
		return stdErr
	}
	return &StandardError{
		Code:      "INTERNAL_ERROR",
		Message:   "Unexpected error",
		Details:   err.Error(),
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// errorVariablesJSON serializes the error variables for the fail/throw
// commands. Reports false when there is nothing usable to attach.
func errorVariablesJSON(bpmnErr *BPMNError) (string, bool) {
	vars := bpmnErr.ToErrorVariables()
	if len(vars) == 0 {
		return "", false
	}
	raw, err := json.Marshal(vars)
	if err != nil || string(raw) == "null" {
		return "", false
	}
	return string(raw), true
}

func (h *ErrorHandler) failJob(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	// The broker decrements job.Retries on each delivery; never raise it
	// back above what the code's budget allows.
	retries := bpmnErr.Retries
	if job.Retries > 0 && int(job.Retries) < retries {
		retries = int(job.Retries)
	}

	cmd := client.NewFailJobCommand().
		JobKey(job.Key).
		Retries(int32(retries)).
		ErrorMessage(bpmnErr.Message)

	if raw, ok := errorVariablesJSON(bpmnErr); ok {
		if withVars, err := cmd.VariablesFromString(raw); err == nil {
			_, _ = withVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}

func (h *ErrorHandler) throwBPMNError(ctx context.Context, client worker.JobClient, job entities.Job, bpmnErr *BPMNError) {
	cmd := client.NewThrowErrorCommand().
		JobKey(job.Key).
		ErrorCode(bpmnErr.Code).
		ErrorMessage(bpmnErr.Message)

	if raw, ok := errorVariablesJSON(bpmnErr); ok {
		if withVars, err := cmd.VariablesFromString(raw); err == nil {
			_, _ = withVars.Send(ctx)
			return
		}
	}
	_, _ = cmd.Send(ctx)
}
