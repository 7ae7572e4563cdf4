// internal/engine/batch/pool.go

// Package batch fans one candidate out against many job postings across a
// bounded worker pool and collects the results ranked by probability.
package batch

import (
	"context"
	"sort"
	"sync"
	"time"

	"match-engine/internal/common/logger"
	"match-engine/internal/common/metrics"
	"match-engine/internal/models"
)

// ScoreFunc scores one candidate against one job. Implementations return
// a degraded, flagged result rather than an error wherever possible; an
// error drops only that pairing from the batch.
type ScoreFunc func(ctx context.Context, job *models.JobRequirement) (*models.MatchResult, error)

// Pool is a fixed-size worker pool. Safe for concurrent Run calls; each
// call gets its own channels and goroutines.
type Pool struct {
	workers int
	log     logger.Logger
}

func NewPool(workers int, log logger.Logger) *Pool {
	if workers < 1 {
		workers = 1
	}
	return &Pool{workers: workers, log: log}
}

// Run scores the candidate against every job and returns the results
// sorted by descending probability. On context cancellation no new work
// is started; results already produced are returned alongside ctx.Err().
func (p *Pool) Run(ctx context.Context, jobs []*models.JobRequirement, score ScoreFunc) ([]*models.MatchResult, error) {
	if len(jobs) == 0 {
		return nil, nil
	}
	start := time.Now()

	jobCh := make(chan *models.JobRequirement)
	resultCh := make(chan *models.MatchResult, len(jobs))

	var wg sync.WaitGroup
	for w := 0; w < p.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobCh {
				result, err := score(ctx, job)
				if err != nil {
					p.log.Error("scoring failed for job, dropping from batch", map[string]interface{}{
						"jobId": job.JobID,
						"error": err.Error(),
					})
					continue
				}
				resultCh <- result
			}
		}()
	}

	// Dispatch until done or cancelled. Workers drain naturally on close.
	var dispatchErr error
dispatch:
	for _, job := range jobs {
		select {
		case jobCh <- job:
		case <-ctx.Done():
			dispatchErr = ctx.Err()
			break dispatch
		}
	}
	close(jobCh)

	wg.Wait()
	close(resultCh)

	results := make([]*models.MatchResult, 0, len(jobs))
	for result := range resultCh {
		results = append(results, result)
	}

	// Ties break on job ID so ranking is stable across runs.
	sort.Slice(results, func(i, j int) bool {
		if results[i].Probability != results[j].Probability {
			return results[i].Probability > results[j].Probability
		}
		return results[i].JobID < results[j].JobID
	})

	metrics.ScoringDuration.WithLabelValues("batch").Observe(time.Since(start).Seconds())
	return results, dispatchErr
}
