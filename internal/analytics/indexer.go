// internal/analytics/indexer.go

// Package analytics copies scored match results into Elasticsearch for
// operator inspection. Strictly best-effort: indexing failures are
// logged and never surface to the scoring path.
package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"time"

	"github.com/elastic/go-elasticsearch/v8"

	"match-engine/internal/common/logger"
	"match-engine/internal/models"
)

type Indexer struct {
	client *elasticsearch.Client
	index  string
	log    logger.Logger
}

// NewIndexer returns nil when analytics indexing is disabled; a nil
// *Indexer is safe to call.
func NewIndexer(client *elasticsearch.Client, index string, log logger.Logger) *Indexer {
	if client == nil || index == "" {
		return nil
	}
	return &Indexer{
		client: client,
		index:  index,
		log:    log.WithFields(map[string]interface{}{"component": "analytics"}),
	}
}

// IndexResult ships one match result asynchronously. Returns immediately;
// the write happens on its own goroutine with its own deadline.
func (i *Indexer) IndexResult(result *models.MatchResult) {
	if i == nil {
		return
	}
	go i.index1(result)
}

func (i *Indexer) index1(result *models.MatchResult) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	body, err := json.Marshal(result)
	if err != nil {
		i.log.Warn("failed to marshal match result for indexing", map[string]interface{}{
			"matchResultId": result.ID,
			"error":         err.Error(),
		})
		return
	}

	res, err := i.client.Index(
		i.index,
		bytes.NewReader(body),
		i.client.Index.WithDocumentID(result.ID),
		i.client.Index.WithContext(ctx),
	)
	if err != nil {
		i.log.Warn("match result indexing failed", map[string]interface{}{
			"matchResultId": result.ID,
			"error":         err.Error(),
		})
		return
	}
	defer res.Body.Close()

	if res.IsError() {
		i.log.Warn("match result indexing rejected", map[string]interface{}{
			"matchResultId": result.ID,
			"status":        res.Status(),
		})
	}
}
