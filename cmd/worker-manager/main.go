// cmd/worker-manager/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"match-engine/internal/analytics"
	"match-engine/internal/common/aws"
	"match-engine/internal/common/config"
	"match-engine/internal/common/database"
	"match-engine/internal/common/logger"
	"match-engine/internal/common/observability"
	"match-engine/internal/engine/batch"
	"match-engine/internal/engine/extract"
	"match-engine/internal/engine/probability"
	"match-engine/internal/engine/threshold"
	"match-engine/internal/outcome"
	"match-engine/internal/results"
	"match-engine/internal/training/ensemble"
	"match-engine/internal/training/trainer"

	ro "match-engine/internal/workers/matching/record-outcome"
	smb "match-engine/internal/workers/matching/score-match-batch"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting worker manager...")

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init Zeebe client with retry ---
	var zeebeClient zbc.Client
	err = retryWithBackoff(func() error {
		var err error
		zeebeClient, err = zbc.NewClient(&zbc.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
		})
		return err
	}, 10, 2*time.Second, zapLog, "Zeebe client initialization")
	if err != nil {
		zapLog.Fatal("zeebe client failed after retries", zap.Error(err))
	}
	zapLog.Info("Zeebe client connected successfully")

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")
	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")
	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Init Elasticsearch (optional, best-effort analytics only) ---
	var indexer *analytics.Indexer
	if cfg.Database.Elasticsearch.Enabled {
		var esClient *database.ElasticsearchClient
		err = retryWithBackoff(func() error {
			var err error
			esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
			if err != nil {
				return err
			}
			return esClient.Ping()
		}, 5, 2*time.Second, zapLog, "Elasticsearch connection")
		if err != nil {
			zapLog.Warn("elasticsearch unavailable, match analytics disabled", zap.Error(err))
		} else {
			indexer = analytics.NewIndexer(esClient.Client, cfg.Database.Elasticsearch.MatchIndex, log)
			zapLog.Info("Elasticsearch connected successfully")
		}
	}

	// --- Scoring pipeline ---
	snapshots := ensemble.NewStore()
	calculator := probability.New(cfg.Matching, snapshots, log)
	filter := threshold.New(cfg.Tiers)
	pool := batch.NewPool(cfg.Matching.BatchWorkers, log)

	cacheTTL := time.Duration(cfg.Matching.CacheTTL) * time.Second
	extractor := extract.NewCached(
		extract.New(config.GetDuration(cfg.Matching.ExtractTimeout), log),
		redis, cacheTTL, log,
	)

	resultStore := results.NewStore(pg, redis, cacheTTL, log)
	outcomeStore := outcome.NewStore(pg)
	tracker := outcome.NewTracker(outcomeStore, cfg.Training.RecencyHalfLife, log)

	// --- Trainer ---
	var alerts trainer.Alerter
	if cfg.Training.Alerts.Enabled {
		snsClient, err := aws.NewSNSClient(ctx, cfg.Training.Alerts.Region)
		if err != nil {
			zapLog.Warn("SNS unavailable, training alerts disabled", zap.Error(err))
		} else {
			alerts = trainer.NewSNSAlerter(snsClient, cfg.Training.Alerts.TopicARN)
		}
	}

	train := trainer.New(cfg.Training, resultStore, trainer.NewArtifactStore(pg), snapshots, alerts, log)
	train.Bootstrap(ctx)
	cronRunner, err := train.Start(ctx)
	if err != nil {
		zapLog.Fatal("failed to start training schedule", zap.Error(err))
	}

	// --- Register workers ---
	if config.IsWorkerEnabled(cfg, smb.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, smb.TaskType)
		handler := smb.NewHandler(
			&smb.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			extractor, calculator, filter, pool,
			resultStore, outcomeStore, indexer, log,
		)
		startWorker(zeebeClient, smb.TaskType, wcfg, handler.Handle, zapLog)
	}

	if config.IsWorkerEnabled(cfg, ro.TaskType) {
		wcfg := config.GetWorkerConfig(cfg, ro.TaskType)
		handler := ro.NewHandler(
			&ro.Config{Timeout: config.GetDuration(wcfg.Timeout)},
			tracker, resultStore, log,
		)
		startWorker(zeebeClient, ro.TaskType, wcfg, handler.Handle, zapLog)
	}

	zapLog.Info("All workers registered successfully")

	// --- Health & metrics server ---
	go func() {
		http.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{
				"status": "healthy",
				"time":   time.Now().Format(time.RFC3339),
			})
		})
		http.Handle("/metrics", promhttp.Handler())
		zapLog.Info("Health/Metrics server listening", zap.String("address", cfg.Metrics.ListenAddress))
		if err := http.ListenAndServe(cfg.Metrics.ListenAddress, nil); err != nil {
			zapLog.Error("Health/Metrics server failed", zap.Error(err))
		}
	}()

	// --- Graceful shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, stopping workers...")

	cronCtx := cronRunner.Stop()
	select {
	case <-cronCtx.Done():
	case <-time.After(30 * time.Second):
		zapLog.Warn("training cycle still running at shutdown deadline")
	}

	if err := zeebeClient.Close(); err != nil {
		zapLog.Error("Error closing Zeebe client", zap.Error(err))
	}

	zapLog.Info("Worker manager stopped gracefully")
}

func startWorker(client zbc.Client, taskType string, wcfg config.WorkerConfig, handlerFunc func(worker.JobClient, entities.Job), log *zap.Logger) {
	if !wcfg.Enabled {
		log.Info("worker disabled", zap.String("taskType", taskType))
		return
	}

	client.NewJobWorker().
		JobType(taskType).
		Handler(handlerFunc).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(time.Duration(wcfg.Timeout) * time.Millisecond).
		Open()

	log.Info("worker started",
		zap.String("taskType", taskType),
		zap.Int("maxJobsActive", wcfg.MaxJobsActive),
		zap.Int("timeout_ms", wcfg.Timeout),
	)
}
