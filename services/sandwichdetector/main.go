package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/devansh0703/mev-bot-detector/common/config"
	"github.com/devansh0703/mev-bot-detector/common/core/dedup"
	"github.com/devansh0703/mev-bot-detector/common/core/detector"
	"github.com/devansh0703/mev-bot-detector/common/core/publisher"
	"github.com/devansh0703/mev-bot-detector/common/core/validator"
	"github.com/devansh0703/mev-bot-detector/common/external/mempool"
	"github.com/devansh0703/mev-bot-detector/common/external/subgraphclient"
	"github.com/devansh0703/mev-bot-detector/common/logging"
	"github.com/devansh0703/mev-bot-detector/common/periphery/redisdb"
	"github.com/devansh0703/mev-bot-detector/services/sandwichdetector/src/supervisor"
)

// historicalActivityEndpoint is the fixed historical-activity subgraph
// endpoint C4 consults; not exposed via environment, per the external
// interfaces contract.
const historicalActivityEndpoint = "https://api.thegraph.com/subgraphs/name/uniswap/uniswap-v2"

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		panic(err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	redisDB, err := redisdb.New(redisdb.RedisDatabaseConfig{RedisURL: cfg.RedisURL}, logger)
	if err != nil {
		logger.Fatal("unable to init redis client", zap.Error(err))
	}
	rdb, err := redisDB.GetDB()
	if err != nil {
		logger.Fatal("unable to get redis client", zap.Error(err))
	}

	subscriber, err := mempool.New(cfg.WSSURL, logger)
	if err != nil {
		logger.Fatal("unable to init mempool subscriber", zap.Error(err))
	}

	det, err := detector.New()
	if err != nil {
		logger.Fatal("unable to init detector", zap.Error(err))
	}

	dd, err := dedup.New(rdb, 0, logger)
	if err != nil {
		logger.Fatal("unable to init deduplicator", zap.Error(err))
	}

	subgraph, err := subgraphclient.New(historicalActivityEndpoint)
	if err != nil {
		logger.Fatal("unable to init subgraph client", zap.Error(err))
	}
	val, err := validator.New(subgraph, 0, logger)
	if err != nil {
		logger.Fatal("unable to init validator", zap.Error(err))
	}

	pub, err := publisher.New(cfg.KafkaBroker, cfg.KafkaTopic, logger)
	if err != nil {
		logger.Fatal("unable to init publisher", zap.Error(err))
	}

	sup := supervisor.New(
		supervisor.Config{BatchSize: cfg.BatchSize, BatchInterval: cfg.BatchInterval},
		logger,
		subscriber,
		det,
		dd,
		val,
		pub,
		redisDB,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("sandwich detector starting",
		zap.Int("batch_size", cfg.BatchSize),
		zap.Duration("batch_interval", cfg.BatchInterval),
		zap.String("kafka_topic", cfg.KafkaTopic),
	)

	if err := sup.Run(ctx); err != nil {
		logger.Error("pipeline exited with error", zap.Error(err))
		os.Exit(1)
	}

	logger.Info("sandwich detector exited cleanly")
}
