// The projector consumes the account event topic and maintains the
// reporting store. It runs separately from the ledger server so the
// read side can lag, restart and replay without touching the write
// side.
package main

import (
	"context"
	"database/sql"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/globalbank/bookentry/internal/config"
	"github.com/globalbank/bookentry/internal/readmodel"
	rmkafka "github.com/globalbank/bookentry/internal/readmodel/kafka"
	rmpg "github.com/globalbank/bookentry/internal/readmodel/postgres"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("loading config", zap.Error(err))
	}
	if len(cfg.KafkaBrokers) == 0 || cfg.PostgresDSN == "" {
		logger.Fatal("projector requires KAFKA_BROKERS and POSTGRES_DSN")
	}

	db, err := sql.Open("postgres", cfg.PostgresDSN)
	if err != nil {
		logger.Fatal("opening postgres", zap.Error(err))
	}
	defer db.Close()

	projector := readmodel.NewProjector(rmpg.NewPostgresReadModelStore(db), logger)
	consumer := rmkafka.NewConsumer(cfg.KafkaBrokers, cfg.KafkaTopic, cfg.KafkaGroupID, projector, logger)
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("starting projector",
		zap.String("topic", cfg.KafkaTopic),
		zap.String("group_id", cfg.KafkaGroupID))
	if err := consumer.Run(ctx); err != nil {
		logger.Fatal("consumer stopped", zap.Error(err))
	}
}
