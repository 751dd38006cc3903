package bootstrap

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"communique-chatbot/internal/ai"
	"communique-chatbot/internal/config"
	"communique-chatbot/internal/model"
	"communique-chatbot/internal/pkg/logging"
	mysqlClient "communique-chatbot/internal/platform/mysql"
	rabbitmqClient "communique-chatbot/internal/platform/rabbitmq"
	redisClient "communique-chatbot/internal/platform/redis"
	"communique-chatbot/internal/repository"
	"communique-chatbot/internal/vectorindex/pinecone"
	"communique-chatbot/internal/worker"
)

type App struct {
	Config       *config.Config
	Logger       *zap.Logger
	MySQL        *gorm.DB
	Redis        *redis.Client
	MQConn       *amqp.Connection
	AIClient     *ai.Client
	VectorIndex  *pinecone.Client
	IngestWorker *worker.IngestWorker

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	logger := logging.New(cfg.App.Env)

	mysqlDB, err := mysqlClient.New(ctx, cfg.MySQLDSN())
	if err != nil {
		return nil, err
	}
	if err := mysqlDB.AutoMigrate(&model.User{}, &model.Document{}, &model.ConversationTurn{}); err != nil {
		return nil, fmt.Errorf("auto migrate tables failed: %w", err)
	}

	redisCli, err := redisClient.New(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, err
	}

	mqConn, err := rabbitmqClient.New(cfg.RabbitMQ.URL)
	if err != nil {
		return nil, err
	}

	aiClient := ai.NewClient(ai.Config{
		APIKey:         cfg.OpenAI.APIKey,
		BaseURL:        cfg.OpenAI.BaseURL,
		ChatModel:      cfg.OpenAI.ChatModel,
		EmbeddingModel: cfg.OpenAI.EmbeddingModel,
		Temperature:    float32(cfg.OpenAI.Temperature),
	})

	vectorIndex := pinecone.NewClient(pinecone.Config{
		Host:      cfg.Pinecone.Host,
		APIKey:    cfg.Pinecone.APIKey,
		Namespace: cfg.Pinecone.Namespace,
	})

	docRepo := repository.NewDocumentRepository(mysqlDB)
	processor := worker.NewProcessor(aiClient, vectorIndex, docRepo, worker.ProcessorConfig{
		ChunkSize:      cfg.Ingest.ChunkSize,
		ChunkOverlap:   cfg.Ingest.ChunkOverlap,
		MinTextLength:  cfg.Ingest.MinTextLength,
		EmbedBatchSize: cfg.Ingest.EmbedBatchSize,
	}, logger)

	ingestWorker := worker.NewIngestWorker(mqConn, processor, cfg.RabbitMQ.IngestQueue, logger)
	if err := ingestWorker.Start(ctx); err != nil {
		return nil, fmt.Errorf("start ingest worker failed: %w", err)
	}

	return &App{
		Config:       cfg,
		Logger:       logger,
		MySQL:        mysqlDB,
		Redis:        redisCli,
		MQConn:       mqConn,
		AIClient:     aiClient,
		VectorIndex:  vectorIndex,
		IngestWorker: ingestWorker,
		StartedAt:    time.Now(),
	}, nil
}

func (a *App) Close() error {
	var closeErr error
	if a.IngestWorker != nil {
		a.IngestWorker.Close()
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	if a.Logger != nil {
		_ = a.Logger.Sync()
	}
	return closeErr
}
