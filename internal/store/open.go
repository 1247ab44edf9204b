package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/config"
	"github.com/JJKdiasdusen/StopAddiction-Beta/internal/logging"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Backend names accepted in store.backend.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
	BackendMongo    = "mongo"
)

// Open connects the configured backend and returns a ResponseStore over it.
func Open(ctx context.Context, log *zap.Logger, conf config.StoreConfig) (*ResponseStore, error) {
	backend, err := openBackend(ctx, log, conf)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", conf.Backend, err)
	}
	log.Info("Response store ready", zap.String("backend", conf.Backend), zap.String("key", conf.Key))
	return New(log, backend, conf.Key), nil
}

func openBackend(ctx context.Context, log *zap.Logger, conf config.StoreConfig) (Backend, error) {
	switch conf.Backend {
	case BackendMemory:
		return NewMemoryBackend(), nil

	case BackendFile, "":
		return NewFileBackend(conf.File.Dir)

	case BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     conf.Redis.Addr,
			Password: conf.Redis.Password,
			DB:       conf.Redis.DB,
		})
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, err
		}
		return NewRedisBackend(client), nil

	case BackendPostgres:
		db, err := gorm.Open(postgres.Open(conf.Database.DSN()), gormConfig(log))
		if err != nil {
			return nil, err
		}
		return NewGormBackend(db)

	case BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(conf.SQLite.Path), 0o755); err != nil {
			return nil, err
		}
		db, err := gorm.Open(sqlite.Open(conf.SQLite.Path), gormConfig(log))
		if err != nil {
			return nil, err
		}
		return NewGormBackend(db)

	case BackendMongo:
		client, err := mongo.Connect(ctx, options.Client().ApplyURI(conf.Mongo.URI))
		if err != nil {
			return nil, err
		}
		if err := client.Ping(ctx, nil); err != nil {
			client.Disconnect(context.Background())
			return nil, err
		}
		return NewMongoBackend(client, conf.Mongo.Database, conf.Mongo.Collection), nil
	}
	return nil, fmt.Errorf("unknown backend %q", conf.Backend)
}

func gormConfig(log *zap.Logger) *gorm.Config {
	return &gorm.Config{
		Logger: logging.NewGormLogger(log, gormlogger.Warn, 200*time.Millisecond),
	}
}
