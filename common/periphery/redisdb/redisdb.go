package redisdb

import (
	"errors"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

type RedisDatabaseConfig struct {
	RedisURL string
}

type RedisDatabase struct {
	rdb *redis.Client
}

func (d *RedisDatabase) GetDB() (*redis.Client, error) {
	if d.rdb == nil {
		return nil, errors.New("redis database uninitialized")
	}

	return d.rdb, nil
}

func (d *RedisDatabase) Close() error {
	if d.rdb == nil {
		return nil
	}
	return d.rdb.Close()
}

func New(config RedisDatabaseConfig, logger *zap.Logger) (*RedisDatabase, error) {
	opts, err := redis.ParseURL(config.RedisURL)
	if err != nil {
		return nil, err
	}

	logger.Info("connecting to redis", zap.String("addr", opts.Addr))
	rdb := redis.NewClient(opts)

	return &RedisDatabase{
		rdb: rdb,
	}, nil
}
