package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/storage/cache"
)

const redisConnectTimeout = 3 * time.Second

// initProductCache подключается к Redis. Пустой адрес отключает кэш.
func initProductCache(ctx context.Context, addr string, ttl time.Duration, logger *log.Entry) (*cache.RedisCache, *redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, nil, nil
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	pingCtx, cancel := context.WithTimeout(ctx, redisConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, fmt.Errorf("connect to redis %s: %w", addr, err)
	}

	logger.WithFields(log.Fields{"addr": addr, "ttl": ttl}).Info("product cache enabled")
	return cache.NewRedisCache(client, ttl), client, nil
}
