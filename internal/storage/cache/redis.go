package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// DefaultTTL — базовое время жизни записи без учёта джиттера.
const DefaultTTL = 15 * time.Minute

const maxJitterMinutes = 5

// fillLeaseTTL ограничивает жизнь метки заполнения, если читатель не дошёл до Fill.
const fillLeaseTTL = 10 * time.Second

// fillScript записывает товар, только если метка заполнения не сменилась
// и не была удалена инвалидацией.
var fillScript = redis.NewScript(`
if redis.call("GET", KEYS[2]) ~= ARGV[1] then
	return 0
end
redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
redis.call("DEL", KEYS[2])
return 1
`)

// cachedProduct хранится в Redis как JSON.
type cachedProduct struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Price       string    `json:"price"`
	CategoryID  int64     `json:"category_id"`
	VendorID    int64     `json:"vendor_id"`
	Version     int64     `json:"version"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RedisCache хранит товары по ключу product:{id}.
type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

// NewRedisCache создаёт кэш; ttl<=0 заменяется на DefaultTTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{client: client, baseTTL: ttl}
}

func (r *RedisCache) Get(ctx context.Context, id int64) (domain.Product, error) {
	data, err := r.client.Get(ctx, cacheKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Product{}, ErrCacheMiss
	}
	if err != nil {
		return domain.Product{}, fmt.Errorf("redis get failed: %w", err)
	}

	var cached cachedProduct
	if err := json.Unmarshal(data, &cached); err != nil {
		return domain.Product{}, fmt.Errorf("unmarshal product failed: %w", err)
	}
	price, err := decimal.NewFromString(cached.Price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse cached price failed: %w", err)
	}

	return domain.Product{
		ID:          cached.ID,
		Name:        cached.Name,
		Description: cached.Description,
		Price:       price,
		CategoryID:  cached.CategoryID,
		VendorID:    cached.VendorID,
		Version:     cached.Version,
		CreatedAt:   cached.CreatedAt,
		UpdatedAt:   cached.UpdatedAt,
	}, nil
}

// Reserve выдаёт метку заполнения перед чтением хранилища. Delete снимает
// метку, поэтому Fill с устаревшей меткой ничего не запишет.
func (r *RedisCache) Reserve(ctx context.Context, id int64) (string, error) {
	token := uuid.NewString()
	if err := r.client.Set(ctx, fillKey(id), token, fillLeaseTTL).Err(); err != nil {
		return "", fmt.Errorf("redis reserve failed: %w", err)
	}
	return token, nil
}

// Fill кладёт товар с TTL = base + случайный джиттер до пяти минут,
// чтобы записи не истекали одновременно. Возвращает false, если метка
// уже не действительна.
func (r *RedisCache) Fill(ctx context.Context, p domain.Product, token string) (bool, error) {
	data, err := json.Marshal(cachedProduct{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price.String(),
		CategoryID:  p.CategoryID,
		VendorID:    p.VendorID,
		Version:     p.Version,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	})
	if err != nil {
		return false, fmt.Errorf("marshal product failed: %w", err)
	}

	ttl := r.baseTTL + time.Duration(rand.Intn(maxJitterMinutes))*time.Minute
	stored, err := fillScript.Run(ctx, r.client,
		[]string{cacheKey(p.ID), fillKey(p.ID)},
		token, data, ttl.Milliseconds(),
	).Int()
	if err != nil {
		return false, fmt.Errorf("redis fill failed: %w", err)
	}
	return stored == 1, nil
}

func (r *RedisCache) Delete(ctx context.Context, id int64) error {
	if err := r.client.Del(ctx, cacheKey(id), fillKey(id)).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

// Ping проверяет доступность Redis для readiness-проб.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func cacheKey(id int64) string {
	return "product:" + strconv.FormatInt(id, 10)
}

func fillKey(id int64) string {
	return cacheKey(id) + ":fill"
}
