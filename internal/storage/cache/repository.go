package cache

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// ProductCache описывает операции кэша, нужные репозиторию.
type ProductCache interface {
	Get(ctx context.Context, id int64) (domain.Product, error)
	Reserve(ctx context.Context, id int64) (string, error)
	Fill(ctx context.Context, p domain.Product, token string) (bool, error)
	Delete(ctx context.Context, id int64) error
}

// CachedProductRepository читает товары через кэш и сбрасывает запись
// после каждого изменения. Ошибки Redis не ломают запрос: они логируются,
// а чтение уходит в основное хранилище.
type CachedProductRepository struct {
	next    domain.ProductRepository
	cache   ProductCache
	metrics *metrics.CatalogMetrics
	log     *logrus.Entry
}

// NewCachedProductRepository оборачивает репозиторий товаров кэшем.
func NewCachedProductRepository(
	next domain.ProductRepository,
	cache ProductCache,
	m *metrics.CatalogMetrics,
	logger *logrus.Entry,
) *CachedProductRepository {
	if logger == nil {
		logger = logrus.NewEntry(logrus.StandardLogger())
	}
	return &CachedProductRepository{
		next:    next,
		cache:   cache,
		metrics: m,
		log:     logger.WithField("component", "product-cache"),
	}
}

func (r *CachedProductRepository) Create(ctx context.Context, product domain.Product) (domain.Product, error) {
	return r.next.Create(ctx, product)
}

// Get сначала смотрит в кэш, при промахе читает хранилище и заполняет кэш.
// Метка заполнения берётся до чтения хранилища: если между чтением и
// заполнением товар изменили, инвалидация снимет метку и старая версия
// в кэш не попадёт.
func (r *CachedProductRepository) Get(ctx context.Context, id int64) (domain.Product, error) {
	product, err := r.cache.Get(ctx, id)
	if err == nil {
		r.metrics.RecordCacheLookup(metrics.ResultHit)
		return product, nil
	}
	if errors.Is(err, ErrCacheMiss) {
		r.metrics.RecordCacheLookup(metrics.ResultMiss)
	} else {
		r.metrics.RecordCacheLookup(metrics.ResultError)
		r.log.WithError(err).WithField("product_id", id).Warn("cache read failed")
	}

	token, reserveErr := r.cache.Reserve(ctx, id)
	if reserveErr != nil {
		r.log.WithError(reserveErr).WithField("product_id", id).Warn("cache reserve failed")
	}

	product, err = r.next.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if reserveErr != nil {
		return product, nil
	}

	stored, err := r.cache.Fill(ctx, product, token)
	switch {
	case err != nil:
		r.log.WithError(err).WithField("product_id", id).Warn("cache fill failed")
	case !stored:
		r.log.WithField("product_id", id).Debug("cache fill skipped, product changed during read")
	}
	return product, nil
}

func (r *CachedProductRepository) List(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	return r.next.List(ctx, filter)
}

func (r *CachedProductRepository) Save(ctx context.Context, product domain.Product) (domain.Product, error) {
	updated, err := r.next.Save(ctx, product)
	r.invalidate(ctx, product.ID)
	return updated, err
}

func (r *CachedProductRepository) Delete(ctx context.Context, id int64) error {
	err := r.next.Delete(ctx, id)
	r.invalidate(ctx, id)
	return err
}

// invalidate сбрасывает запись даже при ошибке записи: версия в кэше могла устареть.
func (r *CachedProductRepository) invalidate(ctx context.Context, id int64) {
	if err := r.cache.Delete(ctx, id); err != nil {
		r.log.WithError(err).WithField("product_id", id).Warn("cache invalidation failed")
	}
}

var _ domain.ProductRepository = (*CachedProductRepository)(nil)
