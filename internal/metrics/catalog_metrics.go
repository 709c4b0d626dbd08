package metrics

import "github.com/prometheus/client_golang/prometheus"

// Результаты для счётчиков событий и кэша.
const (
	ResultOK    = "ok"
	ResultError = "error"
	ResultHit   = "hit"
	ResultMiss  = "miss"
)

// CatalogMetrics содержит бизнес-метрики каталога.
type CatalogMetrics struct {
	mutations    *prometheus.CounterVec
	denials      *prometheus.CounterVec
	events       *prometheus.CounterVec
	cacheLookups *prometheus.CounterVec
}

// NewCatalogMetrics регистрирует метрики в глобальном реестре.
func NewCatalogMetrics() *CatalogMetrics {
	return NewCatalogMetricsWithRegisterer(prometheus.DefaultRegisterer)
}

// NewCatalogMetricsWithRegisterer регистрирует метрики в переданном реестре.
func NewCatalogMetricsWithRegisterer(registerer prometheus.Registerer) *CatalogMetrics {
	return &CatalogMetrics{
		mutations: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_catalog_mutations_total",
			Help: "Total number of persisted catalogue mutations",
		}, []string{"entity", "operation"}),
		denials: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_access_denied_total",
			Help: "Total number of operations rejected by access predicates",
		}, []string{"entity", "rule"}),
		events: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_catalog_events_total",
			Help: "Total number of catalogue events handed to the publisher",
		}, []string{"result"}),
		cacheLookups: registerCounterVec(registerer, prometheus.CounterOpts{
			Name: "shop_product_cache_lookups_total",
			Help: "Product cache lookups by result",
		}, []string{"result"}),
	}
}

// RecordMutation увеличивает счётчик изменений сущности.
func (m *CatalogMetrics) RecordMutation(entity, operation string) {
	if m == nil {
		return
	}
	m.mutations.WithLabelValues(entity, operation).Inc()
}

// RecordDenied увеличивает счётчик отказов доступа.
func (m *CatalogMetrics) RecordDenied(entity, rule string) {
	if m == nil {
		return
	}
	m.denials.WithLabelValues(entity, rule).Inc()
}

// RecordEvent фиксирует результат публикации события.
func (m *CatalogMetrics) RecordEvent(result string) {
	if m == nil {
		return
	}
	m.events.WithLabelValues(result).Inc()
}

// RecordCacheLookup фиксирует попадание или промах кэша товаров.
func (m *CatalogMetrics) RecordCacheLookup(result string) {
	if m == nil {
		return
	}
	m.cacheLookups.WithLabelValues(result).Inc()
}
