package catalog

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vladislavdragonenkov/storefront/internal/access"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
	"github.com/vladislavdragonenkov/storefront/internal/storage/memory"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.CatalogEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, event domain.CatalogEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Type)
	}
	return out
}

type env struct {
	svc      *Service
	store    *memory.Store
	events   *recordingPublisher
	registry *prometheus.Registry
	vendor   domain.User
	other    domain.User
	category domain.Category
}

func newEnv(t *testing.T) env {
	t.Helper()
	ctx := context.Background()

	store := memory.NewStore()
	events := &recordingPublisher{}
	registry := prometheus.NewRegistry()
	m := metrics.NewCatalogMetricsWithRegisterer(registry)
	logger := log.New()
	logger.SetLevel(log.PanicLevel)

	svc := New(Dependencies{
		Products:   store.Products(),
		Categories: store.Categories(),
		Carts:      store.Carts(),
		Users:      store.Users(),
		Events:     events,
		Metrics:    m,
		Logger:     logger.WithField("component", "catalog-test"),
	})

	vendor, err := svc.CreateUser(ctx, domain.UserDraft{Username: "vendor", IsVendor: true})
	require.NoError(t, err)
	other, err := svc.CreateUser(ctx, domain.UserDraft{Username: "other", IsVendor: true})
	require.NoError(t, err)
	category, err := svc.CreateCategory(ctx, domain.CategoryDraft{Name: "Books"})
	require.NoError(t, err)

	return env{svc: svc, store: store, events: events, registry: registry, vendor: vendor, other: other, category: category}
}

// counterValue ищет значение счётчика с заданными метками в реестре.
func (e env) counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := e.registry.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != name {
			continue
		}
	metricLoop:
		for _, metric := range family.GetMetric() {
			for _, pair := range metric.GetLabel() {
				if labels[pair.GetName()] != pair.GetValue() {
					continue metricLoop
				}
			}
			return metric.GetCounter().GetValue()
		}
	}
	return 0
}

func (e env) draft(name string) domain.ProductDraft {
	return domain.ProductDraft{
		Name:        name,
		Description: "description",
		Price:       decimal.RequireFromString("9.99"),
		CategoryID:  e.category.ID,
		VendorID:    e.vendor.ID,
	}
}

func TestCreateProduct_PublishesEvent(t *testing.T) {
	e := newEnv(t)

	created, err := e.svc.CreateProduct(context.Background(), e.draft("Go"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), created.ID)

	assert.Equal(t, []domain.EventType{domain.EventCategoryCreated, domain.EventProductCreated}, e.events.types())
	assert.Equal(t, 1.0, e.counterValue(t, "shop_catalog_mutations_total", map[string]string{"entity": EntityProduct, "operation": opCreate}))
}

func TestCreateProduct_UnresolvedReferences(t *testing.T) {
	e := newEnv(t)
	draft := e.draft("Go")
	draft.CategoryID = 50
	draft.VendorID = 60

	_, err := e.svc.CreateProduct(context.Background(), draft)

	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, map[string][]string{
		"category": {`Invalid pk "50" - object does not exist.`},
		"vendor":   {`Invalid pk "60" - object does not exist.`},
	}, verr.Fields)

	products, err := e.svc.ListProducts(context.Background(), domain.ProductFilter{})
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductForUpdate_AccessRules(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	created, err := e.svc.CreateProduct(ctx, e.draft("Go"))
	require.NoError(t, err)

	tests := []struct {
		name     string
		caller   access.Caller
		wantRule string
	}{
		{name: "owner", caller: access.FromUser(e.vendor)},
		{name: "anonymous", caller: access.Anonymous(), wantRule: "is_vendor"},
		{name: "non vendor", caller: access.Caller{ID: e.vendor.ID}, wantRule: "is_vendor"},
		{name: "other vendor", caller: access.FromUser(e.other), wantRule: "is_owner_or_read_only"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			product, err := e.svc.ProductForUpdate(ctx, tt.caller, created.ID)
			if tt.wantRule == "" {
				require.NoError(t, err)
				assert.Equal(t, created.ID, product.ID)
				return
			}
			require.ErrorIs(t, err, domain.ErrAccessDenied)
			var denied *access.DeniedError
			require.ErrorAs(t, err, &denied)
			assert.Equal(t, tt.wantRule, denied.Rule)
		})
	}

	assert.Equal(t, 2.0, e.counterValue(t, "shop_access_denied_total", map[string]string{"entity": EntityProduct, "rule": "is_vendor"}))

	_, err = e.svc.ProductForUpdate(ctx, access.FromUser(e.vendor), 999)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestReplaceProduct(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	created, err := e.svc.CreateProduct(ctx, e.draft("Go"))
	require.NoError(t, err)

	current, err := e.svc.ProductForUpdate(ctx, access.FromUser(e.vendor), created.ID)
	require.NoError(t, err)

	draft := e.draft("Go, second edition")
	draft.Price = decimal.RequireFromString("15")
	updated, err := e.svc.ReplaceProduct(ctx, current, draft)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "Go, second edition", updated.Name)
	assert.True(t, updated.Price.Equal(decimal.NewFromInt(15)))

	// Повторная замена по устаревшей версии конфликтует.
	_, err = e.svc.ReplaceProduct(ctx, current, draft)
	assert.ErrorIs(t, err, domain.ErrVersionConflict)

	// Неизвестная категория даёт ошибку поля, состояние не меняется.
	bad := e.draft("bad")
	bad.CategoryID = 77
	_, err = e.svc.ReplaceProduct(ctx, updated, bad)
	_, ok := domain.AsValidation(err)
	assert.True(t, ok)

	stored, err := e.svc.GetProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Go, second edition", stored.Name)
}

func TestDeleteProduct_ReturnsPriorState(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	created, err := e.svc.CreateProduct(ctx, e.draft("Go"))
	require.NoError(t, err)

	deleted, err := e.svc.DeleteProduct(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, deleted.Name)

	_, err = e.svc.GetProduct(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = e.svc.DeleteProduct(ctx, created.ID)
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	assert.Contains(t, e.events.types(), domain.EventProductDeleted)
}

func TestPublishFailureDoesNotFailMutation(t *testing.T) {
	e := newEnv(t)
	e.events.err = errors.New("broker down")

	created, err := e.svc.CreateProduct(context.Background(), e.draft("Go"))
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
}

func TestCategories(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	second, err := e.svc.CreateCategory(ctx, domain.CategoryDraft{Name: "Pens"})
	require.NoError(t, err)

	updated, err := e.svc.UpdateCategory(ctx, second.ID, domain.CategoryDraft{Name: "Pencils"})
	require.NoError(t, err)
	assert.Equal(t, "Pencils", updated.Name)

	first, err := e.svc.GetCategory(ctx, e.category.ID)
	require.NoError(t, err)
	assert.Equal(t, "Books", first.Name, "update must touch a single row")

	_, err = e.svc.UpdateCategory(ctx, 404, domain.CategoryDraft{Name: "x"})
	assert.ErrorIs(t, err, domain.ErrCategoryNotFound)

	_, err = e.svc.CreateProduct(ctx, e.draft("Go"))
	require.NoError(t, err)
	_, err = e.svc.DeleteCategory(ctx, e.category.ID)
	assert.ErrorIs(t, err, domain.ErrCategoryInUse)

	deleted, err := e.svc.DeleteCategory(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Pencils", deleted.Name)

	all, err := e.svc.ListCategories(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestCreateCart(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	product, err := e.svc.CreateProduct(ctx, e.draft("Go"))
	require.NoError(t, err)

	cart, err := e.svc.CreateCart(ctx, domain.CartDraft{
		CustomerID: e.other.ID,
		Items:      []domain.CartItem{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)

	stored, err := e.svc.GetCart(ctx, cart.ID)
	require.NoError(t, err)
	assert.Equal(t, []domain.CartItem{{ProductID: product.ID, Quantity: 2}}, stored.Items)

	_, err = e.svc.CreateCart(ctx, domain.CartDraft{
		CustomerID: 99,
		Items:      []domain.CartItem{{ProductID: product.ID, Quantity: 1}, {ProductID: 42, Quantity: 1}},
	})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, map[string][]string{
		"customer":         {`Invalid pk "99" - object does not exist.`},
		"items[1].product": {`Invalid pk "42" - object does not exist.`},
	}, verr.Fields)
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	e := newEnv(t)

	_, err := e.svc.CreateUser(context.Background(), domain.UserDraft{Username: "vendor"})
	verr, ok := domain.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{msgUsernameTaken}, verr.Fields["username"])
}
