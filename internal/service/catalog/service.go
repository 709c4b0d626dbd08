// Package catalog реализует операции над товарами, категориями, корзинами и
// пользователями поверх доменных репозиториев: проверку ссылок, правила
// доступа, сохранение с контролем версии и публикацию событий.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/access"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/metrics"
)

// Имена сущностей в событиях, метриках и логах.
const (
	EntityProduct  = "product"
	EntityCategory = "category"
	EntityCart     = "cart"
	EntityUser     = "user"
)

// Операции для метрик изменений.
const (
	opCreate = "create"
	opUpdate = "update"
	opDelete = "delete"
)

// Сообщения о ссылках на несуществующие записи.
const (
	msgReferenceRace = "Referenced object no longer exists."
	msgUsernameTaken = "A user with that username already exists."
)

// Dependencies — зависимости сервиса. Events и Metrics необязательны.
type Dependencies struct {
	Products   domain.ProductRepository
	Categories domain.CategoryRepository
	Carts      domain.CartRepository
	Users      domain.UserRepository
	Events     domain.EventPublisher
	Metrics    *metrics.CatalogMetrics
	Logger     *log.Entry
}

// Service реализует прикладной слой каталога.
type Service struct {
	products   domain.ProductRepository
	categories domain.CategoryRepository
	carts      domain.CartRepository
	users      domain.UserRepository
	events     domain.EventPublisher
	metrics    *metrics.CatalogMetrics
	logger     *log.Entry
	now        func() time.Time

	productUpdateRules []access.Rule[domain.Product]
}

// ProductUpdateRules возвращает правила, которые проверяются перед изменением товара.
func ProductUpdateRules() []access.Rule[domain.Product] {
	return []access.Rule[domain.Product]{
		{Name: "is_vendor", Check: access.IsVendor[domain.Product]},
		{Name: "is_owner_or_read_only", Check: access.IsOwnerOrReadOnly[domain.Product]},
	}
}

// New собирает сервис из зависимостей.
func New(deps Dependencies) *Service {
	logger := deps.Logger
	if logger == nil {
		logger = log.New().WithField("component", "catalog")
	}
	return &Service{
		products:           deps.Products,
		categories:         deps.Categories,
		carts:              deps.Carts,
		users:              deps.Users,
		events:             deps.Events,
		metrics:            deps.Metrics,
		logger:             logger,
		now:                time.Now,
		productUpdateRules: ProductUpdateRules(),
	}
}

// publish отправляет событие после успешной записи. Ошибка брокера только
// логируется: изменение уже сохранено и запрос не должен из-за неё падать.
func (s *Service) publish(ctx context.Context, eventType domain.EventType, entity string, id int64, payload any) {
	if s.events == nil {
		return
	}
	event := domain.CatalogEvent{
		Type:       eventType,
		Entity:     entity,
		EntityID:   id,
		Payload:    payload,
		OccurredAt: s.now().UTC(),
	}
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.WithError(err).WithFields(log.Fields{
			"event_type": eventType,
			"entity_id":  id,
		}).Warn("failed to publish catalog event")
	}
}

// referenceLookup проверяет существование записи; отсутствие возвращается как NotFound.
type referenceLookup func(ctx context.Context, id int64) error

// checkReference добавляет ошибку поля, если запись не найдена.
// Остальные ошибки хранилища возвращаются как есть.
func checkReference(ctx context.Context, errs *domain.ValidationError, field string, id int64, lookup referenceLookup) error {
	err := lookup(ctx, id)
	switch {
	case err == nil:
		return nil
	case domain.IsNotFound(err):
		errs.Add(field, fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", id))
		return nil
	default:
		return fmt.Errorf("resolve %s: %w", field, err)
	}
}

func (s *Service) categoryExists(ctx context.Context, id int64) error {
	_, err := s.categories.Get(ctx, id)
	return err
}

func (s *Service) userExists(ctx context.Context, id int64) error {
	_, err := s.users.Get(ctx, id)
	return err
}

func (s *Service) productExists(ctx context.Context, id int64) error {
	_, err := s.products.Get(ctx, id)
	return err
}

// referenceRace переводит нарушение внешнего ключа при записи (ссылку удалили
// между проверкой и сохранением) в ошибку валидации.
func referenceRace(err error) error {
	if errors.Is(err, domain.ErrInvalidReference) {
		verr := domain.NewValidationError()
		verr.Add(domain.NonFieldErrors, msgReferenceRace)
		return verr
	}
	return err
}
