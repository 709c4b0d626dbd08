package catalog

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/projection"
)

func (s *Service) ListCategories(ctx context.Context) ([]domain.Category, error) {
	categories, err := s.categories.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}

func (s *Service) GetCategory(ctx context.Context, id int64) (domain.Category, error) {
	return s.categories.Get(ctx, id)
}

func (s *Service) CreateCategory(ctx context.Context, draft domain.CategoryDraft) (domain.Category, error) {
	created, err := s.categories.Create(ctx, draft.Apply(domain.Category{}))
	if err != nil {
		return domain.Category{}, err
	}

	s.metrics.RecordMutation(EntityCategory, opCreate)
	s.logger.WithField("category_id", created.ID).Info("category created")
	s.publish(ctx, domain.EventCategoryCreated, EntityCategory, created.ID, projection.NewCategoryView(created))
	return created, nil
}

// UpdateCategory меняет имя одной категории, найденной по id.
func (s *Service) UpdateCategory(ctx context.Context, id int64, draft domain.CategoryDraft) (domain.Category, error) {
	current, err := s.categories.Get(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}

	updated, err := s.categories.Save(ctx, draft.Apply(current))
	if err != nil {
		return domain.Category{}, err
	}

	s.metrics.RecordMutation(EntityCategory, opUpdate)
	s.logger.WithField("category_id", id).Info("category updated")
	s.publish(ctx, domain.EventCategoryUpdated, EntityCategory, id, projection.NewCategoryView(updated))
	return updated, nil
}

// DeleteCategory удаляет пустую категорию и возвращает её прежнее состояние.
// Если в категории есть товары, возвращается domain.ErrCategoryInUse.
func (s *Service) DeleteCategory(ctx context.Context, id int64) (domain.Category, error) {
	category, err := s.categories.Get(ctx, id)
	if err != nil {
		return domain.Category{}, err
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return domain.Category{}, err
	}

	s.metrics.RecordMutation(EntityCategory, opDelete)
	s.logger.WithField("category_id", id).Info("category deleted")
	s.publish(ctx, domain.EventCategoryDeleted, EntityCategory, id, projection.NewCategoryView(category))
	return category, nil
}
