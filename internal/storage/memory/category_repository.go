package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type categoryRepositoryInMemory struct {
	store *Store
}

func (r *categoryRepositoryInMemory) Create(_ context.Context, category domain.Category) (domain.Category, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastCategoryID++
	now := s.now()
	category.ID = s.lastCategoryID
	category.Version = 1
	category.CreatedAt = now
	category.UpdatedAt = now
	s.categories[category.ID] = category
	return category, nil
}

func (r *categoryRepositoryInMemory) Get(_ context.Context, id int64) (domain.Category, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	category, ok := s.categories[id]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	return category, nil
}

func (r *categoryRepositoryInMemory) List(_ context.Context) ([]domain.Category, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Category, 0, len(s.categories))
	for _, category := range s.categories {
		result = append(result, category)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Save обновляет одну категорию с проверкой версии.
func (r *categoryRepositoryInMemory) Save(_ context.Context, category domain.Category) (domain.Category, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.categories[category.ID]
	if !ok {
		return domain.Category{}, domain.ErrCategoryNotFound
	}
	if current.Version != category.Version {
		return domain.Category{}, domain.ErrVersionConflict
	}

	category.Version++
	category.CreatedAt = current.CreatedAt
	category.UpdatedAt = s.now()
	s.categories[category.ID] = category
	return category, nil
}

// Delete отказывает, пока в категории есть товары.
func (r *categoryRepositoryInMemory) Delete(_ context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.categories[id]; !ok {
		return domain.ErrCategoryNotFound
	}
	for _, product := range s.products {
		if product.CategoryID == id {
			return domain.ErrCategoryInUse
		}
	}
	delete(s.categories, id)
	return nil
}

var _ domain.CategoryRepository = (*categoryRepositoryInMemory)(nil)
