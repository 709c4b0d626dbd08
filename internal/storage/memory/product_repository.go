package memory

import (
	"context"
	"sort"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type productRepositoryInMemory struct {
	store *Store
}

// checkReferences проверяет внешние ключи товара. Вызывать под блокировкой.
func (r *productRepositoryInMemory) checkReferences(p domain.Product) error {
	if _, ok := r.store.categories[p.CategoryID]; !ok {
		return domain.ErrInvalidReference
	}
	if _, ok := r.store.users[p.VendorID]; !ok {
		return domain.ErrInvalidReference
	}
	return nil
}

// Create присваивает товару ID и первую версию.
func (r *productRepositoryInMemory) Create(_ context.Context, product domain.Product) (domain.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := r.checkReferences(product); err != nil {
		return domain.Product{}, err
	}

	s.lastProductID++
	now := s.now()
	product.ID = s.lastProductID
	product.Version = 1
	product.CreatedAt = now
	product.UpdatedAt = now
	s.products[product.ID] = product
	return product, nil
}

// Get возвращает товар или ErrProductNotFound.
func (r *productRepositoryInMemory) Get(_ context.Context, id int64) (domain.Product, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return product, nil
}

// List возвращает товары, подходящие под фильтр, по возрастанию ID.
func (r *productRepositoryInMemory) List(_ context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]domain.Product, 0, len(s.products))
	for _, product := range s.products {
		if filter.Matches(product) {
			result = append(result, product)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// Save перезаписывает товар, проверяя версию (optimistic locking).
func (r *productRepositoryInMemory) Save(_ context.Context, product domain.Product) (domain.Product, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.products[product.ID]
	if !ok {
		return domain.Product{}, domain.ErrProductNotFound
	}
	if current.Version != product.Version {
		return domain.Product{}, domain.ErrVersionConflict
	}
	if err := r.checkReferences(product); err != nil {
		return domain.Product{}, err
	}

	product.Version++
	product.CreatedAt = current.CreatedAt
	product.UpdatedAt = s.now()
	s.products[product.ID] = product
	return product, nil
}

// Delete удаляет товар и позиции корзин, которые на него ссылаются.
func (r *productRepositoryInMemory) Delete(_ context.Context, id int64) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return domain.ErrProductNotFound
	}
	delete(s.products, id)

	for cartID, cart := range s.carts {
		kept := cart.Items[:0:0]
		for _, item := range cart.Items {
			if item.ProductID != id {
				kept = append(kept, item)
			}
		}
		if len(kept) != len(cart.Items) {
			cart.Items = kept
			s.carts[cartID] = cart
		}
	}
	return nil
}

var _ domain.ProductRepository = (*productRepositoryInMemory)(nil)
