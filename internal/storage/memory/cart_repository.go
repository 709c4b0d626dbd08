package memory

import (
	"context"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type cartRepositoryInMemory struct {
	store *Store
}

// Create сохраняет корзину, если покупатель и все товары существуют.
func (r *cartRepositoryInMemory) Create(_ context.Context, cart domain.Cart) (domain.Cart, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[cart.CustomerID]; !ok {
		return domain.Cart{}, domain.ErrInvalidReference
	}
	for _, item := range cart.Items {
		if _, ok := s.products[item.ProductID]; !ok {
			return domain.Cart{}, domain.ErrInvalidReference
		}
	}

	s.lastCartID++
	cart.ID = s.lastCartID
	cart.CreatedAt = s.now()
	// Храним копию позиций, чтобы вызывающий не мог изменить их снаружи.
	cart.Items = cloneItems(cart.Items)
	s.carts[cart.ID] = cart
	cart.Items = cloneItems(cart.Items)
	return cart, nil
}

func (r *cartRepositoryInMemory) Get(_ context.Context, id int64) (domain.Cart, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	cart, ok := s.carts[id]
	if !ok {
		return domain.Cart{}, domain.ErrCartNotFound
	}
	cart.Items = cloneItems(cart.Items)
	return cart, nil
}

var _ domain.CartRepository = (*cartRepositoryInMemory)(nil)
