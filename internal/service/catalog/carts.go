package catalog

import (
	"context"
	"fmt"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CreateCart сохраняет корзину, если покупатель и все товары существуют.
func (s *Service) CreateCart(ctx context.Context, draft domain.CartDraft) (domain.Cart, error) {
	errs := domain.NewValidationError()
	if err := checkReference(ctx, errs, "customer", draft.CustomerID, s.userExists); err != nil {
		return domain.Cart{}, err
	}
	for i, item := range draft.Items {
		field := fmt.Sprintf("items[%d].product", i)
		if err := checkReference(ctx, errs, field, item.ProductID, s.productExists); err != nil {
			return domain.Cart{}, err
		}
	}
	if err := errs.OrNil(); err != nil {
		return domain.Cart{}, err
	}

	created, err := s.carts.Create(ctx, domain.Cart{CustomerID: draft.CustomerID, Items: draft.Items})
	if err != nil {
		return domain.Cart{}, referenceRace(err)
	}

	s.metrics.RecordMutation(EntityCart, opCreate)
	s.logger.WithField("cart_id", created.ID).WithField("items", len(created.Items)).Info("cart created")
	return created, nil
}

func (s *Service) GetCart(ctx context.Context, id int64) (domain.Cart, error) {
	return s.carts.Get(ctx, id)
}
