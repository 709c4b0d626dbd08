package catalog

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/vladislavdragonenkov/storefront/internal/access"
	"github.com/vladislavdragonenkov/storefront/internal/domain"
	"github.com/vladislavdragonenkov/storefront/internal/projection"
)

// ListProducts возвращает товары, прошедшие фильтр, по возрастанию ID.
func (s *Service) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	products, err := s.products.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// GetProduct возвращает товар или domain.ErrProductNotFound.
func (s *Service) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return s.products.Get(ctx, id)
}

func (s *Service) resolveProductReferences(ctx context.Context, draft domain.ProductDraft) error {
	errs := domain.NewValidationError()
	if err := checkReference(ctx, errs, "category", draft.CategoryID, s.categoryExists); err != nil {
		return err
	}
	if err := checkReference(ctx, errs, "vendor", draft.VendorID, s.userExists); err != nil {
		return err
	}
	return errs.OrNil()
}

// CreateProduct проверяет ссылки и сохраняет новый товар.
func (s *Service) CreateProduct(ctx context.Context, draft domain.ProductDraft) (domain.Product, error) {
	if err := s.resolveProductReferences(ctx, draft); err != nil {
		return domain.Product{}, err
	}

	created, err := s.products.Create(ctx, draft.Apply(domain.Product{}))
	if err != nil {
		return domain.Product{}, referenceRace(err)
	}

	s.metrics.RecordMutation(EntityProduct, opCreate)
	s.logger.WithFields(log.Fields{
		"product_id": created.ID,
		"vendor_id":  created.VendorID,
	}).Info("product created")
	s.publish(ctx, domain.EventProductCreated, EntityProduct, created.ID, projection.NewProductView(created))
	return created, nil
}

// ProductForUpdate загружает товар и проверяет, что caller может его изменить.
// Проверка идёт до разбора тела запроса, поэтому отказ не зависит от содержимого.
func (s *Service) ProductForUpdate(ctx context.Context, caller access.Caller, id int64) (domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	if err := access.Evaluate(caller, access.OpUpdate, product, s.productUpdateRules...); err != nil {
		var denied *access.DeniedError
		if errors.As(err, &denied) {
			s.metrics.RecordDenied(EntityProduct, denied.Rule)
		}
		s.logger.WithFields(log.Fields{
			"product_id": id,
			"caller_id":  caller.ID,
		}).WithError(err).Info("product update denied")
		return domain.Product{}, err
	}
	return product, nil
}

// ReplaceProduct полностью заменяет поля товара, загруженного через ProductForUpdate.
// Если товар изменили после загрузки, возвращается domain.ErrVersionConflict.
func (s *Service) ReplaceProduct(ctx context.Context, current domain.Product, draft domain.ProductDraft) (domain.Product, error) {
	if err := s.resolveProductReferences(ctx, draft); err != nil {
		return domain.Product{}, err
	}

	updated, err := s.products.Save(ctx, draft.Apply(current))
	if err != nil {
		return domain.Product{}, referenceRace(err)
	}

	s.metrics.RecordMutation(EntityProduct, opUpdate)
	s.logger.WithFields(log.Fields{
		"product_id": updated.ID,
		"version":    updated.Version,
	}).Info("product updated")
	s.publish(ctx, domain.EventProductUpdated, EntityProduct, updated.ID, projection.NewProductView(updated))
	return updated, nil
}

// DeleteProduct удаляет товар и возвращает его состояние до удаления.
func (s *Service) DeleteProduct(ctx context.Context, id int64) (domain.Product, error) {
	product, err := s.products.Get(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	if err := s.products.Delete(ctx, id); err != nil {
		return domain.Product{}, err
	}

	s.metrics.RecordMutation(EntityProduct, opDelete)
	s.logger.WithField("product_id", id).Info("product deleted")
	s.publish(ctx, domain.EventProductDeleted, EntityProduct, id, projection.NewProductView(product))
	return product, nil
}
