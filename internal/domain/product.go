package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product — товар каталога, выставленный продавцом в одной из категорий.
type Product struct {
	ID          int64
	Name        string
	Description string
	// Price хранится как decimal, чтобы не терять копейки при округлении.
	Price      decimal.Decimal
	CategoryID int64
	VendorID   int64
	// Version используется для optimistic locking при обновлении.
	Version   int64
	CreatedAt time.Time
	UpdatedAt time.Time
}

// OwnerID возвращает идентификатор продавца, владеющего товаром.
func (p Product) OwnerID() int64 {
	return p.VendorID
}

// ProductDraft — поля товара, которые задаёт клиент при создании и полной замене.
type ProductDraft struct {
	Name        string
	Description string
	Price       decimal.Decimal
	CategoryID  int64
	VendorID    int64
}

// Apply переносит поля черновика в товар, не трогая идентичность и служебные поля.
func (d ProductDraft) Apply(p Product) Product {
	p.Name = d.Name
	p.Description = d.Description
	p.Price = d.Price
	p.CategoryID = d.CategoryID
	p.VendorID = d.VendorID
	return p
}

// ProductFilter сужает выборку товаров. Nil-поле означает отсутствие ограничения,
// заданные поля объединяются через AND.
type ProductFilter struct {
	CategoryID *int64
	Name       *string
}

// Matches проверяет, проходит ли товар через фильтр.
func (f ProductFilter) Matches(p Product) bool {
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.Name != nil && p.Name != *f.Name {
		return false
	}
	return true
}
