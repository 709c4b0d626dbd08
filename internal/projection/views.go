// Package projection описывает представления сущностей на проводе: явные
// списки полей для ответов и разбор входящих JSON-документов с
// поле-ориентированными ошибками.
package projection

import (
	"encoding/json"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// ProductView — полное представление товара.
type ProductView struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	Category    int64       `json:"category"`
	Vendor      int64       `json:"vendor"`
}

// NewProductView строит полное представление товара.
func NewProductView(p domain.Product) ProductView {
	return ProductView{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       json.Number(p.Price.String()),
		Category:    p.CategoryID,
		Vendor:      p.VendorID,
	}
}

// ProductViews преобразует выборку; пустой результат кодируется как [].
func ProductViews(products []domain.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, NewProductView(p))
	}
	return views
}

// CategoryView — полное представление категории.
type CategoryView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

// NewCategoryView строит полное представление категории.
func NewCategoryView(c domain.Category) CategoryView {
	return CategoryView{ID: c.ID, Name: c.Name}
}

// CategoryNameView — частичное представление категории для списков.
type CategoryNameView struct {
	Name string `json:"name"`
}

// CategoryNameViews строит список имён категорий.
func CategoryNameViews(categories []domain.Category) []CategoryNameView {
	views := make([]CategoryNameView, 0, len(categories))
	for _, c := range categories {
		views = append(views, CategoryNameView{Name: c.Name})
	}
	return views
}

// CartItemView описывает позицию корзины.
type CartItemView struct {
	Product  int64 `json:"product"`
	Quantity int32 `json:"quantity"`
}

// CartView — полное представление корзины.
type CartView struct {
	ID       int64          `json:"id"`
	Customer int64          `json:"customer"`
	Items    []CartItemView `json:"items"`
}

func NewCartView(c domain.Cart) CartView {
	items := make([]CartItemView, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, CartItemView{Product: item.ProductID, Quantity: item.Quantity})
	}
	return CartView{ID: c.ID, Customer: c.CustomerID, Items: items}
}

// UserView отдаёт публичные поля пользователя.
type UserView struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	IsVendor bool   `json:"is_vendor"`
	IsStaff  bool   `json:"is_staff"`
}

func NewUserView(u domain.User) UserView {
	return UserView{ID: u.ID, Username: u.Username, IsVendor: u.IsVendor, IsStaff: u.IsStaff}
}
