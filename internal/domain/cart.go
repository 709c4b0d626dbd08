package domain

import "time"

// CartItem описывает позицию корзины.
type CartItem struct {
	ProductID int64
	Quantity  int32
}

// Cart — корзина покупателя.
type Cart struct {
	ID         int64
	CustomerID int64
	Items      []CartItem
	CreatedAt  time.Time
}

// CartDraft описывает корзину, которую присылает клиент.
type CartDraft struct {
	CustomerID int64
	Items      []CartItem
}
