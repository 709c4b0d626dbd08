package domain

import "time"

// User — учётная запись магазина. Продавцы ссылаются на неё из товаров,
// покупатели — из корзин.
type User struct {
	ID        int64
	Username  string
	IsVendor  bool
	IsStaff   bool
	CreatedAt time.Time
}

// UserDraft — поля регистрации пользователя.
type UserDraft struct {
	Username string
	IsVendor bool
	IsStaff  bool
}
