package domain

import "context"

// ProductRepository описывает требования к хранилищу товаров.
type ProductRepository interface {
	// Create сохраняет новый товар и возвращает его с присвоенным ID и версией.
	Create(ctx context.Context, product Product) (Product, error)
	// Get возвращает товар по идентификатору или ErrProductNotFound.
	Get(ctx context.Context, id int64) (Product, error)
	// List возвращает товары, прошедшие фильтр, в порядке возрастания ID.
	List(ctx context.Context, filter ProductFilter) ([]Product, error)
	// Save перезаписывает товар с учётом optimistic locking и возвращает новую версию.
	Save(ctx context.Context, product Product) (Product, error)
	// Delete удаляет товар; позиции корзин с этим товаром удаляются вместе с ним.
	Delete(ctx context.Context, id int64) error
}

// CategoryRepository описывает хранилище категорий.
type CategoryRepository interface {
	Create(ctx context.Context, category Category) (Category, error)
	Get(ctx context.Context, id int64) (Category, error)
	List(ctx context.Context) ([]Category, error)
	Save(ctx context.Context, category Category) (Category, error)
	// Delete возвращает ErrCategoryInUse, если на категорию ссылаются товары.
	Delete(ctx context.Context, id int64) error
}

// CartRepository хранит корзины покупателей.
type CartRepository interface {
	Create(ctx context.Context, cart Cart) (Cart, error)
	Get(ctx context.Context, id int64) (Cart, error)
}

// UserRepository хранит учётные записи.
type UserRepository interface {
	// Create возвращает ErrUsernameTaken при повторном имени.
	Create(ctx context.Context, user User) (User, error)
	Get(ctx context.Context, id int64) (User, error)
}
