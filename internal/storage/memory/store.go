package memory

import (
	"sync"
	"time"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// Store — in-memory хранилище каталога для локальной разработки и тестов.
// Все репозитории работают поверх общего состояния под одним мьютексом, чтобы
// проверки ссылок между сущностями были атомарными, как внешние ключи в БД.
type Store struct {
	mu sync.RWMutex

	products   map[int64]domain.Product
	categories map[int64]domain.Category
	carts      map[int64]domain.Cart
	users      map[int64]domain.User

	lastProductID  int64
	lastCategoryID int64
	lastCartID     int64
	lastUserID     int64

	now func() time.Time
}

// NewStore создаёт пустое хранилище.
func NewStore() *Store {
	return &Store{
		products:   make(map[int64]domain.Product),
		categories: make(map[int64]domain.Category),
		carts:      make(map[int64]domain.Cart),
		users:      make(map[int64]domain.User),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Products возвращает репозиторий товаров.
func (s *Store) Products() domain.ProductRepository {
	return &productRepositoryInMemory{store: s}
}

// Categories возвращает репозиторий категорий.
func (s *Store) Categories() domain.CategoryRepository {
	return &categoryRepositoryInMemory{store: s}
}

// Carts возвращает репозиторий корзин.
func (s *Store) Carts() domain.CartRepository {
	return &cartRepositoryInMemory{store: s}
}

// Users возвращает репозиторий пользователей.
func (s *Store) Users() domain.UserRepository {
	return &userRepositoryInMemory{store: s}
}

func cloneItems(items []domain.CartItem) []domain.CartItem {
	out := make([]domain.CartItem, len(items))
	copy(out, items)
	return out
}
