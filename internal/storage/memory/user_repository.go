package memory

import (
	"context"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

type userRepositoryInMemory struct {
	store *Store
}

func (r *userRepositoryInMemory) Create(_ context.Context, user domain.User) (domain.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return domain.User{}, domain.ErrUsernameTaken
		}
	}

	s.lastUserID++
	user.ID = s.lastUserID
	user.CreatedAt = s.now()
	s.users[user.ID] = user
	return user, nil
}

func (r *userRepositoryInMemory) Get(_ context.Context, id int64) (domain.User, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return domain.User{}, domain.ErrUserNotFound
	}
	return user, nil
}

var _ domain.UserRepository = (*userRepositoryInMemory)(nil)
