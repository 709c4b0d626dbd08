package catalog

import (
	"context"
	"errors"

	"github.com/vladislavdragonenkov/storefront/internal/domain"
)

// CreateUser регистрирует пользователя; занятое имя возвращается ошибкой поля username.
func (s *Service) CreateUser(ctx context.Context, draft domain.UserDraft) (domain.User, error) {
	created, err := s.users.Create(ctx, domain.User{
		Username: draft.Username,
		IsVendor: draft.IsVendor,
		IsStaff:  draft.IsStaff,
	})
	if err != nil {
		if errors.Is(err, domain.ErrUsernameTaken) {
			verr := domain.NewValidationError()
			verr.Add("username", msgUsernameTaken)
			return domain.User{}, verr
		}
		return domain.User{}, err
	}

	s.metrics.RecordMutation(EntityUser, opCreate)
	s.logger.WithField("user_id", created.ID).Info("user created")
	return created, nil
}

// GetUser возвращает пользователя или domain.ErrUserNotFound.
func (s *Service) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return s.users.Get(ctx, id)
}
