package service

import (
	"fmt"
	"log"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/repository"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
)

// UserService предоставляет методы для работы с пользователями
type UserService struct {
	userRepo repository.UserRepository
}

// NewUserService создает новый сервис пользователей
func NewUserService(userRepo repository.UserRepository) *UserService {
	return &UserService{
		userRepo: userRepo,
	}
}

// GetUserByID возвращает пользователя по ID
func (s *UserService) GetUserByID(userID uint) (*entity.User, error) {
	return s.userRepo.GetByID(userID)
}

// UpdateProfile обновляет имя и класс ученика
func (s *UserService) UpdateProfile(userID uint, username string, class int) (*entity.User, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return nil, err
	}

	if username != "" {
		user.Username = username
	}
	if class != 0 {
		if class < 6 || class > 8 {
			return nil, fmt.Errorf("%w: class must be between 6 and 8", apperrors.ErrValidation)
		}
		user.Class = class
	}

	if err := s.userRepo.Update(user); err != nil {
		log.Printf("[UserService] Ошибка при обновлении профиля #%d: %v", userID, err)
		return nil, err
	}
	return user, nil
}

// ListStudents возвращает пагинированный список учеников для админа.
// class=0 означает все классы.
func (s *UserService) ListStudents(class, page, pageSize int) ([]entity.User, int64, error) {
	page, pageSize = clampPage(page, pageSize)
	if class != 0 && (class < 6 || class > 8) {
		return nil, 0, fmt.Errorf("%w: class must be between 6 and 8", apperrors.ErrValidation)
	}
	return s.userRepo.ListStudents(class, pageSize, (page-1)*pageSize)
}
