package repository

import (
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
)

// UserRepository определяет методы для работы с пользователями
type UserRepository interface {
	Create(user *entity.User) error
	GetByID(id uint) (*entity.User, error)
	GetByEmail(email string) (*entity.User, error)
	GetByUsername(username string) (*entity.User, error)
	Update(user *entity.User) error
	UpdatePassword(userID uint, newPassword string) error
	// ListStudents возвращает учеников (опционально одного класса) с пагинацией и общим количеством
	ListStudents(class int, limit, offset int) ([]entity.User, int64, error)
	Delete(id uint) error
}
