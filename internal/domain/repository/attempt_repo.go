package repository

import (
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
)

// AttemptRepository определяет методы для работы с попытками прохождения.
// Попытки неизменяемы: обновление и удаление не предусмотрены.
type AttemptRepository interface {
	Save(attempt *entity.TestAttempt) error
	GetByID(id uint) (*entity.TestAttempt, error)
	GetUserAttempts(userID uint, limit, offset int) ([]entity.TestAttempt, int64, error)
	GetTestAttempts(testID uint, limit, offset int) ([]entity.TestAttempt, int64, error)
	GetAllTestAttempts(testID uint) ([]entity.TestAttempt, error)
	GetUserTestAttempts(userID, testID uint) ([]entity.TestAttempt, error)
}
