package postgres

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
)

// AttemptRepo реализует repository.AttemptRepository
type AttemptRepo struct {
	db *gorm.DB
}

// NewAttemptRepo создает новый репозиторий попыток
func NewAttemptRepo(db *gorm.DB) *AttemptRepo {
	return &AttemptRepo{db: db}
}

// Save сохраняет завершенную попытку. Попытка неизменяема,
// поэтому только вставка, без Save/Updates.
func (r *AttemptRepo) Save(attempt *entity.TestAttempt) error {
	if err := r.db.Create(attempt).Error; err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: attempt already persisted", apperrors.ErrConflict)
		}
		return err
	}
	return nil
}

// GetByID возвращает попытку по ID
func (r *AttemptRepo) GetByID(id uint) (*entity.TestAttempt, error) {
	var attempt entity.TestAttempt
	err := r.db.First(&attempt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &attempt, nil
}

// GetUserAttempts возвращает попытки пользователя с пагинацией, новые первыми
func (r *AttemptRepo) GetUserAttempts(userID uint, limit, offset int) ([]entity.TestAttempt, int64, error) {
	var attempts []entity.TestAttempt
	var total int64

	query := r.db.Model(&entity.TestAttempt{}).Where("user_id = ?", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("completed_at DESC").Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

// GetTestAttempts возвращает попытки по тесту с пагинацией
func (r *AttemptRepo) GetTestAttempts(testID uint, limit, offset int) ([]entity.TestAttempt, int64, error) {
	var attempts []entity.TestAttempt
	var total int64

	query := r.db.Model(&entity.TestAttempt{}).Where("test_id = ?", testID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("completed_at DESC").Find(&attempts).Error
	if err != nil {
		return nil, 0, err
	}

	return attempts, total, nil
}

// GetAllTestAttempts возвращает все попытки по тесту без пагинации (для экспорта)
func (r *AttemptRepo) GetAllTestAttempts(testID uint) ([]entity.TestAttempt, error) {
	var attempts []entity.TestAttempt
	err := r.db.Where("test_id = ?", testID).Order("score DESC, time_spent_sec ASC").Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}

// GetUserTestAttempts возвращает попытки пользователя по одному тесту
func (r *AttemptRepo) GetUserTestAttempts(userID, testID uint) ([]entity.TestAttempt, error) {
	var attempts []entity.TestAttempt
	err := r.db.Where("user_id = ? AND test_id = ?", userID, testID).
		Order("completed_at DESC").
		Find(&attempts).Error
	if err != nil {
		return nil, err
	}
	return attempts, nil
}
