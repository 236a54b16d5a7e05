package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/repository"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
)

// TestRepo реализует repository.TestRepository
type TestRepo struct {
	db *gorm.DB
}

// NewTestRepo создает новый репозиторий тестов
func NewTestRepo(db *gorm.DB) *TestRepo {
	return &TestRepo{db: db}
}

// Create создает новый тест
func (r *TestRepo) Create(test *entity.Test) error {
	return r.db.Create(test).Error
}

// GetByID возвращает тест по ID без вопросов
func (r *TestRepo) GetByID(id uint) (*entity.Test, error) {
	var test entity.Test
	err := r.db.First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &test, nil
}

// GetWithQuestions возвращает тест вместе с вопросами в исходном порядке
func (r *TestRepo) GetWithQuestions(id uint) (*entity.Test, error) {
	var test entity.Test
	err := r.db.Preload("Questions", func(db *gorm.DB) *gorm.DB {
		return db.Order("questions.id")
	}).First(&test, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &test, nil
}

// GetActiveForClass возвращает активные тесты для класса
func (r *TestRepo) GetActiveForClass(class int) ([]entity.Test, error) {
	var tests []entity.Test
	err := r.db.Where("class = ? AND is_active = ?", class, true).
		Order("created_at DESC").
		Find(&tests).Error
	if err != nil {
		return nil, err
	}
	return tests, nil
}

// List возвращает список тестов с фильтрами и total count
func (r *TestRepo) List(filters repository.TestFilters, limit, offset int) ([]entity.Test, int64, error) {
	var tests []entity.Test
	var total int64

	query := r.db.Model(&entity.Test{})

	if filters.Class != 0 {
		query = query.Where("class = ?", filters.Class)
	}
	if filters.Subject != "" {
		query = query.Where("subject = ?", filters.Subject)
	}
	if filters.IsActive != nil {
		query = query.Where("is_active = ?", *filters.IsActive)
	}
	if filters.Search != "" {
		search := "%" + filters.Search + "%"
		query = query.Where("title ILIKE ? OR description ILIKE ?", search, search)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("id DESC").Find(&tests).Error
	if err != nil {
		return nil, 0, err
	}

	return tests, total, nil
}

// Update обновляет информацию о тесте
func (r *TestRepo) Update(test *entity.Test) error {
	return r.db.Save(test).Error
}

// UpdateActive точечно переключает флаг is_active без полного Save
func (r *TestRepo) UpdateActive(testID uint, isActive bool) error {
	result := r.db.Model(&entity.Test{}).
		Where("id = ?", testID).
		Update("is_active", isActive)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// UpdateTotalMarks точечно обновляет total_marks после изменения состава вопросов
func (r *TestRepo) UpdateTotalMarks(testID uint, totalMarks int) error {
	return r.db.Model(&entity.Test{}).
		Where("id = ?", testID).
		Update("total_marks", totalMarks).
		Error
}

// Delete удаляет тест вместе с вопросами
func (r *TestRepo) Delete(id uint) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("test_id = ?", id).Delete(&entity.Question{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.Test{}, id).Error
	})
}

// isUniqueViolation проверяет Postgres unique violation (23505) для pgconn и lib/pq драйверов
func isUniqueViolation(err error) bool {
	// pgx/v5 driver (pgconn.PgError)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return true
	}
	// lib/pq driver
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return true
	}
	return false
}
