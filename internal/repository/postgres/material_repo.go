package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/repository"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
)

// MaterialRepo реализует repository.MaterialRepository
type MaterialRepo struct {
	db *gorm.DB
}

// NewMaterialRepo создает новый репозиторий учебных материалов
func NewMaterialRepo(db *gorm.DB) *MaterialRepo {
	return &MaterialRepo{db: db}
}

// Create создает новый материал
func (r *MaterialRepo) Create(material *entity.StudyMaterial) error {
	return r.db.Create(material).Error
}

// GetByID возвращает материал по ID
func (r *MaterialRepo) GetByID(id uint) (*entity.StudyMaterial, error) {
	var material entity.StudyMaterial
	err := r.db.First(&material, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &material, nil
}

// List возвращает материалы с фильтрами и total count
func (r *MaterialRepo) List(filters repository.ContentFilters, limit, offset int) ([]entity.StudyMaterial, int64, error) {
	var materials []entity.StudyMaterial
	var total int64

	query := r.db.Model(&entity.StudyMaterial{})
	if filters.Class != 0 {
		query = query.Where("class = ?", filters.Class)
	}
	if filters.Subject != "" {
		query = query.Where("subject = ?", filters.Subject)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("created_at DESC").Find(&materials).Error
	if err != nil {
		return nil, 0, err
	}

	return materials, total, nil
}

// Update обновляет материал
func (r *MaterialRepo) Update(material *entity.StudyMaterial) error {
	return r.db.Save(material).Error
}

// Delete удаляет материал
func (r *MaterialRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.StudyMaterial{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
