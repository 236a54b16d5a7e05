package postgres

import (
	"errors"

	"gorm.io/gorm"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/repository"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
)

// VideoRepo реализует repository.VideoRepository
type VideoRepo struct {
	db *gorm.DB
}

// NewVideoRepo создает новый репозиторий видео
func NewVideoRepo(db *gorm.DB) *VideoRepo {
	return &VideoRepo{db: db}
}

// Create создает новое видео
func (r *VideoRepo) Create(video *entity.Video) error {
	return r.db.Create(video).Error
}

// GetByID возвращает видео по ID
func (r *VideoRepo) GetByID(id uint) (*entity.Video, error) {
	var video entity.Video
	err := r.db.First(&video, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// List возвращает видео с фильтрами и total count
func (r *VideoRepo) List(filters repository.ContentFilters, limit, offset int) ([]entity.Video, int64, error) {
	var videos []entity.Video
	var total int64

	query := r.db.Model(&entity.Video{})
	if filters.Class != 0 {
		query = query.Where("class = ?", filters.Class)
	}
	if filters.Subject != "" {
		query = query.Where("subject = ?", filters.Subject)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.Limit(limit).Offset(offset).Order("created_at DESC").Find(&videos).Error
	if err != nil {
		return nil, 0, err
	}

	return videos, total, nil
}

// Update обновляет видео
func (r *VideoRepo) Update(video *entity.Video) error {
	return r.db.Save(video).Error
}

// Delete удаляет видео
func (r *VideoRepo) Delete(id uint) error {
	result := r.db.Delete(&entity.Video{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
