package repository

import (
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
)

// ContentFilters задает фильтры для списков материалов и видео
type ContentFilters struct {
	Class   int
	Subject string
}

// MaterialRepository определяет методы для работы с учебными материалами
type MaterialRepository interface {
	Create(material *entity.StudyMaterial) error
	GetByID(id uint) (*entity.StudyMaterial, error)
	List(filters ContentFilters, limit, offset int) ([]entity.StudyMaterial, int64, error)
	Update(material *entity.StudyMaterial) error
	Delete(id uint) error
}

// VideoRepository определяет методы для работы с обучающими видео
type VideoRepository interface {
	Create(video *entity.Video) error
	GetByID(id uint) (*entity.Video, error)
	List(filters ContentFilters, limit, offset int) ([]entity.Video, int64, error)
	Update(video *entity.Video) error
	Delete(id uint) error
}
