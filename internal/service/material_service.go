package service

import (
	"fmt"
	"strings"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/repository"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
)

// MaterialService предоставляет методы для работы с учебными
// материалами и видеоуроками
type MaterialService struct {
	materialRepo repository.MaterialRepository
	videoRepo    repository.VideoRepository
}

// NewMaterialService создает новый сервис контента
func NewMaterialService(materialRepo repository.MaterialRepository, videoRepo repository.VideoRepository) *MaterialService {
	return &MaterialService{
		materialRepo: materialRepo,
		videoRepo:    videoRepo,
	}
}

// CreateMaterial публикует учебный материал
func (s *MaterialService) CreateMaterial(material *entity.StudyMaterial) error {
	material.Title = strings.TrimSpace(material.Title)
	if material.Title == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if material.Class < 6 || material.Class > 8 {
		return fmt.Errorf("%w: class must be between 6 and 8", apperrors.ErrValidation)
	}
	if material.FileURL == "" {
		return fmt.Errorf("%w: file_url is required", apperrors.ErrValidation)
	}
	return s.materialRepo.Create(material)
}

// GetMaterial возвращает материал по ID
func (s *MaterialService) GetMaterial(id uint) (*entity.StudyMaterial, error) {
	return s.materialRepo.GetByID(id)
}

// ListMaterials возвращает материалы по классу и предмету
func (s *MaterialService) ListMaterials(filters repository.ContentFilters, page, pageSize int) ([]entity.StudyMaterial, int64, error) {
	page, pageSize = clampPage(page, pageSize)
	return s.materialRepo.List(filters, pageSize, (page-1)*pageSize)
}

// UpdateMaterial обновляет материал
func (s *MaterialService) UpdateMaterial(material *entity.StudyMaterial) error {
	if _, err := s.materialRepo.GetByID(material.ID); err != nil {
		return err
	}
	return s.materialRepo.Update(material)
}

// DeleteMaterial удаляет материал
func (s *MaterialService) DeleteMaterial(id uint) error {
	return s.materialRepo.Delete(id)
}

// CreateVideo публикует видеоурок
func (s *MaterialService) CreateVideo(video *entity.Video) error {
	video.Title = strings.TrimSpace(video.Title)
	if video.Title == "" {
		return fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if video.Class < 6 || video.Class > 8 {
		return fmt.Errorf("%w: class must be between 6 and 8", apperrors.ErrValidation)
	}
	if video.VideoURL == "" {
		return fmt.Errorf("%w: video_url is required", apperrors.ErrValidation)
	}
	return s.videoRepo.Create(video)
}

// GetVideo возвращает видеоурок по ID
func (s *MaterialService) GetVideo(id uint) (*entity.Video, error) {
	return s.videoRepo.GetByID(id)
}

// ListVideos возвращает видеоуроки по классу и предмету
func (s *MaterialService) ListVideos(filters repository.ContentFilters, page, pageSize int) ([]entity.Video, int64, error) {
	page, pageSize = clampPage(page, pageSize)
	return s.videoRepo.List(filters, pageSize, (page-1)*pageSize)
}

// UpdateVideo обновляет видеоурок
func (s *MaterialService) UpdateVideo(video *entity.Video) error {
	if _, err := s.videoRepo.GetByID(video.ID); err != nil {
		return err
	}
	return s.videoRepo.Update(video)
}

// DeleteVideo удаляет видеоурок
func (s *MaterialService) DeleteVideo(id uint) error {
	return s.videoRepo.Delete(id)
}
