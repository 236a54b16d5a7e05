package dto

import (
	"time"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
)

// MaterialResponse представляет учебный материал для клиента
type MaterialResponse struct {
	ID          uint      `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Class       int       `json:"class"`
	Subject     string    `json:"subject"`
	FileURL     string    `json:"file_url"`
	FileType    string    `json:"file_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// VideoResponse представляет видеоурок для клиента
type VideoResponse struct {
	ID           uint      `json:"id"`
	Title        string    `json:"title"`
	Description  string    `json:"description,omitempty"`
	Class        int       `json:"class"`
	Subject      string    `json:"subject"`
	VideoURL     string    `json:"video_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	DurationSec  int       `json:"duration_sec"`
	CreatedAt    time.Time `json:"created_at"`
}

// PaginatedMaterialResponse представляет пагинированный список материалов
type PaginatedMaterialResponse struct {
	Materials []*MaterialResponse `json:"materials"`
	Total     int64               `json:"total"`
	Page      int                 `json:"page"`
	PerPage   int                 `json:"per_page"`
}

// PaginatedVideoResponse представляет пагинированный список видеоуроков
type PaginatedVideoResponse struct {
	Videos  []*VideoResponse `json:"videos"`
	Total   int64            `json:"total"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
}

// NewMaterialResponse создает DTO материала
func NewMaterialResponse(m *entity.StudyMaterial) *MaterialResponse {
	return &MaterialResponse{
		ID:          m.ID,
		Title:       m.Title,
		Description: m.Description,
		Class:       m.Class,
		Subject:     m.Subject,
		FileURL:     m.FileURL,
		FileType:    m.FileType,
		CreatedAt:   m.CreatedAt,
	}
}

// NewVideoResponse создает DTO видеоурока
func NewVideoResponse(v *entity.Video) *VideoResponse {
	return &VideoResponse{
		ID:           v.ID,
		Title:        v.Title,
		Description:  v.Description,
		Class:        v.Class,
		Subject:      v.Subject,
		VideoURL:     v.VideoURL,
		ThumbnailURL: v.ThumbnailURL,
		DurationSec:  v.DurationSec,
		CreatedAt:    v.CreatedAt,
	}
}

// NewPaginatedMaterialResponse создает пагинированный список материалов
func NewPaginatedMaterialResponse(materials []entity.StudyMaterial, total int64, page, perPage int) *PaginatedMaterialResponse {
	items := make([]*MaterialResponse, len(materials))
	for i := range materials {
		items[i] = NewMaterialResponse(&materials[i])
	}
	return &PaginatedMaterialResponse{Materials: items, Total: total, Page: page, PerPage: perPage}
}

// NewPaginatedVideoResponse создает пагинированный список видеоуроков
func NewPaginatedVideoResponse(videos []entity.Video, total int64, page, perPage int) *PaginatedVideoResponse {
	items := make([]*VideoResponse, len(videos))
	for i := range videos {
		items[i] = NewVideoResponse(&videos[i])
	}
	return &PaginatedVideoResponse{Videos: items, Total: total, Page: page, PerPage: perPage}
}
