package entity

import (
	"time"
)

// Video представляет обучающее видео. Само видео размещено во внешнем
// хранилище или на видеохостинге, здесь только метаданные и ссылки.
type Video struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"size:100;not null" json:"title"`
	Description  string    `gorm:"size:500;not null;default:''" json:"description"`
	Class        int       `gorm:"not null;index" json:"class"`
	Subject      string    `gorm:"size:50;not null;index" json:"subject"`
	VideoURL     string    `gorm:"size:500;not null" json:"video_url"`
	ThumbnailURL string    `gorm:"size:500;not null;default:''" json:"thumbnail_url"`
	DurationSec  int       `gorm:"not null;default:0" json:"duration_sec"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Video) TableName() string {
	return "videos"
}
