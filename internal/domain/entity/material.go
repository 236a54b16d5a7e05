package entity

import (
	"time"
)

// StudyMaterial представляет учебный материал (PDF, конспект и т.п.).
// Сам файл хранится во внешнем хранилище, здесь только метаданные и ссылка.
type StudyMaterial struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:100;not null" json:"title"`
	Description string    `gorm:"size:500;not null;default:''" json:"description"`
	Class       int       `gorm:"not null;index" json:"class"`
	Subject     string    `gorm:"size:50;not null;index" json:"subject"`
	FileURL     string    `gorm:"size:500;not null" json:"file_url"`
	FileType    string    `gorm:"size:20;not null;default:''" json:"file_type"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (StudyMaterial) TableName() string {
	return "study_materials"
}
