package entity

import (
	"time"
)

// Минимальная длительность теста в минутах
const MinTestDurationMinutes = 5

// Test представляет тест для учеников одного класса
type Test struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	Title           string     `gorm:"size:100;not null" json:"title"`
	Description     string     `gorm:"size:500;not null;default:''" json:"description"`
	Class           int        `gorm:"not null;index" json:"class"` // 6, 7 или 8
	Subject         string     `gorm:"size:50;not null" json:"subject"`
	DurationMinutes int        `gorm:"not null" json:"duration_minutes"`
	TotalMarks      int        `gorm:"not null;default:0" json:"total_marks"`
	IsActive        bool       `gorm:"not null;default:false;index" json:"is_active"`
	Questions       []Question `gorm:"foreignKey:TestID" json:"questions,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Test) TableName() string {
	return "tests"
}

// DurationSeconds возвращает длительность теста в секундах
func (t *Test) DurationSeconds() int {
	return t.DurationMinutes * 60
}

// QuestionCount возвращает количество вопросов теста.
// Подсчет очков опирается на это значение, а не на TotalMarks,
// чтобы исключить расхождение при изменении состава вопросов.
func (t *Test) QuestionCount() int {
	return len(t.Questions)
}

// IsStartable проверяет, можно ли начать сессию по этому тесту
func (t *Test) IsStartable() bool {
	return t.IsActive && len(t.Questions) > 0 && t.DurationMinutes >= MinTestDurationMinutes
}
