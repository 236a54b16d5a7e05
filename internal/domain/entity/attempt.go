package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// TopicStats агрегирует результаты по одной теме
type TopicStats struct {
	Correct int `json:"correct"`
	Total   int `json:"total"`
}

// AttemptAnalysis хранит разбор попытки: результаты по темам и рекомендации.
// Порядок тем соответствует порядку их первого появления в тесте.
type AttemptAnalysis struct {
	TopicOrder       []string              `json:"topic_order"`
	TopicPerformance map[string]TopicStats `json:"topic_performance"`
	Suggestions      []string              `json:"suggestions"`
}

// Scan реализует интерфейс sql.Scanner для AttemptAnalysis
func (a *AttemptAnalysis) Scan(value interface{}) error {
	if value == nil {
		*a = AttemptAnalysis{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*a = AttemptAnalysis{}
		return nil
	}

	return json.Unmarshal(bytes, a)
}

// Value реализует интерфейс driver.Valuer для AttemptAnalysis
func (a AttemptAnalysis) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// TestAttempt представляет завершенную попытку прохождения теста.
// Создается один раз при сдаче (ручной или по истечении времени)
// и после этого не изменяется и не удаляется.
type TestAttempt struct {
	ID             uint            `gorm:"primaryKey" json:"id"`
	TestID         uint            `gorm:"not null;index" json:"test_id"`
	UserID         uint            `gorm:"not null;index" json:"user_id"`
	Answers        AnswerMap       `gorm:"type:jsonb;not null" json:"answers"`
	Score          int             `gorm:"not null;default:0" json:"score"`
	TotalQuestions int             `gorm:"not null;default:0" json:"total_questions"`
	Percentage     int             `gorm:"not null;default:0" json:"percentage"`
	TimeSpentSec   int             `gorm:"not null;default:0" json:"time_spent_sec"`
	Analysis       AttemptAnalysis `gorm:"type:jsonb;not null" json:"analysis"`
	CompletedAt    time.Time       `gorm:"not null;index" json:"completed_at"`
	CreatedAt      time.Time       `json:"created_at"`
}

// TableName определяет имя таблицы для GORM
func (TestAttempt) TableName() string {
	return "test_attempts"
}
