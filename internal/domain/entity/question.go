package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Типы вопросов
const (
	QuestionTypeMCQ             = "mcq"
	QuestionTypeFillBlank       = "fill-blank"
	QuestionTypeTrueFalse       = "true-false"
	QuestionTypeAssertionReason = "assertion-reason"
)

// Уровни сложности вопроса
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
// Используется GORM для чтения JSONB данных из базы
func (o *StringArray) Scan(value interface{}) error {
	// Обработка NULL значений из базы данных
	if value == nil {
		*o = StringArray{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	// Обработка пустого массива байтов
	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}

	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
// Используется GORM для записи StringArray в JSONB в базе
func (o StringArray) Value() (driver.Value, error) {
	if o == nil || len(o) == 0 {
		return []byte("[]"), nil // Возвращаем пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// Question представляет вопрос теста
type Question struct {
	ID            uint        `gorm:"primaryKey" json:"id"`
	TestID        uint        `gorm:"not null;index" json:"test_id"`
	Type          string      `gorm:"size:20;not null;default:'mcq'" json:"type"`
	Text          string      `gorm:"size:1000;not null" json:"text"`
	Options       StringArray `gorm:"type:jsonb;not null" json:"options"`
	CorrectOption int         `gorm:"not null;default:0" json:"-"` // Скрыто от клиента
	CorrectText   string      `gorm:"size:255;not null;default:''" json:"-"`
	Explanation   string      `gorm:"size:1000;not null;default:''" json:"explanation,omitempty"`
	Topic         string      `gorm:"size:100;not null;default:''" json:"topic"`
	Difficulty    string      `gorm:"size:10;not null;default:'medium'" json:"difficulty"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TableName определяет имя таблицы для GORM
func (Question) TableName() string {
	return "questions"
}

// IsChoiceType возвращает true для вопросов с выбором варианта
func (q *Question) IsChoiceType() bool {
	return q.Type != QuestionTypeFillBlank
}

// IsCorrect проверяет ответ ученика на строгое равенство с правильным.
// Отсутствующий ответ или ответ не того типа считается неверным,
// паника недопустима даже на некорректных данных вопроса.
func (q *Question) IsCorrect(answer AnswerValue) bool {
	if q.IsChoiceType() {
		if answer.Option == nil {
			return false
		}
		// Некорректно настроенный вопрос (эталонный индекс вне
		// диапазона) не засчитывается никому
		if !q.IsValidOption(q.CorrectOption) {
			return false
		}
		return *answer.Option == q.CorrectOption
	}

	// fill-blank: точное сравнение строк, регистр значим
	if answer.Text == nil {
		return false
	}
	if q.CorrectText == "" {
		return false
	}
	return *answer.Text == q.CorrectText
}

// IsValidOption проверяет, является ли выбранный вариант допустимым
func (q *Question) IsValidOption(selectedOption int) bool {
	return selectedOption >= 0 && selectedOption < len(q.Options)
}

// OptionsCount возвращает количество вариантов ответа
func (q *Question) OptionsCount() int {
	return len(q.Options)
}

// DisplayAnswer преобразует ответ в отображаемый текст:
// для вопросов с вариантами индекс декодируется в текст варианта.
// Для отсутствующего или некорректного ответа возвращается пустая строка.
func (q *Question) DisplayAnswer(answer AnswerValue) string {
	if q.IsChoiceType() {
		if answer.Option == nil {
			return ""
		}
		if !q.IsValidOption(*answer.Option) {
			return ""
		}
		return q.Options[*answer.Option]
	}
	if answer.Text == nil {
		return ""
	}
	return *answer.Text
}

// DisplayCorrectAnswer возвращает отображаемый текст правильного ответа
func (q *Question) DisplayCorrectAnswer() string {
	if q.IsChoiceType() {
		if !q.IsValidOption(q.CorrectOption) {
			return ""
		}
		return q.Options[q.CorrectOption]
	}
	return q.CorrectText
}
