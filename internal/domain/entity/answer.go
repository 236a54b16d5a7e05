package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// AnswerValue представляет ответ ученика на один вопрос.
// Для вопросов с вариантами это индекс варианта (Option),
// для fill-blank — введённый текст (Text). Заполнено ровно одно поле.
type AnswerValue struct {
	Option *int    `json:"option,omitempty"`
	Text   *string `json:"text,omitempty"`
}

// OptionAnswer создает ответ-выбор варианта
func OptionAnswer(index int) AnswerValue {
	return AnswerValue{Option: &index}
}

// TextAnswer создает текстовый ответ (fill-blank)
func TextAnswer(text string) AnswerValue {
	return AnswerValue{Text: &text}
}

// IsZero возвращает true, если ответ не содержит значения
func (a AnswerValue) IsZero() bool {
	return a.Option == nil && a.Text == nil
}

// Equal сравнивает два ответа на строгое равенство.
// Текст сравнивается без нормализации (регистр и пробелы значимы).
func (a AnswerValue) Equal(other AnswerValue) bool {
	if a.Option != nil && other.Option != nil {
		return *a.Option == *other.Option
	}
	if a.Text != nil && other.Text != nil {
		return *a.Text == *other.Text
	}
	return a.IsZero() && other.IsZero()
}

// AnswerMap - карта ответов ученика: id вопроса -> ответ.
// Отсутствие ключа означает "без ответа". Хранится в JSONB.
type AnswerMap map[uint]AnswerValue

// Scan реализует интерфейс sql.Scanner для AnswerMap
// Используется GORM для чтения JSONB данных из базы
func (m *AnswerMap) Scan(value interface{}) error {
	if value == nil {
		*m = AnswerMap{}
		return nil
	}

	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("failed to unmarshal JSONB value: expected []byte")
	}

	if len(bytes) == 0 {
		*m = AnswerMap{}
		return nil
	}

	return json.Unmarshal(bytes, m)
}

// Value реализует интерфейс driver.Valuer для AnswerMap
func (m AnswerMap) Value() (driver.Value, error) {
	if m == nil || len(m) == 0 {
		return []byte("{}"), nil // Возвращаем пустой JSON объект вместо null
	}
	return json.Marshal(m)
}

// Clone возвращает независимую копию карты ответов
func (m AnswerMap) Clone() AnswerMap {
	clone := make(AnswerMap, len(m))
	for id, v := range m {
		clone[id] = v
	}
	return clone
}
