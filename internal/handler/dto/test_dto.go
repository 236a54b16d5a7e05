package dto

import (
	"time"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/handler/helper"
)

// QuestionResponse представляет вопрос для ученика: правильный ответ
// и эталонный текст в DTO не попадают
type QuestionResponse struct {
	ID         uint                    `json:"id"`
	TestID     uint                    `json:"test_id"`
	Type       string                  `json:"type"`
	Text       string                  `json:"text"`
	Options    []helper.QuestionOption `json:"options"`
	Topic      string                  `json:"topic"`
	Difficulty string                  `json:"difficulty"`
}

// AdminQuestionResponse дополняет QuestionResponse полями, видимыми
// только администратору
type AdminQuestionResponse struct {
	QuestionResponse
	CorrectOption int    `json:"correct_option"`
	CorrectText   string `json:"correct_text"`
	Explanation   string `json:"explanation"`
}

// TestResponse представляет тест в формате для ответа клиенту
type TestResponse struct {
	ID              uint               `json:"id"`
	Title           string             `json:"title"`
	Description     string             `json:"description,omitempty"`
	Class           int                `json:"class"`
	Subject         string             `json:"subject"`
	DurationMinutes int                `json:"duration_minutes"`
	TotalMarks      int                `json:"total_marks"`
	IsActive        bool               `json:"is_active"`
	QuestionCount   int                `json:"question_count"`
	Questions       []QuestionResponse `json:"questions,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at"`
}

// PaginatedTestResponse представляет пагинированный список тестов
type PaginatedTestResponse struct {
	Tests   []*TestResponse `json:"tests"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	PerPage int             `json:"per_page"`
}

// NewQuestionResponse создает DTO вопроса без правильного ответа
func NewQuestionResponse(q *entity.Question) QuestionResponse {
	return QuestionResponse{
		ID:         q.ID,
		TestID:     q.TestID,
		Type:       q.Type,
		Text:       q.Text,
		Options:    helper.ConvertOptionsToObjects(q.Options),
		Topic:      q.Topic,
		Difficulty: q.Difficulty,
	}
}

// NewAdminQuestionResponse создает DTO вопроса с правильным ответом
func NewAdminQuestionResponse(q *entity.Question) AdminQuestionResponse {
	return AdminQuestionResponse{
		QuestionResponse: NewQuestionResponse(q),
		CorrectOption:    q.CorrectOption,
		CorrectText:      q.CorrectText,
		Explanation:      q.Explanation,
	}
}

// NewTestResponse создает DTO теста. includeQuestions управляет
// вложением вопросов (без правильных ответов).
func NewTestResponse(test *entity.Test, includeQuestions bool) *TestResponse {
	// В списках вопросы не подгружаются: количество берется из
	// total_marks (один вопрос - один балл)
	questionCount := len(test.Questions)
	if questionCount == 0 {
		questionCount = test.TotalMarks
	}

	resp := &TestResponse{
		ID:              test.ID,
		Title:           test.Title,
		Description:     test.Description,
		Class:           test.Class,
		Subject:         test.Subject,
		DurationMinutes: test.DurationMinutes,
		TotalMarks:      test.TotalMarks,
		IsActive:        test.IsActive,
		QuestionCount:   questionCount,
		CreatedAt:       test.CreatedAt,
		UpdatedAt:       test.UpdatedAt,
	}
	if includeQuestions {
		resp.Questions = make([]QuestionResponse, len(test.Questions))
		for i := range test.Questions {
			resp.Questions[i] = NewQuestionResponse(&test.Questions[i])
		}
	}
	return resp
}

// NewListTestResponse создает список DTO тестов без вопросов
func NewListTestResponse(tests []entity.Test) []*TestResponse {
	result := make([]*TestResponse, len(tests))
	for i := range tests {
		result[i] = NewTestResponse(&tests[i], false)
	}
	return result
}
