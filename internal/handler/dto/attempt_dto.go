package dto

import (
	"time"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service"
)

// AttemptResponse представляет попытку в списке истории
type AttemptResponse struct {
	ID             uint                   `json:"id"`
	TestID         uint                   `json:"test_id"`
	UserID         uint                   `json:"user_id"`
	Score          int                    `json:"score"`
	TotalQuestions int                    `json:"total_questions"`
	Percentage     int                    `json:"percentage"`
	TimeSpentSec   int                    `json:"time_spent_sec"`
	Analysis       entity.AttemptAnalysis `json:"analysis"`
	CompletedAt    time.Time              `json:"completed_at"`
}

// PaginatedAttemptResponse представляет пагинированный список попыток
type PaginatedAttemptResponse struct {
	Attempts []*AttemptResponse `json:"attempts"`
	Total    int64              `json:"total"`
	Page     int                `json:"page"`
	PerPage  int                `json:"per_page"`
}

// AttemptDetailResponse - попытка с повопросным разбором.
// Review может отсутствовать, если тест был удален после сдачи.
type AttemptDetailResponse struct {
	Attempt *AttemptResponse       `json:"attempt"`
	Test    *TestResponse          `json:"test,omitempty"`
	Review  *ResultSummaryResponse `json:"review,omitempty"`
}

// NewAttemptResponse создает DTO попытки
func NewAttemptResponse(attempt *entity.TestAttempt) *AttemptResponse {
	return &AttemptResponse{
		ID:             attempt.ID,
		TestID:         attempt.TestID,
		UserID:         attempt.UserID,
		Score:          attempt.Score,
		TotalQuestions: attempt.TotalQuestions,
		Percentage:     attempt.Percentage,
		TimeSpentSec:   attempt.TimeSpentSec,
		Analysis:       attempt.Analysis,
		CompletedAt:    attempt.CompletedAt,
	}
}

// NewPaginatedAttemptResponse создает пагинированный список попыток
func NewPaginatedAttemptResponse(attempts []entity.TestAttempt, total int64, page, perPage int) *PaginatedAttemptResponse {
	items := make([]*AttemptResponse, len(attempts))
	for i := range attempts {
		items[i] = NewAttemptResponse(&attempts[i])
	}
	return &PaginatedAttemptResponse{
		Attempts: items,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
	}
}

// NewAttemptDetailResponse создает DTO попытки с разбором
func NewAttemptDetailResponse(detail *service.AttemptDetail) *AttemptDetailResponse {
	resp := &AttemptDetailResponse{
		Attempt: NewAttemptResponse(detail.Attempt),
	}
	if detail.Test != nil {
		resp.Test = NewTestResponse(detail.Test, false)
	}
	if detail.Review != nil {
		resp.Review = NewResultSummaryResponse(detail.Review, detail.Attempt.ID)
	}
	return resp
}
