package dto

import (
	"time"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service/testsession"
)

// SessionStateResponse - снимок активной сессии для клиента.
// Статусы вопросов (answered, flagged, answered-flagged, unanswered)
// вычисляются на сервере, клиент их не хранит.
type SessionStateResponse struct {
	SessionID        string           `json:"session_id"`
	TestID           uint             `json:"test_id"`
	Status           string           `json:"status"`
	CurrentIndex     int              `json:"current_index"`
	SecondsLeft      int              `json:"seconds_left"`
	Answers          entity.AnswerMap `json:"answers"`
	Flags            []uint           `json:"flags"`
	QuestionStatuses []string         `json:"question_statuses"`
	StartedAt        time.Time        `json:"started_at"`
}

// SubmitPreviewResponse - счетчики для диалога подтверждения сдачи
type SubmitPreviewResponse struct {
	Answered   int `json:"answered"`
	Unanswered int `json:"unanswered"`
}

// QuestionResultResponse - разбор одного вопроса после сдачи
type QuestionResultResponse struct {
	QuestionID    uint     `json:"question_id"`
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	Answered      bool     `json:"answered"`
	UserAnswer    string   `json:"user_answer"`
	CorrectAnswer string   `json:"correct_answer"`
	IsCorrect     bool     `json:"is_correct"`
	Explanation   string   `json:"explanation,omitempty"`
	Topic         string   `json:"topic"`
	Difficulty    string   `json:"difficulty"`
}

// ResultSummaryResponse - итог попытки с разбором и рекомендациями
type ResultSummaryResponse struct {
	AttemptID        uint                         `json:"attempt_id,omitempty"`
	Score            int                          `json:"score"`
	TotalQuestions   int                          `json:"total_questions"`
	Percentage       int                          `json:"percentage"`
	TimeSpentSec     int                          `json:"time_spent_sec"`
	QuestionResults  []QuestionResultResponse     `json:"question_results"`
	TopicOrder       []string                     `json:"topic_order"`
	TopicPerformance map[string]entity.TopicStats `json:"topic_performance"`
	Suggestions      []string                     `json:"suggestions"`
}

// NewSessionStateResponse создает DTO состояния сессии
func NewSessionStateResponse(state *testsession.State) *SessionStateResponse {
	return &SessionStateResponse{
		SessionID:        state.SessionID,
		TestID:           state.TestID,
		Status:           state.Status,
		CurrentIndex:     state.CurrentIndex,
		SecondsLeft:      state.SecondsLeft,
		Answers:          state.Answers,
		Flags:            state.Flags,
		QuestionStatuses: state.QuestionStatuses,
		StartedAt:        state.StartedAt,
	}
}

// NewResultSummaryResponse создает DTO итога попытки
func NewResultSummaryResponse(summary *testsession.Summary, attemptID uint) *ResultSummaryResponse {
	results := make([]QuestionResultResponse, len(summary.QuestionResults))
	for i, qr := range summary.QuestionResults {
		results[i] = QuestionResultResponse{
			QuestionID:    qr.QuestionID,
			Text:          qr.Text,
			Type:          qr.Type,
			Options:       qr.Options,
			Answered:      qr.Answered,
			UserAnswer:    qr.UserAnswer,
			CorrectAnswer: qr.CorrectAnswer,
			IsCorrect:     qr.IsCorrect,
			Explanation:   qr.Explanation,
			Topic:         qr.Topic,
			Difficulty:    qr.Difficulty,
		}
	}
	return &ResultSummaryResponse{
		AttemptID:        attemptID,
		Score:            summary.Score,
		TotalQuestions:   summary.TotalQuestions,
		Percentage:       summary.Percentage,
		TimeSpentSec:     summary.TimeSpentSec,
		QuestionResults:  results,
		TopicOrder:       summary.TopicOrder,
		TopicPerformance: summary.TopicPerformance,
		Suggestions:      summary.Suggestions,
	}
}
