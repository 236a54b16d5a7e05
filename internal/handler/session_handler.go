package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/handler/dto"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service"
)

// SessionHandler обрабатывает жизненный цикл сессии прохождения теста.
// Все маршруты работают с единственной активной сессией текущего ученика.
type SessionHandler struct {
	sessionManager *service.SessionManager
}

// NewSessionHandler создает новый обработчик сессий
func NewSessionHandler(sessionManager *service.SessionManager) *SessionHandler {
	return &SessionHandler{sessionManager: sessionManager}
}

// StartSessionRequest представляет запрос на начало прохождения теста
type StartSessionRequest struct {
	TestID uint `json:"test_id" binding:"required"`
}

// Start начинает прохождение теста
// POST /api/sessions
func (h *SessionHandler) Start(c *gin.Context) {
	var req StartSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.sessionManager.StartSession(currentUserID(c), req.TestID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewSessionStateResponse(state))
}

// Current возвращает состояние активной сессии
// GET /api/sessions/current
func (h *SessionHandler) Current(c *gin.Context) {
	state, err := h.sessionManager.GetState(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionStateResponse(state))
}

// Questions возвращает вопросы активной сессии. Правильные ответы
// скрыты на уровне DTO.
// GET /api/sessions/current/questions
func (h *SessionHandler) Questions(c *gin.Context) {
	test, err := h.sessionManager.Questions(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	questions := make([]dto.QuestionResponse, len(test.Questions))
	for i := range test.Questions {
		questions[i] = dto.NewQuestionResponse(&test.Questions[i])
	}
	c.JSON(http.StatusOK, gin.H{"questions": questions})
}

// AnswerRequest представляет ответ на вопрос. Ровно одно из полей
// option/text должно быть заполнено.
type AnswerRequest struct {
	QuestionID uint    `json:"question_id" binding:"required"`
	Option     *int    `json:"option"`
	Text       *string `json:"text"`
}

// Answer фиксирует (или снимает - при повторе того же значения) ответ
// POST /api/sessions/current/answer
func (h *SessionHandler) Answer(c *gin.Context) {
	var req AnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if (req.Option == nil) == (req.Text == nil) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "exactly one of option or text is required"})
		return
	}

	var value entity.AnswerValue
	if req.Option != nil {
		value = entity.OptionAnswer(*req.Option)
	} else {
		value = entity.TextAnswer(*req.Text)
	}

	state, err := h.sessionManager.Answer(currentUserID(c), req.QuestionID, value)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionStateResponse(state))
}

// NavigateRequest представляет переход к вопросу по индексу
type NavigateRequest struct {
	Index *int `json:"index" binding:"required"`
}

// Navigate переводит указатель текущего вопроса
// POST /api/sessions/current/navigate
func (h *SessionHandler) Navigate(c *gin.Context) {
	var req NavigateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.sessionManager.Navigate(currentUserID(c), *req.Index)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionStateResponse(state))
}

// FlagRequest представляет переключение пометки на вопросе
type FlagRequest struct {
	QuestionID uint `json:"question_id" binding:"required"`
}

// ToggleFlag переключает пометку "вернуться позже"
// POST /api/sessions/current/flag
func (h *SessionHandler) ToggleFlag(c *gin.Context) {
	var req FlagRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	state, err := h.sessionManager.ToggleFlag(currentUserID(c), req.QuestionID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewSessionStateResponse(state))
}

// RequestSubmit переводит сессию в режим подтверждения сдачи
// POST /api/sessions/current/submit
func (h *SessionHandler) RequestSubmit(c *gin.Context) {
	preview, err := h.sessionManager.RequestSubmit(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.SubmitPreviewResponse{
		Answered:   preview.Answered,
		Unanswered: preview.Unanswered,
	})
}

// CancelSubmit возвращает сессию к прохождению
// POST /api/sessions/current/submit/cancel
func (h *SessionHandler) CancelSubmit(c *gin.Context) {
	if err := h.sessionManager.CancelSubmit(currentUserID(c)); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Submit cancelled"})
}

// ConfirmSubmit завершает сессию и возвращает итоговую сводку
// POST /api/sessions/current/submit/confirm
func (h *SessionHandler) ConfirmSubmit(c *gin.Context) {
	summary, attempt, err := h.sessionManager.ConfirmSubmit(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewResultSummaryResponse(summary, attempt.ID))
}

// AbandonRequest представляет запрос на выход из теста без сохранения
type AbandonRequest struct {
	Confirm bool `json:"confirm"`
}

// Abandon закрывает сессию без подсчета очков. Тело {"confirm": true}
// обязательно - защита от случайного выхода.
// DELETE /api/sessions/current
func (h *SessionHandler) Abandon(c *gin.Context) {
	var req AbandonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.sessionManager.Abandon(currentUserID(c), req.Confirm); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Session abandoned"})
}
