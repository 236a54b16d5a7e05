package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/repository"
	"github.com/rajanagg1105/testmaxx-sub000/internal/handler/dto"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service"
)

// TestHandler обрабатывает запросы, связанные с тестами
type TestHandler struct {
	testService *service.TestService
	userService *service.UserService
}

// NewTestHandler создает новый обработчик тестов
func NewTestHandler(testService *service.TestService, userService *service.UserService) *TestHandler {
	return &TestHandler{
		testService: testService,
		userService: userService,
	}
}

// ListActiveTests возвращает активные тесты для класса ученика
// GET /api/tests
func (h *TestHandler) ListActiveTests(c *gin.Context) {
	// Класс берется из профиля: ученик видит только свои тесты
	user, err := h.userService.GetUserByID(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}

	class := user.Class
	if raw := c.Query("class"); raw != "" && isAdmin(c) {
		if parsed, err := parseClass(raw); err == nil {
			class = parsed
		}
	}

	tests, err := h.testService.GetActiveTestsForClass(class)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tests": dto.NewListTestResponse(tests)})
}

// GetTest возвращает метаданные теста без вопросов. Вопросы ученик
// получает только внутри активной сессии.
// GET /api/tests/:id
func (h *TestHandler) GetTest(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	test, err := h.testService.GetTestByID(testID)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTestResponse(test, false))
}

// --- Админские операции ---

// CreateTestRequest представляет запрос на создание теста
type CreateTestRequest struct {
	Title           string `json:"title" binding:"required,min=3,max=100"`
	Description     string `json:"description" binding:"omitempty,max=500"`
	Class           int    `json:"class" binding:"required"`
	Subject         string `json:"subject" binding:"required,min=2,max=50"`
	DurationMinutes int    `json:"duration_minutes" binding:"required"`
}

// CreateTest создает новый тест
// POST /api/admin/tests
func (h *TestHandler) CreateTest(c *gin.Context) {
	var req CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, err := h.testService.CreateTest(service.CreateTestInput{
		Title:           req.Title,
		Description:     req.Description,
		Class:           req.Class,
		Subject:         req.Subject,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTestResponse(test, false))
}

// ListTests возвращает тесты по фильтрам (включая неактивные)
// GET /api/admin/tests?class=7&subject=Maths&is_active=true&search=algebra
func (h *TestHandler) ListTests(c *gin.Context) {
	page, pageSize := parsePagination(c)

	filters := repository.TestFilters{
		Subject: c.Query("subject"),
		Search:  c.Query("search"),
	}
	if raw := c.Query("class"); raw != "" {
		if parsed, err := parseClass(raw); err == nil {
			filters.Class = parsed
		}
	}
	if raw := c.Query("is_active"); raw != "" {
		active := raw == "true"
		filters.IsActive = &active
	}

	tests, total, err := h.testService.ListTests(filters, page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.PaginatedTestResponse{
		Tests:   dto.NewListTestResponse(tests),
		Total:   total,
		Page:    page,
		PerPage: pageSize,
	})
}

// GetTestWithAnswers возвращает тест с вопросами и правильными ответами
// GET /api/admin/tests/:id
func (h *TestHandler) GetTestWithAnswers(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	test, err := h.testService.GetTestWithQuestions(testID)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	questions := make([]dto.AdminQuestionResponse, len(test.Questions))
	for i := range test.Questions {
		questions[i] = dto.NewAdminQuestionResponse(&test.Questions[i])
	}
	c.JSON(http.StatusOK, gin.H{
		"test":      dto.NewTestResponse(test, false),
		"questions": questions,
	})
}

// UpdateTest обновляет метаданные теста
// PUT /api/admin/tests/:id
func (h *TestHandler) UpdateTest(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	var req CreateTestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	test, err := h.testService.UpdateTest(testID, service.CreateTestInput{
		Title:           req.Title,
		Description:     req.Description,
		Class:           req.Class,
		Subject:         req.Subject,
		DurationMinutes: req.DurationMinutes,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTestResponse(test, false))
}

// SetActiveRequest представляет запрос на включение/выключение теста
type SetActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// SetActive включает или выключает тест для учеников
// PATCH /api/admin/tests/:id/active
func (h *TestHandler) SetActive(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.testService.SetActive(testID, *req.IsActive); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": testID, "is_active": *req.IsActive})
}

// DeleteTest удаляет тест вместе с вопросами
// DELETE /api/admin/tests/:id
func (h *TestHandler) DeleteTest(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	if err := h.testService.DeleteTest(testID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Test deleted"})
}

// QuestionPayload представляет вопрос в запросах админки
type QuestionPayload struct {
	Type          string   `json:"type" binding:"required"`
	Text          string   `json:"text" binding:"required,min=3,max=1000"`
	Options       []string `json:"options" binding:"omitempty,max=6"`
	CorrectOption int      `json:"correct_option"`
	CorrectText   string   `json:"correct_text"`
	Explanation   string   `json:"explanation" binding:"omitempty,max=1000"`
	Topic         string   `json:"topic" binding:"required,max=100"`
	Difficulty    string   `json:"difficulty" binding:"omitempty,oneof=easy medium hard"`
}

func (p *QuestionPayload) toEntity() entity.Question {
	return entity.Question{
		Type:          p.Type,
		Text:          p.Text,
		Options:       entity.StringArray(p.Options),
		CorrectOption: p.CorrectOption,
		CorrectText:   p.CorrectText,
		Explanation:   p.Explanation,
		Topic:         p.Topic,
		Difficulty:    p.Difficulty,
	}
}

// AddQuestionsRequest представляет запрос на добавление вопросов
type AddQuestionsRequest struct {
	Questions []QuestionPayload `json:"questions" binding:"required,min=1,dive"`
}

// AddQuestions добавляет вопросы к тесту
// POST /api/admin/tests/:id/questions
func (h *TestHandler) AddQuestions(c *gin.Context) {
	testID := c.MustGet("testID").(uint)

	var req AddQuestionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	questions := make([]entity.Question, len(req.Questions))
	for i := range req.Questions {
		questions[i] = req.Questions[i].toEntity()
	}

	if err := h.testService.AddQuestions(testID, questions); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Questions added", "count": len(questions)})
}

// UpdateQuestion обновляет вопрос
// PUT /api/admin/questions/:id
func (h *TestHandler) UpdateQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	var req QuestionPayload
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	question := req.toEntity()
	if err := h.testService.UpdateQuestion(questionID, &question); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewAdminQuestionResponse(&question))
}

// DeleteQuestion удаляет вопрос
// DELETE /api/admin/questions/:id
func (h *TestHandler) DeleteQuestion(c *gin.Context) {
	questionID := c.MustGet("questionID").(uint)

	if err := h.testService.DeleteQuestion(questionID); err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Question deleted"})
}
