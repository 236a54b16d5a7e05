package service

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/repository"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
)

const (
	activeTestsCacheKeyFmt = "tests:active:class:%d"
	activeTestsCacheTTL    = 5 * time.Minute
)

// TestService предоставляет методы для работы с тестами и вопросами
type TestService struct {
	testRepo     repository.TestRepository
	questionRepo repository.QuestionRepository
	cacheRepo    repository.CacheRepository
}

// NewTestService создает новый сервис тестов
func NewTestService(
	testRepo repository.TestRepository,
	questionRepo repository.QuestionRepository,
	cacheRepo repository.CacheRepository,
) *TestService {
	return &TestService{
		testRepo:     testRepo,
		questionRepo: questionRepo,
		cacheRepo:    cacheRepo,
	}
}

// CreateTestInput содержит данные для создания теста
type CreateTestInput struct {
	Title           string
	Description     string
	Class           int
	Subject         string
	DurationMinutes int
}

// CreateTest создает новый тест. Тест рождается неактивным: его нельзя
// проходить, пока администратор не добавит вопросы и не включит его.
func (s *TestService) CreateTest(input CreateTestInput) (*entity.Test, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Subject = strings.TrimSpace(input.Subject)

	if input.Title == "" {
		return nil, fmt.Errorf("%w: title is required", apperrors.ErrValidation)
	}
	if input.Subject == "" {
		return nil, fmt.Errorf("%w: subject is required", apperrors.ErrValidation)
	}
	if input.Class < 6 || input.Class > 8 {
		return nil, fmt.Errorf("%w: class must be between 6 and 8", apperrors.ErrValidation)
	}
	if input.DurationMinutes < entity.MinTestDurationMinutes {
		return nil, fmt.Errorf("%w: duration must be at least %d minutes", apperrors.ErrValidation, entity.MinTestDurationMinutes)
	}

	test := &entity.Test{
		Title:           input.Title,
		Description:     input.Description,
		Class:           input.Class,
		Subject:         input.Subject,
		DurationMinutes: input.DurationMinutes,
		IsActive:        false,
	}

	if err := s.testRepo.Create(test); err != nil {
		return nil, fmt.Errorf("failed to create test: %w", err)
	}

	log.Printf("[TestService] Создан тест #%d (%s, класс %d)", test.ID, test.Subject, test.Class)
	return test, nil
}

// UpdateTest обновляет метаданные теста
func (s *TestService) UpdateTest(testID uint, input CreateTestInput) (*entity.Test, error) {
	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return nil, err
	}

	input.Title = strings.TrimSpace(input.Title)
	input.Subject = strings.TrimSpace(input.Subject)

	if input.Title != "" {
		test.Title = input.Title
	}
	if input.Description != "" {
		test.Description = input.Description
	}
	if input.Subject != "" {
		test.Subject = input.Subject
	}
	if input.Class != 0 {
		if input.Class < 6 || input.Class > 8 {
			return nil, fmt.Errorf("%w: class must be between 6 and 8", apperrors.ErrValidation)
		}
		test.Class = input.Class
	}
	if input.DurationMinutes != 0 {
		if input.DurationMinutes < entity.MinTestDurationMinutes {
			return nil, fmt.Errorf("%w: duration must be at least %d minutes", apperrors.ErrValidation, entity.MinTestDurationMinutes)
		}
		test.DurationMinutes = input.DurationMinutes
	}

	if err := s.testRepo.Update(test); err != nil {
		return nil, fmt.Errorf("failed to update test: %w", err)
	}

	s.invalidateActiveCache(test.Class)
	return test, nil
}

// SetActive включает или выключает тест для учеников. Активировать
// тест без вопросов нельзя.
func (s *TestService) SetActive(testID uint, active bool) error {
	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return err
	}

	if active {
		count, err := s.questionRepo.CountByTestID(testID)
		if err != nil {
			return fmt.Errorf("failed to count questions: %w", err)
		}
		if count == 0 {
			return fmt.Errorf("%w: cannot activate a test without questions", apperrors.ErrValidation)
		}
	}

	if err := s.testRepo.UpdateActive(testID, active); err != nil {
		return err
	}

	s.invalidateActiveCache(test.Class)
	log.Printf("[TestService] Тест #%d: is_active=%v", testID, active)
	return nil
}

// GetTestByID возвращает тест без вопросов
func (s *TestService) GetTestByID(testID uint) (*entity.Test, error) {
	return s.testRepo.GetByID(testID)
}

// GetTestWithQuestions возвращает тест вместе с вопросами
func (s *TestService) GetTestWithQuestions(testID uint) (*entity.Test, error) {
	return s.testRepo.GetWithQuestions(testID)
}

// ListTests возвращает тесты по фильтрам с пагинацией
func (s *TestService) ListTests(filters repository.TestFilters, page, pageSize int) ([]entity.Test, int64, error) {
	page, pageSize = clampPage(page, pageSize)
	return s.testRepo.List(filters, pageSize, (page-1)*pageSize)
}

// GetActiveTestsForClass возвращает активные тесты класса. Список
// кешируется в Redis: это самый горячий запрос приложения.
func (s *TestService) GetActiveTestsForClass(class int) ([]entity.Test, error) {
	if class < 6 || class > 8 {
		return nil, fmt.Errorf("%w: class must be between 6 and 8", apperrors.ErrValidation)
	}

	cacheKey := fmt.Sprintf(activeTestsCacheKeyFmt, class)
	var cached []entity.Test
	if err := s.cacheRepo.GetJSON(cacheKey, &cached); err == nil {
		return cached, nil
	}

	tests, err := s.testRepo.GetActiveForClass(class)
	if err != nil {
		return nil, err
	}

	if err := s.cacheRepo.SetJSON(cacheKey, tests, activeTestsCacheTTL); err != nil {
		log.Printf("[TestService] Не удалось закешировать тесты класса %d: %v", class, err)
	}
	return tests, nil
}

// DeleteTest удаляет тест вместе с вопросами
func (s *TestService) DeleteTest(testID uint) error {
	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return err
	}
	if err := s.testRepo.Delete(testID); err != nil {
		return err
	}
	s.invalidateActiveCache(test.Class)
	log.Printf("[TestService] Тест #%d удален", testID)
	return nil
}

// AddQuestions добавляет вопросы к тесту и пересчитывает сумму баллов
func (s *TestService) AddQuestions(testID uint, questions []entity.Question) error {
	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return err
	}

	if len(questions) == 0 {
		return fmt.Errorf("%w: at least one question is required", apperrors.ErrValidation)
	}
	for i := range questions {
		if err := validateQuestion(&questions[i]); err != nil {
			return fmt.Errorf("question %d: %w", i+1, err)
		}
		questions[i].TestID = testID
	}

	if err := s.questionRepo.CreateBatch(questions); err != nil {
		return fmt.Errorf("failed to create questions: %w", err)
	}

	if err := s.refreshTotalMarks(testID); err != nil {
		return err
	}
	s.invalidateActiveCache(test.Class)
	return nil
}

// UpdateQuestion обновляет вопрос
func (s *TestService) UpdateQuestion(questionID uint, updated *entity.Question) error {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return err
	}

	updated.ID = question.ID
	updated.TestID = question.TestID
	if err := validateQuestion(updated); err != nil {
		return err
	}
	return s.questionRepo.Update(updated)
}

// DeleteQuestion удаляет вопрос и пересчитывает сумму баллов теста
func (s *TestService) DeleteQuestion(questionID uint) error {
	question, err := s.questionRepo.GetByID(questionID)
	if err != nil {
		return err
	}
	if err := s.questionRepo.Delete(questionID); err != nil {
		return err
	}
	return s.refreshTotalMarks(question.TestID)
}

// refreshTotalMarks выравнивает total_marks с фактическим числом
// вопросов: каждый вопрос стоит один балл
func (s *TestService) refreshTotalMarks(testID uint) error {
	count, err := s.questionRepo.CountByTestID(testID)
	if err != nil {
		return fmt.Errorf("failed to count questions: %w", err)
	}
	return s.testRepo.UpdateTotalMarks(testID, int(count))
}

func (s *TestService) invalidateActiveCache(class int) {
	if err := s.cacheRepo.Delete(fmt.Sprintf(activeTestsCacheKeyFmt, class)); err != nil {
		log.Printf("[TestService] Не удалось сбросить кеш тестов класса %d: %v", class, err)
	}
}

// validateQuestion проверяет согласованность вопроса с его типом
func validateQuestion(q *entity.Question) error {
	q.Text = strings.TrimSpace(q.Text)
	if q.Text == "" {
		return fmt.Errorf("%w: question text is required", apperrors.ErrValidation)
	}
	if q.Topic == "" {
		return fmt.Errorf("%w: topic is required", apperrors.ErrValidation)
	}

	switch q.Type {
	case entity.QuestionTypeMCQ, entity.QuestionTypeTrueFalse, entity.QuestionTypeAssertionReason:
		if len(q.Options) < 2 {
			return fmt.Errorf("%w: choice question needs at least two options", apperrors.ErrValidation)
		}
		if q.CorrectOption < 0 || q.CorrectOption >= len(q.Options) {
			return fmt.Errorf("%w: correct_option is out of range", apperrors.ErrValidation)
		}
	case entity.QuestionTypeFillBlank:
		if q.CorrectText == "" {
			return fmt.Errorf("%w: correct_text is required for fill-blank questions", apperrors.ErrValidation)
		}
	default:
		return fmt.Errorf("%w: unknown question type %q", apperrors.ErrValidation, q.Type)
	}

	switch q.Difficulty {
	case entity.DifficultyEasy, entity.DifficultyMedium, entity.DifficultyHard:
	case "":
		q.Difficulty = entity.DifficultyMedium
	default:
		return fmt.Errorf("%w: unknown difficulty %q", apperrors.ErrValidation, q.Difficulty)
	}

	return nil
}
