package service

import (
	"fmt"
	"log"
	"time"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/repository"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service/testsession"
)

// AttemptService предоставляет доступ к истории попыток и их разбору
type AttemptService struct {
	attemptRepo repository.AttemptRepository
	testRepo    repository.TestRepository
	userRepo    repository.UserRepository
}

// NewAttemptService создает новый сервис попыток
func NewAttemptService(
	attemptRepo repository.AttemptRepository,
	testRepo repository.TestRepository,
	userRepo repository.UserRepository,
) *AttemptService {
	return &AttemptService{
		attemptRepo: attemptRepo,
		testRepo:    testRepo,
		userRepo:    userRepo,
	}
}

// AttemptDetail - сохраненная попытка вместе с повопросным разбором
type AttemptDetail struct {
	Attempt *entity.TestAttempt
	Test    *entity.Test
	// Review пересобирается из сохраненных ответов и актуального теста.
	// Итоговые цифры (score, percentage) берутся из попытки: они
	// зафиксированы в момент сдачи и не меняются задним числом.
	Review *testsession.Summary
}

// GetUserAttempts возвращает историю попыток ученика
func (s *AttemptService) GetUserAttempts(userID uint, page, pageSize int) ([]entity.TestAttempt, int64, error) {
	page, pageSize = clampPage(page, pageSize)
	return s.attemptRepo.GetUserAttempts(userID, pageSize, (page-1)*pageSize)
}

// GetAttemptDetail возвращает попытку с разбором каждого вопроса.
// Ученик видит только свои попытки, администратор - любые.
func (s *AttemptService) GetAttemptDetail(attemptID, requesterID uint, isAdmin bool) (*AttemptDetail, error) {
	attempt, err := s.attemptRepo.GetByID(attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.UserID != requesterID && !isAdmin {
		return nil, fmt.Errorf("%w: attempt belongs to another user", apperrors.ErrForbidden)
	}

	detail := &AttemptDetail{Attempt: attempt}

	// Тест мог быть удален после сдачи: попытка остается читаемой,
	// просто без повопросного разбора
	test, err := s.testRepo.GetWithQuestions(attempt.TestID)
	if err != nil {
		log.Printf("[AttemptService] Тест #%d для попытки #%d недоступен: %v", attempt.TestID, attemptID, err)
		return detail, nil
	}

	detail.Test = test
	detail.Review = testsession.Score(test, attempt.Answers, attempt.TimeSpentSec)
	return detail, nil
}

// GetTestAttempts возвращает попытки по конкретному тесту (для админа)
func (s *AttemptService) GetTestAttempts(testID uint, page, pageSize int) ([]entity.TestAttempt, int64, error) {
	page, pageSize = clampPage(page, pageSize)
	return s.attemptRepo.GetTestAttempts(testID, pageSize, (page-1)*pageSize)
}

// AttemptExportRow - строка выгрузки результатов теста
type AttemptExportRow struct {
	AttemptID      uint
	Username       string
	Email          string
	Class          int
	Score          int
	TotalQuestions int
	Percentage     int
	TimeSpentSec   int
	CompletedAt    time.Time
}

// ExportRows собирает все попытки теста для выгрузки в CSV или XLSX.
// Строки уже отсортированы: лучшие результаты первыми.
func (s *AttemptService) ExportRows(testID uint) (*entity.Test, []AttemptExportRow, error) {
	test, err := s.testRepo.GetByID(testID)
	if err != nil {
		return nil, nil, err
	}

	attempts, err := s.attemptRepo.GetAllTestAttempts(testID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load attempts: %w", err)
	}

	users := make(map[uint]*entity.User)
	rows := make([]AttemptExportRow, 0, len(attempts))
	for i := range attempts {
		a := &attempts[i]

		user, cached := users[a.UserID]
		if !cached {
			user, err = s.userRepo.GetByID(a.UserID)
			if err != nil {
				log.Printf("[AttemptService] Пользователь #%d для выгрузки не найден: %v", a.UserID, err)
				user = &entity.User{Username: fmt.Sprintf("user-%d", a.UserID)}
			}
			users[a.UserID] = user
		}

		rows = append(rows, AttemptExportRow{
			AttemptID:      a.ID,
			Username:       user.Username,
			Email:          user.Email,
			Class:          user.Class,
			Score:          a.Score,
			TotalQuestions: a.TotalQuestions,
			Percentage:     a.Percentage,
			TimeSpentSec:   a.TimeSpentSec,
			CompletedAt:    a.CompletedAt,
		})
	}

	return test, rows, nil
}
