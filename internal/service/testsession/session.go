package testsession

import (
	"fmt"
	"sync"
	"time"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
)

// Статусы сессии прохождения теста
const (
	StatusInProgress = "in_progress"
	StatusSubmitting = "submitting"
	StatusSubmitted  = "submitted"
	StatusClosed     = "closed"
)

// Производные статусы вопроса для панели навигации
const (
	QuestionStatusAnswered        = "answered"
	QuestionStatusFlagged         = "flagged"
	QuestionStatusAnsweredFlagged = "answered-flagged"
	QuestionStatusUnanswered      = "unanswered"
)

// Причины финализации сессии
const (
	FinalizeReasonManual = "manual"
	FinalizeReasonTimeUp = "time_up"
)

// SubmitPreview содержит счетчики для диалога подтверждения сдачи
type SubmitPreview struct {
	Answered   int `json:"answered"`
	Unanswered int `json:"unanswered"`
}

// State - снимок состояния сессии для клиента (resync после перезагрузки)
type State struct {
	SessionID        string           `json:"session_id"`
	TestID           uint             `json:"test_id"`
	UserID           uint             `json:"user_id"`
	Status           string           `json:"status"`
	CurrentIndex     int              `json:"current_index"`
	SecondsLeft      int              `json:"seconds_left"`
	Answers          entity.AnswerMap `json:"answers"`
	Flags            []uint           `json:"flags"`
	QuestionStatuses []string         `json:"question_statuses"`
	StartedAt        time.Time        `json:"started_at"`
}

// Session - машина состояний одной попытки прохождения теста.
// Состояние принадлежит только сессии и меняется исключительно под mu:
// к нему обращаются HTTP-горутины и горутина таймера.
type Session struct {
	id     string
	userID uint
	test   *entity.Test

	mu           sync.Mutex
	status       string
	answers      entity.AnswerMap
	flags        map[uint]struct{}
	currentIndex int
	secondsLeft  int
	finalized    bool
	startedAt    time.Time

	// Индекс вопросов по ID для проверки ответов на неизвестные вопросы
	questionIDs map[uint]struct{}
}

// NewSession создает сессию по тесту. Ошибки конфигурации
// (нет вопросов, длительность меньше минимума, тест неактивен)
// отклоняются здесь, до запуска таймера.
func NewSession(id string, userID uint, test *entity.Test, startedAt time.Time) (*Session, error) {
	if test == nil {
		return nil, fmt.Errorf("%w: test is required", apperrors.ErrValidation)
	}
	if len(test.Questions) == 0 {
		return nil, fmt.Errorf("%w: test has no questions", apperrors.ErrValidation)
	}
	if test.DurationMinutes < entity.MinTestDurationMinutes {
		return nil, fmt.Errorf("%w: test duration must be at least %d minutes", apperrors.ErrValidation, entity.MinTestDurationMinutes)
	}
	if !test.IsActive {
		return nil, fmt.Errorf("%w: test is not active", apperrors.ErrValidation)
	}

	ids := make(map[uint]struct{}, len(test.Questions))
	for _, q := range test.Questions {
		ids[q.ID] = struct{}{}
	}

	return &Session{
		id:          id,
		userID:      userID,
		test:        test,
		status:      StatusInProgress,
		answers:     entity.AnswerMap{},
		flags:       make(map[uint]struct{}),
		secondsLeft: test.DurationSeconds(),
		startedAt:   startedAt,
		questionIDs: ids,
	}, nil
}

// ID возвращает идентификатор сессии
func (s *Session) ID() string {
	return s.id
}

// UserID возвращает идентификатор ученика
func (s *Session) UserID() uint {
	return s.userID
}

// Test возвращает тест сессии. Тест неизменяем на всё время сессии.
func (s *Session) Test() *entity.Test {
	return s.test
}

// Answer записывает ответ на вопрос. Повторный выбор того же значения
// снимает ответ (toggle-off). Вне InProgress и для неизвестных
// вопросов - молчаливый no-op.
func (s *Session) Answer(questionID uint, value entity.AnswerValue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return
	}
	if _, ok := s.questionIDs[questionID]; !ok {
		return
	}
	if value.IsZero() {
		return
	}

	if existing, ok := s.answers[questionID]; ok && existing.Equal(value) {
		delete(s.answers, questionID)
		return
	}
	s.answers[questionID] = value
}

// Navigate переводит указатель текущего вопроса. Индекс вне диапазона
// игнорируется без ошибки.
func (s *Session) Navigate(index int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return
	}
	if index < 0 || index >= len(s.test.Questions) {
		return
	}
	s.currentIndex = index
}

// ToggleFlag переключает пометку "вернуться к вопросу".
// Чисто косметическая операция, на подсчет очков не влияет.
func (s *Session) ToggleFlag(questionID uint) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return
	}
	if _, ok := s.questionIDs[questionID]; !ok {
		return
	}
	if _, ok := s.flags[questionID]; ok {
		delete(s.flags, questionID)
	} else {
		s.flags[questionID] = struct{}{}
	}
}

// RequestSubmit переводит сессию InProgress -> Submitting и возвращает
// счетчики отвеченных/неотвеченных вопросов для диалога подтверждения.
// Частичная сдача разрешена, жесткой блокировки нет.
func (s *Session) RequestSubmit() (*SubmitPreview, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusInProgress {
		return nil, fmt.Errorf("%w: session is not in progress", apperrors.ErrConflict)
	}
	s.status = StatusSubmitting

	answered := len(s.answers)
	return &SubmitPreview{
		Answered:   answered,
		Unanswered: len(s.test.Questions) - answered,
	}, nil
}

// CancelSubmit возвращает сессию из Submitting обратно в InProgress
func (s *Session) CancelSubmit() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusSubmitting {
		return fmt.Errorf("%w: session is not awaiting submit confirmation", apperrors.ErrConflict)
	}
	s.status = StatusInProgress
	return nil
}

// Finalize завершает сессию и подсчитывает результат. Выполняется
// не более одного раза: ручное подтверждение и истечение таймера
// соревнуются за этот переход, второй вызов получает ok=false.
func (s *Session) Finalize(reason string) (*Summary, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized || s.status == StatusClosed {
		return nil, false
	}
	s.finalized = true
	s.status = StatusSubmitted

	elapsed := s.test.DurationSeconds() - s.secondsLeft
	summary := Score(s.test, s.answers, elapsed)
	return summary, true
}

// Close завершает сессию без сохранения результата (отказ от теста).
// Подтверждение у пользователя обязан запросить вызывающий слой.
func (s *Session) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized || s.status == StatusClosed {
		return fmt.Errorf("%w: session already finished", apperrors.ErrConflict)
	}
	s.status = StatusClosed
	return nil
}

// Tick уменьшает оставшееся время на секунду.
// Возвращает оставшиеся секунды и признак истечения времени.
// После финализации или закрытия - no-op.
func (s *Session) Tick() (secondsLeft int, expired bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.finalized || s.status == StatusClosed {
		return s.secondsLeft, false
	}
	if s.secondsLeft > 0 {
		s.secondsLeft--
	}
	return s.secondsLeft, s.secondsLeft == 0
}

// Status возвращает текущий статус сессии
func (s *Session) Status() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// SecondsLeft возвращает оставшееся время в секундах
func (s *Session) SecondsLeft() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.secondsLeft
}

// Answers возвращает копию карты ответов
func (s *Session) Answers() entity.AnswerMap {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.answers.Clone()
}

// State возвращает снимок состояния для клиента
func (s *Session) State() *State {
	s.mu.Lock()
	defer s.mu.Unlock()

	flags := make([]uint, 0, len(s.flags))
	for _, q := range s.test.Questions {
		if _, ok := s.flags[q.ID]; ok {
			flags = append(flags, q.ID)
		}
	}

	return &State{
		SessionID:        s.id,
		TestID:           s.test.ID,
		UserID:           s.userID,
		Status:           s.status,
		CurrentIndex:     s.currentIndex,
		SecondsLeft:      s.secondsLeft,
		Answers:          s.answers.Clone(),
		Flags:            flags,
		QuestionStatuses: s.questionStatusesLocked(),
		StartedAt:        s.startedAt,
	}
}

// QuestionStatuses возвращает производный статус каждого вопроса
// в порядке вопросов теста. Статусы нигде не хранятся, всегда
// вычисляются из карты ответов и набора пометок.
func (s *Session) QuestionStatuses() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.questionStatusesLocked()
}

func (s *Session) questionStatusesLocked() []string {
	statuses := make([]string, len(s.test.Questions))
	for i, q := range s.test.Questions {
		_, answered := s.answers[q.ID]
		_, flagged := s.flags[q.ID]
		switch {
		case answered && flagged:
			statuses[i] = QuestionStatusAnsweredFlagged
		case answered:
			statuses[i] = QuestionStatusAnswered
		case flagged:
			statuses[i] = QuestionStatusFlagged
		default:
			statuses[i] = QuestionStatusUnanswered
		}
	}
	return statuses
}
