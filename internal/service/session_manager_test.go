package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service/testsession"
)

// sessionTest создает активный тест из n вопросов mcq с правильным ответом 0
func sessionTest(n int) *entity.Test {
	questions := make([]entity.Question, n)
	for i := 0; i < n; i++ {
		questions[i] = entity.Question{
			ID:            uint(i + 1),
			TestID:        7,
			Type:          entity.QuestionTypeMCQ,
			Text:          fmt.Sprintf("Вопрос %d", i+1),
			Options:       entity.StringArray{"A", "B", "C", "D"},
			CorrectOption: 0,
			Topic:         "General",
		}
	}
	return &entity.Test{
		ID:              7,
		Title:           "Maths Unit Test",
		Class:           7,
		Subject:         "Maths",
		DurationMinutes: 30,
		IsActive:        true,
		Questions:       questions,
	}
}

type sessionManagerFixture struct {
	manager     *SessionManager
	testRepo    *MockTestRepository
	attemptRepo *MockAttemptRepository
	userRepo    *MockUserRepository
	cacheRepo   *MockCacheRepository
	publisher   *fakeEventPublisher
	email       *fakeEmailService
	clock       *testsession.ManualClock
}

func newSessionManagerFixture(t *testing.T) *sessionManagerFixture {
	t.Helper()
	f := &sessionManagerFixture{
		testRepo:    new(MockTestRepository),
		attemptRepo: new(MockAttemptRepository),
		userRepo:    new(MockUserRepository),
		cacheRepo:   new(MockCacheRepository),
		publisher:   new(fakeEventPublisher),
		email:       new(fakeEmailService),
		clock:       testsession.NewManualClock(time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)),
	}

	// Кеш в этих тестах - фоновый шум: снимки и блокировки настраиваются
	// по умолчанию, отдельные тесты переопределяют нужные вызовы
	f.cacheRepo.On("SetJSON", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.cacheRepo.On("Delete", mock.Anything).Return(nil).Maybe()
	f.cacheRepo.On("SetNX", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Maybe()
	f.cacheRepo.On("GetJSON", mock.Anything, mock.Anything).Return(apperrors.ErrNotFound).Maybe()

	f.manager = NewSessionManager(
		f.testRepo, f.attemptRepo, f.userRepo, f.cacheRepo,
		f.publisher, f.email, f.clock,
	)
	return f
}

func TestSessionManager_StartSession(t *testing.T) {
	// Arrange
	f := newSessionManagerFixture(t)
	f.testRepo.On("GetWithQuestions", uint(7)).Return(sessionTest(3), nil)

	// Act
	state, err := f.manager.StartSession(42, 7)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, testsession.StatusInProgress, state.Status)
	assert.Equal(t, 30*60, state.SecondsLeft)
	assert.NotEmpty(t, state.SessionID)

	// Вторая сессия для того же ученика - конфликт
	_, err = f.manager.StartSession(42, 7)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSessionManager_StartSession_ConfigurationRejected(t *testing.T) {
	// Arrange: тест без вопросов
	f := newSessionManagerFixture(t)
	f.testRepo.On("GetWithQuestions", uint(7)).Return(sessionTest(0), nil)

	// Act
	state, err := f.manager.StartSession(42, 7)

	// Assert: сессия не создана, повторный старт не конфликтует
	assert.Nil(t, state)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.manager.GetState(42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionManager_AnswerFlow(t *testing.T) {
	// Arrange
	f := newSessionManagerFixture(t)
	f.testRepo.On("GetWithQuestions", uint(7)).Return(sessionTest(3), nil)
	_, err := f.manager.StartSession(42, 7)
	require.NoError(t, err)

	// Act
	state, err := f.manager.Answer(42, 1, entity.OptionAnswer(2))
	require.NoError(t, err)
	_, err = f.manager.ToggleFlag(42, 2)
	require.NoError(t, err)
	state, err = f.manager.Navigate(42, 1)
	require.NoError(t, err)

	// Assert
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Len(t, state.Answers, 1)
	assert.Equal(t, []uint{2}, state.Flags)

	// Для чужого пользователя сессии нет
	_, err = f.manager.Answer(99, 1, entity.OptionAnswer(0))
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSessionManager_SnapshotWritten(t *testing.T) {
	// Arrange: перехватываем снимки, уходящие в Redis
	f := newSessionManagerFixture(t)
	f.testRepo.On("GetWithQuestions", uint(7)).Return(sessionTest(3), nil)

	var snapKey string
	var snapped *testsession.State
	f.cacheRepo.ExpectedCalls = nil
	f.cacheRepo.On("SetJSON", mock.Anything, mock.Anything, mock.Anything).Run(func(args mock.Arguments) {
		snapKey = args.String(0)
		snapped = args.Get(1).(*testsession.State)
	}).Return(nil)
	f.cacheRepo.On("Delete", mock.Anything).Return(nil).Maybe()
	f.cacheRepo.On("SetNX", mock.Anything, mock.Anything, mock.Anything).Return(true, nil).Maybe()

	// Act
	started, err := f.manager.StartSession(42, 7)
	require.NoError(t, err)
	answered, err := f.manager.Answer(42, 1, entity.OptionAnswer(2))
	require.NoError(t, err)

	// Assert: снимок лежит под ключом пользователя и отражает ответ
	assert.Equal(t, "session:user:42", snapKey)
	require.NotNil(t, snapped)
	assert.Equal(t, started.SessionID, snapped.SessionID)
	assert.Len(t, snapped.Answers, 1)
	assert.Equal(t, answered.Answers, snapped.Answers)
}

func TestSessionManager_GetState_FallsBackToSnapshot(t *testing.T) {
	// Arrange: в памяти сессии нет (рестарт), но снимок в Redis остался
	f := newSessionManagerFixture(t)
	f.cacheRepo.ExpectedCalls = nil
	f.cacheRepo.On("GetJSON", "session:user:42", mock.Anything).Run(func(args mock.Arguments) {
		dest := args.Get(1).(*testsession.State)
		dest.SessionID = "snap-1"
		dest.TestID = 7
		dest.Status = testsession.StatusInProgress
		dest.SecondsLeft = 90
	}).Return(nil).Once()

	// Act
	state, err := f.manager.GetState(42)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "snap-1", state.SessionID)
	assert.Equal(t, 90, state.SecondsLeft)
}

func TestSessionManager_ConfirmSubmit_PersistsAttempt(t *testing.T) {
	// Arrange
	f := newSessionManagerFixture(t)
	f.testRepo.On("GetWithQuestions", uint(7)).Return(sessionTest(3), nil)
	f.userRepo.On("GetByID", uint(42)).Return(&entity.User{ID: 42, Email: "kid@example.com"}, nil)

	var saved *entity.TestAttempt
	f.attemptRepo.On("Save", mock.AnythingOfType("*entity.TestAttempt")).Run(func(args mock.Arguments) {
		saved = args.Get(0).(*entity.TestAttempt)
	}).Return(nil).Once()

	_, err := f.manager.StartSession(42, 7)
	require.NoError(t, err)
	_, err = f.manager.Answer(42, 1, entity.OptionAnswer(0))
	require.NoError(t, err)

	// Act
	preview, err := f.manager.RequestSubmit(42)
	require.NoError(t, err)
	summary, attempt, err := f.manager.ConfirmSubmit(42)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 1, preview.Answered)
	assert.Equal(t, 2, preview.Unanswered)
	assert.Equal(t, 1, summary.Score)
	assert.Equal(t, 33, summary.Percentage)

	require.NotNil(t, saved)
	assert.Equal(t, uint(42), saved.UserID)
	assert.Equal(t, uint(7), saved.TestID)
	assert.Equal(t, attempt.Score, saved.Score)
	f.attemptRepo.AssertNumberOfCalls(t, "Save", 1)

	// Сессия освобождена
	_, err = f.manager.GetState(42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// События и письмо отправлены
	assert.Contains(t, f.publisher.eventTypes(), EventSessionSubmitted)
	assert.Eventually(t, func() bool {
		return len(f.email.sentTo()) == 1
	}, time.Second, 5*time.Millisecond, "письмо с результатом должно уйти")
}

func TestSessionManager_ConfirmSubmit_WithoutRequest(t *testing.T) {
	// Arrange
	f := newSessionManagerFixture(t)
	f.testRepo.On("GetWithQuestions", uint(7)).Return(sessionTest(3), nil)
	_, err := f.manager.StartSession(42, 7)
	require.NoError(t, err)

	// Act: подтверждение без запроса сдачи
	_, _, err = f.manager.ConfirmSubmit(42)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestSessionManager_PersistFailure_StillReturnsSummary(t *testing.T) {
	// Arrange: база недоступна при сохранении попытки
	f := newSessionManagerFixture(t)
	f.testRepo.On("GetWithQuestions", uint(7)).Return(sessionTest(2), nil)
	f.userRepo.On("GetByID", uint(42)).Return(&entity.User{ID: 42, Email: "kid@example.com"}, nil)
	f.attemptRepo.On("Save", mock.Anything).Return(errors.New("db down")).Once()

	_, err := f.manager.StartSession(42, 7)
	require.NoError(t, err)
	_, err = f.manager.RequestSubmit(42)
	require.NoError(t, err)

	// Act
	summary, attempt, err := f.manager.ConfirmSubmit(42)

	// Assert: результат все равно показывается ученику
	require.NoError(t, err)
	require.NotNil(t, summary)
	require.NotNil(t, attempt)
	assert.Equal(t, 2, summary.TotalQuestions)
}

func TestSessionManager_FinalizeLockHeld_SkipsSave(t *testing.T) {
	// Arrange: блокировка финализации уже захвачена другим процессом
	f := newSessionManagerFixture(t)
	f.testRepo.On("GetWithQuestions", uint(7)).Return(sessionTest(2), nil)
	f.userRepo.On("GetByID", uint(42)).Return(&entity.User{ID: 42, Email: "kid@example.com"}, nil)

	f.cacheRepo.ExpectedCalls = nil
	f.cacheRepo.On("SetJSON", mock.Anything, mock.Anything, mock.Anything).Return(nil).Maybe()
	f.cacheRepo.On("Delete", mock.Anything).Return(nil).Maybe()
	f.cacheRepo.On("SetNX", mock.Anything, mock.Anything, mock.Anything).Return(false, nil).Once()

	_, err := f.manager.StartSession(42, 7)
	require.NoError(t, err)
	_, err = f.manager.RequestSubmit(42)
	require.NoError(t, err)

	// Act
	summary, _, err := f.manager.ConfirmSubmit(42)

	// Assert: сводка есть, дубль попытки не сохраняется
	require.NoError(t, err)
	require.NotNil(t, summary)
	f.attemptRepo.AssertNotCalled(t, "Save", mock.Anything)
}

func TestSessionManager_Abandon(t *testing.T) {
	// Arrange
	f := newSessionManagerFixture(t)
	f.testRepo.On("GetWithQuestions", uint(7)).Return(sessionTest(2), nil)
	_, err := f.manager.StartSession(42, 7)
	require.NoError(t, err)

	// Act & Assert: без подтверждения сессия остается живой
	err = f.manager.Abandon(42, false)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	_, err = f.manager.GetState(42)
	require.NoError(t, err)

	// С подтверждением - закрывается без сохранения попытки
	err = f.manager.Abandon(42, true)
	require.NoError(t, err)
	_, err = f.manager.GetState(42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
	f.attemptRepo.AssertNotCalled(t, "Save", mock.Anything)

	// После закрытия можно начать новую сессию
	_, err = f.manager.StartSession(42, 7)
	assert.NoError(t, err)
}

func TestSessionManager_TimerExpiry_AutoSubmits(t *testing.T) {
	// Arrange: тест на 5 минут, ученик отвечает на один вопрос и замирает
	f := newSessionManagerFixture(t)
	test := sessionTest(2)
	test.DurationMinutes = 5
	f.testRepo.On("GetWithQuestions", uint(7)).Return(test, nil)
	f.userRepo.On("GetByID", uint(42)).Return(&entity.User{ID: 42, Email: "kid@example.com"}, nil)
	f.attemptRepo.On("Save", mock.AnythingOfType("*entity.TestAttempt")).Return(nil)

	_, err := f.manager.StartSession(42, 7)
	require.NoError(t, err)
	_, err = f.manager.Answer(42, 1, entity.OptionAnswer(0))
	require.NoError(t, err)

	// Act: время истекает
	f.clock.Advance(5 * time.Minute)

	// Assert: попытка сохранена ровно один раз, сессия освобождена
	require.Eventually(t, func() bool {
		_, err := f.manager.GetState(42)
		return errors.Is(err, apperrors.ErrNotFound)
	}, 2*time.Second, 5*time.Millisecond, "по истечении времени сессия должна закрыться")

	f.attemptRepo.AssertNumberOfCalls(t, "Save", 1)
	types := f.publisher.eventTypes()
	assert.Contains(t, types, EventSessionTimeUp)
	assert.Contains(t, types, EventSessionSubmitted)

	// Ручная сдача после автосдачи невозможна
	_, _, err = f.manager.ConfirmSubmit(42)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
