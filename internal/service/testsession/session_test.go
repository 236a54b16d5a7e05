package testsession

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
)

func newTestSession(t *testing.T, questionCount int) *Session {
	t.Helper()
	session, err := NewSession("sess-1", 42, buildMCQTest(questionCount), time.Now())
	require.NoError(t, err)
	return session
}

func TestNewSession_ConfigurationErrors(t *testing.T) {
	// Arrange
	noQuestions := buildMCQTest(0)
	shortDuration := buildMCQTest(3)
	shortDuration.DurationMinutes = 4
	inactive := buildMCQTest(3)
	inactive.IsActive = false

	testCases := []struct {
		name string
		test *entity.Test
	}{
		{"nil тест", nil},
		{"тест без вопросов", noQuestions},
		{"длительность меньше минимума", shortDuration},
		{"неактивный тест", inactive},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			session, err := NewSession("sess-1", 42, tc.test, time.Now())

			// Assert: ошибки конфигурации отклоняются до старта сессии
			assert.Nil(t, session)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestSession_Answer_ToggleOff(t *testing.T) {
	// Arrange
	session := newTestSession(t, 3)

	// Act: выбор, затем повторный выбор того же значения
	session.Answer(1, entity.OptionAnswer(2))
	answersAfterSelect := session.Answers()
	session.Answer(1, entity.OptionAnswer(2))
	answersAfterToggle := session.Answers()

	// Assert: повторный выбор снимает ответ
	require.Len(t, answersAfterSelect, 1)
	assert.True(t, answersAfterSelect[1].Equal(entity.OptionAnswer(2)))
	assert.Len(t, answersAfterToggle, 0, "toggle-off должен вернуть карту в исходное состояние")
}

func TestSession_Answer_ReplaceValue(t *testing.T) {
	// Arrange
	session := newTestSession(t, 3)

	// Act: выбор другого значения заменяет, а не снимает
	session.Answer(1, entity.OptionAnswer(0))
	session.Answer(1, entity.OptionAnswer(3))

	// Assert
	answers := session.Answers()
	require.Len(t, answers, 1)
	assert.True(t, answers[1].Equal(entity.OptionAnswer(3)))
}

func TestSession_Answer_UnknownQuestionIgnored(t *testing.T) {
	// Arrange
	session := newTestSession(t, 2)

	// Act
	session.Answer(999, entity.OptionAnswer(0))

	// Assert
	assert.Len(t, session.Answers(), 0, "ответ на неизвестный вопрос игнорируется")
}

func TestSession_Navigate_ClampsSilently(t *testing.T) {
	// Arrange
	session := newTestSession(t, 3)

	// Act & Assert: валидный индекс применяется
	session.Navigate(2)
	assert.Equal(t, 2, session.State().CurrentIndex)

	// Индексы вне диапазона игнорируются без ошибки
	session.Navigate(-1)
	assert.Equal(t, 2, session.State().CurrentIndex)
	session.Navigate(3)
	assert.Equal(t, 2, session.State().CurrentIndex)
}

func TestSession_QuestionStatuses_Derived(t *testing.T) {
	// Arrange
	session := newTestSession(t, 4)

	// Act: вопрос 1 - ответ, вопрос 2 - пометка, вопрос 3 - ответ+пометка
	session.Answer(1, entity.OptionAnswer(0))
	session.ToggleFlag(2)
	session.Answer(3, entity.OptionAnswer(1))
	session.ToggleFlag(3)

	// Assert: четыре взаимоисключающих статуса
	statuses := session.QuestionStatuses()
	assert.Equal(t, []string{
		QuestionStatusAnswered,
		QuestionStatusFlagged,
		QuestionStatusAnsweredFlagged,
		QuestionStatusUnanswered,
	}, statuses)
}

func TestSession_ToggleFlag_DoesNotAffectScoring(t *testing.T) {
	// Arrange
	session := newTestSession(t, 2)
	session.Answer(1, entity.OptionAnswer(0))
	session.ToggleFlag(1)
	session.ToggleFlag(2)

	// Act
	summary, ok := session.Finalize(FinalizeReasonManual)

	// Assert: пометки не влияют на результат
	require.True(t, ok)
	assert.Equal(t, 1, summary.Score)
}

func TestSession_RequestSubmit_Counts(t *testing.T) {
	// Arrange
	session := newTestSession(t, 5)
	session.Answer(1, entity.OptionAnswer(0))
	session.Answer(3, entity.OptionAnswer(2))

	// Act
	preview, err := session.RequestSubmit()

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, preview.Answered)
	assert.Equal(t, 3, preview.Unanswered)
	assert.Equal(t, StatusSubmitting, session.Status())
}

func TestSession_CancelSubmit_BackToInProgress(t *testing.T) {
	// Arrange
	session := newTestSession(t, 3)
	_, err := session.RequestSubmit()
	require.NoError(t, err)

	// Ответы во время Submitting игнорируются
	session.Answer(1, entity.OptionAnswer(0))
	assert.Len(t, session.Answers(), 0)

	// Act
	err = session.CancelSubmit()

	// Assert: сессия снова принимает ответы
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, session.Status())
	session.Answer(1, entity.OptionAnswer(0))
	assert.Len(t, session.Answers(), 1)
}

func TestSession_MutationsAfterSubmit_AreNoOps(t *testing.T) {
	// Arrange
	session := newTestSession(t, 3)
	session.Answer(1, entity.OptionAnswer(0))
	_, ok := session.Finalize(FinalizeReasonManual)
	require.True(t, ok)

	// Act: любые мутации после сдачи - молчаливые no-op
	session.Answer(2, entity.OptionAnswer(1))
	session.Navigate(2)
	session.ToggleFlag(1)
	_, err := session.RequestSubmit()

	// Assert
	assert.Error(t, err)
	assert.Len(t, session.Answers(), 1)
	assert.Equal(t, 0, session.State().CurrentIndex)
	assert.Equal(t, StatusSubmitted, session.Status())
}

func TestSession_Finalize_SingleFire(t *testing.T) {
	// Arrange
	session := newTestSession(t, 3)

	// Act: ручная сдача и истечение таймера соревнуются за финализацию
	var wg sync.WaitGroup
	var mu sync.Mutex
	fired := 0

	for i := 0; i < 10; i++ {
		wg.Add(1)
		reason := FinalizeReasonManual
		if i%2 == 0 {
			reason = FinalizeReasonTimeUp
		}
		go func(r string) {
			defer wg.Done()
			if _, ok := session.Finalize(r); ok {
				mu.Lock()
				fired++
				mu.Unlock()
			}
		}(reason)
	}
	wg.Wait()

	// Assert: попытка создается ровно один раз
	assert.Equal(t, 1, fired, "финализация должна сработать ровно один раз")
	assert.Equal(t, StatusSubmitted, session.Status())
}

func TestSession_Finalize_TimeSpent(t *testing.T) {
	// Arrange: тест на 30 минут, прошло 10 тиков
	session := newTestSession(t, 3)
	for i := 0; i < 10; i++ {
		session.Tick()
	}

	// Act
	summary, ok := session.Finalize(FinalizeReasonManual)

	// Assert: timeSpent = настроенная длительность минус остаток
	require.True(t, ok)
	assert.Equal(t, 10, summary.TimeSpentSec)
}

func TestSession_Tick_ExpiresAtZero(t *testing.T) {
	// Arrange: минимально допустимая длительность 5 минут = 300 секунд
	test := buildMCQTest(2)
	test.DurationMinutes = 5
	session, err := NewSession("sess-1", 42, test, time.Now())
	require.NoError(t, err)

	// Act: тикаем до нуля
	var expired bool
	for i := 0; i < 300; i++ {
		_, expired = session.Tick()
	}

	// Assert
	assert.True(t, expired, "на трехсотом тике время должно истечь")
	assert.Equal(t, 0, session.SecondsLeft())

	// Последующие тики не уводят время в минус
	left, expiredAgain := session.Tick()
	assert.Equal(t, 0, left)
	assert.True(t, expiredAgain)
}

func TestSession_Close_DiscardsWithoutSummary(t *testing.T) {
	// Arrange
	session := newTestSession(t, 3)
	session.Answer(1, entity.OptionAnswer(0))

	// Act
	err := session.Close()

	// Assert: сессия закрыта, финализация больше невозможна
	require.NoError(t, err)
	assert.Equal(t, StatusClosed, session.Status())
	_, ok := session.Finalize(FinalizeReasonTimeUp)
	assert.False(t, ok, "закрытая сессия не должна финализироваться")

	// Повторное закрытие - конфликт
	assert.ErrorIs(t, session.Close(), apperrors.ErrConflict)
}

func TestSession_State_Snapshot(t *testing.T) {
	// Arrange
	session := newTestSession(t, 3)
	session.Answer(1, entity.OptionAnswer(2))
	session.ToggleFlag(2)
	session.Navigate(1)

	// Act
	state := session.State()

	// Assert
	assert.Equal(t, "sess-1", state.SessionID)
	assert.Equal(t, uint(42), state.UserID)
	assert.Equal(t, uint(1), state.TestID)
	assert.Equal(t, StatusInProgress, state.Status)
	assert.Equal(t, 1, state.CurrentIndex)
	assert.Equal(t, 30*60, state.SecondsLeft)
	assert.Equal(t, []uint{2}, state.Flags)
	require.Len(t, state.Answers, 1)

	// Снимок независим от сессии
	state.Answers[3] = entity.OptionAnswer(0)
	assert.Len(t, session.Answers(), 1)
}
