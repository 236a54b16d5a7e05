package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/repository"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service/testsession"
)

// События сессии, отправляемые ученику через WebSocket
const (
	EventSessionTick      = "session:tick"
	EventSessionTimeUp    = "session:time_up"
	EventSessionSubmitted = "session:submitted"
)

const (
	// Ключ снимка активной сессии в Redis (для переподключения клиента)
	sessionSnapshotKeyFmt = "session:user:%d"
	// Ключ блокировки финализации: страхует от двойного сохранения попытки
	finalizeLockKeyFmt = "session:finalize:%s"
	finalizeLockTTL    = time.Hour
	// Снимок обновляется не на каждом тике, а раз в интервал
	snapshotIntervalSec = 15
)

// SessionEventPublisher отправляет события активной сессии ее владельцу
type SessionEventPublisher interface {
	SendEventToUser(userID uint, eventType string, data interface{}) error
}

// SessionManager владеет живыми сессиями прохождения тестов: не больше
// одной на ученика. Он запускает таймер, рассылает события, сохраняет
// снимки в Redis и превращает финализированную сессию в TestAttempt.
type SessionManager struct {
	testRepo    repository.TestRepository
	attemptRepo repository.AttemptRepository
	userRepo    repository.UserRepository
	cacheRepo   repository.CacheRepository
	publisher   SessionEventPublisher
	email       EmailService
	clock       testsession.Clock

	mu       sync.Mutex
	sessions map[uint]*activeSession // ключ - userID
}

type activeSession struct {
	session *testsession.Session
	timer   *testsession.Timer
	test    *entity.Test
}

// NewSessionManager создает менеджер сессий. publisher и email могут
// быть nil: события и письма тогда просто не отправляются.
func NewSessionManager(
	testRepo repository.TestRepository,
	attemptRepo repository.AttemptRepository,
	userRepo repository.UserRepository,
	cacheRepo repository.CacheRepository,
	publisher SessionEventPublisher,
	email EmailService,
	clock testsession.Clock,
) *SessionManager {
	if clock == nil {
		clock = testsession.NewRealClock()
	}
	return &SessionManager{
		testRepo:    testRepo,
		attemptRepo: attemptRepo,
		userRepo:    userRepo,
		cacheRepo:   cacheRepo,
		publisher:   publisher,
		email:       email,
		clock:       clock,
		sessions:    make(map[uint]*activeSession),
	}
}

// StartSession начинает прохождение теста. Ошибки конфигурации теста
// (нет вопросов, длительность меньше минимума) отклоняются до того,
// как сессия будет создана.
func (m *SessionManager) StartSession(userID, testID uint) (*testsession.State, error) {
	m.mu.Lock()
	if _, exists := m.sessions[userID]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: user already has an active test session", apperrors.ErrConflict)
	}
	m.mu.Unlock()

	test, err := m.testRepo.GetWithQuestions(testID)
	if err != nil {
		return nil, err
	}

	session, err := testsession.NewSession(uuid.New().String(), userID, test, m.clock.Now())
	if err != nil {
		return nil, err
	}

	active := &activeSession{
		session: session,
		timer:   testsession.NewTimer(m.clock),
		test:    test,
	}

	m.mu.Lock()
	// Повторная проверка: пока грузили тест, могла стартовать другая сессия
	if _, exists := m.sessions[userID]; exists {
		m.mu.Unlock()
		return nil, fmt.Errorf("%w: user already has an active test session", apperrors.ErrConflict)
	}
	m.sessions[userID] = active
	m.mu.Unlock()

	active.timer.Start(func() bool {
		return m.tick(userID, active)
	})

	state := session.State()
	m.snapshot(userID, state)
	log.Printf("[SessionManager] Сессия %s начата: пользователь #%d, тест #%d, %d секунд",
		state.SessionID, userID, testID, state.SecondsLeft)
	return state, nil
}

// tick вызывается таймером раз в секунду. Возвращает false, когда
// отсчет пора остановить.
func (m *SessionManager) tick(userID uint, active *activeSession) bool {
	left, expired := active.session.Tick()
	if expired {
		m.publish(userID, EventSessionTimeUp, map[string]interface{}{
			"session_id": active.session.State().SessionID,
		})
		if _, _, err := m.finalize(userID, active, testsession.FinalizeReasonTimeUp); err != nil {
			log.Printf("[SessionManager] Финализация по таймеру не выполнена (пользователь #%d): %v", userID, err)
		}
		return false
	}

	m.publish(userID, EventSessionTick, map[string]interface{}{"seconds_left": left})
	if left%snapshotIntervalSec == 0 {
		m.snapshot(userID, active.session.State())
	}
	return true
}

// GetState возвращает состояние активной сессии. Если сессии нет в
// памяти (например, после рестарта сервера), отдается последний снимок
// из Redis - клиент хотя бы увидит, на чем остановился.
func (m *SessionManager) GetState(userID uint) (*testsession.State, error) {
	if active, err := m.get(userID); err == nil {
		return active.session.State(), nil
	}

	var state testsession.State
	if err := m.cacheRepo.GetJSON(m.snapshotKey(userID), &state); err != nil {
		return nil, fmt.Errorf("%w: no active test session", apperrors.ErrNotFound)
	}
	return &state, nil
}

// Questions возвращает вопросы активной сессии (без правильных ответов
// - их скрывает DTO-слой).
func (m *SessionManager) Questions(userID uint) (*entity.Test, error) {
	active, err := m.get(userID)
	if err != nil {
		return nil, err
	}
	return active.test, nil
}

// Answer фиксирует ответ на вопрос. Повторный выбор того же значения
// снимает ответ; неизвестные вопросы молча игнорируются.
func (m *SessionManager) Answer(userID, questionID uint, value entity.AnswerValue) (*testsession.State, error) {
	active, err := m.get(userID)
	if err != nil {
		return nil, err
	}
	active.session.Answer(questionID, value)
	state := active.session.State()
	m.snapshot(userID, state)
	return state, nil
}

// Navigate переводит указатель текущего вопроса. Индексы вне диапазона
// игнорируются без ошибки.
func (m *SessionManager) Navigate(userID uint, index int) (*testsession.State, error) {
	active, err := m.get(userID)
	if err != nil {
		return nil, err
	}
	active.session.Navigate(index)
	return active.session.State(), nil
}

// ToggleFlag переключает пометку "вернуться позже" на вопросе
func (m *SessionManager) ToggleFlag(userID, questionID uint) (*testsession.State, error) {
	active, err := m.get(userID)
	if err != nil {
		return nil, err
	}
	active.session.ToggleFlag(questionID)
	state := active.session.State()
	m.snapshot(userID, state)
	return state, nil
}

// RequestSubmit переводит сессию в режим подтверждения сдачи и
// возвращает счетчики для диалога подтверждения
func (m *SessionManager) RequestSubmit(userID uint) (*testsession.SubmitPreview, error) {
	active, err := m.get(userID)
	if err != nil {
		return nil, err
	}
	return active.session.RequestSubmit()
}

// CancelSubmit возвращает сессию из режима подтверждения к прохождению
func (m *SessionManager) CancelSubmit(userID uint) error {
	active, err := m.get(userID)
	if err != nil {
		return err
	}
	return active.session.CancelSubmit()
}

// ConfirmSubmit завершает сессию вручную. Если таймер успел истечь
// первым, вернется конфликт - попытка уже создана автоматически.
func (m *SessionManager) ConfirmSubmit(userID uint) (*testsession.Summary, *entity.TestAttempt, error) {
	active, err := m.get(userID)
	if err != nil {
		return nil, nil, err
	}
	if active.session.Status() != testsession.StatusSubmitting {
		return nil, nil, fmt.Errorf("%w: submit was not requested", apperrors.ErrConflict)
	}
	return m.finalize(userID, active, testsession.FinalizeReasonManual)
}

// Abandon закрывает сессию без подсчета очков. Требует явного
// подтверждения: случайный вызов не должен уничтожать прохождение.
func (m *SessionManager) Abandon(userID uint, confirmed bool) error {
	if !confirmed {
		return fmt.Errorf("%w: abandon requires explicit confirmation", apperrors.ErrValidation)
	}
	active, err := m.get(userID)
	if err != nil {
		return err
	}
	if err := active.session.Close(); err != nil {
		return err
	}
	m.release(userID, active)
	log.Printf("[SessionManager] Сессия пользователя #%d закрыта без сохранения результата", userID)
	return nil
}

// Shutdown останавливает таймеры всех живых сессий
func (m *SessionManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, active := range m.sessions {
		active.timer.Stop()
		delete(m.sessions, userID)
	}
	log.Println("[SessionManager] Все сессии остановлены")
}

// finalize единственная точка превращения сессии в попытку. Сама
// сессия гарантирует однократность внутри процесса, Redis-блокировка
// страхует от дублей между процессами.
func (m *SessionManager) finalize(userID uint, active *activeSession, reason string) (*testsession.Summary, *entity.TestAttempt, error) {
	summary, ok := active.session.Finalize(reason)
	if !ok {
		return nil, nil, fmt.Errorf("%w: session already finalized", apperrors.ErrConflict)
	}
	state := active.session.State()

	attempt := &entity.TestAttempt{
		UserID:         userID,
		TestID:         state.TestID,
		Answers:        state.Answers,
		Score:          summary.Score,
		TotalQuestions: summary.TotalQuestions,
		Percentage:     summary.Percentage,
		TimeSpentSec:   summary.TimeSpentSec,
		Analysis: entity.AttemptAnalysis{
			TopicOrder:       summary.TopicOrder,
			TopicPerformance: summary.TopicPerformance,
			Suggestions:      summary.Suggestions,
		},
		CompletedAt: m.clock.Now(),
	}

	if m.acquireFinalizeLock(state.SessionID) {
		// Сбой сохранения не скрывает результат от ученика:
		// логируем и все равно отдаем сводку
		if err := m.attemptRepo.Save(attempt); err != nil {
			log.Printf("[SessionManager] CRITICAL: не удалось сохранить попытку (сессия %s, пользователь #%d): %v",
				state.SessionID, userID, err)
		}
	} else {
		log.Printf("[SessionManager] Сессия %s уже финализирована другим процессом, пропуск сохранения", state.SessionID)
	}

	m.publish(userID, EventSessionSubmitted, map[string]interface{}{
		"session_id": state.SessionID,
		"reason":     reason,
		"score":      summary.Score,
		"percentage": summary.Percentage,
	})

	go m.sendResultEmail(userID, active.test.Title, summary)
	m.release(userID, active)

	log.Printf("[SessionManager] Сессия %s сдана (%s): %d/%d, %d%%",
		state.SessionID, reason, summary.Score, summary.TotalQuestions, summary.Percentage)
	return summary, attempt, nil
}

func (m *SessionManager) acquireFinalizeLock(sessionID string) bool {
	acquired, err := m.cacheRepo.SetNX(fmt.Sprintf(finalizeLockKeyFmt, sessionID), "1", finalizeLockTTL)
	if err != nil {
		// Redis недоступен - работаем в fail-open режиме, попытку сохраняем
		log.Printf("[SessionManager] Блокировка финализации недоступна (сессия %s): %v", sessionID, err)
		return true
	}
	return acquired
}

func (m *SessionManager) sendResultEmail(userID uint, testTitle string, summary *testsession.Summary) {
	if m.email == nil {
		return
	}
	user, err := m.userRepo.GetByID(userID)
	if err != nil {
		log.Printf("[SessionManager] Письмо с результатом не отправлено, пользователь #%d не найден: %v", userID, err)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := m.email.SendResultSummary(ctx, user.Email, testTitle, summary.Score, summary.TotalQuestions, summary.Percentage); err != nil {
		log.Printf("[SessionManager] Письмо с результатом не отправлено (%s): %v", user.Email, err)
	}
}

func (m *SessionManager) get(userID uint) (*activeSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	active, exists := m.sessions[userID]
	if !exists {
		return nil, fmt.Errorf("%w: no active test session", apperrors.ErrNotFound)
	}
	return active, nil
}

// release убирает сессию из карты, глушит таймер и чистит снимок
func (m *SessionManager) release(userID uint, active *activeSession) {
	m.mu.Lock()
	if current, exists := m.sessions[userID]; exists && current == active {
		delete(m.sessions, userID)
	}
	m.mu.Unlock()

	active.timer.Stop()
	if err := m.cacheRepo.Delete(m.snapshotKey(userID)); err != nil {
		log.Printf("[SessionManager] Не удалось удалить снимок сессии пользователя #%d: %v", userID, err)
	}
}

func (m *SessionManager) snapshot(userID uint, state *testsession.State) {
	ttl := time.Duration(state.SecondsLeft)*time.Second + 5*time.Minute
	if err := m.cacheRepo.SetJSON(m.snapshotKey(userID), state, ttl); err != nil {
		log.Printf("[SessionManager] Не удалось сохранить снимок сессии пользователя #%d: %v", userID, err)
	}
}

func (m *SessionManager) snapshotKey(userID uint) string {
	return fmt.Sprintf(sessionSnapshotKeyFmt, userID)
}

func (m *SessionManager) publish(userID uint, eventType string, data interface{}) {
	if m.publisher == nil {
		return
	}
	if err := m.publisher.SendEventToUser(userID, eventType, data); err != nil {
		log.Printf("[SessionManager] Событие %s не доставлено пользователю #%d: %v", eventType, userID, err)
	}
}
