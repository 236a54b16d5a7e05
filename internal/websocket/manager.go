package websocket

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/gorilla/websocket"
)

// Event представляет структуру WebSocket-сообщения
type Event struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

// MessageHandler обрабатывает входящее сообщение клиента.
// Возвращенная ошибка приводит к закрытию соединения.
type MessageHandler func(data json.RawMessage, client *Client) error

// Manager маршрутизирует сообщения между хабом и обработчиками
type Manager struct {
	hub      *Hub
	handlers map[string]MessageHandler
}

// NewManager создает новый менеджер WebSocket
func NewManager(hub *Hub) *Manager {
	return &Manager{
		hub:      hub,
		handlers: make(map[string]MessageHandler),
	}
}

// RegisterHandler регистрирует обработчик для типа сообщений.
// Вызывается при старте приложения, до приема соединений.
func (m *Manager) RegisterHandler(eventType string, handler MessageHandler) {
	m.handlers[eventType] = handler
	log.Printf("[WebSocketManager] Зарегистрирован обработчик для сообщений типа: %s", eventType)
}

// ServeConnection оборачивает установленное соединение в клиента
// и запускает его насосы
func (m *Manager) ServeConnection(conn *websocket.Conn, userID uint) *Client {
	client := NewClient(m.hub, m, conn, userID)
	client.Start()
	return client
}

// HandleMessage обрабатывает входящее сообщение от клиента
func (m *Manager) HandleMessage(message []byte, client *Client) error {
	var event Event
	if err := json.Unmarshal(message, &event); err != nil {
		log.Printf("[WebSocketManager] Некорректное сообщение от пользователя #%d: %v", client.UserID, err)
		m.SendErrorToClient(client, "invalid_message_format", "Invalid JSON format")
		return err
	}

	handler, ok := m.handlers[event.Type]
	if !ok {
		// Неизвестный тип не повод рвать соединение
		m.SendErrorToClient(client, "unknown_message_type", fmt.Sprintf("Unknown message type: %s", event.Type))
		return nil
	}

	raw, _ := json.Marshal(event.Data)
	if err := handler(raw, client); err != nil {
		log.Printf("[WebSocketManager] Обработчик %s вернул ошибку для пользователя #%d: %v",
			event.Type, client.UserID, err)
		return err
	}
	return nil
}

// SendErrorToClient отправляет клиенту сообщение об ошибке, не закрывая соединение
func (m *Manager) SendErrorToClient(client *Client, code, message string) {
	event := Event{
		Type: "server:error",
		Data: map[string]string{"code": code, "message": message},
	}
	if err := m.hub.SendJSONToUser(client.UserID, event); err != nil {
		log.Printf("[WebSocketManager] Не удалось отправить ошибку пользователю #%d: %v", client.UserID, err)
	}
}

// SendEventToUser отправляет событие конкретному пользователю.
// Реализует интерфейс издателя событий сессии.
func (m *Manager) SendEventToUser(userID uint, eventType string, data interface{}) error {
	return m.hub.SendJSONToUser(userID, Event{Type: eventType, Data: data})
}

// BroadcastEvent отправляет событие всем подключенным клиентам
func (m *Manager) BroadcastEvent(eventType string, data interface{}) error {
	return m.hub.BroadcastJSON(Event{Type: eventType, Data: data})
}
