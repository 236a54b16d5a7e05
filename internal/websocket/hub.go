package websocket

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Hub ведет учет активных WebSocket-соединений. У одного пользователя
// может быть несколько соединений (две вкладки, телефон и планшет) -
// события доставляются во все.
type Hub struct {
	mu      sync.RWMutex
	clients map[uint]map[*Client]struct{}
}

// NewHub создает новый хаб
func NewHub() *Hub {
	return &Hub{
		clients: make(map[uint]map[*Client]struct{}),
	}
}

// Register добавляет клиента в хаб
func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[client.UserID]
	if !ok {
		conns = make(map[*Client]struct{})
		h.clients[client.UserID] = conns
	}
	conns[client] = struct{}{}
	log.Printf("[WebSocketHub] Клиент подключен: пользователь #%d, соединение %s (всего соединений: %d)",
		client.UserID, client.ConnectionID, len(conns))
}

// Unregister убирает клиента из хаба. Повторные вызовы безопасны.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	conns, ok := h.clients[client.UserID]
	if !ok {
		return
	}
	if _, exists := conns[client]; !exists {
		return
	}
	delete(conns, client)
	if len(conns) == 0 {
		delete(h.clients, client.UserID)
	}
	log.Printf("[WebSocketHub] Клиент отключен: пользователь #%d, соединение %s", client.UserID, client.ConnectionID)
}

// SendToUser отправляет сообщение во все соединения пользователя.
// Возвращает true, если хотя бы одно соединение приняло сообщение.
func (h *Hub) SendToUser(userID uint, message []byte) bool {
	h.mu.RLock()
	conns := make([]*Client, 0, 2)
	for client := range h.clients[userID] {
		conns = append(conns, client)
	}
	h.mu.RUnlock()

	delivered := false
	for _, client := range conns {
		if client.enqueue(message) {
			delivered = true
		}
	}
	return delivered
}

// SendJSONToUser сериализует значение и отправляет его пользователю
func (h *Hub) SendJSONToUser(userID uint, v interface{}) error {
	message, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if !h.SendToUser(userID, message) {
		return fmt.Errorf("user %d has no active connections", userID)
	}
	return nil
}

// BroadcastJSON отправляет значение всем подключенным клиентам
func (h *Hub) BroadcastJSON(v interface{}) error {
	message, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	h.mu.RLock()
	clients := make([]*Client, 0)
	for _, conns := range h.clients {
		for client := range conns {
			clients = append(clients, client)
		}
	}
	h.mu.RUnlock()

	for _, client := range clients {
		client.enqueue(message)
	}
	return nil
}

// ClientCount возвращает количество активных соединений
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	count := 0
	for _, conns := range h.clients {
		count += len(conns)
	}
	return count
}

// Shutdown закрывает все соединения
func (h *Hub) Shutdown() {
	h.mu.Lock()
	clients := make([]*Client, 0)
	for _, conns := range h.clients {
		for client := range conns {
			clients = append(clients, client)
		}
	}
	h.clients = make(map[uint]map[*Client]struct{})
	h.mu.Unlock()

	for _, client := range clients {
		client.close()
	}
	log.Printf("[WebSocketHub] Хаб остановлен, закрыто соединений: %d", len(clients))
}
