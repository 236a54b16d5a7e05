package websocket

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	// Время, которое разрешено писать сообщение клиенту
	writeWait = 10 * time.Second

	// Время ожидания pong-ответа: обрыв соединения замечается быстро
	pongWait = 30 * time.Second

	// Периодичность отправки ping-сообщений клиенту
	pingPeriod = (pongWait * 9) / 10

	// Максимальный размер входящего сообщения
	maxMessageSize = 512

	// Размер буфера исходящих сообщений клиента
	clientBufferSize = 128
)

// Client является посредником между WebSocket-соединением и хабом
type Client struct {
	// ID пользователя-владельца соединения
	UserID uint

	// Уникальный ID соединения
	ConnectionID string

	hub     *Hub
	manager *Manager
	conn    *websocket.Conn

	// Буферизованный канал исходящих сообщений. Канал никогда не
	// закрывается: остановка сигналится через done, иначе enqueue
	// мог бы писать в закрытый канал.
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient создает нового клиента поверх установленного соединения
func NewClient(hub *Hub, manager *Manager, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		UserID:       userID,
		ConnectionID: uuid.New().String(),
		hub:          hub,
		manager:      manager,
		conn:         conn,
		send:         make(chan []byte, clientBufferSize),
		done:         make(chan struct{}),
	}
}

// Start регистрирует клиента и запускает насосы чтения и записи
func (c *Client) Start() {
	c.hub.Register(c)
	go c.writePump()
	go c.readPump()
}

// enqueue кладет сообщение в буфер отправки. Если буфер полон,
// сообщение отбрасывается: клиент безнадежно отстал, соединение
// закроется по ping-таймауту.
func (c *Client) enqueue(message []byte) bool {
	select {
	case <-c.done:
		return false
	case c.send <- message:
		return true
	default:
		log.Printf("[WebSocketClient] Буфер переполнен, сообщение отброшено: пользователь #%d, соединение %s",
			c.UserID, c.ConnectionID)
		return false
	}
}

// close снимает клиента с учета и закрывает соединение
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.hub.Unregister(c)
		close(c.done)
		_ = c.conn.Close()
	})
}

// readPump читает входящие сообщения и передает их менеджеру.
// Единственная горутина, читающая из соединения.
func (c *Client) readPump() {
	defer c.close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[WebSocketClient] Неожиданное закрытие соединения %s: %v", c.ConnectionID, err)
			}
			return
		}
		if err := c.manager.HandleMessage(message, c); err != nil {
			return
		}
	}
}

// writePump пишет сообщения из буфера в соединение и шлет ping.
// Единственная горутина, пишущая в соединение.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
