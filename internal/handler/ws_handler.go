package handler

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	gorillaws "github.com/gorilla/websocket"

	"github.com/rajanagg1105/testmaxx-sub000/internal/handler/dto"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service"
	"github.com/rajanagg1105/testmaxx-sub000/internal/websocket"
	"github.com/rajanagg1105/testmaxx-sub000/pkg/auth"
)

// WSHandler принимает WebSocket-соединения. Аутентификация идет по
// короткоживущему тикету в query: браузерный WebSocket API не умеет
// ставить заголовок Authorization.
type WSHandler struct {
	manager        *websocket.Manager
	jwtService     *auth.JWTService
	sessionManager *service.SessionManager
	upgrader       gorillaws.Upgrader
}

// NewWSHandler создает обработчик WebSocket-соединений
func NewWSHandler(
	manager *websocket.Manager,
	jwtService *auth.JWTService,
	sessionManager *service.SessionManager,
	allowedOrigins []string,
) *WSHandler {
	h := &WSHandler{
		manager:        manager,
		jwtService:     jwtService,
		sessionManager: sessionManager,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:    4096,
			WriteBufferSize:   4096,
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					// Не-браузерные клиенты не шлют Origin
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || allowed == origin {
						return true
					}
				}
				log.Printf("[WSHandler] Отклонен Origin: %s", origin)
				return false
			},
		},
	}
	h.registerMessageHandlers()
	return h
}

// HandleConnection апгрейдит HTTP-запрос до WebSocket
// GET /ws?ticket=<jwt>
func (h *WSHandler) HandleConnection(c *gin.Context) {
	ticket := c.Query("ticket")
	if ticket == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Ticket is required"})
		return
	}

	claims, err := h.jwtService.ValidateWSTicket(ticket)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid or expired ticket"})
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade сам пишет ответ клиенту при ошибке
		log.Printf("[WSHandler] Ошибка апгрейда соединения: %v", err)
		return
	}

	client := h.manager.ServeConnection(conn, claims.UserID)
	log.Printf("[WSHandler] Пользователь #%d подключен (connection %s)", claims.UserID, client.ConnectionID)
}

// registerMessageHandlers подключает обработчики входящих сообщений
func (h *WSHandler) registerMessageHandlers() {
	// Клиент после переподключения запрашивает актуальное состояние сессии
	h.manager.RegisterHandler("session:resync", func(data json.RawMessage, client *websocket.Client) error {
		state, err := h.sessionManager.GetState(client.UserID)
		if err != nil {
			h.manager.SendErrorToClient(client, "NO_ACTIVE_SESSION", "no active test session")
			return nil
		}
		return h.manager.SendEventToUser(client.UserID, "session:state", dto.NewSessionStateResponse(state))
	})

	// Heartbeat держит соединение живым на прокси с коротким idle-таймаутом
	h.manager.RegisterHandler("user:heartbeat", func(data json.RawMessage, client *websocket.Client) error {
		return nil
	})
}
