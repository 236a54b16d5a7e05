package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/handler/dto"
	"github.com/rajanagg1105/testmaxx-sub000/internal/service"
	"github.com/rajanagg1105/testmaxx-sub000/pkg/auth"
)

// AuthHandler обрабатывает запросы регистрации и входа
type AuthHandler struct {
	authService *service.AuthService
	userService *service.UserService
	jwtService  *auth.JWTService
}

// NewAuthHandler создает новый обработчик аутентификации
func NewAuthHandler(
	authService *service.AuthService,
	userService *service.UserService,
	jwtService *auth.JWTService,
) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
		jwtService:  jwtService,
	}
}

// RegisterRequest представляет запрос на регистрацию ученика
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Class    int    `json:"class" binding:"required"`
}

// Register обрабатывает запрос на регистрацию
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.authService.Register(service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Class:    req.Class,
	})
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, dto.AuthResponse{User: dto.NewUserResponse(user)})
}

// LoginRequest представляет запрос на вход
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login обрабатывает запрос на вход
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, token, err := h.authService.Login(req.Email, req.Password)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.AuthResponse{
		User:        dto.NewUserResponse(user),
		AccessToken: token,
	})
}

// Me возвращает профиль текущего пользователя
// GET /api/users/me
func (h *AuthHandler) Me(c *gin.Context) {
	user, err := h.userService.GetUserByID(currentUserID(c))
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateProfileRequest представляет запрос на обновление профиля
type UpdateProfileRequest struct {
	Username string `json:"username" binding:"omitempty,min=3,max=50"`
	Class    int    `json:"class" binding:"omitempty"`
}

// UpdateProfile обновляет имя и класс текущего пользователя
// PUT /api/users/me
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(currentUserID(c), req.Username, req.Class)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// CreateWSTicket выдает короткоживущий тикет для WebSocket-соединения
// POST /api/auth/ws-ticket
func (h *AuthHandler) CreateWSTicket(c *gin.Context) {
	user := &entity.User{
		ID:    currentUserID(c),
		Email: c.GetString("email"),
		Role:  c.GetString("role"),
	}

	ticket, err := h.jwtService.GenerateWSTicket(user)
	if err != nil {
		handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ticket": ticket})
}

// ListStudents возвращает список учеников (только для админа)
// GET /api/admin/students?class=7
func (h *AuthHandler) ListStudents(c *gin.Context) {
	page, pageSize := parsePagination(c)
	class := 0
	if raw := c.Query("class"); raw != "" {
		if parsed, err := parseClass(raw); err == nil {
			class = parsed
		}
	}

	students, total, err := h.userService.ListStudents(class, page, pageSize)
	if err != nil {
		handleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPaginatedStudentsResponse(students, total, page, pageSize))
}
