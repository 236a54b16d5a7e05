package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
)

var (
	// ErrInvalidToken возвращается для любого непригодного токена
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken возвращается для токена с истекшим сроком
	ErrExpiredToken = errors.New("token has expired")
)

// Usage-клейм отличает обычный токен доступа от одноразового
// WS-тикета: тикет нельзя использовать как Bearer-токен и наоборот
const (
	usageAccess   = "access"
	usageWSTicket = "ws_ticket"
)

// JWTCustomClaims содержит пользовательские поля для токена
type JWTCustomClaims struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	Usage  string `json:"usage,omitempty"`
	jwt.RegisteredClaims
}

// JWTService предоставляет методы для работы с JWT
type JWTService struct {
	secretKey      []byte
	expirationHrs  int
	wsTicketExpiry time.Duration
}

// NewJWTService создает новый сервис JWT и возвращает ошибку при проблемах
func NewJWTService(secretKey string, expirationHrs, wsTicketExpirySec int) (*JWTService, error) {
	if secretKey == "" {
		return nil, fmt.Errorf("jwt secret key is required")
	}
	if expirationHrs <= 0 {
		expirationHrs = 24
	}
	wsExpiry := time.Duration(wsTicketExpirySec) * time.Second
	if wsExpiry <= 0 {
		wsExpiry = 60 * time.Second
	}
	return &JWTService{
		secretKey:      []byte(secretKey),
		expirationHrs:  expirationHrs,
		wsTicketExpiry: wsExpiry,
	}, nil
}

// GenerateToken выдает токен доступа для пользователя
func (s *JWTService) GenerateToken(user *entity.User) (string, error) {
	return s.generate(user, usageAccess, time.Duration(s.expirationHrs)*time.Hour)
}

// GenerateWSTicket выдает короткоживущий тикет для установки
// WebSocket-соединения. Токен доступа в query-string светился бы в
// логах прокси, поэтому соединение открывается по отдельному тикету.
func (s *JWTService) GenerateWSTicket(user *entity.User) (string, error) {
	return s.generate(user, usageWSTicket, s.wsTicketExpiry)
}

func (s *JWTService) generate(user *entity.User, usage string, ttl time.Duration) (string, error) {
	if user == nil {
		return "", fmt.Errorf("user is required")
	}
	now := time.Now()
	claims := JWTCustomClaims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   user.Role,
		Usage:  usage,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.New().String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParseToken проверяет токен доступа и возвращает его клеймы
func (s *JWTService) ParseToken(tokenString string) (*JWTCustomClaims, error) {
	return s.parse(tokenString, usageAccess)
}

// ValidateWSTicket проверяет WS-тикет и возвращает его клеймы
func (s *JWTService) ValidateWSTicket(ticket string) (*JWTCustomClaims, error) {
	return s.parse(ticket, usageWSTicket)
}

func (s *JWTService) parse(tokenString, expectedUsage string) (*JWTCustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*JWTCustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	// Пустой usage принимаем как access для токенов, выданных до
	// введения клейма
	usage := claims.Usage
	if usage == "" {
		usage = usageAccess
	}
	if usage != expectedUsage {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
