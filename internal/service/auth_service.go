package service

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/repository"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
	"github.com/rajanagg1105/testmaxx-sub000/pkg/auth"
)

// AuthService предоставляет методы регистрации и входа
type AuthService struct {
	userRepo   repository.UserRepository
	jwtService *auth.JWTService
}

// NewAuthService создает новый сервис аутентификации
func NewAuthService(userRepo repository.UserRepository, jwtService *auth.JWTService) (*AuthService, error) {
	if userRepo == nil {
		return nil, fmt.Errorf("UserRepository is required for AuthService")
	}
	if jwtService == nil {
		return nil, fmt.Errorf("JWTService is required for AuthService")
	}
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
	}, nil
}

// RegisterInput содержит данные для регистрации ученика
type RegisterInput struct {
	Username string
	Email    string
	Password string
	Class    int
}

// Register регистрирует нового ученика. Пароль хешируется bcrypt-хуком
// на сущности User перед сохранением.
func (s *AuthService) Register(input RegisterInput) (*entity.User, error) {
	input.Email = normalizeEmail(input.Email)
	input.Username = strings.TrimSpace(input.Username)

	if input.Username == "" {
		return nil, fmt.Errorf("%w: username is required", apperrors.ErrValidation)
	}
	if input.Email == "" || !strings.Contains(input.Email, "@") {
		return nil, fmt.Errorf("%w: valid email is required", apperrors.ErrValidation)
	}
	if len(input.Password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", apperrors.ErrValidation)
	}
	if input.Class < 6 || input.Class > 8 {
		return nil, fmt.Errorf("%w: class must be between 6 and 8", apperrors.ErrValidation)
	}

	user := &entity.User{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
		Class:    input.Class,
		Role:     entity.RoleStudent,
	}

	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	log.Printf("[AuthService] Зарегистрирован ученик #%d (класс %d)", user.ID, user.Class)
	return user, nil
}

// Login проверяет учетные данные и выдает JWT-токен доступа
func (s *AuthService) Login(email, password string) (*entity.User, string, error) {
	email = normalizeEmail(email)

	user, err := s.userRepo.GetByEmail(email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			// Не раскрываем, существует ли аккаунт
			return nil, "", fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
		}
		return nil, "", err
	}

	if !user.CheckPassword(password) {
		return nil, "", fmt.Errorf("%w: invalid email or password", apperrors.ErrUnauthorized)
	}

	token, err := s.jwtService.GenerateToken(user)
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate token: %w", err)
	}

	return user, token, nil
}

// normalizeEmail приводит email к каноничному виду
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
