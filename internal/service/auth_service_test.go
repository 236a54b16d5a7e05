package service

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
	"github.com/rajanagg1105/testmaxx-sub000/pkg/auth"
)

func newAuthServiceForTest(t *testing.T, userRepo *MockUserRepository) *AuthService {
	t.Helper()
	jwtService, err := auth.NewJWTService("test-secret-key", 1, 60)
	require.NoError(t, err)

	svc, err := NewAuthService(userRepo, jwtService)
	require.NoError(t, err)
	return svc
}

func TestAuthService_Register_Success(t *testing.T) {
	// Arrange
	userRepo := new(MockUserRepository)
	svc := newAuthServiceForTest(t, userRepo)

	userRepo.On("Create", mock.AnythingOfType("*entity.User")).Run(func(args mock.Arguments) {
		args.Get(0).(*entity.User).ID = 42
	}).Return(nil)

	// Act
	user, err := svc.Register(RegisterInput{
		Username: "  ravi ",
		Email:    " Ravi@Example.COM ",
		Password: "secret123",
		Class:    7,
	})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(42), user.ID)
	assert.Equal(t, "ravi", user.Username, "имя должно быть обрезано")
	assert.Equal(t, "ravi@example.com", user.Email, "email должен быть нормализован")
	assert.Equal(t, entity.RoleStudent, user.Role, "регистрация создает только учеников")
	userRepo.AssertExpectations(t)
}

func TestAuthService_Register_Validation(t *testing.T) {
	userRepo := new(MockUserRepository)
	svc := newAuthServiceForTest(t, userRepo)

	tests := []struct {
		name  string
		input RegisterInput
	}{
		{"пустое имя", RegisterInput{Username: "  ", Email: "a@b.c", Password: "secret123", Class: 7}},
		{"email без @", RegisterInput{Username: "ravi", Email: "not-an-email", Password: "secret123", Class: 7}},
		{"короткий пароль", RegisterInput{Username: "ravi", Email: "a@b.c", Password: "short", Class: 7}},
		{"класс ниже диапазона", RegisterInput{Username: "ravi", Email: "a@b.c", Password: "secret123", Class: 5}},
		{"класс выше диапазона", RegisterInput{Username: "ravi", Email: "a@b.c", Password: "secret123", Class: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(tt.input)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}

	userRepo.AssertNotCalled(t, "Create", mock.Anything)
}

func TestAuthService_Register_DuplicateEmail(t *testing.T) {
	// Arrange
	userRepo := new(MockUserRepository)
	svc := newAuthServiceForTest(t, userRepo)

	userRepo.On("Create", mock.AnythingOfType("*entity.User")).
		Return(fmt.Errorf("%w: email already registered", apperrors.ErrConflict))

	// Act
	_, err := svc.Register(RegisterInput{
		Username: "ravi",
		Email:    "ravi@example.com",
		Password: "secret123",
		Class:    7,
	})

	// Assert: конфликт репозитория отдается наверх как есть
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAuthService_Login_Success(t *testing.T) {
	// Arrange
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &entity.User{
		ID:       7,
		Username: "ravi",
		Email:    "ravi@example.com",
		Password: string(hash),
		Class:    7,
		Role:     entity.RoleStudent,
	}

	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmail", "ravi@example.com").Return(stored, nil)
	svc := newAuthServiceForTest(t, userRepo)

	// Act: email нормализуется перед поиском
	user, token, err := svc.Login(" Ravi@Example.COM ", "secret123")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, uint(7), user.ID)
	assert.NotEmpty(t, token, "успешный вход должен выдавать токен")
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	// Arrange
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)

	stored := &entity.User{ID: 7, Email: "ravi@example.com", Password: string(hash)}

	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmail", "ravi@example.com").Return(stored, nil)
	svc := newAuthServiceForTest(t, userRepo)

	// Act
	_, _, err = svc.Login("ravi@example.com", "wrong-password")

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestAuthService_Login_UnknownEmail(t *testing.T) {
	// Arrange
	userRepo := new(MockUserRepository)
	userRepo.On("GetByEmail", "ghost@example.com").Return(nil, apperrors.ErrNotFound)
	svc := newAuthServiceForTest(t, userRepo)

	// Act
	_, _, err := svc.Login("ghost@example.com", "secret123")

	// Assert: "не найден" не отличим от "неверный пароль"
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
	assert.NotErrorIs(t, err, apperrors.ErrNotFound, "существование аккаунта не раскрывается")
}
