package dto

import (
	"time"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
)

// UserResponse представляет пользователя в формате для ответа клиенту
type UserResponse struct {
	ID        uint      `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Class     int       `json:"class,omitempty"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse - ответ на успешный вход или регистрацию
type AuthResponse struct {
	User        *UserResponse `json:"user"`
	AccessToken string        `json:"access_token,omitempty"`
}

// PaginatedStudentsResponse представляет пагинированный список учеников
type PaginatedStudentsResponse struct {
	Students []*UserResponse `json:"students"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PerPage  int             `json:"per_page"`
}

// NewUserResponse создает DTO пользователя
func NewUserResponse(user *entity.User) *UserResponse {
	return &UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Class:     user.Class,
		Role:      user.Role,
		CreatedAt: user.CreatedAt,
	}
}

// NewPaginatedStudentsResponse создает пагинированный список учеников
func NewPaginatedStudentsResponse(users []entity.User, total int64, page, perPage int) *PaginatedStudentsResponse {
	students := make([]*UserResponse, len(users))
	for i := range users {
		students[i] = NewUserResponse(&users[i])
	}
	return &PaginatedStudentsResponse{
		Students: students,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
	}
}
