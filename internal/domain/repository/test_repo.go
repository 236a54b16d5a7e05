package repository

import (
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
)

// TestFilters задает фильтры для списка тестов в админке
type TestFilters struct {
	Class    int
	Subject  string
	IsActive *bool
	Search   string
}

// TestRepository определяет методы для работы с тестами
type TestRepository interface {
	Create(test *entity.Test) error
	GetByID(id uint) (*entity.Test, error)
	GetWithQuestions(id uint) (*entity.Test, error)
	GetActiveForClass(class int) ([]entity.Test, error)
	List(filters TestFilters, limit, offset int) ([]entity.Test, int64, error)
	Update(test *entity.Test) error
	UpdateActive(testID uint, isActive bool) error
	UpdateTotalMarks(testID uint, totalMarks int) error
	Delete(id uint) error
}

// QuestionRepository определяет методы для работы с вопросами тестов
type QuestionRepository interface {
	Create(question *entity.Question) error
	CreateBatch(questions []entity.Question) error
	GetByID(id uint) (*entity.Question, error)
	GetByTestID(testID uint) ([]entity.Question, error)
	Update(question *entity.Question) error
	Delete(id uint) error
	CountByTestID(testID uint) (int64, error)
}
