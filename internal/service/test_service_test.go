package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
)

func newTestServiceFixture() (*TestService, *MockTestRepository, *MockQuestionRepository, *MockCacheRepository) {
	testRepo := new(MockTestRepository)
	questionRepo := new(MockQuestionRepository)
	cacheRepo := new(MockCacheRepository)
	return NewTestService(testRepo, questionRepo, cacheRepo), testRepo, questionRepo, cacheRepo
}

func TestTestService_CreateTest_Validation(t *testing.T) {
	svc, _, _, _ := newTestServiceFixture()

	testCases := []struct {
		name  string
		input CreateTestInput
	}{
		{"пустое название", CreateTestInput{Subject: "Maths", Class: 7, DurationMinutes: 30}},
		{"класс вне диапазона", CreateTestInput{Title: "T", Subject: "Maths", Class: 5, DurationMinutes: 30}},
		{"длительность меньше минимума", CreateTestInput{Title: "T", Subject: "Maths", Class: 7, DurationMinutes: 4}},
		{"пустой предмет", CreateTestInput{Title: "T", Class: 7, DurationMinutes: 30}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			test, err := svc.CreateTest(tc.input)

			// Assert
			assert.Nil(t, test)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestTestService_CreateTest_StartsInactive(t *testing.T) {
	// Arrange
	svc, testRepo, _, _ := newTestServiceFixture()
	testRepo.On("Create", mock.AnythingOfType("*entity.Test")).Return(nil)

	// Act
	test, err := svc.CreateTest(CreateTestInput{
		Title: "Algebra Basics", Subject: "Maths", Class: 7, DurationMinutes: 30,
	})

	// Assert: новый тест не виден ученикам, пока его не включат
	require.NoError(t, err)
	assert.False(t, test.IsActive)
	testRepo.AssertCalled(t, "Create", mock.AnythingOfType("*entity.Test"))
}

func TestTestService_SetActive_RequiresQuestions(t *testing.T) {
	// Arrange
	svc, testRepo, questionRepo, _ := newTestServiceFixture()
	testRepo.On("GetByID", uint(7)).Return(&entity.Test{ID: 7, Class: 7}, nil)
	questionRepo.On("CountByTestID", uint(7)).Return(int64(0), nil)

	// Act
	err := svc.SetActive(7, true)

	// Assert
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	testRepo.AssertNotCalled(t, "UpdateActive", mock.Anything, mock.Anything)
}

func TestTestService_AddQuestions_Validation(t *testing.T) {
	// Arrange
	svc, testRepo, _, _ := newTestServiceFixture()
	testRepo.On("GetByID", uint(7)).Return(&entity.Test{ID: 7, Class: 7}, nil)

	testCases := []struct {
		name     string
		question entity.Question
	}{
		{"без текста", entity.Question{Type: entity.QuestionTypeMCQ, Topic: "T", Options: entity.StringArray{"A", "B"}}},
		{"без темы", entity.Question{Type: entity.QuestionTypeMCQ, Text: "Q", Options: entity.StringArray{"A", "B"}}},
		{"mcq с одним вариантом", entity.Question{Type: entity.QuestionTypeMCQ, Text: "Q", Topic: "T", Options: entity.StringArray{"A"}}},
		{"correct_option вне диапазона", entity.Question{Type: entity.QuestionTypeMCQ, Text: "Q", Topic: "T", Options: entity.StringArray{"A", "B"}, CorrectOption: 2}},
		{"fill-blank без эталона", entity.Question{Type: entity.QuestionTypeFillBlank, Text: "Q", Topic: "T"}},
		{"неизвестный тип", entity.Question{Type: "essay", Text: "Q", Topic: "T"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Act
			err := svc.AddQuestions(7, []entity.Question{tc.question})

			// Assert
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
}

func TestTestService_AddQuestions_RefreshesTotalMarks(t *testing.T) {
	// Arrange
	svc, testRepo, questionRepo, cacheRepo := newTestServiceFixture()
	testRepo.On("GetByID", uint(7)).Return(&entity.Test{ID: 7, Class: 7}, nil)
	questionRepo.On("CreateBatch", mock.Anything).Return(nil)
	questionRepo.On("CountByTestID", uint(7)).Return(int64(3), nil)
	testRepo.On("UpdateTotalMarks", uint(7), 3).Return(nil)
	cacheRepo.On("Delete", mock.Anything).Return(nil)

	questions := []entity.Question{
		{Type: entity.QuestionTypeMCQ, Text: "Q1", Topic: "Algebra", Options: entity.StringArray{"A", "B"}, CorrectOption: 1},
		{Type: entity.QuestionTypeFillBlank, Text: "Q2", Topic: "Algebra", CorrectText: "42"},
	}

	// Act
	err := svc.AddQuestions(7, questions)

	// Assert: test_id проставлен, сумма баллов пересчитана
	require.NoError(t, err)
	assert.Equal(t, uint(7), questions[0].TestID)
	testRepo.AssertCalled(t, "UpdateTotalMarks", uint(7), 3)
}

func TestTestService_GetActiveTestsForClass_UsesCache(t *testing.T) {
	// Arrange: кеш пуст при первом запросе
	svc, testRepo, _, cacheRepo := newTestServiceFixture()
	active := []entity.Test{{ID: 1, Class: 7, IsActive: true}}
	cacheRepo.On("GetJSON", "tests:active:class:7", mock.Anything).Return(apperrors.ErrNotFound).Once()
	cacheRepo.On("SetJSON", "tests:active:class:7", mock.Anything, activeTestsCacheTTL).Return(nil).Once()
	testRepo.On("GetActiveForClass", 7).Return(active, nil).Once()

	// Act
	tests, err := svc.GetActiveTestsForClass(7)

	// Assert
	require.NoError(t, err)
	assert.Len(t, tests, 1)
	cacheRepo.AssertExpectations(t)

	// Класс вне диапазона отклоняется без похода в базу
	_, err = svc.GetActiveTestsForClass(9)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
