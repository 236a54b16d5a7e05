package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuestion_IsCorrect_MCQ(t *testing.T) {
	// Arrange
	question := &Question{
		ID:            1,
		TestID:        1,
		Type:          QuestionTypeMCQ,
		Text:          "Сколько сторон у треугольника?",
		Options:       StringArray{"2", "3", "4", "5"},
		CorrectOption: 1,
		Topic:         "Geometry",
	}

	// Act & Assert
	assert.True(t, question.IsCorrect(OptionAnswer(1)), "правильный индекс должен засчитываться")
	assert.False(t, question.IsCorrect(OptionAnswer(0)), "неправильный индекс не должен засчитываться")
	assert.False(t, question.IsCorrect(OptionAnswer(3)), "неправильный индекс не должен засчитываться")
}

func TestQuestion_IsCorrect_TrueFalse(t *testing.T) {
	// Arrange
	question := &Question{
		Type:          QuestionTypeTrueFalse,
		Options:       StringArray{"Верно", "Неверно"},
		CorrectOption: 0,
	}

	// Act & Assert
	assert.True(t, question.IsCorrect(OptionAnswer(0)))
	assert.False(t, question.IsCorrect(OptionAnswer(1)))
}

func TestQuestion_IsCorrect_FillBlank_CaseSensitive(t *testing.T) {
	// Arrange
	question := &Question{
		Type:        QuestionTypeFillBlank,
		Text:        "Столица Индии?",
		CorrectText: "Delhi",
	}

	// Act & Assert: сравнение строгое, без приведения регистра и trim
	assert.True(t, question.IsCorrect(TextAnswer("Delhi")))
	assert.False(t, question.IsCorrect(TextAnswer("delhi")), "регистр значим")
	assert.False(t, question.IsCorrect(TextAnswer(" Delhi")), "пробелы значимы")
	assert.False(t, question.IsCorrect(TextAnswer("")))
}

func TestQuestion_IsCorrect_AbsentAnswer(t *testing.T) {
	// Arrange
	mcq := &Question{Type: QuestionTypeMCQ, CorrectOption: 0}
	blank := &Question{Type: QuestionTypeFillBlank, CorrectText: "x"}

	// Act & Assert: пустой AnswerValue всегда неверен
	assert.False(t, mcq.IsCorrect(AnswerValue{}))
	assert.False(t, blank.IsCorrect(AnswerValue{}))
}

func TestQuestion_IsCorrect_MismatchedAnswerType(t *testing.T) {
	// Arrange: ответ не того типа не должен вызывать панику
	mcq := &Question{Type: QuestionTypeMCQ, CorrectOption: 0, Options: StringArray{"A", "B"}}
	blank := &Question{Type: QuestionTypeFillBlank, CorrectText: "A"}

	// Act & Assert
	assert.False(t, mcq.IsCorrect(TextAnswer("A")), "текстовый ответ на mcq неверен")
	assert.False(t, blank.IsCorrect(OptionAnswer(0)), "индекс на fill-blank неверен")
}

func TestQuestion_IsCorrect_MalformedQuestion(t *testing.T) {
	// Arrange: у fill-blank вопроса отсутствует правильный ответ
	question := &Question{Type: QuestionTypeFillBlank, CorrectText: ""}

	// Act & Assert: считается неверным, а не ошибкой
	assert.False(t, question.IsCorrect(TextAnswer("")))
	assert.False(t, question.IsCorrect(TextAnswer("anything")))
}

func TestQuestion_DisplayAnswer(t *testing.T) {
	// Arrange
	question := &Question{
		Type:          QuestionTypeMCQ,
		Options:       StringArray{"Москва", "Дели", "Пекин"},
		CorrectOption: 1,
	}

	// Act & Assert: индекс декодируется в текст варианта
	assert.Equal(t, "Дели", question.DisplayAnswer(OptionAnswer(1)))
	assert.Equal(t, "", question.DisplayAnswer(AnswerValue{}), "без ответа — пустая строка")
	assert.Equal(t, "", question.DisplayAnswer(OptionAnswer(10)), "индекс вне диапазона — пустая строка")
	assert.Equal(t, "Дели", question.DisplayCorrectAnswer())
}

func TestQuestion_DisplayAnswer_FillBlank(t *testing.T) {
	// Arrange
	question := &Question{Type: QuestionTypeFillBlank, CorrectText: "Delhi"}

	// Act & Assert
	assert.Equal(t, "delhi", question.DisplayAnswer(TextAnswer("delhi")))
	assert.Equal(t, "Delhi", question.DisplayCorrectAnswer())
}

func TestQuestion_IsValidOption(t *testing.T) {
	// Arrange
	question := &Question{
		Options: StringArray{"A", "B", "C", "D"},
	}

	// Act & Assert: валидные опции
	assert.True(t, question.IsValidOption(0))
	assert.True(t, question.IsValidOption(3))

	// Assert: невалидные опции
	assert.False(t, question.IsValidOption(-1), "отрицательный индекс должен быть невалидным")
	assert.False(t, question.IsValidOption(4), "индекс вне диапазона должен быть невалидным")
}

func TestQuestion_TableName(t *testing.T) {
	question := Question{}
	assert.Equal(t, "questions", question.TableName(), "TableName должен возвращать 'questions'")
}

// Тесты для AnswerValue

func TestAnswerValue_Equal(t *testing.T) {
	testCases := []struct {
		name     string
		a        AnswerValue
		b        AnswerValue
		expected bool
	}{
		{"одинаковые индексы", OptionAnswer(2), OptionAnswer(2), true},
		{"разные индексы", OptionAnswer(2), OptionAnswer(3), false},
		{"одинаковый текст", TextAnswer("Delhi"), TextAnswer("Delhi"), true},
		{"текст в разном регистре", TextAnswer("Delhi"), TextAnswer("delhi"), false},
		{"индекс и текст", OptionAnswer(0), TextAnswer("0"), false},
		{"оба пустые", AnswerValue{}, AnswerValue{}, true},
		{"пустой и индекс", AnswerValue{}, OptionAnswer(0), false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.a.Equal(tc.b))
		})
	}
}

// Тесты для StringArray (JSONB сериализация)

func TestStringArray_Scan_ValidJSON(t *testing.T) {
	// Arrange
	jsonBytes := []byte(`["Option 1", "Option 2", "Option 3"]`)
	var arr StringArray

	// Act
	err := arr.Scan(jsonBytes)

	// Assert
	require.NoError(t, err, "Scan не должен возвращать ошибку для валидного JSON")
	assert.Len(t, arr, 3, "Должно быть 3 элемента")
	assert.Equal(t, "Option 1", arr[0])
	assert.Equal(t, "Option 2", arr[1])
	assert.Equal(t, "Option 3", arr[2])
}

func TestStringArray_Scan_NullValue(t *testing.T) {
	// Arrange
	var arr StringArray

	// Act
	err := arr.Scan(nil)

	// Assert
	require.NoError(t, err, "Scan не должен возвращать ошибку для nil")
	assert.Len(t, arr, 0, "Для nil должен вернуться пустой массив")
}

func TestStringArray_Scan_InvalidType(t *testing.T) {
	// Arrange
	var arr StringArray

	// Act: передаём неподдерживаемый тип
	err := arr.Scan("not a byte slice")

	// Assert
	assert.Error(t, err, "Scan должен возвращать ошибку для неподдерживаемого типа")
}

func TestStringArray_Value_Empty(t *testing.T) {
	// Arrange
	arr := StringArray{}

	// Act
	val, err := arr.Value()

	// Assert
	require.NoError(t, err, "Value не должен возвращать ошибку для пустого массива")

	bytes, ok := val.([]byte)
	require.True(t, ok, "Value должен возвращать []byte")
	assert.Equal(t, "[]", string(bytes), "Пустой массив должен сериализоваться в []")
}

// Тесты для AnswerMap (JSONB сериализация)

func TestAnswerMap_ScanValue_RoundTrip(t *testing.T) {
	// Arrange
	original := AnswerMap{
		1: OptionAnswer(2),
		5: TextAnswer("Delhi"),
	}

	// Act
	val, err := original.Value()
	require.NoError(t, err)

	var restored AnswerMap
	err = restored.Scan(val)

	// Assert
	require.NoError(t, err)
	require.Len(t, restored, 2)
	assert.True(t, restored[1].Equal(OptionAnswer(2)))
	assert.True(t, restored[5].Equal(TextAnswer("Delhi")))
}

func TestAnswerMap_Value_Empty(t *testing.T) {
	// Arrange
	var m AnswerMap

	// Act
	val, err := m.Value()

	// Assert
	require.NoError(t, err)
	bytes, ok := val.([]byte)
	require.True(t, ok)
	assert.Equal(t, "{}", string(bytes), "nil карта должна сериализоваться в {}")
}
