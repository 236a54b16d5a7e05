package testsession

import (
	"fmt"
	"math"

	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
)

// Порог "слабой" темы в процентах: ниже него тема попадает в рекомендации
const focusThresholdPercent = 60

// QuestionResult - разбор одного вопроса в порядке следования в тесте
type QuestionResult struct {
	QuestionID    uint     `json:"question_id"`
	Text          string   `json:"text"`
	Type          string   `json:"type"`
	Options       []string `json:"options"`
	Answered      bool     `json:"answered"`
	UserAnswer    string   `json:"user_answer"`
	CorrectAnswer string   `json:"correct_answer"`
	IsCorrect     bool     `json:"is_correct"`
	Explanation   string   `json:"explanation,omitempty"`
	Topic         string   `json:"topic"`
	Difficulty    string   `json:"difficulty"`
}

// Summary - итог подсчета очков одной попытки
type Summary struct {
	Score            int                          `json:"score"`
	TotalQuestions   int                          `json:"total_questions"`
	Percentage       int                          `json:"percentage"`
	TimeSpentSec     int                          `json:"time_spent_sec"`
	QuestionResults  []QuestionResult             `json:"question_results"`
	TopicOrder       []string                     `json:"topic_order"`
	TopicPerformance map[string]entity.TopicStats `json:"topic_performance"`
	Suggestions      []string                     `json:"suggestions"`
}

// Score подсчитывает результат попытки. Чистая функция от
// (тест, ответы, затраченное время): никакого I/O, никаких паник.
// Отсутствующий или некорректный ответ просто считается неверным.
func Score(test *entity.Test, answers entity.AnswerMap, elapsedSeconds int) *Summary {
	if test == nil {
		return &Summary{
			TopicPerformance: map[string]entity.TopicStats{},
			Suggestions:      []string{closingMessage(0)},
		}
	}
	if answers == nil {
		answers = entity.AnswerMap{}
	}

	correctCount := 0
	results := make([]QuestionResult, 0, len(test.Questions))

	// Темы учитываются в порядке первого появления в тесте,
	// метки не нормализуются: "Algebra" и "algebra " - разные темы.
	topicOrder := make([]string, 0)
	topicStats := make(map[string]entity.TopicStats)

	for i := range test.Questions {
		q := &test.Questions[i]

		answer, answered := answers[q.ID]
		isCorrect := answered && q.IsCorrect(answer)
		if isCorrect {
			correctCount++
		}

		stats, seen := topicStats[q.Topic]
		if !seen {
			topicOrder = append(topicOrder, q.Topic)
		}
		stats.Total++
		if isCorrect {
			stats.Correct++
		}
		topicStats[q.Topic] = stats

		userAnswer := ""
		if answered {
			userAnswer = q.DisplayAnswer(answer)
		}

		results = append(results, QuestionResult{
			QuestionID:    q.ID,
			Text:          q.Text,
			Type:          q.Type,
			Options:       q.Options,
			Answered:      answered,
			UserAnswer:    userAnswer,
			CorrectAnswer: q.DisplayCorrectAnswer(),
			IsCorrect:     isCorrect,
			Explanation:   q.Explanation,
			Topic:         q.Topic,
			Difficulty:    q.Difficulty,
		})
	}

	percentage := percentOf(correctCount, len(test.Questions))

	return &Summary{
		Score:            correctCount,
		TotalQuestions:   len(test.Questions),
		Percentage:       percentage,
		TimeSpentSec:     elapsedSeconds,
		QuestionResults:  results,
		TopicOrder:       topicOrder,
		TopicPerformance: topicStats,
		Suggestions:      buildSuggestions(topicOrder, topicStats, percentage),
	}
}

// percentOf возвращает округленный процент (round half up).
// total == 0 невозможен для валидного теста, но защищаемся
// от некорректных данных вместо деления на ноль.
func percentOf(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}

// buildSuggestions собирает рекомендации в фиксированном порядке:
// сначала "focus more" для тем ниже порога, затем "great job" для тем
// со стопроцентным результатом, в конце ровно одно итоговое сообщение
// по общему проценту.
func buildSuggestions(topicOrder []string, topicStats map[string]entity.TopicStats, percentage int) []string {
	suggestions := make([]string, 0, len(topicOrder)+1)

	for _, topic := range topicOrder {
		stats := topicStats[topic]
		if stats.Total == 0 {
			continue
		}
		if stats.Correct*100 < focusThresholdPercent*stats.Total {
			suggestions = append(suggestions,
				fmt.Sprintf("Focus more on %s: you answered %d of %d questions correctly.", topic, stats.Correct, stats.Total))
		}
	}

	for _, topic := range topicOrder {
		stats := topicStats[topic]
		if stats.Total > 0 && stats.Correct == stats.Total {
			suggestions = append(suggestions, fmt.Sprintf("Great job on %s!", topic))
		}
	}

	suggestions = append(suggestions, closingMessage(percentage))
	return suggestions
}

// closingMessage выбирает итоговое сообщение по порогам общего процента
func closingMessage(percentage int) string {
	switch {
	case percentage >= 90:
		return "Outstanding performance! Keep it up."
	case percentage >= 70:
		return "Good job! A little more practice will take you to the top."
	case percentage >= 50:
		return "You are on the right track. Review the weak topics and try again."
	default:
		return "Keep practicing. Go through the study materials and retake the test."
	}
}
