// Команда seed наполняет базу минимальными данными для локальной
// разработки: администратор, ученик и один активный тест с вопросами.
package main

import (
	"errors"
	"flag"
	"log"

	"github.com/rajanagg1105/testmaxx-sub000/internal/config"
	"github.com/rajanagg1105/testmaxx-sub000/internal/domain/entity"
	apperrors "github.com/rajanagg1105/testmaxx-sub000/internal/pkg/errors"
	pgrepo "github.com/rajanagg1105/testmaxx-sub000/internal/repository/postgres"
	"github.com/rajanagg1105/testmaxx-sub000/pkg/database"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "путь к файлу конфигурации")
	adminPassword := flag.String("admin-password", "admin12345", "пароль администратора")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Ошибка загрузки конфигурации: %v", err)
	}

	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Fatalf("Ошибка подключения к PostgreSQL: %v", err)
	}
	if err := database.MigrateDB(db); err != nil {
		log.Fatalf("Ошибка применения миграций: %v", err)
	}

	userRepo := pgrepo.NewUserRepo(db)
	testRepo := pgrepo.NewTestRepo(db)
	questionRepo := pgrepo.NewQuestionRepo(db)

	// Пароли хешируются в entity.User.BeforeSave
	admin := &entity.User{
		Username: "admin",
		Email:    "admin@testmaxx.local",
		Password: *adminPassword,
		Role:     entity.RoleAdmin,
	}
	if err := userRepo.Create(admin); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			log.Println("[Seed] Администратор уже существует, пропуск")
		} else {
			log.Fatalf("Ошибка создания администратора: %v", err)
		}
	} else {
		log.Printf("[Seed] Администратор создан: %s", admin.Email)
	}

	student := &entity.User{
		Username: "student7",
		Email:    "student7@testmaxx.local",
		Password: "student12345",
		Class:    7,
		Role:     entity.RoleStudent,
	}
	if err := userRepo.Create(student); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			log.Println("[Seed] Тестовый ученик уже существует, пропуск")
		} else {
			log.Fatalf("Ошибка создания ученика: %v", err)
		}
	} else {
		log.Printf("[Seed] Ученик создан: %s", student.Email)
	}

	test := &entity.Test{
		Title:           "Maths Practice Test",
		Description:     "Дроби и простые уравнения",
		Class:           7,
		Subject:         "Maths",
		DurationMinutes: 15,
	}
	if err := testRepo.Create(test); err != nil {
		log.Fatalf("Ошибка создания теста: %v", err)
	}

	questions := []entity.Question{
		{
			TestID:        test.ID,
			Type:          entity.QuestionTypeMCQ,
			Text:          "What is 1/2 + 1/4?",
			Options:       entity.StringArray{"1/4", "3/4", "1/2", "2/3"},
			CorrectOption: 1,
			Explanation:   "Common denominator is 4: 2/4 + 1/4 = 3/4.",
			Topic:         "Fractions",
			Difficulty:    entity.DifficultyEasy,
		},
		{
			TestID:        test.ID,
			Type:          entity.QuestionTypeTrueFalse,
			Text:          "The equation x + 3 = 5 has the solution x = 2.",
			Options:       entity.StringArray{"True", "False"},
			CorrectOption: 0,
			Topic:         "Equations",
			Difficulty:    entity.DifficultyEasy,
		},
		{
			TestID:      test.ID,
			Type:        entity.QuestionTypeFillBlank,
			Text:        "Solve for x: 2x = 10. x = ___",
			CorrectText: "5",
			Topic:       "Equations",
			Difficulty:  entity.DifficultyMedium,
		},
	}
	if err := questionRepo.CreateBatch(questions); err != nil {
		log.Fatalf("Ошибка создания вопросов: %v", err)
	}
	if err := testRepo.UpdateTotalMarks(test.ID, len(questions)); err != nil {
		log.Fatalf("Ошибка обновления total_marks: %v", err)
	}
	if err := testRepo.UpdateActive(test.ID, true); err != nil {
		log.Fatalf("Ошибка активации теста: %v", err)
	}

	log.Printf("[Seed] Тест #%d создан и активирован (%d вопроса)", test.ID, len(questions))
	log.Println("[Seed] Готово")
}
