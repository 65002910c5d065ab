package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quizlive/quizlive-backend/internal/config"
	"github.com/quizlive/quizlive-backend/internal/database"
	"github.com/quizlive/quizlive-backend/internal/logger"
	"github.com/quizlive/quizlive-backend/internal/model"
	"github.com/quizlive/quizlive-backend/internal/repository"
)

// Seeds a small demo catalog and one waiting event, for trying the flow
// end to end without touching the admin UI.
func main() {
	cfg := config.Load()
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	questionRepo := repository.NewQuestionRepository(pool)
	eventRepo := repository.NewEventRepository(pool)

	type seed struct {
		text    string
		choices [model.ChoiceCount]string
		correct int
	}
	seeds := []seed{
		{"Which planet is known as the Red Planet?", [4]string{"Venus", "Mars", "Jupiter", "Mercury"}, 1},
		{"What is the chemical symbol for gold?", [4]string{"Ag", "Au", "Gd", "Go"}, 1},
		{"Which ocean is the largest?", [4]string{"Atlantic", "Indian", "Arctic", "Pacific"}, 3},
		{"In what year did the first human land on the Moon?", [4]string{"1965", "1969", "1972", "1959"}, 1},
		{"What is the tallest mountain on Earth?", [4]string{"K2", "Kangchenjunga", "Everest", "Lhotse"}, 2},
	}

	now := time.Now().UTC()
	var questionIDs []string
	for i, s := range seeds {
		q := &model.Question{
			ID:                 newID()[:12],
			Text:               s.text,
			CorrectChoiceIndex: s.correct,
			IsEnabled:          true,
			SortOrder:          i,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		for j, text := range s.choices {
			q.Choices = append(q.Choices, model.QuestionChoice{
				ID:          newID(),
				QuestionID:  q.ID,
				ChoiceIndex: j,
				Text:        text,
			})
		}
		if err := questionRepo.Create(ctx, q); err != nil {
			log.Fatal().Err(err).Msg("Failed to seed question")
		}
		questionIDs = append(questionIDs, q.ID)
	}

	event := &model.Event{
		ID:           newID()[:12],
		Title:        "Demo Quiz Night",
		JoinCode:     "demo",
		TimeLimitSec: 20,
		State:        model.EventStateWaiting,
		CurrentIndex: -1,
		CreatedAt:    now,
	}
	if err := eventRepo.Create(ctx, event); err != nil {
		log.Fatal().Err(err).Msg("Failed to seed event")
	}
	if err := eventRepo.SetQuestions(ctx, event.ID, questionIDs); err != nil {
		log.Fatal().Err(err).Msg("Failed to bind questions")
	}

	fmt.Printf("Seeded %d questions and event %s (join code: %s)\n", len(seeds), event.ID, event.JoinCode)
}

func newID() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")
}
