package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
)

// QuestionService manages the question catalog. Every question carries
// exactly four choices and one correct index; that shape is enforced here
// so the repositories can stay dumb.
type QuestionService struct {
	questions QuestionStore
	clock     Clock
	log       zerolog.Logger
}

// NewQuestionService creates a QuestionService.
func NewQuestionService(questions QuestionStore, clock Clock, log zerolog.Logger) *QuestionService {
	return &QuestionService{
		questions: questions,
		clock:     clock,
		log:       log.With().Str("component", "question_service").Logger(),
	}
}

// ChoiceInput is one choice of a question draft.
type ChoiceInput struct {
	Text      string  `json:"text"`
	ImagePath *string `json:"image,omitempty"`
}

// QuestionInput is the create/update payload for a question.
type QuestionInput struct {
	Text               string        `json:"question_text"`
	ImagePath          *string       `json:"question_image,omitempty"`
	CorrectChoiceIndex int           `json:"correct_choice_index"`
	Choices            []ChoiceInput `json:"choices"`
	IsEnabled          *bool         `json:"is_enabled,omitempty"`
}

func (in *QuestionInput) validate() error {
	if strings.TrimSpace(in.Text) == "" {
		return domain.ErrInvalidQuestion
	}
	if len(in.Choices) != model.ChoiceCount {
		return domain.ErrInvalidQuestion
	}
	if in.CorrectChoiceIndex < 0 || in.CorrectChoiceIndex >= model.ChoiceCount {
		return domain.ErrInvalidQuestion
	}
	for _, c := range in.Choices {
		if strings.TrimSpace(c.Text) == "" && c.ImagePath == nil {
			return domain.ErrInvalidQuestion
		}
	}
	return nil
}

// Create stores a new question at the end of the catalog order.
func (s *QuestionService) Create(ctx context.Context, in *QuestionInput) (*model.Question, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	q := &model.Question{
		ID:                 strings.ReplaceAll(uuid.New().String(), "-", "")[:12],
		Text:               in.Text,
		ImagePath:          in.ImagePath,
		CorrectChoiceIndex: in.CorrectChoiceIndex,
		IsEnabled:          true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if in.IsEnabled != nil {
		q.IsEnabled = *in.IsEnabled
	}
	for i, c := range in.Choices {
		q.Choices = append(q.Choices, model.QuestionChoice{
			ID:          strings.ReplaceAll(uuid.New().String(), "-", ""),
			QuestionID:  q.ID,
			ChoiceIndex: i,
			Text:        c.Text,
			ImagePath:   c.ImagePath,
		})
	}

	if err := s.questions.Create(ctx, q); err != nil {
		return nil, err
	}
	s.log.Info().Str("question_id", q.ID).Msg("question created")
	return q, nil
}

// Update replaces a question's content and choices in place.
func (s *QuestionService) Update(ctx context.Context, id string, in *QuestionInput) (*model.Question, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	q, err := s.questions.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	q.Text = in.Text
	q.ImagePath = in.ImagePath
	q.CorrectChoiceIndex = in.CorrectChoiceIndex
	q.UpdatedAt = s.clock.Now()
	if in.IsEnabled != nil {
		q.IsEnabled = *in.IsEnabled
	}
	q.Choices = q.Choices[:0]
	for i, c := range in.Choices {
		q.Choices = append(q.Choices, model.QuestionChoice{
			ID:          strings.ReplaceAll(uuid.New().String(), "-", ""),
			QuestionID:  q.ID,
			ChoiceIndex: i,
			Text:        c.Text,
			ImagePath:   c.ImagePath,
		})
	}

	if err := s.questions.Update(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

// Get returns one question including its correct choice index. Admin use
// only; participant views go through Question.Public.
func (s *QuestionService) Get(ctx context.Context, id string) (*model.Question, error) {
	return s.questions.Get(ctx, id)
}

// List returns the catalog in sort order.
func (s *QuestionService) List(ctx context.Context, enabledOnly bool) ([]model.Question, error) {
	return s.questions.List(ctx, enabledOnly)
}

// Delete removes a question from the catalog.
func (s *QuestionService) Delete(ctx context.Context, id string) error {
	if err := s.questions.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("question_id", id).Msg("question deleted")
	return nil
}

// Reorder rewrites the catalog sort order to match orderedIDs.
func (s *QuestionService) Reorder(ctx context.Context, orderedIDs []string) error {
	if len(orderedIDs) == 0 {
		return domain.ErrInvalidQuestion
	}
	seen := make(map[string]struct{}, len(orderedIDs))
	for _, id := range orderedIDs {
		if _, dup := seen[id]; dup {
			return domain.ErrInvalidQuestion
		}
		seen[id] = struct{}{}
	}
	return s.questions.Reorder(ctx, orderedIDs)
}

// SetEnabled toggles whether a question is offered when building events.
func (s *QuestionService) SetEnabled(ctx context.Context, id string, enabled bool) error {
	return s.questions.SetEnabled(ctx, id, enabled)
}
