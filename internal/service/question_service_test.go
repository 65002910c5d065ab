package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/quizlive/quizlive-backend/internal/domain"
)

func newQuestionFixture(t *testing.T) (*QuestionService, *memQuestions) {
	t.Helper()
	store := newMemQuestions()
	clock := newFakeClock(time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC))
	return NewQuestionService(store, clock, zerolog.Nop()), store
}

func validInput() *QuestionInput {
	return &QuestionInput{
		Text:               "What is the capital of France?",
		CorrectChoiceIndex: 2,
		Choices: []ChoiceInput{
			{Text: "Berlin"},
			{Text: "Madrid"},
			{Text: "Paris"},
			{Text: "Rome"},
		},
	}
}

func TestCreateQuestion(t *testing.T) {
	svc, _ := newQuestionFixture(t)

	q, err := svc.Create(context.Background(), validInput())
	require.NoError(t, err)
	require.Len(t, q.Choices, 4)
	require.Equal(t, 2, q.CorrectChoiceIndex)
	require.True(t, q.IsEnabled)
	for i, c := range q.Choices {
		require.Equal(t, i, c.ChoiceIndex)
	}
}

func TestCreateRejectsWrongChoiceCount(t *testing.T) {
	svc, _ := newQuestionFixture(t)

	in := validInput()
	in.Choices = in.Choices[:3]
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidQuestion)
}

func TestCreateRejectsCorrectIndexOutOfRange(t *testing.T) {
	svc, _ := newQuestionFixture(t)

	in := validInput()
	in.CorrectChoiceIndex = 4
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidQuestion)

	in.CorrectChoiceIndex = -1
	_, err = svc.Create(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidQuestion)
}

func TestCreateRejectsEmptyText(t *testing.T) {
	svc, _ := newQuestionFixture(t)

	in := validInput()
	in.Text = "   "
	_, err := svc.Create(context.Background(), in)
	require.ErrorIs(t, err, domain.ErrInvalidQuestion)
}

func TestCreateAllowsImageOnlyChoice(t *testing.T) {
	svc, _ := newQuestionFixture(t)

	img := "/media/choice.png"
	in := validInput()
	in.Choices[1] = ChoiceInput{ImagePath: &img}
	_, err := svc.Create(context.Background(), in)
	require.NoError(t, err)
}

func TestUpdateReplacesChoices(t *testing.T) {
	svc, _ := newQuestionFixture(t)
	ctx := context.Background()

	q, err := svc.Create(ctx, validInput())
	require.NoError(t, err)

	in := validInput()
	in.Text = "updated"
	in.CorrectChoiceIndex = 0
	updated, err := svc.Update(ctx, q.ID, in)
	require.NoError(t, err)
	require.Equal(t, "updated", updated.Text)
	require.Equal(t, 0, updated.CorrectChoiceIndex)
	require.Len(t, updated.Choices, 4)
}

func TestUpdateUnknownQuestion(t *testing.T) {
	svc, _ := newQuestionFixture(t)

	_, err := svc.Update(context.Background(), "missing", validInput())
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListHonorsEnabledFilter(t *testing.T) {
	svc, _ := newQuestionFixture(t)
	ctx := context.Background()

	q1, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, validInput())
	require.NoError(t, err)

	require.NoError(t, svc.SetEnabled(ctx, q1.ID, false))

	all, err := svc.List(ctx, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	enabled, err := svc.List(ctx, true)
	require.NoError(t, err)
	require.Len(t, enabled, 1)
}

func TestReorderRejectsDuplicates(t *testing.T) {
	svc, _ := newQuestionFixture(t)

	err := svc.Reorder(context.Background(), []string{"a", "b", "a"})
	require.ErrorIs(t, err, domain.ErrInvalidQuestion)

	err = svc.Reorder(context.Background(), nil)
	require.ErrorIs(t, err, domain.ErrInvalidQuestion)
}

func TestDeleteRemovesFromCatalog(t *testing.T) {
	svc, _ := newQuestionFixture(t)
	ctx := context.Background()

	q, err := svc.Create(ctx, validInput())
	require.NoError(t, err)
	require.NoError(t, svc.Delete(ctx, q.ID))

	_, err = svc.Get(ctx, q.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)
}
