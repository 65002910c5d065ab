package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
)

// QuestionRepository handles question catalog persistence.
type QuestionRepository struct {
	pool *pgxpool.Pool
}

// NewQuestionRepository creates a new QuestionRepository.
func NewQuestionRepository(pool *pgxpool.Pool) *QuestionRepository {
	return &QuestionRepository{pool: pool}
}

// Get retrieves a question with its choices.
func (r *QuestionRepository) Get(ctx context.Context, id string) (*model.Question, error) {
	q := &model.Question{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, question_text, question_image, correct_choice_index, is_enabled, sort_order, created_at, updated_at
		 FROM questions WHERE id = $1`, id,
	).Scan(&q.ID, &q.Text, &q.ImagePath, &q.CorrectChoiceIndex, &q.IsEnabled, &q.SortOrder, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}

	choices, err := r.loadChoices(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	q.Choices = choices[id]
	return q, nil
}

// List retrieves the catalog in sort order, optionally enabled only.
func (r *QuestionRepository) List(ctx context.Context, enabledOnly bool) ([]model.Question, error) {
	query := `SELECT id, question_text, question_image, correct_choice_index, is_enabled, sort_order, created_at, updated_at
		 FROM questions`
	if enabledOnly {
		query += ` WHERE is_enabled`
	}
	query += ` ORDER BY sort_order, created_at`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var questions []model.Question
	var ids []string
	for rows.Next() {
		var q model.Question
		if err := rows.Scan(&q.ID, &q.Text, &q.ImagePath, &q.CorrectChoiceIndex, &q.IsEnabled, &q.SortOrder, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return nil, err
		}
		questions = append(questions, q)
		ids = append(ids, q.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	choices, err := r.loadChoices(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range questions {
		questions[i].Choices = choices[questions[i].ID]
	}
	return questions, nil
}

func (r *QuestionRepository) loadChoices(ctx context.Context, questionIDs []string) (map[string][]model.QuestionChoice, error) {
	out := make(map[string][]model.QuestionChoice, len(questionIDs))
	if len(questionIDs) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, question_id, choice_index, choice_text, choice_image
		 FROM question_choices WHERE question_id = ANY($1) ORDER BY question_id, choice_index`, questionIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var c model.QuestionChoice
		if err := rows.Scan(&c.ID, &c.QuestionID, &c.ChoiceIndex, &c.Text, &c.ImagePath); err != nil {
			return nil, err
		}
		out[c.QuestionID] = append(out[c.QuestionID], c)
	}
	return out, rows.Err()
}

// Create inserts a question and its choices in one transaction.
func (r *QuestionRepository) Create(ctx context.Context, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO questions (id, question_text, question_image, correct_choice_index, is_enabled, sort_order, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5,
		   COALESCE((SELECT MAX(sort_order) + 1 FROM questions), 0), $6, $7)`,
		q.ID, q.Text, q.ImagePath, q.CorrectChoiceIndex, q.IsEnabled, q.CreatedAt, q.UpdatedAt); err != nil {
		return err
	}
	for _, c := range q.Choices {
		if _, err := tx.Exec(ctx,
			`INSERT INTO question_choices (id, question_id, choice_index, choice_text, choice_image)
			 VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.QuestionID, c.ChoiceIndex, c.Text, c.ImagePath); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Update rewrites a question's content and replaces its choices.
func (r *QuestionRepository) Update(ctx context.Context, q *model.Question) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE questions SET question_text = $2, question_image = $3, correct_choice_index = $4,
		 is_enabled = $5, updated_at = $6 WHERE id = $1`,
		q.ID, q.Text, q.ImagePath, q.CorrectChoiceIndex, q.IsEnabled, q.UpdatedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM question_choices WHERE question_id = $1`, q.ID); err != nil {
		return err
	}
	for _, c := range q.Choices {
		if _, err := tx.Exec(ctx,
			`INSERT INTO question_choices (id, question_id, choice_index, choice_text, choice_image)
			 VALUES ($1, $2, $3, $4, $5)`,
			c.ID, c.QuestionID, c.ChoiceIndex, c.Text, c.ImagePath); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// Delete removes a question; choices cascade.
func (r *QuestionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM questions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Reorder rewrites the catalog sort order to match orderedIDs.
func (r *QuestionRepository) Reorder(ctx context.Context, orderedIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for i, id := range orderedIDs {
		if _, err := tx.Exec(ctx, `UPDATE questions SET sort_order = $2 WHERE id = $1`, id, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

// SetEnabled toggles a question's availability.
func (r *QuestionRepository) SetEnabled(ctx context.Context, id string, enabled bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE questions SET is_enabled = $2 WHERE id = $1`, id, enabled)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
