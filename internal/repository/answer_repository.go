package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
)

// AnswerRepository handles the append-only answer ledger. The table
// carries a unique constraint on (event_id, question_id, user_id); Create
// converts its violation into domain.ErrDuplicateSubmission so concurrent
// double submits resolve to exactly one stored row.
type AnswerRepository struct {
	pool *pgxpool.Pool
}

// NewAnswerRepository creates a new AnswerRepository.
func NewAnswerRepository(pool *pgxpool.Pool) *AnswerRepository {
	return &AnswerRepository{pool: pool}
}

// Create inserts an answer attempt.
func (r *AnswerRepository) Create(ctx context.Context, a *model.Answer) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO answers (id, event_id, question_id, user_id, choice_index,
		   delivered_at, submitted_at, accepted, reject_reason, is_correct, response_time_sec)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		a.ID, a.EventID, a.QuestionID, a.UserID, a.ChoiceIndex,
		a.DeliveredAt, a.SubmittedAt, a.Accepted, a.RejectReason, a.IsCorrect, a.ResponseTimeSec)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSubmission
		}
		return err
	}
	return nil
}

// Get retrieves one ledger row by its (event, question, user) key.
func (r *AnswerRepository) Get(ctx context.Context, eventID, questionID, userID string) (*model.Answer, error) {
	a := &model.Answer{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, event_id, question_id, user_id, choice_index,
		   delivered_at, submitted_at, accepted, reject_reason, is_correct, response_time_sec
		 FROM answers WHERE event_id = $1 AND question_id = $2 AND user_id = $3`,
		eventID, questionID, userID,
	).Scan(&a.ID, &a.EventID, &a.QuestionID, &a.UserID, &a.ChoiceIndex,
		&a.DeliveredAt, &a.SubmittedAt, &a.Accepted, &a.RejectReason, &a.IsCorrect, &a.ResponseTimeSec)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return a, nil
}

// ListByEvent retrieves every ledger row of an event.
func (r *AnswerRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Answer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, question_id, user_id, choice_index,
		   delivered_at, submitted_at, accepted, reject_reason, is_correct, response_time_sec
		 FROM answers WHERE event_id = $1 ORDER BY submitted_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Answer
	for rows.Next() {
		var a model.Answer
		if err := rows.Scan(&a.ID, &a.EventID, &a.QuestionID, &a.UserID, &a.ChoiceIndex,
			&a.DeliveredAt, &a.SubmittedAt, &a.Accepted, &a.RejectReason, &a.IsCorrect, &a.ResponseTimeSec); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// DeleteByEvent purges the event's ledger (reset).
func (r *AnswerRepository) DeleteByEvent(ctx context.Context, eventID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM answers WHERE event_id = $1`, eventID)
	return err
}
