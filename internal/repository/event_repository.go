package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
)

const eventColumns = `id, title, join_code, time_limit_sec, state, current_question_id,
	 current_index, shown_at, deadline_at, revealed, closed, started_at, finished_at, created_at`

// EventRepository handles event persistence.
type EventRepository struct {
	pool *pgxpool.Pool
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return &EventRepository{pool: pool}
}

func scanEvent(row interface{ Scan(...any) error }) (*model.Event, error) {
	e := &model.Event{}
	err := row.Scan(&e.ID, &e.Title, &e.JoinCode, &e.TimeLimitSec, &e.State,
		&e.CurrentQuestionID, &e.CurrentIndex, &e.ShownAt, &e.DeadlineAt,
		&e.Revealed, &e.Closed, &e.StartedAt, &e.FinishedAt, &e.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return e, nil
}

// Get retrieves an event by ID.
func (r *EventRepository) Get(ctx context.Context, id string) (*model.Event, error) {
	return scanEvent(r.pool.QueryRow(ctx,
		`SELECT `+eventColumns+` FROM events WHERE id = $1`, id))
}

// Create inserts a new event.
func (r *EventRepository) Create(ctx context.Context, e *model.Event) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO events (`+eventColumns+`)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		e.ID, e.Title, e.JoinCode, e.TimeLimitSec, e.State, e.CurrentQuestionID,
		e.CurrentIndex, e.ShownAt, e.DeadlineAt, e.Revealed, e.Closed,
		e.StartedAt, e.FinishedAt, e.CreatedAt)
	return err
}

// Update writes the full progression snapshot.
func (r *EventRepository) Update(ctx context.Context, e *model.Event) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE events SET title = $2, join_code = $3, time_limit_sec = $4, state = $5,
		 current_question_id = $6, current_index = $7, shown_at = $8, deadline_at = $9,
		 revealed = $10, closed = $11, started_at = $12, finished_at = $13
		 WHERE id = $1`,
		e.ID, e.Title, e.JoinCode, e.TimeLimitSec, e.State, e.CurrentQuestionID,
		e.CurrentIndex, e.ShownAt, e.DeadlineAt, e.Revealed, e.Closed,
		e.StartedAt, e.FinishedAt)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List retrieves all events, newest first.
func (r *EventRepository) List(ctx context.Context) ([]model.Event, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+eventColumns+` FROM events ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []model.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, *e)
	}
	return events, rows.Err()
}

// QuestionIDs returns the event's question sequence in sort order.
func (r *EventRepository) QuestionIDs(ctx context.Context, eventID string) ([]string, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT question_id FROM event_questions WHERE event_id = $1 ORDER BY sort_order`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SetQuestions replaces the event's question sequence atomically.
func (r *EventRepository) SetQuestions(ctx context.Context, eventID string, questionIDs []string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM event_questions WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	for i, qid := range questionIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO event_questions (event_id, question_id, sort_order) VALUES ($1, $2, $3)`,
			eventID, qid, i); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}
