package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
)

// ParticipantRepository handles participants and their anonymous sessions.
type ParticipantRepository struct {
	pool *pgxpool.Pool
}

// NewParticipantRepository creates a new ParticipantRepository.
func NewParticipantRepository(pool *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{pool: pool}
}

// CreateSession inserts an anonymous participant session.
func (r *ParticipantRepository) CreateSession(ctx context.Context, s *model.ParticipantSession) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO participant_sessions (id, event_id, user_id, created_at) VALUES ($1, $2, $3, $4)`,
		s.ID, s.EventID, s.UserID, s.CreatedAt)
	return err
}

// GetSession retrieves a session by ID.
func (r *ParticipantRepository) GetSession(ctx context.Context, id string) (*model.ParticipantSession, error) {
	s := &model.ParticipantSession{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, event_id, user_id, created_at FROM participant_sessions WHERE id = $1`, id,
	).Scan(&s.ID, &s.EventID, &s.UserID, &s.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return s, nil
}

// DeleteSession removes a session.
func (r *ParticipantRepository) DeleteSession(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM participant_sessions WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// AttachUser binds a registered participant to a session.
func (r *ParticipantRepository) AttachUser(ctx context.Context, sessionID, userID string) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE participant_sessions SET user_id = $2 WHERE id = $1`, sessionID, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// CreateUser inserts a registered participant.
func (r *ParticipantRepository) CreateUser(ctx context.Context, p *model.Participant) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO participants (id, event_id, session_id, display_name, display_suffix, joined_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		p.ID, p.EventID, p.SessionID, p.DisplayName, p.DisplaySuffix, p.JoinedAt)
	return err
}

// GetUser retrieves a participant by ID.
func (r *ParticipantRepository) GetUser(ctx context.Context, id string) (*model.Participant, error) {
	p := &model.Participant{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, event_id, session_id, display_name, display_suffix, joined_at
		 FROM participants WHERE id = $1`, id,
	).Scan(&p.ID, &p.EventID, &p.SessionID, &p.DisplayName, &p.DisplaySuffix, &p.JoinedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return p, nil
}

// ListByEvent retrieves an event's participants in join order.
func (r *ParticipantRepository) ListByEvent(ctx context.Context, eventID string) ([]model.Participant, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, event_id, session_id, display_name, display_suffix, joined_at
		 FROM participants WHERE event_id = $1 ORDER BY joined_at`, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Participant
	for rows.Next() {
		var p model.Participant
		if err := rows.Scan(&p.ID, &p.EventID, &p.SessionID, &p.DisplayName, &p.DisplaySuffix, &p.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// SuffixExists reports whether a display suffix is taken within the event.
func (r *ParticipantRepository) SuffixExists(ctx context.Context, eventID, suffix string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM participants WHERE event_id = $1 AND display_suffix = $2)`,
		eventID, suffix,
	).Scan(&exists)
	return exists, err
}

// DeleteByEvent removes all participants and sessions of an event.
func (r *ParticipantRepository) DeleteByEvent(ctx context.Context, eventID string) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM participants WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `DELETE FROM participant_sessions WHERE event_id = $1`, eventID); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
