package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/quizlive/quizlive-backend/internal/model"
)

// AdminRepository handles the operator account and the audit trail.
type AdminRepository struct {
	pool *pgxpool.Pool
}

// NewAdminRepository creates a new AdminRepository.
func NewAdminRepository(pool *pgxpool.Pool) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// GetAdmin retrieves the single operator account.
func (r *AdminRepository) GetAdmin(ctx context.Context) (*model.Admin, error) {
	a := &model.Admin{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, password_hash, created_at FROM admins ORDER BY created_at LIMIT 1`,
	).Scan(&a.ID, &a.PasswordHash, &a.CreatedAt)
	if err != nil {
		return nil, translateNotFound(err)
	}
	return a, nil
}

// CreateAdmin inserts the operator account; the bootstrap CLI uses this.
func (r *AdminRepository) CreateAdmin(ctx context.Context, a *model.Admin) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO admins (id, password_hash, created_at) VALUES ($1, $2, $3)`,
		a.ID, a.PasswordHash, a.CreatedAt)
	return err
}

// UpdatePassword replaces the operator password hash.
func (r *AdminRepository) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE admins SET password_hash = $2 WHERE id = $1`, id, passwordHash)
	return err
}

// CreateAuditLog appends one audit entry.
func (r *AdminRepository) CreateAuditLog(ctx context.Context, entry *model.AuditLog) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO audit_logs (id, action, event_id, payload, created_at) VALUES ($1, $2, $3, $4, $5)`,
		entry.ID, entry.Action, entry.EventID, entry.Payload, entry.CreatedAt)
	return err
}

// ListAuditLogs retrieves the newest audit entries, most recent first.
func (r *AdminRepository) ListAuditLogs(ctx context.Context, limit int) ([]model.AuditLog, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, action, event_id, payload, created_at
		 FROM audit_logs ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.AuditLog
	for rows.Next() {
		var entry model.AuditLog
		if err := rows.Scan(&entry.ID, &entry.Action, &entry.EventID, &entry.Payload, &entry.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, entry)
	}
	return out, rows.Err()
}
