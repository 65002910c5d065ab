// Package repository holds the PostgreSQL data access layer. Queries are
// raw SQL over pgxpool; store misses surface as domain.ErrNotFound so the
// services never see pgx internals.
package repository

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/quizlive/quizlive-backend/internal/domain"
)

// translateNotFound maps pgx.ErrNoRows onto the domain sentinel.
func translateNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	return err
}

// isUniqueViolation reports a PostgreSQL unique constraint violation.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
