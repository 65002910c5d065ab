package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
	"github.com/quizlive/quizlive-backend/internal/session"
)

func newAdminFixture(t *testing.T, password string) (*AdminService, *memAdmin, *fakeClock) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	store := &memAdmin{admin: &model.Admin{ID: "admin-1", PasswordHash: string(hash)}}
	clock := newFakeClock(time.Date(2026, 2, 9, 12, 0, 0, 0, time.UTC))
	svc := NewAdminService(store, session.NewMemoryStore(), nil, clock, "test-secret", time.Hour, zerolog.Nop())
	return svc, store, clock
}

func TestLoginIssuesVerifiableToken(t *testing.T) {
	svc, _, _ := newAdminFixture(t, "hunter2")
	ctx := context.Background()

	token, err := svc.Login(ctx, "hunter2")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	adminID, err := svc.Verify(ctx, token)
	require.NoError(t, err)
	require.Equal(t, "admin-1", adminID)
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	svc, _, _ := newAdminFixture(t, "hunter2")

	_, err := svc.Login(context.Background(), "nope")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginLockoutAfterRepeatedFailures(t *testing.T) {
	svc, _, clock := newAdminFixture(t, "hunter2")
	ctx := context.Background()

	for i := 0; i < loginMaxFailures; i++ {
		_, err := svc.Login(ctx, "nope")
		require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	}

	// Locked out even with the right password.
	_, err := svc.Login(ctx, "hunter2")
	require.ErrorIs(t, err, domain.ErrLoginLocked)

	// The lock lifts after the window.
	clock.Advance(loginLockWindow + time.Second)
	_, err = svc.Login(ctx, "hunter2")
	require.NoError(t, err)
}

func TestLoginSuccessResetsFailureCount(t *testing.T) {
	svc, _, _ := newAdminFixture(t, "hunter2")
	ctx := context.Background()

	for i := 0; i < loginMaxFailures-1; i++ {
		_, _ = svc.Login(ctx, "nope")
	}
	_, err := svc.Login(ctx, "hunter2")
	require.NoError(t, err)

	// The counter started over: one more failure does not lock.
	_, err = svc.Login(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrInvalidCredentials)
	_, err = svc.Login(ctx, "hunter2")
	require.NoError(t, err)
}

func TestLogoutRevokesToken(t *testing.T) {
	svc, _, _ := newAdminFixture(t, "hunter2")
	ctx := context.Background()

	token, err := svc.Login(ctx, "hunter2")
	require.NoError(t, err)
	require.NoError(t, svc.Logout(ctx, token))

	_, err = svc.Verify(ctx, token)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyRejectsExpiredToken(t *testing.T) {
	svc, _, clock := newAdminFixture(t, "hunter2")
	ctx := context.Background()

	token, err := svc.Login(ctx, "hunter2")
	require.NoError(t, err)

	clock.Advance(2 * time.Hour)
	_, err = svc.Verify(ctx, token)
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	svc, _, _ := newAdminFixture(t, "hunter2")

	_, err := svc.Verify(context.Background(), "not-a-token")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAuditWritesSynchronouslyWithoutQueue(t *testing.T) {
	svc, store, _ := newAdminFixture(t, "hunter2")
	ctx := context.Background()

	eventID := "ev1"
	svc.Audit(ctx, "event.start", &eventID, map[string]interface{}{"by": "admin-1"})

	logs, err := svc.ListAuditLogs(ctx, 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	require.Equal(t, "event.start", logs[0].Action)
	require.Equal(t, "ev1", *logs[0].EventID)
	require.NotNil(t, logs[0].Payload)
	_ = store
}

type failingQueue struct{ pushed int }

func (q *failingQueue) Push(context.Context, []byte) error {
	q.pushed++
	return context.DeadlineExceeded
}

func TestAuditFallsBackWhenQueueFails(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("x"), bcrypt.MinCost)
	require.NoError(t, err)
	store := &memAdmin{admin: &model.Admin{ID: "admin-1", PasswordHash: string(hash)}}
	q := &failingQueue{}
	clock := newFakeClock(time.Now())
	svc := NewAdminService(store, session.NewMemoryStore(), q, clock, "secret", time.Hour, zerolog.Nop())

	svc.Audit(context.Background(), "event.reset", nil, nil)

	require.Equal(t, 1, q.pushed)
	logs, err := svc.ListAuditLogs(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, logs, 1)
}
