package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/quizlive/quizlive-backend/internal/domain"
)

func TestJoinValidatesJoinCode(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 30)
	ctx := context.Background()

	_, err := f.participantSvc.Join(ctx, "ev1", "wrong")
	require.ErrorIs(t, err, domain.ErrInvalidJoinCode)

	sess, err := f.participantSvc.Join(ctx, "ev1", "code-ev1")
	require.NoError(t, err)
	require.Equal(t, "ev1", sess.EventID)
	require.Nil(t, sess.UserID)
}

func TestJoinUnknownEvent(t *testing.T) {
	f := newFixture(t)

	_, err := f.participantSvc.Join(context.Background(), "nope", "x")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRegisterAssignsDisplaySuffix(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 30)
	ctx := context.Background()

	sess, err := f.participantSvc.Join(ctx, "ev1", "code-ev1")
	require.NoError(t, err)

	f.participantSvc.suffix = func() string { return "1234" }
	user, err := f.participantSvc.Register(ctx, "ev1", sess.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, "alice", user.DisplayName)
	require.Equal(t, "1234", user.DisplaySuffix)

	// The session now resolves to the registered identity.
	got, err := f.participants.GetSession(ctx, sess.ID)
	require.NoError(t, err)
	require.NotNil(t, got.UserID)
	require.Equal(t, user.ID, *got.UserID)
}

func TestRegisterRetriesOnSuffixCollision(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 30)
	ctx := context.Background()

	sess1, err := f.participantSvc.Join(ctx, "ev1", "code-ev1")
	require.NoError(t, err)
	f.participantSvc.suffix = func() string { return "7777" }
	_, err = f.participantSvc.Register(ctx, "ev1", sess1.ID, "alice")
	require.NoError(t, err)

	// Same name, first draw collides, second is free.
	draws := []string{"7777", "4242"}
	f.participantSvc.suffix = func() string {
		d := draws[0]
		draws = draws[1:]
		return d
	}
	sess2, err := f.participantSvc.Join(ctx, "ev1", "code-ev1")
	require.NoError(t, err)
	user2, err := f.participantSvc.Register(ctx, "ev1", sess2.ID, "alice")
	require.NoError(t, err)
	require.Equal(t, "4242", user2.DisplaySuffix)
}

func TestRegisterGivesUpWhenSuffixSpaceExhausted(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 30)
	ctx := context.Background()

	sess1, err := f.participantSvc.Join(ctx, "ev1", "code-ev1")
	require.NoError(t, err)
	f.participantSvc.suffix = func() string { return "0000" }
	_, err = f.participantSvc.Register(ctx, "ev1", sess1.ID, "alice")
	require.NoError(t, err)

	// Every draw collides.
	sess2, err := f.participantSvc.Join(ctx, "ev1", "code-ev1")
	require.NoError(t, err)
	_, err = f.participantSvc.Register(ctx, "ev1", sess2.ID, "bob")
	require.Error(t, err)
}

func TestRegisterRejectsTerminalEvent(t *testing.T) {
	f := newFixture(t)
	f.seedQuestion(t, "q1", 0)
	f.seedEvent(t, "ev1", 30, "q1")
	ctx := context.Background()

	sess, err := f.participantSvc.Join(ctx, "ev1", "code-ev1")
	require.NoError(t, err)

	_, err = f.eventSvc.Abort(ctx, "ev1")
	require.NoError(t, err)

	_, err = f.participantSvc.Register(ctx, "ev1", sess.ID, "alice")
	require.ErrorIs(t, err, domain.ErrEventFinished)
}

func TestRegisterTwiceReturnsExistingIdentity(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 30)
	ctx := context.Background()

	sess, err := f.participantSvc.Join(ctx, "ev1", "code-ev1")
	require.NoError(t, err)

	first, err := f.participantSvc.Register(ctx, "ev1", sess.ID, "alice")
	require.NoError(t, err)
	second, err := f.participantSvc.Register(ctx, "ev1", sess.ID, "someone-else")
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "alice", second.DisplayName)
}

func TestRegisterRequiresMatchingSession(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 30)
	f.seedEvent(t, "ev2", 30)
	ctx := context.Background()

	sess, err := f.participantSvc.Join(ctx, "ev2", "code-ev2")
	require.NoError(t, err)

	// A session from another event is not authenticated here.
	_, err = f.participantSvc.Register(ctx, "ev1", sess.ID, "alice")
	require.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestLogoutDiscardsSession(t *testing.T) {
	f := newFixture(t)
	f.seedEvent(t, "ev1", 30)
	ctx := context.Background()

	sess, err := f.participantSvc.Join(ctx, "ev1", "code-ev1")
	require.NoError(t, err)
	require.NoError(t, f.participantSvc.Logout(ctx, sess.ID))

	_, err = f.participants.GetSession(ctx, sess.ID)
	require.ErrorIs(t, err, domain.ErrNotFound)

	// Logging out twice is fine.
	require.NoError(t, f.participantSvc.Logout(ctx, sess.ID))
}
