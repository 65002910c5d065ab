package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
)

// suffixAttempts bounds the random draw for a free 4-digit display suffix.
const suffixAttempts = 10

// ParticipantService handles the audience side of an event: joining with a
// code, registering a display name and leaving again. Sessions are
// anonymous until a display name is registered.
type ParticipantService struct {
	events       EventStore
	participants ParticipantStore
	clock        Clock
	log          zerolog.Logger

	// suffix draws one 4-digit candidate; swapped out under test.
	suffix func() string
}

// NewParticipantService creates a ParticipantService.
func NewParticipantService(events EventStore, participants ParticipantStore, clock Clock, log zerolog.Logger) *ParticipantService {
	return &ParticipantService{
		events:       events,
		participants: participants,
		clock:        clock,
		log:          log.With().Str("component", "participant_service").Logger(),
		suffix:       func() string { return fmt.Sprintf("%04d", rand.Intn(10000)) },
	}
}

// Join validates the join code and mints an anonymous session for the
// event. The caller stores the returned session id in a cookie.
func (s *ParticipantService) Join(ctx context.Context, eventID, joinCode string) (*model.ParticipantSession, error) {
	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.JoinCode != joinCode {
		return nil, domain.ErrInvalidJoinCode
	}

	session := &model.ParticipantSession{
		ID:        strings.ReplaceAll(uuid.New().String(), "-", ""),
		EventID:   eventID,
		CreatedAt: s.clock.Now(),
	}
	if err := s.participants.CreateSession(ctx, session); err != nil {
		return nil, err
	}

	s.log.Info().Str("event_id", eventID).Str("session_id", session.ID).Msg("participant joined")
	return session, nil
}

// Register attaches a display name to the session. Display names are not
// unique; a random 4-digit suffix disambiguates them on screens and in the
// CSV export. Registration on a finished or aborted event is refused.
// Registering twice returns the existing identity.
func (s *ParticipantService) Register(ctx context.Context, eventID, sessionID, displayName string) (*model.Participant, error) {
	session, err := s.participants.GetSession(ctx, sessionID)
	if err != nil || session.EventID != eventID {
		return nil, domain.ErrUnauthenticated
	}

	event, err := s.events.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.State.Terminal() {
		return nil, domain.ErrEventFinished
	}

	if session.UserID != nil {
		return s.participants.GetUser(ctx, *session.UserID)
	}

	suffix, err := s.allocateSuffix(ctx, eventID)
	if err != nil {
		return nil, err
	}

	participant := &model.Participant{
		ID:            strings.ReplaceAll(uuid.New().String(), "-", ""),
		EventID:       eventID,
		SessionID:     sessionID,
		DisplayName:   displayName,
		DisplaySuffix: suffix,
		JoinedAt:      s.clock.Now(),
	}
	if err := s.participants.CreateUser(ctx, participant); err != nil {
		return nil, err
	}
	if err := s.participants.AttachUser(ctx, sessionID, participant.ID); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("event_id", eventID).
		Str("user_id", participant.ID).
		Str("display_name", displayName).
		Str("suffix", suffix).
		Msg("participant registered")
	return participant, nil
}

// allocateSuffix draws random 4-digit suffixes until one is free for the
// event. With 10000 values and small rooms a handful of attempts is plenty.
func (s *ParticipantService) allocateSuffix(ctx context.Context, eventID string) (string, error) {
	for i := 0; i < suffixAttempts; i++ {
		candidate := s.suffix()
		taken, err := s.participants.SuffixExists(ctx, eventID, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("allocate display suffix for event %s: no free suffix after %d attempts", eventID, suffixAttempts)
}

// Logout discards the session. The participant row and any recorded
// answers survive; only the cookie-backed session dies.
func (s *ParticipantService) Logout(ctx context.Context, sessionID string) error {
	if err := s.participants.DeleteSession(ctx, sessionID); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}
