package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/quizlive/quizlive-backend/internal/domain"
	"github.com/quizlive/quizlive-backend/internal/model"
	"github.com/quizlive/quizlive-backend/internal/session"
)

const (
	loginMaxFailures = 5
	loginLockWindow  = 15 * time.Minute
)

// AuditQueue accepts serialized audit entries for asynchronous persistence.
// The Redis-backed implementation lives in internal/worker next to its
// consumer.
type AuditQueue interface {
	Push(ctx context.Context, payload []byte) error
}

// AdminService authenticates the single operator account and records the
// audit trail. Login issues an HS256 JWT whose JTI must also exist in the
// session store, so logout actually revokes.
type AdminService struct {
	store    AdminStore
	sessions session.Store
	queue    AuditQueue
	clock    Clock
	log      zerolog.Logger

	jwtSecret  []byte
	sessionTTL time.Duration

	// Brute-force lockout for the single account. In-memory is acceptable:
	// an attacker spread over instances still hits the bcrypt cost wall.
	lockMu      sync.Mutex
	failures    int
	lockedUntil time.Time
}

// NewAdminService creates an AdminService. queue may be nil; audit entries
// are then written synchronously.
func NewAdminService(
	store AdminStore,
	sessions session.Store,
	queue AuditQueue,
	clock Clock,
	jwtSecret string,
	sessionTTL time.Duration,
	log zerolog.Logger,
) *AdminService {
	return &AdminService{
		store:      store,
		sessions:   sessions,
		queue:      queue,
		clock:      clock,
		log:        log.With().Str("component", "admin_service").Logger(),
		jwtSecret:  []byte(jwtSecret),
		sessionTTL: sessionTTL,
	}
}

// Login verifies the operator password and returns a signed session token.
// Five consecutive failures lock the account for fifteen minutes.
func (s *AdminService) Login(ctx context.Context, password string) (string, error) {
	now := s.clock.Now()

	s.lockMu.Lock()
	if now.Before(s.lockedUntil) {
		s.lockMu.Unlock()
		return "", domain.ErrLoginLocked
	}
	s.lockMu.Unlock()

	admin, err := s.store.GetAdmin(ctx)
	if err != nil {
		return "", domain.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte(password)); err != nil {
		s.recordFailure(now)
		return "", domain.ErrInvalidCredentials
	}

	s.lockMu.Lock()
	s.failures = 0
	s.lockMu.Unlock()

	jti := strings.ReplaceAll(uuid.New().String(), "-", "")
	claims := jwt.RegisteredClaims{
		ID:        jti,
		Subject:   admin.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.sessionTTL)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}
	if err := s.sessions.Put(ctx, jti, s.sessionTTL); err != nil {
		return "", err
	}

	s.Audit(ctx, "admin.login", nil, nil)
	s.log.Info().Str("admin_id", admin.ID).Msg("admin logged in")
	return token, nil
}

func (s *AdminService) recordFailure(now time.Time) {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()
	s.failures++
	if s.failures >= loginMaxFailures {
		s.lockedUntil = now.Add(loginLockWindow)
		s.failures = 0
		s.log.Warn().Time("locked_until", s.lockedUntil).Msg("admin login locked")
	}
}

// Verify parses the token, checks the signature and confirms the JTI is
// still registered. Any failure collapses into ErrUnauthenticated.
func (s *AdminService) Verify(ctx context.Context, token string) (string, error) {
	claims := &jwt.RegisteredClaims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now))
	if err != nil || !parsed.Valid {
		return "", domain.ErrUnauthenticated
	}

	alive, err := s.sessions.Exists(ctx, claims.ID)
	if err != nil || !alive {
		return "", domain.ErrUnauthenticated
	}
	return claims.Subject, nil
}

// Logout revokes the token's session. An already-revoked token is a no-op.
func (s *AdminService) Logout(ctx context.Context, token string) error {
	claims := &jwt.RegisteredClaims{}
	if _, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.clock.Now)); err != nil {
		return nil
	}
	return s.sessions.Delete(ctx, claims.ID)
}

// Audit records an admin action. Entries go through the queue when one is
// wired; queue failures and the no-queue case fall back to a synchronous
// write so the trail never silently drops.
func (s *AdminService) Audit(ctx context.Context, action string, eventID *string, payload map[string]interface{}) {
	entry := &model.AuditLog{
		ID:        strings.ReplaceAll(uuid.New().String(), "-", ""),
		Action:    action,
		EventID:   eventID,
		CreatedAt: s.clock.Now(),
	}
	if payload != nil {
		if raw, err := json.Marshal(payload); err == nil {
			str := string(raw)
			entry.Payload = &str
		}
	}

	if s.queue != nil {
		raw, err := json.Marshal(entry)
		if err == nil {
			if err := s.queue.Push(ctx, raw); err == nil {
				return
			}
			s.log.Warn().Err(err).Str("action", action).Msg("audit queue push failed, writing directly")
		}
	}
	if err := s.store.CreateAuditLog(ctx, entry); err != nil {
		s.log.Error().Err(err).Str("action", action).Msg("audit log write failed")
	}
}

// ListAuditLogs returns the newest entries, most recent first.
func (s *AdminService) ListAuditLogs(ctx context.Context, limit int) ([]model.AuditLog, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return s.store.ListAuditLogs(ctx, limit)
}
