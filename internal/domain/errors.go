// Package domain holds the error taxonomy shared by services, repositories
// and handlers. Every failure the core reports to its callers is one of
// these sentinels; the routing layer maps them to transport responses.
package domain

import "errors"

var (
	// ErrNotFound — event, question or participant absent.
	ErrNotFound = errors.New("not found")
	// ErrInvalidState — operation not valid for the event's lifecycle state.
	ErrInvalidState = errors.New("event not in a valid state for this operation")
	// ErrQuestionNotActive — referenced question is not the event's current one.
	ErrQuestionNotActive = errors.New("question not active")
	// ErrUnauthenticated — no session, or session bound to a different event.
	ErrUnauthenticated = errors.New("no session")
	// ErrNotRegistered — session exists but no participant is attached yet.
	ErrNotRegistered = errors.New("not registered")
	// ErrDuplicateSubmission — an answer already exists for this
	// (event, question, participant) triple.
	ErrDuplicateSubmission = errors.New("already answered")
	// ErrInvalidJoinCode — join attempted with a wrong code.
	ErrInvalidJoinCode = errors.New("invalid join code")
	// ErrEventFinished — registration attempted after the event ended.
	ErrEventFinished = errors.New("quiz finished")
	// ErrInvalidCredentials — admin password check failed.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrLoginLocked — too many failed admin logins in the lockout window.
	ErrLoginLocked = errors.New("too many failed login attempts")
	// ErrEventStarted — question sequence mutation attempted mid-run.
	ErrEventStarted = errors.New("event already started")
	// ErrInvalidQuestion — question payload violates the 4-choice shape.
	ErrInvalidQuestion = errors.New("invalid question payload")
)
