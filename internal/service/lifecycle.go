package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
)

// withCallSession runs fn with the session bound to callID while holding that
// session's lock. fn sees a fresh read of the session. Unknown call ids are a
// silent no-op and fn is not called.
func (s *Service) withCallSession(ctx context.Context, callID string, fn func(*domain.Session) error) error {
	if callID == "" {
		return nil
	}
	found, err := s.store.GetSessionByCallID(ctx, callID)
	if err != nil {
		return fmt.Errorf("failed to look up call %s: %w", callID, err)
	}
	if found == nil {
		s.debugf("no session for call %s", callID)
		return nil
	}
	return s.withSession(ctx, found.SessionID, fn)
}

func (s *Service) withSession(ctx context.Context, sessionID string, fn func(*domain.Session) error) error {
	unlock := s.sessionLocks.lock(sessionID)
	defer unlock()

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return domain.ErrSessionNotFound
	}
	return fn(session)
}

// transition asks the policy where event moves the session and persists the
// move. The store refuses backward moves even if two writers race.
func (s *Service) transition(ctx context.Context, session *domain.Session, event domain.LifecycleEvent, reported string) error {
	next, changed, err := s.policyEngine.Next(ctx, session.Status, event, reported)
	if err != nil {
		return fmt.Errorf("failed to evaluate transition: %w", err)
	}
	if !changed {
		return nil
	}

	advanced, err := s.store.AdvanceStatus(ctx, session.SessionID, next)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	if advanced {
		s.debugf("session %s: %s -> %s on %s", session.SessionID, session.Status, next, event)
		s.metrics.RecordTransition(string(next))
		session.Status = next
	}
	return nil
}

// ApplyStatusUpdate handles a platform call status. "in-progress" activates
// the session, "ended" completes it, anything else is ignored.
func (s *Service) ApplyStatusUpdate(ctx context.Context, callID, status string) error {
	if status == "" {
		return nil
	}
	return s.withCallSession(ctx, callID, func(session *domain.Session) error {
		return s.transition(ctx, session, domain.LifecycleStatusUpdate, status)
	})
}

// CompleteByCallID stores the final transcript, when one is given, and marks
// the session completed. It returns the updated session, or nil when callID is
// not bound to any session.
func (s *Service) CompleteByCallID(ctx context.Context, callID string, transcript []domain.TranscriptTurn) (*domain.Session, error) {
	var completed *domain.Session
	err := s.withCallSession(ctx, callID, func(session *domain.Session) error {
		if len(transcript) > 0 {
			if err := s.store.ReplaceTranscript(ctx, session.SessionID, transcript); err != nil {
				return fmt.Errorf("failed to store transcript: %w", err)
			}
			session.Transcript = transcript
		}
		if err := s.transition(ctx, session, domain.LifecycleCallEnded, ""); err != nil {
			return err
		}
		completed = session
		return nil
	})
	if err != nil {
		return nil, err
	}
	return completed, nil
}

// AppendTranscript adds a live transcript fragment to the session bound to
// callID. Fragments are accepted in every status.
func (s *Service) AppendTranscript(ctx context.Context, callID, role, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	if role == "" {
		role = "unknown"
	}
	return s.withCallSession(ctx, callID, func(session *domain.Session) error {
		turn := domain.TranscriptTurn{Role: role, Content: text}
		if err := s.store.AppendTranscriptTurn(ctx, session.SessionID, turn); err != nil {
			return fmt.Errorf("failed to append transcript: %w", err)
		}
		return nil
	})
}
