package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/personality"
)

const unknownProductName = "Unknown"

// ErrMissingCallID is returned when a call id binding carries no id.
var ErrMissingCallID = errors.New("vapi_call_id is required")

// ListPersonalities returns the catalog keyed by personality type.
func (s *Service) ListPersonalities() map[string]domain.PersonalitySummary {
	return personality.All()
}

// CreateSession starts a pending practice session for a product the user owns
// and returns the call configuration for the voice platform.
func (s *Service) CreateSession(ctx context.Context, userID string, req domain.CreateSessionRequest) (*domain.CreateSessionResponse, error) {
	product, err := s.store.GetProduct(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil || product.UserID != userID {
		return nil, domain.ErrProductNotFound
	}

	p, ok := personality.Lookup(req.PersonalityType)
	if !ok {
		return nil, fmt.Errorf("%w: %q (choose from %s)", domain.ErrUnknownPersonality, req.PersonalityType, strings.Join(personality.Types(), ", "))
	}

	session := &domain.Session{
		SessionID:       "sess_" + uuid.New().String(),
		UserID:          userID,
		ProductID:       product.ProductID,
		PersonalityType: p.Type,
		Status:          domain.SessionStatusPending,
		CreatedAt:       time.Now(),
	}

	callConfig, err := s.builder.Build(p.Type, product.ProductKnowledge, session.SessionID)
	if err != nil {
		return nil, err
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	s.metrics.RecordSessionCreated(p.Type)

	summary := p.Summary()
	summary.Type = p.Type
	return &domain.CreateSessionResponse{
		SessionID:   session.SessionID,
		VapiConfig:  callConfig,
		Personality: summary,
	}, nil
}

// BindCallID records the platform's call id for a session the user owns and
// activates it. Rebinding the same id is harmless.
func (s *Service) BindCallID(ctx context.Context, userID, sessionID, callID string) error {
	if strings.TrimSpace(callID) == "" {
		return ErrMissingCallID
	}

	return s.withSession(ctx, sessionID, func(session *domain.Session) error {
		if session.UserID != userID {
			return domain.ErrSessionNotFound
		}
		if session.CallID != callID {
			if err := s.store.BindCallID(ctx, session.SessionID, callID); err != nil {
				return err
			}
			session.CallID = callID
		}
		return s.transition(ctx, session, domain.LifecycleCallBound, "")
	})
}

// ListSessions returns the user's sessions, newest first.
func (s *Service) ListSessions(ctx context.Context, userID string) ([]domain.SessionListItem, error) {
	sessions, err := s.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	names := make(map[string]string)
	items := make([]domain.SessionListItem, 0, len(sessions))
	for _, session := range sessions {
		name, err := s.productName(ctx, session.ProductID, names)
		if err != nil {
			return nil, err
		}

		item := domain.SessionListItem{
			ID:              session.SessionID,
			ProductName:     name,
			PersonalityType: session.PersonalityType,
			Status:          session.Status,
			CreatedAt:       session.CreatedAt,
		}
		score, err := s.store.GetScore(ctx, session.SessionID)
		if err != nil {
			return nil, fmt.Errorf("failed to get score: %w", err)
		}
		if score != nil {
			overall := score.Overall
			item.OverallScore = &overall
		}
		items = append(items, item)
	}
	return items, nil
}

// GetSessionDetail returns a session the user owns with its transcript and scores.
func (s *Service) GetSessionDetail(ctx context.Context, userID, sessionID string) (*domain.SessionDetail, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.UserID != userID {
		return nil, domain.ErrSessionNotFound
	}

	name, err := s.productName(ctx, session.ProductID, nil)
	if err != nil {
		return nil, err
	}
	score, err := s.store.GetScore(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}
	answers, err := s.store.ListAnswerScores(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list answer scores: %w", err)
	}

	return &domain.SessionDetail{
		ID:              session.SessionID,
		ProductName:     name,
		PersonalityType: session.PersonalityType,
		Status:          session.Status,
		Transcript:      session.Transcript,
		CreatedAt:       session.CreatedAt,
		Scores:          score,
		AnswerScores:    answers,
	}, nil
}

// ImportProduct stores a product prepared outside the service, such as one
// read from a YAML file.
func (s *Service) ImportProduct(ctx context.Context, product *domain.Product) error {
	if product.UserID == "" || product.Name == "" {
		return errors.New("product needs user_id and name")
	}
	if product.ProductID == "" {
		product.ProductID = "prod_" + uuid.New().String()
	}
	if product.CreatedAt.IsZero() {
		product.CreatedAt = time.Now()
	}
	if err := s.store.CreateProduct(ctx, product); err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	log.Printf("imported product %s (%s) for user %s", product.ProductID, product.Name, product.UserID)
	return nil
}

func (s *Service) productName(ctx context.Context, productID string, cache map[string]string) (string, error) {
	if name, ok := cache[productID]; ok {
		return name, nil
	}
	product, err := s.store.GetProduct(ctx, productID)
	if err != nil {
		return "", fmt.Errorf("failed to get product: %w", err)
	}
	name := unknownProductName
	if product != nil {
		name = product.Name
	}
	if cache != nil {
		cache[productID] = name
	}
	return name, nil
}
