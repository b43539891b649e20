package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/metrics"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/scoring"
)

// ErrSessionNotCompleted is returned when scoring a call that has not ended.
var ErrSessionNotCompleted = errors.New("session is not completed")

// ScoreAnswer records the in-call score of one answer for the session bound
// to callID. Arguments that cannot be decoded are stored as zero values so
// the live call never stalls. Unknown call ids are discarded.
func (s *Service) ScoreAnswer(ctx context.Context, callID string, rawArgs json.RawMessage) error {
	if callID == "" {
		return nil
	}

	args, err := scoring.DecodeScoreResponseArgs(rawArgs)
	if err != nil {
		log.Printf("WARN: call %s: malformed score_response arguments, using defaults: %v", callID, err)
	}

	session, err := s.store.GetSessionByCallID(ctx, callID)
	if err != nil {
		return fmt.Errorf("failed to look up call %s: %w", callID, err)
	}
	if session == nil {
		s.debugf("dropping answer score for unknown call %s", callID)
		return nil
	}

	answer := &domain.AnswerScore{
		AnswerScoreID:  "ans_" + uuid.New().String(),
		SessionID:      session.SessionID,
		Question:       args.Question,
		AnswerSummary:  args.AnswerSummary,
		TermAccuracy:   args.TermAccuracy,
		Conciseness:    args.Conciseness,
		FramingQuality: args.FramingQuality,
		Feedback:       args.Feedback,
		CreatedAt:      time.Now(),
	}
	if err := s.store.CreateAnswerScore(ctx, answer); err != nil {
		return fmt.Errorf("failed to store answer score: %w", err)
	}
	s.metrics.RecordAnswerScore()
	return nil
}

// HandleEndOfCall completes the session bound to callID, stores its final
// transcript and scores it. Status and transcript are committed before the
// evaluator runs, so an evaluator failure leaves the session retryable.
func (s *Service) HandleEndOfCall(ctx context.Context, callID string, transcript []domain.TranscriptTurn) error {
	session, err := s.CompleteByCallID(ctx, callID, transcript)
	if err != nil {
		return err
	}
	if session == nil {
		return nil
	}

	_, err = s.ScoreSession(ctx, session.SessionID)
	return err
}

// ScoreSession produces the final score of a completed session, or returns
// the existing one. Concurrent calls for one session share a single
// evaluator run. It returns (nil, nil) when the product is gone and no score
// can be produced.
//
// The shared run is bounded by the scoring timeout only, never by the context
// of whichever caller started it. Each caller stops waiting when its own ctx
// is done.
func (s *Service) ScoreSession(ctx context.Context, sessionID string) (*domain.Score, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.scoring.DoChan(sessionID, func() (interface{}, error) {
		return s.scoreSession(detached, sessionID)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		score, _ := res.Val.(*domain.Score)
		return score, nil
	}
}

func (s *Service) scoreSession(ctx context.Context, sessionID string) (*domain.Score, error) {
	existing, err := s.store.GetScore(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}
	if existing != nil {
		s.metrics.RecordScoring(metrics.OutcomeExisting, 0)
		return existing, nil
	}

	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.Status != domain.SessionStatusCompleted {
		return nil, ErrSessionNotCompleted
	}

	product, err := s.store.GetProduct(ctx, session.ProductID)
	if err != nil {
		return nil, fmt.Errorf("failed to get product: %w", err)
	}
	if product == nil {
		log.Printf("WARN: session %s: product %s not found, skipping scoring", sessionID, session.ProductID)
		s.metrics.RecordScoring(metrics.OutcomeNoProduct, 0)
		return nil, nil
	}

	evalCtx := ctx
	if s.config.ScoringTimeout > 0 {
		var cancel context.CancelFunc
		evalCtx, cancel = context.WithTimeout(ctx, s.config.ScoringTimeout)
		defer cancel()
	}

	started := time.Now()
	eval, err := s.evaluator.Evaluate(evalCtx, session.Transcript, product.ProductKnowledge, session.PersonalityType)
	if err != nil {
		s.metrics.RecordScoring(metrics.OutcomeError, time.Since(started))
		return nil, fmt.Errorf("failed to evaluate session %s: %w", sessionID, err)
	}

	score := &domain.Score{
		ScoreID:            "score_" + uuid.New().String(),
		SessionID:          sessionID,
		TermUnderstanding:  eval.TermUnderstanding,
		DescriptionBreadth: eval.DescriptionBreadth,
		Conciseness:        eval.Conciseness,
		ObjectionHandling:  eval.ObjectionHandling,
		USPFraming:         eval.USPFraming,
		Confidence:         eval.Confidence,
		Overall:            eval.Overall,
		Feedback:           eval.Feedback,
		CreatedAt:          time.Now(),
	}
	created, err := s.store.CreateScoreIfAbsent(ctx, score)
	if err != nil {
		return nil, fmt.Errorf("failed to store score: %w", err)
	}
	if !created {
		s.metrics.RecordScoring(metrics.OutcomeExisting, time.Since(started))
		return s.store.GetScore(ctx, sessionID)
	}

	s.metrics.RecordScoring(metrics.OutcomeCreated, time.Since(started))
	return score, nil
}
