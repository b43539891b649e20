package service

import (
	"context"
	"log"
	"time"
)

const scoringRetryBatch = 20

// RunScoringRetryMonitor periodically rescores completed sessions that have no
// final score, e.g. because the evaluator failed or timed out at call end.
func (s *Service) RunScoringRetryMonitor(ctx context.Context) {
	interval := s.config.ScoringRetryInterval
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweepUnscoredSessions(ctx)
		}
	}
}

func (s *Service) sweepUnscoredSessions(ctx context.Context) {
	listCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	sessions, err := s.store.ListUnscoredSessions(listCtx, scoringRetryBatch)
	cancel()
	if err != nil {
		log.Printf("WARN: scoring retry sweep failed: %v", err)
		return
	}

	for _, session := range sessions {
		if ctx.Err() != nil {
			return
		}
		if _, err := s.ScoreSession(ctx, session.SessionID); err != nil {
			log.Printf("WARN: failed to rescore session %s: %v", session.SessionID, err)
		}
	}
}
