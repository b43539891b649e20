package helpers

import (
	"context"
	"testing"
	"time"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/repository"
)

func NewTestSQLiteStore(t *testing.T) *repository.SQLiteStore {
	t.Helper()

	s, err := repository.NewSQLiteStore(":memory:")
	if err != nil {
		t.Fatalf("failed to create sqlite store: %v", err)
	}

	t.Cleanup(func() {
		_ = s.Close()
	})

	return s
}

// SeedProduct stores a small product owned by userID.
func SeedProduct(t *testing.T, s repository.Store, productID, userID string) *domain.Product {
	t.Helper()

	product := &domain.Product{
		ProductID: productID,
		UserID:    userID,
		Name:      "Acme Ledger",
		ProductKnowledge: domain.ProductKnowledge{
			USPs: []domain.USP{
				{Title: "Real-time reconciliation", Description: "Books close continuously", ProofPoints: []string{"Closes month-end 4 days faster"}},
			},
			KeyTerms: []domain.KeyTerm{
				{Term: "Reconciliation", Definition: "Matching ledger entries to bank records", UsageExample: "Reconciliation runs hourly"},
			},
			CommonObjections: []domain.Objection{
				{Objection: "We already use spreadsheets", RecommendedResponse: "Spreadsheets break at scale"},
			},
		},
		CreatedAt: time.Now(),
	}
	if err := s.CreateProduct(context.Background(), product); err != nil {
		t.Fatalf("failed to seed product: %v", err)
	}
	return product
}

// SeedSession stores a pending session, optionally bound to callID.
func SeedSession(t *testing.T, s repository.Store, sessionID, productID, userID, personalityType, callID string) *domain.Session {
	t.Helper()

	session := &domain.Session{
		SessionID:       sessionID,
		UserID:          userID,
		ProductID:       productID,
		PersonalityType: personalityType,
		CallID:          callID,
		Status:          domain.SessionStatusPending,
		CreatedAt:       time.Now(),
	}
	if err := s.CreateSession(context.Background(), session); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return session
}
