// Package repository defines the storage interface and its SQLite implementation.
package repository

import (
	"context"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
)

// Store defines the interface for data persistence.
//
// Getters return (nil, nil) when the row does not exist.
type Store interface {
	// Product operations
	CreateProduct(ctx context.Context, product *domain.Product) error
	GetProduct(ctx context.Context, productID string) (*domain.Product, error)

	// Session operations
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, sessionID string) (*domain.Session, error)
	GetSessionByCallID(ctx context.Context, callID string) (*domain.Session, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]domain.Session, error)
	BindCallID(ctx context.Context, sessionID, callID string) error
	AdvanceStatus(ctx context.Context, sessionID string, status domain.SessionStatus) (bool, error)
	ListUnscoredSessions(ctx context.Context, limit int) ([]domain.Session, error)

	// Transcript operations
	AppendTranscriptTurn(ctx context.Context, sessionID string, turn domain.TranscriptTurn) error
	ReplaceTranscript(ctx context.Context, sessionID string, turns []domain.TranscriptTurn) error

	// AnswerScore operations
	CreateAnswerScore(ctx context.Context, score *domain.AnswerScore) error
	ListAnswerScores(ctx context.Context, sessionID string) ([]domain.AnswerScore, error)

	// Score operations
	CreateScoreIfAbsent(ctx context.Context, score *domain.Score) (bool, error)
	GetScore(ctx context.Context, sessionID string) (*domain.Score, error)

	// Lifecycle
	Close() error
}
