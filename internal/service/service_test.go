package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/config"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/metrics"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/prompt"
	"github.com/maddoxeriksen-12/Calling-Coach/internal/repository"
	"github.com/maddoxeriksen-12/Calling-Coach/policy"
	"github.com/maddoxeriksen-12/Calling-Coach/tests/helpers"
)

type fakeEvaluator struct {
	calls atomic.Int32
	delay time.Duration
	block bool

	mu             sync.Mutex
	err            error
	lastTranscript []domain.TranscriptTurn
}

func (f *fakeEvaluator) Evaluate(ctx context.Context, transcript []domain.TranscriptTurn, product domain.ProductKnowledge, personalityType string) (*domain.Evaluation, error) {
	f.calls.Add(1)
	f.mu.Lock()
	f.lastTranscript = transcript
	err := f.err
	f.mu.Unlock()

	if f.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err != nil {
		return nil, err
	}
	return &domain.Evaluation{
		TermUnderstanding: 70,
		Conciseness:       55,
		Overall:           62,
		Feedback:          domain.ScoreFeedback{Strengths: []string{"clear opener"}, RamblingInstances: 1},
	}, nil
}

func (f *fakeEvaluator) setErr(err error) {
	f.mu.Lock()
	f.err = err
	f.mu.Unlock()
}

func newTestService(t *testing.T, evaluator *fakeEvaluator) (*Service, repository.Store) {
	t.Helper()
	ctx := context.Background()

	store := helpers.NewTestSQLiteStore(t)
	engine, err := policy.NewDefaultEngine(ctx)
	require.NoError(t, err)

	cfg := config.Default()
	cfg.ScoringTimeout = time.Second
	svc := New(store, prompt.Builder{WebhookBaseURL: "https://coach.test"}, evaluator, cfg, engine, metrics.NewMetrics("test"))
	return svc, store
}

// seedCall stores a product and a session bound to callID.
func seedCall(t *testing.T, store repository.Store, sessionID, callID string) {
	t.Helper()
	helpers.SeedProduct(t, store, "prod_"+sessionID, "u1")
	helpers.SeedSession(t, store, sessionID, "prod_"+sessionID, "u1", "skeptical_buyer", callID)
}

func statusOf(t *testing.T, store repository.Store, sessionID string) domain.SessionStatus {
	t.Helper()
	session, err := store.GetSession(context.Background(), sessionID)
	require.NoError(t, err)
	require.NotNil(t, session)
	return session.Status
}

func TestStatusUpdateReplayIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &fakeEvaluator{})
	seedCall(t, store, "s1", "abc")

	msg := &domain.WebhookMessage{Type: "status-update", Call: domain.WebhookCall{ID: "abc"}, Status: "in-progress"}

	resp, err := svc.HandleWebhook(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResponse{Status: "ok"}, resp)
	assert.Equal(t, domain.SessionStatusActive, statusOf(t, store, "s1"))

	_, err = svc.HandleWebhook(ctx, msg)
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusActive, statusOf(t, store, "s1"))
}

func TestStatusNeverRegresses(t *testing.T) {
	orders := [][]string{
		{"in-progress", "ended"},
		{"ended", "in-progress"},
		{"in-progress", "ended", "in-progress", "ended"},
		{"ended", "ringing", "in-progress"},
	}

	for i, order := range orders {
		t.Run(fmt.Sprint(order), func(t *testing.T) {
			ctx := context.Background()
			svc, store := newTestService(t, &fakeEvaluator{})
			sessionID := fmt.Sprintf("s%d", i)
			seedCall(t, store, sessionID, "call-"+sessionID)

			for _, status := range order {
				require.NoError(t, svc.ApplyStatusUpdate(ctx, "call-"+sessionID, status))
			}
			assert.Equal(t, domain.SessionStatusCompleted, statusOf(t, store, sessionID))
		})
	}
}

func TestUnknownStatusLeavesSessionUnchanged(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &fakeEvaluator{})
	seedCall(t, store, "s1", "abc")

	require.NoError(t, svc.ApplyStatusUpdate(ctx, "abc", "queued"))
	assert.Equal(t, domain.SessionStatusPending, statusOf(t, store, "s1"))

	require.NoError(t, svc.ApplyStatusUpdate(ctx, "abc", "in-progress"))
	require.NoError(t, svc.ApplyStatusUpdate(ctx, "abc", "forwarding"))
	assert.Equal(t, domain.SessionStatusActive, statusOf(t, store, "s1"))
}

func TestConcurrentStatusUpdatesSettleOnHighest(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &fakeEvaluator{})
	seedCall(t, store, "s1", "abc")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		status := "in-progress"
		if i%5 == 0 {
			status = "ended"
		}
		wg.Add(1)
		go func(status string) {
			defer wg.Done()
			assert.NoError(t, svc.ApplyStatusUpdate(ctx, "abc", status))
		}(status)
	}
	wg.Wait()

	assert.Equal(t, domain.SessionStatusCompleted, statusOf(t, store, "s1"))
	assert.Equal(t, 0, svc.sessionLocks.size())
}

func TestEndOfCallForUnknownCall(t *testing.T) {
	ctx := context.Background()
	evaluator := &fakeEvaluator{}
	svc, store := newTestService(t, evaluator)
	seedCall(t, store, "s1", "known")

	resp, err := svc.HandleWebhook(ctx, &domain.WebhookMessage{Type: "end-of-call-report", Call: domain.WebhookCall{ID: "nobody"}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResponse{Status: "ok"}, resp)
	assert.Equal(t, int32(0), evaluator.calls.Load())

	score, err := store.GetScore(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, score)
	assert.Equal(t, domain.SessionStatusPending, statusOf(t, store, "s1"))
}

func TestEndOfCallStoresTranscriptAndScores(t *testing.T) {
	ctx := context.Background()
	evaluator := &fakeEvaluator{}
	svc, store := newTestService(t, evaluator)
	seedCall(t, store, "s1", "abc")

	require.NoError(t, svc.AppendTranscript(ctx, "abc", "user", "live fragment"))

	final := []domain.TranscriptTurn{
		{Role: "assistant", Content: "Why should I care?"},
		{Role: "user", Content: "It saves four days every close."},
	}
	require.NoError(t, svc.HandleEndOfCall(ctx, "abc", final))

	session, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, session.Status)
	assert.Equal(t, final, session.Transcript)
	assert.Equal(t, final, evaluator.lastTranscript)

	score, err := store.GetScore(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, score)
	assert.Equal(t, 62.0, score.Overall)
	assert.Equal(t, []string{"clear opener"}, score.Feedback.Strengths)
}

func TestEndOfCallWithoutMessagesKeepsLiveTranscript(t *testing.T) {
	ctx := context.Background()
	evaluator := &fakeEvaluator{}
	svc, store := newTestService(t, evaluator)
	seedCall(t, store, "s1", "abc")

	require.NoError(t, svc.AppendTranscript(ctx, "abc", "", "hello there"))
	require.NoError(t, svc.HandleEndOfCall(ctx, "abc", nil))

	want := []domain.TranscriptTurn{{Role: "unknown", Content: "hello there"}}
	assert.Equal(t, want, evaluator.lastTranscript)
}

func TestDuplicateEndOfCallScoresOnce(t *testing.T) {
	ctx := context.Background()
	evaluator := &fakeEvaluator{delay: 50 * time.Millisecond}
	svc, store := newTestService(t, evaluator)
	seedCall(t, store, "s1", "abc")

	msg := &domain.WebhookMessage{
		Type:     "end-of-call-report",
		Call:     domain.WebhookCall{ID: "abc"},
		Artifact: domain.WebhookArtifact{Messages: []domain.TranscriptTurn{{Role: "user", Content: "pitch"}}},
	}

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.HandleWebhook(ctx, msg)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	_, err := svc.HandleWebhook(ctx, msg)
	require.NoError(t, err)

	assert.Equal(t, int32(1), evaluator.calls.Load())
	score, err := store.GetScore(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, score)
	assert.Equal(t, domain.SessionStatusCompleted, statusOf(t, store, "s1"))
}

func TestEvaluatorFailureKeepsSessionRetryable(t *testing.T) {
	ctx := context.Background()
	evaluator := &fakeEvaluator{}
	evaluator.setErr(errors.New("upstream unavailable"))
	svc, store := newTestService(t, evaluator)
	seedCall(t, store, "s1", "abc")

	final := []domain.TranscriptTurn{{Role: "user", Content: "pitch"}}
	_, err := svc.HandleWebhook(ctx, &domain.WebhookMessage{
		Type:     "end-of-call-report",
		Call:     domain.WebhookCall{ID: "abc"},
		Artifact: domain.WebhookArtifact{Messages: final},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upstream unavailable")

	session, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, session.Status)
	assert.Equal(t, final, session.Transcript)
	score, err := store.GetScore(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, score)

	evaluator.setErr(nil)
	score, err = svc.ScoreSession(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, score)
	assert.Equal(t, 62.0, score.Overall)
}

func TestScoringTimeout(t *testing.T) {
	ctx := context.Background()
	evaluator := &fakeEvaluator{block: true}
	svc, store := newTestService(t, evaluator)
	svc.config.ScoringTimeout = 20 * time.Millisecond
	seedCall(t, store, "s1", "abc")

	err := svc.HandleEndOfCall(ctx, "abc", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, domain.SessionStatusCompleted, statusOf(t, store, "s1"))
}

func TestCancelledRetryDoesNotFailSharedScoring(t *testing.T) {
	ctx := context.Background()
	evaluator := &fakeEvaluator{delay: 200 * time.Millisecond}
	svc, store := newTestService(t, evaluator)
	seedCall(t, store, "s1", "abc")
	_, err := store.AdvanceStatus(ctx, "s1", domain.SessionStatusCompleted)
	require.NoError(t, err)

	retryCtx, cancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer cancel()
	retryErr := make(chan error, 1)
	go func() {
		_, err := svc.ScoreSession(retryCtx, "s1")
		retryErr <- err
	}()

	// Join the run the retry started.
	require.Eventually(t, func() bool { return evaluator.calls.Load() == 1 }, time.Second, time.Millisecond)
	require.NoError(t, svc.HandleEndOfCall(ctx, "abc", nil))

	assert.ErrorIs(t, <-retryErr, context.DeadlineExceeded)
	assert.Equal(t, int32(1), evaluator.calls.Load())
	score, err := store.GetScore(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, score)
}

func TestFileStoreConcurrentEventsLoseNothing(t *testing.T) {
	ctx := context.Background()
	store, err := repository.NewSQLiteStore("file:" + filepath.Join(t.TempDir(), "coach.db") + "?cache=shared&mode=rwc")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	engine, err := policy.NewDefaultEngine(ctx)
	require.NoError(t, err)
	cfg := config.Default()
	cfg.ScoringTimeout = 5 * time.Second
	evaluator := &fakeEvaluator{}
	svc := New(store, prompt.Builder{}, evaluator, cfg, engine, nil)

	const sessions, events = 5, 16
	for i := 0; i < sessions; i++ {
		seedCall(t, store, fmt.Sprintf("s%d", i), fmt.Sprintf("call-%d", i))
	}

	var wg sync.WaitGroup
	errs := make(chan error, sessions*(2*events+1))
	for i := 0; i < sessions; i++ {
		callID := fmt.Sprintf("call-%d", i)
		for j := 0; j < events; j++ {
			wg.Add(2)
			go func(j int) {
				defer wg.Done()
				errs <- svc.ScoreAnswer(ctx, callID, json.RawMessage(fmt.Sprintf(`{"question":"q%d","term_accuracy":50}`, j)))
			}(j)
			go func(j int) {
				defer wg.Done()
				errs <- svc.AppendTranscript(ctx, callID, "user", fmt.Sprintf("fragment %d", j))
			}(j)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- svc.HandleEndOfCall(ctx, callID, nil)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	for i := 0; i < sessions; i++ {
		sessionID := fmt.Sprintf("s%d", i)
		assert.Equal(t, domain.SessionStatusCompleted, statusOf(t, store, sessionID))
		answers, err := store.ListAnswerScores(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, answers, events)
		session, err := store.GetSession(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, session.Transcript, events)
		score, err := store.GetScore(ctx, sessionID)
		require.NoError(t, err)
		assert.NotNil(t, score, sessionID)
	}
}

type missingProductStore struct {
	repository.Store
}

func (missingProductStore) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	return nil, nil
}

func TestScoreSessionWithoutProduct(t *testing.T) {
	ctx := context.Background()
	evaluator := &fakeEvaluator{}
	svc, store := newTestService(t, evaluator)
	seedCall(t, store, "s1", "abc")
	_, err := store.AdvanceStatus(ctx, "s1", domain.SessionStatusCompleted)
	require.NoError(t, err)
	svc.store = missingProductStore{Store: store}

	score, err := svc.ScoreSession(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, score)
	assert.Equal(t, int32(0), evaluator.calls.Load())
}

func TestScoreSessionRequiresCompletedSession(t *testing.T) {
	evaluator := &fakeEvaluator{}
	svc, store := newTestService(t, evaluator)
	seedCall(t, store, "s1", "abc")

	_, err := svc.ScoreSession(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	_, err = svc.ScoreSession(context.Background(), "s1")
	assert.ErrorIs(t, err, ErrSessionNotCompleted)
	assert.Equal(t, int32(0), evaluator.calls.Load())
}

func TestConcurrentToolCallsAllRecorded(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &fakeEvaluator{})
	seedCall(t, store, "s1", "abc")

	const n = 25
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			args := json.RawMessage(fmt.Sprintf(`{"question":"q%d","answer_summary":"a","term_accuracy":%d,"conciseness":50,"framing_quality":50,"feedback":"ok"}`, i, i))
			msg := &domain.WebhookMessage{
				Type: "tool-calls",
				Call: domain.WebhookCall{ID: "abc"},
				ToolCallList: []domain.WebhookToolCall{
					{ID: fmt.Sprintf("tc_%d", i), Function: domain.WebhookToolFunction{Name: "score_response", Arguments: args}},
				},
			}
			_, err := svc.HandleWebhook(ctx, msg)
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	answers, err := store.ListAnswerScores(ctx, "s1")
	require.NoError(t, err)
	assert.Len(t, answers, n)
}

func TestToolCallBatchMixedArguments(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &fakeEvaluator{})
	seedCall(t, store, "s1", "abc")

	msg := &domain.WebhookMessage{
		Type: "tool-calls",
		Call: domain.WebhookCall{ID: "abc"},
		ToolCallList: []domain.WebhookToolCall{
			{ID: "tc_bad", Function: domain.WebhookToolFunction{Name: "score_response", Arguments: json.RawMessage(`"{broken"`)}},
			{ID: "tc_good", Function: domain.WebhookToolFunction{Name: "score_response", Arguments: json.RawMessage(`"{\"question\":\"Why now?\",\"term_accuracy\":88}"`)}},
			{ID: "tc_other", Function: domain.WebhookToolFunction{Name: "transfer_call"}},
		},
	}

	resp, err := svc.HandleWebhook(ctx, msg)
	require.NoError(t, err)

	toolResp, ok := resp.(domain.ToolCallsResponse)
	require.True(t, ok)
	require.Len(t, toolResp.Results, 3)
	assert.Equal(t, "tc_bad", toolResp.Results[0].ToolCallID)
	assert.JSONEq(t, `{"status":"scored","message":"Score recorded. Continue the conversation."}`, toolResp.Results[0].Result)
	assert.Equal(t, "score_response", toolResp.Results[1].Name)
	assert.Equal(t, "transfer_call", toolResp.Results[2].Name)
	assert.JSONEq(t, `{"status":"unknown_tool"}`, toolResp.Results[2].Result)

	answers, err := store.ListAnswerScores(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, answers, 2)

	byQuestion := map[string]domain.AnswerScore{}
	for _, a := range answers {
		byQuestion[a.Question] = a
	}
	assert.Equal(t, 0.0, byQuestion[""].TermAccuracy)
	assert.Equal(t, 88.0, byQuestion["Why now?"].TermAccuracy)
}

func TestToolCallsForUnknownCallStillAnswered(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, &fakeEvaluator{})

	resp, err := svc.HandleWebhook(ctx, &domain.WebhookMessage{
		Type:         "tool-calls",
		Call:         domain.WebhookCall{ID: "ghost"},
		ToolCallList: []domain.WebhookToolCall{{ID: "tc_1", Function: domain.WebhookToolFunction{Name: "score_response"}}},
	})
	require.NoError(t, err)
	toolResp := resp.(domain.ToolCallsResponse)
	require.Len(t, toolResp.Results, 1)
	assert.Equal(t, "tc_1", toolResp.Results[0].ToolCallID)
}

func TestUnknownWebhookTypeIsNoop(t *testing.T) {
	svc, store := newTestService(t, &fakeEvaluator{})
	seedCall(t, store, "s1", "abc")

	resp, err := svc.HandleWebhook(context.Background(), &domain.WebhookMessage{Type: "speech-update", Call: domain.WebhookCall{ID: "abc"}})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResponse{Status: "ok"}, resp)
	assert.Equal(t, domain.SessionStatusPending, statusOf(t, store, "s1"))
}

func TestTranscriptAppendsInAnyStatus(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &fakeEvaluator{})
	seedCall(t, store, "s1", "abc")

	require.NoError(t, svc.ApplyStatusUpdate(ctx, "abc", "ended"))
	_, err := svc.HandleWebhook(ctx, &domain.WebhookMessage{
		Type:     "transcript",
		Call:     domain.WebhookCall{ID: "abc"},
		Role:     "assistant",
		Artifact: domain.WebhookArtifact{Transcript: "one more thing"},
	})
	require.NoError(t, err)
	require.NoError(t, svc.AppendTranscript(ctx, "abc", "user", "   "))

	session, err := store.GetSession(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, session.Status)
	assert.Equal(t, []domain.TranscriptTurn{{Role: "assistant", Content: "one more thing"}}, session.Transcript)
}

func TestCreateSession(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &fakeEvaluator{})
	helpers.SeedProduct(t, store, "p1", "u1")

	resp, err := svc.CreateSession(ctx, "u1", domain.CreateSessionRequest{ProductID: "p1", PersonalityType: "busy_executive"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.SessionID)
	assert.Equal(t, "busy_executive", resp.Personality.Type)
	require.NotNil(t, resp.VapiConfig)
	assert.Equal(t, resp.SessionID, resp.VapiConfig.Metadata.SessionID)
	assert.Equal(t, "https://coach.test/webhook/vapi", resp.VapiConfig.ServerURL)

	session, err := store.GetSession(ctx, resp.SessionID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, domain.SessionStatusPending, session.Status)
	assert.Empty(t, session.CallID)

	_, err = svc.CreateSession(ctx, "u1", domain.CreateSessionRequest{ProductID: "p1", PersonalityType: "pushover"})
	assert.ErrorIs(t, err, domain.ErrUnknownPersonality)

	_, err = svc.CreateSession(ctx, "u2", domain.CreateSessionRequest{ProductID: "p1", PersonalityType: "busy_executive"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)

	_, err = svc.CreateSession(ctx, "u1", domain.CreateSessionRequest{ProductID: "missing", PersonalityType: "busy_executive"})
	assert.ErrorIs(t, err, domain.ErrProductNotFound)
}

func TestBindCallID(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &fakeEvaluator{})
	helpers.SeedProduct(t, store, "p1", "u1")
	helpers.SeedSession(t, store, "s1", "p1", "u1", "friendly_non_committal", "")
	helpers.SeedSession(t, store, "s2", "p1", "u1", "friendly_non_committal", "")

	require.NoError(t, svc.BindCallID(ctx, "u1", "s1", "call-1"))
	assert.Equal(t, domain.SessionStatusActive, statusOf(t, store, "s1"))

	require.NoError(t, svc.BindCallID(ctx, "u1", "s1", "call-1"))
	assert.ErrorIs(t, svc.BindCallID(ctx, "u1", "s2", "call-1"), domain.ErrCallIDConflict)
	assert.ErrorIs(t, svc.BindCallID(ctx, "u2", "s1", "call-9"), domain.ErrSessionNotFound)
	assert.ErrorIs(t, svc.BindCallID(ctx, "u1", "missing", "call-9"), domain.ErrSessionNotFound)
	assert.ErrorIs(t, svc.BindCallID(ctx, "u1", "s2", " "), ErrMissingCallID)

	require.NoError(t, svc.ApplyStatusUpdate(ctx, "call-1", "ended"))
	require.NoError(t, svc.BindCallID(ctx, "u1", "s1", "call-1"))
	assert.Equal(t, domain.SessionStatusCompleted, statusOf(t, store, "s1"))
}

func TestListSessionsAndDetail(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &fakeEvaluator{})
	seedCall(t, store, "s1", "abc")
	helpers.SeedSession(t, store, "s2", "prod_s1", "u1", "technical_expert", "")

	require.NoError(t, svc.ScoreAnswer(ctx, "abc", json.RawMessage(`{"question":"What is it?","term_accuracy":40}`)))
	require.NoError(t, svc.HandleEndOfCall(ctx, "abc", []domain.TranscriptTurn{{Role: "user", Content: "pitch"}}))

	items, err := svc.ListSessions(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "s2", items[0].ID)
	assert.Nil(t, items[0].OverallScore)
	require.NotNil(t, items[1].OverallScore)
	assert.Equal(t, 62.0, *items[1].OverallScore)
	assert.Equal(t, "Acme Ledger", items[1].ProductName)

	detail, err := svc.GetSessionDetail(ctx, "u1", "s1")
	require.NoError(t, err)
	assert.Equal(t, domain.SessionStatusCompleted, detail.Status)
	require.NotNil(t, detail.Scores)
	require.Len(t, detail.AnswerScores, 1)
	assert.Equal(t, "What is it?", detail.AnswerScores[0].Question)

	_, err = svc.GetSessionDetail(ctx, "u2", "s1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestScoringRetrySweep(t *testing.T) {
	ctx := context.Background()
	evaluator := &fakeEvaluator{}
	evaluator.setErr(errors.New("flaky"))
	svc, store := newTestService(t, evaluator)
	seedCall(t, store, "s1", "abc")

	require.Error(t, svc.HandleEndOfCall(ctx, "abc", nil))

	evaluator.setErr(nil)
	svc.sweepUnscoredSessions(ctx)

	score, err := store.GetScore(ctx, "s1")
	require.NoError(t, err)
	assert.NotNil(t, score)
	assert.Equal(t, int32(2), evaluator.calls.Load())

	svc.sweepUnscoredSessions(ctx)
	assert.Equal(t, int32(2), evaluator.calls.Load())
}

func TestImportProduct(t *testing.T) {
	ctx := context.Background()
	svc, store := newTestService(t, &fakeEvaluator{})

	product := &domain.Product{UserID: "u1", Name: "Widget"}
	require.NoError(t, svc.ImportProduct(ctx, product))
	assert.NotEmpty(t, product.ProductID)

	got, err := store.GetProduct(ctx, product.ProductID)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Error(t, svc.ImportProduct(ctx, &domain.Product{Name: "No owner"}))
}
