package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mattn/go-sqlite3"

	"github.com/maddoxeriksen-12/Calling-Coach/internal/domain"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", withPragmas(dsn))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// For in-memory SQLite, multiple connections create separate databases.
	// Keep a single connection to avoid schema/data disappearing across goroutines.
	if isMemoryDSN(dsn) {
		db.SetMaxOpenConns(1)
		db.SetMaxIdleConns(1)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func isMemoryDSN(dsn string) bool {
	return strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// withPragmas enables foreign keys and a busy timeout on every pooled
// connection. File databases also get WAL and immediate transactions so
// concurrent writers wait on the busy timeout instead of failing. Shared cache
// is dropped for them: it reports table locks that the busy timeout never retries.
func withPragmas(dsn string) string {
	base, query, _ := strings.Cut(dsn, "?")
	memory := isMemoryDSN(dsn)

	var params []string
	for _, p := range strings.Split(query, "&") {
		if p == "" || (!memory && p == "cache=shared") {
			continue
		}
		params = append(params, p)
	}

	set := func(key, value string) {
		if !strings.Contains(query, key+"=") {
			params = append(params, key+"="+value)
		}
	}
	set("_foreign_keys", "on")
	set("_busy_timeout", "5000")
	if !memory {
		set("_journal_mode", "WAL")
		set("_txlock", "immediate")
	}

	if len(params) == 0 {
		return base
	}
	return base + "?" + strings.Join(params, "&")
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS products (
			product_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			extracted_usps TEXT,
			key_terms TEXT,
			common_objections TEXT,
			client_frames TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_products_user ON products(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			product_id TEXT NOT NULL,
			personality_type TEXT NOT NULL,
			call_id TEXT UNIQUE,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (product_id) REFERENCES products(product_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user ON sessions(user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS transcript_turns (
			session_id TEXT NOT NULL,
			seq INTEGER NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			PRIMARY KEY (session_id, seq),
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS answer_scores (
			answer_score_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			question TEXT NOT NULL,
			answer_summary TEXT NOT NULL,
			term_accuracy REAL NOT NULL DEFAULT 0,
			conciseness REAL NOT NULL DEFAULT 0,
			framing_quality REAL NOT NULL DEFAULT 0,
			feedback TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_answer_scores_session ON answer_scores(session_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS scores (
			score_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL UNIQUE,
			term_understanding REAL NOT NULL DEFAULT 0,
			description_breadth REAL NOT NULL DEFAULT 0,
			conciseness REAL NOT NULL DEFAULT 0,
			objection_handling REAL NOT NULL DEFAULT 0,
			usp_framing REAL NOT NULL DEFAULT 0,
			confidence REAL NOT NULL DEFAULT 0,
			overall REAL NOT NULL DEFAULT 0,
			detailed_feedback TEXT,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	// Add new columns for existing DBs (SQLite has limited ALTER TABLE support).
	if err := s.ensureColumn("products", "client_frames", "ALTER TABLE products ADD COLUMN client_frames TEXT"); err != nil {
		return err
	}

	return nil
}

func (s *SQLiteStore) ensureColumn(tableName, columnName, ddl string) error {
	rows, err := s.db.Query(fmt.Sprintf("PRAGMA table_info(%s)", tableName))
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull int
		var dfltValue sql.NullString
		var pk int
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return err
		}
		if name == columnName {
			return nil
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}

	_, err = s.db.Exec(ddl)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateProduct creates a new product.
func (s *SQLiteStore) CreateProduct(ctx context.Context, product *domain.Product) error {
	usps, _ := json.Marshal(product.USPs)
	terms, _ := json.Marshal(product.KeyTerms)
	objections, _ := json.Marshal(product.CommonObjections)
	frames, _ := json.Marshal(product.ClientFrames)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO products (product_id, user_id, name, extracted_usps, key_terms, common_objections, client_frames, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		product.ProductID, product.UserID, product.Name, string(usps), string(terms), string(objections), string(frames), product.CreatedAt)
	return err
}

// GetProduct retrieves a product by ID.
func (s *SQLiteStore) GetProduct(ctx context.Context, productID string) (*domain.Product, error) {
	var product domain.Product
	var usps, terms, objections, frames sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT product_id, user_id, name, extracted_usps, key_terms, common_objections, client_frames, created_at FROM products WHERE product_id = ?`,
		productID).Scan(&product.ProductID, &product.UserID, &product.Name, &usps, &terms, &objections, &frames, &product.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := unmarshalColumn(usps, &product.USPs); err != nil {
		return nil, fmt.Errorf("failed to decode usps: %w", err)
	}
	if err := unmarshalColumn(terms, &product.KeyTerms); err != nil {
		return nil, fmt.Errorf("failed to decode key terms: %w", err)
	}
	if err := unmarshalColumn(objections, &product.CommonObjections); err != nil {
		return nil, fmt.Errorf("failed to decode objections: %w", err)
	}
	if err := unmarshalColumn(frames, &product.ClientFrames); err != nil {
		return nil, fmt.Errorf("failed to decode client frames: %w", err)
	}
	return &product, nil
}

// CreateSession creates a new session.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *domain.Session) error {
	status := session.Status
	if status == "" {
		status = domain.SessionStatusPending
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (session_id, user_id, product_id, personality_type, call_id, status, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		session.SessionID, session.UserID, session.ProductID, session.PersonalityType, nullString(session.CallID), status, session.CreatedAt)
	if isUniqueViolation(err) {
		return domain.ErrCallIDConflict
	}
	return err
}

const sessionColumns = `session_id, user_id, product_id, personality_type, call_id, status, created_at`

// GetSession retrieves a session and its transcript by ID.
func (s *SQLiteStore) GetSession(ctx context.Context, sessionID string) (*domain.Session, error) {
	return s.getSessionWhere(ctx, `session_id = ?`, sessionID)
}

// GetSessionByCallID retrieves the session bound to an external call id.
func (s *SQLiteStore) GetSessionByCallID(ctx context.Context, callID string) (*domain.Session, error) {
	if callID == "" {
		return nil, nil
	}
	return s.getSessionWhere(ctx, `call_id = ?`, callID)
}

func (s *SQLiteStore) getSessionWhere(ctx context.Context, where string, arg string) (*domain.Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE `+where, arg)
	session, err := scanSession(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	session.Transcript, err = s.getTranscript(ctx, session.SessionID)
	if err != nil {
		return nil, err
	}
	return session, nil
}

// ListSessionsByUser lists a user's sessions, newest first. Transcripts are not loaded.
func (s *SQLiteStore) ListSessionsByUser(ctx context.Context, userID string) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions WHERE user_id = ? ORDER BY created_at DESC, rowid DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

// ListUnscoredSessions lists completed sessions that have no final score yet,
// oldest first. Transcripts are not loaded.
func (s *SQLiteStore) ListUnscoredSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM sessions
		 WHERE status = ? AND NOT EXISTS (SELECT 1 FROM scores WHERE scores.session_id = sessions.session_id)
		 ORDER BY created_at ASC, rowid ASC LIMIT ?`, domain.SessionStatusCompleted, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, *session)
	}
	return sessions, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanSession(row rowScanner) (*domain.Session, error) {
	var session domain.Session
	var callID sql.NullString
	if err := row.Scan(&session.SessionID, &session.UserID, &session.ProductID, &session.PersonalityType, &callID, &session.Status, &session.CreatedAt); err != nil {
		return nil, err
	}
	if callID.Valid {
		session.CallID = callID.String
	}
	return &session, nil
}

// BindCallID sets the external call id of a session. A call id already bound to
// a different session yields domain.ErrCallIDConflict.
func (s *SQLiteStore) BindCallID(ctx context.Context, sessionID, callID string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET call_id = ? WHERE session_id = ?`,
		callID, sessionID)
	if isUniqueViolation(err) {
		return domain.ErrCallIDConflict
	}
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// AdvanceStatus moves a session to status only if that is forward along the
// lifecycle. It reports whether the row changed.
func (s *SQLiteStore) AdvanceStatus(ctx context.Context, sessionID string, status domain.SessionStatus) (bool, error) {
	if !status.Valid() {
		return false, fmt.Errorf("invalid session status %q", status)
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE sessions SET status = ?
		 WHERE session_id = ?
		   AND (CASE status WHEN 'pending' THEN 0 WHEN 'active' THEN 1 WHEN 'completed' THEN 2 ELSE -1 END) < ?`,
		status, sessionID, status.Rank())
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// AppendTranscriptTurn adds a turn after the session's last turn.
func (s *SQLiteStore) AppendTranscriptTurn(ctx context.Context, sessionID string, turn domain.TranscriptTurn) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO transcript_turns (session_id, seq, role, content)
		 SELECT ?, COALESCE(MAX(seq), 0) + 1, ?, ? FROM transcript_turns WHERE session_id = ?`,
		sessionID, turn.Role, turn.Content, sessionID)
	return err
}

// ReplaceTranscript swaps the whole transcript of a session atomically.
func (s *SQLiteStore) ReplaceTranscript(ctx context.Context, sessionID string, turns []domain.TranscriptTurn) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM transcript_turns WHERE session_id = ?`, sessionID); err != nil {
		return err
	}
	for i, turn := range turns {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO transcript_turns (session_id, seq, role, content) VALUES (?, ?, ?, ?)`,
			sessionID, i+1, turn.Role, turn.Content); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) getTranscript(ctx context.Context, sessionID string) ([]domain.TranscriptTurn, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT role, content FROM transcript_turns WHERE session_id = ? ORDER BY seq ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	turns := []domain.TranscriptTurn{}
	for rows.Next() {
		var turn domain.TranscriptTurn
		if err := rows.Scan(&turn.Role, &turn.Content); err != nil {
			return nil, err
		}
		turns = append(turns, turn)
	}
	return turns, rows.Err()
}

// CreateAnswerScore appends a per-answer score.
func (s *SQLiteStore) CreateAnswerScore(ctx context.Context, score *domain.AnswerScore) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO answer_scores (answer_score_id, session_id, question, answer_summary, term_accuracy, conciseness, framing_quality, feedback, created_at) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		score.AnswerScoreID, score.SessionID, score.Question, score.AnswerSummary, score.TermAccuracy, score.Conciseness, score.FramingQuality, score.Feedback, score.CreatedAt)
	return err
}

// ListAnswerScores lists a session's answer scores in creation order.
func (s *SQLiteStore) ListAnswerScores(ctx context.Context, sessionID string) ([]domain.AnswerScore, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT answer_score_id, session_id, question, answer_summary, term_accuracy, conciseness, framing_quality, feedback, created_at
		 FROM answer_scores WHERE session_id = ? ORDER BY created_at ASC, rowid ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	scores := []domain.AnswerScore{}
	for rows.Next() {
		var a domain.AnswerScore
		if err := rows.Scan(&a.AnswerScoreID, &a.SessionID, &a.Question, &a.AnswerSummary, &a.TermAccuracy, &a.Conciseness, &a.FramingQuality, &a.Feedback, &a.CreatedAt); err != nil {
			return nil, err
		}
		scores = append(scores, a)
	}
	return scores, rows.Err()
}

// CreateScoreIfAbsent inserts the session's final score unless one already
// exists. It reports whether this call created it.
func (s *SQLiteStore) CreateScoreIfAbsent(ctx context.Context, score *domain.Score) (bool, error) {
	feedback, err := json.Marshal(score.Feedback)
	if err != nil {
		return false, fmt.Errorf("failed to marshal feedback: %w", err)
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO scores (score_id, session_id, term_understanding, description_breadth, conciseness, objection_handling, usp_framing, confidence, overall, detailed_feedback, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO NOTHING`,
		score.ScoreID, score.SessionID, score.TermUnderstanding, score.DescriptionBreadth, score.Conciseness,
		score.ObjectionHandling, score.USPFraming, score.Confidence, score.Overall, string(feedback), score.CreatedAt)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// GetScore retrieves the final score of a session.
func (s *SQLiteStore) GetScore(ctx context.Context, sessionID string) (*domain.Score, error) {
	var score domain.Score
	var feedback sql.NullString
	err := s.db.QueryRowContext(ctx,
		`SELECT score_id, session_id, term_understanding, description_breadth, conciseness, objection_handling, usp_framing, confidence, overall, detailed_feedback, created_at
		 FROM scores WHERE session_id = ?`, sessionID).Scan(
		&score.ScoreID, &score.SessionID, &score.TermUnderstanding, &score.DescriptionBreadth, &score.Conciseness,
		&score.ObjectionHandling, &score.USPFraming, &score.Confidence, &score.Overall, &feedback, &score.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := unmarshalColumn(feedback, &score.Feedback); err != nil {
		return nil, fmt.Errorf("failed to decode feedback: %w", err)
	}
	return &score, nil
}

func unmarshalColumn(col sql.NullString, v interface{}) error {
	if !col.Valid || col.String == "" || col.String == "null" {
		return nil
	}
	return json.Unmarshal([]byte(col.String), v)
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func isUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique
	}
	return false
}
