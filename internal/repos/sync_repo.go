package repos

import (
	"database/sql"
	"errors"
	"time"

	"tabsync/internal/models"
)

type SyncRepo struct {
	db *sql.DB
}

func NewSyncRepo(db *sql.DB) *SyncRepo {
	return &SyncRepo{db: db}
}

func (r *SyncRepo) DB() *sql.DB {
	return r.db
}

func (r *SyncRepo) WithTx(fn func(tx *sql.Tx) error) error {
	return withTx(r.db, fn)
}

func (r *SyncRepo) GetMarkerTx(tx *sql.Tx, userID int64, instanceID string) (*models.SyncMarker, error) {
	row := tx.QueryRow(`
		SELECT user_id, instance_id, last_event_timestamp, last_session_id, created_at, updated_at
		FROM sync_markers WHERE user_id = ? AND instance_id = ?
	`, userID, instanceID)
	return scanMarker(row)
}

func (r *SyncRepo) GetMarker(userID int64, instanceID string) (*models.SyncMarker, error) {
	row := r.db.QueryRow(`
		SELECT user_id, instance_id, last_event_timestamp, last_session_id, created_at, updated_at
		FROM sync_markers WHERE user_id = ? AND instance_id = ?
	`, userID, instanceID)
	return scanMarker(row)
}

// InsertMarkerTx creates the initial cursor for an instance on first contact.
func (r *SyncRepo) InsertMarkerTx(tx *sql.Tx, m *models.SyncMarker) error {
	_, err := tx.Exec(`
		INSERT INTO sync_markers (user_id, instance_id, last_event_timestamp, last_session_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.UserID, m.InstanceID, m.LastEventTimestamp, m.LastSessionID, m.CreatedAt.UTC(), m.UpdatedAt.UTC())
	return err
}

// AdvanceMarkerTx moves the cursor to timestamp, clamped so it never goes
// backwards even when an out-of-order or overlapping batch commits late.
// lastSessionID, when non-nil, replaces the stored one.
func (r *SyncRepo) AdvanceMarkerTx(tx *sql.Tx, userID int64, instanceID string, timestamp int64, lastSessionID *string) error {
	now := time.Now().UTC()
	_, err := tx.Exec(`
		INSERT INTO sync_markers (user_id, instance_id, last_event_timestamp, last_session_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, instance_id) DO UPDATE SET
			last_event_timestamp = MAX(last_event_timestamp, excluded.last_event_timestamp),
			last_session_id = COALESCE(excluded.last_session_id, last_session_id),
			updated_at = excluded.updated_at
	`, userID, instanceID, timestamp, lastSessionID, now, now)
	return err
}

// EventExistsTx checks the idempotency key. Rows without a document id never
// participate in dedup.
func (r *SyncRepo) EventExistsTx(tx *sql.Tx, instanceID, documentID string) (bool, error) {
	var one int
	err := tx.QueryRow(`
		SELECT 1 FROM events WHERE instance_id = ? AND document_id = ? LIMIT 1
	`, instanceID, documentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SyncRepo) InsertEventTx(tx *sql.Tx, e *models.Event) error {
	res, err := tx.Exec(`
		INSERT INTO events (
			user_id, instance_id, document_id, event_type, timestamp,
			tab_id, window_id, url, title, transition_type, duration_ms,
			is_active, group_id, group_title, group_color,
			original_session_id, new_window_id, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, e.UserID, e.InstanceID, nullString(e.DocumentID), e.EventType, e.Timestamp,
		e.TabID, e.WindowID, e.URL, e.Title, e.TransitionType, e.DurationMS,
		e.IsActive, e.GroupID, e.GroupTitle, e.GroupColor,
		e.OriginalSessionID, e.NewWindowID, e.CreatedAt.UTC())
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

func (r *SyncRepo) InsertRestorationTx(tx *sql.Tx, m *models.SessionRestoration) error {
	res, err := tx.Exec(`
		INSERT INTO session_restorations (user_id, instance_id, original_session_id, new_window_id, restored_at)
		VALUES (?, ?, ?, ?, ?)
	`, m.UserID, m.InstanceID, m.OriginalSessionID, m.NewWindowID, m.RestoredAt.UTC())
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		m.ID = id
	}
	return nil
}

func (r *SyncRepo) ListRestorations(userID int64, instanceID string) ([]models.SessionRestoration, error) {
	rows, err := r.db.Query(`
		SELECT id, user_id, instance_id, original_session_id, new_window_id, restored_at
		FROM session_restorations
		WHERE user_id = ? AND instance_id = ?
		ORDER BY id ASC
	`, userID, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SessionRestoration
	for rows.Next() {
		var m models.SessionRestoration
		if err := rows.Scan(&m.ID, &m.UserID, &m.InstanceID, &m.OriginalSessionID, &m.NewWindowID, &m.RestoredAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *SyncRepo) CountEventsTx(tx *sql.Tx, userID int64, instanceID string) (int64, error) {
	var n int64
	err := tx.QueryRow(`
		SELECT COUNT(*) FROM events WHERE user_id = ? AND instance_id = ?
	`, userID, instanceID).Scan(&n)
	return n, err
}

// CountEventsAfterTx counts events strictly newer than the cursor.
func (r *SyncRepo) CountEventsAfterTx(tx *sql.Tx, userID int64, instanceID string, after int64) (int64, error) {
	var n int64
	err := tx.QueryRow(`
		SELECT COUNT(*) FROM events WHERE user_id = ? AND instance_id = ? AND timestamp > ?
	`, userID, instanceID, after).Scan(&n)
	return n, err
}

func (r *SyncRepo) CountEvents(userID int64, instanceID string) (int64, error) {
	var n int64
	err := r.db.QueryRow(`
		SELECT COUNT(*) FROM events WHERE user_id = ? AND instance_id = ?
	`, userID, instanceID).Scan(&n)
	return n, err
}

// EventFilter narrows a read-only scan over the event log.
type EventFilter struct {
	Since     int64  // strictly-newer-than timestamp, 0 for everything
	EventType string // empty for all types
	Limit     int
}

func (r *SyncRepo) ListEvents(userID int64, instanceID string, f EventFilter) ([]models.Event, error) {
	if f.Limit <= 0 {
		f.Limit = 100
	}
	query := `
		SELECT id, user_id, instance_id, document_id, event_type, timestamp,
		       tab_id, window_id, url, title, transition_type, duration_ms,
		       is_active, group_id, group_title, group_color,
		       original_session_id, new_window_id, created_at
		FROM events
		WHERE user_id = ? AND instance_id = ? AND timestamp > ?`
	args := []any{userID, instanceID, f.Since}
	if f.EventType != "" {
		query += ` AND event_type = ?`
		args = append(args, f.EventType)
	}
	query += ` ORDER BY timestamp ASC, id ASC LIMIT ?`
	args = append(args, f.Limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Event
	for rows.Next() {
		var e models.Event
		var doc sql.NullString
		if err := rows.Scan(&e.ID, &e.UserID, &e.InstanceID, &doc, &e.EventType, &e.Timestamp,
			&e.TabID, &e.WindowID, &e.URL, &e.Title, &e.TransitionType, &e.DurationMS,
			&e.IsActive, &e.GroupID, &e.GroupTitle, &e.GroupColor,
			&e.OriginalSessionID, &e.NewWindowID, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.DocumentID = doc.String
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SyncRepo) CountEventsByType(userID int64, instanceID string) (map[string]int64, error) {
	rows, err := r.db.Query(`
		SELECT event_type, COUNT(*) FROM events
		WHERE user_id = ? AND instance_id = ?
		GROUP BY event_type
	`, userID, instanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int64)
	for rows.Next() {
		var t string
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, err
		}
		out[t] = n
	}
	return out, rows.Err()
}

func scanMarker(row interface{ Scan(dest ...any) error }) (*models.SyncMarker, error) {
	var m models.SyncMarker
	if err := row.Scan(&m.UserID, &m.InstanceID, &m.LastEventTimestamp, &m.LastSessionID, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

func nullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
