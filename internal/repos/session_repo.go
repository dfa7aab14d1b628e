package repos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"tabsync/internal/models"
)

type SessionRepo struct {
	db *sql.DB
}

func NewSessionRepo(db *sql.DB) *SessionRepo {
	return &SessionRepo{db: db}
}

func (r *SessionRepo) WithTx(fn func(tx *sql.Tx) error) error {
	return withTx(r.db, fn)
}

func (r *SessionRepo) InsertSessionTx(tx *sql.Tx, s *models.Session) error {
	tags, err := json.Marshal(s.Tags)
	if err != nil {
		return err
	}
	res, err := tx.Exec(`
		INSERT INTO sessions (session_id, user_id, instance_id, name, description, tags, window_count, tab_count, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, s.SessionID, s.UserID, s.InstanceID, s.Name, s.Description, string(tags),
		s.WindowCount, s.TabCount, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		s.ID = id
	}
	return nil
}

// InsertWindowTx stores one snapshot window. position is the caller-supplied
// order; reads sort on it, never on row order.
func (r *SessionRepo) InsertWindowTx(tx *sql.Tx, sessionRef int64, w *models.SessionWindow, position int) error {
	res, err := tx.Exec(`
		INSERT INTO session_windows (session_ref, window_id, focused, state, position)
		VALUES (?, ?, ?, ?, ?)
	`, sessionRef, w.WindowID, w.Focused, w.State, position)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		w.ID = id
	}
	return nil
}

func (r *SessionRepo) InsertTabTx(tx *sql.Tx, windowRef int64, t *models.SessionTab, index int) error {
	res, err := tx.Exec(`
		INSERT INTO session_tabs (window_ref, tab_id, url, title, favicon_url, pinned, active, tab_index)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, windowRef, t.TabID, t.URL, t.Title, t.FaviconURL, t.Pinned, t.Active, index)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		t.ID = id
	}
	return nil
}

func (r *SessionRepo) GetSession(userID int64, sessionID string) (*models.Session, error) {
	row := r.db.QueryRow(`
		SELECT id, session_id, user_id, instance_id, name, description, tags, window_count, tab_count, created_at, updated_at
		FROM sessions WHERE user_id = ? AND session_id = ?
	`, userID, sessionID)
	return scanSession(row)
}

func (r *SessionRepo) ListSessions(userID int64) ([]models.Session, error) {
	rows, err := r.db.Query(`
		SELECT id, session_id, user_id, instance_id, name, description, tags, window_count, tab_count, created_at, updated_at
		FROM sessions WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

func (r *SessionRepo) GetWindows(sessionRef int64) ([]models.SessionWindow, error) {
	rows, err := r.db.Query(`
		SELECT id, window_id, focused, state
		FROM session_windows WHERE session_ref = ?
		ORDER BY position ASC
	`, sessionRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SessionWindow
	for rows.Next() {
		var w models.SessionWindow
		if err := rows.Scan(&w.ID, &w.WindowID, &w.Focused, &w.State); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *SessionRepo) GetTabs(windowRef int64) ([]models.SessionTab, error) {
	rows, err := r.db.Query(`
		SELECT id, tab_id, url, title, favicon_url, pinned, active
		FROM session_tabs WHERE window_ref = ?
		ORDER BY tab_index ASC
	`, windowRef)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SessionTab
	for rows.Next() {
		var t models.SessionTab
		if err := rows.Scan(&t.ID, &t.TabID, &t.URL, &t.Title, &t.FaviconURL, &t.Pinned, &t.Active); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *SessionRepo) UpdateSession(userID int64, sessionID, name, description string, tags []string) error {
	encoded, err := json.Marshal(tags)
	if err != nil {
		return err
	}
	res, err := r.db.Exec(`
		UPDATE sessions SET name = ?, description = ?, tags = ?, updated_at = ?
		WHERE user_id = ? AND session_id = ?
	`, name, description, string(encoded), time.Now().UTC(), userID, sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteSession removes the session row; windows and tabs go with it via
// the foreign key cascade.
func (r *SessionRepo) DeleteSession(userID int64, sessionID string) error {
	res, err := r.db.Exec(`
		DELETE FROM sessions WHERE user_id = ? AND session_id = ?
	`, userID, sessionID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func scanSession(row interface{ Scan(dest ...any) error }) (*models.Session, error) {
	var s models.Session
	var tags string
	if err := row.Scan(&s.ID, &s.SessionID, &s.UserID, &s.InstanceID, &s.Name, &s.Description,
		&tags, &s.WindowCount, &s.TabCount, &s.CreatedAt, &s.UpdatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if tags != "" && tags != "null" {
		if err := json.Unmarshal([]byte(tags), &s.Tags); err != nil {
			return nil, err
		}
	}
	return &s, nil
}
