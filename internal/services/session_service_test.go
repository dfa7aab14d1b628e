package services

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"tabsync/internal/database"
	"tabsync/internal/database/migrations"
	"tabsync/internal/logging"
	"tabsync/internal/models"
	"tabsync/internal/repos"
)

func setupSessionService(t *testing.T) (*SessionService, *sql.DB) {
	t.Helper()
	db, err := database.Open("file::memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, migrations.MigrateUp(db))
	return NewSessionService(repos.NewSessionRepo(db), logging.New("error")), db
}

func snapshotInput(name string) CreateSessionInput {
	return CreateSessionInput{
		Name: name,
		Tags: []string{"work"},
		Windows: []models.SessionWindow{
			{
				WindowID: i64(100),
				Focused:  true,
				State:    "normal",
				Tabs: []models.SessionTab{
					{TabID: i64(1), URL: "https://a.com", Title: "A", Pinned: true},
					{TabID: i64(2), URL: "https://b.com", Title: "B", Active: true},
					{TabID: i64(3), URL: "https://c.com", Title: "C"},
				},
			},
			{
				WindowID: i64(101),
				State:    "minimized",
				Tabs: []models.SessionTab{
					{TabID: i64(4), URL: "https://d.com", Title: "D"},
					{TabID: i64(5), URL: "https://e.com", Title: "E", FaviconURL: "https://e.com/f.ico"},
					{TabID: i64(6), URL: "https://f.com", Title: "F"},
				},
			},
		},
	}
}

func TestSessionRoundTrip(t *testing.T) {
	svc, _ := setupSessionService(t)

	created, err := svc.CreateSession(1, testInstance, snapshotInput("evening"))
	require.NoError(t, err)
	require.NotEmpty(t, created.SessionID)
	require.Equal(t, 2, created.WindowCount)
	require.Equal(t, 6, created.TabCount)

	got, err := svc.GetSession(1, created.SessionID)
	require.NoError(t, err)
	require.Equal(t, "evening", got.Name)
	require.Equal(t, []string{"work"}, got.Tags)
	require.Len(t, got.Windows, 2)

	first := got.Windows[0]
	require.Equal(t, int64(100), *first.WindowID)
	require.True(t, first.Focused)
	require.Len(t, first.Tabs, 3)
	require.Equal(t, "https://a.com", first.Tabs[0].URL)
	require.True(t, first.Tabs[0].Pinned)
	require.Equal(t, "https://b.com", first.Tabs[1].URL)
	require.True(t, first.Tabs[1].Active)
	require.Equal(t, "https://c.com", first.Tabs[2].URL)

	second := got.Windows[1]
	require.Equal(t, "minimized", second.State)
	require.Equal(t, "https://e.com/f.ico", second.Tabs[1].FaviconURL)
	require.Equal(t, "https://f.com", second.Tabs[2].URL)
}

func TestSessionCountsSnapshotAtCreation(t *testing.T) {
	svc, _ := setupSessionService(t)

	// Explicit totals win over the computed ones (partial capture).
	in := snapshotInput("partial")
	in.TotalWindows = 5
	in.TotalTabs = 40
	created, err := svc.CreateSession(1, testInstance, in)
	require.NoError(t, err)
	require.Equal(t, 5, created.WindowCount)
	require.Equal(t, 40, created.TabCount)

	got, err := svc.GetSession(1, created.SessionID)
	require.NoError(t, err)
	require.Equal(t, 5, got.WindowCount)
	require.Equal(t, 40, got.TabCount)
	// The tree itself still holds what was actually supplied.
	require.Len(t, got.Windows, 2)
}

func TestSessionRequiresName(t *testing.T) {
	svc, _ := setupSessionService(t)

	_, err := svc.CreateSession(1, testInstance, CreateSessionInput{Name: "   "})
	var validation *ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestSessionNotFound(t *testing.T) {
	svc, _ := setupSessionService(t)

	_, err := svc.GetSession(1, "missing")
	require.ErrorIs(t, err, repos.ErrNotFound)

	// Another user's session is invisible.
	created, err := svc.CreateSession(1, testInstance, snapshotInput("mine"))
	require.NoError(t, err)
	_, err = svc.GetSession(2, created.SessionID)
	require.ErrorIs(t, err, repos.ErrNotFound)
}

func TestListSessionsNewestFirst(t *testing.T) {
	svc, _ := setupSessionService(t)

	a, err := svc.CreateSession(1, testInstance, CreateSessionInput{Name: "first"})
	require.NoError(t, err)
	b, err := svc.CreateSession(1, testInstance, CreateSessionInput{Name: "second"})
	require.NoError(t, err)

	sessions, err := svc.ListSessions(1)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	require.Equal(t, b.SessionID, sessions[0].SessionID)
	require.Equal(t, a.SessionID, sessions[1].SessionID)
}

func TestUpdateSessionMetadata(t *testing.T) {
	svc, _ := setupSessionService(t)

	created, err := svc.CreateSession(1, testInstance, snapshotInput("old name"))
	require.NoError(t, err)

	name := "new name"
	updated, err := svc.UpdateSession(1, created.SessionID, UpdateSessionInput{
		Name: &name,
		Tags: []string{"personal", "archive"},
	})
	require.NoError(t, err)
	require.Equal(t, "new name", updated.Name)
	require.Equal(t, []string{"personal", "archive"}, updated.Tags)
	// Untouched fields survive.
	require.Equal(t, 6, updated.TabCount)

	_, err = svc.UpdateSession(1, "missing", UpdateSessionInput{Name: &name})
	require.ErrorIs(t, err, repos.ErrNotFound)
}

func TestDeleteSessionCascades(t *testing.T) {
	svc, db := setupSessionService(t)

	created, err := svc.CreateSession(1, testInstance, snapshotInput("doomed"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteSession(1, created.SessionID))
	require.ErrorIs(t, svc.DeleteSession(1, created.SessionID), repos.ErrNotFound)

	var windows, tabs int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM session_windows`).Scan(&windows))
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM session_tabs`).Scan(&tabs))
	require.Equal(t, 0, windows)
	require.Equal(t, 0, tabs)
}

func TestBatchCreateIsolatesFailures(t *testing.T) {
	svc, _ := setupSessionService(t)

	result := svc.BatchCreateSessions(1, testInstance, []CreateSessionInput{
		{Name: "one"},
		{Name: ""},
		{Name: "three"},
	})
	require.Len(t, result.Created, 2)
	require.Equal(t, 1, result.Failed)
	require.Len(t, result.Errors, 1)

	sessions, err := svc.ListSessions(1)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
}
