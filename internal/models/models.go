package models

import "time"

// Event types a browser instance may report. The set is closed; anything
// else is rejected per event at ingestion time.
const (
	EventNavigation      = "navigation"
	EventTabCreated      = "tab-created"
	EventTabUpdated      = "tab-updated"
	EventTabClosed       = "tab-closed"
	EventTabActivated    = "tab-activated"
	EventWindowCreated   = "window-created"
	EventWindowClosed    = "window-closed"
	EventTimeEntry       = "time-entry"
	EventTabGroupCreated = "tab-group-created"
	EventTabGroupUpdated = "tab-group-updated"
	EventTabGroupRemoved = "tab-group-removed"
	EventSessionRestored = "session-restored"
)

var validEventTypes = map[string]bool{
	EventNavigation:      true,
	EventTabCreated:      true,
	EventTabUpdated:      true,
	EventTabClosed:       true,
	EventTabActivated:    true,
	EventWindowCreated:   true,
	EventWindowClosed:    true,
	EventTimeEntry:       true,
	EventTabGroupCreated: true,
	EventTabGroupUpdated: true,
	EventTabGroupRemoved: true,
	EventSessionRestored: true,
}

func ValidEventType(t string) bool {
	return validEventTypes[t]
}

// SyncMarker is the per-(user, instance) replication cursor. It records the
// timestamp of the last event successfully ingested for that instance and
// never moves backwards.
type SyncMarker struct {
	UserID             int64     `json:"-"`
	InstanceID         string    `json:"instanceId"`
	LastEventTimestamp int64     `json:"lastEventTimestamp"`
	LastSessionID      *string   `json:"lastSessionId,omitempty"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Event is one immutable fact observed by a browser instance. DocumentID is
// the client-assigned idempotency key; events re-sent with the same
// (instance, documentId) are skipped, not duplicated. Fields beyond the
// common four are populated per EventType and stored as NULL otherwise.
type Event struct {
	ID                int64     `json:"-"`
	UserID            int64     `json:"-"`
	InstanceID        string    `json:"-"`
	DocumentID        string    `json:"documentId,omitempty"`
	EventType         string    `json:"eventType"`
	Timestamp         int64     `json:"timestamp"`
	TabID             *int64    `json:"tabId,omitempty"`
	WindowID          *int64    `json:"windowId,omitempty"`
	URL               *string   `json:"url,omitempty"`
	Title             *string   `json:"title,omitempty"`
	TransitionType    *string   `json:"transitionType,omitempty"`
	DurationMS        *int64    `json:"durationMs,omitempty"`
	IsActive          *bool     `json:"isActive,omitempty"`
	GroupID           *int64    `json:"groupId,omitempty"`
	GroupTitle        *string   `json:"groupTitle,omitempty"`
	GroupColor        *string   `json:"groupColor,omitempty"`
	OriginalSessionID *string   `json:"originalSessionId,omitempty"`
	NewWindowID       *int64    `json:"newWindowId,omitempty"`
	CreatedAt         time.Time `json:"-"`
}

// SessionRestoration maps a previously captured session onto the window it
// was reopened as, so a restore-then-resync cycle does not double count.
// Append-only; repeated reports for the same session are kept as-is.
type SessionRestoration struct {
	ID                int64     `json:"-"`
	UserID            int64     `json:"-"`
	InstanceID        string    `json:"-"`
	OriginalSessionID string    `json:"originalSessionId"`
	NewWindowID       int64     `json:"newWindowId"`
	RestoredAt        time.Time `json:"restoredAt"`
}

// Session is a named point-in-time snapshot of browser state. WindowCount
// and TabCount are snapshotted at write time and never reconciled against
// the child rows afterwards.
type Session struct {
	ID          int64           `json:"-"`
	SessionID   string          `json:"sessionId"`
	UserID      int64           `json:"-"`
	InstanceID  string          `json:"instanceId,omitempty"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Tags        []string        `json:"tags,omitempty"`
	WindowCount int             `json:"windowCount"`
	TabCount    int             `json:"tabCount"`
	Windows     []SessionWindow `json:"windows,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type SessionWindow struct {
	ID       int64        `json:"-"`
	WindowID *int64       `json:"windowId,omitempty"`
	Focused  bool         `json:"focused,omitempty"`
	State    string       `json:"state,omitempty"`
	Tabs     []SessionTab `json:"tabs,omitempty"`
}

type SessionTab struct {
	ID         int64  `json:"-"`
	TabID      *int64 `json:"tabId,omitempty"`
	URL        string `json:"url"`
	Title      string `json:"title,omitempty"`
	FaviconURL string `json:"faviconUrl,omitempty"`
	Pinned     bool   `json:"pinned,omitempty"`
	Active     bool   `json:"active,omitempty"`
}

// MarkerStatus is the GetMarker response. EventCountToSync is everything the
// instance still has to receive: all events on first contact, events strictly
// newer than the cursor afterwards.
type MarkerStatus struct {
	LastEventTimestamp int64   `json:"lastEventTimestamp"`
	LastSessionID      *string `json:"lastSessionId,omitempty"`
	FirstSync          bool    `json:"firstSync"`
	EventCountToSync   int64   `json:"eventCountToSync"`
}

// SyncResult reports the outcome of one batch upload. Errors carries per-event
// soft failures; the batch as a whole still committed when it is non-empty.
type SyncResult struct {
	EventsReceived      int      `json:"eventsReceived"`
	EventsProcessed     int      `json:"eventsProcessed"`
	DuplicateCount      int      `json:"duplicateCount"`
	RestorationMappings int      `json:"restorationMappings"`
	Errors              []string `json:"errors,omitempty"`
	Message             string   `json:"message"`
}

type SyncStats struct {
	HasMarker          bool             `json:"hasMarker"`
	LastEventTimestamp int64            `json:"lastEventTimestamp"`
	TotalEvents        int64            `json:"totalEvents"`
	EventsByType       map[string]int64 `json:"eventsByType"`
}

// BatchCreateResult tallies a batchCreateSessions call. One bad session does
// not fail the rest; its error lands in Errors instead.
type BatchCreateResult struct {
	Created []string `json:"created"`
	Failed  int      `json:"failed"`
	Errors  []string `json:"errors,omitempty"`
}
