package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"tabsync/internal/logging"
	"tabsync/internal/models"
	"tabsync/internal/repos"
)

// CreateSessionInput is one snapshot to capture: a named tree of windows and
// tabs. TotalWindows/TotalTabs override the computed counts when the client
// already knows them (e.g. a partial capture).
type CreateSessionInput struct {
	SessionID    string                 `json:"sessionId,omitempty"`
	Name         string                 `json:"name"`
	Description  string                 `json:"description,omitempty"`
	Tags         []string               `json:"tags,omitempty"`
	Windows      []models.SessionWindow `json:"windows,omitempty"`
	TotalWindows int                    `json:"totalWindows,omitempty"`
	TotalTabs    int                    `json:"totalTabs,omitempty"`
}

type UpdateSessionInput struct {
	Name        *string  `json:"name,omitempty"`
	Description *string  `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
}

type SessionService struct {
	repo *repos.SessionRepo
	log  *logging.Logger
}

func NewSessionService(repo *repos.SessionRepo, log *logging.Logger) *SessionService {
	return &SessionService{repo: repo, log: log}
}

// CreateSession stores the snapshot tree in one transaction: session row,
// then windows in caller order, then tabs in caller order. Any failure rolls
// the whole snapshot back.
func (s *SessionService) CreateSession(userID int64, instanceID string, in CreateSessionInput) (*models.Session, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, invalidf("session name is required")
	}

	sessionID := strings.TrimSpace(in.SessionID)
	if sessionID == "" {
		sessionID = newSessionID()
	}

	windowCount := in.TotalWindows
	if windowCount == 0 {
		windowCount = len(in.Windows)
	}
	tabCount := in.TotalTabs
	if tabCount == 0 {
		for _, w := range in.Windows {
			tabCount += len(w.Tabs)
		}
	}

	now := time.Now().UTC()
	session := &models.Session{
		SessionID:   sessionID,
		UserID:      userID,
		InstanceID:  instanceID,
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Tags:        in.Tags,
		WindowCount: windowCount,
		TabCount:    tabCount,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	err := s.repo.WithTx(func(tx *sql.Tx) error {
		if err := s.repo.InsertSessionTx(tx, session); err != nil {
			return fmt.Errorf("insert session: %w", err)
		}
		for wi := range in.Windows {
			w := in.Windows[wi]
			if err := s.repo.InsertWindowTx(tx, session.ID, &w, wi); err != nil {
				return fmt.Errorf("insert window %d: %w", wi, err)
			}
			for ti := range w.Tabs {
				t := w.Tabs[ti]
				if err := s.repo.InsertTabTx(tx, w.ID, &t, ti); err != nil {
					return fmt.Errorf("insert tab %d of window %d: %w", ti, wi, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return session, nil
}

// GetSession assembles the three-level tree back into nested form.
func (s *SessionService) GetSession(userID int64, sessionID string) (*models.Session, error) {
	session, err := s.repo.GetSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	windows, err := s.repo.GetWindows(session.ID)
	if err != nil {
		return nil, err
	}
	for i := range windows {
		tabs, err := s.repo.GetTabs(windows[i].ID)
		if err != nil {
			return nil, err
		}
		windows[i].Tabs = tabs
	}
	session.Windows = windows
	return session, nil
}

func (s *SessionService) ListSessions(userID int64) ([]models.Session, error) {
	return s.repo.ListSessions(userID)
}

// UpdateSession changes session metadata only; the snapshot tree and its
// counts are immutable after capture.
func (s *SessionService) UpdateSession(userID int64, sessionID string, in UpdateSessionInput) (*models.Session, error) {
	current, err := s.repo.GetSession(userID, sessionID)
	if err != nil {
		return nil, err
	}
	name := current.Name
	if in.Name != nil {
		name = strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, invalidf("session name cannot be empty")
		}
	}
	description := current.Description
	if in.Description != nil {
		description = *in.Description
	}
	tags := current.Tags
	if in.Tags != nil {
		tags = in.Tags
	}
	if err := s.repo.UpdateSession(userID, sessionID, name, description, tags); err != nil {
		return nil, err
	}
	return s.repo.GetSession(userID, sessionID)
}

func (s *SessionService) DeleteSession(userID int64, sessionID string) error {
	return s.repo.DeleteSession(userID, sessionID)
}

// BatchCreateSessions creates each snapshot independently: one bad session
// fails alone and the rest still land.
func (s *SessionService) BatchCreateSessions(userID int64, instanceID string, inputs []CreateSessionInput) *models.BatchCreateResult {
	result := &models.BatchCreateResult{}
	for i, in := range inputs {
		session, err := s.CreateSession(userID, instanceID, in)
		if err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("session %d: %v", i, err))
			s.log.Warnf("sessions: batch item %d failed for instance %s: %v", i, instanceID, err)
			continue
		}
		result.Created = append(result.Created, session.SessionID)
	}
	return result
}

// newSessionID builds a time-ordered id with a random suffix. Collisions are
// not checked against existing rows; the suffix makes them practically
// impossible within one user's namespace.
func newSessionID() string {
	suffix := strings.Split(uuid.NewString(), "-")[0]
	return fmt.Sprintf("s%d-%s", time.Now().UnixMilli(), suffix)
}
