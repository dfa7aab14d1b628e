package services

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"tabsync/internal/logging"
	"tabsync/internal/models"
	"tabsync/internal/repos"
)

// ValidationError marks malformed input caught before any store work. The
// handler layer maps it to a 400 instead of a 500.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func invalidf(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// RestorationInput is one restoration report accompanying an event batch:
// session OriginalSessionID was reopened as window NewWindowID.
type RestorationInput struct {
	OriginalSessionID string `json:"originalSessionId"`
	NewWindowID       int64  `json:"newWindowId"`
	RestoredAt        int64  `json:"restoredAt,omitempty"` // epoch millis, 0 means now
}

type SyncService struct {
	repo *repos.SyncRepo
	log  *logging.Logger
}

func NewSyncService(repo *repos.SyncRepo, log *logging.Logger) *SyncService {
	return &SyncService{repo: repo, log: log}
}

// GetMarker returns the cursor an instance should resume from. An unseen
// instance gets a fresh marker at 0 in the same call; an existing marker is
// never mutated here.
func (s *SyncService) GetMarker(userID int64, instanceID string) (*models.MarkerStatus, error) {
	if strings.TrimSpace(instanceID) == "" {
		return nil, invalidf("instance id is required")
	}

	var out *models.MarkerStatus
	err := s.repo.WithTx(func(tx *sql.Tx) error {
		marker, err := s.repo.GetMarkerTx(tx, userID, instanceID)
		if err == nil {
			count, err := s.repo.CountEventsAfterTx(tx, userID, instanceID, marker.LastEventTimestamp)
			if err != nil {
				return err
			}
			out = &models.MarkerStatus{
				LastEventTimestamp: marker.LastEventTimestamp,
				LastSessionID:      marker.LastSessionID,
				FirstSync:          false,
				EventCountToSync:   count,
			}
			return nil
		}
		if err != repos.ErrNotFound {
			return err
		}

		// First sync: create the cursor at 0 and report everything the
		// instance has yet to see.
		now := time.Now().UTC()
		fresh := &models.SyncMarker{
			UserID:     userID,
			InstanceID: instanceID,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
		if err := s.repo.InsertMarkerTx(tx, fresh); err != nil {
			return err
		}
		count, err := s.repo.CountEventsTx(tx, userID, instanceID)
		if err != nil {
			return err
		}
		out = &models.MarkerStatus{
			FirstSync:        true,
			EventCountToSync: count,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessEvents ingests one uploaded batch inside a single transaction.
// Events are handled strictly in arrival order: a known documentId counts as
// a duplicate and is skipped, an insert failure counts as a soft error and
// the rest of the batch still runs. Restorations are appended afterwards.
// The marker advances to the batch's max timestamp only once everything
// else succeeded; any hard failure rolls the whole batch back.
func (s *SyncService) ProcessEvents(userID int64, instanceID string, events []models.Event, restorations []RestorationInput) (*models.SyncResult, error) {
	if strings.TrimSpace(instanceID) == "" {
		return nil, invalidf("instance id is required")
	}

	result := &models.SyncResult{EventsReceived: len(events)}
	err := s.repo.WithTx(func(tx *sql.Tx) error {
		now := time.Now().UTC()
		for i := range events {
			ev := events[i]
			if err := validateEvent(&ev); err != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("event %d: %v", i, err))
				s.log.Warnf("sync: skipping event %d for instance %s: %v", i, instanceID, err)
				continue
			}
			if ev.DocumentID != "" {
				exists, err := s.repo.EventExistsTx(tx, instanceID, ev.DocumentID)
				if err != nil {
					return fmt.Errorf("duplicate check: %w", err)
				}
				if exists {
					result.DuplicateCount++
					continue
				}
			}
			ev.UserID = userID
			ev.InstanceID = instanceID
			ev.CreatedAt = now
			if err := s.repo.InsertEventTx(tx, &ev); err != nil {
				if isDocumentConflict(err) {
					// The unique index caught a duplicate the pre-check
					// missed; benign, count it as such.
					result.DuplicateCount++
					continue
				}
				result.Errors = append(result.Errors, fmt.Sprintf("event %d: %v", i, err))
				s.log.Warnf("sync: failed to store event %d for instance %s: %v", i, instanceID, err)
				continue
			}
			result.EventsProcessed++
		}

		mapped, lastRestored := s.handleRestorationsTx(tx, userID, instanceID, restorations)
		result.RestorationMappings = mapped

		if len(events) > 0 {
			maxTS := events[0].Timestamp
			for _, ev := range events[1:] {
				if ev.Timestamp > maxTS {
					maxTS = ev.Timestamp
				}
			}
			if err := s.repo.AdvanceMarkerTx(tx, userID, instanceID, maxTS, lastRestored); err != nil {
				return fmt.Errorf("advance marker: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Message = fmt.Sprintf("sync complete: %d processed, %d duplicates", result.EventsProcessed, result.DuplicateCount)
	if len(result.Errors) > 0 {
		result.Message += fmt.Sprintf(", %d errors", len(result.Errors))
	}
	return result, nil
}

// handleRestorationsTx appends one mapping per report. Restorations are
// deliberately not deduplicated: a session can be restored more than once and
// each report stands on its own. Individual failures are logged and skipped,
// never aborting the enclosing transaction. Returns the mapping count and the
// last restored session id, for the marker.
func (s *SyncService) handleRestorationsTx(tx *sql.Tx, userID int64, instanceID string, restorations []RestorationInput) (int, *string) {
	var count int
	var lastSession *string
	for i, in := range restorations {
		if strings.TrimSpace(in.OriginalSessionID) == "" {
			s.log.Warnf("sync: restoration %d for instance %s has no session id, skipped", i, instanceID)
			continue
		}
		restoredAt := time.Now().UTC()
		if in.RestoredAt > 0 {
			restoredAt = time.UnixMilli(in.RestoredAt).UTC()
		}
		m := &models.SessionRestoration{
			UserID:            userID,
			InstanceID:        instanceID,
			OriginalSessionID: in.OriginalSessionID,
			NewWindowID:       in.NewWindowID,
			RestoredAt:        restoredAt,
		}
		if err := s.repo.InsertRestorationTx(tx, m); err != nil {
			s.log.Warnf("sync: failed to record restoration of %s for instance %s: %v", in.OriginalSessionID, instanceID, err)
			continue
		}
		count++
		id := in.OriginalSessionID
		lastSession = &id
	}
	return count, lastSession
}

// QueryEvents is the read-only filtering facade over an instance's event
// log. It never touches the marker.
func (s *SyncService) QueryEvents(userID int64, instanceID string, filter repos.EventFilter) ([]models.Event, error) {
	if strings.TrimSpace(instanceID) == "" {
		return nil, invalidf("instance id is required")
	}
	if filter.EventType != "" && !models.ValidEventType(filter.EventType) {
		return nil, invalidf("unknown event type %q", filter.EventType)
	}
	return s.repo.ListEvents(userID, instanceID, filter)
}

// GetSyncStats is a read-only diagnostic over the event log.
func (s *SyncService) GetSyncStats(userID int64, instanceID string) (*models.SyncStats, error) {
	if strings.TrimSpace(instanceID) == "" {
		return nil, invalidf("instance id is required")
	}

	stats := &models.SyncStats{EventsByType: map[string]int64{}}
	marker, err := s.repo.GetMarker(userID, instanceID)
	if err == nil {
		stats.HasMarker = true
		stats.LastEventTimestamp = marker.LastEventTimestamp
	} else if err != repos.ErrNotFound {
		return nil, err
	}

	total, err := s.repo.CountEvents(userID, instanceID)
	if err != nil {
		return nil, err
	}
	stats.TotalEvents = total

	byType, err := s.repo.CountEventsByType(userID, instanceID)
	if err != nil {
		return nil, err
	}
	stats.EventsByType = byType
	return stats, nil
}

func validateEvent(e *models.Event) error {
	if e.EventType == "" {
		return fmt.Errorf("event type is required")
	}
	if !models.ValidEventType(e.EventType) {
		return fmt.Errorf("unknown event type %q", e.EventType)
	}
	if e.Timestamp <= 0 {
		return fmt.Errorf("timestamp must be positive")
	}
	return nil
}

// isDocumentConflict reports whether err is the unique-index violation on
// (instance_id, document_id), the one constraint failure that means
// "already ingested" rather than "broken".
func isDocumentConflict(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "idx_events_instance_document") ||
		strings.Contains(msg, "events.instance_id, events.document_id")
}
