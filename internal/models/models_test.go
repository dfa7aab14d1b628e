package models

import (
	"encoding/json"
	"testing"
)

func TestValidEventType(t *testing.T) {
	for _, typ := range []string{
		EventNavigation, EventTabCreated, EventTabUpdated, EventTabClosed,
		EventTabActivated, EventWindowCreated, EventWindowClosed,
		EventTimeEntry, EventTabGroupCreated, EventTabGroupUpdated,
		EventTabGroupRemoved, EventSessionRestored,
	} {
		if !ValidEventType(typ) {
			t.Fatalf("%s should be valid", typ)
		}
	}
	for _, typ := range []string{"", "click", "NAVIGATION", "tab_created"} {
		if ValidEventType(typ) {
			t.Fatalf("%q should be invalid", typ)
		}
	}
}

func TestEventDecoding(t *testing.T) {
	payload := `{"documentId":"d1","eventType":"navigation","timestamp":1000,"tabId":1,"url":"https://a.com"}`
	var e Event
	if err := json.Unmarshal([]byte(payload), &e); err != nil {
		t.Fatal(err)
	}
	if e.DocumentID != "d1" || e.EventType != EventNavigation || e.Timestamp != 1000 {
		t.Fatalf("unexpected event: %+v", e)
	}
	if e.TabID == nil || *e.TabID != 1 {
		t.Fatalf("tabId not decoded: %+v", e.TabID)
	}
	if e.URL == nil || *e.URL != "https://a.com" {
		t.Fatalf("url not decoded: %+v", e.URL)
	}
	// Absent type-specific fields stay nil.
	if e.DurationMS != nil || e.GroupID != nil || e.OriginalSessionID != nil {
		t.Fatalf("unset fields should be nil: %+v", e)
	}
}
