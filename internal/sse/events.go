// Package sse implements Server-Sent Events for pushing sync state to
// connected reading devices: active-section changes, recorded sync
// points, mode switches and catalog reloads.
package sse

import (
	"time"

	"github.com/munajatapp/munajat-server/internal/domain"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventActiveSection fires when the engine resolves a new active
	// section during playback.
	EventActiveSection EventType = "sync.active_section"
	// EventPointRecorded fires when a sync point is recorded or replaced.
	EventPointRecorded EventType = "sync.point_recorded"
	// EventModeChanged fires when a session switches between record and
	// sync mode.
	EventModeChanged EventType = "session.mode_changed"
	// EventCatalogReloaded fires after the catalog rescans the content
	// directory.
	EventCatalogReloaded EventType = "catalog.reloaded"
	// EventHeartbeat is a connection keepalive.
	EventHeartbeat EventType = "heartbeat"
)

// Event is an SSE event to be sent to clients.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
	Type      EventType `json:"type"`

	// SessionID filters delivery to clients watching one session.
	// Empty means broadcast to all. Not sent to clients.
	SessionID string `json:"-"`
}

// ActiveSectionData is the payload for active-section events.
type ActiveSectionData struct {
	SessionID      string  `json:"sessionId"`
	PrayerID       string  `json:"prayerId"`
	SectionIndex   int     `json:"sectionIndex"`
	PositionMillis int64   `json:"positionMillis"`
	ScrollOffset   float64 `json:"scrollOffset"`
}

// PointRecordedData is the payload for point-recorded events.
type PointRecordedData struct {
	SessionID string           `json:"sessionId"`
	PrayerID  string           `json:"prayerId"`
	Point     domain.SyncPoint `json:"point"`
	Replaced  bool             `json:"replaced"`
	Total     int              `json:"total"`
}

// ModeChangedData is the payload for mode-changed events.
type ModeChangedData struct {
	SessionID string `json:"sessionId"`
	PrayerID  string `json:"prayerId"`
	Mode      string `json:"mode"`
}

// CatalogReloadedData is the payload for catalog-reloaded events.
type CatalogReloadedData struct {
	Prayers    int       `json:"prayers"`
	ReloadedAt time.Time `json:"reloadedAt"`
}

// HeartbeatData is the payload for heartbeat events.
type HeartbeatData struct {
	ServerTime time.Time `json:"serverTime"`
}

// NewActiveSectionEvent creates an active-section event scoped to one session.
func NewActiveSectionEvent(data ActiveSectionData) Event {
	return Event{
		Type:      EventActiveSection,
		Timestamp: time.Now(),
		Data:      data,
		SessionID: data.SessionID,
	}
}

// NewPointRecordedEvent creates a point-recorded event scoped to one session.
func NewPointRecordedEvent(data PointRecordedData) Event {
	return Event{
		Type:      EventPointRecorded,
		Timestamp: time.Now(),
		Data:      data,
		SessionID: data.SessionID,
	}
}

// NewModeChangedEvent creates a mode-changed event scoped to one session.
func NewModeChangedEvent(data ModeChangedData) Event {
	return Event{
		Type:      EventModeChanged,
		Timestamp: time.Now(),
		Data:      data,
		SessionID: data.SessionID,
	}
}

// NewCatalogReloadedEvent creates a catalog-reloaded broadcast event.
func NewCatalogReloadedEvent(prayers int) Event {
	return Event{
		Type:      EventCatalogReloaded,
		Timestamp: time.Now(),
		Data:      CatalogReloadedData{Prayers: prayers, ReloadedAt: time.Now()},
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
		Data:      HeartbeatData{ServerTime: time.Now()},
	}
}
