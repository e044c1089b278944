// Package autosave persists in-progress form state so work survives a
// browser reload or crash. A Store keeps one snapshot per
// (formType, entityID, userID) key; the Coordinator writes snapshots on a
// fixed interval and runs the restore-or-discard recovery protocol when a
// form mounts.
package autosave

import (
	"encoding/json"
	"fmt"
	"time"
)

// Key identifies the single active snapshot for one form instance. UserID
// isolates snapshots per author so two clinicians editing the same wound
// never see each other's drafts.
type Key struct {
	FormType string `json:"form_type"`
	EntityID string `json:"entity_id"`
	UserID   string `json:"user_id"`
}

func (k Key) Validate() error {
	if k.FormType == "" {
		return fmt.Errorf("form type is required")
	}
	if k.EntityID == "" {
		return fmt.Errorf("entity id is required")
	}
	if k.UserID == "" {
		return fmt.Errorf("user id is required")
	}
	return nil
}

// String renders the storage key. The separator is safe because UUIDs and
// form-type slugs never contain "|".
func (k Key) String() string {
	return fmt.Sprintf("autosave|%s|%s|%s", k.FormType, k.EntityID, k.UserID)
}

// Snapshot is a durable local copy of a draft at a point in time.
type Snapshot struct {
	Key     Key             `json:"key"`
	Payload json.RawMessage `json:"payload"`
	SavedAt time.Time       `json:"saved_at"`
}

// Fresh reports whether the snapshot is recent enough to offer for recovery.
// Stale snapshots are never surfaced, even though they may still exist in the
// store.
func (s *Snapshot) Fresh(now time.Time, window time.Duration) bool {
	if s == nil {
		return false
	}
	return now.Sub(s.SavedAt) <= window
}
