package assessment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/woundcare/woundcare/internal/autosave"
)

func TestOpenSessionUsesConfiguredPacing(t *testing.T) {
	h := NewHandler(NewService(newMockRepo(), 0), autosave.NewMemoryStore(), Policy{
		AutosaveInterval:  5 * time.Second,
		SnapshotFreshness: 10 * time.Minute,
	})

	s := h.OpenSession("nurse-1")
	if s.opts.Interval != 5*time.Second {
		t.Errorf("session autosave interval = %v, want 5s", s.opts.Interval)
	}
	if s.opts.Freshness != 10*time.Minute {
		t.Errorf("session freshness = %v, want 10m", s.opts.Freshness)
	}
}

func TestAutosavePolicyDefaults(t *testing.T) {
	h := NewHandler(NewService(newMockRepo(), 0), autosave.NewMemoryStore(), Policy{})

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	if err := h.AutosavePolicy(e.NewContext(req, rec)); err != nil {
		t.Fatal(err)
	}

	var got map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]int{
		"autosave_interval_seconds":     30,
		"remote_draft_interval_seconds": 120,
		"snapshot_freshness_minutes":    30,
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %d, want %d", k, got[k], v)
		}
	}
}
