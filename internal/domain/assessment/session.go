package assessment

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/woundcare/woundcare/internal/autosave"
)

// FormTypeWoundAssessment keys autosave snapshots written by assessment forms.
const FormTypeWoundAssessment = "wound-assessment"

// SnapshotKey builds the autosave key for one wound's assessment form.
func SnapshotKey(woundID, userID string) autosave.Key {
	return autosave.Key{FormType: FormTypeWoundAssessment, EntityID: woundID, UserID: userID}
}

// SubmitFunc persists one wound's draft. Supplied by the caller so the
// session stays independent of the transport to the persistence collaborator.
type SubmitFunc func(ctx context.Context, woundID string, d *Draft) error

// Session holds the in-progress assessment of every wound being documented
// in one sitting. Switching the active wound retains the other drafts; each
// wound autosaves independently under its own key, with no cross-wound
// ordering guarantee.
type Session struct {
	userID     string
	store      autosave.Store
	opts       autosave.Options
	depthRatio float64

	mu           sync.Mutex
	drafts       map[string]*Draft
	coordinators map[string]*autosave.Coordinator
	completed    map[string]bool
	active       string
}

func NewSession(userID string, store autosave.Store, opts autosave.Options, depthRatio float64) *Session {
	if depthRatio <= 0 {
		depthRatio = DefaultDepthWarningRatio
	}
	return &Session{
		userID:       userID,
		store:        store,
		opts:         opts,
		depthRatio:   depthRatio,
		drafts:       make(map[string]*Draft),
		coordinators: make(map[string]*autosave.Coordinator),
		completed:    make(map[string]bool),
	}
}

// OpenWound adds a wound to the session and runs the mount-time recovery
// check. When a fresh snapshot exists it is returned and the wound's autosave
// stays held until ResolveRecovery is called; otherwise autosave starts
// immediately over the given draft.
func (s *Session) OpenWound(ctx context.Context, woundID string, draft *Draft) (*autosave.Snapshot, error) {
	if woundID == "" {
		return nil, fmt.Errorf("wound id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[woundID]; ok {
		return nil, fmt.Errorf("wound %s is already open in this session", woundID)
	}
	if draft == nil {
		draft = &Draft{WoundID: woundID}
	}

	co, err := autosave.NewCoordinator(s.store, SnapshotKey(woundID, s.userID), func() (json.RawMessage, error) {
		return s.captureDraft(woundID)
	}, s.opts)
	if err != nil {
		return nil, err
	}

	s.drafts[woundID] = draft
	s.coordinators[woundID] = co

	snap, err := co.Recover(ctx)
	if err != nil {
		return nil, err
	}
	if snap != nil {
		return snap, nil
	}
	return nil, co.Start()
}

func (s *Session) captureDraft(woundID string) (json.RawMessage, error) {
	s.mu.Lock()
	draft, ok := s.drafts[woundID]
	s.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("wound %s is not open", woundID)
	}
	return json.Marshal(draft)
}

// ResolveRecovery settles a pending restore-or-discard prompt for a wound.
// Restore overwrites the in-memory draft with the snapshot payload; discard
// deletes the snapshot. Either way autosave starts afterwards.
func (s *Session) ResolveRecovery(ctx context.Context, woundID string, restore bool) error {
	s.mu.Lock()
	co, ok := s.coordinators[woundID]
	s.mu.Unlock()
	if !ok {
		return fmt.Errorf("wound %s is not open", woundID)
	}

	if !restore {
		return co.Discard(ctx)
	}

	payload, err := co.Restore()
	if err != nil {
		return err
	}
	var restored Draft
	if err := json.Unmarshal(payload, &restored); err != nil {
		return fmt.Errorf("decode recovered draft: %w", err)
	}
	s.mu.Lock()
	*s.drafts[woundID] = restored
	s.mu.Unlock()
	return nil
}

// Draft returns the in-memory draft for a wound.
func (s *Session) Draft(woundID string) (*Draft, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.drafts[woundID]
	return d, ok
}

// SwitchTo changes the active wound. The wound being left is marked complete
// when its draft passes the composite gate; leaving never discards any draft.
func (s *Session) SwitchTo(woundID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.drafts[woundID]; !ok {
		return fmt.Errorf("wound %s is not open", woundID)
	}
	if prev, ok := s.drafts[s.active]; ok {
		if EvaluateDraft(prev, s.depthRatio).CanSubmit {
			s.completed[s.active] = true
		} else {
			delete(s.completed, s.active)
		}
	}
	s.active = woundID
	return nil
}

// ActiveWound returns the currently active wound id.
func (s *Session) ActiveWound() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.active
}

// CompletedWoundIDs lists wounds whose drafts passed the gate when the user
// navigated away from them, in stable order.
func (s *Session) CompletedWoundIDs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.completed))
	for id := range s.completed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SubmitAll persists every wound with entered data, each independently, in
// stable wound-id order. The first failure aborts the remaining submissions
// and the error names the failing wound; wounds already submitted stay
// submitted — there is no rollback. Successful wounds have their autosave
// stopped and snapshot cleared.
func (s *Session) SubmitAll(ctx context.Context, submit SubmitFunc) ([]string, error) {
	s.mu.Lock()
	ids := make([]string, 0, len(s.drafts))
	for id, d := range s.drafts {
		if d.HasEnteredData() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	s.mu.Unlock()

	var submitted []string
	for _, id := range ids {
		s.mu.Lock()
		draft := s.drafts[id]
		co := s.coordinators[id]
		s.mu.Unlock()

		if err := submit(ctx, id, draft); err != nil {
			return submitted, fmt.Errorf("wound %s: %w", id, err)
		}
		submitted = append(submitted, id)

		// The draft is now authoritative remotely; drop the local shadow.
		if err := co.Clear(ctx); err != nil {
			return submitted, fmt.Errorf("wound %s: clear snapshot: %w", id, err)
		}
		s.mu.Lock()
		delete(s.drafts, id)
		delete(s.coordinators, id)
		delete(s.completed, id)
		s.mu.Unlock()
	}
	return submitted, nil
}

// Close stops every wound's autosave timer. Snapshots are retained so
// unsubmitted work can be recovered on the next mount.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, co := range s.coordinators {
		co.Stop()
	}
}
