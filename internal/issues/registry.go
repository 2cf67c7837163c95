package issues

import (
	"sync"

	"github.com/gastrohub/console-backend/internal/platform"
	"github.com/gastrohub/console-backend/pkg/enums"
	pkgerrors "github.com/gastrohub/console-backend/pkg/errors"
)

// Registry is the in-memory issue cache. It tracks a load epoch per
// restaurant so responses that started before a reload can be discarded, and
// a per-issue in-flight marker so only one mutation runs per issue.
type Registry struct {
	mu          sync.Mutex
	restaurants map[string]*restaurantState
	updating    map[string]bool
}

type restaurantState struct {
	epoch  uint64
	loaded bool
	issues []platform.OrderIssue
	byID   map[string]int
}

// Badges are the issue counts driving console navigation badges.
type Badges struct {
	Open       int `json:"open"`
	InProgress int `json:"in_progress"`
	Total      int `json:"total"`
}

// NewRegistry creates an empty issue registry.
func NewRegistry() *Registry {
	return &Registry{
		restaurants: make(map[string]*restaurantState),
		updating:    make(map[string]bool),
	}
}

func (r *Registry) state(restaurantID string) *restaurantState {
	st, ok := r.restaurants[restaurantID]
	if !ok {
		st = &restaurantState{byID: make(map[string]int)}
		r.restaurants[restaurantID] = st
	}
	return st
}

// Acquire marks an issue as having a mutation in flight. It fails with a
// conflict while another mutation holds the marker.
func (r *Registry) Acquire(issueID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updating[issueID] {
		return pkgerrors.New(pkgerrors.CodeConflict, "another update is in progress for this issue")
	}
	r.updating[issueID] = true
	return nil
}

// Release clears the in-flight marker for an issue.
func (r *Registry) Release(issueID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.updating, issueID)
}

// Epoch returns the current load epoch for a restaurant. A mutation captures
// the epoch when it starts; its response only applies if the epoch is
// unchanged when it lands.
func (r *Registry) Epoch(restaurantID string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state(restaurantID).epoch
}

// Replace installs a fresh issue list and bumps the epoch, invalidating every
// response still in flight from the previous load.
func (r *Registry) Replace(restaurantID string, issues []platform.OrderIssue) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(restaurantID)
	st.epoch++
	st.loaded = true
	st.issues = make([]platform.OrderIssue, len(issues))
	copy(st.issues, issues)
	st.byID = make(map[string]int, len(issues))
	for i, issue := range st.issues {
		st.byID[issue.ID] = i
	}
}

// Drop forgets all cached state for a restaurant. The next read reloads.
func (r *Registry) Drop(restaurantID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(restaurantID)
	st.epoch++
	st.loaded = false
	st.issues = nil
	st.byID = make(map[string]int)
}

// Loaded reports whether a restaurant has a cached list.
func (r *Registry) Loaded(restaurantID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state(restaurantID).loaded
}

// List returns a copy of the cached issues.
func (r *Registry) List(restaurantID string) []platform.OrderIssue {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(restaurantID)
	out := make([]platform.OrderIssue, len(st.issues))
	copy(out, st.issues)
	return out
}

// Get returns the cached issue, if present.
func (r *Registry) Get(restaurantID, issueID string) (platform.OrderIssue, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(restaurantID)
	idx, ok := st.byID[issueID]
	if !ok {
		return platform.OrderIssue{}, false
	}
	return st.issues[idx], true
}

// Apply writes an issue into the cache if the epoch still matches the one
// captured when the mutation started. It reports whether the write landed.
func (r *Registry) Apply(restaurantID string, epoch uint64, issue platform.OrderIssue) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(restaurantID)
	if st.epoch != epoch {
		return false
	}
	idx, ok := st.byID[issue.ID]
	if !ok {
		return false
	}
	st.issues[idx] = issue
	return true
}

// Counts computes the badge counts from the cached list.
func (r *Registry) Counts(restaurantID string) Badges {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := r.state(restaurantID)
	return countBadges(st.issues)
}

func countBadges(issues []platform.OrderIssue) Badges {
	var b Badges
	for _, issue := range issues {
		switch issue.Status {
		case enums.IssueStatusOpen:
			b.Open++
		case enums.IssueStatusInProgress:
			b.InProgress++
		}
	}
	b.Total = b.Open + b.InProgress
	return b
}
