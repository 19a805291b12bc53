// Package registry holds the compiled components of a project, keyed by
// their folded file name.
package registry

import (
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/conneroisu/unidom/internal/compiler"
	"github.com/conneroisu/unidom/internal/errors"
)

// CollisionPolicy decides what Register does when a name is already taken.
type CollisionPolicy string

const (
	// CollisionLastWins replaces the existing entry.
	CollisionLastWins CollisionPolicy = "last-wins"
	// CollisionFirstWins keeps the existing entry.
	CollisionFirstWins CollisionPolicy = "first-wins"
	// CollisionReject fails the registration.
	CollisionReject CollisionPolicy = "reject"
)

// ParseCollisionPolicy validates a policy name. The empty string selects
// CollisionLastWins.
func ParseCollisionPolicy(s string) (CollisionPolicy, error) {
	switch p := CollisionPolicy(s); p {
	case "":
		return CollisionLastWins, nil
	case CollisionLastWins, CollisionFirstWins, CollisionReject:
		return p, nil
	}
	return "", fmt.Errorf("unknown collision policy %q (want last-wins, first-wins or reject)", s)
}

// ComponentEntry is one compiled component.
type ComponentEntry struct {
	Name          string                  `json:"-" yaml:"-"`
	FilePath      string                  `json:"-" yaml:"-"`
	LastMod       time.Time               `json:"-" yaml:"-"`
	ExecutionTree *compiler.ExecutionTree `json:"execTree" yaml:"execTree"`
	Markup        string                  `json:"markup" yaml:"markup"`
}

// Outcome reports what Register did with an entry.
type Outcome int

const (
	OutcomeAdded Outcome = iota
	OutcomeReplaced
	OutcomeKept
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAdded:
		return "added"
	case OutcomeReplaced:
		return "replaced"
	case OutcomeKept:
		return "kept"
	default:
		return "unknown"
	}
}

// ComponentRegistry manages all compiled components.
type ComponentRegistry struct {
	components map[string]*ComponentEntry
	policy     CollisionPolicy
	mutex      sync.RWMutex
}

// NewComponentRegistry creates an empty registry using policy for name
// collisions.
func NewComponentRegistry(policy CollisionPolicy) *ComponentRegistry {
	if policy == "" {
		policy = CollisionLastWins
	}
	return &ComponentRegistry{
		components: make(map[string]*ComponentEntry),
		policy:     policy,
	}
}

// Policy returns the collision policy.
func (r *ComponentRegistry) Policy() CollisionPolicy {
	return r.policy
}

// Register adds entry under entry.Name. On a collision the registry's policy
// applies; with CollisionReject the existing entry stays and an
// ErrCodeDuplicateComponent error is returned.
func (r *ComponentRegistry) Register(entry *ComponentEntry) (Outcome, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existing, exists := r.components[entry.Name]
	if !exists {
		r.components[entry.Name] = entry
		return OutcomeAdded, nil
	}

	switch r.policy {
	case CollisionFirstWins:
		return OutcomeKept, nil
	case CollisionReject:
		return OutcomeKept, errors.NewValidationError(errors.ErrCodeDuplicateComponent,
			fmt.Sprintf("component name collides with %s", existing.FilePath)).
			WithComponent(entry.Name).
			WithFile(entry.FilePath)
	default:
		r.components[entry.Name] = entry
		return OutcomeReplaced, nil
	}
}

// Get retrieves a component by name.
func (r *ComponentRegistry) Get(name string) (*ComponentEntry, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	entry, exists := r.components[name]
	return entry, exists
}

// GetAll returns all registered components sorted by name.
func (r *ComponentRegistry) GetAll() []*ComponentEntry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make([]*ComponentEntry, 0, len(r.components))
	for _, entry := range r.components {
		result = append(result, entry)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })
	return result
}

// Names returns the registered names in sorted order.
func (r *ComponentRegistry) Names() []string {
	entries := r.GetAll()
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name
	}
	return names
}

// Count returns the number of registered components.
func (r *ComponentRegistry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	return len(r.components)
}

// Snapshot returns a copy of the name to entry mapping.
func (r *ComponentRegistry) Snapshot() map[string]*ComponentEntry {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	result := make(map[string]*ComponentEntry, len(r.components))
	for name, entry := range r.components {
		result[name] = entry
	}
	return result
}

// MarshalJSON encodes the registry as an object keyed by component name.
func (r *ComponentRegistry) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Snapshot())
}
