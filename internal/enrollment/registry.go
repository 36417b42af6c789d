// internal/enrollment/registry.go
package enrollment

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"mergington-activities/internal/models"
	"mergington-activities/pkg/registry"
)

var (
	ErrActivityNotFound = errors.New("ACTIVITY_NOT_FOUND")
	ErrAlreadySignedUp  = errors.New("ALREADY_SIGNED_UP")
	ErrNotSignedUp      = errors.New("NOT_SIGNED_UP")
)

type activity struct {
	mu              sync.Mutex
	name            string
	description     string
	schedule        string
	maxParticipants int
	participants    []string
}

// snapshot copies the activity. Caller must hold a.mu.
func (a *activity) snapshot() models.Activity {
	participants := make([]string, len(a.participants))
	copy(participants, a.participants)
	return models.Activity{
		Name:            a.name,
		Description:     a.description,
		Schedule:        a.schedule,
		MaxParticipants: a.maxParticipants,
		Participants:    participants,
	}
}

func (a *activity) indexOf(email string) int {
	for i, p := range a.participants {
		if p == email {
			return i
		}
	}
	return -1
}

// Registry holds the activity catalogue in memory. The set of activities is
// fixed at construction; only participant lists change. Each activity has
// its own lock, so check-then-mutate on one activity is atomic and
// operations on different activities do not contend.
type Registry struct {
	ordered []*activity
	byName  map[string]*activity
	version atomic.Uint64
}

// NewRegistry seeds a registry from a seed document. Iteration order follows
// the document.
func NewRegistry(seed *registry.ActivityRegistry) *Registry {
	r := &Registry{
		ordered: make([]*activity, 0, len(seed.Activities)),
		byName:  make(map[string]*activity, len(seed.Activities)),
	}
	for _, s := range seed.Activities {
		if _, dup := r.byName[s.Name]; dup {
			continue
		}
		a := &activity{
			name:            s.Name,
			description:     s.Description,
			schedule:        s.Schedule,
			maxParticipants: s.MaxParticipants,
			participants:    append([]string(nil), s.Participants...),
		}
		r.ordered = append(r.ordered, a)
		r.byName[s.Name] = a
	}
	return r
}

// List returns a snapshot of every activity in seed order.
func (r *Registry) List() models.Catalog {
	out := make(models.Catalog, 0, len(r.ordered))
	for _, a := range r.ordered {
		a.mu.Lock()
		out = append(out, a.snapshot())
		a.mu.Unlock()
	}
	return out
}

// Get returns a snapshot of one activity.
func (r *Registry) Get(name string) (models.Activity, error) {
	a, ok := r.byName[name]
	if !ok {
		return models.Activity{}, ErrActivityNotFound
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snapshot(), nil
}

// Signup appends email to the activity's participants. Capacity is not
// enforced.
func (r *Registry) Signup(name, email string) (string, error) {
	if _, err := r.signup(name, email); err != nil {
		return "", err
	}
	return signupMessage(name, email), nil
}

// Unregister removes email from the activity's participants.
func (r *Registry) Unregister(name, email string) (string, error) {
	if _, err := r.unregister(name, email); err != nil {
		return "", err
	}
	return unregisterMessage(name, email), nil
}

// Version increases by one on every successful signup or unregistration.
func (r *Registry) Version() uint64 {
	return r.version.Load()
}

// signup returns the participant count after the change.
func (r *Registry) signup(name, email string) (int, error) {
	a, ok := r.byName[name]
	if !ok {
		return 0, ErrActivityNotFound
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.indexOf(email) >= 0 {
		return 0, ErrAlreadySignedUp
	}
	a.participants = append(a.participants, email)
	r.version.Add(1)
	return len(a.participants), nil
}

func (r *Registry) unregister(name, email string) (int, error) {
	a, ok := r.byName[name]
	if !ok {
		return 0, ErrActivityNotFound
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	i := a.indexOf(email)
	if i < 0 {
		return 0, ErrNotSignedUp
	}
	a.participants = append(a.participants[:i], a.participants[i+1:]...)
	r.version.Add(1)
	return len(a.participants), nil
}

func signupMessage(name, email string) string {
	return fmt.Sprintf("Signed up %s for %s", email, name)
}

func unregisterMessage(name, email string) string {
	return fmt.Sprintf("Unregistered %s from %s", email, name)
}
