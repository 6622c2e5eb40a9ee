// Package registry implements the drawable registry (C5): a handle table
// mapping (screen_key, object_id) pairs to draw objects — a drawable, its
// layer, shader chain, and lifetime.
package registry

import (
	"sync"
	"time"

	"github.com/vitrineterm/vitrine/pkg/drawable"
	"github.com/vitrineterm/vitrine/pkg/rerrors"
	"github.com/vitrineterm/vitrine/pkg/shader"
)

// Handle identifies one registered object: dense per-screen object ids
// assigned by a monotonic counter, paired with the owning screen's key.
type Handle struct {
	ScreenKey string
	ObjectID  uint64
}

// LifetimeKind distinguishes how a draw object is destroyed.
type LifetimeKind int

const (
	// ExplicitRemove objects only die on an explicit remove command.
	ExplicitRemove LifetimeKind = iota
	// RemoveNextFrame objects are drained after the next render_frame in
	// Buffered render mode.
	RemoveNextFrame
	// ForTime objects expire once wall time exceeds CreationTime + Duration.
	ForTime
)

// Lifetime describes when a draw object should be destroyed.
type Lifetime struct {
	Kind     LifetimeKind
	Duration time.Duration
}

// Expired reports whether a ForTime lifetime has elapsed as of now, given
// the object's creation time. Always false for other kinds.
func (l Lifetime) Expired(creationTime, now time.Time) bool {
	return l.Kind == ForTime && now.Sub(creationTime) >= l.Duration
}

// DrawObject bundles everything the orchestrator needs to render and
// expire one registered object.
type DrawObject struct {
	Drawable     drawable.Drawable
	Layer        uint32
	Shaders      shader.Chain
	Lifetime     Lifetime
	CreationTime time.Time
}

// Registry is a mutex-guarded handle table. All mutation is expected to
// happen on the orchestrator's single task; the mutex exists to let
// read-only queries (e.g. metrics scraping) run concurrently.
type Registry struct {
	mu      sync.RWMutex
	objects map[Handle]*DrawObject
	nextID  map[string]uint64
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		objects: make(map[Handle]*DrawObject),
		nextID:  make(map[string]uint64),
	}
}

// Register allocates a fresh handle on screenKey and stores obj under it.
func (r *Registry) Register(screenKey string, obj *DrawObject) Handle {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := r.nextID[screenKey]
	r.nextID[screenKey] = id + 1
	h := Handle{ScreenKey: screenKey, ObjectID: id}
	r.objects[h] = obj
	return h
}

// Get returns the draw object for handle, or DrawableHandleNotFound.
func (r *Registry) Get(h Handle) (*DrawObject, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	obj, ok := r.objects[h]
	if !ok {
		return nil, rerrors.DrawableHandleNotFound(h.ScreenKey, h.ObjectID)
	}
	return obj, nil
}

// Remove deletes handle from the registry. Removing an absent handle is a
// no-op, matching the orchestrator's "explicit-remove = deregister +
// remove" sequencing where the screen side may already be gone.
func (r *Registry) Remove(h Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.objects, h)
}

// TouchCreationTime resets h's creation time to now. The orchestrator's
// RenderDrawable command calls it, so ForTime lifetimes measure time since
// the last RenderDrawable; moves and other re-renders do not reset it.
func (r *Registry) TouchCreationTime(h Handle, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	obj, ok := r.objects[h]
	if !ok {
		return rerrors.DrawableHandleNotFound(h.ScreenKey, h.ObjectID)
	}
	obj.CreationTime = now
	return nil
}

// Expired returns every handle on screenKey whose lifetime has elapsed as
// of now.
func (r *Registry) Expired(screenKey string, now time.Time) []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var expired []Handle
	for h, obj := range r.objects {
		if h.ScreenKey != screenKey {
			continue
		}
		if obj.Lifetime.Expired(obj.CreationTime, now) {
			expired = append(expired, h)
		}
	}
	return expired
}

// RemoveNextFrameHandles returns every handle on screenKey with a
// RemoveNextFrame lifetime, for the orchestrator's per-frame drain step.
func (r *Registry) RemoveNextFrameHandles(screenKey string) []Handle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var handles []Handle
	for h, obj := range r.objects {
		if h.ScreenKey == screenKey && obj.Lifetime.Kind == RemoveNextFrame {
			handles = append(handles, h)
		}
	}
	return handles
}

// Len reports the total number of registered objects, across all screens.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.objects)
}
