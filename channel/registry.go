package channel

import "fmt"

// Stats are the O(1) counters the registry maintains on register/unregister
// (§4.5).
type Stats struct {
	Total    int
	Inputs   int
	Outputs  int
	Physical int
	Virtual  int
}

// Registry is the in-memory mapping from channel id to the runtime row
// (GLOSSARY "Registry"). It is not safe for concurrent use — the executor
// and the protocol layer share one goroutine per §5.
type Registry struct {
	byID   map[ID]*Channel
	byName map[string]ID
	// order preserves registration order; the executor walks channels in
	// this order, not by id, so forward references within a pass are
	// tolerated but re-execute next pass (§4.6).
	order []ID
	stats Stats
}

// NewRegistry returns an empty registry sized for cap channels, matching the
// "allocate at most once at construction" discipline of §5.
func NewRegistry(cap int) *Registry {
	return &Registry{
		byID:   make(map[ID]*Channel, cap),
		byName: make(map[string]ID, cap),
		order:  make([]ID, 0, cap),
	}
}

// ErrDuplicateID is returned by Register when id is already registered.
type ErrDuplicateID struct{ ID ID }

func (e ErrDuplicateID) Error() string { return fmt.Sprintf("channel %s already registered", e.ID) }

// Register adds ch to the registry, failing on a duplicate id (§4.5).
func (r *Registry) Register(ch *Channel) error {
	if _, exists := r.byID[ch.ID]; exists {
		return ErrDuplicateID{ID: ch.ID}
	}

	r.byID[ch.ID] = ch
	if ch.Name != "" {
		r.byName[ch.Name] = ch.ID
	}
	r.order = append(r.order, ch.ID)

	r.stats.Total++
	switch {
	case ch.Kind.IsInput():
		r.stats.Inputs++
		r.stats.Physical++
	case ch.Kind.IsOutput():
		r.stats.Outputs++
		r.stats.Physical++
	case ch.Kind.IsComputed():
		r.stats.Virtual++
	}

	return nil
}

// Unregister removes id from the registry, if present, and keeps Stats
// consistent.
func (r *Registry) Unregister(id ID) {
	ch, ok := r.byID[id]
	if !ok {
		return
	}

	delete(r.byID, id)
	if ch.Name != "" {
		delete(r.byName, ch.Name)
	}
	for i, oid := range r.order {
		if oid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}

	r.stats.Total--
	switch {
	case ch.Kind.IsInput():
		r.stats.Inputs--
		r.stats.Physical--
	case ch.Kind.IsOutput():
		r.stats.Outputs--
		r.stats.Physical--
	case ch.Kind.IsComputed():
		r.stats.Virtual--
	}
}

// Get returns the channel row for id, or nil if unknown.
func (r *Registry) Get(id ID) *Channel {
	return r.byID[id]
}

// GetValue returns the stored value for id, or zero when the id is unknown,
// disabled, or RefNone (§4.5).
func (r *Registry) GetValue(id ID) int32 {
	if id == RefNone {
		return 0
	}
	ch, ok := r.byID[id]
	if !ok || !ch.Enabled() {
		return 0
	}
	return ch.Value
}

// SetValue writes v to id's stored value. Used for outputs and external
// force-write commands (§4.5); inputs should go through UpdateValue instead.
func (r *Registry) SetValue(id ID, v int32) {
	ch, ok := r.byID[id]
	if !ok {
		return
	}
	ch.PrevValue = ch.Value
	ch.Value = v
}

// UpdateValue reflects a sampled hardware value into id's stored value
// (§4.5) — the entry point the hardware read layer uses for input channels.
func (r *Registry) UpdateValue(id ID, v int32) {
	r.SetValue(id, v)
}

// FindByName returns the id registered under name, if any.
func (r *Registry) FindByName(name string) (ID, bool) {
	id, ok := r.byName[name]
	return id, ok
}

// List fills out with registered channels, in registration order, stopping
// at len(out), and returns the count written (§4.5, used by telemetry
// builders).
func (r *Registry) List(out []*Channel) int {
	n := 0
	for _, id := range r.order {
		if n >= len(out) {
			break
		}
		out[n] = r.byID[id]
		n++
	}
	return n
}

// Order returns the registration-order slice of ids. Callers must not
// mutate the returned slice.
func (r *Registry) Order() []ID {
	return r.order
}

// Stats returns the current O(1) counters.
func (r *Registry) Stats() Stats {
	return r.stats
}
