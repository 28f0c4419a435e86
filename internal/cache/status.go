package cache

import "time"

// Status reports the load state of one dataset.
type Status struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Loaded     bool      `json:"loaded"`
	Records    int       `json:"records"`
	Generation string    `json:"generation,omitempty"`
	LoadedAt   time.Time `json:"loaded_at,omitempty"`
	Loads      int       `json:"loads"`
	Missing    []string  `json:"missing,omitempty"`
	Err        string    `json:"error,omitempty"`
}

// Status returns the state of id without loading it.
func (s *Store) Status(id string) (Status, bool) {
	e, ok := s.entries[id]
	if !ok {
		return Status{}, false
	}
	st := Status{ID: id, Title: e.spec.Title}

	e.mu.Lock()
	st.Loads = e.loads
	if e.lastErr != nil {
		st.Err = e.lastErr.Error()
	}
	e.mu.Unlock()

	if d := e.snap.Load(); d != nil {
		st.Loaded = true
		st.Records = d.Len()
		st.Generation = d.Generation
		st.LoadedAt = d.LoadedAt
		st.Missing = d.MissingSources()
	}
	return st, true
}

// Statuses returns the state of every dataset in registration order.
func (s *Store) Statuses() []Status {
	out := make([]Status, 0, len(s.order))
	for _, id := range s.order {
		st, _ := s.Status(id)
		out = append(out, st)
	}
	return out
}
