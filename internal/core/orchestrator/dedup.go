package orchestrator

// recentIDs remembers the last n event ids. With n == 1 it degrades to the
// single-slot "last processed id" check.
type recentIDs struct {
	ring []string
	set  map[string]struct{}
	next int
}

func newRecentIDs(n int) *recentIDs {
	if n < 1 {
		n = 1
	}
	return &recentIDs{ring: make([]string, n), set: make(map[string]struct{}, n)}
}

func (r *recentIDs) Seen(id string) bool {
	_, ok := r.set[id]
	return ok
}

func (r *recentIDs) Add(id string) {
	if r.Seen(id) {
		return
	}
	if old := r.ring[r.next]; old != "" {
		delete(r.set, old)
	}
	r.ring[r.next] = id
	r.set[id] = struct{}{}
	r.next = (r.next + 1) % len(r.ring)
}
