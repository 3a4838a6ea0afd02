package reconciler

// Seen accumulates the ids observed across every page of a full sync, so
// the cleanup pass at the end can compute which stored rows were not
// revisited (§4.3's cleanup step). Incremental syncs don't use it.
type Seen struct {
	Items      map[string]struct{}
	Categories map[string]struct{}
	Variations map[string]struct{}
}

// NewSeen returns an empty tracker.
func NewSeen() *Seen {
	return &Seen{
		Items:      make(map[string]struct{}),
		Categories: make(map[string]struct{}),
		Variations: make(map[string]struct{}),
	}
}
