package variant

// Store exposes variant retrieval for HTTP handlers.
type Store interface {
	List() []Variant
	FindByID(id string) (Variant, bool)
}

// MemoryStore implements Store with an in-memory slice.
type MemoryStore struct {
	items []Variant
}

// NewMemoryStore returns a MemoryStore preloaded with the supplied variants.
func NewMemoryStore(items []Variant) *MemoryStore {
	return &MemoryStore{items: append([]Variant(nil), items...)}
}

// List returns the configured variants.
func (s *MemoryStore) List() []Variant {
	return append([]Variant(nil), s.items...)
}

// FindByID looks up a variant by identifier.
func (s *MemoryStore) FindByID(id string) (Variant, bool) {
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return Variant{}, false
}
