package repository

// Option applies a configuration option to the MemoryStore.
type Option func(*MemoryStore)

// WithCapacity pre-sizes the store for n records.
func WithCapacity(n int) Option {
	return func(s *MemoryStore) {
		if n > 0 {
			s.capacity = n
		}
	}
}
