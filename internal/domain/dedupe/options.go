package dedupe

// Option applies a configuration option to the in-memory index.
type Option func(*inMemoryIndex)

// WithMaxSize sets the maximum number of hashes kept in memory.
// If maxSize > 0 the oldest hash is evicted when full.
// If maxSize <= 0 the index is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryIndex) {
		d.maxSize = maxSize
	}
}
