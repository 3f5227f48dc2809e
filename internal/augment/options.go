package augment

// DefaultBatchSize is the number of processed items between flushes.
const DefaultBatchSize = 20

type settings struct {
	batchSize  int
	provenance string
}

// Option tunes a phase.
type Option func(*settings)

// WithBatchSize sets how many items are processed between flushes.
// Values below 1 keep the default.
func WithBatchSize(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithProvenance sets the tag written on inferred edges.
func WithProvenance(tag string) Option {
	return func(s *settings) {
		if tag != "" {
			s.provenance = tag
		}
	}
}

func newSettings(opts []Option) settings {
	s := settings{
		batchSize:  DefaultBatchSize,
		provenance: DefaultProvenance,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(&s)
	}
	return s
}
