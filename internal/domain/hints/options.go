package hints

// Option applies a configuration option to the Synthesizer.
type Option func(*Synthesizer)

// WithWiggle sets the coordinate tolerance used when corroborating mapped
// features against reference positions.
func WithWiggle(wiggle int) Option {
	return func(s *Synthesizer) {
		if wiggle >= 0 {
			s.wiggle = wiggle
		}
	}
}

// WithSource sets the source-confidence tag attached to every hint.
func WithSource(source string) Option {
	return func(s *Synthesizer) {
		if source != "" {
			s.source = source
		}
	}
}

// WithPriority sets the priority attached to every hint.
func WithPriority(priority int) Option {
	return func(s *Synthesizer) {
		if priority > 0 {
			s.priority = priority
		}
	}
}
