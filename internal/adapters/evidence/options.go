package evidence

// Option applies a configuration option to the Store.
type Option func(*Store)

// WithDriver sets the database/sql driver name.
func WithDriver(driver string) Option {
	return func(s *Store) {
		if driver != "" {
			s.driver = driver
		}
	}
}

// WithSource sets the source tag rendered on evidence hint lines.
func WithSource(source string) Option {
	return func(s *Store) {
		if source != "" {
			s.source = source
		}
	}
}
