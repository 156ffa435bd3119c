package predictor

// Option applies a configuration option to the Augustus runner.
type Option func(*Augustus)

// WithBin sets the predictor executable path.
func WithBin(bin string) Option {
	return func(a *Augustus) {
		if bin != "" {
			a.bin = bin
		}
	}
}

// WithScratchDir sets the parent directory for per-invocation scratch files.
func WithScratchDir(dir string) Option {
	return func(a *Augustus) {
		if dir != "" {
			a.scratchDir = dir
		}
	}
}

// WithFastaWidth sets the line wrap width for the window FASTA.
func WithFastaWidth(width int) Option {
	return func(a *Augustus) {
		if width > 0 {
			a.fastaWidth = width
		}
	}
}
