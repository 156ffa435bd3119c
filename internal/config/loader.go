package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New(ctx))
//  2. file (YAML) if AUGPIPE_CONFIG is set
//  3. env (prefix AUGPIPE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("AUGPIPE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
		}
	}

	// Environment variables: AUGPIPE_GENOME, AUGPIPE_CHUNK_SIZE, ...
	// Map env keys like AUGPIPE_CHUNK_SIZE -> chunk_size (flat keys).
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("AUGPIPE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "augpipe_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// validate rejects configurations the pipeline cannot run with.
func (c *Config) validate() error {
	switch {
	case c.Genome == "":
		return fmt.Errorf("%w: genome must not be empty", ErrInvalidConfig)
	case c.Species == "":
		return fmt.Errorf("%w: species must not be empty", ErrInvalidConfig)
	case c.GenomeFasta == "":
		return fmt.Errorf("%w: genome_fasta must not be empty", ErrInvalidConfig)
	case c.CodingGenePred == "":
		return fmt.Errorf("%w: coding_gp must not be empty", ErrInvalidConfig)
	case c.AnnotationGenePred == "":
		return fmt.Errorf("%w: annotation_gp must not be empty", ErrInvalidConfig)
	case c.TMPsl == "":
		return fmt.Errorf("%w: tm_psl must not be empty", ErrInvalidConfig)
	case c.RefPsl == "":
		return fmt.Errorf("%w: ref_psl must not be empty", ErrInvalidConfig)
	case c.TMCfg == "":
		return fmt.Errorf("%w: tm_cfg must not be empty", ErrInvalidConfig)
	case c.TMRMode() && c.TMRCfg == "":
		return fmt.Errorf("%w: tmr_cfg required when hints_db is set", ErrInvalidConfig)
	case c.ChunkSize < 1 || c.ChunkSizeTMR < 1:
		return fmt.Errorf("%w: chunk sizes must be positive", ErrInvalidConfig)
	case c.Padding < 0:
		return fmt.Errorf("%w: padding must not be negative", ErrInvalidConfig)
	case c.Wiggle < 0:
		return fmt.Errorf("%w: wiggle must not be negative", ErrInvalidConfig)
	case c.MaxTranscriptLength < 1:
		return fmt.Errorf("%w: max_transcript_length must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	}
	return nil
}
