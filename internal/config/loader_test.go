package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/seqpond/augpipe/internal/config"
	. "github.com/smartystreets/goconvey/convey"
)

// setRequiredEnv points every mandatory field at a placeholder path.
func setRequiredEnv(t *testing.T) {
	t.Helper()
	t.Setenv("AUGPIPE_GENOME", "galGal6")
	t.Setenv("AUGPIPE_SPECIES", "chicken")
	t.Setenv("AUGPIPE_GENOME_FASTA", "/data/galGal6.fa")
	t.Setenv("AUGPIPE_CODING_GP", "/data/coding.gp")
	t.Setenv("AUGPIPE_ANNOTATION_GP", "/data/annotation.gp")
	t.Setenv("AUGPIPE_TM_PSL", "/data/tm.psl")
	t.Setenv("AUGPIPE_REF_PSL", "/data/ref.psl")
	t.Setenv("AUGPIPE_TM_CFG", "/data/tm.cfg")
	t.Setenv("AUGPIPE_OUTPUT_GTF", "/data/out.gtf")
}

func TestLoad(t *testing.T) {
	Convey("Given required fields set through the environment", t, func() {
		setRequiredEnv(t)
		t.Setenv("AUGPIPE_CONFIG", "")

		Convey("When loading", func() {
			cfg, err := config.Load(context.Background())

			Convey("Then defaults should fill the rest", func() {
				So(err, ShouldBeNil)
				So(cfg.Genome, ShouldEqual, "galGal6")
				So(cfg.ChunkSize, ShouldEqual, 100)
				So(cfg.ChunkSizeTMR, ShouldEqual, 50)
				So(cfg.Padding, ShouldEqual, 20000)
				So(cfg.MaxTranscriptLength, ShouldEqual, 3000000)
				So(cfg.TMRMode(), ShouldBeFalse)
				So(cfg.EffectiveChunkSize(), ShouldEqual, 100)
			})
		})

		Convey("When a hints database is configured", func() {
			t.Setenv("AUGPIPE_HINTS_DB", "/data/hints.db")

			Convey("And no TMR cfg is given, loading should fail", func() {
				_, err := config.Load(context.Background())
				So(err, ShouldNotBeNil)
				So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
			})

			Convey("And a TMR cfg is given, TMR mode should shrink chunks", func() {
				t.Setenv("AUGPIPE_TMR_CFG", "/data/tmr.cfg")
				cfg, err := config.Load(context.Background())
				So(err, ShouldBeNil)
				So(cfg.TMRMode(), ShouldBeTrue)
				So(cfg.EffectiveChunkSize(), ShouldEqual, 50)
			})
		})

		Convey("When a YAML file overrides defaults", func() {
			dir := t.TempDir()
			path := filepath.Join(dir, "augpipe.yaml")
			body := []byte("chunk_size: 25\nwiggle: 12\n")
			So(os.WriteFile(path, body, 0o600), ShouldBeNil)
			t.Setenv("AUGPIPE_CONFIG", path)

			cfg, err := config.Load(context.Background())

			Convey("Then file values should apply under env values", func() {
				So(err, ShouldBeNil)
				So(cfg.ChunkSize, ShouldEqual, 25)
				So(cfg.Wiggle, ShouldEqual, 12)
			})
		})
	})

	Convey("Given a missing required field", t, func() {
		setRequiredEnv(t)
		t.Setenv("AUGPIPE_CONFIG", "")
		t.Setenv("AUGPIPE_TM_CFG", "")

		Convey("When loading, it should report an invalid config", func() {
			_, err := config.Load(context.Background())
			So(err, ShouldNotBeNil)
			So(errors.Is(err, config.ErrInvalidConfig), ShouldBeTrue)
		})
	})
}
