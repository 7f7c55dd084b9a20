package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Options is the resolved set of run-time options the CLI glue (cmd/shefit)
// assembles from flags and environment before constructing a parser. It is
// validated the same way pkg/site validates a parsed IGS sitelog in the
// teacher repo: struct tags plus a single validator.Struct call.
type Options struct {
	// ShefparmPath and UseBuiltinDefaults are mutually exclusive (§6).
	ShefparmPath       string
	UseBuiltinDefaults bool

	InPath  string `validate:"required"`
	OutPath string `validate:"required"`
	LogPath string

	// Format selects the output variant: 1 (verbose, default) or 2 (compact).
	Format int `validate:"oneof=1 2"`

	LogLevel string `validate:"oneof=DEBUG INFO WARNING ERROR CRITICAL"`

	ShefitTimes       bool
	RejectProblematic bool
	AppendOut         bool
	AppendLog         bool
}

var validate = validator.New()

// Validate checks Options against its struct tags and the §6 mutual
// exclusivity rule between --shefparm and --defaults.
func (o *Options) Validate() error {
	if o.ShefparmPath != "" && o.UseBuiltinDefaults {
		return fmt.Errorf("config: --shefparm and --defaults are mutually exclusive")
	}
	if o.Format == 0 {
		o.Format = 1
	}
	if o.LogLevel == "" {
		o.LogLevel = "INFO"
	}
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("config: invalid options: %w", err)
	}
	return nil
}
