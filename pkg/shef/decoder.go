package shef

import (
	"io"
	"time"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/config"
)

// DecoderOptions configures a Decoder (C2/C9): the program-default table
// to resolve parameter codes against, the timezone model, and the
// reject_problematic purge policy.
type DecoderOptions struct {
	Defaults *config.Defaults

	// LegacyMode selects the original shefit timezone/date-window
	// behavior; false selects the modern IANA/IANA-offset rules (§3(i)).
	LegacyMode bool

	// ShefitBugs reproduces the original's documented DST-transition
	// quirks when LegacyMode is set (§3(i), REDESIGN FLAGS).
	ShefitBugs bool

	// ModernLoc overrides every wire zone code with a single fixed
	// location, when LegacyMode is false. Nil selects each code's own
	// IANA zone.
	ModernLoc *time.Location

	// Now fixes the "current time" a 4/6-digit header date resolves
	// against. The zero value uses time.Now at Decoder construction.
	Now time.Time

	// RejectProblematic discards every record from a message that
	// raised at least one ParseError, rather than emitting the records
	// that did parse cleanly (§4.8, §6 --reject_problematic).
	RejectProblematic bool
}

// Decoder is the top-level facade (C2): it drives an Assembler to produce
// complete messages, dispatches each to its message-type parser, and
// delivers every surviving OutputRecord to a RecordSink -- the parser
// never touches storage or export concerns itself (§9).
type Decoder struct {
	asm  *Assembler
	diag *Diagnostics
	opt  DecoderOptions
	ctx  *parserContext

	MessagesSeen   int
	MessagesPurged int
	RecordsEmitted int
}

// NewDecoder returns a Decoder reading SHEF text from r, reporting
// diagnostics through diag, configured by opt.
func NewDecoder(r io.Reader, diag *Diagnostics, opt DecoderOptions) *Decoder {
	if opt.Defaults == nil {
		opt.Defaults = config.NewDefaults()
	}
	now := opt.Now
	if now.IsZero() {
		now = time.Now()
	}
	return &Decoder{
		asm:  NewAssembler(r, diag),
		diag: diag,
		opt:  opt,
		ctx:  newParserContext(opt.Defaults, opt.LegacyMode, opt.ShefitBugs, opt.ModernLoc, now),
	}
}

// Run drives the decoder to completion, delivering every emitted record to
// sink in message order. It returns nil on a clean end of input,
// ErrCritical or ErrMaxErrorsExceeded on abort (§4.8), matching the exit
// codes ExitCode maps them to.
func (d *Decoder) Run(sink RecordSink) error {
	for {
		msg, err := d.asm.NextMessage()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if perr := d.dispatch(msg, sink); perr != nil {
			return perr
		}
	}
}

// dispatch parses one message and feeds its surviving records to sink,
// honoring the reject_problematic purge policy.
func (d *Decoder) dispatch(msg *AssembledMessage, sink RecordSink) error {
	d.MessagesSeen++

	var (
		records []OutputRecord
		hadErr  bool
		err     error
	)
	switch msg.Type {
	case MessageA:
		records, hadErr, err = parseA(msg, d.ctx, d.diag)
	case MessageE:
		records, hadErr, err = parseE(msg, d.ctx, d.diag)
	case MessageB:
		records, hadErr, err = parseB(msg, d.ctx, d.diag)
	}

	// A message's state-setter side effects never cross into the next
	// message: each message starts from English units, qualifier Z, no
	// duration variable, no creation time, a freshly scoped
	// relative-operator flag and no pending .B delta, even though
	// defaults/now persist.
	d.ctx.usedRelativeOperator = false
	d.ctx.pendingDelta = nil
	d.ctx.english = true
	d.ctx.qualifier = 'Z'
	d.ctx.durVar = DurationVariable{}
	d.ctx.hasCreateTime = false

	if err != nil {
		return err
	}
	if hadErr && d.opt.RejectProblematic {
		d.MessagesPurged++
		return nil
	}
	for _, rec := range records {
		sink(rec)
		d.RecordsEmitted++
	}
	return nil
}
