// Command shefit decodes SHEF message text into one of two legacy
// fixed-format record layouts.
package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/config"
	"github.com/HydrologicEngineeringCenter/SHEF-processing/internal/ioutil"
	"github.com/HydrologicEngineeringCenter/SHEF-processing/pkg/shef"
)

func main() {
	app := &cli.App{
		Name:      "shefit",
		Usage:     "decode SHEF message traffic into fixed-format records",
		HelpName:  "shefit",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "shefparm", Usage: "path to a SHEFPARM overlay file"},
			&cli.BoolFlag{Name: "defaults", Usage: "use only the built-in program defaults (mutually exclusive with --shefparm)"},
			&cli.StringFlag{Name: "in", Usage: "input SHEF message file", Required: true},
			&cli.StringFlag{Name: "out", Usage: "output record file", Required: true},
			&cli.StringFlag{Name: "log", Usage: "diagnostic log file (default: stderr)"},
			&cli.IntFlag{Name: "format", Usage: "output format: 1 (verbose) or 2 (compact)", Value: 1},
			&cli.StringFlag{Name: "loglevel", Usage: "DEBUG|INFO|WARNING|ERROR|CRITICAL", Value: "INFO"},
			&cli.BoolFlag{Name: "shefit_times", Usage: "use the legacy shefit timezone/date model, bugs included"},
			&cli.BoolFlag{Name: "reject_problematic", Usage: "purge a message's records entirely if any field in it raised an error"},
			&cli.BoolFlag{Name: "append_out", Usage: "append to --out instead of truncating"},
			&cli.BoolFlag{Name: "append_log", Usage: "append to --log instead of truncating"},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Print(err)
		os.Exit(exitCodeOf(err))
	}
}

// exitCodeOf maps a run() error to the legacy shefit process exit code
// (§6): unwrap() lets shef.ExitCode see through the runError wrapper that
// carries non-shef failures (bad flags, unopenable files) as critical.
func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	return shef.ExitCode(err)
}

// runError wraps a non-shef failure (option validation, file I/O) as a
// critical condition, so exitCodeOf maps it the same way shef.ErrCritical
// is mapped, without losing the original message.
type runError struct {
	inner error
}

func (e *runError) Error() string { return e.inner.Error() }
func (e *runError) Unwrap() error { return shef.ErrCritical }

func critical(err error) error {
	return &runError{inner: err}
}

func run(c *cli.Context) error {
	opt := config.Options{
		ShefparmPath:       c.String("shefparm"),
		UseBuiltinDefaults: c.Bool("defaults"),
		InPath:             c.String("in"),
		OutPath:            c.String("out"),
		LogPath:            c.String("log"),
		Format:             c.Int("format"),
		LogLevel:           c.String("loglevel"),
		ShefitTimes:        c.Bool("shefit_times"),
		RejectProblematic:  c.Bool("reject_problematic"),
		AppendOut:          c.Bool("append_out"),
		AppendLog:          c.Bool("append_log"),
	}
	if err := opt.Validate(); err != nil {
		return critical(err)
	}

	defaults, err := loadDefaults(opt)
	if err != nil {
		return critical(err)
	}

	in, err := ioutil.OpenInput(opt.InPath)
	if err != nil {
		return critical(err)
	}
	defer in.Close()

	out, err := ioutil.OpenOutput(opt.OutPath, opt.AppendOut)
	if err != nil {
		return critical(err)
	}
	defer out.Close()

	logf := log.Printf
	if opt.LogPath != "" {
		logOut, err := ioutil.OpenOutput(opt.LogPath, opt.AppendLog)
		if err != nil {
			return critical(err)
		}
		defer logOut.Close()
		logf = func(format string, args ...any) {
			logOut.WriteString(fmt.Sprintf(format, args...))
			logOut.WriteString("\n")
		}
	}

	diag := shef.NewDiagnostics(opt.InPath, defaults.MaxErr)
	diag.Logf = logf

	dec := shef.NewDecoder(in, diag, shef.DecoderOptions{
		Defaults:          defaults,
		LegacyMode:        opt.ShefitTimes,
		ShefitBugs:        opt.ShefitTimes,
		RejectProblematic: opt.RejectProblematic,
	})

	format := shef.FormatVerbose
	if opt.Format == 2 {
		format = shef.FormatCompact
	}

	runErr := dec.Run(func(rec shef.OutputRecord) {
		if werr := out.WriteString(shef.FormatRecord(rec, format) + "\n"); werr != nil {
			logf("%s: write record: %v", opt.OutPath, werr)
		}
	})

	logf("%s", diag.Summary())
	return runErr
}

// loadDefaults resolves §6's --shefparm/--defaults/rfs_sys_dir precedence:
// an explicit --shefparm wins, --defaults forces the built-ins, and
// otherwise rfs_sys_dir is searched for a file named SHEFPARM.
func loadDefaults(opt config.Options) (*config.Defaults, error) {
	d := config.NewDefaults()

	path := opt.ShefparmPath
	if path == "" && !opt.UseBuiltinDefaults {
		if dir := os.Getenv("rfs_sys_dir"); dir != "" {
			candidate := filepath.Join(dir, "SHEFPARM")
			if _, statErr := os.Stat(candidate); statErr == nil {
				path = candidate
			}
		}
	}
	if path == "" {
		return d, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("shefit: open SHEFPARM %s: %w", path, err)
	}
	defer f.Close()

	events, err := config.LoadSHEFPARM(f, d)
	for _, ev := range events {
		log.Print(ev.String())
	}
	if err != nil {
		return nil, fmt.Errorf("shefit: %w", err)
	}
	return d, nil
}

