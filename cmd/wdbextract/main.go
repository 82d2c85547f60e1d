package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/flaneur2020/wdbextract/wdbextract"
	wdberrors "github.com/flaneur2020/wdbextract/wdbextract/errors"
	"github.com/flaneur2020/wdbextract/wdbextract/logger"
	"github.com/flaneur2020/wdbextract/wdbextract/storage"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"golang.org/x/term"
)

const (
	exitOK     = 0
	exitErrors = 1
	exitUsage  = 2
)

const longHelp = `Reads a wdb movie database, resolves where every movie lives inside the
movie containers next to it, and optionally writes an offset report and/or
extracts each movie to its own file.

The platform (win32, ps3, x360) and the US region are detected from the
database file name, e.g. movie_items_us.win32.wdb.

Output files are written in place. If the process is killed, partially
written movies are left on disk.`

type cliFlags struct {
	dumpOffsetTable bool
	dumpMovies      bool
	output          string
	containers      string
	report          string
	chunkSizeMiB    int
	digest          bool
	noProgress      bool
	noSkipSeek      bool
	verbose         bool
	quiet           bool
	logLevel        string
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// legacyFlags are the single-dash long forms accepted for compatibility.
var legacyFlags = map[string]string{
	"-dumpmovies":      "--dumpmovies",
	"-dumpoffsettable": "--dumpoffsettable",
}

// normalizeLegacyFlags rewrites single-dash long flags to their double-dash
// form so pflag does not read them as a group of shorthands.
func normalizeLegacyFlags(args []string) []string {
	out := make([]string, 0, len(args))
	for i, arg := range args {
		if arg == "--" {
			return append(out, args[i:]...)
		}
		if rewritten, ok := legacyFlags[arg]; ok {
			arg = rewritten
		}
		out = append(out, arg)
	}
	return out
}

func normalizeFlagName(f *pflag.FlagSet, name string) pflag.NormalizedName {
	switch name {
	case "dump-movies":
		name = "dumpmovies"
	case "dump-offset-table":
		name = "dumpoffsettable"
	}
	return pflag.NormalizedName(name)
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	prevOut := logger.SetOutput(stderr)
	prevLevel := logger.GetLogLevel()
	defer func() {
		logger.SetOutput(prevOut)
		logger.SetLogLevel(prevLevel)
	}()

	flags := &cliFlags{}
	exitCode := exitOK

	rootCmd := &cobra.Command{
		Use:           "wdbextract <WDB_FILE>",
		Short:         "Extract movies from a wdb movie database and its containers",
		Long:          longHelp,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			errCount, err := execute(cmd.Context(), args[0], flags, stdout, stderr)
			if err != nil {
				return err
			}
			if errCount > 0 {
				exitCode = exitErrors
			}
			return nil
		},
	}
	rootCmd.SetArgs(normalizeLegacyFlags(args))
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	rootCmd.SetGlobalNormalizationFunc(normalizeFlagName)

	f := rootCmd.Flags()
	f.BoolVar(&flags.dumpOffsetTable, "dumpoffsettable", false, "Write the movie offset report")
	f.BoolVar(&flags.dumpMovies, "dumpmovies", false, "Extract every movie to its own file")
	f.StringVar(&flags.output, "output", "", "Movie output directory (default extracted_<platform>[_us])")
	f.StringVar(&flags.containers, "containers", "", "Directory holding the movie containers (default: the database directory)")
	f.StringVar(&flags.report, "report", wdbextract.DefaultReportPath, "Offset report path")
	f.IntVar(&flags.chunkSizeMiB, "chunk-size", wdbextract.DefaultChunkSizeMiB, "Read buffer size in MiB")
	f.BoolVar(&flags.digest, "digest", false, "Compute sha256 of every extracted movie and write "+wdbextract.DigestManifestName)
	f.BoolVar(&flags.noProgress, "no-progress", false, "Disable progress bars (shown by default on a terminal)")
	f.BoolVar(&flags.noSkipSeek, "no-skip-seek", false, "Seek before every movie even when already positioned")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	f.BoolVarP(&flags.quiet, "quiet", "q", false, "Only log errors")
	f.StringVar(&flags.logLevel, "log-level", "", "Log level: silent, error, warn, info or debug")
	_ = f.MarkHidden("no-skip-seek")
	rootCmd.MarkFlagsMutuallyExclusive("verbose", "quiet", "log-level")

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		// Anything that is not a failure of the database itself is a usage
		// problem, including flag and argument errors raised by cobra.
		switch wdberrors.GetErrorCode(err) {
		case wdberrors.CodeNotFound, wdberrors.CodeIO, wdberrors.CodeParse:
		default:
			fmt.Fprint(stderr, rootCmd.UsageString())
		}
		return exitUsage
	}
	return exitCode
}

// execute runs the requested commands against one database. It returns the
// number of recoverable errors, or an error when the run could not proceed.
func execute(ctx context.Context, dbPath string, flags *cliFlags, stdout, stderr io.Writer) (int, error) {
	level, err := logLevel(flags)
	if err != nil {
		return 0, err
	}
	logger.SetLogLevel(level)

	opts := &wdbextract.Options{
		DatabasePath:    dbPath,
		DumpOffsetTable: flags.dumpOffsetTable,
		DumpMovies:      flags.dumpMovies,
		ReportPath:      flags.report,
		OutputDir:       flags.output,
		ContainerDir:    flags.containers,
		ChunkSizeMiB:    flags.chunkSizeMiB,
		Digest:          flags.digest,
		DisableSkipSeek: flags.noSkipSeek,
	}
	if err := opts.Complete(); err != nil {
		return 0, err
	}

	movies, err := wdbextract.ReadDatabase(ctx, opts.DatabasePath, opts.Region)
	if err != nil {
		return 0, err
	}

	if !opts.DumpOffsetTable && !opts.DumpMovies {
		fmt.Fprintf(stdout, "%d movies in %s\n", len(movies), opts.DatabasePath)
		return 0, nil
	}

	errCount := 0

	if opts.DumpOffsetTable {
		if err := wdbextract.DumpOffsetTable(opts.ReportPath, movies); err != nil {
			logger.Error("Failed to write offset table: %v", err)
			errCount++
		} else {
			fmt.Fprintf(stdout, "Wrote offset table for %d movies to %s\n", len(movies), opts.ReportPath)
		}
	}

	if opts.DumpMovies {
		n, err := extractMovies(ctx, opts, movies, !flags.noProgress && isTerminal(stderr), stdout, stderr)
		if err != nil {
			return errCount, err
		}
		errCount += n
	}

	return errCount, nil
}

func logLevel(flags *cliFlags) (logger.LogLevel, error) {
	switch {
	case flags.verbose:
		return logger.LogLevelDebug, nil
	case flags.quiet:
		return logger.LogLevelError, nil
	case flags.logLevel != "":
		level, err := logger.ParseLevel(flags.logLevel)
		if err != nil {
			return logger.LogLevelInfo, wdberrors.ErrUsage.WithMessage(err.Error())
		}
		return level, nil
	default:
		return logger.LogLevelInfo, nil
	}
}

func extractMovies(ctx context.Context, opts *wdbextract.Options, movies []wdbextract.ResolvedMovie, showProgress bool, stdout, stderr io.Writer) (int, error) {
	st := storage.NewLocalStorage(opts.ContainerDir, opts.Platform.ContainerExt)
	extractor := wdbextract.NewExtractor(st, opts.ExtractOptions())

	progress := newProgress(showProgress, stderr)
	stats, err := extractor.Extract(ctx, movies, progress.callback)
	progress.finish()
	if err != nil {
		return 0, err
	}

	errCount := stats.Errors

	if opts.Digest && stats.ExtractedMovies > 0 {
		manifest := filepath.Join(opts.OutputDir, wdbextract.DigestManifestName)
		if _, err := wdbextract.WriteDigestManifest(manifest, stats.Results); err != nil {
			logger.Error("Failed to write digest manifest: %v", err)
			errCount++
		}
	}

	fmt.Fprintf(stdout, "Extracted %d/%d movies (%d bytes total)",
		stats.ExtractedMovies, stats.TotalMovies, stats.ExtractedBytes)
	if stats.Errors > 0 {
		fmt.Fprintf(stdout, " (%d errors)", stats.Errors)
	}
	if stats.SkippedMovies > 0 {
		fmt.Fprintf(stdout, " (%d skipped)", stats.SkippedMovies)
	}
	fmt.Fprintln(stdout)

	return errCount, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// movieProgress renders one byte progress bar per movie, or logs progress at
// debug level when bars are disabled.
type movieProgress struct {
	enabled bool
	w       io.Writer
	movie   string
	bar     *progressbar.ProgressBar
}

func newProgress(enabled bool, w io.Writer) *movieProgress {
	return &movieProgress{enabled: enabled, w: w}
}

func (p *movieProgress) callback(movie string, current, total int64) {
	if !p.enabled {
		if current == total && logger.Enabled(logger.LogLevelDebug) {
			logger.Debug("Wrote %s: %d/%d bytes", movie, current, total)
		}
		return
	}

	if p.bar == nil || movie != p.movie {
		p.finish()
		p.movie = movie
		p.bar = progressbar.NewOptions64(total,
			progressbar.OptionSetWriter(p.w),
			progressbar.OptionSetDescription(fmt.Sprintf("Extracting %s", movie)),
			progressbar.OptionShowBytes(true),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(10),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionFullWidth(),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprint(p.w, "\n")
			}),
		)
	}
	_ = p.bar.Set64(current)
}

func (p *movieProgress) finish() {
	if p.bar == nil {
		return
	}
	if !p.bar.IsFinished() {
		_ = p.bar.Exit()
		fmt.Fprint(p.w, "\n")
	}
	p.bar = nil
	p.movie = ""
}
