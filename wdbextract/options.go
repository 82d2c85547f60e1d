package wdbextract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// DefaultChunkSizeMiB is the default --chunk-size.
const DefaultChunkSizeMiB = DefaultChunkSize / mib

// MaxChunkSizeMiB bounds --chunk-size. The whole chunk is allocated up front.
const MaxChunkSizeMiB = 1024

// Options is the effective configuration of one run: command line values
// merged with what the database filename implies.
type Options struct {
	DatabasePath string

	DumpOffsetTable bool
	DumpMovies      bool

	// Empty values are filled in by Complete.
	ReportPath   string
	OutputDir    string
	ContainerDir string
	ChunkSizeMiB int

	Digest          bool
	DisableSkipSeek bool

	// Derived from DatabasePath by Complete.
	Platform Platform
	Region   string
}

// Complete validates the options and fills every derived or defaulted field.
// All failures are usage errors.
func (o *Options) Complete() error {
	if !strings.HasSuffix(o.DatabasePath, DatabaseExt) {
		return NewUsageError(fmt.Sprintf("database path %q must end with %s", o.DatabasePath, DatabaseExt))
	}

	o.Region = DetectRegion(o.DatabasePath)

	platform, err := DetectPlatform(o.DatabasePath)
	if err != nil && o.DumpMovies {
		return err
	}
	o.Platform = platform

	if o.ChunkSizeMiB == 0 {
		o.ChunkSizeMiB = DefaultChunkSizeMiB
	}
	if o.ChunkSizeMiB < 0 || o.ChunkSizeMiB > MaxChunkSizeMiB {
		return NewUsageError(fmt.Sprintf("chunk size must be between 1 and %d MiB, got %d MiB", MaxChunkSizeMiB, o.ChunkSizeMiB))
	}

	if o.ContainerDir == "" {
		o.ContainerDir = filepath.Dir(o.DatabasePath)
	}
	if o.OutputDir == "" {
		o.OutputDir = DefaultOutputDir(o.Platform, o.Region)
	}
	if o.ReportPath == "" {
		o.ReportPath = DefaultReportPath
	}
	return nil
}

// ExtractOptions returns the extractor settings for these options.
func (o *Options) ExtractOptions() ExtractOptions {
	return ExtractOptions{
		OutputDir:       o.OutputDir,
		OutputExt:       o.Platform.MovieExt,
		ChunkSize:       o.ChunkSizeMiB * mib,
		DisableSkipSeek: o.DisableSkipSeek,
		Digest:          o.Digest,
	}
}
