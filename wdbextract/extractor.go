package wdbextract

import (
	"context"
	_ "crypto/sha256"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/flaneur2020/wdbextract/wdbextract/logger"
	"github.com/flaneur2020/wdbextract/wdbextract/storage"
	"github.com/opencontainers/go-digest"
)

// DefaultChunkSize is the streaming buffer size used when none is configured.
const DefaultChunkSize = 16 * mib

// ProgressCallback is called while a movie is written
// current: bytes written so far
// total: declared movie length
type ProgressCallback func(movie string, current int64, total int64)

// ExtractOptions controls where and how movies are written.
type ExtractOptions struct {
	OutputDir string
	OutputExt string
	// ChunkSize bounds each read from a container. Zero means DefaultChunkSize.
	ChunkSize int
	// DisableSkipSeek forces a seek before every movie, even when the
	// container is already positioned at its offset.
	DisableSkipSeek bool
	// Digest computes the sha256 of every written movie.
	Digest bool
}

// MovieResult describes the outcome for one movie.
type MovieResult struct {
	Movie      ResolvedMovie
	OutputPath string
	Written    uint64
	Digest     digest.Digest
	Err        error
}

// ExtractStats summarizes an extraction run. Results are in visit order.
type ExtractStats struct {
	TotalMovies      int
	ExtractedMovies  int
	SkippedMovies    int
	ExtractedBytes   uint64
	Errors           int
	Seeks            int
	FailedContainers []string
	Results          []MovieResult
}

type Extractor interface {
	// Extract writes every movie to its own output file. Per-movie and
	// per-container failures are logged and counted in ExtractStats.Errors;
	// the returned error is only set when the run could not proceed at all.
	Extract(ctx context.Context, movies []ResolvedMovie, progress ProgressCallback) (*ExtractStats, error)
}

type extractor struct {
	storage storage.Storage
	opts    ExtractOptions
}

func NewExtractor(storage storage.Storage, opts ExtractOptions) Extractor {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	return &extractor{
		storage: storage,
		opts:    opts,
	}
}

// containerGroup holds the movies stored in one container, sorted by offset.
type containerGroup struct {
	Key    string
	Movies []ResolvedMovie
}

// groupByContainer partitions movies by container key. Groups are sorted by
// key and movies inside a group by offset, whatever the input order.
func groupByContainer(movies []ResolvedMovie) []containerGroup {
	index := make(map[string]int)
	groups := make([]containerGroup, 0)

	for _, m := range movies {
		if idx, ok := index[m.Container]; ok {
			groups[idx].Movies = append(groups[idx].Movies, m)
			continue
		}
		index[m.Container] = len(groups)
		groups = append(groups, containerGroup{
			Key:    m.Container,
			Movies: []ResolvedMovie{m},
		})
	}

	sort.Slice(groups, func(i, j int) bool { return groups[i].Key < groups[j].Key })
	for i := range groups {
		ms := groups[i].Movies
		sort.SliceStable(ms, func(a, b int) bool { return ms[a].Offset < ms[b].Offset })
	}
	return groups
}

func (e *extractor) Extract(ctx context.Context, movies []ResolvedMovie, progress ProgressCallback) (*ExtractStats, error) {
	stats := &ExtractStats{
		TotalMovies: len(movies),
	}

	if len(movies) == 0 {
		return stats, nil
	}

	if err := os.MkdirAll(e.opts.OutputDir, 0755); err != nil {
		return stats, NewIOError("create output directory", e.opts.OutputDir, err)
	}

	// One buffer serves every read of the run.
	buf := make([]byte, e.opts.ChunkSize)

	for _, group := range groupByContainer(movies) {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		e.extractContainer(ctx, group, buf, stats, progress)
	}

	if err := ctx.Err(); err != nil {
		return stats, err
	}

	logger.Info("Extracted %d/%d movies (%d bytes), %d errors",
		stats.ExtractedMovies, stats.TotalMovies, stats.ExtractedBytes, stats.Errors)
	return stats, nil
}

func (e *extractor) extractContainer(ctx context.Context, group containerGroup, buf []byte, stats *ExtractStats, progress ProgressCallback) {
	location := e.storage.Location(group.Key)
	logger.Info("Reading container %q (%d movies)", location, len(group.Movies))

	c, err := e.storage.OpenContainer(ctx, group.Key)
	if err != nil {
		logger.Error("Skipping container %q: %v", location, err)
		stats.Errors++
		stats.SkippedMovies += len(group.Movies)
		stats.FailedContainers = append(stats.FailedContainers, group.Key)
		return
	}
	defer c.Close()

	// pos mirrors the container's read position; -1 means unknown.
	var pos int64

	for _, m := range group.Movies {
		if ctx.Err() != nil {
			return
		}

		result := e.extractMovie(c, location, m, &pos, buf, stats, progress)
		stats.Results = append(stats.Results, result)
		stats.ExtractedBytes += result.Written

		if result.Err != nil {
			logger.Error("Failed to extract %q: %v", m.Name, result.Err)
			stats.Errors++
			continue
		}
		stats.ExtractedMovies++
		logger.Debug("Extracted %q to %s (%d bytes)", m.Name, result.OutputPath, result.Written)
	}
}

func (e *extractor) extractMovie(c storage.Container, location string, m ResolvedMovie, pos *int64, buf []byte, stats *ExtractStats, progress ProgressCallback) MovieResult {
	result := MovieResult{
		Movie:      m,
		OutputPath: filepath.Join(e.opts.OutputDir, m.Name+e.opts.OutputExt),
	}

	if size := c.Size(); size >= 0 && m.End() > uint64(size) {
		logger.Warn("Movie %q ends at 0x%X, past the end of %q (0x%X bytes)", m.Name, m.End(), location, size)
	}

	if m.Offset > math.MaxInt64 {
		result.Err = NewIOError("seek", location, errOffsetOverflow)
		return result
	}

	offset := int64(m.Offset)
	if e.opts.DisableSkipSeek || *pos != offset {
		if _, err := c.Seek(offset, io.SeekStart); err != nil {
			*pos = -1
			result.Err = NewIOError("seek", location, err)
			return result
		}
		stats.Seeks++
		*pos = offset
	}

	out, err := os.Create(result.OutputPath)
	if err != nil {
		result.Err = NewIOError("create", result.OutputPath, err)
		return result
	}

	var w io.Writer = out
	var digester digest.Digester
	if e.opts.Digest {
		digester = digest.Canonical.Digester()
		w = io.MultiWriter(out, digester.Hash())
	}

	result.Written, result.Err = e.copyRange(c, location, w, result.OutputPath, m, pos, buf, progress)

	// A partially written file stays on disk.
	if err := out.Close(); err != nil && result.Err == nil {
		result.Err = NewIOError("close", result.OutputPath, err)
	}

	if result.Err == nil && digester != nil {
		result.Digest = digester.Digest()
	}
	return result
}

// copyRange streams m.Length bytes from r to w through buf.
func (e *extractor) copyRange(r io.Reader, location string, w io.Writer, outPath string, m ResolvedMovie, pos *int64, buf []byte, progress ProgressCallback) (uint64, error) {
	var written uint64
	total := int64(m.Length)

	if progress != nil && m.Length > 0 {
		progress(m.Name, 0, total)
	}

	for written < m.Length {
		want := uint64(len(buf))
		if left := m.Length - written; left < want {
			want = left
		}

		n, err := r.Read(buf[:want])
		if n > 0 {
			*pos += int64(n)
			if _, werr := w.Write(buf[:n]); werr != nil {
				return written, NewIOError("write", outPath, werr)
			}
			written += uint64(n)
			if progress != nil {
				progress(m.Name, int64(written), total)
			}
		}

		if err != nil && err != io.EOF {
			*pos = -1
			return written, NewIOError("read", location, err)
		}
		if n == 0 {
			return written, NewTruncationError(m.Name, m.Length, written)
		}
	}

	return written, nil
}
