package wdbextract

import (
	"context"
	"io"
	"math"
	"os"

	"github.com/flaneur2020/wdbextract/wdbextract/logger"
	"github.com/flaneur2020/wdbextract/wdbextract/wdbutil"
)

// ReadDatabase parses the movie database at path and resolves every movie
// through its resolution block. regionSuffix is appended to each container
// code to form the container key.
//
// On failure the returned slice is empty, never nil, so callers that choose
// to carry on have a usable collection.
func ReadDatabase(ctx context.Context, path string, regionSuffix string) ([]ResolvedMovie, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []ResolvedMovie{}, NewNotFoundError(path, err)
		}
		return []ResolvedMovie{}, NewIOError("open", path, err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return []ResolvedMovie{}, NewIOError("stat", path, err)
	}
	if !stat.Mode().IsRegular() {
		return []ResolvedMovie{}, NewIOError("open", path, errNotRegular)
	}

	logger.Info("Database %q opened (%d bytes)", path, stat.Size())

	dr := &databaseReader{r: f, path: path}

	pointers, err := dr.readPointerTable()
	if err != nil {
		return []ResolvedMovie{}, err
	}

	if err := ctx.Err(); err != nil {
		return []ResolvedMovie{}, err
	}

	movies, err := dr.resolve(pointers, regionSuffix)
	if err != nil {
		return []ResolvedMovie{}, err
	}

	logger.Info("Resolved %d movies", len(movies))
	return movies, nil
}

// ReadPointerTable reads the name table (stage 1). Unused slots, whose name
// field is all NUL, are skipped.
func ReadPointerTable(r io.ReadSeeker) ([]RawPointer, error) {
	dr := &databaseReader{r: r, path: "<database>"}
	return dr.readPointerTable()
}

// ResolvePointers maps each pointer to its resolved movie (stage 2), keeping
// the table order.
func ResolvePointers(r io.ReadSeeker, pointers []RawPointer, regionSuffix string) ([]ResolvedMovie, error) {
	dr := &databaseReader{r: r, path: "<database>"}
	return dr.resolve(pointers, regionSuffix)
}

type databaseReader struct {
	r    io.ReadSeeker
	path string
}

func (d *databaseReader) readPointerTable() ([]RawPointer, error) {
	if _, err := d.r.Seek(wdbutil.NameTableOffset, io.SeekStart); err != nil {
		return nil, NewIOError("seek name table", d.path, err)
	}

	record := make([]byte, wdbutil.NameRecordSize)
	pointers := make([]RawPointer, 0, wdbutil.NameTableRecordCount)

	for i, left := 0, wdbutil.NameTableSize; left >= wdbutil.NameRecordSize; i, left = i+1, left-wdbutil.NameRecordSize {
		if err := d.readBlock(record, "name table record", i); err != nil {
			return nil, err
		}

		name := wdbutil.BytesToText(record, 0, wdbutil.NameFieldSize)
		if name == "" {
			continue
		}

		offset, err := wdbutil.DecodeUint(record, wdbutil.PointerOffsetPosition, wdbutil.PointerFieldSize)
		if err != nil {
			return nil, NewParseError("pointer offset", i, err)
		}
		length, err := wdbutil.DecodeUint(record, wdbutil.PointerLengthPosition, wdbutil.PointerFieldSize)
		if err != nil {
			return nil, NewParseError("pointer length", i, err)
		}

		logger.Debug("Record %3d: %-16s pointer 0x%08X (0x%X bytes)", i, name, offset, length)
		pointers = append(pointers, RawPointer{Name: name, ProvisionalOffset: offset})
	}

	return pointers, nil
}

func (d *databaseReader) resolve(pointers []RawPointer, regionSuffix string) ([]ResolvedMovie, error) {
	block := make([]byte, wdbutil.ResolutionBlockSize)
	code := make([]byte, wdbutil.ContainerCodeSize)
	movies := make([]ResolvedMovie, 0, len(pointers))

	for i, p := range pointers {
		if err := d.seek(p.ProvisionalOffset, "seek resolution block"); err != nil {
			return nil, err
		}
		if err := d.readBlock(block, "resolution block", i); err != nil {
			return nil, err
		}

		length, err := wdbutil.DecodeUint(block, wdbutil.BlockLengthPosition, wdbutil.BlockFieldSize)
		if err != nil {
			return nil, NewParseError("length", i, err)
		}
		offset, err := wdbutil.DecodeUint(block, wdbutil.BlockOffsetPosition, wdbutil.BlockFieldSize)
		if err != nil {
			return nil, NewParseError("offset", i, err)
		}
		delta, err := wdbutil.DecodeUint(block, wdbutil.BlockDeltaPosition, wdbutil.BlockFieldSize)
		if err != nil {
			return nil, NewParseError("container index", i, err)
		}

		if err := d.seek(wdbutil.ContainerNameListOffset+delta, "seek container name"); err != nil {
			return nil, err
		}
		if err := d.readBlock(code, "container name", i); err != nil {
			return nil, err
		}

		container := wdbutil.BytesToText(code, 0, wdbutil.ContainerCodeSize)
		if container == "" {
			logger.Warn("Movie %q has an empty container code", p.Name)
		}

		movie := ResolvedMovie{
			Name:      p.Name,
			Container: container + regionSuffix,
			Offset:    offset,
			Length:    length,
		}
		logger.Debug("Resolved %s", movie)
		movies = append(movies, movie)
	}

	return movies, nil
}

func (d *databaseReader) seek(offset uint64, op string) error {
	if offset > math.MaxInt64 {
		return NewIOError(op, d.path, errOffsetOverflow)
	}
	if _, err := d.r.Seek(int64(offset), io.SeekStart); err != nil {
		return NewIOError(op, d.path, err)
	}
	return nil
}

// readBlock fills buf from the current position. A short read at end of file
// is not an error: the missing tail is zeroed and decoding goes on.
func (d *databaseReader) readBlock(buf []byte, what string, record int) error {
	n, err := io.ReadFull(d.r, buf)
	switch err {
	case nil:
		return nil
	case io.EOF, io.ErrUnexpectedEOF:
		for i := n; i < len(buf); i++ {
			buf[i] = 0
		}
		logger.Warn("Short read of %s for record %d in %s: got %d of %d bytes", what, record, d.path, n, len(buf))
		return nil
	default:
		return NewIOError("read "+what, d.path, err)
	}
}
