package wdbextract

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	wdberrors "github.com/flaneur2020/wdbextract/wdbextract/errors"
	"github.com/flaneur2020/wdbextract/wdbextract/storage"
)

// TestExtractFromDisk runs a database and its container through the whole
// pipeline using files on disk.
func TestExtractFromDisk(t *testing.T) {
	dir := t.TempDir()

	db := buildDatabase(
		[]tableEntry{{slot: 0, name: "TEST", pointer: 0xAA}},
		[]blockEntry{{at: 0xAA, delta: 0, length: 0x10, offset: 0x100}},
		map[uint32]string{0: "MOV1"},
	)
	dbPath := writeTestFile(t, dir, "movie_items.win32.wdb", db)

	container := patterned(0x30, 0x200)
	writeTestFile(t, dir, "MOV1.win32.wmp", container)

	opts := Options{
		DatabasePath: dbPath,
		DumpMovies:   true,
		OutputDir:    filepath.Join(dir, "out"),
	}
	if err := opts.Complete(); err != nil {
		t.Fatalf("Complete() error = %v", err)
	}

	movies, err := ReadDatabase(context.Background(), dbPath, opts.Region)
	if err != nil {
		t.Fatalf("ReadDatabase() error = %v", err)
	}

	want := ResolvedMovie{Name: "TEST", Container: "MOV1", Offset: 0x100, Length: 0x10}
	if len(movies) == 0 || movies[0] != want {
		t.Fatalf("movies[0] = %+v, want %+v", movies, want)
	}

	st := storage.NewLocalStorage(opts.ContainerDir, opts.Platform.ContainerExt)
	stats, err := NewExtractor(st, opts.ExtractOptions()).Extract(context.Background(), movies, nil)
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}

	// The block at 0xAA overlaps the slot 1 record, whose name field then
	// holds the block's length and offset bytes. That stray entry resolves
	// to a zero-length movie in MOV1 and its control-character name cannot
	// be created as a file, which is the one counted error of the run.
	if len(movies) != 2 {
		t.Fatalf("len(movies) = %d, want 2: %+v", len(movies), movies)
	}
	if stats.Errors != 1 || stats.ExtractedMovies != 1 {
		t.Errorf("Errors = %d, ExtractedMovies = %d, want 1 and 1", stats.Errors, stats.ExtractedMovies)
	}

	var found bool
	for _, r := range stats.Results {
		if r.Movie.Name != "TEST" {
			if !errors.Is(r.Err, wdberrors.ErrIO) {
				t.Errorf("stray entry %q error = %v, want IO_ERROR", r.Movie.Name, r.Err)
			}
			continue
		}
		found = true
		if r.Err != nil {
			t.Errorf("TEST extraction error = %v", r.Err)
		}
		if r.OutputPath != filepath.Join(dir, "out", "TEST.bk2") {
			t.Errorf("OutputPath = %q", r.OutputPath)
		}
	}
	if !found {
		t.Fatal("TEST was not extracted")
	}

	got, err := os.ReadFile(filepath.Join(dir, "out", "TEST.bk2"))
	if err != nil {
		t.Fatalf("failed to read TEST.bk2: %v", err)
	}
	if !bytes.Equal(got, container[0x100:0x110]) {
		t.Errorf("TEST.bk2 = % X, want % X", got, container[0x100:0x110])
	}

	reportPath := filepath.Join(dir, "offset_table.txt")
	if err := DumpOffsetTable(reportPath, movies); err != nil {
		t.Fatalf("DumpOffsetTable() error = %v", err)
	}
	report, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("failed to read report: %v", err)
	}
	if !bytes.Contains(report, []byte("TEST")) || !bytes.Contains(report, []byte("0x00000100 | 0x00000010")) {
		t.Errorf("report missing TEST row:\n%s", report)
	}
}
