package storage

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	wdberrors "github.com/flaneur2020/wdbextract/wdbextract/errors"
)

func TestLocalStorage_OpenContainer(t *testing.T) {
	dir := t.TempDir()
	content := []byte("0123456789abcdef")
	if err := os.WriteFile(filepath.Join(dir, "MOV1_us.win32.wmp"), content, 0644); err != nil {
		t.Fatalf("failed to write container: %v", err)
	}

	s := NewLocalStorage(dir, ".win32.wmp")
	c, err := s.OpenContainer(context.Background(), "MOV1_us")
	if err != nil {
		t.Fatalf("OpenContainer() error = %v", err)
	}
	defer c.Close()

	if c.Size() != int64(len(content)) {
		t.Errorf("Size() = %d, want %d", c.Size(), len(content))
	}

	if _, err := c.Seek(10, io.SeekStart); err != nil {
		t.Fatalf("Seek() error = %v", err)
	}
	buf := make([]byte, 6)
	if _, err := io.ReadFull(c, buf); err != nil {
		t.Fatalf("ReadFull() error = %v", err)
	}
	if string(buf) != "abcdef" {
		t.Errorf("read %q, want abcdef", buf)
	}
}

func TestLocalStorage_MissingContainer(t *testing.T) {
	s := NewLocalStorage(t.TempDir(), ".ps3.wmp")

	_, err := s.OpenContainer(context.Background(), "NOPE")
	if err == nil {
		t.Fatal("OpenContainer() expected error for missing container")
	}
	if !errors.Is(err, wdberrors.ErrNotFound) {
		t.Errorf("error = %v, want NOT_FOUND", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("error = %v, should wrap os.ErrNotExist", err)
	}
}

func TestLocalStorage_DirectoryIsNotAContainer(t *testing.T) {
	dir := t.TempDir()
	if err := os.Mkdir(filepath.Join(dir, "MOV2.x360.wmp"), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}

	s := NewLocalStorage(dir, ".x360.wmp")
	_, err := s.OpenContainer(context.Background(), "MOV2")
	if wdberrors.GetErrorCode(err) != wdberrors.CodeIO {
		t.Errorf("error code = %q, want %q", wdberrors.GetErrorCode(err), wdberrors.CodeIO)
	}
}

func TestMockStorage_TracksOpensAndSeeks(t *testing.T) {
	m := NewMockStorage()
	m.AddContainer("A", []byte("hello"))

	c, err := m.OpenContainer(context.Background(), "A")
	if err != nil {
		t.Fatalf("OpenContainer() error = %v", err)
	}
	c.Seek(2, io.SeekStart)
	c.Seek(0, io.SeekStart)

	if _, err := m.OpenContainer(context.Background(), "B"); !errors.Is(err, wdberrors.ErrNotFound) {
		t.Errorf("missing container error = %v, want NOT_FOUND", err)
	}

	if got := m.Seeks(); got != 2 {
		t.Errorf("Seeks() = %d, want 2", got)
	}
	opened := m.Opened()
	if len(opened) != 2 || opened[0] != "A" || opened[1] != "B" {
		t.Errorf("Opened() = %v, want [A B]", opened)
	}
}
