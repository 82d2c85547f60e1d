package wdbextract

import (
	"errors"
	"os"
	"strings"
	"testing"

	wdberrors "github.com/flaneur2020/wdbextract/wdbextract/errors"
)

func TestNewTruncationError(t *testing.T) {
	err := NewTruncationError("ev_op_01", 0x400, 0x100)

	if !errors.Is(err, wdberrors.ErrTruncated) {
		t.Fatalf("error = %v, want TRUNCATED", err)
	}

	var extractErr *wdberrors.ExtractError
	if !errors.As(err, &extractErr) {
		t.Fatal("expected *ExtractError")
	}
	if extractErr.Details["movie"] != "ev_op_01" {
		t.Errorf("movie detail = %v", extractErr.Details["movie"])
	}
	if extractErr.Details["length"] != uint64(0x400) || extractErr.Details["written"] != uint64(0x100) {
		t.Errorf("details = %v", extractErr.Details)
	}
}

func TestNewIOError_KeepsCause(t *testing.T) {
	err := NewIOError("create", "out/ev.bk2", os.ErrPermission)

	if !errors.Is(err, wdberrors.ErrIO) {
		t.Errorf("error = %v, want IO_ERROR", err)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Error("cause should be reachable through errors.Is")
	}
	if !strings.Contains(err.Error(), "out/ev.bk2") {
		t.Errorf("Error() = %q, want path in message", err.Error())
	}
}

func TestNewNotFoundError(t *testing.T) {
	err := NewNotFoundError("MOV1.win32.wmp", os.ErrNotExist)

	if wdberrors.GetErrorCode(err) != wdberrors.CodeNotFound {
		t.Errorf("code = %q", wdberrors.GetErrorCode(err))
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Error("cause should be reachable through errors.Is")
	}
}

func TestNewParseError(t *testing.T) {
	err := NewParseError("offset", 3, errors.New("bad digit"))

	if !errors.Is(err, wdberrors.ErrParse) {
		t.Errorf("error = %v, want PARSE_ERROR", err)
	}
	if !strings.Contains(err.Error(), "bad digit") {
		t.Errorf("Error() = %q", err.Error())
	}
}

func TestNewUsageError(t *testing.T) {
	err := NewUsageError("no database given")

	if wdberrors.GetErrorCode(err) != wdberrors.CodeUsage {
		t.Errorf("code = %q", wdberrors.GetErrorCode(err))
	}
	if !strings.Contains(err.Error(), "no database given") {
		t.Errorf("Error() = %q", err.Error())
	}
}
