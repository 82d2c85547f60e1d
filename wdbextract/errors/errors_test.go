package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestExtractError_Error(t *testing.T) {
	tests := []struct {
		name    string
		err     *ExtractError
		wantStr string
	}{
		{
			name:    "basic error",
			err:     &ExtractError{Code: "TEST_ERROR", Message: "test message"},
			wantStr: "[TEST_ERROR] test message",
		},
		{
			name: "error with cause",
			err: &ExtractError{
				Code:    "TEST_ERROR",
				Message: "test message",
				Cause:   errors.New("underlying error"),
			},
			wantStr: "[TEST_ERROR] test message: underlying error",
		},
		{
			name: "error with details",
			err: &ExtractError{
				Code:    "TEST_ERROR",
				Message: "test message",
				Details: map[string]interface{}{"key": "value"},
			},
			wantStr: "details",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.err.Error()
			if !strings.Contains(got, tt.wantStr) {
				t.Errorf("Error() = %q, want to contain %q", got, tt.wantStr)
			}
		})
	}
}

func TestExtractError_WithCause(t *testing.T) {
	cause := errors.New("root cause")
	err := ErrIO.WithCause(cause)

	if err.Cause != cause {
		t.Errorf("WithCause() cause = %v, want %v", err.Cause, cause)
	}
	if !errors.Is(err, cause) {
		t.Error("WithCause() should allow errors.Is to work")
	}
	if ErrIO.Cause != nil {
		t.Error("WithCause() modified the sentinel")
	}
}

func TestExtractError_WithDetail(t *testing.T) {
	base := ErrNotFound.WithDetail("path", "MOV1_us.win32.wmp")
	err := base.WithDetail("movie", "ev_op_01")

	if err.Details["path"] != "MOV1_us.win32.wmp" || err.Details["movie"] != "ev_op_01" {
		t.Errorf("Details = %v", err.Details)
	}
	if _, exists := base.Details["movie"]; exists {
		t.Error("WithDetail() should not modify the receiver's details")
	}
}

func TestExtractError_WithMessage(t *testing.T) {
	err := ErrUsage.WithMessage("missing database path")

	if err.Message != "missing database path" {
		t.Errorf("WithMessage() message = %q", err.Message)
	}
	if err.Code != CodeUsage {
		t.Errorf("WithMessage() code = %q, want %q", err.Code, CodeUsage)
	}
}

func TestExtractError_IsMatchesCode(t *testing.T) {
	err := ErrTruncated.WithDetail("movie", "ev_ed").WithCause(errors.New("eof"))

	if !errors.Is(err, ErrTruncated) {
		t.Error("derived error should match its sentinel")
	}
	if errors.Is(err, ErrIO) {
		t.Error("derived error should not match another code")
	}

	wrapped := fmt.Errorf("extract: %w", err)
	if !errors.Is(wrapped, ErrTruncated) {
		t.Error("wrapped error should match its sentinel")
	}
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"plain", errors.New("boom"), ""},
		{"direct", ErrParse.WithDetail("field", "offset"), CodeParse},
		{"wrapped", fmt.Errorf("read: %w", ErrNotFound), CodeNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetErrorCode(tt.err); got != tt.want {
				t.Errorf("GetErrorCode() = %q, want %q", got, tt.want)
			}
		})
	}
}
