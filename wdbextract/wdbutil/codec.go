package wdbutil

import (
	"encoding/hex"
	"strconv"
	"strings"

	wdberrors "github.com/flaneur2020/wdbextract/wdbextract/errors"
)

// span clamps [start, start+n) to b.
func span(b []byte, start, n int) []byte {
	if start < 0 {
		start = 0
	}
	if start > len(b) {
		start = len(b)
	}
	end := start + n
	if n < 0 || end > len(b) {
		end = len(b)
	}
	return b[start:end]
}

// ByteRangeToHex renders n bytes starting at start as uppercase hex, two
// digits per byte in file order. The result reads as a big-endian integer.
func ByteRangeToHex(b []byte, start, n int) string {
	return strings.ToUpper(hex.EncodeToString(span(b, start, n)))
}

// HexToUint parses s as a base-16 unsigned integer. The empty string is 0.
func HexToUint(s string) (uint64, error) {
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseUint(s, 16, 64)
	if err != nil {
		return 0, wdberrors.ErrParse.WithDetail("value", s).WithCause(err)
	}
	return v, nil
}

// DecodeUint decodes n bytes at start as a big-endian integer by way of its
// hex text.
func DecodeUint(b []byte, start, n int) (uint64, error) {
	return HexToUint(ByteRangeToHex(b, start, n))
}

// BytesToText decodes a fixed-width NUL-padded field.
func BytesToText(b []byte, start, n int) string {
	return strings.Trim(strings.ToValidUTF8(string(span(b, start, n)), "�"), "\x00")
}
