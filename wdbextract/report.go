package wdbextract

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
)

// DefaultReportPath is where DumpOffsetTable writes when no path is given.
const DefaultReportPath = "offset_table.txt"

const mib = 1024 * 1024

// SortByContainerOffset returns a copy of movies ordered by container key,
// then by offset within the container.
func SortByContainerOffset(movies []ResolvedMovie) []ResolvedMovie {
	sorted := append([]ResolvedMovie(nil), movies...)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Container != sorted[j].Container {
			return sorted[i].Container < sorted[j].Container
		}
		return sorted[i].Offset < sorted[j].Offset
	})
	return sorted
}

// WriteOffsetTable renders movies as a fixed-width table sorted by container
// and offset.
func WriteOffsetTable(w io.Writer, movies []ResolvedMovie) error {
	rows := SortByContainerOffset(movies)

	containerWidth, movieWidth := len("Container"), len("Movie")
	for _, m := range rows {
		if len(m.Container) > containerWidth {
			containerWidth = len(m.Container)
		}
		if len(m.Name) > movieWidth {
			movieWidth = len(m.Name)
		}
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%-*s | %-*s | %-10s | %s\n", containerWidth, "Container", movieWidth, "Movie", "Offset", "Length")
	fmt.Fprintf(bw, "%s-+-%s-+-%s-+-%s\n",
		strings.Repeat("-", containerWidth), strings.Repeat("-", movieWidth), strings.Repeat("-", 10), strings.Repeat("-", 25))

	for _, m := range rows {
		fmt.Fprintf(bw, "%-*s | %-*s | 0x%08X | 0x%08X (%8.2f MiB)\n",
			containerWidth, m.Container, movieWidth, m.Name, m.Offset, m.Length, float64(m.Length)/mib)
	}

	return bw.Flush()
}

// DumpOffsetTable writes the offset table to path, replacing any previous
// report.
func DumpOffsetTable(path string, movies []ResolvedMovie) error {
	if path == "" {
		path = DefaultReportPath
	}

	f, err := os.Create(path)
	if err != nil {
		return NewIOError("create report", path, err)
	}

	if err := WriteOffsetTable(f, movies); err != nil {
		f.Close()
		return NewIOError("write report", path, err)
	}

	if err := f.Close(); err != nil {
		return NewIOError("close report", path, err)
	}
	return nil
}
