package wdbextract

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
)

// DigestManifestName is the file WriteDigestManifest creates in the output
// directory.
const DigestManifestName = "SHA256SUMS"

// WriteDigestManifest writes a sha256sum-compatible listing of every result
// that carries a digest. It returns the number of lines written.
func WriteDigestManifest(path string, results []MovieResult) (int, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, NewIOError("create manifest", path, err)
	}

	bw := bufio.NewWriter(f)
	lines := 0
	for _, r := range results {
		if r.Digest == "" {
			continue
		}
		fmt.Fprintf(bw, "%s  %s\n", r.Digest.Encoded(), filepath.Base(r.OutputPath))
		lines++
	}

	if err := bw.Flush(); err != nil {
		f.Close()
		return lines, NewIOError("write manifest", path, err)
	}
	if err := f.Close(); err != nil {
		return lines, NewIOError("close manifest", path, err)
	}
	return lines, nil
}
