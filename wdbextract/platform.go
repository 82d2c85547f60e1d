package wdbextract

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Platform selects the container and output extensions for one release.
type Platform struct {
	Name         string
	ContainerExt string
	MovieExt     string
}

var platforms = []Platform{
	{Name: "win32", ContainerExt: ".win32.wmp", MovieExt: ".bk2"},
	{Name: "ps3", ContainerExt: ".ps3.wmp", MovieExt: ".pamf"},
	{Name: "x360", ContainerExt: ".x360.wmp", MovieExt: ".bik"},
}

// RegionUS is the suffix of container keys and output names for the US release.
const RegionUS = "_us"

// DatabaseExt is the only accepted database file extension.
const DatabaseExt = ".wdb"

func filenameTokens(path string) []string {
	return strings.FieldsFunc(strings.ToLower(filepath.Base(path)), func(r rune) bool {
		return r == '.' || r == '_' || r == '-' || r == ' '
	})
}

// DetectPlatform picks the platform from a token of the database filename,
// e.g. "movie_items_us.win32.wdb".
func DetectPlatform(dbPath string) (Platform, error) {
	for _, token := range filenameTokens(dbPath) {
		for _, p := range platforms {
			if token == p.Name {
				return p, nil
			}
		}
	}
	return Platform{}, NewUsageError(fmt.Sprintf("cannot tell the platform of %q: the file name must contain win32, ps3 or x360", filepath.Base(dbPath)))
}

// DetectRegion returns RegionUS when the database filename carries a "us"
// token and "" otherwise.
func DetectRegion(dbPath string) string {
	for _, token := range filenameTokens(dbPath) {
		if token == "us" {
			return RegionUS
		}
	}
	return ""
}

// DefaultOutputDir names the movie output directory for a release.
func DefaultOutputDir(platform Platform, region string) string {
	dir := "extracted"
	if platform.Name != "" {
		dir += "_" + platform.Name
	}
	return dir + region
}
