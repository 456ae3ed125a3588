// pkg/build/build.go - parsing, formatting and ordering of <Product>.<Year>.<Build> identifiers.

package build

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"

	version "github.com/hashicorp/go-version"
)

// ID identifies one release of the host application.
type ID struct {
	Product string
	Year    int
	Build   int
}

// String returns the canonical "<product>.<year>.<build>" form.
func (id ID) String() string {
	return fmt.Sprintf("%s.%d.%d", id.Product, id.Year, id.Build)
}

// Equal compares canonical forms.
func (id ID) Equal(other ID) bool {
	return id.String() == other.String()
}

// Parse reads a canonical "<product>.<year>.<build>" string.
func Parse(s string) (ID, error) {
	parts := strings.Split(strings.TrimSpace(s), ".")
	if len(parts) != 3 || parts[0] == "" {
		return ID{}, fmt.Errorf("invalid version identifier %q: want <product>.<year>.<build>", s)
	}
	year, build, err := parsePair(parts[1], parts[2])
	if err != nil {
		return ID{}, fmt.Errorf("invalid version identifier %q: %w", s, err)
	}
	return ID{Product: parts[0], Year: year, Build: build}, nil
}

// ParseToken builds an ID from a bare "<year>.<build>" token such as the one
// printed by the document inspector.
func ParseToken(product, token string) (ID, error) {
	parts := strings.Split(strings.TrimSpace(token), ".")
	if len(parts) != 2 {
		return ID{}, fmt.Errorf("invalid version token %q: want <year>.<build>", token)
	}
	year, build, err := parsePair(parts[0], parts[1])
	if err != nil {
		return ID{}, fmt.Errorf("invalid version token %q: %w", token, err)
	}
	return ID{Product: product, Year: year, Build: build}, nil
}

// FromBundleVersion builds an ID from a bundle version string like
// "2023.11290" or "2023.11290.2", keeping the first two components.
func FromBundleVersion(product, bundleVersion string) (ID, error) {
	if len(strings.Split(bundleVersion, ".")) < 2 {
		return ID{}, fmt.Errorf("bundle version %q has fewer than two components", bundleVersion)
	}
	v, err := version.NewVersion(bundleVersion)
	if err != nil {
		return ID{}, fmt.Errorf("bundle version %q: %w", bundleVersion, err)
	}
	segments := v.Segments()
	return ID{Product: product, Year: segments[0], Build: segments[1]}, nil
}

func parsePair(yearStr, buildStr string) (int, int, error) {
	year, err := strconv.Atoi(yearStr)
	if err != nil || year < 0 {
		return 0, 0, fmt.Errorf("year %q is not a non-negative integer", yearStr)
	}
	build, err := strconv.Atoi(buildStr)
	if err != nil || build < 0 {
		return 0, 0, fmt.Errorf("build %q is not a non-negative integer", buildStr)
	}
	return year, build, nil
}

// Compare orders identifiers by (year, build). Product is not considered.
func Compare(a, b ID) int {
	va, errA := version.NewVersion(fmt.Sprintf("%d.%d", a.Year, a.Build))
	vb, errB := version.NewVersion(fmt.Sprintf("%d.%d", b.Year, b.Build))
	if errA != nil || errB != nil {
		if c := cmp.Compare(a.Year, b.Year); c != 0 {
			return c
		}
		return cmp.Compare(a.Build, b.Build)
	}
	return va.Compare(vb)
}

// Less reports whether a sorts before b.
func Less(a, b ID) bool {
	return Compare(a, b) < 0
}
