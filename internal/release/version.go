package release

import (
	"fmt"
	"regexp"
	"strconv"
)

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)\.(\d+)(?:-rc(\d+))?$`)

// Version is a CMake release version: a numeric MAJOR.MINOR.PATCH triple
// with an optional release-candidate number. RC == 0 means a final release.
type Version struct {
	Major int
	Minor int
	Patch int
	RC    int
}

// ParseVersion parses MAJOR.MINOR.PATCH or MAJOR.MINOR.PATCH-rcN. Anything
// else fails with ErrInvalidVersion. No network activity happens here, so a
// malformed argument is rejected before any transfer starts.
func ParseVersion(s string) (Version, error) {
	m := versionPattern.FindStringSubmatch(s)
	if m == nil {
		return Version{}, fmt.Errorf("%w: %q (want MAJOR.MINOR.PATCH or MAJOR.MINOR.PATCH-rcN)", ErrInvalidVersion, s)
	}

	var v Version
	var err error
	if v.Major, err = strconv.Atoi(m[1]); err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	if v.Minor, err = strconv.Atoi(m[2]); err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}
	if v.Patch, err = strconv.Atoi(m[3]); err != nil {
		return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
	}

	if m[4] != "" {
		if v.RC, err = strconv.Atoi(m[4]); err != nil {
			return Version{}, fmt.Errorf("%w: %q", ErrInvalidVersion, s)
		}
		// rc0 would be indistinguishable from the final release.
		if v.RC == 0 {
			return Version{}, fmt.Errorf("%w: %q (release candidates start at rc1)", ErrInvalidVersion, s)
		}
	}

	return v, nil
}

// String renders the canonical version form, e.g. "3.20.0" or "3.20.0-rc2".
func (v Version) String() string {
	if v.RC > 0 {
		return fmt.Sprintf("%d.%d.%d-rc%d", v.Major, v.Minor, v.Patch, v.RC)
	}
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// FeatureLine renders "MAJOR.MINOR", the directory key used by the direct
// distribution channel.
func (v Version) FeatureLine() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Compare returns -1, 0, or 1 ordering v against o. The numeric triple
// orders first. Within one triple, the final release sorts after every
// release candidate, so naive lexical sorting (where "3.20.0-rc1" would
// outrank "3.20.0") cannot be used here.
func (v Version) Compare(o Version) int {
	if c := compareInt(v.Major, o.Major); c != 0 {
		return c
	}
	if c := compareInt(v.Minor, o.Minor); c != 0 {
		return c
	}
	if c := compareInt(v.Patch, o.Patch); c != 0 {
		return c
	}
	if v.RC == o.RC {
		return 0
	}
	if v.RC == 0 {
		return 1
	}
	if o.RC == 0 {
		return -1
	}
	return compareInt(v.RC, o.RC)
}

func compareInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
