package params

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/cytomine/pims/problem"
)

var (
	planeError     = "%#v is not a valid index or range for %s"
	rangeError     = "%#v is not a valid range"
	reductionError = "A reduction is required for %s when more than one plane is selected"
	arraySizeError = "%s has an invalid size %d, expected one of %v"
	arrayNullError = "%s is required"
)

var rangePattern = regexp.MustCompile(`^\s*(\d*)\s*:\s*(\d*)\s*$`)

// IsRange reports whether s is a slice expression such as "a:b", "a:",
// ":b" or ":".
func IsRange(s string) bool {
	return rangePattern.MatchString(s)
}

// ParseRange reads a slice expression into the half-open interval
// [start, end). Missing bounds default to min and max, reversed bounds are
// swapped.
func ParseRange(s string, min, max int) (int, int, error) {
	m := rangePattern.FindStringSubmatch(s)
	if m == nil {
		return 0, 0, problem.BadRequest(rangeError, s)
	}

	var err error
	start, end := min, max
	if m[1] != "" {
		if start, err = strconv.Atoi(m[1]); err != nil {
			return 0, 0, problem.BadRequest(rangeError, s)
		}
	}
	if m[2] != "" {
		if end, err = strconv.Atoi(m[2]); err != nil {
			return 0, 0, problem.BadRequest(rangeError, s)
		}
	}

	if start > end {
		start, end = end, start
	}
	return start, end, nil
}

// ParsePlanes reads a list of plane indexes and slice expressions for an
// axis of n planes. Indexes outside [0, n) are dropped. When nothing is
// left, def is returned, or [0] if def is empty.
func ParsePlanes(planes []string, n int, def []int, name string) ([]int, error) {
	seen := make(map[int]bool)
	for _, plane := range planes {
		plane = strings.TrimSpace(plane)
		if idx, err := strconv.Atoi(plane); err == nil {
			seen[idx] = true
			continue
		}

		if !IsRange(plane) {
			return nil, problem.BadRequest(planeError, plane, name)
		}

		start, end, err := ParseRange(plane, 0, n)
		if err != nil {
			return nil, problem.BadRequest(planeError, plane, name)
		}
		// Slices are bounded by the axis length.
		for idx := max(start, 0); idx < min(end, n); idx++ {
			seen[idx] = true
		}
	}

	indexes := make([]int, 0, len(seen))
	for idx := range seen {
		if idx >= 0 && idx < n {
			indexes = append(indexes, idx)
		}
	}
	sort.Ints(indexes)

	if len(indexes) == 0 {
		if len(def) == 0 {
			return []int{0}, nil
		}
		return append([]int(nil), def...), nil
	}
	return indexes, nil
}

// CheckReductionValidity checks that a reduction is given when more than one
// plane is selected.
func CheckReductionValidity(planes []int, reduction string, name string) error {
	if len(planes) > 1 && reduction == "" {
		return problem.BadRequest(reductionError, name)
	}
	return nil
}

// CheckArraySize checks that the length of arr is one of the allowed sizes.
// A nil arr is accepted only when nullable.
func CheckArraySize[T any](arr []T, allowed []int, nullable bool, name string) error {
	if arr == nil {
		if nullable {
			return nil
		}
		return problem.BadRequest(arrayNullError, name)
	}

	for _, size := range allowed {
		if len(arr) == size {
			return nil
		}
	}
	return problem.BadRequest(arraySizeError, name, len(arr), allowed)
}
