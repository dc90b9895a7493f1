// Package version normalizes loosely typed Gate version descriptors and
// decides the version-gated digitizer addressing.
package version

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// Version is a canonical (major, minor, patch) triple.
type Version struct {
	Major int
	Minor int
	Patch int
}

var (
	// Fallback is used whenever a descriptor cannot be normalized.
	Fallback = Version{9, 2, 0}
	// Threshold is the first version with per-detector digitizer chains.
	Threshold = Version{9, 3, 0}
)

// ParseError reports a descriptor that could not be normalized.
type ParseError struct {
	Input string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot normalize version %s: %v (using %s)", e.Input, e.Err, Fallback)
}

func (e *ParseError) Unwrap() error { return e.Err }

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// Compare orders versions lexicographically by major, minor, then patch.
func (v Version) Compare(o Version) int {
	switch {
	case v.Major != o.Major:
		return cmpInt(v.Major, o.Major)
	case v.Minor != o.Minor:
		return cmpInt(v.Minor, o.Minor)
	default:
		return cmpInt(v.Patch, o.Patch)
	}
}

// AtLeast reports whether v >= o.
func (v Version) AtLeast(o Version) bool { return v.Compare(o) >= 0 }

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Normalize converts a descriptor into a Version. Accepted inputs are a
// Version, a slice or array of two or three integers (or integer-like
// values), a dotted string, or a zero-argument provider returning one of
// those. On failure it returns Fallback together with a *ParseError.
func Normalize(in any) (v Version, err error) {
	resolved, err := resolve(in)
	if err != nil {
		return Fallback, &ParseError{Input: describe(in), Err: err}
	}
	v, err = normalize(resolved)
	if err != nil {
		return Fallback, &ParseError{Input: describe(in), Err: err}
	}
	return v, nil
}

// MustNormalize is Normalize without the error.
func MustNormalize(in any) Version {
	v, _ := Normalize(in)
	return v
}

// resolve calls provider functions, turning a panic into an error.
func resolve(in any) (out any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("version provider panicked: %v", r)
		}
	}()
	switch f := in.(type) {
	case func() any:
		return f(), nil
	case func() (any, error):
		return f()
	case func() string:
		return f(), nil
	case func() (string, error):
		return f()
	case func() Version:
		return f(), nil
	case func() []int:
		return f(), nil
	}
	return in, nil
}

func normalize(in any) (Version, error) {
	switch v := in.(type) {
	case nil:
		return Version{}, errors.New("no version given")
	case Version:
		return v, nil
	case *Version:
		if v == nil {
			return Version{}, errors.New("no version given")
		}
		return *v, nil
	case string:
		return parseString(v)
	}

	rv := reflect.ValueOf(in)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return Version{}, fmt.Errorf("unsupported descriptor type %T", in)
	}
	parts := make([]int, 0, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		n, err := toInt(rv.Index(i).Interface())
		if err != nil {
			return Version{}, fmt.Errorf("component %d: %w", i, err)
		}
		parts = append(parts, n)
	}
	return fromParts(parts)
}

func parseString(s string) (Version, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Version{}, errors.New("empty version string")
	}
	if sv, err := semver.NewVersion(s); err == nil {
		return Version{int(sv.Major()), int(sv.Minor()), int(sv.Patch())}, nil
	}
	// semver rejects more than three components; keep the leading three.
	var parts []int
	for _, p := range strings.Split(s, ".") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.Atoi(p)
		if err != nil {
			return Version{}, fmt.Errorf("parse %q: %w", s, err)
		}
		parts = append(parts, n)
	}
	return fromParts(parts)
}

func fromParts(parts []int) (Version, error) {
	if len(parts) == 0 {
		return Version{}, errors.New("no version components")
	}
	for _, p := range parts {
		if p < 0 {
			return Version{}, fmt.Errorf("negative component %d", p)
		}
	}
	parts = append(parts, 0, 0, 0)
	return Version{parts[0], parts[1], parts[2]}, nil
}

func toInt(x any) (int, error) {
	switch n := x.(type) {
	case int:
		return n, nil
	case int8:
		return int(n), nil
	case int16:
		return int(n), nil
	case int32:
		return int(n), nil
	case int64:
		return int(n), nil
	case uint:
		return int(n), nil
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case float32:
		return floatToInt(float64(n))
	case float64:
		return floatToInt(n)
	case string:
		return strconv.Atoi(strings.TrimSpace(n))
	}
	return 0, fmt.Errorf("not an integer: %v (%T)", x, x)
}

func floatToInt(f float64) (int, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("not an integer: %v", f)
	}
	return int(f), nil
}

func describe(in any) string {
	switch in.(type) {
	case func() any, func() (any, error), func() string, func() (string, error), func() Version, func() []int:
		return "<provider>"
	}
	return fmt.Sprintf("%#v", in)
}
