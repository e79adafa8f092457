package protocol

import (
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// Observations maps observation names to decoded values. Values are
// float64 for scaled readings, int for counts, levels and raw bytes, and
// nil when the gateway reported the reading as absent.
type Observations map[string]any

// Merge copies every entry of other into o, overwriting existing keys
func (o Observations) Merge(other Observations) {
	for k, v := range other {
		o[k] = v
	}
}

// Float returns the value for name as a float64. ok is false when the name
// is missing, nil or not numeric.
func (o Observations) Float(name string) (float64, bool) {
	return ToFloat(o[name])
}

// ToFloat converts a decoded value to float64
func ToFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// SortedKeys returns the observation names in natural order, so that
// "temp2" sorts before "temp10".
func SortedKeys(o Observations) []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return naturalLess(keys[i], keys[j]) })
	return keys
}

// naturalLess compares strings chunk by chunk, numeric chunks by value.
// Letters compare case-insensitively.
func naturalLess(a, b string) bool {
	ca, cb := chunks(a), chunks(b)
	for i := 0; i < len(ca) && i < len(cb); i++ {
		x, y := ca[i], cb[i]
		xn, xerr := strconv.Atoi(x)
		yn, yerr := strconv.Atoi(y)
		switch {
		case xerr == nil && yerr == nil:
			if xn != yn {
				return xn < yn
			}
		default:
			lx, ly := strings.ToLower(x), strings.ToLower(y)
			if lx != ly {
				return lx < ly
			}
		}
	}
	if len(ca) != len(cb) {
		return len(ca) < len(cb)
	}
	return a < b
}

func chunks(s string) []string {
	var out []string
	start := 0
	for i := 1; i <= len(s); i++ {
		if i == len(s) || unicode.IsDigit(rune(s[i])) != unicode.IsDigit(rune(s[i-1])) {
			out = append(out, s[start:i])
			start = i
		}
	}
	return out
}
