package engine

import (
	"panorama-rule-finder/internal/utils"
)

// Mode selects the interval semantics used when comparing a stored value
// against the search target.
type Mode string

const (
	ModeOverlap   Mode = "overlap"
	ModeContained Mode = "contained"
	ModeExact     Mode = "exact"
)

// ParseMode maps a mode string to a Mode. Unknown values fall back to
// overlap rather than failing the call.
func ParseMode(s string) Mode {
	switch Mode(s) {
	case ModeContained:
		return ModeContained
	case ModeExact:
		return ModeExact
	default:
		return ModeOverlap
	}
}

// Interval returns the value as an inclusive 32-bit integer interval.
func (v Value) Interval() (lo, hi uint32) {
	switch v.Kind {
	case KindCIDR:
		return utils.PrefixBounds(v.Addr, v.Prefix)
	case KindRange:
		return v.Lo, v.Hi
	default:
		return v.Addr, v.Addr
	}
}

// Match reports whether value matches target under the given mode.
//
//   - overlap: the two intervals intersect.
//   - contained: the value interval lies fully inside the target interval.
//     A single-IP target is interpreted as "the target point lies within the
//     value interval", so a network containing the target IP matches.
//   - exact: same-kind equality only; IP equals IP, CIDR equals CIDR by
//     network and prefix. Ranges never satisfy exact.
func Match(value, target Value, mode Mode) bool {
	vLo, vHi := value.Interval()
	tLo, tHi := target.Interval()

	switch mode {
	case ModeContained:
		if target.Kind == KindIP {
			return vLo <= tLo && tLo <= vHi
		}
		return tLo <= vLo && vHi <= tHi
	case ModeExact:
		if value.Kind != target.Kind {
			return false
		}
		switch value.Kind {
		case KindIP:
			return value.Addr == target.Addr
		case KindCIDR:
			return value.Addr == target.Addr && value.Prefix == target.Prefix
		default:
			return false
		}
	default:
		return !(vHi < tLo || vLo > tHi)
	}
}

// MatchRaw parses raw and matches it against the target. A raw value that
// fails to normalize never matches; matching is best-effort over possibly
// malformed policy data.
func MatchRaw(raw string, target Value, mode Mode) bool {
	v, err := ParseValue(raw)
	if err != nil {
		return false
	}
	return Match(v, target, mode)
}
