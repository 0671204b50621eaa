package engine

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	"panorama-rule-finder/internal/utils"
)

// ErrInvalidAddress reports a search target that does not normalize as an
// IPv4 address or CIDR. It is the only error FindMatches surfaces.
var ErrInvalidAddress = errors.New("invalid target address")

type ValueKind int

const (
	KindIP ValueKind = iota
	KindCIDR
	KindRange
)

// Value is a normalized address value. IP values carry Addr; CIDR values
// carry Addr and Prefix; range values carry Lo and Hi with Lo <= Hi.
type Value struct {
	Kind   ValueKind
	Addr   uint32
	Prefix int
	Lo     uint32
	Hi     uint32
}

// ParseValue normalizes a raw address string into a single IP, a CIDR, or an
// inclusive range. Domain names, "any", and malformed input fail; callers
// treat a failed parse as "never matches".
func ParseValue(raw string) (Value, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Value{}, fmt.Errorf("empty address value")
	}

	if strings.Contains(s, "-") {
		return parseRange(s)
	}
	if strings.Contains(s, "/") {
		return parseCIDR(s)
	}

	addr, ok := parseIPv4(s)
	if !ok {
		return Value{}, fmt.Errorf("not an IPv4 address: %q", raw)
	}
	return Value{Kind: KindIP, Addr: addr}, nil
}

// ParseTarget normalizes a search target. Unlike stored values, a target may
// only be a single IP or a CIDR; ranges are rejected with ErrInvalidAddress.
func ParseTarget(raw string) (Value, error) {
	v, err := ParseValue(raw)
	if err != nil {
		return Value{}, fmt.Errorf("%w: %q", ErrInvalidAddress, raw)
	}
	if v.Kind == KindRange {
		return Value{}, fmt.Errorf("%w: ranges are not accepted as a target: %q", ErrInvalidAddress, raw)
	}
	return v, nil
}

func parseRange(s string) (Value, error) {
	parts := strings.SplitN(s, "-", 2)
	lo, ok := parseIPv4(strings.TrimSpace(parts[0]))
	if !ok {
		return Value{}, fmt.Errorf("bad range start in %q", s)
	}
	hi, ok := parseIPv4(strings.TrimSpace(parts[1]))
	if !ok {
		return Value{}, fmt.Errorf("bad range end in %q", s)
	}
	if lo > hi {
		lo, hi = hi, lo
	}
	return Value{Kind: KindRange, Lo: lo, Hi: hi}, nil
}

func parseCIDR(s string) (Value, error) {
	parts := strings.SplitN(s, "/", 2)
	addr, ok := parseIPv4(parts[0])
	if !ok {
		return Value{}, fmt.Errorf("bad address in %q", s)
	}

	suffix := parts[1]
	prefix, err := strconv.Atoi(suffix)
	if err != nil {
		// Not numeric: treat the suffix as a dotted netmask.
		mask := net.ParseIP(suffix)
		if mask == nil {
			return Value{}, fmt.Errorf("bad CIDR suffix in %q", s)
		}
		prefix, ok = utils.MaskToPrefix(mask)
		if !ok {
			return Value{}, fmt.Errorf("non-contiguous netmask in %q", s)
		}
	} else if prefix < 0 || prefix > 32 {
		return Value{}, fmt.Errorf("prefix out of range in %q", s)
	}

	// Normalize to the network address so exact comparison is well defined.
	lo, _ := utils.PrefixBounds(addr, prefix)
	return Value{Kind: KindCIDR, Addr: lo, Prefix: prefix}, nil
}

func parseIPv4(s string) (uint32, bool) {
	ip := net.ParseIP(s)
	if ip == nil || strings.Contains(s, ":") {
		return 0, false
	}
	return utils.IPv4ToUint32(ip)
}

// String renders the value back in its canonical textual form.
func (v Value) String() string {
	switch v.Kind {
	case KindCIDR:
		return fmt.Sprintf("%s/%d", utils.Uint32ToIPv4(v.Addr), v.Prefix)
	case KindRange:
		return fmt.Sprintf("%s-%s", utils.Uint32ToIPv4(v.Lo), utils.Uint32ToIPv4(v.Hi))
	default:
		return utils.Uint32ToIPv4(v.Addr).String()
	}
}
