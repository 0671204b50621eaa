package utils

import "net"

// IPv4ToUint32 converts an IPv4 address to its 32-bit integer form.
// Returns false for IPv6 or invalid addresses.
func IPv4ToUint32(ip net.IP) (uint32, bool) {
	v4 := ip.To4()
	if v4 == nil {
		return 0, false
	}
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3]), true
}

// Uint32ToIPv4 converts a 32-bit integer back to a dotted-quad address.
func Uint32ToIPv4(n uint32) net.IP {
	return net.IPv4(byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
}

// MaskToPrefix converts a dotted netmask to a prefix length by counting
// leading one-bits. Returns false if the mask is not contiguous, i.e. a zero
// bit precedes a one bit.
func MaskToPrefix(mask net.IP) (int, bool) {
	m, ok := IPv4ToUint32(mask)
	if !ok {
		return 0, false
	}
	prefix := 0
	for prefix < 32 && m&(1<<uint(31-prefix)) != 0 {
		prefix++
	}
	// Everything after the leading ones must be zero.
	if prefix < 32 && m<<uint(prefix) != 0 {
		return 0, false
	}
	return prefix, true
}

// PrefixBounds returns the network and broadcast addresses of addr/prefix as
// an inclusive 32-bit interval.
func PrefixBounds(addr uint32, prefix int) (lo, hi uint32) {
	if prefix <= 0 {
		return 0, 0xFFFFFFFF
	}
	mask := uint32(0xFFFFFFFF) << uint(32-prefix)
	lo = addr & mask
	hi = lo | ^mask
	return lo, hi
}
