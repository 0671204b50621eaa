package engine

import (
	"errors"
	"testing"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
		kind ValueKind
		fail bool
	}{
		{name: "single IP", raw: "10.0.0.5", want: "10.0.0.5", kind: KindIP},
		{name: "CIDR", raw: "10.0.0.0/24", want: "10.0.0.0/24", kind: KindCIDR},
		{name: "host bits stripped", raw: "10.0.0.77/24", want: "10.0.0.0/24", kind: KindCIDR},
		{name: "dotted netmask", raw: "10.0.0.0/255.255.255.0", want: "10.0.0.0/24", kind: KindCIDR},
		{name: "zero prefix", raw: "0.0.0.0/0", want: "0.0.0.0/0", kind: KindCIDR},
		{name: "range", raw: "10.0.0.10-10.0.0.20", want: "10.0.0.10-10.0.0.20", kind: KindRange},
		{name: "range reordered", raw: "10.0.0.20-10.0.0.10", want: "10.0.0.10-10.0.0.20", kind: KindRange},
		{name: "whitespace trimmed", raw: "  192.168.1.1 ", want: "192.168.1.1", kind: KindIP},
		{name: "non-contiguous netmask", raw: "10.0.0.0/255.0.255.0", fail: true},
		{name: "prefix too large", raw: "10.0.0.0/33", fail: true},
		{name: "negative prefix", raw: "10.0.0.0/-1", fail: true},
		{name: "domain name", raw: "example.com", fail: true},
		{name: "any keyword", raw: "any", fail: true},
		{name: "empty", raw: "", fail: true},
		{name: "bad octet", raw: "10.0.0.300", fail: true},
		{name: "IPv6", raw: "2001:db8::1", fail: true},
		{name: "bad range side", raw: "10.0.0.1-foo", fail: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := ParseValue(tt.raw)
			if tt.fail {
				if err == nil {
					t.Fatalf("expected %q to fail, got %v", tt.raw, v)
				}
				return
			}
			if err != nil {
				t.Fatalf("expected %q to parse, got %v", tt.raw, err)
			}
			if v.Kind != tt.kind {
				t.Errorf("expected kind %d, got %d", tt.kind, v.Kind)
			}
			if v.String() != tt.want {
				t.Errorf("expected %q, got %q", tt.want, v.String())
			}
		})
	}
}

func TestParseTargetRejectsRangesAndGarbage(t *testing.T) {
	if _, err := ParseTarget("10.0.0.1"); err != nil {
		t.Fatalf("expected IP target to parse, got %v", err)
	}
	if _, err := ParseTarget("10.0.0.0/24"); err != nil {
		t.Fatalf("expected CIDR target to parse, got %v", err)
	}

	for _, raw := range []string{"10.0.0.1-10.0.0.5", "example.com", "any", ""} {
		_, err := ParseTarget(raw)
		if !errors.Is(err, ErrInvalidAddress) {
			t.Errorf("expected ErrInvalidAddress for %q, got %v", raw, err)
		}
	}
}

func TestNetmaskPrefixConversion(t *testing.T) {
	v, err := ParseValue("192.168.0.0/255.255.255.0")
	if err != nil {
		t.Fatalf("expected dotted netmask to parse, got %v", err)
	}
	if v.Prefix != 24 {
		t.Errorf("expected prefix 24, got %d", v.Prefix)
	}

	if _, err := ParseValue("192.168.0.0/255.0.255.0"); err == nil {
		t.Error("expected non-contiguous mask 255.0.255.0 to be rejected")
	}
}
