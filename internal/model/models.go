package model

// Scope identifies a policy tier: the literal "shared" tier or an isolated
// device-group tier. Scopes are flat; "shared" is a fallback searched after
// the current scope, never the reverse.
type Scope string

const SharedScope Scope = "shared"

// DeviceGroupScope returns the scope identifier for a device-group.
func DeviceGroupScope(name string) Scope {
	return Scope("dg:" + name)
}

// RulebaseKind is one of the ordered policy evaluation tiers.
type RulebaseKind string

const (
	PreRulebase  RulebaseKind = "pre-rulebase"
	Rulebase     RulebaseKind = "rulebase"
	PostRulebase RulebaseKind = "post-rulebase"
)

// RulebaseKinds lists the tiers in evaluation order.
var RulebaseKinds = []RulebaseKind{PreRulebase, Rulebase, PostRulebase}

// Side is the rule side a member token came from.
type Side string

const (
	SourceSide      Side = "source"
	DestinationSide Side = "destination"
)

// MatchBasis records how a member token produced a match.
type MatchBasis string

const (
	BasisLiteral       MatchBasis = "literal"
	BasisAddressObject MatchBasis = "address-object"
	BasisAddressGroup  MatchBasis = "address-group"
)

// AddressObject is a named address value inside one scope. Value holds the
// raw string as stored in the document: dotted IP, CIDR, dotted-netmask CIDR,
// inclusive range "A-B", or an unsupported domain name.
type AddressObject struct {
	Name  string
	Value string
}

// AddressGroup is a named ordered list of member tokens. A member token is a
// literal value, an address-object name, or another group name.
type AddressGroup struct {
	Name    string
	Members []string
}

// Rule is a security rule with its source and destination member lists.
type Rule struct {
	Name         string
	Sources      []string
	Destinations []string
}

// ScopeNode holds everything one scope contributes to the document: its
// address objects, address-groups, and rulebases.
type ScopeNode struct {
	Addresses     []AddressObject
	AddressGroups []AddressGroup
	Rulebases     map[RulebaseKind][]Rule
}

// DeviceGroup is one device-group entry with its scope contents.
type DeviceGroup struct {
	Name string
	Node ScopeNode
}

// Document is one parsed, read-only policy snapshot. Shared collects the
// top-level shared subtree merged with any per-device shared subtrees;
// DeviceGroups preserves document order.
type Document struct {
	Shared       ScopeNode
	DeviceGroups []DeviceGroup
}

// MatchRecord is one hit: a rule member that resolved to an address value
// matching the search target.
type MatchRecord struct {
	Scope    Scope        `json:"scope"`
	Rulebase RulebaseKind `json:"rulebase"`
	Rule     string       `json:"rule"`
	Side     Side         `json:"side"`
	Member   string       `json:"member"`
	Resolved string       `json:"resolved"`
	Basis    MatchBasis   `json:"basis"`
}
