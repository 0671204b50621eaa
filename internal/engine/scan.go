package engine

import (
	"panorama-rule-finder/internal/model"
)

// FindMatches scans every rule in every rulebase in every scope of the
// document and returns one record per rule member that references an address
// matching the target under the given mode. It fails only when the target
// itself does not normalize as an IP or CIDR; malformed stored values simply
// never match.
//
// Records follow document traversal order: the shared scope first, then each
// device-group in document order; within a scope the rulebase tiers in
// evaluation order; within a rule source before destination, and members in
// their stored order.
func FindMatches(doc *model.Document, target string, mode Mode) ([]model.MatchRecord, error) {
	tv, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}

	s := &scanner{
		index:  BuildIndex(doc),
		target: tv,
		mode:   mode,
	}

	s.scanScope(model.SharedScope, &doc.Shared)
	for i := range doc.DeviceGroups {
		dg := &doc.DeviceGroups[i]
		s.scanScope(model.DeviceGroupScope(dg.Name), &dg.Node)
	}
	return s.records, nil
}

type scanner struct {
	index   *Index
	target  Value
	mode    Mode
	records []model.MatchRecord
}

func (s *scanner) scanScope(scope model.Scope, node *model.ScopeNode) {
	for _, kind := range model.RulebaseKinds {
		for _, rule := range node.Rulebases[kind] {
			s.scanSide(scope, kind, rule.Name, model.SourceSide, rule.Sources)
			s.scanSide(scope, kind, rule.Name, model.DestinationSide, rule.Destinations)
		}
	}
}

func (s *scanner) scanSide(scope model.Scope, kind model.RulebaseKind, rule string, side model.Side, members []string) {
	for _, member := range members {
		if member == "" || member == "any" {
			continue
		}

		// A member that is itself a literal address matches directly and
		// bypasses all name lookup.
		if v, err := ParseValue(member); err == nil {
			if Match(v, s.target, s.mode) {
				s.record(scope, kind, rule, side, member, member, model.BasisLiteral)
			}
			continue
		}

		// A member naming an address object is tested against the object's
		// stored value; a device-group object shadows a shared one.
		if value, ok := s.index.LookupAddress(scope, member); ok {
			if MatchRaw(value, s.target, s.mode) {
				s.record(scope, kind, rule, side, member, value, model.BasisAddressObject)
			}
			continue
		}

		// Anything else goes through full resolution, which covers group
		// expansion including nested groups. One member may yield several
		// matching candidates, or none.
		for _, value := range s.index.Resolve(scope, member) {
			if MatchRaw(value, s.target, s.mode) {
				s.record(scope, kind, rule, side, member, value, model.BasisAddressGroup)
			}
		}
	}
}

func (s *scanner) record(scope model.Scope, kind model.RulebaseKind, rule string, side model.Side, member, resolved string, basis model.MatchBasis) {
	s.records = append(s.records, model.MatchRecord{
		Scope:    scope,
		Rulebase: kind,
		Rule:     rule,
		Side:     side,
		Member:   member,
		Resolved: resolved,
		Basis:    basis,
	})
}
