package engine

import (
	"panorama-rule-finder/internal/model"
)

// maxResolveDepth bounds nested group expansion. Chains deeper than this
// resolve to an empty tail rather than an error.
const maxResolveDepth = 25

type visitKey struct {
	scope model.Scope
	token string
}

// Resolve expands a member token into the concrete address strings it stands
// for. A literal value returns itself; an address-object name returns the
// object's raw value; a group name expands every member in order, recursing
// into nested groups. Lookup is scope-then-shared. Unknown tokens, "any",
// cycles, and over-depth chains all yield an empty result.
//
// The visited set is created fresh per call, so resolutions are independent
// and safe to run concurrently.
func (ix *Index) Resolve(scope model.Scope, token string) []string {
	return ix.resolve(scope, token, make(map[visitKey]bool), 0)
}

func (ix *Index) resolve(scope model.Scope, token string, visited map[visitKey]bool, depth int) []string {
	if depth > maxResolveDepth {
		return nil
	}
	if token == "" || token == "any" {
		return nil
	}

	key := visitKey{scope: scope, token: token}
	if visited[key] {
		return nil
	}
	visited[key] = true
	defer delete(visited, key)

	// Literals bypass all lookup.
	if _, err := ParseValue(token); err == nil {
		return []string{token}
	}

	if value, ok := ix.LookupAddress(scope, token); ok {
		return []string{value}
	}

	if members, ok := ix.LookupGroup(scope, token); ok {
		var results []string
		for _, member := range members {
			results = append(results, ix.resolve(scope, member, visited, depth+1)...)
		}
		return results
	}

	return nil
}
