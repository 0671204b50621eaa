package engine

import (
	"panorama-rule-finder/internal/model"
)

// Index holds the per-scope name lookups derived from one document snapshot:
// address-object name to raw value, and group name to ordered member tokens.
// It is rebuilt per scan and never mutated afterwards, so concurrent scans
// over the same Index are safe.
type Index struct {
	addresses map[model.Scope]map[string]string
	groups    map[model.Scope]map[string][]string
}

// BuildIndex walks the document once and produces the scope lookups.
// The shared node (already merged from the top-level and per-device shared
// subtrees by the provider) populates the "shared" scope; each device-group
// populates its own independent scope.
func BuildIndex(doc *model.Document) *Index {
	ix := &Index{
		addresses: make(map[model.Scope]map[string]string),
		groups:    make(map[model.Scope]map[string][]string),
	}
	ix.addScope(model.SharedScope, &doc.Shared)
	for i := range doc.DeviceGroups {
		dg := &doc.DeviceGroups[i]
		ix.addScope(model.DeviceGroupScope(dg.Name), &dg.Node)
	}
	return ix
}

func (ix *Index) addScope(scope model.Scope, node *model.ScopeNode) {
	addrs := ix.addresses[scope]
	if addrs == nil {
		addrs = make(map[string]string)
		ix.addresses[scope] = addrs
	}
	for _, obj := range node.Addresses {
		// Entries with no usable name or value are skipped silently.
		if obj.Name == "" || obj.Value == "" {
			continue
		}
		addrs[obj.Name] = obj.Value
	}

	groups := ix.groups[scope]
	if groups == nil {
		groups = make(map[string][]string)
		ix.groups[scope] = groups
	}
	for _, grp := range node.AddressGroups {
		if grp.Name == "" {
			continue
		}
		groups[grp.Name] = grp.Members
	}
}

// LookupAddress finds an address object by name, searching the given scope
// first and the shared scope second. The first hit wins, so a device-group
// object shadows a shared object of the same name.
func (ix *Index) LookupAddress(scope model.Scope, name string) (string, bool) {
	if v, ok := ix.addresses[scope][name]; ok {
		return v, true
	}
	if scope != model.SharedScope {
		if v, ok := ix.addresses[model.SharedScope][name]; ok {
			return v, true
		}
	}
	return "", false
}

// LookupGroup finds an address-group by name with the same scope-then-shared
// precedence as LookupAddress.
func (ix *Index) LookupGroup(scope model.Scope, name string) ([]string, bool) {
	if m, ok := ix.groups[scope][name]; ok {
		return m, true
	}
	if scope != model.SharedScope {
		if m, ok := ix.groups[model.SharedScope][name]; ok {
			return m, true
		}
	}
	return nil, false
}
