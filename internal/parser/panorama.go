package parser

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"

	"panorama-rule-finder/internal/model"
)

// Panorama export shape. Address entries carry one of ip-netmask, ip-range,
// or fqdn; groups list members either under <static> or, in older exports,
// directly; rules live under <security><rules> inside each rulebase tier.
type xmlConfig struct {
	XMLName xml.Name    `xml:"config"`
	Shared  *xmlScope   `xml:"shared"`
	Devices []xmlDevice `xml:"devices>entry"`
}

type xmlDevice struct {
	Name         string           `xml:"name,attr"`
	Shared       *xmlScope        `xml:"shared"`
	DeviceGroups []xmlDeviceGroup `xml:"device-group>entry"`
}

type xmlDeviceGroup struct {
	Name string `xml:"name,attr"`
	xmlScope
}

type xmlScope struct {
	Addresses     []xmlAddress      `xml:"address>entry"`
	AddressGroups []xmlAddressGroup `xml:"address-group>entry"`
	PreRulebase   *xmlRulebase      `xml:"pre-rulebase"`
	Rulebase      *xmlRulebase      `xml:"rulebase"`
	PostRulebase  *xmlRulebase      `xml:"post-rulebase"`
}

type xmlAddress struct {
	Name      string `xml:"name,attr"`
	IPNetmask string `xml:"ip-netmask"`
	IPRange   string `xml:"ip-range"`
	FQDN      string `xml:"fqdn"`
}

type xmlAddressGroup struct {
	Name    string   `xml:"name,attr"`
	Static  []string `xml:"static>member"`
	Members []string `xml:"member"`
}

type xmlRulebase struct {
	Rules []xmlRule `xml:"security>rules>entry"`
}

type xmlRule struct {
	Name         string   `xml:"name,attr"`
	Sources      []string `xml:"source>member"`
	Destinations []string `xml:"destination>member"`
}

// ParsePanorama decodes a Panorama XML export into a document snapshot.
// The top-level shared subtree and any per-device shared subtrees merge into
// the shared scope; later entries overwrite earlier ones by name. Each
// device-group becomes its own scope, independent of all others.
func ParsePanorama(r io.Reader) (*model.Document, error) {
	var cfg xmlConfig
	if err := xml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode panorama config: %w", err)
	}

	doc := &model.Document{}
	if cfg.Shared != nil {
		mergeScope(&doc.Shared, cfg.Shared)
	}
	for i := range cfg.Devices {
		dev := &cfg.Devices[i]
		if dev.Shared != nil {
			mergeScope(&doc.Shared, dev.Shared)
		}
		for j := range dev.DeviceGroups {
			dg := &dev.DeviceGroups[j]
			if dg.Name == "" {
				continue
			}
			var node model.ScopeNode
			mergeScope(&node, &dg.xmlScope)
			doc.DeviceGroups = append(doc.DeviceGroups, model.DeviceGroup{
				Name: dg.Name,
				Node: node,
			})
		}
	}
	return doc, nil
}

// LoadPanoramaFile parses the Panorama export at path.
func LoadPanoramaFile(path string) (*model.Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()
	return ParsePanorama(f)
}

func mergeScope(node *model.ScopeNode, x *xmlScope) {
	for _, a := range x.Addresses {
		value := addressValue(a)
		if a.Name == "" || value == "" {
			continue
		}
		node.Addresses = append(node.Addresses, model.AddressObject{
			Name:  a.Name,
			Value: value,
		})
	}
	for _, g := range x.AddressGroups {
		if g.Name == "" {
			continue
		}
		members := g.Static
		if len(members) == 0 {
			members = g.Members
		}
		node.AddressGroups = append(node.AddressGroups, model.AddressGroup{
			Name:    g.Name,
			Members: members,
		})
	}

	appendRules(node, model.PreRulebase, x.PreRulebase)
	appendRules(node, model.Rulebase, x.Rulebase)
	appendRules(node, model.PostRulebase, x.PostRulebase)
}

// addressValue picks the stored value with ip-netmask preferred over
// ip-range over fqdn; the first non-empty wins.
func addressValue(a xmlAddress) string {
	switch {
	case a.IPNetmask != "":
		return a.IPNetmask
	case a.IPRange != "":
		return a.IPRange
	default:
		return a.FQDN
	}
}

func appendRules(node *model.ScopeNode, kind model.RulebaseKind, rb *xmlRulebase) {
	if rb == nil || len(rb.Rules) == 0 {
		return
	}
	if node.Rulebases == nil {
		node.Rulebases = make(map[model.RulebaseKind][]model.Rule)
	}
	for _, r := range rb.Rules {
		if r.Name == "" {
			continue
		}
		node.Rulebases[kind] = append(node.Rulebases[kind], model.Rule{
			Name:         r.Name,
			Sources:      r.Sources,
			Destinations: r.Destinations,
		})
	}
}
