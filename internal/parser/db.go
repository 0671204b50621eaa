package parser

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	_ "github.com/go-sql-driver/mysql"

	"panorama-rule-finder/internal/model"
)

// DBProvider loads a document snapshot from MariaDB/MySQL tables instead of
// an XML export. Member lists are stored as JSON arrays, one row per address
// object, group, or rule.
type DBProvider struct {
	db *sqlx.DB
}

func NewDBProvider(dsn string) (*DBProvider, error) {
	db, err := sqlx.Connect("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return &DBProvider{db: db}, nil
}

func (p *DBProvider) Close() error {
	return p.db.Close()
}

type addressRow struct {
	Scope string `db:"scope"`
	Name  string `db:"object_name"`
	Value string `db:"address_value"`
}

type groupRow struct {
	Scope   string `db:"scope"`
	Name    string `db:"group_name"`
	Members string `db:"members"`
}

type ruleRow struct {
	Scope        string `db:"scope"`
	Rulebase     string `db:"rulebase"`
	Name         string `db:"rule_name"`
	Sources      string `db:"src_members"`
	Destinations string `db:"dst_members"`
}

// Load builds one document snapshot from the pan_address, pan_address_group,
// and pan_rule tables. The scope column holds either "shared" or a
// device-group name; device-groups appear in the document in first-seen row
// order.
func (p *DBProvider) Load() (*model.Document, error) {
	doc := &model.Document{}
	dgIndex := make(map[string]int)

	scopeNode := func(scope string) *model.ScopeNode {
		if scope == "" || scope == string(model.SharedScope) {
			return &doc.Shared
		}
		i, ok := dgIndex[scope]
		if !ok {
			doc.DeviceGroups = append(doc.DeviceGroups, model.DeviceGroup{Name: scope})
			i = len(doc.DeviceGroups) - 1
			dgIndex[scope] = i
		}
		return &doc.DeviceGroups[i].Node
	}

	var addresses []addressRow
	if err := p.db.Select(&addresses, "SELECT scope, object_name, address_value FROM pan_address ORDER BY id ASC"); err != nil {
		return nil, fmt.Errorf("failed to load addresses: %w", err)
	}
	for _, row := range addresses {
		if row.Name == "" || row.Value == "" {
			continue
		}
		node := scopeNode(row.Scope)
		node.Addresses = append(node.Addresses, model.AddressObject{
			Name:  row.Name,
			Value: row.Value,
		})
	}

	var groups []groupRow
	if err := p.db.Select(&groups, "SELECT scope, group_name, members FROM pan_address_group ORDER BY id ASC"); err != nil {
		return nil, fmt.Errorf("failed to load address groups: %w", err)
	}
	for _, row := range groups {
		if row.Name == "" {
			continue
		}
		var members []string
		if err := json.Unmarshal([]byte(row.Members), &members); err != nil {
			continue
		}
		node := scopeNode(row.Scope)
		node.AddressGroups = append(node.AddressGroups, model.AddressGroup{
			Name:    row.Name,
			Members: members,
		})
	}

	var rules []ruleRow
	if err := p.db.Select(&rules, "SELECT scope, rulebase, rule_name, src_members, dst_members FROM pan_rule ORDER BY position ASC"); err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}
	for _, row := range rules {
		if row.Name == "" {
			continue
		}
		kind, ok := rulebaseKind(row.Rulebase)
		if !ok {
			continue
		}
		rule := model.Rule{Name: row.Name}
		json.Unmarshal([]byte(row.Sources), &rule.Sources)
		json.Unmarshal([]byte(row.Destinations), &rule.Destinations)

		node := scopeNode(row.Scope)
		if node.Rulebases == nil {
			node.Rulebases = make(map[model.RulebaseKind][]model.Rule)
		}
		node.Rulebases[kind] = append(node.Rulebases[kind], rule)
	}

	return doc, nil
}

// DBSource adapts DBProvider to the snapshot-source contract the HTTP layer
// consumes: the loaded document is held until Invalidate forces a re-query.
type DBSource struct {
	mu       sync.Mutex
	provider *DBProvider
	snap     *Snapshot
}

func NewDBSource(provider *DBProvider) *DBSource {
	return &DBSource{provider: provider}
}

func (s *DBSource) Get() (*Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap != nil {
		return s.snap, nil
	}
	doc, err := s.provider.Load()
	if err != nil {
		return nil, err
	}
	s.snap = &Snapshot{
		ID:       uuid.New().String(),
		Doc:      doc,
		LoadedAt: time.Now(),
	}
	return s.snap, nil
}

func (s *DBSource) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = nil
}

func rulebaseKind(s string) (model.RulebaseKind, bool) {
	switch model.RulebaseKind(s) {
	case model.PreRulebase, model.Rulebase, model.PostRulebase:
		return model.RulebaseKind(s), true
	default:
		return "", false
	}
}
