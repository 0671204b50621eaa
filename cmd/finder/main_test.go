package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"panorama-rule-finder/internal/model"
)

func TestNewRootCmd(t *testing.T) {
	cmd := newRootCmd()
	if cmd == nil {
		t.Fatal("newRootCmd returned nil")
	}
	if cmd.Use != "panorama-rule-finder" {
		t.Errorf("Expected use 'panorama-rule-finder', got '%s'", cmd.Use)
	}

	names := make(map[string]bool)
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	if !names["find"] || !names["serve"] {
		t.Errorf("expected find and serve subcommands, got %v", names)
	}
}

func TestSetupLogger(t *testing.T) {
	levels := []string{"DEBUG", "INFO", "WARN", "ERROR", "UNKNOWN"}
	for _, lvl := range levels {
		l := setupLogger(lvl, "")
		if l == nil {
			t.Errorf("setupLogger returned nil for level %s", lvl)
		}
	}

	tmpDir := t.TempDir()
	logFile := filepath.Join(tmpDir, "test.log")
	if l := setupLogger("INFO", logFile); l == nil {
		t.Error("setupLogger returned nil for file target")
	}
}

func TestLoadDocument(t *testing.T) {
	if _, err := loadDocument("bogus", "", ""); err == nil {
		t.Error("expected unknown provider to fail")
	}
	if _, err := loadDocument("panorama", "", ""); err == nil {
		t.Error("expected missing config path to fail")
	}
	if _, err := loadDocument("mysql", "", ""); err == nil {
		t.Error("expected missing DSN to fail")
	}

	path := filepath.Join(t.TempDir(), "config.xml")
	content := `<config><shared><address>
		<entry name="A"><ip-netmask>10.0.0.0/24</ip-netmask></entry>
	</address></shared></config>`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	doc, err := loadDocument("panorama", path, "")
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if len(doc.Shared.Addresses) != 1 {
		t.Errorf("expected one shared address, got %d", len(doc.Shared.Addresses))
	}
}

func TestWriteRecords(t *testing.T) {
	records := []model.MatchRecord{
		{
			Scope:    model.SharedScope,
			Rulebase: model.PreRulebase,
			Rule:     "allow inbound",
			Side:     model.SourceSide,
			Member:   "edge",
			Resolved: "10.0.0.0/24",
			Basis:    model.BasisAddressGroup,
		},
	}

	var buf bytes.Buffer
	if err := writeRecords(&buf, records); err != nil {
		t.Fatalf("expected write to succeed, got %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header and one record, got %d lines", len(lines))
	}
	if lines[0] != "scope,rulebase,rule,side,member,resolved,basis" {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if lines[1] != "shared,pre-rulebase,allow inbound,source,edge,10.0.0.0/24,address-group" {
		t.Errorf("unexpected record: %s", lines[1])
	}
}
