package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Policy.Provider != "panorama" {
		t.Errorf("expected default provider panorama, got %s", cfg.Policy.Provider)
	}
	if cfg.Server.Addr() != "0.0.0.0:8080" {
		t.Errorf("unexpected addr %s", cfg.Server.Addr())
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("PANORAMA_CONFIG", "/tmp/alt.xml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("expected load to succeed, got %v", err)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Policy.ConfigPath != "/tmp/alt.xml" {
		t.Errorf("expected overridden config path, got %s", cfg.Policy.ConfigPath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{
			name: "panorama with path",
			cfg:  Config{Policy: PolicyConfig{Provider: "panorama", ConfigPath: "a.xml"}},
			ok:   true,
		},
		{
			name: "panorama without path",
			cfg:  Config{Policy: PolicyConfig{Provider: "panorama"}},
			ok:   false,
		},
		{
			name: "mysql with dsn",
			cfg: Config{
				Policy:   PolicyConfig{Provider: "mysql"},
				Database: DatabaseConfig{DSN: "root@tcp(127.0.0.1)/policy"},
			},
			ok: true,
		},
		{
			name: "mysql without dsn",
			cfg:  Config{Policy: PolicyConfig{Provider: "mysql"}},
			ok:   false,
		},
		{
			name: "unknown provider",
			cfg:  Config{Policy: PolicyConfig{Provider: "ftp"}},
			ok:   false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("expected valid config, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("expected validation error")
			}
		})
	}
}
