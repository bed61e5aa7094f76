package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Server.Name != "voicedesk-agent" {
		t.Errorf("expected server name 'voicedesk-agent', got %q", cfg.Server.Name)
	}
	if cfg.Server.LogFile != "voicedesk-agent.log" {
		t.Errorf("expected log file 'voicedesk-agent.log', got %q", cfg.Server.LogFile)
	}
	if cfg.Agent.AgentID != "" {
		t.Errorf("expected no default agent id, got %q", cfg.Agent.AgentID)
	}
	if cfg.Agent.Endpoint == "" {
		t.Error("expected a default endpoint")
	}
	if cfg.MCP.SSEPort != 0 {
		t.Errorf("expected SSE disabled by default, got %d", cfg.MCP.SSEPort)
	}
	if !cfg.Console.IsEnabled() {
		t.Error("expected console enabled by default")
	}
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	if err == nil {
		t.Error("expected error for empty path")
	}
	if err.Error() != "config path is required" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoadNonExistentFile(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	if err == nil {
		t.Error("expected error for non-existent file")
	}
}

func TestLoadOptionalMissingFile(t *testing.T) {
	cfg, err := LoadOptional(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults: %v", err)
	}
	if cfg.Server.Name != "voicedesk-agent" {
		t.Errorf("server name = %q", cfg.Server.Name)
	}
}

func TestLoadValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  name: "test-agent"
  version: "1.0.0"
  log_file: "test.log"

agent:
  agent_id: "agent-from-file"
  token_fetch_url: "https://tokens.example.com"
  user_id: "demo-user"
  endpoint: "wss://example.com/convai"
  dial_timeout: "3s"

mcp:
  sse_port: 9090

console:
  enabled: false
`
	if err := os.WriteFile(configPath, []byte(configContent), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Server.Name != "test-agent" {
		t.Errorf("server name = %q", cfg.Server.Name)
	}
	if cfg.Agent.AgentID != "agent-from-file" {
		t.Errorf("agent id = %q", cfg.Agent.AgentID)
	}
	if cfg.Agent.Endpoint != "wss://example.com/convai" {
		t.Errorf("endpoint = %q", cfg.Agent.Endpoint)
	}
	if cfg.Agent.GetDialTimeout() != 3*time.Second {
		t.Errorf("dial timeout = %v", cfg.Agent.GetDialTimeout())
	}
	if cfg.MCP.SSEPort != 9090 {
		t.Errorf("sse port = %d", cfg.MCP.SSEPort)
	}
	if cfg.Console.IsEnabled() {
		t.Error("console should be disabled")
	}
}

func TestEnvOverlayBeatsFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte("agent:\n  agent_id: from-file\n"), 0644); err != nil {
		t.Fatal(err)
	}

	t.Setenv(EnvAgentID, "from-env")
	t.Setenv(EnvUserID, "env-user")

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Agent.AgentID != "from-env" {
		t.Errorf("agent id = %q, want env value", cfg.Agent.AgentID)
	}
	if cfg.Agent.UserID != "env-user" {
		t.Errorf("user id = %q", cfg.Agent.UserID)
	}
}

func TestResolveOverridesBeatEverything(t *testing.T) {
	agent := AgentConfig{
		AgentID:       "configured",
		TokenFetchURL: "https://configured.example.com",
		UserID:        "configured-user",
	}

	if got := agent.ResolveAgentID("override"); got != "override" {
		t.Errorf("ResolveAgentID = %q", got)
	}
	if got := agent.ResolveAgentID(""); got != "configured" {
		t.Errorf("ResolveAgentID fallback = %q", got)
	}
	if got := agent.ResolveTokenFetchURL(""); got != "https://configured.example.com" {
		t.Errorf("ResolveTokenFetchURL = %q", got)
	}
	if got := agent.ResolveUserID("u2"); got != "u2" {
		t.Errorf("ResolveUserID = %q", got)
	}
}

func TestIsAgentConfigured(t *testing.T) {
	if (AgentConfig{}).IsAgentConfigured() {
		t.Error("empty agent id should report unconfigured")
	}
	if !(AgentConfig{AgentID: "a"}).IsAgentConfigured() {
		t.Error("non-empty agent id should report configured")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults are valid", func(*Config) {}, false},
		{"missing server name", func(c *Config) { c.Server.Name = "" }, true},
		{"missing endpoint", func(c *Config) { c.Agent.Endpoint = "" }, true},
		{"sse port out of range", func(c *Config) { c.MCP.SSEPort = 70000 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Error("expected an error")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestGetDialTimeoutFallback(t *testing.T) {
	if got := (AgentConfig{}).GetDialTimeout(); got != 10*time.Second {
		t.Errorf("empty timeout = %v", got)
	}
	if got := (AgentConfig{DialTimeout: "bogus"}).GetDialTimeout(); got != 10*time.Second {
		t.Errorf("bogus timeout = %v", got)
	}
	if got := (AgentConfig{DialTimeout: "2s"}).GetDialTimeout(); got != 2*time.Second {
		t.Errorf("parsed timeout = %v", got)
	}
}
