package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Env variable names recognized by the overlay. An explicit override
// parameter always beats these; these beat the YAML file.
const (
	EnvAgentID       = "VOICEDESK_AGENT_ID"
	EnvTokenFetchURL = "VOICEDESK_TOKEN_URL"
	EnvUserID        = "VOICEDESK_USER_ID"
	EnvEndpoint      = "VOICEDESK_WS_ENDPOINT"
)

// Config captures all tunable settings for the VoiceDesk agent orchestrator.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Agent   AgentConfig   `yaml:"agent"`
	MCP     MCPConfig     `yaml:"mcp"`
	Console ConsoleConfig `yaml:"console"`
}

type ServerConfig struct {
	Name    string `yaml:"name"`
	Version string `yaml:"version"`
	LogFile string `yaml:"log_file"`
}

// AgentConfig identifies the remote conversational agent and how to reach it.
type AgentConfig struct {
	// AgentID selects the remote agent. Empty disables session start;
	// it is surfaced as an activity-log entry, not a load error.
	AgentID string `yaml:"agent_id"`
	// TokenFetchURL is an optional endpoint that mints signed
	// conversation tokens before connecting.
	TokenFetchURL string `yaml:"token_fetch_url"`
	// UserID is an optional caller identity forwarded on session start.
	UserID string `yaml:"user_id"`
	// Endpoint is the conversation websocket endpoint.
	Endpoint string `yaml:"endpoint"`
	// DialTimeout bounds the websocket dial (e.g. "10s").
	DialTimeout string `yaml:"dial_timeout"`
}

type MCPConfig struct {
	// When set, starts an SSE server on this port instead of stdio-only.
	SSEPort int `yaml:"sse_port"`
}

// ConsoleConfig controls the interactive TUI console.
type ConsoleConfig struct {
	Enabled *bool `yaml:"enabled"`
}

// DefaultConfig provides reasonable defaults for local development.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Name:    "voicedesk-agent",
			Version: "0.1.0",
			LogFile: "voicedesk-agent.log",
		},
		Agent: AgentConfig{
			Endpoint:    "wss://api.elevenlabs.io/v1/convai/conversation",
			DialTimeout: "10s",
		},
		MCP: MCPConfig{
			SSEPort: 0,
		},
	}
}

// Load reads YAML config from disk, overlays defaults, then overlays
// environment variables (a .env file is honored when present).
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, errors.New("config path is required")
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}

	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, err
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

// LoadOptional behaves like Load but tolerates a missing file: defaults
// plus the env overlay are returned so the agent can run unconfigured
// (session start stays disabled until an agent id appears).
func LoadOptional(path string) (Config, error) {
	cfg, err := Load(path)
	if err != nil && os.IsNotExist(err) {
		cfg = DefaultConfig()
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}
	return cfg, err
}

func (c *Config) applyEnv() {
	_ = godotenv.Load()

	c.Agent.AgentID = getEnv(EnvAgentID, c.Agent.AgentID)
	c.Agent.TokenFetchURL = getEnv(EnvTokenFetchURL, c.Agent.TokenFetchURL)
	c.Agent.UserID = getEnv(EnvUserID, c.Agent.UserID)
	c.Agent.Endpoint = getEnv(EnvEndpoint, c.Agent.Endpoint)
}

// Validate ensures required fields exist so the agent can start
// deterministically. A missing agent id is intentionally not an error.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server.name is required")
	}
	if c.Agent.Endpoint == "" {
		return errors.New("agent.endpoint is required")
	}
	if c.MCP.SSEPort < 0 || c.MCP.SSEPort > 65535 {
		return fmt.Errorf("mcp.sse_port out of range: %d", c.MCP.SSEPort)
	}
	return nil
}

// ResolveAgentID returns the explicit override when non-empty, else the
// configured agent id.
func (a AgentConfig) ResolveAgentID(override string) string {
	if override != "" {
		return override
	}
	return a.AgentID
}

// ResolveTokenFetchURL returns the explicit override when non-empty,
// else the configured token fetch URL.
func (a AgentConfig) ResolveTokenFetchURL(override string) string {
	if override != "" {
		return override
	}
	return a.TokenFetchURL
}

// ResolveUserID returns the explicit override when non-empty, else the
// configured user id.
func (a AgentConfig) ResolveUserID(override string) string {
	if override != "" {
		return override
	}
	return a.UserID
}

// IsAgentConfigured reports whether session start is possible at all.
func (a AgentConfig) IsAgentConfigured() bool {
	return a.AgentID != ""
}

// GetDialTimeout returns the parsed dial timeout with a sane default.
func (a AgentConfig) GetDialTimeout() time.Duration {
	if a.DialTimeout == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(a.DialTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// IsEnabled reports whether the TUI console should run (default: true).
func (c ConsoleConfig) IsEnabled() bool {
	if c.Enabled == nil {
		return true
	}
	return *c.Enabled
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
