package server

import (
	"fmt"
	"os"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/lox/unoserver/internal/bot"
	"github.com/lox/unoserver/internal/deck"
	"github.com/lox/unoserver/internal/game"
)

// MaxPlayersLimit is the most players the card set can deal a starting hand to
const MaxPlayersLimit = (deck.TotalCards - 1) / game.CardsDealtToPlayers

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Game   *GameSettings  `hcl:"game,block"`
	Auth   *AuthSettings  `hcl:"auth,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address       string `hcl:"address,optional"`
	Port          int    `hcl:"port,optional"`
	LogLevel      string `hcl:"log_level,optional"`
	PublicAddress string `hcl:"public_address,optional"`
}

// GameSettings controls how games are hosted
type GameSettings struct {
	MaxPlayers    int    `hcl:"max_players,optional"`
	LockTimeoutMs int    `hcl:"lock_timeout_ms,optional"`
	Seed          int64  `hcl:"seed,optional"`
	BotPrefix     string `hcl:"bot_prefix,optional"`
	BotStrategy   string `hcl:"bot_strategy,optional"`
}

// AuthSettings configures player tokens
type AuthSettings struct {
	Secret        string `hcl:"secret,optional"`
	TokenTTLHours int    `hcl:"token_ttl_hours,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	cfg := &ServerConfig{}
	cfg.applyDefaults()
	return cfg
}

// LoadServerConfig loads server configuration from HCL file. A missing file
// yields the defaults.
func LoadServerConfig(filename string) (*ServerConfig, error) {
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return DefaultServerConfig(), nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var config ServerConfig
	diags = gohcl.DecodeBody(file.Body, nil, &config)
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	config.applyDefaults()
	return &config, nil
}

func (c *ServerConfig) applyDefaults() {
	if c.Server.Address == "" {
		c.Server.Address = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.LogLevel == "" {
		c.Server.LogLevel = "info"
	}

	if c.Game == nil {
		c.Game = &GameSettings{}
	}
	if c.Game.MaxPlayers == 0 {
		c.Game.MaxPlayers = 10
	}
	if c.Game.LockTimeoutMs == 0 {
		c.Game.LockTimeoutMs = 250
	}
	if c.Game.BotPrefix == "" {
		c.Game.BotPrefix = "bot"
	}
	if c.Game.BotStrategy == "" {
		c.Game.BotStrategy = "smart"
	}

	if c.Auth == nil {
		c.Auth = &AuthSettings{}
	}
	if c.Auth.TokenTTLHours == 0 {
		c.Auth.TokenTTLHours = 24
	}
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Server.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.Server.LogLevel)
	}

	if c.Game.MaxPlayers < 2 || c.Game.MaxPlayers > MaxPlayersLimit {
		return fmt.Errorf("max players must be between 2 and %d", MaxPlayersLimit)
	}
	if c.Game.LockTimeoutMs < 1 {
		return fmt.Errorf("lock timeout must be positive")
	}

	validStrategy := false
	for _, name := range bot.Strategies {
		if c.Game.BotStrategy == name {
			validStrategy = true
		}
	}
	if !validStrategy {
		return fmt.Errorf("invalid bot strategy %s", c.Game.BotStrategy)
	}

	if c.Auth.TokenTTLHours < 1 {
		return fmt.Errorf("token ttl must be at least one hour")
	}

	return nil
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}

// GetPublicAddress returns the address handed to clients, which defaults
// to the bind address
func (c *ServerConfig) GetPublicAddress() string {
	if c.Server.PublicAddress != "" {
		return c.Server.PublicAddress
	}
	return c.GetServerAddress()
}

// LockTimeout returns how long a request waits for a busy game
func (c *ServerConfig) LockTimeout() time.Duration {
	return time.Duration(c.Game.LockTimeoutMs) * time.Millisecond
}

// TokenTTL returns how long issued player tokens stay valid
func (c *ServerConfig) TokenTTL() time.Duration {
	return time.Duration(c.Auth.TokenTTLHours) * time.Hour
}
