package server

import (
	"fmt"
	"os"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/onecard/onecard/internal/game"
)

// ServerConfig represents the complete server configuration
type ServerConfig struct {
	Server ServerSettings `hcl:"server,block"`
	Auth   *AuthSettings  `hcl:"auth,block"`
	Stats  *StatsSettings `hcl:"stats,block"`
	Rooms  *RoomSettings  `hcl:"rooms,block"`
}

// ServerSettings contains server-level configuration
type ServerSettings struct {
	Address  string `hcl:"address,optional"`
	Port     int    `hcl:"port,optional"`
	LogLevel string `hcl:"log_level,optional"`
	LogFile  string `hcl:"log_file,optional"`
}

// AuthSettings selects how bearer tokens are validated. Mode "guest"
// accepts everyone; "http" validates against an external account service.
type AuthSettings struct {
	Mode        string `hcl:"mode,optional"`
	URL         string `hcl:"url,optional"`
	AdminSecret string `hcl:"admin_secret,optional"`
}

// StatsSettings configures the finished-round sink.
type StatsSettings struct {
	Path string `hcl:"path,optional"`
}

// RoomSettings provides the default rules for newly created rooms.
// Booleans are pointers so that an omitted attribute keeps the default
// rather than reading as false.
type RoomSettings struct {
	MaxPlayers    int   `hcl:"max_players,optional"`
	HandSize      int   `hcl:"hand_size,optional"`
	TurnSeconds   int   `hcl:"turn_seconds,optional"`
	AllowStacking *bool `hcl:"allow_stacking,optional"`
	AllowBots     *bool `hcl:"allow_bots,optional"`
	MaxBots       int   `hcl:"max_bots,optional"`
	PointsToWin   int   `hcl:"points_to_win,optional"`
	MaxRooms      int   `hcl:"max_rooms,optional"`
}

// DefaultServerConfig returns default server configuration
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Server: ServerSettings{
			Address:  "localhost",
			Port:     8080,
			LogLevel: "info",
		},
		Auth:  &AuthSettings{Mode: "guest"},
		Stats: &StatsSettings{},
		Rooms: &RoomSettings{},
	}
}

// LoadServerConfig loads server configuration from HCL file
func LoadServerConfig(filename string) (*ServerConfig, error) {
	// Check if file exists
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

	// Apply defaults for missing values
	if config.Server.Address == "" {
		config.Server.Address = "localhost"
	}
	if config.Server.Port == 0 {
		config.Server.Port = 8080
	}
	if config.Server.LogLevel == "" {
		config.Server.LogLevel = "info"
	}
	if config.Auth == nil {
		config.Auth = &AuthSettings{}
	}
	if config.Auth.Mode == "" {
		config.Auth.Mode = "guest"
	}
	if config.Stats == nil {
		config.Stats = &StatsSettings{}
	}
	if config.Rooms == nil {
		config.Rooms = &RoomSettings{}
	}

	return &config, nil
}

// Validate validates the server configuration
func (c *ServerConfig) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}

	switch c.Auth.Mode {
	case "guest":
	case "http":
		if c.Auth.URL == "" {
			return fmt.Errorf("auth mode %q requires a url", c.Auth.Mode)
		}
	default:
		return fmt.Errorf("invalid auth mode: %s", c.Auth.Mode)
	}

	if err := c.RoomRules().Validate(); err != nil {
		return fmt.Errorf("invalid room defaults: %w", err)
	}
	return nil
}

// RoomRules returns the default rules for new rooms, with the configured
// overrides applied.
func (c *ServerConfig) RoomRules() game.Rules {
	rules := game.DefaultRules()
	r := c.Rooms
	if r == nil {
		return rules
	}
	if r.MaxPlayers != 0 {
		rules.MaxPlayers = r.MaxPlayers
	}
	if r.HandSize != 0 {
		rules.HandSize = r.HandSize
	}
	if r.TurnSeconds != 0 {
		rules.TurnSeconds = r.TurnSeconds
	}
	if r.AllowStacking != nil {
		rules.AllowStacking = *r.AllowStacking
	}
	if r.AllowBots != nil {
		rules.AllowBots = *r.AllowBots
	}
	if r.MaxBots != 0 {
		rules.MaxBots = r.MaxBots
	}
	if r.PointsToWin != 0 {
		rules.PointsToWin = r.PointsToWin
	}
	return rules
}

// GetServerAddress returns the full server address
func (c *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", c.Server.Address, c.Server.Port)
}
