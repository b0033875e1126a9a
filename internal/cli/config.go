package cli

import (
	"os"
	"path/filepath"
	"strings"
)

// Config holds CLI configuration
type Config struct {
	ServerURL  string
	PlayerID   string
	PlayerFile string
	Output     string
	Verbose    bool
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL:  getEnvOrDefault("WSGAME_SERVER", "http://localhost:8080"),
		PlayerID:   os.Getenv("WSGAME_PLAYER"),
		PlayerFile: getEnvOrDefault("WSGAME_PLAYER_FILE", defaultPlayerFile()),
		Output:     "text",
	}
}

// LoadPlayerID reads the saved player id unless one was given explicitly
func (c *Config) LoadPlayerID() error {
	if c.PlayerID != "" {
		return nil
	}

	data, err := os.ReadFile(c.PlayerFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}

	c.PlayerID = strings.TrimSpace(string(data))
	return nil
}

// SavePlayerID remembers the identity handed out by a join
func (c *Config) SavePlayerID(id string) error {
	c.PlayerID = id

	if err := os.MkdirAll(filepath.Dir(c.PlayerFile), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.PlayerFile, []byte(id), 0o600)
}

func defaultPlayerFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".wsgame", "player")
	}
	return filepath.Join(home, ".wsgame", "player")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
