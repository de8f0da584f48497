package cli

import (
	"os"
)

// Config holds CLI configuration
type Config struct {
	// ServerURL is the base URL of the status HTTP API
	ServerURL string
	// GameAddr is the host:port of the TCP game server
	GameAddr string
	// Output selects the output format: text or json
	Output string
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("CODEMASTER_SERVER", "http://localhost:8080"),
		GameAddr:  getEnvOrDefault("CODEMASTER_GAME_ADDR", "localhost:5000"),
		Output:    "text",
	}
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
