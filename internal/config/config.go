package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds runtime settings read from the environment
type Config struct {
	// Storage
	DBPath string

	// HTTP
	Addr        string
	CORSOrigins []string

	// Logging
	LogLevel string
	LogJSON  bool

	// MQTT device ingest. An empty broker disables it.
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string
	MQTTTopic    string

	// ModelPath points at a JSON linear model for the workload classifier.
	// Empty means the built-in rule.
	ModelPath string
}

// MQTTEnabled reports whether a broker is configured
func (c *Config) MQTTEnabled() bool {
	return c.MQTTBroker != ""
}

// Load reads a .env file when present, then the process environment
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		DBPath: getenv("FOCUSFLOW_DB", defaultDBPath()),

		Addr: getenv("FOCUSFLOW_ADDR", ":8000"),
		CORSOrigins: getenvList("FOCUSFLOW_CORS_ORIGINS", []string{
			"http://localhost:3000",
			"http://127.0.0.1:3000",
			"http://localhost:5173",
		}),

		LogLevel: getenv("FOCUSFLOW_LOG_LEVEL", "info"),
		LogJSON:  getenvBool("FOCUSFLOW_LOG_JSON", false),

		MQTTBroker:   getenv("FOCUSFLOW_MQTT_BROKER", ""),
		MQTTClientID: getenv("FOCUSFLOW_MQTT_CLIENT_ID", "focusflow"),
		MQTTUsername: getenv("FOCUSFLOW_MQTT_USERNAME", ""),
		MQTTPassword: getenv("FOCUSFLOW_MQTT_PASSWORD", ""),
		MQTTTopic:    getenv("FOCUSFLOW_MQTT_TOPIC", "focusflow/+/activity"),

		ModelPath: getenv("FOCUSFLOW_MODEL_PATH", ""),
	}
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "focusflow.db"
	}
	return filepath.Join(home, ".focusflow", "focusflow.db")
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := cast.ToBoolE(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
