package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	SlackBotToken      string
	SlackSigningSecret string
	DatabasePath       string
	Port               string
	AllowedChannelID   string
	AdminUserIDs       []string
	MaxHours7d         float64
	HeavyLockWindowMin int
	DefaultTimezone    string
}

func Load() *Config {
	return &Config{
		SlackBotToken:      getEnv("SLACK_BOT_TOKEN", ""),
		SlackSigningSecret: getEnv("SLACK_SIGNING_SECRET", ""),
		DatabasePath:       getEnv("DATABASE_PATH", "./shifts.db"),
		Port:               getEnv("PORT", "3000"),
		AllowedChannelID:   getEnv("ALLOWED_CHANNEL_ID", ""),
		AdminUserIDs:       splitList(getEnv("ADMIN_USER_IDS", "")),
		MaxHours7d:         getEnvFloat("MAX_HOURS_7D", 3.0),
		HeavyLockWindowMin: getEnvInt("HEAVY_LOCK_WINDOW_MINUTES", 60),
		DefaultTimezone:    getEnv("DEFAULT_TIMEZONE", "UTC"),
	}
}

// IsAdmin reports whether the user may run admin actions (cancel/edit
// others' shifts, manage others' schedules).
func (c *Config) IsAdmin(userID string) bool {
	for _, id := range c.AdminUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// ChannelAllowed reports whether shift commands may run in the channel. An
// empty ALLOWED_CHANNEL_ID allows every channel.
func (c *Config) ChannelAllowed(channelID string) bool {
	return c.AllowedChannelID == "" || c.AllowedChannelID == channelID
}

// LockWindow is the heavy-moderator lock window as a duration.
func (c *Config) LockWindow() time.Duration {
	return time.Duration(c.HeavyLockWindowMin) * time.Minute
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
